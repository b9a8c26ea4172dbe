package mdec

import (
	"errors"
	"testing"
)

func newTestDecoder(t testing.TB, words ...uint16) *Decoder {
	t.Helper()

	d, err := NewDecoder(newWordBuffer(t, words...), 16, 16)
	if err != nil {
		t.Fatal(err)
	}

	return d
}

func TestDequantize(t *testing.T) {
	tests := []struct {
		name string
		got  int16
		want int16
	}{
		{"dc", dequantizeDC(40, 2), 80},
		{"dc zero quant", dequantizeDC(40, 0), 80},
		{"dc negative", dequantizeDC(0x3d8, 2), -80},
		{"dc max", dequantizeDC(0x1ff, 255), levelMax},
		{"dc min", dequantizeDC(0x200, 255), levelMin},
		{"ac", dequantizeAC(3, 16, 2), 12},
		{"ac negative", dequantizeAC(0x3fd, 16, 2), -12},
		{"ac zero quant", dequantizeAC(5, 0, 7), 10},
		{"ac zero scale", dequantizeAC(5, 16, 0), 10},
		{"ac max", dequantizeAC(0x1ff, 255, 63), levelMax},
		{"ac min", dequantizeAC(0x200, 255, 63), levelMin},
		{"ac max table", dequantizeAC(0x1ff, 83, 63), levelMax},
		{"ac run bits ignored", dequantizeAC(0xfc03, 16, 2), 12},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, tt.got, tt.want)
		}
	}
}

func TestSignExtend10(t *testing.T) {
	tests := map[uint16]int32{
		0x000: 0,
		0x001: 1,
		0x1ff: 511,
		0x200: -512,
		0x3ff: -1,
		0xfdff: 511,
	}

	for n, want := range tests {
		if got := signExtend10(n); got != want {
			t.Errorf("signExtend10(%#04x): got %d, want %d", n, got, want)
		}
	}
}

func TestDecodeBlock(t *testing.T) {
	// stuffing, DC 40 with scale 2, AC 3 at k=1, run 2 then AC -1 at k=4, end of block
	d := newTestDecoder(t, 0xfe00, 0xfe00, 2<<10|40, 0<<10|3, 2<<10|0x3ff, 0xfe00, 0x1234)

	var blk block
	if err := d.decodeBlock(blockY, &blk); err != nil {
		t.Fatal(err)
	}

	var want block
	want[0] = 80
	want[videoZigZag[1]] = int16((3*16*2 + 4) >> 3)
	want[videoZigZag[4]] = int16((-1*26*2 + 4) >> 3)

	if blk != want {
		t.Errorf("block: got %v, want %v", blk, want)
	}

	if d.buf.Index() != 6 {
		t.Errorf("Index: got %d, want %d", d.buf.Index(), 6)
	}
}

func TestDecodeBlockRunPastEnd(t *testing.T) {
	tests := []struct {
		name  string
		words []uint16
		want  block
	}{
		// A coefficient at k=63 ends the block without the marker
		{"last coefficient", []uint16{1<<10 | 8, 62<<10 | 5, 0x4242}, block{0: 16, 63: (5*83 + 4) >> 3}},
		// A run that pushes k past 63 ends the block, the level is dropped
		{"run past end", []uint16{1<<10 | 8, 63<<10 | 5, 0x4242}, block{0: 16}},
	}

	for _, tt := range tests {
		d := newTestDecoder(t, tt.words...)

		var blk block
		if err := d.decodeBlock(blockCr, &blk); err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}

		if blk != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, blk, tt.want)
		}

		if d.buf.Index() != 2 {
			t.Errorf("%s: Index: got %d, want %d", tt.name, d.buf.Index(), 2)
		}
	}
}

func TestDecodeBlockFull(t *testing.T) {
	// 63 AC words fill the block, the next word belongs to the next block
	words := []uint16{1<<10 | 1}
	for i := 0; i < 63; i++ {
		words = append(words, 1)
	}
	words = append(words, 0x4242)

	d := newTestDecoder(t, words...)

	var blk block
	if err := d.decodeBlock(blockY, &blk); err != nil {
		t.Fatal(err)
	}

	if d.buf.Index() != 64 {
		t.Errorf("Index: got %d, want %d", d.buf.Index(), 64)
	}
}

func TestDecodeBlockEndOfStream(t *testing.T) {
	tests := []struct {
		name  string
		words []uint16
	}{
		{"empty", nil},
		{"stuffing only", []uint16{0xfe00, 0xfe00}},
		{"dc only", []uint16{1<<10 | 5}},
		{"no end of block", []uint16{1<<10 | 5, 0<<10 | 1, 0<<10 | 2}},
	}

	for _, tt := range tests {
		d := newTestDecoder(t, tt.words...)

		var blk block
		err := d.decodeBlock(blockY, &blk)
		if !errors.Is(err, ErrEndOfStream) {
			t.Errorf("%s: got %v, want %v", tt.name, err, ErrEndOfStream)
		}

		if d.buf.Index() > d.buf.Size() {
			t.Errorf("%s: Index %d past Size %d", tt.name, d.buf.Index(), d.buf.Size())
		}
	}
}

func TestZigZagPermutation(t *testing.T) {
	var seen [64]bool
	for _, n := range videoZigZag {
		if seen[n] {
			t.Fatalf("zigzag: %d appears twice", n)
		}
		seen[n] = true
	}
}

func TestQuantMatrix(t *testing.T) {
	if blockCr.quantMatrix() != &chromaQuantMatrix || blockCb.quantMatrix() != &chromaQuantMatrix {
		t.Error("quantMatrix: chroma blocks must use the chroma matrix")
	}

	if blockY.quantMatrix() != &lumaQuantMatrix {
		t.Error("quantMatrix: luma blocks must use the luma matrix")
	}
}
