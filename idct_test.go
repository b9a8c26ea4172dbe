package mdec

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

// referenceIDCT is the floating point 8x8 inverse DCT, rounded to the nearest integer.
func referenceIDCT(in *block) [64]int {
	var out [64]int

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			var sum float64
			for v := 0; v < 8; v++ {
				for u := 0; u < 8; u++ {
					cu, cv := 1.0, 1.0
					if u == 0 {
						cu = 1 / math.Sqrt2
					}
					if v == 0 {
						cv = 1 / math.Sqrt2
					}

					sum += cu * cv / 4 * float64(in[v*8+u]) *
						math.Cos(float64(2*x+1)*float64(u)*math.Pi/16) *
						math.Cos(float64(2*y+1)*float64(v)*math.Pi/16)
				}
			}
			out[y*8+x] = int(math.Floor(sum + 0.5))
		}
	}

	return out
}

// idctPassFull is idctPass without the DC shortcut.
func idctPassFull(src, dst *block) {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			var sum int32
			for z := 0; z < 8; z++ {
				sum += int32(src[z*8+y]) * int32(idctMatrix[z*8+x]>>3)
			}
			dst[y*8+x] = int16((sum + 0x0fff) >> 13)
		}
	}
}

// printBlock formats an 8x8 block for readable test output.
func printBlock(blk *block) string {
	var sb strings.Builder

	for i := 0; i < 64; i++ {
		if i > 0 && i%8 == 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%5d", blk[i]))
	}

	return sb.String()
}

// lcg is a tiny deterministic generator for test blocks.
type lcg uint32

func (l *lcg) next() int {
	*l = *l*1103515245 + 12345
	return int(*l>>16) & 0x7fff
}

func randomBlocks(n int) []block {
	seed := lcg(1)
	blocks := make([]block, n)

	for b := range blocks {
		for i := 0; i < 16; i++ {
			idx := seed.next() % 64
			blocks[b][idx] = int16(seed.next()%1024 - 512)
		}
	}

	return blocks
}

func TestIDCTDC(t *testing.T) {
	tests := []struct {
		dc   int16
		want int16
	}{
		{0, 0},
		{80, 10},
		{-80, -10},
		{8, 1},
	}

	for _, tt := range tests {
		blk := block{0: tt.dc}
		idct(&blk)

		for i, v := range blk {
			if v != tt.want {
				t.Errorf("dc %d: sample %d: got %d, want %d\n%s", tt.dc, i, v, tt.want, printBlock(&blk))
				break
			}
		}
	}
}

func TestIDCTReference(t *testing.T) {
	for n, in := range randomBlocks(64) {
		want := referenceIDCT(&in)

		got := in
		idct(&got)

		for i := range got {
			if d := int(got[i]) - want[i]; d < -1 || d > 1 {
				t.Errorf("block %d: sample %d: got %d, want %d +-1\n%s", n, i, got[i], want[i], printBlock(&got))
				break
			}
		}
	}
}

func TestIDCTShortcut(t *testing.T) {
	blocks := randomBlocks(16)
	// Columns with only DC take the shortcut
	blocks = append(blocks, block{0: 100, 1: -40, 7: 12}, block{0: -16384, 3: 16383})

	for n, in := range blocks {
		got := in
		idct(&got)

		var tmp block
		want := in
		idctPassFull(&want, &tmp)
		idctPassFull(&tmp, &want)

		if got != want {
			t.Errorf("block %d: got\n%s\nwant\n%s", n, printBlock(&got), printBlock(&want))
		}
	}
}

func TestIDCTRowCoefficient(t *testing.T) {
	// A horizontal frequency varies along rows only, every row is the same
	blk := block{0: 64, 1: 100}
	idct(&blk)

	for y := 1; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if blk[y*8+x] != blk[x] {
				t.Fatalf("row %d differs from row 0\n%s", y, printBlock(&blk))
			}
		}
	}

	if blk[0] <= blk[7] {
		t.Errorf("samples: got %d <= %d, want a decreasing row\n%s", blk[0], blk[7], printBlock(&blk))
	}
}

func BenchmarkIDCT(b *testing.B) {
	blocks := randomBlocks(64)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		blk := blocks[i%len(blocks)]
		idct(&blk)
	}
}
