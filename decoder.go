package mdec

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Decoder decodes MDEC frames from a Buffer into RGB frames.
type Decoder struct {
	buf *Buffer

	width  int
	height int

	mbWidth  int
	mbHeight int
	mbSize   int

	workers       int
	framesDecoded int
}

// NewDecoder creates a decoder for frames of width x height pixels with buf as a source.
func NewDecoder(buf *Buffer, width, height int, opts ...*Options) (*Decoder, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidInputSize, "frame size %dx%d", width, height)
	}

	d := &Decoder{}
	d.buf = buf
	d.width = width
	d.height = height

	d.mbWidth = (width + 15) >> 4
	d.mbHeight = (height + 15) >> 4
	d.mbSize = d.mbWidth * d.mbHeight

	if len(opts) > 0 && opts[0] != nil {
		d.workers = opts[0].Workers
	}

	return d, nil
}

// Buffer returns decoder buffer.
func (d *Decoder) Buffer() *Buffer {
	return d.buf
}

// Width returns the frame width.
func (d *Decoder) Width() int {
	return d.width
}

// Height returns the frame height.
func (d *Decoder) Height() int {
	return d.height
}

// HasEnded checks whether there are no more words to decode.
func (d *Decoder) HasEnded() bool {
	return !d.buf.has(1)
}

// Decode decodes and returns one frame.
//
// Macroblocks are decoded until the frame is full or the stream ends. A macroblock that runs
// past the end of the stream is dropped, regions without a decoded macroblock stay black.
// Words after a full frame are left in the buffer for the next call.
func (d *Decoder) Decode() (*Frame, error) {
	var patches []*patch
	var err error

	if d.workers > 1 {
		patches, err = d.decodePatchesParallel()
	} else {
		patches, err = d.decodePatches()
	}
	if err != nil {
		return nil, err
	}

	frame := newFrame(d.width, d.height)
	frame.Index = d.framesDecoded
	frame.Macroblocks = len(patches)
	frame.Truncated = len(patches) < d.mbSize

	for i, p := range patches {
		frame.placePatch(i, d.mbHeight, p)
	}

	d.framesDecoded++

	return frame, nil
}

// decodePatches decodes macroblocks in stream order until the frame is full or the stream ends.
func (d *Decoder) decodePatches() ([]*patch, error) {
	patches := make([]*patch, 0, d.mbSize)

	for len(patches) < d.mbSize && d.buf.has(1) {
		p, err := d.decodeMacroblock()
		if err != nil {
			if errors.Is(err, ErrEndOfStream) {
				break
			}

			return nil, err
		}

		patches = append(patches, p)
	}

	return patches, nil
}

// decodePatchesParallel reads the coefficients of all macroblocks first, the cursor of the
// buffer allows no other order, then transforms them on d.workers goroutines.
func (d *Decoder) decodePatchesParallel() ([]*patch, error) {
	mbs := make([]macroblock, 0, d.mbSize)

	for len(mbs) < d.mbSize && d.buf.has(1) {
		mbs = mbs[:len(mbs)+1]

		err := d.readMacroblock(&mbs[len(mbs)-1])
		if err != nil {
			mbs = mbs[:len(mbs)-1]

			if errors.Is(err, ErrEndOfStream) {
				break
			}

			return nil, err
		}
	}

	patches := make([]*patch, len(mbs))

	var next atomic.Int32
	var wg sync.WaitGroup

	for w := 0; w < d.workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for {
				i := int(next.Add(1)) - 1
				if i >= len(mbs) {
					return
				}

				p := &patch{}
				mbs[i].transform(p)
				patches[i] = p
			}
		}()
	}

	wg.Wait()

	return patches, nil
}
