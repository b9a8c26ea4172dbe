// Package mdec implements a decoder for PlayStation MDEC compressed frames.
//
// An MDEC frame is a flat sequence of 16-bit code words. Every 16x16 macroblock is stored as
// six run-length coded 8x8 blocks (Cr, Cb and four Y blocks), every block starts with a DC word
// carrying the quantization scale and ends with the 0xFE00 end-of-block marker.
// Macroblocks are stored in column-major order: top to bottom, then left to right.
//
// The high-level Decode() and DecodeBytes() functions read a whole stream and return one decoded
// Frame. The lower level Buffer and Decoder can be used to decode directly from an io.Reader,
// or to decode a stream of several concatenated frames one at a time:
//
//	buf, _ := mdec.NewBuffer(file)
//	buf.SetLoadCallback(buf.LoadReaderCallback)
//
//	dec, _ := mdec.NewDecoder(buf, 320, 240)
//	for !dec.HasEnded() {
//	    frame, _ := dec.Decode()
//	    png.Encode(w, frame)
//	}
//
// Frames are decoded into a RGB24 buffer, 3 bytes per pixel. Frame implements image.Image,
// you can also convert it to image.RGBA via RGBA() function.
//
// A stream that ends in the middle of a macroblock is not an error: the incomplete macroblock
// is dropped and the regions of the frame that were not decoded are left black.
package mdec

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

var (
	// ErrEndOfStream is returned by the block decoder when a block would read past the end of the stream.
	ErrEndOfStream = errors.New("end of stream")
	// ErrInvalidInputSize is the error returned for an input that is not a whole number of words,
	// or for non-positive frame dimensions.
	ErrInvalidInputSize = errors.New("invalid input size")
)

// Options specifies decoding parameters.
type Options struct {
	// ByteOrder defines how pairs of input bytes map to code words.
	// Defaults to little-endian, the PlayStation's native word order.
	ByteOrder binary.ByteOrder
	// Workers is the number of goroutines used for the inverse transform and color conversion.
	// Values lower than 2 decode on the calling goroutine. Output does not depend on it.
	Workers int
}

// Interface to check if a reader knows its remaining length.
type readerWithLen interface {
	Len() int
}

// Decode reads a whole MDEC stream from r and decodes one frame of width x height pixels.
func Decode(r io.Reader, width, height int, opts ...*Options) (*Frame, error) {
	data, err := readAllData(r)
	if err != nil {
		return nil, err
	}

	return DecodeBytes(data, width, height, opts...)
}

// DecodeBytes decodes one frame of width x height pixels from data.
func DecodeBytes(data []byte, width, height int, opts ...*Options) (*Frame, error) {
	if len(data)%2 != 0 {
		return nil, errors.Wrapf(ErrInvalidInputSize, "%d bytes is not a whole number of words", len(data))
	}

	buf, err := Load(bytes.NewReader(data), opts...)
	if err != nil {
		return nil, err
	}

	dec, err := NewDecoder(buf, width, height, opts...)
	if err != nil {
		return nil, err
	}

	return dec.Decode()
}

// Load creates a buffer that reads its words from r as needed.
func Load(r io.Reader, opts ...*Options) (*Buffer, error) {
	buf, err := NewBuffer(r)
	if err != nil {
		return nil, err
	}

	if len(opts) > 0 && opts[0] != nil && opts[0].ByteOrder != nil {
		buf.SetByteOrder(opts[0].ByteOrder)
	}

	buf.SetLoadCallback(buf.LoadReaderCallback)

	return buf, nil
}

// readAllData reads data from r, pre-allocating if the size is known.
func readAllData(r io.Reader) ([]byte, error) {
	if rl, ok := r.(readerWithLen); ok {
		size := rl.Len()
		if size > 0 {
			data := make([]byte, size)
			_, err := io.ReadFull(r, data)
			if err != nil {
				return nil, errors.Wrap(err, "failed to read stream data")
			}

			return data, nil
		}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read stream data")
	}

	return data, nil
}
