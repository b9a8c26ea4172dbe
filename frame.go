package mdec

import (
	"image"
	"image/color"
	"unsafe"
)

// Frame represents decoded frame.
// Pix holds RGB24 pixels, row-major from top to bottom, 3 bytes (R, G, B) per pixel.
type Frame struct {
	// Index is the number of frames decoded before this one by the same Decoder.
	Index int

	Width  int
	Height int
	Stride int

	// Macroblocks is the number of macroblocks decoded into the frame.
	Macroblocks int
	// Truncated is set when the stream ended before the frame was full.
	Truncated bool

	Pix []byte

	imRGBA image.RGBA
}

func newFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Stride: width * 3,
		Pix:    make([]byte, width*height*3),
	}
}

// ColorModel returns the frame color model.
func (f *Frame) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds returns the domain for which At can return non-zero color.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// At returns the color of the pixel at (x, y).
func (f *Frame) At(x, y int) color.Color {
	return f.RGBAAt(x, y)
}

// RGBAAt returns the color of the pixel at (x, y) as color.RGBA.
func (f *Frame) RGBAAt(x, y int) color.RGBA {
	if !(image.Point{X: x, Y: y}.In(f.Bounds())) {
		return color.RGBA{}
	}

	i := y*f.Stride + x*3

	return color.RGBA{R: f.Pix[i], G: f.Pix[i+1], B: f.Pix[i+2], A: 0xff}
}

// Opaque reports that the frame has no transparent pixels.
func (f *Frame) Opaque() bool {
	return true
}

// RGBA returns frame as image.RGBA.
func (f *Frame) RGBA() *image.RGBA {
	if f.imRGBA.Pix == nil {
		f.imRGBA = image.RGBA{
			Pix:    make([]byte, f.Width*f.Height*4),
			Stride: 4 * f.Width,
			Rect:   f.Bounds(),
		}
	}

	dst := f.imRGBA.Pix
	si, di := 0, 0
	for n := f.Width * f.Height; n > 0; n-- {
		dst[di+0] = f.Pix[si+0]
		dst[di+1] = f.Pix[si+1]
		dst[di+2] = f.Pix[si+2]
		dst[di+3] = 0xff

		si += 3
		di += 4
	}

	return &f.imRGBA
}

// Pixels returns frame as slice of color.RGBA.
func (f *Frame) Pixels() []color.RGBA {
	img := f.RGBA()
	return unsafe.Slice((*color.RGBA)(unsafe.Pointer(&img.Pix[0])), len(img.Pix)/4)
}

// placePatch copies the patch of the i-th macroblock in stream order into the frame.
// Macroblocks fill the frame column by column, perColumn macroblocks each,
// the parts of a patch outside the frame are clipped.
func (f *Frame) placePatch(i, perColumn int, p *patch) {
	px := (i / perColumn) * macroblockSize
	py := (i % perColumn) * macroblockSize

	w := f.Width - px
	if w <= 0 {
		return
	}
	if w > macroblockSize {
		w = macroblockSize
	}

	for y := 0; y < macroblockSize && py+y < f.Height; y++ {
		si := y * macroblockSize * 3
		di := (py+y)*f.Stride + px*3
		copy(f.Pix[di:di+w*3], p[si:si+w*3])
	}
}
