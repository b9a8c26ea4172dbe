package mdec

// blockKind selects the quantization matrix of a block.
type blockKind int

const (
	blockCr blockKind = iota
	blockCb
	blockY
)

func (k blockKind) String() string {
	switch k {
	case blockCr:
		return "Cr"
	case blockCb:
		return "Cb"
	case blockY:
		return "Y"
	}

	return "unknown"
}

// quantMatrix returns the quantization matrix for the block kind.
// Cr and Cb share the chroma matrix, all Y blocks use the luma matrix.
func (k blockKind) quantMatrix() *[64]byte {
	if k == blockY {
		return &lumaQuantMatrix
	}

	return &chromaQuantMatrix
}

// block is an 8x8 matrix in natural (row-major) order. It holds dequantized coefficients
// after decodeBlock and spatial samples after idct. Values are 16 bits wide, like the
// registers of the hardware decoder.
type block [64]int16

const (
	levelMin = -0x4000
	levelMax = 0x3fff
)

// decodeBlock reads one run-length coded block from the buffer into blk.
// It returns ErrEndOfStream when the stream ends before the block is complete,
// the contents of blk are undefined in that case.
func (d *Decoder) decodeBlock(kind blockKind, blk *block) error {
	quantMatrix := kind.quantMatrix()

	*blk = block{}

	// Skip stuffing before the block
	n, err := d.buf.next()
	for err == nil && n == stuffing {
		n, err = d.buf.next()
	}
	if err != nil {
		return err
	}

	// DC coefficient, the top 6 bits hold the quantization scale of this block
	qScale := int32(n >> 10)
	blk[videoZigZag[0]] = dequantizeDC(n, quantMatrix[0])

	// AC coefficients
	for k := 1; ; {
		n, err = d.buf.next()
		if err != nil {
			return err
		}

		// end_of_block
		if n == stuffing {
			return nil
		}

		k += int(n >> 10)
		if k >= 64 {
			return nil
		}

		blk[videoZigZag[k]] = dequantizeAC(n, quantMatrix[k], qScale)

		k++
		if k >= 64 {
			return nil
		}
	}
}

// dequantizeDC scales the 10-bit DC level of a code word.
func dequantizeDC(n uint16, quant byte) int16 {
	level := signExtend10(n)

	var c int32
	if quant == 0 {
		c = level << 1
	} else {
		c = level * int32(quant)
	}

	return clipLevel(c)
}

// dequantizeAC scales the 10-bit AC level of a code word by the matrix entry and the block's
// quantization scale, rounding the result of the division by 8.
func dequantizeAC(n uint16, quant byte, qScale int32) int16 {
	level := signExtend10(n)

	var c int32
	if q := int32(quant) * qScale; q == 0 {
		c = level << 1
	} else {
		c = (level*q + 4) >> 3
	}

	return clipLevel(c)
}

// signExtend10 returns the low 10 bits of n as a signed value in [-512, 511].
func signExtend10(n uint16) int32 {
	return int32(int16(n<<6) >> 6)
}

func clipLevel(c int32) int16 {
	if c > levelMax {
		c = levelMax
	} else if c < levelMin {
		c = levelMin
	}

	return int16(c)
}

// videoZigZag maps the zigzag scan index to the natural position in the block.
var videoZigZag = [64]byte{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// Quantization matrices are indexed by zigzag scan index, the order the hardware receives them in.

var lumaQuantMatrix = [64]byte{
	2, 16, 19, 22, 26, 27, 29, 34,
	16, 16, 22, 24, 27, 29, 34, 37,
	19, 22, 26, 27, 29, 34, 34, 38,
	22, 22, 26, 27, 29, 34, 37, 40,
	22, 26, 27, 29, 32, 35, 40, 48,
	26, 27, 29, 32, 35, 40, 48, 58,
	26, 27, 29, 34, 38, 46, 56, 69,
	27, 29, 35, 38, 46, 56, 69, 83,
}

var chromaQuantMatrix = [64]byte{
	2, 16, 19, 22, 26, 27, 29, 34,
	16, 16, 22, 24, 27, 29, 34, 37,
	19, 22, 26, 27, 29, 34, 34, 38,
	22, 22, 26, 27, 29, 34, 37, 40,
	22, 26, 27, 29, 32, 35, 40, 48,
	26, 27, 29, 32, 35, 40, 48, 58,
	26, 27, 29, 34, 38, 46, 56, 69,
	27, 29, 35, 38, 46, 56, 69, 83,
}
