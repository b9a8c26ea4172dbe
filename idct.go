package mdec

// idct performs the 8x8 inverse DCT of blk in place.
//
// The transform is the fixed-point matrix multiplication of the hardware decoder: two 1D passes,
// each one multiplies by the 13-bit cosine matrix and transposes the block. Results are not
// clamped, out of range samples are resolved by the color conversion.
func idct(blk *block) {
	var tmp block

	idctPass(blk, &tmp)
	idctPass(&tmp, blk)
}

// idctPass transforms every column of src and stores it as a row of dst.
func idctPass(src, dst *block) {
	for y := 0; y < 8; y++ {
		if src[1*8+y]|src[2*8+y]|src[3*8+y]|src[4*8+y]|src[5*8+y]|src[6*8+y]|src[7*8+y] == 0 {
			// Only DC, all outputs are equal
			value := int16((int32(src[y])*int32(idctMatrix[0]>>3) + 0x0fff) >> 13)
			for x := 0; x < 8; x++ {
				dst[y*8+x] = value
			}

			continue
		}

		for x := 0; x < 8; x++ {
			var sum int32
			for z := 0; z < 8; z++ {
				sum += int32(src[z*8+y]) * int32(idctMatrix[z*8+x]>>3)
			}
			dst[y*8+x] = int16((sum + 0x0fff) >> 13)
		}
	}
}

// idctMatrix holds floor(32768 * c(z) * cos((2x+1)z*pi/16)) at z*8+x, c(0) = 1/sqrt(2) and c(z) = 1 otherwise.
var idctMatrix = [64]int16{
	23170, 23170, 23170, 23170, 23170, 23170, 23170, 23170,
	32138, 27245, 18204, 6392, -6393, -18205, -27246, -32139,
	30273, 12539, -12540, -30274, -30274, -12540, 12539, 30273,
	27245, -6393, -32139, -18205, 18204, 32138, 6392, -27246,
	23170, -23171, -23171, 23170, 23170, -23171, -23171, 23170,
	18204, -32139, 6392, 27245, -27246, -6393, 32138, -18205,
	12539, -30274, 30273, -12540, -12540, 30273, -30274, 12539,
	6392, -18205, 27245, -32139, 32138, -27246, 18204, -6393,
}
