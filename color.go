package mdec

// yCbCrToRGB converts the luma block y into RGB and writes it to the macroblock patch dst.
// xOff and yOff (0 or 8) place the luma block in the macroblock, chroma is upsampled with the
// nearest neighbor from the shared half-resolution cb and cr blocks.
func yCbCrToRGB(y, cb, cr *block, xOff, yOff int, dst *patch) {
	for py := 0; py < 8; py++ {
		cRow := ((py + yOff) >> 1) * 8
		di := ((py+yOff)*macroblockSize + xOff) * 3

		for px := 0; px < 8; px++ {
			ci := cRow + (px+xOff)>>1

			lum := float64(y[py*8+px])
			cbv := float64(cb[ci])
			crv := float64(cr[ci])

			// Products are rounded on their own, no fused multiply-add
			dst[di+0] = clampSigned9(int32(lum + float64(1.402*crv)))
			dst[di+1] = clampSigned9(int32(lum + float64(-0.3437*cbv) + float64(-0.7143*crv)))
			dst[di+2] = clampSigned9(int32(lum + float64(1.772*cbv)))

			di += 3
		}
	}
}

// clampSigned9 treats the low 9 bits of v as a signed value, clamps it to [-128, 127]
// and flips the sign bit to get an unsigned sample.
func clampSigned9(v int32) byte {
	s := int16(uint16(v)<<7) >> 7
	if s > 127 {
		s = 127
	} else if s < -128 {
		s = -128
	}

	return byte(s) ^ 0x80
}
