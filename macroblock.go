package mdec

const macroblockSize = 16

// patch is the RGB24 output of one macroblock, 16x16 pixels.
type patch [macroblockSize * macroblockSize * 3]byte

// macroblock holds the six blocks of a macroblock in stream order.
type macroblock struct {
	cr block
	cb block
	y  [4]block
}

// Luma blocks are stored top-left, top-right, bottom-left, bottom-right.
// Some hardware documentation lists another order, existing streams use this one.
var lumaOffsets = [4][2]int{{0, 0}, {8, 0}, {0, 8}, {8, 8}}

// readMacroblock decodes the coefficients of the six blocks of a macroblock.
// It returns ErrEndOfStream if any of the blocks is incomplete, mb must be discarded then.
func (d *Decoder) readMacroblock(mb *macroblock) error {
	if err := d.decodeBlock(blockCr, &mb.cr); err != nil {
		return err
	}

	if err := d.decodeBlock(blockCb, &mb.cb); err != nil {
		return err
	}

	for i := range mb.y {
		if err := d.decodeBlock(blockY, &mb.y[i]); err != nil {
			return err
		}
	}

	return nil
}

// transform converts the coefficients of mb into pixels. The blocks of mb are overwritten.
func (mb *macroblock) transform(dst *patch) {
	idct(&mb.cr)
	idct(&mb.cb)

	for i := range mb.y {
		idct(&mb.y[i])
		yCbCrToRGB(&mb.y[i], &mb.cb, &mb.cr, lumaOffsets[i][0], lumaOffsets[i][1], dst)
	}
}

// decodeMacroblock reads and transforms one macroblock.
func (d *Decoder) decodeMacroblock() (*patch, error) {
	var mb macroblock
	if err := d.readMacroblock(&mb); err != nil {
		return nil, err
	}

	p := &patch{}
	mb.transform(p)

	return p, nil
}
