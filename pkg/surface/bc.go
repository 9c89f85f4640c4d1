package surface

import "github.com/EchoTools/nitxtools/pkg/pixfmt"

// Vertical flips inside DXT blocks. Each function reverses the first rows
// scanlines encoded in one block; rows is 4 except for surfaces shorter than
// a block.
//
// Block layouts:
//
//	DXT1: color0 u16, color1 u16, 4 row bytes of 2-bit indices
//	DXT3: 4 rows x u16 of 4-bit explicit alpha, then a DXT1 color block
//	DXT5: alpha0 u8, alpha1 u8, 48 bits of 3-bit alpha indices stored as two
//	      24-bit fields (rows 0-1, rows 2-3), then a DXT1 color block

type blockFlipFunc func(block []byte, rows int)

func blockFlipper(f pixfmt.Format) blockFlipFunc {
	switch f {
	case pixfmt.DXT1:
		return flipDXT1Block
	case pixfmt.DXT3:
		return flipDXT3Block
	case pixfmt.DXT5:
		return flipDXT5Block
	}
	return nil
}

func flipDXT1Block(b []byte, rows int) {
	flipColorRows(b[:8], rows)
}

func flipDXT3Block(b []byte, rows int) {
	flipExplicitAlpha(b[:8], rows)
	flipColorRows(b[8:16], rows)
}

func flipDXT5Block(b []byte, rows int) {
	flipAlphaIndices(b[:8], rows)
	flipColorRows(b[8:16], rows)
}

// flipColorRows reverses the index bytes of a color block.
func flipColorRows(b []byte, rows int) {
	for i, j := 0, rows-1; i < j; i, j = i+1, j-1 {
		b[4+i], b[4+j] = b[4+j], b[4+i]
	}
}

// flipExplicitAlpha reverses the 16-bit alpha rows of a DXT3 block.
func flipExplicitAlpha(b []byte, rows int) {
	for i, j := 0, rows-1; i < j; i, j = i+1, j-1 {
		b[2*i], b[2*j] = b[2*j], b[2*i]
		b[2*i+1], b[2*j+1] = b[2*j+1], b[2*i+1]
	}
}

// flipAlphaIndices unpacks the sixteen 3-bit indices of a DXT5 alpha block
// into a grid, reverses the rows and packs them back.
func flipAlphaIndices(b []byte, rows int) {
	grid := unpackAlphaIndices(b)
	for i, j := 0, rows-1; i < j; i, j = i+1, j-1 {
		grid[i], grid[j] = grid[j], grid[i]
	}
	packAlphaIndices(b, grid)
}

func unpackAlphaIndices(b []byte) [4][4]uint8 {
	var grid [4][4]uint8
	for half := range 2 {
		field := uint32(b[2+3*half]) | uint32(b[3+3*half])<<8 | uint32(b[4+3*half])<<16
		for i := range 8 {
			grid[2*half+i/4][i%4] = uint8(field>>(3*i)) & 0x7
		}
	}
	return grid
}

func packAlphaIndices(b []byte, grid [4][4]uint8) {
	for half := range 2 {
		var field uint32
		for i := range 8 {
			field |= uint32(grid[2*half+i/4][i%4]&0x7) << (3 * i)
		}
		b[2+3*half] = byte(field)
		b[3+3*half] = byte(field >> 8)
		b[4+3*half] = byte(field >> 16)
	}
}
