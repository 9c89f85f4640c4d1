package texture

import (
	"encoding/binary"
	"image"

	"github.com/EchoTools/nitxtools/pkg/pixfmt"
	"github.com/EchoTools/nitxtools/pkg/surface"
)

// expand565 converts a packed RGB565 color to 8 bits per channel.
func expand565(c uint16) [3]int {
	r := int(c>>11) & 0x1F
	g := int(c>>5) & 0x3F
	b := int(c) & 0x1F
	return [3]int{r<<3 | r>>2, g<<2 | g>>4, b<<3 | b>>2}
}

// colorPalette decodes the 8-byte color half of a block. opaque forces the
// four-color mode used by DXT3 and DXT5.
func colorPalette(block []byte, opaque bool) [4][4]uint8 {
	c0 := binary.LittleEndian.Uint16(block[0:2])
	c1 := binary.LittleEndian.Uint16(block[2:4])
	e0, e1 := expand565(c0), expand565(c1)

	var p [4][4]uint8
	for ch := range 3 {
		p[0][ch] = uint8(e0[ch])
		p[1][ch] = uint8(e1[ch])
		if opaque || c0 > c1 {
			p[2][ch] = uint8((2*e0[ch] + e1[ch]) / 3)
			p[3][ch] = uint8((e0[ch] + 2*e1[ch]) / 3)
		} else {
			p[2][ch] = uint8((e0[ch] + e1[ch]) / 2)
		}
	}
	p[0][3], p[1][3], p[2][3] = 255, 255, 255
	if opaque || c0 > c1 {
		p[3][3] = 255
	}
	return p
}

// alphaPalette decodes the two endpoints of a DXT5 alpha block.
func alphaPalette(a0, a1 uint8) [8]uint8 {
	var p [8]uint8
	p[0], p[1] = a0, a1
	if a0 > a1 {
		for i := 2; i < 8; i++ {
			p[i] = uint8((int(a0)*(8-i) + int(a1)*(i-1)) / 7)
		}
	} else {
		for i := 2; i < 6; i++ {
			p[i] = uint8((int(a0)*(6-i) + int(a1)*(i-1)) / 5)
		}
		p[6], p[7] = 0, 255
	}
	return p
}

// decodeBlock writes the 4x4 texels of one block into px, row-major RGBA.
func decodeBlock(f pixfmt.Format, block []byte, px *[16][4]uint8) {
	colors := block
	if f != pixfmt.DXT1 {
		colors = block[8:16]
	}
	palette := colorPalette(colors, f != pixfmt.DXT1)
	indices := binary.LittleEndian.Uint32(colors[4:8])
	for i := range 16 {
		px[i] = palette[(indices>>(2*i))&3]
	}

	switch f {
	case pixfmt.DXT3:
		for i := range 16 {
			a := (block[i/2] >> (4 * (i % 2))) & 0x0F
			px[i][3] = a<<4 | a
		}
	case pixfmt.DXT5:
		alphas := alphaPalette(block[0], block[1])
		var bits uint64
		for i := range 6 {
			bits |= uint64(block[2+i]) << (8 * i)
		}
		for i := range 16 {
			px[i][3] = alphas[(bits>>(3*i))&7]
		}
	}
}

// decodeCompressed expands a DXT surface to a non-premultiplied image.
func decodeCompressed(s *surface.Surface) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, s.Width(), s.Height()))
	bpe := s.BytesPerElement()
	var px [16][4]uint8
	for by := range s.BlocksHigh() {
		row := s.Row(by)
		for bx := range s.BlocksWide() {
			decodeBlock(s.Format(), row[bx*bpe:(bx+1)*bpe], &px)
			for i, c := range px {
				x, y := bx*4+i%4, by*4+i/4
				if x >= s.Width() || y >= s.Height() {
					continue
				}
				off := img.PixOffset(x, y)
				copy(img.Pix[off:off+4], c[:])
			}
		}
	}
	return img
}
