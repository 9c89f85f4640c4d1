package pixfmt

import (
	"math"
	"math/bits"
)

// MaxDimension is the largest width, height or depth decoders accept.
const MaxDimension = 1 << 16

// AlignUp rounds n up to the next multiple of align. align <= 1 returns n.
func AlignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}

// BlocksWide returns the number of block columns covering width pixels.
func (f Format) BlocksWide(width int) int {
	if width <= 0 {
		return 0
	}
	bw := f.Descriptor().BlockWidth
	return ceilDiv(width, bw)
}

// BlocksHigh returns the number of block rows covering height pixels.
func (f Format) BlocksHigh(height int) int {
	if height <= 0 {
		return 0
	}
	bh := f.Descriptor().BlockHeight
	return ceilDiv(height, bh)
}

// Pitch returns the aligned byte length of one row of blocks.
func (f Format) Pitch(width int) int {
	d := f.Descriptor()
	return AlignUp(d.BlockBytes*f.BlocksWide(width), d.RowAlignment)
}

func ceilDiv(n, d int) int {
	q := n / d
	if n%d != 0 {
		q++
	}
	return q
}

// SurfaceSize returns the byte size of a width x height plane in f.
func (f Format) SurfaceSize(width, height int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	return f.Pitch(width) * f.BlocksHigh(height)
}

// CheckedSize is SurfaceSize with overflow detection. ok is false when the
// plane cannot be addressed with an int.
func (f Format) CheckedSize(width, height int) (size int, ok bool) {
	if width <= 0 || height <= 0 {
		return 0, true
	}
	d := f.Descriptor()
	if d.BlockBytes == 0 {
		return 0, false
	}
	if f.BlocksWide(width) > (math.MaxInt-d.RowAlignment)/d.BlockBytes {
		return 0, false
	}
	hi, lo := bits.Mul(uint(f.Pitch(width)), uint(f.BlocksHigh(height)))
	if hi != 0 || lo > math.MaxInt {
		return 0, false
	}
	return int(lo), true
}

// LevelDim returns the extent of a dimension at the given mip level.
func LevelDim(length, mip int) int {
	if mip < 0 || mip >= bits.UintSize {
		return 1
	}
	return max(1, length>>mip)
}

// MipLevels returns the length of a full mip chain for a width x height
// image: 1 + floor(log2(max(width, height))). Degenerate sizes give 1.
func MipLevels(width, height int) int {
	m := max(width, height)
	if m <= 1 {
		return 1
	}
	return bits.Len(uint(m))
}
