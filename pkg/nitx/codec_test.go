package nitx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EchoTools/nitxtools/pkg/archive"
	"github.com/EchoTools/nitxtools/pkg/pixfmt"
	"github.com/EchoTools/nitxtools/pkg/surface"
	"github.com/EchoTools/nitxtools/pkg/texture"
)

// fillPattern gives every surface deterministic content that differs per
// slot.
func fillPattern(b texture.Bitmap, seed byte) {
	_ = b.Visit(func(slot texture.Slot, s *surface.Surface) error {
		k := seed ^ byte(slot.Face<<5|slot.Mip<<3|slot.Layer)
		for i := range s.Bytes() {
			s.Bytes()[i] = k + byte(i*7)
		}
		return nil
	})
}

func roundTrip(t *testing.T, b texture.Bitmap, name string) texture.Bitmap {
	t.Helper()
	buf := archive.NewBuffer(nil)
	buf.Write([]byte("junk before the entry"))

	off, err := AppendEntry(buf, b, name)
	require.NoError(t, err)
	assert.Equal(t, int64(21), off)

	pos, err := buf.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), pos, "stream should be left at the end of the entry")

	got, err := LoadEntry(buf, off)
	require.NoError(t, err)
	return got
}

func TestRoundTrip(t *testing.T) {
	anim := texture.NewAnimated(pixfmt.RGBA8, 6, 3, 4)
	for _, ms := range []uint32{40, 80, 120, 160} {
		anim.AddFrameTime(ms)
	}

	tests := []struct {
		name string
		b    texture.Bitmap
	}{
		{"Texture2D", texture.NewTexture2D(pixfmt.RGBA8, 64, 64, 3)},
		{"Texture2DFullChain", texture.NewTexture2D(pixfmt.RGB8, 7, 3, 0)},
		{"Texture2DDXT1", texture.NewTexture2D(pixfmt.DXT1, 30, 18, 0)},
		{"Cubemap", texture.NewCubemap(pixfmt.DXT5, 16, 16, 0)},
		{"Volume", texture.NewVolume(pixfmt.L8, 9, 5, 6, 0)},
		{"Animated", anim},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fillPattern(tt.b, 0x3C)
			got := roundTrip(t, tt.b, "x")

			assert.Equal(t, tt.b.Kind(), got.Kind())
			assert.Equal(t, tt.b.Format(), got.Format())
			assert.Equal(t, tt.b.Width(), got.Width())
			assert.Equal(t, tt.b.Height(), got.Height())
			assert.Equal(t, tt.b.Depth(), got.Depth())
			assert.Equal(t, tt.b.MipCount(), got.MipCount())
			assert.True(t, texture.Equal(tt.b, got), "surface bytes differ")
		})
	}

	t.Run("FrameTimes", func(t *testing.T) {
		got := roundTrip(t, anim, "anim").(*texture.Animated)
		assert.Equal(t, []uint32{40, 80, 120, 160}, got.FrameTimes())
	})

	t.Run("MissingFrameTimesAreZero", func(t *testing.T) {
		a := texture.NewAnimated(pixfmt.A8, 2, 2, 3)
		a.AddFrameTime(15)
		got := roundTrip(t, a, "short").(*texture.Animated)
		assert.Equal(t, []uint32{15, 0, 0}, got.FrameTimes())
	})
}

func TestEntryLayout(t *testing.T) {
	tex := texture.NewTexture2D(pixfmt.RGBA8, 2, 2, 2)
	fillPattern(tex, 1)

	buf := archive.NewBuffer(nil)
	off, err := AppendEntry(buf, tex, "ab")
	require.NoError(t, err)
	require.Zero(t, off)

	data := buf.Bytes()
	u32 := func(at int) uint32 { return binary.LittleEndian.Uint32(data[at:]) }

	assert.Equal(t, uint32(3), u32(0))
	assert.Equal(t, []byte("ab\x00"), data[4:7])
	assert.Equal(t, uint32(len(data)-11), u32(7), "payload length")
	assert.Equal(t, uint32(texture.KindTexture2D), u32(11))
	assert.Equal(t, uint32(pixfmt.RGBA8), u32(15))
	assert.Equal(t, uint32(2), u32(19), "mips")
	assert.Equal(t, uint32(2), u32(23), "width")
	assert.Equal(t, uint32(2), u32(27), "height")
	assert.Equal(t, uint32(8), u32(31), "mip 0 pitch")
	assert.Equal(t, uint32(16), u32(35), "mip 0 size")
	assert.Equal(t, tex.Surface(0).Bytes(), data[39:55])
	assert.Equal(t, uint32(4), u32(55), "mip 1 pitch")
	assert.Equal(t, uint32(4), u32(59), "mip 1 size")
	assert.Len(t, data, 67)

	info, err := ReadEntryInfo(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "ab", info.Name)
	assert.Equal(t, 2, info.Records)
	assert.Equal(t, int64(20), info.DataSize)
	assert.Equal(t, int64(11), info.PayloadStart())
	assert.Equal(t, int64(67), info.End())
}

func TestEntryInfoIsolation(t *testing.T) {
	shapes := []struct {
		name   string
		format pixfmt.Format
		w, h   int
		mips   int
	}{
		{"first", pixfmt.RGBA8, 32, 16, 0},
		{"second", pixfmt.DXT3, 64, 64, 3},
		{"third", pixfmt.LA8, 5, 9, 2},
	}

	buf := archive.NewBuffer(nil)
	var infos []*EntryInfo
	for _, s := range shapes {
		tex := texture.NewTexture2D(s.format, s.w, s.h, s.mips)
		fillPattern(tex, 7)
		off, err := AppendEntry(buf, tex, s.name)
		require.NoError(t, err)
		info, err := ReadEntryInfo(buf, off)
		require.NoError(t, err)
		infos = append(infos, info)
	}

	for i, s := range shapes {
		t.Run(s.name, func(t *testing.T) {
			data := bytes.Clone(buf.Bytes())
			// Garble every payload except the one under test.
			for j, other := range infos {
				if j == i {
					continue
				}
				for k := other.PayloadStart(); k < other.End(); k++ {
					data[k] ^= 0xA5
				}
			}

			info, err := ReadEntryInfo(archive.NewBuffer(data), infos[i].Offset)
			require.NoError(t, err)
			assert.Equal(t, s.name, info.Name)
			assert.Equal(t, s.format, info.Format)
			assert.Equal(t, s.w, info.Width)
			assert.Equal(t, s.h, info.Height)
			assert.Equal(t, texture.ResolveMipCount(s.mips, s.w, s.h), info.MipCount)
			assert.Equal(t, infos[i].DataSize, info.DataSize)

			_, err = LoadEntry(archive.NewBuffer(data), infos[i].Offset)
			assert.NoError(t, err)
		})
	}
}

func TestCorruptEntries(t *testing.T) {
	tex := texture.NewTexture2D(pixfmt.RGBA8, 8, 8, 2)
	fillPattern(tex, 2)
	buf := archive.NewBuffer(nil)
	_, err := AppendEntry(buf, tex, "tex")
	require.NoError(t, err)
	clean := buf.Bytes()

	const (
		nameLenAt    = 0
		payloadLenAt = 8
		kindAt       = 12
		formatAt     = 16
		mipsAt       = 20
		widthAt      = 24
		pitchAt      = 32
		sizeAt       = 36
	)

	mutate := func(at int, v uint32) []byte {
		d := bytes.Clone(clean)
		binary.LittleEndian.PutUint32(d[at:], v)
		return d
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"Empty", nil},
		{"TruncatedHeader", clean[:10]},
		{"TruncatedPayload", clean[:len(clean)-1]},
		{"ZeroNameLength", mutate(nameLenAt, 0)},
		{"HugeNameLength", mutate(nameLenAt, 1<<30)},
		{"Unterminated", func() []byte { d := bytes.Clone(clean); d[7] = 'x'; return d }()},
		{"PayloadTooLong", mutate(payloadLenAt, uint32(len(clean)))},
		{"PayloadTooShort", mutate(payloadLenAt, uint32(len(clean)-12-4))},
		{"PayloadWithTrailingBytes", append(mutate(payloadLenAt, uint32(len(clean)-12+4)), 0, 0, 0, 0)},
		{"UnknownKind", mutate(kindAt, 9)},
		{"UnknownFormat", mutate(formatAt, 200)},
		{"ZeroMips", mutate(mipsAt, 0)},
		{"TooManyMips", mutate(mipsAt, 5)},
		{"ZeroWidth", mutate(widthAt, 0)},
		{"HugeWidth", mutate(widthAt, 1<<20)},
		{"ZeroPitch", mutate(pitchAt, 0)},
		{"SizeTooSmall", mutate(sizeAt, 16)},
		{"SizePastPayload", mutate(sizeAt, 1<<20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := LoadEntry(archive.NewBuffer(bytes.Clone(tt.data)), 0)
			assert.Nil(t, b)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCorruptEntry), "got %v", err)
		})
	}

	t.Run("InfoAgreesOnStructure", func(t *testing.T) {
		for _, name := range []string{"TruncatedPayload", "UnknownKind", "PayloadTooShort", "SizePastPayload"} {
			for _, tt := range tests {
				if tt.name != name {
					continue
				}
				_, err := ReadEntryInfo(archive.NewBuffer(bytes.Clone(tt.data)), 0)
				assert.ErrorIs(t, err, ErrCorruptEntry, name)
			}
		}
	})
}

func TestLoadNarrowerStoredPitch(t *testing.T) {
	// An L8 3x2 surface stored with tight 3-byte rows instead of the
	// 4-byte aligned rows this package allocates.
	var raw []byte
	le := func(v uint32) { raw = binary.LittleEndian.AppendUint32(raw, v) }
	le(2)
	raw = append(raw, 'p', 0)
	le(0) // patched below
	start := len(raw)
	le(uint32(texture.KindTexture2D))
	le(uint32(pixfmt.L8))
	le(1)
	le(3)
	le(2)
	le(3) // pitch
	le(6) // size
	raw = append(raw, 1, 2, 3, 4, 5, 6)
	binary.LittleEndian.PutUint32(raw[start-4:], uint32(len(raw)-start))

	b, err := LoadEntry(archive.NewBuffer(raw), 0)
	require.NoError(t, err)
	s := b.(*texture.Texture2D).Surface(0)
	assert.Equal(t, 4, s.Pitch())
	assert.Equal(t, []byte{1, 2, 3, 0, 4, 5, 6, 0}, s.Bytes())
}

func TestAppendEntryRejects(t *testing.T) {
	buf := archive.NewBuffer(nil)

	_, err := AppendEntry(buf, texture.NewTexture2D(pixfmt.RGBA8, 0, 4, 0), "null")
	assert.ErrorIs(t, err, ErrNullBitmap)

	_, err = AppendEntry(buf, nil, "nil")
	assert.ErrorIs(t, err, ErrNullBitmap)

	_, err = AppendEntry(buf, texture.NewTexture2D(pixfmt.RGBA8, 1, 1, 0), string(make([]byte, MaxNameLength)))
	assert.Error(t, err)

	assert.Zero(t, buf.Len())
}
