package nitx

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/EchoTools/nitxtools/pkg/pixfmt"
	"github.com/EchoTools/nitxtools/pkg/surface"
	"github.com/EchoTools/nitxtools/pkg/texture"
)

// Decoder limits. Anything larger is treated as corruption.
const (
	MaxNameLength = 4096                // including the terminator
	MaxDimension  = pixfmt.MaxDimension // width, height and depth
)

// maxExpansion bounds the allocated footprint of an entry relative to its
// payload. Stored rows may be as narrow as the unpadded row while the
// destination rows are padded to a 4-byte alignment.
const maxExpansion = 4

// EntryInfo describes one entry without its pixel data.
type EntryInfo struct {
	Name          string
	Offset        int64  // where the entry starts
	PayloadLength uint32 // bytes after the payload length field
	Kind          texture.Kind
	Format        pixfmt.Format
	MipCount      int
	Width         int
	Height        int
	Depth         int      // slices or frames; 1 for Texture2D and Cubemap
	FrameTimes    []uint32 // Animated only
	Records       int      // number of (pitch, size, bytes) records
	DataSize      int64    // sum of all record sizes
}

// PayloadStart returns the offset of the first payload byte.
func (e *EntryInfo) PayloadStart() int64 {
	return e.Offset + 4 + int64(len(e.Name)+1) + 4
}

// End returns the offset just past the entry.
func (e *EntryInfo) End() int64 {
	return e.PayloadStart() + int64(e.PayloadLength)
}

// entryWriter is a sticky-error little-endian writer.
type entryWriter struct {
	w       io.Writer
	err     error
	scratch [4]byte
}

func (ew *entryWriter) u32(v uint32) {
	binary.LittleEndian.PutUint32(ew.scratch[:], v)
	ew.write(ew.scratch[:])
}

func (ew *entryWriter) write(p []byte) {
	if ew.err != nil {
		return
	}
	_, ew.err = ew.w.Write(p)
}

type frameTimer interface {
	FrameTime(i int) (uint32, bool)
}

// AppendEntry writes b to the end of ws under name and returns the offset
// the entry starts at. The payload length is written as a placeholder and
// patched once the payload is complete; ws is left positioned at the end of
// the entry.
func AppendEntry(ws io.WriteSeeker, b texture.Bitmap, name string) (int64, error) {
	if b == nil || b.IsNull() {
		return 0, fmt.Errorf("append %q: %w", name, ErrNullBitmap)
	}
	if len(name)+1 > MaxNameLength {
		return 0, fmt.Errorf("append %q: name longer than %d bytes", name, MaxNameLength-1)
	}

	offset, err := ws.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("seek to end: %w", err)
	}
	payloadStart := offset + 4 + int64(len(name)+1) + 4

	bw := bufio.NewWriter(ws)
	ew := &entryWriter{w: bw}

	ew.u32(uint32(len(name) + 1))
	ew.write([]byte(name))
	ew.write([]byte{0})
	ew.u32(0) // payload length placeholder

	ew.u32(uint32(b.Kind()))
	ew.u32(uint32(b.Format()))
	ew.u32(uint32(b.MipCount()))
	ew.u32(uint32(b.Width()))
	ew.u32(uint32(b.Height()))
	if hasDepth(b.Kind()) {
		ew.u32(uint32(b.Depth()))
	}
	if b.Kind() == texture.KindAnimated {
		ft, _ := b.(frameTimer)
		for i := range b.Depth() {
			var ms uint32
			if ft != nil {
				ms, _ = ft.FrameTime(i)
			}
			ew.u32(ms)
		}
	}

	_ = b.Visit(func(_ texture.Slot, s *surface.Surface) error {
		ew.u32(uint32(s.Pitch()))
		ew.u32(uint32(s.Size()))
		ew.write(s.Bytes())
		return ew.err
	})
	if ew.err == nil {
		ew.err = bw.Flush()
	}
	if ew.err != nil {
		return 0, fmt.Errorf("write entry %q: %w", name, ew.err)
	}

	end, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("get position: %w", err)
	}
	payloadLen := end - payloadStart
	if payloadLen > math.MaxUint32 {
		return 0, fmt.Errorf("entry %q: payload of %d bytes does not fit the length field", name, payloadLen)
	}

	// Patch the placeholder, then return to the end of the entry.
	if _, err := ws.Seek(payloadStart-4, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek to payload length: %w", err)
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(payloadLen))
	if _, err := ws.Write(lenBuf[:]); err != nil {
		return 0, fmt.Errorf("write payload length: %w", err)
	}
	if _, err := ws.Seek(end, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek to end: %w", err)
	}

	Logger().Debug("appended entry",
		"name", name,
		"kind", b.Kind(),
		"format", b.Format(),
		"offset", offset,
		"payload", payloadLen)
	return offset, nil
}

func hasDepth(k texture.Kind) bool {
	return k == texture.KindVolume || k == texture.KindAnimated
}

// entryReader is a sticky-error little-endian reader. After the first
// failure every call is a no-op.
type entryReader struct {
	r       io.ReadSeeker
	err     error
	scratch [4]byte
	buf     []byte
}

func (er *entryReader) u32() uint32 {
	if er.err != nil {
		return 0
	}
	if _, err := io.ReadFull(er.r, er.scratch[:]); err != nil {
		er.err = err
		return 0
	}
	return binary.LittleEndian.Uint32(er.scratch[:])
}

// bytes reads n bytes into a reused buffer.
func (er *entryReader) bytes(n int) []byte {
	if er.err != nil {
		return nil
	}
	if cap(er.buf) < n {
		er.buf = make([]byte, n)
	}
	p := er.buf[:n]
	if _, err := io.ReadFull(er.r, p); err != nil {
		er.err = err
		return nil
	}
	return p
}

func (er *entryReader) skip(n int64) {
	if er.err != nil {
		return
	}
	_, er.err = er.r.Seek(n, io.SeekCurrent)
}

func (er *entryReader) tell() int64 {
	if er.err != nil {
		return -1
	}
	pos, err := er.r.Seek(0, io.SeekCurrent)
	if err != nil {
		er.err = err
		return -1
	}
	return pos
}

func (er *entryReader) seek(off int64) {
	if er.err != nil {
		return
	}
	_, er.err = er.r.Seek(off, io.SeekStart)
}

func corrupt(offset int64, format string, args ...any) error {
	return fmt.Errorf("entry at %d: %w: %s", offset, ErrCorruptEntry, fmt.Sprintf(format, args...))
}

func corruptIO(offset int64, what string, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("entry at %d: %w: %s: %w", offset, ErrCorruptEntry, what, err)
}

// readHeader reads everything before the first record and validates it.
func readHeader(er *entryReader, offset int64) (*EntryInfo, error) {
	er.seek(offset)
	nameLen := er.u32()
	if er.err != nil {
		return nil, corruptIO(offset, "name length", er.err)
	}
	if nameLen == 0 || nameLen > MaxNameLength {
		return nil, corrupt(offset, "name length %d", nameLen)
	}
	name := er.bytes(int(nameLen))
	if er.err != nil {
		return nil, corruptIO(offset, "name", er.err)
	}
	if name[nameLen-1] != 0 {
		return nil, corrupt(offset, "name is not terminated")
	}

	info := &EntryInfo{
		Name:   string(name[:nameLen-1]),
		Offset: offset,
	}
	info.PayloadLength = er.u32()
	start := er.tell()
	if er.err != nil {
		return nil, corruptIO(offset, "payload length", er.err)
	}

	streamEnd, err := er.r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, corruptIO(offset, "stream size", err)
	}
	if start+int64(info.PayloadLength) > streamEnd {
		return nil, corrupt(offset, "payload of %d bytes runs past the end of the stream", info.PayloadLength)
	}
	er.seek(start)

	info.Kind = texture.Kind(er.u32())
	info.Format = pixfmt.Format(er.u32())
	info.MipCount = int(er.u32())
	info.Width = int(er.u32())
	info.Height = int(er.u32())
	info.Depth = 1
	if hasDepth(info.Kind) {
		info.Depth = int(er.u32())
	}
	if er.err != nil {
		return nil, corruptIO(offset, "payload header", er.err)
	}

	switch info.Kind {
	case texture.KindTexture2D, texture.KindCubemap, texture.KindVolume, texture.KindAnimated:
	default:
		return nil, corrupt(offset, "unknown kind %d", uint32(info.Kind))
	}
	if !info.Format.Valid() {
		return nil, corrupt(offset, "unknown format %d", uint32(info.Format))
	}
	if info.Width < 1 || info.Width > MaxDimension || info.Height < 1 || info.Height > MaxDimension {
		return nil, corrupt(offset, "dimensions %dx%d", info.Width, info.Height)
	}
	if info.Depth < 1 || info.Depth > MaxDimension {
		return nil, corrupt(offset, "depth %d", info.Depth)
	}
	if info.MipCount < 1 || info.MipCount > pixfmt.MipLevels(info.Width, info.Height) {
		return nil, corrupt(offset, "%d mips for %dx%d", info.MipCount, info.Width, info.Height)
	}
	if info.Kind == texture.KindAnimated && info.MipCount != 1 {
		return nil, corrupt(offset, "animated entry with %d mips", info.MipCount)
	}

	if info.Kind == texture.KindAnimated {
		if int64(info.Depth)*4 > int64(info.PayloadLength) {
			return nil, corrupt(offset, "%d frame times exceed the payload", info.Depth)
		}
		info.FrameTimes = make([]uint32, info.Depth)
		for i := range info.FrameTimes {
			info.FrameTimes[i] = er.u32()
		}
		if er.err != nil {
			return nil, corruptIO(offset, "frame times", er.err)
		}
	}

	var footprint int64
	eachRecord(info, func(mip int) {
		info.Records++
		footprint += int64(info.Format.SurfaceSize(pixfmt.LevelDim(info.Width, mip), pixfmt.LevelDim(info.Height, mip)))
	})
	if int64(info.Records)*8 > int64(info.PayloadLength) {
		return nil, corrupt(offset, "%d records do not fit a %d byte payload", info.Records, info.PayloadLength)
	}
	if footprint > maxExpansion*int64(info.PayloadLength) {
		return nil, corrupt(offset, "%d bytes of surfaces do not fit a %d byte payload", footprint, info.PayloadLength)
	}
	return info, nil
}

// eachRecord calls fn with the mip level of every record, in storage order.
func eachRecord(info *EntryInfo, fn func(mip int)) {
	switch info.Kind {
	case texture.KindTexture2D:
		for m := range info.MipCount {
			fn(m)
		}
	case texture.KindCubemap:
		for range texture.FaceCount {
			for m := range info.MipCount {
				fn(m)
			}
		}
	case texture.KindVolume:
		for m := range info.MipCount {
			for range pixfmt.LevelDim(info.Depth, m) {
				fn(m)
			}
		}
	case texture.KindAnimated:
		for range info.Depth {
			fn(0)
		}
	}
}

// allocate builds an empty container matching info.
func allocate(info *EntryInfo) texture.Bitmap {
	switch info.Kind {
	case texture.KindCubemap:
		return texture.NewCubemap(info.Format, info.Width, info.Height, info.MipCount)
	case texture.KindVolume:
		return texture.NewVolume(info.Format, info.Width, info.Height, info.Depth, info.MipCount)
	case texture.KindAnimated:
		a := texture.NewAnimated(info.Format, info.Width, info.Height, info.Depth)
		for _, ms := range info.FrameTimes {
			a.AddFrameTime(ms)
		}
		return a
	default:
		return texture.NewTexture2D(info.Format, info.Width, info.Height, info.MipCount)
	}
}

// LoadEntry reads the entry at offset into a freshly allocated container.
// Each stored row is copied into the destination's own row stride, taking
// the smaller of the stored and the destination pitch. Any failure returns
// a nil container and an error wrapping ErrCorruptEntry.
func LoadEntry(rs io.ReadSeeker, offset int64) (texture.Bitmap, error) {
	b, err := loadEntry(rs, offset)
	if err != nil {
		Logger().Warn("corrupt entry", "offset", offset, "error", err)
		return nil, err
	}
	return b, nil
}

func loadEntry(rs io.ReadSeeker, offset int64) (texture.Bitmap, error) {
	er := &entryReader{r: rs}
	info, err := readHeader(er, offset)
	if err != nil {
		return nil, err
	}
	end := info.End()

	b := allocate(info)
	if b.IsNull() {
		return nil, corrupt(offset, "empty %s", info.Kind)
	}

	err = b.Visit(func(slot texture.Slot, s *surface.Surface) error {
		pitch := int64(er.u32())
		size := int64(er.u32())
		pos := er.tell()
		if er.err != nil {
			return corruptIO(offset, fmt.Sprintf("record %+v", slot), er.err)
		}
		if pos+size > end {
			return corrupt(offset, "record %+v of %d bytes runs past the payload", slot, size)
		}
		rows := int64(s.BlocksHigh())
		n := min(pitch, int64(s.Pitch()))
		if pitch == 0 || (rows-1)*pitch+n > size {
			return corrupt(offset, "record %+v: pitch %d and size %d cannot hold %d rows", slot, pitch, size, rows)
		}

		src := er.bytes(int(size))
		if er.err != nil {
			return corruptIO(offset, fmt.Sprintf("record %+v", slot), er.err)
		}
		for y := range int(rows) {
			copy(s.Row(y)[:n], src[int64(y)*pitch:])
		}
		info.DataSize += size
		return nil
	})
	if err != nil {
		return nil, err
	}

	if pos := er.tell(); pos != end {
		if er.err != nil {
			return nil, corruptIO(offset, "position", er.err)
		}
		return nil, corrupt(offset, "payload ends at %d, declared end %d", pos, end)
	}

	Logger().Debug("loaded entry",
		"name", info.Name,
		"kind", info.Kind,
		"format", info.Format,
		"offset", offset,
		"bytes", info.DataSize)
	return b, nil
}

// ReadEntryInfo reads the description of the entry at offset, seeking over
// the pixel data. Only the bytes of that entry are read.
func ReadEntryInfo(rs io.ReadSeeker, offset int64) (*EntryInfo, error) {
	er := &entryReader{r: rs}
	info, err := readHeader(er, offset)
	if err != nil {
		Logger().Warn("corrupt entry", "offset", offset, "error", err)
		return nil, err
	}
	end := info.End()

	for i := range info.Records {
		er.u32() // pitch
		size := int64(er.u32())
		pos := er.tell()
		if er.err != nil {
			return nil, corruptIO(offset, fmt.Sprintf("record %d", i), er.err)
		}
		if pos+size > end {
			return nil, corrupt(offset, "record %d of %d bytes runs past the payload", i, size)
		}
		er.skip(size)
		info.DataSize += size
	}

	if pos := er.tell(); pos != end {
		if er.err != nil {
			return nil, corruptIO(offset, "position", er.err)
		}
		return nil, corrupt(offset, "payload ends at %d, declared end %d", pos, end)
	}
	return info, nil
}
