// Package upload turns texture containers into GPU upload plans: a texture
// descriptor plus one buffer-to-texture copy per surface, expressed in the
// gputypes vocabulary shared by the gogpu backends.
package upload

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/EchoTools/nitxtools/pkg/surface"
	"github.com/EchoTools/nitxtools/pkg/texture"
)

var (
	// ErrNoGPUFormat is returned for pixel formats with no GPU equivalent.
	ErrNoGPUFormat = errors.New("pixel format has no GPU texture format")

	// ErrEmpty is returned for null containers.
	ErrEmpty = errors.New("nothing to upload")
)

// Copy is one surface to write into the texture.
type Copy struct {
	MipLevel uint32
	Origin   gputypes.Origin3D
	Layout   gputypes.TextureDataLayout
	Size     gputypes.Extent3D
	Data     []byte
}

// Plan describes how to create and fill a GPU texture for one container.
type Plan struct {
	Descriptor    gputypes.TextureDescriptor
	ViewDimension gputypes.TextureViewDimension
	Copies        []Copy
}

// Queue is the part of a GPU queue needed to execute a plan.
type Queue interface {
	WriteTexture(dst *gputypes.ImageCopyTexture, data []byte, layout *gputypes.TextureDataLayout, size *gputypes.Extent3D) error
}

// New builds the upload plan for b. Surface data is referenced, not copied;
// b must not change until the plan has been executed.
func New(b texture.Bitmap, label string) (*Plan, error) {
	if b == nil || b.IsNull() {
		return nil, ErrEmpty
	}
	gpuFormat := b.Format().GPUFormat()
	if gpuFormat == gputypes.TextureFormatUndefined {
		return nil, fmt.Errorf("%s: %w", b.Format(), ErrNoGPUFormat)
	}

	p := &Plan{
		Descriptor: gputypes.TextureDescriptor{
			Label: label,
			Size: gputypes.Extent3D{
				Width:              uint32(b.Width()),
				Height:             uint32(b.Height()),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: uint32(b.MipCount()),
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        gpuFormat,
			Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
		},
		ViewDimension: gputypes.TextureViewDimension2D,
	}

	switch b.Kind() {
	case texture.KindCubemap:
		p.Descriptor.Size.DepthOrArrayLayers = texture.FaceCount
		p.ViewDimension = gputypes.TextureViewDimensionCube
	case texture.KindVolume:
		p.Descriptor.Size.DepthOrArrayLayers = uint32(b.Depth())
		p.Descriptor.Dimension = gputypes.TextureDimension3D
		p.ViewDimension = gputypes.TextureViewDimension3D
	case texture.KindAnimated:
		p.Descriptor.Size.DepthOrArrayLayers = uint32(b.Depth())
		p.ViewDimension = gputypes.TextureViewDimension2DArray
	}

	desc := b.Format().Descriptor()
	err := b.Visit(func(slot texture.Slot, s *surface.Surface) error {
		z := slot.Layer
		if b.Kind() == texture.KindCubemap {
			z = slot.Face
		}
		p.Copies = append(p.Copies, Copy{
			MipLevel: uint32(slot.Mip),
			Origin:   gputypes.Origin3D{Z: uint32(z)},
			Layout: gputypes.TextureDataLayout{
				BytesPerRow:  uint32(s.Pitch()),
				RowsPerImage: uint32(s.BlocksHigh()),
			},
			// Block-compressed copies cover whole blocks.
			Size: gputypes.Extent3D{
				Width:              uint32(s.BlocksWide() * desc.BlockWidth),
				Height:             uint32(s.BlocksHigh() * desc.BlockHeight),
				DepthOrArrayLayers: 1,
			},
			Data: s.Bytes(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Bytes returns the total number of bytes the plan uploads.
func (p *Plan) Bytes() int {
	n := 0
	for _, c := range p.Copies {
		n += len(c.Data)
	}
	return n
}

// Execute writes every copy of the plan into tex through q.
func (p *Plan) Execute(q Queue, tex uintptr) error {
	for i := range p.Copies {
		c := &p.Copies[i]
		dst := gputypes.ImageCopyTexture{
			Texture:  tex,
			MipLevel: c.MipLevel,
			Origin:   c.Origin,
			Aspect:   gputypes.TextureAspectAll,
		}
		if err := q.WriteTexture(&dst, c.Data, &c.Layout, &c.Size); err != nil {
			return fmt.Errorf("write mip %d layer %d: %w", c.MipLevel, c.Origin.Z, err)
		}
	}
	return nil
}
