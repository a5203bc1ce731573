// Package texture loads the images and generated inputs bound to the
// fragment program's sampler bind group.
package texture

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
)

// Texture is one sampled input. Generated inputs embed it and refresh
// their contents every frame.
type Texture struct {
	handle *wgpu.Texture
	view   *wgpu.TextureView
	width  uint32
	height uint32
}

func (t *Texture) View() *wgpu.TextureView { return t.view }
func (t *Texture) Width() uint32           { return t.width }
func (t *Texture) Height() uint32          { return t.height }

// Release frees the GPU objects.
func (t *Texture) Release() {
	t.view.Release()
	t.handle.Release()
}

// DefaultSampler builds the sampler shared by every texture binding:
// clamp to edge, linear filtering.
func DefaultSampler(device *wgpu.Device) (*wgpu.Sampler, error) {
	return device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Default Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		MaxAnisotropy: 1,
	})
}

func newTexture(device *wgpu.Device, width, height uint32, format wgpu.TextureFormat, label string) (*Texture, error) {
	handle, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	view, err := handle.CreateView(nil)
	if err != nil {
		handle.Release()
		return nil, err
	}
	return &Texture{handle: handle, view: view, width: width, height: height}, nil
}

// LoadImage decodes an image file and uploads it as an sRGB texture.
func LoadImage(device *wgpu.Device, queue *wgpu.Queue, path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening texture: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	width, height := uint32(bounds.Dx()), uint32(bounds.Dy())

	t, err := newTexture(device, width, height, wgpu.TextureFormatRGBA8UnormSrgb, path)
	if err != nil {
		return nil, err
	}
	queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture: t.handle,
			Origin:  wgpu.Origin3D{},
			Aspect:  wgpu.TextureAspectAll,
		},
		rgba.Pix,
		&wgpu.TextureDataLayout{
			BytesPerRow:  4 * width,
			RowsPerImage: height,
		},
		&wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
	)
	return t, nil
}
