// Package binding builds the two bind-group layouts shared by the main
// render pipeline and every post-processing stage. The contract is
// positional: group 0 holds the frame uniform block at slot 0, the
// user uniform buffer at slot 1 when one is configured, and the push
// constant buffer at slot 2 when push constants are configured. Group 1
// holds the sampler at slot 0 followed by one texture view per bound
// texture.
package binding

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Config selects the optional layout slots.
type Config struct {
	CustomUniforms bool
	PushConstants  bool
	TextureCount   int
}

// Layouts holds the two bind-group layouts and remembers the config
// used to build them, so bind groups can be assembled to match.
type Layouts struct {
	Primary *wgpu.BindGroupLayout
	Sampler *wgpu.BindGroupLayout
	cfg     Config
}

// Validate rejects a texture count that exceeds the device's sampled
// texture limit before any GPU object is created.
func Validate(textureCount int, limit uint32) error {
	if textureCount > int(limit) {
		return fmt.Errorf("%d textures requested, device allows %d per shader stage", textureCount, limit)
	}
	return nil
}

// New builds the layouts on the given device.
func New(device *wgpu.Device, cfg Config) (*Layouts, error) {
	if err := Validate(cfg.TextureCount, device.GetLimits().Limits.MaxSampledTexturesPerShaderStage); err != nil {
		return nil, err
	}

	primaryEntries := []wgpu.BindGroupLayoutEntry{
		uniformEntry(0),
	}
	if cfg.CustomUniforms {
		primaryEntries = append(primaryEntries, uniformEntry(1))
	}
	if cfg.PushConstants {
		primaryEntries = append(primaryEntries, uniformEntry(2))
	}
	primary, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Uniform Bind Group Layout",
		Entries: primaryEntries,
	})
	if err != nil {
		return nil, err
	}

	samplerEntries := []wgpu.BindGroupLayoutEntry{
		{
			Binding:    0,
			Visibility: wgpu.ShaderStageFragment,
			Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
		},
	}
	for i := 0; i < cfg.TextureCount; i++ {
		samplerEntries = append(samplerEntries, wgpu.BindGroupLayoutEntry{
			Binding:    uint32(i + 1),
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		})
	}
	sampler, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Sampler Bind Group Layout",
		Entries: samplerEntries,
	})
	if err != nil {
		primary.Release()
		return nil, err
	}

	return &Layouts{Primary: primary, Sampler: sampler, cfg: cfg}, nil
}

func uniformEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageFragment,
		Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
	}
}

// PrimaryGroup assembles a group-0 bind group. custom and push may be
// nil when the corresponding layout slot is absent.
func (l *Layouts) PrimaryGroup(device *wgpu.Device, frame, custom, push *wgpu.Buffer) (*wgpu.BindGroup, error) {
	entries := []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: frame, Size: wgpu.WholeSize},
	}
	if l.cfg.CustomUniforms {
		entries = append(entries, wgpu.BindGroupEntry{Binding: 1, Buffer: custom, Size: wgpu.WholeSize})
	}
	if l.cfg.PushConstants {
		entries = append(entries, wgpu.BindGroupEntry{Binding: 2, Buffer: push, Size: wgpu.WholeSize})
	}
	return device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "Uniform Bind Group",
		Layout:  l.Primary,
		Entries: entries,
	})
}

// SamplerGroup assembles a group-1 bind group from the sampler and the
// texture views, in binding order.
func (l *Layouts) SamplerGroup(device *wgpu.Device, sampler *wgpu.Sampler, views []*wgpu.TextureView) (*wgpu.BindGroup, error) {
	if len(views) != l.cfg.TextureCount {
		return nil, fmt.Errorf("layout binds %d textures, got %d views", l.cfg.TextureCount, len(views))
	}
	entries := []wgpu.BindGroupEntry{
		{Binding: 0, Sampler: sampler},
	}
	for i, view := range views {
		entries = append(entries, wgpu.BindGroupEntry{Binding: uint32(i + 1), TextureView: view})
	}
	return device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "Sampler Bind Group",
		Layout:  l.Sampler,
		Entries: entries,
	})
}

// Release frees both layouts.
func (l *Layouts) Release() {
	l.Primary.Release()
	l.Sampler.Release()
}
