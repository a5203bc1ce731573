package postprocess

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/richinsley/goshaderpaint/binding"
)

// Render target formats per output path. The screen and the two
// offscreen paths share fragment programs but not formats, so every
// stage carries a pipeline per format.
const (
	ScreenFormat   = wgpu.TextureFormatRGBA8Unorm
	PaintingFormat = wgpu.TextureFormatRGBA16Float
	MovieFormat    = wgpu.TextureFormatRGBA16Float
)

// Target selects which pipeline variant a pass runs with.
type Target int

const (
	TargetScreen Target = iota
	TargetPainting
	TargetMovie
)

func (t Target) format() wgpu.TextureFormat {
	switch t {
	case TargetPainting:
		return PaintingFormat
	case TargetMovie:
		return MovieFormat
	}
	return ScreenFormat
}

// Pipeline builds a fullscreen-triangle render pipeline against the
// given layout and color target format. The canvas uses it for the
// primary pipelines as well.
func Pipeline(device *wgpu.Device, layout *wgpu.PipelineLayout, vs, fs *wgpu.ShaderModule, format wgpu.TextureFormat, label string) (*wgpu.RenderPipeline, error) {
	return device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  label,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
}

// Stage is one post-processing pass: a fragment program compiled into a
// pipeline per output format, sampling exactly one input texture.
type Stage struct {
	layouts  *binding.Layouts
	screen   *wgpu.RenderPipeline
	painting *wgpu.RenderPipeline
	movie    *wgpu.RenderPipeline
}

// NewStage compiles the fragment source into the three pipeline
// variants. hasCustomUniforms must match the primary pipeline so the
// user's uniform buffer stays visible to every stage.
func NewStage(device *wgpu.Device, fragmentWGSL, label string, hasCustomUniforms bool) (*Stage, error) {
	layouts, err := binding.New(device, binding.Config{
		CustomUniforms: hasCustomUniforms,
		TextureCount:   1,
	})
	if err != nil {
		return nil, err
	}
	vs, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Fullscreen Vertex Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: vertexSource},
	})
	if err != nil {
		layouts.Release()
		return nil, err
	}
	defer vs.Release()
	fs, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: fragmentWGSL},
	})
	if err != nil {
		layouts.Release()
		return nil, err
	}
	defer fs.Release()

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: []*wgpu.BindGroupLayout{layouts.Primary, layouts.Sampler},
	})
	if err != nil {
		layouts.Release()
		return nil, err
	}
	defer pipelineLayout.Release()

	s := &Stage{layouts: layouts}
	for _, v := range []struct {
		dst    **wgpu.RenderPipeline
		format wgpu.TextureFormat
	}{
		{&s.screen, ScreenFormat},
		{&s.painting, PaintingFormat},
		{&s.movie, MovieFormat},
	} {
		*v.dst, err = Pipeline(device, pipelineLayout, vs, fs, v.format, label)
		if err != nil {
			s.Release()
			return nil, fmt.Errorf("building %s pipeline: %w", label, err)
		}
	}
	return s, nil
}

func (s *Stage) pipeline(target Target) *wgpu.RenderPipeline {
	switch target {
	case TargetPainting:
		return s.painting
	case TargetMovie:
		return s.movie
	}
	return s.screen
}

// Run records one pass of this stage into the encoder, sampling input
// and rendering into output. custom and push may be nil.
func (s *Stage) Run(device *wgpu.Device, encoder *wgpu.CommandEncoder, target Target, frame, custom, push *wgpu.Buffer, sampler *wgpu.Sampler, input, output *wgpu.TextureView) error {
	primaryBG, err := s.layouts.PrimaryGroup(device, frame, custom, push)
	if err != nil {
		return err
	}
	defer primaryBG.Release()
	samplerBG, err := s.layouts.SamplerGroup(device, sampler, []*wgpu.TextureView{input})
	if err != nil {
		return err
	}
	defer samplerBG.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       output,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{A: 1},
		}},
	})
	pass.SetPipeline(s.pipeline(target))
	pass.SetBindGroup(0, primaryBG, nil)
	pass.SetBindGroup(1, samplerBG, nil)
	pass.Draw(3, 1, 0, 0)
	pass.End()
	pass.Release()
	return nil
}

// Release frees the stage's GPU objects.
func (s *Stage) Release() {
	if s.screen != nil {
		s.screen.Release()
	}
	if s.painting != nil {
		s.painting.Release()
	}
	if s.movie != nil {
		s.movie.Release()
	}
	s.layouts.Release()
}
