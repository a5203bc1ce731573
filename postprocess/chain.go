package postprocess

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/richinsley/goshaderpaint/shader"
)

const vertexSource = shader.VertexWGSL

// Chain holds the user's stages in application order plus the terminal
// color-encoding stage, which runs last on the painting and movie paths
// and never on screen.
type Chain struct {
	stages   []*Stage
	terminal *Stage
}

// NewChain builds an empty chain with its terminal stage.
func NewChain(device *wgpu.Device, hasCustomUniforms bool) (*Chain, error) {
	terminal, err := NewStage(device, shader.SRGBFragmentWGSL, "sRGB Encode Stage", hasCustomUniforms)
	if err != nil {
		return nil, err
	}
	return &Chain{terminal: terminal}, nil
}

// Add appends a user stage. Order of addition is order of application.
func (c *Chain) Add(s *Stage) { c.stages = append(c.stages, s) }

// Len reports the number of user stages, excluding the terminal stage.
func (c *Chain) Len() int { return len(c.stages) }

// Run executes the chain per Plan. views maps the four pass slots to
// texture views: source, scratch A, scratch B, final. It returns the
// view holding the result, which is the source view when no pass ran.
func (c *Chain) Run(device *wgpu.Device, encoder *wgpu.CommandEncoder, target Target, frame, custom, push *wgpu.Buffer, sampler *wgpu.Sampler, views [4]*wgpu.TextureView) (*wgpu.TextureView, error) {
	result := views[SlotSource]
	for _, pass := range Plan(len(c.stages), target != TargetScreen) {
		stage := c.terminal
		if pass.Stage >= 0 {
			stage = c.stages[pass.Stage]
		}
		if err := stage.Run(device, encoder, target, frame, custom, push, sampler, views[pass.In], views[pass.Out]); err != nil {
			return nil, err
		}
		result = views[pass.Out]
	}
	return result, nil
}

// Release frees every stage.
func (c *Chain) Release() {
	for _, s := range c.stages {
		s.Release()
	}
	c.terminal.Release()
}
