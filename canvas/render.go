package canvas

import (
	"log"
	"time"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/richinsley/goshaderpaint/messages"
	"github.com/richinsley/goshaderpaint/postprocess"
	"github.com/richinsley/goshaderpaint/uniforms"
)

// target is a transient render texture plus its view.
type target struct {
	tex  *wgpu.Texture
	view *wgpu.TextureView
}

func (t *target) release() {
	t.view.Release()
	t.tex.Destroy()
	t.tex.Release()
}

func (c *Canvas) newTarget(width, height uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage, label string) (*target, error) {
	tex, err := c.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	return &target{tex: tex, view: view}, nil
}

// mainPass records the fragment program pass into dst.
func (c *Canvas) mainPass(encoder *wgpu.CommandEncoder, pipeline *wgpu.RenderPipeline, dst *wgpu.TextureView) error {
	primaryBG, err := c.layouts.PrimaryGroup(c.device, c.frameBuffer, c.userBuffer, c.pushBuffer)
	if err != nil {
		return err
	}
	defer primaryBG.Release()
	samplerBG, err := c.layouts.SamplerGroup(c.device, c.sampler, c.views)
	if err != nil {
		return err
	}
	defer samplerBG.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       dst,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{A: 1},
		}},
	})
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, primaryBG, nil)
	pass.SetBindGroup(1, samplerBG, nil)
	pass.Draw(3, 1, 0, 0)
	pass.End()
	pass.Release()
	return nil
}

// renderScreen draws one live frame: fragment program, user stages
// ping-ponged, then a blit to the swapchain. The terminal encoding
// stage never runs here; the swapchain handles presentation color.
func (c *Canvas) renderScreen() {
	surfaceTex, err := c.surface.GetCurrentTexture()
	if err != nil {
		c.send(messages.SurfaceFrameError{Err: err})
		return
	}
	defer surfaceTex.Release()
	surfaceView, err := surfaceTex.CreateView(nil)
	if err != nil {
		c.send(messages.SurfaceFrameError{Err: err})
		return
	}
	defer surfaceView.Release()

	targets, err := c.makeTargets(c.width, c.height, postprocess.ScreenFormat, 0)
	if err != nil {
		log.Printf("allocating frame targets: %v", err)
		return
	}
	defer targets.release()

	encoder, err := c.device.CreateCommandEncoder(nil)
	if err != nil {
		return
	}
	defer encoder.Release()

	if err := c.mainPass(encoder, c.screenPipe, targets.views()[postprocess.SlotSource]); err != nil {
		log.Printf("recording main pass: %v", err)
		return
	}
	c.send(messages.RenderPassSubmitted{})

	result, err := c.chain.Run(c.device, encoder, postprocess.TargetScreen,
		c.frameBuffer, c.userBuffer, c.pushBuffer, c.sampler, targets.views())
	if err != nil {
		log.Printf("post-processing: %v", err)
		return
	}
	if err := c.blitPass(encoder, result, surfaceView); err != nil {
		log.Printf("recording blit pass: %v", err)
		return
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return
	}
	c.queue.Submit(cmd)
	cmd.Release()
	c.surface.Present()

	c.frame.FrameNum++
	c.send(messages.FrameStep{})
	for _, v := range c.userValues {
		c.send(messages.UniformForGUI{Uniform: v})
	}
}

func (c *Canvas) blitPass(encoder *wgpu.CommandEncoder, src, dst *wgpu.TextureView) error {
	bg, err := c.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Blit Bind Group",
		Layout: c.blitLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Sampler: c.sampler},
			{Binding: 1, TextureView: src},
		},
	})
	if err != nil {
		return err
	}
	defer bg.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       dst,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{A: 1},
		}},
	})
	pass.SetPipeline(c.blitPipe)
	pass.SetBindGroup(0, bg, nil)
	pass.Draw(3, 1, 0, 0)
	pass.End()
	pass.Release()
	return nil
}

// targetSet maps the four chain slots to freshly allocated textures.
type targetSet [4]*target

func (ts *targetSet) views() [4]*wgpu.TextureView {
	var v [4]*wgpu.TextureView
	for i, t := range ts {
		v[i] = t.view
	}
	return v
}

func (ts *targetSet) release() {
	for _, t := range ts {
		t.release()
	}
}

// makeTargets allocates the source, both scratch slots and the final
// slot. extraFinalUsage adds usage flags to the final target only.
func (c *Canvas) makeTargets(width, height uint32, format wgpu.TextureFormat, extraFinalUsage wgpu.TextureUsage) (*targetSet, error) {
	usage := wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding
	labels := [4]string{"Render Target", "Scratch A", "Scratch B", "Final Target"}
	var ts targetSet
	for i := range ts {
		u := usage
		if i == postprocess.SlotFinal {
			u |= extraFinalUsage
		}
		t, err := c.newTarget(width, height, format, u, labels[i])
		if err != nil {
			for j := 0; j < i; j++ {
				ts[j].release()
			}
			return nil, err
		}
		ts[i] = t
	}
	return &ts, nil
}

// scaleForTarget adapts the live frame block to an offscreen target:
// the resolution becomes the target size and the mouse position scales
// with it, so pointer-driven shaders paint consistently at any size.
func scaleForTarget(f uniforms.FrameBlock, width, height uint32) uniforms.FrameBlock {
	sx, sy := float32(1), float32(1)
	if f.Resolution[0] > 0 {
		sx = float32(width) / f.Resolution[0]
	}
	if f.Resolution[1] > 0 {
		sy = float32(height) / f.Resolution[1]
	}
	f.MousePosition[0] *= sx
	f.MousePosition[1] *= sy
	f.MousePosition[2] *= sx
	f.MousePosition[3] *= sy
	f.Resolution = [4]float32{float32(width), float32(height), 0, 0}
	return f
}

func alignUp(n, align uint32) uint32 {
	return (n + align - 1) &^ (align - 1)
}

// renderOffscreen runs the full chain, terminal stage included, into a
// high-bit-depth target and copies the result into a map-readable
// buffer.
func (c *Canvas) renderOffscreen(pipeline *wgpu.RenderPipeline, ppTarget postprocess.Target, width, height uint32) (*Readback, error) {
	c.stageFrameBlock(scaleForTarget(c.frame, width, height))

	targets, err := c.makeTargets(width, height, postprocess.PaintingFormat, wgpu.TextureUsageCopySrc)
	if err != nil {
		return nil, err
	}
	defer targets.release()

	// wgpu requires 256-byte row alignment on texture-to-buffer copies
	stride := alignUp(width*8, 256)
	buffer, err := c.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Readback Buffer",
		Size:  uint64(stride) * uint64(height),
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	if err != nil {
		return nil, err
	}

	encoder, err := c.device.CreateCommandEncoder(nil)
	if err != nil {
		buffer.Release()
		return nil, err
	}
	defer encoder.Release()

	if err := c.mainPass(encoder, pipeline, targets.views()[postprocess.SlotSource]); err != nil {
		buffer.Release()
		return nil, err
	}
	if _, err := c.chain.Run(c.device, encoder, ppTarget,
		c.frameBuffer, c.userBuffer, c.pushBuffer, c.sampler, targets.views()); err != nil {
		buffer.Release()
		return nil, err
	}

	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture: targets[postprocess.SlotFinal].tex,
			Origin:  wgpu.Origin3D{},
			Aspect:  wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyBuffer{
			Buffer: buffer,
			Layout: wgpu.TextureDataLayout{
				BytesPerRow:  stride,
				RowsPerImage: height,
			},
		},
		&wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
	)

	cmd, err := encoder.Finish(nil)
	if err != nil {
		buffer.Release()
		return nil, err
	}
	c.queue.Submit(cmd)
	cmd.Release()

	// the live frame block comes back on the next tick
	return &Readback{device: c.device, buffer: buffer, width: width, height: height, stride: stride}, nil
}

func (c *Canvas) renderPainting(width, height uint32) {
	start := time.Now()
	rb, err := c.renderOffscreen(c.paintingPipe, postprocess.TargetPainting, width, height)
	if err != nil {
		log.Printf("painting render failed: %v", err)
		c.send(messages.PaintingFailed{Err: err})
		return
	}
	c.send(messages.PaintingStarted{Frame: rb, StartTime: start})
}

func (c *Canvas) renderMovieFrame(width, height uint32) {
	start := time.Now()
	rb, err := c.renderOffscreen(c.moviePipe, postprocess.TargetMovie, width, height)
	if err != nil {
		log.Printf("movie frame render failed: %v", err)
		return
	}
	c.send(messages.MovieFrameStarted{Frame: rb, StartTime: start})
}
