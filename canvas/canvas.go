// Package canvas owns the render window: the GPU device behind it, the
// fragment program pipelines, the uniform buffers and textures, and the
// three render paths (screen, painting, movie frame). It runs on its
// own locked OS thread and talks to the dashboard only through
// channels.
package canvas

import (
	"fmt"
	"log"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/goshaderpaint/binding"
	"github.com/richinsley/goshaderpaint/messages"
	"github.com/richinsley/goshaderpaint/postprocess"
	"github.com/richinsley/goshaderpaint/shader"
	"github.com/richinsley/goshaderpaint/texture"
	"github.com/richinsley/goshaderpaint/uniforms"
)

// Settings configures a Canvas at startup.
type Settings struct {
	ShaderPath      string
	ConfigPath      string
	TexturePaths    []string
	PostShaderPaths []string
	Mic             bool
	ReloadInterval  time.Duration
	PaintingWidth   uint32
	PaintingHeight  uint32
}

// Canvas is the render window state. One big owning struct: everything
// rendering needs hangs off it, and only the render thread touches it.
type Canvas struct {
	window  *glfw.Window
	surface *wgpu.Surface
	adapter *wgpu.Adapter
	device  *wgpu.Device
	queue   *wgpu.Queue

	surfaceFormat wgpu.TextureFormat
	alphaMode     wgpu.CompositeAlphaMode
	width, height uint32

	shaderPath string
	configPath string
	postPaths  []string

	vs             *wgpu.ShaderModule
	layouts        *binding.Layouts
	pipelineLayout *wgpu.PipelineLayout
	screenPipe     *wgpu.RenderPipeline
	paintingPipe   *wgpu.RenderPipeline
	moviePipe      *wgpu.RenderPipeline
	blitLayout     *wgpu.BindGroupLayout
	blitPipe       *wgpu.RenderPipeline

	sampler  *wgpu.Sampler
	textures []*texture.Texture
	mic      *texture.MicTexture
	views    []*wgpu.TextureView

	chain *postprocess.Chain

	frame       uniforms.FrameBlock
	frameBuffer *wgpu.Buffer
	userValues  []uniforms.Value
	userBuffer  *wgpu.Buffer
	pushValues  []uniforms.Value
	pushBuffer  *wgpu.Buffer

	clock       *stopwatch
	lastElapsed time.Duration
	paused      bool

	paintingWidth  uint32
	paintingHeight uint32

	shaderWatch *watcher
	configWatch *watcher

	tx     chan<- messages.CanvasMessage
	rx     <-chan messages.DashboardMessage
	events <-chan Event
}

// New builds the canvas against an existing window. Call on the main
// thread; afterwards only Run touches the returned value.
func New(window *glfw.Window, s Settings, events <-chan Event, tx chan<- messages.CanvasMessage, rx <-chan messages.DashboardMessage) (*Canvas, error) {
	c := &Canvas{
		window:         window,
		shaderPath:     s.ShaderPath,
		configPath:     s.ConfigPath,
		postPaths:      s.PostShaderPaths,
		clock:          newStopwatch(),
		paintingWidth:  s.PaintingWidth,
		paintingHeight: s.PaintingHeight,
		tx:             tx,
		rx:             rx,
		events:         events,
	}

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()
	c.surface = instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: c.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("requesting canvas adapter: %w", err)
	}
	c.adapter = adapter

	// the microphone texture is R32Float and gets sampled with the
	// shared filtering sampler
	var features []wgpu.FeatureName
	if s.Mic {
		features = append(features, wgpu.FeatureNameFloat32Filterable)
	}
	c.device, err = adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:            "Canvas Device",
		RequiredFeatures: features,
		RequiredLimits:   &wgpu.RequiredLimits{Limits: wgpu.DefaultLimits()},
	})
	if err != nil {
		return nil, fmt.Errorf("requesting canvas device: %w", err)
	}
	c.queue = c.device.GetQueue()

	caps := c.surface.GetCapabilities(adapter)
	c.surfaceFormat = caps.Formats[0]
	c.alphaMode = caps.AlphaModes[0]
	w, h := window.GetFramebufferSize()
	c.configureSurface(uint32(w), uint32(h))

	if err := c.loadConfig(); err != nil {
		return nil, err
	}
	if err := c.createUniformBuffers(); err != nil {
		return nil, err
	}
	if err := c.createTextures(s); err != nil {
		return nil, err
	}
	if err := c.createPipelines(); err != nil {
		return nil, err
	}
	chain, err := c.buildChain()
	if err != nil {
		return nil, err
	}
	c.chain = chain
	c.startWatchers(s.ReloadInterval)

	c.frame.Resolution = [4]float32{float32(c.width), float32(c.height), 0, 0}
	c.frame.NumTextures = uint32(len(c.views))
	return c, nil
}

func (c *Canvas) configureSurface(width, height uint32) {
	c.width, c.height = width, height
	c.surface.Configure(c.adapter, c.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      c.surfaceFormat,
		Width:       width,
		Height:      height,
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   c.alphaMode,
	})
}

func (c *Canvas) loadConfig() error {
	if c.configPath == "" {
		return nil
	}
	cfg, err := uniforms.LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	c.userValues = cfg.Uniforms
	c.pushValues = cfg.PushConstants
	return nil
}

func (c *Canvas) createUniformBuffers() error {
	var err error
	c.frameBuffer, err = c.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Frame Uniform Buffer",
		Size:  uniforms.FrameBlockSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	return c.createValueBuffers()
}

func (c *Canvas) createValueBuffers() error {
	var err error
	if len(c.userValues) > 0 {
		c.userBuffer, err = c.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "User Uniform Buffer",
			Size:  uint64(uniforms.TotalSize(c.userValues)),
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
	}
	if len(c.pushValues) > 0 {
		c.pushBuffer, err = c.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Push Constant Buffer",
			Size:  uint64(uniforms.TotalSize(c.pushValues)),
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// recreateUniformBuffers rebuilds the user and push constant buffers at
// the current lists' packed sizes, for config reloads that change the
// layout.
func (c *Canvas) recreateUniformBuffers() error {
	if c.userBuffer != nil {
		c.userBuffer.Release()
		c.userBuffer = nil
	}
	if c.pushBuffer != nil {
		c.pushBuffer.Release()
		c.pushBuffer = nil
	}
	return c.createValueBuffers()
}

func (c *Canvas) createTextures(s Settings) error {
	var err error
	c.sampler, err = texture.DefaultSampler(c.device)
	if err != nil {
		return err
	}
	for _, path := range s.TexturePaths {
		t, err := texture.LoadImage(c.device, c.queue, path)
		if err != nil {
			return err
		}
		c.textures = append(c.textures, t)
		c.views = append(c.views, t.View())
	}
	if s.Mic {
		c.mic, err = texture.NewMic(c.device, c.queue)
		if err != nil {
			log.Printf("microphone unavailable: %v", err)
		} else {
			c.views = append(c.views, c.mic.View())
		}
	}
	return nil
}

func (c *Canvas) createPipelines() error {
	var err error
	c.layouts, err = binding.New(c.device, binding.Config{
		CustomUniforms: len(c.userValues) > 0,
		PushConstants:  len(c.pushValues) > 0,
		TextureCount:   len(c.views),
	})
	if err != nil {
		return err
	}
	c.pipelineLayout, err = c.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Canvas Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{c.layouts.Primary, c.layouts.Sampler},
	})
	if err != nil {
		return err
	}
	c.vs, err = c.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Fullscreen Vertex Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shader.VertexWGSL},
	})
	if err != nil {
		return err
	}

	source, err := shader.LoadFragment(c.shaderPath)
	if err != nil {
		return err
	}
	screen, painting, movie, err := c.buildFragmentPipelines(source)
	if err != nil {
		return err
	}
	c.screenPipe, c.paintingPipe, c.moviePipe = screen, painting, movie

	return c.createBlitPipeline()
}

// buildFragmentPipelines compiles one fragment source into the three
// target-format pipeline variants. Used at startup and on hot reload.
func (c *Canvas) buildFragmentPipelines(source string) (screen, painting, movie *wgpu.RenderPipeline, err error) {
	fs, err := c.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          c.shaderPath,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: source},
	})
	if err != nil {
		return nil, nil, nil, err
	}
	defer fs.Release()

	screen, err = postprocess.Pipeline(c.device, c.pipelineLayout, c.vs, fs, postprocess.ScreenFormat, "Screen Pipeline")
	if err != nil {
		return nil, nil, nil, err
	}
	painting, err = postprocess.Pipeline(c.device, c.pipelineLayout, c.vs, fs, postprocess.PaintingFormat, "Painting Pipeline")
	if err != nil {
		screen.Release()
		return nil, nil, nil, err
	}
	movie, err = postprocess.Pipeline(c.device, c.pipelineLayout, c.vs, fs, postprocess.MovieFormat, "Movie Pipeline")
	if err != nil {
		screen.Release()
		painting.Release()
		return nil, nil, nil, err
	}
	return screen, painting, movie, nil
}

func (c *Canvas) createBlitPipeline() error {
	var err error
	c.blitLayout, err = c.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Blit Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
		},
	})
	if err != nil {
		return err
	}
	layout, err := c.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Blit Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{c.blitLayout},
	})
	if err != nil {
		return err
	}
	defer layout.Release()
	fs, err := c.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Blit Fragment Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shader.BlitFragmentWGSL},
	})
	if err != nil {
		return err
	}
	defer fs.Release()
	c.blitPipe, err = postprocess.Pipeline(c.device, layout, c.vs, fs, c.surfaceFormat, "Blit Pipeline")
	return err
}

// rebuildForLayoutChange rebuilds bind-group layouts, the fragment
// pipelines and the post chain after a config reload added or removed
// a value list. The swap is atomic: any failure leaves the previous
// GPU state in place.
func (c *Canvas) rebuildForLayoutChange() error {
	layouts, err := binding.New(c.device, binding.Config{
		CustomUniforms: len(c.userValues) > 0,
		PushConstants:  len(c.pushValues) > 0,
		TextureCount:   len(c.views),
	})
	if err != nil {
		return err
	}
	pipelineLayout, err := c.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Canvas Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layouts.Primary, layouts.Sampler},
	})
	if err != nil {
		layouts.Release()
		return err
	}
	source, err := shader.LoadFragment(c.shaderPath)
	if err != nil {
		pipelineLayout.Release()
		layouts.Release()
		return err
	}

	prevLayouts, prevPipelineLayout := c.layouts, c.pipelineLayout
	c.layouts, c.pipelineLayout = layouts, pipelineLayout
	screen, painting, movie, err := c.buildFragmentPipelines(source)
	if err == nil {
		var chain *postprocess.Chain
		chain, err = c.buildChain()
		if err != nil {
			screen.Release()
			painting.Release()
			movie.Release()
		} else {
			c.screenPipe.Release()
			c.paintingPipe.Release()
			c.moviePipe.Release()
			c.screenPipe, c.paintingPipe, c.moviePipe = screen, painting, movie
			c.chain.Release()
			c.chain = chain
		}
	}
	if err != nil {
		c.layouts, c.pipelineLayout = prevLayouts, prevPipelineLayout
		pipelineLayout.Release()
		layouts.Release()
		return err
	}
	prevPipelineLayout.Release()
	prevLayouts.Release()
	return nil
}

func (c *Canvas) buildChain() (*postprocess.Chain, error) {
	chain, err := postprocess.NewChain(c.device, len(c.userValues) > 0)
	if err != nil {
		return nil, err
	}
	for _, path := range c.postPaths {
		source, err := shader.LoadFragment(path)
		if err != nil {
			chain.Release()
			return nil, fmt.Errorf("post-processing shader: %w", err)
		}
		stage, err := postprocess.NewStage(c.device, source, path, len(c.userValues) > 0)
		if err != nil {
			chain.Release()
			return nil, err
		}
		chain.Add(stage)
	}
	return chain, nil
}
