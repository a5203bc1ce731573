package canvas

import (
	"runtime"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/goshaderpaint/messages"
	"github.com/richinsley/goshaderpaint/uniforms"
)

// Run is the canvas render loop. It blocks until the events channel
// closes, so start it on its own goroutine; it locks that goroutine to
// an OS thread for the GPU's sake.
func (c *Canvas) Run() {
	runtime.LockOSThread()
	defer c.release()

	for {
		if !c.drainEvents() {
			return
		}
		c.drainMessages()
		c.pollWatchers()
		c.tick()
		if c.paused {
			// nothing moves while paused, the last frame stays up
			time.Sleep(8 * time.Millisecond)
			continue
		}
		c.renderScreen()
	}
}

// drainEvents consumes all pending window events. It returns false
// when the channel closed and the loop must exit.
func (c *Canvas) drainEvents() bool {
	for {
		select {
		case ev, ok := <-c.events:
			if !ok || ev.Kind == EventClose {
				return false
			}
			c.handleEvent(ev)
		default:
			return true
		}
	}
}

func (c *Canvas) handleEvent(ev Event) {
	switch ev.Kind {
	case EventKey:
		if ev.Key == glfw.KeySpace && ev.Action == glfw.Press {
			c.setPaused(!c.paused)
			c.send(messages.PausePlayChanged{})
		}
	case EventCursor:
		c.frame.MousePosition[2] = c.frame.MousePosition[0]
		c.frame.MousePosition[3] = c.frame.MousePosition[1]
		c.frame.MousePosition[0] = float32(ev.X)
		c.frame.MousePosition[1] = float32(ev.Y)
		c.send(messages.MouseMoved{X: float32(ev.X), Y: float32(ev.Y)})
	case EventMouseButton:
		var pressed int32
		if ev.Action == glfw.Press {
			pressed = 1
		}
		switch ev.Button {
		case glfw.MouseButtonLeft:
			c.frame.MouseButton[0] = pressed
		case glfw.MouseButtonRight:
			c.frame.MouseButton[1] = pressed
		case glfw.MouseButtonMiddle:
			c.frame.MouseButton[2] = pressed
		}
	case EventResize:
		if ev.Width == 0 || ev.Height == 0 {
			return
		}
		c.configureSurface(uint32(ev.Width), uint32(ev.Height))
		c.frame.Resolution[0] = float32(ev.Width)
		c.frame.Resolution[1] = float32(ev.Height)
		c.send(messages.WindowResized{Width: ev.Width, Height: ev.Height})
	}
}

func (c *Canvas) drainMessages() {
	for {
		select {
		case msg := <-c.rx:
			c.handleMessage(msg)
		default:
			return
		}
	}
}

func (c *Canvas) handleMessage(msg messages.DashboardMessage) {
	switch m := msg.(type) {
	case messages.PausePlayToggled:
		c.setPaused(!c.paused)
	case messages.Play:
		c.setPaused(false)
	case messages.Pause:
		c.setPaused(true)
	case messages.PaintingResolutionUpdated:
		c.paintingWidth, c.paintingHeight = m.Width, m.Height
	case messages.PaintingRequested:
		c.renderPainting(m.Width, m.Height)
	case messages.MovieFrameRequested:
		c.renderMovieFrame(m.Width, m.Height)
	case messages.UniformEdited:
		for i := range c.userValues {
			if c.userValues[i].Name() == m.Uniform.Name() {
				c.userValues[i] = m.Uniform
				return
			}
		}
		for i := range c.pushValues {
			if c.pushValues[i].Name() == m.Uniform.Name() {
				c.pushValues[i] = m.Uniform
				return
			}
		}
	}
}

func (c *Canvas) setPaused(paused bool) {
	if c.paused == paused {
		return
	}
	c.paused = paused
	if paused {
		c.clock.Stop()
	} else {
		c.clock.Start()
	}
}

// tick advances frame time and refreshes every uniform buffer. The
// user and push constant buffers take direct queue writes; the frame
// block always goes through a staging copy so its upload serializes
// with the command stream.
func (c *Canvas) tick() {
	elapsed := c.clock.Elapsed()
	c.frame.Time = float32(elapsed.Seconds())
	c.frame.TimeDelta = float32((elapsed - c.lastElapsed).Seconds())
	c.lastElapsed = elapsed

	now := time.Now()
	c.frame.Date = [4]int32{int32(now.Year()), int32(now.Month()), int32(now.Day()), 0}

	if c.userBuffer != nil {
		c.queue.WriteBuffer(c.userBuffer, 0, uniforms.Pack(c.userValues))
	}
	if c.pushBuffer != nil {
		c.queue.WriteBuffer(c.pushBuffer, 0, uniforms.Pack(c.pushValues))
	}
	if c.mic != nil && !c.paused {
		c.mic.Update()
	}
	c.stageFrameBlock(c.frame)
}

// stageFrameBlock uploads a frame block through a transient staging
// buffer and a copy command.
func (c *Canvas) stageFrameBlock(block uniforms.FrameBlock) {
	staging, err := c.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "Frame Uniform Staging",
		Size:             uniforms.FrameBlockSize,
		Usage:            wgpu.BufferUsageCopySrc,
		MappedAtCreation: true,
	})
	if err != nil {
		return
	}
	copy(staging.GetMappedRange(0, uniforms.FrameBlockSize), block.Bytes())
	staging.Unmap()

	encoder, err := c.device.CreateCommandEncoder(nil)
	if err != nil {
		staging.Release()
		return
	}
	encoder.CopyBufferToBuffer(staging, 0, c.frameBuffer, 0, uniforms.FrameBlockSize)
	cmd, err := encoder.Finish(nil)
	encoder.Release()
	if err != nil {
		staging.Release()
		return
	}
	c.queue.Submit(cmd)
	cmd.Release()
	staging.Release()
}

// send delivers a message to the dashboard, blocking when its queue is
// full; the dashboard drains every tick.
func (c *Canvas) send(msg messages.CanvasMessage) {
	c.tx <- msg
}

func (c *Canvas) release() {
	if c.shaderWatch != nil {
		c.shaderWatch.close()
	}
	if c.configWatch != nil {
		c.configWatch.close()
	}
	c.chain.Release()
	c.blitPipe.Release()
	c.blitLayout.Release()
	c.screenPipe.Release()
	c.paintingPipe.Release()
	c.moviePipe.Release()
	c.vs.Release()
	c.pipelineLayout.Release()
	c.layouts.Release()
	if c.mic != nil {
		c.mic.Release()
	}
	for _, t := range c.textures {
		t.Release()
	}
	c.sampler.Release()
	if c.pushBuffer != nil {
		c.pushBuffer.Release()
	}
	if c.userBuffer != nil {
		c.userBuffer.Release()
	}
	c.frameBuffer.Release()
	c.device.Release()
	c.surface.Release()
	c.adapter.Release()
}
