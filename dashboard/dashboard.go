// Package dashboard is the control-panel window: a second GPU surface
// on its own low-power device, redrawn at a gentle cadence. It mirrors
// canvas state from messages, paces the recorder, polls painting
// writes, and turns key presses into commands for the canvas.
package dashboard

import (
	"fmt"
	"log"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/goshaderpaint/messages"
	"github.com/richinsley/goshaderpaint/painting"
	"github.com/richinsley/goshaderpaint/postprocess"
	"github.com/richinsley/goshaderpaint/recorder"
)

// redrawInterval gates dashboard updates; the control panel has no
// business rendering at canvas rates.
const redrawInterval = 16 * time.Millisecond

// Dashboard owns the control window and the cross-window protocol's
// dashboard side. All methods run on the main thread.
type Dashboard struct {
	window  *glfw.Window
	surface *wgpu.Surface
	adapter *wgpu.Adapter
	device  *wgpu.Device
	queue   *wgpu.Queue

	surfaceFormat wgpu.TextureFormat
	alphaMode     wgpu.CompositeAlphaMode
	width, height uint32

	state State

	rec            *recorder.Recorder
	lastMovieFrame time.Time
	movieFrameSent bool

	paintingDone <-chan painting.Result

	lastRedraw time.Time

	tx chan<- messages.DashboardMessage
	rx <-chan messages.CanvasMessage
}

// Config seeds the dashboard state from the command line.
type Config struct {
	PaintingWidth          uint32
	PaintingHeight         uint32
	PaintingFilename       string
	MovieFilename          string
	MovieFramerate         int
	MovieWidth             uint32
	MovieHeight            uint32
	PauseWhilePainting     bool
	OpenPaintingExternally bool
}

// New builds the dashboard against an existing window, on the main
// thread.
func New(window *glfw.Window, cfg Config, tx chan<- messages.DashboardMessage, rx <-chan messages.CanvasMessage) (*Dashboard, error) {
	d := &Dashboard{
		window: window,
		state: State{
			PaintingWidth:          cfg.PaintingWidth,
			PaintingHeight:         cfg.PaintingHeight,
			PaintingFilename:       cfg.PaintingFilename,
			MovieFilename:          cfg.MovieFilename,
			MovieFramerate:         cfg.MovieFramerate,
			MovieWidth:             cfg.MovieWidth,
			MovieHeight:            cfg.MovieHeight,
			PauseWhilePainting:     cfg.PauseWhilePainting,
			OpenPaintingExternally: cfg.OpenPaintingExternally,
			Decorated:              true,
		},
		tx: tx,
		rx: rx,
	}

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()
	d.surface = instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: d.surface,
		PowerPreference:   wgpu.PowerPreferenceLowPower,
	})
	if err != nil {
		return nil, fmt.Errorf("requesting dashboard adapter: %w", err)
	}
	d.adapter = adapter

	d.device, err = adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:          "Dashboard Device",
		RequiredLimits: &wgpu.RequiredLimits{Limits: wgpu.DefaultLimits()},
	})
	if err != nil {
		return nil, fmt.Errorf("requesting dashboard device: %w", err)
	}
	d.queue = d.device.GetQueue()

	caps := d.surface.GetCapabilities(adapter)
	d.surfaceFormat = caps.Formats[0]
	d.alphaMode = caps.AlphaModes[0]
	w, h := window.GetFramebufferSize()
	d.configureSurface(uint32(w), uint32(h))
	return d, nil
}

func (d *Dashboard) configureSurface(width, height uint32) {
	d.width, d.height = width, height
	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      d.surfaceFormat,
		Width:       width,
		Height:      height,
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   d.alphaMode,
	})
}

// Tick runs one dashboard iteration: drain messages, pace the
// recorder, poll the painting writer, and redraw when the gate allows.
// Call it every main-loop pass; it rate-limits itself.
func (d *Dashboard) Tick() {
	d.drainMessages()
	d.paceRecorder()
	d.pollPainting()

	if time.Since(d.lastRedraw) < redrawInterval {
		return
	}
	d.lastRedraw = time.Now()
	d.send(messages.PaintingResolutionUpdated{Width: d.state.PaintingWidth, Height: d.state.PaintingHeight})
	d.redraw()
}

func (d *Dashboard) drainMessages() {
	for {
		select {
		case msg := <-d.rx:
			d.handleMessage(msg)
		default:
			return
		}
	}
}

func (d *Dashboard) handleMessage(msg messages.CanvasMessage) {
	switch m := msg.(type) {
	case messages.FrameStep:
		d.state.FrameNum++
	case messages.RenderPassSubmitted:
		// counted implicitly by FrameStep
	case messages.MouseMoved:
		d.state.MousePos = [2]float32{m.X, m.Y}
	case messages.WindowResized:
		d.state.CanvasWidth, d.state.CanvasHeight = m.Width, m.Height
	case messages.SurfaceFrameError:
		d.state.FrameTimeouts++
	case messages.PausePlayChanged:
		d.state.Paused = !d.state.Paused
	case messages.ShaderCompilationSucceeded:
		d.state.ShaderError = ""
		d.state.Paused = false
		d.send(messages.Play{})
	case messages.ShaderCompilationFailed:
		d.state.ShaderError = m.Message
		d.state.Paused = true
		d.send(messages.Pause{})
	case messages.UniformForGUI:
		d.state.mergeUniform(m.Uniform)
	case messages.PaintingResolutionChanged:
		d.state.PaintingWidth, d.state.PaintingHeight = m.Width, m.Height
	case messages.PaintingFailed:
		// a still that large will not render at all, so there is
		// nothing to retry; unlatch and resume
		log.Printf("painting failed: %v", m.Err)
		d.state.PaintingInProgress = false
		if d.state.PauseWhilePainting {
			d.state.Paused = false
			d.send(messages.Play{})
		}
	case messages.PaintingStarted:
		d.state.paintingStart = m.StartTime
		d.state.PaintingInProgress = true
		d.paintingDone = painting.Write(m.Frame, d.state.PaintingFilename, d.state.OpenPaintingExternally)
	case messages.MovieFrameStarted:
		if d.rec == nil {
			panic("movie frame arrived with no active recorder")
		}
		if d.rec.StopSent() {
			// in flight when the recording stopped
			m.Frame.Release()
			return
		}
		d.rec.AddFrame(m.Frame)
	}
}

// frameDue decides whether the next streaming frame should be
// requested, given the time the last request went out.
func frameDue(last time.Time, sentAny bool, framerate int, now time.Time) bool {
	if !sentAny {
		return true
	}
	return now.Sub(last).Seconds() >= 1.0/float64(framerate)
}

// paceRecorder runs the recorder lifecycle: request frames at the
// configured framerate while recording, and tear the recorder down
// once it reports finished.
func (d *Dashboard) paceRecorder() {
	if d.rec == nil {
		return
	}
	d.rec.Poll()

	if d.state.RecordingInProgress && d.rec.Ready() &&
		frameDue(d.lastMovieFrame, d.movieFrameSent, d.state.MovieFramerate, time.Now()) {
		d.send(messages.MovieFrameRequested{Width: d.state.MovieWidth, Height: d.state.MovieHeight})
		d.lastMovieFrame = time.Now()
		d.movieFrameSent = true
	}

	if d.rec.Finished() {
		log.Printf("recording finished: %s", d.state.MovieFilename)
		d.rec = nil
		d.movieFrameSent = false
	}
}

func (d *Dashboard) pollPainting() {
	if d.paintingDone == nil {
		return
	}
	select {
	case res := <-d.paintingDone:
		d.paintingDone = nil
		d.state.PaintingInProgress = false
		if res.Err != nil {
			log.Printf("painting failed: %v", res.Err)
		} else {
			log.Printf("painting %s finished in %.2f seconds", res.Filename, time.Since(d.state.paintingStart).Seconds())
		}
		if d.state.PauseWhilePainting {
			d.state.Paused = false
			d.send(messages.Play{})
		}
	default:
	}
}

// HandleKey reacts to a key press in the dashboard window. Wire it to
// the window's key callback.
func (d *Dashboard) HandleKey(key glfw.Key, action glfw.Action) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeySpace:
		d.state.Paused = !d.state.Paused
		d.send(messages.PausePlayToggled{})
	case glfw.KeyP:
		d.requestPainting()
	case glfw.KeyR:
		d.toggleRecording()
	case glfw.KeyT:
		// applied to the canvas window by the main loop, which owns
		// all GLFW window mutation
		d.state.Decorated = !d.state.Decorated
	case glfw.KeyUp:
		if d.state.Selected > 0 {
			d.state.Selected--
		}
	case glfw.KeyDown:
		if d.state.Selected < len(d.state.Uniforms)-1 {
			d.state.Selected++
		}
	case glfw.KeyLeft:
		d.nudgeUniform(-1)
	case glfw.KeyRight:
		d.nudgeUniform(+1)
	}
}

func (d *Dashboard) requestPainting() {
	if d.state.PaintingInProgress {
		log.Printf("painting already in progress")
		return
	}
	if d.state.PauseWhilePainting {
		d.state.Paused = true
		d.send(messages.Pause{})
	}
	d.state.PaintingInProgress = true
	d.send(messages.PaintingRequested{Width: d.state.PaintingWidth, Height: d.state.PaintingHeight})
}

func (d *Dashboard) toggleRecording() {
	if d.rec == nil {
		d.rec = recorder.New(d.state.MovieWidth, d.state.MovieHeight,
			postprocess.MovieFormat, d.state.MovieFramerate, d.state.MovieFilename)
		d.state.RecordingInProgress = true
		log.Printf("recording to %s at %d fps", d.state.MovieFilename, d.state.MovieFramerate)
		return
	}
	if d.rec.StopSent() {
		// previous recording is still flushing
		return
	}
	d.state.RecordingInProgress = false
	d.rec.Stop()
}

// nudgeUniform edits the selected uniform by a small step of its
// current magnitude and sends the new value to the canvas.
func (d *Dashboard) nudgeUniform(direction float64) {
	if d.state.Selected >= len(d.state.Uniforms) {
		return
	}
	v := d.state.Uniforms[d.state.Selected]
	step := 0.05 * (1 + v.Float()*v.Float())
	if step > 1 {
		step = 1
	}
	v.SetFloat(v.Float() + direction*step)
	d.state.Uniforms[d.state.Selected] = v
	d.send(messages.UniformEdited{Uniform: v})
}

// Decorated reports whether the canvas window should carry a titlebar.
// The main loop polls it and applies changes with SetAttrib, which GLFW
// restricts to the main thread.
func (d *Dashboard) Decorated() bool { return d.state.Decorated }

// Resize reconfigures the surface; wire to the framebuffer callback.
func (d *Dashboard) Resize(width, height int) {
	if width == 0 || height == 0 {
		return
	}
	d.configureSurface(uint32(width), uint32(height))
}

// redraw clears the surface and refreshes the stats in the title bar.
func (d *Dashboard) redraw() {
	d.window.SetTitle(d.title())

	surfaceTex, err := d.surface.GetCurrentTexture()
	if err != nil {
		return
	}
	defer surfaceTex.Release()
	view, err := surfaceTex.CreateView(nil)
	if err != nil {
		return
	}
	defer view.Release()

	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0.08, G: 0.09, B: 0.11, A: 1},
		}},
	})
	pass.End()
	pass.Release()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return
	}
	d.queue.Submit(cmd)
	cmd.Release()
	d.surface.Present()
}

func (d *Dashboard) title() string {
	t := fmt.Sprintf("Dashboard | frame %d | mouse %.0f,%.0f", d.state.FrameNum, d.state.MousePos[0], d.state.MousePos[1])
	if d.state.Paused {
		t += " | paused"
	}
	if d.state.RecordingInProgress {
		t += " | REC"
	}
	if d.state.FrameTimeouts > 0 {
		t += fmt.Sprintf(" | %d timeouts", d.state.FrameTimeouts)
	}
	if d.state.ShaderError != "" {
		t += " | shader error"
	}
	if len(d.state.Uniforms) > 0 && d.state.Selected < len(d.state.Uniforms) {
		v := d.state.Uniforms[d.state.Selected]
		t += fmt.Sprintf(" | %s=%.3f", v.Name(), v.Float())
	}
	return t
}

// Drain finishes an in-flight recording and painting before shutdown.
func (d *Dashboard) Drain() {
	if d.rec != nil && !d.rec.StopSent() {
		d.rec.Stop()
	}
	for d.rec != nil {
		d.drainMessages()
		d.rec.Poll()
		if d.rec.Finished() {
			d.rec = nil
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if d.paintingDone != nil {
		res := <-d.paintingDone
		if res.Err != nil {
			log.Printf("painting failed: %v", res.Err)
		}
		d.paintingDone = nil
	}
}

// Release frees the dashboard's GPU objects.
func (d *Dashboard) Release() {
	d.device.Release()
	d.surface.Release()
	d.adapter.Release()
}

func (d *Dashboard) send(msg messages.DashboardMessage) {
	d.tx <- msg
}
