// Package messages defines the two channel protocols connecting the
// render canvas and the dashboard. Channels are the only mutation path
// between the two windows; every variant carries its payload by value.
package messages

import (
	"time"

	"github.com/richinsley/goshaderpaint/uniforms"
)

// FrameSource is a finished GPU readback handed across a channel. The
// receiver maps it for CPU access exactly once and releases it when done.
type FrameSource interface {
	Pixels() ([]byte, error)
	Width() uint32
	Height() uint32
	Release()
}

// CanvasMessage is sent from the canvas to the dashboard.
type CanvasMessage interface{ isCanvasMessage() }

// RenderPassSubmitted signals a live frame was dispatched for rendering.
type RenderPassSubmitted struct{}

// FrameStep signals a live frame finished.
type FrameStep struct{}

// MouseMoved carries the new cursor position in the canvas window.
type MouseMoved struct{ X, Y float32 }

// SurfaceFrameError reports a failed swapchain texture acquisition.
type SurfaceFrameError struct{ Err error }

// WindowResized carries the new canvas framebuffer size.
type WindowResized struct{ Width, Height int }

// PaintingStarted hands off a dispatched painting readback. The frame
// holds the pixel data once the GPU finishes.
type PaintingStarted struct {
	Frame     FrameSource
	StartTime time.Time
}

// MovieFrameStarted hands off a dispatched streaming-frame readback.
type MovieFrameStarted struct {
	Frame     FrameSource
	StartTime time.Time
}

// PaintingFailed reports that a requested painting could not be
// rendered; no PaintingStarted will follow for the request.
type PaintingFailed struct{ Err error }

// ShaderCompilationSucceeded signals a reloaded shader is now live.
type ShaderCompilationSucceeded struct{}

// ShaderCompilationFailed carries the compiler error text; the previous
// pipelines remain in use.
type ShaderCompilationFailed struct{ Message string }

// PausePlayChanged signals the pause state was toggled from the canvas.
type PausePlayChanged struct{}

// UniformForGUI carries a display copy of one user uniform.
type UniformForGUI struct{ Uniform uniforms.Value }

// PaintingResolutionChanged updates the dashboard's painting resolution.
type PaintingResolutionChanged struct{ Width, Height uint32 }

func (RenderPassSubmitted) isCanvasMessage()        {}
func (FrameStep) isCanvasMessage()                  {}
func (MouseMoved) isCanvasMessage()                 {}
func (SurfaceFrameError) isCanvasMessage()          {}
func (WindowResized) isCanvasMessage()              {}
func (PaintingStarted) isCanvasMessage()            {}
func (MovieFrameStarted) isCanvasMessage()          {}
func (PaintingFailed) isCanvasMessage()             {}
func (ShaderCompilationSucceeded) isCanvasMessage() {}
func (ShaderCompilationFailed) isCanvasMessage()    {}
func (PausePlayChanged) isCanvasMessage()           {}
func (UniformForGUI) isCanvasMessage()              {}
func (PaintingResolutionChanged) isCanvasMessage()  {}

// DashboardMessage is sent from the dashboard to the canvas.
type DashboardMessage interface{ isDashboardMessage() }

// PausePlayToggled requests a pause/play flip.
type PausePlayToggled struct{}

// Play resumes rendering.
type Play struct{}

// Pause suspends rendering.
type Pause struct{}

// PaintingRequested asks for one high-bit-depth still at the given size.
type PaintingRequested struct{ Width, Height uint32 }

// PaintingResolutionUpdated mirrors the dashboard's current painting size.
type PaintingResolutionUpdated struct{ Width, Height uint32 }

// MovieFrameRequested asks for one streaming frame at the given size.
type MovieFrameRequested struct{ Width, Height uint32 }

// UniformEdited carries an edited uniform value back to the canvas,
// replacing the stored value with the same name.
type UniformEdited struct{ Uniform uniforms.Value }

func (PausePlayToggled) isDashboardMessage()          {}
func (Play) isDashboardMessage()                      {}
func (Pause) isDashboardMessage()                     {}
func (PaintingRequested) isDashboardMessage()         {}
func (PaintingResolutionUpdated) isDashboardMessage() {}
func (MovieFrameRequested) isDashboardMessage()       {}
func (UniformEdited) isDashboardMessage()             {}
