package dashboard

import (
	"time"

	"github.com/richinsley/goshaderpaint/uniforms"
)

// State mirrors everything the dashboard displays and controls. It is
// updated only from canvas messages and dashboard input, both handled
// on the main thread.
type State struct {
	Paused        bool
	FrameNum      uint64
	MousePos      [2]float32
	CanvasWidth   int
	CanvasHeight  int
	FrameTimeouts int

	ShaderError string

	// display copies of the canvas's user uniforms, refreshed every
	// rendered frame
	Uniforms []uniforms.Value
	Selected int

	PaintingWidth          uint32
	PaintingHeight         uint32
	PaintingFilename       string
	PaintingInProgress     bool
	PauseWhilePainting     bool
	OpenPaintingExternally bool
	paintingStart          time.Time

	MovieFilename       string
	MovieFramerate      int
	MovieWidth          uint32
	MovieHeight         uint32
	RecordingInProgress bool

	Decorated bool
}

// mergeUniform stores a display copy, replacing a previous value with
// the same name.
func (s *State) mergeUniform(v uniforms.Value) {
	for i := range s.Uniforms {
		if s.Uniforms[i].Name() == v.Name() {
			s.Uniforms[i] = v
			return
		}
	}
	s.Uniforms = append(s.Uniforms, v)
}
