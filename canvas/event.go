package canvas

import "github.com/go-gl/glfw/v3.3/glfw"

// EventKind discriminates window events forwarded from the main thread.
type EventKind int

const (
	EventKey EventKind = iota
	EventCursor
	EventMouseButton
	EventResize
	EventClose
)

// Event is one window event. GLFW callbacks fire on the main thread;
// the canvas consumes these on its own render thread.
type Event struct {
	Kind   EventKind
	Key    glfw.Key
	Button glfw.MouseButton
	Action glfw.Action
	X, Y   float64
	Width  int
	Height int
}
