package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/goshaderpaint/canvas"
	"github.com/richinsley/goshaderpaint/dashboard"
	"github.com/richinsley/goshaderpaint/messages"
	"github.com/richinsley/goshaderpaint/options"
	"github.com/richinsley/goshaderpaint/shader"
)

const (
	eventCapacity   = 24
	messageCapacity = 1024
)

func init() {
	runtime.LockOSThread()
}

func main() {
	opts := parseFlags()

	if *opts.Generate {
		if err := shader.WriteSkeleton(opts.ShaderPath); err != nil {
			log.Fatalf("Failed to generate skeleton shader: %v", err)
		}
		log.Printf("Wrote skeleton shader to %s", opts.ShaderPath)
	}

	if err := glfw.Init(); err != nil {
		log.Fatalf("Failed to initialize GLFW: %v", err)
	}
	defer glfw.Terminate()
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	canvasWin, err := glfw.CreateWindow(*opts.Width, *opts.Height, "Canvas", nil, nil)
	if err != nil {
		log.Fatalf("Failed to create canvas window: %v", err)
	}
	dashWin, err := glfw.CreateWindow(500, 250, "Dashboard", nil, nil)
	if err != nil {
		log.Fatalf("Failed to create dashboard window: %v", err)
	}

	toCanvas := make(chan messages.DashboardMessage, messageCapacity)
	toDashboard := make(chan messages.CanvasMessage, messageCapacity)
	events := make(chan canvas.Event, eventCapacity)

	c, err := canvas.New(canvasWin, canvas.Settings{
		ShaderPath:      opts.ShaderPath,
		ConfigPath:      *opts.UniformsFile,
		TexturePaths:    splitList(*opts.Textures),
		PostShaderPaths: splitList(*opts.PostShaders),
		Mic:             *opts.Mic,
		ReloadInterval:  time.Duration(*opts.ReloadMillis) * time.Millisecond,
		PaintingWidth:   uint32(*opts.PaintingWidth),
		PaintingHeight:  uint32(*opts.PaintingHeight),
	}, events, toDashboard, toCanvas)
	if err != nil {
		log.Fatalf("Failed to create canvas: %v", err)
	}

	dash, err := dashboard.New(dashWin, dashboard.Config{
		PaintingWidth:          uint32(*opts.PaintingWidth),
		PaintingHeight:         uint32(*opts.PaintingHeight),
		PaintingFilename:       *opts.PaintingFile,
		MovieFilename:          *opts.MovieFile,
		MovieFramerate:         *opts.MovieFPS,
		MovieWidth:             uint32(*opts.MovieWidth),
		MovieHeight:            uint32(*opts.MovieHeight),
		PauseWhilePainting:     *opts.PauseWhilePaint,
		OpenPaintingExternally: *opts.OpenPainting,
	}, toCanvas, toDashboard)
	if err != nil {
		log.Fatalf("Failed to create dashboard: %v", err)
	}

	wireCanvasCallbacks(canvasWin, events)
	dashWin.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		dash.HandleKey(key, action)
	})
	dashWin.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		dash.Resize(w, h)
	})

	canvasDone := make(chan struct{})
	go func() {
		defer close(canvasDone)
		c.Run()
	}()

	decorated := true
	for !canvasWin.ShouldClose() && !dashWin.ShouldClose() {
		glfw.PollEvents()
		dash.Tick()
		// window attribute changes are main-thread-only in GLFW
		if d := dash.Decorated(); d != decorated {
			decorated = d
			attrib := glfw.False
			if d {
				attrib = glfw.True
			}
			canvasWin.SetAttrib(glfw.Decorated, attrib)
		}
		time.Sleep(2 * time.Millisecond)
	}

	// stop the canvas first so no more readbacks are produced, then
	// let the dashboard flush its recorder and painting writer
	close(events)
	<-canvasDone
	dash.Drain()
	dash.Release()
}

func parseFlags() *options.Options {
	opts := &options.Options{
		Width:  flag.Int("width", 1280, "Canvas window width"),
		Height: flag.Int("height", 720, "Canvas window height"),

		Textures:     flag.String("t", "", "Comma-separated image files bound as textures"),
		UniformsFile: flag.String("u", "", "JSON uniform/push-constant config file"),
		PostShaders:  flag.String("p", "", "Comma-separated post-processing fragment programs"),
		Mic:          flag.Bool("mic", false, "Bind the microphone FFT texture"),

		ReloadMillis: flag.Int("a", 0, "Auto-reload debounce in milliseconds, 0 disables"),
		Generate:     flag.Bool("g", false, "Write a skeleton fragment program to the shader path first"),

		PaintingWidth:   flag.Int("pw", 3840, "Painting width in pixels"),
		PaintingHeight:  flag.Int("ph", 2160, "Painting height in pixels"),
		PaintingFile:    flag.String("painting", "painting.tiff", "Painting output file"),
		PauseWhilePaint: flag.Bool("pause-painting", false, "Pause rendering while a painting is written"),
		OpenPainting:    flag.Bool("open-painting", false, "Open finished paintings in the platform viewer (macOS)"),

		MovieFile:   flag.String("movie", "movie.mp4", "Recording output file"),
		MovieFPS:    flag.Int("fps", 30, "Recording framerate"),
		MovieWidth:  flag.Int("mw", 1920, "Recording width in pixels"),
		MovieHeight: flag.Int("mh", 1080, "Recording height in pixels"),
		ShowHelp:    flag.Bool("help", false, "Show help message"),
	}
	flag.Parse()

	if *opts.ShowHelp {
		fmt.Println("goshaderpaint <flags> shader.wgsl")
		flag.PrintDefaults()
		os.Exit(0)
	}
	if flag.NArg() != 1 {
		log.Fatalf("Expected exactly one positional argument: the fragment program path")
	}
	opts.ShaderPath = flag.Arg(0)
	return opts
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func wireCanvasCallbacks(win *glfw.Window, events chan<- canvas.Event) {
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		postEvent(events, canvas.Event{Kind: canvas.EventKey, Key: key, Action: action})
	})
	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		postEvent(events, canvas.Event{Kind: canvas.EventCursor, X: x, Y: y})
	})
	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		postEvent(events, canvas.Event{Kind: canvas.EventMouseButton, Button: button, Action: action})
	})
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		postEvent(events, canvas.Event{Kind: canvas.EventResize, Width: w, Height: h})
	})
}

// postEvent never blocks the main thread; under backpressure stale
// events drop and the freshest state wins on the next callback.
func postEvent(events chan<- canvas.Event, ev canvas.Event) {
	select {
	case events <- ev:
	default:
	}
}
