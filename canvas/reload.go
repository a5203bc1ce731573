package canvas

import (
	"log"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/richinsley/goshaderpaint/messages"
	"github.com/richinsley/goshaderpaint/shader"
	"github.com/richinsley/goshaderpaint/uniforms"
)

// minReloadInterval floors the debounce window; editors fire several
// events per save.
const minReloadInterval = 80 * time.Millisecond

// watcher wraps one fsnotify watch with debouncing. A remove, rename
// or watch error permanently disables it; watching a path that no
// longer exists reliably is not worth guessing about.
type watcher struct {
	fs       *fsnotify.Watcher
	path     string
	interval time.Duration
	last     time.Time
	pending  bool
}

func newWatcher(path string, interval time.Duration) (*watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(path); err != nil {
		fs.Close()
		return nil, err
	}
	return &watcher{fs: fs, path: path, interval: interval}, nil
}

// poll drains pending filesystem events without blocking. Changes
// inside the debounce window are coalesced and held, not dropped, so
// the trailing save of an editing burst still reloads once the window
// elapses.
func (w *watcher) poll() bool {
	if w.fs == nil {
		return false
	}
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				w.disable(nil)
				return false
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.disable(nil)
				return false
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.pending = true
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				w.disable(nil)
				return false
			}
			w.disable(err)
			return false
		default:
			if w.pending && time.Since(w.last) >= w.interval {
				w.last = time.Now()
				w.pending = false
				return true
			}
			return false
		}
	}
}

func (w *watcher) disable(err error) {
	if w.fs == nil {
		return
	}
	if err != nil {
		log.Printf("watch on %s failed, auto reload disabled: %v", w.path, err)
	} else {
		log.Printf("%s was removed or renamed, auto reload disabled", w.path)
	}
	w.fs.Close()
	w.fs = nil
}

func (w *watcher) close() {
	if w.fs != nil {
		w.fs.Close()
		w.fs = nil
	}
}

func (c *Canvas) startWatchers(interval time.Duration) {
	if interval <= 0 {
		return
	}
	if interval < minReloadInterval {
		interval = minReloadInterval
	}
	var err error
	c.shaderWatch, err = newWatcher(c.shaderPath, interval)
	if err != nil {
		log.Printf("cannot watch %s: %v", c.shaderPath, err)
	}
	if c.configPath != "" {
		c.configWatch, err = newWatcher(c.configPath, interval)
		if err != nil {
			log.Printf("cannot watch %s: %v", c.configPath, err)
		}
	}
}

func (c *Canvas) pollWatchers() {
	if c.shaderWatch != nil && c.shaderWatch.poll() {
		c.reloadShader()
	}
	if c.configWatch != nil && c.configWatch.poll() {
		c.reloadConfig()
	}
}

// reloadShader swaps all three fragment pipelines at once, or none. A
// failed compile keeps the previous pipelines running and sends the
// error text to the dashboard.
func (c *Canvas) reloadShader() {
	source, err := shader.LoadFragment(c.shaderPath)
	if err != nil {
		log.Printf("shader reload failed: %v", err)
		c.send(messages.ShaderCompilationFailed{Message: err.Error()})
		return
	}
	screen, painting, movie, err := c.buildFragmentPipelines(source)
	if err != nil {
		log.Printf("shader reload failed: %v", err)
		c.send(messages.ShaderCompilationFailed{Message: err.Error()})
		return
	}
	c.screenPipe.Release()
	c.paintingPipe.Release()
	c.moviePipe.Release()
	c.screenPipe, c.paintingPipe, c.moviePipe = screen, painting, movie
	log.Printf("reloaded shader %s", c.shaderPath)
	c.send(messages.ShaderCompilationSucceeded{})
}

// layoutFlipped reports whether a reloaded list appeared or
// disappeared. Either direction changes the bind-group layout, which
// forces a pipeline rebuild; a same-presence size change only needs
// fresh buffers.
func layoutFlipped(before, after []uniforms.Value) bool {
	return (len(before) == 0) != (len(after) == 0)
}

// reloadConfig replaces both value lists from disk wholesale. Buffers
// are recreated when the packed layout changed, and pipelines are
// rebuilt when a list appeared or disappeared; a rebuild failure keeps
// the previous pipelines and values running.
func (c *Canvas) reloadConfig() {
	cfg, err := uniforms.LoadConfig(c.configPath)
	if err != nil {
		log.Printf("uniform config reload failed: %v", err)
		return
	}
	flipped := layoutFlipped(c.userValues, cfg.Uniforms) ||
		layoutFlipped(c.pushValues, cfg.PushConstants)
	resized := uniforms.TotalSize(cfg.Uniforms) != uniforms.TotalSize(c.userValues) ||
		uniforms.TotalSize(cfg.PushConstants) != uniforms.TotalSize(c.pushValues)

	prevUser, prevPush := c.userValues, c.pushValues
	c.userValues = cfg.Uniforms
	c.pushValues = cfg.PushConstants

	if flipped {
		if err := c.rebuildForLayoutChange(); err != nil {
			c.userValues, c.pushValues = prevUser, prevPush
			log.Printf("uniform config reload failed: %v", err)
			c.send(messages.ShaderCompilationFailed{Message: err.Error()})
			return
		}
	}
	if resized || flipped {
		if err := c.recreateUniformBuffers(); err != nil {
			log.Printf("uniform config reload failed: %v", err)
			return
		}
	}
	log.Printf("reloaded uniform config %s", c.configPath)
}
