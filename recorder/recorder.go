// Package recorder streams rendered frames into an ffmpeg subprocess
// producing an H.264 file. A Recorder owns one worker goroutine: frames
// and the stop request travel over a bounded channel, and readiness is
// reported back over a status channel the owner polls.
package recorder

import (
	"fmt"
	"io"
	"log"

	"github.com/cogentcore/webgpu/wgpu"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/richinsley/goshaderpaint/messages"
	"github.com/richinsley/goshaderpaint/pixel"
)

// frameCapacity bounds in-flight frames so a slow encoder applies
// backpressure instead of accumulating GPU readbacks.
const frameCapacity = 24

type signal struct {
	stop  bool
	frame messages.FrameSource
}

type status int

const (
	statusReady status = iota
	statusFinished
)

// Recorder encodes a fixed-size, fixed-framerate stream. All methods
// must be called from the owning goroutine.
type Recorder struct {
	signals  chan signal
	statusCh chan status

	ready    bool
	finished bool
	stopSent bool
}

// New validates the configuration and starts the encoder worker.
// The source format decides the rawvideo pixel format fed to ffmpeg;
// only RGBA16Float sources are supported. A framerate below one frame
// per second cannot come from a sane configuration, so it panics.
func New(width, height uint32, format wgpu.TextureFormat, framerate int, filename string) *Recorder {
	if framerate < 1 {
		panic(fmt.Sprintf("recording framerate must be at least 1, got %d", framerate))
	}
	if format != wgpu.TextureFormatRGBA16Float {
		panic(fmt.Sprintf("unsupported movie texture format %v", format))
	}
	r := &Recorder{
		signals:  make(chan signal, frameCapacity),
		statusCh: make(chan status, 2),
	}
	go r.run(width, height, framerate, filename)
	return r
}

func (r *Recorder) run(width, height uint32, framerate int, filename string) {
	pipeReader, pipeWriter := io.Pipe()
	cmd := ffmpeg.Input("pipe:",
		ffmpeg.KwArgs{
			"f":         "rawvideo",
			"s":         fmt.Sprintf("%dx%d", width, height),
			"framerate": framerate,
			"pix_fmt":   "rgb48le",
		}).
		Output(filename, ffmpeg.KwArgs{
			"c:v":     "libx264",
			"pix_fmt": "yuv420p",
		}).
		OverWriteOutput().
		WithInput(pipeReader).
		ErrorToStdOut()

	proc := cmd.Compile()
	errc := make(chan error, 1)
	var encoderDead bool
	if err := proc.Start(); err != nil {
		log.Printf("starting ffmpeg, dropping all frames: %v", err)
		errc <- nil
		encoderDead = true
	} else {
		go func() { errc <- proc.Wait() }()
		r.statusCh <- statusReady
	}

	var scratch []byte
	for sig := range r.signals {
		if sig.stop {
			break
		}
		if encoderDead {
			sig.frame.Release()
			continue
		}
		data, err := sig.frame.Pixels()
		if err != nil {
			log.Printf("dropping movie frame: %v", err)
			sig.frame.Release()
			continue
		}
		scratch = pixel.ToRGB48LE(data, scratch)
		sig.frame.Release()
		if _, err := pipeWriter.Write(scratch); err != nil {
			log.Printf("writing to ffmpeg: %v", err)
			encoderDead = true
		}
	}

	pipeWriter.Close()
	if err := <-errc; err != nil {
		log.Printf("ffmpeg exited with error: %v", err)
	}
	r.statusCh <- statusFinished
}

// Poll drains the worker's status reports without blocking.
func (r *Recorder) Poll() {
	select {
	case s := <-r.statusCh:
		switch s {
		case statusReady:
			r.ready = true
		case statusFinished:
			r.finished = true
		}
	default:
	}
}

// Ready reports whether the encoder accepts frames, as of the last Poll.
func (r *Recorder) Ready() bool { return r.ready }

// Finished reports whether the encoder fully shut down, as of the last
// Poll. A finished recorder may be discarded.
func (r *Recorder) Finished() bool { return r.finished }

// StopSent reports whether Stop was already called.
func (r *Recorder) StopSent() bool { return r.stopSent }

// AddFrame queues one frame for encoding, blocking when the encoder is
// more than frameCapacity frames behind.
func (r *Recorder) AddFrame(frame messages.FrameSource) {
	if r.stopSent {
		panic("frame added to a recorder that was already stopped")
	}
	r.signals <- signal{frame: frame}
}

// Stop asks the worker to finalize the file. Calling Stop twice is a
// bug in the caller's state tracking.
func (r *Recorder) Stop() {
	if r.stopSent {
		panic("recorder stopped twice")
	}
	r.stopSent = true
	r.signals <- signal{stop: true}
}
