// Package painting turns a finished high-bit-depth readback into a
// 16-bit TIFF on disk. The transcode and write run on their own
// goroutine so the dashboard keeps ticking; completion is reported over
// a channel the caller polls.
package painting

import (
	"bufio"
	"fmt"
	"image"
	"log"
	"os"
	"os/exec"
	"runtime"

	"golang.org/x/image/tiff"

	"github.com/richinsley/goshaderpaint/messages"
	"github.com/richinsley/goshaderpaint/pixel"
)

// Result reports one finished write.
type Result struct {
	Filename string
	Err      error
}

// Write starts the background transcode of frame into filename. When
// openExternally is set the finished file is handed to the platform
// viewer; only macOS has one wired up.
func Write(frame messages.FrameSource, filename string, openExternally bool) <-chan Result {
	done := make(chan Result, 1)
	go func() {
		done <- write(frame, filename, openExternally)
	}()
	return done
}

func write(frame messages.FrameSource, filename string, openExternally bool) Result {
	defer frame.Release()

	data, err := frame.Pixels()
	if err != nil {
		return Result{Filename: filename, Err: fmt.Errorf("reading painting pixels: %w", err)}
	}
	img := toImage(data, int(frame.Width()), int(frame.Height()))

	f, err := os.Create(filename)
	if err != nil {
		return Result{Filename: filename, Err: err}
	}
	w := bufio.NewWriter(f)
	if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Uncompressed}); err != nil {
		f.Close()
		return Result{Filename: filename, Err: fmt.Errorf("encoding tiff: %w", err)}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return Result{Filename: filename, Err: err}
	}
	if err := f.Close(); err != nil {
		return Result{Filename: filename, Err: err}
	}

	if openExternally && runtime.GOOS == "darwin" {
		if err := exec.Command("open", filename).Start(); err != nil {
			log.Printf("opening %s externally: %v", filename, err)
		}
	}
	return Result{Filename: filename}
}

// toImage expands tightly packed RGBA16Float rows into an RGBA64 image.
// RGBA64 stores components big-endian.
func toImage(data []byte, width, height int) *image.RGBA64 {
	img := image.NewRGBA64(image.Rect(0, 0, width, height))
	components := pixel.ToRGBA16(data)
	for i, v := range components {
		img.Pix[2*i] = byte(v >> 8)
		img.Pix[2*i+1] = byte(v)
	}
	return img
}
