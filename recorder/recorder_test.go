package recorder

import (
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
}

type stubFrame struct {
	released bool
}

func (f *stubFrame) Pixels() ([]byte, error) { return make([]byte, 4*4*8), nil }
func (f *stubFrame) Width() uint32           { return 4 }
func (f *stubFrame) Height() uint32          { return 4 }
func (f *stubFrame) Release()                { f.released = true }

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	return New(4, 4, wgpu.TextureFormatRGBA16Float, 30, filepath.Join(t.TempDir(), "out.mp4"))
}

func TestNewRejectsBadConfig(t *testing.T) {
	assert.Panics(t, func() {
		New(4, 4, wgpu.TextureFormatRGBA16Float, 0, "out.mp4")
	})
	assert.Panics(t, func() {
		New(4, 4, wgpu.TextureFormatRGBA8Unorm, 30, "out.mp4")
	})
}

func TestRecorderReportsReadyThenFinished(t *testing.T) {
	requireFFmpeg(t)
	r := newTestRecorder(t)

	require.Eventually(t, func() bool {
		r.Poll()
		return r.Ready()
	}, 5*time.Second, 10*time.Millisecond)
	assert.False(t, r.Finished())

	r.Stop()
	require.Eventually(t, func() bool {
		r.Poll()
		return r.Finished()
	}, 10*time.Second, 10*time.Millisecond)
}

// Ready is the signal that the encoder subprocess is running; when it
// cannot spawn, the recorder must finish without ever becoming ready,
// releasing whatever frames it was handed.
func TestRecorderNeverReadyWhenEncoderCannotStart(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	r := newTestRecorder(t)

	frame := &stubFrame{}
	r.AddFrame(frame)
	r.Stop()

	require.Eventually(t, func() bool {
		r.Poll()
		return r.Finished()
	}, 10*time.Second, 10*time.Millisecond)
	assert.False(t, r.Ready())
	assert.True(t, frame.released)
}

func TestRecorderDoubleStopPanics(t *testing.T) {
	r := newTestRecorder(t)
	r.Stop()
	assert.Panics(t, func() { r.Stop() })
}

func TestRecorderRejectsFramesAfterStop(t *testing.T) {
	r := newTestRecorder(t)
	r.Stop()
	assert.Panics(t, func() { r.AddFrame(&stubFrame{}) })
}

func TestRecorderReleasesFrames(t *testing.T) {
	requireFFmpeg(t)
	r := newTestRecorder(t)
	require.Eventually(t, func() bool {
		r.Poll()
		return r.Ready()
	}, 5*time.Second, 10*time.Millisecond)

	frame := &stubFrame{}
	r.AddFrame(frame)
	r.Stop()
	require.Eventually(t, func() bool {
		r.Poll()
		return r.Finished()
	}, 10*time.Second, 10*time.Millisecond)
	assert.True(t, frame.released)
}
