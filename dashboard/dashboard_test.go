package dashboard

import (
	"errors"
	"testing"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"

	"github.com/richinsley/goshaderpaint/messages"
	"github.com/richinsley/goshaderpaint/uniforms"
)

func TestFrameDue(t *testing.T) {
	now := time.Now()

	assert.True(t, frameDue(time.Time{}, false, 30, now), "the first frame goes out immediately")
	assert.False(t, frameDue(now.Add(-10*time.Millisecond), true, 30, now))
	assert.True(t, frameDue(now.Add(-40*time.Millisecond), true, 30, now))
	assert.True(t, frameDue(now.Add(-time.Second), true, 1, now))
	assert.False(t, frameDue(now.Add(-900*time.Millisecond), true, 1, now))
}

// The T key only flips the mirrored flag; the main loop owns the GLFW
// attribute call, so no message crosses to the canvas.
func TestTitlebarToggleStaysLocal(t *testing.T) {
	d := &Dashboard{tx: make(chan messages.DashboardMessage, 1)}
	assert.False(t, d.Decorated())

	d.state.Decorated = true
	d.HandleKey(glfw.KeyT, glfw.Press)
	assert.False(t, d.Decorated())
	d.HandleKey(glfw.KeyT, glfw.Press)
	assert.True(t, d.Decorated())
	assert.Empty(t, d.tx)
}

// A painting that cannot render sends no PaintingStarted, so the
// failure report must unlatch the in-progress state and resume a
// canvas that was paused for the painting.
func TestPaintingFailureUnlatchesAndResumes(t *testing.T) {
	tx := make(chan messages.DashboardMessage, 4)
	d := &Dashboard{tx: tx}
	d.state.PauseWhilePainting = true
	d.state.Paused = true
	d.state.PaintingInProgress = true

	d.handleMessage(messages.PaintingFailed{Err: errors.New("target allocation failed")})

	assert.False(t, d.state.PaintingInProgress)
	assert.False(t, d.state.Paused)
	assert.Equal(t, messages.Play{}, <-tx)
}

func TestMergeUniformReplacesByName(t *testing.T) {
	var s State
	s.mergeUniform(uniforms.NewF32("speed", 1))
	s.mergeUniform(uniforms.NewF32("bias", 2))
	s.mergeUniform(uniforms.NewF32("speed", 3))

	assert.Len(t, s.Uniforms, 2)
	assert.Equal(t, "speed", s.Uniforms[0].Name())
	assert.Equal(t, float32(3), s.Uniforms[0].F32())
	assert.Equal(t, "bias", s.Uniforms[1].Name())
}
