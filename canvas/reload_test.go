package canvas

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/goshaderpaint/uniforms"
)

// A config reload that only resizes a list needs fresh buffers; one
// that adds or removes a whole list changes the bind-group layout and
// must also rebuild the pipelines.
func TestLayoutFlipped(t *testing.T) {
	none := []uniforms.Value(nil)
	one := []uniforms.Value{uniforms.NewF32("speed", 1)}
	two := []uniforms.Value{uniforms.NewF32("speed", 1), uniforms.NewF32("bias", 0)}

	assert.False(t, layoutFlipped(none, none))
	assert.False(t, layoutFlipped(one, one))
	assert.False(t, layoutFlipped(one, two), "a grown list keeps its layout slot")
	assert.True(t, layoutFlipped(none, one))
	assert.True(t, layoutFlipped(one, none))
}

func TestWatcherReportsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frag.wgsl")
	require.NoError(t, os.WriteFile(path, []byte("// v1"), 0o644))

	w, err := newWatcher(path, time.Millisecond)
	require.NoError(t, err)
	defer w.close()

	require.NoError(t, os.WriteFile(path, []byte("// v2"), 0o644))
	assert.Eventually(t, w.poll, 5*time.Second, 10*time.Millisecond)
}

func TestWatcherDisablesOnRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frag.wgsl")
	require.NoError(t, os.WriteFile(path, []byte("// v1"), 0o644))

	w, err := newWatcher(path, time.Millisecond)
	require.NoError(t, err)
	defer w.close()

	require.NoError(t, os.Remove(path))
	assert.Eventually(t, func() bool {
		w.poll()
		return w.fs == nil
	}, 5*time.Second, 10*time.Millisecond)

	// a disabled watcher stays quiet
	assert.False(t, w.poll())
}

// A save landing inside the debounce window must still be delivered
// once the window elapses; otherwise the last save of an editing burst
// never reloads and the running shader goes stale.
func TestWatcherDeliversTrailingWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frag.wgsl")
	require.NoError(t, os.WriteFile(path, []byte("// v1"), 0o644))

	w, err := newWatcher(path, 300*time.Millisecond)
	require.NoError(t, err)
	defer w.close()

	require.NoError(t, os.WriteFile(path, []byte("// v2"), 0o644))
	assert.Eventually(t, w.poll, 5*time.Second, 2*time.Millisecond)

	// still inside the window opened by v2
	require.NoError(t, os.WriteFile(path, []byte("// v3"), 0o644))
	assert.False(t, w.poll())
	assert.Eventually(t, w.poll, 5*time.Second, 2*time.Millisecond,
		"the held write must fire once the window elapses")
}

func TestWatcherDebounces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frag.wgsl")
	require.NoError(t, os.WriteFile(path, []byte("// v1"), 0o644))

	w, err := newWatcher(path, time.Hour)
	require.NoError(t, err)
	defer w.close()
	w.last = time.Now()

	require.NoError(t, os.WriteFile(path, []byte("// v2"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.False(t, w.poll(), "changes inside the debounce window are ignored")
}
