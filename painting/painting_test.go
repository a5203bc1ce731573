package painting

import (
	"encoding/binary"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

type stubFrame struct {
	data     []byte
	width    uint32
	height   uint32
	err      error
	released bool
}

func (f *stubFrame) Pixels() ([]byte, error) { return f.data, f.err }
func (f *stubFrame) Width() uint32           { return f.width }
func (f *stubFrame) Height() uint32          { return f.height }
func (f *stubFrame) Release()                { f.released = true }

// one 2x1 frame: a full-white pixel and a half-gray pixel
// (half-precision 1.0 = 0x3C00, 0.5 = 0x3800)
func testFrame() *stubFrame {
	data := make([]byte, 16)
	for i, h := range []uint16{0x3C00, 0x3C00, 0x3C00, 0x3C00, 0x3800, 0x3800, 0x3800, 0x3C00} {
		binary.LittleEndian.PutUint16(data[2*i:], h)
	}
	return &stubFrame{data: data, width: 2, height: 1}
}

func awaitResult(t *testing.T, done <-chan Result) Result {
	t.Helper()
	select {
	case res := <-done:
		return res
	case <-time.After(10 * time.Second):
		t.Fatal("painting write did not finish")
		return Result{}
	}
}

func TestWriteProducesSixteenBitTIFF(t *testing.T) {
	frame := testFrame()
	filename := filepath.Join(t.TempDir(), "painting.tiff")

	res := awaitResult(t, Write(frame, filename, false))
	require.NoError(t, res.Err)
	assert.Equal(t, filename, res.Filename)
	assert.True(t, frame.released)

	f, err := os.Open(filename)
	require.NoError(t, err)
	defer f.Close()
	img, err := tiff.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 1), img.Bounds())

	r, g, b, a := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xFFFF), r)
	assert.Equal(t, uint32(0xFFFF), g)
	assert.Equal(t, uint32(0xFFFF), b)
	assert.Equal(t, uint32(0xFFFF), a)

	r, _, _, a = img.At(1, 0).RGBA()
	assert.Equal(t, uint32(32767), r)
	assert.Equal(t, uint32(0xFFFF), a)
}

func TestWriteReportsReadbackFailure(t *testing.T) {
	frame := &stubFrame{width: 1, height: 1, err: errors.New("device lost")}
	res := awaitResult(t, Write(frame, filepath.Join(t.TempDir(), "painting.tiff"), false))
	assert.Error(t, res.Err)
	assert.True(t, frame.released, "frame is released even on failure")
}

func TestWriteReportsCreateFailure(t *testing.T) {
	res := awaitResult(t, Write(testFrame(), filepath.Join(t.TempDir(), "missing", "painting.tiff"), false))
	assert.Error(t, res.Err)
}
