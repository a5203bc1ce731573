package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/richinsley/goshaderpaint/uniforms"
)

func TestScaleForTargetRescalesMouse(t *testing.T) {
	f := uniforms.FrameBlock{
		Resolution:    [4]float32{800, 600, 0, 0},
		MousePosition: [4]float32{400, 300, 200, 150},
	}
	scaled := scaleForTarget(f, 1600, 300)

	assert.Equal(t, [4]float32{1600, 300, 0, 0}, scaled.Resolution)
	assert.Equal(t, [4]float32{800, 150, 400, 75}, scaled.MousePosition)

	// the live block is untouched
	assert.Equal(t, [4]float32{800, 600, 0, 0}, f.Resolution)
	assert.Equal(t, [4]float32{400, 300, 200, 150}, f.MousePosition)
}

func TestScaleForTargetZeroWindow(t *testing.T) {
	f := uniforms.FrameBlock{MousePosition: [4]float32{5, 5, 5, 5}}
	scaled := scaleForTarget(f, 100, 100)
	assert.Equal(t, [4]float32{100, 100, 0, 0}, scaled.Resolution)
	assert.Equal(t, [4]float32{5, 5, 5, 5}, scaled.MousePosition)
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, uint32(256), alignUp(1, 256))
	assert.Equal(t, uint32(256), alignUp(256, 256))
	assert.Equal(t, uint32(512), alignUp(257, 256))
	// one painting row at width 100: 800 bytes pad to 1024
	assert.Equal(t, uint32(1024), alignUp(100*8, 256))
}
