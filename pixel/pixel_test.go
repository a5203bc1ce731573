package pixel

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// half-precision literals used below:
//	0x3C00 = 1.0, 0x3800 = 0.5, 0xBC00 = -1.0, 0x4000 = 2.0, 0x7BFF = 65504
func TestHalfToFloat(t *testing.T) {
	assert.Equal(t, float32(0), HalfToFloat(0x0000))
	assert.Equal(t, float32(1), HalfToFloat(0x3C00))
	assert.Equal(t, float32(0.5), HalfToFloat(0x3800))
	assert.Equal(t, float32(-1), HalfToFloat(0xBC00))
	assert.Equal(t, float32(2), HalfToFloat(0x4000))
	assert.Equal(t, float32(65504), HalfToFloat(0x7BFF))
	assert.True(t, math.IsInf(float64(HalfToFloat(0x7C00)), 1))
	assert.True(t, math.IsNaN(float64(HalfToFloat(0x7E00))))
	// largest subnormal
	assert.InDelta(t, 6.0975552e-5, float64(HalfToFloat(0x03FF)), 1e-9)
}

func halfPixel(r, g, b, a uint16) []byte {
	buf := make([]byte, 8)
	for i, h := range []uint16{r, g, b, a} {
		binary.LittleEndian.PutUint16(buf[2*i:], h)
	}
	return buf
}

func TestToRGBA16ClampsAndScales(t *testing.T) {
	data := halfPixel(0x3C00, 0x3800, 0xBC00, 0x4000)
	out := ToRGBA16(data)
	require.Len(t, out, 4)
	assert.Equal(t, uint16(65535), out[0])
	assert.Equal(t, uint16(32767), out[1])
	assert.Equal(t, uint16(0), out[2], "negative values clamp to zero")
	assert.Equal(t, uint16(65535), out[3], "values above one clamp to full scale")
}

func TestToRGB48LEDropsAlpha(t *testing.T) {
	data := append(halfPixel(0x3C00, 0x3800, 0x0000, 0x3C00),
		halfPixel(0x0000, 0x3C00, 0x3800, 0x3C00)...)
	out := ToRGB48LE(data, nil)
	require.Len(t, out, 12)
	assert.Equal(t, uint16(65535), binary.LittleEndian.Uint16(out[0:]))
	assert.Equal(t, uint16(32767), binary.LittleEndian.Uint16(out[2:]))
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(out[4:]))
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(out[6:]))
	assert.Equal(t, uint16(65535), binary.LittleEndian.Uint16(out[8:]))
	assert.Equal(t, uint16(32767), binary.LittleEndian.Uint16(out[10:]))
}

func TestToRGB48LEReusesBuffer(t *testing.T) {
	scratch := make([]byte, 64)
	out := ToRGB48LE(halfPixel(0, 0, 0, 0), scratch)
	assert.Len(t, out, 6)
	assert.Equal(t, &scratch[0], &out[0])
}
