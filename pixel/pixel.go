// Package pixel converts raw RGBA16Float render-target bytes into the
// integer formats the painting writer and the video encoder consume.
package pixel

import (
	"encoding/binary"
	"math"
)

// HalfToFloat decodes an IEEE 754 binary16 value.
func HalfToFloat(h uint16) float32 {
	sign := uint32(h>>15) & 1
	exp := uint32(h>>10) & 0x1f
	frac := uint32(h) & 0x3ff
	switch exp {
	case 0:
		// subnormal, or zero when frac is zero
		return float32(1-2*int(sign)) * float32(frac) / (1 << 24)
	case 0x1f:
		if frac != 0 {
			return float32(math.NaN())
		}
		return float32(math.Inf(1 - 2*int(sign)))
	}
	bits := sign<<31 | (exp+112)<<23 | frac<<13
	return math.Float32frombits(bits)
}

func component(h uint16) uint16 {
	f := HalfToFloat(h)
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	return uint16(f * 65535)
}

// ToRGBA16 converts tightly packed RGBA16Float data (8 bytes per pixel)
// into 16-bit unsigned components, RGBA order, clamped to [0, 1].
func ToRGBA16(data []byte) []uint16 {
	out := make([]uint16, len(data)/2)
	for i := range out {
		out[i] = component(binary.LittleEndian.Uint16(data[2*i:]))
	}
	return out
}

// ToRGB48LE converts tightly packed RGBA16Float data into the rawvideo
// rgb48le format: three little-endian 16-bit components per pixel, alpha
// dropped. dst is reused when large enough.
func ToRGB48LE(data []byte, dst []byte) []byte {
	pixels := len(data) / 8
	need := pixels * 6
	if cap(dst) < need {
		dst = make([]byte, need)
	}
	dst = dst[:need]
	for p := 0; p < pixels; p++ {
		src := data[p*8:]
		out := dst[p*6:]
		for c := 0; c < 3; c++ {
			binary.LittleEndian.PutUint16(out[c*2:], component(binary.LittleEndian.Uint16(src[c*2:])))
		}
	}
	return dst
}
