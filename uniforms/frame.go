package uniforms

import (
	"encoding/binary"
	"math"
)

// FrameBlockSize is the packed size of FrameBlock. Shaders declare the
// matching struct, so the layout below must never change.
const FrameBlockSize = 80

// FrameBlock is the per-frame uniform block every fragment program can
// rely on. Field order matches the WGSL declaration: two float vectors,
// two integer vectors, then four scalars.
type FrameBlock struct {
	Resolution    [4]float32 // render target size in pixels, zw unused
	MousePosition [4]float32 // xy current, zw previous
	MouseButton   [4]int32   // left, right, middle pressed as 0/1
	Date          [4]int32   // year, month, day
	Time          float32    // seconds since start, excluding pauses
	TimeDelta     float32    // seconds since the previous frame
	FrameNum      uint32
	NumTextures   uint32
}

// Bytes packs the block little-endian into exactly FrameBlockSize bytes.
func (f *FrameBlock) Bytes() []byte {
	b := make([]byte, 0, FrameBlockSize)
	for _, v := range f.Resolution {
		b = binary.LittleEndian.AppendUint32(b, floatBits(v))
	}
	for _, v := range f.MousePosition {
		b = binary.LittleEndian.AppendUint32(b, floatBits(v))
	}
	for _, v := range f.MouseButton {
		b = binary.LittleEndian.AppendUint32(b, uint32(v))
	}
	for _, v := range f.Date {
		b = binary.LittleEndian.AppendUint32(b, uint32(v))
	}
	b = binary.LittleEndian.AppendUint32(b, floatBits(f.Time))
	b = binary.LittleEndian.AppendUint32(b, floatBits(f.TimeDelta))
	b = binary.LittleEndian.AppendUint32(b, f.FrameNum)
	b = binary.LittleEndian.AppendUint32(b, f.NumTextures)
	return b
}

func floatBits(f float32) uint32 {
	return math.Float32bits(f)
}
