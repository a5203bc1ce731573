package uniforms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Bytes followed by FromBytes must reproduce the value bit for bit,
// including 64-bit integers beyond float64's exact range.
func TestFromBytesRoundTrip(t *testing.T) {
	values := []Value{
		NewF32("a", 1.5),
		NewF64("b", -0.25),
		NewU32("c", 7),
		NewU64("d", 1<<60+5),
		NewI32("e", -12),
		NewI64("f", -(1<<60 + 5)),
		NewBool("g", true),
		NewBool("h", false),
	}
	for _, v := range values {
		got, err := FromBytes(v.Name(), v.Type(), v.Bytes())
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestFromBytesRejectsWrongWidth(t *testing.T) {
	_, err := FromBytes("a", F64, []byte{1, 2, 3, 4})
	assert.Error(t, err)
	_, err = FromBytes("a", Bool, []byte{1, 0, 0, 0, 0, 0, 0, 0})
	assert.Error(t, err)
}

func TestValueBytesWidths(t *testing.T) {
	assert.Len(t, NewF32("a", 1).Bytes(), 4)
	assert.Len(t, NewU32("a", 1).Bytes(), 4)
	assert.Len(t, NewI32("a", 1).Bytes(), 4)
	assert.Len(t, NewF64("a", 1).Bytes(), 8)
	assert.Len(t, NewU64("a", 1).Bytes(), 8)
	assert.Len(t, NewI64("a", 1).Bytes(), 8)
	// booleans pack as a full 4-byte word
	assert.Len(t, NewBool("a", true).Bytes(), 4)
}

func TestBoolPacksAsWord(t *testing.T) {
	assert.Equal(t, []byte{1, 0, 0, 0}, NewBool("on", true).Bytes())
	assert.Equal(t, []byte{0, 0, 0, 0}, NewBool("off", false).Bytes())
}

func TestValueRoundTrip(t *testing.T) {
	assert.Equal(t, float32(2.5), NewF32("a", 2.5).F32())
	assert.Equal(t, 2.5, NewF64("a", 2.5).F64())
	assert.Equal(t, uint32(42), NewU32("a", 42).U32())
	assert.Equal(t, uint64(1)<<40, NewU64("a", 1<<40).U64())
	assert.Equal(t, int32(-7), NewI32("a", -7).I32())
	assert.Equal(t, int64(-1)<<40, NewI64("a", -1<<40).I64())
	assert.True(t, NewBool("a", true).Bool())
}

func TestSetFloatKeepsTag(t *testing.T) {
	v := NewI32("count", 3)
	v.SetFloat(-9)
	assert.Equal(t, I32, v.Type())
	assert.Equal(t, int32(-9), v.I32())

	b := NewBool("flag", false)
	b.SetFloat(1)
	assert.Equal(t, Bool, b.Type())
	assert.True(t, b.Bool())
}

func TestPackOrderAndOffsets(t *testing.T) {
	values := []Value{
		NewF32("scale", 1),
		NewF64("bias", 2),
		NewBool("flag", true),
	}
	assert.Equal(t, 16, TotalSize(values))
	assert.Equal(t, []int{0, 4, 12}, Offsets(values))

	packed := Pack(values)
	require.Len(t, packed, 16)
	assert.Equal(t, NewF32("scale", 1).Bytes(), packed[0:4])
	assert.Equal(t, NewF64("bias", 2).Bytes(), packed[4:12])
	assert.Equal(t, NewBool("flag", true).Bytes(), packed[12:16])
}

func TestFrameBlockSize(t *testing.T) {
	var f FrameBlock
	assert.Len(t, f.Bytes(), FrameBlockSize)
}

func TestFrameBlockLayout(t *testing.T) {
	f := FrameBlock{
		Resolution:  [4]float32{1920, 1080, 0, 0},
		Date:        [4]int32{2026, 8, 30, 0},
		Time:        1.5,
		FrameNum:    9,
		NumTextures: 2,
	}
	b := f.Bytes()
	assert.Equal(t, NewF32("", 1920).Bytes(), b[0:4])
	assert.Equal(t, NewI32("", 2026).Bytes(), b[48:52])
	assert.Equal(t, NewF32("", 1.5).Bytes(), b[64:68])
	assert.Equal(t, NewU32("", 9).Bytes(), b[72:76])
	assert.Equal(t, NewU32("", 2).Bytes(), b[76:80])
}
