// Package uniforms implements the CPU-side value store backing shader
// uniforms and push constants. Values are a closed set of scalar types
// identified by a tag; the GPU byte layout of a list of values is the
// ordered concatenation of each value's native-width little-endian bytes.
package uniforms

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Type tags a Value with one of the supported scalar types.
type Type uint8

const (
	F32 Type = iota
	F64
	U32
	U64
	I32
	I64
	Bool
)

// Size returns the number of bytes the type occupies in a packed buffer.
// Booleans pack as a 4-byte word holding 0 or 1.
func (t Type) Size() int {
	switch t {
	case F32, U32, I32, Bool:
		return 4
	case F64, U64, I64:
		return 8
	}
	return 0
}

func (t Type) String() string {
	switch t {
	case F32:
		return "f32"
	case F64:
		return "f64"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case Bool:
		return "bool"
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// ParseType maps a config-file tag to its Type. The second result is
// false for tags outside the supported set.
func ParseType(tag string) (Type, bool) {
	switch tag {
	case "f32":
		return F32, true
	case "f64":
		return F64, true
	case "u32":
		return U32, true
	case "u64":
		return U64, true
	case "i32":
		return I32, true
	case "i64":
		return I64, true
	case "bool":
		return Bool, true
	}
	return 0, false
}

// Value is one named scalar. The payload is stored as raw bits wide
// enough for the largest member, interpreted according to the tag.
type Value struct {
	name string
	typ  Type
	bits uint64
}

func NewF32(name string, v float32) Value {
	return Value{name: name, typ: F32, bits: uint64(math.Float32bits(v))}
}

func NewF64(name string, v float64) Value {
	return Value{name: name, typ: F64, bits: math.Float64bits(v)}
}

func NewU32(name string, v uint32) Value {
	return Value{name: name, typ: U32, bits: uint64(v)}
}

func NewU64(name string, v uint64) Value {
	return Value{name: name, typ: U64, bits: v}
}

func NewI32(name string, v int32) Value {
	return Value{name: name, typ: I32, bits: uint64(uint32(v))}
}

func NewI64(name string, v int64) Value {
	return Value{name: name, typ: I64, bits: uint64(v)}
}

func NewBool(name string, v bool) Value {
	var bits uint64
	if v {
		bits = 1
	}
	return Value{name: name, typ: Bool, bits: bits}
}

func (v Value) Name() string { return v.name }
func (v Value) Type() Type   { return v.typ }

func (v Value) F32() float32 { return math.Float32frombits(uint32(v.bits)) }
func (v Value) F64() float64 { return math.Float64frombits(v.bits) }
func (v Value) U32() uint32  { return uint32(v.bits) }
func (v Value) U64() uint64  { return v.bits }
func (v Value) I32() int32   { return int32(uint32(v.bits)) }
func (v Value) I64() int64   { return int64(v.bits) }
func (v Value) Bool() bool   { return v.bits != 0 }

// Float returns the payload widened to float64, for display and editing.
func (v Value) Float() float64 {
	switch v.typ {
	case F32:
		return float64(v.F32())
	case F64:
		return v.F64()
	case U32:
		return float64(v.U32())
	case U64:
		return float64(v.U64())
	case I32:
		return float64(v.I32())
	case I64:
		return float64(v.I64())
	case Bool:
		if v.Bool() {
			return 1
		}
		return 0
	}
	return 0
}

// SetFloat replaces the payload from an edited float64, narrowing to the
// value's own type. The tag never changes.
func (v *Value) SetFloat(f float64) {
	switch v.typ {
	case F32:
		v.bits = uint64(math.Float32bits(float32(f)))
	case F64:
		v.bits = math.Float64bits(f)
	case U32:
		v.bits = uint64(uint32(f))
	case U64:
		v.bits = uint64(f)
	case I32:
		v.bits = uint64(uint32(int32(f)))
	case I64:
		v.bits = uint64(int64(f))
	case Bool:
		if f != 0 {
			v.bits = 1
		} else {
			v.bits = 0
		}
	}
}

// FromBytes reconstructs a value from its packed little-endian form,
// inverting Bytes without going through float64.
func FromBytes(name string, typ Type, b []byte) (Value, error) {
	if len(b) != typ.Size() {
		return Value{}, fmt.Errorf("%s payload is %d bytes, got %d", typ, typ.Size(), len(b))
	}
	var bits uint64
	switch typ.Size() {
	case 4:
		bits = uint64(binary.LittleEndian.Uint32(b))
	case 8:
		bits = binary.LittleEndian.Uint64(b)
	}
	return Value{name: name, typ: typ, bits: bits}, nil
}

// Bytes serializes the value to its packed little-endian form.
func (v Value) Bytes() []byte {
	b := make([]byte, v.typ.Size())
	switch v.typ.Size() {
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v.bits))
	case 8:
		binary.LittleEndian.PutUint64(b, v.bits)
	}
	return b
}

// TotalSize returns the packed size of the list.
func TotalSize(values []Value) int {
	var n int
	for _, v := range values {
		n += v.typ.Size()
	}
	return n
}

// Offsets returns the packed byte offset of each value, cumulative in
// declaration order.
func Offsets(values []Value) []int {
	offs := make([]int, len(values))
	var n int
	for i, v := range values {
		offs[i] = n
		n += v.typ.Size()
	}
	return offs
}

// Pack concatenates the values' bytes in order. The result is suitable
// for a single buffer upload.
func Pack(values []Value) []byte {
	b := make([]byte, 0, TotalSize(values))
	for _, v := range values {
		b = append(b, v.Bytes()...)
	}
	return b
}
