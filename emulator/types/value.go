/*
Copyright (c) 2019-2021 Andreas T Jonsson

This software is provided 'as-is', without any express or implied
warranty. In no event will the authors be held liable for any damages
arising from the use of this software.

Permission is granted to anyone to use this software for any purpose,
including commercial applications, and to alter it and redistribute it
freely, subject to the following restrictions:

1. The origin of this software must not be misrepresented; you must not
   claim that you wrote the original software. If you use this software
   in a product, an acknowledgment in the product documentation would be
   appreciated but is not required.
2. Altered source versions must be plainly marked as such, and must not be
   misrepresented as being the original software.
3. This notice may not be removed or altered from any source distribution.
*/

package types

import (
	"fmt"
	"math"

	"github.com/andreas-jonsson/memstep/emulator/memory"
)

// Value is a builtin or pointer value decoded from memory.
type Value struct {
	Type Type
	Bits uint64
}

var byteType = Builtins["unsigned char"]

func Byte(b byte) Value {
	return Value{Type: byteType, Bits: uint64(b)}
}

// Readable reports whether values of t can be read with Read.
func Readable(t Type) bool {
	switch t.(type) {
	case *Builtin, *Pointer:
		return t.Size() > 0
	}
	return false
}

// Read decodes a little-endian value of type t at addr.
func Read(m memory.Memory, addr memory.Pointer, t Type) (Value, bool) {
	if !Readable(t) {
		return Value{}, false
	}
	return Value{Type: t, Bits: memory.ReadUint(m, addr, t.Size())}, true
}

func Write(m memory.Memory, addr memory.Pointer, v Value) {
	memory.WriteUint(m, addr, v.Type.Size(), v.Bits)
}

// FromInt encodes i as a value of type t, truncating to its size.
func FromInt(t Type, i int64) Value {
	if b, ok := t.(*Builtin); ok && b.Float {
		if b.Bytes == 4 {
			return Value{Type: t, Bits: uint64(math.Float32bits(float32(i)))}
		}
		return Value{Type: t, Bits: math.Float64bits(float64(i))}
	}
	return Value{Type: t, Bits: uint64(i) & sizeMask(t.Size())}
}

func sizeMask(n int) uint64 {
	if n >= 8 {
		return math.MaxUint64
	}
	return 1<<(uint(n)*8) - 1
}

func (v Value) Int() int64 {
	if b, ok := v.Type.(*Builtin); ok {
		if b.Float {
			return int64(v.Float())
		}
		if b.Signed && b.Bytes < 8 {
			shift := uint(64 - b.Bytes*8)
			return int64(v.Bits<<shift) >> shift
		}
	}
	return int64(v.Bits)
}

func (v Value) Float() float64 {
	if v.Type.Size() == 4 {
		return float64(math.Float32frombits(uint32(v.Bits)))
	}
	return math.Float64frombits(v.Bits)
}

func (v Value) Pointer() memory.Pointer {
	return memory.Pointer(v.Bits)
}

func (v Value) String() string {
	switch t := v.Type.(type) {
	case *Pointer:
		return fmt.Sprintf("0x%04X", v.Bits)
	case *Builtin:
		switch {
		case t.Float:
			return fmt.Sprintf("%g", v.Float())
		case t.Signed:
			return fmt.Sprintf("%d", v.Int())
		}
		return fmt.Sprintf("%d", v.Bits)
	}
	return "?"
}
