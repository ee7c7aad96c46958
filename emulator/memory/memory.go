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

package memory

import (
	"encoding/hex"
	"fmt"
)

// Nil is the null pointer value returned by failed allocations.
const Nil Pointer = 0

type Pointer uint32

func (p Pointer) String() string {
	return fmt.Sprintf("0x%X", uint32(p))
}

func (p Pointer) Add(i int) Pointer {
	return Pointer(int64(p) + int64(i))
}

type Memory interface {
	ReadByte(addr Pointer) byte
	WriteByte(addr Pointer, data byte)
	Size() int
}

// AccessError is the panic value raised on any access outside the buffer.
type AccessError struct {
	Op   string
	Addr Pointer
	Size int
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s of unmapped memory: %v (size 0x%X)", e.Op, e.Addr, e.Size)
}

type Buffer struct {
	mem []byte
}

func NewBuffer(size int) *Buffer {
	return &Buffer{mem: make([]byte, size)}
}

func (m *Buffer) Size() int {
	return len(m.mem)
}

func (m *Buffer) ReadByte(addr Pointer) byte {
	if int64(addr) >= int64(len(m.mem)) {
		panic(&AccessError{Op: "read", Addr: addr, Size: len(m.mem)})
	}
	return m.mem[addr]
}

func (m *Buffer) WriteByte(addr Pointer, data byte) {
	if int64(addr) >= int64(len(m.mem)) {
		panic(&AccessError{Op: "write", Addr: addr, Size: len(m.mem)})
	}
	m.mem[addr] = data
}

func (m *Buffer) Clone() *Buffer {
	mem := make([]byte, len(m.mem))
	copy(mem, m.mem)
	return &Buffer{mem: mem}
}

// Bytes exposes the backing slice. Callers must not resize it.
func (m *Buffer) Bytes() []byte {
	return m.mem
}

// ReadUint reads an n-byte little-endian quantity, n <= 8.
func ReadUint(m Memory, addr Pointer, n int) uint64 {
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(m.ReadByte(addr.Add(i)))
	}
	return v
}

func WriteUint(m Memory, addr Pointer, n int, v uint64) {
	for i := 0; i < n; i++ {
		m.WriteByte(addr.Add(i), byte(v))
		v >>= 8
	}
}

func ReadWord(m Memory, addr Pointer) uint32 {
	return uint32(ReadUint(m, addr, 4))
}

func WriteWord(m Memory, addr Pointer, data uint32) {
	WriteUint(m, addr, 4, uint64(data))
}

// Dump returns a hex dump of the inclusive range [from, to].
func Dump(m Memory, from, to Pointer) string {
	if to < from {
		return ""
	}
	buffer := make([]byte, int(to-from)+1)
	for i := range buffer {
		buffer[i] = m.ReadByte(from.Add(i))
	}
	return hex.Dump(buffer)
}

// InBounds reports whether the n bytes starting at addr lie inside m.
func InBounds(m Memory, addr int64, n int) bool {
	return addr >= 0 && n >= 0 && addr+int64(n) <= int64(m.Size())
}
