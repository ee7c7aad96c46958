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

// Package heap implements malloc/free over a region of simulated memory.
//
// All allocator state lives in the memory itself: every block starts with a
// 32-bit little-endian header holding the raw block size (header included)
// with bit 0 set when the block is free. A header of zero terminates the
// chain. Nothing is cached between calls, so the heap can always be
// recovered by scanning memory.
package heap

import (
	"errors"

	"github.com/andreas-jonsson/memstep/emulator/memory"
)

const (
	HeaderSize = 4

	freeBit  = 1
	sizeMask = ^uint32(3)
)

var (
	ErrRegionTooSmall = errors.New("heap region too small")
	ErrMisaligned     = errors.New("heap start is not word aligned")
)

type Block struct {
	Header memory.Pointer
	Size   uint32
	Free   bool
}

// Start is the address of the first byte of the data area.
func (b Block) Start() memory.Pointer {
	return b.Header + HeaderSize
}

// End is the address of the last byte of the data area.
func (b Block) End() memory.Pointer {
	return b.Header + memory.Pointer(b.Size) - 1
}

func (b Block) Next() memory.Pointer {
	return b.Header + memory.Pointer(b.Size)
}

func (b Block) DataSize() int {
	return int(b.Size) - HeaderSize
}

// Init writes a single free block spanning the heap region followed by a
// terminator word. The region runs from start to the end of memory minus
// the reserved stack bytes.
func Init(m memory.Memory, start memory.Pointer, stackBytes int) error {
	if start%HeaderSize != 0 {
		return ErrMisaligned
	}
	size := int64(m.Size()) - int64(start) - int64(stackBytes)
	size &^= 3
	if size < 2*HeaderSize {
		return ErrRegionTooSmall
	}

	memory.WriteWord(m, start, uint32(size)|freeBit)
	if next := int64(start) + size; next+HeaderSize <= int64(m.Size()) {
		memory.WriteWord(m, memory.Pointer(next), 0)
	}
	return nil
}

func readBlock(m memory.Memory, ref memory.Pointer) (Block, bool) {
	// Without reserved stack the last block may end too close to the end of
	// memory for a terminator word.
	if int64(ref)+HeaderSize > int64(m.Size()) {
		return Block{}, false
	}
	header := memory.ReadWord(m, ref)
	size := header & sizeMask
	if size == 0 {
		return Block{}, false
	}
	return Block{Header: ref, Size: size, Free: header&freeBit != 0}, true
}

type Iterator struct {
	m     memory.Memory
	next  memory.Pointer
	block Block
	done  bool
}

// Blocks returns a fresh iterator over the block chain starting at start.
func Blocks(m memory.Memory, start memory.Pointer) *Iterator {
	return &Iterator{m: m, next: start}
}

func (it *Iterator) Next() bool {
	if it.done {
		return false
	}
	b, ok := readBlock(it.m, it.next)
	if !ok {
		it.done = true
		return false
	}
	it.block = b
	it.next = b.Next()
	return true
}

func (it *Iterator) Block() Block {
	return it.block
}

func List(m memory.Memory, start memory.Pointer) []Block {
	var blocks []Block
	for it := Blocks(m, start); it.Next(); {
		blocks = append(blocks, it.Block())
	}
	return blocks
}

// Alloc is a first fit allocator. It returns memory.Nil when no free block
// can hold n bytes.
func Alloc(m memory.Memory, start memory.Pointer, n uint32) memory.Pointer {
	for it := Blocks(m, start); it.Next(); {
		if b := it.Block(); b.Free && b.Size-HeaderSize >= n {
			return allocBlock(m, b, n)
		}
	}
	return memory.Nil
}

func allocBlock(m memory.Memory, b Block, n uint32) memory.Pointer {
	n = (n + 3) &^ 3
	netSize := HeaderSize + n

	if b.Size > netSize+HeaderSize {
		memory.WriteWord(m, b.Header+memory.Pointer(netSize), (b.Size-netSize)|freeBit)
	} else {
		netSize = b.Size
	}
	memory.WriteWord(m, b.Header, netSize)
	return b.Start()
}

// Free releases the block whose data area starts at p, merging it with
// free neighbours. Pointers that do not match a block are ignored.
func Free(m memory.Memory, start, p memory.Pointer) {
	var (
		prev    Block
		hasPrev bool
	)
	for it := Blocks(m, start); it.Next(); {
		b := it.Block()
		if b.Start() != p {
			prev, hasPrev = b, true
			continue
		}

		ref, size := b.Header, b.Size
		if hasPrev && prev.Free {
			ref = prev.Header
			size += prev.Size
		}
		if next, ok := readBlock(m, b.Next()); ok && next.Free {
			size += next.Size
		}
		memory.WriteWord(m, ref, size|freeBit)
		return
	}
}

// Stats summarizes the block chain.
type Stats struct {
	Blocks, FreeBlocks int
	Used, Available    int
}

func Summary(m memory.Memory, start memory.Pointer) Stats {
	var s Stats
	for it := Blocks(m, start); it.Next(); {
		b := it.Block()
		s.Blocks++
		if b.Free {
			s.FreeBlocks++
			s.Available += b.DataSize()
		} else {
			s.Used += b.DataSize()
		}
	}
	return s
}
