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

package view

import (
	"strings"

	"github.com/andreas-jonsson/memstep/emulator/memory"
)

type HeapFlags byte

const (
	HeapData HeapFlags = 1 << iota
	HeapFree
	HeapBlockStart
	HeapBlockEnd
	HeapHeader
)

func (x *extractor) overlayHeap(cells []Cell) {
	set := func(addr int64, f HeapFlags) {
		if addr >= int64(x.start) && addr <= int64(x.end) {
			cells[addr-int64(x.start)].Heap = f
		}
	}

	for _, b := range x.snap.Blocks {
		start, end := int64(b.Start()), int64(b.End())
		if start > int64(x.end) || end < int64(x.start) {
			continue
		}

		for addr := int64(b.Header); addr < start; addr++ {
			set(addr, HeapHeader)
		}

		flags := HeapData
		if b.Free {
			flags |= HeapFree
		}
		from, to := max64(start, int64(x.start)), min64(end, int64(x.end))
		for addr := from; addr <= to; addr++ {
			f := flags
			if addr == start {
				f |= HeapBlockStart
			}
			if addr == end {
				f |= HeapBlockEnd
			}
			set(addr, f)
		}
	}
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// Class is the set of display classes of a byte cell.
type Class uint16

const (
	ClassStore Class = 1 << iota
	ClassLoad
	ClassCursor
	ClassHeap
	ClassHeapHeader
	ClassHeapFree
)

var classNames = []struct {
	c    Class
	name string
}{
	{ClassStore, "cell-store"},
	{ClassLoad, "cell-load"},
	{ClassCursor, "cell-cursor"},
	{ClassHeap, "cell-heap"},
	{ClassHeapHeader, "cell-heap-header"},
	{ClassHeapFree, "cell-heap-free"},
}

func (c Class) Has(o Class) bool {
	return c&o == o
}

func (c Class) String() string {
	s := []string{"cell"}
	for _, n := range classNames {
		if c.Has(n.c) {
			s = append(s, n.name)
		}
	}
	return strings.Join(s, " ")
}

func classify(cells []Cell, cursors []Cursor) {
	cursorAt := make(map[memory.Pointer]bool, len(cursors))
	for _, c := range cursors {
		cursorAt[c.Address] = true
	}

	for i := range cells {
		cell := &cells[i]
		var c Class
		if cell.Store.Valid() {
			c |= ClassStore
		}
		if cell.Load.Valid() {
			c |= ClassLoad
		}
		if cursorAt[cell.Address] {
			c |= ClassCursor
		}
		if cell.Heap != 0 {
			c |= ClassHeap
			if cell.Heap&HeapHeader != 0 {
				c |= ClassHeapHeader
			}
			if cell.Heap&HeapFree != 0 {
				c |= ClassHeapFree
			}
		}
		cell.Class = c
	}
}
