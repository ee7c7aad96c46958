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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andreas-jonsson/memstep/emulator/expr"
	"github.com/andreas-jonsson/memstep/emulator/heap"
	"github.com/andreas-jonsson/memstep/emulator/memlog"
	"github.com/andreas-jonsson/memstep/emulator/memory"
	"github.com/andreas-jonsson/memstep/emulator/scope"
	"github.com/andreas-jonsson/memstep/emulator/types"
)

const heapStart memory.Pointer = 0x100

var (
	intType   = types.Builtins["int"]
	shortType = types.Builtins["short"]
)

// newSnapshot builds a 512 byte machine with an 8 byte allocation, a frame
// holding p and a[4], and a step that stored 42 through p and loaded p.
func newSnapshot(t testing.TB) *Snapshot {
	mem := memory.NewBuffer(0x200)
	require.NoError(t, heap.Init(mem, heapStart, 0x80))
	p := heap.Alloc(mem, heapStart, 8)
	require.Equal(t, memory.Pointer(0x104), p)

	c := scope.NewChain()
	c.Enter(scope.Function, "main", 0x200)
	c.Declare("p", scope.Ref{Address: 0x1FC, Type: types.PointerTo(intType)})
	c.Declare("a", scope.Ref{Address: 0x1F4, Type: types.ArrayOf(shortType, 4)})
	memory.WriteWord(mem, 0x1FC, uint32(p))
	for i := 0; i < 4; i++ {
		memory.WriteUint(mem, memory.Pointer(0x1F4+2*i), 2, uint64(i+1))
	}
	globals := scope.Globals{"g": {Address: 0x40, Type: intType}}

	prev := mem.Clone()
	types.Write(mem, p, types.FromInt(intType, 42))
	log := memlog.Log{
		{Kind: memlog.Store, Address: p, Size: 4},
		{Kind: memlog.Load, Address: 0x1FC, Size: 4},
	}

	return &Snapshot{
		Memory:    mem,
		Previous:  prev,
		HeapStart: heapStart,
		Blocks:    heap.List(mem, heapStart),
		Scope:     c,
		Globals:   globals,
		Log:       log,
		Eval:      expr.Env{Memory: mem, Scope: c, Globals: globals},
	}
}

func TestWindow(t *testing.T) {
	for _, capacity := range []int{1, 7, 32, 0x200} {
		for _, shown := range []int{1, 2, 15, 32, 1000} {
			for center := 0; center < capacity+8; center += 3 {
				start, end := Window(capacity, memory.Pointer(center), shown, 0)
				want := shown
				if want > capacity {
					want = capacity
				}
				require.LessOrEqual(t, int(end), capacity-1)
				require.Equal(t, want, int(end-start)+1, "capacity %d shown %d center %d", capacity, shown, center)
			}
		}
	}

	start, end := Window(0x200, 0x1FF, 32, 0)
	require.Equal(t, memory.Pointer(0x1E0), start)
	require.Equal(t, memory.Pointer(0x1FF), end)

	start, end = Window(0x200, 0x108, 32, 1)
	require.Equal(t, memory.Pointer(0xF8), start)
	require.Equal(t, memory.Pointer(0x118), end)
}

func TestExtractBytes(t *testing.T) {
	require := require.New(t)
	snap := newSnapshot(t)

	g := Extract(snap, Options{CenterAddress: 0x108, BytesShown: 32})
	require.Equal(memory.Pointer(0xF8), g.Bytes.Start)
	require.Equal(memory.Pointer(0x117), g.Bytes.End)
	require.Len(g.Bytes.Cells, 32)

	for i, cell := range g.Bytes.Cells {
		require.Equal(i, cell.Column)
		require.Equal(g.Bytes.Start+memory.Pointer(i), cell.Address)
	}

	c := g.Bytes.Cells[0x104-0xF8]
	require.Equal("42", c.Current.String())
	require.Equal(memlog.Rank(0), c.Store)
	require.False(c.Load.Valid())
	require.True(c.HasPrevious())
	require.Equal("0", c.Previous.String())

	c = g.Bytes.Cells[0x105-0xF8]
	require.True(c.HasPrevious())
	require.False(g.Bytes.Cells[0x108-0xF8].HasPrevious())
	require.True(g.Bytes.Cells[0x108-0xF8].Center)
	require.False(g.Bytes.Cells[0x109-0xF8].Center)
}

func TestExtractHeap(t *testing.T) {
	require := require.New(t)
	snap := newSnapshot(t)

	g := Extract(snap, Options{CenterAddress: 0x108, BytesShown: 32})
	flags := func(addr memory.Pointer) HeapFlags {
		return g.Bytes.Cells[addr-g.Bytes.Start].Heap
	}

	require.Zero(flags(0xFF))
	for addr := memory.Pointer(0x100); addr < 0x104; addr++ {
		require.Equal(HeapHeader, flags(addr))
	}
	require.Equal(HeapData|HeapBlockStart, flags(0x104))
	require.Equal(HeapData, flags(0x105))
	require.Equal(HeapData|HeapBlockEnd, flags(0x10B))
	require.Equal(HeapHeader, flags(0x10C))
	require.Equal(HeapData|HeapFree|HeapBlockStart, flags(0x110))
	require.Equal(HeapData|HeapFree, flags(0x117))

	require.Equal("cell", g.Bytes.Cells[0].Class.String())
	require.Equal("cell cell-store cell-heap", g.Bytes.Cells[0x104-0xF8].Class.String())
	require.Equal("cell cell-heap cell-heap-header", g.Bytes.Cells[0x100-0xF8].Class.String())
	require.Equal("cell cell-heap cell-heap-free", g.Bytes.Cells[0x110-0xF8].Class.String())
}

func TestExtractCursors(t *testing.T) {
	snap := newSnapshot(t)

	t.Run("Rows", func(t *testing.T) {
		require := require.New(t)
		opts := Options{
			CenterAddress: 0x108,
			BytesShown:    32,
			CursorRows:    2,
			CursorExprs:   []string{"p", "q", "p + 1", "&a[0]", "p + 2"},
		}
		g := Extract(snap, opts)
		require.Equal([]Cursor{
			{Column: 0x104 - 0xF8, Address: 0x104, Row: 0, Labels: []string{"p"}},
			{Column: 0x108 - 0xF8, Address: 0x108, Row: 1, Labels: []string{"p + 1"}},
			{Column: 0x10C - 0xF8, Address: 0x10C, Row: 1, Labels: []string{"p + 2"}},
		}, g.Cursors)
		require.True(g.Bytes.Cells[0x104-0xF8].Class.Has(ClassCursor))
		require.False(g.Bytes.Cells[0x105-0xF8].Class.Has(ClassCursor))
	})

	t.Run("SameAddress", func(t *testing.T) {
		require := require.New(t)
		g := Extract(snap, Options{
			CenterAddress: 0x1F4,
			BytesShown:    16,
			CursorRows:    3,
			CursorExprs:   []string{"&a[0]", "p", "a", "&a[1]"},
		})
		require.Len(g.Cursors, 2)
		require.Equal([]string{"&a[0]", "a"}, g.Cursors[0].Labels)
		require.Equal(0, g.Cursors[0].Row)
		require.Equal([]string{"&a[1]"}, g.Cursors[1].Labels)
		require.Equal(1, g.Cursors[1].Row)
	})

	t.Run("NoEvaluator", func(t *testing.T) {
		s := *snap
		s.Eval = nil
		g := Extract(&s, Options{CenterAddress: 0x108, CursorExprs: []string{"p"}, ExtraExprs: []string{"*p"}})
		require.Empty(t, g.Cursors)
		require.Empty(t, g.ExtraRows)
	})
}

func TestExtractVariables(t *testing.T) {
	require := require.New(t)
	snap := newSnapshot(t)

	g := Extract(snap, Options{CenterAddress: 0x1F6, BytesShown: 16})
	require.Equal(memory.Pointer(0x1EE), g.Bytes.Start)

	var names []string
	for _, c := range g.Variables {
		if c.Sep != 0 {
			names = append(names, "<"+c.Sep.String()+">")
			continue
		}
		names = append(names, c.Name)
	}
	require.Equal([]string{"<sp>", "[0]", "a[1]", "[2]", "[3]", "p"}, names)

	a1 := g.Variables[2]
	require.True(a1.Center)
	require.Equal(2, a1.Size)
	require.Equal("2", a1.Current.String())
	require.Equal(0x1F6-0x1EE, a1.Column)

	p := g.Variables[5]
	require.Equal("0x0104", p.Current.String())
	require.Equal(memlog.Rank(1), p.Load)
	require.False(p.HasPrevious())
	require.Equal(14, p.Column)

	g = Extract(snap, Options{CenterAddress: 0x42, BytesShown: 8})
	require.Len(g.Variables, 1)
	require.Equal("g", g.Variables[0].Name)
	require.True(g.Variables[0].Center)
}

func TestExtractExtraRows(t *testing.T) {
	require := require.New(t)
	snap := newSnapshot(t)

	g := Extract(snap, Options{
		CenterAddress: 0x1F6,
		BytesShown:    15,
		ExtraExprs:    []string{"zz", "a[1]", "a", "*p"},
	})
	require.Equal(memory.Pointer(0x1EF), g.Bytes.Start)
	require.Len(g.ExtraRows, 2)

	row := g.ExtraRows[0]
	require.Equal("a[1]", row.Expr)
	require.Equal(2, row.Size)
	require.Len(row.Cells, 8)
	require.Equal(memory.Pointer(0x1EE), row.Cells[0].Address)
	require.Equal(-1, row.Cells[0].Column)
	require.Equal("1", row.Cells[3].Current.String())

	row = g.ExtraRows[1]
	require.Equal(4, row.Size)
	require.Equal(memory.Pointer(0x1EC), row.Cells[0].Address)
	require.Equal("260", row.Cells[4].Current.String())
}

func TestShift(t *testing.T) {
	require := require.New(t)
	snap := newSnapshot(t)
	opts := Options{CenterAddress: 0x108, BytesShown: 32}

	center, ok := ShiftLeft(snap, opts)
	require.True(ok)
	require.Equal(memory.Pointer(0x40), center)

	center, ok = ShiftRight(snap, opts)
	require.True(ok)
	require.Equal(memory.Pointer(0x1FC), center)

	opts.CenterAddress = 0x40
	center, ok = ShiftLeft(snap, opts)
	require.False(ok)
	require.Equal(memory.Pointer(0x40), center)

	opts.CenterAddress = 0x1FC
	center, ok = ShiftRight(snap, opts)
	require.True(ok)
	require.Equal(memory.Pointer(0x1FF), center)

	opts.CenterAddress = 0x1FF
	_, ok = ShiftRight(snap, opts)
	require.False(ok)

	opts = Options{CenterAddress: 0x30, BytesShown: 8, CursorExprs: []string{"&a[2]"}}
	center, _ = ShiftRight(snap, opts)
	require.Equal(memory.Pointer(0x40), center)

	markers := Markers(snap, []string{"&a[2]", "nope"})
	require.Len(markers, 6)
	require.Equal(MarkerGlobal, markers[0].Kind)
	require.Equal(MarkerHeapStart, markers[1].Kind)
	require.Equal(Marker{Kind: MarkerFunction, Address: 0x200}, markers[5])
}

func TestFormat(t *testing.T) {
	require := require.New(t)
	require.Equal(memory.Pointer(0xABB0), Seek(0xAB12))
	require.Equal(memory.Pointer(0x1220), Seek(0x1234))
	require.Equal("00FF", FormatAddress(0xFF))
	require.Equal("2345", FormatAddress(0x12345))
	require.Equal("0A", FormatByte(10))
	require.Equal(memory.Pointer(0), ClipCenter(16, -4))
	require.Equal(memory.Pointer(15), ClipCenter(16, 40))
}

func BenchmarkExtract(b *testing.B) {
	snap := newSnapshot(b)
	opts := Options{
		CenterAddress: 0x1F0,
		BytesShown:    64,
		CursorExprs:   []string{"p", "&a[1]"},
		ExtraExprs:    []string{"a[0]"},
	}
	for i := 0; i < b.N; i++ {
		Extract(snap, opts)
	}
}
