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

// Package view derives a renderable grid of memory cells from a snapshot of
// the simulated program: raw bytes, named variables, tiled extra rows,
// cursors and heap block annotations.
//
// Extract never mutates its inputs and builds a fresh grid on every call,
// so it may be run against the current and previous snapshot freely.
package view

import (
	"github.com/andreas-jonsson/memstep/emulator/heap"
	"github.com/andreas-jonsson/memstep/emulator/memlog"
	"github.com/andreas-jonsson/memstep/emulator/memory"
	"github.com/andreas-jonsson/memstep/emulator/scope"
	"github.com/andreas-jonsson/memstep/emulator/types"
)

const (
	DefaultBytesShown = 32
	DefaultCursorRows = 1
)

// Evaluator resolves cursor and extra expressions. Errors make the
// expression contribute nothing to the view.
type Evaluator interface {
	Pointer(expr string) (memory.Pointer, error)
	Ref(expr string) (scope.Ref, error)
}

type Options struct {
	CenterAddress memory.Pointer
	BytesShown    int
	ExtraBytes    int
	CursorRows    int
	CursorExprs   []string
	ExtraExprs    []string
}

func (o Options) shown() int {
	if o.BytesShown <= 0 {
		return DefaultBytesShown
	}
	return o.BytesShown
}

func (o Options) cursorRows() int {
	if o.CursorRows <= 0 {
		return DefaultCursorRows
	}
	return o.CursorRows
}

// Snapshot is the state of one execution step. Previous may be nil, in
// which case stored cells carry no previous value.
type Snapshot struct {
	Memory    memory.Memory
	Previous  memory.Memory
	HeapStart memory.Pointer
	Blocks    []heap.Block
	Scope     *scope.Chain
	Globals   scope.Globals
	Log       memlog.Log
	Eval      Evaluator
}

type Cell struct {
	Column   int
	Address  memory.Pointer
	Size     int
	Current  types.Value
	Previous types.Value
	Load     memlog.Rank
	Store    memlog.Rank
	Name     string
	Center   bool
	Sep      scope.SepKind
	Heap     HeapFlags
	Class    Class
}

// HasPrevious reports whether the cell was stored to during the step.
func (c Cell) HasPrevious() bool {
	return c.Store.Valid()
}

type Bytes struct {
	Start, End memory.Pointer
	Cells      []Cell
}

type ExtraRow struct {
	Expr  string
	Size  int
	Cells []Cell
}

type Grid struct {
	Bytes     Bytes
	Cursors   []Cursor
	Variables []Cell
	ExtraRows []ExtraRow
}

// Window clips the visible range to memory. A window that would run past
// the end of memory is shifted left rather than shrunk.
func Window(capacity int, center memory.Pointer, shown, extra int) (memory.Pointer, memory.Pointer) {
	if shown > capacity {
		shown = capacity
	}
	if shown < 1 {
		shown = 1
	}
	if extra < 0 {
		extra = 0
	}

	start := int64(center) - int64(shown/2)
	if start < 0 {
		start = 0
	}
	if start+int64(shown) > int64(capacity) {
		start = int64(capacity - shown)
	}
	end := start + int64(shown+extra) - 1
	if end > int64(capacity)-1 {
		end = int64(capacity) - 1
	}
	return memory.Pointer(start), memory.Pointer(end)
}

type extractor struct {
	snap       *Snapshot
	ops        *memlog.Index
	start, end memory.Pointer
	center     memory.Pointer
}

func Extract(snap *Snapshot, opts Options) *Grid {
	start, end := Window(snap.Memory.Size(), opts.CenterAddress, opts.shown(), opts.ExtraBytes)
	x := &extractor{
		snap:   snap,
		ops:    memlog.NewIndex(snap.Log),
		start:  start,
		end:    end,
		center: opts.CenterAddress,
	}

	g := &Grid{Bytes: Bytes{Start: start, End: end}}
	for addr := int64(start); addr <= int64(end); addr++ {
		g.Bytes.Cells = append(g.Bytes.Cells, x.byteCell(memory.Pointer(addr)))
	}

	g.Cursors = x.cursors(opts.CursorExprs, opts.cursorRows())
	g.Variables = x.variables()
	for _, expr := range opts.ExtraExprs {
		if row, ok := x.extraRow(expr); ok {
			g.ExtraRows = append(g.ExtraRows, row)
		}
	}

	x.overlayHeap(g.Bytes.Cells)
	classify(g.Bytes.Cells, g.Cursors)
	return g
}

func (x *extractor) column(addr memory.Pointer) int {
	return int(int64(addr) - int64(x.start))
}

func (x *extractor) byteCell(addr memory.Pointer) Cell {
	cell := Cell{
		Column:  x.column(addr),
		Address: addr,
		Size:    1,
		Current: types.Byte(x.snap.Memory.ReadByte(addr)),
		Center:  addr == x.center,
	}
	ops := x.ops.Byte(addr)
	cell.Load, cell.Store = ops.Load, ops.Store
	if cell.Store.Valid() && x.snap.Previous != nil && memory.InBounds(x.snap.Previous, int64(addr), 1) {
		cell.Previous = types.Byte(x.snap.Previous.ReadByte(addr))
	}
	return cell
}

// valueCell builds a cell for a builtin or pointer value. Values that do
// not fit in memory are dropped.
func (x *extractor) valueCell(ref scope.Ref) (Cell, bool) {
	size := ref.Type.Size()
	if !types.Readable(ref.Type) || !memory.InBounds(x.snap.Memory, int64(ref.Address), size) {
		return Cell{}, false
	}
	current, _ := types.Read(x.snap.Memory, ref.Address, ref.Type)
	cell := Cell{
		Column:  x.column(ref.Address),
		Address: ref.Address,
		Size:    size,
		Current: current,
	}
	ops := x.ops.Range(ref.Address, ref.End())
	cell.Load, cell.Store = ops.Load, ops.Store
	if prev := x.snap.Previous; cell.Store.Valid() && prev != nil && memory.InBounds(prev, int64(ref.Address), size) {
		cell.Previous, _ = types.Read(prev, ref.Address, ref.Type)
	}
	return cell, true
}

func (x *extractor) variables() []Cell {
	values, seps := scope.Resolve(x.snap.Scope, x.snap.Globals, x.start, x.end)

	cells := make([]Cell, 0, len(values)+len(seps))
	for _, s := range seps {
		cells = append(cells, Cell{
			Column:  x.column(s.Address),
			Address: s.Address,
			Load:    memlog.NoRank,
			Store:   memlog.NoRank,
			Sep:     s.Kind,
		})
	}
	for _, v := range values {
		cell, ok := x.valueCell(v.Ref)
		if !ok {
			continue
		}
		cell.Center = v.Contains(x.center)
		cell.Name = v.Label(cell.Center)
		cells = append(cells, cell)
	}
	return cells
}

// extraRow tiles the value designated by expr across the window, aligned
// on the value's own address.
func (x *extractor) extraRow(expr string) (ExtraRow, bool) {
	if x.snap.Eval == nil {
		return ExtraRow{}, false
	}
	ref, err := x.snap.Eval.Ref(expr)
	if err != nil || !types.Readable(ref.Type) {
		return ExtraRow{}, false
	}

	size := int64(ref.Type.Size())
	align := int64(ref.Address) % size
	first := int64(x.start) - floorMod(int64(x.start)-align, size)

	row := ExtraRow{Expr: expr, Size: int(size)}
	for addr := first; addr <= int64(x.end); addr += size {
		if addr < 0 {
			continue
		}
		if cell, ok := x.valueCell(scope.Ref{Address: memory.Pointer(addr), Type: ref.Type}); ok {
			row.Cells = append(row.Cells, cell)
		}
	}
	return row, true
}

func floorMod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
