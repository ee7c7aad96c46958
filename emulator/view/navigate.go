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
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/andreas-jonsson/memstep/emulator/memory"
	"github.com/andreas-jonsson/memstep/emulator/memlog"
	"github.com/andreas-jonsson/memstep/emulator/scope"
)

type MarkerKind byte

const (
	MarkerHeapStart MarkerKind = iota
	MarkerCursor
	MarkerLoad
	MarkerStore
	MarkerGlobal
	MarkerFunction
)

// Marker is an address of interest used to pan the view.
type Marker struct {
	Kind    MarkerKind
	Address memory.Pointer
}

// Markers lists pan targets ordered by address.
func Markers(snap *Snapshot, cursorExprs []string) []Marker {
	markers := []Marker{{Kind: MarkerHeapStart, Address: snap.HeapStart}}

	if snap.Eval != nil {
		for _, expr := range cursorExprs {
			if addr, err := snap.Eval.Pointer(expr); err == nil {
				markers = append(markers, Marker{Kind: MarkerCursor, Address: addr})
			}
		}
	}
	for _, e := range snap.Log {
		kind := MarkerLoad
		if e.Kind == memlog.Store {
			kind = MarkerStore
		}
		markers = append(markers, Marker{Kind: kind, Address: e.Address})
	}
	for _, name := range snap.Globals.Names() {
		markers = append(markers, Marker{Kind: MarkerGlobal, Address: snap.Globals[name].Address})
	}
	snap.Scope.Walk(func(n scope.Node) bool {
		if n.Kind == scope.Function {
			markers = append(markers, Marker{Kind: MarkerFunction, Address: n.Limit})
		}
		return true
	})

	slices.SortStableFunc(markers, func(a, b Marker) int {
		switch {
		case a.Address < b.Address:
			return -1
		case a.Address > b.Address:
			return 1
		}
		return 0
	})
	return markers
}

// ClipCenter keeps a center address inside memory.
func ClipCenter(capacity int, addr int64) memory.Pointer {
	if addr < 0 {
		return 0
	}
	if addr > int64(capacity)-1 {
		return memory.Pointer(capacity - 1)
	}
	return memory.Pointer(addr)
}

// ShiftLeft centers the view on the closest marker before the window. The
// second result is false when the center did not change.
func ShiftLeft(snap *Snapshot, opts Options) (memory.Pointer, bool) {
	start, _ := Window(snap.Memory.Size(), opts.CenterAddress, opts.shown(), 0)
	var (
		next  memory.Pointer
		found bool
	)
	for _, m := range Markers(snap, opts.CursorExprs) {
		if m.Address < start && (!found || m.Address > next) {
			next, found = m.Address, true
		}
	}
	if !found {
		return opts.CenterAddress, false
	}
	center := ClipCenter(snap.Memory.Size(), int64(next))
	return center, center != opts.CenterAddress
}

// ShiftRight is the mirror of ShiftLeft.
func ShiftRight(snap *Snapshot, opts Options) (memory.Pointer, bool) {
	_, end := Window(snap.Memory.Size(), opts.CenterAddress, opts.shown(), 0)
	var (
		next  memory.Pointer
		found bool
	)
	for _, m := range Markers(snap, opts.CursorExprs) {
		if m.Address > end && (!found || m.Address < next) {
			next, found = m.Address, true
		}
	}
	if !found {
		return opts.CenterAddress, false
	}
	center := ClipCenter(snap.Memory.Size(), int64(next))
	return center, center != opts.CenterAddress
}

// Seek snaps a slider position to a round address: the low byte is cleared
// and nibble 2 is copied into nibble 1, so 0xAB00 becomes 0xABB0.
func Seek(pos memory.Pointer) memory.Pointer {
	pos &^= 0xFF
	return pos | 0xF0&(pos>>4)
}

func FormatAddress(addr memory.Pointer) string {
	return fmt.Sprintf("%04X", uint32(addr)&0xFFFF)
}

func FormatByte(b byte) string {
	return fmt.Sprintf("%02X", b)
}
