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

package scope

import (
	"strconv"
	"strings"

	"github.com/andreas-jonsson/memstep/emulator/memory"
	"github.com/andreas-jonsson/memstep/emulator/types"
)

// Selector is an array index or, when Field is set, a record field.
type Selector struct {
	Index int
	Field string
}

func (s Selector) String() string {
	if s.Field != "" {
		return "." + s.Field
	}
	return "[" + strconv.Itoa(s.Index) + "]"
}

// Path lists selectors from the outermost value inwards.
type Path []Selector

func (p Path) append(s Selector) Path {
	q := make(Path, len(p)+1)
	copy(q, p)
	q[len(p)] = s
	return q
}

// Label names a value. The short form is only the innermost selector.
func Label(name string, path Path, full bool) string {
	if len(path) == 0 {
		return name
	}
	if !full {
		return path[len(path)-1].String()
	}
	var sb strings.Builder
	sb.WriteString(name)
	for _, s := range path {
		sb.WriteString(s.String())
	}
	return sb.String()
}

type Value struct {
	Name string
	Path Path
	Ref  Ref
}

func (v Value) Label(full bool) string {
	return Label(v.Name, v.Path, full)
}

// Contains reports whether addr falls inside the value.
func (v Value) Contains(addr memory.Pointer) bool {
	return v.Ref.Address <= addr && int64(addr) < int64(v.Ref.Address)+int64(v.Ref.Type.Size())
}

type SepKind byte

const (
	SepStackPointer SepKind = iota + 1
	SepFunction
	SepBlock
)

var sepNames = [...]string{"", "sp", "function", "block"}

func (k SepKind) String() string {
	if int(k) < len(sepNames) {
		return sepNames[k]
	}
	return ""
}

// Separator marks a stack area boundary. It has no value.
type Separator struct {
	Kind    SepKind
	Address memory.Pointer
}

// Overlapping calls fn for every builtin or pointer value within ref whose
// bytes intersect the inclusive range [start, end]. Composite values are
// only descended where they overlap the range.
func Overlapping(ref Ref, start, end memory.Pointer, fn func(Path, Ref)) {
	overlapping(nil, ref, int64(start), int64(end), fn)
}

func overlapping(path Path, ref Ref, start, end int64, fn func(Path, Ref)) {
	addr := int64(ref.Address)

	switch t := ref.Type.(type) {
	case *types.Builtin, *types.Pointer:
		if size := int64(t.Size()); size > 0 && addr <= end && addr+size-1 >= start {
			fn(path, ref)
		}
	case *types.Array:
		elemSize, count := int64(t.Elem.Size()), int64(t.Count)
		if count < 0 || elemSize == 0 {
			return
		}
		first, last := floorDiv(start-addr, elemSize), floorDiv(end-addr, elemSize)
		if first >= count || last < 0 {
			return
		}
		if first < 0 {
			first = 0
		}
		if last > count-1 {
			last = count - 1
		}
		for i := first; i <= last; i++ {
			elem := Ref{Address: memory.Pointer(addr + i*elemSize), Type: t.Elem}
			overlapping(path.append(Selector{Index: int(i)}), elem, start, end, fn)
		}
	case *types.Record:
		for _, f := range t.Fields {
			fa := addr + int64(f.Offset)
			if fa <= end && fa+int64(f.Type.Size())-1 >= start {
				field := Ref{Address: memory.Pointer(fa), Type: f.Type}
				overlapping(path.append(Selector{Field: f.Name}), field, start, end, fn)
			}
		}
	case *types.Opaque:
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Resolve lists the named values and stack separators that overlap the
// inclusive range [start, end]. Locals come first, innermost scope first,
// followed by globals in name order.
func Resolve(c *Chain, g Globals, start, end memory.Pointer) ([]Value, []Separator) {
	var (
		values []Value
		seps   []Separator
	)
	inWindow := func(addr memory.Pointer) bool {
		return start <= addr && addr <= end
	}
	collect := func(name string, ref Ref) {
		Overlapping(ref, start, end, func(path Path, leaf Ref) {
			values = append(values, Value{Name: name, Path: path, Ref: leaf})
		})
	}

	if top, ok := c.Top(); ok && inWindow(top.Limit) {
		seps = append(seps, Separator{Kind: SepStackPointer, Address: top.Limit})
	}

	c.Walk(func(n Node) bool {
		switch n.Kind {
		case Variable:
			collect(n.Name, n.Ref)
		case Function:
			if inWindow(n.Limit) {
				seps = append(seps, Separator{Kind: SepFunction, Address: n.Limit})
			}
		case Block:
			if inWindow(n.Limit) {
				seps = append(seps, Separator{Kind: SepBlock, Address: n.Limit})
			}
		}
		return true
	})

	for _, name := range g.Names() {
		collect(name, g[name])
	}
	return values, seps
}
