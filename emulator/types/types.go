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

// Package types describes the C types of the simulated program. Type is a
// closed union: Builtin, Pointer, Array, Record and Opaque are the only
// implementations, and traversals switch over them exhaustively.
package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const PointerSize = 4

type Kind byte

const (
	KindBuiltin Kind = iota
	KindPointer
	KindArray
	KindRecord
	KindOpaque
)

var kindNames = [...]string{"builtin", "pointer", "array", "record", "opaque"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

var ErrUnknownType = errors.New("unknown type")

type Type interface {
	Kind() Kind
	Size() int
	String() string

	isType()
}

type Builtin struct {
	Name   string
	Bytes  int
	Signed bool
	Float  bool
}

func (*Builtin) Kind() Kind { return KindBuiltin }
func (t *Builtin) Size() int { return t.Bytes }
func (t *Builtin) String() string { return t.Name }
func (*Builtin) isType() {}

type Pointer struct {
	Elem Type
}

func PointerTo(elem Type) *Pointer {
	return &Pointer{Elem: elem}
}

func (*Pointer) Kind() Kind { return KindPointer }
func (*Pointer) Size() int { return PointerSize }
func (t *Pointer) String() string { return t.Elem.String() + "*" }
func (*Pointer) isType() {}

// Array with a negative Count has an unknown number of elements.
type Array struct {
	Elem  Type
	Count int
}

func ArrayOf(elem Type, count int) *Array {
	return &Array{Elem: elem, Count: count}
}

func (*Array) Kind() Kind { return KindArray }

func (t *Array) Size() int {
	if t.Count < 0 {
		return 0
	}
	return t.Count * t.Elem.Size()
}

func (t *Array) String() string {
	if t.Count < 0 {
		return t.Elem.String() + "[]"
	}
	return fmt.Sprintf("%s[%d]", t.Elem, t.Count)
}

func (*Array) isType() {}

type Field struct {
	Name   string
	Type   Type
	Offset int
}

type Record struct {
	Name   string
	Fields []Field
	Bytes  int
}

// NewRecord returns an empty record. Fill it with Layout; the two steps are
// split so that a record can point to itself.
func NewRecord(name string) *Record {
	return &Record{Name: name}
}

// Layout assigns C style aligned offsets to fields, ignoring their Offset.
func (t *Record) Layout(fields ...Field) *Record {
	t.Fields = make([]Field, 0, len(fields))
	offset, align := 0, 1
	for _, f := range fields {
		a := alignOf(f.Type)
		if a > align {
			align = a
		}
		offset = alignUp(offset, a)
		f.Offset = offset
		t.Fields = append(t.Fields, f)
		offset += f.Type.Size()
	}
	t.Bytes = alignUp(offset, align)
	return t
}

func (t *Record) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (*Record) Kind() Kind { return KindRecord }
func (t *Record) Size() int { return t.Bytes }
func (t *Record) String() string { return "struct " + t.Name }
func (*Record) isType() {}

// Opaque covers void, functions and anything else that has no displayable
// value.
type Opaque struct {
	Name string
}

func (*Opaque) Kind() Kind { return KindOpaque }
func (*Opaque) Size() int { return 0 }
func (t *Opaque) String() string { return t.Name }
func (*Opaque) isType() {}

var Void = &Opaque{Name: "void"}

// Builtins holds the scalar types by C name.
var Builtins = newBuiltins()

func newBuiltins() map[string]*Builtin {
	m := make(map[string]*Builtin)
	for _, b := range []*Builtin{
		{Name: "char", Bytes: 1, Signed: true},
		{Name: "signed char", Bytes: 1, Signed: true},
		{Name: "unsigned char", Bytes: 1},
		{Name: "short", Bytes: 2, Signed: true},
		{Name: "unsigned short", Bytes: 2},
		{Name: "int", Bytes: 4, Signed: true},
		{Name: "unsigned int", Bytes: 4},
		{Name: "long", Bytes: 4, Signed: true},
		{Name: "unsigned long", Bytes: 4},
		{Name: "long long", Bytes: 8, Signed: true},
		{Name: "unsigned long long", Bytes: 8},
		{Name: "float", Bytes: 4, Signed: true, Float: true},
		{Name: "double", Bytes: 8, Signed: true, Float: true},
	} {
		m[b.Name] = b
	}
	m["unsigned"] = m["unsigned int"]
	return m
}

func alignOf(t Type) int {
	switch t := t.(type) {
	case *Builtin:
		return t.Bytes
	case *Pointer:
		return PointerSize
	case *Array:
		return alignOf(t.Elem)
	case *Record:
		a := 1
		for _, f := range t.Fields {
			if fa := alignOf(f.Type); fa > a {
				a = fa
			}
		}
		return a
	}
	return 1
}

func alignUp(n, a int) int {
	if a <= 1 {
		return n
	}
	return (n + a - 1) / a * a
}

// Parse resolves a C type name such as "int", "struct node*" or "char[16]".
func Parse(name string, records map[string]*Record) (Type, error) {
	s := strings.TrimSpace(name)

	var dims []int
	for strings.HasSuffix(s, "]") {
		i := strings.LastIndexByte(s, '[')
		if i < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
		}
		count := -1
		if n := strings.TrimSpace(s[i+1 : len(s)-1]); n != "" {
			v, err := strconv.Atoi(n)
			if err != nil || v < 0 {
				return nil, fmt.Errorf("%w: bad array size in %q", ErrUnknownType, name)
			}
			count = v
		}
		dims = append([]int{count}, dims...)
		s = strings.TrimSpace(s[:i])
	}

	stars := 0
	for strings.HasSuffix(s, "*") {
		stars++
		s = strings.TrimSpace(s[:len(s)-1])
	}

	t, err := parseBase(strings.Join(strings.Fields(s), " "), records)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, name)
	}
	for ; stars > 0; stars-- {
		t = PointerTo(t)
	}
	for i := len(dims) - 1; i >= 0; i-- {
		t = ArrayOf(t, dims[i])
	}
	return t, nil
}

func parseBase(s string, records map[string]*Record) (Type, error) {
	if s == "void" {
		return Void, nil
	}
	if b, ok := Builtins[s]; ok {
		return b, nil
	}
	if r, ok := records[strings.TrimPrefix(s, "struct ")]; ok {
		return r, nil
	}
	return nil, ErrUnknownType
}
