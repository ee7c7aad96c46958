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

// Package expr evaluates the small C expressions used to place cursors and
// extra rows in the memory view: identifiers, integers, unary * & -,
// indexing, field access and pointer arithmetic.
package expr

import (
	"errors"
	"fmt"

	"github.com/andreas-jonsson/memstep/emulator/memory"
	"github.com/andreas-jonsson/memstep/emulator/scope"
	"github.com/andreas-jonsson/memstep/emulator/types"
)

var (
	ErrSyntax            = errors.New("syntax error")
	ErrUnknownIdentifier = errors.New("unknown identifier")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrNotAddressable    = errors.New("not addressable")
	ErrBadAddress        = errors.New("bad address")
)

var intType = types.Builtins["int"]

// Result is either an lvalue (HasRef) or a plain value.
type Result struct {
	Type   types.Type
	Value  types.Value
	Ref    scope.Ref
	HasRef bool
}

type Env struct {
	Memory  memory.Memory
	Scope   *scope.Chain
	Globals scope.Globals
}

func (e Env) Eval(src string) (Result, error) {
	toks, err := lex(src)
	if err != nil {
		return Result{}, err
	}
	p := &parser{env: e, toks: toks}
	r, err := p.expr()
	if err != nil {
		return Result{}, err
	}
	if t := p.peek(); t.typ != tokEOF {
		return Result{}, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, t.text, t.pos)
	}
	return r, nil
}

// Ref evaluates src as an lvalue.
func (e Env) Ref(src string) (scope.Ref, error) {
	r, err := e.Eval(src)
	if err != nil {
		return scope.Ref{}, err
	}
	if !r.HasRef {
		return scope.Ref{}, fmt.Errorf("%w: %s", ErrNotAddressable, src)
	}
	return r.Ref, nil
}

// Pointer evaluates src and returns its value, which must be a pointer.
// Arrays decay to a pointer to their first element.
func (e Env) Pointer(src string) (memory.Pointer, error) {
	r, err := e.Eval(src)
	if err != nil {
		return 0, err
	}
	v, err := e.rvalue(r)
	if err != nil {
		return 0, err
	}
	if _, ok := v.Type.(*types.Pointer); !ok {
		return 0, fmt.Errorf("%w: %s is not a pointer", ErrTypeMismatch, src)
	}
	return v.Pointer(), nil
}

func (e Env) rvalue(r Result) (types.Value, error) {
	if !r.HasRef {
		return r.Value, nil
	}
	if a, ok := r.Type.(*types.Array); ok {
		return types.Value{Type: types.PointerTo(a.Elem), Bits: uint64(r.Ref.Address)}, nil
	}
	if !types.Readable(r.Type) {
		return types.Value{}, fmt.Errorf("%w: cannot read %s", ErrTypeMismatch, r.Type)
	}
	if !memory.InBounds(e.Memory, int64(r.Ref.Address), r.Type.Size()) {
		return types.Value{}, fmt.Errorf("%w: %v", ErrBadAddress, r.Ref.Address)
	}
	v, _ := types.Read(e.Memory, r.Ref.Address, r.Type)
	return v, nil
}

func (e Env) lookup(name string) (scope.Ref, error) {
	if ref, ok := e.Scope.Lookup(name); ok {
		return ref, nil
	}
	if ref, ok := e.Globals[name]; ok {
		return ref, nil
	}
	return scope.Ref{}, fmt.Errorf("%w: %s", ErrUnknownIdentifier, name)
}

func lvalue(ref scope.Ref) Result {
	return Result{Type: ref.Type, Ref: ref, HasRef: true}
}

func value(v types.Value) Result {
	return Result{Type: v.Type, Value: v}
}

type parser struct {
	env  Env
	toks []token
	i    int
}

func (p *parser) peek() token {
	return p.toks[p.i]
}

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.typ != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) need(typ tokenType, what string) (token, error) {
	t := p.next()
	if t.typ != typ {
		return t, fmt.Errorf("%w: expected %s at %d", ErrSyntax, what, t.pos)
	}
	return t, nil
}

func (p *parser) expr() (Result, error) {
	lhs, err := p.unary()
	if err != nil {
		return Result{}, err
	}
	for {
		op := p.peek().typ
		if op != tokPlus && op != tokMinus {
			return lhs, nil
		}
		p.next()
		rhs, err := p.unary()
		if err != nil {
			return Result{}, err
		}
		if lhs, err = p.arith(op, lhs, rhs); err != nil {
			return Result{}, err
		}
	}
}

func (p *parser) arith(op tokenType, lhs, rhs Result) (Result, error) {
	a, err := p.env.rvalue(lhs)
	if err != nil {
		return Result{}, err
	}
	b, err := p.env.rvalue(rhs)
	if err != nil {
		return Result{}, err
	}

	pa, aIsPtr := a.Type.(*types.Pointer)
	pb, bIsPtr := b.Type.(*types.Pointer)
	switch {
	case aIsPtr && bIsPtr:
		if op != tokMinus {
			return Result{}, fmt.Errorf("%w: cannot add pointers", ErrTypeMismatch)
		}
		n := int64(a.Pointer()) - int64(b.Pointer())
		if size := pa.Elem.Size(); size > 0 {
			n /= int64(size)
		}
		return value(types.FromInt(intType, n)), nil
	case aIsPtr:
		return value(offset(a, pa, b.Int(), op)), nil
	case bIsPtr && op == tokPlus:
		return value(offset(b, pb, a.Int(), op)), nil
	case bIsPtr:
		return Result{}, fmt.Errorf("%w: cannot subtract pointer from integer", ErrTypeMismatch)
	}

	if op == tokMinus {
		return value(types.FromInt(intType, a.Int()-b.Int())), nil
	}
	return value(types.FromInt(intType, a.Int()+b.Int())), nil
}

func offset(ptr types.Value, t *types.Pointer, n int64, op tokenType) types.Value {
	if op == tokMinus {
		n = -n
	}
	size := int64(t.Elem.Size())
	if size == 0 {
		size = 1
	}
	return types.FromInt(t, int64(ptr.Pointer())+n*size)
}

func (p *parser) unary() (Result, error) {
	switch p.peek().typ {
	case tokStar:
		p.next()
		r, err := p.unary()
		if err != nil {
			return Result{}, err
		}
		return p.deref(r)
	case tokAmp:
		p.next()
		r, err := p.unary()
		if err != nil {
			return Result{}, err
		}
		if !r.HasRef {
			return Result{}, fmt.Errorf("%w: cannot take address", ErrNotAddressable)
		}
		return value(types.Value{Type: types.PointerTo(r.Type), Bits: uint64(r.Ref.Address)}), nil
	case tokMinus:
		p.next()
		r, err := p.unary()
		if err != nil {
			return Result{}, err
		}
		v, err := p.env.rvalue(r)
		if err != nil {
			return Result{}, err
		}
		return value(types.FromInt(intType, -v.Int())), nil
	}
	return p.postfix()
}

func (p *parser) deref(r Result) (Result, error) {
	v, err := p.env.rvalue(r)
	if err != nil {
		return Result{}, err
	}
	t, ok := v.Type.(*types.Pointer)
	if !ok {
		return Result{}, fmt.Errorf("%w: cannot dereference %s", ErrTypeMismatch, v.Type)
	}
	return lvalue(scope.Ref{Address: v.Pointer(), Type: t.Elem}), nil
}

func (p *parser) postfix() (Result, error) {
	r, err := p.primary()
	if err != nil {
		return Result{}, err
	}
	for {
		switch p.peek().typ {
		case tokLSquare:
			p.next()
			index, err := p.expr()
			if err != nil {
				return Result{}, err
			}
			if _, err := p.need(tokRSquare, "]"); err != nil {
				return Result{}, err
			}
			sum, err := p.arith(tokPlus, r, index)
			if err != nil {
				return Result{}, err
			}
			if r, err = p.deref(sum); err != nil {
				return Result{}, err
			}
		case tokPeriod:
			p.next()
			if r, err = p.field(r); err != nil {
				return Result{}, err
			}
		case tokArrow:
			p.next()
			if r, err = p.deref(r); err != nil {
				return Result{}, err
			}
			if r, err = p.field(r); err != nil {
				return Result{}, err
			}
		default:
			return r, nil
		}
	}
}

func (p *parser) field(r Result) (Result, error) {
	name, err := p.need(tokIdent, "field name")
	if err != nil {
		return Result{}, err
	}
	rec, ok := r.Type.(*types.Record)
	if !ok || !r.HasRef {
		return Result{}, fmt.Errorf("%w: %s has no fields", ErrTypeMismatch, r.Type)
	}
	f, ok := rec.Field(name.text)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s has no field %s", ErrUnknownIdentifier, rec, name.text)
	}
	return lvalue(scope.Ref{Address: r.Ref.Address.Add(f.Offset), Type: f.Type}), nil
}

func (p *parser) primary() (Result, error) {
	t := p.next()
	switch t.typ {
	case tokIdent:
		ref, err := p.env.lookup(t.text)
		if err != nil {
			return Result{}, err
		}
		return lvalue(ref), nil
	case tokInt:
		return value(types.FromInt(intType, t.num)), nil
	case tokLRound:
		r, err := p.expr()
		if err != nil {
			return Result{}, err
		}
		if _, err := p.need(tokRRound, ")"); err != nil {
			return Result{}, err
		}
		return r, nil
	case tokEOF:
		return Result{}, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
	}
	return Result{}, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, t.text, t.pos)
}
