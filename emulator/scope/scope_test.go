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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andreas-jonsson/memstep/emulator/memory"
	"github.com/andreas-jonsson/memstep/emulator/types"
)

var (
	intType  = types.Builtins["int"]
	charType = types.Builtins["char"]
)

func labels(values []Value, full bool) []string {
	var s []string
	for _, v := range values {
		s = append(s, v.Label(full))
	}
	return s
}

func TestChain(t *testing.T) {
	require := require.New(t)

	c := NewChain()
	_, ok := c.Top()
	require.False(ok)

	c.Enter(Function, "main", 0x800)
	c.Declare("x", Ref{Address: 0x7FC, Type: intType})
	c.Enter(Block, "", 0x7FC)
	c.Declare("x", Ref{Address: 0x7F8, Type: charType})

	ref, ok := c.Lookup("x")
	require.True(ok)
	require.Equal(memory.Pointer(0x7F8), ref.Address)

	snapshot := c.Clone()

	c.Leave()
	ref, ok = c.Lookup("x")
	require.True(ok)
	require.Equal(memory.Pointer(0x7FC), ref.Address)

	top, _ := c.Top()
	require.Equal(Variable, top.Kind)

	c.Declare("y", Ref{Address: 0x7F8, Type: intType})
	ref, _ = snapshot.Lookup("x")
	require.Equal(memory.Pointer(0x7F8), ref.Address)
	require.Equal(types.KindBuiltin, ref.Type.Kind())

	var kinds []Kind
	snapshot.Walk(func(n Node) bool {
		kinds = append(kinds, n.Kind)
		return true
	})
	require.Equal([]Kind{Variable, Block, Variable, Function}, kinds)

	c.Leave()
	_, ok = c.Top()
	require.False(ok)
}

func TestLabel(t *testing.T) {
	require := require.New(t)
	path := Path{{Field: "next"}, {Index: 2}, {Field: "x"}}
	require.Equal("p.next[2].x", Label("p", path, true))
	require.Equal(".x", Label("p", path, false))
	require.Equal("p", Label("p", nil, false))
	require.Equal("[3]", Label("a", Path{{Index: 3}}, false))
}

func TestOverlapping(t *testing.T) {
	point := types.NewRecord("point").Layout(
		types.Field{Name: "x", Type: intType},
		types.Field{Name: "y", Type: intType},
	)

	t.Run("Array", func(t *testing.T) {
		require := require.New(t)
		ref := Ref{Address: 0x100, Type: types.ArrayOf(intType, 8)}

		var got []Value
		Overlapping(ref, 0x106, 0x10C, func(p Path, r Ref) {
			got = append(got, Value{Name: "a", Path: p, Ref: r})
		})
		require.Equal([]string{"a[1]", "a[2]", "a[3]"}, labels(got, true))
		require.Equal(memory.Pointer(0x104), got[0].Ref.Address)
	})

	t.Run("ArrayBeforeWindow", func(t *testing.T) {
		var n int
		Overlapping(Ref{Address: 0x100, Type: types.ArrayOf(intType, 2)}, 0x108, 0x200, func(Path, Ref) { n++ })
		require.Zero(t, n)
		Overlapping(Ref{Address: 0x100, Type: types.ArrayOf(intType, 2)}, 0x0, 0x0FF, func(Path, Ref) { n++ })
		require.Zero(t, n)
		Overlapping(Ref{Address: 0x100, Type: types.ArrayOf(intType, -1)}, 0x0, 0x1FF, func(Path, Ref) { n++ })
		require.Zero(t, n)
	})

	t.Run("Record", func(t *testing.T) {
		require := require.New(t)
		ref := Ref{Address: 0x200, Type: types.ArrayOf(point, 4)}

		var got []Value
		Overlapping(ref, 0x20C, 0x213, func(p Path, r Ref) {
			got = append(got, Value{Name: "pts", Path: p, Ref: r})
		})
		require.Equal([]string{"pts[1].y", "pts[2].x"}, labels(got, true))
		require.Equal([]string{".y", ".x"}, labels(got, false))
	})

	t.Run("Opaque", func(t *testing.T) {
		var n int
		Overlapping(Ref{Address: 0, Type: types.Void}, 0, 100, func(Path, Ref) { n++ })
		require.Zero(t, n)
	})
}

func TestResolve(t *testing.T) {
	require := require.New(t)

	c := NewChain()
	c.Enter(Function, "main", 0x400)
	c.Declare("a", Ref{Address: 0x3F8, Type: types.ArrayOf(intType, 2)})
	c.Enter(Block, "", 0x3F8)
	c.Declare("p", Ref{Address: 0x3F4, Type: types.PointerTo(intType)})

	g := Globals{
		"zeta":  {Address: 0x104, Type: charType},
		"alpha": {Address: 0x100, Type: intType},
	}

	values, seps := Resolve(c, g, 0x3F4, 0x3FF)
	require.Equal([]string{"p", "a[0]", "a[1]"}, labels(values, true))
	require.Equal([]Separator{
		{Kind: SepStackPointer, Address: 0x3F4},
		{Kind: SepBlock, Address: 0x3F8},
	}, seps)

	values, seps = Resolve(c, g, 0x100, 0x104)
	require.Equal([]string{"alpha", "zeta"}, labels(values, true))
	require.Empty(seps)

	values, _ = Resolve(nil, g, 0x100, 0x100)
	require.Equal([]string{"alpha"}, labels(values, true))
	require.True(values[0].Contains(0x103))
	require.False(values[0].Contains(0x104))
}
