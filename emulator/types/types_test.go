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

package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andreas-jonsson/memstep/emulator/memory"
)

func TestRecordLayout(t *testing.T) {
	require := require.New(t)

	node := NewRecord("node")
	node.Layout(
		Field{Name: "tag", Type: Builtins["char"]},
		Field{Name: "value", Type: Builtins["int"]},
		Field{Name: "next", Type: PointerTo(node)},
		Field{Name: "flag", Type: Builtins["short"]},
	)
	require.Equal(16, node.Size())

	offsets := map[string]int{}
	for _, f := range node.Fields {
		offsets[f.Name] = f.Offset
	}
	require.Equal(map[string]int{"tag": 0, "value": 4, "next": 8, "flag": 12}, offsets)

	f, ok := node.Field("next")
	require.True(ok)
	require.Equal(KindPointer, f.Type.Kind())
	require.Equal("struct node*", f.Type.String())
}

func TestParse(t *testing.T) {
	records := map[string]*Record{"node": NewRecord("node").Layout(Field{Name: "v", Type: Builtins["int"]})}

	tests := []struct {
		name string
		kind Kind
		size int
		str  string
	}{
		{"int", KindBuiltin, 4, "int"},
		{"unsigned  int", KindBuiltin, 4, "unsigned int"},
		{"char *", KindPointer, 4, "char*"},
		{"char[16]", KindArray, 16, "char[16]"},
		{"int[2][3]", KindArray, 24, "int[3][2]"},
		{"struct node*", KindPointer, 4, "struct node*"},
		{"node[4]", KindArray, 16, "struct node[4]"},
		{"int[]", KindArray, 0, "int[]"},
		{"void", KindOpaque, 0, "void"},
		{"void*", KindPointer, 4, "void*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			typ, err := Parse(tt.name, records)
			require.NoError(err)
			require.Equal(tt.kind, typ.Kind())
			require.Equal(tt.size, typ.Size())
			require.Equal(tt.str, typ.String())
		})
	}

	_, err := Parse("struct missing", records)
	require.ErrorIs(t, err, ErrUnknownType)
	_, err = Parse("int[x]", records)
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestValue(t *testing.T) {
	require := require.New(t)
	m := memory.NewBuffer(16)

	Write(m, 0, FromInt(Builtins["short"], -2))
	v, ok := Read(m, 0, Builtins["short"])
	require.True(ok)
	require.Equal(int64(-2), v.Int())
	require.Equal("-2", v.String())

	v, _ = Read(m, 0, Builtins["unsigned short"])
	require.Equal("65534", v.String())

	Write(m, 4, FromInt(PointerTo(Builtins["int"]), 0x104))
	v, _ = Read(m, 4, PointerTo(Builtins["int"]))
	require.Equal(memory.Pointer(0x104), v.Pointer())
	require.Equal("0x0104", v.String())

	Write(m, 8, FromInt(Builtins["float"], 3))
	v, _ = Read(m, 8, Builtins["float"])
	require.Equal("3", v.String())

	_, ok = Read(m, 0, ArrayOf(Builtins["int"], 2))
	require.False(ok)
	require.Equal("255", Byte(0xFF).String())
}
