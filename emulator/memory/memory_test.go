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

package memory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuffer(t *testing.T) {
	t.Run("Word", func(t *testing.T) {
		require := require.New(t)
		m := NewBuffer(16)
		WriteWord(m, 4, 0x11223344)
		require.Equal(byte(0x44), m.ReadByte(4))
		require.Equal(byte(0x11), m.ReadByte(7))
		require.Equal(uint32(0x11223344), ReadWord(m, 4))
	})

	t.Run("Uint", func(t *testing.T) {
		require := require.New(t)
		m := NewBuffer(16)
		WriteUint(m, 0, 8, 0x0102030405060708)
		require.Equal(uint64(0x0102030405060708), ReadUint(m, 0, 8))
		require.Equal(uint64(0x0708), ReadUint(m, 0, 2))
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		require := require.New(t)
		m := NewBuffer(8)
		require.PanicsWithError("read of unmapped memory: 0x8 (size 0x8)", func() { m.ReadByte(8) })
		require.Panics(func() { m.WriteByte(100, 1) })
		require.Panics(func() { ReadWord(m, 6) })
	})

	t.Run("Clone", func(t *testing.T) {
		require := require.New(t)
		m := NewBuffer(4)
		m.WriteByte(0, 1)
		c := m.Clone()
		m.WriteByte(0, 2)
		require.Equal(byte(1), c.ReadByte(0))
		require.Equal(byte(2), m.ReadByte(0))
	})

	t.Run("InBounds", func(t *testing.T) {
		require := require.New(t)
		m := NewBuffer(8)
		require.True(InBounds(m, 4, 4))
		require.False(InBounds(m, 5, 4))
		require.False(InBounds(m, -1, 1))
	})
}
