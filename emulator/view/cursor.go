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
	"github.com/andreas-jonsson/memstep/emulator/memory"
)

// Cursor collects the labels of every cursor expression pointing at the
// same column.
type Cursor struct {
	Column  int
	Address memory.Pointer
	Row     int
	Labels  []string
}

// cursors groups expressions by address. Columns take rows in the order
// they are first seen; once rows run out the remaining columns share the
// last row.
func (x *extractor) cursors(exprs []string, rows int) []Cursor {
	if x.snap.Eval == nil {
		return nil
	}

	var cursors []Cursor
	byAddr := make(map[memory.Pointer]int)
	for _, expr := range exprs {
		addr, err := x.snap.Eval.Pointer(expr)
		if err != nil || addr < x.start || addr > x.end {
			continue
		}
		if i, ok := byAddr[addr]; ok {
			cursors[i].Labels = append(cursors[i].Labels, expr)
			continue
		}

		row := len(cursors)
		if row > rows-1 {
			row = rows - 1
		}
		byAddr[addr] = len(cursors)
		cursors = append(cursors, Cursor{
			Column:  x.column(addr),
			Address: addr,
			Row:     row,
			Labels:  []string{expr},
		})
	}
	return cursors
}
