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

package platform

import (
	"strings"

	"github.com/gdamore/tcell"

	"github.com/andreas-jonsson/memstep/emulator/view"
)

const (
	marginLeft = 8
	cellChars  = 3
)

var (
	styleDefault = tcell.StyleDefault
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleCursor  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleSep     = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleStatus  = tcell.StyleDefault.Reverse(true)
)

func cellStyle(c view.Class) tcell.Style {
	s := styleDefault
	switch {
	case c.Has(view.ClassHeapHeader):
		s = s.Background(tcell.ColorNavy)
	case c.Has(view.ClassHeapFree):
		s = s.Background(tcell.ColorGray)
	case c.Has(view.ClassHeap):
		s = s.Background(tcell.ColorTeal)
	}
	switch {
	case c.Has(view.ClassStore):
		s = s.Foreground(tcell.ColorRed).Bold(true)
	case c.Has(view.ClassLoad):
		s = s.Foreground(tcell.ColorLime)
	}
	if c.Has(view.ClassCursor) {
		s = s.Underline(true)
	}
	return s
}

func valueStyle(c view.Cell) tcell.Style {
	switch {
	case c.Store.Valid():
		return styleDefault.Foreground(tcell.ColorRed).Bold(true)
	case c.Load.Valid():
		return styleDefault.Foreground(tcell.ColorLime)
	}
	return styleDefault
}

// Renderer draws memory views as text, three columns per byte.
type Renderer struct {
	Screen tcell.Screen
}

// puts writes s at x, y, clipped to the grid area.
func (r *Renderer) puts(x, y int, s string, style tcell.Style) {
	for _, c := range s {
		if x >= marginLeft {
			r.Screen.SetContent(x, y, c, nil, style)
		}
		x++
	}
}

// label writes s left of the grid.
func (r *Renderer) label(y int, s string) {
	runes := []rune(s)
	if len(runes) > marginLeft-1 {
		runes = runes[:marginLeft-1]
	}
	for i, c := range runes {
		r.Screen.SetContent(i, y, c, nil, styleDim)
	}
}

func column(col int) int {
	return marginLeft + col*cellChars
}

// fit centers s in a field of width characters, truncating when needed.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if len(s) > width {
		return s[:width]
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-len(s)-pad)
}

// Draw renders g with a status line on top and returns the first free row.
func (r *Renderer) Draw(g *view.Grid, cursorRows int, status string) int {
	r.Screen.Clear()
	if cursorRows < 1 {
		cursorRows = 1
	}

	y := 0
	for x, c := range []rune(status) {
		r.Screen.SetContent(x, y, c, nil, styleStatus)
	}
	y += 2

	for _, c := range g.Cursors {
		r.puts(column(c.Column), y+c.Row, strings.Join(c.Labels, ","), styleCursor)
		r.puts(column(c.Column), y+cursorRows, "v", styleCursor)
	}
	y += cursorRows + 1

	r.label(y, "addr")
	r.label(y+1, "bytes")
	r.label(y+3, "was")
	for _, c := range g.Bytes.Cells {
		x := column(c.Column)
		if c.Address%4 == 0 || c.Center {
			style := styleDim
			if c.Center {
				style = styleDefault.Bold(true)
			}
			r.puts(x, y, view.FormatAddress(c.Address), style)
		}
		r.puts(x, y+1, view.FormatByte(byte(c.Current.Bits)), cellStyle(c.Class))
		r.puts(x, y+2, string(glyph(byte(c.Current.Bits))), styleDim)
		if c.HasPrevious() {
			r.puts(x, y+3, view.FormatByte(byte(c.Previous.Bits)), styleDim)
		}
	}
	y += 5

	r.label(y, "vars")
	for _, c := range g.Variables {
		x := column(c.Column)
		if c.Sep != 0 {
			r.puts(x-1, y, "|", styleSep)
			r.puts(x-1, y+1, "|", styleSep)
			r.puts(x-1, y+2, c.Sep.String(), styleSep)
			continue
		}
		width := c.Size*cellChars - 1
		r.puts(x, y, fit(c.Name, width), styleDefault.Bold(c.Center))
		r.puts(x, y+1, fit(c.Current.String(), width), valueStyle(c))
		if c.HasPrevious() {
			r.puts(x, y+2, fit(c.Previous.String(), width), styleDim)
		}
	}
	y += 4

	for _, row := range g.ExtraRows {
		r.label(y, row.Expr)
		for _, c := range row.Cells {
			r.puts(column(c.Column), y, fit(c.Current.String(), c.Size*cellChars-1), valueStyle(c))
		}
		y++
	}
	return y
}
