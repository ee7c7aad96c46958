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
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/andreas-jonsson/memstep/emulator/view"
)

// Layout holds the pixel geometry of an SVG memory view.
type Layout struct {
	TextLineHeight int
	TextBaseline   int
	CellWidth      int
	CellPadding    int
	CellHeight     int
	CellMargin     int
	AddressAngle   float64
	AddressHeight  int
	MarginLeft     int
	MarginTop      int
	MarginBottom   int
	MinArrowHeight int

	CursorsTop   int
	LabelsTop    int
	BytesTop     int
	VariablesTop int
	ExtraRowsTop int
	Right        int
	Bottom       int
}

func NewLayout(columns, cursorRows, extraRows int) Layout {
	if cursorRows < 1 {
		cursorRows = 1
	}
	l := Layout{
		TextLineHeight: 18,
		TextBaseline:   5,
		CellWidth:      32,
		CellPadding:    4,
		CellMargin:     4,
		AddressAngle:   60,
		MarginLeft:     10,
		MarginTop:      10,
		MarginBottom:   10,
		MinArrowHeight: 20,
	}
	l.CellHeight = l.CellPadding*2 + l.TextLineHeight*2

	// Height of a 40 pixel wide address label once rotated.
	a := l.AddressAngle * math.Pi / 180
	l.AddressHeight = int(math.Ceil(40*math.Sin(a) + float64(l.TextLineHeight)*math.Cos(a)))

	l.CursorsTop = l.MarginTop
	l.LabelsTop = l.CursorsTop + cursorRows*l.TextLineHeight + l.MinArrowHeight
	l.BytesTop = l.LabelsTop + l.MarginTop + l.AddressHeight
	l.VariablesTop = l.BytesTop + l.CellHeight
	l.ExtraRowsTop = l.VariablesTop + l.CellMargin + l.CellHeight + l.TextLineHeight*2
	l.Right = l.MarginLeft + l.CellWidth*columns
	l.Bottom = l.ExtraRowsTop + (l.CellHeight+l.CellMargin)*extraRows - l.CellMargin + l.MarginBottom
	return l
}

func (l Layout) x(col int) int {
	return l.MarginLeft + col*l.CellWidth
}

const svgStyle = `
text { font-family: monospace; font-size: 13px; text-anchor: middle; }
rect { fill: white; stroke: #777; }
line { stroke: #777; }
.cursor { fill: #44a; stroke: #44a; }
.address { text-anchor: start; fill: #777; }
.center { font-weight: bold; fill: black; }
.previous { fill: #999; }
.value-load { fill: #080; }
.cell-store .current { fill: #c00; font-weight: bold; }
.cell-load .current { fill: #080; }
.cell-heap rect { fill: #eef; }
.cell-heap-header rect { fill: #ccd; }
.cell-heap-free rect { fill: #eee; }
.sep { stroke: #a44; stroke-width: 2; }
`

func class(names ...string) string {
	return `class="` + strings.Join(names, " ") + `"`
}

// WriteSVG draws g as a standalone SVG document.
func WriteSVG(w io.Writer, g *view.Grid, cursorRows int) {
	l := NewLayout(len(g.Bytes.Cells), cursorRows, len(g.ExtraRows))
	canvas := svg.New(w)
	canvas.Start(l.Right+l.MarginLeft, l.Bottom)
	canvas.Style("text/css", svgStyle)

	drawCursors(canvas, l, g.Cursors, cursorRows)
	drawBytes(canvas, l, g.Bytes)
	drawVariables(canvas, l, g.Variables)
	for i, row := range g.ExtraRows {
		y := l.ExtraRowsTop + i*(l.CellHeight+l.CellMargin)
		canvas.Group(class("extra-row"))
		for _, c := range row.Cells {
			drawCell(canvas, l, c, l.x(c.Column), y, "cell")
		}
		canvas.Gend()
	}
	canvas.End()
}

func drawCursors(canvas *svg.SVG, l Layout, cursors []view.Cursor, rows int) {
	if rows < 1 {
		rows = 1
	}
	canvas.Group(class("cursors"))
	for _, c := range cursors {
		x := l.x(c.Column) + l.CellWidth/2
		y := l.CursorsTop + (c.Row+1)*l.TextLineHeight
		y2 := l.CursorsTop + rows*l.TextLineHeight + l.MinArrowHeight

		canvas.Text(x, y-l.TextBaseline, strings.Join(c.Labels, ","), class("cursor"))
		canvas.Line(x, y, x, y2, class("cursor"))
		canvas.Polygon([]int{x - 3, x + 3, x}, []int{y2 - 6, y2 - 6, y2}, class("cursor"))
	}
	canvas.Gend()
}

func drawBytes(canvas *svg.SVG, l Layout, b view.Bytes) {
	dy := l.AddressHeight
	for _, c := range b.Cells {
		x := l.x(c.Column)
		canvas.TranslateRotate(x+l.CellWidth/2-l.TextBaseline, l.LabelsTop+l.MarginTop+dy, -l.AddressAngle)
		if c.Center {
			canvas.Text(0, 0, view.FormatAddress(c.Address), class("address", "center"))
		} else {
			canvas.Text(0, 0, view.FormatAddress(c.Address), class("address"))
		}
		canvas.Gend()

		drawCell(canvas, l, view.Cell{
			Size:     1,
			Current:  c.Current,
			Previous: c.Previous,
			Load:     c.Load,
			Store:    c.Store,
		}, x, l.BytesTop, c.Class.String())
	}
}

func drawCell(canvas *svg.SVG, l Layout, c view.Cell, x, y int, classes string) {
	width := c.Size * l.CellWidth
	x0 := x + width/2
	y0 := y + l.CellPadding + l.TextLineHeight - l.TextBaseline
	y1 := y0 + l.TextLineHeight

	canvas.Group(class(classes))
	canvas.Rect(x, y, width, l.CellHeight)
	if c.HasPrevious() {
		h := (l.TextLineHeight - l.TextBaseline) / 3
		canvas.Text(x0, y0, c.Previous.String(), class("previous"))
		canvas.Line(x+2, y0-h, x+width-2, y0-h, class("previous"))
	}
	if c.Load.Valid() {
		canvas.Text(x0, y1, c.Current.String(), class("current", "value-load"))
	} else {
		canvas.Text(x0, y1, c.Current.String(), class("current"))
	}
	canvas.Gend()
}

func drawVariables(canvas *svg.SVG, l Layout, cells []view.Cell) {
	y := l.VariablesTop + l.CellMargin
	canvas.Group(class("variables"))
	for _, c := range cells {
		x := l.x(c.Column)
		if c.Sep != 0 {
			canvas.Line(x, y, x, y+l.CellHeight+l.TextLineHeight*2, class("sep", c.Sep.String()))
			continue
		}
		drawCell(canvas, l, c, x, y, "cell")

		ny := y + l.CellHeight + l.TextLineHeight
		if c.Center {
			ny += l.TextLineHeight
			canvas.Text(x+c.Size*l.CellWidth/2, ny, c.Name, class("center"))
		} else {
			canvas.Text(x+c.Size*l.CellWidth/2, ny, c.Name)
		}
	}
	canvas.Gend()
}

// ExportSVG writes the current view of s to name on FileSystem.
func ExportSVG(name string, s *Session) error {
	f, err := FileSystem.Create(name)
	if err != nil {
		return err
	}
	WriteSVG(f, s.Grid(), s.Options.CursorRows)
	return f.Close()
}
