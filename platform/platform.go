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

// Package platform contains the front ends: an interactive terminal viewer
// and an SVG exporter.
package platform

import (
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/andreas-jonsson/memstep/emulator"
	"github.com/andreas-jonsson/memstep/emulator/debug"
	"github.com/andreas-jonsson/memstep/emulator/memory"
	"github.com/andreas-jonsson/memstep/emulator/scenario"
	"github.com/andreas-jonsson/memstep/emulator/view"
)

// FileSystem is used for every file the front ends read or write.
var FileSystem = afero.NewOsFs()

// Session is a scenario being stepped through together with the current
// view options.
type Session struct {
	Core     *emulator.Core
	Scenario *scenario.Scenario
	Options  view.Options

	grid *view.Grid
}

// Open loads a scenario from FileSystem and runs its first upto steps.
func Open(name string, upto int, logger *zap.Logger, stats *debug.Stats) (*Session, error) {
	sc, err := scenario.Load(FileSystem, name)
	if err != nil {
		return nil, err
	}
	return NewSession(sc, upto, logger, stats)
}

func NewSession(sc *scenario.Scenario, upto int, logger *zap.Logger, stats *debug.Stats) (*Session, error) {
	c, err := sc.NewCore(logger, stats)
	if err != nil {
		return nil, err
	}
	if err := scenario.Run(c, sc, upto); err != nil {
		return nil, err
	}
	return &Session{Core: c, Scenario: sc, Options: sc.View.Options()}, nil
}

// Grid returns the view for the current state, extracting it when needed.
func (s *Session) Grid() *view.Grid {
	if s.grid == nil {
		s.grid = s.Core.View(s.Options)
	}
	return s.grid
}

func (s *Session) Done() bool {
	return s.Core.Steps() >= len(s.Scenario.Steps)
}

// Next executes one more scenario step.
func (s *Session) Next() error {
	if s.Done() {
		return nil
	}
	s.grid = nil
	return scenario.Run(s.Core, s.Scenario, s.Core.Steps()+1)
}

func (s *Session) ShiftLeft() bool {
	center, ok := view.ShiftLeft(s.Core.Snapshot(), s.Options)
	return s.recenter(center, ok)
}

func (s *Session) ShiftRight() bool {
	center, ok := view.ShiftRight(s.Core.Snapshot(), s.Options)
	return s.recenter(center, ok)
}

// Move pans the view by n bytes.
func (s *Session) Move(n int) bool {
	center := view.ClipCenter(s.Core.Memory().Size(), int64(s.Options.CenterAddress)+int64(n))
	return s.recenter(center, center != s.Options.CenterAddress)
}

// Seek centers the view on a slider position.
func (s *Session) Seek(pos int) bool {
	center := view.ClipCenter(s.Core.Memory().Size(), int64(view.Seek(view.ClipCenter(0x10000, int64(pos)))))
	return s.recenter(center, center != s.Options.CenterAddress)
}

func (s *Session) recenter(center memory.Pointer, ok bool) bool {
	if ok {
		s.Options.CenterAddress = center
		s.grid = nil
	}
	return ok
}

// Resize changes the number of bytes shown by n, keeping at least one row of
// eight.
func (s *Session) Resize(n int) {
	shown := s.Options.BytesShown
	if shown <= 0 {
		shown = view.DefaultBytesShown
	}
	if shown += n; shown < 8 {
		shown = 8
	}
	s.Options.BytesShown = shown
	s.grid = nil
}

// Status describes the last executed step.
func (s *Session) Status() string {
	n := s.Core.Steps()
	last := "start"
	if n > 0 {
		last = s.Scenario.Steps[n-1].String()
	}
	return fmt.Sprintf("%s  step %d/%d: %s", s.Scenario.Name, n, len(s.Scenario.Steps), last)
}
