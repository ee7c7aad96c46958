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

package scenario

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/andreas-jonsson/memstep/emulator"
	"github.com/andreas-jonsson/memstep/emulator/debug"
	"github.com/andreas-jonsson/memstep/emulator/expr"
	"github.com/andreas-jonsson/memstep/emulator/memory"
	"github.com/andreas-jonsson/memstep/emulator/scope"
	"github.com/andreas-jonsson/memstep/emulator/types"
)

type Enter struct {
	Kind  string         `yaml:"kind"`
	Name  string         `yaml:"name"`
	Limit memory.Pointer `yaml:"limit"`
}

type Declare struct {
	Name    string         `yaml:"name"`
	Type    string         `yaml:"type"`
	Address memory.Pointer `yaml:"address"`
}

type Malloc struct {
	Size uint32 `yaml:"size"`
	Into string `yaml:"into"`
}

type Store struct {
	Target string `yaml:"target"`
	Value  int64  `yaml:"value"`
}

// Step is a single operation. Exactly one field must be set.
type Step struct {
	Enter   *Enter   `yaml:"enter,omitempty"`
	Declare *Declare `yaml:"declare,omitempty"`
	Leave   bool     `yaml:"leave,omitempty"`
	Malloc  *Malloc  `yaml:"malloc,omitempty"`
	Free    string   `yaml:"free,omitempty"`
	Store   *Store   `yaml:"store,omitempty"`
	Load    string   `yaml:"load,omitempty"`
}

func (s Step) validate() error {
	n := 0
	for _, set := range []bool{s.Enter != nil, s.Declare != nil, s.Leave, s.Malloc != nil, s.Free != "", s.Store != nil, s.Load != ""} {
		if set {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("expected one operation, got %d", n)
	}
	if s.Enter != nil && s.Enter.Kind != "function" && s.Enter.Kind != "block" {
		return fmt.Errorf("unknown scope kind %q", s.Enter.Kind)
	}
	return nil
}

func (s Step) String() string {
	switch {
	case s.Enter != nil:
		return fmt.Sprintf("enter %s %s", s.Enter.Kind, s.Enter.Name)
	case s.Declare != nil:
		return fmt.Sprintf("%s %s", s.Declare.Type, s.Declare.Name)
	case s.Leave:
		return "leave"
	case s.Malloc != nil:
		return fmt.Sprintf("%s = malloc(%d)", s.Malloc.Into, s.Malloc.Size)
	case s.Free != "":
		return fmt.Sprintf("free(%s)", s.Free)
	case s.Store != nil:
		return fmt.Sprintf("%s = %d", s.Store.Target, s.Store.Value)
	case s.Load != "":
		return s.Load
	}
	return "nop"
}

// Apply executes the step on c. It does not begin a new step.
func (s Step) Apply(c *emulator.Core) error {
	switch {
	case s.Enter != nil:
		kind := scope.Function
		if s.Enter.Kind == "block" {
			kind = scope.Block
		}
		c.Scope.Enter(kind, s.Enter.Name, s.Enter.Limit)
	case s.Declare != nil:
		t, err := types.Parse(s.Declare.Type, c.Records)
		if err != nil {
			return err
		}
		c.Scope.Declare(s.Declare.Name, scope.Ref{Address: s.Declare.Address, Type: t})
	case s.Leave:
		c.Scope.Leave()
	case s.Malloc != nil:
		ref, err := c.Env().Ref(s.Malloc.Into)
		if err != nil {
			return err
		}
		if _, ok := ref.Type.(*types.Pointer); !ok {
			return fmt.Errorf("%w: %s is not a pointer", expr.ErrTypeMismatch, s.Malloc.Into)
		}
		p := c.Malloc(s.Malloc.Size)
		return c.Store(ref, types.Value{Type: ref.Type, Bits: uint64(p)})
	case s.Free != "":
		v, err := load(c, s.Free)
		if err != nil {
			return err
		}
		if _, ok := v.Type.(*types.Pointer); !ok {
			return fmt.Errorf("%w: %s is not a pointer", expr.ErrTypeMismatch, s.Free)
		}
		c.Free(v.Pointer())
	case s.Store != nil:
		ref, err := c.Env().Ref(s.Store.Target)
		if err != nil {
			return err
		}
		return c.Store(ref, types.FromInt(ref.Type, s.Store.Value))
	case s.Load != "":
		_, err := load(c, s.Load)
		return err
	}
	return nil
}

// load evaluates src and logs the final read when it names memory.
func load(c *emulator.Core, src string) (types.Value, error) {
	r, err := c.Env().Eval(src)
	if err != nil {
		return types.Value{}, err
	}
	if !r.HasRef {
		return r.Value, nil
	}
	return c.Load(r.Ref)
}

// Setup declares the scenario's records and globals on c. Records are laid
// out in file order, so a record embedded by value must come first.
func (sc *Scenario) Setup(c *emulator.Core) error {
	for _, r := range sc.Records {
		if _, ok := c.Records[r.Name]; ok {
			return fmt.Errorf("%w: record %s declared twice", ErrInvalid, r.Name)
		}
		c.Records[r.Name] = types.NewRecord(r.Name)
	}
	for _, r := range sc.Records {
		fields := make([]types.Field, 0, len(r.Fields))
		for _, f := range r.Fields {
			t, err := types.Parse(f.Type, c.Records)
			if err != nil {
				return fmt.Errorf("%w: record %s: %v", ErrInvalid, r.Name, err)
			}
			fields = append(fields, types.Field{Name: f.Name, Type: t})
		}
		c.Records[r.Name].Layout(fields...)
	}

	for _, g := range sc.Globals {
		t, err := types.Parse(g.Type, c.Records)
		if err != nil {
			return fmt.Errorf("%w: global %s: %v", ErrInvalid, g.Name, err)
		}
		c.Globals[g.Name] = scope.Ref{Address: g.Address, Type: t}
	}
	return nil
}

// NewCore creates a machine configured and set up for sc.
func (sc *Scenario) NewCore(logger *zap.Logger, stats *debug.Stats) (*emulator.Core, error) {
	c, err := emulator.New(sc.Config(), logger, stats)
	if err != nil {
		return nil, err
	}
	if err := sc.Setup(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Run executes the steps from c.Steps() up to, but not including, upto. A
// negative upto runs every remaining step. Each step begins with c.Step, so
// the view afterwards shows the last step's memory log.
func Run(c *emulator.Core, sc *Scenario, upto int) error {
	if upto < 0 || upto > len(sc.Steps) {
		upto = len(sc.Steps)
	}
	for i := c.Steps(); i < upto; i++ {
		c.Step()
		if err := sc.Steps[i].Apply(c); err != nil {
			return fmt.Errorf("%w: step %d (%v): %w", ErrStepFailed, i, sc.Steps[i], err)
		}
	}
	return nil
}
