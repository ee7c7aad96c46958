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

// Package scenario loads scripted runs of the machine from YAML files.
//
//	name: list
//	memory: {size: 0x1000, heap_start: 0x100, stack_bytes: 0x400}
//	records:
//	  - name: node
//	    fields:
//	      - {name: value, type: int}
//	      - {name: next, type: struct node*}
//	steps:
//	  - enter: {kind: function, name: main, limit: 0x1000}
//	  - declare: {name: head, type: struct node*, address: 0xFFC}
//	  - malloc: {size: 8, into: head}
//	  - store: {target: head->value, value: 1}
//	view: {center: 0x100, cursors: [head]}
package scenario

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"

	"github.com/andreas-jonsson/memstep/emulator"
	"github.com/andreas-jonsson/memstep/emulator/memory"
	"github.com/andreas-jonsson/memstep/emulator/view"
)

var (
	ErrInvalid    = errors.New("invalid scenario")
	ErrStepFailed = errors.New("step failed")
)

type Memory struct {
	Size       *int            `yaml:"size"`
	HeapStart  *memory.Pointer `yaml:"heap_start"`
	StackBytes *int            `yaml:"stack_bytes"`
}

type Field struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type Record struct {
	Name   string  `yaml:"name"`
	Fields []Field `yaml:"fields"`
}

type Global struct {
	Name    string         `yaml:"name"`
	Type    string         `yaml:"type"`
	Address memory.Pointer `yaml:"address"`
}

type View struct {
	Center     memory.Pointer `yaml:"center"`
	Bytes      int            `yaml:"bytes"`
	ExtraBytes int            `yaml:"extra_bytes"`
	CursorRows int            `yaml:"cursor_rows"`
	Cursors    []string       `yaml:"cursors"`
	Extras     []string       `yaml:"extras"`
}

func (v View) Options() view.Options {
	return view.Options{
		CenterAddress: v.Center,
		BytesShown:    v.Bytes,
		ExtraBytes:    v.ExtraBytes,
		CursorRows:    v.CursorRows,
		CursorExprs:   v.Cursors,
		ExtraExprs:    v.Extras,
	}
}

type Scenario struct {
	Name    string   `yaml:"name"`
	Memory  Memory   `yaml:"memory"`
	Records []Record `yaml:"records"`
	Globals []Global `yaml:"globals"`
	Steps   []Step   `yaml:"steps"`
	View    View     `yaml:"view"`
}

func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.UnmarshalStrict(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for i, s := range sc.Steps {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("%w: step %d: %v", ErrInvalid, i, err)
		}
	}
	return &sc, nil
}

func Load(fs afero.Fs, name string) (*Scenario, error) {
	data, err := afero.ReadFile(fs, name)
	if err != nil {
		return nil, err
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(name, ".yaml")
	}
	return sc, nil
}

// Config returns the machine configuration, using defaults for unset fields.
func (sc *Scenario) Config() emulator.Config {
	cfg := emulator.DefaultConfig()
	if sc.Memory.Size != nil {
		cfg.MemorySize = *sc.Memory.Size
	}
	if sc.Memory.HeapStart != nil {
		cfg.HeapStart = *sc.Memory.HeapStart
	}
	if sc.Memory.StackBytes != nil {
		cfg.StackBytes = *sc.Memory.StackBytes
	}
	return cfg
}
