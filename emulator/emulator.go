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

// Package emulator hosts the simulated machine: a flat memory image with a
// heap, the current scope chain and the memory log of the running step.
package emulator

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/andreas-jonsson/memstep/emulator/debug"
	"github.com/andreas-jonsson/memstep/emulator/expr"
	"github.com/andreas-jonsson/memstep/emulator/heap"
	"github.com/andreas-jonsson/memstep/emulator/memlog"
	"github.com/andreas-jonsson/memstep/emulator/memory"
	"github.com/andreas-jonsson/memstep/emulator/scope"
	"github.com/andreas-jonsson/memstep/emulator/types"
	"github.com/andreas-jonsson/memstep/emulator/view"
)

var ErrConfig = errors.New("invalid machine configuration")

type Config struct {
	MemorySize int
	HeapStart  memory.Pointer
	StackBytes int
}

func DefaultConfig() Config {
	return Config{
		MemorySize: 0x1000,
		HeapStart:  0x100,
		StackBytes: 0x400,
	}
}

type Core struct {
	Scope   *scope.Chain
	Globals scope.Globals
	Records map[string]*types.Record

	cfg    Config
	mem    *memory.Buffer
	prev   *memory.Buffer
	log    memlog.Log
	steps  int
	logger *zap.Logger
	stats  *debug.Stats
}

// New creates a zeroed machine with an empty heap. A nil logger or stats
// disables the respective output.
func New(cfg Config, logger *zap.Logger, stats *debug.Stats) (*Core, error) {
	if cfg.MemorySize <= 0 || cfg.StackBytes < 0 {
		return nil, fmt.Errorf("%w: memory size %d, stack bytes %d", ErrConfig, cfg.MemorySize, cfg.StackBytes)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if stats == nil {
		stats, _ = debug.NewStats(nil)
	}

	c := &Core{
		Scope:   scope.NewChain(),
		Globals: make(scope.Globals),
		Records: make(map[string]*types.Record),
		cfg:     cfg,
		mem:     memory.NewBuffer(cfg.MemorySize),
		logger:  logger,
		stats:   stats,
	}
	if err := heap.Init(c.mem, cfg.HeapStart, cfg.StackBytes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	c.prev = c.mem.Clone()
	c.updateHeapGauge()

	logger.Debug("machine created",
		zap.Int("memory", cfg.MemorySize),
		zap.Stringer("heap", cfg.HeapStart),
		zap.Int("stack", cfg.StackBytes),
	)
	return c, nil
}

func (c *Core) Config() Config {
	return c.cfg
}

func (c *Core) Memory() *memory.Buffer {
	return c.mem
}

// Previous is the memory image as it was when the current step began.
func (c *Core) Previous() *memory.Buffer {
	return c.prev
}

func (c *Core) Log() memlog.Log {
	return c.log
}

func (c *Core) Steps() int {
	return c.steps
}

// Step begins a new execution step.
func (c *Core) Step() {
	c.prev = c.mem.Clone()
	c.log = nil
	c.steps++
	c.stats.Steps.Inc()
}

func (c *Core) Load(ref scope.Ref) (types.Value, error) {
	if !types.Readable(ref.Type) {
		return types.Value{}, fmt.Errorf("load of %v: %w", ref.Type, expr.ErrTypeMismatch)
	}
	if err := c.check("read", ref); err != nil {
		return types.Value{}, err
	}
	c.log = append(c.log, memlog.Entry{Kind: memlog.Load, Address: ref.Address, Size: ref.Type.Size()})
	v, _ := types.Read(c.mem, ref.Address, ref.Type)
	return v, nil
}

func (c *Core) Store(ref scope.Ref, v types.Value) error {
	if !types.Readable(ref.Type) {
		return fmt.Errorf("store to %v: %w", ref.Type, expr.ErrTypeMismatch)
	}
	if err := c.check("write", ref); err != nil {
		return err
	}
	c.log = append(c.log, memlog.Entry{Kind: memlog.Store, Address: ref.Address, Size: ref.Type.Size()})
	types.Write(c.mem, ref.Address, types.Value{Type: ref.Type, Bits: v.Bits})
	return nil
}

func (c *Core) check(op string, ref scope.Ref) error {
	if !memory.InBounds(c.mem, int64(ref.Address), ref.Type.Size()) {
		return &memory.AccessError{Op: op, Addr: ref.Address, Size: c.mem.Size()}
	}
	return nil
}

// Malloc allocates n bytes on the heap and returns memory.Nil when the heap
// is exhausted.
func (c *Core) Malloc(n uint32) memory.Pointer {
	p := heap.Alloc(c.mem, c.cfg.HeapStart, n)
	if p == memory.Nil {
		c.stats.FailedAllocations.Inc()
		c.logger.Debug("malloc failed", zap.Uint32("size", n))
		return p
	}
	c.stats.Allocations.Inc()
	c.updateHeapGauge()
	c.logger.Debug("malloc", zap.Uint32("size", n), zap.Stringer("ptr", p))
	return p
}

func (c *Core) Free(p memory.Pointer) {
	heap.Free(c.mem, c.cfg.HeapStart, p)
	c.stats.Frees.Inc()
	c.updateHeapGauge()
	c.logger.Debug("free", zap.Stringer("ptr", p))
}

func (c *Core) updateHeapGauge() {
	s := heap.Summary(c.mem, c.cfg.HeapStart)
	c.stats.HeapInUse.Set(float64(s.Used + heap.HeaderSize*(s.Blocks-s.FreeBlocks)))
}

func (c *Core) Blocks() []heap.Block {
	return heap.List(c.mem, c.cfg.HeapStart)
}

// Env returns an expression environment bound to the live machine state.
func (c *Core) Env() expr.Env {
	return expr.Env{Memory: c.mem, Scope: c.Scope, Globals: c.Globals}
}

// Snapshot captures the state needed to extract views of the current step.
// The scope chain is copied so later steps do not change it.
func (c *Core) Snapshot() *view.Snapshot {
	mem := c.mem.Clone()
	sc := c.Scope.Clone()
	log := make(memlog.Log, len(c.log))
	copy(log, c.log)

	return &view.Snapshot{
		Memory:    mem,
		Previous:  c.prev,
		HeapStart: c.cfg.HeapStart,
		Blocks:    heap.List(mem, c.cfg.HeapStart),
		Scope:     sc,
		Globals:   c.Globals,
		Log:       log,
		Eval:      expr.Env{Memory: mem, Scope: sc, Globals: c.Globals},
	}
}

// View extracts the grid for the current state.
func (c *Core) View(opts view.Options) *view.Grid {
	c.stats.Views.Inc()
	return view.Extract(c.Snapshot(), opts)
}
