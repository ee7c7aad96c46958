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

package memlog

import (
	"github.com/andreas-jonsson/memstep/emulator/memory"
)

type Kind byte

const (
	Load Kind = iota
	Store
)

func (k Kind) String() string {
	if k == Store {
		return "store"
	}
	return "load"
}

type Entry struct {
	Kind    Kind
	Address memory.Pointer
	Size    int
}

func (e Entry) covers(addr memory.Pointer) bool {
	return e.Address <= addr && int64(addr) <= int64(e.Address)+int64(e.Size)-1
}

// Log is ordered by occurrence. The position of an entry is its rank.
type Log []Entry

func (l Log) Addresses() []memory.Pointer {
	addrs := make([]memory.Pointer, len(l))
	for i, e := range l {
		addrs[i] = e.Address
	}
	return addrs
}

type Rank int

const NoRank Rank = -1

func (r Rank) Valid() bool {
	return r >= 0
}

func maxRank(a, b Rank) Rank {
	if a > b {
		return a
	}
	return b
}

type Ops struct {
	Load, Store Rank
}

var noOps = Ops{Load: NoRank, Store: NoRank}

func (o Ops) Merge(other Ops) Ops {
	return Ops{Load: maxRank(o.Load, other.Load), Store: maxRank(o.Store, other.Store)}
}

// Index answers per byte queries against a log. It caches results and
// must be rebuilt whenever the log changes.
type Index struct {
	log   Log
	bytes map[memory.Pointer]Ops
}

func NewIndex(log Log) *Index {
	return &Index{log: log, bytes: make(map[memory.Pointer]Ops)}
}

func (x *Index) Byte(addr memory.Pointer) Ops {
	if ops, ok := x.bytes[addr]; ok {
		return ops
	}
	ops := noOps
	for i, e := range x.log {
		if !e.covers(addr) {
			continue
		}
		if e.Kind == Store {
			ops.Store = Rank(i)
		} else {
			ops.Load = Rank(i)
		}
	}
	x.bytes[addr] = ops
	return ops
}

// Range reduces the per byte ranks of the inclusive range [start, end].
func (x *Index) Range(start, end memory.Pointer) Ops {
	ops := noOps
	for addr := int64(start); addr <= int64(end); addr++ {
		ops = ops.Merge(x.Byte(memory.Pointer(addr)))
	}
	return ops
}
