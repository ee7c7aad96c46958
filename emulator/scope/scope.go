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

package scope

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/andreas-jonsson/memstep/emulator/memory"
	"github.com/andreas-jonsson/memstep/emulator/types"
)

type Kind byte

const (
	Global Kind = iota
	Function
	Block
	Variable
)

var kindNames = [...]string{"global", "function", "block", "variable"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// Ref is a typed reference to a value stored in memory.
type Ref struct {
	Address memory.Pointer
	Type    types.Type
}

// End is the address of the last byte of the referenced value.
func (r Ref) End() memory.Pointer {
	return r.Address.Add(r.Type.Size() - 1)
}

// Node is one entry of a scope chain. Variables use their address as limit,
// frames and blocks the address where their stack area begins.
type Node struct {
	Kind   Kind
	Parent int
	Name   string
	Ref    Ref
	Limit  memory.Pointer
}

const noParent = -1

// Chain stores scope nodes in an arena. Nodes only refer to their parent by
// index, so popping a scope never invalidates an outer one.
type Chain struct {
	nodes []Node
	top   int
}

func NewChain() *Chain {
	return &Chain{top: noParent}
}

func (c *Chain) Push(n Node) int {
	n.Parent = c.top
	c.nodes = append(c.nodes, n)
	c.top = len(c.nodes) - 1
	return c.top
}

// Enter opens a function frame or block scope.
func (c *Chain) Enter(kind Kind, name string, limit memory.Pointer) int {
	return c.Push(Node{Kind: kind, Name: name, Limit: limit})
}

func (c *Chain) Declare(name string, ref Ref) int {
	return c.Push(Node{Kind: Variable, Name: name, Ref: ref, Limit: ref.Address})
}

// Leave pops nodes up to and including the innermost function or block.
func (c *Chain) Leave() {
	for c.top != noParent {
		n := c.nodes[c.top]
		c.top = n.Parent
		if n.Kind == Function || n.Kind == Block {
			break
		}
	}
	c.nodes = c.nodes[:c.top+1]
}

func (c *Chain) Top() (Node, bool) {
	if c == nil || c.top == noParent {
		return Node{}, false
	}
	return c.nodes[c.top], true
}

// Walk visits nodes from the innermost scope outwards until fn returns false.
func (c *Chain) Walk(fn func(Node) bool) {
	if c == nil {
		return
	}
	for i := c.top; i != noParent; i = c.nodes[i].Parent {
		if !fn(c.nodes[i]) {
			return
		}
	}
}

// Lookup finds the innermost variable called name.
func (c *Chain) Lookup(name string) (Ref, bool) {
	var (
		ref   Ref
		found bool
	)
	c.Walk(func(n Node) bool {
		if n.Kind == Variable && n.Name == name {
			ref, found = n.Ref, true
			return false
		}
		return true
	})
	return ref, found
}

// Clone copies the live part of the chain so that later pushes and pops do
// not affect the snapshot.
func (c *Chain) Clone() *Chain {
	return &Chain{nodes: slices.Clone(c.nodes[:c.top+1]), top: c.top}
}

type Globals map[string]Ref

func (g Globals) Names() []string {
	names := maps.Keys(g)
	slices.Sort(names)
	return names
}
