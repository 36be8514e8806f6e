// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package irtest

import "github.com/go-redex/reflectflow/ir"

// Block is a fixture basic block: an id, an instruction list, and explicit
// successor/predecessor id lists (Graph construction computes nothing,
// since CFG fixtures are always small and hand-wired in a test).
type Block struct {
	id    ir.BlockID
	insns []ir.Instruction
	succ  []ir.BlockID
	pred  []ir.BlockID
}

func (b *Block) ID() ir.BlockID                { return b.id }
func (b *Block) Instructions() []ir.Instruction { return b.insns }
func (b *Block) Successors() []ir.BlockID       { return b.succ }
func (b *Block) Predecessors() []ir.BlockID     { return b.pred }

// CFG is a fixture control-flow graph: a fixed entry id plus a block map.
type CFG struct {
	entry  ir.BlockID
	blocks map[ir.BlockID]*Block
	order  []ir.BlockID
}

func (c *CFG) Entry() ir.BlockID { return c.entry }
func (c *CFG) Block(id ir.BlockID) ir.Block { return c.blocks[id] }
func (c *CFG) Blocks() []ir.Block {
	out := make([]ir.Block, len(c.order))
	for i, id := range c.order {
		out[i] = c.blocks[id]
	}
	return out
}

// CFGBuilder assembles a CFG one block at a time, then wires successor and
// predecessor edges from a single edge list so a test never has to keep
// both directions consistent by hand.
type CFGBuilder struct {
	entry  ir.BlockID
	blocks map[ir.BlockID]*Block
	order  []ir.BlockID
}

// NewCFGBuilder starts a builder whose entry block is entry.
func NewCFGBuilder(entry ir.BlockID) *CFGBuilder {
	return &CFGBuilder{entry: entry, blocks: make(map[ir.BlockID]*Block)}
}

// Block adds a basic block with the given instructions.
func (b *CFGBuilder) Block(id ir.BlockID, insns ...ir.Instruction) *CFGBuilder {
	b.blocks[id] = &Block{id: id, insns: insns}
	b.order = append(b.order, id)
	return b
}

// Edge adds a control-flow edge from -> to, updating both blocks'
// successor and predecessor lists.
func (b *CFGBuilder) Edge(from, to ir.BlockID) *CFGBuilder {
	b.blocks[from].succ = append(b.blocks[from].succ, to)
	b.blocks[to].pred = append(b.blocks[to].pred, from)
	return b
}

// Build finalizes the CFG.
func (b *CFGBuilder) Build() *CFG {
	return &CFG{entry: b.entry, blocks: b.blocks, order: b.order}
}

// Method is a fixture ir.Method.
type Method struct {
	owner      ir.TypeId
	name       string
	static     bool
	params     []ir.TypeId
	ret        ir.TypeId
	numRegs    int
	cfg        ir.CFG
	hasCFG     bool
}

func (m *Method) Owner() ir.TypeId       { return m.owner }
func (m *Method) IsStatic() bool         { return m.static }
func (m *Method) ParamTypes() []ir.TypeId { return m.params }
func (m *Method) ReturnType() ir.TypeId  { return m.ret }
func (m *Method) NumRegisters() int      { return m.numRegs }
func (m *Method) CFG() (ir.CFG, bool)    { return m.cfg, m.hasCFG }
func (m *Method) String() string         { return m.owner.InternalName() + "." + m.name }

// NewMethod builds a fixture method with a CFG.
func NewMethod(owner ir.TypeId, name string, static bool, params []ir.TypeId, ret ir.TypeId, numRegs int, cfg *CFG) *Method {
	return &Method{owner: owner, name: name, static: static, params: params, ret: ret, numRegs: numRegs, cfg: cfg, hasCFG: true}
}

// NewAbstractMethod builds a fixture method with no IR body (abstract,
// native, or otherwise unavailable), exercising the facade's empty-Analysis
// path.
func NewAbstractMethod(owner ir.TypeId, name string, static bool, params []ir.TypeId, ret ir.TypeId) *Method {
	return &Method{owner: owner, name: name, static: static, params: params, ret: ret}
}
