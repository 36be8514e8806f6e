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

package reflectflow

import (
	"github.com/go-redex/reflectflow/internal/graphutil"
	"github.com/go-redex/reflectflow/ir"
)

// Options configures an Analysis beyond what the method and symbol table
// alone determine: extensions to the hard-coded reflection API table, an
// optional trace sink, and whether to precompute the CFG's elementary
// cycles (used only by the Loops diagnostic, never by the fixpoint itself).
type Options struct {
	ReflectionAliases []ReflectionAlias
	Trace             func(format string, args ...interface{})
	ComputeLoops      bool
}

// Analysis is the public facade: one instance per method, holding the
// converged fixpoint's per-instruction environments and exposing the
// query layer. An Analysis is single-threaded and self-contained;
// independent instances (even for the same method) share no mutable state
// and may be run concurrently by the host.
type Analysis struct {
	method ir.Method
	index  *queryIndex
	loops  [][]ir.BlockID

	// empty is true when the method has no IR body: construction still
	// succeeds, but every query returns empty/None. A missing IR body is
	// not itself an error condition.
	empty bool
}

// New constructs and runs the analysis for m against st, recovering
// nothing: a malformed IR (a signature or opcode precondition violated)
// is a fatal assertion and New panics rather than returning an error,
// because the contract treats that as a caller precondition, not a
// recoverable condition.
func New(m ir.Method, st ir.SymbolTable, opts Options) *Analysis {
	cfg, ok := m.CFG()
	if !ok {
		return &Analysis{method: m, empty: true, index: &queryIndex{entry: map[ir.Instruction]Environment{}}}
	}

	table := newReflectionTable(st, opts.ReflectionAliases)
	transfer := &transferer{st: st, table: table, trace: opts.Trace}

	entry := cfg.Block(cfg.Entry())
	entryState := transfer.buildEntryState(m, entry)

	solved := newSolver(cfg, transfer)
	solved.run(entryState)

	index := buildQueryIndex(cfg, solved, entryState, transfer, m.NumRegisters())

	a := &Analysis{method: m, index: index}
	if opts.ComputeLoops {
		a.loops = computeLoops(cfg)
	}
	return a
}

// GetAbstractObject returns the constant held in reg at insn's pre-state.
func (a *Analysis) GetAbstractObject(reg ir.Reg, insn ir.Instruction) (AbstractObject, bool) {
	if a.empty {
		return AbstractObject{}, false
	}
	return a.index.getAbstractObject(reg, insn)
}

// GetReflectionSites returns every reflection site found in the method, in
// program order.
func (a *Analysis) GetReflectionSites() []ReflectionSite {
	if a.empty {
		return nil
	}
	return a.index.getReflectionSites()
}

// HasFoundReflection reports whether GetReflectionSites is nonempty.
func (a *Analysis) HasFoundReflection() bool {
	return len(a.GetReflectionSites()) > 0
}

// Loops returns every elementary cycle in the method's CFG, as block id
// sequences, if Options.ComputeLoops was set; nil otherwise. This is a
// diagnostic only — the fixpoint driver does not consult it.
func (a *Analysis) Loops() [][]ir.BlockID {
	return a.loops
}

func computeLoops(cfg ir.CFG) [][]ir.BlockID {
	blocks := cfg.Blocks()
	ids := make([]int64, len(blocks))
	succ := make(map[ir.BlockID][]ir.BlockID, len(blocks))
	for i, b := range blocks {
		ids[i] = int64(b.ID())
		succ[b.ID()] = b.Successors()
	}
	g := graphutil.NewBlockGraph(ids, func(id int64) []int64 {
		out := make([]int64, 0, len(succ[ir.BlockID(id)]))
		for _, s := range succ[ir.BlockID(id)] {
			out = append(out, int64(s))
		}
		return out
	})
	raw := graphutil.FindAllElementaryCycles(g)
	loops := make([][]ir.BlockID, len(raw))
	for i, cycle := range raw {
		loop := make([]ir.BlockID, len(cycle))
		for j, id := range cycle {
			loop[j] = ir.BlockID(id)
		}
		loops[i] = loop
	}
	return loops
}
