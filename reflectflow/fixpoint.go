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
	"gonum.org/v1/gonum/graph/topo"

	"github.com/go-redex/reflectflow/internal/graphutil"
	"github.com/go-redex/reflectflow/ir"
)

// solver runs the monotone forward fixpoint over a CFG. It keeps the exit
// environment of every block it has visited, and a worklist of blocks whose
// predecessors changed since they were last processed.
type solver struct {
	cfg      ir.CFG
	transfer *transferer

	blockExit  map[ir.BlockID]Environment
	blockOrder []ir.BlockID // weak topological schedule, entry first
	order      map[ir.BlockID]int
}

// newSolver computes the weak topological schedule once, up front: a
// reverse-postorder seed derived from the CFG's strongly connected
// components (via gonum/graph/topo's Tarjan implementation), so that in
// the common acyclic-or-nearly-acyclic case every block is visited in an
// order where its predecessors have already been processed at least once.
// Loop headers are still revisited via the worklist until their incoming
// state stabilizes; the schedule only affects how many redundant visits
// happen before that, never correctness.
func newSolver(cfg ir.CFG, transfer *transferer) *solver {
	blocks := cfg.Blocks()
	succ := make(map[ir.BlockID][]ir.BlockID, len(blocks))
	ids := make([]int64, len(blocks))
	for i, b := range blocks {
		succ[b.ID()] = b.Successors()
		ids[i] = int64(b.ID())
	}

	g := graphutil.NewBlockGraph(ids, func(id int64) []int64 {
		out := make([]int64, 0, len(succ[ir.BlockID(id)]))
		for _, s := range succ[ir.BlockID(id)] {
			out = append(out, int64(s))
		}
		return out
	})

	// topo.TarjanSCC, like the rest of Tarjan's algorithm's output, orders
	// components with successors first (leaves towards the root); reverse
	// it so predecessors are scheduled before successors, which is what a
	// forward analysis wants.
	sccs := topo.TarjanSCC(g)
	order := make(map[ir.BlockID]int, len(blocks))
	schedule := make([]ir.BlockID, 0, len(blocks))
	for i := len(sccs) - 1; i >= 0; i-- {
		for _, n := range sccs[i] {
			id := ir.BlockID(n.ID())
			order[id] = len(schedule)
			schedule = append(schedule, id)
		}
	}

	return &solver{
		cfg:        cfg,
		transfer:   transfer,
		blockExit:  make(map[ir.BlockID]Environment, len(blocks)),
		blockOrder: schedule,
		order:      order,
	}
}

// run executes the fixpoint to convergence, given the already-constructed
// entry-state environment for the CFG's entry block.
func (s *solver) run(entryState Environment) {
	worklist := newBlockQueue(s.order)
	worklist.push(s.cfg.Entry())

	for {
		id, ok := worklist.pop()
		if !ok {
			return
		}
		block := s.cfg.Block(id)
		entry := s.entryEnvironment(id, entryState)

		exit := entry
		for _, insn := range block.Instructions() {
			exit = s.transfer.step(insn, exit)
		}

		prev, seen := s.blockExit[id]
		if seen && prev.Equal(exit) {
			continue
		}
		s.blockExit[id] = exit
		for _, succ := range block.Successors() {
			worklist.push(succ)
		}
	}
}

// entryEnvironment computes a block's entry state: the join of every
// already-visited predecessor's exit state, or the parameter-initialized
// entry state for the CFG's entry block. A predecessor that has not been
// visited yet simply contributes nothing (equivalent to contributing ⊥,
// the join identity) rather than forcing premature materialization.
func (s *solver) entryEnvironment(id ir.BlockID, entryState Environment) Environment {
	if id == s.cfg.Entry() {
		env := entryState
		for _, pred := range s.cfg.Block(id).Predecessors() {
			if predExit, ok := s.blockExit[pred]; ok {
				env = env.Join(predExit)
			}
		}
		return env
	}
	env := BottomEnvironment()
	for _, pred := range s.cfg.Block(id).Predecessors() {
		if predExit, ok := s.blockExit[pred]; ok {
			env = env.Join(predExit)
		}
	}
	return env
}

// blockQueue is a worklist that orders pending blocks by the solver's
// precomputed schedule (so a scan of a small slice amounts to picking the
// earliest-scheduled pending block) and de-duplicates pending entries.
type blockQueue struct {
	order   map[ir.BlockID]int
	pending map[ir.BlockID]bool
	items   []ir.BlockID
}

func newBlockQueue(order map[ir.BlockID]int) *blockQueue {
	return &blockQueue{order: order, pending: make(map[ir.BlockID]bool)}
}

func (q *blockQueue) push(id ir.BlockID) {
	if q.pending[id] {
		return
	}
	q.pending[id] = true
	q.items = append(q.items, id)
}

// pop removes and returns the earliest-scheduled pending block.
func (q *blockQueue) pop() (ir.BlockID, bool) {
	if len(q.items) == 0 {
		return 0, false
	}
	best := 0
	for i := 1; i < len(q.items); i++ {
		if q.order[q.items[i]] < q.order[q.items[best]] {
			best = i
		}
	}
	id := q.items[best]
	q.items[best] = q.items[len(q.items)-1]
	q.items = q.items[:len(q.items)-1]
	delete(q.pending, id)
	return id, true
}
