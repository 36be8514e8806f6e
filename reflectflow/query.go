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
	"sort"

	"github.com/go-redex/reflectflow/ir"
)

// ReflectionSite is one instruction where some register's pre-state holds
// a reflection output: a Field, a Method, or a reflectively-sourced Class.
type ReflectionSite struct {
	Instruction ir.Instruction
	// Values maps register to the reflection-output abstract object found
	// there, ordered by register id with RESULT_REG last (see Registers).
	Values map[ir.Reg]AbstractObject
	// Registers is Values's keys in query order: ascending register id,
	// with RESULT_REG last.
	Registers []ir.Reg
}

// queryIndex is the post-fixpoint cache: for every instruction, its entry
// environment (the state before that instruction's transfer function
// runs). Building this once after the fixpoint converges is what makes
// get_abstract_object and get_reflection_sites O(1)/O(sites) instead of
// re-walking the CFG per query.
type queryIndex struct {
	order    []ir.Instruction
	entry    map[ir.Instruction]Environment
	numRegs  int
}

// buildQueryIndex replays the converged fixpoint once over every block in
// program order, recording each instruction's entry environment.
func buildQueryIndex(cfg ir.CFG, solved *solver, entryState Environment, transfer *transferer, numRegs int) *queryIndex {
	idx := &queryIndex{
		entry:   make(map[ir.Instruction]Environment),
		numRegs: numRegs,
	}
	for _, block := range cfg.Blocks() {
		env := solved.entryEnvironment(block.ID(), entryState)
		for _, insn := range block.Instructions() {
			idx.entry[insn] = env
			idx.order = append(idx.order, insn)
			env = transfer.step(insn, env)
		}
	}
	return idx
}

// getAbstractObject returns the constant held in reg at insn's pre-state,
// if any: absent if insn was never visited, or if the value is ⊤/⊥.
func (q *queryIndex) getAbstractObject(reg ir.Reg, insn ir.Instruction) (AbstractObject, bool) {
	env, ok := q.entry[insn]
	if !ok {
		return AbstractObject{}, false
	}
	return env.Get(reg).Constant()
}

// getReflectionSites returns every instruction (in program order) whose
// pre-state holds a reflection output in some register, plus which
// registers and what they hold.
func (q *queryIndex) getReflectionSites() []ReflectionSite {
	var sites []ReflectionSite
	for _, insn := range q.order {
		env := q.entry[insn]
		values := make(map[ir.Reg]AbstractObject)
		var regs []ir.Reg
		for r := ir.Reg(0); int(r) < q.numRegs; r++ {
			if c, ok := env.Get(r).Constant(); ok && c.IsReflectionOutput() {
				values[r] = c
				regs = append(regs, r)
			}
		}
		if c, ok := env.Get(ir.RESULT_REG).Constant(); ok && c.IsReflectionOutput() {
			values[ir.RESULT_REG] = c
			regs = append(regs, ir.RESULT_REG)
		}
		if len(regs) == 0 {
			continue
		}
		sort.Slice(regs, func(i, j int) bool {
			if regs[i] == ir.RESULT_REG {
				return false
			}
			if regs[j] == ir.RESULT_REG {
				return true
			}
			return regs[i] < regs[j]
		})
		sites = append(sites, ReflectionSite{Instruction: insn, Values: values, Registers: regs})
	}
	return sites
}
