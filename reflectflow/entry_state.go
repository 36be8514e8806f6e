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

import "github.com/go-redex/reflectflow/ir"

// buildEntryState walks the prefix of parameter-loading pseudo-instructions
// at the head of the entry block and produces the initial environment for
// the fixpoint driver. It stops at (and does not consume) the
// first instruction that is not one of the three LOAD_PARAM* opcodes.
func (t *transferer) buildEntryState(m ir.Method, entry ir.Block) Environment {
	env := TopEnvironment()
	params := m.ParamTypes()
	paramIdx := 0
	needsThis := !m.IsStatic()

	for _, insn := range entry.Instructions() {
		switch insn.Op() {
		case ir.OpLoadParamObject:
			dest, ok := insn.Dest()
			if !ok {
				malformed("LOAD_PARAM_OBJECT instruction has no destination register")
			}
			if needsThis {
				env = env.Set(dest, Of(Object(m.Owner())))
				needsThis = false
				continue
			}
			if paramIdx >= len(params) {
				malformed("method %s has fewer parameter types than LOAD_PARAM_OBJECT instructions", m.String())
			}
			typ := params[paramIdx]
			paramIdx++
			env = t.updateNonStringInput(insn, env, typ)

		case ir.OpLoadParam, ir.OpLoadParamWide:
			env = t.defaultClobber(insn, env)

		default:
			return env
		}
	}
	return env
}
