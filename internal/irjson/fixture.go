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

// Package irjson decodes a JSON-encoded method fixture into the in-memory
// ir.Method the irtest package builds, so cmd/reflectscan can run the
// analyzer without a real dex/class-file frontend. The JSON shape mirrors
// irtest's builder one-to-one: a method header, a list of blocks (each an
// id, an instruction list, and a successor id list), and an entry block id.
package irjson

import (
	"encoding/json"
	"fmt"

	"github.com/go-redex/reflectflow/internal/irtest"
	"github.com/go-redex/reflectflow/ir"
)

// Fixture is the top-level JSON document: one method.
type Fixture struct {
	Owner        string      `json:"owner"`
	Name         string      `json:"name"`
	Static       bool        `json:"static"`
	Params       []string    `json:"params"`
	Return       string      `json:"return"`
	NumRegisters int         `json:"numRegisters"`
	Entry        int         `json:"entry"`
	Blocks       []jsonBlock `json:"blocks"`
	// NoBody marks a method with no IR available, exercising the facade's
	// empty-analysis path; Blocks is ignored when set.
	NoBody bool `json:"noBody"`
}

type jsonBlock struct {
	ID    int        `json:"id"`
	Succ  []int      `json:"succ"`
	Insns []jsonInsn `json:"insns"`
}

// jsonInsn is a tagged union over every opcode irtest knows how to build.
// Not every field is meaningful for every Op; see the irtest constructor
// each Op maps to below.
type jsonInsn struct {
	Op string `json:"op"`

	Dest          *int   `json:"dest,omitempty"`
	HasMoveResult bool   `json:"hasMoveResult,omitempty"`
	Src           []int  `json:"src,omitempty"`
	String        string `json:"string,omitempty"`
	Type          string `json:"type,omitempty"`
	FieldOwner    string `json:"fieldOwner,omitempty"`
	FieldType     string `json:"fieldType,omitempty"`

	// MethodOwner/MethodName/MethodParams/MethodReturn describe an
	// INVOKE_*'s callee.
	MethodOwner  string   `json:"methodOwner,omitempty"`
	MethodName   string   `json:"methodName,omitempty"`
	MethodParams []string `json:"methodParams,omitempty"`
	MethodReturn string   `json:"methodReturn,omitempty"`
}

// Load decodes data into an ir.Method, interning every type and string
// operand against st.
func Load(data []byte, st *irtest.SymbolTable) (ir.Method, error) {
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("irjson: %w", err)
	}

	owner := st.T(f.Owner)
	params := make([]ir.TypeId, len(f.Params))
	for i, p := range f.Params {
		params[i] = st.T(p)
	}
	ret := st.T(f.Return)

	if f.NoBody {
		return irtest.NewAbstractMethod(owner, f.Name, f.Static, params, ret), nil
	}

	builder := irtest.NewCFGBuilder(ir.BlockID(f.Entry))
	for _, b := range f.Blocks {
		insns := make([]ir.Instruction, len(b.Insns))
		for i, ji := range b.Insns {
			insn, err := buildInsn(st, ji)
			if err != nil {
				return nil, fmt.Errorf("irjson: block %d insn %d: %w", b.ID, i, err)
			}
			insns[i] = insn
		}
		builder.Block(ir.BlockID(b.ID), insns...)
	}
	for _, b := range f.Blocks {
		for _, s := range b.Succ {
			builder.Edge(ir.BlockID(b.ID), ir.BlockID(s))
		}
	}

	return irtest.NewMethod(owner, f.Name, f.Static, params, ret, f.NumRegisters, builder.Build()), nil
}

func buildInsn(st *irtest.SymbolTable, ji jsonInsn) (ir.Instruction, error) {
	reg := func(i int) ir.Reg { return ir.Reg(i) }
	destReg := func() ir.Reg {
		if ji.Dest == nil {
			return 0
		}
		return reg(*ji.Dest)
	}
	srcRegs := func() []ir.Reg {
		out := make([]ir.Reg, len(ji.Src))
		for i, s := range ji.Src {
			out[i] = reg(s)
		}
		return out
	}

	switch ji.Op {
	case "LOAD_PARAM":
		return irtest.LoadParam(destReg()), nil
	case "LOAD_PARAM_OBJECT":
		return irtest.LoadParamObject(destReg()), nil
	case "LOAD_PARAM_WIDE":
		return irtest.LoadParamWide(destReg()), nil
	case "MOVE_OBJECT":
		s := srcRegs()
		if len(s) != 1 {
			return nil, fmt.Errorf("MOVE_OBJECT requires exactly one src register")
		}
		return irtest.MoveObject(destReg(), s[0]), nil
	case "MOVE_RESULT_OBJECT":
		return irtest.MoveResultObject(destReg()), nil
	case "MOVE_RESULT_PSEUDO_OBJECT":
		return irtest.MoveResultPseudoObject(destReg()), nil
	case "CONST_STRING":
		return irtest.ConstString(st.MakeString(ji.String)), nil
	case "CONST_CLASS":
		return irtest.ConstClass(st.T(ji.Type)), nil
	case "CHECK_CAST":
		s := srcRegs()
		if len(s) != 1 {
			return nil, fmt.Errorf("CHECK_CAST requires exactly one src register")
		}
		return irtest.CheckCast(s[0]), nil
	case "AGET_OBJECT":
		s := srcRegs()
		if len(s) != 2 {
			return nil, fmt.Errorf("AGET_OBJECT requires array and index src registers")
		}
		return irtest.AGetObject(destReg(), ji.HasMoveResult, s[0], s[1]), nil
	case "IGET_OBJECT":
		s := srcRegs()
		if len(s) != 1 {
			return nil, fmt.Errorf("IGET_OBJECT requires a receiver src register")
		}
		return irtest.IGetObject(destReg(), ji.HasMoveResult, s[0], st.T(ji.FieldOwner), st.T(ji.FieldType)), nil
	case "SGET_OBJECT":
		return irtest.SGetObject(destReg(), ji.HasMoveResult, st.T(ji.FieldOwner), st.T(ji.FieldType)), nil
	case "NEW_INSTANCE":
		return irtest.NewInstance(st.T(ji.Type)), nil
	case "NEW_ARRAY":
		return irtest.NewArray(st.T(ji.Type)), nil
	case "FILLED_NEW_ARRAY":
		return irtest.FilledNewArray(st.T(ji.Type)), nil
	case "INVOKE_VIRTUAL", "INVOKE_STATIC", "INVOKE_INTERFACE", "INVOKE_SUPER", "INVOKE_DIRECT":
		callee := methodRef(st, ji)
		return irtest.Invoke(invokeOpcode(ji.Op), destReg(), ji.HasMoveResult, callee, srcRegs()...), nil
	default:
		return nil, fmt.Errorf("unknown opcode %q", ji.Op)
	}
}

func methodRef(st *irtest.SymbolTable, ji jsonInsn) *irtest.MethodRef {
	params := make([]ir.TypeId, len(ji.MethodParams))
	for i, p := range ji.MethodParams {
		params[i] = st.T(p)
	}
	var ret ir.TypeId
	if ji.MethodReturn != "" {
		ret = st.T(ji.MethodReturn)
	}
	return &irtest.MethodRef{
		OwnerType: st.T(ji.MethodOwner),
		Selector:  ji.MethodName,
		Params:    params,
		ReturnTy:  ret,
	}
}

func invokeOpcode(name string) ir.Opcode {
	switch name {
	case "INVOKE_VIRTUAL":
		return ir.OpInvokeVirtual
	case "INVOKE_STATIC":
		return ir.OpInvokeStatic
	case "INVOKE_INTERFACE":
		return ir.OpInvokeInterface
	case "INVOKE_SUPER":
		return ir.OpInvokeSuper
	default:
		return ir.OpInvokeDirect
	}
}
