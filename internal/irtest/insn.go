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

// Insn is a general-purpose ir.Instruction fixture: every field is exposed
// so a test builds exactly the operands its opcode cares about and leaves
// the rest at zero value.
type Insn struct {
	op            ir.Opcode
	dest          ir.Reg
	hasDest       bool
	destWide      bool
	src           []ir.Reg
	strOperand    ir.StringId
	hasStrOperand bool
	typeOperand   ir.TypeId
	hasTypeOperand bool
	fieldOwner    ir.TypeId
	fieldType     ir.TypeId
	hasField      bool
	method        ir.MethodRef
	hasMethod     bool
	hasMoveResult bool
}

func (i *Insn) Op() ir.Opcode      { return i.op }
func (i *Insn) Dest() (ir.Reg, bool) { return i.dest, i.hasDest }
func (i *Insn) DestWide() bool     { return i.destWide }
func (i *Insn) Src(n int) ir.Reg   { return i.src[n] }
func (i *Insn) NumSrc() int        { return len(i.src) }

func (i *Insn) StringOperand() (ir.StringId, bool) { return i.strOperand, i.hasStrOperand }
func (i *Insn) TypeOperand() (ir.TypeId, bool)     { return i.typeOperand, i.hasTypeOperand }
func (i *Insn) FieldOperand() (ir.TypeId, ir.TypeId, bool) {
	return i.fieldOwner, i.fieldType, i.hasField
}
func (i *Insn) MethodOperand() (ir.MethodRef, bool) { return i.method, i.hasMethod }
func (i *Insn) HasMoveResult() bool                 { return i.hasMoveResult }

// LoadParam builds a LOAD_PARAM (primitive/wide-irrelevant) pseudo-insn.
func LoadParam(dest ir.Reg) *Insn {
	return &Insn{op: ir.OpLoadParam, dest: dest, hasDest: true}
}

// LoadParamObject builds a LOAD_PARAM_OBJECT pseudo-insn.
func LoadParamObject(dest ir.Reg) *Insn {
	return &Insn{op: ir.OpLoadParamObject, dest: dest, hasDest: true}
}

// LoadParamWide builds a LOAD_PARAM_WIDE pseudo-insn.
func LoadParamWide(dest ir.Reg) *Insn {
	return &Insn{op: ir.OpLoadParamWide, dest: dest, hasDest: true, destWide: true}
}

// MoveObject builds a MOVE_OBJECT dest <- src.
func MoveObject(dest, src ir.Reg) *Insn {
	return &Insn{op: ir.OpMoveObject, dest: dest, hasDest: true, src: []ir.Reg{src}}
}

// MoveResultObject builds a MOVE_RESULT_OBJECT dest <- RESULT_REG.
func MoveResultObject(dest ir.Reg) *Insn {
	return &Insn{op: ir.OpMoveResultObject, dest: dest, hasDest: true}
}

// MoveResultPseudoObject builds the invoke-adjacent pseudo move-result.
func MoveResultPseudoObject(dest ir.Reg) *Insn {
	return &Insn{op: ir.OpMoveResultPseudoObject, dest: dest, hasDest: true}
}

// ConstString builds a CONST_STRING RESULT_REG <- s.
func ConstString(s ir.StringId) *Insn {
	return &Insn{op: ir.OpConstString, strOperand: s, hasStrOperand: true}
}

// ConstClass builds a CONST_CLASS RESULT_REG <- t.
func ConstClass(t ir.TypeId) *Insn {
	return &Insn{op: ir.OpConstClass, typeOperand: t, hasTypeOperand: true}
}

// CheckCast builds a CHECK_CAST RESULT_REG <- src (cast target type is
// irrelevant to the transfer function, so it is not modeled).
func CheckCast(src ir.Reg) *Insn {
	return &Insn{op: ir.OpCheckCast, src: []ir.Reg{src}}
}

// AGetObject builds an AGET_OBJECT dest/RESULT <- arr[idx].
func AGetObject(dest ir.Reg, hasMoveResult bool, arr, idx ir.Reg) *Insn {
	return &Insn{op: ir.OpAGetObject, dest: dest, hasDest: !hasMoveResult, hasMoveResult: hasMoveResult, src: []ir.Reg{arr, idx}}
}

// IGetObject builds an IGET_OBJECT reading a field of the given owner/type.
func IGetObject(dest ir.Reg, hasMoveResult bool, recv ir.Reg, owner, fieldType ir.TypeId) *Insn {
	return &Insn{op: ir.OpIGetObject, dest: dest, hasDest: !hasMoveResult, hasMoveResult: hasMoveResult,
		src: []ir.Reg{recv}, fieldOwner: owner, fieldType: fieldType, hasField: true}
}

// SGetObject builds an SGET_OBJECT reading a static field.
func SGetObject(dest ir.Reg, hasMoveResult bool, owner, fieldType ir.TypeId) *Insn {
	return &Insn{op: ir.OpSGetObject, dest: dest, hasDest: !hasMoveResult, hasMoveResult: hasMoveResult,
		fieldOwner: owner, fieldType: fieldType, hasField: true}
}

// NewInstance builds a NEW_INSTANCE RESULT_REG <- new t.
func NewInstance(t ir.TypeId) *Insn {
	return &Insn{op: ir.OpNewInstance, typeOperand: t, hasTypeOperand: true}
}

// NewArray builds a NEW_ARRAY RESULT_REG <- new t[].
func NewArray(t ir.TypeId) *Insn {
	return &Insn{op: ir.OpNewArray, typeOperand: t, hasTypeOperand: true}
}

// FilledNewArray builds a FILLED_NEW_ARRAY RESULT_REG <- {...} of type t.
func FilledNewArray(t ir.TypeId) *Insn {
	return &Insn{op: ir.OpFilledNewArray, typeOperand: t, hasTypeOperand: true}
}

// Invoke builds an INVOKE_* of the given kind. dest/hasMoveResult follow
// the same convention as AGetObject: if hasMoveResult, the invoke's result
// is consumed via RESULT_REG by a following move-result pseudo-insn,
// otherwise it writes directly to dest (used for invokes without a
// result-consuming pseudo-insn, which real IR never actually emits for a
// non-void call, but is a useful degenerate test fixture).
func Invoke(op ir.Opcode, dest ir.Reg, hasMoveResult bool, callee ir.MethodRef, args ...ir.Reg) *Insn {
	return &Insn{op: op, dest: dest, hasDest: !hasMoveResult, hasMoveResult: hasMoveResult,
		method: callee, hasMethod: true, src: args}
}
