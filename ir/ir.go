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

// Package ir declares the external collaborators the reflectflow analyzer
// consumes: a host symbol table, a method handle, and a Dalvik-style
// control-flow graph of opcodes and operands. Everything in this package is
// an interface or a plain identifier type; construction of real IR (from a
// dex file, say) is entirely the host's responsibility.
package ir

// TypeId is the canonical, interned identity of a class, primitive, or array
// type. Equality is identity, not structural: two TypeIds compare equal iff
// the host's symbol table handed out the same value for the same type.
type TypeId interface {
	// InternalName returns the type's descriptor in internal form, e.g.
	// "La/b/C;" for a class, "I" for int, "[La/b/C;" for an array of C.
	InternalName() string
}

// StringId is the canonical identity of an interned string literal.
type StringId interface {
	// Value returns the literal text this id was interned from.
	Value() string
}

// MethodRef is the canonical identity of a fully-qualified method signature.
type MethodRef interface {
	// Owner returns the declaring class of the method.
	Owner() TypeId
	// Name returns the method's selector, e.g. "getMethod" or "<init>".
	Name() string
	// ParamTypes returns the method's ordered parameter types.
	ParamTypes() []TypeId
	// ReturnType returns the method's return type.
	ReturnType() TypeId
}

// Reg is a register identifier: a nonnegative integer, except for the
// distinguished sentinel RESULT_REG.
type Reg int

// RESULT_REG is the pseudo-register holding the outcome of the most recent
// call or array-creation instruction, consumed by a subsequent move-result
// pseudo-instruction.
const RESULT_REG Reg = -1

// Opcode enumerates the instruction kinds the transfer function matches on.
// Only the opcodes relevant to reflection tracking are distinguished; any
// other concrete opcode a host IR might have is folded by the host into
// OpOther before reaching the analyzer.
type Opcode int

const (
	OpOther Opcode = iota
	OpLoadParam
	OpLoadParamObject
	OpLoadParamWide
	OpMoveObject
	OpMoveResultObject
	OpMoveResultPseudoObject
	OpConstString
	OpConstClass
	OpCheckCast
	OpAGetObject
	OpIGetObject
	OpSGetObject
	OpNewInstance
	OpNewArray
	OpFilledNewArray
	OpInvokeVirtual
	OpInvokeStatic
	OpInvokeInterface
	OpInvokeSuper
	OpInvokeDirect
)

var opcodeNames = map[Opcode]string{
	OpOther:                  "OTHER",
	OpLoadParam:              "LOAD_PARAM",
	OpLoadParamObject:        "LOAD_PARAM_OBJECT",
	OpLoadParamWide:          "LOAD_PARAM_WIDE",
	OpMoveObject:             "MOVE_OBJECT",
	OpMoveResultObject:       "MOVE_RESULT_OBJECT",
	OpMoveResultPseudoObject: "MOVE_RESULT_PSEUDO_OBJECT",
	OpConstString:            "CONST_STRING",
	OpConstClass:             "CONST_CLASS",
	OpCheckCast:              "CHECK_CAST",
	OpAGetObject:             "AGET_OBJECT",
	OpIGetObject:             "IGET_OBJECT",
	OpSGetObject:             "SGET_OBJECT",
	OpNewInstance:            "NEW_INSTANCE",
	OpNewArray:               "NEW_ARRAY",
	OpFilledNewArray:         "FILLED_NEW_ARRAY",
	OpInvokeVirtual:          "INVOKE_VIRTUAL",
	OpInvokeStatic:           "INVOKE_STATIC",
	OpInvokeInterface:        "INVOKE_INTERFACE",
	OpInvokeSuper:            "INVOKE_SUPER",
	OpInvokeDirect:           "INVOKE_DIRECT",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "OPCODE?"
}

// Instruction is a single opcode plus whatever operands the transfer
// function needs to interpret it. Not every accessor is meaningful for
// every opcode; see the table in package reflectflow's transfer function
// for which accessors are read per Opcode.
type Instruction interface {
	Op() Opcode

	// Dest returns the destination register and whether the instruction
	// has one at all (move-result-consuming instructions do not).
	Dest() (Reg, bool)
	// DestWide reports whether Dest occupies a register pair.
	DestWide() bool

	// Src returns the i'th source register operand. Callers must only
	// request indices valid for the instruction's opcode.
	Src(i int) Reg
	// NumSrc returns the number of source register operands.
	NumSrc() int

	// StringOperand returns the interned string operand of CONST_STRING,
	// or the false form if the opcode carries no string operand.
	StringOperand() (StringId, bool)
	// TypeOperand returns the interned type operand of CONST_CLASS,
	// CHECK_CAST, NEW_INSTANCE, NEW_ARRAY, and FILLED_NEW_ARRAY.
	TypeOperand() (TypeId, bool)
	// FieldOperand returns the declaring-type/name pair of an IGET_OBJECT
	// or SGET_OBJECT instruction's target field.
	FieldOperand() (owner TypeId, fieldType TypeId, ok bool)
	// MethodOperand returns the callee of an INVOKE_* instruction.
	MethodOperand() (MethodRef, bool)

	// HasMoveResult reports whether this instruction's result is consumed
	// by a subsequent move-result pseudo-instruction, in which case the
	// transfer function must write through RESULT_REG instead of Dest().
	HasMoveResult() bool
}

// BlockID identifies a basic block within one method's CFG.
type BlockID int

// Block is a basic block: an ordered instruction sequence plus edges to its
// control-flow successors and predecessors.
type Block interface {
	ID() BlockID
	Instructions() []Instruction
	Successors() []BlockID
	Predecessors() []BlockID
}

// CFG is a method's control-flow graph.
type CFG interface {
	Entry() BlockID
	Block(id BlockID) Block
	// Blocks returns every block in the CFG, in an arbitrary but stable
	// order (stable across repeated calls on the same CFG value).
	Blocks() []Block
}

// Method is a handle to a single method: its signature and, if available,
// its IR body.
type Method interface {
	Owner() TypeId
	IsStatic() bool
	ParamTypes() []TypeId
	ReturnType() TypeId
	// NumRegisters returns the method's declared register count (the
	// Dalvik method header's registers_size): queries over "every
	// register" range over [0, NumRegisters()).
	NumRegisters() int
	// CFG returns the method's control-flow graph and true, or the false
	// form if the method has no IR body (abstract, native, or otherwise
	// unavailable to the host).
	CFG() (CFG, bool)
	// String returns a human-readable name, used only for logging/tracing.
	String() string
}

// SymbolTable is the shared host collaborator that interns types, strings,
// and method references. Implementations must be safe for concurrent
// lookup and insert, since independent analyzer instances may run in
// parallel (see package reflectflow's concurrency model).
type SymbolTable interface {
	MakeType(internalName string) TypeId
	MakeString(literal string) StringId
	GetString(literal string) (StringId, bool)
	MakeMethod(owner TypeId, name string, params []TypeId, ret TypeId) MethodRef

	IsVoid(t TypeId) bool
	IsObject(t TypeId) bool
	IsArray(t TypeId) bool
	ArrayComponentType(t TypeId) TypeId

	ClassType() TypeId
	StringType() TypeId
}
