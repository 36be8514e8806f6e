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
	"github.com/pkg/errors"

	"github.com/go-redex/reflectflow/ir"
)

// irError is a fatal programmer-error in the IR: a signature or opcode
// precondition was violated and the analysis cannot produce a sound
// result. Per the error handling design, this is never threaded through
// the public API as a recoverable error value — it is panicked, carrying
// a wrapped stack trace care of github.com/pkg/errors, and only a
// deliberately malformed test fixture should ever trigger one.
type irError struct{ cause error }

func (e irError) Error() string { return e.cause.Error() }

func malformed(format string, args ...interface{}) {
	panic(irError{errors.Errorf(format, args...)})
}

// transferer applies the per-opcode transfer function. It holds the
// resolved reflection table and symbol table so that transfer can consult
// both without threading them through every call.
type transferer struct {
	st    ir.SymbolTable
	table *reflectionTable
	trace func(format string, args ...interface{})
}

// step applies insn's transfer function to env, returning the updated
// environment. env is never mutated in place; step always returns a value
// that may share structure with env but is safe to hold onto independently.
func (t *transferer) step(insn ir.Instruction, env Environment) Environment {
	if t.trace != nil {
		t.trace("transfer: op=%v entry=%v", insn.Op(), env)
	}
	switch insn.Op() {
	case ir.OpLoadParam, ir.OpLoadParamObject, ir.OpLoadParamWide:
		// Handled entirely by entry-state construction; no-op here.
		return env

	case ir.OpMoveObject:
		dest, ok := insn.Dest()
		if !ok {
			malformed("MOVE_OBJECT instruction has no destination register")
		}
		return env.Set(dest, env.Get(insn.Src(0)))

	case ir.OpMoveResultObject, ir.OpMoveResultPseudoObject:
		dest, ok := insn.Dest()
		if !ok {
			malformed("MOVE_RESULT_OBJECT instruction has no destination register")
		}
		return env.Set(dest, env.Get(ir.RESULT_REG))

	case ir.OpConstString:
		s, ok := insn.StringOperand()
		if !ok {
			malformed("CONST_STRING instruction has no string operand")
		}
		return env.Set(ir.RESULT_REG, Of(String(s)))

	case ir.OpConstClass:
		typ, ok := insn.TypeOperand()
		if !ok {
			malformed("CONST_CLASS instruction has no type operand")
		}
		return env.Set(ir.RESULT_REG, Of(Class(typ, Reflection)))

	case ir.OpCheckCast:
		return env.Set(ir.RESULT_REG, env.Get(insn.Src(0)))

	case ir.OpAGetObject:
		src := env.Get(insn.Src(0))
		if c, ok := src.Constant(); ok && c.IsObject() {
			if elemType, isArray := t.arrayElementType(c); isArray {
				return t.updateNonStringInput(insn, env, elemType)
			}
		}
		return t.defaultClobber(insn, env)

	case ir.OpIGetObject, ir.OpSGetObject:
		_, fieldType, ok := insn.FieldOperand()
		if !ok {
			malformed("%s instruction has no field operand", opName(insn.Op()))
		}
		return t.updateNonStringInput(insn, env, fieldType)

	case ir.OpNewInstance, ir.OpNewArray, ir.OpFilledNewArray:
		typ, ok := insn.TypeOperand()
		if !ok {
			malformed("%s instruction has no type operand", opName(insn.Op()))
		}
		return env.Set(ir.RESULT_REG, Of(Object(typ)))

	case ir.OpInvokeVirtual:
		return t.invokeVirtual(insn, env)

	case ir.OpInvokeStatic:
		return t.invokeStatic(insn, env)

	case ir.OpInvokeInterface, ir.OpInvokeSuper, ir.OpInvokeDirect:
		return t.updateReturnObject(insn, env)

	default:
		return t.defaultClobber(insn, env)
	}
}

// arrayElementType returns the component type of c's static type if it is
// an array type, per the symbol table's predicate.
func (t *transferer) arrayElementType(c AbstractObject) (ir.TypeId, bool) {
	typ, ok := c.Type()
	if !ok || !t.st.IsArray(typ) {
		return nil, false
	}
	return t.st.ArrayComponentType(typ), true
}

// updateNonStringInput handles a reflection API call whose input could not
// be resolved to a constant string: the effective destination is RESULT_REG
// if insn's result is consumed by a move-result pseudo, else insn's own
// destination register.
func (t *transferer) updateNonStringInput(insn ir.Instruction, env Environment, typ ir.TypeId) Environment {
	dest := t.effectiveDest(insn)
	if typ != nil && t.st.ClassType() == typ {
		return env.Set(dest, Of(Class(nil, NonReflection)))
	}
	return env.Set(dest, Of(Object(typ)))
}

// updateReturnObject implements update_return_object: a void or primitive
// return type is a no-op, otherwise it delegates to updateNonStringInput.
func (t *transferer) updateReturnObject(insn ir.Instruction, env Environment) Environment {
	callee, ok := insn.MethodOperand()
	if !ok {
		return t.defaultClobber(insn, env)
	}
	ret := callee.ReturnType()
	if ret == nil || t.st.IsVoid(ret) || !t.st.IsObject(ret) {
		return env
	}
	return t.updateNonStringInput(insn, env, ret)
}

// effectiveDest returns RESULT_REG when insn's result is consumed by a
// subsequent move-result pseudo, else insn's own destination register.
func (t *transferer) effectiveDest(insn ir.Instruction) ir.Reg {
	if insn.HasMoveResult() {
		return ir.RESULT_REG
	}
	dest, ok := insn.Dest()
	if !ok {
		malformed("instruction has neither a destination register nor a move-result")
	}
	return dest
}

// defaultClobber sets the instruction's destination (and dest+1 if wide)
// to ⊤, or RESULT_REG to ⊤ if the instruction produces a move-result.
// This is always sound: ⊤ is the top of the lattice.
func (t *transferer) defaultClobber(insn ir.Instruction, env Environment) Environment {
	if insn.HasMoveResult() {
		return env.Set(ir.RESULT_REG, Top())
	}
	dest, ok := insn.Dest()
	if !ok {
		return env
	}
	env = env.Set(dest, Top())
	if insn.DestWide() {
		env = env.Set(dest+1, Top())
	}
	return env
}

// invokeVirtual implements the INVOKE_VIRTUAL case.
func (t *transferer) invokeVirtual(insn ir.Instruction, env Environment) Environment {
	if insn.NumSrc() == 0 {
		malformed("INVOKE_VIRTUAL instruction has no receiver argument")
	}
	recvDom := env.Get(insn.Src(0))
	recv, ok := recvDom.Constant()
	if !ok {
		return t.updateReturnObject(insn, env)
	}

	callee, hasCallee := insn.MethodOperand()
	if !hasCallee {
		return t.updateReturnObject(insn, env)
	}
	api, isApi := t.table.lookup(callee)

	switch {
	case recv.IsObject() && isApi && api == apiGetClass:
		typ, hasType := recv.Type()
		if !hasType {
			return t.defaultClobber(insn, env)
		}
		return env.Set(ir.RESULT_REG, Of(Class(typ, Reflection)))

	case recv.IsString() && isApi && api == apiGetClass:
		return env.Set(ir.RESULT_REG, Of(Class(t.st.StringType(), Reflection)))

	case recv.IsClass() && isApi:
		return t.invokeOnClassLiteral(insn, env, callee, api)

	case (recv.IsField() || recv.IsMethod()) && isApi:
		wantsName := (recv.IsMethod() && api == apiMethodGetName) || (recv.IsField() && api == apiFieldGetName)
		if wantsName {
			return env.Set(ir.RESULT_REG, Of(String(recv.Name())))
		}
		return t.updateReturnObject(insn, env)

	default:
		return t.updateReturnObject(insn, env)
	}
}

// invokeOnClassLiteral handles the Class{...}-receiver sub-cases of
// INVOKE_VIRTUAL: getMethod/getDeclaredMethod, the constructor-lookup set,
// and getField/getDeclaredField.
func (t *transferer) invokeOnClassLiteral(insn ir.Instruction, env Environment, callee ir.MethodRef, api apiId) Environment {
	owner := callee.Owner()

	switch {
	case api == apiGetMethod || api == apiGetDeclaredMethod:
		if insn.NumSrc() < 2 {
			return t.updateReturnObject(insn, env)
		}
		nameDom := env.Get(insn.Src(1))
		if n, ok := nameDom.Constant(); ok && n.IsString() {
			return env.Set(ir.RESULT_REG, Of(Method(owner, n.StringValue())))
		}
		return t.updateReturnObject(insn, env)

	case isCtorLookup(api):
		// Per the constructor-lookup resolution: owner is the
		// reflection API method's own declaring class (java.lang.Class),
		// not the class literal in the receiver register, and the name
		// is unconditionally the interned "<init>" literal regardless
		// of which overload (with or without parameter types) was
		// called.
		ctorName := t.st.MakeString("<init>")
		return env.Set(ir.RESULT_REG, Of(Method(owner, ctorName)))

	case api == apiGetField || api == apiGetDeclaredField:
		if insn.NumSrc() < 2 {
			return t.updateReturnObject(insn, env)
		}
		nameDom := env.Get(insn.Src(1))
		if n, ok := nameDom.Constant(); ok && n.IsString() {
			return env.Set(ir.RESULT_REG, Of(Field(owner, n.StringValue())))
		}
		return t.updateReturnObject(insn, env)

	default:
		return t.updateReturnObject(insn, env)
	}
}

// invokeStatic implements the INVOKE_STATIC case: only
// Class.forName is handled symbolically, everything else falls through to
// update_return_object.
func (t *transferer) invokeStatic(insn ir.Instruction, env Environment) Environment {
	callee, ok := insn.MethodOperand()
	if !ok {
		return t.defaultClobber(insn, env)
	}
	api, isApi := t.table.lookup(callee)
	if !isApi || api != apiForName {
		return t.updateReturnObject(insn, env)
	}
	if insn.NumSrc() == 0 {
		return t.updateReturnObject(insn, env)
	}
	argDom := env.Get(insn.Src(0))
	arg, ok := argDom.Constant()
	if !ok || !arg.IsString() {
		return t.updateReturnObject(insn, env)
	}
	internal := externalToInternalName(arg.StringValue().Value())
	typ := t.st.MakeType(internal)
	return env.Set(ir.RESULT_REG, Of(Class(typ, Reflection)))
}

func opName(op ir.Opcode) string {
	switch op {
	case ir.OpIGetObject:
		return "IGET_OBJECT"
	case ir.OpSGetObject:
		return "SGET_OBJECT"
	case ir.OpNewInstance:
		return "NEW_INSTANCE"
	case ir.OpNewArray:
		return "NEW_ARRAY"
	case ir.OpFilledNewArray:
		return "FILLED_NEW_ARRAY"
	default:
		return "<opcode>"
	}
}
