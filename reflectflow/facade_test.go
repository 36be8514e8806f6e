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
	"testing"

	"github.com/go-redex/reflectflow/internal/irtest"
	"github.com/go-redex/reflectflow/ir"
)

func methodRef(owner ir.TypeId, name string, params []ir.TypeId, ret ir.TypeId) *irtest.MethodRef {
	return &irtest.MethodRef{OwnerType: owner, Selector: name, Params: params, ReturnTy: ret}
}

// TestGetMethodOnClassLiteral is scenario 1: Class c = Foo.class; Method m
// = c.getMethod("bar", ...);
func TestGetMethodOnClassLiteral(t *testing.T) {
	st := irtest.NewSymbolTable()
	fooType := st.T("La/b/Foo;")
	classType := st.ClassType()
	methodType := st.T("Ljava/lang/reflect/Method;")
	owner := st.T("Lt/Caller;")

	nameStr := st.MakeString("bar")

	iConstName := irtest.ConstString(nameStr)
	iMoveName := irtest.MoveResultObject(ir.Reg(0))
	iConstClass := irtest.ConstClass(fooType)
	iMoveClass := irtest.MoveResultObject(ir.Reg(1))
	getMethodRef := methodRef(classType, "getMethod", []ir.TypeId{st.StringType()}, methodType)
	iInvoke := irtest.Invoke(ir.OpInvokeVirtual, ir.Reg(2), true, getMethodRef, ir.Reg(1), ir.Reg(0))
	iMoveMethod := irtest.MoveResultObject(ir.Reg(2))

	cfg := irtest.NewCFGBuilder(0).
		Block(0, iConstName, iMoveName, iConstClass, iMoveClass, iInvoke, iMoveMethod).
		Build()
	m := irtest.NewMethod(owner, "caller", true, nil, st.T("V"), 3, cfg)

	a := New(m, st, Options{})

	c, ok := a.GetAbstractObject(ir.Reg(1), iInvoke)
	if !ok || !c.IsClass() {
		t.Fatalf("expected c register to hold a Class constant at the getMethod instruction, got %v, %v", c, ok)
	}
	typ, hasType := c.Type()
	if !hasType || typ != fooType || c.Source() != Reflection {
		t.Fatalf("expected Class{Foo, Reflection}, got %v", c)
	}

	result, ok := a.GetAbstractObject(ir.RESULT_REG, iMoveMethod)
	if !ok || !result.IsMethod() {
		t.Fatalf("expected RESULT_REG to hold a Method constant after getMethod, got %v, %v", result, ok)
	}
	if result.Owner() != fooType || result.Name().Value() != "bar" {
		t.Fatalf("expected Method{Foo, \"bar\"}, got %v", result)
	}
}

// TestForNameWithConstantString is scenario 2.
func TestForNameWithConstantString(t *testing.T) {
	st := irtest.NewSymbolTable()
	classType := st.ClassType()
	owner := st.T("Lt/Caller;")

	iConstName := irtest.ConstString(st.MakeString("a.b.C"))
	iMoveName := irtest.MoveResultObject(ir.Reg(0))
	forNameRef := methodRef(classType, "forName", []ir.TypeId{st.StringType()}, classType)
	iInvoke := irtest.Invoke(ir.OpInvokeStatic, ir.Reg(1), true, forNameRef, ir.Reg(0))
	iMoveClass := irtest.MoveResultObject(ir.Reg(1))

	cfg := irtest.NewCFGBuilder(0).
		Block(0, iConstName, iMoveName, iInvoke, iMoveClass).
		Build()
	m := irtest.NewMethod(owner, "caller", true, nil, st.T("V"), 2, cfg)

	a := New(m, st, Options{})

	result, ok := a.GetAbstractObject(ir.RESULT_REG, iMoveClass)
	if !ok || !result.IsClass() {
		t.Fatalf("expected RESULT_REG to hold a Class constant after forName, got %v, %v", result, ok)
	}
	typ, hasType := result.Type()
	if !hasType || typ.InternalName() != "La/b/C;" || result.Source() != Reflection {
		t.Fatalf("expected Class{La/b/C;, Reflection}, got %v", result)
	}
}

// TestForNameWithUnknownString is scenario 3: forName called with a
// parameter register, not a constant. No reflection site should be
// recorded, and the parameter register must hold Object{StringType}, not a
// String constant.
func TestForNameWithUnknownString(t *testing.T) {
	st := irtest.NewSymbolTable()
	classType := st.ClassType()
	stringType := st.StringType()
	owner := st.T("Lt/Caller;")

	iLoadParam := irtest.LoadParamObject(ir.Reg(0))
	forNameRef := methodRef(classType, "forName", []ir.TypeId{stringType}, classType)
	iInvoke := irtest.Invoke(ir.OpInvokeStatic, ir.Reg(1), true, forNameRef, ir.Reg(0))
	iMoveClass := irtest.MoveResultObject(ir.Reg(1))

	cfg := irtest.NewCFGBuilder(0).
		Block(0, iLoadParam, iInvoke, iMoveClass).
		Build()
	m := irtest.NewMethod(owner, "caller", true, []ir.TypeId{stringType}, st.T("V"), 2, cfg)

	a := New(m, st, Options{})

	param, ok := a.GetAbstractObject(ir.Reg(0), iInvoke)
	if !ok || !param.IsObject() {
		t.Fatalf("expected parameter register to hold an Object constant, got %v, %v", param, ok)
	}
	typ, hasType := param.Type()
	if !hasType || typ != stringType {
		t.Fatalf("expected Object{StringType}, got %v", param)
	}

	result, ok := a.GetAbstractObject(ir.RESULT_REG, iMoveClass)
	if ok && result.IsReflectionOutput() {
		t.Fatalf("forName on a non-constant argument must not produce a reflection site, got %v", result)
	}

	for _, site := range a.GetReflectionSites() {
		if site.Instruction == iInvoke {
			t.Fatalf("forName on a non-constant argument must not appear as a reflection site")
		}
	}
}

// TestConstructorLookupOwnerIsClassType is scenario 4: the constructor
// owner is always java.lang.Class, the reflection API method's own
// declaring class, regardless of the class literal in the receiver.
func TestConstructorLookupOwnerIsClassType(t *testing.T) {
	st := irtest.NewSymbolTable()
	fooType := st.T("La/b/Foo;")
	classType := st.ClassType()
	owner := st.T("Lt/Caller;")

	iConstClass := irtest.ConstClass(fooType)
	iMoveClass := irtest.MoveResultObject(ir.Reg(0))
	ctorRef := methodRef(classType, "getDeclaredConstructor", nil, st.T("Ljava/lang/reflect/Constructor;"))
	iInvoke := irtest.Invoke(ir.OpInvokeVirtual, ir.Reg(1), true, ctorRef, ir.Reg(0))
	iMoveCtor := irtest.MoveResultObject(ir.Reg(1))

	cfg := irtest.NewCFGBuilder(0).
		Block(0, iConstClass, iMoveClass, iInvoke, iMoveCtor).
		Build()
	m := irtest.NewMethod(owner, "caller", true, nil, st.T("V"), 2, cfg)

	a := New(m, st, Options{})

	result, ok := a.GetAbstractObject(ir.RESULT_REG, iMoveCtor)
	if !ok || !result.IsMethod() {
		t.Fatalf("expected RESULT_REG to hold a Method constant, got %v, %v", result, ok)
	}
	if result.Owner() != classType {
		t.Fatalf("expected constructor owner to be java.lang.Class (%v), got %v", classType, result.Owner())
	}
	if result.Name().Value() != "<init>" {
		t.Fatalf("expected constructor name <init>, got %q", result.Name().Value())
	}
}

// TestMethodGetName is scenario 5: calling getName() on a reflective
// Method descriptor returns its selector as a String constant.
func TestMethodGetName(t *testing.T) {
	st := irtest.NewSymbolTable()
	fooType := st.T("La/b/Foo;")
	classType := st.ClassType()
	methodType := st.T("Ljava/lang/reflect/Method;")
	owner := st.T("Lt/Caller;")

	nameStr := st.MakeString("bar")
	iConstName := irtest.ConstString(nameStr)
	iMoveName := irtest.MoveResultObject(ir.Reg(0))
	iConstClass := irtest.ConstClass(fooType)
	iMoveClass := irtest.MoveResultObject(ir.Reg(1))
	getMethodRef := methodRef(classType, "getMethod", []ir.TypeId{st.StringType()}, methodType)
	iInvokeGetMethod := irtest.Invoke(ir.OpInvokeVirtual, ir.Reg(2), true, getMethodRef, ir.Reg(1), ir.Reg(0))
	iMoveMethod := irtest.MoveResultObject(ir.Reg(2))
	getNameRef := methodRef(methodType, "getName", nil, st.StringType())
	iInvokeGetName := irtest.Invoke(ir.OpInvokeVirtual, ir.Reg(3), true, getNameRef, ir.Reg(2))
	iMoveName2 := irtest.MoveResultObject(ir.Reg(3))

	cfg := irtest.NewCFGBuilder(0).
		Block(0, iConstName, iMoveName, iConstClass, iMoveClass, iInvokeGetMethod, iMoveMethod, iInvokeGetName, iMoveName2).
		Build()
	m := irtest.NewMethod(owner, "caller", true, nil, st.T("V"), 4, cfg)

	a := New(m, st, Options{})

	result, ok := a.GetAbstractObject(ir.RESULT_REG, iMoveName2)
	if !ok || !result.IsString() {
		t.Fatalf("expected RESULT_REG to hold a String constant, got %v, %v", result, ok)
	}
	if result.StringValue().Value() != "bar" {
		t.Fatalf("expected String{\"bar\"}, got %v", result)
	}
}

// TestGetClassOnNewInstance is scenario 6: Object o = new T(); Class c =
// o.getClass();
func TestGetClassOnNewInstance(t *testing.T) {
	st := irtest.NewSymbolTable()
	tType := st.T("La/b/T;")
	objectType := st.T("Ljava/lang/Object;")
	owner := st.T("Lt/Caller;")

	iNew := irtest.NewInstance(tType)
	iMoveNew := irtest.MoveResultObject(ir.Reg(0))
	getClassRef := methodRef(objectType, "getClass", nil, st.ClassType())
	iInvoke := irtest.Invoke(ir.OpInvokeVirtual, ir.Reg(1), true, getClassRef, ir.Reg(0))
	iMoveClass := irtest.MoveResultObject(ir.Reg(1))

	cfg := irtest.NewCFGBuilder(0).
		Block(0, iNew, iMoveNew, iInvoke, iMoveClass).
		Build()
	m := irtest.NewMethod(owner, "caller", true, nil, st.T("V"), 2, cfg)

	a := New(m, st, Options{})

	result, ok := a.GetAbstractObject(ir.RESULT_REG, iMoveClass)
	if !ok || !result.IsClass() {
		t.Fatalf("expected RESULT_REG to hold a Class constant, got %v, %v", result, ok)
	}
	typ, hasType := result.Type()
	if !hasType || typ != tType || result.Source() != Reflection {
		t.Fatalf("expected Class{T, Reflection}, got %v", result)
	}
}

func TestHasFoundReflectionMatchesSiteCount(t *testing.T) {
	st := irtest.NewSymbolTable()
	fooType := st.T("La/b/Foo;")
	owner := st.T("Lt/Caller;")

	iConstClass := irtest.ConstClass(fooType)
	iMoveClass := irtest.MoveResultObject(ir.Reg(0))
	cfg := irtest.NewCFGBuilder(0).Block(0, iConstClass, iMoveClass).Build()
	m := irtest.NewMethod(owner, "caller", true, nil, st.T("V"), 1, cfg)

	a := New(m, st, Options{})
	sites := a.GetReflectionSites()
	if len(sites) == 0 != !a.HasFoundReflection() {
		t.Fatalf("HasFoundReflection must agree with GetReflectionSites' emptiness")
	}
	if !a.HasFoundReflection() {
		t.Fatalf("expected a reflection site from CONST_CLASS")
	}
}

func TestAbstractMethodHasNoSites(t *testing.T) {
	st := irtest.NewSymbolTable()
	owner := st.T("Lt/Caller;")
	m := irtest.NewAbstractMethod(owner, "native", true, nil, st.T("V"))

	a := New(m, st, Options{})
	if a.HasFoundReflection() {
		t.Fatalf("a method with no IR body must report no reflection found")
	}
	if len(a.GetReflectionSites()) != 0 {
		t.Fatalf("expected no reflection sites for a bodyless method")
	}
	if _, ok := a.GetAbstractObject(ir.Reg(0), nil); ok {
		t.Fatalf("GetAbstractObject must return false for a bodyless method")
	}
}

// TestConstClassSingleReflectionSite is the boundary scenario: a one-block
// method containing exactly one CONST_CLASS and nothing else has exactly
// one reflection site, at the instruction that consumes RESULT_REG, and
// none before it.
func TestConstClassSingleReflectionSite(t *testing.T) {
	st := irtest.NewSymbolTable()
	fooType := st.T("La/b/Foo;")
	owner := st.T("Lt/Caller;")

	iConstClass := irtest.ConstClass(fooType)
	iMoveClass := irtest.MoveResultObject(ir.Reg(0))
	cfg := irtest.NewCFGBuilder(0).Block(0, iConstClass, iMoveClass).Build()
	m := irtest.NewMethod(owner, "caller", true, nil, st.T("V"), 1, cfg)

	a := New(m, st, Options{})
	sites := a.GetReflectionSites()
	if len(sites) != 1 {
		t.Fatalf("expected exactly one reflection site, got %d", len(sites))
	}
	if sites[0].Instruction != iMoveClass {
		t.Fatalf("expected the reflection site to be at the move-result consumer")
	}

	if _, ok := a.GetAbstractObject(ir.RESULT_REG, iConstClass); ok {
		t.Fatalf("CONST_CLASS's own entry state must not already show the reflection output")
	}
}

// TestJoinAtMergePointCollapsesToTop covers the boundary case: two
// predecessors binding the same register to distinct Class constants must
// join to top at the merge block.
func TestJoinAtMergePointCollapsesToTop(t *testing.T) {
	st := irtest.NewSymbolTable()
	fooType := st.T("La/b/Foo;")
	barType := st.T("La/b/Bar;")
	owner := st.T("Lt/Caller;")

	iConstFoo := irtest.ConstClass(fooType)
	iMoveFoo := irtest.MoveResultObject(ir.Reg(0))
	iConstBar := irtest.ConstClass(barType)
	iMoveBar := irtest.MoveResultObject(ir.Reg(0))
	iMergeNoop := irtest.MoveObject(ir.Reg(1), ir.Reg(0))

	cfg := irtest.NewCFGBuilder(0).
		Block(0).
		Block(1, iConstFoo, iMoveFoo).
		Block(2, iConstBar, iMoveBar).
		Block(3, iMergeNoop).
		Edge(0, 1).Edge(0, 2).Edge(1, 3).Edge(2, 3).
		Build()
	m := irtest.NewMethod(owner, "caller", true, nil, st.T("V"), 2, cfg)

	a := New(m, st, Options{})

	if _, ok := a.GetAbstractObject(ir.Reg(0), iMergeNoop); ok {
		t.Fatalf("distinct Class constants joined at a merge point must collapse to top")
	}
}

func TestAnalysisIsIdempotentAcrossRuns(t *testing.T) {
	st := irtest.NewSymbolTable()
	fooType := st.T("La/b/Foo;")
	owner := st.T("Lt/Caller;")

	iConstClass := irtest.ConstClass(fooType)
	iMoveClass := irtest.MoveResultObject(ir.Reg(0))
	build := func() *irtest.CFG {
		return irtest.NewCFGBuilder(0).Block(0, iConstClass, iMoveClass).Build()
	}
	m1 := irtest.NewMethod(owner, "caller", true, nil, st.T("V"), 1, build())
	m2 := irtest.NewMethod(owner, "caller", true, nil, st.T("V"), 1, build())

	a1 := New(m1, st, Options{})
	a2 := New(m2, st, Options{})

	r1, ok1 := a1.GetAbstractObject(ir.RESULT_REG, iMoveClass)
	r2, ok2 := a2.GetAbstractObject(ir.RESULT_REG, iMoveClass)
	if ok1 != ok2 || !r1.Equal(r2) {
		t.Fatalf("two runs over structurally identical CFGs must produce equal results, got %v/%v vs %v/%v", r1, ok1, r2, ok2)
	}
}
