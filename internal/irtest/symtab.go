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

// Package irtest is a minimal, in-memory implementation of package ir,
// built only so package reflectflow's tests can construct fixture methods
// without a real dex/class-file frontend.
package irtest

import (
	"fmt"
	"strings"

	"github.com/go-redex/reflectflow/ir"
)

// Type is the irtest TypeId: interned by internal name, so two Types for
// the same internal name are the same pointer and compare equal.
type Type struct{ name string }

func (t *Type) InternalName() string { return t.name }

// String is the irtest StringId: interned by literal text.
type String struct{ value string }

func (s *String) Value() string { return s.value }

// MethodRef is the irtest MethodRef: not interned, since reflectflow looks
// up the reflection table by (owner, name), never by MethodRef identity.
type MethodRef struct {
	OwnerType  ir.TypeId
	Selector   string
	Params     []ir.TypeId
	ReturnTy   ir.TypeId
}

func (m *MethodRef) Owner() ir.TypeId       { return m.OwnerType }
func (m *MethodRef) Name() string           { return m.Selector }
func (m *MethodRef) ParamTypes() []ir.TypeId { return m.Params }
func (m *MethodRef) ReturnType() ir.TypeId  { return m.ReturnTy }

// SymbolTable is the irtest ir.SymbolTable.
type SymbolTable struct {
	types      map[string]*Type
	strs       map[string]*String
	classType  *Type
	stringType *Type
}

// NewSymbolTable returns a fresh symbol table with java.lang.Class and
// java.lang.String pre-interned, matching every real host's bootstrap
// types.
func NewSymbolTable() *SymbolTable {
	st := &SymbolTable{
		types: make(map[string]*Type),
		strs:  make(map[string]*String),
	}
	st.classType = st.intern("Ljava/lang/Class;")
	st.stringType = st.intern("Ljava/lang/String;")
	return st
}

func (st *SymbolTable) intern(name string) *Type {
	if t, ok := st.types[name]; ok {
		return t
	}
	t := &Type{name: name}
	st.types[name] = t
	return t
}

// T interns and returns the type for internalName, a convenience for
// tests that want a *Type instead of the ir.TypeId interface.
func (st *SymbolTable) T(internalName string) *Type { return st.intern(internalName) }

func (st *SymbolTable) MakeType(internalName string) ir.TypeId { return st.intern(internalName) }

func (st *SymbolTable) MakeString(literal string) ir.StringId {
	if s, ok := st.strs[literal]; ok {
		return s
	}
	s := &String{value: literal}
	st.strs[literal] = s
	return s
}

func (st *SymbolTable) GetString(literal string) (ir.StringId, bool) {
	s, ok := st.strs[literal]
	return s, ok
}

func (st *SymbolTable) MakeMethod(owner ir.TypeId, name string, params []ir.TypeId, ret ir.TypeId) ir.MethodRef {
	return &MethodRef{OwnerType: owner, Selector: name, Params: params, ReturnTy: ret}
}

func (st *SymbolTable) IsVoid(t ir.TypeId) bool { return t != nil && t.InternalName() == "V" }

func (st *SymbolTable) IsObject(t ir.TypeId) bool {
	if t == nil {
		return false
	}
	n := t.InternalName()
	return strings.HasPrefix(n, "L") || strings.HasPrefix(n, "[")
}

func (st *SymbolTable) IsArray(t ir.TypeId) bool {
	return t != nil && strings.HasPrefix(t.InternalName(), "[")
}

func (st *SymbolTable) ArrayComponentType(t ir.TypeId) ir.TypeId {
	n := t.InternalName()
	if !strings.HasPrefix(n, "[") {
		panic(fmt.Sprintf("irtest: ArrayComponentType called on non-array type %q", n))
	}
	return st.intern(strings.TrimPrefix(n, "["))
}

func (st *SymbolTable) ClassType() ir.TypeId  { return st.classType }
func (st *SymbolTable) StringType() ir.TypeId { return st.stringType }
