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

// apiId names one hard-coded reflection API method reference.
type apiId int

const (
	apiGetClass apiId = iota
	apiForName
	apiGetMethod
	apiGetDeclaredMethod
	apiGetField
	apiGetDeclaredField
	apiGetConstructor
	apiGetDeclaredConstructor
	apiGetConstructors
	apiGetDeclaredConstructors
	apiMethodGetName
	apiFieldGetName
)

// apiSpec is one row of the reflection API table: the owner/selector pair
// the table is keyed by.
type apiSpec struct {
	id       apiId
	ownerObj func(st ir.SymbolTable) ir.TypeId
	name     string
}

// ownerName is the (declaring type, selector) pair a reflectionTable is
// keyed by. Matching on this pair rather than on ir.MethodRef identity
// means the table does not depend on the host interning method references
// identically for every parameter-list variant of the same selector.
type ownerName struct {
	owner ir.TypeId
	name  string
}

// reflectionTable resolves the hardcoded reflection API method references
// once at construction time, by intern lookup through the host symbol
// table, and exposes a lookup from a concrete ir.MethodRef seen in an
// INVOKE_* instruction back to the apiId it matches, if any.
type reflectionTable struct {
	byOwnerName map[ownerName]apiId

	classType  ir.TypeId
	stringType ir.TypeId
}

// isCtorLookup reports whether id is one of the four constructor-lookup
// methods: all four resolve to the same synthesized "<init>" Method{...}
// regardless of which overload was named.
func isCtorLookup(id apiId) bool {
	switch id {
	case apiGetConstructor, apiGetDeclaredConstructor, apiGetConstructors, apiGetDeclaredConstructors:
		return true
	default:
		return false
	}
}

// newReflectionTable resolves every entry in the table against st, plus any
// caller-supplied extensions (see config.ReflectionTableExtension) that
// should be treated as additional aliases for an existing apiId.
func newReflectionTable(st ir.SymbolTable, extensions []ReflectionAlias) *reflectionTable {
	classType := st.ClassType()
	objectType := st.MakeType("Ljava/lang/Object;")
	methodType := st.MakeType("Ljava/lang/reflect/Method;")
	fieldType := st.MakeType("Ljava/lang/reflect/Field;")

	specs := []apiSpec{
		{apiGetClass, func(ir.SymbolTable) ir.TypeId { return objectType }, "getClass"},
		{apiForName, func(ir.SymbolTable) ir.TypeId { return classType }, "forName"},
		{apiGetMethod, func(ir.SymbolTable) ir.TypeId { return classType }, "getMethod"},
		{apiGetDeclaredMethod, func(ir.SymbolTable) ir.TypeId { return classType }, "getDeclaredMethod"},
		{apiGetField, func(ir.SymbolTable) ir.TypeId { return classType }, "getField"},
		{apiGetDeclaredField, func(ir.SymbolTable) ir.TypeId { return classType }, "getDeclaredField"},
		{apiGetConstructor, func(ir.SymbolTable) ir.TypeId { return classType }, "getConstructor"},
		{apiGetDeclaredConstructor, func(ir.SymbolTable) ir.TypeId { return classType }, "getDeclaredConstructor"},
		{apiGetConstructors, func(ir.SymbolTable) ir.TypeId { return classType }, "getConstructors"},
		{apiGetDeclaredConstructors, func(ir.SymbolTable) ir.TypeId { return classType }, "getDeclaredConstructors"},
		{apiMethodGetName, func(ir.SymbolTable) ir.TypeId { return methodType }, "getName"},
		{apiFieldGetName, func(ir.SymbolTable) ir.TypeId { return fieldType }, "getName"},
	}

	// Table rows are keyed by owner+name only: none of the reflection API
	// selectors this analyzer cares about are overloaded on parameter types
	// in a way that would change how an INVOKE_* on them should be
	// interpreted.
	byOwnerName := make(map[ownerName]apiId, len(specs)+len(extensions))
	for _, s := range specs {
		owner := s.ownerObj(st)
		byOwnerName[ownerName{owner, s.name}] = s.id
	}
	for _, ext := range extensions {
		if target, ok := aliasTarget(ext.AliasOf); ok {
			byOwnerName[ownerName{ext.Owner, ext.Selector}] = target
		}
	}

	return &reflectionTable{byOwnerName: byOwnerName, classType: classType, stringType: st.StringType()}
}

// lookup returns the apiId a concrete method reference resolves to, if it
// is one of the hard-coded (or extended) reflection API entries.
func (t *reflectionTable) lookup(ref ir.MethodRef) (apiId, bool) {
	id, ok := t.byOwnerName[ownerName{ref.Owner(), ref.Name()}]
	return id, ok
}

// ReflectionAlias lets a caller (via config) extend the hard-coded table
// with an additional owner/selector pair that should be treated as one of
// the existing reflection API entries, e.g. an internal wrapper that just
// forwards to Class.forName.
type ReflectionAlias struct {
	Owner    ir.TypeId
	Selector string
	// AliasOf names which table entry this alias behaves as: one of
	// "getClass", "forName", "getMethod", "getDeclaredMethod", "getField",
	// "getDeclaredField", "getConstructor", "getDeclaredConstructor",
	// "getConstructors", "getDeclaredConstructors", "methodGetName",
	// "fieldGetName".
	AliasOf string
}

func aliasTarget(name string) (apiId, bool) {
	switch name {
	case "getClass":
		return apiGetClass, true
	case "forName":
		return apiForName, true
	case "getMethod":
		return apiGetMethod, true
	case "getDeclaredMethod":
		return apiGetDeclaredMethod, true
	case "getField":
		return apiGetField, true
	case "getDeclaredField":
		return apiGetDeclaredField, true
	case "getConstructor":
		return apiGetConstructor, true
	case "getDeclaredConstructor":
		return apiGetDeclaredConstructor, true
	case "getConstructors":
		return apiGetConstructors, true
	case "getDeclaredConstructors":
		return apiGetDeclaredConstructors, true
	case "methodGetName":
		return apiMethodGetName, true
	case "fieldGetName":
		return apiFieldGetName, true
	default:
		return 0, false
	}
}
