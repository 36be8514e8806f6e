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

// Package reflectflow implements an intraprocedural dataflow analysis that
// tracks reflective use of classes, methods, and fields through a single
// method's control-flow graph.
package reflectflow

import (
	"fmt"

	"github.com/go-redex/reflectflow/ir"
)

// ClassSource tags how a Class abstract object entered its register.
type ClassSource int

const (
	// NonReflection means the class literal was synthesized without
	// observing a reflective call (e.g. a parameter statically typed
	// java.lang.Class).
	NonReflection ClassSource = iota
	// Reflection means the class literal is the direct result of a
	// reflection API call (CONST_CLASS, getClass, or forName).
	Reflection
)

func (s ClassSource) String() string {
	if s == Reflection {
		return "reflection"
	}
	return "non-reflection"
}

// objectKind discriminates the AbstractObject variants.
type objectKind int

const (
	kindObject objectKind = iota
	kindString
	kindClass
	kindField
	kindMethod
)

// AbstractObject is a tagged-union symbolic summary of a runtime value:
// a plain object of some static type, an interned string constant, a class
// literal, or a reflective field/method descriptor. It is a small value
// type, cheap to copy and compare.
type AbstractObject struct {
	kind objectKind

	// objType backs Object{type}, and is the owner for Field/Method.
	objType ir.TypeId
	// hasType reports whether objType is meaningful; Class may carry no
	// type (an unresolved class literal).
	hasType bool

	// str backs String{value} and the name of Field/Method.
	str ir.StringId

	// classSource backs Class.source. Never meaningful outside kindClass.
	classSource ClassSource
}

// Object constructs the "instance of static type t" abstract object.
func Object(t ir.TypeId) AbstractObject {
	return AbstractObject{kind: kindObject, objType: t, hasType: true}
}

// String constructs a specific interned string constant.
func String(s ir.StringId) AbstractObject {
	return AbstractObject{kind: kindString, str: s}
}

// Class constructs a class literal. t may be nil to represent an unresolved
// class (type present == false); source must be Reflection or
// NonReflection, never anything else, per the invariant that a stored
// environment never holds a class with an inapplicable source.
func Class(t ir.TypeId, source ClassSource) AbstractObject {
	return AbstractObject{kind: kindClass, objType: t, hasType: t != nil, classSource: source}
}

// Field constructs a reflective field descriptor.
func Field(owner ir.TypeId, name ir.StringId) AbstractObject {
	return AbstractObject{kind: kindField, objType: owner, hasType: true, str: name}
}

// Method constructs a reflective method/constructor descriptor.
func Method(owner ir.TypeId, name ir.StringId) AbstractObject {
	return AbstractObject{kind: kindMethod, objType: owner, hasType: true, str: name}
}

// IsObject, IsString, IsClass, IsField, IsMethod report the variant tag.
func (o AbstractObject) IsObject() bool { return o.kind == kindObject }
func (o AbstractObject) IsString() bool { return o.kind == kindString }
func (o AbstractObject) IsClass() bool  { return o.kind == kindClass }
func (o AbstractObject) IsField() bool  { return o.kind == kindField }
func (o AbstractObject) IsMethod() bool { return o.kind == kindMethod }

// Type returns the static type of an Object, or the type of a Class literal
// (ok is false if the Class has no resolved type). Panics if called on a
// variant with no type payload (String).
func (o AbstractObject) Type() (ir.TypeId, bool) {
	if o.kind != kindObject && o.kind != kindClass {
		panic(fmt.Sprintf("reflectflow: Type() called on %s", o.kind))
	}
	return o.objType, o.hasType
}

// Source returns the ClassSource of a Class abstract object. Panics if o is
// not a Class.
func (o AbstractObject) Source() ClassSource {
	if o.kind != kindClass {
		panic("reflectflow: Source() called on non-Class abstract object")
	}
	return o.classSource
}

// StringValue returns the interned string of a String abstract object.
// Panics if o is not a String.
func (o AbstractObject) StringValue() ir.StringId {
	if o.kind != kindString {
		panic("reflectflow: StringValue() called on non-String abstract object")
	}
	return o.str
}

// Owner returns the declaring type of a Field or Method descriptor.
// Panics on any other variant.
func (o AbstractObject) Owner() ir.TypeId {
	if o.kind != kindField && o.kind != kindMethod {
		panic("reflectflow: Owner() called on non-Field/Method abstract object")
	}
	return o.objType
}

// Name returns the selector of a Field or Method descriptor. Panics on any
// other variant.
func (o AbstractObject) Name() ir.StringId {
	if o.kind != kindField && o.kind != kindMethod {
		panic("reflectflow: Name() called on non-Field/Method abstract object")
	}
	return o.str
}

// IsReflectionOutput reports whether o is one of the variants the query
// layer treats as a reflection site: a reflectively-sourced class literal,
// a field descriptor, or a method descriptor.
func (o AbstractObject) IsReflectionOutput() bool {
	switch o.kind {
	case kindField, kindMethod:
		return true
	case kindClass:
		return o.classSource == Reflection
	default:
		return false
	}
}

// Equal compares tag and payload. Two Class values with the same type but
// different source are not equal.
func (o AbstractObject) Equal(other AbstractObject) bool {
	if o.kind != other.kind {
		return false
	}
	switch o.kind {
	case kindObject:
		return o.objType == other.objType
	case kindString:
		return o.str == other.str
	case kindClass:
		return o.hasType == other.hasType && o.objType == other.objType && o.classSource == other.classSource
	case kindField, kindMethod:
		return o.objType == other.objType && o.str == other.str
	default:
		return false
	}
}

func (k objectKind) String() string {
	switch k {
	case kindObject:
		return "Object"
	case kindString:
		return "String"
	case kindClass:
		return "Class"
	case kindField:
		return "Field"
	case kindMethod:
		return "Method"
	default:
		return "?"
	}
}

// String renders a human-readable form, used only for logging and tests.
func (o AbstractObject) String() string {
	switch o.kind {
	case kindObject:
		if o.hasType {
			return fmt.Sprintf("Object{%s}", o.objType.InternalName())
		}
		return "Object{?}"
	case kindString:
		if o.str != nil {
			return fmt.Sprintf("String{%q}", o.str.Value())
		}
		return "String{?}"
	case kindClass:
		name := "?"
		if o.hasType {
			name = o.objType.InternalName()
		}
		return fmt.Sprintf("Class{%s, %s}", name, o.classSource)
	case kindField:
		return fmt.Sprintf("Field{%s.%s}", o.objType.InternalName(), o.str.Value())
	case kindMethod:
		return fmt.Sprintf("Method{%s.%s}", o.objType.InternalName(), o.str.Value())
	default:
		return "<invalid AbstractObject>"
	}
}
