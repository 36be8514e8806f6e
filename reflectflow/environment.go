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
	"strconv"

	"github.com/go-redex/reflectflow/ir"
)

// environmentKind distinguishes the two absorbing shapes an Environment can
// take (bottom, the unreachable state) from the ordinary case of a finite
// set of bindings with ⊤ as the default for everything else.
type environmentKind int

const (
	envRegular environmentKind = iota
	envBottom
)

// Environment is a total map from register to Domain, with ⊤ as the default
// value for any register not explicitly bound. Updates are persistent:
// Set never mutates the receiver, so a caller holding a reference to an
// older Environment keeps seeing the old bindings. Structure is shared by
// copy-on-write at the granularity of the whole binding set, which is the
// naive-but-sufficient approach the domain notes call out: register counts
// per method are small enough (tens, rarely low hundreds) that an O(n)
// copy per Set is cheaper in practice than the bookkeeping of a real
// persistent trie, and it keeps Join and Equal simple map walks.
type Environment struct {
	kind     environmentKind
	bindings map[ir.Reg]Domain
}

// TopEnvironment returns the environment mapping every register to ⊤. This
// is the identity element for Join among non-bottom environments, and the
// starting state for blocks the driver hasn't touched yet.
func TopEnvironment() Environment {
	return Environment{kind: envRegular, bindings: nil}
}

// BottomEnvironment returns the unreachable/no-information environment: the
// absorbing element, below every regular environment.
func BottomEnvironment() Environment {
	return Environment{kind: envBottom}
}

// Get returns the Domain bound to reg, or ⊤ if reg is unbound (including
// every register when the environment itself is ⊤).
func (e Environment) Get(reg ir.Reg) Domain {
	if e.kind == envBottom {
		return Bottom()
	}
	if d, ok := e.bindings[reg]; ok {
		return d
	}
	return Top()
}

// Set returns a new environment equal to e except that reg now maps to d.
// Setting a register to ⊤ in a bottom environment is a no-op that returns
// e unchanged: there is no well-formed way to "unbind" out of bottom short
// of joining with something reachable.
func (e Environment) Set(reg ir.Reg, d Domain) Environment {
	if e.kind == envBottom {
		return e
	}
	next := make(map[ir.Reg]Domain, len(e.bindings)+1)
	for k, v := range e.bindings {
		next[k] = v
	}
	if d.IsTop() {
		delete(next, reg)
	} else {
		next[reg] = d
	}
	return Environment{kind: envRegular, bindings: next}
}

// Join computes the pointwise join of e and other. Bottom is the identity;
// joining two regular environments produces the pointwise join over the
// union of their bound registers (an unbound register is ⊤ on that side,
// so it stays unbound — joining with ⊤ is ⊤ — unless it also needs to stay
// explicit; see below).
func (e Environment) Join(other Environment) Environment {
	if e.kind == envBottom {
		return other
	}
	if other.kind == envBottom {
		return e
	}
	next := make(map[ir.Reg]Domain, len(e.bindings))
	for reg, d := range e.bindings {
		od := other.Get(reg)
		j := d.Join(od)
		if !j.IsTop() {
			next[reg] = j
		}
	}
	for reg, od := range other.bindings {
		if _, seen := e.bindings[reg]; seen {
			continue
		}
		j := e.Get(reg).Join(od)
		if !j.IsTop() {
			next[reg] = j
		}
	}
	return Environment{kind: envRegular, bindings: next}
}

// Leq reports whether e ⊑ other: every register (bound on either side) has
// e's value below other's. Bottom is below everything; nothing but bottom
// is below bottom.
func (e Environment) Leq(other Environment) bool {
	if e.kind == envBottom {
		return true
	}
	if other.kind == envBottom {
		return false
	}
	for reg, d := range e.bindings {
		if !d.Leq(other.Get(reg)) {
			return false
		}
	}
	for reg, od := range other.bindings {
		if _, seen := e.bindings[reg]; seen {
			continue
		}
		if !e.Get(reg).Leq(od) {
			return false
		}
	}
	return true
}

// Equal is structural equality, independent of the order registers were
// bound in: exactly the cheap stale-check the fixpoint loop needs to decide
// whether a block's exit state actually changed.
func (e Environment) Equal(other Environment) bool {
	if e.kind != other.kind {
		return false
	}
	if e.kind == envBottom {
		return true
	}
	if len(e.bindings) != len(other.bindings) {
		return false
	}
	for reg, d := range e.bindings {
		od, ok := other.bindings[reg]
		if !ok || !d.Equal(od) {
			return false
		}
	}
	return true
}

// IsBottom reports whether e is the unreachable environment.
func (e Environment) IsBottom() bool { return e.kind == envBottom }

func (e Environment) String() string {
	if e.kind == envBottom {
		return "⊥env"
	}
	if len(e.bindings) == 0 {
		return "{}"
	}
	s := "{"
	first := true
	for reg, d := range e.bindings {
		if !first {
			s += ", "
		}
		first = false
		s += formatReg(reg) + ": " + d.String()
	}
	return s + "}"
}

func formatReg(reg ir.Reg) string {
	if reg == ir.RESULT_REG {
		return "RESULT"
	}
	return "v" + strconv.Itoa(int(reg))
}
