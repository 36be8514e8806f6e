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
)

func TestDomainJoinIdentity(t *testing.T) {
	st := irtest.NewSymbolTable()
	c := Of(Object(st.T("La/b/Foo;")))

	if !c.Join(Bottom()).Equal(c) {
		t.Fatalf("Join(bottom) should be identity, got %v", c.Join(Bottom()))
	}
	if !Bottom().Join(c).Equal(c) {
		t.Fatalf("Bottom().Join(c) should equal c, got %v", Bottom().Join(c))
	}
}

func TestDomainJoinDistinctConstantsGoesTop(t *testing.T) {
	st := irtest.NewSymbolTable()
	a := Of(Object(st.T("La/b/Foo;")))
	b := Of(Object(st.T("La/b/Bar;")))

	if !a.Join(b).IsTop() {
		t.Fatalf("join of distinct constants should be top, got %v", a.Join(b))
	}
	if !a.Join(a).Equal(a) {
		t.Fatalf("join of equal constants should collapse, got %v", a.Join(a))
	}
}

func TestDomainJoinCommutativeAndAssociative(t *testing.T) {
	st := irtest.NewSymbolTable()
	a := Of(Object(st.T("La/b/Foo;")))
	b := Of(Object(st.T("La/b/Bar;")))
	elements := []Domain{Bottom(), Top(), a, b}

	for _, x := range elements {
		for _, y := range elements {
			if !x.Join(y).Equal(y.Join(x)) {
				t.Fatalf("join not commutative: %v ⊔ %v != %v ⊔ %v", x, y, y, x)
			}
		}
	}
	for _, x := range elements {
		for _, y := range elements {
			for _, z := range elements {
				left := x.Join(y).Join(z)
				right := x.Join(y.Join(z))
				if !left.Equal(right) {
					t.Fatalf("join not associative: (%v⊔%v)⊔%v = %v, %v⊔(%v⊔%v) = %v", x, y, z, left, x, y, z, right)
				}
			}
		}
	}
}

func TestDomainLeqOrdering(t *testing.T) {
	st := irtest.NewSymbolTable()
	a := Of(Object(st.T("La/b/Foo;")))

	if !Bottom().Leq(a) {
		t.Fatalf("bottom should be leq any element")
	}
	if !a.Leq(Top()) {
		t.Fatalf("any element should be leq top")
	}
	if a.Leq(Bottom()) {
		t.Fatalf("a constant should not be leq bottom")
	}
	if Top().Leq(a) {
		t.Fatalf("top should not be leq a constant")
	}
	if !a.Leq(a) {
		t.Fatalf("leq should be reflexive")
	}
}
