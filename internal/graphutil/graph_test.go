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

package graphutil_test

import (
	"sort"
	"testing"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/go-redex/reflectflow/internal/graphutil"
)

func TestFindAllElementaryCyclesTriangle(t *testing.T) {
	// 0 -> 1 -> 2 -> 0, plus an acyclic tail 2 -> 3.
	succ := map[int64][]int64{
		0: {1},
		1: {2},
		2: {0, 3},
		3: {},
	}
	g := graphutil.NewBlockGraph([]int64{0, 1, 2, 3}, func(n int64) []int64 { return succ[n] })

	cycles := graphutil.FindAllElementaryCycles(g)
	if len(cycles) != 1 {
		t.Fatalf("expected exactly 1 elementary cycle, got %d: %v", len(cycles), cycles)
	}
	got := append([]int64{}, cycles[0]...)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	want := []int64{0, 1, 2}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("cycle nodes = %v, want nodes including %v", got, want)
		}
	}
}

func TestFindAllElementaryCyclesAcyclic(t *testing.T) {
	succ := map[int64][]int64{0: {1}, 1: {2}, 2: {}}
	g := graphutil.NewBlockGraph([]int64{0, 1, 2}, func(n int64) []int64 { return succ[n] })
	if cycles := graphutil.FindAllElementaryCycles(g); len(cycles) != 0 {
		t.Fatalf("expected no cycles in an acyclic graph, got %v", cycles)
	}
}

func TestBlockGraphTarjanSCCOrdersSuccessorsFirst(t *testing.T) {
	// 0 -> 1 -> 2, a simple chain: each node its own SCC, in order
	// [2] [1] [0] (successors first), matching what newSolver relies on
	// before it reverses the result into a scheduling order.
	succ := map[int64][]int64{0: {1}, 1: {2}, 2: {}}
	g := graphutil.NewBlockGraph([]int64{0, 1, 2}, func(n int64) []int64 { return succ[n] })

	sccs := topo.TarjanSCC(g)
	if len(sccs) != 3 {
		t.Fatalf("expected 3 singleton SCCs, got %d", len(sccs))
	}
	if sccs[0][0].ID() != 2 || sccs[1][0].ID() != 1 || sccs[2][0].ID() != 0 {
		t.Fatalf("expected order [2] [1] [0], got %v", sccs)
	}
}

func TestBlockGraphTarjanSCCGroupsCycle(t *testing.T) {
	// 0 <-> 1 -> 2: nodes 0 and 1 form one SCC, 2 is its own singleton.
	succ := map[int64][]int64{0: {1}, 1: {0, 2}, 2: {}}
	g := graphutil.NewBlockGraph([]int64{0, 1, 2}, func(n int64) []int64 { return succ[n] })

	sccs := topo.TarjanSCC(g)
	if len(sccs) != 2 {
		t.Fatalf("expected 2 SCCs (one pair, one singleton), got %d: %v", len(sccs), sccs)
	}
	sizes := []int{len(sccs[0]), len(sccs[1])}
	sort.Ints(sizes)
	if sizes[0] != 1 || sizes[1] != 2 {
		t.Fatalf("expected SCC sizes [1 2], got %v", sizes)
	}
}
