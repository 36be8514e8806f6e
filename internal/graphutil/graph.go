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

// Package graphutil adapts control-flow graphs to the generic graph
// libraries used elsewhere in this module (gonum's graph.Graph and
// yourbasic/graph's graph.Iterator), and implements small graph algorithms
// that are generic over a node type.
package graphutil

import (
	"sort"

	"gonum.org/v1/gonum/graph"
)

// BlockGraph is a node/edge-set view of a control-flow graph (or any
// directed graph with int64 node identifiers), shaped to satisfy both
// gonum's graph.Graph and yourbasic/graph's graph.Iterator interfaces so
// the two libraries' algorithms can run over the same adapter. The
// yourbasic/graph side requires node ids to be a dense range [0, Order());
// ir.BlockID implementations used with this adapter should follow that
// convention.
type BlockGraph struct {
	order int
	ids   []int64
	edges map[int64]map[int64]bool
}

// NewBlockGraph builds a BlockGraph from an explicit node list and a
// successors function, the same shape the fixpoint driver already has
// available from an ir.CFG.
func NewBlockGraph(nodes []int64, successors func(int64) []int64) *BlockGraph {
	edges := make(map[int64]map[int64]bool, len(nodes))
	ids := make([]int64, len(nodes))
	copy(ids, nodes)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, n := range nodes {
		out := edges[n]
		if out == nil {
			out = map[int64]bool{}
			edges[n] = out
		}
		for _, s := range successors(n) {
			out[s] = true
		}
	}

	return &BlockGraph{order: len(nodes), ids: ids, edges: edges}
}

// Order implements yourbasic/graph's graph.Iterator.
func (g *BlockGraph) Order() int { return g.order }

// Visit implements yourbasic/graph's graph.Iterator. v is treated directly
// as a node id (not a slice position), matching this module's convention
// of using the underlying ir.BlockID/int64 values as node identifiers.
func (g *BlockGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	id := int64(v)
	if _, ok := g.edges[id]; !ok {
		return false
	}
	for w := range g.edges[id] {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// ****** gonum graph.Graph implementation ******

type blockNode int64

func (n blockNode) ID() int64 { return int64(n) }

// Node implements graph.Graph.
func (g *BlockGraph) Node(id int64) graph.Node {
	if _, ok := g.edges[id]; !ok {
		return nil
	}
	return blockNode(id)
}

// Nodes implements graph.Graph.
func (g *BlockGraph) Nodes() graph.Nodes {
	ns := make([]graph.Node, len(g.ids))
	for i, id := range g.ids {
		ns[i] = blockNode(id)
	}
	return &nodeIterator{nodes: ns, cur: -1}
}

// From implements graph.Graph.
func (g *BlockGraph) From(id int64) graph.Nodes {
	var ns []graph.Node
	for w := range g.edges[id] {
		ns = append(ns, blockNode(w))
	}
	return &nodeIterator{nodes: ns, cur: -1}
}

// To implements graph.Directed.
func (g *BlockGraph) To(id int64) graph.Nodes {
	var ns []graph.Node
	for u, out := range g.edges {
		if out[id] {
			ns = append(ns, blockNode(u))
		}
	}
	return &nodeIterator{nodes: ns, cur: -1}
}

// HasEdgeBetween implements graph.Graph.
func (g *BlockGraph) HasEdgeBetween(xid, yid int64) bool {
	return g.edges[xid][yid] || g.edges[yid][xid]
}

// HasEdgeFromTo implements graph.Directed, which topo.TarjanSCC requires.
func (g *BlockGraph) HasEdgeFromTo(uid, vid int64) bool {
	return g.edges[uid][vid]
}

// Edge implements graph.Graph.
func (g *BlockGraph) Edge(uid, vid int64) graph.Edge {
	if !g.edges[uid][vid] {
		return nil
	}
	return blockEdge{from: blockNode(uid), to: blockNode(vid)}
}

type nodeIterator struct {
	nodes []graph.Node
	cur   int
}

func (it *nodeIterator) Next() bool {
	if it.cur < len(it.nodes)-1 {
		it.cur++
		return true
	}
	return false
}
func (it *nodeIterator) Len() int         { return len(it.nodes) }
func (it *nodeIterator) Reset()           { it.cur = -1 }
func (it *nodeIterator) Node() graph.Node { return it.nodes[it.cur] }

type blockEdge struct {
	from, to blockNode
}

func (e blockEdge) From() graph.Node         { return e.from }
func (e blockEdge) To() graph.Node           { return e.to }
func (e blockEdge) ReversedEdge() graph.Edge { return blockEdge{from: e.to, to: e.from} }
