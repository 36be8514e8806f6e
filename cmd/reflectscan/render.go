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

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/pkg/browser"

	"github.com/go-redex/reflectflow/config"
	"github.com/go-redex/reflectflow/internal/irjson"
	"github.com/go-redex/reflectflow/internal/irtest"
	"github.com/go-redex/reflectflow/ir"
	"github.com/go-redex/reflectflow/reflectflow"
)

const renderUsage = `Render a method's CFG, highlighting blocks with a reflection site.

Usage:
  reflectscan render [options] fixture.json

Options:
`

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	out := fs.String("out", "reflectscan.svg", "output SVG path")
	open := fs.Bool("open", false, "open the rendered SVG in a browser")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, renderUsage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	cfg := config.NewDefault()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}
	logs := config.NewLogGroup(cfg)

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("reading fixture: %w", err)
	}

	st := irtest.NewSymbolTable()
	m, err := irjson.Load(data, st)
	if err != nil {
		return fmt.Errorf("decoding fixture: %w", err)
	}

	opts := cfg.Options(st, logs.Trace())
	a := reflectflow.New(m, st, opts)

	cfgGraph, hasBody := m.CFG()
	if !hasBody {
		return fmt.Errorf("method %s has no CFG body to render", m.String())
	}

	blocksWithSite := make(map[ir.BlockID]bool)
	for _, s := range a.GetReflectionSites() {
		blocksWithSite[ownerBlock(cfgGraph, s.Instruction)] = true
	}

	g := graphviz.New()
	defer g.Close()
	graph, err := g.Graph()
	if err != nil {
		return fmt.Errorf("creating graph: %w", err)
	}
	defer graph.Close()
	graph.SetLabel(m.String())

	nodes := make(map[ir.BlockID]*cgraph.Node)
	for _, b := range cfgGraph.Blocks() {
		n, err := graph.CreateNode(fmt.Sprintf("block%d", b.ID()))
		if err != nil {
			return fmt.Errorf("creating node: %w", err)
		}
		n.SetLabel(blockLabel(b))
		if blocksWithSite[b.ID()] {
			n.SetStyle(cgraph.FilledNodeStyle)
			n.SetFillColor("indianred1")
		}
		nodes[b.ID()] = n
	}
	for _, b := range cfgGraph.Blocks() {
		for _, succID := range b.Successors() {
			if _, err := graph.CreateEdge("", nodes[b.ID()], nodes[succID]); err != nil {
				return fmt.Errorf("creating edge: %w", err)
			}
		}
	}

	if err := g.RenderFilename(graph, graphviz.SVG, *out); err != nil {
		return fmt.Errorf("rendering svg: %w", err)
	}
	logs.Infof("wrote %s", *out)

	if *open {
		return browser.OpenFile(*out)
	}
	return nil
}

func blockLabel(b ir.Block) string {
	label := fmt.Sprintf("block %d\n", b.ID())
	for _, insn := range b.Instructions() {
		label += insn.Op().String() + "\n"
	}
	return label
}

func ownerBlock(cfg ir.CFG, insn ir.Instruction) ir.BlockID {
	for _, b := range cfg.Blocks() {
		for _, i := range b.Instructions() {
			if i == insn {
				return b.ID()
			}
		}
	}
	return -1
}
