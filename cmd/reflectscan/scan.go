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
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/go-redex/reflectflow/config"
	"github.com/go-redex/reflectflow/internal/formatutil"
	"github.com/go-redex/reflectflow/internal/irjson"
	"github.com/go-redex/reflectflow/internal/irtest"
	"github.com/go-redex/reflectflow/ir"
	"github.com/go-redex/reflectflow/reflectflow"
)

const scanUsage = `Run the reflection analyzer over a method fixture.

Usage:
  reflectscan scan [options] fixture.json

Options:
`

// jsonSite is the JSON-friendly projection of a reflectflow.ReflectionSite.
type jsonSite struct {
	Register string `json:"register"`
	Value    string `json:"value"`
}

func runScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	asJSON := fs.Bool("json", false, "print reflection sites as JSON instead of text")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, scanUsage)
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

	if !a.HasFoundReflection() {
		logs.Infof("no reflection sites found in %s", m.String())
	}

	sites := a.GetReflectionSites()
	if *asJSON {
		out := make([]jsonSite, 0, len(sites))
		for _, s := range sites {
			for _, reg := range s.Registers {
				out = append(out, jsonSite{Register: formatReg(reg), Value: s.Values[reg].String()})
			}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, s := range sites {
		for _, reg := range s.Registers {
			fmt.Printf("%s: %s = %s\n", formatutil.Cyan(m.String()), formatReg(reg), s.Values[reg].String())
		}
	}
	return nil
}

func formatReg(reg ir.Reg) string {
	if reg == ir.RESULT_REG {
		return "RESULT"
	}
	return fmt.Sprintf("v%d", int(reg))
}
