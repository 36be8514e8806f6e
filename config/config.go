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

// Package config loads the YAML configuration that controls a run of the
// analyzer: logging verbosity, whether the CFG-cycle diagnostic is
// computed, and extensions to the hard-coded reflection API table. A
// Config is loaded once per process and threaded explicitly into every
// call site that needs it; there is no ambient global analyzer state.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/go-redex/reflectflow/ir"
	"github.com/go-redex/reflectflow/reflectflow"
)

// ReflectionAliasConfig is the YAML-serializable form of a reflection table
// extension: Owner is an internal type name (e.g. "Lcom/app/Wrapper;"),
// resolved against a concrete ir.SymbolTable at Resolve time, not at load
// time, since Config has no symbol table of its own.
type ReflectionAliasConfig struct {
	Owner    string `yaml:"owner"`
	Selector string `yaml:"selector"`
	AliasOf  string `yaml:"alias-of"`
}

// Config is the top-level configuration document.
type Config struct {
	// LogLevel controls the verbosity of the LogGroup built from this
	// config. Zero means unset, and Load fills in InfoLevel.
	LogLevel int `yaml:"log-level"`

	// ComputeLoops enables the CFG elementary-cycle diagnostic
	// (Analysis.Loops) for every method scanned with this config.
	ComputeLoops bool `yaml:"compute-loops"`

	// Parallel enables ScanAll's worker-pool path instead of running
	// methods one at a time.
	Parallel bool `yaml:"parallel"`

	// ReflectionTable extends the hard-coded reflection API table with
	// additional owner/selector pairs, for targets that wrap a reflection
	// call behind an internal helper.
	ReflectionTable []ReflectionAliasConfig `yaml:"reflection-table"`

	sourceFile string
}

// NewDefault returns a Config with every field at its zero-configuration
// default.
func NewDefault() *Config {
	return &Config{
		LogLevel:     int(InfoLevel),
		ComputeLoops: false,
		Parallel:     false,
	}
}

// Load reads and parses a YAML configuration file.
func Load(filename string) (*Config, error) {
	cfg := NewDefault()
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}
	cfg.sourceFile = filename

	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}
	return cfg, nil
}

// SourceFile returns the path Load read this Config from, or "" for a
// Config built with NewDefault.
func (c *Config) SourceFile() string { return c.sourceFile }

// ResolveReflectionAliases interns every configured alias's owner type
// against st and returns the reflectflow.ReflectionAlias slice ready to
// hand to reflectflow.Options.
func (c *Config) ResolveReflectionAliases(st ir.SymbolTable) []reflectflow.ReflectionAlias {
	if len(c.ReflectionTable) == 0 {
		return nil
	}
	aliases := make([]reflectflow.ReflectionAlias, 0, len(c.ReflectionTable))
	for _, a := range c.ReflectionTable {
		aliases = append(aliases, reflectflow.ReflectionAlias{
			Owner:    st.MakeType(a.Owner),
			Selector: a.Selector,
			AliasOf:  a.AliasOf,
		})
	}
	return aliases
}

// Parallelism returns the worker count ScanAll should use: 0 (sequential)
// unless Parallel is set, in which case it is the host's CPU count.
func (c *Config) Parallelism() int {
	if !c.Parallel {
		return 0
	}
	return runtime.NumCPU()
}

// Options builds the reflectflow.Options this config describes, given a
// symbol table to resolve reflection table extensions and an optional
// trace sink (typically logGroup.Trace()).
func (c *Config) Options(st ir.SymbolTable, trace func(format string, args ...interface{})) reflectflow.Options {
	return reflectflow.Options{
		ReflectionAliases: c.ResolveReflectionAliases(st),
		Trace:             trace,
		ComputeLoops:      c.ComputeLoops,
	}
}
