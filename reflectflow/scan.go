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
	"runtime"

	"github.com/go-redex/reflectflow/internal/funcutil"
	"github.com/go-redex/reflectflow/ir"
)

// MethodReport bundles one method's finished Analysis with its handle, so
// a batch caller can report results without re-threading the method value
// alongside the analysis separately.
type MethodReport struct {
	Method   ir.Method
	Analysis *Analysis
}

// Count returns the number of reflection sites found in this method,
// purely derived from the public query layer.
func (r MethodReport) Count() int {
	return len(r.Analysis.GetReflectionSites())
}

// ScanAll runs a fresh Analysis for every method in methods against a
// shared symbol table, and returns one MethodReport per method in input
// order. Every Analysis is independent and self-contained, so ScanAll
// does not amount to interprocedural propagation: each method's result
// depends only on that method's own CFG and the shared, read-only symbol
// table and reflection table, not on any other method's result.
//
// parallelism is the number of worker goroutines to use; 0 or a negative
// value runs methods sequentially.
func ScanAll(methods []ir.Method, st ir.SymbolTable, opts Options, parallelism int) []MethodReport {
	run := func(m ir.Method) MethodReport {
		return MethodReport{Method: m, Analysis: New(m, st, opts)}
	}
	if parallelism <= 1 {
		return funcutil.Map(methods, run)
	}
	if parallelism > runtime.NumCPU()*4 {
		parallelism = runtime.NumCPU() * 4
	}
	return funcutil.MapParallel(methods, run, parallelism)
}
