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

// reflectscan finds reflective use of classes, methods, and fields in a
// single method's control-flow graph.
//
// Usage:
//
//	reflectscan scan [options] fixture.json
//	reflectscan render [options] fixture.json
package main

import (
	"fmt"
	"os"
)

const usage = `reflectscan: find reflective class/method/field use in a method's CFG

Usage:
  reflectscan scan [options] fixture.json
  reflectscan render [options] fixture.json

Tools:
  - scan: runs the analyzer over a JSON-encoded method fixture and prints
    reflection sites
  - render: runs the analyzer and renders the CFG as an SVG, highlighting
    blocks that contain a reflection site
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	args := os.Args[2:]
	var err error
	switch os.Args[1] {
	case "scan":
		err = runScan(args)
	case "render":
		err = runRender(args)
	case "-help", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "error: unknown subcommand %q\n%s\n", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "reflectscan: %v\n", err)
		os.Exit(1)
	}
}
