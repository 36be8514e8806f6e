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

import "testing"

func TestExternalToInternalName(t *testing.T) {
	cases := []struct {
		external string
		internal string
	}{
		{"a.b.C", "La/b/C;"},
		{"java.lang.String", "Ljava/lang/String;"},
		{"I", "I"},
		{"[I", "[I"},
		{"[La.b.C;", "[La/b/C;"},
		{"[[Ljava.lang.String;", "[[Ljava/lang/String;"},
	}
	for _, c := range cases {
		if got := externalToInternalName(c.external); got != c.internal {
			t.Errorf("externalToInternalName(%q) = %q, want %q", c.external, got, c.internal)
		}
	}
}

func TestExternalToInternalNameIsIdempotent(t *testing.T) {
	inputs := []string{"a.b.C", "java.lang.String", "I", "[I", "[La.b.C;", "Ljava/lang/String;", "La/b/C;"}
	for _, in := range inputs {
		once := externalToInternalName(in)
		twice := externalToInternalName(once)
		if once != twice {
			t.Errorf("externalToInternalName is not idempotent on %q: once=%q twice=%q", in, once, twice)
		}
	}
}
