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

import "strings"

// externalToInternalName converts a Class.forName-style external class name
// ("a.b.C", or "[La.b.C;" / "[I" for arrays) to its internal descriptor
// form ("La/b/C;", "[La/b/C;", "[I"). The function is pure and idempotent:
// feeding it an already-internal name (one that starts with 'L' or '[')
// returns it unchanged, which is what makes FOR_NAME's fixed points exactly
// the internal-form strings.
func externalToInternalName(external string) string {
	prefix := ""
	rest := external
	for strings.HasPrefix(rest, "[") {
		prefix += "["
		rest = rest[1:]
	}
	if rest == "" {
		return prefix
	}
	// A one-letter primitive descriptor (I, J, Z, ...) passes straight
	// through, array component or not.
	if len(rest) == 1 && rest[0] >= 'A' && rest[0] <= 'Z' {
		return prefix + rest
	}
	// An array-of-objects external name already carries the "L...;"
	// wrapper around its (dotted) component class name; a bare class
	// name carries neither. Either way, strip any existing wrapper,
	// normalize dots to slashes, and rewrap — idempotent on input that
	// is already fully internal, since slash-for-dot replacement is then
	// a no-op.
	body := rest
	body = strings.TrimPrefix(body, "L")
	body = strings.TrimSuffix(body, ";")
	return prefix + "L" + strings.ReplaceAll(body, ".", "/") + ";"
}
