// Copyright The ODL Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package expander

import "github.com/odl-lang/odlc/pkg/odl/ast"

// stringListParam reads a []string-shaped param, tolerating the []any shape
// a YAML decode produces.
func stringListParam(node *ast.Node, name string) []string {
	v, ok := node.Param(name)
	if !ok {
		return nil
	}

	raw, ok := v.([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(raw))

	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}

	return out
}

// intParam reads an integer-shaped param, tolerating the handful of numeric
// types a YAML decode may produce it as.
func intParam(node *ast.Node, name string) (int, bool) {
	v, ok := node.Param(name)
	if !ok {
		return 0, false
	}

	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	default:
		return 0, false
	}
}
