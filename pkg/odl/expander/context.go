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

// Package expander implements stage 3 of the pipeline (spec.md section
// 4.3): deterministic hierarchical ID assignment, output normalization,
// scope descent through loop/iterate, and desugaring of the four sugar
// opcodes into primitive opcodes.
package expander

// ctx carries the two pieces of context the expander threads down the tree
// per spec.md section 4.3: the path under which the current node's id is
// minted, and the scope segment appended to unqualified outputs. Synthetic
// nodes a sugar expansion constructs directly (e.g. ensemble's private
// diverged-output workers) are stack-pathed by the expansion itself and
// never re-enter this dispatch, so no "predetermined id" field is needed.
type ctx struct {
	parentPath    string
	outputScopeID string
	siblingIndex  int
}

// root constructs the initial context used at the top of a tree: parent
// path "root", output scope "default", sibling index 0 (spec.md section
// 4.3.1).
func root() ctx {
	return ctx{parentPath: "root", outputScopeID: "default"}
}
