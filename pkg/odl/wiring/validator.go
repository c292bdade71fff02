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

// Package wiring implements stage 5 of the pipeline (spec.md section 4.5):
// two global passes - stack_path uniqueness and input-reference visibility -
// fused into one tree walk over the already-resolved tree. Grounded on the
// reference compiler's compiler/rules/wiring.py, with the private-artifact
// visibility elaboration of spec.md section 4.4/4.5 folded in (the retrieved
// wiring.py predates that elaboration and does not filter private ids out of
// a serial block's escaping outputs).
package wiring

import (
	"sort"
	"strings"

	"github.com/odl-lang/odlc/pkg/odl/ast"
	odlerr "github.com/odl-lang/odlc/pkg/odl/errors"
)

// allowedSystemVars are the only dynamic tokens a "$"-bearing input may
// legally carry.
var allowedSystemVars = []string{"$LOOP", "$KEY", "$PREV", "$HISTORY"}

// Validate walks node, checking global stack_path uniqueness and, per
// scope, that every non-dynamic/non-external input reference was actually
// produced somewhere visible.
func Validate(node *ast.Node) error {
	seen := map[string]bool{}
	_, err := validateScope(node, map[string]bool{}, seen)

	return err
}

// validateScope validates current and its subtree against the set of
// artifact ids visible to it, returning the (possibly privacy-filtered) set
// of ids this subtree makes visible to its own parent.
func validateScope(current *ast.Node, visible map[string]bool, seen map[string]bool) (map[string]bool, error) {
	if current.StackPath != "" {
		if seen[current.StackPath] {
			return nil, odlerr.Newf(odlerr.WiringRule, "duplicate stack_path found: %s", current.StackPath)
		}

		seen[current.StackPath] = true
	}

	if current.Wiring != nil {
		for _, ref := range current.Wiring.Inputs {
			if err := checkInputVisibility(ref, visible); err != nil {
				return nil, err
			}
		}
	}

	producedHere := map[string]bool{}

	if current.Wiring != nil && current.Wiring.Output != "" {
		producedHere[current.Wiring.Output] = true
	}

	if current.Opcode == "scope_resolve" {
		if mapTo := current.StringParam("map_to"); mapTo != "" {
			producedHere[mapTo] = true
		}
	}

	switch {
	case current.Opcode == "serial":
		blockProduced, err := validateSiblingsAccruing(current.Children, visible, seen)
		if err != nil {
			return nil, err
		}

		for id := range blockProduced {
			if !ast.IsPrivateName(ast.ExtractLogicalName(id)) {
				producedHere[id] = true
			}
		}
	case current.Opcode == "parallel":
		for _, child := range current.Children {
			childProduced, err := validateScope(child, visible, seen)
			if err != nil {
				return nil, err
			}

			for id := range childProduced {
				producedHere[id] = true
			}
		}
	case current.Contents != nil:
		childProduced, err := validateScope(current.Contents, visible, seen)
		if err != nil {
			return nil, err
		}

		for id := range childProduced {
			producedHere[id] = true
		}
	case len(current.Children) > 0:
		blockProduced, err := validateSiblingsAccruing(current.Children, visible, seen)
		if err != nil {
			return nil, err
		}

		for id := range blockProduced {
			producedHere[id] = true
		}
	}

	return producedHere, nil
}

// validateSiblingsAccruing processes children in order, each seeing the
// outputs of earlier siblings (spec.md section 4.5, serial discipline).
func validateSiblingsAccruing(children []*ast.Node, visible map[string]bool, seen map[string]bool) (map[string]bool, error) {
	currentScope := cloneSet(visible)
	blockProduced := map[string]bool{}

	for _, child := range children {
		childProduced, err := validateScope(child, currentScope, seen)
		if err != nil {
			return nil, err
		}

		for id := range childProduced {
			currentScope[id] = true
			blockProduced[id] = true
		}
	}

	return blockProduced, nil
}

func checkInputVisibility(ref string, visible map[string]bool) error {
	if strings.Contains(ref, ":") {
		return nil
	}

	if strings.Contains(ref, "$") {
		for _, v := range allowedSystemVars {
			if strings.Contains(ref, v) {
				return nil
			}
		}

		return odlerr.Newf(odlerr.WiringRule,
			"Invalid system variable usage in %q. Allowed variables must include one of: %v", ref, allowedSystemVars)
	}

	if !visible[ref] {
		return odlerr.Newf(odlerr.WiringRule,
			"Undefined Artifact ID referenced: %q. It may be undefined, or a forward reference. Visible artifacts: %v",
			ref, sortedKeys(visible))
	}

	return nil
}

func cloneSet(s map[string]bool) map[string]bool {
	out := make(map[string]bool, len(s))
	for k := range s {
		out[k] = true
	}

	return out
}

func sortedKeys(s map[string]bool) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}
