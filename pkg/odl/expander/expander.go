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

import (
	"github.com/odl-lang/odlc/pkg/odl/ast"
	odlerr "github.com/odl-lang/odlc/pkg/odl/errors"
)

const (
	modeGenerate = "generate"
	modeValidate = "validate"
)

// Expand runs stage 3 of the pipeline over root, returning a new tree with
// every sugar opcode desugared, every stack_path assigned, and every output
// normalized against its enclosing scope (spec.md section 4.3). root is
// cloned before any mutation, so repeated calls on the same input are
// idempotent (spec.md section 5).
func Expand(node *ast.Node) (*ast.Node, error) {
	return expand(node.Clone(), root())
}

// expand dispatches a single node through deterministic id assignment and,
// for sugar opcodes, desugaring; everything else proceeds through the
// standard container-descent path. Mirrors the reference compiler's
// _expand_recursive.
func expand(node *ast.Node, c ctx) (*ast.Node, error) {
	if node.Opcode == "" {
		return nil, odlerr.New(odlerr.Expander, "missing 'opcode' field")
	}

	physicalOpcode := node.Opcode
	if ast.IsSugarOpcode(node.Opcode) {
		physicalOpcode = "serial"
	}

	currentID := ast.StackID(c.parentPath, physicalOpcode, c.siblingIndex)
	currentScope := c.outputScopeID
	node.StackPath = currentID

	switch node.Opcode {
	case "fan_out":
		return expandFanOut(node, currentID, currentScope)
	case "ensemble":
		return expandEnsemble(node, currentID, currentScope)
	case "generate_team":
		return expandGenerateTeam(node, currentID, currentScope)
	case "approval_gate":
		return expandApprovalGate(node, currentID, currentScope)
	default:
		return processStandardNode(node, currentID, currentScope)
	}
}

// processStandardNode expands a non-sugar node: normalizes its own output,
// defaults a bare worker's mode to "generate", then descends into children
// or contents per the scope-descent rules of spec.md section 4.3.3.
func processStandardNode(node *ast.Node, currentID, outputScopeID string) (*ast.Node, error) {
	normalizeOutput(node, outputScopeID)

	if node.Opcode == "worker" {
		if node.Params == nil {
			node.Params = map[string]any{}
		}

		if _, ok := node.Params["mode"]; !ok {
			node.Params["mode"] = modeGenerate
		}
	}

	childScopeID := outputScopeID
	childPathBase := currentID

	switch node.Opcode {
	case "loop":
		childScopeID = ast.JoinPath(ast.ShiftLoopDepth(outputScopeID), "v{$LOOP}")
		childPathBase = ast.JoinPath(currentID, "v{$LOOP}")
	case "iterate":
		childScopeID = ast.JoinPath(outputScopeID, "{$KEY}")
		childPathBase = ast.JoinPath(currentID, "{$KEY}")
	}

	if node.Children != nil {
		expanded := make([]*ast.Node, len(node.Children))

		for i, child := range node.Children {
			e, err := expand(child, ctx{parentPath: currentID, outputScopeID: childScopeID, siblingIndex: i})
			if err != nil {
				return nil, err
			}

			expanded[i] = e
		}

		node.Children = expanded
	}

	if node.Contents != nil {
		e, err := expand(node.Contents, ctx{parentPath: childPathBase, outputScopeID: childScopeID})
		if err != nil {
			return nil, err
		}

		node.Contents = e
	}

	return node, nil
}

// normalizeOutput qualifies node's wiring.output (if any) against scopeID,
// per spec.md section 4.3.2 / DeriveSelfOutputID.
func normalizeOutput(node *ast.Node, scopeID string) {
	if node.Wiring == nil || node.Wiring.Output == "" {
		return
	}

	node.Wiring.Output = ast.DeriveSelfOutputID(node.Wiring.Output, scopeID)
}
