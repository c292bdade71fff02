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

const approvalLoopCount = 10

// expandApprovalGate desugars an approval_gate node into
// serial[ loop(count=10, break_on=success, contents=serial[<inner>,
// approver]), scope_resolve(...) ], per spec.md section 4.3.4. Ungrounded in
// the retrieval pack; built from the spec's prose.
func expandApprovalGate(node *ast.Node, nodeID, outputScopeID string) (*ast.Node, error) {
	approver := node.StringParam("approver")
	if approver == "" {
		return nil, errMissingParam("approval_gate", "approver")
	}

	target := node.StringParam("target")
	if target == "" {
		return nil, errMissingParam("approval_gate", "target")
	}

	inner := node.Contents
	if inner == nil {
		return nil, errMissingContents("approval_gate")
	}

	selfOutput := ast.DeriveSelfOutputID(target, outputScopeID)
	previousTarget := selfOutput + "/v{$LOOP-1}"
	previousFeedback := ast.CreateFeedbackID(selfOutput, approver) + "/v{$LOOP-1}"

	injectFeedbackInput(inner, target, previousFeedback)
	injectSelfReference(inner, target, previousTarget)
	injectTeamExtraInputs(inner, target, previousTarget)

	approverNode := &ast.Node{
		Opcode: "approver",
		Params: map[string]any{"agent": approver},
		Wiring: &ast.Wiring{
			Inputs: []string{target, previousTarget, previousFeedback},
			Output: ast.CreateFeedbackID(target, approver),
		},
	}

	loopNode := &ast.Node{
		Opcode:   "loop",
		Params:   map[string]any{"count": approvalLoopCount, "break_on": "success"},
		Contents: &ast.Node{Opcode: "serial", Children: []*ast.Node{inner, approverNode}},
	}

	scopeResolve := &ast.Node{
		Opcode: "scope_resolve",
		Params: map[string]any{
			"target":     target,
			"from_scope": "loop",
			"strategy":   "take_latest_success",
			"map_to":     selfOutput,
		},
	}

	node.Opcode = "serial"
	node.Children = []*ast.Node{loopNode, scopeResolve}
	node.Contents = nil
	node.Wiring = nil

	return processStandardNode(node, nodeID, outputScopeID)
}

// injectFeedbackInput walks subtree, and for every leaf generator
// (worker/ensemble/generate_team) whose declared (pre-expansion,
// still-logical) output matches target, appends the approver's previous
// feedback to its inputs (spec.md section 4.3.4, point 1). A generate_team
// node's own Wiring.Inputs at this point is still its pre-expansion sugar
// input list; expandGenerateTeam later copies that list, loop depth shifted
// one level (ShiftLoopDepth), into its inner generator worker's inputs, so
// appending here reaches the leaf generator
// one level down without needing to reach into the not-yet-expanded team.
func injectFeedbackInput(node *ast.Node, target, previousFeedback string) {
	walkSugarTree(node, func(n *ast.Node) {
		switch n.Opcode {
		case "worker", "ensemble", "generate_team":
		default:
			return
		}

		if n.Wiring == nil || ast.ExtractLogicalName(n.Wiring.Output) != target {
			return
		}

		n.Wiring.Inputs = append(n.Wiring.Inputs, previousFeedback)
	})
}

// injectSelfReference walks subtree, and for every worker/ensemble node
// whose declared output matches target, appends a self-reference to its own
// previous draft to its inputs (spec.md section 4.3.4, point 3). Excludes
// generate_team: its generator worker already receives a self-reference via
// previousSelfRef inside expandGenerateTeam, so injecting one here too would
// duplicate it.
func injectSelfReference(node *ast.Node, target, previousTarget string) {
	walkSugarTree(node, func(n *ast.Node) {
		if n.Opcode != "worker" && n.Opcode != "ensemble" {
			return
		}

		if n.Wiring == nil || ast.ExtractLogicalName(n.Wiring.Output) != target {
			return
		}

		n.Wiring.Inputs = append(n.Wiring.Inputs, previousTarget)
	})
}

// injectTeamExtraInputs walks subtree, and for every generate_team node
// whose declared output matches target, appends the target's previous value
// to its private _generator_extra_inputs side channel rather than its
// public inputs (spec.md section 4.3.4, point 2).
func injectTeamExtraInputs(node *ast.Node, target, previousTarget string) {
	walkSugarTree(node, func(n *ast.Node) {
		if n.Opcode != "generate_team" {
			return
		}

		if n.Wiring == nil || ast.ExtractLogicalName(n.Wiring.Output) != target {
			return
		}

		if n.Params == nil {
			n.Params = map[string]any{}
		}

		existing := stringListParam(n, generatorExtraInputsKey)
		extras := make([]any, 0, len(existing)+1)

		for _, e := range existing {
			extras = append(extras, e)
		}

		extras = append(extras, previousTarget)
		n.Params[generatorExtraInputsKey] = extras
	})
}

// walkSugarTree applies visit to every node in the pre-expansion subtree
// rooted at node (itself included), recursing through both children and
// contents regardless of opcode - unlike the post-expansion walkInputs, this
// runs before desugaring so sugar opcodes are still present.
func walkSugarTree(node *ast.Node, visit func(*ast.Node)) {
	if node == nil {
		return
	}

	visit(node)

	for _, child := range node.Children {
		walkSugarTree(child, visit)
	}

	walkSugarTree(node.Contents, visit)
}
