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

const generatorExtraInputsKey = "_generator_extra_inputs"

// expandGenerateTeam desugars a generate_team node into
// serial[ loop(count=N, break_on=success, contents=serial[G_worker,
// parallel[validators...]]), scope_resolve(...) ], per spec.md section
// 4.3.4. Ungrounded in the retrieval pack (expander.py only retained
// _expand_fan_out); built from the spec's prose, reusing processStandardNode
// for the loop/scope-descent machinery rather than re-deriving it.
func expandGenerateTeam(node *ast.Node, nodeID, outputScopeID string) (*ast.Node, error) {
	generator := node.StringParam("generator")
	if generator == "" {
		return nil, errMissingParam("generate_team", "generator")
	}

	validators := stringListParam(node, "validators")

	loopCount, ok := intParam(node, "loop")
	if !ok || loopCount < 1 {
		loopCount = 1
	}

	if node.Wiring == nil || node.Wiring.Output == "" {
		return nil, errMissingParam("generate_team", "wiring.output")
	}

	name := node.Wiring.Output
	briefing := briefingParam(node)

	generatorInputs := make([]string, 0, len(node.Wiring.Inputs)+2+len(validators))
	for _, in := range node.Wiring.Inputs {
		generatorInputs = append(generatorInputs, ast.ShiftLoopDepth(in))
	}

	generatorInputs = append(generatorInputs, stringListParam(node, generatorExtraInputsKey)...)
	generatorInputs = append(generatorInputs, previousSelfRef(name, outputScopeID))

	for _, v := range validators {
		generatorInputs = append(generatorInputs,
			ast.CreateFeedbackID(ast.DeriveSelfOutputID(name, outputScopeID), v)+"/v{$LOOP-1}")
	}

	generatorWorker := &ast.Node{
		Opcode: "worker",
		Params: mergeBriefing(briefing, generator, map[string]any{"agent": generator, "mode": modeGenerate}),
		Wiring: &ast.Wiring{Inputs: generatorInputs, Output: name},
	}

	var validatorNodes []*ast.Node

	for _, v := range validators {
		validatorNodes = append(validatorNodes, &ast.Node{
			Opcode: "worker",
			Params: mergeBriefing(briefing, v, map[string]any{"agent": v, "mode": modeValidate}),
			Wiring: &ast.Wiring{Inputs: []string{name}, Output: ast.CreateFeedbackID(name, v)},
		})
	}

	iterationBody := &ast.Node{Opcode: "serial", Children: []*ast.Node{generatorWorker}}

	if len(validatorNodes) > 0 {
		iterationBody.Children = append(iterationBody.Children, &ast.Node{Opcode: "parallel", Children: validatorNodes})
	}

	loopNode := &ast.Node{
		Opcode:   "loop",
		Params:   map[string]any{"count": loopCount, "break_on": "success"},
		Contents: iterationBody,
	}

	scopeResolve := &ast.Node{
		Opcode: "scope_resolve",
		Params: map[string]any{
			"target":     name,
			"from_scope": "loop",
			"strategy":   "take_latest_success",
			"map_to":     ast.DeriveSelfOutputID(name, outputScopeID),
		},
	}

	node.Opcode = "serial"
	node.Children = []*ast.Node{loopNode, scopeResolve}
	node.Wiring = nil

	return processStandardNode(node, nodeID, outputScopeID)
}
