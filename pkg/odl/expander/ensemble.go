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
	"strconv"

	"github.com/odl-lang/odlc/pkg/odl/ast"
)

// previousSelfRef builds the physical id by which a node inside a loop
// refers to its own output from the previous iteration: the node's own
// self-output, qualified, with "/v{$LOOP-1}" appended underneath (spec.md
// section 4.3.4, used identically by ensemble, generate_team and
// approval_gate).
func previousSelfRef(name, scopeID string) string {
	return ast.DeriveSelfOutputID(name, scopeID) + "/v{$LOOP-1}"
}

// expandEnsemble desugars an ensemble node into
// serial[ parallel[ worker_{A,1}...worker_{B,n} ], worker_C ], per spec.md
// section 4.3.4. There is no reference-compiler implementation to ground
// this on (the retrieval pack's expander.py only retained _expand_fan_out);
// this follows its structure and helper decomposition.
func expandEnsemble(node *ast.Node, nodeID, outputScopeID string) (*ast.Node, error) {
	generators := stringListParam(node, "generators")
	if len(generators) == 0 {
		return nil, errMissingParam("ensemble", "generators")
	}

	samples, ok := intParam(node, "samples")
	if !ok || samples < 1 {
		samples = 1
	}

	consolidator := node.StringParam("consolidator")
	if consolidator == "" {
		return nil, errMissingParam("ensemble", "consolidator")
	}

	if node.Wiring == nil || node.Wiring.Output == "" {
		return nil, errMissingParam("ensemble", "wiring.output")
	}

	name := node.Wiring.Output
	baseInputs := node.Wiring.Inputs
	briefing := briefingParam(node)
	selfRefTarget := previousSelfRef(name, outputScopeID)

	parallelID := ast.StackID(nodeID, "parallel", 0)

	var divergedOutputs []string

	var workers []*ast.Node

	workerIndex := 0

	for _, generator := range generators {
		for i := 1; i <= samples; i++ {
			divergedOutput := "_" + name + "#" + ast.JoinPath(outputScopeID, generator, strconv.Itoa(i))
			divergedOutputs = append(divergedOutputs, divergedOutput)

			inputs := rewriteSelfRef(baseInputs, selfRefTarget, divergedOutput+"/v{$LOOP-1}")

			worker := &ast.Node{
				StackPath: ast.StackID(parallelID, "worker", workerIndex),
				Opcode:    "worker",
				Params:    mergeBriefing(briefing, generator, map[string]any{"agent": generator, "mode": modeGenerate}),
				Wiring:    &ast.Wiring{Inputs: inputs, Output: divergedOutput},
			}
			workers = append(workers, worker)
			workerIndex++
		}
	}

	parallel := &ast.Node{
		StackPath: parallelID,
		Opcode:    "parallel",
		Children:  workers,
	}

	consolidatorInputs := append(append([]string{}, baseInputs...), divergedOutputs...)

	consolidatorWorker := &ast.Node{
		StackPath: ast.StackID(nodeID, "worker", 1),
		Opcode:    "worker",
		Params:    mergeBriefing(briefing, consolidator, map[string]any{"agent": consolidator, "mode": modeGenerate}),
		Wiring:    &ast.Wiring{Inputs: consolidatorInputs, Output: ast.DeriveSelfOutputID(name, outputScopeID)},
	}

	node.Opcode = "serial"
	node.Children = []*ast.Node{parallel, consolidatorWorker}
	node.Wiring = nil

	return node, nil
}

// rewriteSelfRef returns a copy of inputs with every occurrence of target
// replaced by replacement.
func rewriteSelfRef(inputs []string, target, replacement string) []string {
	out := make([]string, len(inputs))

	for i, in := range inputs {
		if in == target {
			out[i] = replacement
		} else {
			out[i] = in
		}
	}

	return out
}
