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

package expander_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odl-lang/odlc/pkg/odl/ast"
	"github.com/odl-lang/odlc/pkg/odl/expander"
)

// TestExpandTrivialSerial covers seed scenario S1.
func TestExpandTrivialSerial(t *testing.T) {
	root := &ast.Node{
		Opcode: "serial",
		Children: []*ast.Node{
			{Opcode: "worker", Wiring: &ast.Wiring{Inputs: []string{}, Output: "A"}},
			{Opcode: "worker", Wiring: &ast.Wiring{Inputs: []string{"A"}, Output: "B"}},
		},
	}

	out, err := expander.Expand(root)
	require.NoError(t, err)

	require.Equal(t, "root/serial_0", out.StackPath)
	require.Equal(t, "root/serial_0/worker_0", out.Children[0].StackPath)
	require.Equal(t, "A#default", out.Children[0].Wiring.Output)
	require.Equal(t, "root/serial_0/worker_1", out.Children[1].StackPath)
	require.Equal(t, []string{"A"}, out.Children[1].Wiring.Inputs)
	require.Equal(t, "B#default", out.Children[1].Wiring.Output)
}

// TestExpandFanOut covers seed scenario S2.
func TestExpandFanOut(t *testing.T) {
	root := &ast.Node{
		Opcode: "fan_out",
		Params: map[string]any{"source": "users", "item_key": "uid"},
		Contents: &ast.Node{
			Opcode: "worker",
			Wiring: &ast.Wiring{Inputs: []string{"__key"}, Output: "doc"},
		},
	}

	out, err := expander.Expand(root)
	require.NoError(t, err)

	require.Equal(t, "serial", out.Opcode)
	require.Equal(t, "root/serial_0", out.StackPath)
	require.Len(t, out.Children, 2)

	init := out.Children[0]
	require.Equal(t, "iterator_init", init.Opcode)
	require.Equal(t, "users", init.Params["source"])
	require.Equal(t, "uid", init.Params["item_key"])

	iterate := out.Children[1]
	require.Equal(t, "iterate", iterate.Opcode)

	worker := iterate.Contents
	require.Equal(t, "root/serial_0/iterate_1/{$KEY}/worker_0", worker.StackPath)
	require.Equal(t, []string{"{$KEY}"}, worker.Wiring.Inputs)
	require.Equal(t, "doc#default/{$KEY}", worker.Wiring.Output)
}

// TestExpandEnsembleWithBriefing covers seed scenario S3 and the
// system-param-dominance property (spec.md section 8, property 8).
func TestExpandEnsembleWithBriefing(t *testing.T) {
	root := &ast.Node{
		Opcode: "ensemble",
		Params: map[string]any{
			"generators":   []any{"A", "B"},
			"samples":      1,
			"consolidator": "Boss",
			"briefing": map[string]any{"tone": "formal", "mode": "hacked"},
		},
		Wiring: &ast.Wiring{Output: "Idea"},
	}

	out, err := expander.Expand(root)
	require.NoError(t, err)

	require.Equal(t, "serial", out.Opcode)
	require.Len(t, out.Children, 2)

	parallel := out.Children[0]
	require.Equal(t, "parallel", parallel.Opcode)
	require.Len(t, parallel.Children, 2)

	var divergedOutputs []string

	for _, w := range parallel.Children {
		require.Equal(t, "formal", w.Params["tone"])
		require.Equal(t, "generate", w.Params["mode"])
		divergedOutputs = append(divergedOutputs, w.Wiring.Output)
	}

	require.Equal(t, []string{"_Idea#default/A/1", "_Idea#default/B/1"}, divergedOutputs)

	consolidator := out.Children[1]
	require.Equal(t, "Boss", consolidator.Params["agent"])
	require.Equal(t, "Idea#default", consolidator.Wiring.Output)
	require.Contains(t, consolidator.Wiring.Inputs, "_Idea#default/A/1")
	require.Contains(t, consolidator.Wiring.Inputs, "_Idea#default/B/1")
}

func TestExpandEnsembleMissingConsolidatorErrors(t *testing.T) {
	root := &ast.Node{
		Opcode: "ensemble",
		Params: map[string]any{"generators": []any{"A"}},
		Wiring: &ast.Wiring{Output: "Idea"},
	}

	_, err := expander.Expand(root)
	require.Error(t, err)
}

// TestExpandGenerateTeamFeedbackInputs covers seed scenario S4.
func TestExpandGenerateTeamFeedbackInputs(t *testing.T) {
	root := &ast.Node{
		Opcode: "generate_team",
		Params: map[string]any{
			"generator":  "GenA",
			"validators": []any{"ValA"},
			"loop":       3,
		},
		Wiring: &ast.Wiring{Output: "Draft"},
	}

	out, err := expander.Expand(root)
	require.NoError(t, err)

	loopNode := out.Children[0]
	require.Equal(t, "loop", loopNode.Opcode)
	require.Equal(t, 3, loopNode.Params["count"])

	iterationBody := loopNode.Contents
	generatorWorker := iterationBody.Children[0]

	require.Contains(t, generatorWorker.Wiring.Inputs, "Draft#default/v{$LOOP-1}")
	require.Contains(t, generatorWorker.Wiring.Inputs, "Draft__Review_ValA#default/v{$LOOP-1}")

	validatorParallel := iterationBody.Children[1]
	require.Equal(t, "parallel", validatorParallel.Opcode)
	require.Equal(t, "validate", validatorParallel.Children[0].Params["mode"])
	require.Equal(t, "Draft__Review_ValA#default/v{$LOOP}", validatorParallel.Children[0].Wiring.Output)
}

func TestExpandGenerateTeamMissingGeneratorErrors(t *testing.T) {
	root := &ast.Node{Opcode: "generate_team", Wiring: &ast.Wiring{Output: "Draft"}}

	_, err := expander.Expand(root)
	require.Error(t, err)
}

// TestExpandApprovalGateInjectsFeedbackAndSelfReference exercises the
// approval_gate injection rules of spec.md section 4.3.4 (points 1 and 3):
// the target generator worker picks up the approver's previous feedback and
// its own previous draft as extra inputs.
func TestExpandApprovalGateInjectsFeedbackAndSelfReference(t *testing.T) {
	root := &ast.Node{
		Opcode: "approval_gate",
		Params: map[string]any{"approver": "Judge", "target": "Draft"},
		Contents: &ast.Node{
			Opcode: "worker",
			Wiring: &ast.Wiring{Inputs: []string{"Spec"}, Output: "Draft"},
		},
	}

	out, err := expander.Expand(root)
	require.NoError(t, err)

	loopNode := out.Children[0]
	require.Equal(t, 10, loopNode.Params["count"])

	iterationBody := loopNode.Contents
	generatorWorker := iterationBody.Children[0]

	require.Contains(t, generatorWorker.Wiring.Inputs, "Draft__Review_Judge#default/v{$LOOP-1}")
	require.Contains(t, generatorWorker.Wiring.Inputs, "Draft#default/v{$LOOP-1}")

	approver := iterationBody.Children[1]
	require.Equal(t, "approver", approver.Opcode)
	require.Equal(t, "Judge", approver.Params["agent"])
	require.Equal(t, "Draft__Review_Judge#default/v{$LOOP}", approver.Wiring.Output)

	scopeResolve := out.Children[1]
	require.Equal(t, "scope_resolve", scopeResolve.Opcode)
	require.Equal(t, "Draft#default", scopeResolve.Params["map_to"])
}

// TestExpandApprovalGateFeedsBackIntoNestedGenerateTeam exercises
// approval_gate point 1 (spec.md section 4.3.4) over a generate_team leaf:
// the approver's previous feedback must reach the team's inner generator
// worker even though generate_team is excluded from point 3's
// self-reference injection (it already injects its own via
// previousSelfRef). The feedback arrives shifted one loop level, since the
// team's own loop sits inside the approval loop.
func TestExpandApprovalGateFeedsBackIntoNestedGenerateTeam(t *testing.T) {
	root := &ast.Node{
		Opcode: "approval_gate",
		Params: map[string]any{"approver": "Judge", "target": "Draft"},
		Contents: &ast.Node{
			Opcode: "generate_team",
			Params: map[string]any{"generator": "GenA", "validators": []any{"ValA"}},
			Wiring: &ast.Wiring{Output: "Draft"},
		},
	}

	out, err := expander.Expand(root)
	require.NoError(t, err)

	outerLoop := out.Children[0]
	teamSerial := outerLoop.Contents.Children[0]
	innerLoop := teamSerial.Children[0]
	generatorWorker := innerLoop.Contents.Children[0]

	require.Contains(t, generatorWorker.Wiring.Inputs, "Draft__Review_Judge#default/v{$LOOP^1-1}")
	require.Contains(t, generatorWorker.Wiring.Inputs, "Draft#default/v{$LOOP-1}")

	var selfRefCount int

	for _, in := range generatorWorker.Wiring.Inputs {
		if in == "Draft#default/v{$LOOP-1}" {
			selfRefCount++
		}
	}

	require.Equal(t, 1, selfRefCount)
}

func TestExpandApprovalGateMissingTargetErrors(t *testing.T) {
	root := &ast.Node{
		Opcode:   "approval_gate",
		Params:   map[string]any{"approver": "Judge"},
		Contents: &ast.Node{Opcode: "worker", Wiring: &ast.Wiring{Output: "Draft"}},
	}

	_, err := expander.Expand(root)
	require.Error(t, err)
}

func TestExpandMissingOpcodeErrors(t *testing.T) {
	_, err := expander.Expand(&ast.Node{})
	require.Error(t, err)
}

func TestExpandIsIdempotentOnItsOwnInput(t *testing.T) {
	root := &ast.Node{
		Opcode: "loop",
		Params: map[string]any{"count": 2},
		Contents: &ast.Node{
			Opcode: "worker",
			Wiring: &ast.Wiring{Output: "A"},
		},
	}

	first, err := expander.Expand(root)
	require.NoError(t, err)

	// Expand clones its input, so root itself must be untouched and a
	// second call over the same original root must produce an identical
	// tree (spec.md section 5, determinism/idempotence).
	second, err := expander.Expand(root)
	require.NoError(t, err)

	require.Equal(t, first.Contents.Wiring.Output, second.Contents.Wiring.Output)
	require.Equal(t, first.Contents.StackPath, second.Contents.StackPath)
}
