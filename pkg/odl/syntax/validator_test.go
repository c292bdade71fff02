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

package syntax_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odl-lang/odlc/pkg/odl/ast"
	"github.com/odl-lang/odlc/pkg/odl/syntax"
)

func worker(inputs []string, output string) *ast.Node {
	return &ast.Node{Opcode: "worker", Wiring: &ast.Wiring{Inputs: inputs, Output: output}}
}

func TestValidateAcceptsWellFormedSerial(t *testing.T) {
	root := &ast.Node{
		Opcode: "serial",
		Children: []*ast.Node{
			worker([]string{}, "A"),
			worker([]string{"A"}, "B"),
		},
	}

	require.NoError(t, syntax.Validate(root))
}

func TestValidateLoopRequiresContents(t *testing.T) {
	root := &ast.Node{Opcode: "loop", Params: map[string]any{"count": 3}}

	err := syntax.Validate(root)
	require.Error(t, err)
}

func TestValidateLoopCountMustBeInt(t *testing.T) {
	root := &ast.Node{
		Opcode:   "loop",
		Params:   map[string]any{"count": "three"},
		Contents: worker(nil, "A"),
	}

	require.Error(t, syntax.Validate(root))
}

func TestValidateFanOutRequiresFields(t *testing.T) {
	root := &ast.Node{Opcode: "fan_out", Contents: worker([]string{"{$KEY}"}, "A")}

	require.Error(t, syntax.Validate(root))
}

func TestValidateWorkerRequiresWiring(t *testing.T) {
	root := &ast.Node{Opcode: "worker"}

	require.Error(t, syntax.Validate(root))
}

func TestValidateRejectsNestedFanOut(t *testing.T) {
	inner := &ast.Node{
		Opcode:   "fan_out",
		Params:   map[string]any{"source": "items", "item_key": "k"},
		Contents: worker([]string{"{$KEY}"}, "A"),
	}
	outer := &ast.Node{
		Opcode:   "fan_out",
		Params:   map[string]any{"source": "users", "item_key": "uid"},
		Contents: inner,
	}

	err := syntax.Validate(outer)
	require.Error(t, err)
	require.Contains(t, err.Error(), "nested fan_out")
}

func TestValidateRejectsParallelModifiersUnderParallelFanOut(t *testing.T) {
	root := &ast.Node{
		Opcode: "fan_out",
		Params: map[string]any{"source": "users", "item_key": "uid", "strategy": "parallel"},
		Contents: worker([]string{"Doc@prev"}, "A"),
	}

	err := syntax.Validate(root)
	require.Error(t, err)
}

func TestValidateAllowsSerialModifiersUnderSerialFanOut(t *testing.T) {
	root := &ast.Node{
		Opcode:   "fan_out",
		Params:   map[string]any{"source": "users", "item_key": "uid", "strategy": "serial"},
		Contents: worker([]string{"Doc@prev"}, "A"),
	}

	require.NoError(t, syntax.Validate(root))
}

func TestValidateOutputNameRules(t *testing.T) {
	cases := []struct {
		name    string
		output  string
		wantErr bool
	}{
		{"plain", "Draft", false},
		{"double hash", "Draft#a#b", true},
		{"forbidden char", "Dra:ft", true},
		{"system infix", "Draft__Review_A", true},
		{"leading underscore", "_Draft", true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			root := worker([]string{}, c.output)

			err := syntax.Validate(root)
			if c.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateItemBindingRules(t *testing.T) {
	require.Error(t, syntax.Validate(worker([]string{"__key"}, "A")))
	require.Error(t, syntax.Validate(worker([]string{".__key"}, "A")))
	require.NoError(t, syntax.Validate(worker([]string{"Row.__key"}, "A")))
}

func TestValidateEnsembleRejectsDuplicateGenerators(t *testing.T) {
	root := &ast.Node{
		Opcode: "ensemble",
		Params: map[string]any{"generators": []any{"A", "B", "A"}, "consolidator": "C"},
		Wiring: &ast.Wiring{Output: "Idea"},
	}

	err := syntax.Validate(root)
	require.Error(t, err)
}

func TestValidateScopeResolveRequiresFields(t *testing.T) {
	root := &ast.Node{Opcode: "scope_resolve", Params: map[string]any{"target": "Draft"}}

	require.Error(t, syntax.Validate(root))
}
