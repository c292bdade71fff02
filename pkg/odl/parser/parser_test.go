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

package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odl-lang/odlc/pkg/odl/parser"
)

func TestParseExplicitOpcodeForm(t *testing.T) {
	source := `
opcode: worker
inputs: [A]
output: B
agent: writer
`
	node, err := parser.Parse(source)
	require.NoError(t, err)
	require.Equal(t, "worker", node.Opcode)
	require.Equal(t, []string{"A"}, node.Wiring.Inputs)
	require.Equal(t, "B", node.Wiring.Output)
	require.Equal(t, "writer", node.StringParam("agent"))
}

func TestParseSingleKeyMapBodyForm(t *testing.T) {
	source := `
worker:
  inputs: [A]
  output: B
`
	node, err := parser.Parse(source)
	require.NoError(t, err)
	require.Equal(t, "worker", node.Opcode)
	require.Equal(t, []string{"A"}, node.Wiring.Inputs)
	require.Equal(t, "B", node.Wiring.Output)
}

func TestParseSingleKeyListBodyForm(t *testing.T) {
	source := `
serial:
  - worker:
      inputs: []
      output: A
  - worker:
      inputs: [A]
      output: B
`
	node, err := parser.Parse(source)
	require.NoError(t, err)
	require.Equal(t, "serial", node.Opcode)
	require.Len(t, node.Children, 2)
	require.Equal(t, "worker", node.Children[0].Opcode)
	require.Equal(t, "A", node.Children[0].Wiring.Output)
}

func TestParseSingleKeyScalarBodyForm(t *testing.T) {
	source := `
count: 3
`
	node, err := parser.Parse(source)
	require.NoError(t, err)
	require.Equal(t, "count", node.Opcode)
	require.Equal(t, uint64(3), node.Params["value"])
}

func TestParseFieldRestructuring(t *testing.T) {
	source := `
opcode: loop
count: 5
contents:
  worker:
    inputs: []
    output: A
`
	node, err := parser.Parse(source)
	require.NoError(t, err)
	require.Equal(t, uint64(5), node.Params["count"])
	require.NotNil(t, node.Contents)
	require.Equal(t, "worker", node.Contents.Opcode)
}

func TestParseMalformedSource(t *testing.T) {
	_, err := parser.Parse("key: [unterminated")
	require.Error(t, err)
}

func TestParseEmptyDocument(t *testing.T) {
	_, err := parser.Parse("")
	require.Error(t, err)
}

func TestParseRootNotAMapping(t *testing.T) {
	_, err := parser.Parse("- 1\n- 2\n")
	require.Error(t, err)
}

func TestParseAmbiguousRoot(t *testing.T) {
	_, err := parser.Parse("worker:\n  output: A\napprover:\n  output: B\n")
	require.Error(t, err)
}

func TestParseMissingOpcodeAtRoot(t *testing.T) {
	_, err := parser.Parse("foo: bar\nbaz: qux\nopcode_typo: worker\n")
	require.Error(t, err)
}

func TestParseAttachesBestEffortPositions(t *testing.T) {
	source := "serial:\n  - worker:\n      inputs: []\n      output: A\n  - worker:\n      inputs: [A]\n      output: B\n"

	node, err := parser.Parse(source)
	require.NoError(t, err)
	require.Equal(t, 1, node.Pos.Line)

	require.Greater(t, node.Children[1].Pos.Line, node.Children[0].Pos.Line)
}

func TestParseNormalizationIsIdempotent(t *testing.T) {
	source := `
opcode: serial
children:
  - opcode: worker
    wiring:
      inputs: []
      output: A
  - opcode: worker
    wiring:
      inputs: [A]
      output: B
`
	first, err := parser.Parse(source)
	require.NoError(t, err)

	stringified, err := parser.Stringify(first)
	require.NoError(t, err)

	second, err := parser.Parse(stringified)
	require.NoError(t, err)

	require.Equal(t, first.Opcode, second.Opcode)
	require.Len(t, second.Children, len(first.Children))
	require.Equal(t, first.Children[1].Wiring.Inputs, second.Children[1].Wiring.Inputs)
	require.Equal(t, first.Children[1].Wiring.Output, second.Children[1].Wiring.Output)
}
