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

package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odl-lang/odlc/pkg/odl/ast"
)

// TestProcessLoopLikeUnshiftsEscapingProducedOutputs is a white-box test for
// the produced-output depth unwind spec.md section 4.4 requires when a
// block's output escapes outward across a loop boundary: a name declared
// one $LOOP level deep, seen from outside the loop, loses exactly one level
// of nesting.
func TestProcessLoopLikeUnshiftsEscapingProducedOutputs(t *testing.T) {
	node := &ast.Node{
		Opcode: "loop",
		Params: map[string]any{"count": 2},
		Contents: &ast.Node{
			Opcode: "scope_resolve",
			Params: map[string]any{"map_to": "Draft#default/v{$LOOP^1}"},
		},
	}

	produced, _, err := processNode(node, newScope(nil, false))
	require.NoError(t, err)
	require.Equal(t, []string{"Draft#default/v{$LOOP}"}, produced)
}

func TestScopeResolveAcrossLoopBoundaryShiftsLookupDepth(t *testing.T) {
	root := newScope(nil, false)
	root.declare("A", "A#default/v{$LOOP}")

	loopScope := newScope(root, true)

	ids, ok := loopScope.resolve("A")
	require.True(t, ok)
	require.Equal(t, []string{"A#default/v{$LOOP^1}"}, ids)
}

func TestScopeResolveTwoLoopBoundariesShiftsTwice(t *testing.T) {
	root := newScope(nil, false)
	root.declare("A", "A#default/v{$LOOP}")

	outer := newScope(root, true)
	inner := newScope(outer, true)

	ids, ok := inner.resolve("A")
	require.True(t, ok)
	require.Equal(t, []string{"A#default/v{$LOOP^2}"}, ids)
}

func TestScopeResolveSameLevelNoShift(t *testing.T) {
	root := newScope(nil, false)
	root.declare("A", "A#default")

	child := newScope(root, false)

	ids, ok := child.resolve("A")
	require.True(t, ok)
	require.Equal(t, []string{"A#default"}, ids)
}
