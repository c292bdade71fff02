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

package ast_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odl-lang/odlc/pkg/odl/ast"
)

func TestClassifyRef(t *testing.T) {
	cases := []struct {
		ref  string
		want ast.RefKind
	}{
		{"Draft", ast.RefLogical},
		{"Draft#root/serial_0", ast.RefPhysical},
		{"tools:search@v1", ast.RefExternal},
		{"{$KEY}", ast.RefDynamic},
		{"Draft#v{$LOOP}", ast.RefDynamic},
	}

	for _, c := range cases {
		require.Equal(t, c.want, ast.ClassifyRef(c.ref), c.ref)
	}
}

func TestIsPrivateName(t *testing.T) {
	require.True(t, ast.IsPrivateName("_Idea"))
	require.False(t, ast.IsPrivateName("__Review_ValA"))
	require.False(t, ast.IsPrivateName("Idea"))
}

func TestIsSystemName(t *testing.T) {
	require.True(t, ast.IsSystemName("Draft__Review_ValA"))
	require.False(t, ast.IsSystemName("_Idea"))
}

func TestValidateName(t *testing.T) {
	require.NoError(t, ast.ValidateName("Draft", false))
	require.Error(t, ast.ValidateName("", false))
	require.Error(t, ast.ValidateName("Draft/x", false))
	require.Error(t, ast.ValidateName("Draft__Review_A", false))
	require.NoError(t, ast.ValidateName("Draft__Review_A", true))
}

func TestSplitPhysical(t *testing.T) {
	name, scope, err := ast.SplitPhysical("Draft#root/serial_0")
	require.NoError(t, err)
	require.Equal(t, "Draft", name)
	require.Equal(t, "root/serial_0", scope)

	_, _, err = ast.SplitPhysical("Draft#a#b")
	require.Error(t, err)

	_, _, err = ast.SplitPhysical("#scope")
	require.Error(t, err)

	name, scope, err = ast.SplitPhysical("Draft")
	require.NoError(t, err)
	require.Equal(t, "Draft", name)
	require.Equal(t, "", scope)
}

func TestExtractLogicalName(t *testing.T) {
	require.Equal(t, "Draft", ast.ExtractLogicalName("Draft#root/serial_0"))
	require.Equal(t, "tools", ast.ExtractLogicalName("tools:search@v1"))
	require.Equal(t, "Draft", ast.ExtractLogicalName("Draft"))
}

func TestStackID(t *testing.T) {
	require.Equal(t, "root/serial_0", ast.StackID("root", "serial", 0))
	require.Equal(t, "root/serial_0/worker_1", ast.StackID("root/serial_0", "worker", 1))
}

func TestDeriveSelfOutputID(t *testing.T) {
	require.Equal(t, "Draft#default", ast.DeriveSelfOutputID("Draft", "default"))
	require.Equal(t, "Draft#default/{$KEY}", ast.DeriveSelfOutputID("Draft", "default/{$KEY}"))

	// Already-qualified outputs keep their explicit suffix and have the
	// (default-stripped) descending scope folded in underneath.
	got := ast.DeriveSelfOutputID("Draft#explicit", "v{$LOOP}")
	require.Equal(t, "Draft#explicit/v{$LOOP}", got)

	got = ast.DeriveSelfOutputID("Draft#explicit", "default")
	require.Equal(t, "Draft#explicit", got)
}

func TestCreateFeedbackID(t *testing.T) {
	require.Equal(t, "Draft__Review_ValA", ast.CreateFeedbackID("Draft", "ValA"))
	require.Equal(t, "Draft__Review_ValA#default", ast.CreateFeedbackID("Draft#default", "ValA"))
}

func TestIsReviewArtifactAndParse(t *testing.T) {
	require.True(t, ast.IsReviewArtifact("Draft__Review_ValA#default/v{$LOOP-1}"))
	require.False(t, ast.IsReviewArtifact("Draft#default"))

	target, reviewer, ok := ast.ParseReviewArtifact("Draft__Review_ValA#default")
	require.True(t, ok)
	require.Equal(t, "Draft", target)
	require.Equal(t, "ValA", reviewer)

	_, _, ok = ast.ParseReviewArtifact("Draft#default")
	require.False(t, ok)
}

func TestShiftAndUnshiftLoopDepth(t *testing.T) {
	require.Equal(t, "v{$LOOP^1}", ast.ShiftLoopDepth("v{$LOOP}"))
	require.Equal(t, "v{$LOOP^2}", ast.ShiftLoopDepth("v{$LOOP^1}"))
	require.Equal(t, "$LOOP^1-1", ast.ShiftLoopDepth("$LOOP-1"))

	require.Equal(t, "v{$LOOP}", ast.UnshiftLoopDepth("v{$LOOP^1}"))
	require.Equal(t, "v{$LOOP^1}", ast.UnshiftLoopDepth("v{$LOOP^2}"))

	// Round trip.
	s := "Draft#root/loop_0/v{$LOOP}"
	require.Equal(t, s, ast.UnshiftLoopDepth(ast.ShiftLoopDepth(s)))
}

func TestJoinPath(t *testing.T) {
	require.Equal(t, "a/b/c", ast.JoinPath("a", "b", "c"))
	require.Equal(t, "a/c", ast.JoinPath("a", "", "c"))
	require.Equal(t, "", ast.JoinPath())
}

func TestIsSugarOpcode(t *testing.T) {
	for _, op := range []string{"fan_out", "ensemble", "generate_team", "approval_gate"} {
		require.True(t, ast.IsSugarOpcode(op), op)
	}

	for _, op := range []string{"worker", "serial", "loop"} {
		require.False(t, ast.IsSugarOpcode(op), op)
	}
}
