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

// mergeBriefing computes a synthesized worker's effective params, per
// spec.md section 4.3.5: global_briefing union agent_specific_briefing union
// system_params, later terms winning. A briefing key is global unless it
// equals agentName, in which case it is the agent-specific overlay (and,
// being a map, is merged key-by-key rather than wholesale). systemOverrides
// (agent, mode) always win, even if the user's briefing attempts to set
// those keys itself - this is a deliberate security invariant, not an
// oversight.
func mergeBriefing(briefing map[string]any, agentName string, systemOverrides map[string]any) map[string]any {
	out := map[string]any{}

	for k, v := range briefing {
		if k == agentName {
			continue
		}

		out[k] = v
	}

	if a, ok := asParamsMap(briefing[agentName]); ok {
		for k, v := range a {
			out[k] = v
		}
	}

	for k, v := range systemOverrides {
		out[k] = v
	}

	return out
}

func asParamsMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)

	return m, ok
}

// briefingParam extracts params.briefing from a sugar node as a map, or an
// empty map if absent/malformed.
func briefingParam(node *ast.Node) map[string]any {
	v, ok := node.Param(ast.KeyBriefing)
	if !ok {
		return map[string]any{}
	}

	m, ok := asParamsMap(v)
	if !ok {
		return map[string]any{}
	}

	return m
}
