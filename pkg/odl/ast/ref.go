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
package ast

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// sugarOpcodes are desugared away during expansion; for id-generation
// purposes each is treated as "serial" (spec.md section 4.3.1).
var sugarOpcodes = map[string]bool{
	"fan_out":       true,
	"ensemble":      true,
	"generate_team": true,
	"approval_gate": true,
}

// IsSugarOpcode reports whether opcode is one of the four surface-syntax
// opcodes the expander desugars into primitive opcodes.
func IsSugarOpcode(opcode string) bool {
	return sugarOpcodes[opcode]
}

// ReviewArtifactInfix is the system-generated infix separating a target
// artifact's logical name from the reviewing agent's name, e.g.
// "Draft__Review_ValA".
const ReviewArtifactInfix = "__Review_"

// KeyBriefing is the params key under which ensemble/generate_team accept
// per-worker parameter overrides.
const KeyBriefing = "briefing"

// KeyIterationBinding is the reserved local-binding suffix used to refer to
// the current fan_out/iterate item key, e.g. "Row.__key".
const KeyIterationBinding = "__key"

// forbiddenNameChars are the characters never permitted in a logical name.
const forbiddenNameChars = ":/{}@"

// RefKind classifies an artifact reference for resolution purposes.
type RefKind uint8

const (
	// RefLogical is an unresolved bare name, e.g. "Draft".
	RefLogical RefKind = iota
	// RefPhysical is fully qualified, e.g. "Draft#root/loop_0/v{$LOOP}".
	RefPhysical
	// RefExternal is opaque outside the compiler, e.g. "ns:Name@v1".
	RefExternal
	// RefDynamic contains a late-bound execution variable, e.g. "{$KEY}".
	RefDynamic
)

// ClassifyRef determines the reference kind of a raw string, following the
// precedence spec.md section 4.4 lays out for the resolver: dynamic beats
// external beats physical beats logical.
func ClassifyRef(ref string) RefKind {
	switch {
	case strings.Contains(ref, "$"):
		return RefDynamic
	case strings.Contains(ref, ":"):
		return RefExternal
	case strings.Contains(ref, "#"):
		return RefPhysical
	default:
		return RefLogical
	}
}

// IsPrivateName reports whether a logical name is private (leading single
// underscore, not a double-underscore system name).
func IsPrivateName(name string) bool {
	return strings.HasPrefix(name, "_") && !strings.HasPrefix(name, "__")
}

// IsSystemName reports whether a logical name carries the reserved "__"
// system infix (e.g. a review artifact).
func IsSystemName(name string) bool {
	return strings.Contains(name, "__")
}

// ValidateName checks the reserved lexical rules on a logical name (the
// part of a reference before any '#'): no forbidden characters, and -
// unless allowSystem is set - no "__" substring.  Leading underscore is
// always permitted here; callers distinguish "declared as private" from
// "illegally private" contextually (e.g. scope_resolve target names).
func ValidateName(name string, allowSystem bool) error {
	if name == "" {
		return fmt.Errorf("empty artifact name")
	}
	//
	if strings.ContainsAny(name, forbiddenNameChars) {
		return fmt.Errorf("artifact name %q contains a forbidden character", name)
	}
	//
	if !allowSystem && IsSystemName(name) {
		return fmt.Errorf("artifact name %q uses the reserved \"__\" infix", name)
	}
	//
	return nil
}

// SplitPhysical splits a physical reference "Name#Scope" into its two
// halves, validating that '#' appears at most once and that neither side is
// empty (spec.md section 4.2, "Lexical rules on output").
func SplitPhysical(ref string) (name, scope string, err error) {
	parts := strings.Split(ref, "#")
	//
	switch len(parts) {
	case 1:
		return parts[0], "", nil
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return "", "", fmt.Errorf("reference %q has an empty side of '#'", ref)
		}
		//
		return parts[0], parts[1], nil
	default:
		return "", "", fmt.Errorf("reference %q contains more than one '#'", ref)
	}
}

// ExtractLogicalName returns the bare logical-name portion of any reference
// form: the text before the first '#' (physical), before the first ':'
// (external), or the whole string (logical/dynamic).
func ExtractLogicalName(ref string) string {
	if i := strings.IndexAny(ref, "#:"); i >= 0 {
		return ref[:i]
	}
	//
	return ref
}

// JoinPath concatenates path segments with '/', skipping empty segments.
func JoinPath(segments ...string) string {
	parts := make([]string, 0, len(segments))
	//
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	//
	return strings.Join(parts, "/")
}

// StackID computes a node's deterministic stack_path as
// "{parentPath}/{opcode}_{siblingIndex}" (spec.md section 4.3.1).
func StackID(parentPath, opcode string, siblingIndex int) string {
	return JoinPath(parentPath, fmt.Sprintf("%s_%d", opcode, siblingIndex))
}

// stripDefaultScope drops a leading "default" scope segment: the root
// scope's name carries no information worth keeping once an output is
// already qualified under it, so appending further nested segments (e.g. a
// loop's "v{$LOOP}") shouldn't drag "default/" along for the ride.
func stripDefaultScope(scopeID string) string {
	if scopeID == "default" {
		return ""
	}
	//
	if rest, ok := strings.CutPrefix(scopeID, "default/"); ok {
		return rest
	}
	//
	return scopeID
}

// appendSuffix joins an additional scope suffix onto a reference: under an
// existing '#' it is appended with '/', otherwise it becomes the '#'
// qualifier itself.
func appendSuffix(base, suffix string) string {
	if suffix == "" {
		return base
	}
	//
	if strings.Contains(base, "#") {
		return base + "/" + suffix
	}
	//
	return base + "#" + suffix
}

// DeriveSelfOutputID qualifies an output reference against the enclosing
// scope id (spec.md section 4.3.2): an unqualified name becomes
// "Name#scopeID"; a name already physical ("Name#explicit") keeps its
// explicit suffix and instead has the (default-stripped) scope id appended
// as a further '/'-separated segment underneath it, so that loop/iterate
// scope descent folds its dynamic "v{$LOOP}" / "{$KEY}" segment in rather
// than discarding the caller's explicit qualifier.
func DeriveSelfOutputID(name, scopeID string) string {
	if strings.Contains(name, "#") {
		return appendSuffix(name, stripDefaultScope(scopeID))
	}
	//
	return name + "#" + scopeID
}

// QualifyOutput is an alias for DeriveSelfOutputID: the two operations share
// one implementation in the reference compiler (_derive_self_output_id),
// used both for a node's first-time output normalization and for
// synthesizing a self-reference to a node's own prior output.
func QualifyOutput(name, scopeID string) string {
	return DeriveSelfOutputID(name, scopeID)
}

// CreateFeedbackID builds a review artifact's id for a given target and
// reviewer. An unqualified target yields "Draft__Review_ValA"; a qualified
// one, "Draft#scope/..." yields "Draft__Review_ValA#scope/..." - the review
// infix is inserted before the '#', not after it, so the artifact still
// carries the target's own scope.
func CreateFeedbackID(target, reviewer string) string {
	if name, scope, ok := strings.Cut(target, "#"); ok {
		return name + ReviewArtifactInfix + reviewer + "#" + scope
	}
	//
	return target + ReviewArtifactInfix + reviewer
}

// IsReviewArtifact reports whether a logical name carries the review
// infix.
func IsReviewArtifact(id string) bool {
	return strings.Contains(ExtractLogicalName(id), ReviewArtifactInfix)
}

// ParseReviewArtifact splits a review artifact's logical name into its
// target and reviewer halves.  Returns ok=false if id is not a review
// artifact.
func ParseReviewArtifact(id string) (target, reviewer string, ok bool) {
	logical := ExtractLogicalName(id)
	idx := strings.Index(logical, ReviewArtifactInfix)
	//
	if idx < 0 {
		return "", "", false
	}
	//
	return logical[:idx], logical[idx+len(ReviewArtifactInfix):], true
}

// shiftPattern matches a bare "$LOOP" or a depth-suffixed "$LOOP^k", with no
// lookahead excluding what follows: it matches equally inside "$LOOP-1" (the
// previous-iteration marker), shifting only the "$LOOP" portion and leaving
// the "-1" suffix appended after it (e.g. "$LOOP-1" -> "$LOOP^1-1" one level
// down). This mirrors the reference implementation's regex exactly; see
// DESIGN.md for the reasoning.
var shiftPattern = regexp.MustCompile(`\$LOOP(?:\^(\d+))?`)

// ShiftLoopDepth rewrites every $LOOP / $LOOP^k occurrence in s one level
// deeper: "$LOOP" becomes "$LOOP^1", and "$LOOP^k" becomes "$LOOP^(k+1)"
// (spec.md section 4.3.3).
func ShiftLoopDepth(s string) string {
	return shiftPattern.ReplaceAllStringFunc(s, func(m string) string {
		sub := shiftPattern.FindStringSubmatch(m)
		//
		depth := 0
		if sub[1] != "" {
			depth, _ = strconv.Atoi(sub[1])
		}
		//
		return fmt.Sprintf("$LOOP^%d", depth+1)
	})
}

// unshiftPattern matches only depth-suffixed tokens: unshifting a bare
// "$LOOP" (depth 0) would be an escape past the outermost loop, which never
// legitimately occurs.
var unshiftPattern = regexp.MustCompile(`\$LOOP\^(\d+)`)

// UnshiftLoopDepth is the inverse of ShiftLoopDepth: "$LOOP^1" becomes
// "$LOOP", and "$LOOP^k" (k>1) becomes "$LOOP^(k-1)".  Used when a
// loop/iterate scope's produced output escapes outward past its own
// boundary (spec.md section 4.4).
func UnshiftLoopDepth(s string) string {
	return unshiftPattern.ReplaceAllStringFunc(s, func(m string) string {
		sub := unshiftPattern.FindStringSubmatch(m)
		k, _ := strconv.Atoi(sub[1])
		//
		if k <= 1 {
			return "$LOOP"
		}
		//
		return fmt.Sprintf("$LOOP^%d", k-1)
	})
}
