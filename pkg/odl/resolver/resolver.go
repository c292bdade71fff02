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
	"strings"

	"github.com/odl-lang/odlc/pkg/odl/ast"
	odlerr "github.com/odl-lang/odlc/pkg/odl/errors"
)

// Resolve runs stage 4 over the post-expansion tree rooted at node, mutating
// every wiring.inputs entry into its resolved physical (or intentionally
// unresolved dynamic/external/literal) form in place. Equivalent to
// ResolveStrict(node, false).
func Resolve(node *ast.Node) error {
	return ResolveStrict(node, false)
}

// ResolveStrict is Resolve with the --strict CLI behavior (SPEC_FULL.md
// section 4): when strict is set, a scope-chain miss on a logical or
// explicitly-qualified reference is reported here, as a Resolver-stage
// error, instead of being passed through unchanged for the wiring
// validator to catch as "Undefined Artifact ID" (spec.md section 9, Open
// Question 3). Non-strict behavior is unchanged from spec.md.
func ResolveStrict(node *ast.Node, strict bool) error {
	root := newScope(nil, false)
	root.strict = strict

	_, _, err := processNode(node, root)

	return err
}

// processNode resolves node's own references against sc, recurses into its
// children/contents per its opcode's scoping discipline, and returns the
// artifact ids it produces (for its parent/siblings to see) along with the
// external references consumed anywhere in its subtree (for an ancestor
// serial's approval-gate injection to draw on).
func processNode(node *ast.Node, sc *scope) (produced, consumedExternals []string, err error) {
	switch node.Opcode {
	case "serial":
		return processSerial(node, sc)
	case "parallel":
		return processParallel(node, sc)
	case "loop", "iterate":
		return processLoopLike(node, sc)
	case "iterator_init":
		return processIteratorInit(node, sc)
	case "scope_resolve":
		return processScopeResolve(node, sc)
	default:
		return processLeaf(node, sc)
	}
}

// processLeaf handles worker/dialogue/approver: every declared input is
// resolved and may expand into multiple physical ids (Deep Collection);
// the node's own declared output (already physical, from expansion) is its
// sole produced artifact.
func processLeaf(node *ast.Node, sc *scope) (produced, consumedExternals []string, err error) {
	if node.Wiring != nil && len(node.Wiring.Inputs) > 0 {
		resolved := make([]string, 0, len(node.Wiring.Inputs))

		for _, in := range node.Wiring.Inputs {
			ids, rerr := resolveRef(in, sc)
			if rerr != nil {
				return nil, nil, rerr
			}

			resolved = append(resolved, ids...)

			for _, id := range ids {
				if isExternalRef(id) {
					consumedExternals = appendUnique(consumedExternals, id)
				}
			}
		}

		node.Wiring.Inputs = resolved
	}

	if node.Wiring != nil && node.Wiring.Output != "" {
		produced = append(produced, node.Wiring.Output)
	}

	return produced, consumedExternals, nil
}

// processSerial creates an inner (non-loop) scope, processes children in
// declaration order with each seeing the declared outputs of earlier
// siblings, retroactively injects context-carry/audit-trail inputs into any
// approver child, and returns only the block's non-private produced
// outputs to its own parent.
func processSerial(node *ast.Node, sc *scope) (produced, consumedExternals []string, err error) {
	inner := newScope(sc, false)

	type childResult struct {
		node              *ast.Node
		produced          []string
		consumedExternals []string
	}

	results := make([]childResult, len(node.Children))

	for i, child := range node.Children {
		p, c, cerr := processNode(child, inner)
		if cerr != nil {
			return nil, nil, cerr
		}

		for _, out := range p {
			inner.declare(ast.ExtractLogicalName(out), out)
		}

		results[i] = childResult{node: child, produced: p, consumedExternals: c}
	}

	var allExternals []string

	for _, r := range results {
		for _, e := range r.consumedExternals {
			allExternals = appendUnique(allExternals, e)
			consumedExternals = appendUnique(consumedExternals, e)
		}
	}

	for i, r := range results {
		if r.node.Opcode != "approver" {
			continue
		}

		var auditTrail []string

		for j := 0; j < i; j++ {
			auditTrail = append(auditTrail, results[j].produced...)
		}

		injectApproverWiring(r.node, allExternals, auditTrail)
	}

	for _, r := range results {
		for _, out := range r.produced {
			if !ast.IsPrivateName(ast.ExtractLogicalName(out)) {
				produced = append(produced, out)
			}
		}
	}

	return produced, consumedExternals, nil
}

// injectApproverWiring appends the context-carry externals (filtered) and
// the audit-trail internal artifacts (filtered) to an approver node's
// existing inputs, skipping anything already present (spec.md section 4.4,
// "Approval-gate wiring injection").
func injectApproverWiring(approver *ast.Node, externals, auditTrail []string) {
	if approver.Wiring == nil {
		approver.Wiring = &ast.Wiring{}
	}

	for _, ext := range externals {
		local := ast.ExtractLogicalName(ext)

		if ast.IsPrivateName(local) || strings.Contains(ext, "$LOOP") || ast.IsReviewArtifact(ext) {
			continue
		}

		approver.Wiring.Inputs = appendUniqueInput(approver.Wiring.Inputs, ext)
	}

	for _, artifact := range auditTrail {
		if ast.IsSystemName(ast.ExtractLogicalName(artifact)) {
			continue
		}

		approver.Wiring.Inputs = appendUniqueInput(approver.Wiring.Inputs, artifact)
	}
}

// processParallel processes every child against the same outer-derived
// scope, so siblings are mutually invisible; the union of all their produced
// outputs goes to the parent (private ones are stripped by the enclosing
// serial block).
func processParallel(node *ast.Node, sc *scope) (produced, consumedExternals []string, err error) {
	shared := newScope(sc, false)

	for _, child := range node.Children {
		p, c, cerr := processNode(child, shared)
		if cerr != nil {
			return nil, nil, cerr
		}

		produced = append(produced, p...)

		for _, e := range c {
			consumedExternals = appendUnique(consumedExternals, e)
		}
	}

	return produced, consumedExternals, nil
}

// processLoopLike handles both loop and iterate: contents are processed
// against a fresh loop-boundary scope, and any output escaping outward has
// its loop depth unshifted - a no-op for iterate's $KEY-scoped outputs,
// which contain no $LOOP token to unwind.
func processLoopLike(node *ast.Node, sc *scope) (produced, consumedExternals []string, err error) {
	inner := newScope(sc, true)

	if node.Contents == nil {
		return nil, nil, odlerr.Newf(odlerr.Resolver, "opcode %q has no contents to resolve", node.Opcode)
	}

	p, c, cerr := processNode(node.Contents, inner)
	if cerr != nil {
		return nil, nil, cerr
	}

	for _, out := range p {
		if !ast.IsPrivateName(ast.ExtractLogicalName(out)) {
			produced = append(produced, ast.UnshiftLoopDepth(out))
		}
	}

	return produced, c, nil
}

// processIteratorInit resolves its single params.source reference in place;
// it produces no artifact of its own.
func processIteratorInit(node *ast.Node, sc *scope) (produced, consumedExternals []string, err error) {
	source := node.StringParam("source")
	if source == "" {
		return nil, nil, nil
	}

	ids, rerr := resolveRef(source, sc)
	if rerr != nil {
		return nil, nil, rerr
	}

	if len(ids) > 0 {
		node.Params["source"] = ids[0]
	}

	for _, id := range ids {
		if isExternalRef(id) {
			consumedExternals = appendUnique(consumedExternals, id)
		}
	}

	return nil, consumedExternals, nil
}

// processScopeResolve contributes its already-physical params.map_to as a
// produced output of its enclosing block, per spec.md section 4.4.
func processScopeResolve(node *ast.Node, sc *scope) (produced, consumedExternals []string, err error) {
	mapTo := node.StringParam("map_to")
	if mapTo == "" {
		return nil, nil, odlerr.New(odlerr.Resolver, "scope_resolve is missing required field 'map_to'")
	}

	return []string{mapTo}, nil, nil
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}

	return append(list, v)
}

func appendUniqueInput(inputs []string, v string) []string {
	return appendUnique(inputs, v)
}
