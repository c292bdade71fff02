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
	"regexp"
	"strings"

	"github.com/odl-lang/odlc/pkg/odl/ast"
)

// itemBindingPattern matches an optional "<LocalName>." prefix ahead of the
// reserved "__key" suffix, e.g. "DocA.__key" (group 1 = "DocA") or bare
// "__key" (group 1 empty).
var itemBindingPattern = regexp.MustCompile(`^(?:(.*)\.)?` + regexp.QuoteMeta(ast.KeyIterationBinding) + `$`)

// walkInputs applies fn to every wiring.inputs entry in the subtree rooted
// at node, in place, recursing through children and contents.
func walkInputs(node *ast.Node, fn func(string) string) {
	if node == nil {
		return
	}

	if node.Wiring != nil && len(node.Wiring.Inputs) > 0 {
		for i, in := range node.Wiring.Inputs {
			node.Wiring.Inputs[i] = fn(in)
		}
	}

	for _, child := range node.Children {
		walkInputs(child, fn)
	}

	walkInputs(node.Contents, fn)
}

// replaceItemBindings rewrites every "<LocalName>.__key" input (or bare
// "__key") in the subtree to "<LocalName>.{$KEY}" (or bare "{$KEY}"),
// per spec.md section 4.3.4. Grounded on the reference compiler's
// _replace_item_binding_recursive: syntax validation has already confirmed
// every occurrence of "__key" is a legal binding, so a plain regex match is
// sufficient here.
func replaceItemBindings(node *ast.Node) {
	walkInputs(node, func(in string) string {
		m := itemBindingPattern.FindStringSubmatch(in)
		if m == nil {
			return in
		}

		if m[1] == "" {
			return "{$KEY}"
		}

		return m[1] + ".{$KEY}"
	})
}

// replaceSerialModifiers rewrites the serial-only reference modifiers
// "@prev" and "@history" into their dynamic system-variable forms
// "#{$PREV}" and "#{$HISTORY}" across every input in the subtree. Only
// applied under fan_out's default "serial" strategy (spec.md section
// 4.3.4); the syntax validator has already rejected these modifiers under
// "parallel" strategy.
func replaceSerialModifiers(node *ast.Node) {
	walkInputs(node, func(in string) string {
		in = strings.ReplaceAll(in, "@prev", "#{$PREV}")
		in = strings.ReplaceAll(in, "@history", "#{$HISTORY}")

		return in
	})
}

// expandFanOut desugars a fan_out node into
// serial[ iterator_init(source, item_key), iterate(strategy, contents=...) ],
// grounded on the reference compiler's _expand_fan_out.
func expandFanOut(node *ast.Node, nodeID, outputScopeID string) (*ast.Node, error) {
	source := node.StringParam("source")
	itemKey := node.StringParam("item_key")

	strategy := node.StringParam("strategy")
	if strategy == "" {
		strategy = "serial"
	}

	inner := node.Contents
	if inner == nil {
		return nil, errMissingContents("fan_out")
	}

	replaceItemBindings(inner)

	if strategy == "serial" {
		replaceSerialModifiers(inner)
	}

	iteratorInit := &ast.Node{
		StackPath: ast.StackID(nodeID, "iterator_init", 0),
		Opcode:    "iterator_init",
		Params:    map[string]any{"source": source, "item_key": itemKey},
	}

	iterID := ast.StackID(nodeID, "iterate", 1)
	iterContentBase := ast.JoinPath(iterID, "{$KEY}")
	innerScopeID := ast.JoinPath(outputScopeID, "{$KEY}")

	expandedContents, err := expand(inner, ctx{parentPath: iterContentBase, outputScopeID: innerScopeID})
	if err != nil {
		return nil, err
	}

	iterate := &ast.Node{
		StackPath: iterID,
		Opcode:    "iterate",
		Params:    map[string]any{"strategy": strategy},
		Contents:  expandedContents,
	}

	node.Opcode = "serial"
	node.Children = []*ast.Node{iteratorInit, iterate}
	node.Contents = nil

	return node, nil
}
