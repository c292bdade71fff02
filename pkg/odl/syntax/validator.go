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

// Package syntax implements stage 2 of the pipeline: purely structural,
// identifier-agnostic well-formedness checks over the parsed Node tree
// (spec.md section 4.2).  Validation is a pre-order tree walk; the first
// violation encountered is returned.
package syntax

import (
	"strings"

	"github.com/odl-lang/odlc/pkg/odl/ast"
	odlerr "github.com/odl-lang/odlc/pkg/odl/errors"
)

var serialOnlyModifiers = []string{"@prev", "@history"}

const itemBindingSuffix = "." + ast.KeyIterationBinding

// context carries the ancestor opcode chain and whether the walk is
// currently inside a parallel-strategy fan_out, mirroring the Python
// reference's parent_opcodes/inside_parallel_fanout parameters.
type context struct {
	ancestors          []string
	insideParallelFan bool
}

// Validate walks the tree rooted at node, applying every structural and
// contextual rule from spec.md section 4.2.
func Validate(node *ast.Node) error {
	return validate(node, context{})
}

func validate(node *ast.Node, ctx context) error {
	opcode := node.Opcode

	if err := checkNesting(opcode, ctx); err != nil {
		return err
	}

	if ctx.insideParallelFan && node.Wiring != nil {
		if err := checkParallelModifiers(node.Wiring.Inputs); err != nil {
			return err
		}
	}

	if err := checkOpcodeRequirements(node); err != nil {
		return err
	}

	if node.Wiring != nil && node.Wiring.Output != "" {
		if err := validateOutputName(node.Wiring.Output); err != nil {
			return err
		}
	}

	if opcode == "scope_resolve" {
		if mapTo := node.StringParam("map_to"); mapTo != "" {
			if err := validateOutputName(mapTo); err != nil {
				return err
			}
		}
	}

	if node.Wiring != nil {
		if err := checkInputBindings(node.Wiring.Inputs); err != nil {
			return err
		}
	}

	nextCtx := context{
		ancestors:          append(append([]string{}, ctx.ancestors...), opcode),
		insideParallelFan: ctx.insideParallelFan,
	}

	if opcode == "fan_out" {
		strategy := node.StringParam("strategy")
		if strategy == "" {
			strategy = "serial"
		}

		if strategy == "parallel" {
			nextCtx.insideParallelFan = true
		}
	}

	for _, child := range node.Children {
		if err := validate(child, nextCtx); err != nil {
			return err
		}
	}

	if node.Contents != nil {
		if err := validate(node.Contents, nextCtx); err != nil {
			return err
		}
	}

	return nil
}

func checkNesting(opcode string, ctx context) error {
	if opcode != "fan_out" {
		return nil
	}

	for _, a := range ctx.ancestors {
		if a == "fan_out" {
			return odlerr.Newf(odlerr.SyntaxRule, "nested fan_out is not allowed (found inside: %v)", ctx.ancestors)
		}
	}

	return nil
}

func checkParallelModifiers(inputs []string) error {
	for _, inp := range inputs {
		for _, modifier := range serialOnlyModifiers {
			if strings.Contains(inp, modifier) {
				return odlerr.Newf(odlerr.SyntaxRule,
					"invalid modifier %q in inputs under a parallel-strategy fan_out; only valid under strategy: serial", modifier)
			}
		}
	}

	return nil
}

func checkOpcodeRequirements(node *ast.Node) error {
	switch node.Opcode {
	case "loop":
		if node.Contents == nil {
			return odlerr.New(odlerr.SyntaxRule, "missing required field 'contents' for opcode 'loop'")
		}

		if v, ok := node.Param("count"); ok && v != nil {
			switch v.(type) {
			case int, int64, uint, uint64:
			default:
				return odlerr.Newf(odlerr.SyntaxRule, "loop 'count' must be an integer, got %T", v)
			}
		}
	case "fan_out":
		for _, field := range []string{"source", "item_key"} {
			if _, ok := node.Param(field); !ok {
				return odlerr.Newf(odlerr.SyntaxRule, "missing required field %q for opcode 'fan_out'", field)
			}
		}

		if node.Contents == nil {
			return odlerr.New(odlerr.SyntaxRule, "missing required field 'contents' for opcode 'fan_out'")
		}
	case "worker":
		if node.Wiring == nil {
			return odlerr.New(odlerr.SyntaxRule, "missing or empty 'wiring' block for worker")
		}

		if node.Wiring.Inputs == nil {
			return odlerr.New(odlerr.SyntaxRule, "worker must declare 'wiring.inputs'")
		}

		if node.Wiring.Output == "" {
			return odlerr.New(odlerr.SyntaxRule, "worker must declare 'wiring.output'")
		}
	case "ensemble":
		if v, ok := node.Param("generators"); ok {
			if list, ok := v.([]any); ok {
				seen := make(map[string]bool, len(list))

				for _, g := range list {
					s, _ := g.(string)

					if seen[s] {
						return odlerr.Newf(odlerr.SyntaxRule, "duplicate generator agent id %q in ensemble", s)
					}

					seen[s] = true
				}
			}
		}
	case "iterator_init":
		for _, field := range []string{"source", "item_key"} {
			if _, ok := node.Param(field); !ok {
				return odlerr.Newf(odlerr.SyntaxRule, "missing required field %q for opcode 'iterator_init'", field)
			}
		}
	case "scope_resolve":
		for _, field := range []string{"target", "from_scope", "strategy", "map_to"} {
			if _, ok := node.Param(field); !ok {
				return odlerr.Newf(odlerr.SyntaxRule, "missing required field %q for opcode 'scope_resolve'", field)
			}
		}
	}

	return nil
}

func validateOutputName(name string) error {
	logical, scope, err := ast.SplitPhysical(name)
	if err != nil {
		return odlerr.Newf(odlerr.SyntaxRule, "invalid output name %q: %s", name, err.Error())
	}

	_ = scope

	if ast.IsSystemName(logical) {
		return odlerr.Newf(odlerr.SyntaxRule, "invalid output name %q: names containing '__' are reserved for system use", name)
	}

	if strings.HasPrefix(logical, "_") {
		return odlerr.Newf(odlerr.SyntaxRule, "invalid output name %q: names starting with '_' are reserved for private artifacts", name)
	}

	if err := ast.ValidateName(logical, false); err != nil {
		return odlerr.Newf(odlerr.SyntaxRule, "invalid output name %q: %s", name, err.Error())
	}

	return nil
}

func checkInputBindings(inputs []string) error {
	for _, inp := range inputs {
		if inp == ast.KeyIterationBinding {
			return odlerr.Newf(odlerr.SyntaxRule,
				"invalid item binding '%s'; it must be qualified with a local name (e.g. 'Doc.%s')",
				ast.KeyIterationBinding, ast.KeyIterationBinding)
		}

		if strings.HasSuffix(inp, itemBindingSuffix) {
			prefix := strings.TrimSuffix(inp, itemBindingSuffix)

			if prefix == "" {
				return odlerr.Newf(odlerr.SyntaxRule, "invalid item binding %q: local name cannot be empty", inp)
			}

			if strings.ContainsAny(prefix, ":/{}@") {
				return odlerr.Newf(odlerr.SyntaxRule,
					"invalid local name in item binding %q: characters ':','/','{','}','@' are forbidden", inp)
			}
		}
	}

	return nil
}
