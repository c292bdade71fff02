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

// Package assembler implements stage 6 of the pipeline (spec.md section
// 4.6): recursive dict-to-IR construction with schema validation, grounded
// on the reference compiler's compiler/pipeline/assembler.py.
package assembler

import (
	"github.com/odl-lang/odlc/pkg/odl/ast"
	odlerr "github.com/odl-lang/odlc/pkg/odl/errors"
	"github.com/odl-lang/odlc/pkg/odl/ir"
)

// Assemble recursively builds a typed IrComponent tree from the resolved
// Node tree, assembling children and contents before constructing the
// current node (so a child's schema violation is reported before its
// parent's).
func Assemble(node *ast.Node) (*ir.IrComponent, error) {
	if node.StackPath == "" {
		return nil, odlerr.New(odlerr.Assembler, "node is missing a stack_path; expansion did not run")
	}

	opcode, ok := ir.ParseOpcode(node.Opcode)
	if !ok {
		if ast.IsSugarOpcode(node.Opcode) {
			return nil, odlerr.Newf(odlerr.Assembler,
				"unexpanded sugar opcode %q survived to assembly at %s", node.Opcode, node.StackPath)
		}

		return nil, odlerr.Newf(odlerr.Assembler, "unknown opcode %q at %s", node.Opcode, node.StackPath)
	}

	children := make([]*ir.IrComponent, len(node.Children))

	for i, child := range node.Children {
		c, err := Assemble(child)
		if err != nil {
			return nil, err
		}

		children[i] = c
	}

	var contents *ir.IrComponent

	if node.Contents != nil {
		c, err := Assemble(node.Contents)
		if err != nil {
			return nil, err
		}

		contents = c
	}

	if err := checkShape(opcode, node); err != nil {
		return nil, err
	}

	var wiring *ir.WiringObject

	if node.Wiring != nil {
		wiring = &ir.WiringObject{Inputs: append([]string{}, node.Wiring.Inputs...), Output: node.Wiring.Output}
	}

	params := node.Params
	if params == nil {
		params = map[string]any{}
	}

	return &ir.IrComponent{
		StackPath:   node.StackPath,
		Opcode:      opcode,
		Wiring:      wiring,
		Params:      params,
		Children:    children,
		Contents:    contents,
		Description: node.Description,
	}, nil
}

// checkShape rejects structurally invalid combinations the schema
// validator's dynamic typing would otherwise let through silently: a
// list-container opcode with a contents block, a block-container opcode
// with children, or an action opcode with neither input wiring declared.
func checkShape(opcode ir.Opcode, node *ast.Node) error {
	if opcode.IsListContainer() && node.Contents != nil {
		return odlerr.Newf(odlerr.Assembler, "opcode %q at %s must not declare 'contents'", node.Opcode, node.StackPath)
	}

	if opcode.IsBlockContainer() && len(node.Children) > 0 {
		return odlerr.Newf(odlerr.Assembler, "opcode %q at %s must not declare 'children'", node.Opcode, node.StackPath)
	}

	if opcode.Class() == ir.ActionClass && node.Wiring == nil {
		return odlerr.Newf(odlerr.Assembler, "action opcode %q at %s is missing its wiring block", node.Opcode, node.StackPath)
	}

	return nil
}
