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

package assembler

import (
	"github.com/google/jsonschema-go/jsonschema"

	odlerr "github.com/odl-lang/odlc/pkg/odl/errors"
	"github.com/odl-lang/odlc/pkg/odl/ir"
)

// reservedBodySchema describes the reserved-key shape every node's Spec-form
// body carries (spec.md section 6, auxiliary API: "Reserved keys:
// stack_path, children, contents, inputs, output, description"). Modeled on
// MacroPower-x's magicschema package, the pack's only jsonschema-go user:
// a *jsonschema.Schema built as a Go literal and validated against a generic
// map[string]any instance, rather than reflected from a struct.
var reservedBodySchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"stack_path":  {Type: "string"},
		"children":    {Type: "array"},
		"contents":    {Type: "object"},
		"inputs":      {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
		"output":      {Type: "string"},
		"description": {Type: "string"},
	},
	Required: []string{"stack_path"},
	// Every other key is opcode-specific params, which this schema
	// deliberately leaves open (true-schema additionalProperties, per
	// magicschema's helpers.TrueSchema pattern).
	AdditionalProperties: trueSchema(),
}

func trueSchema() *jsonschema.Schema {
	return &jsonschema.Schema{}
}

// ValidateIrSchema is the auxiliary, non-gating sanity check named in
// SPEC_FULL.md section 2's domain-stack table: it checks that every node in
// an assembled IR tree carries the reserved-key shape the Spec round-trip
// form (spec.md section 6) requires. It is never called from Compile/Assemble
// itself - a schema defect here is a serialization-surface bug, not an IR
// correctness one - and is exercised only by this package's own tests.
func ValidateIrSchema(root *ir.IrComponent) error {
	resolved, err := reservedBodySchema.Resolve(nil)
	if err != nil {
		return odlerr.Newf(odlerr.Assembler, "internal schema error: %s", err.Error())
	}

	var walkErr error

	root.Walk(func(c *ir.IrComponent) {
		if walkErr != nil {
			return
		}

		if verr := resolved.Validate(bodyInstance(c)); verr != nil {
			walkErr = odlerr.Newf(odlerr.Assembler, "node %s failed schema validation: %s", c.StackPath, verr.Error())
		}
	})

	return walkErr
}

// bodyInstance renders component's reserved fields as the generic
// map[string]any instance reservedBodySchema validates against.
func bodyInstance(c *ir.IrComponent) map[string]any {
	body := map[string]any{"stack_path": c.StackPath}

	if c.Wiring != nil {
		if len(c.Wiring.Inputs) > 0 {
			body["inputs"] = c.Wiring.Inputs
		}

		if c.Wiring.Output != "" {
			body["output"] = c.Wiring.Output
		}
	}

	if c.Description != "" {
		body["description"] = c.Description
	}

	if len(c.Children) > 0 {
		body["children"] = c.Children
	}

	if c.Contents != nil {
		body["contents"] = c.Contents
	}

	return body
}
