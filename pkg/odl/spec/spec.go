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

// Package spec implements the auxiliary "Spec" YAML round-trip shape used by
// fixtures and golden tests: a single-key {opcode: body} wrapping of an
// IrComponent tree, with reserved fields lifted out of a flattened params
// bag. Grounded on the reference compiler's utils.py
// (load_ir_from_spec/dump_ir_to_spec).
package spec

import (
	"fmt"
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/odl-lang/odlc/pkg/odl/ir"
)

// reservedKeys names the Spec-shape body fields that are never treated as
// params: they carry structural or wiring meaning of their own.
var reservedKeys = map[string]bool{
	"stack_path":  true,
	"children":    true,
	"contents":    true,
	"inputs":      true,
	"output":      true,
	"description": true,
}

// LoadIrFromSpec parses a Spec-shape YAML document into an IrComponent tree.
// The root may be a single-key mapping or a one-element list wrapping one
// (both forms appear in the fixture corpus).
func LoadIrFromSpec(yamlStr string) (*ir.IrComponent, error) {
	var data any

	if err := yaml.Unmarshal([]byte(yamlStr), &data); err != nil {
		return nil, fmt.Errorf("spec: invalid YAML: %w", err)
	}

	if data == nil {
		return nil, fmt.Errorf("spec: empty YAML document")
	}

	if list, ok := data.([]any); ok {
		if len(list) != 1 {
			return nil, fmt.Errorf("spec: root YAML list must contain exactly one element, got %d", len(list))
		}

		data = list[0]
	}

	node, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("spec: root document must be a mapping")
	}

	return dictToIR(node)
}

// dictToIR converts a single {opcode: body} mapping into an IrComponent,
// recursing into children/contents.
func dictToIR(data map[string]any) (*ir.IrComponent, error) {
	if len(data) != 1 {
		return nil, fmt.Errorf("spec: invalid node structure, expected a single opcode key, got %d keys", len(data))
	}

	var opcodeStr string

	var body map[string]any

	for k, v := range data {
		opcodeStr = k

		b, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("spec: node body for %q must be a mapping", k)
		}

		body = b
	}

	stackPath, ok := body["stack_path"].(string)
	if !ok || stackPath == "" {
		return nil, fmt.Errorf("spec: missing 'stack_path' in node %q", opcodeStr)
	}

	var children []*ir.IrComponent

	if raw, ok := body["children"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("spec: 'children' of node %q must be a list", opcodeStr)
		}

		for _, c := range list {
			cm, ok := c.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("spec: child of node %q must be a mapping", opcodeStr)
			}

			child, err := dictToIR(cm)
			if err != nil {
				return nil, err
			}

			children = append(children, child)
		}
	}

	var contents *ir.IrComponent

	if raw, ok := body["contents"]; ok {
		cm, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("spec: 'contents' of node %q must be a mapping", opcodeStr)
		}

		c, err := dictToIR(cm)
		if err != nil {
			return nil, err
		}

		contents = c
	}

	var wiring *ir.WiringObject

	inputs := stringList(body["inputs"])
	output, _ := body["output"].(string)

	if len(inputs) > 0 || output != "" {
		wiring = &ir.WiringObject{Inputs: inputs, Output: output}
	}

	params := map[string]any{}

	for k, v := range body {
		if !reservedKeys[k] {
			params[k] = v
		}
	}

	opcode, ok := ir.ParseOpcode(opcodeStr)
	if !ok {
		return nil, fmt.Errorf("spec: unknown opcode %q", opcodeStr)
	}

	description, _ := body["description"].(string)

	return &ir.IrComponent{
		StackPath:   stackPath,
		Opcode:      opcode,
		Wiring:      wiring,
		Params:      params,
		Children:    children,
		Contents:    contents,
		Description: description,
	}, nil
}

func stringList(raw any) []string {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(list))

	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}

	return out
}

// DumpIrToSpec renders component as a Spec-shape YAML document: a
// single-key {opcode: body} mapping per node, with stack_path first, then
// flattened params, then flattened inputs/output, then children/contents -
// in that order, so round-tripped fixtures diff cleanly against hand-written
// ones.
func DumpIrToSpec(component *ir.IrComponent) (string, error) {
	out, err := yaml.MarshalWithOptions(irToMapSlice(component), yaml.UseLiteralStyleIfMultiline(true))
	if err != nil {
		return "", fmt.Errorf("spec: encoding failed: %w", err)
	}

	return string(out), nil
}

// irToMapSlice converts component into an order-preserving yaml.MapSlice
// tree (plain maps would lose the stack_path-first field ordering, since Go
// map iteration order is unspecified).
func irToMapSlice(component *ir.IrComponent) yaml.MapSlice {
	body := yaml.MapSlice{
		{Key: "stack_path", Value: component.StackPath},
	}

	for _, k := range sortedParamKeys(component.Params) {
		body = append(body, yaml.MapItem{Key: k, Value: component.Params[k]})
	}

	if component.Wiring != nil {
		if len(component.Wiring.Inputs) > 0 {
			body = append(body, yaml.MapItem{Key: "inputs", Value: component.Wiring.Inputs})
		}

		if component.Wiring.Output != "" {
			body = append(body, yaml.MapItem{Key: "output", Value: component.Wiring.Output})
		}
	}

	if component.Description != "" {
		body = append(body, yaml.MapItem{Key: "description", Value: component.Description})
	}

	if len(component.Children) > 0 {
		children := make([]yaml.MapSlice, len(component.Children))
		for i, c := range component.Children {
			children[i] = irToMapSlice(c)
		}

		body = append(body, yaml.MapItem{Key: "children", Value: children})
	}

	if component.Contents != nil {
		body = append(body, yaml.MapItem{Key: "contents", Value: irToMapSlice(component.Contents)})
	}

	return yaml.MapSlice{{Key: component.Opcode.String(), Value: body}}
}

// sortedParamKeys returns params' keys in a stable order. The reference
// implementation preserves Python dict insertion order; Go's map has none,
// so alphabetical order is the closest deterministic substitute (spec.md's
// determinism requirement binds the IR tree shape, not the convenience
// serialization's key order).
func sortedParamKeys(params map[string]any) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
