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

// Package parser implements stage 1 of the pipeline: deserializing ODL
// source text into the normalized pre-assembly Node shape (spec.md section
// 4.1).  Deserialization goes through goccy/go-yaml's plain Unmarshal path,
// which (unlike a full YAML loader) never constructs arbitrary Go values
// from document tags, satisfying the "safe deserializer only" requirement.
package parser

import (
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/odl-lang/odlc/pkg/odl/ast"
	odlerr "github.com/odl-lang/odlc/pkg/odl/errors"
)

// structuralKeys are left untouched by field restructuring.
var structuralKeys = map[string]bool{
	"stack_path":  true,
	"opcode":      true,
	"children":    true,
	"contents":    true,
	"description": true,
	"params":      true,
	"wiring":      true,
}

// wiringBucketKeys are hoisted into the wiring sub-mapping.
var wiringBucketKeys = map[string]bool{
	"inputs": true,
	"output": true,
}

// rawParamsKey holds a single-key-with-scalar-body node's raw scalar value
// (e.g. "{count: 3}" parses to opcode "count" with Params["value"] = 3),
// since Node's Params is a mapping and a bare scalar has no field name of
// its own.
const rawParamsKey = "value"

// Parse deserializes raw ODL source text into a normalized Node tree
// (spec.md section 4.1).  It fails with a Parser-stage error if the text is
// malformed, if the document root is not a mapping, or if the root mapping
// has no discoverable opcode.
func Parse(source string) (*ast.Node, error) {
	var raw any

	if err := yaml.Unmarshal([]byte(source), &raw); err != nil {
		return nil, odlerr.Newf(odlerr.Parser, "malformed source text: %s", err.Error())
	}

	if raw == nil {
		return nil, odlerr.New(odlerr.Parser, "empty source document")
	}

	root, ok := asMap(raw)
	if !ok {
		return nil, odlerr.New(odlerr.Parser, "root of document must be a mapping")
	}

	node, err := normalize(root)
	if err != nil {
		return nil, err
	}

	if node.Opcode == "" {
		return nil, odlerr.Newf(odlerr.Parser, "missing 'opcode' field at root (found keys: %v)", mapKeys(root))
	}

	attachPositions(node, source)

	return node, nil
}

// normalize implements the four accepted surface forms described in spec.md
// section 4.1 and the parser's original reference implementation: explicit
// opcode, single-key-with-map-body (merge), single-key-with-list-body
// (children), and single-key-with-scalar-body (raw params).
func normalize(raw map[string]any) (*ast.Node, error) {
	var body map[string]any

	if _, hasOpcode := raw["opcode"]; hasOpcode {
		body = raw
	} else if len(raw) == 1 {
		var opcodeKey string
		var rawBody any

		for k, v := range raw {
			opcodeKey, rawBody = k, v
		}

		switch b := rawBody.(type) {
		case []any:
			body = map[string]any{"opcode": opcodeKey, "children": b}
		case map[string]any:
			merged := make(map[string]any, len(b)+1)
			for k, v := range b {
				merged[k] = v
			}
			merged["opcode"] = opcodeKey
			body = merged
		case nil:
			body = map[string]any{"opcode": opcodeKey}
		default:
			body = map[string]any{"opcode": opcodeKey, "params": b}
		}
	} else {
		return nil, odlerr.Newf(odlerr.Parser,
			"ambiguous node: multiple keys %v and no explicit 'opcode' field", mapKeys(raw))
	}

	return buildNode(body)
}

// buildNode restructures a flattened single-node mapping into its
// params/wiring bucketed Node form, recursing into children/contents first.
func buildNode(body map[string]any) (*ast.Node, error) {
	node := &ast.Node{
		Params: map[string]any{},
		Wiring: &ast.Wiring{},
	}

	if v, ok := body["opcode"]; ok {
		node.Opcode, _ = v.(string)
	}

	if v, ok := body["description"]; ok {
		node.Description, _ = v.(string)
	}

	if v, ok := body["params"]; ok {
		if m, ok := asMap(v); ok {
			for k, val := range m {
				node.Params[k] = val
			}
		} else if v != nil {
			// Single-key-with-scalar-body form: the raw scalar is preserved
			// as-is rather than merged field-by-field (there is nothing to
			// merge it with).
			node.Params[rawParamsKey] = v
		}
	}

	if v, ok := body["wiring"]; ok {
		if m, ok := asMap(v); ok {
			if err := applyWiringBucket(node.Wiring, m); err != nil {
				return nil, err
			}
		}
	}

	for key, value := range body {
		if structuralKeys[key] {
			continue
		}

		if wiringBucketKeys[key] {
			if err := applyWiringBucket(node.Wiring, map[string]any{key: value}); err != nil {
				return nil, err
			}

			continue
		}

		node.Params[key] = value
	}

	if rawChildren, ok := body["children"]; ok {
		list, ok := asSlice(rawChildren)
		if !ok {
			return nil, odlerr.New(odlerr.Parser, "'children' must be a sequence")
		}

		children := make([]*ast.Node, len(list))

		for i, c := range list {
			cm, ok := asMap(c)
			if !ok {
				return nil, odlerr.New(odlerr.Parser, "each child must be a mapping")
			}

			child, err := normalize(cm)
			if err != nil {
				return nil, err
			}

			children[i] = child
		}

		node.Children = children
	}

	if rawContents, ok := body["contents"]; ok {
		cm, ok := asMap(rawContents)
		if !ok {
			return nil, odlerr.New(odlerr.Parser, "'contents' must be a mapping")
		}

		contents, err := normalize(cm)
		if err != nil {
			return nil, err
		}

		node.Contents = contents
	}

	if len(node.Wiring.Inputs) == 0 && node.Wiring.Output == "" {
		node.Wiring = nil
	}

	return node, nil
}

func applyWiringBucket(w *ast.Wiring, m map[string]any) error {
	if v, ok := m["inputs"]; ok {
		list, ok := asSlice(v)
		if !ok {
			return odlerr.New(odlerr.Parser, "'wiring.inputs' must be a sequence")
		}

		if w.Inputs == nil {
			w.Inputs = []string{}
		}

		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return odlerr.New(odlerr.Parser, "'wiring.inputs' entries must be strings")
			}

			w.Inputs = append(w.Inputs, s)
		}
	}

	if v, ok := m["output"]; ok {
		s, ok := v.(string)
		if !ok {
			return odlerr.New(odlerr.Parser, "'wiring.output' must be a string")
		}

		w.Output = s
	}

	return nil
}

// asMap coerces a yaml-decoded value into map[string]any, handling both the
// string-keyed and any-keyed shapes a YAML decoder may produce.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))

		for k, val := range m {
			s, ok := k.(string)
			if !ok {
				return nil, false
			}

			out[s] = val
		}

		return out, true
	default:
		return nil, false
	}
}

func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

func mapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	return keys
}

// Stringify renders a Node back into its canonical single-key-opcode YAML
// form.  Used by tests to check the parser's normalization is idempotent
// (Testable Property 2): Parse(Stringify(Parse(s))) must equal Parse(s).
func Stringify(n *ast.Node) (string, error) {
	body := nodeToCanonical(n)

	out, err := yaml.Marshal(map[string]any{n.Opcode: body})
	if err != nil {
		return "", fmt.Errorf("stringify: %w", err)
	}

	return string(out), nil
}

func nodeToCanonical(n *ast.Node) map[string]any {
	body := map[string]any{}

	if n.StackPath != "" {
		body["stack_path"] = n.StackPath
	}

	if len(n.Params) > 0 {
		body["params"] = n.Params
	}

	if n.Wiring != nil {
		w := map[string]any{}
		if n.Wiring.Inputs != nil {
			w["inputs"] = n.Wiring.Inputs
		}

		if n.Wiring.Output != "" {
			w["output"] = n.Wiring.Output
		}

		if len(w) > 0 {
			body["wiring"] = w
		}
	}

	if n.Description != "" {
		body["description"] = n.Description
	}

	if len(n.Children) > 0 {
		children := make([]any, len(n.Children))
		for i, c := range n.Children {
			children[i] = map[string]any{c.Opcode: nodeToCanonical(c)}
		}

		body["children"] = children
	}

	if n.Contents != nil {
		body["contents"] = map[string]any{n.Contents.Opcode: nodeToCanonical(n.Contents)}
	}

	return body
}
