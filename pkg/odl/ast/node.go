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

// Package ast defines the pre-assembly node shape shared by stages 1-5 of the
// pipeline (parse, syntax validation, expansion, resolution, wiring
// validation), the artifact-reference grammar those stages operate over, and
// the handful of identifier-manipulation primitives spec.md section 9
// requires every stage to funnel string construction through.
package ast

// Wiring is the pre-assembly I/O specification of a node: an ordered
// sequence of artifact references consumed, and the (possibly still
// logical) name or id produced.
type Wiring struct {
	Inputs []string
	Output string
}

// Clone returns a deep copy of this wiring object.
func (w *Wiring) Clone() *Wiring {
	if w == nil {
		return nil
	}
	//
	inputs := make([]string, len(w.Inputs))
	copy(inputs, w.Inputs)
	//
	return &Wiring{Inputs: inputs, Output: w.Output}
}

// Position is a best-effort source location, attached to a Node purely for
// error reporting; it carries no semantic weight and is never consulted by
// any stage's logic (stack_path remains the sole node identity throughout).
type Position struct {
	Line   int
	Column int
}

// Node is the normalized, pre-assembly dictionary shape described in
// spec.md section 3.  It is produced by the parser, mutated in place by the
// expander and by the resolver (which rewrites wiring.inputs and the
// iterator_init source), and read (never mutated) by the syntax and wiring
// validators.
type Node struct {
	// StackPath is empty until the expander assigns it.
	StackPath string
	// Opcode may be a sugar opcode prior to expansion.
	Opcode string
	// Params holds opcode-specific static configuration.
	Params map[string]any
	// Wiring is nil for pure structural/logic nodes with no I/O.
	Wiring *Wiring
	// Children holds this node's ordered sub-trees, for list-containers.
	Children []*Node
	// Contents holds this node's single sub-tree, for block-containers.
	Contents *Node
	// Description is an optional human-readable annotation.
	Description string
	// Pos is the best-effort source position of this node, if known.
	Pos Position
}

// Clone performs a deep copy of the subtree rooted at this node.  The
// expander calls this once, at the root, before mutating anything, so that
// repeated calls to Expand on the same parsed tree are idempotent (section 5
// of spec.md).
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	//
	clone := &Node{
		StackPath:   n.StackPath,
		Opcode:      n.Opcode,
		Params:      cloneParams(n.Params),
		Wiring:      n.Wiring.Clone(),
		Description: n.Description,
		Pos:         n.Pos,
	}
	//
	if n.Children != nil {
		clone.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			clone.Children[i] = c.Clone()
		}
	}
	//
	clone.Contents = n.Contents.Clone()
	//
	return clone
}

func cloneParams(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	//
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	//
	return out
}

// Param returns the named parameter and whether it was present.
func (n *Node) Param(name string) (any, bool) {
	if n.Params == nil {
		return nil, false
	}
	//
	v, ok := n.Params[name]
	//
	return v, ok
}

// StringParam returns the named parameter coerced to a string, or "" if
// absent or not a string.
func (n *Node) StringParam(name string) string {
	v, ok := n.Param(name)
	if !ok {
		return ""
	}
	//
	s, _ := v.(string)
	//
	return s
}
