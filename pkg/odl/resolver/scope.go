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

// Package resolver implements stage 4 of the pipeline (spec.md section
// 4.4): walking the post-expansion tree with a chain of lexical scopes,
// turning every logical input reference into one or more physical ids.
// There is no reference-compiler implementation to ground this package on
// (the retrieval pack's resolver.py was filtered down to its license header
// and imports); it is built entirely from the spec's prose, following the
// expander's recursive-context-passing style as its structural template.
package resolver

import "github.com/odl-lang/odlc/pkg/odl/ast"

// scope holds the logical-name bindings visible at one level of nesting: an
// ordered mapping from logical name to every physical id declared under
// that name at this level (a name may be declared more than once, e.g. a
// worker inside a loop, giving "Deep Collection" resolution), plus a link to
// the enclosing scope and a flag marking whether this scope is a loop/iterate
// boundary.
type scope struct {
	parent      *scope
	names       map[string][]string
	order       []string
	isLoopScope bool
	// strict mirrors the root scope's --strict setting (spec.md's
	// supplemented CLI feature, SPEC_FULL.md section 4): when set, a
	// scope-chain miss is reported immediately by the resolver itself
	// rather than deferred to the wiring validator (Open Question 3 in
	// spec.md section 9).
	strict bool
}

func newScope(parent *scope, isLoopScope bool) *scope {
	s := &scope{parent: parent, names: map[string][]string{}, isLoopScope: isLoopScope}
	if parent != nil {
		s.strict = parent.strict
	}

	return s
}

// declare records an additional physical id under name, visible to anyone
// resolving name against this scope or an inner one.
func (s *scope) declare(name, physicalID string) {
	if _, ok := s.names[name]; !ok {
		s.order = append(s.order, name)
	}

	s.names[name] = append(s.names[name], physicalID)
}

// resolve searches this scope, then walks parents, for a logical name. Every
// loop-scope boundary crossed while climbing before a hit is found deepens
// the $LOOP nesting of every returned id by one level (spec.md section
// 4.4): the consumer sits one loop further in than wherever the name was
// declared.
func (s *scope) resolve(name string) ([]string, bool) {
	shifts := 0

	for cur := s; cur != nil; cur = cur.parent {
		if ids, ok := cur.names[name]; ok {
			out := make([]string, len(ids))

			for i, id := range ids {
				shifted := id
				for k := 0; k < shifts; k++ {
					shifted = ast.ShiftLoopDepth(shifted)
				}

				out[i] = shifted
			}

			return out, true
		}

		if cur.isLoopScope {
			shifts++
		}
	}

	return nil, false
}
