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

	odlerr "github.com/odl-lang/odlc/pkg/odl/errors"
)

// resolveRef resolves a single reference string against sc, returning the
// one or more physical ids it expands to (spec.md section 4.4, "Reference
// classification on lookup"), and an error only when sc.strict is set and
// the reference misses the scope chain outright.
func resolveRef(ref string, sc *scope) ([]string, error) {
	switch {
	case strings.Contains(ref, "$"):
		// Dynamic: late-bound, returned unchanged.
		return []string{ref}, nil
	case strings.Contains(ref, ":"):
		if strings.Contains(ref, "@") {
			return []string{ref}, nil
		}

		return []string{ref + "@stable"}, nil
	case strings.Contains(ref, "#"):
		return resolveExplicitRef(ref, sc)
	default:
		if ids, ok := sc.resolve(ref); ok {
			return ids, nil
		}

		if sc.strict {
			return nil, odlerr.Newf(odlerr.Resolver, "strict mode: reference %q did not resolve against any enclosing scope", ref)
		}

		// Miss: returned unchanged; the wiring validator turns this into an
		// "Undefined Artifact ID" error.
		return []string{ref}, nil
	}
}

// resolveExplicitRef handles an already-qualified "Name#Scope" reference:
// the resolver still looks up the bare logical name, and prefers whichever
// declared physical ids start with the given reference (the reference
// itself, or any id nested under it) over the literal string -
// this lets an author write an explicit partial scope qualifier and have it
// resolve to the actual declared id(s) underneath it.
func resolveExplicitRef(ref string, sc *scope) ([]string, error) {
	logical := ref
	if i := strings.Index(ref, "#"); i >= 0 {
		logical = ref[:i]
	}

	ids, ok := sc.resolve(logical)
	if !ok {
		return strictMiss(ref, sc)
	}

	var matched []string

	for _, id := range ids {
		if id == ref || strings.HasPrefix(id, ref+"/") {
			matched = append(matched, id)
		}
	}

	if len(matched) == 0 {
		return strictMiss(ref, sc)
	}

	return matched, nil
}

// strictMiss returns the literal reference unchanged in non-strict mode
// (spec.md section 9, Open Question 3: the wiring validator is left to
// catch it), or a Resolver-stage error in strict mode (SPEC_FULL.md
// section 4's --strict behavior).
func strictMiss(ref string, sc *scope) ([]string, error) {
	if sc.strict {
		return nil, odlerr.Newf(odlerr.Resolver,
			"strict mode: explicit reference %q did not match any declaration in scope", ref)
	}

	return []string{ref}, nil
}

// isExternalRef reports whether a resolved reference is external (opaque to
// the compiler).
func isExternalRef(ref string) bool {
	return strings.Contains(ref, ":")
}
