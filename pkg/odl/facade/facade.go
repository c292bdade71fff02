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

// Package facade orchestrates the six pipeline stages behind the single
// public entry point described in spec.md section 6, grounded on the
// reference compiler's compiler/core.py.
package facade

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/odl-lang/odlc/pkg/odl/assembler"
	odlerr "github.com/odl-lang/odlc/pkg/odl/errors"
	"github.com/odl-lang/odlc/pkg/odl/expander"
	"github.com/odl-lang/odlc/pkg/odl/ir"
	"github.com/odl-lang/odlc/pkg/odl/parser"
	"github.com/odl-lang/odlc/pkg/odl/resolver"
	"github.com/odl-lang/odlc/pkg/odl/syntax"
	"github.com/odl-lang/odlc/pkg/odl/wiring"
)

// Compile runs the full six-stage pipeline over source in its default,
// non-strict mode. Equivalent to CompileStrict(source, false).
func Compile(source string) (*ir.IrComponent, error) {
	return CompileStrict(source, false)
}

// CompileStrict is Compile with the CLI's --strict flag (SPEC_FULL.md
// section 4) threaded through to the resolver: when strict is set, a
// reference that misses the scope chain is reported eagerly at stage 4
// instead of being left for stage 5's "Undefined Artifact ID" check
// (spec.md section 9, Open Question 3).
func CompileStrict(source string, strict bool) (ir *ir.IrComponent, err error) {
	if strings.TrimSpace(source) == "" {
		return nil, odlerr.New(odlerr.InputGuard, "empty ODL source provided")
	}

	defer func() {
		if r := recover(); r != nil {
			recErr, ok := r.(error)
			if !ok {
				recErr = odlerr.Newf(odlerr.Unknown, "%v", r)
			}

			err = wrapUnexpected(recErr)
		}
	}()

	log.Debug("starting phase 1: parsing")

	node, perr := parser.Parse(source)
	if perr != nil {
		return nil, wrapUnexpected(perr)
	}

	log.Debug("starting phase 2: syntax validation")

	if verr := syntax.Validate(node); verr != nil {
		return nil, wrapUnexpected(verr)
	}

	log.Debug("starting phase 3: expansion")

	expanded, eerr := expander.Expand(node)
	if eerr != nil {
		return nil, wrapUnexpected(eerr)
	}

	log.Debug("starting phase 4: resolution")

	if rerr := resolver.ResolveStrict(expanded, strict); rerr != nil {
		return nil, wrapUnexpected(rerr)
	}

	log.Debug("starting phase 5: wiring validation")

	if werr := wiring.Validate(expanded); werr != nil {
		return nil, wrapUnexpected(werr)
	}

	log.Debug("starting phase 6: assembly")

	root, aerr := assembler.Assemble(expanded)
	if aerr != nil {
		return nil, wrapUnexpected(aerr)
	}

	log.Infof("ODL compilation completed successfully; root stack_path=%s", root.StackPath)

	return root, nil
}

// wrapUnexpected passes a stage-labelled *OdlCompilationError through
// unchanged; anything else is an internal bug and gets wrapped as
// stage=Unknown so nothing but the one public error type ever escapes
// Compile.
func wrapUnexpected(err error) error {
	if _, ok := err.(*odlerr.OdlCompilationError); ok {
		return err
	}

	log.Errorf("unexpected compilation error: %v", err)

	return odlerr.Wrap(odlerr.Unknown, err)
}
