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

import odlerr "github.com/odl-lang/odlc/pkg/odl/errors"

func errMissingContents(opcode string) error {
	return odlerr.Newf(odlerr.Expander, "missing required field 'contents' for opcode %q", opcode)
}

func errMissingParam(opcode, field string) error {
	return odlerr.Newf(odlerr.Expander, "missing required field %q for opcode %q", field, opcode)
}
