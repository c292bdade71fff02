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
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/odl-lang/odlc/pkg/odl/facade"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [source_file]",
	Short: "run all six compilation stages and report errors without emitting IR.",
	Long: `Check runs the full pipeline (parse, syntax validation, expansion,
resolution, wiring validation, assembly) over an ODL source document and
reports the first stage that fails, without printing the assembled tree.`,
	Run: func(cmd *cobra.Command, args []string) {
		source, err := readSource(args)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		if _, err := facade.CompileStrict(source, GetFlag(cmd, "strict")); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		fmt.Println("ok")
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
