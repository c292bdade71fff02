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
	odlspec "github.com/odl-lang/odlc/pkg/odl/spec"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] [source_file]",
	Short: "compile an ODL source document into its assembled IR tree.",
	Long: `Compile runs the full six-stage pipeline over an ODL source document
and writes the assembled IR tree, in the Spec round-trip YAML shape, to
the given output path (or stdout).`,
	Run: func(cmd *cobra.Command, args []string) {
		source, err := readSource(args)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		root, err := facade.CompileStrict(source, GetFlag(cmd, "strict"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		rendered, err := odlspec.DumpIrToSpec(root)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		output := GetString(cmd, "output")
		if output == "" || output == "-" {
			fmt.Print(rendered)
			return
		}

		if err := os.WriteFile(output, []byte(rendered), 0o644); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringP("output", "o", "-", "output path, or '-' for stdout")
}
