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

	"github.com/odl-lang/odlc/pkg/odl/expander"
	"github.com/odl-lang/odlc/pkg/odl/facade"
	"github.com/odl-lang/odlc/pkg/odl/parser"
	odlspec "github.com/odl-lang/odlc/pkg/odl/spec"
	"github.com/odl-lang/odlc/pkg/odl/syntax"
)

var dumpIrCmd = &cobra.Command{
	Use:   "dump-ir [flags] [source_file]",
	Short: "print the tree produced by an intermediate pipeline stage.",
	Long: `Dump-ir prints the tree at the stage named by --stage: "assembled"
(the default) runs the full pipeline and prints the IR in the Spec YAML
shape; "expanded" stops after expansion and prints the expanded Node tree
with Go's %+v formatting.`,
	Run: func(cmd *cobra.Command, args []string) {
		source, err := readSource(args)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		stage := GetString(cmd, "stage")

		switch stage {
		case "expanded":
			node, perr := parser.Parse(source)
			if perr != nil {
				fmt.Println(perr)
				os.Exit(1)
			}

			if verr := syntax.Validate(node); verr != nil {
				fmt.Println(verr)
				os.Exit(1)
			}

			expanded, eerr := expander.Expand(node)
			if eerr != nil {
				fmt.Println(eerr)
				os.Exit(1)
			}

			fmt.Printf("%+v\n", expanded)
		case "assembled", "":
			root, cerr := facade.Compile(source)
			if cerr != nil {
				fmt.Println(cerr)
				os.Exit(1)
			}

			rendered, rerr := odlspec.DumpIrToSpec(root)
			if rerr != nil {
				fmt.Println(rerr)
				os.Exit(1)
			}

			fmt.Print(rendered)
		default:
			fmt.Printf("unknown stage %q; expected 'expanded' or 'assembled'\n", stage)
			os.Exit(2)
		}
	},
}

func init() {
	rootCmd.AddCommand(dumpIrCmd)
	dumpIrCmd.Flags().String("stage", "assembled", "pipeline stage to dump: 'expanded' or 'assembled'")
}
