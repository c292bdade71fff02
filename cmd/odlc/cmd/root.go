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

// Package cmd implements the odlc command-line front end: a thin consumer
// of pkg/odl/facade, external to the six compilation stages themselves
// (spec.md section 1, ambient CLI). Modeled on the teacher's pkg/cmd
// package.
package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "odlc",
	Short: "A compiler front end for the Organizational Definition Language.",
	Long: `odlc parses, validates, expands, resolves and assembles ODL
workflow definitions into a typed intermediate representation tree,
consumed by a downstream execution kernel that is out of scope for this
tool.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.  This is called by main.main(); it only needs to happen
// once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().Bool("strict", false, "report references that resolve in no enclosing scope as resolver-stage errors")

	cobra.OnInitialize(func() {
		if GetFlag(rootCmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
	})
}
