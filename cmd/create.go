// Copyright 2021 Artificial Intelligence Redefined <dev+cogment@ai-r.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quickenv/quickenv/registry"
)

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Creates a new virtual environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := newManager(cmd.OutOrStdout())
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		opts := registry.CreateOptions{Name: args[0]}
		if opts.Description, err = flags.GetString("description"); err != nil {
			return err
		}
		if opts.Alias, err = flags.GetString("alias"); err != nil {
			return err
		}
		if opts.Interpreter, err = flags.GetString("interpreter"); err != nil {
			return err
		}

		return runCreateCmd(manager, opts, cmd.OutOrStdout())
	},
}

func runCreateCmd(manager *registry.Manager, opts registry.CreateOptions, out io.Writer) error {
	entry, err := manager.Create(opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(out,
		"%s Source '%s' or start a new shell and run '%s' to activate the venv.\n",
		color.GreenString("Done."), manager.ShellRC(), entry.Alias,
	)
	return nil
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringP("description", "d", "", "Description for the environment.")
	createCmd.Flags().StringP("alias", "a", "", "Specify a custom alias (otherwise it will be the name of the venv).")
	createCmd.Flags().StringP("interpreter", "i", "", "Python interpreter to create the venv with, a name on the PATH or an absolute path.")
}
