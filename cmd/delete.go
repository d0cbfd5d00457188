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

	"github.com/spf13/cobra"

	"github.com/quickenv/quickenv/registry"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Deletes a virtual environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := newManager(cmd.OutOrStdout())
		if err != nil {
			return err
		}

		return runDeleteCmd(manager, args[0], cmd.OutOrStdout())
	},
}

func runDeleteCmd(manager *registry.Manager, name string, out io.Writer) error {
	if err := manager.Delete(name); err != nil {
		return err
	}

	fmt.Fprintf(out, "Deleted %q\n", name)
	return nil
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
