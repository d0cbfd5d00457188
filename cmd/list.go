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
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/quickenv/quickenv/registry"
)

const emptyRegistryMessage = "No virtual environments found."

type listCmdContext struct {
	names  []string
	long   bool
	output string
}

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list [NAME...]",
	Short: "Lists all virtual environments, or only the named ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := newManager(cmd.OutOrStdout())
		if err != nil {
			return err
		}

		ctx := listCmdContext{names: args}
		if ctx.long, err = cmd.Flags().GetBool("long"); err != nil {
			return err
		}
		if ctx.output, err = cmd.Flags().GetString("output"); err != nil {
			return err
		}

		return runListCmd(manager, ctx, cmd.OutOrStdout())
	},
}

func listEntries(manager *registry.Manager, names []string) ([]*registry.Entry, error) {
	if len(names) == 0 {
		return manager.List()
	}

	entries := make([]*registry.Entry, 0, len(names))
	for _, name := range names {
		entry, err := manager.Get(name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func runListCmd(manager *registry.Manager, ctx listCmdContext, out io.Writer) error {
	entries, err := listEntries(manager, ctx.names)
	if err != nil {
		return err
	}

	switch ctx.output {
	case "yaml":
		content, err := yaml.Marshal(entries)
		if err != nil {
			return err
		}
		_, err = out.Write(content)
		return err
	case "json":
		content, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(content))
		return err
	case "", "text":
	default:
		return fmt.Errorf("unknown output format %q, expected one of text, yaml or json", ctx.output)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, emptyRegistryMessage)
		return nil
	}

	if ctx.long {
		fmt.Fprintln(out, formatLongListing(entries))
		return nil
	}

	for _, entry := range entries {
		fmt.Fprintf(out, "%s (alias: %s)\n", entry.Name, entry.Alias)
		fmt.Fprintf(out, "  %s\n", entry.Description)
	}
	return nil
}

func formatLongListing(entries []*registry.Entry) string {
	var output []string
	row := []string{"NAME", "ALIAS", "PYTHON", "CREATED", "DESCRIPTION"}
	output = append(output, strings.Join(row, "|"))

	for _, entry := range entries {
		python := "N/A"
		if entry.Python != "" {
			python = entry.Python
		}

		created := "N/A"
		if !entry.CreatedAt.IsZero() {
			created = humanize.Time(entry.CreatedAt)
		}

		row := []string{
			entry.Name,
			entry.Alias,
			python,
			created,
			// columnize splits on the delimiter
			strings.ReplaceAll(entry.Description, "|", "/"),
		}
		output = append(output, strings.Join(row, "|"))
	}

	return columnize.SimpleFormat(output)
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolP("long", "l", false, "show the alias, Python version and age of every venv in a table")
	listCmd.Flags().StringP("output", "o", "text", "output format: text, yaml or json")
}
