// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cli wraps a route collection in a cobra command tree, the way
// the pack's huma CLI wraps an HTTP router: one root command plus a
// "routes" (alias "list") inspection subcommand; an embedding binary can
// add more.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wayfarer-dev/wayfarer/collection"
	"github.com/wayfarer-dev/wayfarer/route"
)

// CLI bundles a cobra root command around a route collection.
type CLI struct {
	root  *cobra.Command
	table *collection.Collection
}

// New builds a CLI over table. The root command's Use defaults to the
// running binary's name, matching the pack CLI's own convention.
func New(table *collection.Collection) *CLI {
	c := &CLI{table: table}

	c.root = &cobra.Command{
		Use:   filepath.Base(os.Args[0]),
		Short: "Inspect and run a wayfarer route table",
	}

	c.root.AddCommand(c.routesCommand())

	return c
}

// Root returns the CLI's root command, so an embedding binary can add its
// own subcommands and flags.
func (c *CLI) Root() *cobra.Command {
	return c.root
}

// Run executes the CLI, panicking on a cobra execution error to match the
// pack CLI's own Run().
func (c *CLI) Run() {
	if err := c.root.Execute(); err != nil {
		panic(err)
	}
}

func (c *CLI) routesCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "routes",
		Aliases: []string{"list"},
		Short:   "List every registered route",
		RunE: func(cmd *cobra.Command, args []string) error {
			dump := c.table.Dump()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(dump)
			}
			return printTable(cmd.OutOrStdout(), dump)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the route table as JSON")
	return cmd
}

func printTable(w io.Writer, rows []route.JSON) error {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATH\tNAME")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Method, r.Path, r.Name)
	}
	return tw.Flush()
}
