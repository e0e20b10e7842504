// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/cmdtree/internal/plugin"
)

// NewSchemaCmd creates the schema subcommand, which prints the JSON Schema
// for plugin.yaml.
func NewSchemaCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the plugin manifest JSON Schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := plugin.GenerateSchema()
			if err != nil {
				return err
			}
			schema = append(schema, '\n')

			if output == "" {
				_, err = cmd.OutOrStdout().Write(schema)
				return err
			}
			if err := os.WriteFile(output, schema, 0o600); err != nil {
				return oops.In("schema").With("path", output).Wrap(err)
			}
			cmd.Println("Generated", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the schema to a file instead of stdout")

	return cmd
}
