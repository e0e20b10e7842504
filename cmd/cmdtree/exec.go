// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/cmdtree/internal/host"
	"github.com/holomush/cmdtree/pkg/chatcolor"
)

// CodeUnknownCommand marks a line no entry claimed.
const CodeUnknownCommand = "UNKNOWN_COMMAND"

// NewExecCmd creates the exec subcommand.
func NewExecCmd() *cobra.Command {
	var color bool

	cmd := &cobra.Command{
		Use:   "exec <command> [args...]",
		Short: "Run one command line as the console",
		Long: `Run one command line as the console sender, which holds every
permission, and print its replies.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)

			a, err := newApp(cfg, nil)
			if err != nil {
				return err
			}
			defer a.close(ctx)
			if err := a.start(ctx); err != nil {
				return err
			}

			line := strings.Join(args, " ")
			console := host.NewConsole(cmd.OutOrStdout(), color)
			if !a.table.Dispatch(ctx, console, line) {
				console.SendMessage(chatcolor.Translate(chatcolor.DefaultAlt, "&cUnknown command."))
				return oops.In("exec").Code(CodeUnknownCommand).With("line", line).New("unknown command")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&color, "color", false, "render color codes as ANSI escapes")

	return cmd
}

// NewCompleteCmd creates the complete subcommand.
func NewCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <partial line>",
		Short: "Print tab completions for a partial line",
		Long: `Print tab completions for a partial command line, one per line.
Quote the line and end it with a space to complete the next token.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)

			a, err := newApp(cfg, nil)
			if err != nil {
				return err
			}
			defer a.close(ctx)
			if err := a.start(ctx); err != nil {
				return err
			}

			console := host.NewConsole(cmd.OutOrStdout(), false)
			out := cmd.OutOrStdout()
			for _, s := range a.table.Complete(ctx, console, strings.Join(args, " ")) {
				if _, err := fmt.Fprintln(out, s); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
