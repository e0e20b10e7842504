// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/holomush/cmdtree/internal/config"
	"github.com/holomush/cmdtree/internal/logging"
	"github.com/holomush/cmdtree/internal/xdg"
)

const serviceName = "cmdtree"

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the cmdtree CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cmdtree",
		Short: "cmdtree - hierarchical command host",
		Long: `cmdtree hosts hierarchical text commands. Built-in and Lua plugin
commands are reachable over telnet or run once from the shell.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/cmdtree/config.yaml)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewExecCmd())
	cmd.AddCommand(NewCompleteCmd())
	cmd.AddCommand(NewSchemaCmd())

	return cmd
}

// loadConfig reads configuration for cmd. An explicit --config must exist;
// the XDG default is optional.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, required := configFile, configFile != ""
	if path == "" {
		if p, err := xdg.ConfigFile(); err == nil {
			path = p
		}
	}

	cfg, err := config.Load(path, required, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := logging.SetDefault(serviceName, version, cfg.Log.Format, cfg.Log.Level, cmd.ErrOrStderr()); err != nil {
		return nil, err
	}
	return cfg, nil
}
