// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"

	"github.com/holomush/cmdtree/internal/access"
	"github.com/holomush/cmdtree/internal/command"
	"github.com/holomush/cmdtree/internal/command/handlers"
	"github.com/holomush/cmdtree/internal/config"
	"github.com/holomush/cmdtree/internal/host"
	"github.com/holomush/cmdtree/internal/plugin"
	pluginlua "github.com/holomush/cmdtree/internal/plugin/lua"
	"github.com/holomush/cmdtree/internal/xdg"
	"github.com/holomush/cmdtree/pkg/errutil"
)

// app is the command host shared by every subcommand: one table, the
// built-in framework and the Lua plugins registered into it.
type app struct {
	cfg      *config.Config
	table    *host.CommandMap
	checker  *access.Static
	limiter  *command.RateLimiter
	plugins  *plugin.Manager
	builtins *command.Framework
}

// newApp builds the permission backend, rate limiter and plugin manager.
// reg receives the rate limiter gauge and may be nil.
func newApp(cfg *config.Config, reg prometheus.Registerer) (*app, error) {
	checker, err := cfg.Checker()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		table:   host.NewCommandMap(),
		checker: checker,
	}

	var opts []command.DispatcherOption
	if cfg.RateLimit.Enabled {
		a.limiter = command.NewRateLimiterWithRegistry(cfg.RateLimiterConfig(), reg)
		opts = append(opts, command.WithRateLimiter(a.limiter))
	}

	dir := cfg.Plugins.Dir
	if dir == "" {
		if dir, err = xdg.PluginsDir(); err != nil {
			a.closeLimiter()
			return nil, err
		}
	}
	a.plugins = plugin.NewManager(dir,
		plugin.WithHost(pluginlua.NewHost(a.table, pluginlua.WithDispatcherOptions(opts...))),
		plugin.WithHostVersion(version),
	)

	a.builtins, err = command.New(cfg.Namespace, a.table, opts...)
	if err != nil {
		a.closeLimiter()
		return nil, err
	}
	return a, nil
}

// start registers the built-ins and then loads plugins, so built-in names
// win any bare-name collision.
func (a *app) start(ctx context.Context, opts ...handlers.Option) error {
	opts = append([]handlers.Option{handlers.WithPlugins(a.pluginInfo)}, opts...)
	for _, err := range a.builtins.RegisterAll(handlers.New(a.table, opts...)) {
		errutil.LogErrorContext(ctx, slog.Default(), "built-in command rejected", err)
	}

	if err := a.plugins.LoadAll(ctx); err != nil {
		return oops.In("app").Wrapf(err, "load plugins")
	}
	slog.InfoContext(ctx, "command host ready",
		"namespace", a.cfg.Namespace,
		"entries", len(a.table.Entries()),
		"plugins", len(a.plugins.ListPlugins()))
	return nil
}

func (a *app) pluginInfo() []handlers.PluginInfo {
	manifests := a.plugins.Manifests()
	out := make([]handlers.PluginInfo, len(manifests))
	for i, m := range manifests {
		out[i] = handlers.PluginInfo{Name: m.Name, Version: m.Version, Description: m.Description}
	}
	return out
}

func (a *app) close(ctx context.Context) {
	if err := a.plugins.Close(ctx); err != nil {
		errutil.LogErrorContext(ctx, slog.Default(), "failed to close plugins", err)
	}
	a.closeLimiter()
}

func (a *app) closeLimiter() {
	if a.limiter != nil {
		a.limiter.Close()
	}
}
