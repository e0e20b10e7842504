// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/holomush/cmdtree/internal/command"
	"github.com/holomush/cmdtree/internal/command/handlers"
	"github.com/holomush/cmdtree/internal/config"
	"github.com/holomush/cmdtree/internal/observability"
	"github.com/holomush/cmdtree/internal/telnet"
	"github.com/holomush/cmdtree/pkg/errutil"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the telnet command host",
		Long: `Run the telnet command host. Built-in commands register under the
configured namespace and each Lua plugin under its own name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cmd, cfg)
		},
	}
}

// runServe serves until ctx ends, a signal arrives, a listener fails or an
// operator runs shutdown.
func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		obsServer *observability.Server
		reg       prometheus.Registerer
		srv       *telnet.Server
	)
	if cfg.Metrics.Addr != "" {
		// Ready once the telnet listener is bound.
		ready := func() bool { return srv != nil && srv.Addr() != "" }
		obsServer = observability.NewServer(cfg.Metrics.Addr, ready,
			observability.WithMetrics(command.RegisterMetrics, telnet.RegisterMetrics),
			observability.WithBuildInfo(version),
		)
		reg = obsServer.Registry()
	}

	a, err := newApp(cfg, reg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer closeCancel()
		a.close(closeCtx)
	}()

	srv = telnet.NewServer(cfg.Telnet.Addr, a.table,
		telnet.WithChecker(a.checker),
		telnet.WithColor(cfg.Telnet.Color),
	)

	shutdown := func(delay time.Duration) {
		slog.InfoContext(ctx, "shutdown requested", "delay", delay)
		time.AfterFunc(delay, cancel)
	}
	if err := a.start(ctx, handlers.WithSessions(srv), handlers.WithShutdown(shutdown)); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if obsServer != nil {
		obsErrCh, err := obsServer.Start()
		if err != nil {
			return err
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer stopCancel()
			if err := obsServer.Stop(stopCtx); err != nil {
				errutil.LogError(slog.Default(), "error stopping observability server", err)
			}
		}()
		g.Go(func() error {
			monitorServerErrors(gctx, cancel, obsErrCh, "observability")
			return nil
		})
	}

	cmd.Println("cmdtree serving on", cfg.Telnet.Addr)
	g.Go(func() error {
		defer cancel()
		return srv.Run(gctx)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("shutdown complete")
	return nil
}

// monitorServerErrors cancels ctx when a server reports a failure. It exits
// when the channel closes or ctx ends.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}
