// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/accessdesk/accessdesk/lib/automation"
	"github.com/accessdesk/accessdesk/lib/clock"
	"github.com/accessdesk/accessdesk/lib/config"
	"github.com/accessdesk/accessdesk/lib/eventbus"
	"github.com/accessdesk/accessdesk/lib/process"
	"github.com/accessdesk/accessdesk/lib/schema/request"
	"github.com/accessdesk/accessdesk/lib/service"
	"github.com/accessdesk/accessdesk/lib/store"
	"github.com/accessdesk/accessdesk/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath  string
		showVersion bool
		debug       bool
	)
	flag.StringVar(&configPath, "config", os.Getenv(config.EnvConfig), "path to the YAML configuration file")
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.BoolVar(&debug, "debug", false, "log at debug level")
	flag.Parse()

	if showVersion {
		process.PrintVersion("accessdesk-server")
		return nil
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := clock.Real()
	requests, err := store.Open(cfg.Server.Database, clk)
	if err != nil {
		return err
	}

	bus, err := openBus(ctx, cfg, logger)
	if err != nil {
		return err
	}

	confluenceClient, credentials, err := service.ConnectConfluence(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer credentials.Close()

	pool := NewPool(PoolConfig{
		Store:     requests,
		Bus:       bus,
		Workers:   cfg.Server.Workers,
		QueueSize: cfg.Server.QueueSize,
		Processors: map[request.Type]automation.Processor{
			request.TypeAccess: automation.NewAccessProcessor(confluenceClient, logger.With("processor", "access")),
			request.TypeSpaceCreation: automation.NewSpaceProcessor(confluenceClient, clk, cfg.Server.SettleDelay,
				logger.With("processor", "space")),
		},
		Logger: logger.With("component", "worker"),
	})
	pool.Start(ctx)
	if requeued := pool.Requeue(ctx); requeued > 0 {
		logger.Info("requeued unfinished requests", "count", requeued)
	}

	server := NewServer(ServerConfig{
		Store:     requests,
		Bus:       bus,
		Queue:     pool,
		Clock:     clk,
		Heartbeat: cfg.Server.Heartbeat,
		Logger:    logger,
	})

	httpServer := service.NewHTTPServer(service.HTTPServerConfig{
		Address:      cfg.Server.Listen,
		Handler:      server.Handler(),
		WriteTimeout: -1,
		OnShutdown:   server.Shutdown,
		Logger:       logger,
	})
	httpDone := make(chan error, 1)
	go func() {
		httpDone <- httpServer.Serve(ctx)
	}()

	select {
	case <-httpServer.Ready():
		logger.Info("accessdesk server running",
			"address", httpServer.Addr().String(),
			"database", requests.Path(),
			"workers", cfg.Server.Workers,
			"version", version.Short(),
		)
	case err := <-httpDone:
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down")

	if err := <-httpDone; err != nil {
		logger.Error("http server error", "error", err)
	}
	pool.Wait()
	return nil
}

// openBus returns the Redis-backed bus when a Redis URL is configured
// and the in-process bus otherwise.
func openBus(ctx context.Context, cfg *config.Config, logger *slog.Logger) (eventbus.Bus, error) {
	if cfg.Server.RedisURL == "" {
		return eventbus.NewMemory(logger.With("component", "eventbus")), nil
	}
	client, err := eventbus.Connect(ctx, cfg.Server.RedisURL)
	if err != nil {
		return nil, err
	}
	bus := eventbus.NewRedis(client, cfg.Server.RedisChannel, logger.With("component", "eventbus"))
	go func() {
		defer client.Close()
		if err := bus.Run(ctx); err != nil {
			logger.Error("redis event relay stopped", "error", err)
		}
	}()
	return bus, nil
}
