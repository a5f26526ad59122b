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

	"github.com/accessdesk/accessdesk/lib/config"
	"github.com/accessdesk/accessdesk/lib/process"
	"github.com/accessdesk/accessdesk/lib/service"
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
		listen      string
		showVersion bool
		debug       bool
	)
	flag.StringVar(&configPath, "config", os.Getenv(config.EnvConfig), "path to the YAML configuration file")
	flag.StringVar(&listen, "listen", "", "HTTP listen address (overrides scanner.listen)")
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.BoolVar(&debug, "debug", false, "log at debug level")
	flag.Parse()

	if showVersion {
		process.PrintVersion("accessdesk-scanner")
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
	if listen != "" {
		cfg.Scanner.Listen = listen
	}
	if err := cfg.ValidateScanner(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Scanner.WebhookSecret == "" {
		logger.Warn("scanner.webhook_secret is not set; webhook deliveries are not authenticated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	confluenceClient, credentials, err := service.ConnectConfluence(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer credentials.Close()

	handler := NewWebhookHandler(confluenceClient, []byte(cfg.Scanner.WebhookSecret), logger)
	httpServer := service.NewHTTPServer(service.HTTPServerConfig{
		Address: cfg.Scanner.Listen,
		Handler: handler.Handler(),
		Logger:  logger,
	})
	httpDone := make(chan error, 1)
	go func() {
		httpDone <- httpServer.Serve(ctx)
	}()

	select {
	case <-httpServer.Ready():
		logger.Info("accessdesk scanner running",
			"address", httpServer.Addr().String(),
			"confluence", confluenceClient.BaseURL(),
			"version", version.Short(),
		)
	case err := <-httpDone:
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down")
	return <-httpDone
}
