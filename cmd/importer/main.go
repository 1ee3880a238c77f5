package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mibarrio-uy/listing-harvester/internal/app"
	"github.com/mibarrio-uy/listing-harvester/internal/config"
	"github.com/mibarrio-uy/listing-harvester/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "importer start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("importer starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	batch, err := app.NewBatchImporter(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize importer", "error", err)
		return err
	}

	if err := batch.Run(ctx); err != nil {
		return fmt.Errorf("importer run: %w", err)
	}

	return nil
}
