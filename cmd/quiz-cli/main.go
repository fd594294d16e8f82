package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"ecat-quiz/internal/app"
	"ecat-quiz/internal/cli"
	"ecat-quiz/internal/config"
	"ecat-quiz/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	configDir := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		return err
	}

	// The terminal is the UI; keep console logging to warnings and above.
	logCfg := cfg.Log
	logCfg.Level = "warn"
	log, _, err := logger.New(logCfg, "release")
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := context.Background()
	store, err := app.OpenStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	service := app.NewService(cfg, store, log)
	if cfg.Seed.DemoUsers {
		if err := service.SeedDemoUsers(ctx); err != nil {
			return err
		}
	}

	return cli.Run(ctx, os.Stdin, os.Stdout, service)
}
