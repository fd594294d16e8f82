package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ecat-quiz/internal/app"
	"ecat-quiz/internal/config"
	"ecat-quiz/internal/configwatcher"
	"ecat-quiz/internal/logger"
	"ecat-quiz/internal/quiz"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code.
func run() int {
	configDir := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}

	log, level, err := logger.New(cfg.Log, cfg.Server.Mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		return 1
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg.Database)
	if err != nil {
		var initErr *quiz.InitializationError
		if errors.As(err, &initErr) {
			log.Error("database initialization failed", zap.String("statement", initErr.Statement), zap.Error(initErr.Err))
			return 1
		}
		log.Error("open store failed", zap.Error(err))
		return 1
	}
	defer store.Close()

	service := app.NewService(cfg, store, log)
	if cfg.Seed.DemoUsers {
		if err := service.SeedDemoUsers(ctx); err != nil {
			log.Error("seeding demo users failed", zap.Error(err))
		}
	}

	if cfg.File != "" {
		go func() {
			err := configwatcher.Watch(ctx, cfg.File, configwatcher.DefaultDebounce, log, func(next *config.Config) {
				parsed, err := logger.ParseLevel(next.Log.Level, next.Server.Mode)
				if err != nil {
					log.Warn("ignoring reloaded log level", zap.Error(err))
					return
				}
				level.SetLevel(parsed)
			})
			if err != nil {
				log.Error("config watcher stopped", zap.Error(err))
			}
		}()
	}

	server := app.NewServer(cfg, service, log)
	log.Info("quiz-service listening",
		zap.String("addr", server.Addr),
		zap.String("driver", cfg.Database.Driver),
	)
	if err := app.Serve(ctx, server, 10*time.Second, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		return 1
	}
	return 0
}
