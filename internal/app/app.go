// Package app wires configuration, storage and the HTTP surface together for
// the binaries under cmd/.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ecat-quiz/internal/config"
	"ecat-quiz/internal/httpapi"
	"ecat-quiz/internal/opentdb"
	"ecat-quiz/internal/quiz"
	"ecat-quiz/internal/quiz/memory"
	"ecat-quiz/internal/quiz/sqlite"
)

// Store is a quiz.Store that owns a resource.
type Store interface {
	quiz.Store
	Close() error
}

// OpenStore opens the configured storage adapter with its schema in place.
// SQLite failures are *quiz.InitializationError.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		store := memory.New(memory.Options{ForeignKeys: cfg.ForeignKeys})
		if err := store.Initialize(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverSQLite, "":
		return sqlite.Open(ctx, sqlite.Options{
			Path:        cfg.Path,
			ForeignKeys: cfg.ForeignKeys,
			BusyTimeout: cfg.BusyTimeout(),
		})
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// NewService builds the quiz service with the OpenTDB importer attached.
func NewService(cfg *config.Config, store quiz.Store, log *zap.Logger) *quiz.Service {
	client := opentdb.NewClientWithURL(cfg.OpenTDB.BaseURL, &http.Client{Timeout: cfg.OpenTDB.Timeout})
	return quiz.NewService(store,
		quiz.WithLogger(log.Named("quiz")),
		quiz.WithFetcher(client.FetchQuestions),
	)
}

func NewServer(cfg *config.Config, service *quiz.Service, log *zap.Logger) *http.Server {
	gin.SetMode(cfg.Server.Mode)

	router := httpapi.NewRouter(service, httpapi.RouterOptions{
		Logger:     log.Named("http"),
		RateLimit:  cfg.RateLimit.MaxRequests,
		RateWindow: cfg.RateLimit.Window,
	})

	return &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Serve runs server until ctx is done or the listener fails, then shuts it
// down within shutdownTimeout. A failed listener is returned; a clean stop is
// nil.
func Serve(ctx context.Context, server *http.Server, shutdownTimeout time.Duration, log *zap.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", server.Addr, err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
