package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hongminglow/userdir/internal/config"
	"github.com/hongminglow/userdir/internal/logging"
	"github.com/hongminglow/userdir/internal/server"
	"github.com/hongminglow/userdir/internal/storage"
	"github.com/hongminglow/userdir/internal/storage/memory"
	"github.com/hongminglow/userdir/internal/storage/postgres"
	"github.com/hongminglow/userdir/internal/storage/sqlite"
	"github.com/hongminglow/userdir/internal/telemetry"
	"github.com/joho/godotenv"
)

func main() {
	envLoaded := godotenv.Load() == nil

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Env, os.Stdout)
	slog.SetDefault(log)
	if !envLoaded {
		log.Debug("no .env file found; relying on existing environment")
	}

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, "userdir", cfg.OTelEndpoint)
	if err != nil {
		log.Error("init tracing", slog.Any("error", err))
		os.Exit(1)
	}

	userStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Error("init storage", slog.String("driver", cfg.StorageDriver), slog.Any("error", err))
		os.Exit(1)
	}
	defer userStore.Close()

	srv := server.New(cfg, userStore, log)

	go func() {
		log.Info("userdir listening", slog.String("addr", cfg.HTTPAddress()), slog.String("storage", cfg.StorageDriver))
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error("graceful shutdown error", slog.Any("error", err))
	}
	if err := shutdownTracing(ctxShutdown); err != nil {
		log.Error("tracing shutdown error", slog.Any("error", err))
	}
}

func openStore(ctx context.Context, cfg config.Config) (storage.UserStore, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.SQLitePath)
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return postgres.NewUserStore(ctx, cfg.DatabaseURL)
	}
}
