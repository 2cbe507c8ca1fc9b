// Package cli holds the start-up steps shared by the serve, worker and
// migrate commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"expensetracker/internal/amqp"
	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
	"expensetracker/internal/storage"
)

// SetupLogger builds the process logger from cfg and installs it as the
// slog default. Invalid values fall back to info/text.
func SetupLogger(cfg *config.Config) *applog.Logger {
	lc := applog.DefaultConfig()
	if level, err := applog.ParseLevel(cfg.LogLevel); err == nil {
		lc.Level = level
	}
	if format, err := applog.ParseFormat(cfg.LogFormat); err == nil {
		lc.Format = format
	}

	logger := applog.New(lc)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// InitStore opens the SQLite store, applying migrations and seeds.
func InitStore(logger *applog.Logger, dbPath string) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite store at %s: %w", dbPath, err)
	}
	logger.WithComponent(applog.ComponentStorage).Info("SQLite store ready", "path", dbPath)
	return repo, nil
}

// InitAMQP connects to the broker, or returns nil when AMQP is disabled.
func InitAMQP(logger *applog.Logger, cfg *config.Config) (*amqp.Client, error) {
	if !cfg.AMQPEnabled() {
		logger.Info("AMQP disabled, transaction events will not be published")
		return nil, nil
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("connect to AMQP: %w", err)
	}
	logger.WithComponent(applog.ComponentAMQP).Info("AMQP connected",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	return client, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// RunCleanup runs cleanup with a deadline and logs if it overruns.
func RunCleanup(logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		cleanup(ctx)
		close(done)
	}()

	select {
	case <-done:
		logger.Info("Shutdown complete")
	case <-ctx.Done():
		logger.Warn("Shutdown timeout reached", "timeout", timeout.String())
	}
}
