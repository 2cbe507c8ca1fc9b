package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	apphttp "expensetracker/internal/http"
	"expensetracker/internal/ledger"
)

func newServeCmd(a *app, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard and JSON API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), a)
		},
	}
	cmd.Flags().String("port", "", "HTTP port (env PORT)")
	_ = v.BindPFlag(config.KeyPort, cmd.Flags().Lookup("port"))
	return cmd
}

func runServe(ctx context.Context, a *app) error {
	cfg, logger := a.cfg, a.logger
	repo, err := cli.InitStore(logger, cfg.SQLiteDBPath)
	if err != nil {
		return err
	}

	opts := ledger.Options{
		StrictCategories: cfg.StrictCategories,
		CategoryCacheTTL: cfg.CategoryCacheTTL,
	}
	publisher, err := cli.InitAMQP(logger, cfg)
	if err != nil {
		// Events are optional; the ledger keeps working without a broker.
		logger.Error("AMQP unavailable, continuing without transaction events", "error", err)
	} else if publisher != nil {
		opts.Publisher = publisher
	}

	svc := ledger.NewService(repo, opts)
	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Ready:              repo,
	})

	ctx, cancel := cli.SignalContext(ctx, logger)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting expensetracker server",
			"port", cfg.Port,
			"db", cfg.SQLiteDBPath,
			"strict_categories", cfg.StrictCategories,
			"events", publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	cli.RunCleanup(logger, cfg.ShutdownTimeout, func(sctx context.Context) {
		if err := srv.Shutdown(sctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if publisher != nil {
			if err := publisher.Close(); err != nil {
				logger.Warn("AMQP close error", "error", err)
			}
		}
		if err := repo.Close(); err != nil {
			logger.Warn("Store close error", "error", err)
		}
	})

	return serveErr
}
