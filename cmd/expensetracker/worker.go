package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"expensetracker/internal/cli"
	"expensetracker/internal/worker"
)

func newWorkerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume transaction events into the audit log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorker(cmd.Context(), a)
		},
	}
}

func runWorker(ctx context.Context, a *app) error {
	cfg, logger := a.cfg, a.logger
	if !cfg.AMQPEnabled() {
		return errors.New("worker requires AMQP_URL")
	}
	repo, err := cli.InitStore(logger, cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	client, err := cli.InitAMQP(logger, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := cli.SignalContext(ctx, logger)
	defer cancel()

	return worker.NewAuditWorker(repo, logger).Run(ctx, client)
}
