package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"conti/internal/amqp"
	"conti/internal/backend"
	"conti/internal/cli"
	"conti/internal/log"
	"conti/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentWorker)
	logger.Info("Starting conti-worker")

	store := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer store.Close()

	// The worker never publishes; reconciliation writes balances directly.
	app := cli.NewApp(cfg, store, nil)
	defer app.Close()

	ctx, stop := cli.SignalContext()
	defer stop()

	ledgerCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid ledger configuration", "error", err)
		os.Exit(1)
	}
	ledger, err := backend.NewFactory(logger.Logger).CreateLedger(ctx, ledgerCfg)
	if err != nil {
		logger.Error("Failed to initialize expense ledger", "error", err, "ledger", ledgerCfg.Type)
		os.Exit(1)
	}

	g, ctx := errgroup.WithContext(ctx)

	housekeeping := worker.NewMaintenance(cfg.MaintenanceInterval,
		worker.ExpireInvitations(app.Services.Partners),
		worker.PurgeSessions(app.Services.Auth),
	)
	g.Go(func() error { return housekeeping.Run(ctx) })

	reconcile := worker.NewMaintenance(cfg.ReconcileInterval, worker.ReconcileCards(app.Services.Cards))
	g.Go(func() error { return reconcile.Run(ctx) })

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()

		events := worker.NewEventWorker(store, ledger.Ledger, app.Services.Cards)
		g.Go(func() error { return client.Consume(ctx, events.Handle) })
	} else {
		logger.Info("Skipping event consumption - no AMQP_URL provided")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
