package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"conti/internal/amqp"
	"conti/internal/cli"
	apphttp "conti/internal/http"
	"conti/internal/log"
	"conti/internal/middleware/ratelimit"
	"conti/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentApp)

	store := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer store.Close()

	// Events are optional; the API works without a broker.
	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client, events disabled", "error", err)
		} else {
			defer client.Close()
			events = client
			logger.Info("AMQP publisher ready", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	app := cli.NewApp(cfg, store, events)
	defer app.Close()

	srv := apphttp.NewServer(apphttp.Options{
		Addr:           ":" + cfg.Port,
		TrustedProxies: cfg.TrustedProxies,
		RateLimit: ratelimit.Config{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		},
		Logger: logger,
		DB:     store,
	}, app.Services)

	ctx, stop := cli.SignalContext()
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting conti server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			logger.Error("Server error", "error", err, "port", cfg.Port)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	logger.Info("Server stopped gracefully")
}
