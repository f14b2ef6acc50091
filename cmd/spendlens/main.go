package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"spendlens/internal/analytics"
	"spendlens/internal/cli"
	apphttp "spendlens/internal/http"
	"spendlens/internal/log"
	"spendlens/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	loc := cfg.Location()
	clock := func() time.Time { return time.Now().In(loc) }

	store := cli.OpenBackend(context.Background(), logger, cfg)
	amqpClient := cli.ConnectAMQP(logger, cfg, false)

	var publisher services.ExpensePublisher
	if amqpClient != nil {
		publisher = amqpClient
	}

	engine := analytics.NewEngine(store.Expenses, store.Categories, clock)
	srv := apphttp.NewServer(
		apphttp.Config{
			Addr:            ":" + cfg.Port,
			DefaultUserID:   cfg.DefaultUserID,
			RateLimitPerMin: cfg.RateLimitPerMin,
		},
		apphttp.Deps{
			Analytics:  engine,
			Expenses:   services.NewExpenseService(store.Expenses, store.Categories, publisher, clock),
			Categories: services.NewCategoryService(store.Categories),
			Ready:      store,
			Logger:     logger.WithComponent(log.ComponentHTTP),
		},
	)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err)
			}
		}
		if err := store.Close(); err != nil {
			logger.Warn("Backend close error", log.FieldError, err)
		}
	})

	logger.Info("Starting spendlens server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"timezone", loc.String(),
		"amqp_enabled", amqpClient != nil,
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
