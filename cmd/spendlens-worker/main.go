package main

import (
	"context"
	"errors"
	"os"
	"time"

	"spendlens/internal/analytics"
	"spendlens/internal/backend"
	"spendlens/internal/cli"
	"spendlens/internal/log"
	"spendlens/internal/source"
	"spendlens/internal/source/google"
	"spendlens/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting spendlens-worker", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)
	loc := cfg.Location()
	clock := func() time.Time { return time.Now().In(loc) }

	store := cli.OpenBackend(context.Background(), logger, cfg)
	defer store.Close()

	amqpClient := cli.ConnectAMQP(logger, cfg, true)
	defer amqpClient.Close()

	// Mirroring into the sheet the data already lives in would duplicate rows.
	var mirror source.ExpenseWriter
	if cfg.MirrorToSheets && cfg.DataBackend != backend.SheetsBackend.String() {
		client, err := backend.OpenMirror(context.Background(), true, google.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			ExpensesSheet:      cfg.GoogleExpensesSheet,
			CategoriesSheet:    cfg.GoogleCategoriesSheet,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Sheets mirror", log.FieldError, err)
			os.Exit(1)
		}
		mirror = client
		logger.Info("Mirroring recorded expenses to Google Sheets", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	engine := analytics.NewEngine(store.Expenses, store.Categories, clock)
	digests := worker.NewDigestWorker(store.Expenses, store.Categories, mirror, engine, amqpClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- amqpClient.ConsumeExpenseRecorded(ctx, digests.HandleExpenseRecorded)
	}()

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		cancel()
	})

	select {
	case <-shutdownCtx.Done():
		<-done
	case err := <-consumeErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
			store.Close()
			amqpClient.Close()
			os.Exit(1)
		}
	}
	logger.Info("spendlens-worker stopped")
}
