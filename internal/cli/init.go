// Package cli holds the bootstrap steps shared by cmd/spendlens and
// cmd/spendlens-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"spendlens/internal/amqp"
	"spendlens/internal/backend"
	"spendlens/internal/config"
	"spendlens/internal/log"
)

// LoadEnvFile loads .env (or the given files) for local development.
// Missing files are ignored; variables already set win.
func LoadEnvFile(files ...string) {
	_ = godotenv.Load(files...)
}

// SetupLogger installs the default text logger at LOG_LEVEL.
func SetupLogger(component string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Component = component
	cfg.Level = log.ParseLevel(os.Getenv("LOG_LEVEL"))
	return log.New(cfg)
}

// LoadAndValidateConfig loads configuration and exits the process when it
// is invalid.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenBackend opens the configured Record Source or exits the process.
func OpenBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.Backend {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	b, err := backend.NewFactory(logger).Open(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to open backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	return b
}

// ConnectAMQP returns nil when AMQP_URL is unset or the broker is
// unreachable, unless required is true, in which case it exits.
func ConnectAMQP(logger *log.Logger, cfg *config.Config, required bool) *amqp.Client {
	logger = logger.WithComponent(log.ComponentAMQP)
	if cfg.AMQPURL == "" {
		if required {
			logger.Error("AMQP_URL is required")
			os.Exit(1)
		}
		logger.Info("AMQP disabled, expenses will not be announced")
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.AMQPDigestKey)
	if err != nil {
		if required {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		logger.Warn("Failed to initialize AMQP client, continuing without messaging", log.FieldError, err)
		return nil
	}
	logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM and a
// channel closed once cleanup has run. cleanup gets at most timeout.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String(), log.FieldOperation, log.OpShutdown)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until shutdown has been requested and cleanup ran.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
