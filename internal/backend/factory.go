// Package backend opens the Record Source selected by configuration and
// wraps its categories in the lookup cache.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spendlens/internal/cache"
	"spendlens/internal/core"
	"spendlens/internal/log"
	"spendlens/internal/postgres"
	"spendlens/internal/source"
	"spendlens/internal/source/google"
	"spendlens/internal/source/memory"
	"spendlens/internal/storage"
)

// Store is the full Record Source surface every backend provides.
type Store interface {
	source.ExpenseReader
	source.ExpenseLister
	source.ExpenseGetter
	source.ExpenseWriter
	source.CategoryStore
}

// Backend bundles an open Record Source with its category cache.
// Categories reads go through the cache; Expenses goes straight to the store.
type Backend struct {
	Type       BackendType
	Expenses   Store
	Categories *source.CachedCategories

	cacheManager *cache.Manager
	pinger       func(context.Context) error
	closer       func() error
}

// Ping checks connectivity for database backends and succeeds otherwise.
func (b *Backend) Ping(ctx context.Context) error {
	if b.pinger == nil {
		return nil
	}
	return b.pinger(ctx)
}

func (b *Backend) Close() error {
	b.cacheManager.Stop()
	if b.closer == nil {
		return nil
	}
	return b.closer()
}

type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Open builds the backend described by cfg.
func (f *Factory) Open(ctx context.Context, cfg Config) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &Backend{Type: cfg.Type}
	switch cfg.Type {
	case MemoryBackend:
		store := memory.NewFromFiles(cfg.SeedDir, cfg.DefaultUserID)
		b.Expenses, b.closer = store, store.Close
		f.logger.Info("Initialized memory backend", "seed_dir", cfg.SeedDir)

	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		b.Expenses, b.pinger, b.closer = repo, repo.Ping, repo.Close
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)

	case PostgresBackend:
		repo, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("initialize postgres repository: %w", err)
		}
		b.Expenses, b.pinger, b.closer = repo, repo.Ping, repo.Close
		f.logger.Info("Initialized postgres backend")

	case SheetsBackend:
		client, err := google.New(ctx, cfg.Sheets)
		if err != nil {
			return nil, fmt.Errorf("initialize Google Sheets client: %w", err)
		}
		b.Expenses = client
		f.logger.Info("Initialized Google Sheets backend", "spreadsheet_id", cfg.Sheets.SpreadsheetID)

	default:
		return nil, errors.New("unsupported backend type: " + cfg.Type.String())
	}

	ttl := cfg.CategoryCacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	categoryCache := cache.NewLRUCache[[]core.Category](cfg.CategoryCacheSize, ttl)
	b.Categories = source.NewCachedCategories(b.Expenses, categoryCache)
	b.cacheManager = cache.NewManager()
	b.cacheManager.Register(categoryCache)
	b.cacheManager.StartCleanup(ttl)
	return b, nil
}

// OpenMirror returns a Sheets client for mirroring recorded expenses, or
// nil when mirroring is disabled.
func OpenMirror(ctx context.Context, enabled bool, cfg google.Config) (*google.Client, error) {
	if !enabled {
		return nil, nil
	}
	client, err := google.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize Sheets mirror: %w", err)
	}
	return client, nil
}
