package backend

import (
	"errors"
	"fmt"
	"time"

	"spendlens/internal/config"
	"spendlens/internal/source/google"
)

// BackendType names a Record Source implementation.
type BackendType string

const (
	MemoryBackend   BackendType = config.BackendMemory
	SQLiteBackend   BackendType = config.BackendSQLite
	PostgresBackend BackendType = config.BackendPostgres
	SheetsBackend   BackendType = config.BackendSheets
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend, SheetsBackend:
		return true
	default:
		return false
	}
}

// Config holds what the factory needs to open one backend.
type Config struct {
	Type BackendType

	SQLiteDBPath string
	PostgresURL  string
	Sheets       google.Config

	// Memory backend seeds the default user's categories from SeedDir.
	SeedDir       string
	DefaultUserID string

	CategoryCacheSize int
	CategoryCacheTTL  time.Duration
}

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	cfg := Config{
		Type:         BackendType(appConfig.DataBackend),
		SQLiteDBPath: appConfig.SQLiteDBPath,
		PostgresURL:  appConfig.PostgresURL,
		Sheets: google.Config{
			SpreadsheetID:      appConfig.GoogleSpreadsheetID,
			ExpensesSheet:      appConfig.GoogleExpensesSheet,
			CategoriesSheet:    appConfig.GoogleCategoriesSheet,
			ServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
			ServiceAccountFile: appConfig.GoogleServiceAccountFile,
		},
		SeedDir:           appConfig.SeedDir,
		DefaultUserID:     appConfig.DefaultUserID,
		CategoryCacheSize: appConfig.CategoryCacheSize,
		CategoryCacheTTL:  appConfig.CategoryCacheTTL,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %q", c.Type)
	}
	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case PostgresBackend:
		if c.PostgresURL == "" {
			return errors.New("postgres URL is required for postgres backend")
		}
	case SheetsBackend:
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("spreadsheet ID is required for sheets backend")
		}
		if c.Sheets.ServiceAccountJSON == "" && c.Sheets.ServiceAccountFile == "" {
			return errors.New("service account JSON or file is required for sheets backend")
		}
	}
	return nil
}
