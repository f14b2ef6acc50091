package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendSheets   = "sheets"
)

var validBackends = []string{BackendMemory, BackendSQLite, BackendPostgres, BackendSheets}

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend string

	// Database
	SQLiteDBPath string
	PostgresURL  string
	SeedDir      string

	// AMQP
	AMQPURL       string
	AMQPExchange  string
	AMQPQueue     string
	AMQPDigestKey string

	// Google Sheets (service account)
	GoogleSpreadsheetID      string
	GoogleExpensesSheet      string
	GoogleCategoriesSheet    string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	MirrorToSheets           bool

	// Analytics
	DefaultUserID string
	Timezone      string

	// Caching and rate limiting
	CategoryCacheSize int
	CategoryCacheTTL  time.Duration
	RateLimitPerMin   int
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8081"),
		DataBackend: getEnv("DATA_BACKEND", BackendSQLite),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/spendlens.db"),
		PostgresURL:  getEnv("POSTGRES_URL", ""),
		SeedDir:      getEnv("SEED_DIR", "./data"),

		AMQPURL:       getEnv("AMQP_URL", ""),
		AMQPExchange:  getEnv("AMQP_EXCHANGE", "spendlens"),
		AMQPQueue:     getEnv("AMQP_QUEUE", "expense_recorded"),
		AMQPDigestKey: getEnv("AMQP_DIGEST_KEY", "summary_digest"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleExpensesSheet:      getEnv("GOOGLE_EXPENSES_SHEET", "Expenses"),
		GoogleCategoriesSheet:    getEnv("GOOGLE_CATEGORIES_SHEET", "Categories"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
		MirrorToSheets:           getEnvBool("MIRROR_TO_SHEETS", false),

		DefaultUserID: getEnv("DEFAULT_USER_ID", "local"),
		Timezone:      getEnv("APP_TIMEZONE", "UTC"),

		CategoryCacheSize: getEnvInt("CATEGORY_CACHE_SIZE", 256),
		CategoryCacheTTL:  getEnvDuration("CATEGORY_CACHE_TTL", 5*time.Minute),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}
}

// Location resolves Timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SheetsConfigured reports whether enough is set to build a Sheets client.
func (c *Config) SheetsConfigured() bool {
	return c.GoogleSpreadsheetID != "" && (c.GoogleServiceAccountJSON != "" || c.GoogleServiceAccountFile != "")
}

// Validate validates the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case BackendPostgres:
		if c.PostgresURL == "" {
			errors = append(errors, "POSTGRES_URL is required when using postgres backend")
		} else if u, err := url.Parse(c.PostgresURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid POSTGRES_URL: %v", err))
		} else if u.Scheme != "postgres" && u.Scheme != "postgresql" {
			errors = append(errors, fmt.Sprintf("invalid POSTGRES_URL scheme '%s': must be 'postgres' or 'postgresql'", u.Scheme))
		}
	}

	if c.DataBackend == BackendSheets || c.MirrorToSheets {
		errors = append(errors, c.validateSheets()...)
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPDigestKey == "" {
			errors = append(errors, "AMQP digest routing key cannot be empty when AMQP URL is provided")
		}
	}

	if strings.TrimSpace(c.DefaultUserID) == "" {
		errors = append(errors, "DEFAULT_USER_ID cannot be empty")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if c.CategoryCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid category cache size %d: must be at least 1", c.CategoryCacheSize))
	}
	if c.CategoryCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid category cache TTL %v: must be at least 1 second", c.CategoryCacheTTL))
	} else if c.CategoryCacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid category cache TTL %v: must be at most 24 hours", c.CategoryCacheTTL))
	}
	if c.RateLimitPerMin < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 per minute", c.RateLimitPerMin))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func (c *Config) validateSheets() []string {
	var errors []string
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required when using Google Sheets")
	}
	if c.GoogleExpensesSheet == "" || c.GoogleCategoriesSheet == "" {
		errors = append(errors, "Google expenses and categories sheet names are required when using Google Sheets")
	}
	if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for Google Sheets")
	}
	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}
	return errors
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
