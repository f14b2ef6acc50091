// Package source defines the Record Source ports the analytics engine and
// the services read from and write to. Implementations live in
// source/memory, source/google, storage (SQLite) and postgres.
package source

import (
	"context"
	"errors"

	"spendlens/internal/calendar"
	"spendlens/internal/core"
)

var (
	// ErrNotFound is returned by lookups that match nothing.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write collides with a unique key,
	// such as a second category of the same name for one user.
	ErrConflict = errors.New("already exists")
)

// Ports for outbound adapters.
type (
	// ExpenseReader returns a user's records, restricted to window when it
	// is non-nil. Order is unspecified.
	ExpenseReader interface {
		ListExpenses(ctx context.Context, userID string, window *calendar.Window) ([]core.ExpenseRecord, error)
	}

	// ExpenseLister returns up to limit records newest first.
	ExpenseLister interface {
		RecentExpenses(ctx context.Context, userID string, window *calendar.Window, limit int) ([]core.ExpenseRecord, error)
	}

	ExpenseGetter interface {
		GetExpense(ctx context.Context, userID, id string) (core.ExpenseRecord, error)
	}

	ExpenseWriter interface {
		CreateExpense(ctx context.Context, e core.ExpenseRecord) error
	}

	// CategoryReader returns a user's categories ordered by name.
	CategoryReader interface {
		ListCategories(ctx context.Context, userID string) ([]core.Category, error)
	}

	CategoryWriter interface {
		CreateCategory(ctx context.Context, c core.Category) error
	}
)
