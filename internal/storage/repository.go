// Package storage is the SQLite Record Source.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"spendlens/internal/calendar"
	"spendlens/internal/core"
	"spendlens/internal/source"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const expenseColumns = "id, user_id, title, description, amount_cents, date, category_id"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping is used by the readiness check.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.ExpenseRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Title, e.Description, e.Amount.Cents, e.Date.String(), e.CategoryID)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"user_id", e.UserID,
		"amount_cents", e.Amount.Cents,
		"date", e.Date.String())
	return nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID string, w *calendar.Window) ([]core.ExpenseRecord, error) {
	query, args := expenseQuery(userID, w)
	return r.queryExpenses(ctx, query, args...)
}

func (r *SQLiteRepository) RecentExpenses(ctx context.Context, userID string, w *calendar.Window, limit int) ([]core.ExpenseRecord, error) {
	query, args := expenseQuery(userID, w)
	query += " ORDER BY date DESC, created_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return r.queryExpenses(ctx, query, args...)
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, userID, id string) (core.ExpenseRecord, error) {
	out, err := r.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	if len(out) == 0 {
		return core.ExpenseRecord{}, fmt.Errorf("get expense %s: %w", id, source.ErrNotFound)
	}
	return out[0], nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, color, icon, description FROM categories WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.Icon, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name, color, icon, description) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, c.Color, c.Icon, c.Description)
	if isUniqueViolation(err) {
		return fmt.Errorf("insert category %q: %w", c.Name, source.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// expenseQuery builds the filtered select. Dates are stored as ISO text so
// lexical comparison matches calendar order.
func expenseQuery(userID string, w *calendar.Window) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT ` + expenseColumns + ` FROM expenses WHERE user_id = ?`)
	args := []any{userID}
	if w != nil {
		b.WriteString(` AND date >= ? AND date <= ?`)
		args = append(args, w.Start.String(), w.End.String())
	}
	return b.String(), args
}

func (r *SQLiteRepository) queryExpenses(ctx context.Context, query string, args ...any) ([]core.ExpenseRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []core.ExpenseRecord
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

func scanExpense(rows *sql.Rows) (core.ExpenseRecord, error) {
	var (
		e    core.ExpenseRecord
		date string
	)
	if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Description, &e.Amount.Cents, &date, &e.CategoryID); err != nil {
		return e, fmt.Errorf("scan expense: %w", err)
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return e, fmt.Errorf("scan expense %s: %w", e.ID, err)
	}
	e.Date = d
	return e, nil
}
