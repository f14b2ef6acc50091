// Package postgres is the PostgreSQL Record Source backed by a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"spendlens/internal/calendar"
	"spendlens/internal/core"
	"spendlens/internal/source"
)

// uniqueViolation is the SQLSTATE of a unique index collision.
const uniqueViolation = "23505"

const expenseColumns = "id::text, user_id, title, description, amount_cents, spent_on, category_id::text"

type Repository struct {
	pool *pgxpool.Pool
}

// Open migrates the schema and connects a pool to databaseURL.
func Open(ctx context.Context, databaseURL string) (*Repository, error) {
	if err := RunMigrations(databaseURL); err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repository) CreateExpense(ctx context.Context, e core.ExpenseRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO expenses (id, user_id, title, description, amount_cents, spent_on, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.UserID, e.Title, e.Description, e.Amount.Cents, e.Date.Time, e.CategoryID)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	slog.InfoContext(ctx, "Expense saved to Postgres", "id", e.ID, "user_id", e.UserID, "amount_cents", e.Amount.Cents)
	return nil
}

func (r *Repository) ListExpenses(ctx context.Context, userID string, w *calendar.Window) ([]core.ExpenseRecord, error) {
	if w == nil {
		return r.queryExpenses(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE user_id = $1`, userID)
	}
	return r.queryExpenses(ctx, `
		SELECT `+expenseColumns+` FROM expenses
		WHERE user_id = $1 AND spent_on BETWEEN $2 AND $3
	`, userID, w.Start.Time, w.End.Time)
}

func (r *Repository) RecentExpenses(ctx context.Context, userID string, w *calendar.Window, limit int) ([]core.ExpenseRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if w == nil {
		return r.queryExpenses(ctx, `
			SELECT `+expenseColumns+` FROM expenses
			WHERE user_id = $1
			ORDER BY spent_on DESC, created_at DESC
			LIMIT $2
		`, userID, limit)
	}
	return r.queryExpenses(ctx, `
		SELECT `+expenseColumns+` FROM expenses
		WHERE user_id = $1 AND spent_on BETWEEN $2 AND $3
		ORDER BY spent_on DESC, created_at DESC
		LIMIT $4
	`, userID, w.Start.Time, w.End.Time, limit)
}

func (r *Repository) GetExpense(ctx context.Context, userID, id string) (core.ExpenseRecord, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE user_id = $1 AND id::text = $2`, userID, id)
	e, err := scanExpense(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ExpenseRecord{}, fmt.Errorf("get expense %s: %w", id, source.ErrNotFound)
	}
	return e, err
}

func (r *Repository) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, user_id, name, color, icon, description
		FROM categories
		WHERE user_id = $1
		ORDER BY name
	`, userID)
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

func (r *Repository) CreateCategory(ctx context.Context, c core.Category) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO categories (id, user_id, name, color, icon, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.UserID, c.Name, c.Color, c.Icon, c.Description)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("insert category %q: %w", c.Name, source.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *Repository) queryExpenses(ctx context.Context, query string, args ...any) ([]core.ExpenseRecord, error) {
	rows, err := r.pool.Query(ctx, query, args...)
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

func scanExpense(row pgx.Row) (core.ExpenseRecord, error) {
	var (
		e       core.ExpenseRecord
		spentOn time.Time
	)
	if err := row.Scan(&e.ID, &e.UserID, &e.Title, &e.Description, &e.Amount.Cents, &spentOn, &e.CategoryID); err != nil {
		return e, fmt.Errorf("scan expense: %w", err)
	}
	e.Date = core.DateOf(spentOn)
	return e, nil
}
