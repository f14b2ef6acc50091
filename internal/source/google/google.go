// Package google is a Record Source backed by a Google Sheets spreadsheet.
// Expenses live one per row in the expenses sheet (ID, user, date, title,
// description, amount, category id); categories in the categories sheet
// (ID, user, name, color, icon, description). Row 1 is a header.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"spendlens/internal/calendar"
	"spendlens/internal/core"
	"spendlens/internal/source"
)

type Config struct {
	SpreadsheetID      string
	ExpensesSheet      string
	CategoriesSheet    string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc             *gsheet.Service
	spreadsheetID   string
	expensesSheet   string
	categoriesSheet string
}

var (
	_ source.ExpenseReader  = (*Client)(nil)
	_ source.ExpenseLister  = (*Client)(nil)
	_ source.ExpenseGetter  = (*Client)(nil)
	_ source.ExpenseWriter  = (*Client)(nil)
	_ source.CategoryReader = (*Client)(nil)
	_ source.CategoryWriter = (*Client)(nil)
)

// New builds a client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	creds, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", cfg.SpreadsheetID)
	return NewWithService(svc, cfg), nil
}

// NewWithService wraps an already configured Sheets service.
func NewWithService(svc *gsheet.Service, cfg Config) *Client {
	expenses := strings.TrimSpace(cfg.ExpensesSheet)
	if expenses == "" {
		expenses = "Expenses"
	}
	categories := strings.TrimSpace(cfg.CategoriesSheet)
	if categories == "" {
		categories = "Categories"
	}
	return &Client{
		svc:             svc,
		spreadsheetID:   cfg.SpreadsheetID,
		expensesSheet:   expenses,
		categoriesSheet: categories,
	}
}

func loadCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.ServiceAccountJSON) != "":
		return []byte(cfg.ServiceAccountJSON), nil
	case strings.TrimSpace(cfg.ServiceAccountFile) != "":
		b, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

func (c *Client) ListExpenses(ctx context.Context, userID string, w *calendar.Window) ([]core.ExpenseRecord, error) {
	rows, err := c.readRows(ctx, c.expensesSheet, "A2:G")
	if err != nil {
		return nil, err
	}
	var out []core.ExpenseRecord
	for i, row := range rows {
		e, err := parseExpenseRow(row)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed expense row", "sheet", c.expensesSheet, "row", i+2, "error", err)
			continue
		}
		if e.UserID != userID {
			continue
		}
		if w != nil && !w.Contains(e.Date) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (c *Client) RecentExpenses(ctx context.Context, userID string, w *calendar.Window, limit int) ([]core.ExpenseRecord, error) {
	out, err := c.ListExpenses(ctx, userID, w)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (c *Client) GetExpense(ctx context.Context, userID, id string) (core.ExpenseRecord, error) {
	all, err := c.ListExpenses(ctx, userID, nil)
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	for _, e := range all {
		if e.ID == id {
			return e, nil
		}
	}
	return core.ExpenseRecord{}, fmt.Errorf("get expense %s: %w", id, source.ErrNotFound)
}

func (c *Client) CreateExpense(ctx context.Context, e core.ExpenseRecord) error {
	return c.appendRow(ctx, c.expensesSheet, "A:G", expenseRow(e))
}

func (c *Client) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := c.readRows(ctx, c.categoriesSheet, "A2:F")
	if err != nil {
		return nil, err
	}
	var out []core.Category
	for i, row := range rows {
		cat, err := parseCategoryRow(row)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed category row", "sheet", c.categoriesSheet, "row", i+2, "error", err)
			continue
		}
		if cat.UserID == userID {
			out = append(out, cat)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, cat core.Category) error {
	return c.appendRow(ctx, c.categoriesSheet, "A:F", categoryRow(cat))
}

func (c *Client) readRows(ctx context.Context, sheet, cols string) ([][]any, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!%s", sheet, cols)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (c *Client) appendRow(ctx context.Context, sheet, cols string, row []any) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!%s", sheet, cols)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", rng, err)
	}
	return nil
}
