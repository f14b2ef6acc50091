package google

import (
	"errors"
	"fmt"
	"strings"

	"spendlens/internal/core"
)

var errShortRow = errors.New("row has too few columns")

func expenseRow(e core.ExpenseRecord) []any {
	return []any{e.ID, e.UserID, e.Date.String(), e.Title, e.Description, e.Amount.String(), e.CategoryID}
}

func categoryRow(c core.Category) []any {
	return []any{c.ID, c.UserID, c.Name, c.Color, c.Icon, c.Description}
}

// parseExpenseRow reads an expenses row. Amounts may come back as numbers
// or as text with a decimal comma.
func parseExpenseRow(row []any) (core.ExpenseRecord, error) {
	cols := toStrings(row)
	if len(cols) < 7 {
		return core.ExpenseRecord{}, fmt.Errorf("%w: got %d", errShortRow, len(cols))
	}
	date, err := core.ParseDate(cols[2])
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	amount, err := core.ParseAmount(cols[5])
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("amount %q: %w", cols[5], err)
	}
	e := core.ExpenseRecord{
		ID:          cols[0],
		UserID:      cols[1],
		Date:        date,
		Title:       cols[3],
		Description: cols[4],
		Amount:      amount,
		CategoryID:  cols[6],
	}
	if e.ID == "" || e.CategoryID == "" {
		return core.ExpenseRecord{}, errors.New("missing id or category")
	}
	return e, nil
}

func parseCategoryRow(row []any) (core.Category, error) {
	cols := toStrings(row)
	if len(cols) < 3 {
		return core.Category{}, fmt.Errorf("%w: got %d", errShortRow, len(cols))
	}
	c := core.Category{ID: cols[0], UserID: cols[1], Name: cols[2]}
	if len(cols) > 3 {
		c.Color = cols[3]
	}
	if len(cols) > 4 {
		c.Icon = cols[4]
	}
	if len(cols) > 5 {
		c.Description = cols[5]
	}
	if c.ID == "" || c.Name == "" {
		return core.Category{}, errors.New("missing id or name")
	}
	return c, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
