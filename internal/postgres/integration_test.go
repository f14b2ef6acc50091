//go:build integration

package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"

	"spendlens/internal/calendar"
	"spendlens/internal/core"
	"spendlens/internal/source"
)

// Run with: POSTGRES_TEST_URL=postgres://... go test -tags=integration ./internal/postgres

func TestIntegration_PostgresRepository(t *testing.T) {
	url := os.Getenv("POSTGRES_TEST_URL")
	if url == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping integration test")
	}

	ctx := context.Background()
	repo, err := Open(ctx, url)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer repo.Close()

	user := "it-" + uuid.NewString()
	cat := core.Category{ID: uuid.NewString(), UserID: user, Name: "Food", Color: "#FF0000"}
	if err := repo.CreateCategory(ctx, cat); err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	dup := core.Category{ID: uuid.NewString(), UserID: user, Name: "FOOD", Color: "#00FF00"}
	if err := repo.CreateCategory(ctx, dup); !errors.Is(err, source.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate name, got %v", err)
	}

	e := core.ExpenseRecord{
		ID:         uuid.NewString(),
		UserID:     user,
		Title:      "Lunch",
		Amount:     core.Money{Cents: 1250},
		Date:       core.NewDate(2024, 3, 31),
		CategoryID: cat.ID,
	}
	if err := repo.CreateExpense(ctx, e); err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	w, _ := calendar.Month(2024, 3)
	got, err := repo.ListExpenses(ctx, user, &w)
	if err != nil || len(got) != 1 || got[0].Date.String() != "2024-03-31" {
		t.Fatalf("ListExpenses() = %+v, %v", got, err)
	}

	w, _ = calendar.Month(2024, 4)
	got, err = repo.ListExpenses(ctx, user, &w)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected no april records, got %+v, %v", got, err)
	}

	if _, err := repo.GetExpense(ctx, user, uuid.NewString()); !errors.Is(err, source.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
