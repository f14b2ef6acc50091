// Package memory is an in-process Record Source used for local runs and
// tests. Nothing is persisted.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"spendlens/internal/calendar"
	"spendlens/internal/core"
	"spendlens/internal/source"
)

type Store struct {
	mu         sync.Mutex
	categories []core.Category
	expenses   []core.ExpenseRecord
}

func New() *Store {
	return &Store{}
}

// NewFromFiles seeds the categories of userID from base/seed_categories.txt.
// Each line is "name[,#RRGGBB[,icon]]"; blank lines and # comments are skipped.
func NewFromFiles(base, userID string) *Store {
	s := New()
	lines := readLines(filepath.Join(base, "seed_categories.txt"))
	if len(lines) == 0 {
		lines = []string{"Food,#F97316,utensils", "Transport,#3B82F6,car", "Home,#10B981,home"}
	}
	for _, line := range lines {
		parts := strings.Split(line, ",")
		c := core.Category{ID: uuid.NewString(), UserID: userID, Name: strings.TrimSpace(parts[0]), Color: "#6B7280"}
		if len(parts) > 1 {
			c.Color = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			c.Icon = strings.TrimSpace(parts[2])
		}
		if c.Validate() != nil {
			continue
		}
		_ = s.CreateCategory(context.Background(), c)
	}
	return s
}

// Seed loads fixtures without validation.
func (s *Store) Seed(categories []core.Category, expenses []core.ExpenseRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append(s.categories, categories...)
	s.expenses = append(s.expenses, expenses...)
}

func (s *Store) CreateExpense(_ context.Context, e core.ExpenseRecord) error {
	if e.ID == "" {
		return fmt.Errorf("create expense: missing id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, e)
	return nil
}

func (s *Store) ListExpenses(_ context.Context, userID string, w *calendar.Window) ([]core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(userID, w), nil
}

// RecentExpenses returns up to limit records, newest date first.
func (s *Store) RecentExpenses(_ context.Context, userID string, w *calendar.Window, limit int) ([]core.ExpenseRecord, error) {
	s.mu.Lock()
	out := s.filter(userID, w)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) GetExpense(_ context.Context, userID, id string) (core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.expenses {
		if e.UserID == userID && e.ID == id {
			return e, nil
		}
	}
	return core.ExpenseRecord{}, fmt.Errorf("get expense %s: %w", id, source.ErrNotFound)
}

func (s *Store) ListCategories(_ context.Context, userID string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) error {
	if c.ID == "" {
		return fmt.Errorf("create category: missing id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.categories {
		if e.UserID == c.UserID && strings.EqualFold(e.Name, c.Name) {
			return fmt.Errorf("create category %q: %w", c.Name, source.ErrConflict)
		}
	}
	s.categories = append(s.categories, c)
	return nil
}

// filter must be called with s.mu held.
func (s *Store) filter(userID string, w *calendar.Window) []core.ExpenseRecord {
	out := make([]core.ExpenseRecord, 0, len(s.expenses))
	for _, e := range s.expenses {
		if e.UserID != userID {
			continue
		}
		if w != nil && !w.Contains(e.Date) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (s *Store) Close() error { return nil }

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
