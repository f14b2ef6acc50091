package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"spendlens/internal/analytics"
	"spendlens/internal/calendar"
	"spendlens/internal/core"
	"spendlens/internal/source"
)

// DefaultRecentLimit matches the page size of the expense list.
const DefaultRecentLimit = 50

// MaxRecentLimit bounds a single listing request.
const MaxRecentLimit = 500

// ExpensePublisher is satisfied by *amqp.Client.
type ExpensePublisher interface {
	PublishExpenseRecorded(ctx context.Context, id, userID string) error
}

// ExpenseStore is what the expense service needs from the Record Source.
type ExpenseStore interface {
	source.ExpenseWriter
	source.ExpenseLister
}

// ExpenseService validates and stores expenses, then announces them.
type ExpenseService struct {
	store      ExpenseStore
	categories source.CategoryReader
	publisher  ExpensePublisher
	clock      func() time.Time
	newID      func() string
}

// NewExpenseService wires the service. publisher may be nil.
func NewExpenseService(store ExpenseStore, categories source.CategoryReader, publisher ExpensePublisher, clock func() time.Time) *ExpenseService {
	if clock == nil {
		clock = time.Now
	}
	return &ExpenseService{
		store:      store,
		categories: categories,
		publisher:  publisher,
		clock:      clock,
		newID:      uuid.NewString,
	}
}

// CreateExpense assigns an id, validates, checks the category belongs to
// the user and persists. Publishing is best-effort.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.ExpenseRecord) (core.ExpenseRecord, error) {
	e.ID = s.newID()
	e.Title = strings.TrimSpace(e.Title)
	e.Description = strings.TrimSpace(e.Description)

	if err := e.Validate(core.DateOf(s.clock())); err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	cats, err := source.ListCategoriesCovering(ctx, s.categories, e.UserID, e.CategoryID)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("list categories: %w", err)
	}
	if !source.Covers(cats, e.CategoryID) {
		return core.ExpenseRecord{}, fmt.Errorf("%w: category %q", analytics.ErrUnresolvedReference, e.CategoryID)
	}

	if err := s.store.CreateExpense(ctx, e); err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("save expense: %w", err)
	}

	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping expense recorded message", "id", e.ID)
	} else if err := s.publisher.PublishExpenseRecorded(ctx, e.ID, e.UserID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense recorded message", "id", e.ID, "error", err)
	}
	return e, nil
}

// ExpenseView is a record joined with its category. Category is nil when
// the record points at a category the user no longer has.
type ExpenseView struct {
	core.ExpenseRecord
	Category *core.Category
}

// RecentExpenses lists a user's newest expenses with their categories,
// optionally limited to one calendar month. A non-positive limit selects
// DefaultRecentLimit.
func (s *ExpenseService) RecentExpenses(ctx context.Context, userID string, year, month *int, limit int) ([]ExpenseView, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		return nil, fmt.Errorf("%w: limit must be at most %d", analytics.ErrInvalidParameter, MaxRecentLimit)
	}
	var w *calendar.Window
	if year != nil || month != nil {
		if year == nil || month == nil {
			return nil, fmt.Errorf("%w: year and month must be given together", analytics.ErrInvalidParameter)
		}
		m, err := calendar.Month(*year, *month)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", analytics.ErrInvalidParameter, err)
		}
		w = &m
	}
	records, err := s.store.RecentExpenses(ctx, userID, w, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: recent expenses: %w", analytics.ErrUpstreamQuery, err)
	}

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.CategoryID)
	}
	cats, err := source.ListCategoriesCovering(ctx, s.categories, userID, ids...)
	if err != nil {
		return nil, fmt.Errorf("%w: list categories: %w", analytics.ErrUpstreamQuery, err)
	}
	byID := make(map[string]core.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}

	out := make([]ExpenseView, 0, len(records))
	for _, r := range records {
		v := ExpenseView{ExpenseRecord: r}
		if c, ok := byID[r.CategoryID]; ok {
			v.Category = &c
		}
		out = append(out, v)
	}
	return out, nil
}

// IsClientError reports whether err was caused by the request rather than
// by a failing dependency.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrDuplicateCategory) ||
		errors.Is(err, analytics.ErrInvalidParameter) ||
		errors.Is(err, analytics.ErrUnresolvedReference)
}
