// Package worker holds the consumers run by spendlens-worker.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spendlens/internal/amqp"
	"spendlens/internal/analytics"
	"spendlens/internal/core"
	"spendlens/internal/source"
)

// SummaryComputer is satisfied by *analytics.Engine.
type SummaryComputer interface {
	Summary(ctx context.Context, userID string) (analytics.SummaryReport, error)
}

// DigestPublisher is satisfied by *amqp.Client.
type DigestPublisher interface {
	PublishSummaryDigest(ctx context.Context, msg *amqp.SummaryDigestMessage) error
}

// DigestWorker reacts to recorded expenses: it optionally mirrors the
// record to a secondary store (Google Sheets) and publishes a fresh summary
// digest for the user.
type DigestWorker struct {
	records    source.ExpenseGetter
	categories source.CategoryReader
	mirror     source.ExpenseWriter
	summaries  SummaryComputer
	publisher  DigestPublisher
	clock      func() time.Time
}

// NewDigestWorker wires the worker. mirror may be nil to disable mirroring.
func NewDigestWorker(records source.ExpenseGetter, categories source.CategoryReader, mirror source.ExpenseWriter, summaries SummaryComputer, publisher DigestPublisher) *DigestWorker {
	return &DigestWorker{
		records:    records,
		categories: categories,
		mirror:     mirror,
		summaries:  summaries,
		publisher:  publisher,
		clock:      time.Now,
	}
}

// HandleExpenseRecorded processes one message. Any returned error makes the
// consumer requeue the message, so every step must be safe to repeat.
func (w *DigestWorker) HandleExpenseRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error {
	slog.InfoContext(ctx, "Processing expense recorded message", "id", msg.ID, "user_id", msg.UserID)

	record, err := w.records.GetExpense(ctx, msg.UserID, msg.ID)
	if err != nil {
		return fmt.Errorf("get expense: %w", err)
	}

	if w.mirror != nil {
		if err := w.mirrorRecord(ctx, record); err != nil {
			return fmt.Errorf("mirror expense: %w", err)
		}
	}

	summary, err := w.summaries.Summary(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("compute summary: %w", err)
	}

	digest := &amqp.SummaryDigestMessage{
		UserID:      msg.UserID,
		ExpenseID:   msg.ID,
		GeneratedAt: w.clock(),
		Summary:     summary,
	}
	if err := w.publisher.PublishSummaryDigest(ctx, digest); err != nil {
		return fmt.Errorf("publish digest: %w", err)
	}

	slog.InfoContext(ctx, "Summary digest published",
		"user_id", msg.UserID,
		"current_cents", summary.CurrentMonth.Total.Cents,
		"change_percent", summary.MonthlyChangePercent)
	return nil
}

// mirrorRecord writes the record to the mirror unless it is already there.
// When the mirror also stores categories, the record's category is copied
// first so analytics over the mirror can resolve it.
func (w *DigestWorker) mirrorRecord(ctx context.Context, record core.ExpenseRecord) error {
	if getter, ok := w.mirror.(source.ExpenseGetter); ok {
		if _, err := getter.GetExpense(ctx, record.UserID, record.ID); err == nil {
			slog.InfoContext(ctx, "Expense already mirrored", "id", record.ID)
			return nil
		}
	}

	if store, ok := w.mirror.(source.CategoryStore); ok && w.categories != nil {
		if err := w.mirrorCategory(ctx, store, record); err != nil {
			return err
		}
	}

	if err := w.mirror.CreateExpense(ctx, record); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Expense mirrored", "id", record.ID, "amount_cents", record.Amount.Cents)
	return nil
}

func (w *DigestWorker) mirrorCategory(ctx context.Context, store source.CategoryStore, record core.ExpenseRecord) error {
	mirrored, err := store.ListCategories(ctx, record.UserID)
	if err != nil {
		return fmt.Errorf("list mirrored categories: %w", err)
	}
	for _, c := range mirrored {
		if c.ID == record.CategoryID {
			return nil
		}
	}

	primary, err := source.ListCategoriesCovering(ctx, w.categories, record.UserID, record.CategoryID)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	for _, c := range primary {
		if c.ID == record.CategoryID {
			return store.CreateCategory(ctx, c)
		}
	}
	return fmt.Errorf("category %s: %w", record.CategoryID, source.ErrNotFound)
}
