package source

import (
	"context"
	"fmt"
	"log/slog"

	"spendlens/internal/cache"
	"spendlens/internal/core"
)

// CategoryStore is a category source that can also be written to.
type CategoryStore interface {
	CategoryReader
	CategoryWriter
}

// CachedCategories memoizes ListCategories per user. Writes go through to
// the wrapped store and drop the user's cached list.
type CachedCategories struct {
	next  CategoryStore
	cache cache.Cache[[]core.Category]
}

func NewCachedCategories(next CategoryStore, c cache.Cache[[]core.Category]) *CachedCategories {
	return &CachedCategories{next: next, cache: c}
}

func (c *CachedCategories) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	if cats, ok := c.cache.Get(userID); ok {
		slog.DebugContext(ctx, "Category cache hit", "user_id", userID, "count", len(cats))
		return append([]core.Category(nil), cats...), nil
	}
	cats, err := c.next.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.cache.Set(userID, cats)
	return append([]core.Category(nil), cats...), nil
}

func (c *CachedCategories) CreateCategory(ctx context.Context, cat core.Category) error {
	if err := c.next.CreateCategory(ctx, cat); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	c.cache.Delete(cat.UserID)
	return nil
}

// Invalidate drops the cached categories of userID.
func (c *CachedCategories) Invalidate(userID string) {
	c.cache.Delete(userID)
}

// Invalidator is implemented by category readers that cache per user.
type Invalidator interface {
	Invalidate(userID string)
}

// Covers reports whether every id names one of cats.
func Covers(cats []core.Category, ids ...string) bool {
	known := make(map[string]struct{}, len(cats))
	for _, c := range cats {
		known[c.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return false
		}
	}
	return true
}

// ListCategoriesCovering lists the categories of userID. If one of ids is
// missing and r caches, the user's entry is dropped and r is read once
// more, so categories created by another process resolve before the
// cached list expires.
func ListCategoriesCovering(ctx context.Context, r CategoryReader, userID string, ids ...string) ([]core.Category, error) {
	cats, err := r.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	return RefreshIfMissing(ctx, r, userID, cats, ids...)
}

// RefreshIfMissing returns cats unchanged when they cover ids or r does
// not cache. Otherwise it invalidates userID and lists again.
func RefreshIfMissing(ctx context.Context, r CategoryReader, userID string, cats []core.Category, ids ...string) ([]core.Category, error) {
	inv, ok := r.(Invalidator)
	if !ok || Covers(cats, ids...) {
		return cats, nil
	}
	slog.DebugContext(ctx, "Category cache miss on id, refreshing", "user_id", userID)
	inv.Invalidate(userID)
	return r.ListCategories(ctx, userID)
}
