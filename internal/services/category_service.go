package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"spendlens/internal/core"
	"spendlens/internal/source"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateCategory = errors.New("category name already exists")
)

type CategoryService struct {
	store source.CategoryStore
	newID func() string
}

func NewCategoryService(store source.CategoryStore) *CategoryService {
	return &CategoryService{store: store, newID: uuid.NewString}
}

func (s *CategoryService) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	cats, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// CreateCategory rejects a name the user already has, ignoring case.
func (s *CategoryService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.ID = s.newID()
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
	if c.Icon == "" {
		c.Icon = "tag"
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	existing, err := s.ListCategories(ctx, c.UserID)
	if err != nil {
		return core.Category{}, err
	}
	for _, e := range existing {
		if strings.EqualFold(e.Name, c.Name) {
			return core.Category{}, fmt.Errorf("%w: %q", ErrDuplicateCategory, c.Name)
		}
	}

	if err := s.store.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, source.ErrConflict) {
			return core.Category{}, fmt.Errorf("%w: %q", ErrDuplicateCategory, c.Name)
		}
		return core.Category{}, fmt.Errorf("save category: %w", err)
	}
	return c, nil
}
