package services

import (
	"context"
	"strings"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/store"
)

// categoryService handles category lookups. Categories are only ever
// created as a side effect of recording or importing transactions.
type categoryService struct {
	categories store.CategoryStore
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(categories store.CategoryStore) CategoryServicer {
	return &categoryService{categories: categories}
}

// GetCategories retrieves a paginated list of categories ordered by title.
func (s *categoryService) GetCategories(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	return s.categories.List(ctx, page)
}

// GetCategoryByID retrieves a category by its ID.
func (s *categoryService) GetCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category ID is required")
	}
	return s.categories.FindByID(ctx, id)
}
