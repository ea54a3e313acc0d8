package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

type categoryStore struct {
	db *gorm.DB
}

// onTitleConflict makes category inserts idempotent by title.
var onTitleConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "title"}},
	DoNothing: true,
}

func (s *categoryStore) FindByTitle(ctx context.Context, title string) (*models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Where("title = ?", title).Limit(1).Find(&categories).Error; err != nil {
		return nil, classify(err)
	}
	if len(categories) == 0 {
		return nil, nil
	}
	return &categories[0], nil
}

func (s *categoryStore) FindByTitles(ctx context.Context, titles []string) ([]models.Category, error) {
	if len(titles) == 0 {
		return nil, nil
	}
	var categories []models.Category
	if err := s.db.WithContext(ctx).Where("title IN ?", titles).Find(&categories).Error; err != nil {
		return nil, classify(err)
	}
	return categories, nil
}

func (s *categoryStore) Create(ctx context.Context, category *models.Category) error {
	res := s.db.WithContext(ctx).Clauses(onTitleConflict).Omit(clause.Associations).Create(category)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	stored, err := s.FindByTitle(ctx, category.Title)
	if err != nil {
		return err
	}
	if stored == nil {
		return apperrors.WithMessage(apperrors.ErrStore, "category insert was ignored but no row exists for its title")
	}
	*category = *stored
	return nil
}

func (s *categoryStore) CreateBatch(ctx context.Context, categories []models.Category) ([]models.Category, error) {
	if len(categories) == 0 {
		return nil, nil
	}
	res := s.db.WithContext(ctx).Clauses(onTitleConflict).Omit(clause.Associations).Create(&categories)
	if res.Error != nil {
		return nil, classify(res.Error)
	}
	if res.RowsAffected == int64(len(categories)) {
		return categories, nil
	}

	titles := make([]string, len(categories))
	for i := range categories {
		titles[i] = categories[i].Title
	}
	return s.FindByTitles(ctx, titles)
}

func (s *categoryStore) FindByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, classify(err)
	}
	return &category, nil
}

func (s *categoryStore) List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Category{}).Session(&gorm.Session{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, classify(err)
	}

	var categories []models.Category
	if err := base.Scopes(pagination.Paginate(page)).Order("title ASC").Find(&categories).Error; err != nil {
		return nil, classify(err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

type auditStore struct {
	db *gorm.DB
}

func (s *auditStore) Create(ctx context.Context, entry *models.AuditLog) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return classify(err)
	}
	return nil
}
