package items

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"findit/campus-portal/lostfound-backend/pkg/apperrors"
)

// ItemFilter narrows List results
type ItemFilter struct {
	Status   *ItemStatus
	Category *ItemCategory
	Search   string
	Page     int
	Limit    int
}

type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	List(ctx context.Context, filter ItemFilter) ([]Item, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, item *Item) error {
	// Item and its images are inserted in one transaction by GORM's
	// association handling.
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	var item Item
	err := r.db.WithContext(ctx).Preload("Images").First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("item not found")
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *gormRepository) List(ctx context.Context, filter ItemFilter) ([]Item, int64, error) {
	query := r.db.WithContext(ctx).Model(&Item{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ? OR location ILIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []Item
	err := query.
		Preload("Images").
		Order("reported_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&results).Error
	return results, total, err
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Claims, proofs and images cascade via foreign key constraints.
	result := r.db.WithContext(ctx).Delete(&Item{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("item not found")
	}
	return nil
}
