package audit

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, entry *AuditLog) error
	List(ctx context.Context, page, limit int) ([]AuditLog, int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, entry *AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *gormRepository) List(ctx context.Context, page, limit int) ([]AuditLog, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []AuditLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&logs).Error
	return logs, total, err
}
