package repository

import (
	"context"

	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/dto"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChangeRecordRepository is the append-only audit trail surface: insert and
// list, nothing else.
type ChangeRecordRepository interface {
	Create(ctx context.Context, rec *model.ChangeRecord) error
	List(ctx context.Context, filter dto.ChangeFilter) ([]model.ChangeRecord, int64, error)
}

type changeRecordRepo struct{ db *gorm.DB }

func NewChangeRecordRepository(db *gorm.DB) ChangeRecordRepository {
	return &changeRecordRepo{db: db}
}

func (r *changeRecordRepo) Create(ctx context.Context, rec *model.ChangeRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *changeRecordRepo) List(ctx context.Context, filter dto.ChangeFilter) ([]model.ChangeRecord, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.ChangeRecord{})

	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := (page - 1) * limit

	var records []model.ChangeRecord
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&records).Error
	return records, total, err
}
