package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/dto"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/repository"
)

// ChangeService reads the audit trail for the history view.
type ChangeService interface {
	List(ctx context.Context, filter dto.ChangeFilter) (*dto.ChangeListResponse, error)
}

type changeService struct {
	repo repository.ChangeRecordRepository
}

func NewChangeService(repo repository.ChangeRecordRepository) ChangeService {
	return &changeService{repo: repo}
}

func (s *changeService) List(ctx context.Context, filter dto.ChangeFilter) (*dto.ChangeListResponse, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	resp := &dto.ChangeListResponse{
		Changes: make([]dto.ChangeResponse, 0, len(records)),
		Total:   total,
		Page:    filter.Page,
		Limit:   filter.Limit,
	}
	for _, rec := range records {
		resp.Changes = append(resp.Changes, dto.ChangeResponse{
			ID:               rec.ID.String(),
			ProductID:        rec.ProductID.String(),
			ProductName:      rec.ProductName,
			Type:             rec.Type,
			Quantity:         rec.Quantity,
			PreviousQuantity: rec.PreviousQuantity,
			NewQuantity:      rec.NewQuantity,
			Operator:         rec.Operator,
			Timestamp:        rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp, nil
}
