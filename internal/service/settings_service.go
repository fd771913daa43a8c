package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/dto"

	"github.com/redis/go-redis/v9"
)

const settingsKey = "settings"

// SettingsService persists the Ajustes toggles in a Redis hash.
type SettingsService interface {
	Get(ctx context.Context) (*dto.Settings, error)
	Update(ctx context.Context, req dto.UpdateSettingsRequest) (*dto.Settings, error)
}

type settingsService struct {
	rdb *redis.Client
}

func NewSettingsService(rdb *redis.Client) SettingsService {
	return &settingsService{rdb: rdb}
}

func (s *settingsService) Get(ctx context.Context) (*dto.Settings, error) {
	fields, err := s.rdb.HGetAll(ctx, settingsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// Defaults apply to any field never written.
	out := &dto.Settings{
		Notifications: true,
		LowStockAlert: true,
		OperatorName:  "operator",
	}
	if v, ok := fields["notifications"]; ok {
		out.Notifications, _ = strconv.ParseBool(v)
	}
	if v, ok := fields["low_stock_alert"]; ok {
		out.LowStockAlert, _ = strconv.ParseBool(v)
	}
	if v, ok := fields["operator_name"]; ok && v != "" {
		out.OperatorName = v
	}
	return out, nil
}

func (s *settingsService) Update(ctx context.Context, req dto.UpdateSettingsRequest) (*dto.Settings, error) {
	fields := make(map[string]interface{})
	if req.Notifications != nil {
		fields["notifications"] = strconv.FormatBool(*req.Notifications)
	}
	if req.LowStockAlert != nil {
		fields["low_stock_alert"] = strconv.FormatBool(*req.LowStockAlert)
	}
	if req.OperatorName != nil {
		fields["operator_name"] = *req.OperatorName
	}

	if len(fields) > 0 {
		if err := s.rdb.HSet(ctx, settingsKey, fields).Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}
	return s.Get(ctx)
}
