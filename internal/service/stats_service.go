package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/dto"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/infra"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/repository"
)

// StatsService aggregates inventory figures for the dashboard and the PDF
// report.
type StatsService interface {
	Summary(ctx context.Context) (*dto.StatsResponse, error)
	Report(ctx context.Context) (string, error)
}

type statsService struct {
	repo        repository.ProductRepository
	storagePath string
}

func NewStatsService(repo repository.ProductRepository, storagePath string) StatsService {
	return &statsService{repo: repo, storagePath: storagePath}
}

func (s *statsService) Summary(ctx context.Context) (*dto.StatsResponse, error) {
	products, err := s.repo.ListAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	resp := &dto.StatsResponse{
		TotalProducts: len(products),
		TopProducts:   []dto.TopProduct{},
		ByCategory:    []dto.CategoryStats{},
	}

	byCategory := make(map[string]*dto.CategoryStats)
	for i := range products {
		p := &products[i]
		resp.TotalUnits += p.Quantity
		if p.LowStock() {
			resp.LowStockCount++
		}
		cs, ok := byCategory[p.Category]
		if !ok {
			cs = &dto.CategoryStats{Name: p.Category}
			byCategory[p.Category] = cs
		}
		cs.Products++
		cs.Units += p.Quantity
	}
	resp.Categories = len(byCategory)

	for _, cs := range byCategory {
		resp.ByCategory = append(resp.ByCategory, *cs)
	}
	sort.Slice(resp.ByCategory, func(i, j int) bool {
		return resp.ByCategory[i].Name < resp.ByCategory[j].Name
	})

	sort.Slice(products, func(i, j int) bool {
		return products[i].Quantity > products[j].Quantity
	})
	for i := 0; i < len(products) && i < 5; i++ {
		resp.TopProducts = append(resp.TopProducts, dto.TopProduct{
			Name:     products[i].Name,
			Category: products[i].Category,
			Quantity: products[i].Quantity,
		})
	}

	return resp, nil
}

// Report renders the current inventory snapshot as a PDF and returns its path.
func (s *statsService) Report(ctx context.Context) (string, error) {
	products, err := s.repo.ListAllActive(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	data := infra.InventoryReportData{
		GeneratedAt:   time.Now(),
		TotalProducts: len(products),
		Products:      products,
	}
	for i := range products {
		data.TotalUnits += products[i].Quantity
		if products[i].LowStock() {
			data.LowStockCount++
		}
	}
	return infra.GenerateInventoryReport(data, s.storagePath)
}
