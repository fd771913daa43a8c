package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/dto"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/model"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	barcodeCachePrefix = "product:barcode:"
	barcodeCacheTTL    = 10 * time.Minute
)

// ProductService defines the business logic contract for the catalog.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
	ImportXLSX(ctx context.Context, r io.Reader) (*dto.ImportResult, error)

	// ResolveBarcode implements the scan workflow's product resolution: a
	// missing catalog entry yields an unresolved placeholder, not an error.
	ResolveBarcode(ctx context.Context, code string) (*dto.ScannedProduct, error)
}

type productService struct {
	repo repository.ProductRepository
	rdb  *redis.Client
}

func NewProductService(repo repository.ProductRepository, rdb *redis.Client) ProductService {
	return &productService{repo: repo, rdb: rdb}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if _, err := s.repo.FindByBarcode(ctx, req.Barcode); err == nil {
		return nil, ErrBarcodeTaken
	}

	p := &model.Product{
		Barcode:  req.Barcode,
		Name:     req.Name,
		Category: req.Category,
		Unit:     req.Unit,
		Quantity: req.Quantity,
		MinStock: req.MinStock,
		Active:   true,
	}
	if p.Unit == "" {
		p.Unit = "unidad"
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	s.invalidateBarcode(ctx, p.Barcode)
	resp := toProductResponse(p)
	return &resp, nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	resp := toProductResponse(p)
	return &resp, nil
}

func (s *productService) GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error) {
	// Cache first — scan flows hit the same barcode repeatedly.
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, barcodeCachePrefix+barcode).Result(); err == nil {
			var cached dto.ProductResponse
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	p, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	resp := toProductResponse(p)
	if s.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			// Best-effort: a cache write failure never fails the lookup.
			s.rdb.Set(ctx, barcodeCachePrefix+barcode, data, barcodeCacheTTL)
		}
	}
	return &resp, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	resp := &dto.ProductListResponse{
		Products: make([]dto.ProductResponse, 0, len(products)),
		Total:    total,
		Page:     filter.Page,
		Limit:    filter.Limit,
	}
	for i := range products {
		resp.Products = append(resp.Products, toProductResponse(&products[i]))
	}
	return resp, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
	}
	if req.MinStock != nil {
		p.MinStock = *req.MinStock
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	s.invalidateBarcode(ctx, p.Barcode)
	resp := toProductResponse(p)
	return &resp, nil
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	s.invalidateBarcode(ctx, p.Barcode)
	return nil
}

func (s *productService) Reactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Reactivate(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// ResolveBarcode backs the scan workflow. ProductNotFound is downgraded to a
// zero-stock placeholder flagged Unresolved; the operator is warned before any
// mutation against it. Transport errors pass through as retryable.
func (s *productService) ResolveBarcode(ctx context.Context, code string) (*dto.ScannedProduct, error) {
	resp, err := s.GetByBarcode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return &dto.ScannedProduct{
				Barcode:    code,
				Name:       "",
				Unit:       "unidad",
				Quantity:   0,
				Unresolved: true,
			}, nil
		}
		return nil, err
	}
	return &dto.ScannedProduct{
		ID:       resp.ID,
		Barcode:  resp.Barcode,
		Name:     resp.Name,
		Category: resp.Category,
		Unit:     resp.Unit,
		Quantity: resp.Quantity,
		MinStock: resp.MinStock,
	}, nil
}

// ─── XLSX import ─────────────────────────────────────────────────────────────

// ImportXLSX ingests a spreadsheet catalog. Expected columns: name, barcode,
// category, unit, quantity, min stock; a header row is skipped when the
// quantity column of the first row is not numeric. Rows upsert by barcode.
func (s *productService) ImportXLSX(ctx context.Context, r io.Reader) (*dto.ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}

	result := &dto.ImportResult{}
	start := 0
	if len(rows[0]) >= 5 {
		if _, err := strconv.Atoi(strings.TrimSpace(rows[0][4])); err != nil {
			start = 1 // header row
		}
	}

	for i := start; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 2 || strings.TrimSpace(row[0]) == "" {
			result.Skipped++
			continue
		}
		name := strings.TrimSpace(row[0])
		barcode := strings.TrimSpace(row[1])
		if barcode == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: missing barcode", i+1))
			continue
		}
		category := cell(row, 2, "general")
		unit := cell(row, 3, "unidad")
		quantity := cellInt(row, 4, 0)
		minStock := cellInt(row, 5, 5)

		existing, err := s.repo.FindByBarcode(ctx, barcode)
		switch {
		case err == nil:
			existing.Name = name
			existing.Category = category
			existing.Unit = unit
			existing.MinStock = minStock
			if err := s.repo.Update(ctx, existing); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
				continue
			}
			s.invalidateBarcode(ctx, barcode)
			result.Updated++
		case errors.Is(err, gorm.ErrRecordNotFound):
			p := &model.Product{
				Barcode:  barcode,
				Name:     name,
				Category: category,
				Unit:     unit,
				Quantity: quantity,
				MinStock: minStock,
				Active:   true,
			}
			if err := s.repo.Create(ctx, p); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
				continue
			}
			result.Created++
		default:
			return result, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	log.Info().Int("created", result.Created).Int("updated", result.Updated).
		Int("skipped", result.Skipped).Msg("catalog import finished")
	return result, nil
}

func cell(row []string, idx int, def string) string {
	if idx < len(row) {
		if v := strings.TrimSpace(row[idx]); v != "" {
			return v
		}
	}
	return def
}

func cellInt(row []string, idx, def int) int {
	if idx < len(row) {
		if v, err := strconv.Atoi(strings.TrimSpace(row[idx])); err == nil && v >= 0 {
			return v
		}
	}
	return def
}

func (s *productService) invalidateBarcode(ctx context.Context, barcode string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, barcodeCachePrefix+barcode).Err(); err != nil {
		log.Warn().Str("barcode", barcode).Err(err).Msg("cache invalidation failed")
	}
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:          p.ID.String(),
		Barcode:     p.Barcode,
		Name:        p.Name,
		Category:    p.Category,
		Unit:        p.Unit,
		Quantity:    p.Quantity,
		MinStock:    p.MinStock,
		LowStock:    p.LowStock(),
		Version:     p.Version,
		Active:      p.Active,
		LastUpdated: p.LastUpdated.UTC().Format(time.RFC3339),
	}
}
