package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/dto"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/model"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/repository"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// StockService owns the read-modify-write stock mutation with its audit trail.
//
// The product update and the audit append are two distinct store writes in
// update-then-log order: the ChangeRecord is only attempted once the product
// write is confirmed. When the append fails the mutation is reported as
// unjournaled (partial commit) and the record is queued for reconciliation —
// the stock level the operator sees is already the stored truth.
type StockService interface {
	// Adjust applies an "add" or "remove" of magnitude qty (≥1).
	Adjust(ctx context.Context, productID uuid.UUID, changeType string, qty int, operator string) (*dto.StockAdjustResponse, error)
	// ApplyDelta applies a signed correction from the catalog view, audited
	// with type "update".
	ApplyDelta(ctx context.Context, productID uuid.UUID, delta int, operator string) (*dto.StockAdjustResponse, error)
}

type stockService struct {
	products   repository.ProductRepository
	changes    repository.ChangeRecordRepository
	dispatcher *worker.Dispatcher
	rdb        *redis.Client
}

func NewStockService(
	products repository.ProductRepository,
	changes repository.ChangeRecordRepository,
	dispatcher *worker.Dispatcher,
	rdb *redis.Client,
) StockService {
	return &stockService{products: products, changes: changes, dispatcher: dispatcher, rdb: rdb}
}

func (s *stockService) Adjust(ctx context.Context, productID uuid.UUID, changeType string, qty int, operator string) (*dto.StockAdjustResponse, error) {
	if qty < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}

	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var newQty int
	switch changeType {
	case model.ChangeAdd:
		newQty = p.Quantity + qty
	case model.ChangeRemove:
		if p.Quantity < qty {
			// Local validation failure: no store write attempted.
			return nil, ErrInsufficientStock
		}
		newQty = p.Quantity - qty
	default:
		return nil, fmt.Errorf("unknown change type %q", changeType)
	}

	return s.commit(ctx, p, changeType, qty, newQty, operator)
}

func (s *stockService) ApplyDelta(ctx context.Context, productID uuid.UUID, delta int, operator string) (*dto.StockAdjustResponse, error) {
	if delta == 0 {
		return nil, fmt.Errorf("delta must be non-zero")
	}

	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	newQty := p.Quantity + delta
	if newQty < 0 {
		return nil, ErrInsufficientStock
	}

	magnitude := delta
	if magnitude < 0 {
		magnitude = -magnitude
	}
	return s.commit(ctx, p, model.ChangeUpdate, magnitude, newQty, operator)
}

// commit performs the two writes. p carries the snapshot read at the start of
// the workflow; the conditional update rejects the write if anyone advanced
// the product since.
func (s *stockService) commit(ctx context.Context, p *model.Product, changeType string, qty, newQty int, operator string) (*dto.StockAdjustResponse, error) {
	if err := s.products.UpdateStock(ctx, p.ID, p.Version, newQty); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, ErrConcurrentModification
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	s.invalidateBarcode(ctx, p.Barcode)

	updated := *p
	updated.Quantity = newQty
	updated.Version = p.Version + 1
	updated.LastUpdated = time.Now()

	if operator == "" {
		operator = "operator"
	}
	rec := &model.ChangeRecord{
		ID:               uuid.New(),
		ProductID:        p.ID,
		ProductName:      p.Name,
		Type:             changeType,
		Quantity:         qty,
		PreviousQuantity: p.Quantity,
		NewQuantity:      newQty,
		Operator:         operator,
	}

	resp := &dto.StockAdjustResponse{Product: toProductResponse(&updated), Journaled: true}

	if err := s.changes.Create(ctx, rec); err != nil {
		// Partial commit: the product write already landed. Surface it
		// distinctly and hand the record to the reconciliation queue.
		log.Error().Str("product_id", p.ID.String()).Str("type", changeType).Err(err).
			Msg("stock updated but audit append failed")
		resp.Journaled = false
		resp.Warning = "stock updated but the audit record could not be written; it was queued for reconciliation"
		if s.dispatcher != nil {
			if qerr := s.dispatcher.EnqueueRelog(ctx, rec); qerr != nil {
				log.Error().Err(qerr).Msg("failed to enqueue audit re-log job")
				resp.Warning = "stock updated but the audit record could not be written; manual reconciliation required"
			}
		}
		return resp, nil
	}

	resp.Change = &dto.ChangeResponse{
		ID:               rec.ID.String(),
		ProductID:        rec.ProductID.String(),
		ProductName:      rec.ProductName,
		Type:             rec.Type,
		Quantity:         rec.Quantity,
		PreviousQuantity: rec.PreviousQuantity,
		NewQuantity:      rec.NewQuantity,
		Operator:         rec.Operator,
		Timestamp:        rec.CreatedAt.UTC().Format(time.RFC3339),
	}
	return resp, nil
}

func (s *stockService) invalidateBarcode(ctx context.Context, barcode string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, barcodeCachePrefix+barcode).Err(); err != nil {
		log.Warn().Str("barcode", barcode).Err(err).Msg("cache invalidation failed")
	}
}
