package service

import (
	"context"
	"image"

	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/dto"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/scan"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ScanService drives scan sessions from the HTTP boundary and orchestrates
// the commit hand-off between a session and the stock service.
type ScanService interface {
	Start(ctx context.Context, mode string) (dto.ScanSessionResponse, error)
	Get(id uuid.UUID) (dto.ScanSessionResponse, error)
	ManualCode(ctx context.Context, id uuid.UUID, code string) (dto.ScanSessionResponse, error)
	Quantity(id uuid.UUID, req dto.QuantityRequest) (dto.ScanSessionResponse, error)
	Commit(ctx context.Context, id uuid.UUID, req dto.CommitScanRequest, operator string) (*dto.StockAdjustResponse, error)
	CloseSession(id uuid.UUID) error
	DetectStill(ctx context.Context, img image.Image) ([]dto.DetectedCodeResponse, error)
}

type scanService struct {
	registry *scan.Registry
	decoder  scan.Decoder
	products ProductService
	stock    StockService
}

func NewScanService(registry *scan.Registry, decoder scan.Decoder, products ProductService, stock StockService) ScanService {
	return &scanService{registry: registry, decoder: decoder, products: products, stock: stock}
}

// Start opens a session. In camera mode a capability failure does not kill the
// session: the snapshot carries the error and the operator falls back to
// manual entry.
func (s *scanService) Start(ctx context.Context, mode string) (dto.ScanSessionResponse, error) {
	sess := s.registry.Open()
	if mode == "camera" {
		if err := sess.StartCamera(ctx); err != nil {
			log.Warn().Str("session", sess.ID().String()).Err(err).
				Msg("scan: camera start failed, manual entry still available")
		}
	}
	return sess.Snapshot(), nil
}

func (s *scanService) Get(id uuid.UUID) (dto.ScanSessionResponse, error) {
	sess, err := s.registry.Get(id)
	if err != nil {
		return dto.ScanSessionResponse{}, err
	}
	return sess.Snapshot(), nil
}

func (s *scanService) ManualCode(ctx context.Context, id uuid.UUID, code string) (dto.ScanSessionResponse, error) {
	sess, err := s.registry.Get(id)
	if err != nil {
		return dto.ScanSessionResponse{}, err
	}
	if err := sess.EnterCode(ctx, code); err != nil {
		return sess.Snapshot(), err
	}
	return sess.Snapshot(), nil
}

func (s *scanService) Quantity(id uuid.UUID, req dto.QuantityRequest) (dto.ScanSessionResponse, error) {
	sess, err := s.registry.Get(id)
	if err != nil {
		return dto.ScanSessionResponse{}, err
	}
	switch req.Op {
	case "inc":
		sess.IncQuantity()
	case "dec":
		sess.DecQuantity()
	case "set":
		sess.SetQuantity(req.Value)
	}
	return sess.Snapshot(), nil
}

// Commit applies the selected mutation to the session's resolved product.
// Committing against an unresolved placeholder requires the explicit
// create_product confirmation; the catalog entry is created with zero stock
// and the mutation then proceeds against it.
func (s *scanService) Commit(ctx context.Context, id uuid.UUID, req dto.CommitScanRequest, operator string) (*dto.StockAdjustResponse, error) {
	sess, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}

	product := sess.Product()
	if product == nil {
		return nil, ErrNoResolvedProduct
	}

	if product.Unresolved {
		if !req.CreateProduct {
			return nil, ErrUnresolvedProduct
		}
		name := req.Name
		if name == "" {
			name = "Producto " + product.Barcode
		}
		created, err := s.products.Create(ctx, dto.CreateProductRequest{
			Barcode:  product.Barcode,
			Name:     name,
			Category: defaultStr(req.Category, "general"),
			Unit:     defaultStr(req.Unit, product.Unit),
			Quantity: 0,
			MinStock: req.MinStock,
		})
		if err != nil {
			return nil, err
		}
		product.ID = created.ID
		product.Name = created.Name
		product.Category = created.Category
		product.Unit = created.Unit
		product.Quantity = 0
		product.MinStock = created.MinStock
		product.Unresolved = false
	}

	productID, err := uuid.Parse(product.ID)
	if err != nil {
		return nil, ErrNoResolvedProduct
	}

	result, err := s.stock.Adjust(ctx, productID, req.Type, sess.SelectedQuantity(), operator)
	if err != nil {
		return nil, err
	}

	// Mirror the just-written value into the session and reset the selector.
	sess.CompleteCommit(dto.ScannedProduct{
		ID:       result.Product.ID,
		Barcode:  result.Product.Barcode,
		Name:     result.Product.Name,
		Category: result.Product.Category,
		Unit:     result.Product.Unit,
		Quantity: result.Product.Quantity,
		MinStock: result.Product.MinStock,
	})
	return result, nil
}

func (s *scanService) CloseSession(id uuid.UUID) error {
	return s.registry.Close(id)
}

// DetectStill decodes an uploaded image, the one-shot variant of detection.
func (s *scanService) DetectStill(ctx context.Context, img image.Image) ([]dto.DetectedCodeResponse, error) {
	if s.decoder == nil || !s.decoder.Supported() {
		return nil, scan.ErrDecoderUnavailable
	}
	codes, err := s.decoder.DetectStill(ctx, img)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DetectedCodeResponse, 0, len(codes))
	for _, c := range codes {
		out = append(out, dto.DetectedCodeResponse{Value: c.Value, Format: string(c.Format)})
	}
	return out, nil
}

func defaultStr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
