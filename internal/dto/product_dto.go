package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Barcode  string `json:"barcode"   validate:"required,min=4,max=48"`
	Name     string `json:"name"      validate:"required,min=2,max=120"`
	Category string `json:"category"  validate:"required"`
	Unit     string `json:"unit"`
	Quantity int    `json:"quantity"  validate:"min=0"`
	MinStock int    `json:"min_stock" validate:"min=0"`
}

type UpdateProductRequest struct {
	Name     *string `json:"name"      validate:"omitempty,min=2,max=120"`
	Category *string `json:"category"`
	Unit     *string `json:"unit"`
	MinStock *int    `json:"min_stock" validate:"omitempty,min=0"`
}

// AdjustStockRequest is the direct, non-scan stock correction from the catalog
// view. Quantity is the signed delta to apply.
type AdjustStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Reason string `json:"reason" validate:"max=200"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Query    string `form:"q"`
	Barcode  string `form:"barcode"`
	Category string `form:"category"`
	LowStock bool   `form:"low_stock"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID          string `json:"id"`
	Barcode     string `json:"barcode"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Unit        string `json:"unit"`
	Quantity    int    `json:"quantity"`
	MinStock    int    `json:"min_stock"`
	LowStock    bool   `json:"low_stock"`
	Version     int    `json:"version"`
	Active      bool   `json:"active"`
	LastUpdated string `json:"last_updated"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// ImportResult summarizes an xlsx catalog import.
type ImportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}
