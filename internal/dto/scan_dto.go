package dto

// ─── Requests ────────────────────────────────────────────────────────────────

// StartScanRequest opens a scan session. Mode "camera" acquires the camera and
// starts the detection loop; "manual" leaves the session idle waiting for a
// typed barcode.
type StartScanRequest struct {
	Mode string `json:"mode" validate:"required,oneof=camera manual"`
}

type ManualCodeRequest struct {
	Barcode string `json:"barcode" validate:"required,min=4,max=48"`
}

// QuantityRequest adjusts the session's quantity selector.
// "inc"/"dec" step by one (floor 1); "set" applies Value directly.
type QuantityRequest struct {
	Op    string `json:"op"    validate:"required,oneof=inc dec set"`
	Value int    `json:"value" validate:"omitempty,min=1"`
}

// CommitScanRequest applies the selected mutation to the resolved product.
// CreateProduct must be set to commit against an unresolved placeholder: the
// catalog entry is created first, then the mutation proceeds.
type CommitScanRequest struct {
	Type          string `json:"type" validate:"required,oneof=add remove"`
	CreateProduct bool   `json:"create_product"`
	// Placeholder fields, used only together with CreateProduct.
	Name     string `json:"name"     validate:"omitempty,min=2,max=120"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
	MinStock int    `json:"min_stock" validate:"min=0"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

// ScanSessionResponse is the full session snapshot the client polls.
type ScanSessionResponse struct {
	ID            string           `json:"id"`
	State         string           `json:"state"`
	Quantity      int              `json:"quantity"`
	CameraActive  bool             `json:"camera_active"`
	DecoderAbsent bool             `json:"decoder_absent,omitempty"`
	Product       *ScannedProduct  `json:"product,omitempty"`
	LastError     string           `json:"last_error,omitempty"`
}

// ScannedProduct is the resolved (or placeholder) product inside a session.
type ScannedProduct struct {
	ID         string `json:"id,omitempty"`
	Barcode    string `json:"barcode"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Unit       string `json:"unit"`
	Quantity   int    `json:"quantity"`
	MinStock   int    `json:"min_stock"`
	Unresolved bool   `json:"unresolved"`
}

// DetectedCodeResponse is one candidate from a still-image decode.
type DetectedCodeResponse struct {
	Value  string `json:"value"`
	Format string `json:"format"`
}

// StockAdjustResponse reports a committed mutation. Journaled=false signals a
// partial commit: the stock changed but the audit record could not be written
// and was queued for reconciliation.
type StockAdjustResponse struct {
	Product   ProductResponse `json:"product"`
	Change    *ChangeResponse `json:"change,omitempty"`
	Journaled bool            `json:"journaled"`
	Warning   string          `json:"warning,omitempty"`
}
