// Package scan implements the scan-and-adjust workflow: camera acquisition,
// timer-driven barcode detection, duplicate suppression, product resolution
// and the commit hand-off to the stock service. Camera and decoder are
// platform capabilities consumed through interfaces so the workflow is
// testable and deployable against different devices.
package scan

import (
	"context"
	"errors"
	"image"
)

// Symbology identifies the barcode encoding standard of a detected code.
type Symbology string

const (
	SymbologyEAN13   Symbology = "ean_13"
	SymbologyEAN8    Symbology = "ean_8"
	SymbologyUPCA    Symbology = "upc_a"
	SymbologyUPCE    Symbology = "upc_e"
	SymbologyCode128 Symbology = "code_128"
	SymbologyCode39  Symbology = "code_39"
	SymbologyQR      Symbology = "qr_code"
	SymbologyUnknown Symbology = "unknown"
)

// DetectedCode is one candidate returned by a decoder pass.
type DetectedCode struct {
	Value  string
	Format Symbology
}

// FrameSource yields the current frame of a live video stream.
type FrameSource interface {
	Frame(ctx context.Context) (image.Image, error)
}

// Decoder is the barcode decoding capability. Detect runs against the current
// frame of a live source; DetectStill decodes a single uploaded image. Both may
// return zero candidates without error.
type Decoder interface {
	Supported() bool
	Detect(ctx context.Context, frames FrameSource) ([]DetectedCode, error)
	DetectStill(ctx context.Context, img image.Image) ([]DetectedCode, error)
}

// ErrDecoderUnavailable is returned when no decoder capability exists on this
// platform. Never fatal: the workflow stays usable via manual entry.
var ErrDecoderUnavailable = errors.New("barcode decoder unavailable")
