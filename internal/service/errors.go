package service

import "errors"

// Failure kinds surfaced to the workflow boundary. Handlers map these onto
// HTTP statuses and apierror kinds; none of them should ever crash a request.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrBarcodeTaken    = errors.New("barcode already registered")

	// ErrInsufficientStock blocks a remove whose magnitude exceeds the current
	// quantity. Validated locally, zero store writes attempted.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrConcurrentModification means another operator committed a stock change
	// between this workflow's read and its conditional write.
	ErrConcurrentModification = errors.New("product modified concurrently, re-scan and retry")

	// ErrStoreUnavailable wraps transport-level store failures. Retryable,
	// never silently replaced with fabricated data.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrUnresolvedProduct rejects a commit against a placeholder unless the
	// operator explicitly confirmed creating the catalog entry.
	ErrUnresolvedProduct = errors.New("scanned code is not in the catalog; confirm product creation to proceed")

	// ErrNoResolvedProduct means commit was called before any product was
	// scanned or entered.
	ErrNoResolvedProduct = errors.New("no product resolved in this session")
)
