package scan

import (
	"context"
	"errors"
)

// CameraOptions hint the platform which device to open and at what resolution.
// Rear-facing at 1280x720 is the scanning default.
type CameraOptions struct {
	FacingRear bool
	Width      int
	Height     int
}

// DefaultCameraOptions returns the scanning defaults.
func DefaultCameraOptions() CameraOptions {
	return CameraOptions{FacingRear: true, Width: 1280, Height: 720}
}

// Camera is the platform video capability. Acquire hands out an owned Stream;
// the caller is responsible for releasing it through Stop on every exit path.
type Camera interface {
	Acquire(ctx context.Context, opts CameraOptions) (Stream, error)
}

// Stream is a live frame source. Stop releases the underlying device and must
// be idempotent.
type Stream interface {
	FrameSource
	Stop()
}

var (
	// ErrPermissionDenied means the operator refused camera access.
	ErrPermissionDenied = errors.New("camera permission denied")
	// ErrNoCamera means no camera device exists on this platform.
	ErrNoCamera = errors.New("no camera available")
)

// UnavailableCamera is the headless default. Acquire always fails with
// ErrNoCamera, which pushes sessions to manual entry or still-image
// detection instead of live polling.
type UnavailableCamera struct{}

func (UnavailableCamera) Acquire(context.Context, CameraOptions) (Stream, error) {
	return nil, ErrNoCamera
}
