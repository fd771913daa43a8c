package scan

import (
	"context"
	"sync"
	"time"

	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/dto"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// State of a scan session.
type State string

const (
	StateIdle            State = "idle"
	StateCameraActive    State = "camera_active"
	StateDetecting       State = "detecting"
	StateProductResolved State = "product_resolved"
)

// ProductResolver maps a detected or typed barcode to catalog data. A missing
// catalog entry is not an error: implementations return a placeholder with
// Unresolved set. An error means the store was unreachable and the lookup is
// retryable.
type ProductResolver interface {
	ResolveBarcode(ctx context.Context, code string) (*dto.ScannedProduct, error)
}

// Session is one scan-and-adjust workflow instance. All state is guarded by mu;
// the detection loop runs in its own goroutine and is cancelled through a
// per-start stop channel, so teardown from any exit path (manual stop, first
// detection, close, TTL expiry) stops polling and releases the camera exactly
// once. A detection or resolution that lands after teardown is discarded.
type Session struct {
	id      uuid.UUID
	decoder Decoder
	camera  Camera
	resolve ProductResolver
	poll    time.Duration

	mu            sync.Mutex
	state         State
	quantity      int
	product       *dto.ScannedProduct
	lastProcessed string
	lastErr       string
	decoderAbsent bool
	stream        Stream
	stopPoll      chan struct{}
	closed        bool
	touchedAt     time.Time
}

// NewSession creates an idle session with the quantity selector at its default.
func NewSession(decoder Decoder, camera Camera, resolver ProductResolver, poll time.Duration) *Session {
	return &Session{
		id:        uuid.New(),
		decoder:   decoder,
		camera:    camera,
		resolve:   resolver,
		poll:      poll,
		state:     StateIdle,
		quantity:  1,
		touchedAt: time.Now(),
	}
}

func (s *Session) ID() uuid.UUID { return s.id }

// StartCamera probes the decoder, acquires the camera and starts the detection
// loop. Both capability failures leave the session idle and usable via manual
// entry.
func (s *Session) StartCamera(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchedAt = time.Now()

	if s.closed {
		return ErrSessionClosed
	}
	if s.state != StateIdle && s.state != StateProductResolved {
		return nil // camera already running
	}
	if s.decoder == nil || !s.decoder.Supported() {
		s.decoderAbsent = true
		s.lastErr = ErrDecoderUnavailable.Error()
		return ErrDecoderUnavailable
	}
	if s.camera == nil {
		s.lastErr = ErrNoCamera.Error()
		return ErrNoCamera
	}

	stream, err := s.camera.Acquire(ctx, DefaultCameraOptions())
	if err != nil {
		s.lastErr = err.Error()
		return err
	}

	s.stream = stream
	s.state = StateCameraActive
	s.lastErr = ""
	s.lastProcessed = "" // dedup is scoped to one active scanning run
	s.stopPoll = make(chan struct{})
	go s.pollLoop(stream, s.stopPoll)
	return nil
}

// pollLoop drives detection on a fixed interval rather than per frame, to
// bound decoder load.
func (s *Session) pollLoop(stream Stream, stop chan struct{}) {
	s.mu.Lock()
	if s.state == StateCameraActive {
		s.state = StateDetecting
	}
	s.mu.Unlock()

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if code, ok := s.pollOnce(stream, stop); ok {
				s.resolveCode(context.Background(), code)
				return
			}
		}
	}
}

// pollOnce runs one detection pass. On the first non-duplicate hit it stops the
// loop and releases the camera while still holding the lock; the caller then
// resolves the product with the camera already closed.
func (s *Session) pollOnce(stream Stream, stop chan struct{}) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.poll)
	codes, err := s.decoder.Detect(ctx, stream)
	cancel()
	if err != nil || len(codes) == 0 {
		return "", false
	}
	code := codes[0].Value

	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-stop:
		// Torn down while this pass was in flight — discard the detection.
		return "", false
	default:
	}
	if code == s.lastProcessed {
		return "", false
	}
	s.lastProcessed = code
	s.stopCameraLocked()
	return code, true
}

func (s *Session) resolveCode(ctx context.Context, code string) {
	product, err := s.resolve.ResolveBarcode(ctx, code)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if err != nil {
		// Store unreachable: back to idle, retryable. No fabricated data.
		s.state = StateIdle
		s.lastErr = err.Error()
		log.Warn().Str("session", s.id.String()).Str("barcode", code).Err(err).
			Msg("scan: product resolution failed")
		return
	}
	s.product = product
	s.state = StateProductResolved
	s.lastErr = ""
}

// EnterCode resolves a manually typed barcode: Idle → ProductResolved without
// touching the camera. If the camera happens to be running it is released
// first. The store error is returned synchronously so the operator can retry.
func (s *Session) EnterCode(ctx context.Context, code string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.touchedAt = time.Now()
	s.stopCameraLocked()
	s.mu.Unlock()

	product, err := s.resolve.ResolveBarcode(ctx, code)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if err != nil {
		s.state = StateIdle
		s.lastErr = err.Error()
		return err
	}
	s.lastProcessed = code
	s.product = product
	s.state = StateProductResolved
	s.lastErr = ""
	return nil
}

// StopCamera cancels the polling loop and releases the camera. Idempotent.
func (s *Session) StopCamera() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchedAt = time.Now()
	s.stopCameraLocked()
	if s.state == StateCameraActive || s.state == StateDetecting {
		s.state = StateIdle
	}
}

// stopCameraLocked is the single teardown path for the loop and the device.
// Callers hold mu.
func (s *Session) stopCameraLocked() {
	if s.stopPoll != nil {
		close(s.stopPoll)
		s.stopPoll = nil
	}
	if s.stream != nil {
		s.stream.Stop()
		s.stream = nil
	}
	if s.state == StateCameraActive || s.state == StateDetecting {
		s.state = StateIdle
	}
}

// Close tears the session down for good. Safe to call any number of times,
// from any state.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopCameraLocked()
	s.closed = true
	s.state = StateIdle
	s.product = nil
}

// ─── Quantity selector ───────────────────────────────────────────────────────

func (s *Session) IncQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchedAt = time.Now()
	s.quantity++
	return s.quantity
}

// DecQuantity decrements with a floor of one; going below is a no-op.
func (s *Session) DecQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchedAt = time.Now()
	if s.quantity > 1 {
		s.quantity--
	}
	return s.quantity
}

func (s *Session) SetQuantity(v int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchedAt = time.Now()
	if v >= 1 {
		s.quantity = v
	}
	return s.quantity
}

func (s *Session) SelectedQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quantity
}

// ─── Commit support ──────────────────────────────────────────────────────────

// Product returns a copy of the resolved product, or nil outside
// ProductResolved.
func (s *Session) Product() *dto.ScannedProduct {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateProductResolved || s.product == nil {
		return nil
	}
	cp := *s.product
	return &cp
}

// CompleteCommit applies the just-written product state to the session and
// resets the quantity selector, mirroring the value now in the store.
func (s *Session) CompleteCommit(p dto.ScannedProduct) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.touchedAt = time.Now()
	s.product = &p
	s.quantity = 1
}

// ─── Introspection ───────────────────────────────────────────────────────────

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) TouchedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

// Snapshot renders the session for the polling client.
func (s *Session) Snapshot() dto.ScanSessionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := dto.ScanSessionResponse{
		ID:            s.id.String(),
		State:         string(s.state),
		Quantity:      s.quantity,
		CameraActive:  s.stream != nil,
		DecoderAbsent: s.decoderAbsent,
		LastError:     s.lastErr,
	}
	if s.state == StateProductResolved && s.product != nil {
		cp := *s.product
		resp.Product = &cp
	}
	return resp
}
