package scan

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrSessionNotFound = errors.New("scan session not found")
	ErrSessionClosed   = errors.New("scan session closed")
)

// Registry holds the live scan sessions. Sessions untouched for longer than
// the TTL are closed by a janitor goroutine so an abandoned phone never pins
// the camera or leaks memory.
type Registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	decoder  Decoder
	camera   Camera
	resolver ProductResolver
	poll     time.Duration
	ttl      time.Duration
}

func NewRegistry(decoder Decoder, camera Camera, resolver ProductResolver, poll, ttl time.Duration) *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
		decoder:  decoder,
		camera:   camera,
		resolver: resolver,
		poll:     poll,
		ttl:      ttl,
	}
}

// Open creates and tracks a new session.
func (r *Registry) Open() *Session {
	s := NewSession(r.decoder, r.camera, r.resolver, r.poll)
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s
}

// Get returns a live session by id.
func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close tears a session down and forgets it.
func (r *Registry) Close(id uuid.UUID) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	return nil
}

// StartJanitor launches the expiry loop. It stops when ctx is cancelled.
func (r *Registry) StartJanitor(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.expire(time.Now())
			}
		}
	}()
}

func (r *Registry) expire(now time.Time) {
	r.mu.Lock()
	var stale []*Session
	for id, s := range r.sessions {
		if now.Sub(s.TouchedAt()) > r.ttl {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	remaining := len(r.sessions)
	r.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		log.Debug().Int("expired", len(stale)).Int("remaining", remaining).
			Msg("scan: stale sessions closed")
	}
}
