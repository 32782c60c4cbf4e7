// Package session holds per-visitor key/value state that lives across
// requests, keyed by an opaque cookie id.
package session

import (
	"context"
	"maps"
	"sync"
)

// Store persists session values.
type Store interface {
	// Load returns the values stored for id. An unknown id yields an empty
	// map and no error.
	Load(ctx context.Context, id string) (map[string]string, error)
	// Save replaces the values stored for id.
	Save(ctx context.Context, id string, values map[string]string) error
}

// Session is one visitor's values for the duration of a request. It is safe
// for concurrent use.
type Session struct {
	id     string
	mu     sync.Mutex
	values map[string]string
	dirty  bool
}

// New returns a Session for id seeded with a copy of values.
func New(id string, values map[string]string) *Session {
	v := make(map[string]string, len(values))
	maps.Copy(v, values)
	return &Session{id: id, values: v}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key and marks the session for saving.
func (s *Session) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.values[key]; ok && old == value {
		return
	}
	s.values[key] = value
	s.dirty = true
}

// Dirty reports whether Set changed anything since the session was loaded.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Values returns a copy of all values.
func (s *Session) Values() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.values))
	maps.Copy(out, s.values)
	return out
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the Session carried by ctx.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
