package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/prodlens/internal/db"
	"github.com/kailas-cloud/prodlens/internal/domain"
	"github.com/kailas-cloud/prodlens/internal/domain/bundle"
)

// Key is the fixed logical name of the handoff slot.
const Key = "searchData"

// store is the consumer interface for the handoff slot (ISP).
type store interface {
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	GetDel(ctx context.Context, key string) ([]byte, error)
}

// Store is a single-slot, read-once channel from the capture page to the results page.
// Put overwrites the slot; Take empties it.
type Store struct {
	store  store
	prefix string
	ttl    time.Duration
	total  *prometheus.CounterVec
}

// New creates a handoff store. ttl bounds how long an unconsumed bundle survives.
// total is a counter vec with labels "op" and "result", passed explicitly; nil disables it.
func New(s store, prefix string, ttl time.Duration, total *prometheus.CounterVec) *Store {
	return &Store{store: s, prefix: prefix, ttl: ttl, total: total}
}

// Put writes the bundle for sessionID.
func (s *Store) Put(ctx context.Context, sessionID string, b bundle.Bundle) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	if err := s.store.SetWithTTL(ctx, s.key(sessionID), data, s.ttl); err != nil {
		s.inc("put", "error")
		return fmt.Errorf("handoff SET %s: %w", s.key(sessionID), err)
	}
	s.inc("put", "ok")
	return nil
}

// Take reads and deletes the bundle for sessionID.
// An empty slot returns domain.ErrNoBundle. A corrupt payload is dropped and reported as
// domain.ErrNoBundle too, since it can never be consumed.
func (s *Store) Take(ctx context.Context, sessionID string) (bundle.Bundle, error) {
	data, err := s.store.GetDel(ctx, s.key(sessionID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			s.inc("take", "empty")
			return bundle.Bundle{}, domain.ErrNoBundle
		}
		s.inc("take", "error")
		return bundle.Bundle{}, fmt.Errorf("handoff GETDEL %s: %w", s.key(sessionID), err)
	}

	var b bundle.Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		s.inc("take", "error")
		return bundle.Bundle{}, fmt.Errorf("%w: %w", domain.ErrNoBundle, err)
	}
	s.inc("take", "ok")
	return b, nil
}

func (s *Store) inc(op, result string) {
	if s.total != nil {
		s.total.WithLabelValues(op, result).Inc()
	}
}

func (s *Store) key(sessionID string) string {
	return s.prefix + Key + ":" + sessionID
}
