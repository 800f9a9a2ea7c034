package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/prodlens/internal/db"
	"github.com/kailas-cloud/prodlens/internal/domain/bundle"
)

const keyName = "draft"

// store is the consumer interface for draft persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Store keeps the capture page state of each session.
type Store struct {
	store  store
	prefix string
	ttl    time.Duration
}

// New creates a draft store. Every Save refreshes ttl.
func New(s store, prefix string, ttl time.Duration) *Store {
	return &Store{store: s, prefix: prefix, ttl: ttl}
}

// Get returns the draft of sessionID. A missing key yields an empty draft.
func (s *Store) Get(ctx context.Context, sessionID string) (bundle.Draft, error) {
	data, err := s.store.Get(ctx, s.key(sessionID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return bundle.Draft{}, nil
		}
		return bundle.Draft{}, fmt.Errorf("draft GET %s: %w", s.key(sessionID), err)
	}

	var d bundle.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return bundle.Draft{}, fmt.Errorf("draft %s: %w", s.key(sessionID), err)
	}
	return d, nil
}

// Save replaces the draft of sessionID.
func (s *Store) Save(ctx context.Context, sessionID string, d bundle.Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.store.SetWithTTL(ctx, s.key(sessionID), data, s.ttl); err != nil {
		return fmt.Errorf("draft SET %s: %w", s.key(sessionID), err)
	}
	return nil
}

func (s *Store) key(sessionID string) string {
	return s.prefix + keyName + ":" + sessionID
}
