// Package flash keeps per-session notifications until the next page render.
package flash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/prodlens/internal/db"
	"github.com/kailas-cloud/prodlens/internal/domain/notification"
)

const keyName = "flash"

// maxQueued caps the queue; older notifications are dropped first.
const maxQueued = 10

// store is the consumer interface for the flash queue (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	GetDel(ctx context.Context, key string) ([]byte, error)
}

// Store is a per-session notification queue.
type Store struct {
	store  store
	prefix string
	ttl    time.Duration
	total  *prometheus.CounterVec
}

// New creates a flash store.
// total is a counter vec with label "title", passed explicitly; nil disables it.
func New(s store, prefix string, ttl time.Duration, total *prometheus.CounterVec) *Store {
	return &Store{store: s, prefix: prefix, ttl: ttl, total: total}
}

// Push appends n to the queue of sessionID.
func (s *Store) Push(ctx context.Context, sessionID string, n notification.Notification) error {
	key := s.key(sessionID)

	queue, err := s.load(ctx, key)
	if err != nil {
		return err
	}
	queue = append(queue, n)
	if len(queue) > maxQueued {
		queue = queue[len(queue)-maxQueued:]
	}

	data, err := json.Marshal(queue)
	if err != nil {
		return fmt.Errorf("encode notifications: %w", err)
	}
	if err := s.store.SetWithTTL(ctx, key, data, s.ttl); err != nil {
		return fmt.Errorf("flash SET %s: %w", key, err)
	}

	if s.total != nil {
		s.total.WithLabelValues(n.Title).Inc()
	}
	return nil
}

// Drain returns and clears the queue of sessionID, oldest first.
func (s *Store) Drain(ctx context.Context, sessionID string) ([]notification.Notification, error) {
	key := s.key(sessionID)

	data, err := s.store.GetDel(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("flash GETDEL %s: %w", key, err)
	}
	return decode(key, data)
}

func (s *Store) load(ctx context.Context, key string) ([]notification.Notification, error) {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("flash GET %s: %w", key, err)
	}
	return decode(key, data)
}

func decode(key string, data []byte) ([]notification.Notification, error) {
	var queue []notification.Notification
	if err := json.Unmarshal(data, &queue); err != nil {
		return nil, fmt.Errorf("flash %s: decode: %w", key, err)
	}
	return queue, nil
}

func (s *Store) key(sessionID string) string {
	return s.prefix + keyName + ":" + sessionID
}
