package handoff

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/prodlens/internal/db"
)

// memKV is an in-memory consumer-interface fake with GETDEL semantics.
type memKV struct {
	mu       sync.Mutex
	data     map[string][]byte
	ttls     map[string]time.Duration
	setErr   error
	getDelFn func(ctx context.Context, key string) ([]byte, error)
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memKV) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memKV) GetDel(ctx context.Context, key string) ([]byte, error) {
	if m.getDelFn != nil {
		return m.getDelFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	delete(m.data, key)
	return v, nil
}
