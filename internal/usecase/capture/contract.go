package capture

import (
	"context"

	"github.com/kailas-cloud/prodlens/internal/domain/bundle"
)

// DraftStore persists the capture page state of each session.
type DraftStore interface {
	Get(ctx context.Context, sessionID string) (bundle.Draft, error)
	Save(ctx context.Context, sessionID string, d bundle.Draft) error
}

// Handoff is the write side of the cross-page store.
type Handoff interface {
	Put(ctx context.Context, sessionID string, b bundle.Bundle) error
}
