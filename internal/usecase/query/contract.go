package query

import (
	"context"

	"github.com/kailas-cloud/prodlens/internal/domain/bundle"
	"github.com/kailas-cloud/prodlens/internal/domain/search/match"
)

// Handoff is the read side of the cross-page store. Take is read-once.
type Handoff interface {
	Take(ctx context.Context, sessionID string) (bundle.Bundle, error)
}

// Searcher issues one product search for a bundle.
type Searcher interface {
	Search(ctx context.Context, b bundle.Bundle) (match.Response, error)
}
