package match

import "github.com/kailas-cloud/prodlens/internal/domain/product"

// ScoredMatch is one ranked hit. The match score, not the product score, is shown to users.
type ScoredMatch struct {
	product product.Product
	score   float64
}

// New creates a scored match.
func New(p product.Product, score float64) ScoredMatch {
	return ScoredMatch{product: p, score: score}
}

// Product returns the matched product.
func (m *ScoredMatch) Product() product.Product { return m.product }

// Score returns the relevance score in [0,1].
func (m *ScoredMatch) Score() float64 { return m.score }

// Response is an ordered list of matches, highest relevance first as returned by the backend.
type Response struct {
	matches []ScoredMatch
}

// NewResponse creates a response. A nil or empty slice is a valid zero-match result.
func NewResponse(matches []ScoredMatch) Response {
	return Response{matches: matches}
}

// Matches returns the matches in backend order.
func (r *Response) Matches() []ScoredMatch { return r.matches }

// Len returns the number of matches.
func (r *Response) Len() int { return len(r.matches) }
