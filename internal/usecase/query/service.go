package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodlens/internal/domain"
	"github.com/kailas-cloud/prodlens/internal/domain/bundle"
	"github.com/kailas-cloud/prodlens/internal/domain/notification"
	"github.com/kailas-cloud/prodlens/internal/domain/search/match"
	"github.com/kailas-cloud/prodlens/internal/domain/search/stage"
	"github.com/kailas-cloud/prodlens/internal/domain/search/view"
	"github.com/kailas-cloud/prodlens/internal/logger"
)

// CaptureRoute is where the results page recovers to.
const CaptureRoute = "/"

// Outcome is the final state of one results page run.
type Outcome struct {
	State   stage.State
	History []stage.State
	// Response is set when State is Displayed.
	Response match.Response
	// Notification is set when the run went through Error.
	Notification *notification.Notification
	// Redirect is set when State is Redirect.
	Redirect string
	Err      error
}

// Cards maps the response to display cards. Empty for anything but Displayed.
func (o *Outcome) Cards() []view.Card {
	return view.Cards(o.Response)
}

// Service runs the results page: take the bundle, search once, map or recover.
type Service struct {
	handoff  Handoff
	searcher Searcher
	timeout  time.Duration
}

// New creates a query service. timeout bounds the search call; <= 0 leaves it to ctx.
func New(handoff Handoff, searcher Searcher, timeout time.Duration) *Service {
	return &Service{handoff: handoff, searcher: searcher, timeout: timeout}
}

// Run drives one results page from Init to a terminal state. There are no retries:
// a failed search sends the user back to capture with a notification.
func (s *Service) Run(ctx context.Context, sessionID string) Outcome {
	log := logger.FromContext(ctx)
	m := stage.New()

	b, err := s.handoff.Take(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrNoBundle) {
			log.Warn("Handoff read failed", zap.Error(err))
		}
		advance(log, m, stage.Redirect)
		return Outcome{State: m.Current(), History: m.History(), Redirect: CaptureRoute, Err: err}
	}

	advance(log, m, stage.Loading)

	resp, err := s.search(ctx, b)
	if err != nil {
		log.Warn("Product search failed", zap.Error(err))
		advance(log, m, stage.Error)
		n := notification.FetchFailed
		advance(log, m, stage.Redirect)
		return Outcome{
			State:        m.Current(),
			History:      m.History(),
			Notification: &n,
			Redirect:     CaptureRoute,
			Err:          err,
		}
	}

	advance(log, m, stage.Displayed)
	log.Info("Product search displayed", zap.Int("matches", resp.Len()))
	return Outcome{State: m.Current(), History: m.History(), Response: resp}
}

func (s *Service) search(ctx context.Context, b bundle.Bundle) (match.Response, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.searcher.Search(ctx, b)
	if err != nil {
		if !errors.Is(err, domain.ErrRequest) {
			err = fmt.Errorf("%w: %w", domain.ErrSearchRequest, err)
		}
		return match.Response{}, err
	}
	return resp, nil
}

// advance applies a transition the run is built to only ever take.
func advance(log *zap.Logger, m *stage.Machine, next stage.State) {
	if err := m.To(next); err != nil {
		log.Error("Results stage transition rejected", zap.Error(err))
	}
}
