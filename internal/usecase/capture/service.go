package capture

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodlens/internal/domain"
	"github.com/kailas-cloud/prodlens/internal/domain/bundle"
	"github.com/kailas-cloud/prodlens/internal/domain/notification"
	"github.com/kailas-cloud/prodlens/internal/logger"
)

// ResultsRoute is where a successful submit navigates.
const ResultsRoute = "/results"

// Service holds one candidate image and the filter text per session and hands them to the
// results page on submit.
type Service struct {
	drafts   DraftStore
	handoff  Handoff
	maxBytes int64
}

// New creates a capture service. maxBytes <= 0 disables the size limit.
func New(drafts DraftStore, handoff Handoff, maxBytes int64) *Service {
	return &Service{drafts: drafts, handoff: handoff, maxBytes: maxBytes}
}

// SelectImage replaces the held image with c if it is an image.
// A rejected candidate leaves the draft unchanged.
func (s *Service) SelectImage(
	ctx context.Context, sessionID string, source bundle.Source, c bundle.Candidate,
) error {
	if !source.IsValid() {
		return fmt.Errorf("%w: unknown image source %q", domain.ErrValidation, source)
	}
	if !c.IsImage() {
		return fmt.Errorf("%w: %q has content type %q", domain.ErrInvalidFileType, c.Name(), c.ContentType())
	}
	if s.maxBytes > 0 && int64(c.Size()) > s.maxBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", domain.ErrFileTooLarge, c.Size(), s.maxBytes)
	}
	if c.Size() == 0 {
		return fmt.Errorf("%w: %q is empty", domain.ErrEncoding, c.Name())
	}

	d, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load draft: %w", err)
	}
	if err := s.drafts.Save(ctx, sessionID, d.WithImage(c)); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}

	logger.FromContext(ctx).Debug("Image selected",
		zap.String("source", string(source)),
		zap.String("name", c.Name()),
		zap.String("content_type", c.ContentType()),
		zap.Int("size", c.Size()),
	)
	return nil
}

// SetFilterText stores value verbatim.
func (s *Service) SetFilterText(ctx context.Context, sessionID, value string) error {
	d, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load draft: %w", err)
	}
	if err := s.drafts.Save(ctx, sessionID, d.WithFilterText(value)); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Submit encodes the held image, hands the bundle to the results page and returns the
// route to navigate to. On error nothing is written to the handoff store and no route is
// returned. The draft survives a successful submit.
func (s *Service) Submit(ctx context.Context, sessionID string) (string, error) {
	d, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("load draft: %w", err)
	}

	img, ok := d.Image()
	if !ok {
		return "", domain.ErrNoFileSelected
	}

	data, err := bundle.Encode(ctx, img.Open())
	if err != nil {
		return "", fmt.Errorf("encode %q: %w", img.Name(), err)
	}

	b, err := bundle.New(data, d.FilterText())
	if err != nil {
		return "", fmt.Errorf("build bundle: %w", err)
	}

	if err := s.handoff.Put(ctx, sessionID, b); err != nil {
		return "", fmt.Errorf("handoff: %w", err)
	}

	logger.FromContext(ctx).Info("Search submitted",
		zap.String("name", img.Name()),
		zap.Int("size", img.Size()),
		zap.Bool("has_filter", d.FilterText() != ""),
	)
	return ResultsRoute, nil
}

// Draft returns the current draft of sessionID for rendering.
func (s *Service) Draft(ctx context.Context, sessionID string) (bundle.Draft, error) {
	d, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return bundle.Draft{}, fmt.Errorf("load draft: %w", err)
	}
	return d, nil
}

// NotificationFor maps a capture error to the toast shown to the user.
func NotificationFor(err error) notification.Notification {
	switch {
	case errors.Is(err, domain.ErrInvalidFileType):
		return notification.InvalidFileType
	case errors.Is(err, domain.ErrFileTooLarge):
		return notification.FileTooLarge
	case errors.Is(err, domain.ErrNoFileSelected):
		return notification.NoFileSelected
	default:
		return notification.ProcessFailed
	}
}
