// Package web serves the capture and results pages and their JSON counterpart.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prodlens/internal/domain"
	"github.com/kailas-cloud/prodlens/internal/domain/bundle"
	"github.com/kailas-cloud/prodlens/internal/domain/notification"
	"github.com/kailas-cloud/prodlens/internal/domain/search/stage"
	"github.com/kailas-cloud/prodlens/internal/domain/search/view"
	"github.com/kailas-cloud/prodlens/internal/logger"
	captureuc "github.com/kailas-cloud/prodlens/internal/usecase/capture"
	healthuc "github.com/kailas-cloud/prodlens/internal/usecase/health"
	queryuc "github.com/kailas-cloud/prodlens/internal/usecase/query"
)

// multipartOverhead is the form budget on top of the image itself.
const multipartOverhead = 1 << 20

// Flash queues notifications for the next page render.
type Flash interface {
	Push(ctx context.Context, sessionID string, n notification.Notification) error
	Drain(ctx context.Context, sessionID string) ([]notification.Notification, error)
}

// Server holds the HTTP handlers.
type Server struct {
	capture   *captureuc.Service
	query     *queryuc.Service
	flash     Flash
	health    *healthuc.Service
	pages     *pages
	session   SessionConfig
	apiKeys   []string
	maxUpload int64
	logger    *zap.Logger
}

// Config holds the transport settings.
type Config struct {
	Session        SessionConfig
	APIKeys        []string
	MaxUploadBytes int64
}

// NewServer creates the HTTP server handlers.
func NewServer(
	capture *captureuc.Service,
	query *queryuc.Service,
	flash Flash,
	health *healthuc.Service,
	cfg Config,
	logger *zap.Logger,
) (*Server, error) {
	p, err := parsePages()
	if err != nil {
		return nil, err
	}
	return &Server{
		capture:   capture,
		query:     query,
		flash:     flash,
		health:    health,
		pages:     p,
		session:   cfg.Session,
		apiKeys:   cfg.APIKeys,
		maxUpload: cfg.MaxUploadBytes,
		logger:    logger,
	}, nil
}

// Routes mounts every route on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(s.session))

		r.Get("/", s.CapturePage)
		r.Post("/select", s.SelectImage)
		r.Post("/search", s.Submit)
		r.Get("/results", s.ResultsPage)

		r.Route("/api/v1", func(r chi.Router) {
			r.Use(BearerAuthMiddleware(s.apiKeys))
			r.Get("/results", s.Results)
		})
	})
}

// CapturePage handles GET /.
func (s *Server) CapturePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := SessionID(ctx)

	d, err := s.capture.Draft(ctx, sid)
	if err != nil {
		logger.FromContext(ctx).Warn("Failed to load draft", zap.Error(err))
	}

	data := captureView{FilterText: d.FilterText(), Toasts: s.drain(ctx, sid)}
	if img, ok := d.Image(); ok {
		data.FileName = img.Name()
	}
	s.render(w, r, pageCapture, data)
}

// SelectImage handles POST /select: one image from the drop zone or the file picker.
func (s *Server) SelectImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := SessionID(ctx)

	c, source, err := s.readCandidate(w, r)
	switch {
	case err == nil:
		err = s.capture.SelectImage(ctx, sid, source, c)
	case errors.Is(err, http.ErrMissingFile):
		err = domain.ErrNoFileSelected
	}

	if wantsJSON(r) {
		resp := selectResponse{FileName: c.Name()}
		status := http.StatusOK
		if err != nil {
			logger.FromContext(ctx).Info("Image rejected", zap.Error(err))
			n := captureuc.NotificationFor(err)
			resp = selectResponse{Notification: &n}
			status = statusFor(err)
		}
		writeJSON(w, status, resp)
		return
	}

	if err != nil {
		s.fail(ctx, sid, err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Submit handles POST /search: optional image, filter text, then hand off to /results.
func (s *Server) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := SessionID(ctx)

	route, err := s.submit(w, r, sid)
	if err != nil {
		s.fail(ctx, sid, err)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, route, http.StatusSeeOther)
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, sid string) (string, error) {
	ctx := r.Context()

	c, _, err := s.readCandidate(w, r)
	switch {
	case err == nil:
		if err := s.capture.SelectImage(ctx, sid, bundle.SourceFilePicker, c); err != nil {
			return "", err
		}
	case errors.Is(err, http.ErrMissingFile):
		// The image came in earlier through /select.
	default:
		return "", err
	}

	if err := s.capture.SetFilterText(ctx, sid, r.FormValue("filter")); err != nil {
		return "", err
	}
	return s.capture.Submit(ctx, sid)
}

// ResultsPage handles GET /results. It blocks while the search runs.
func (s *Server) ResultsPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := SessionID(ctx)

	out := s.query.Run(ctx, sid)
	if out.State == stage.Redirect {
		if out.Notification != nil {
			s.push(ctx, sid, *out.Notification)
		}
		http.Redirect(w, r, out.Redirect, http.StatusSeeOther)
		return
	}

	s.render(w, r, pageResults, resultsView{Cards: out.Cards()})
}

// Results handles GET /api/v1/results: the results page as JSON.
func (s *Server) Results(w http.ResponseWriter, r *http.Request) {
	out := s.query.Run(r.Context(), SessionID(r.Context()))

	resp := resultsResponse{
		State:        out.State,
		Cards:        out.Cards(),
		Notification: out.Notification,
		Redirect:     out.Redirect,
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// readCandidate reads the "file" part and the "source" field. The body is capped so an
// oversized upload fails fast with domain.ErrFileTooLarge.
func (s *Server) readCandidate(w http.ResponseWriter, r *http.Request) (bundle.Candidate, bundle.Source, error) {
	if s.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+multipartOverhead)
	}

	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return bundle.Candidate{}, "", domain.ErrFileTooLarge
		case errors.Is(err, http.ErrNotMultipart):
			// Plain form post: no file, only fields.
			return bundle.Candidate{}, "", http.ErrMissingFile
		default:
			return bundle.Candidate{}, "", fmt.Errorf("%w: parse form: %w", domain.ErrEncoding, err)
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return bundle.Candidate{}, "", err
	}
	defer file.Close()

	// Browsers send an empty part when the picker was left untouched.
	if header.Filename == "" && header.Size == 0 {
		return bundle.Candidate{}, "", http.ErrMissingFile
	}

	data, err := readPart(file, s.maxUpload)
	if err != nil {
		return bundle.Candidate{}, "", err
	}

	source := bundle.Source(r.FormValue("source"))
	if source == "" {
		source = bundle.SourceFilePicker
	}
	return bundle.NewCandidate(header.Filename, header.Header.Get("Content-Type"), data), source, nil
}

func readPart(f multipart.File, limit int64) ([]byte, error) {
	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %w", domain.ErrEncoding, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, domain.ErrFileTooLarge
	}
	return data, nil
}

// fail logs err and queues the matching toast.
func (s *Server) fail(ctx context.Context, sid string, err error) {
	if errors.Is(err, domain.ErrValidation) {
		logger.FromContext(ctx).Info("Capture rejected", zap.Error(err))
	} else {
		logger.FromContext(ctx).Warn("Capture failed", zap.Error(err))
	}
	s.push(ctx, sid, captureuc.NotificationFor(err))
}

func (s *Server) push(ctx context.Context, sid string, n notification.Notification) {
	if err := s.flash.Push(ctx, sid, n); err != nil {
		logger.FromContext(ctx).Warn("Failed to queue notification", zap.String("title", n.Title), zap.Error(err))
	}
}

func (s *Server) drain(ctx context.Context, sid string) []notification.Notification {
	ns, err := s.flash.Drain(ctx, sid)
	if err != nil {
		logger.FromContext(ctx).Warn("Failed to drain notifications", zap.Error(err))
		return nil
	}
	return ns
}

type selectResponse struct {
	FileName     string                     `json:"fileName,omitempty"`
	Notification *notification.Notification `json:"notification,omitempty"`
}

type resultsResponse struct {
	State        stage.State                `json:"state"`
	Cards        []view.Card                `json:"cards"`
	Notification *notification.Notification `json:"notification,omitempty"`
	Redirect     string                     `json:"redirect,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrInvalidFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrEncoding):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
