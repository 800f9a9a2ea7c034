package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodlens/internal/domain/notification"
	"github.com/kailas-cloud/prodlens/internal/domain/search/view"
	"github.com/kailas-cloud/prodlens/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageCapture = "capture.html"
	pageResults = "results.html"
)

type pages struct {
	tmpl *template.Template
}

func parsePages() (*pages, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"destructive": func(n notification.Notification) bool { return n.Severity == notification.Destructive },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &pages{tmpl: tmpl}, nil
}

type captureView struct {
	FileName   string
	FilterText string
	Toasts     []notification.Notification
}

type resultsView struct {
	Cards []view.Card
}

// render executes into a buffer so a template error can still become a 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		logger.FromContext(r.Context()).Error("Template render failed", zap.String("page", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
