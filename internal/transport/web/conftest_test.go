package web

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prodlens/internal/db"
	"github.com/kailas-cloud/prodlens/internal/domain/bundle"
	"github.com/kailas-cloud/prodlens/internal/domain/search/match"
	"github.com/kailas-cloud/prodlens/internal/repository/draft"
	"github.com/kailas-cloud/prodlens/internal/repository/flash"
	"github.com/kailas-cloud/prodlens/internal/repository/handoff"
	captureuc "github.com/kailas-cloud/prodlens/internal/usecase/capture"
	healthuc "github.com/kailas-cloud/prodlens/internal/usecase/health"
	queryuc "github.com/kailas-cloud/prodlens/internal/usecase/query"
)

const (
	testCookie  = "prodlens_session"
	testSession = "0b9e7c52-6d0e-4c43-9a8f-2f1f3d6b1a10"
)

// memKV is an in-memory stand-in for the session store.
type memKV struct {
	mu      sync.Mutex
	data    map[string][]byte
	pingErr error
}

func newMemKV() *memKV { return &memKV{data: map[string][]byte{}} }

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memKV) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) GetDel(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	delete(m.data, key)
	return v, nil
}

func (m *memKV) Ping(_ context.Context) error { return m.pingErr }

type mockSearcher struct {
	mu       sync.Mutex
	searchFn func(ctx context.Context, b bundle.Bundle) (match.Response, error)
	calls    int
	last     bundle.Bundle
}

func (m *mockSearcher) Search(ctx context.Context, b bundle.Bundle) (match.Response, error) {
	m.mu.Lock()
	m.calls++
	m.last = b
	m.mu.Unlock()
	if m.searchFn != nil {
		return m.searchFn(ctx, b)
	}
	return match.NewResponse(nil), nil
}

type harness struct {
	kv       *memKV
	searcher *mockSearcher
	router   http.Handler
}

func newHarness(t *testing.T, apiKeys ...string) *harness {
	t.Helper()
	kv := newMemKV()
	searcher := &mockSearcher{}

	capture := captureuc.New(draft.New(kv, "t:", time.Hour), handoff.New(kv, "t:", time.Minute, nil), 1<<20)
	query := queryuc.New(handoff.New(kv, "t:", time.Minute, nil), searcher, time.Second)

	srv, err := NewServer(
		capture, query, flash.New(kv, "t:", time.Minute, nil), healthuc.New(kv),
		Config{Session: SessionConfig{CookieName: testCookie}, APIKeys: apiKeys, MaxUploadBytes: 1 << 20},
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	r := chi.NewRouter()
	srv.Routes(r)
	return &harness{kv: kv, searcher: searcher, router: r}
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	req.AddCookie(&http.Cookie{Name: testCookie, Value: testSession})
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	return rr
}

// multipartBody builds a form with an optional file part and plain fields.
func multipartBody(t *testing.T, fileName, contentType string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if fileName != "" {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
		hdr.Set("Content-Type", contentType)
		part, err := mw.CreatePart(hdr)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		_, _ = part.Write(data)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func multipartRequest(t *testing.T, path, fileName, contentType string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	body, ct := multipartBody(t, fileName, contentType, data, fields)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	return req
}

var jpegBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
