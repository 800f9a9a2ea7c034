package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		header string
		want   int
	}{
		{"no keys passes through", nil, "", http.StatusOK},
		{"blank keys pass through", []string{"", ""}, "", http.StatusOK},
		{"missing header", []string{"secret"}, "", http.StatusUnauthorized},
		{"basic scheme", []string{"secret"}, "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"wrong token", []string{"secret"}, "Bearer nope", http.StatusUnauthorized},
		{"valid token", []string{"other", "secret"}, "Bearer secret", http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/results", http.NoBody)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			BearerAuthMiddleware(tc.keys)(okHandler()).ServeHTTP(rr, req)

			if rr.Code != tc.want {
				t.Fatalf("got %d, want %d", rr.Code, tc.want)
			}
			if tc.want == http.StatusUnauthorized {
				var resp errorResponse
				if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if resp.Code != "unauthorized" || resp.Message == "" {
					t.Errorf("unexpected error body %+v", resp)
				}
			}
		})
	}
}

func TestSessionMiddleware_ReplacesMalformedCookie(t *testing.T) {
	var seen string
	h := SessionMiddleware(SessionConfig{CookieName: "sid"})(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = SessionID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "../../etc/passwd"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != seen || seen == "" {
		t.Fatalf("expected fresh session id, got %q / %+v", seen, cookies)
	}
	if cookies[0].SameSite != http.SameSiteLaxMode {
		t.Errorf("expected SameSite=Lax, got %v", cookies[0].SameSite)
	}
}
