package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIKeyAuth(t *testing.T) {
	handler := APIKeyAuth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name string
		key  string
		want int
	}{
		{"missing key", "", http.StatusUnauthorized},
		{"wrong key", "nope", http.StatusForbidden},
		{"valid key", "secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestIdentityDefaultsToDevUser(t *testing.T) {
	srv := testServer(&fakeStore{})

	var gotID int
	var gotInfo UserInfo
	handler := srv.identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = userIDFromContext(r)
		gotInfo = userInfoFromContext(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotID != 1 {
		t.Errorf("user id = %d, want 1", gotID)
	}
	if gotInfo.Login != "local" || gotInfo.DisplayName != "Local Dev User" {
		t.Errorf("info = %+v, want local dev identity", gotInfo)
	}
}

func TestUserContextDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := userIDFromContext(req); got != 1 {
		t.Errorf("userIDFromContext without middleware = %d, want 1", got)
	}
	if got := userInfoFromContext(req); got.Login != "local" {
		t.Errorf("userInfoFromContext without middleware = %+v", got)
	}
}

func TestWithIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = withIdentity(req, 42, UserInfo{Login: "alice@example.com", DisplayName: "Alice"})

	if got := userIDFromContext(req); got != 42 {
		t.Errorf("userIDFromContext = %d, want 42", got)
	}
	if got := userInfoFromContext(req); got.Login != "alice@example.com" {
		t.Errorf("userInfoFromContext = %+v", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight should not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}

func TestCORSPassThrough(t *testing.T) {
	called := false
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("GET request should reach the handler")
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got == "" {
		t.Error("CORS headers missing on pass-through")
	}
}

func TestRequestLoggingPreservesStatus(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := RequestLogging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
}
