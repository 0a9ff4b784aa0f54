package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluatePreflightAllowsTraceparent(t *testing.T) {
	t.Parallel()
	h := newTestServer(t).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/evaluate", http.NoBody)
	req.Header.Set("Origin", "https://dashboard.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type, traceparent")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)

	allowed := strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers"))
	for _, name := range []string{"content-type", "traceparent"} {
		assert.Contains(t, allowed, name)
	}
}

func TestEvaluatePreflightRejectsUnknownOrigin(t *testing.T) {
	t.Parallel()
	sec := DefaultSecurityConfig()
	sec.AllowedOrigins = []string{"https://dashboard.example"}
	h := newTestServer(t, WithSecurityConfig(sec)).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/evaluate", http.NoBody)
	req.Header.Set("Origin", "https://elsewhere.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestEvaluateResponseCarriesSecurityHeaders(t *testing.T) {
	t.Parallel()
	sec := DefaultSecurityConfig()
	sec.AllowedOrigins = []string{"https://dashboard.example"}
	h := newTestServer(t, WithSecurityConfig(sec)).Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", strings.NewReader(`{"expression":"99 * 99"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://dashboard.example")
	req.Header.Set("Traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp EvaluateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "9801", resp.Result)

	tests := []struct {
		header string
		want   string
	}{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"Referrer-Policy", "strict-origin-when-cross-origin"},
		{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
		{"Access-Control-Allow-Origin", "https://dashboard.example"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rec.Header().Get(tt.header), tt.header)
	}
}

func TestEvaluateWithoutCORS(t *testing.T) {
	t.Parallel()
	sec := DefaultSecurityConfig()
	sec.EnableCORS = false
	h := newTestServer(t, WithSecurityConfig(sec)).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/evaluate", http.NoBody)
	req.Header.Set("Origin", "https://dashboard.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.NotEqual(t, http.StatusNoContent, rec.Code, "preflight must reach the router when CORS is off")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = post(t, h, `{"expression":"7 - 2"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestEvaluateBodyLimitUsesSecurityConfig(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		limit  int64
		status int
	}{
		{"default limit accepts large operands", DefaultSecurityConfig().MaxBodyBytes, http.StatusOK},
		{"small limit rejects", 16, http.StatusRequestEntityTooLarge},
		{"zero disables the limit", 0, http.StatusOK},
	}
	body := `{"expression":"` + strings.Repeat("1", 40) + ` + 1"}`
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			sec := DefaultSecurityConfig()
			sec.MaxBodyBytes = tc.limit
			h := newTestServer(t, WithSecurityConfig(sec)).Handler()

			rec := post(t, h, body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}
