package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/bigcalc/internal/config"
	"github.com/agbru/bigcalc/internal/history"
	"github.com/agbru/bigcalc/internal/orchestration"
	"github.com/agbru/bigcalc/internal/orchestration/mocks"
)

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	ev := orchestration.NewEngine(orchestration.WithMaxDigits(50))
	return NewServer(ev, config.AppConfig{}, append([]Option{WithLogger(newTestLogger())}, opts...)...)
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleEvaluate(t *testing.T) {
	t.Parallel()
	h := newTestServer(t).Handler()

	tests := []struct {
		name      string
		body      string
		result    string
		remainder string
	}{
		{"expression", `{"expression":"123456789012345678901234567890 + 1"}`, "123456789012345678901234567891", ""},
		{"structured", `{"left":"7","op":"*","right":"6"}`, "42", ""},
		{"division", `{"expression":"100 / 7"}`, "14", "2"},
		{"comparison", `{"left":"3","op":"<","right":"10"}`, "true", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := post(t, h, tc.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp EvaluateResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.result, resp.Result)
			assert.NotEmpty(t, resp.Duration)
			if tc.remainder == "" {
				assert.Nil(t, resp.Remainder)
			} else {
				require.NotNil(t, resp.Remainder)
				assert.Equal(t, tc.remainder, *resp.Remainder)
			}
		})
	}
}

func TestHandleEvaluateErrors(t *testing.T) {
	t.Parallel()
	h := newTestServer(t).Handler()

	tests := []struct {
		name   string
		body   string
		status int
		kind   string
	}{
		{"underflow", `{"expression":"1 - 2"}`, http.StatusUnprocessableEntity, "underflow"},
		{"division by zero", `{"expression":"1 % 0"}`, http.StatusUnprocessableEntity, "division_by_zero"},
		{"invalid digit", `{"expression":"12x + 1"}`, http.StatusBadRequest, "parse"},
		{"unknown operator", `{"left":"1","op":"^","right":"2"}`, http.StatusBadRequest, "parse"},
		{"too many digits", `{"expression":"` + strings.Repeat("1", 51) + ` + 1"}`, http.StatusBadRequest, "too_large"},
		{"empty body object", `{}`, http.StatusBadRequest, "validation"},
		{"both forms", `{"expression":"1 + 1","left":"1","op":"+","right":"1"}`, http.StatusBadRequest, "validation"},
		{"missing right", `{"left":"1","op":"+"}`, http.StatusBadRequest, "validation"},
		{"malformed JSON", `{"expression":`, http.StatusBadRequest, "validation"},
		{"unknown field", `{"expr":"1 + 1"}`, http.StatusBadRequest, "validation"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := post(t, h, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.kind, resp.Kind)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestHandleEvaluateBodyTooLarge(t *testing.T) {
	t.Parallel()
	sec := DefaultSecurityConfig()
	sec.MaxBodyBytes = 32
	h := newTestServer(t, WithSecurityConfig(sec)).Handler()

	rec := post(t, h, `{"expression":"`+strings.Repeat("9", 64)+` + 1"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandleEvaluateTimeout(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	ev := mocks.NewMockEvaluator(ctrl)
	ev.EXPECT().Evaluate(gomock.Any(), "9 * 9").Return(orchestration.Evaluation{}, context.DeadlineExceeded)

	h := NewServer(ev, config.AppConfig{}, WithLogger(newTestLogger())).Handler()
	rec := post(t, h, `{"expression":"9 * 9"}`)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"timeout"`)
}

func TestHandleEvaluatePassesRequestDeadline(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	ev := mocks.NewMockEvaluator(ctrl)
	ev.EXPECT().Evaluate(gomock.Any(), "1 + 1").DoAndReturn(
		func(ctx context.Context, _ string) (orchestration.Evaluation, error) {
			_, ok := ctx.Deadline()
			assert.True(t, ok, "evaluation context should carry the request timeout")
			return orchestration.Evaluation{}, errors.New("boom")
		})

	h := NewServer(ev, config.AppConfig{}, WithLogger(newTestLogger())).Handler()
	rec := post(t, h, `{"expression":"1 + 1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleHistory(t *testing.T) {
	t.Parallel()
	store, err := history.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ev := orchestration.NewEngine(orchestration.WithHistory(store))
	h := NewServer(ev, config.AppConfig{}, WithHistory(store), WithLogger(newTestLogger())).Handler()

	for _, body := range []string{`{"expression":"1 + 1"}`, `{"expression":"2 + 2"}`, `{"expression":"1 - 3"}`} {
		post(t, h, body)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=2", http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Records, 2)
	assert.Equal(t, "1 - 3", resp.Records[0].Expression)
	assert.True(t, resp.Records[0].Failed())
	assert.Equal(t, "4", resp.Records[1].Result)

	for _, limit := range []string{"0", "abc", "5000"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/history?limit="+limit, http.NoBody)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", limit)
	}
}

func TestHandleHistoryDisabled(t *testing.T) {
	t.Parallel()
	h := newTestServer(t).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()
	h := newTestServer(t).Handler()

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestPreflightOnAPIRoute(t *testing.T) {
	t.Parallel()
	h := newTestServer(t).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/evaluate", http.NoBody)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestTracingContinuesRemoteTrace(t *testing.T) {
	t.Parallel()
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	s := newTestServer(t)
	s.tracer = tp.Tracer("test")

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	req.Header.Set("Traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	s.Handler().ServeHTTP(httptest.NewRecorder(), req)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "HTTP GET /health", ended[0].Name())
	assert.Equal(t, trace.SpanKindServer, ended[0].SpanKind())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", ended[0].SpanContext().TraceID().String())
}

func TestServeShutsDownOnCancel(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
