package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/novavoice/nova-voice/pkg/logging"
)

func TestRequestLoggerSetsRequestID(t *testing.T) {
	handler := RequestLogger(logging.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status to pass through, got %d", rec.Code)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected a generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "req-123" {
		t.Fatalf("expected incoming request id to be echoed, got %q", got)
	}
}
