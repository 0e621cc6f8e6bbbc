package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/sunkissed-southern/storefront/pkg/backend"
	"github.com/sunkissed-southern/storefront/pkg/types"
)

func serveRequestID(t *testing.T, inbound string) (string, string) {
	t.Helper()
	var forwarded string
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		forwarded = backend.RequestIDFrom(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if inbound != "" {
		req.Header.Set(RequestIDHeader, inbound)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp.Header().Get(RequestIDHeader), forwarded
}

func TestRequestIDAdoptsWellFormedInbound(t *testing.T) {
	echoed, forwarded := serveRequestID(t, "edge-7f3a:01")
	if echoed != "edge-7f3a:01" || forwarded != echoed {
		t.Fatalf("expected inbound id kept, got echoed=%q forwarded=%q", echoed, forwarded)
	}
}

func TestRequestIDReplacesMalformedInbound(t *testing.T) {
	for _, inbound := range []string{"", "has space", strings.Repeat("a", maxRequestIDLength+1), "new\nline"} {
		echoed, forwarded := serveRequestID(t, inbound)
		if _, err := uuid.Parse(echoed); err != nil {
			t.Fatalf("inbound %q: expected minted uuid, got %q", inbound, echoed)
		}
		if forwarded != echoed {
			t.Fatalf("inbound %q: forwarded id %q differs from echoed %q", inbound, forwarded, echoed)
		}
	}
}

func TestRecovererRendersInternalError(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Error.Code != "INTERNAL_ERROR" {
		t.Fatalf("unexpected code %q", envelope.Error.Code)
	}
	if strings.Contains(envelope.Error.Message, "boom") {
		t.Fatalf("panic value leaked to client: %q", envelope.Error.Message)
	}
}

func TestRecovererReraisesAbortHandler(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Fatalf("expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
