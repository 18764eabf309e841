package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(r.Header.Get(RequestIDHeader)))
})

func TestRequestID_Generates(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	RequestID(okHandler).ServeHTTP(rr, req)

	id := rr.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected a UUID request id, got %q", id)
	}
	if rr.Body.String() != id {
		t.Errorf("handler should see the same id, got %q", rr.Body.String())
	}
}

func TestRequestID_KeepsClientValue(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr := httptest.NewRecorder()

	RequestID(okHandler).ServeHTTP(rr, req)

	if got := rr.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("expected client id to be echoed, got %q", got)
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name     string
		frontend string
		origin   string
		want     string
	}{
		{"wildcard", "*", "https://any.example", "*"},
		{"empty config", "", "https://any.example", "*"},
		{"matching origin", "https://nlvx.app/", "https://nlvx.app", "https://nlvx.app"},
		{"other origin", "https://nlvx.app", "https://evil.example", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
			req.Header.Set("Origin", tc.origin)
			rr := httptest.NewRecorder()

			CORS(tc.frontend)(okHandler).ServeHTTP(rr, req)

			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tc.want {
				t.Errorf("expected allow-origin %q, got %q", tc.want, got)
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://nlvx.app")
	rr := httptest.NewRecorder()

	CORS("*")(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rr.Code)
	}
	if called {
		t.Errorf("preflight should not reach the handler")
	}
	if rr.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Errorf("missing allow-methods header")
	}
}

func TestNotFound(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	req.Header.Set(RequestIDHeader, "r-1")
	rr := httptest.NewRecorder()

	NotFound(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	var body map[string]map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"]["code"] != "NOT_FOUND" || body["error"]["request_id"] != "r-1" {
		t.Errorf("unexpected body: %v", body)
	}
}
