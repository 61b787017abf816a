package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	r := gin.New()
	r.Use(Middleware(New(&buf, "production")))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, RequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	rid := w.Header().Get(RequestIDHeader)
	if rid == "" {
		t.Fatalf("expected request id header")
	}
	if w.Body.String() != rid {
		t.Fatalf("expected handler to see request id %q, got %q", rid, w.Body.String())
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a json log line, got %q: %v", buf.String(), err)
	}
	if entry["request_id"] != rid || entry["route"] != "/ping" {
		t.Fatalf("unexpected log entry: %v", entry)
	}
}

func TestMiddlewareKeepsIncomingRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	r := gin.New()
	r.Use(Middleware(New(&buf, "development")))
	r.GET("/missing", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected incoming request id to be echoed, got %q", got)
	}
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Fatalf("expected 4xx to log at warn level, got %q", buf.String())
	}
}
