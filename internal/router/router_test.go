package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sunoy2004/yanc-cms-sub001/internal/db"
	"github.com/sunoy2004/yanc-cms-sub001/internal/handler"
	"github.com/sunoy2004/yanc-cms-sub001/internal/service"
	"github.com/sunoy2004/yanc-cms-sub001/internal/storage"
	"gorm.io/gorm/logger"
)

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := db.Open(db.Options{
		Driver:   "sqlite",
		Path:     fmt.Sprintf("file:router-%d?mode=memory&cache=shared", time.Now().UnixNano()),
		LogLevel: logger.Silent,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.EnsureUser(gdb, "admin", "admin-password"); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	uploadDir := t.TempDir()
	store, err := storage.NewLocal(uploadDir, "/uploads")
	if err != nil {
		t.Fatalf("storage: %v", err)
	}

	api := handler.NewAPI(gdb, store, handler.Options{
		Auth:  service.AuthOptions{Secret: "router-secret", TTL: time.Hour, Issuer: "yanc-test"},
		Media: service.MediaOptions{MaxBytes: 1 << 20},
	})
	engine := SetupRouter(api, Options{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		AllowedOrigins: []string{"http://localhost:5173"},
		UploadDir:      uploadDir,
		UploadURLPath:  "/uploads",
	})

	return &testServer{t: t, engine: engine}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login() {
	s.t.Helper()

	rec := s.do(http.MethodPost, "/api/auth/login", gin.H{"username": "admin", "password": "admin-password"})
	if rec.Code != http.StatusOK {
		s.t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	decode(s.t, rec, &resp)
	if resp.Token == "" {
		s.t.Fatalf("expected token in login response")
	}
	s.token = resp.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

type itemResponse struct {
	Item map[string]any `json:"item"`
}

func TestAdminRoutesRequireBearerToken(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/api/heroes", "/api/media", "/api/dashboard/stats", "/api/auth/me"} {
		rec := srv.do(http.MethodGet, path, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rec.Code)
		}
		var resp map[string]string
		decode(t, rec, &resp)
		if resp["error"] == "" {
			t.Fatalf("%s: expected error message", path)
		}
	}

	srv.token = "not-a-token"
	if rec := srv.do(http.MethodGet, "/api/heroes", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", rec.Code)
	}

	srv.token = ""
	rec := srv.do(http.MethodPost, "/api/auth/login", gin.H{"username": "admin", "password": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", rec.Code)
	}
}

func TestContentLifecycleThroughPublicSite(t *testing.T) {
	srv := newTestServer(t)
	srv.login()

	rec := srv.do(http.MethodPost, "/api/programs", gin.H{
		"title":       "Founder Fellowship",
		"category":    "fellowship",
		"summary":     "Twelve weeks",
		"description": "## Who\n\nEarly founders",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create program: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created itemResponse
	decode(t, rec, &created)
	id := uint(created.Item["id"].(float64))
	if created.Item["slug"] != "founder-fellowship" || created.Item["published"] != false {
		t.Fatalf("unexpected created program: %v", created.Item)
	}

	if rec := srv.do(http.MethodGet, "/api/public/programs/founder-fellowship", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected draft hidden from public site, got %d", rec.Code)
	}

	rec = srv.do(http.MethodPatch, fmt.Sprintf("/api/programs/%d", id), gin.H{"summary": "Ten weeks"})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var patched itemResponse
	decode(t, rec, &patched)
	if patched.Item["summary"] != "Ten weeks" || patched.Item["title"] != "Founder Fellowship" || patched.Item["category"] != "fellowship" {
		t.Fatalf("expected patch to keep untouched fields, got %v", patched.Item)
	}

	rec = srv.do(http.MethodPatch, fmt.Sprintf("/api/programs/%d/publish", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("publish toggle: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var published itemResponse
	decode(t, rec, &published)
	if published.Item["published"] != true || published.Item["published_at"] == nil {
		t.Fatalf("expected program published, got %v", published.Item)
	}

	srv.token = ""
	rec = srv.do(http.MethodGet, "/api/public/programs/founder-fellowship", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("public program: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var public itemResponse
	decode(t, rec, &public)
	if html, _ := public.Item["html"].(string); html == "" || !bytes.Contains([]byte(html), []byte("<h2")) {
		t.Fatalf("expected rendered html, got %v", public.Item["html"])
	}

	rec = srv.do(http.MethodGet, "/api/public/programs", nil)
	var list struct {
		Items []map[string]any `json:"items"`
	}
	decode(t, rec, &list)
	if len(list.Items) != 1 {
		t.Fatalf("expected one public program, got %d", len(list.Items))
	}

	srv.login()
	rec = srv.do(http.MethodPatch, fmt.Sprintf("/api/programs/%d/publish", id), gin.H{"published": false})
	if rec.Code != http.StatusOK {
		t.Fatalf("unpublish: expected 200, got %d", rec.Code)
	}
	rec = srv.do(http.MethodDelete, fmt.Sprintf("/api/programs/%d", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	if rec := srv.do(http.MethodGet, fmt.Sprintf("/api/programs/%d", id), nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestContentValidationBulkDeleteAndReorder(t *testing.T) {
	srv := newTestServer(t)
	srv.login()

	rec := srv.do(http.MethodPost, "/api/team-members", gin.H{"name": "", "role": "Lead", "team": "board"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var invalid struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	decode(t, rec, &invalid)
	if invalid.Fields["name"] == "" || invalid.Fields["team"] == "" {
		t.Fatalf("expected per-field errors, got %+v", invalid)
	}

	ids := make([]uint, 0, 3)
	for i := 0; i < 3; i++ {
		rec := srv.do(http.MethodPost, "/api/testimonials", gin.H{"author": fmt.Sprintf("Author %d", i), "quote": "Great", "rating": 4})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create testimonial: %d %s", rec.Code, rec.Body.String())
		}
		var created itemResponse
		decode(t, rec, &created)
		ids = append(ids, uint(created.Item["id"].(float64)))
	}

	rec = srv.do(http.MethodPut, "/api/testimonials/order", gin.H{"ids": []uint{ids[2], ids[0], ids[1]}})
	if rec.Code != http.StatusOK {
		t.Fatalf("reorder: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = srv.do(http.MethodGet, "/api/testimonials?per_page=2", nil)
	var page struct {
		Items      []map[string]any `json:"items"`
		Total      int              `json:"total"`
		TotalPages int              `json:"total_pages"`
	}
	decode(t, rec, &page)
	if page.Total != 3 || page.TotalPages != 2 || len(page.Items) != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if uint(page.Items[0]["id"].(float64)) != ids[2] {
		t.Fatalf("expected reordered first item %d, got %v", ids[2], page.Items[0]["id"])
	}

	rec = srv.do(http.MethodPost, "/api/testimonials/bulk-delete", gin.H{"ids": []uint{ids[0], ids[1]}})
	if rec.Code != http.StatusOK {
		t.Fatalf("bulk delete: expected 200, got %d", rec.Code)
	}
	var deleted struct {
		Deleted int `json:"deleted"`
	}
	decode(t, rec, &deleted)
	if deleted.Deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", deleted.Deleted)
	}

	if rec := srv.do(http.MethodPost, "/api/testimonials/bulk-delete", gin.H{"ids": []uint{}}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty ids, got %d", rec.Code)
	}
	if rec := srv.do(http.MethodGet, "/api/testimonials/abc", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}
	if rec := srv.do(http.MethodGet, "/api/testimonials?status=archived", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad status, got %d", rec.Code)
	}

	rec = srv.do(http.MethodPost, "/api/sections", gin.H{"key": "about", "title": "About"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create section: %d", rec.Code)
	}
	if rec := srv.do(http.MethodPost, "/api/sections", gin.H{"key": "about", "title": "Again"}); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate key, got %d", rec.Code)
	}
}

func TestMediaUploadServeAndDelete(t *testing.T) {
	srv := newTestServer(t)
	srv.login()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="notes.pdf"`)
	header.Set("Content-Type", "application/pdf")
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write([]byte("%PDF-1.7\nhello\n%%EOF"))
	_ = writer.WriteField("alt_text", "Brochure")
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/media", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+srv.token)
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created itemResponse
	decode(t, rec, &created)
	id := uint(created.Item["id"].(float64))
	url, _ := created.Item["url"].(string)
	if created.Item["content_type"] != "application/pdf" || created.Item["alt_text"] != "Brochure" {
		t.Fatalf("unexpected media payload: %v", created.Item)
	}

	served := srv.do(http.MethodGet, url, nil)
	if served.Code != http.StatusOK || !bytes.HasPrefix(served.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected static upload to be served, got %d", served.Code)
	}

	raw := srv.do(http.MethodGet, fmt.Sprintf("/api/media/%d/raw", id), nil)
	if raw.Code != http.StatusOK || raw.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("raw: unexpected response %d %s", raw.Code, raw.Header().Get("Content-Type"))
	}

	rec = srv.do(http.MethodGet, "/api/dashboard/stats", nil)
	var stats struct {
		Media struct {
			Count int `json:"count"`
		} `json:"media"`
	}
	decode(t, rec, &stats)
	if stats.Media.Count != 1 {
		t.Fatalf("expected 1 media item in stats, got %d", stats.Media.Count)
	}

	if rec := srv.do(http.MethodDelete, fmt.Sprintf("/api/media/%d", id), nil); rec.Code != http.StatusOK {
		t.Fatalf("delete media: expected 200, got %d", rec.Code)
	}
	if rec := srv.do(http.MethodGet, url, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected object gone after delete, got %d", rec.Code)
	}
}

func TestUploadedSVGIsServedSandboxed(t *testing.T) {
	srv := newTestServer(t)
	srv.login()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="logo.svg"`)
	header.Set("Content-Type", "image/svg+xml")
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write([]byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(document.domain)</script></svg>`))
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/media", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+srv.token)
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created itemResponse
	decode(t, rec, &created)
	if created.Item["content_type"] != "image/svg+xml" {
		t.Fatalf("expected svg content type, got %v", created.Item["content_type"])
	}
	url, _ := created.Item["url"].(string)
	id := uint(created.Item["id"].(float64))

	for _, target := range []string{url, fmt.Sprintf("/api/media/%d/raw", id)} {
		served := srv.do(http.MethodGet, target, nil)
		if served.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", target, served.Code)
		}
		csp := served.Header().Get("Content-Security-Policy")
		if !strings.Contains(csp, "sandbox") || !strings.Contains(csp, "default-src 'none'") {
			t.Fatalf("GET %s: expected sandboxing CSP, got %q", target, csp)
		}
		if served.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Fatalf("GET %s: expected nosniff", target)
		}
	}
}

func TestHealthAndPing(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", rec.Code)
	}
	var health map[string]string
	decode(t, rec, &health)
	if health["status"] != "ok" || health["storage"] != storage.DriverLocal {
		t.Fatalf("unexpected health payload: %v", health)
	}

	if rec := srv.do(http.MethodGet, "/ping", nil); rec.Code != http.StatusOK {
		t.Fatalf("ping: expected 200, got %d", rec.Code)
	}
}
