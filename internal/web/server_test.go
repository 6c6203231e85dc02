package web

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/trcsocial/shopify-csv-uploader/internal/config"
	"github.com/trcsocial/shopify-csv-uploader/internal/core"
	"github.com/trcsocial/shopify-csv-uploader/internal/juno"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    2 * time.Minute,
			IdleTimeout:     time.Minute,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  5 * time.Minute,
		},
		Upload: config.UploadConfig{MaxFileSize: 1 << 20},
		Juno:   config.JunoConfig{Timeout: time.Second},
		Rate:   config.RateLimitConfig{Enabled: false},
		Logging: config.LoggingConfig{
			Level:  "error",
			Format: "text",
		},
	}
}

// newTestServer wires a server whose resolver runs in fallback-only mode.
func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	client := juno.New("", "")
	return NewServer(core.NewService(client), cfg)
}

const testMasterCSV = `juno_cat,price_inr,tier,condition,inventory_qty
ABC123,1500,A,Mint,3
`

const testTemplateCSV = `Handle,Title,Vendor,Variant SKU,Variant Price,Published
,,,,,TRUE
`

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, content := range files {
		part, err := mw.CreateFormFile(field, field+".csv")
		if err != nil {
			t.Fatalf("CreateFormFile(%q): %v", field, err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func postEnrich(t *testing.T, s *Server, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, files)
	req := httptest.NewRequest(http.MethodPost, "/enrich", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeUserMessage(t *testing.T, body io.Reader) core.UserMessage {
	t.Helper()
	var msg core.UserMessage
	if err := json.NewDecoder(body).Decode(&msg); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return msg
}

func TestIndexPage(t *testing.T) {
	s := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	if !strings.Contains(rec.Body.String(), "upload-form") {
		t.Error("index page missing upload form")
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for header, value := range want {
		if got := rec.Header().Get(header); got != value {
			t.Errorf("%s = %q, want %q", header, got, value)
		}
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("Content-Security-Policy header not set")
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want %q", body["status"], "ok")
	}
}

func TestEnrich_Success(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := postEnrich(t, s, map[string]string{
		"master_csv":   testMasterCSV,
		"template_csv": testTemplateCSV,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("Content-Type = %q, want application/zip", ct)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "shopify_export_bundle.zip") {
		t.Errorf("Content-Disposition = %q, want bundle filename", cd)
	}
	if rec.Header().Get("X-Export-ID") == "" {
		t.Error("X-Export-ID header not set")
	}

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{core.ProductsEntryName, core.ResearchLogEntryName} {
		if !names[want] {
			t.Errorf("zip missing entry %q", want)
		}
	}

	rc, err := zr.Open(core.ProductsEntryName)
	if err != nil {
		t.Fatalf("open products entry: %v", err)
	}
	defer rc.Close()
	products, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read products entry: %v", err)
	}
	if !strings.Contains(string(products), "juno-artist-release-abc123-abc123") {
		t.Errorf("products CSV missing fallback handle:\n%s", products)
	}
}

func TestEnrich_MissingColumns(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := postEnrich(t, s, map[string]string{
		"master_csv":   "juno_cat,price_inr\nABC123,1500\n",
		"template_csv": testTemplateCSV,
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	msg := decodeUserMessage(t, rec.Body)
	if msg.Code != "VAL001" {
		t.Errorf("code = %q, want VAL001", msg.Code)
	}
	if !strings.Contains(msg.Message, "missing columns") {
		t.Errorf("message = %q, want missing columns detail", msg.Message)
	}
}

func TestEnrich_EmptyTemplate(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := postEnrich(t, s, map[string]string{
		"master_csv":   testMasterCSV,
		"template_csv": "",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if msg := decodeUserMessage(t, rec.Body); msg.Code != "VAL002" {
		t.Errorf("code = %q, want VAL002", msg.Code)
	}
}

func TestEnrich_MissingFile(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := postEnrich(t, s, map[string]string{
		"master_csv": testMasterCSV,
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if msg := decodeUserMessage(t, rec.Body); msg.Code != "FILE004" {
		t.Errorf("code = %q, want FILE004", msg.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	cfg := testConfig()
	cfg.Rate.Enabled = true
	cfg.Rate.RequestsPerMinute = 2
	s := newTestServer(t, cfg)

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", last)
	}

	// A different IP still has its own budget.
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("other IP status = %d, want 200", rec.Code)
	}
}
