package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/rulebook/internal/config"
	"github.com/dgallion1/rulebook/internal/doctree"
	"github.com/dgallion1/rulebook/internal/library"
	"github.com/dgallion1/rulebook/internal/parser"
	"github.com/dgallion1/rulebook/internal/source"
)

const testKey = "secret"

const testCode = "1. Overview\nThis is the overview section.\n1.1. Details\nMore detail text.\n\f1.1.1. Deep rule that starts here\n2. Penalties\n"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	lib := library.NewLibrary(library.Config{
		Options:   doctree.Options{SkipPages: -1},
		TTL:       time.Hour,
		Source:    source.BytesSource(testCode),
		Extractor: &parser.TextParser{},
		Location:  "memory",
	}, log)
	if err := lib.Start(context.Background()); err != nil {
		t.Fatalf("start library: %v", err)
	}
	t.Cleanup(lib.Stop)
	cfg := config.Config{APIKey: testKey, MaxUploadBytes: 1 << 20}
	return NewServer(lib, log, cfg)
}

func do(t *testing.T, s *Server, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+testKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestGetSection(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/documents/default/sections/1.1", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Idx        string          `json:"idx"`
		Parent     string          `json:"parent"`
		Children   []string        `json:"children"`
		Breadcrumb []string        `json:"breadcrumb"`
		Depth      int             `json:"depth"`
		Page       json.RawMessage `json:"page"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Idx != "1.1." || resp.Parent != "1." || resp.Depth != 1 {
		t.Errorf("unexpected section %+v", resp)
	}
	if len(resp.Children) != 1 || resp.Children[0] != "1.1.1." {
		t.Errorf("expected child 1.1.1., got %v", resp.Children)
	}
	if string(resp.Page) != "1" {
		t.Errorf("expected single page 1, got %s", resp.Page)
	}
}

func TestGetSection_PageSpan(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/documents/default/sections/1.1.1.", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"page":2`) {
		t.Errorf("expected section on page 2, got %s", rec.Body.String())
	}
}

func TestGetSection_NotFound(t *testing.T) {
	s := newTestServer(t)
	if rec := do(t, s, http.MethodGet, "/api/documents/default/sections/9.9.", nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown section, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/documents/nope/sections/1.", nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown document, got %d", rec.Code)
	}
}

func TestDocumentMarkdown(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/documents/default/markdown", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "**1.**: Overview This is the overview section.") {
		t.Errorf("unexpected markdown %q", body)
	}
	if strings.Index(body, "1.1.") > strings.Index(body, "2. Penalties") {
		t.Errorf("expected 1.1. before 2. in markdown")
	}

	rec = do(t, s, http.MethodGet, "/api/documents/default/sections/2/markdown?format=html", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<h1>2. Penalties</h1>") {
		t.Errorf("expected html heading, got %q", rec.Body.String())
	}
}

func TestUploadDocument(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "rules.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	io.WriteString(fw, "cover\fcontents\f1. Uploaded\n1.1. Child rule\n")
	mw.Close()

	rec := do(t, s, http.MethodPost, "/api/documents", &body, mw.FormDataContentType())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var sum library.EntrySummary
	if err := json.NewDecoder(rec.Body).Decode(&sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.Title != "rules" || sum.Sections != 2 || len(sum.Roots) != 1 {
		t.Errorf("unexpected summary %+v", sum)
	}

	rec = do(t, s, http.MethodGet, "/api/documents/"+sum.ID+"/sections/1.1.", nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected uploaded section, got %d", rec.Code)
	}

	rec = do(t, s, http.MethodDelete, "/api/documents/"+sum.ID, nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected delete 200, got %d", rec.Code)
	}
}

func uploadForm(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	io.WriteString(fw, content)
	mw.Close()
	return &body, mw.FormDataContentType()
}

// newLoadedConfigServer builds a server from the environment defaults, which
// carry the sporting-code footer and front-matter skip for the default
// document. No default document is loaded.
func newLoadedConfigServer(t *testing.T) *Server {
	t.Helper()
	for _, key := range []string{"RULEBOOK_SKIP_PAGES", "RULEBOOK_START_PAGE", "RULEBOOK_FOOTER_PATTERN", "RULEBOOK_OVERRIDES_FILE", "MAX_UPLOAD_BYTES"} {
		t.Setenv(key, "")
	}
	cfg := config.Load()
	cfg.APIKey = testKey
	opts, err := cfg.DocumentOptions(nil)
	if err != nil {
		t.Fatalf("document options: %v", err)
	}
	if opts.FooterPattern == nil || opts.SkipPages != 2 {
		t.Fatalf("expected footer and skip defaults, got %+v", opts)
	}
	log := slog.New(slog.DiscardHandler)
	lib := library.NewLibrary(library.Config{Options: opts, TTL: time.Hour}, log)
	if err := lib.Start(context.Background()); err != nil {
		t.Fatalf("start library: %v", err)
	}
	t.Cleanup(lib.Stop)
	return NewServer(lib, log, cfg)
}

func TestUploadDocument_IgnoresDefaultDocumentFooter(t *testing.T) {
	s := newLoadedConfigServer(t)
	content := "cover\fcontents\f1. Uploaded\n1.1. Child rule\n"

	body, ct := uploadForm(t, "rules.txt", content, nil)
	rec := do(t, s, http.MethodPost, "/api/documents", body, ct)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var sum library.EntrySummary
	if err := json.NewDecoder(rec.Body).Decode(&sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.Sections != 2 {
		t.Errorf("expected 2 sections, got %+v", sum)
	}
	rec = do(t, s, http.MethodGet, "/api/documents/"+sum.ID+"/sections/1.", nil, "")
	if !strings.Contains(rec.Body.String(), `"page":3`) {
		t.Errorf("expected form feeds to count pages, got %s", rec.Body.String())
	}
}

func TestUploadDocument_FormOptions(t *testing.T) {
	s := newLoadedConfigServer(t)
	content := "cover\fcontents\f1. Uploaded\n1.1. Child rule\n"

	body, ct := uploadForm(t, "rules.txt", content, map[string]string{"skip_pages": "2", "start_page": "5"})
	rec := do(t, s, http.MethodPost, "/api/documents", body, ct)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var sum library.EntrySummary
	if err := json.NewDecoder(rec.Body).Decode(&sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	rec = do(t, s, http.MethodGet, "/api/documents/"+sum.ID+"/sections/1.1.", nil, "")
	if !strings.Contains(rec.Body.String(), `"page":5`) {
		t.Errorf("expected section on page 5, got %s", rec.Body.String())
	}

	body, ct = uploadForm(t, "rules.txt", content, map[string]string{"skip_pages": "-1"})
	if rec := do(t, s, http.MethodPost, "/api/documents", body, ct); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative skip_pages, got %d", rec.Code)
	}
	body, ct = uploadForm(t, "rules.txt", content, map[string]string{"footer": "("})
	if rec := do(t, s, http.MethodPost, "/api/documents", body, ct); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad footer, got %d", rec.Code)
	}
}

func TestHealth_LoadingWithoutDefault(t *testing.T) {
	s := newLoadedConfigServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "loading") {
		t.Errorf("expected 503 loading, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestUploadDocument_Unsupported(t *testing.T) {
	s := newTestServer(t)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "rules.csv")
	io.WriteString(fw, "a,b")
	mw.Close()

	rec := do(t, s, http.MethodPost, "/api/documents", &body, mw.FormDataContentType())
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestDeleteDefaultRefused(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodDelete, "/api/documents/default", nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"../../etc/passwd", "passwd"},
		{"code.pdf", "code.pdf"},
		{"", "unnamed"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
