package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func noBackoff(int) time.Duration { return 0 }

func TestHTTPSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("1. Rules"))
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL+"/code.pdf", 5*time.Second, 0)
	data, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "1. Rules" {
		t.Errorf("expected body, got %q", data)
	}
}

func TestHTTPSource_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL, 5*time.Second, 0)
	s.backoff = noBackoff
	data, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "ok" || calls.Load() != 3 {
		t.Errorf("expected success on third attempt, got %q after %d calls", data, calls.Load())
	}
}

func TestHTTPSource_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL, 5*time.Second, 0)
	s.backoff = noBackoff
	_, err := s.Fetch(context.Background())
	if !IsRetryable(err) {
		t.Fatalf("expected retryable error, got %v", err)
	}
	if calls.Load() != MaxRetries {
		t.Errorf("expected %d attempts, got %d", MaxRetries, calls.Load())
	}
}

func TestHTTPSource_NotFoundIsFinal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL, 5*time.Second, 0)
	s.backoff = noBackoff
	_, err := s.Fetch(context.Background())
	if err == nil || IsRetryable(err) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single attempt, got %d", calls.Load())
	}
}

func TestHTTPSource_MaxBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL, 5*time.Second, 10)
	if _, err := s.Fetch(context.Background()); err == nil {
		t.Fatal("expected size limit error")
	}
}

func TestForLocation(t *testing.T) {
	if _, ok := ForLocation("https://example.com/a.pdf", time.Second, 0).(*HTTPSource); !ok {
		t.Errorf("expected HTTPSource for https URL")
	}
	if _, ok := ForLocation("/tmp/a.pdf", time.Second, 0).(FileSource); !ok {
		t.Errorf("expected FileSource for path")
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "code.txt")
	if err := os.WriteFile(path, []byte("1. A"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := FileSource{Path: path}.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "1. A" {
		t.Errorf("unexpected data %q", data)
	}
	if _, err := (FileSource{Path: path + ".missing"}).Fetch(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestBackoff_Bounds(t *testing.T) {
	for attempt := 0; attempt < 8; attempt++ {
		d := Backoff(attempt)
		if d < time.Second || d > 45*time.Second {
			t.Errorf("attempt %d: backoff %v out of range", attempt, d)
		}
	}
}
