package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// HTTPSource downloads a document, retrying transient failures.
type HTTPSource struct {
	URL      string
	MaxBytes int64
	Log      *slog.Logger

	httpClient *http.Client
	backoff    func(attempt int) time.Duration
}

func NewHTTPSource(url string, timeout time.Duration, maxBytes int64) *HTTPSource {
	return &HTTPSource{
		URL:      url,
		MaxBytes: maxBytes,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		backoff: Backoff,
	}
}

// Fetch GETs the URL, retrying up to MaxRetries times on 429/5xx.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	var lastErr error
	for attempt := range MaxRetries {
		data, err := s.fetchOnce(ctx)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !IsRetryable(err) || attempt == MaxRetries-1 {
			break
		}
		if s.Log != nil {
			s.Log.Warn("retryable fetch error", "url", s.URL, "attempt", attempt, "error", err)
		}
		select {
		case <-time.After(s.backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

func (s *HTTPSource) fetchOnce(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "rulebook/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &RetryableError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("get %s: status %d: %s", s.URL, resp.StatusCode, string(body))
	}

	r := io.Reader(resp.Body)
	if s.MaxBytes > 0 {
		r = io.LimitReader(resp.Body, s.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if s.MaxBytes > 0 && int64(len(data)) > s.MaxBytes {
		return nil, fmt.Errorf("document exceeds max size (%d bytes)", s.MaxBytes)
	}
	return data, nil
}

// Close releases idle connections.
func (s *HTTPSource) Close() {
	s.httpClient.CloseIdleConnections()
}
