package source

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dgallion1/rulebook/internal/doctree"
)

// ForLocation returns an HTTP source for http(s) URLs and a file source
// for anything else.
func ForLocation(loc string, timeout time.Duration, maxBytes int64) doctree.Source {
	if strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://") {
		return NewHTTPSource(loc, timeout, maxBytes)
	}
	return FileSource{Path: loc}
}

// FileSource reads a document from local disk.
type FileSource struct {
	Path string
}

func (s FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return data, nil
}

// BytesSource serves a document already held in memory, e.g. an upload.
type BytesSource []byte

func (s BytesSource) Fetch(ctx context.Context) ([]byte, error) {
	return s, nil
}
