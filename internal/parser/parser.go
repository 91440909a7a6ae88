package parser

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/dgallion1/rulebook/internal/doctree"
)

// SupportedExtensions lists file extensions text can be extracted from.
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".html": true,
	".htm":  true,
	".pdf":  true,
	".docx": true,
}

// ForFile returns the extractor for a filename or URL.
func ForFile(filename string, pdfFallback bool) (doctree.Extractor, error) {
	if strings.Contains(filename, "://") {
		if u, err := url.Parse(filename); err == nil {
			filename = u.Path
		}
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: pdfFallback}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
