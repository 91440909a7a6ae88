package config

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/dgallion1/rulebook/internal/doctree"
)

// DefaultSource is the FIRST Sporting Code the service was written for.
const DefaultSource = "https://d3bxz2vegbjddt.cloudfront.net/members/pdfs/FIRST_Sporting_Code_18_09_printable.pdf"

// DefaultFooterPattern matches the "Version - 2018.09" footer and page
// number printed at the bottom of every page of DefaultSource.
const DefaultFooterPattern = `[\n ]*Version - 2018\.09[\n ]*\d+[\n ]*`

type Config struct {
	Port string

	// Auth
	APIKey string

	// Document source
	Source        string
	SkipPages     int
	StartPage     int
	FooterPattern string
	OverridesFile string

	// Fetch
	FetchTimeout   time.Duration
	MaxUploadBytes int64

	// Library
	DocumentTTL     time.Duration
	RefreshInterval time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("RULEBOOK_API_KEY"),

		Source:        envOr("RULEBOOK_SOURCE", DefaultSource),
		SkipPages:     envInt("RULEBOOK_SKIP_PAGES", doctree.DefaultSkipPages),
		StartPage:     envInt("RULEBOOK_START_PAGE", 1),
		FooterPattern: envOr("RULEBOOK_FOOTER_PATTERN", DefaultFooterPattern),
		OverridesFile: os.Getenv("RULEBOOK_OVERRIDES_FILE"),

		FetchTimeout:   envDuration("FETCH_TIMEOUT", 60*time.Second),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		DocumentTTL:     envDuration("DOCUMENT_TTL", 1*time.Hour),
		RefreshInterval: envDuration("REFRESH_INTERVAL", 0),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.StartPage <= 0 {
		cfg.StartPage = 1
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 60 * time.Second
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.DocumentTTL <= 0 {
		cfg.DocumentTTL = 1 * time.Hour
	}

	return cfg
}

// Validate checks the settings the server needs. The CLI only needs
// ValidateDocument.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("RULEBOOK_API_KEY is required")
	}
	return c.ValidateDocument()
}

// ValidateDocument checks the settings used to build documents.
func (c Config) ValidateDocument() error {
	if c.Source == "" {
		return fmt.Errorf("RULEBOOK_SOURCE is required")
	}
	if c.SkipPages < 0 {
		return fmt.Errorf("RULEBOOK_SKIP_PAGES must not be negative")
	}
	if _, err := regexp.Compile(c.FooterPattern); err != nil {
		return fmt.Errorf("RULEBOOK_FOOTER_PATTERN: %w", err)
	}
	return nil
}

// DocumentOptions turns the document settings into doctree options,
// loading format overrides from OverridesFile or the built-in set.
func (c Config) DocumentOptions(log *slog.Logger) (doctree.Options, error) {
	opts := doctree.Options{
		SkipPages: c.SkipPages,
		StartPage: c.StartPage,
		Logger:    log,
	}
	if c.SkipPages == 0 {
		opts.SkipPages = -1
	}
	if c.FooterPattern != "" {
		re, err := regexp.Compile(c.FooterPattern)
		if err != nil {
			return doctree.Options{}, fmt.Errorf("compile footer pattern: %w", err)
		}
		opts.FooterPattern = re
	}

	if c.OverridesFile == "" {
		opts.Overrides = DefaultOverrides()
		return opts, nil
	}
	overrides, err := LoadOverrides(c.OverridesFile)
	if err != nil {
		return doctree.Options{}, err
	}
	opts.Overrides = overrides
	return opts, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
