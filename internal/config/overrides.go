package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dgallion1/rulebook/internal/doctree"
)

// FormatOverride is one entry of the overrides file.
type FormatOverride struct {
	Type     string `json:"type"` // "default", "bullet" or "image"
	ImageURL string `json:"image_url,omitempty"`
	CutAt    string `json:"cut_at,omitempty"`
}

// Formatter builds the strategy named by Type.
func (o FormatOverride) Formatter() (doctree.Formatter, error) {
	switch o.Type {
	case "", "default":
		return doctree.DefaultFormatter{}, nil
	case "bullet":
		return doctree.BulletFormatter{}, nil
	case "image":
		if o.ImageURL == "" {
			return nil, fmt.Errorf("image override needs image_url")
		}
		return doctree.ImageFormatter{ImageURL: o.ImageURL, CutAt: o.CutAt}, nil
	default:
		return nil, fmt.Errorf("unknown formatter type %q", o.Type)
	}
}

// LoadOverrides reads a JSON object mapping section indices to overrides.
func LoadOverrides(path string) (map[string]doctree.Formatter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overrides: %w", err)
	}
	return ParseOverrides(data)
}

// ParseOverrides decodes an override object and keys the result by
// normalized index. Keys that are not section indices are rejected.
func ParseOverrides(data []byte) (map[string]doctree.Formatter, error) {
	var raw map[string]FormatOverride
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse overrides: %w", err)
	}
	out := make(map[string]doctree.Formatter, len(raw))
	for idx, o := range raw {
		key := doctree.NormalizeIndex(idx)
		if _, ok := doctree.ParseIndex(key); !ok {
			return nil, fmt.Errorf("override %q: not a section index", idx)
		}
		f, err := o.Formatter()
		if err != nil {
			return nil, fmt.Errorf("override %q: %w", idx, err)
		}
		out[key] = f
	}
	return out, nil
}

// DefaultOverrides fixes the sections of DefaultSource whose layout does not
// survive text extraction.
func DefaultOverrides() map[string]doctree.Formatter {
	return map[string]doctree.Formatter{
		"3.2.2.1.": doctree.BulletFormatter{},
		"3.2.2.2.": doctree.BulletFormatter{},
		"3.5.1.1.": doctree.ImageFormatter{ImageURL: "https://imgur.com/a/M21QoWv", CutAt: "Incident Type"},
		"3.5.1.2.": doctree.ImageFormatter{ImageURL: "https://imgur.com/a/yFJQSV2", CutAt: "Incident Type"},
		"3.6.1.1.": doctree.ImageFormatter{ImageURL: "https://imgur.com/a/1ayfC8y", CutAt: "Session Type"},
		"5.5.4.5.": doctree.ImageFormatter{ImageURL: "https://imgur.com/a/vdShzku", CutAt: "Tier Name"},
	}
}
