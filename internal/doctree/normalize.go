package doctree

import (
	"fmt"
	"regexp"
	"strings"
)

// PageBreak replaces detected page footers so the segmenter can count pages.
const PageBreak = "<!-- PAGE BREAK -->"

const pageSplitter = "\n\n" + PageBreak

// Normalizer collapses repeated page footers into PageBreak markers and
// drops leading front matter.
type Normalizer struct {
	// FooterPattern matches the footer text repeated on every page. When nil,
	// form feeds emitted by the extractor mark page boundaries instead.
	FooterPattern *regexp.Regexp
	// SkipPages is the number of leading page boundaries to drop (cover, TOC).
	SkipPages int
}

// Normalize returns the trimmed lines of text after footer collapsing and
// front-matter removal.
func (n Normalizer) Normalize(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if n.FooterPattern != nil {
		// A form feed can directly follow the footer's page number.
		text = strings.ReplaceAll(text, "\f", "\n")
		text = n.FooterPattern.ReplaceAllLiteralString(text, pageSplitter)
	} else {
		text = strings.ReplaceAll(text, "\f", pageSplitter)
	}

	if n.SkipPages > 0 {
		pages := strings.SplitN(text, pageSplitter, n.SkipPages+1)
		if len(pages) <= n.SkipPages {
			return nil, fmt.Errorf("%w: want %d, found %d", ErrTooFewPages, n.SkipPages, len(pages)-1)
		}
		text = pages[n.SkipPages]
	}

	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, strings.TrimSpace(l))
	}
	return lines, nil
}
