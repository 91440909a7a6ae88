package doctree

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

var (
	// ErrFetch wraps failures of the byte source.
	ErrFetch = errors.New("fetch document")
	// ErrExtract wraps failures turning document bytes into text.
	ErrExtract = errors.New("extract text")
	// ErrTooFewPages means the document has fewer page boundaries than the
	// number of front-matter pages to skip.
	ErrTooFewPages = errors.New("not enough pages to skip front matter")
)

// Source supplies the raw bytes of a document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Extractor converts document bytes into plain text.
type Extractor interface {
	ExtractText(r io.Reader) (string, error)
}

// DefaultSkipPages drops the cover and table of contents.
const DefaultSkipPages = 2

// Options controls how a Document is built.
type Options struct {
	// SkipPages is the number of leading page boundaries to drop. Negative
	// means none; zero selects DefaultSkipPages.
	SkipPages int
	// StartPage is the number given to the first page after the skipped
	// front matter. Zero means 1.
	StartPage int
	// FooterPattern matches the footer repeated on every page.
	FooterPattern *regexp.Regexp
	// Formatter renders sections without an override. Nil means DefaultFormatter.
	Formatter Formatter
	// Overrides picks a formatter per section index.
	Overrides map[string]Formatter
	Logger    *slog.Logger
}

// Document owns every section parsed from one source. It is built once;
// after a successful parse it is read-only.
type Document struct {
	opts Options
	log  *slog.Logger

	sections []*Section
	roots    []int
	byIdx    map[string]int
	parsed   bool
}

// New returns an unparsed Document.
func New(opts Options) *Document {
	if opts.SkipPages == 0 {
		opts.SkipPages = DefaultSkipPages
	} else if opts.SkipPages < 0 {
		opts.SkipPages = 0
	}
	if opts.StartPage == 0 {
		opts.StartPage = 1
	}
	if opts.Formatter == nil {
		opts.Formatter = DefaultFormatter{}
	}
	overrides := make(map[string]Formatter, len(opts.Overrides))
	for idx, f := range opts.Overrides {
		overrides[NormalizeIndex(idx)] = f
	}
	opts.Overrides = overrides

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Document{opts: opts, log: log}
}

// Parse fetches the document from src, extracts its text with ex and builds
// the section tree. A failure leaves the Document unparsed and empty.
// Calling Parse on a parsed Document does nothing.
func (d *Document) Parse(ctx context.Context, src Source, ex Extractor) error {
	if d.parsed {
		return nil
	}
	raw, err := src.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}
	text, err := ex.ExtractText(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExtract, err)
	}
	d.log.Debug("extracted document text", "bytes", len(raw), "chars", len(text))
	return d.ParseText(text)
}

// ParseText builds the tree from extracted plain text, applying footer
// normalization and front-matter removal first.
func (d *Document) ParseText(text string) error {
	if d.parsed {
		return nil
	}
	n := Normalizer{FooterPattern: d.opts.FooterPattern, SkipPages: d.opts.SkipPages}
	lines, err := n.Normalize(text)
	if err != nil {
		return err
	}
	return d.ParseLines(lines)
}

// ParseLines builds the tree from lines that are already normalized.
func (d *Document) ParseLines(lines []string) error {
	if d.parsed {
		return nil
	}
	sg := &segmenter{
		page:      d.opts.StartPage,
		overrides: d.opts.Overrides,
		fallback:  d.opts.Formatter,
		log:       d.log,
	}
	d.build(sg.run(lines))
	d.log.Info("parsed document", "sections", len(d.sections), "roots", len(d.roots))
	return nil
}

// build runs the hierarchy pass over a complete flat section list.
func (d *Document) build(sections []*Section) {
	for _, s := range sections {
		s.doc = d
		s.parent = -1
		s.children = nil
	}
	d.byIdx = indexSections(sections)
	d.roots = linkHierarchy(sections, d.byIdx)
	d.sections = sections
	d.parsed = true
}

// Parsed reports whether the tree has been built.
func (d *Document) Parsed() bool { return d.parsed }

// Len returns the number of sections.
func (d *Document) Len() int { return len(d.sections) }

// Sections returns every section in source order.
func (d *Document) Sections() []*Section {
	return append([]*Section(nil), d.sections...)
}

// Roots returns the sections without a parent in source order.
func (d *Document) Roots() []*Section {
	out := make([]*Section, len(d.roots))
	for i, pos := range d.roots {
		out[i] = d.sections[pos]
	}
	return out
}

// GetSection looks up a section by index. The trailing separator is
// optional, so "1.1" and "1.1." find the same section.
func (d *Document) GetSection(idx string) (*Section, bool) {
	pos, ok := d.byIdx[NormalizeIndex(idx)]
	if !ok {
		return nil, false
	}
	return d.sections[pos], true
}

// Walk visits every section depth-first, parents before children, starting
// from the roots. Returning false from fn skips that section's subtree.
func (d *Document) Walk(fn func(s *Section) bool) {
	var visit func(s *Section)
	visit = func(s *Section) {
		if !fn(s) {
			return
		}
		for _, c := range s.Children() {
			visit(c)
		}
	}
	for _, r := range d.Roots() {
		visit(r)
	}
}

// RenderMarkdown renders the whole tree, each root followed by its subtree.
func (d *Document) RenderMarkdown() string {
	roots := d.Roots()
	rendered := make([]string, len(roots))
	for i, r := range roots {
		rendered[i] = r.Markdown()
	}
	return strings.Join(rendered, "\n")
}
