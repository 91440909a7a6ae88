package doctree

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PageSpan lists the pages a section covers in ascending order. A span of
// length one is a single page.
type PageSpan []int

// First returns the page the section starts on.
func (p PageSpan) First() int {
	if len(p) == 0 {
		return 0
	}
	return p[0]
}

// Multi reports whether the section crosses a page boundary.
func (p PageSpan) Multi() bool { return len(p) > 1 }

// MarshalJSON writes a single page as a number and a span as an array.
func (p PageSpan) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(p[0])
	}
	return json.Marshal([]int(p))
}

// UnmarshalJSON accepts either form written by MarshalJSON.
func (p *PageSpan) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*p = PageSpan{n}
		return nil
	}
	var pages []int
	if err := json.Unmarshal(b, &pages); err != nil {
		return fmt.Errorf("page span: %w", err)
	}
	*p = PageSpan(pages)
	return nil
}

// String formats a span as "3" or "[3, 4]".
func (p PageSpan) String() string {
	if len(p) == 1 {
		return fmt.Sprintf("%d", p[0])
	}
	parts := make([]string, len(p))
	for i, n := range p {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Section is one numbered node of a Document. Parent and child relations
// are positions in the owning document's section list.
type Section struct {
	Idx   string
	Text  string
	Pages PageSpan

	formatter Formatter
	doc       *Document
	parent    int // -1 for roots
	children  []int
}

func newSection(idx, text string, page int, f Formatter) *Section {
	return &Section{
		Idx:       idx,
		Text:      text,
		Pages:     PageSpan{page},
		formatter: f,
		parent:    -1,
	}
}

// Page returns the page the section starts on.
func (s *Section) Page() int { return s.Pages.First() }

// Formatter returns the strategy used to render this section.
func (s *Section) Formatter() Formatter { return s.formatter }

// Parent returns the section whose index is this one's minus the last
// component, or nil for a root.
func (s *Section) Parent() *Section {
	if s.doc == nil || s.parent < 0 {
		return nil
	}
	return s.doc.sections[s.parent]
}

// Children returns the direct subsections in source order.
func (s *Section) Children() []*Section {
	if s.doc == nil || len(s.children) == 0 {
		return nil
	}
	out := make([]*Section, len(s.children))
	for i, c := range s.children {
		out[i] = s.doc.sections[c]
	}
	return out
}

// Depth counts parent hops to a root. Roots have depth 0.
func (s *Section) Depth() int {
	depth := 0
	for p := s.Parent(); p != nil; p = p.Parent() {
		depth++
	}
	return depth
}

// Breadcrumb returns the indices of the ancestors, root first.
func (s *Section) Breadcrumb() []string {
	var crumbs []string
	for p := s.Parent(); p != nil; p = p.Parent() {
		crumbs = append([]string{p.Idx}, crumbs...)
	}
	return crumbs
}

// Markdown renders the section followed by its subtree.
func (s *Section) Markdown() string {
	f := s.formatter
	if f == nil {
		f = DefaultFormatter{}
	}
	children := s.Children()
	rendered := make([]string, len(children))
	for i, c := range children {
		rendered[i] = c.Markdown()
	}
	return f.Format(s) + "\n\n" + strings.Join(rendered, "\n")
}

// continuesOnto records that the section runs onto page.
func (s *Section) continuesOnto(page int) {
	s.Pages = append(s.Pages, page)
}

// appendText joins line onto the running text with a single space unless
// either side already provides whitespace.
func (s *Section) appendText(line string) {
	if line == "" {
		return
	}
	if s.Text == "" {
		s.Text = line
		return
	}
	sep := " "
	if strings.HasSuffix(s.Text, " ") || strings.HasPrefix(line, " ") {
		sep = ""
	}
	s.Text += sep + line
}
