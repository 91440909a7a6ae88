package doctree

import (
	"fmt"
	"strings"
)

// Formatter renders a single section (without its children) as markdown.
type Formatter interface {
	Format(s *Section) string
}

// TitleMaxWords is the word count below which DefaultFormatter treats a
// section as a heading.
const TitleMaxWords = 6

// DefaultFormatter renders short sections as headings nested by depth and
// longer ones as a paragraph led by the bold index.
type DefaultFormatter struct{}

func (DefaultFormatter) Format(s *Section) string {
	if len(strings.Fields(s.Text)) < TitleMaxWords {
		heading := strings.Repeat("#", s.Depth()+1)
		return fmt.Sprintf("%s %s %s", heading, s.Idx, s.Text)
	}
	return fmt.Sprintf("**%s**: %s", s.Idx, s.Text)
}

// BulletFormatter renders the section as an unordered list item.
type BulletFormatter struct{}

func (BulletFormatter) Format(s *Section) string {
	return fmt.Sprintf("* **%s**: %s", s.Idx, s.Text)
}

// ImageFormatter is for sections whose content (usually a table) does not
// survive text extraction. It keeps the text before CutAt and links to an
// external image of the original.
type ImageFormatter struct {
	ImageURL string
	CutAt    string
}

func (f ImageFormatter) Format(s *Section) string {
	text := s.Text
	if f.CutAt != "" {
		if i := strings.Index(text, f.CutAt); i >= 0 {
			text = text[:i]
		}
	}
	return fmt.Sprintf("**%s**: %s. This section links to a graphic which can be viewed [here](%s)",
		s.Idx, strings.TrimSpace(text), f.ImageURL)
}
