package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgallion1/rulebook/internal/doctree"
)

var (
	// idxStyle for section indices
	idxStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("81"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// successStyle for success indicators
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// headerBoxStyle frames a single section's metadata
	headerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("81")).
			Padding(0, 1)
)

const titleWidth = 60

// formatTree renders one line per section, indented by depth. maxDepth of
// zero prints everything.
func formatTree(doc *doctree.Document, maxDepth int) string {
	var sb strings.Builder
	doc.Walk(func(s *doctree.Section) bool {
		depth := s.Depth()
		if maxDepth > 0 && depth >= maxDepth {
			return false
		}
		fmt.Fprintf(&sb, "%s%s %s %s\n",
			strings.Repeat("  ", depth),
			idxStyle.Render(s.Idx),
			shorten(s.Text, titleWidth),
			dimStyle.Render("p. "+s.Pages.String()),
		)
		return true
	})
	return sb.String()
}

func formatSectionHeader(s *doctree.Section) string {
	parent := "none"
	if p := s.Parent(); p != nil {
		parent = p.Idx
	}
	content := fmt.Sprintf("%s %s\n%s %s  %s %s  %s %d",
		dimStyle.Render("Section:"), idxStyle.Render(s.Idx),
		dimStyle.Render("Page:"), s.Pages.String(),
		dimStyle.Render("Parent:"), parent,
		dimStyle.Render("Children:"), len(s.Children()),
	)
	return headerBoxStyle.Render(content)
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
