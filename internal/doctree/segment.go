package doctree

import (
	"log/slog"
	"strings"
	"unicode"
)

// segmenter turns normalized lines into a flat list of sections in one
// forward pass. Only the last section appended is ever modified.
type segmenter struct {
	page      int
	overrides map[string]Formatter
	fallback  Formatter
	log       *slog.Logger

	sections []*Section
	orphans  int
}

func (sg *segmenter) formatterFor(idx string) Formatter {
	if f, ok := sg.overrides[idx]; ok && f != nil {
		return f
	}
	return sg.fallback
}

func (sg *segmenter) run(lines []string) []*Section {
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		hasBreak := strings.Contains(line, PageBreak)
		stripped := strings.TrimSpace(strings.ReplaceAll(line, PageBreak, ""))

		if idx, text, ok := splitSectionStart(stripped); ok {
			if hasBreak {
				sg.page++
			}
			sg.sections = append(sg.sections, newSection(idx, text, sg.page, sg.formatterFor(idx)))
			continue
		}

		if len(sg.sections) == 0 {
			// Text before the first section has nowhere to go.
			if hasBreak {
				sg.page++
			}
			sg.orphans++
			continue
		}

		current := sg.sections[len(sg.sections)-1]
		if hasBreak {
			sg.page++
			current.continuesOnto(sg.page)
		}
		current.appendText(stripped)
	}

	if sg.orphans > 0 {
		sg.log.Debug("dropped lines before first section", "lines", sg.orphans)
	}
	return sg.sections
}

// splitSectionStart reports whether line opens a new section. The first
// whitespace-delimited token must be a full index and some text must follow.
func splitSectionStart(line string) (idx, text string, ok bool) {
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return "", "", false
	}
	idx, ok = ParseIndex(line[:i])
	if !ok {
		return "", "", false
	}
	return idx, strings.TrimSpace(line[i:]), true
}
