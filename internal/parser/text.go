package parser

import (
	"bufio"
	"io"
	"strings"
)

// TextParser handles plain text files. Line structure is kept as is; form
// feeds pass through as page boundaries.
type TextParser struct{}

func (p *TextParser) ExtractText(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var buf strings.Builder
	for scanner.Scan() {
		buf.WriteString(strings.TrimRight(scanner.Text(), "\r"))
		buf.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
