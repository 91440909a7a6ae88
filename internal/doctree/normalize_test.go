package doctree

import (
	"errors"
	"reflect"
	"regexp"
	"testing"
)

var testFooter = regexp.MustCompile(`[\n ]*Version - 2018\.09[\n ]*\d+[\n ]*`)

func TestNormalizer_CollapsesFootersAndSkipsFrontMatter(t *testing.T) {
	text := "Cover\nVersion - 2018.09\n1\nContents\n1. Intro ... 3\nVersion - 2018.09\n2\n" +
		"1. Intro\nbody\nVersion - 2018.09\n3\nmore body\n"
	n := Normalizer{FooterPattern: testFooter, SkipPages: 2}
	lines, err := n.Normalize(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"1. Intro", "body", "", PageBreak + "more body"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("expected %q, got %q", want, lines)
	}
}

func TestNormalizer_FormFeedAfterFooterNumber(t *testing.T) {
	n := Normalizer{FooterPattern: testFooter}
	lines, err := n.Normalize("3. Racing\nbody\nVersion - 2018.09\n3\f3.1. Rule on next page")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"3. Racing", "body", "", PageBreak + "3.1. Rule on next page"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("expected %q, got %q", want, lines)
	}
}

func TestNormalizer_FormFeedsWithoutPattern(t *testing.T) {
	n := Normalizer{SkipPages: 1}
	lines, err := n.Normalize("cover\f1. A\ntext\f1.1. B")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"1. A", "text", "", PageBreak + "1.1. B"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("expected %q, got %q", want, lines)
	}
}

func TestNormalizer_TooFewPages(t *testing.T) {
	n := Normalizer{FooterPattern: testFooter, SkipPages: 2}
	_, err := n.Normalize("only one page\nVersion - 2018.09\n1\nrest")
	if !errors.Is(err, ErrTooFewPages) {
		t.Fatalf("expected ErrTooFewPages, got %v", err)
	}
}

func TestNormalizer_NoSkip(t *testing.T) {
	n := Normalizer{FooterPattern: testFooter}
	lines, err := n.Normalize("  1. A\n  text  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"1. A", "text"}) {
		t.Errorf("unexpected lines %q", lines)
	}
}
