package chunking

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitKeepsShortTextWhole(t *testing.T) {
	s := NewSplitter(0, 0)
	got := s.Split("John Smith\n\nEXPERIENCE\n\nEngineer")
	if len(got) != 1 || got[0] != "John Smith\n\nEXPERIENCE\n\nEngineer" {
		t.Fatalf("Split() = %q", got)
	}
}

func TestSplitPacksParagraphs(t *testing.T) {
	s := NewSplitter(12, 0)
	got := s.Split("aaaa\n\nbbbb\n\ncccc\n\ndddddddd")
	want := []string{"aaaa\n\nbbbb", "cccc", "dddddddd"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("Split() = %q, want %q", got, want)
	}
}

func TestSplitCutsOversizedParagraph(t *testing.T) {
	s := NewSplitter(4, 1)
	got := s.Split("ab\n\nабвгдеж")
	want := []string{"ab", "абвг", "гдеж"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("Split() = %q, want %q", got, want)
	}
	for _, chunk := range got {
		if utf8.RuneCountInString(chunk) > 4 {
			t.Fatalf("chunk %q exceeds limit", chunk)
		}
	}
}

func TestSplitEmpty(t *testing.T) {
	if got := NewSplitter(10, 0).Split("  \n\n "); got != nil {
		t.Fatalf("Split() = %q, want nil", got)
	}
}
