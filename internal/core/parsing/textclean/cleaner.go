// Package textclean normalizes extracted document text before it is
// segmented. Every function here is pure.
package textclean

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	controlChars    = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F-\x9F]`)
	whitespaceRun   = regexp.MustCompile(`[\s\p{Zs}]+`)
	paragraphBreak  = regexp.MustCompile(`\n(?:[ \t]*\n)+`)
	digitPipeUpper  = regexp.MustCompile(`([0-9])\|([A-Z])`)
	zeroBeforeUpper = regexp.MustCompile(`\b0([A-Z])\b`)

	quoteReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
		"‘", "'", "’", "'", "‚", "'", "‛", "'",
	)
)

// Clean strips control characters, collapses whitespace inside each line,
// straightens curly quotes and repairs two common OCR confusions.
// Line breaks survive; Clean(Clean(x)) == Clean(x).
func Clean(text string) string {
	if text == "" {
		return ""
	}
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = controlChars.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(whitespaceRun.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")

	text = quoteReplacer.Replace(text)
	text = repairOCR(text)
	return strings.TrimSpace(text)
}

// repairOCR runs to a fixed point: the zero repair can expose a new
// digit-pipe match ("5|0A" -> "5|OA" -> "5lOA").
func repairOCR(text string) string {
	for {
		next := digitPipeUpper.ReplaceAllString(text, "${1}l${2}")
		next = zeroBeforeUpper.ReplaceAllString(next, "O${1}")
		if next == text {
			return text
		}
		text = next
	}
}

// SplitParagraphs splits text on runs of two or more newlines and returns
// the cleaned, non-empty paragraphs in document order.
func SplitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := paragraphBreak.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = Clean(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeSpaces collapses every whitespace run to a single space.
func NormalizeSpaces(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// TitleCase upper-cases the first letter of each word and lower-cases the
// rest. Words are re-joined with single spaces.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// IsLikelyHeading reports whether a line reads like an entry title: at most
// five words, and either fully upper case or already in title case.
func IsLikelyHeading(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if len(strings.Fields(line)) > 5 {
		return false
	}
	return line == strings.ToUpper(line) || line == TitleCase(line)
}

// DedupeFold removes case-insensitive duplicates, keeping the first spelling.
func DedupeFold(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Dedupe removes exact duplicates, keeping first occurrences.
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
