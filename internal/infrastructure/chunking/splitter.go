// Package chunking cuts long text into pieces small enough for remote
// collaborators, preferring paragraph boundaries.
package chunking

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the largest request body, in runes, sent to the NER service.
const DefaultChunkSize = 100000

type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

// Split packs whole paragraphs into chunks of at most ChunkSize runes.
// A paragraph longer than ChunkSize is cut into rune windows that overlap by
// Overlap runes.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var (
		out     []string
		current strings.Builder
		size    int
	)
	flush := func() {
		if chunk := strings.TrimSpace(current.String()); chunk != "" {
			out = append(out, chunk)
		}
		current.Reset()
		size = 0
	}

	for _, para := range strings.Split(text, "\n\n") {
		n := utf8.RuneCountInString(para)
		if n == 0 {
			continue
		}
		if n > s.ChunkSize {
			flush()
			out = append(out, s.window(para)...)
			continue
		}
		sep := 0
		if size > 0 {
			sep = 2
		}
		if size+sep+n > s.ChunkSize {
			flush()
			sep = 0
		}
		if sep > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		size += sep + n
	}
	flush()
	return out
}

func (s *Splitter) window(text string) []string {
	runes := []rune(text)
	step := s.ChunkSize - s.Overlap
	if step <= 0 {
		step = s.ChunkSize
	}

	out := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := min(start+s.ChunkSize, len(runes))
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}
