package sections

import "strings"

// SectionMap holds the paragraphs of each detected section. It is built once
// by Segment and only read afterwards.
type SectionMap struct {
	order      []string
	paragraphs map[string][]string
}

// Segment walks paragraphs in order and cuts them into sections. A paragraph
// starts a new section only when its whole text is a header; content seen
// before the first header lands in "other". Repeated headers append to the
// existing section.
func Segment(paragraphs []string, classifier *Classifier) SectionMap {
	if classifier == nil {
		classifier = Default()
	}
	m := SectionMap{paragraphs: make(map[string][]string)}

	current := KeyOther
	var pending []string
	flush := func() {
		if len(pending) == 0 {
			return
		}
		if _, ok := m.paragraphs[current]; !ok {
			m.order = append(m.order, current)
		}
		m.paragraphs[current] = append(m.paragraphs[current], pending...)
		pending = nil
	}

	for _, p := range paragraphs {
		if label, ok := classifier.Detect(p); ok {
			flush()
			current = classifier.Key(label)
			continue
		}
		pending = append(pending, p)
	}
	flush()
	return m
}

// Keys returns section keys in the order they were first filled.
func (m SectionMap) Keys() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

func (m SectionMap) Has(key string) bool {
	_, ok := m.paragraphs[key]
	return ok
}

// Paragraphs returns a copy of the paragraphs stored under key.
func (m SectionMap) Paragraphs(key string) []string {
	ps := m.paragraphs[key]
	out := make([]string, len(ps))
	copy(out, ps)
	return out
}

// Lines flattens the section's paragraphs into trimmed, non-empty lines.
func (m SectionMap) Lines(key string) []string {
	var out []string
	for _, p := range m.paragraphs[key] {
		for _, line := range strings.Split(p, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
	}
	return out
}

// Len returns the number of non-empty sections.
func (m SectionMap) Len() int {
	return len(m.order)
}
