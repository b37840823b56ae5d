// Package sections classifies header lines and cuts a document's paragraphs
// into canonical resume sections.
package sections

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Label is a canonical section category.
type Label string

const (
	LabelContact        Label = "CONTACT"
	LabelSummary        Label = "SUMMARY"
	LabelExperience     Label = "EXPERIENCE"
	LabelEducation      Label = "EDUCATION"
	LabelSkills         Label = "SKILLS"
	LabelCertifications Label = "CERTIFICATIONS"
	LabelProjects       Label = "PROJECTS"
	LabelLanguages      Label = "LANGUAGES"
	LabelAwards         Label = "AWARDS"
	LabelInterests      Label = "INTERESTS"
)

// Section map keys.
const (
	KeyContact        = "contact"
	KeySummary        = "summary"
	KeyExperiences    = "experiences"
	KeyEducation      = "education"
	KeySkills         = "skills"
	KeyCertifications = "certifications"
	KeyProjects       = "projects"
	KeyLanguages      = "languages"
	KeyAwards         = "awards"
	KeyInterests      = "interests"
	KeyOther          = "other"
)

//go:embed headers.yaml
var defaultTable []byte

type tableFile struct {
	Sections []struct {
		Label    string   `yaml:"label"`
		Key      string   `yaml:"key"`
		Patterns []string `yaml:"patterns"`
	} `yaml:"sections"`
}

type category struct {
	label    Label
	key      string
	patterns []*regexp.Regexp
}

// Classifier maps a single line to a section label. It is immutable and safe
// for concurrent use.
type Classifier struct {
	categories []category
}

var (
	defaultOnce       sync.Once
	defaultClassifier *Classifier
)

// Default returns the classifier built from the embedded pattern table.
func Default() *Classifier {
	defaultOnce.Do(func() {
		c, err := ParseClassifier(defaultTable)
		if err != nil {
			panic(fmt.Sprintf("sections: embedded header table: %v", err))
		}
		defaultClassifier = c
	})
	return defaultClassifier
}

// LoadClassifier reads a YAML pattern table from disk.
func LoadClassifier(path string) (*Classifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read header table: %w", err)
	}
	return ParseClassifier(raw)
}

// ParseClassifier compiles a YAML pattern table. Each pattern is anchored to
// the whole line and matched case-insensitively.
func ParseClassifier(raw []byte) (*Classifier, error) {
	var table tableFile
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("decode header table: %w", err)
	}
	if len(table.Sections) == 0 {
		return nil, fmt.Errorf("header table has no sections")
	}

	c := &Classifier{categories: make([]category, 0, len(table.Sections))}
	seen := make(map[string]struct{}, len(table.Sections))
	for _, s := range table.Sections {
		label := Label(strings.ToUpper(strings.TrimSpace(s.Label)))
		key := strings.TrimSpace(s.Key)
		if label == "" || key == "" {
			return nil, fmt.Errorf("header table entry needs label and key")
		}
		if key == KeyOther {
			return nil, fmt.Errorf("section key %q is reserved", KeyOther)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate section key %q", key)
		}
		seen[key] = struct{}{}

		cat := category{label: label, key: key}
		for _, p := range s.Patterns {
			re, err := regexp.Compile(`(?i)^(?:` + p + `)$`)
			if err != nil {
				return nil, fmt.Errorf("compile pattern %q for %s: %w", p, label, err)
			}
			cat.patterns = append(cat.patterns, re)
		}
		c.categories = append(c.categories, cat)
	}
	return c, nil
}

// Detect returns the label of the first category with a pattern matching the
// trimmed line.
func (c *Classifier) Detect(line string) (Label, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	for _, cat := range c.categories {
		for _, re := range cat.patterns {
			if re.MatchString(line) {
				return cat.label, true
			}
		}
	}
	return "", false
}

// Key returns the section map key for a label, or "" if the label is unknown.
func (c *Classifier) Key(label Label) string {
	for _, cat := range c.categories {
		if cat.label == label {
			return cat.key
		}
	}
	return ""
}

// IsHeader reports whether the line is a section header.
func (c *Classifier) IsHeader(line string) bool {
	_, ok := c.Detect(line)
	return ok
}
