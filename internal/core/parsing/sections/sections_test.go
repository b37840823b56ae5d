package sections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectExperienceSynonyms(t *testing.T) {
	c := Default()
	for _, line := range []string{"EXPERIENCE", "Work Experience", "employment history", "Career History", "positions", "  Professional Experience  "} {
		label, ok := c.Detect(line)
		require.True(t, ok, "line %q", line)
		assert.Equal(t, LabelExperience, label, "line %q", line)
	}
}

func TestDetectPerCategory(t *testing.T) {
	cases := []struct {
		line string
		want Label
	}{
		{"Contact Information", LabelContact},
		{"personal details", LabelContact},
		{"About", LabelContact},
		{"About Me", LabelSummary},
		{"Professional Summary", LabelSummary},
		{"Objective", LabelSummary},
		{"Academic Background", LabelEducation},
		{"Qualifications", LabelEducation},
		{"Technical Skills", LabelSkills},
		{"Core Competencies", LabelSkills},
		{"Licenses and Certifications", LabelCertifications},
		{"Key Projects", LabelProjects},
		{"Portfolio", LabelProjects},
		{"Languages", LabelLanguages},
		{"Awards & Honors", LabelAwards},
		{"Recognition", LabelAwards},
		{"Hobbies", LabelInterests},
	}
	c := Default()
	for _, tc := range cases {
		label, ok := c.Detect(tc.line)
		require.True(t, ok, "line %q", tc.line)
		assert.Equal(t, tc.want, label, "line %q", tc.line)
	}
}

func TestDetectRejectsNonHeaders(t *testing.T) {
	c := Default()
	for _, line := range []string{"foo bar", "", "Experience with Go", "EXPERIENCE\nSenior Engineer", "employment"} {
		_, ok := c.Detect(line)
		assert.False(t, ok, "line %q", line)
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	c := Default()
	first, _ := c.Detect("Work Experience")
	for i := 0; i < 50; i++ {
		got, _ := c.Detect("Work Experience")
		assert.Equal(t, first, got)
	}
}

func TestKeyMapsExperienceToExperiences(t *testing.T) {
	assert.Equal(t, KeyExperiences, Default().Key(LabelExperience))
	assert.Equal(t, KeySkills, Default().Key(LabelSkills))
	assert.Equal(t, "", Default().Key(Label("NOPE")))
}

func TestParseClassifierRejectsBadTables(t *testing.T) {
	_, err := ParseClassifier([]byte("sections: []"))
	assert.Error(t, err)

	_, err = ParseClassifier([]byte("sections:\n  - label: X\n    key: other\n    patterns: ['x']\n"))
	assert.Error(t, err)

	_, err = ParseClassifier([]byte("sections:\n  - label: X\n    key: x\n    patterns: ['(']\n"))
	assert.Error(t, err)
}

func TestParseClassifierCustomTable(t *testing.T) {
	c, err := ParseClassifier([]byte("sections:\n  - label: skills\n    key: skills\n    patterns: ['stack']\n"))
	require.NoError(t, err)

	label, ok := c.Detect("STACK")
	require.True(t, ok)
	assert.Equal(t, LabelSkills, label)
}

func TestSegmentSingleForwardPass(t *testing.T) {
	paragraphs := []string{
		"John Smith\njohn@x.com",
		"EXPERIENCE",
		"Senior Engineer\nBuilt things",
		"Another paragraph",
		"SKILLS",
		"Go, SQL",
		"Experience",
		"Staff Engineer",
	}
	m := Segment(paragraphs, nil)

	assert.Equal(t, []string{KeyOther, KeyExperiences, KeySkills}, m.Keys())
	assert.Equal(t, []string{"John Smith\njohn@x.com"}, m.Paragraphs(KeyOther))
	assert.Equal(t, []string{"Senior Engineer\nBuilt things", "Another paragraph", "Staff Engineer"}, m.Paragraphs(KeyExperiences))
	assert.Equal(t, []string{"Senior Engineer", "Built things", "Another paragraph", "Staff Engineer"}, m.Lines(KeyExperiences))
	assert.Equal(t, []string{"Go, SQL"}, m.Paragraphs(KeySkills))
}

func TestSegmentMultiLineParagraphIsNeverHeader(t *testing.T) {
	m := Segment([]string{"EXPERIENCE\nSenior Engineer"}, nil)
	assert.Equal(t, []string{KeyOther}, m.Keys())
}

func TestSegmentSkipsEmptySections(t *testing.T) {
	m := Segment([]string{"SKILLS", "EDUCATION", "MIT"}, nil)
	assert.Equal(t, []string{KeyEducation}, m.Keys())
	assert.False(t, m.Has(KeySkills))
	assert.Nil(t, m.Lines(KeySkills))
}

func TestIsolateHeaders(t *testing.T) {
	in := "John Smith\nEXPERIENCE\nSenior Engineer\n\nSKILLS\nGo"
	want := "John Smith\n\nEXPERIENCE\n\nSenior Engineer\n\nSKILLS\n\nGo"
	assert.Equal(t, want, IsolateHeaders(in, nil))
}

func TestIsolateHeadersLeavesIsolatedHeadersAlone(t *testing.T) {
	in := "EXPERIENCE\n\nSenior Engineer"
	assert.Equal(t, in, IsolateHeaders(in, nil))
}
