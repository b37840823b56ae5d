package normalize

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/resume-parser/internal/core/domain"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Jan 2020", "2020-01"},
		{"january 2020", "2020-01"},
		{"SEPTEMBER 2019", "2019-09"},
		{"01/2020", "2020-01"},
		{"3/21", "2021-03"},
		{"2020-01-15", "2020-01"},
		{"2020-01", "2020-01"},
		{"2020", "2020-01"},
		{"Present", "Present"},
		{" current ", "Present"},
		{"Ongoing", "Present"},
		{"garbage", ""},
		{"", ""},
		{"Sept 2020", "2020-09"},
		{"Jan. 2019", "2019-01"},
		{"dec. 2018", "2018-12"},
		{"Janxyz 2020", ""},
		{"Ja 2020", ""},
		{"Summer 2020", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseDate(tc.in), "input %q", tc.in)
	}
}

func TestIsValidDate(t *testing.T) {
	assert.True(t, IsValidDate("2020-01"))
	assert.True(t, IsValidDate("Present"))
	assert.False(t, IsValidDate("present"))
	assert.False(t, IsValidDate("202-01"))
	assert.False(t, IsValidDate(""))
}

func TestPhone(t *testing.T) {
	assert.Equal(t, "+15551234567", Phone("555-123-4567"))
	assert.Equal(t, "+4420", Phone("+44 20"))
	assert.Equal(t, "+442079460000", Phone("+44 (20) 7946-0000"))
	assert.Equal(t, "+15551234567", Phone("1 555 123 4567"))
	assert.Equal(t, "", Phone("12345"))
	assert.Equal(t, "", Phone(""))
}

func TestURL(t *testing.T) {
	assert.Equal(t, "https://linkedin.com/in/jdoe", URL("linkedin.com/in/jdoe"))
	assert.Equal(t, "http://example.com", URL("http://example.com"))
	assert.Equal(t, "", URL("https://bad host"))
	assert.Equal(t, "", URL("   "))
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "john@x.com", Email("  John@X.com "))
	assert.Equal(t, "", Email("not-an-email"))
}

func TestSkillsTitleCaseAndDedupe(t *testing.T) {
	got := Skills([]string{"go", "  GO ", "postgre  sql", "", "Docker", "docker"})
	assert.Equal(t, []string{"Go", "Postgre Sql", "Docker"}, got)
}

func TestNormalizeEmptyRecordHasArrays(t *testing.T) {
	got := Normalize(domain.RawResume{})

	raw, err := json.Marshal(got)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{"skills", "experiences", "education", "certifications", "projects", "languages", "awards", "interests"} {
		assert.IsType(t, []any{}, decoded[key], "field %s", key)
	}
	contact := decoded["contact"].(map[string]any)
	assert.IsType(t, []any{}, contact["links"])
	assert.Nil(t, contact["name"])
	assert.Nil(t, decoded["summary"])
}

func TestNormalizeDropsUnidentifiedEntriesAndValidatesDates(t *testing.T) {
	raw := domain.RawResume{
		Contact: domain.RawContact{
			Name:  "  John   Smith ",
			Email: "JOHN@X.COM",
			Phone: "555-123-4567",
			Links: []string{"linkedin.com/in/john", "https://linkedin.com/in/john", "https://bad host"},
		},
		Experiences: []domain.RawExperience{
			{Role: "Senior Engineer", StartDate: "Jan 2020", EndDate: "present", Description: []string{" a  b ", "  "}},
			{Description: []string{"orphan"}},
			{Company: "Acme", StartDate: "13/2020x", EndDate: "1/202"},
		},
		Education: []domain.RawEducation{
			{School: "MIT", StartDate: "2012", EndDate: "garbage"},
			{Field: "Physics"},
		},
		Certifications: []domain.RawCertification{{Title: "CKA"}, {}},
		Projects:       []domain.RawProject{{Title: "parser", Technologies: []string{"go", "Go"}, Link: "github.com/x/parser"}, {Description: "nameless"}},
		Languages:      []string{"English", "english", " "},
	}

	got := Normalize(raw)

	assert.Equal(t, "John Smith", *got.Contact.Name)
	assert.Equal(t, "john@x.com", *got.Contact.Email)
	assert.Equal(t, "+15551234567", *got.Contact.Phone)
	assert.Nil(t, got.Contact.Location)
	assert.Equal(t, []string{"https://linkedin.com/in/john"}, got.Contact.Links)

	require.Len(t, got.Experiences, 2)
	assert.Equal(t, "2020-01", *got.Experiences[0].StartDate)
	assert.Equal(t, "Present", *got.Experiences[0].EndDate)
	assert.Equal(t, []string{"a b"}, got.Experiences[0].Description)
	assert.Nil(t, got.Experiences[1].StartDate)
	assert.Nil(t, got.Experiences[1].EndDate)

	require.Len(t, got.Education, 1)
	assert.Equal(t, "2012-01", *got.Education[0].StartDate)
	assert.Nil(t, got.Education[0].EndDate)

	require.Len(t, got.Certifications, 1)
	require.Len(t, got.Projects, 1)
	assert.Equal(t, []string{"Go"}, got.Projects[0].Technologies)
	assert.Equal(t, "https://github.com/x/parser", *got.Projects[0].Link)
	assert.Equal(t, []string{"English"}, got.Languages)
}

func TestNormalizeDatesAlwaysCanonical(t *testing.T) {
	canonical := regexp.MustCompile(`^\d{4}-\d{2}$`)
	inputs := []string{"Jan 2020", "1/202", "99/99", "2020-01-15", "now", "Present", "2020", "12/2020", ""}

	var experiences []domain.RawExperience
	for _, in := range inputs {
		experiences = append(experiences, domain.RawExperience{Role: "Engineer", StartDate: in, EndDate: in})
	}
	got := Normalize(domain.RawResume{Experiences: experiences})

	for _, exp := range got.Experiences {
		for _, d := range []*string{exp.StartDate, exp.EndDate} {
			if d == nil || *d == domain.DatePresent {
				continue
			}
			assert.Regexp(t, canonical, *d)
		}
	}
}

func TestFormatDateAndDuration(t *testing.T) {
	assert.Equal(t, "January 2020", FormatDate("2020-01"))
	assert.Equal(t, "Present", FormatDate("Present"))
	assert.Equal(t, "bogus", FormatDate("bogus"))

	now := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	months, ok := DurationMonths("2020-01", "Present", now)
	require.True(t, ok)
	assert.Equal(t, 50, months)

	months, ok = DurationMonths("2020-06", "2021-02", now)
	require.True(t, ok)
	assert.Equal(t, 8, months)

	_, ok = DurationMonths("2021-02", "2020-06", now)
	assert.False(t, ok)

	assert.True(t, IsFutureDate("2024-04", now))
	assert.False(t, IsFutureDate("2024-03", now))
	assert.False(t, IsFutureDate("Present", now))
}
