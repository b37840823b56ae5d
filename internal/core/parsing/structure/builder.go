// Package structure turns segmented resume sections into a raw, not yet
// validated resume record.
package structure

import (
	"regexp"
	"strings"

	"github.com/kirillkom/resume-parser/internal/core/domain"
	"github.com/kirillkom/resume-parser/internal/core/parsing/sections"
	"github.com/kirillkom/resume-parser/internal/core/parsing/textclean"
)

var (
	contactEmail = regexp.MustCompile(`([a-zA-Z0-9._-]+@[a-zA-Z0-9._-]+\.[a-zA-Z0-9_-]+)`)
	contactPhone = regexp.MustCompile(`(?:\+?1)?[\s.-]?\(?([0-9]{3})\)?[\s.-]?([0-9]{3})[\s.-]?([0-9]{4})`)
	contactLink  = regexp.MustCompile(`(?i)(https?://[^\s]+|(?:www\.|linkedin\.com/in/)[^\s]+)`)
	nameNoise    = regexp.MustCompile(`[^\w\s\p{Zs}'-]`)

	itemDelimiters = regexp.MustCompile(`[,•\-\n]`)
	degreeKeyword  = regexp.MustCompile(`(?i)(Bachelor|Master|PhD|Associate|Diploma|Certificate|BS|BA|MS|MA|MBA)`)

	dateToken = `(?:(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{4}|\d{1,2}/\d{2,4}|\d{4}-\d{2}|\d{4})`
	dateRange = regexp.MustCompile(`(?i)\b(` + dateToken + `)\s*(?:-|–|—|to)\s*(` + dateToken + `|present|current|ongoing)\b`)
)

// Build applies the per-section heuristics. Global entities fill gaps the
// sections leave: the first EMAIL and PERSON back the contact block, the
// first ORG becomes the company of any experience without one.
func Build(m sections.SectionMap, entities []domain.Entity) domain.RawResume {
	raw := domain.RawResume{}

	contactLines := m.Lines(sections.KeyContact)
	if !m.Has(sections.KeyContact) {
		contactLines = m.Lines(sections.KeyOther)
	}
	if len(contactLines) > 0 {
		raw.Contact = ExtractContact(contactLines)
	}
	if raw.Contact.Email == "" {
		if email, ok := domain.FirstEntity(entities, domain.EntityEmail); ok {
			raw.Contact.Email = email
		}
	}
	if raw.Contact.Name == "" {
		if name, ok := domain.FirstEntity(entities, domain.EntityPerson); ok {
			raw.Contact.Name = name
		}
	}

	if m.Has(sections.KeySummary) {
		raw.Summary = strings.TrimSpace(strings.Join(m.Lines(sections.KeySummary), " "))
	}

	raw.Skills = ExtractItems(m.Lines(sections.KeySkills))

	raw.Experiences = ExtractExperiences(m.Lines(sections.KeyExperiences))
	if org, ok := domain.FirstEntity(entities, domain.EntityOrg); ok {
		for i := range raw.Experiences {
			if raw.Experiences[i].Company == "" {
				raw.Experiences[i].Company = org
			}
		}
	}

	raw.Education = ExtractEducation(m.Lines(sections.KeyEducation))

	for _, title := range ExtractItems(m.Lines(sections.KeyCertifications)) {
		raw.Certifications = append(raw.Certifications, domain.RawCertification{Title: title})
	}
	for _, title := range ExtractItems(m.Lines(sections.KeyProjects)) {
		raw.Projects = append(raw.Projects, domain.RawProject{Title: title})
	}

	raw.Languages = ExtractItems(m.Lines(sections.KeyLanguages))
	raw.Awards = ExtractItems(m.Lines(sections.KeyAwards))
	raw.Interests = ExtractItems(m.Lines(sections.KeyInterests))
	return raw
}

// ExtractContact reads name, email, phone and links from a contact block.
// The name is the first non-empty line stripped of punctuation.
func ExtractContact(lines []string) domain.RawContact {
	text := strings.Join(lines, "\n")
	var c domain.RawContact

	if m := contactEmail.FindStringSubmatch(text); m != nil {
		c.Email = m[1]
	}
	if m := contactPhone.FindStringSubmatch(text); m != nil {
		c.Phone = m[1] + "-" + m[2] + "-" + m[3]
	}
	c.Links = textclean.Dedupe(contactLink.FindAllString(text, -1))

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		c.Name = strings.TrimSpace(nameNoise.ReplaceAllString(line, ""))
		break
	}
	return c
}

// ExtractItems splits each line on commas, bullets and hyphens.
func ExtractItems(lines []string) []string {
	var items []string
	for _, line := range lines {
		for _, part := range itemDelimiters.Split(line, -1) {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
	}
	return items
}

// ExtractExperiences opens a new entry at every heading-like line; the lines
// after it form the entry's description. Lines before the first heading are
// dropped.
func ExtractExperiences(lines []string) []domain.RawExperience {
	var out []domain.RawExperience
	var current *domain.RawExperience
	flush := func() {
		if current == nil {
			return
		}
		current.StartDate, current.EndDate = findDateRange(append([]string{current.Role}, current.Description...))
		out = append(out, *current)
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if textclean.IsLikelyHeading(line) {
			flush()
			current = &domain.RawExperience{Role: line, Description: []string{}}
			continue
		}
		if current != nil && line != "" {
			current.Description = append(current.Description, line)
		}
	}
	flush()
	return out
}

// ExtractEducation works like ExtractExperiences, but a degree keyword also
// opens an entry. Degree lines fill Degree, other headings fill School.
func ExtractEducation(lines []string) []domain.RawEducation {
	var out []domain.RawEducation
	var current *domain.RawEducation
	var context []string
	flush := func() {
		if current == nil {
			return
		}
		current.StartDate, current.EndDate = findDateRange(context)
		out = append(out, *current)
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		isDegree := degreeKeyword.MatchString(line)
		if isDegree || textclean.IsLikelyHeading(line) {
			flush()
			current = &domain.RawEducation{}
			if isDegree {
				current.Degree = line
			} else {
				current.School = line
			}
			context = []string{line}
			continue
		}
		if current != nil && line != "" {
			context = append(context, line)
		}
	}
	flush()
	return out
}

// findDateRange returns the first "<date> - <date|present>" found in lines.
func findDateRange(lines []string) (start, end string) {
	for _, line := range lines {
		if m := dateRange.FindStringSubmatch(line); m != nil {
			return m[1], m[2]
		}
	}
	return "", ""
}
