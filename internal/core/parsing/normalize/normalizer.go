// Package normalize validates and standardizes a raw resume record. It never
// fails: unusable values become null and empty lists stay empty.
package normalize

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/kirillkom/resume-parser/internal/core/domain"
	"github.com/kirillkom/resume-parser/internal/core/parsing/textclean"
)

var (
	phoneNoise  = regexp.MustCompile(`[^\d+]`)
	simpleEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Normalize maps a raw record onto the canonical shape. Experiences without a
// company or role, education without a school or degree, certifications
// without a title or issuer and untitled projects are dropped.
func Normalize(raw domain.RawResume) domain.ParsedResume {
	out := domain.NewParsedResume()

	out.Contact = normalizeContact(raw.Contact)
	out.Summary = spaces(raw.Summary)
	out.Skills = Skills(raw.Skills)

	for _, e := range raw.Experiences {
		exp := normalizeExperience(e)
		if exp.Company == nil && exp.Role == nil {
			continue
		}
		out.Experiences = append(out.Experiences, exp)
	}
	for _, e := range raw.Education {
		edu := domain.Education{
			School:    spaces(e.School),
			Degree:    spaces(e.Degree),
			Field:     spaces(e.Field),
			StartDate: date(e.StartDate),
			EndDate:   date(e.EndDate),
		}
		if edu.School == nil && edu.Degree == nil {
			continue
		}
		out.Education = append(out.Education, edu)
	}
	for _, c := range raw.Certifications {
		cert := domain.Certification{
			Title:      spaces(c.Title),
			Issuer:     spaces(c.Issuer),
			IssueDate:  date(c.IssueDate),
			ExpiryDate: date(c.ExpiryDate),
		}
		if cert.Title == nil && cert.Issuer == nil {
			continue
		}
		out.Certifications = append(out.Certifications, cert)
	}
	for _, p := range raw.Projects {
		proj := domain.Project{
			Title:        spaces(p.Title),
			Description:  spaces(p.Description),
			Technologies: Skills(p.Technologies),
			Link:         domain.StringPtr(URL(p.Link)),
		}
		if proj.Title == nil {
			continue
		}
		out.Projects = append(out.Projects, proj)
	}

	out.Languages = plainList(raw.Languages)
	out.Awards = plainList(raw.Awards)
	out.Interests = plainList(raw.Interests)
	return out
}

func normalizeContact(c domain.RawContact) domain.Contact {
	out := domain.Contact{
		Name:     spaces(c.Name),
		Email:    domain.StringPtr(Email(c.Email)),
		Phone:    domain.StringPtr(Phone(c.Phone)),
		Location: spaces(c.Location),
		Links:    []string{},
	}
	for _, link := range c.Links {
		if u := URL(link); u != "" {
			out.Links = append(out.Links, u)
		}
	}
	out.Links = textclean.Dedupe(out.Links)
	return out
}

func normalizeExperience(e domain.RawExperience) domain.Experience {
	exp := domain.Experience{
		Company:     spaces(e.Company),
		Role:        spaces(e.Role),
		StartDate:   date(e.StartDate),
		EndDate:     date(e.EndDate),
		Description: []string{},
	}
	for _, d := range e.Description {
		if d = textclean.NormalizeSpaces(d); d != "" {
			exp.Description = append(exp.Description, d)
		}
	}
	return exp
}

// Phone keeps digits (and a leading +) and applies the country-code rule:
// "+..." as is, 10 digits get +1, 11 or more get +, anything else is dropped.
func Phone(raw string) string {
	n := phoneNoise.ReplaceAllString(raw, "")
	switch {
	case n == "":
		return ""
	case strings.HasPrefix(n, "+"):
		return n
	case len(n) == 10:
		return "+1" + n
	case len(n) >= 11:
		return "+" + n
	default:
		return ""
	}
}

// Email lowercases and checks the address has a local part, a domain and a dot.
func Email(raw string) string {
	e := strings.ToLower(strings.TrimSpace(raw))
	if !simpleEmail.MatchString(e) {
		return ""
	}
	return e
}

// URL prefixes https:// when no scheme is present and keeps the result only
// if it parses as an absolute URL with a host.
func URL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return ""
	}
	return s
}

// Skills normalizes spacing, title-cases and removes case-insensitive duplicates.
func Skills(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = textclean.TitleCase(textclean.NormalizeSpaces(item)); item != "" {
			out = append(out, item)
		}
	}
	return textclean.DedupeFold(out)
}

func plainList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = textclean.NormalizeSpaces(item); item != "" {
			out = append(out, item)
		}
	}
	return textclean.DedupeFold(out)
}

func spaces(s string) *string {
	return domain.StringPtr(textclean.NormalizeSpaces(s))
}

func date(raw string) *string {
	d := ParseDate(raw)
	if !IsValidDate(d) {
		return nil
	}
	return &d
}
