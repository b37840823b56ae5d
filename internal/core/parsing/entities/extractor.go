// Package entities pulls labeled spans (emails, phones, links, companies,
// years) out of raw resume text with a fixed table of regular expressions.
package entities

import (
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/kirillkom/resume-parser/internal/core/domain"
)

// Rule is one row of the extraction table. Group selects the capture group
// used as the entity text; 0 means the whole match.
type Rule struct {
	Label      domain.EntityLabel
	Pattern    *regexp.Regexp
	Group      int
	Confidence float64
	Dedupe     bool
}

// Rules is evaluated in order; the output keeps this order.
var Rules = []Rule{
	{
		Label:      domain.EntityEmail,
		Pattern:    regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
		Confidence: 0.95,
	},
	{
		Label:      domain.EntityPhone,
		Pattern:    regexp.MustCompile(`(?:\+?1)?[\s.-]?\(?([0-9]{3})\)?[\s.-]?([0-9]{3})[\s.-]?([0-9]{4})`),
		Confidence: 0.9,
	},
	{
		Label:      domain.EntityURL,
		Pattern:    regexp.MustCompile(`(?i)https?://[^\s]+|(?:www\.|linkedin\.com/in/)[^\s]+`),
		Confidence: 0.95,
	},
	{
		Label:      domain.EntityCompany,
		Pattern:    regexp.MustCompile(`(?i)(?:at|with|company|employer|work(?:ed)?\s+(?:at|for))\s+([A-Z][^\n]+?)(?:[\n,•]|$)`),
		Group:      1,
		Confidence: 0.7,
	},
	{
		Label:      domain.EntityDate,
		Pattern:    regexp.MustCompile(`\b(20\d{2}|19\d{2})\b`),
		Confidence: 0.8,
		Dedupe:     true,
	},
}

var bareDomain = regexp.MustCompile(`(?i)\b(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}(?:/[^\s,;]*)?`)

// Extract never fails: a panic inside the matchers is logged and yields an
// empty list, since entities only enrich the structured record.
func Extract(text string) (out []domain.Entity) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("entity_extraction_failed", "error", r)
			out = []domain.Entity{}
		}
	}()

	out = []domain.Entity{}
	if strings.TrimSpace(text) == "" {
		return out
	}

	var taken []span
	for _, rule := range Rules {
		seen := map[string]struct{}{}
		for _, m := range rule.Pattern.FindAllStringSubmatchIndex(text, -1) {
			start, end := m[0], m[1]
			if rule.Group > 0 {
				start, end = m[2*rule.Group], m[2*rule.Group+1]
				if start < 0 {
					continue
				}
			}
			value := strings.TrimSpace(text[start:end])
			if value == "" {
				continue
			}
			if rule.Dedupe {
				if _, ok := seen[value]; ok {
					continue
				}
				seen[value] = struct{}{}
			}
			out = append(out, domain.Entity{Label: rule.Label, Text: value, Confidence: rule.Confidence})

			if rule.Label == domain.EntityEmail || rule.Label == domain.EntityURL {
				taken = append(taken, span{m[0], m[1]})
			}
		}
		if rule.Label == domain.EntityURL {
			out = append(out, bareDomains(text, taken, rule.Confidence)...)
		}
	}
	return out
}

type span struct{ start, end int }

func (s span) overlaps(start, end int) bool {
	return start < s.end && end > s.start
}

// bareDomains finds links written without a scheme ("github.com/jdoe",
// "jdoe.dev"). A candidate counts only if its host ends in an ICANN public
// suffix, which rules out "Node.js" or "john.smith".
func bareDomains(text string, taken []span, confidence float64) []domain.Entity {
	var out []domain.Entity
	for _, m := range bareDomain.FindAllStringIndex(text, -1) {
		start, end := m[0], m[1]
		if start > 0 && strings.ContainsRune("@./:", rune(text[start-1])) {
			continue
		}
		if overlapsAny(taken, start, end) {
			continue
		}
		candidate := strings.TrimRight(text[start:end], ".")
		host := strings.ToLower(candidate)
		if i := strings.IndexByte(host, '/'); i >= 0 {
			host = host[:i]
		}
		if !isRegistrable(host) {
			continue
		}
		out = append(out, domain.Entity{Label: domain.EntityURL, Text: candidate, Confidence: confidence})
	}
	return out
}

func overlapsAny(spans []span, start, end int) bool {
	for _, s := range spans {
		if s.overlaps(start, end) {
			return true
		}
	}
	return false
}

func isRegistrable(host string) bool {
	suffix, icann := publicsuffix.PublicSuffix(host)
	if !icann || suffix == host {
		return false
	}
	_, err := publicsuffix.EffectiveTLDPlusOne(host)
	return err == nil
}
