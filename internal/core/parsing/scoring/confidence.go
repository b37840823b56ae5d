// Package scoring computes a completeness estimate for a parsed resume.
//
// The score is an explainable heuristic, not a calibrated probability: a 0.5
// base plus weighted fill ratios, each capped at 1 before weighting.
package scoring

import "github.com/kirillkom/resume-parser/internal/core/domain"

const (
	base = 0.5

	contactWeight    = 0.20
	experienceWeight = 0.20
	educationWeight  = 0.15
	skillsWeight     = 0.15
	extrasWeight     = 0.10

	experienceSaturation = 3
	educationSaturation  = 2
	skillsSaturation     = 10
	extrasSaturation     = 10

	contactFields = 4
)

// Score returns a value in [0, 1].
func Score(r domain.ParsedResume) float64 {
	score := base
	score += contactFill(r.Contact) * contactWeight
	score += ratio(len(r.Experiences), experienceSaturation) * experienceWeight
	score += ratio(len(r.Education), educationSaturation) * educationWeight
	score += ratio(len(r.Skills), skillsSaturation) * skillsWeight
	score += ratio(len(r.Certifications)+len(r.Projects)+len(r.Awards), extrasSaturation) * extrasWeight
	return clamp(score)
}

// contactFill counts name, email, phone and location. Links are not tracked.
func contactFill(c domain.Contact) float64 {
	filled := 0
	for _, f := range []*string{c.Name, c.Email, c.Phone, c.Location} {
		if f != nil && *f != "" {
			filled++
		}
	}
	return float64(filled) / contactFields
}

func ratio(n, saturation int) float64 {
	return min(float64(n)/float64(saturation), 1)
}

func clamp(v float64) float64 {
	return max(0, min(v, 1))
}
