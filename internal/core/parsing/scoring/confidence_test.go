package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kirillkom/resume-parser/internal/core/domain"
)

// The score is a completeness heuristic; these tests pin its arithmetic, not
// any claim about parsing accuracy.

func TestScoreEmptyResumeIsBase(t *testing.T) {
	assert.InDelta(t, 0.5, Score(domain.NewParsedResume()), 1e-9)
	assert.InDelta(t, 0.5, Score(domain.ParsedResume{}), 1e-9)
}

func TestScoreNameAndEmailOnly(t *testing.T) {
	r := domain.NewParsedResume()
	r.Contact.Name = domain.StringPtr("John Smith")
	r.Contact.Email = domain.StringPtr("john@x.com")
	r.Contact.Links = []string{"https://x.com"}

	assert.InDelta(t, 0.6, Score(r), 1e-9)
}

func TestScoreSaturatesAtThresholds(t *testing.T) {
	r := domain.NewParsedResume()
	for i := 0; i < 7; i++ {
		r.Experiences = append(r.Experiences, domain.Experience{Role: domain.StringPtr("Engineer")})
		r.Education = append(r.Education, domain.Education{School: domain.StringPtr("MIT")})
	}
	for i := 0; i < 25; i++ {
		r.Skills = append(r.Skills, fmt.Sprintf("Skill %d", i))
		r.Awards = append(r.Awards, fmt.Sprintf("Award %d", i))
	}

	assert.InDelta(t, 0.5+0.2+0.15+0.15+0.1, Score(r), 1e-9)
}

func TestScorePartialFill(t *testing.T) {
	r := domain.NewParsedResume()
	r.Contact.Phone = domain.StringPtr("+15551234567")
	r.Experiences = []domain.Experience{{Role: domain.StringPtr("Engineer")}}
	r.Education = []domain.Education{{School: domain.StringPtr("MIT")}}
	r.Skills = []string{"Go", "Sql", "Docker", "Kafka", "Redis"}
	r.Certifications = []domain.Certification{{Title: domain.StringPtr("CKA")}}
	r.Projects = []domain.Project{{Title: domain.StringPtr("parser")}}

	want := 0.5 + 0.25*0.2 + (1.0/3)*0.2 + 0.5*0.15 + 0.5*0.15 + 0.2*0.1
	assert.InDelta(t, want, Score(r), 1e-9)
}

func TestScoreAlwaysInUnitInterval(t *testing.T) {
	full := domain.NewParsedResume()
	full.Contact = domain.Contact{
		Name:     domain.StringPtr("a"),
		Email:    domain.StringPtr("a@b.co"),
		Phone:    domain.StringPtr("+1"),
		Location: domain.StringPtr("Berlin"),
	}
	for i := 0; i < 100; i++ {
		full.Skills = append(full.Skills, "x")
		full.Projects = append(full.Projects, domain.Project{})
		full.Experiences = append(full.Experiences, domain.Experience{})
		full.Education = append(full.Education, domain.Education{})
	}

	for _, r := range []domain.ParsedResume{{}, domain.NewParsedResume(), full} {
		s := Score(r)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
	assert.InDelta(t, 1.0, Score(full), 1e-9)
}
