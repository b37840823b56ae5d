package domain

// DatePresent marks an open-ended date range.
const DatePresent = "Present"

// ParsedResume is the structured record produced by the parsing pipeline.
// List fields are never nil and absent scalars are nil pointers, so the JSON
// form always carries [] and null rather than omitting keys.
type ParsedResume struct {
	Contact        Contact         `json:"contact"`
	Summary        *string         `json:"summary"`
	Skills         []string        `json:"skills"`
	Experiences    []Experience    `json:"experiences"`
	Education      []Education     `json:"education"`
	Certifications []Certification `json:"certifications"`
	Projects       []Project       `json:"projects"`
	Languages      []string        `json:"languages"`
	Awards         []string        `json:"awards"`
	Interests      []string        `json:"interests"`
}

type Contact struct {
	Name     *string  `json:"name"`
	Email    *string  `json:"email"`
	Phone    *string  `json:"phone"`
	Location *string  `json:"location"`
	Links    []string `json:"links"`
}

type Experience struct {
	Company     *string  `json:"company"`
	Role        *string  `json:"role"`
	StartDate   *string  `json:"startDate"`
	EndDate     *string  `json:"endDate"`
	Description []string `json:"description"`
}

type Education struct {
	School    *string `json:"school"`
	Degree    *string `json:"degree"`
	Field     *string `json:"field"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

type Certification struct {
	Title      *string `json:"title"`
	Issuer     *string `json:"issuer"`
	IssueDate  *string `json:"issueDate"`
	ExpiryDate *string `json:"expiryDate"`
}

type Project struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	Technologies []string `json:"technologies"`
	Link         *string  `json:"link"`
}

// NewParsedResume returns a record with every list initialised.
func NewParsedResume() ParsedResume {
	return ParsedResume{
		Contact:        Contact{Links: []string{}},
		Skills:         []string{},
		Experiences:    []Experience{},
		Education:      []Education{},
		Certifications: []Certification{},
		Projects:       []Project{},
		Languages:      []string{},
		Awards:         []string{},
		Interests:      []string{},
	}
}

// RawResume is the unvalidated output of the section content extractors.
// Empty strings mean "not found"; the normalizer turns them into nil.
type RawResume struct {
	Contact        RawContact
	Summary        string
	Skills         []string
	Experiences    []RawExperience
	Education      []RawEducation
	Certifications []RawCertification
	Projects       []RawProject
	Languages      []string
	Awards         []string
	Interests      []string
}

type RawContact struct {
	Name     string
	Email    string
	Phone    string
	Location string
	Links    []string
}

type RawExperience struct {
	Company     string
	Role        string
	StartDate   string
	EndDate     string
	Description []string
}

type RawEducation struct {
	School    string
	Degree    string
	Field     string
	StartDate string
	EndDate   string
}

type RawCertification struct {
	Title      string
	Issuer     string
	IssueDate  string
	ExpiryDate string
}

type RawProject struct {
	Title        string
	Description  string
	Technologies []string
	Link         string
}

// StringPtr returns nil for the empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences p, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
