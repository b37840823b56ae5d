package domain

type EntityLabel string

const (
	EntityEmail   EntityLabel = "EMAIL"
	EntityPhone   EntityLabel = "PHONE"
	EntityURL     EntityLabel = "URL"
	EntityCompany EntityLabel = "COMPANY"
	EntityDate    EntityLabel = "DATE"
	EntityOrg     EntityLabel = "ORG"
	EntityPerson  EntityLabel = "PERSON"
)

// Entity is a labeled span found independently of section structure.
type Entity struct {
	Label      EntityLabel `json:"label"`
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence"`
}

// FirstEntity returns the text of the first entity with the given label.
func FirstEntity(entities []Entity, label EntityLabel) (string, bool) {
	for _, e := range entities {
		if e.Label == label {
			return e.Text, true
		}
	}
	return "", false
}
