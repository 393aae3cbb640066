package store

import "time"

// Gender labels stored on a person.
const (
	GenderFemale       = "Female"
	GenderMale         = "Male"
	GenderNonBinary    = "Non-binary"
	GenderNotSpecified = "Not Specified"
)

// AssetRef is the typed reference to a stored binary embedded in documents.
type AssetRef struct {
	AssetID     string `json:"asset_id"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

// Asset is a content-addressed binary in the asset store.
type Asset struct {
	ID          string
	SHA256      string
	SourceURL   string
	ContentType string
	SizeBytes   int64
	Path        string
	CreatedAt   time.Time
}

// Ref returns the embeddable reference for the asset.
func (a *Asset) Ref() *AssetRef {
	if a == nil {
		return nil
	}
	return &AssetRef{AssetID: a.ID, URL: a.Path, ContentType: a.ContentType}
}

// Rating is the catalog rating aggregate.
type Rating struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// Credit links a film to a person. At most one credit exists per
// (person, department) pair within a film.
type Credit struct {
	Key              string `json:"key"`
	PersonID         string `json:"person_id"`
	PersonExternalID string `json:"person_external_id"`
	Name             string `json:"name,omitempty"`
	Role             string `json:"role"`
	Department       string `json:"department"`
}

// Film is the film document.
type Film struct {
	ID             string
	ExternalID     string
	Title          string
	Slug           string
	Synopsis       string
	ReleaseDate    string
	RuntimeMinutes int
	Rating         Rating
	IMDBID         string
	TrailerURL     string
	Poster         *AssetRef
	Backdrop       *AssetRef
	Genres         []string
	Credits        []Credit
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PersonCredit is a back-reference from a person to a film.
type PersonCredit struct {
	FilmID         string `json:"film_id"`
	FilmExternalID string `json:"film_external_id"`
	FilmTitle      string `json:"film_title"`
	Role           string `json:"role"`
	Department     string `json:"department"`
}

// PersonAttributes are the enrichable fields of a person. Every field is
// always present; unknown values are empty.
type PersonAttributes struct {
	Country     string   `json:"country"`
	DateOfBirth string   `json:"date_of_birth"`
	Deceased    bool     `json:"deceased"`
	DateOfDeath string   `json:"date_of_death"`
	Gender      string   `json:"gender"`
	Ethnicity   string   `json:"ethnicity"`
	EyeColor    string   `json:"eye_color"`
	HairColor   string   `json:"hair_color"`
	Height      string   `json:"height"`
	BodyType    string   `json:"body_type"`
	Professions []string `json:"professions"`
	SEOKeywords []string `json:"seo_keywords"`
	Intro       string   `json:"intro"`
	Biography   string   `json:"biography"`
}

// Person is the person document.
type Person struct {
	ID         string
	ExternalID string
	Name       string
	Slug       string
	PersonAttributes
	ProfileImage *AssetRef
	Popularity   float64
	Credits      []PersonCredit
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasCreditFor reports whether the person already carries a back-reference to filmID.
func (p *Person) HasCreditFor(filmID string) bool {
	if p == nil {
		return false
	}
	for _, credit := range p.Credits {
		if credit.FilmID == filmID {
			return true
		}
	}
	return false
}

// Gap records a credited person that could not be resolved during an import.
type Gap struct {
	FilmExternalID   string
	PersonExternalID string
	Name             string
	Department       string
	Role             string
	RecordedAt       time.Time
}
