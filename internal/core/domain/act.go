package domain

// ActSummary is a single record returned by an act search or browse call.
// Field names mirror the upstream ELI API response.
type ActSummary struct {
	// ELI is the European Legislation Identifier, e.g. "DU/2023/1234".
	ELI string `json:"eli"`

	// Title is the official title of the act.
	Title string `json:"title"`

	// Type is the act type, e.g. "Ustawa" or "Rozporządzenie".
	Type string `json:"type,omitempty"`

	// Status is the act status, e.g. "obowiązujący".
	Status string `json:"status,omitempty"`

	// Year is the publication year.
	Year int `json:"year,omitempty"`

	// Pos is the position within the publisher's journal for the year.
	Pos int `json:"pos,omitempty"`

	// Publisher is the journal code, e.g. "DU" or "MP".
	Publisher string `json:"publisher,omitempty"`

	// PromulgationDate is the promulgation date in YYYY-MM-DD form, if known.
	PromulgationDate string `json:"promulgation_date,omitempty"`

	// EffectiveDate is the date the act entered into force, if known.
	EffectiveDate string `json:"effective_date,omitempty"`
}

// Fields addressable by result-set filters.
const (
	FieldTitle            = "title"
	FieldELI              = "eli"
	FieldType             = "type"
	FieldStatus           = "status"
	FieldYear             = "year"
	FieldPos              = "pos"
	FieldPublisher        = "publisher"
	FieldPromulgationDate = "promulgation_date"
	FieldEffectiveDate    = "effective_date"
)

// TextField returns the named text field of the summary, or false if the
// name does not address a text field.
func (a ActSummary) TextField(name string) (string, bool) {
	switch name {
	case FieldTitle:
		return a.Title, true
	case FieldELI:
		return a.ELI, true
	case FieldType:
		return a.Type, true
	case FieldStatus:
		return a.Status, true
	case FieldPublisher:
		return a.Publisher, true
	default:
		return "", false
	}
}

// DateField returns the named date field of the summary, or false if the
// name does not address a date field. An empty string means the record has
// no value for that field.
func (a ActSummary) DateField(name string) (string, bool) {
	switch name {
	case FieldPromulgationDate:
		return a.PromulgationDate, true
	case FieldEffectiveDate:
		return a.EffectiveDate, true
	default:
		return "", false
	}
}

// SearchQuery describes a top-level act search against the upstream API.
type SearchQuery struct {
	// Title restricts results to acts whose title contains this phrase.
	Title string

	// Year restricts results to a publication year. Zero means any year.
	Year int

	// Type restricts results to an act type. Empty means any type.
	Type string

	// Publisher restricts results to a journal. Empty means any publisher.
	Publisher string

	// Limit caps the number of records returned. Zero means the default.
	Limit int
}
