package model

import "time"

// Jurisdiction is the court system a case belongs to. Whitelisted
// jurisdictions have no access restrictions on case text.
type Jurisdiction struct {
	ID          int64  `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Whitelisted bool   `json:"whitelisted"`
}

// Reporter is a case-law reporter series, e.g. "Ill. App." with slug "ill-app".
type Reporter struct {
	ID            int64  `json:"id"`
	FullName      string `json:"full_name"`
	ShortName     string `json:"short_name"`
	ShortNameSlug string `json:"short_name_slug"`
}

// Volume is one bound volume of a reporter, identified by barcode.
type Volume struct {
	Barcode          string `json:"barcode"`
	ReporterID       int64  `json:"reporter_id"`
	VolumeNumber     string `json:"volume_number"`
	VolumeNumberSlug string `json:"volume_number_slug"`
	PDFKey           string `json:"-"`
}

// Case is the metadata for a single decision. The body text is stored
// separately in CaseBody.
type Case struct {
	ID                   int64      `json:"id"`
	ReporterID           int64      `json:"reporter_id"`
	VolumeBarcode        string     `json:"volume_barcode"`
	JurisdictionID       int64      `json:"jurisdiction_id"`
	Name                 string     `json:"name"`
	NameAbbreviation     string     `json:"name_abbreviation"`
	DecisionDateOriginal string     `json:"decision_date_original"`
	DecisionDate         *time.Time `json:"decision_date,omitempty"`
	FirstPage            string     `json:"first_page"`
	LastPage             string     `json:"last_page"`
	FrontendURL          string     `json:"frontend_url"`
	HumanCorrected       bool       `json:"human_corrected"`
	NoIndex              bool       `json:"no_index"`
	RobotsTxtUntil       *time.Time `json:"-"`
	// Redactions and elisions keyed by the literal text to hide.
	NoIndexRedacted map[string]string `json:"-"`
	NoIndexElided   map[string]string `json:"-"`
	PDFKey          string            `json:"-"`
	LastUpdated     time.Time         `json:"last_updated"`

	// Restricted is derived from the jurisdiction's whitelist flag when the
	// case is loaded.
	Restricted bool `json:"restricted"`
}

// PDFAvailable reports whether a scanned PDF exists for the case.
func (c *Case) PDFAvailable() bool {
	return c.PDFKey != ""
}

// Citation is one citation string pointing at a case. NormalizedCite is the
// lowercase alphanumeric form used for lookups.
type Citation struct {
	ID             int64  `json:"id"`
	CaseID         int64  `json:"case_id"`
	Type           string `json:"type"`
	Cite           string `json:"cite"`
	NormalizedCite string `json:"normalized_cite"`
}

// CaseBody is the rendered HTML for a case.
type CaseBody struct {
	CaseID    int64     `json:"case_id"`
	HTML      string    `json:"html"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CasePage holds the OCR text blocks for one scanned page, keyed by block ID.
// Each block is an ordered list of text lines; the case editor patches
// individual lines.
type CasePage struct {
	ID     string              `json:"id"`
	CaseID int64               `json:"case_id"`
	Blocks map[string][]string `json:"blocks"`
}

// CorrectionLog records one OCR correction session applied by a staff user.
type CorrectionLog struct {
	ID          int64     `json:"id"`
	CaseID      int64     `json:"case_id"`
	UserID      string    `json:"user_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// CaseExport is a bulk download artifact stored in the object store.
// Superseded exports are hidden from listings by default.
type CaseExport struct {
	ID         int64     `json:"id"`
	FileName   string    `json:"file_name"`
	StorageKey string    `json:"-"`
	Size       int64     `json:"size"`
	Public     bool      `json:"public"`
	Superseded bool      `json:"superseded"`
	CreatedAt  time.Time `json:"created_at"`
}
