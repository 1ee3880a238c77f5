package domain

// Domain contains core models shared by the crawler, importer, and publishers.

// Listing provenance identifiers. Immutable once a record is created.
const (
	Source1122          = "1122"
	SourceGuiaComercial = "guiacomercial"
	SourceManual        = "manual"
	SourceGeocoding     = "geocoding"
)

// DefaultDepartment is assumed when a detail page does not state one.
const DefaultDepartment = "Montevideo"

// ScrapedListing is the transient record produced by one detail-page scrape.
// It is either imported into the directory store or discarded whole; partial
// records are never persisted.
type ScrapedListing struct {
	BusinessName    string            `json:"business_name"`
	Description     string            `json:"description,omitempty"`
	Address         string            `json:"address,omitempty"`
	Department      string            `json:"department"`
	Neighborhood    string            `json:"neighborhood,omitempty"`
	ContactPhone    string            `json:"contact_phone,omitempty"`
	ContactWhatsapp string            `json:"contact_whatsapp,omitempty"`
	Category        string            `json:"category"`
	Categories      []string          `json:"categories,omitempty"`
	Source          string            `json:"source"`
	SourceURL       string            `json:"source_url"`
	ExternalID      string            `json:"external_id"`
	LogoURL         string            `json:"logo_url,omitempty"`
	Photos          []string          `json:"photos,omitempty"`
	SocialInstagram string            `json:"social_instagram,omitempty"`
	Hours           map[string]string `json:"hours,omitempty"`
	Is24Hrs         bool              `json:"is_24hrs,omitempty"`
	LocationLat     float64           `json:"location_lat,omitempty"`
	LocationLng     float64           `json:"location_lng,omitempty"`
	HasLocation     bool              `json:"has_location,omitempty"`
	PaymentMethods  []string          `json:"payment_methods,omitempty"`
	AdditionalInfo  map[string]string `json:"additional_info,omitempty"`
}

// ImportOutcome is the tri-state result of importing one listing.
type ImportOutcome string

const (
	OutcomeInserted ImportOutcome = "inserted"
	OutcomeSkipped  ImportOutcome = "skipped"
	OutcomeError    ImportOutcome = "error"
)

// ImportResult aggregates outcomes for a batch of listings.
type ImportResult struct {
	Inserted int
	Skipped  int
	Errors   int
}

// Add counts one outcome into the result.
func (r *ImportResult) Add(o ImportOutcome) {
	switch o {
	case OutcomeInserted:
		r.Inserted++
	case OutcomeSkipped:
		r.Skipped++
	default:
		r.Errors++
	}
}

// Merge accumulates another batch result into this one.
func (r *ImportResult) Merge(other ImportResult) {
	r.Inserted += other.Inserted
	r.Skipped += other.Skipped
	r.Errors += other.Errors
}
