package publishers

import (
	"time"

	"github.com/mibarrio-uy/listing-harvester/internal/domain"
)

// Event is the payload published downstream after a listing lands in the
// directory.
type Event struct {
	ProviderID string                `json:"provider_id"`
	Source     string                `json:"source"`
	ExternalID string                `json:"external_id"`
	Listing    domain.ScrapedListing `json:"listing"`
	ImportedAt time.Time             `json:"imported_at"`
}

// NewEvent constructs an Event for a freshly imported listing.
func NewEvent(providerID string, listing domain.ScrapedListing) Event {
	return Event{
		ProviderID: providerID,
		Source:     listing.Source,
		ExternalID: listing.ExternalID,
		Listing:    listing,
		ImportedAt: time.Now().UTC(),
	}
}
