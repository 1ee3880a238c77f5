package crawler

import (
	"context"

	"github.com/mibarrio-uy/listing-harvester/internal/domain"
)

// PageFetcher loads a URL and returns the settled page HTML.
type PageFetcher interface {
	HTML(ctx context.Context, url string) (string, error)
}

// ListingImporter persists one scraped listing, deciding insert vs skip.
type ListingImporter interface {
	ImportOne(ctx context.Context, listing *domain.ScrapedListing) domain.ImportOutcome
}

// SeenStore tracks external ids already scraped in prior runs so detail
// pages are not re-fetched. The importer's store-side dedupe stays
// authoritative.
type SeenStore interface {
	SeenListing(id string) (bool, error)
	MarkListing(id string) error
}
