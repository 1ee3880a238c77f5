package store

// Package store is the persistence sink: the directory's Postgres tables
// accessed through pgx. The importer only ever needs existence checks and
// inserts; category replacement backs the owner-edit flow in the web app.

import (
	"context"

	"github.com/mibarrio-uy/listing-harvester/internal/domain"
)

// Store abstracts the provider tables for the importer.
type Store interface {
	// FindByExternalID returns the provider id for an exact external id
	// match, with found=false when no row exists.
	FindByExternalID(ctx context.Context, externalID string) (id string, found bool, err error)
	// FindByName returns the provider id for a case-insensitive business
	// name match within the given department.
	FindByName(ctx context.Context, businessName, department string) (id string, found bool, err error)
	// InsertProvider creates the provider row (unclaimed, active) and
	// returns its generated id.
	InsertProvider(ctx context.Context, listing *domain.ScrapedListing) (id string, err error)
	// InsertCategory links one category code to a provider.
	InsertCategory(ctx context.Context, providerID, categoryCode string) error
	// ReplaceCategories swaps a provider's category links wholesale
	// (delete-all-then-insert).
	ReplaceCategories(ctx context.Context, providerID string, categoryCodes []string) error
	Close()
}
