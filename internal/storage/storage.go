package storage

// Package storage provides the local seen-listing cache. The scraper uses it
// to skip detail pages it already processed in a recent run, so re-runs do
// not hammer the source site for listings that are already in the directory.

import (
	"fmt"
	"strings"
	"time"
)

// Store tracks recently scraped listing external ids.
type Store interface {
	Close() error
	SeenListing(id string) (bool, error)
	MarkListing(id string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	ListingTTL      time.Duration
	CleanupInterval time.Duration
}

const (
	defaultListingTTL      = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.ListingTTL <= 0 {
		opts.ListingTTL = defaultListingTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                     { return nil }
func (noopStore) SeenListing(string) (bool, error) { return false, nil }
func (noopStore) MarkListing(string) error         { return nil }
