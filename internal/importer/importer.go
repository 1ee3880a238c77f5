package importer

// Package importer decides whether a scraped listing already exists in the
// directory store and persists it (plus its category links) when it does not.

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mibarrio-uy/listing-harvester/internal/domain"
	"github.com/mibarrio-uy/listing-harvester/internal/logger"
	"github.com/mibarrio-uy/listing-harvester/internal/normalize"
	"github.com/mibarrio-uy/listing-harvester/internal/store"
	"github.com/mibarrio-uy/listing-harvester/pkg/publishers"
)

// EventPublisher fans out import events downstream. Publish failures never
// change an import outcome.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Importer persists scraped listings with store-side deduplication.
type Importer struct {
	store store.Store
	pub   EventPublisher
	log   logger.Logger
	delay time.Duration
}

// New builds an importer. pub may be nil when no publishers are configured.
func New(st store.Store, pub EventPublisher, log logger.Logger, delay time.Duration) *Importer {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Importer{store: st, pub: pub, log: log, delay: delay}
}

// exists checks for a duplicate: first by external id, then by
// case-insensitive name within the same department. The id match
// short-circuits the name check.
func (i *Importer) exists(ctx context.Context, l *domain.ScrapedListing) (bool, error) {
	if _, found, err := i.store.FindByExternalID(ctx, l.ExternalID); err != nil {
		return false, fmt.Errorf("check external id: %w", err)
	} else if found {
		return true, nil
	}

	if _, found, err := i.store.FindByName(ctx, l.BusinessName, l.Department); err != nil {
		return false, fmt.Errorf("check business name: %w", err)
	} else if found {
		return true, nil
	}

	return false, nil
}

// ImportOne imports a single listing, reporting inserted, skipped
// (duplicate), or error. A category-link failure after the provider insert
// is logged but does not undo the provider row.
func (i *Importer) ImportOne(ctx context.Context, l *domain.ScrapedListing) domain.ImportOutcome {
	dup, err := i.exists(ctx, l)
	if err != nil {
		i.log.ErrorObj("duplicate check failed", "import_error", map[string]any{
			"business_name": l.BusinessName,
			"error":         err.Error(),
		})
		return domain.OutcomeError
	}
	if dup {
		i.log.InfoObj("listing already in directory, skipped", "import_skip", map[string]any{
			"business_name": l.BusinessName,
			"external_id":   l.ExternalID,
		})
		return domain.OutcomeSkipped
	}

	record := *l
	if record.ContactWhatsapp == "" {
		record.ContactWhatsapp = record.ContactPhone
	}

	providerID, err := i.store.InsertProvider(ctx, &record)
	if err != nil {
		i.log.ErrorObj("provider insert failed", "import_error", map[string]any{
			"business_name": l.BusinessName,
			"error":         err.Error(),
		})
		return domain.OutcomeError
	}

	for _, code := range categoryCodes(l) {
		if err := i.store.InsertCategory(ctx, providerID, code); err != nil {
			i.log.ErrorObj("category insert failed", "import_error", map[string]any{
				"business_name": l.BusinessName,
				"provider_id":   providerID,
				"category":      code,
				"error":         err.Error(),
			})
		}
	}

	i.log.InfoObj("listing imported", "import_meta", map[string]any{
		"business_name": l.BusinessName,
		"provider_id":   providerID,
	})

	if i.pub != nil {
		if _, err := i.pub.Publish(ctx, publishers.NewEvent(providerID, *l)); err != nil {
			i.log.WarnObj("import event publish failed", "publish_error", map[string]any{
				"provider_id": providerID,
				"error":       err.Error(),
			})
		}
	}

	return domain.OutcomeInserted
}

// ImportBatch imports listings sequentially with a fixed pause between
// records. A failed record never blocks the rest of the batch.
func (i *Importer) ImportBatch(ctx context.Context, listings []*domain.ScrapedListing) domain.ImportResult {
	var result domain.ImportResult
	for n, l := range listings {
		if ctx.Err() != nil {
			return result
		}
		result.Add(i.ImportOne(ctx, l))

		if i.delay > 0 && n < len(listings)-1 {
			timer := time.NewTimer(i.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return result
			case <-timer.C:
			}
		}
	}
	return result
}

// ImportFile imports every listing from one scraped JSON file.
func (i *Importer) ImportFile(ctx context.Context, path string) (domain.ImportResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("read listings file: %w", err)
	}

	var listings []*domain.ScrapedListing
	if err := json.Unmarshal(raw, &listings); err != nil {
		return domain.ImportResult{}, fmt.Errorf("decode listings file %s: %w", filepath.Base(path), err)
	}

	i.log.InfoObj("importing listings file", "import_file", map[string]any{
		"file":     filepath.Base(path),
		"listings": len(listings),
	})
	return i.ImportBatch(ctx, listings), nil
}

// ImportDir imports every *.json file in dir sequentially, logging per-file
// results and returning the overall totals.
func (i *Importer) ImportDir(ctx context.Context, dir string) (domain.ImportResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("read data directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return domain.ImportResult{}, fmt.Errorf("no JSON files found in %s (run the scraper first)", dir)
	}

	var total domain.ImportResult
	for _, name := range files {
		if ctx.Err() != nil {
			break
		}
		result, err := i.ImportFile(ctx, filepath.Join(dir, name))
		if err != nil {
			i.log.ErrorObj("listings file import failed", "import_file_error", map[string]any{
				"file":  name,
				"error": err.Error(),
			})
			continue
		}
		i.log.InfoObj("listings file imported", "import_file_result", map[string]any{
			"file":     name,
			"inserted": result.Inserted,
			"skipped":  result.Skipped,
			"errors":   result.Errors,
		})
		total.Merge(result)
	}
	return total, nil
}

// categoryCodes resolves the category links to create for a listing: the
// primary code plus any scraped labels that map to known codes, deduplicated.
func categoryCodes(l *domain.ScrapedListing) []string {
	codes := []string{l.Category}
	seen := map[string]struct{}{l.Category: {}}
	for _, label := range l.Categories {
		code := normalize.Category(label)
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}
