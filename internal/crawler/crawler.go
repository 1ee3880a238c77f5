package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mibarrio-uy/listing-harvester/internal/domain"
	"github.com/mibarrio-uy/listing-harvester/internal/logger"
	"github.com/mibarrio-uy/listing-harvester/pkg/categories"
)

// Options holds the scrape-side knobs for a crawl run.
type Options struct {
	BaseURL          string
	ZoneCode         string
	MaxPages         int
	LimitPerCategory int
	RequestDelay     time.Duration
}

// Service drives the sequential scrape of one or more categories: index
// pagination, detail-page fetch, extraction, and inline import. Everything
// runs on a single page; the only pauses are courtesy delays.
type Service struct {
	fetcher  PageFetcher
	importer ListingImporter
	seen     SeenStore
	log      logger.Logger
	opts     Options
}

// CategoryRun is the outcome of scraping one category.
type CategoryRun struct {
	Category categories.Category
	Listings []*domain.ScrapedListing
	Result   domain.ImportResult
}

// NewService wires a crawl service.
func NewService(fetcher PageFetcher, importer ListingImporter, seen SeenStore, log logger.Logger, opts Options) *Service {
	if log == nil {
		log = &logger.NopLogger{}
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 1
	}
	return &Service{
		fetcher:  fetcher,
		importer: importer,
		seen:     seen,
		log:      log,
		opts:     opts,
	}
}

// Run scrapes every category sequentially. Per-category failures are
// collected; a failed category never blocks the next one.
func (s *Service) Run(ctx context.Context, cats []categories.Category) ([]CategoryRun, error) {
	if s == nil || s.fetcher == nil {
		return nil, fmt.Errorf("crawl service is not initialized")
	}
	if len(cats) == 0 {
		return nil, fmt.Errorf("no categories configured for scraping")
	}

	var runs []CategoryRun
	var errs []error
	for _, cat := range cats {
		if ctx.Err() != nil {
			break
		}
		run, err := s.runCategory(ctx, cat)
		if err != nil {
			errs = append(errs, fmt.Errorf("category %s: %w", cat.Code, err))
			s.log.ErrorObj("category scrape failed", "category_error", map[string]any{
				"category": cat.Code,
				"error":    err.Error(),
			})
			continue
		}
		runs = append(runs, run)
	}

	return runs, errors.Join(errs...)
}

func (s *Service) runCategory(ctx context.Context, cat categories.Category) (CategoryRun, error) {
	run := CategoryRun{Category: cat}

	urls := s.collectListingURLs(ctx, cat)
	s.log.InfoObj("detail urls collected", "category_index", map[string]any{
		"category": cat.Code,
		"urls":     len(urls),
	})

	for i, url := range urls {
		if ctx.Err() != nil {
			return run, nil
		}

		if s.seen != nil {
			id := externalID(url, "")
			if ok, err := s.seen.SeenListing(id); err == nil && ok {
				s.log.DebugObj("listing already scraped, skipping", "seen_listing", id)
				continue
			}
		}

		listing := s.scrapeDetail(ctx, url, cat.Code)
		if listing != nil {
			run.Listings = append(run.Listings, listing)
			if s.importer != nil {
				run.Result.Add(s.importer.ImportOne(ctx, listing))
			}
			if s.seen != nil {
				if err := s.seen.MarkListing(listing.ExternalID); err != nil {
					s.log.WarnObj("seen cache mark failed", "seen_cache_error", err.Error())
				}
			}
		}

		if s.opts.RequestDelay > 0 && i < len(urls)-1 {
			if !sleepCtx(ctx, s.opts.RequestDelay) {
				return run, nil
			}
		}
	}

	s.log.InfoObj("category scrape completed", "category_stats", runStats(cat.Code, run.Listings))
	return run, nil
}

// collectListingURLs walks the paginated index for a category, accumulating
// unique detail URLs. A failed page is logged and skipped; later pages still
// load.
func (s *Service) collectListingURLs(ctx context.Context, cat categories.Category) []string {
	var urls []string
	seen := make(map[string]struct{})
	limit := s.categoryLimit(cat)

	for page := 1; page <= s.opts.MaxPages; page++ {
		if ctx.Err() != nil {
			break
		}
		if limit > 0 && len(urls) >= limit {
			break
		}

		url := s.indexURL(cat, page)
		html, err := s.fetcher.HTML(ctx, url)
		if err != nil {
			s.log.WarnObj("index page fetch failed", "index_error", map[string]any{
				"category": cat.Code,
				"page":     page,
				"error":    err.Error(),
			})
			continue
		}

		pageURLs, err := ListingURLs(html, s.opts.BaseURL)
		if err != nil {
			s.log.WarnObj("index page parse failed", "index_error", map[string]any{
				"category": cat.Code,
				"page":     page,
				"error":    err.Error(),
			})
			continue
		}
		if len(pageURLs) == 0 {
			break
		}

		for _, u := range pageURLs {
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			urls = append(urls, u)
		}
	}

	if limit > 0 && len(urls) > limit {
		urls = urls[:limit]
	}
	return urls
}

// categoryLimit resolves the listing cap: a per-category limit from the
// registry overrides the global one.
func (s *Service) categoryLimit(cat categories.Category) int {
	if cat.Limit > 0 {
		return cat.Limit
	}
	return s.opts.LimitPerCategory
}

// scrapeDetail fetches and extracts one business page. Any failure is
// logged and yields nil; the caller moves on to the next URL.
func (s *Service) scrapeDetail(ctx context.Context, url, category string) *domain.ScrapedListing {
	html, err := s.fetcher.HTML(ctx, url)
	if err != nil {
		s.log.WarnObj("detail page fetch failed", "detail_error", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
		return nil
	}

	listing, err := Extract(html, url, category)
	if err != nil {
		s.log.WarnObj("detail page extract failed", "detail_error", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
		return nil
	}
	if listing == nil {
		s.log.DebugObj("no business name on page, discarded", "detail_url", url)
		return nil
	}

	s.log.DebugObj("listing scraped", "listing_meta", map[string]any{
		"name":         listing.BusinessName,
		"phone":        listing.ContactPhone,
		"neighborhood": listing.Neighborhood,
	})
	return listing
}

func (s *Service) indexURL(cat categories.Category, page int) string {
	url := fmt.Sprintf("%s/rubro-zona/montevideo/%s/%s/%s",
		strings.TrimRight(s.opts.BaseURL, "/"), cat.PathSlug(), cat.PRD, s.opts.ZoneCode)
	if page > 1 {
		url += fmt.Sprintf("?pagina=%d", page)
	}
	return url
}

// runStats summarizes field coverage for a category run.
func runStats(category string, listings []*domain.ScrapedListing) map[string]any {
	stats := map[string]any{"category": category, "scraped": len(listings)}
	var phone, whatsapp, photos, instagram, hours, coords int
	for _, l := range listings {
		if l.ContactPhone != "" {
			phone++
		}
		if l.ContactWhatsapp != "" {
			whatsapp++
		}
		if len(l.Photos) > 0 {
			photos++
		}
		if l.SocialInstagram != "" {
			instagram++
		}
		if len(l.Hours) > 0 {
			hours++
		}
		if l.HasLocation {
			coords++
		}
	}
	stats["with_phone"] = phone
	stats["with_whatsapp"] = whatsapp
	stats["with_photos"] = photos
	stats["with_instagram"] = instagram
	stats["with_hours"] = hours
	stats["with_coords"] = coords
	return stats
}

// sleepCtx pauses for d, returning false if the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
