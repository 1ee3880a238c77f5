package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mibarrio-uy/listing-harvester/internal/browser"
	"github.com/mibarrio-uy/listing-harvester/internal/config"
	"github.com/mibarrio-uy/listing-harvester/internal/crawler"
	"github.com/mibarrio-uy/listing-harvester/internal/importer"
	"github.com/mibarrio-uy/listing-harvester/internal/logger"
	"github.com/mibarrio-uy/listing-harvester/internal/storage"
	"github.com/mibarrio-uy/listing-harvester/internal/store"
	"github.com/mibarrio-uy/listing-harvester/pkg/categories"
	"github.com/mibarrio-uy/listing-harvester/pkg/httpclient"
	"github.com/mibarrio-uy/listing-harvester/pkg/publishers"
)

// Scraper is the scrape-and-import runtime. It wires the page fetcher, the
// crawl service, the directory store, and the optional event publishers, runs
// one pass over the configured categories, and writes a JSON backup of every
// category's listings.
type Scraper struct {
	cfg      *config.Config
	catReg   *categories.Registry
	fanout   *publishers.Fanout
	crawl    *crawler.Service
	log      logger.Logger
	seen     storage.Store
	dirStore store.Store
	session  *browser.Session
}

// NewScraper builds a scraper runtime from config files.
func NewScraper(ctx context.Context, cfg *config.Config, log logger.Logger) (*Scraper, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	catReg, err := categories.LoadRegistry(cfg.CategoriesFile)
	if err != nil {
		return nil, fmt.Errorf("load categories registry: %w", err)
	}
	cats := catReg.All()
	codes := make([]string, 0, len(cats))
	for _, c := range cats {
		codes = append(codes, c.Code)
	}
	log.InfoObj("categories registry loaded", "categories_meta", map[string]any{
		"count": len(codes),
		"codes": codes,
	})

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}

	dirStore, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect directory store: %w", err)
	}

	seen, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		ListingTTL:      cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		dirStore.Close()
		return nil, fmt.Errorf("init seen cache: %w", err)
	}
	log.InfoObj("seen cache initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"listing_ttl_seconds":      int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	var fetcher crawler.PageFetcher
	var session *browser.Session
	if cfg.ScrapeMode == "http" {
		fetcher = crawler.NewHTTPFetcher(httpclient.NewRestyClient(cfg.NavTimeout), cfg.UserAgent)
	} else {
		session, err = browser.NewSession(ctx, browser.Options{
			Headless:    cfg.Headless,
			ChromePath:  cfg.ChromePath,
			UserAgent:   cfg.UserAgent,
			SettleDelay: cfg.SettleDelay,
			NavTimeout:  cfg.NavTimeout,
		})
		if err != nil {
			seen.Close()
			dirStore.Close()
			return nil, fmt.Errorf("start browser session: %w", err)
		}
		fetcher = session
	}
	log.InfoObj("page fetcher ready", "scrape_mode", cfg.ScrapeMode)

	imp := importer.New(dirStore, fanout, log, cfg.ImportDelay)

	crawl := crawler.NewService(fetcher, imp, seen, log, crawler.Options{
		BaseURL:          cfg.BaseURL,
		ZoneCode:         cfg.ZoneCode,
		MaxPages:         cfg.MaxPages,
		LimitPerCategory: cfg.LimitPerCategory,
		RequestDelay:     cfg.RequestDelay,
	})

	return &Scraper{
		cfg:      cfg,
		catReg:   catReg,
		fanout:   fanout,
		crawl:    crawl,
		log:      log,
		seen:     seen,
		dirStore: dirStore,
		session:  session,
	}, nil
}

// Run executes one scrape pass over all configured categories.
func (s *Scraper) Run(ctx context.Context) error {
	if s == nil || s.crawl == nil {
		return fmt.Errorf("scraper is not initialized")
	}
	defer s.close()

	cats := s.catReg.All()
	if len(cats) == 0 {
		return fmt.Errorf("no categories configured in %s", s.cfg.CategoriesFile)
	}

	start := time.Now()
	s.log.InfoObj("scrape started", "scrape_meta", map[string]any{
		"categories_count": len(cats),
		"publishers_count": s.fanout.Size(),
		"started_at":       start.UTC(),
	})

	runs, err := s.crawl.Run(ctx, cats)

	var total crawler.CategoryRun
	for _, run := range runs {
		total.Result.Merge(run.Result)
		total.Listings = append(total.Listings, run.Listings...)
		if backupErr := s.writeBackup(run); backupErr != nil {
			s.log.ErrorObj("backup write failed", "backup_error", map[string]any{
				"category": run.Category.Code,
				"error":    backupErr.Error(),
			})
		}
	}

	s.log.InfoObj("scrape completed", "scrape_meta", map[string]any{
		"categories_count": len(runs),
		"scraped":          len(total.Listings),
		"inserted":         total.Result.Inserted,
		"skipped":          total.Result.Skipped,
		"errors":           total.Result.Errors,
		"elapsed_ms":       time.Since(start).Milliseconds(),
	})
	return err
}

// writeBackup persists a category's scraped listings as JSON, so the importer
// runtime can replay them without re-scraping.
func (s *Scraper) writeBackup(run crawler.CategoryRun) error {
	if len(run.Listings) == 0 {
		return nil
	}
	if err := os.MkdirAll(s.cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	raw, err := json.MarshalIndent(run.Listings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode listings: %w", err)
	}

	path := filepath.Join(s.cfg.DataDir, "1122-"+run.Category.Code+".json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write backup file: %w", err)
	}

	s.log.InfoObj("backup written", "backup_meta", map[string]any{
		"file":     path,
		"listings": len(run.Listings),
	})
	return nil
}

// close releases the browser, both stores, and logs close failures.
func (s *Scraper) close() {
	if s.session != nil {
		s.session.Close()
	}
	if s.seen != nil {
		if err := s.seen.Close(); err != nil {
			s.log.ErrorObj("seen cache close failed", "error", err)
		}
	}
	if s.dirStore != nil {
		s.dirStore.Close()
	}
}

// buildFanout loads and instantiates the configured publishers. An empty
// publishers file path disables event publishing entirely.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if path == "" {
		return publishers.NewFanout(nil), nil
	}

	reg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := reg.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, cfg := range enabled {
		summaries = append(summaries, map[string]string{"id": cfg.ID, "type": cfg.Type})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})

	return publishers.NewFanout(pubs), nil
}
