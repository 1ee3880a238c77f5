package app

import (
	"context"
	"fmt"
	"time"

	"github.com/mibarrio-uy/listing-harvester/internal/config"
	"github.com/mibarrio-uy/listing-harvester/internal/importer"
	"github.com/mibarrio-uy/listing-harvester/internal/logger"
	"github.com/mibarrio-uy/listing-harvester/internal/store"
	"github.com/mibarrio-uy/listing-harvester/pkg/publishers"
)

// BatchImporter is the replay runtime: it imports previously scraped JSON
// backups from the data directory into the directory store, without touching
// the source site.
type BatchImporter struct {
	cfg      *config.Config
	imp      *importer.Importer
	fanout   *publishers.Fanout
	dirStore store.Store
	log      logger.Logger
}

// NewBatchImporter builds an import runtime from config files.
func NewBatchImporter(ctx context.Context, cfg *config.Config, log logger.Logger) (*BatchImporter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}

	dirStore, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect directory store: %w", err)
	}

	return &BatchImporter{
		cfg:      cfg,
		imp:      importer.New(dirStore, fanout, log, cfg.ImportDelay),
		fanout:   fanout,
		dirStore: dirStore,
		log:      log,
	}, nil
}

// Run imports every JSON backup in the data directory.
func (b *BatchImporter) Run(ctx context.Context) error {
	if b == nil || b.imp == nil {
		return fmt.Errorf("batch importer is not initialized")
	}
	defer b.dirStore.Close()

	start := time.Now()
	b.log.InfoObj("batch import started", "import_meta", map[string]any{
		"data_dir":         b.cfg.DataDir,
		"publishers_count": b.fanout.Size(),
		"started_at":       start.UTC(),
	})

	result, err := b.imp.ImportDir(ctx, b.cfg.DataDir)
	if err != nil {
		return err
	}

	b.log.InfoObj("batch import completed", "import_meta", map[string]any{
		"inserted":   result.Inserted,
		"skipped":    result.Skipped,
		"errors":     result.Errors,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return nil
}
