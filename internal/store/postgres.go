package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mibarrio-uy/listing-harvester/internal/domain"
)

const (
	providersTable          = "providers"
	providerCategoriesTable = "provider_categories"
)

// PostgresStore implements Store over a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres opens a connection pool against the directory database.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// FindByExternalID looks up a provider by its provenance id.
func (s *PostgresStore) FindByExternalID(ctx context.Context, externalID string) (string, bool, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM `+providersTable+` WHERE external_id = $1 LIMIT 1`,
		externalID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select provider by external id: %w", err)
	}
	return id, true, nil
}

// FindByName looks up a provider case-insensitively by business name within
// a department.
func (s *PostgresStore) FindByName(ctx context.Context, businessName, department string) (string, bool, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM `+providersTable+` WHERE business_name ILIKE $1 AND department = $2 LIMIT 1`,
		businessName, department,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select provider by name: %w", err)
	}
	return id, true, nil
}

// InsertProvider creates the directory row for a scraped listing. Ownership
// stays unset until a business owner claims the profile.
func (s *PostgresStore) InsertProvider(ctx context.Context, l *domain.ScrapedListing) (string, error) {
	var lat, lng any
	if l.HasLocation {
		lat, lng = l.LocationLat, l.LocationLng
	}

	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO `+providersTable+` (
			user_id, business_name, description, address, department,
			neighborhood, contact_phone, contact_whatsapp, social_instagram,
			logo_url, location_lat, location_lng,
			is_active, is_claimed, source, source_url, external_id
		) VALUES (
			NULL, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			TRUE, FALSE, $12, $13, $14
		) RETURNING id`,
		l.BusinessName,
		nullIfEmpty(l.Description),
		nullIfEmpty(l.Address),
		l.Department,
		nullIfEmpty(l.Neighborhood),
		nullIfEmpty(l.ContactPhone),
		nullIfEmpty(l.ContactWhatsapp),
		nullIfEmpty(l.SocialInstagram),
		nullIfEmpty(l.LogoURL),
		lat, lng,
		l.Source,
		l.SourceURL,
		l.ExternalID,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert provider: %w", err)
	}
	return id, nil
}

// InsertCategory links a category code to a provider.
func (s *PostgresStore) InsertCategory(ctx context.Context, providerID, categoryCode string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+providerCategoriesTable+` (provider_id, category_name) VALUES ($1, $2)`,
		providerID, categoryCode,
	)
	if err != nil {
		return fmt.Errorf("insert provider category: %w", err)
	}
	return nil
}

// ReplaceCategories swaps a provider's category links wholesale.
func (s *PostgresStore) ReplaceCategories(ctx context.Context, providerID string, categoryCodes []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`DELETE FROM `+providerCategoriesTable+` WHERE provider_id = $1`,
		providerID,
	); err != nil {
		return fmt.Errorf("delete provider categories: %w", err)
	}

	for _, code := range categoryCodes {
		if _, err := tx.Exec(ctx,
			`INSERT INTO `+providerCategoriesTable+` (provider_id, category_name) VALUES ($1, $2)`,
			providerID, code,
		); err != nil {
			return fmt.Errorf("insert provider category: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
