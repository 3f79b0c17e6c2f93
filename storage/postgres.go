package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"campground-scraper/models"
	"campground-scraper/utils"
)

// ErrIntegrity marks a constraint violation raised while upserting a batch.
// The whole batch has been rolled back when this is returned.
var ErrIntegrity = errors.New("storage: integrity violation")

const insertQuery = `
	INSERT INTO campgrounds (
		id, type, links, name, latitude, longitude,
		region_name, administrative_area, nearest_city_name,
		accommodation_type_names, bookable, camper_types, operator,
		photo_url, photo_urls, photos_count, rating, reviews_count,
		slug, price_low, price_high, availability_updated_at
	) VALUES (
		:id, :type, :links, :name, :latitude, :longitude,
		:region_name, :administrative_area, :nearest_city_name,
		:accommodation_type_names, :bookable, :camper_types, :operator,
		:photo_url, :photo_urls, :photos_count, :rating, :reviews_count,
		:slug, :price_low, :price_high, :availability_updated_at
	)`

const updateQuery = `
	UPDATE campgrounds SET
		type = :type,
		links = :links,
		name = :name,
		latitude = :latitude,
		longitude = :longitude,
		region_name = :region_name,
		administrative_area = :administrative_area,
		nearest_city_name = :nearest_city_name,
		accommodation_type_names = :accommodation_type_names,
		bookable = :bookable,
		camper_types = :camper_types,
		operator = :operator,
		photo_url = :photo_url,
		photo_urls = :photo_urls,
		photos_count = :photos_count,
		rating = :rating,
		reviews_count = :reviews_count,
		slug = :slug,
		price_low = :price_low,
		price_high = :price_high,
		availability_updated_at = :availability_updated_at
	WHERE id = :id`

// PostgresStore persists normalized campgrounds to PostgreSQL.
type PostgresStore struct {
	db     *sqlx.DB
	logger *utils.Logger
}

// NewPostgresStore connects to PostgreSQL, runs schema migrations and
// returns a ready-to-use store. Connecting is retried while the database
// comes up.
func NewPostgresStore(dsn string, logger *utils.Logger) (*PostgresStore, error) {
	var db *sqlx.DB

	retry := &utils.RetryConfig{
		MaxAttempts: 10,
		BaseDelay:   2 * time.Second,
		Logger:      logger,
	}
	err := retry.Do("postgres-connect", func() error {
		var err error
		db, err = sqlx.Connect("postgres", dsn)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	ps := &PostgresStore{db: db, logger: logger}
	if err := ps.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS campgrounds (
			id                       TEXT PRIMARY KEY,
			type                     TEXT        NOT NULL DEFAULT '',
			links                    JSONB       NOT NULL DEFAULT '{}',
			name                     TEXT        NOT NULL DEFAULT '',
			latitude                 DOUBLE PRECISION,
			longitude                DOUBLE PRECISION,
			region_name              TEXT        NOT NULL DEFAULT '',
			administrative_area      TEXT,
			nearest_city_name        TEXT,
			accommodation_type_names JSONB       NOT NULL DEFAULT '[]',
			bookable                 BOOLEAN     NOT NULL DEFAULT FALSE,
			camper_types             JSONB       NOT NULL DEFAULT '[]',
			operator                 TEXT,
			photo_url                TEXT,
			photo_urls               JSONB       NOT NULL DEFAULT '[]',
			photos_count             INTEGER     NOT NULL DEFAULT 0,
			rating                   DOUBLE PRECISION,
			reviews_count            INTEGER     NOT NULL DEFAULT 0,
			slug                     TEXT,
			price_low                DOUBLE PRECISION,
			price_high               DOUBLE PRECISION,
			availability_updated_at  TIMESTAMPTZ
		);

		CREATE INDEX IF NOT EXISTS idx_campgrounds_region_name ON campgrounds(region_name);
		CREATE INDEX IF NOT EXISTS idx_campgrounds_price_low   ON campgrounds(price_low);
	`)
	return err
}

// UpsertBatch inserts new rows and overwrites existing ones, keyed by id,
// inside a single transaction. On any failure the whole batch rolls back
// and nothing is committed.
func (ps *PostgresStore) UpsertBatch(ctx context.Context, batch []models.Campground) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := ps.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback()

	inserted, updated := 0, 0
	for _, cg := range batch {
		var exists bool
		if err := tx.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM campgrounds WHERE id = $1)`, cg.ID); err != nil {
			return classify(fmt.Errorf("postgres: lookup %s: %w", cg.ID, err))
		}

		query := insertQuery
		if exists {
			query = updateQuery
		}
		if _, err := tx.NamedExecContext(ctx, query, cg); err != nil {
			return classify(fmt.Errorf("postgres: upsert %s: %w", cg.ID, err))
		}

		if exists {
			updated++
		} else {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("postgres: commit: %w", err))
	}

	ps.logger.Info("[storage] Batch committed — %d inserted, %d updated", inserted, updated)
	return nil
}

// Close releases the underlying connection pool.
func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

// classify tags constraint violations (pq error class 23) with ErrIntegrity
// so callers can tell them apart from other storage failures.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "23" {
		return fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	return err
}
