package storage

import (
	"context"

	"campground-scraper/models"
)

// CampgroundStore is the interface any storage backend must satisfy.
type CampgroundStore interface {
	UpsertBatch(ctx context.Context, batch []models.Campground) error
	Close() error
}
