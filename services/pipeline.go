package services

import (
	"context"
	"errors"

	"campground-scraper/models"
	"campground-scraper/storage"
	"campground-scraper/utils"
)

// Fetcher retrieves all available pages of raw records. Implemented by
// scraper/thedyrt.Client.
type Fetcher interface {
	FetchAllPages(ctx context.Context) []*models.RawPage
}

// Pipeline drives one full fetch → map/validate → upsert run.
type Pipeline struct {
	fetcher   Fetcher
	mapper    *Mapper
	validator *Validator
	store     storage.CampgroundStore
	logger    *utils.Logger
}

// NewPipeline wires the pipeline stages together.
func NewPipeline(fetcher Fetcher, mapper *Mapper, validator *Validator,
	store storage.CampgroundStore, logger *utils.Logger) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		mapper:    mapper,
		validator: validator,
		store:     store,
		logger:    logger,
	}
}

// Run executes one complete run. Invalid records are logged and dropped,
// failed batches are rolled back and logged, and anything unexpected is
// recovered here so a run can never take the host process down.
func (p *Pipeline) Run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("[pipeline] Recovered from unexpected failure: %v", r)
		}
	}()

	pages := p.fetcher.FetchAllPages(ctx)

	stored, rejected := 0, 0
	for _, page := range pages {
		batch := make([]models.Campground, 0, len(page.Data))
		for _, raw := range page.Data {
			cg := p.mapper.Map(raw)
			if err := p.validator.Validate(cg); err != nil {
				p.logger.Warn("[pipeline] Dropping invalid record: %v", err)
				rejected++
				continue
			}
			batch = append(batch, cg)
		}

		if len(batch) == 0 {
			continue
		}

		if err := p.store.UpsertBatch(ctx, batch); err != nil {
			if errors.Is(err, storage.ErrIntegrity) {
				p.logger.Error("[pipeline] Batch of %d rolled back on integrity violation: %v", len(batch), err)
			} else {
				p.logger.Error("[pipeline] Batch of %d failed: %v", len(batch), err)
			}
			continue
		}
		stored += len(batch)
	}

	p.logger.Info("[pipeline] Run complete — %d records stored, %d rejected", stored, rejected)
}
