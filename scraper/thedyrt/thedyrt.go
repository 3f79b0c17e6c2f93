package thedyrt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"campground-scraper/config"
	"campground-scraper/models"
	"campground-scraper/utils"
)

const userAgent = "Mozilla/5.0"

// searchFilters is the fixed wildcard filter set sent with every request.
var searchFilters = []string{
	"drive_time",
	"air_quality",
	"electric_amperage",
	"max_vehicle_length",
	"price",
	"rating",
	"region",
}

// Client fetches paginated search results from The Dyrt API.
type Client struct {
	cfg    *config.Config
	logger *utils.Logger
	http   *http.Client
}

// New creates a ready-to-use Client.
func New(cfg *config.Config, logger *utils.Logger) *Client {
	return &Client{
		cfg:    cfg,
		logger: logger,
		http: &http.Client{
			Timeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second,
		},
	}
}

// FetchPage retrieves one page of raw records.
//
// A 500 response is the API's known transient failure mode: the page is
// skipped by returning (nil, nil). Any other non-2xx status and any
// transport error are returned to the caller.
func (c *Client) FetchPage(ctx context.Context, page int) (*models.RawPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("page %d: build request: %w", page, err)
	}

	q := url.Values{}
	for _, f := range searchFilters {
		q.Set("filter[search]["+f+"]", "any")
	}
	q.Set("sort", "recommended")
	q.Set("page[number]", strconv.Itoa(page))
	q.Set("page[size]", strconv.Itoa(c.cfg.PageSize))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", userAgent)

	c.logger.Info("[thedyrt] Fetching page %d", page)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusInternalServerError:
		c.logger.Warn("[thedyrt] Page %d returned a 500 error. Skipping...", page)
		return nil, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("page %d: unexpected status %d", page, resp.StatusCode)
	}

	var body models.RawPage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("page %d: decode body: %w", page, err)
	}

	c.logger.Info("[thedyrt] Successfully fetched page %d (%d records)", page, len(body.Data))
	return &body, nil
}

// FetchAllPages fetches pages 1..PageCount concurrently and returns the
// pages that succeeded. Soft-failed pages arrive as nil and are filtered
// out; a hard failure on one page is logged and excluded without aborting
// its siblings. Result order follows completion, not page number.
func (c *Client) FetchAllPages(ctx context.Context) []*models.RawPage {
	workers := c.cfg.MaxConcurrency
	if workers <= 0 {
		workers = c.cfg.PageCount
	}
	pool := utils.NewWorkerPool(workers)

	var mu sync.Mutex
	pages := make([]*models.RawPage, 0, c.cfg.PageCount)

	for page := 1; page <= c.cfg.PageCount; page++ {
		page := page
		pool.Submit(func() {
			body, err := c.FetchPage(ctx, page)
			if err != nil {
				c.logger.Error("[thedyrt] Page %d failed: %v", page, err)
				return
			}
			if body == nil {
				return
			}
			mu.Lock()
			pages = append(pages, body)
			mu.Unlock()
		})
	}
	pool.Wait()

	c.logger.Info("[thedyrt] Successfully fetched %d of %d pages", len(pages), c.cfg.PageCount)
	return pages
}
