package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"campground-scraper/utils"
)

// Runner is one full scraper run. Implemented by services.Pipeline.
type Runner interface {
	Run(ctx context.Context)
}

// Controller owns the single-flight run state and exposes the HTTP control
// surface. Only one run may be active at a time; a second start request is
// rejected, not queued.
type Controller struct {
	pipeline Runner
	logger   *utils.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewController creates a Controller around the given pipeline.
func NewController(pipeline Runner, logger *utils.Logger) *Controller {
	return &Controller{pipeline: pipeline, logger: logger}
}

// Start launches a run in the background. It returns false if a run is
// already active.
func (c *Controller) Start() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.running = true
	c.cancel = cancel

	go func() {
		defer func() {
			c.mu.Lock()
			c.running = false
			c.cancel = nil
			c.mu.Unlock()
			cancel()
			c.logger.Info("[server] Scraper stopped.")
		}()

		c.logger.Info("[server] Scraper started...")
		c.pipeline.Run(ctx)
	}()

	return true
}

// Stop cancels the active run. It returns false if no run is active.
// Cancellation is forceful from the pipeline's point of view: batches that
// already committed stay committed, everything in flight is abandoned.
func (c *Controller) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return false
	}
	c.cancel()
	return true
}

// Running reports whether a run is active.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// RegisterRoutes mounts the control surface. Every documented route answers
// 200; the "already running" / "not running" conflicts are reported in the
// body rather than with a 4xx.
func (c *Controller) RegisterRoutes(r *gin.Engine) {
	r.GET("/", c.home)
	r.GET("/start-scraper", c.startScraper)
	r.GET("/stop-scraper", c.stopScraper)
	r.GET("/status", c.status)
}

func (c *Controller) home(ctx *gin.Context) {
	html(ctx, `
		<h1>Welcome to the Campground Scraping API...</h1>
		<p>You can start the scraper by going to the <a href="/start-scraper">start-scraper</a> route.</p>
	`)
}

func (c *Controller) startScraper(ctx *gin.Context) {
	if !c.Start() {
		html(ctx, `
		<h1>Scraper is already running.</h1>
		<p>You can stop the scraper by going to the <a href="/stop-scraper">stop-scraper</a> route.</p>
		<p>Or you can go back to the <a href="/">home</a> page.</p>
	`)
		return
	}

	html(ctx, `
		<h1>Scraper has been started.</h1>
		<p>You can stop the scraper by going to the <a href="/stop-scraper">stop-scraper</a> route.</p>
		<p>Or you can go back to the <a href="/">home</a> page.</p>
	`)
}

func (c *Controller) stopScraper(ctx *gin.Context) {
	if !c.Stop() {
		html(ctx, `
		<h1>Scraper is not running.</h1>
		<p>You can start the scraper again by going to the <a href="/start-scraper">start-scraper</a> route.</p>
		<p>Or you can go back to the <a href="/">home</a> page.</p>
	`)
		return
	}

	html(ctx, `
		<h1>Scraper has been stopped.</h1>
		<p>You can start the scraper again by going to the <a href="/start-scraper">start-scraper</a> route.</p>
		<p>Or you can go back to the <a href="/">home</a> page.</p>
	`)
}

func (c *Controller) status(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"is_scraper_running": c.Running()})
}

func html(ctx *gin.Context, body string) {
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
}
