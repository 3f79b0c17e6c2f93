package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"campground-scraper/utils"
)

// blockingRunner runs until its context is canceled, like a long scrape.
type blockingRunner struct {
	started chan struct{}
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{started: make(chan struct{})}
}

func (r *blockingRunner) Run(ctx context.Context) {
	close(r.started)
	<-ctx.Done()
}

func newTestRouter(runner Runner) (*Controller, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	ctrl := NewController(runner, utils.NewLogger())
	r := gin.New()
	ctrl.RegisterRoutes(r)
	return ctrl, r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestStatusInitiallyInactive(t *testing.T) {
	_, r := newTestRouter(newBlockingRunner())

	w := get(r, "/status")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"is_scraper_running": false}`, w.Body.String())
}

func TestStartRejectsSecondRun(t *testing.T) {
	runner := newBlockingRunner()
	ctrl, r := newTestRouter(runner)

	w := get(r, "/start-scraper")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Scraper has been started")
	<-runner.started

	w = get(r, "/start-scraper")
	assert.Equal(t, http.StatusOK, w.Code, "conflict is reported in the body, not a 4xx")
	assert.Contains(t, w.Body.String(), "Scraper is already running")

	assert.True(t, ctrl.Running())
	ctrl.Stop()
	waitFor(t, func() bool { return !ctrl.Running() })
}

func TestStopEndsActiveRun(t *testing.T) {
	runner := newBlockingRunner()
	ctrl, r := newTestRouter(runner)

	get(r, "/start-scraper")
	<-runner.started

	w := get(r, "/stop-scraper")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Scraper has been stopped")

	waitFor(t, func() bool { return !ctrl.Running() })

	w = get(r, "/status")
	assert.JSONEq(t, `{"is_scraper_running": false}`, w.Body.String())
}

func TestStopWithoutActiveRun(t *testing.T) {
	_, r := newTestRouter(newBlockingRunner())

	w := get(r, "/stop-scraper")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Scraper is not running")
}

func TestHomeLinksToStart(t *testing.T) {
	_, r := newTestRouter(newBlockingRunner())

	w := get(r, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "/start-scraper"))
}

func TestFlagResetsAfterRunCompletes(t *testing.T) {
	done := make(chan struct{}, 2)
	ctrl, _ := newTestRouter(runnerFunc(func(ctx context.Context) { done <- struct{}{} }))

	assert.True(t, ctrl.Start())
	<-done
	waitFor(t, func() bool { return !ctrl.Running() })

	// A finished run frees the slot for the next one.
	assert.True(t, ctrl.Start())
	waitFor(t, func() bool { return !ctrl.Running() })
}

type runnerFunc func(ctx context.Context)

func (f runnerFunc) Run(ctx context.Context) { f(ctx) }
