package thedyrt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"campground-scraper/config"
	"campground-scraper/models"
	"campground-scraper/utils"
)

func testConfig(baseURL string, pages int) *config.Config {
	return &config.Config{
		BaseURL:        baseURL,
		PageCount:      pages,
		PageSize:       500,
		HTTPTimeoutSec: 5,
	}
}

func pageBody(page, records int) models.RawPage {
	body := models.RawPage{}
	for i := 0; i < records; i++ {
		body.Data = append(body.Data, models.RawRecord{
			ID:         fmt.Sprintf("camp-%d-%d", page, i),
			Type:       "campgrounds",
			Attributes: map[string]interface{}{"name": "Camp"},
		})
	}
	return body
}

func TestFetchPageSendsFixedQuery(t *testing.T) {
	var gotQuery map[string][]string
	var gotUA string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotUA = r.Header.Get("User-Agent")
		json.NewEncoder(w).Encode(pageBody(3, 2))
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL, 22), utils.NewLogger())
	body, err := client.FetchPage(context.Background(), 3)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(body.Data) != 2 {
		t.Errorf("got %d records, want 2", len(body.Data))
	}

	if gotUA != "Mozilla/5.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	checks := map[string]string{
		"sort":                        "recommended",
		"page[number]":                "3",
		"page[size]":                  "500",
		"filter[search][drive_time]":  "any",
		"filter[search][price]":       "any",
		"filter[search][rating]":      "any",
		"filter[search][region]":      "any",
		"filter[search][air_quality]": "any",
	}
	for key, want := range checks {
		if got := gotQuery[key]; len(got) != 1 || got[0] != want {
			t.Errorf("query %q = %v; want %q", key, got, want)
		}
	}
}

func TestFetchPageSoftFailureOn500(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL, 22), utils.NewLogger())
	body, err := client.FetchPage(context.Background(), 7)
	if err != nil {
		t.Errorf("500 must be swallowed, got error: %v", err)
	}
	if body != nil {
		t.Errorf("500 must yield a nil page, got %+v", body)
	}
}

func TestFetchPageHardFailureOnOtherStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL, 22), utils.NewLogger())
	if _, err := client.FetchPage(context.Background(), 1); err == nil {
		t.Error("non-500 error status must propagate as an error")
	}
}

func TestFetchPageTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := New(testConfig(srv.URL, 22), utils.NewLogger())
	if _, err := client.FetchPage(context.Background(), 1); err == nil {
		t.Error("transport error must propagate as an error")
	}
}

func TestFetchAllPagesFiltersFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page[number]"))
		switch page {
		case 7:
			w.WriteHeader(http.StatusInternalServerError) // soft
		case 9:
			w.WriteHeader(http.StatusBadGateway) // hard
		default:
			json.NewEncoder(w).Encode(pageBody(page, 10))
		}
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL, 22), utils.NewLogger())
	pages := client.FetchAllPages(context.Background())

	if len(pages) != 20 {
		t.Fatalf("got %d pages, want 20 (pages 7 and 9 excluded)", len(pages))
	}
	records := 0
	for _, p := range pages {
		records += len(p.Data)
	}
	if records != 200 {
		t.Errorf("got %d records, want 200", records)
	}
}

func TestFetchAllPagesSoftFailureOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page[number]"))
		if page == 7 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(pageBody(page, 10))
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL, 22), utils.NewLogger())
	pages := client.FetchAllPages(context.Background())

	if len(pages) != 21 {
		t.Fatalf("got %d pages, want 21", len(pages))
	}
	records := 0
	for _, p := range pages {
		records += len(p.Data)
	}
	if records != 210 {
		t.Errorf("got %d records, want 210", records)
	}
}

func TestFetchAllPagesBoundedConcurrency(t *testing.T) {
	cfg := testConfig("", 10)
	cfg.MaxConcurrency = 2

	var mu = make(chan struct{}, 1)
	inflight, peak := 0, 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu <- struct{}{}
		inflight++
		if inflight > peak {
			peak = inflight
		}
		<-mu

		json.NewEncoder(w).Encode(pageBody(1, 1))

		mu <- struct{}{}
		inflight--
		<-mu
	}))
	defer srv.Close()
	cfg.BaseURL = srv.URL

	client := New(cfg, utils.NewLogger())
	pages := client.FetchAllPages(context.Background())

	if len(pages) != 10 {
		t.Fatalf("got %d pages, want 10", len(pages))
	}
	if peak > 2 {
		t.Errorf("observed %d concurrent fetches, limit is 2", peak)
	}
}
