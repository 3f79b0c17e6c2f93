package main

import (
	"os"

	"github.com/gin-gonic/gin"

	"campground-scraper/config"
	"campground-scraper/scheduler"
	"campground-scraper/scraper/thedyrt"
	"campground-scraper/server"
	"campground-scraper/services"
	"campground-scraper/storage"
	"campground-scraper/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== Campground Scraping API starting ===")
	logger.Info("Config — pages: %d | page size: %d | concurrency: %d | port: %s",
		cfg.PageCount, cfg.PageSize, cfg.MaxConcurrency, cfg.ServerPort)

	store, err := storage.NewPostgresStore(cfg.DSN(), logger)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		os.Exit(1)
	}
	defer store.Close()

	client := thedyrt.New(cfg, logger)
	pipeline := services.NewPipeline(client, services.NewMapper(), services.NewValidator(), store, logger)
	ctrl := server.NewController(pipeline, logger)

	sched := scheduler.New(ctrl, logger)
	if err := sched.Start(); err != nil {
		logger.Error("Failed to start scheduler: %v", err)
		os.Exit(1)
	}
	defer sched.Stop()

	r := gin.Default()
	ctrl.RegisterRoutes(r)

	logger.Info("Listening on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		logger.Error("HTTP server failed: %v", err)
		os.Exit(1)
	}
}
