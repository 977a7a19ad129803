package main

import (
	"github.com/gin-gonic/gin"

	"grade-report-server-go/config"
	"grade-report-server-go/db"
	"grade-report-server-go/handlers"
	"grade-report-server-go/report"
)

func main() {
	cfg := config.Load(config.NewLogger("info"), ".env")
	logger := config.NewLogger(cfg.LogLevel)

	// Open the configured store
	store, closeStore, err := db.OpenStore(cfg.StoreOptions(), logger)
	if err != nil {
		logger.Fatalf("Failed to open %s store: %v", cfg.Store, err)
	}
	defer closeStore()

	if cfg.SeedData {
		db.CheckAndSeedData(store, logger)
	}

	font, err := report.LoadFont(cfg.FontPath)
	if err != nil {
		logger.Fatalf("Failed to load chart font: %v", err)
	}

	apiHandler := handlers.NewAPIHandler(store, handlers.ReportOptions{
		Renderer:        report.NewGoChartRenderer(font, cfg.ChartWidth, cfg.ChartHeight),
		Labels:          report.LabelsFor(cfg.Locale),
		FontFamily:      cfg.FontFamily,
		ExportName:      cfg.ExportName,
		ExportExtension: cfg.ExportExtension,
	}, logger)

	// Initialize Gin router
	router := gin.Default()
	handlers.SetupRoutes(router, apiHandler)

	port := ":" + cfg.Port
	logger.Infof("Starting server on port %s", port)
	if err := router.Run(port); err != nil {
		logger.Fatalf("Failed to run server: %v", err)
	}
}
