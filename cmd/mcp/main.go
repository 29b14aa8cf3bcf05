package main

import (
	"log"

	"github.com/mark3labs/mcp-go/server"

	mcpadapter "github.com/kirillkom/screenshot-organizer/internal/adapters/mcp"
	"github.com/kirillkom/screenshot-organizer/internal/bootstrap"
	"github.com/kirillkom/screenshot-organizer/internal/config"
	"github.com/kirillkom/screenshot-organizer/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	// stdout carries the MCP protocol stream; everything else goes to stderr.
	logger := logging.NewJSONLogger("screenshot-organizer-mcp", cfg.LogLevel)

	app, err := bootstrap.New(cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	if cfg.MetricsPort != "" {
		go func() {
			logger.Info("metrics listening", "port", cfg.MetricsPort)
			if err := app.Metrics.Serve(":" + cfg.MetricsPort); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	srv := server.NewMCPServer("screenshot-organizer", "1.0.0",
		server.WithToolCapabilities(false),
	)
	mcpadapter.NewServer(mcpadapter.ServerDeps{
		Scanner:    app.Scanner,
		Analyzer:   app.AnalyzeUC,
		Batch:      app.BatchUC,
		Organizer:  app.Organizer,
		Classifier: app.Classifier,
		Categories: app.Categories,
		BaseFolder: cfg.BaseFolder,
		KeepOrig:   cfg.KeepOriginals,
		Metrics:    app.Metrics,
		Logger:     logger,
	}).Register(srv)

	logger.Info("mcp server starting", "transport", "stdio", "base_folder", cfg.BaseFolder)
	if err := server.ServeStdio(srv); err != nil {
		log.Fatalf("mcp server error: %v", err)
	}
}
