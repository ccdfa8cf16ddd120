package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nextbit-dev/storelift/internal/attributes"
	"github.com/nextbit-dev/storelift/internal/compose"
	"github.com/nextbit-dev/storelift/internal/config"
	"github.com/nextbit-dev/storelift/internal/database"
	"github.com/nextbit-dev/storelift/internal/enrich"
	"github.com/nextbit-dev/storelift/internal/handlers"
	"github.com/nextbit-dev/storelift/internal/models"
	"github.com/nextbit-dev/storelift/internal/pipeline"
	"github.com/nextbit-dev/storelift/internal/services/shopify"
	"github.com/nextbit-dev/storelift/internal/store"
	"github.com/nextbit-dev/storelift/internal/syncer"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema
	log.Println("🚀 Synchronizing database schema...")
	err = db.AutoMigrate(
		&models.ProductRecord{},
		&models.ExportRecord{},
	)
	if err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// 4. Wire the enrichment layers
	pageCache, err := enrich.NewPageCache(cfg.Cache.RedisURL, cfg.Cache.PageTTL)
	if err != nil {
		log.Printf("⚠️ Page cache disabled: %v", err)
	}

	var ai enrich.AttributeExtractor
	if cfg.Gemini.APIKey != "" {
		gemini, err := enrich.NewGeminiExtractor(context.Background(), cfg.Gemini)
		if err != nil {
			log.Printf("⚠️ AI extraction disabled: %v", err)
		} else {
			defer gemini.Close()
			ai = gemini
		}
	} else {
		log.Println("⚠️ GEMINI_API_KEY not set, AI extraction disabled")
	}

	resolver := enrich.NewResolver(
		attributes.NewExtractor(),
		enrich.NewWebLookup(cfg.Lookup, pageCache),
		ai,
	)

	// 5. Wire stores, pipeline and sync engine
	productStore := store.NewProductStore(db.DB)
	exportStore := store.NewExportStore(db.DB)

	runner := pipeline.NewRunner(productStore, exportStore, resolver, compose.NewComposer(), cfg.Pipeline.Workers)

	platform := shopify.NewClient(cfg.Shopify, cfg.Sync)
	engine := syncer.NewEngine(platform, exportStore, productStore, cfg.Sync)

	// 6. Set up HTTP router
	router := handlers.NewRouter(runner, engine, exportStore)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on port %s\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	// Create context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Close database (this also stops embedded PostgreSQL)
	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
