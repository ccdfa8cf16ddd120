package main

import (
	"context"
	"log"
	"time"

	"github.com/nextbit-dev/storelift/internal/attributes"
	"github.com/nextbit-dev/storelift/internal/compose"
	"github.com/nextbit-dev/storelift/internal/config"
	"github.com/nextbit-dev/storelift/internal/database"
	"github.com/nextbit-dev/storelift/internal/enrich"
	"github.com/nextbit-dev/storelift/internal/models"
	"github.com/nextbit-dev/storelift/internal/pipeline"
	"github.com/nextbit-dev/storelift/internal/store"
)

// One-shot enrichment run for cron jobs and manual invocation.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.ProductRecord{}, &models.ExportRecord{}); err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	}

	pageCache, err := enrich.NewPageCache(cfg.Cache.RedisURL, cfg.Cache.PageTTL)
	if err != nil {
		log.Printf("⚠️ Page cache disabled: %v", err)
	}

	ctx := context.Background()

	var ai enrich.AttributeExtractor
	if cfg.Gemini.APIKey != "" {
		gemini, err := enrich.NewGeminiExtractor(ctx, cfg.Gemini)
		if err != nil {
			log.Printf("⚠️ AI extraction disabled: %v", err)
		} else {
			defer gemini.Close()
			ai = gemini
		}
	}

	resolver := enrich.NewResolver(
		attributes.NewExtractor(),
		enrich.NewWebLookup(cfg.Lookup, pageCache),
		ai,
	)

	runner := pipeline.NewRunner(
		store.NewProductStore(db.DB),
		store.NewExportStore(db.DB),
		resolver,
		compose.NewComposer(),
		cfg.Pipeline.Workers,
	)

	summary, err := runner.Run(ctx)
	if err != nil {
		log.Fatalf("🛑 Enrichment run failed: %v", err)
	}
	log.Printf("✅ Enrichment run %s: %d total, %d composed, %d reused, %d failed in %s",
		summary.RunID, summary.Total, summary.Composed, summary.Reused, summary.Failed,
		summary.Duration.Round(time.Millisecond))
}
