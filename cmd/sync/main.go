package main

import (
	"context"
	"log"
	"time"

	"github.com/nextbit-dev/storelift/internal/config"
	"github.com/nextbit-dev/storelift/internal/database"
	"github.com/nextbit-dev/storelift/internal/models"
	"github.com/nextbit-dev/storelift/internal/services/shopify"
	"github.com/nextbit-dev/storelift/internal/store"
	"github.com/nextbit-dev/storelift/internal/syncer"
)

// One-shot sync run: dispatch every pending or errored export record to
// the commerce platform.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Shopify.ShopDomain == "" || cfg.Shopify.AccessToken == "" {
		log.Fatal("🛑 SHOPIFY_SHOP_DOMAIN and SHOPIFY_ACCESS_TOKEN must be set")
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.ProductRecord{}, &models.ExportRecord{}); err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	}

	engine := syncer.NewEngine(
		shopify.NewClient(cfg.Shopify, cfg.Sync),
		store.NewExportStore(db.DB),
		store.NewProductStore(db.DB),
		cfg.Sync,
	)

	summary, err := engine.Run(context.Background())
	if err != nil {
		log.Fatalf("🛑 Sync run failed: %v", err)
	}
	log.Printf("✅ Sync run: %d total, %d created, %d updated, %d failed in %s",
		summary.Total, summary.Created, summary.Updated, summary.Failed,
		summary.Duration.Round(time.Millisecond))
}
