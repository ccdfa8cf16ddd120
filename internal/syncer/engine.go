package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/nextbit-dev/storelift/internal/config"
	"github.com/nextbit-dev/storelift/internal/models"
	"github.com/nextbit-dev/storelift/internal/observability"
	"github.com/nextbit-dev/storelift/internal/services/shopify"
	"github.com/nextbit-dev/storelift/internal/store"
)

// PlatformAPI is the commerce platform surface the engine dispatches to.
type PlatformAPI interface {
	GetProduct(ctx context.Context, id int64) (*shopify.Product, error)
	FindByHandle(ctx context.Context, handle string) (*shopify.Product, error)
	CreateProduct(ctx context.Context, product *shopify.Product) (*shopify.Product, error)
	UpdateProduct(ctx context.Context, product *shopify.Product) (*shopify.Product, error)
	ListImages(ctx context.Context, productID int64) ([]shopify.Image, error)
	DeleteImage(ctx context.Context, productID, imageID int64) error
	CreateImage(ctx context.Context, productID int64, src string, position int) error
}

// ExportStore is the engine's view of the staging store.
type ExportStore interface {
	Snapshot(ctx context.Context) ([]models.ExportRecord, error)
	SetPlatformID(ctx context.Context, recordID uint, platformID int64) error
	SetUploaded(ctx context.Context, recordID uint, platformID int64) error
	SetError(ctx context.Context, recordID uint, message string) error
}

// ProductSource provides the price/stock figures submitted with uploads.
type ProductSource interface {
	GetByID(ctx context.Context, id uint) (*models.ProductRecord, error)
}

// Summary is the outcome of one sync run.
type Summary struct {
	Total    int
	Created  int
	Updated  int
	Failed   int
	Duration time.Duration
}

// Engine dispatches eligible export records to the platform in small
// concurrent batches with an enforced pause between batches. That pacing,
// together with the client's limiter, is the sole protection of the
// external rate budget.
type Engine struct {
	platform PlatformAPI
	exports  ExportStore
	products ProductSource

	batchSize int
	pause     time.Duration

	// sleep is swappable for tests.
	sleep func(time.Duration)
}

// NewEngine creates a sync engine.
func NewEngine(platform PlatformAPI, exports ExportStore, products ProductSource, cfg config.SyncConfig) *Engine {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Engine{
		platform:  platform,
		exports:   exports,
		products:  products,
		batchSize: batchSize,
		pause:     cfg.BatchPause,
		sleep:     time.Sleep,
	}
}

// Run processes a snapshot of eligible records taken at start. Per-record
// failures are isolated on that record; only persistence failure aborts
// the run.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	start := time.Now()

	snapshot, err := e.exports.Snapshot(ctx)
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{Total: len(snapshot)}
	if len(snapshot) == 0 {
		log.Println("📡 Sync: nothing eligible")
		return summary, nil
	}
	log.Printf("📡 Sync: %d record(s) eligible, batch size %d", len(snapshot), e.batchSize)

	var mu sync.Mutex
	var fatal error

	for offset := 0; offset < len(snapshot); offset += e.batchSize {
		end := offset + e.batchSize
		if end > len(snapshot) {
			end = len(snapshot)
		}
		batch := snapshot[offset:end]

		var wg sync.WaitGroup
		for i := range batch {
			record := batch[i]
			wg.Add(1)
			go func() {
				defer wg.Done()
				created, err := e.syncOne(ctx, &record)

				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil && created:
					summary.Created++
				case err == nil:
					summary.Updated++
				case errors.Is(err, store.ErrPersistenceUnavailable):
					summary.Failed++
					if fatal == nil {
						fatal = err
					}
				default:
					summary.Failed++
				}
			}()
		}
		wg.Wait()

		if fatal != nil {
			return summary, fatal
		}
		if end < len(snapshot) {
			e.sleep(e.pause)
		}
	}

	summary.Duration = time.Since(start)
	log.Printf("✅ Sync: %d created, %d updated, %d failed in %s",
		summary.Created, summary.Updated, summary.Failed, summary.Duration.Round(time.Millisecond))
	return summary, nil
}

// syncOne uploads one record and transitions its state. The bool result
// reports whether a new listing was created.
func (e *Engine) syncOne(ctx context.Context, record *models.ExportRecord) (created bool, err error) {
	timer := time.Now()
	defer func() {
		observability.UploadDuration.Observe(time.Since(timer).Seconds())
	}()

	product, err := e.products.GetByID(ctx, record.ProductID)
	if err != nil {
		return false, err
	}
	if product == nil {
		return false, e.fail(ctx, record, "product record vanished")
	}

	identity, err := e.resolveIdentity(ctx, record)
	if err != nil {
		return false, e.failWith(ctx, record, err)
	}

	payload := buildPayload(record, product)

	if !identity.Found {
		remote, err := e.platform.CreateProduct(ctx, payload)
		if err != nil {
			return false, e.failWith(ctx, record, err)
		}
		if err := e.exports.SetUploaded(ctx, record.ID, remote.ID); err != nil {
			return false, err
		}
		observability.UploadsTotal.WithLabelValues("created").Inc()
		return true, nil
	}

	payload.ID = identity.ID
	// Updates do not resend images blindly; see syncImages.
	payload.Images = nil
	if _, err := e.platform.UpdateProduct(ctx, payload); err != nil {
		return false, e.failWith(ctx, record, err)
	}
	if err := e.syncImages(ctx, identity.ID, record.ImageURLs); err != nil {
		return false, e.failWith(ctx, record, err)
	}
	if err := e.exports.SetUploaded(ctx, record.ID, identity.ID); err != nil {
		return false, err
	}
	observability.UploadsTotal.WithLabelValues("updated").Inc()
	return false, nil
}

// syncImages re-submits images only when the local count differs from the
// remote count. On mismatch the remote set is deleted and replaced
// wholesale; diffing individual images is not worth the extra calls.
func (e *Engine) syncImages(ctx context.Context, platformID int64, local []string) error {
	remote, err := e.platform.ListImages(ctx, platformID)
	if err != nil {
		return err
	}
	if len(remote) == len(local) {
		return nil
	}

	for _, img := range remote {
		if err := e.platform.DeleteImage(ctx, platformID, img.ID); err != nil {
			return err
		}
	}
	for i, src := range local {
		if err := e.platform.CreateImage(ctx, platformID, src, i+1); err != nil {
			return err
		}
	}
	return nil
}

// failWith records a platform failure on the record. Persistence trouble
// while recording escalates to the run-fatal error.
func (e *Engine) failWith(ctx context.Context, record *models.ExportRecord, cause error) error {
	if errors.Is(cause, store.ErrPersistenceUnavailable) {
		return cause
	}
	label := "error"
	if errors.Is(cause, shopify.ErrPlatformRejected) {
		label = "rejected"
	} else if errors.Is(cause, shopify.ErrRateLimited) {
		label = "rate_limited"
	}
	observability.UploadsTotal.WithLabelValues(label).Inc()
	log.Printf("❌ Sync %s: %v", record.Barcode, cause)
	return e.fail(ctx, record, cause.Error())
}

func (e *Engine) fail(ctx context.Context, record *models.ExportRecord, message string) error {
	if err := e.exports.SetError(ctx, record.ID, message); err != nil {
		return err
	}
	return fmt.Errorf("record %s: %s", record.Barcode, message)
}

// buildPayload maps a staging record onto the platform product resource:
// full metadata, metafields, tags, and the single price/quantity variant.
func buildPayload(record *models.ExportRecord, product *models.ProductRecord) *shopify.Product {
	metafields := make([]shopify.Metafield, 0)
	for _, f := range record.DecodeMetafields() {
		metafields = append(metafields, shopify.Metafield{
			Namespace: f.Namespace,
			Key:       f.Key,
			Value:     f.Value,
			Type:      f.Type,
		})
	}

	images := make([]shopify.Image, 0, len(record.ImageURLs))
	for i, src := range record.ImageURLs {
		images = append(images, shopify.Image{Src: src, Position: i + 1})
	}

	return &shopify.Product{
		Title:       record.Title,
		BodyHTML:    record.DescriptionHTML,
		Vendor:      product.Brand,
		ProductType: product.Category,
		Handle:      record.Handle,
		Tags:        strings.Join(record.Tags, ", "),
		Status:      "active",
		Variants: []shopify.Variant{{
			SKU:               product.MPN,
			Barcode:           product.Barcode,
			Price:             fmt.Sprintf("%.2f", product.SellPrice),
			InventoryQuantity: product.StockQty,
		}},
		Images:     images,
		Metafields: metafields,
	}
}
