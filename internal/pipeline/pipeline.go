package pipeline

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nextbit-dev/storelift/internal/compose"
	"github.com/nextbit-dev/storelift/internal/enrich"
	"github.com/nextbit-dev/storelift/internal/models"
	"github.com/nextbit-dev/storelift/internal/observability"
	"github.com/nextbit-dev/storelift/internal/store"
)

// ProductSource lists the consolidated product records to enrich.
type ProductSource interface {
	List(ctx context.Context) ([]models.ProductRecord, error)
}

// ExportSink reads and writes the export-staging records.
type ExportSink interface {
	Get(ctx context.Context, productID uint) (*models.ExportRecord, error)
	Upsert(ctx context.Context, product *models.ProductRecord, listing models.GeneratedListing, attrs models.AttributeMap, images []string) (*models.ExportRecord, error)
}

// AttributeResolver runs the layered enrichment for one product.
type AttributeResolver interface {
	Resolve(ctx context.Context, product *models.ProductRecord) enrich.Result
}

// Summary reports the outcome of one enrichment run.
type Summary struct {
	RunID    string        `json:"runId"`
	Total    int           `json:"total"`
	Composed int           `json:"composed"`
	Reused   int           `json:"reused"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// Runner drives a full enrichment run: every product flows through
// resolution and composition into the staging store. Products are
// processed by a bounded worker pool; one product failing never stops
// the others, only storage failure aborts the run.
type Runner struct {
	products ProductSource
	exports  ExportSink
	resolver AttributeResolver
	composer *compose.Composer
	workers  int
}

// NewRunner wires an enrichment runner.
func NewRunner(products ProductSource, exports ExportSink, resolver AttributeResolver, composer *compose.Composer, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		products: products,
		exports:  exports,
		resolver: resolver,
		composer: composer,
		workers:  workers,
	}
}

// Run enriches every product once. Returns the summary and, when the
// persistence layer failed, the fatal error that aborted the run.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	started := time.Now()
	runID := uuid.NewString()[:8]

	products, err := r.products.List(ctx)
	if err != nil {
		return Summary{RunID: runID}, err
	}

	summary := Summary{RunID: runID, Total: len(products)}
	log.Printf("🔄 enrich run %s: %d product(s)", runID, len(products))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu    sync.Mutex
		fatal error
		wg    sync.WaitGroup
	)
	jobs := make(chan models.ProductRecord)

	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for product := range jobs {
				reused, err := r.processOne(runCtx, &product)
				mu.Lock()
				switch {
				case err != nil:
					summary.Failed++
					if errors.Is(err, store.ErrPersistenceUnavailable) && fatal == nil {
						fatal = err
						cancel()
					}
				case reused:
					summary.Reused++
				default:
					summary.Composed++
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for _, product := range products {
		select {
		case jobs <- product:
		case <-runCtx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	summary.Duration = time.Since(started)
	if fatal != nil {
		log.Printf("🛑 enrich run %s aborted: %v", runID, fatal)
		return summary, fatal
	}
	log.Printf("✅ enrich run %s done: %d composed, %d reused, %d failed in %s",
		runID, summary.Composed, summary.Reused, summary.Failed, summary.Duration.Round(time.Millisecond))
	return summary, nil
}

// processOne runs one product through resolution, composition and
// staging. The bool result reports whether the prior listing was reused
// verbatim instead of being composed fresh.
func (r *Runner) processOne(ctx context.Context, product *models.ProductRecord) (bool, error) {
	prior, err := r.exports.Get(ctx, product.ID)
	if err != nil {
		return false, err
	}
	reused := prior != nil && compose.HasMarker(prior.DescriptionHTML)

	res := r.resolver.Resolve(ctx, product)
	observability.RecordsResolved.WithLabelValues(deepestLayer(res.LayersRun)).Inc()
	if res.SpecRowCount == 0 {
		observability.RecordsWithoutTable.Inc()
		log.Printf("⚠️ %s: composed without a specification table", product.Barcode)
	}

	listing := r.composer.Compose(product, res, prior)
	if _, err := r.exports.Upsert(ctx, product, listing, res.Attrs, product.ImageURLs); err != nil {
		log.Printf("❌ %s: staging failed: %v", product.Barcode, err)
		return false, err
	}
	return reused, nil
}

func deepestLayer(layers []string) string {
	if len(layers) == 0 {
		return "none"
	}
	return layers[len(layers)-1]
}
