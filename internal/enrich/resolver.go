package enrich

import (
	"context"
	"errors"
	"log"

	"github.com/nextbit-dev/storelift/internal/attributes"
	"github.com/nextbit-dev/storelift/internal/models"
)

// requiredKeys is the completeness gate: when local structured data already
// answers all five, the expensive layers never run.
var requiredKeys = []models.AttributeKey{
	models.KeyProcessor, models.KeyRAM, models.KeyStorage,
	models.KeyGPU, models.KeyOS,
}

// PageFinder locates and validates an external candidate page for a product.
// A nil page with a nil error means "not found", which is a normal outcome.
type PageFinder interface {
	FindValidated(ctx context.Context, product *models.ProductRecord) (*CandidatePage, error)
}

// AttributeExtractor pulls literally-present attribute values out of a
// validated page.
type AttributeExtractor interface {
	ExtractAttributes(ctx context.Context, page *CandidatePage) (models.AttributeMap, error)
}

// CandidatePage is a fetched external product page that passed identity
// validation. Text is the stripped, size-capped body used for extraction.
type CandidatePage struct {
	URL  string
	Text string
}

// Result is the outcome of one product's resolution.
type Result struct {
	Attrs models.AttributeMap
	// RawDescription carries over existing descriptive text found locally.
	RawDescription string
	// SourceURL is set when a validated external page contributed.
	SourceURL string
	// SpecRowCount is the number of usable structured rows seen locally;
	// zero signals downstream that the record composed without a table and
	// should be retried on a later run.
	SpecRowCount int
	// LayersRun names the layers that executed, in order.
	LayersRun []string
}

// Resolver escalates through three layers to reach the most complete
// attribute map achievable while minimizing calls to expensive sources.
// Layers run strictly in sequence; each is gated by the previous one.
type Resolver struct {
	extractor *attributes.Extractor
	finder    PageFinder
	ai        AttributeExtractor
}

// NewResolver wires the three layers. finder and ai may be nil, which
// disables the corresponding layer.
func NewResolver(extractor *attributes.Extractor, finder PageFinder, ai AttributeExtractor) *Resolver {
	return &Resolver{extractor: extractor, finder: finder, ai: ai}
}

// Resolve runs the layer chain for one product. It never fails on source
// trouble: every degraded layer contributes nothing and resolution carries
// on with what earlier layers produced.
func (r *Resolver) Resolve(ctx context.Context, product *models.ProductRecord) Result {
	spec := product.Specifications()

	// Layer 1: local structured data.
	res := Result{
		Attrs:          r.extractor.Extract(spec, product.Category),
		RawDescription: product.RawDescription,
		SpecRowCount:   countUsableRows(spec),
		LayersRun:      []string{"local"},
	}

	if res.Attrs.Has(requiredKeys...) {
		return res
	}
	if r.finder == nil {
		return res
	}

	// Layer 2: external lookup with identity validation.
	res.LayersRun = append(res.LayersRun, "lookup")
	page, err := r.finder.FindValidated(ctx, product)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidationFailed):
			log.Printf("🔎 %s: external candidates rejected by identity validation", product.Barcode)
		case errors.Is(err, ErrSourceUnavailable):
			log.Printf("🔎 %s: external lookup sources unavailable", product.Barcode)
		default:
			log.Printf("🔎 %s: external lookup failed: %v", product.Barcode, err)
		}
		return res
	}
	if page == nil {
		return res
	}
	res.SourceURL = page.URL

	if r.ai == nil {
		return res
	}

	// Layer 3: AI-assisted extraction over the validated page only.
	res.LayersRun = append(res.LayersRun, "ai")
	extracted, err := r.ai.ExtractAttributes(ctx, page)
	if err != nil {
		// Unparseable output degrades to an empty contribution.
		log.Printf("🤖 %s: AI extraction degraded: %v", product.Barcode, err)
		return res
	}

	// Merge policy: externally derived values fill gaps only. Local
	// structured data is never overwritten by a lower-trust source.
	adopted := res.Attrs.MergeUnder(extracted)
	if adopted > 0 {
		log.Printf("🤖 %s: adopted %d attribute(s) from %s", product.Barcode, adopted, page.URL)
	}
	return res
}

func countUsableRows(set models.SpecificationSet) int {
	n := 0
	for _, entry := range set {
		if entry.Name != "" && entry.Value != "" {
			n++
		}
	}
	return n
}
