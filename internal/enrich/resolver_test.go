package enrich

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/nextbit-dev/storelift/internal/attributes"
	"github.com/nextbit-dev/storelift/internal/models"
)

type fakeFinder struct {
	page  *CandidatePage
	err   error
	calls int
}

func (f *fakeFinder) FindValidated(ctx context.Context, product *models.ProductRecord) (*CandidatePage, error) {
	f.calls++
	return f.page, f.err
}

type fakeAI struct {
	attrs models.AttributeMap
	err   error
	calls int
}

func (f *fakeAI) ExtractAttributes(ctx context.Context, page *CandidatePage) (models.AttributeMap, error) {
	f.calls++
	return f.attrs, f.err
}

func specDocument(t *testing.T, entries ...models.SpecEntry) []byte {
	t.Helper()
	doc, err := json.Marshal(entries)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func fullSpecProduct(t *testing.T) *models.ProductRecord {
	return &models.ProductRecord{
		Barcode:  "4711001234567",
		Name:     "Testbook 15",
		Category: "Notebooks",
		SpecDocument: specDocument(t,
			models.SpecEntry{Name: "Processor", Value: "Intel Core i5-1335U"},
			models.SpecEntry{Name: "RAM", Value: "8 GB"},
			models.SpecEntry{Name: "SSD", Value: "256 GB"},
			models.SpecEntry{Name: "Graphics", Value: "Intel UHD"},
			models.SpecEntry{Name: "Operating System", Value: "Windows 11"},
		),
	}
}

func TestResolve_ShortCircuitsWhenGateSatisfied(t *testing.T) {
	finder := &fakeFinder{page: &CandidatePage{URL: "http://example.com", Text: "x"}}
	ai := &fakeAI{attrs: models.NewAttributeMap()}
	resolver := NewResolver(attributes.NewExtractor(), finder, ai)

	res := resolver.Resolve(context.Background(), fullSpecProduct(t))

	if finder.calls != 0 || ai.calls != 0 {
		t.Errorf("layers 2/3 ran (%d, %d calls) despite a satisfied gate", finder.calls, ai.calls)
	}
	if len(res.LayersRun) != 1 || res.LayersRun[0] != "local" {
		t.Errorf("LayersRun = %v, want [local]", res.LayersRun)
	}
	if res.SpecRowCount != 5 {
		t.Errorf("SpecRowCount = %d, want 5", res.SpecRowCount)
	}
}

func TestResolve_MergeNeverOverwritesLocalValues(t *testing.T) {
	product := &models.ProductRecord{
		Barcode:  "4711001234567",
		Category: "Notebooks",
		SpecDocument: specDocument(t,
			models.SpecEntry{Name: "RAM", Value: "8GB"},
		),
	}

	external := models.NewAttributeMap()
	external.SetIfAbsent(models.KeyRAM, "16GB")
	external.SetIfAbsent(models.KeyProcessor, "Intel Core i3-N305")

	finder := &fakeFinder{page: &CandidatePage{URL: "http://example.com/p", Text: "4711001234567"}}
	ai := &fakeAI{attrs: external}
	resolver := NewResolver(attributes.NewExtractor(), finder, ai)

	res := resolver.Resolve(context.Background(), product)

	if got := res.Attrs.Get(models.KeyRAM); got != "8GB" {
		t.Errorf("ram = %q, lower-trust layer must not overwrite local value", got)
	}
	if got := res.Attrs.Get(models.KeyProcessor); got != "Intel Core i3-N305" {
		t.Errorf("processor = %q, gap-filling from layer 3 failed", got)
	}
	if res.SourceURL != "http://example.com/p" {
		t.Errorf("SourceURL = %q", res.SourceURL)
	}
}

func TestResolve_ValidationFailureContributesNothing(t *testing.T) {
	product := &models.ProductRecord{Barcode: "4711001234567", Category: "Notebooks"}

	finder := &fakeFinder{err: ErrValidationFailed}
	ai := &fakeAI{attrs: models.NewAttributeMap()}
	resolver := NewResolver(attributes.NewExtractor(), finder, ai)

	res := resolver.Resolve(context.Background(), product)

	if len(res.Attrs) != 0 {
		t.Errorf("attrs = %v, a rejected candidate must never contribute", res.Attrs)
	}
	if ai.calls != 0 {
		t.Error("layer 3 ran without a validated page")
	}
}

func TestResolve_SourceUnavailableDegradesToLocalOnly(t *testing.T) {
	product := &models.ProductRecord{
		Barcode: "4711001234567",
		SpecDocument: specDocument(t,
			models.SpecEntry{Name: "RAM", Value: "16 GB"},
		),
	}

	finder := &fakeFinder{err: ErrSourceUnavailable}
	resolver := NewResolver(attributes.NewExtractor(), finder, &fakeAI{})

	res := resolver.Resolve(context.Background(), product)

	if got := res.Attrs.Get(models.KeyRAM); got != "16 GB" {
		t.Errorf("ram = %q, layer 1 output must survive source failure", got)
	}
}

func TestResolve_AIParseFailureDegradesToEmptyContribution(t *testing.T) {
	product := &models.ProductRecord{Barcode: "4711001234567"}

	finder := &fakeFinder{page: &CandidatePage{URL: "http://example.com/p", Text: "4711001234567"}}
	ai := &fakeAI{err: ErrParseFailure}
	resolver := NewResolver(attributes.NewExtractor(), finder, ai)

	res := resolver.Resolve(context.Background(), product)

	if len(res.Attrs) != 0 {
		t.Errorf("attrs = %v, parse failure must contribute nothing", res.Attrs)
	}
	if res.SourceURL == "" {
		t.Error("validated page URL should still be recorded")
	}
}

func TestParseAttributeLines_Defensive(t *testing.T) {
	text := "processor|Intel Core i7-13700H\n" +
		"ram|16 GB DDR5\n" +
		"garbage line without delimiter\n" +
		"made_up_key|value\n" +
		"storage|unknown\n" +
		"gpu|\n" +
		"os|Windows 11 Home"

	attrs := ParseAttributeLines(text)

	if got := attrs.Get(models.KeyProcessor); got != "Intel Core i7-13700H" {
		t.Errorf("processor = %q", got)
	}
	if got := attrs.Get(models.KeyRAM); got != "16 GB DDR5" {
		t.Errorf("ram = %q", got)
	}
	if got := attrs.Get(models.KeyOS); got != "Windows 11 Home" {
		t.Errorf("os = %q", got)
	}
	if got := attrs.Get(models.KeyStorage); got != "" {
		t.Errorf("storage = %q, filler values must be skipped", got)
	}
	if got := attrs.Get(models.KeyGPU); got != "" {
		t.Errorf("gpu = %q, empty values must be skipped", got)
	}
	if len(attrs) != 3 {
		t.Errorf("got %d attributes, want 3: %v", len(attrs), attrs)
	}
}

func TestPageMatchesIdentity(t *testing.T) {
	product := &models.ProductRecord{Barcode: "4711001234567", MPN: "TB15-X200"}

	if pageMatchesIdentity("<html>Some other laptop 9999</html>", product) {
		t.Error("page without identity markers must not validate")
	}
	if !pageMatchesIdentity("<html>EAN: 4711001234567</html>", product) {
		t.Error("page carrying the trade identifier must validate")
	}
	if !pageMatchesIdentity("<html>Model TB15-X200</html>", product) {
		t.Error("page carrying the part number must validate")
	}
}
