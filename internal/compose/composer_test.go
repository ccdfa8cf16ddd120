package compose

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/nextbit-dev/storelift/internal/enrich"
	"github.com/nextbit-dev/storelift/internal/models"
)

func TestTruncateOnWord_RuneSafe(t *testing.T) {
	// An umlaut straddling the byte limit must not be split in half.
	s := strings.Repeat("a", 149) + "ür"
	got := truncateOnWord(s, 150)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: %q", got)
	}
	if len(got) > 150 {
		t.Errorf("len = %d, want at most 150", len(got))
	}
}

func notebookProduct(t *testing.T) *models.ProductRecord {
	t.Helper()
	doc, err := json.Marshal(models.SpecificationSet{
		{Name: "Prozessor", Value: "Intel Core i7-1355U"},
		{Name: "Arbeitsspeicher", Value: "16 GB"},
		{Name: "SSD", Value: "512 GB"},
		{Name: "Bildschirmdiagonale", Value: "15.6 Zoll"},
		{Name: "Betriebssystem", Value: "Windows 11 Pro"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return &models.ProductRecord{
		Barcode:      "4711001234567",
		Name:         "XPS 15 9530 Business Edition",
		Brand:        "Dell",
		Category:     "Notebooks",
		SpecDocument: doc,
	}
}

func resolve(t *testing.T, product *models.ProductRecord) enrich.Result {
	t.Helper()
	attrs := models.NewAttributeMap()
	attrs.SetIfAbsent(models.KeyProcessor, "Intel Core i7-1355U")
	attrs.SetIfAbsent(models.KeyRAM, "16 GB")
	attrs.SetIfAbsent(models.KeyStorage, "512 GB")
	attrs.SetIfAbsent(models.KeyDisplaySize, "15.6 Zoll")
	attrs.SetIfAbsent(models.KeyOS, "Windows 11 Pro")
	return enrich.Result{Attrs: attrs, SpecRowCount: 5}
}

func TestCompose_FullListing(t *testing.T) {
	product := notebookProduct(t)
	listing := NewComposer().Compose(product, resolve(t, product), nil)

	if listing.Title == "" {
		t.Error("title must not be empty")
	}
	if strings.Contains(listing.Title, product.Barcode) {
		t.Errorf("title %q must never contain the trade identifier", listing.Title)
	}
	if !HasMarker(listing.DescriptionHTML) {
		t.Error("generated description must carry the wrapper marker")
	}
	if got := strings.Count(listing.SpecTableHTML, "<tr>"); got != 5 {
		t.Errorf("spec table has %d rows, want 5", got)
	}

	wantTags := []string{"Dell", "Notebooks"}
	for _, want := range wantTags {
		found := false
		for _, tag := range listing.Tags {
			if tag == want {
				found = true
			}
		}
		if !found {
			t.Errorf("tags %v missing %q", listing.Tags, want)
		}
	}
}

func TestCompose_IdempotentWhenMarkerPresent(t *testing.T) {
	product := notebookProduct(t)
	composer := NewComposer()
	res := resolve(t, product)

	first := composer.Compose(product, res, nil)
	prior := &models.ExportRecord{
		Title:            first.Title,
		DescriptionHTML:  first.DescriptionHTML,
		SpecTableHTML:    first.SpecTableHTML,
		Tags:             first.Tags,
		ShortDescription: first.ShortDescription,
		PromoText:        first.PromoText,
	}

	second := composer.Compose(product, res, prior)

	if second.DescriptionHTML != first.DescriptionHTML {
		t.Error("recomposition must return the stored description byte-identical")
	}
	if second.PromoText != first.PromoText {
		t.Error("recomposition must not churn promo text")
	}
	if strings.Count(second.DescriptionHTML, Marker) != 1 {
		t.Errorf("wrapper marker appears %d times, nesting occurred",
			strings.Count(second.DescriptionHTML, Marker))
	}
}

func TestCompose_EmptySpecFallback(t *testing.T) {
	product := &models.ProductRecord{
		Barcode:  "4711001234567",
		Name:     "NB-4711",
		Brand:    "Acme",
		Category: "Notebooks",
	}
	listing := NewComposer().Compose(product, enrich.Result{Attrs: models.NewAttributeMap()}, nil)

	if listing.SpecTableHTML != "" {
		t.Errorf("spec table = %q, must be absent without valid rows", listing.SpecTableHTML)
	}
	if !strings.Contains(listing.Title, "Acme") || !strings.Contains(listing.Title, "Notebooks") {
		t.Errorf("title %q must fall back to brand+category composition", listing.Title)
	}
}

func TestBuildTitle_PrefersWellFormedName(t *testing.T) {
	product := notebookProduct(t)
	title := BuildTitle(product, models.NewAttributeMap())
	if title != "XPS 15 9530 Business Edition" {
		t.Errorf("title = %q, a well-formed display name must be used verbatim", title)
	}
}

func TestBuildTitle_RejectsBareCode(t *testing.T) {
	product := &models.ProductRecord{
		Name:     "NB15-X200-512/W11P-PRO4",
		Brand:    "Lenovo",
		Category: "Notebooks",
	}
	attrs := models.NewAttributeMap()
	attrs.SetIfAbsent(models.KeyProcessor, "Intel Core i5")

	title := BuildTitle(product, attrs)
	if title == product.Name {
		t.Errorf("title = %q, bare article codes must not be used verbatim", title)
	}
	if !strings.HasPrefix(title, "Lenovo") {
		t.Errorf("title = %q, assembled title must start with the brand", title)
	}
}

func TestBuildTitle_Bounded(t *testing.T) {
	attrs := models.NewAttributeMap()
	attrs.SetIfAbsent(models.KeyProcessor, strings.Repeat("Intel Core Ultra 9 185H ", 4))
	attrs.SetIfAbsent(models.KeyRAM, "64 GB DDR5-5600 SO-DIMM Dual Channel")
	attrs.SetIfAbsent(models.KeyStorage, "2 TB PCIe 4.0 NVMe SSD")
	product := &models.ProductRecord{Name: "ZB-17", Brand: "HP", Category: "Mobile Workstations"}

	title := BuildTitle(product, attrs)
	if len(title) > 150 {
		t.Errorf("title length %d exceeds bound", len(title))
	}
}

func TestRenderSpecTable_SkipsEmptyPairs(t *testing.T) {
	table := RenderSpecTable(models.SpecificationSet{
		{Name: "CPU", Value: "Ryzen 7"},
		{Name: "", Value: "orphan"},
		{Name: "orphan", Value: ""},
		{Name: "RAM", Value: "32 GB"},
	})
	if got := strings.Count(table, "<tr>"); got != 2 {
		t.Errorf("table has %d rows, want 2", got)
	}
}

func TestRenderSpecTable_EscapesText(t *testing.T) {
	table := RenderSpecTable(models.SpecificationSet{
		{Name: "Ports", Value: `2x USB <3.0> & "Typ-C"`},
	})
	if strings.Contains(table, "<3.0>") {
		t.Error("cell text must be escaped")
	}
	if !strings.Contains(table, "&lt;3.0&gt;") {
		t.Errorf("expected escaped markup, got %q", table)
	}
}

func TestBuildPromoText_FromPools(t *testing.T) {
	attrs := models.NewAttributeMap()
	attrs.SetIfAbsent(models.KeyProcessor, "Ryzen 5 7600")

	promo := BuildPromoText(SegmentGaming, attrs)

	headlineOK := false
	for _, h := range promoHeadlines[SegmentGaming] {
		if strings.HasPrefix(promo, h) {
			headlineOK = true
		}
	}
	if !headlineOK {
		t.Errorf("promo %q does not start with a gaming headline", promo)
	}
	ctaOK := false
	for _, cta := range promoCTAs {
		if strings.HasSuffix(promo, cta) {
			ctaOK = true
		}
	}
	if !ctaOK {
		t.Errorf("promo %q does not end with a known call-to-action", promo)
	}
	if !strings.Contains(promo, "Ryzen 5 7600") {
		t.Errorf("promo %q missing the feature clause", promo)
	}
}

func TestDetectSegment(t *testing.T) {
	gaming := models.NewAttributeMap()
	gaming.SetIfAbsent(models.KeyGPU, "NVIDIA GeForce RTX 4060")

	cases := []struct {
		name    string
		product *models.ProductRecord
		attrs   models.AttributeMap
		want    Segment
	}{
		{"gpu", &models.ProductRecord{Name: "Erazer X1"}, gaming, SegmentGaming},
		{"business line", &models.ProductRecord{Name: "Lenovo ThinkPad T14"}, models.NewAttributeMap(), SegmentBusiness},
		{"ultrabook", &models.ProductRecord{Name: "Asus Zenbook 14"}, models.NewAttributeMap(), SegmentUltrabook},
		{"generic", &models.ProductRecord{Name: "Aspire 3"}, models.NewAttributeMap(), SegmentGeneric},
	}
	for _, c := range cases {
		if got := DetectSegment(c.product, c.attrs); got != c.want {
			t.Errorf("%s: segment = %q, want %q", c.name, got, c.want)
		}
	}
}
