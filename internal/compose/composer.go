package compose

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nextbit-dev/storelift/internal/enrich"
	"github.com/nextbit-dev/storelift/internal/models"
)

const (
	// maxTitleLength bounds assembled titles; truncation happens on a word
	// boundary just below it.
	maxTitleLength = 150
	// minUsableName is the shortest existing display name accepted as a
	// title verbatim.
	minUsableName = 20
)

// Composer renders marketplace content from resolved attributes. All
// generation is template assembly over raw extracted content; prior
// generated output is never re-parsed or re-wrapped.
type Composer struct{}

// NewComposer creates a composer.
func NewComposer() *Composer { return &Composer{} }

// Compose builds the full listing for a product. When the prior record's
// description already carries the wrapper marker, the prior listing is
// reused verbatim: composing twice must never nest wrappers or churn
// content hashes.
func (c *Composer) Compose(product *models.ProductRecord, res enrich.Result, prior *models.ExportRecord) models.GeneratedListing {
	if prior != nil && HasMarker(prior.DescriptionHTML) {
		return models.GeneratedListing{
			Title:            prior.Title,
			DescriptionHTML:  prior.DescriptionHTML,
			SpecTableHTML:    prior.SpecTableHTML,
			Tags:             prior.Tags,
			ShortDescription: prior.ShortDescription,
			PromoText:        prior.PromoText,
		}
	}

	attrs := res.Attrs
	segment := DetectSegment(product, attrs)
	table := RenderSpecTable(product.Specifications())

	return models.GeneratedListing{
		Title:            BuildTitle(product, attrs),
		DescriptionHTML:  RenderDescription(product, attrs, segment, table, res.RawDescription),
		SpecTableHTML:    table,
		Tags:             BuildTags(product, attrs, segment),
		ShortDescription: buildShortDescription(product, attrs),
		PromoText:        BuildPromoText(segment, attrs),
	}
}

// bareCodePattern matches names that are just an article or category code
// (all caps, digits and separators), useless as a customer-facing title.
var bareCodePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9./_-]*$`)

// eanLikeToken matches long digit runs; the trade identifier never appears
// in a title.
var eanLikeToken = regexp.MustCompile(`^\d{8,}$`)

// BuildTitle prefers a well-formed existing display name verbatim. Short
// names and bare article codes fall back to assembly from brand, cleaned
// model tokens, category and up to five attribute strings.
func BuildTitle(product *models.ProductRecord, attrs models.AttributeMap) string {
	name := strings.TrimSpace(product.Name)
	if len(name) >= minUsableName && !bareCodePattern.MatchString(name) {
		return truncateOnWord(stripEANTokens(name), maxTitleLength)
	}

	parts := make([]string, 0, 8)
	if product.Brand != "" {
		parts = append(parts, product.Brand)
	}
	if tokens := cleanModelTokens(name, product.Brand); tokens != "" {
		parts = append(parts, tokens)
	}
	if product.Category != "" {
		parts = append(parts, product.Category)
	}
	for _, key := range []models.AttributeKey{
		models.KeyProcessor, models.KeyRAM, models.KeyStorage,
		models.KeyDisplaySize, models.KeyOS,
	} {
		if v := attrs.Get(key); v != "" {
			parts = append(parts, v)
		}
	}

	return truncateOnWord(strings.Join(parts, " "), maxTitleLength)
}

// cleanModelTokens removes the brand, EAN-like digit runs and separator
// noise from a raw display name, leaving the model designation.
func cleanModelTokens(name, brand string) string {
	var kept []string
	for _, token := range strings.Fields(name) {
		if eanLikeToken.MatchString(token) {
			continue
		}
		if brand != "" && strings.EqualFold(token, brand) {
			continue
		}
		if token == "-" || token == "|" || token == "/" {
			continue
		}
		kept = append(kept, token)
	}
	return strings.Join(kept, " ")
}

func stripEANTokens(name string) string {
	var kept []string
	for _, token := range strings.Fields(name) {
		if eanLikeToken.MatchString(token) {
			continue
		}
		kept = append(kept, token)
	}
	return strings.Join(kept, " ")
}

func truncateOnWord(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Never cut inside a multi-byte rune.
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	cut := s[:max]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " -,:;")
}

func buildShortDescription(product *models.ProductRecord, attrs models.AttributeMap) string {
	parts := make([]string, 0, 4)
	if product.Brand != "" {
		parts = append(parts, product.Brand)
	}
	if product.Category != "" {
		parts = append(parts, product.Category)
	}
	for _, key := range []models.AttributeKey{models.KeyProcessor, models.KeyRAM, models.KeyStorage} {
		if v := attrs.Get(key); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " · ")
}
