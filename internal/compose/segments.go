package compose

import (
	"strings"

	"github.com/nextbit-dev/storelift/internal/attributes"
	"github.com/nextbit-dev/storelift/internal/models"
)

// Segment is the coarse product-use classification driving templated copy.
type Segment string

const (
	SegmentGaming    Segment = "gaming"
	SegmentBusiness  Segment = "business"
	SegmentUltrabook Segment = "ultrabook"
	SegmentGeneric   Segment = "generic"
)

var businessLines = []string{
	"thinkpad", "latitude", "elitebook", "probook", "lifebook", "toughbook", "business",
}

var ultrabookHints = []string{
	"ultrabook", "zenbook", "swift", "gram", "air", "slim",
}

// DetectSegment classifies a product by GPU class, category and well-known
// product line names. Gaming wins over the rest because a dedicated GPU is
// the strongest merchandising signal.
func DetectSegment(product *models.ProductRecord, attrs models.AttributeMap) Segment {
	name := strings.ToLower(product.Name)
	category := strings.ToLower(product.Category)
	gpu := strings.ToLower(attrs.Get(models.KeyGPU))

	if strings.Contains(category, "gaming") || strings.Contains(name, "gaming") ||
		attrs.Get(models.KeyPCType) == string(attributes.PCTypeGaming) ||
		containsAny(gpu, "rtx", "gtx", "radeon rx", "arc a") {
		return SegmentGaming
	}
	for _, line := range businessLines {
		if strings.Contains(name, line) || strings.Contains(category, line) {
			return SegmentBusiness
		}
	}
	for _, hint := range ultrabookHints {
		if strings.Contains(name, hint) {
			return SegmentUltrabook
		}
	}
	return SegmentGeneric
}

func containsAny(s string, fragments ...string) bool {
	for _, f := range fragments {
		if f != "" && strings.Contains(s, f) {
			return true
		}
	}
	return false
}
