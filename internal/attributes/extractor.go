package attributes

import (
	"strings"

	"github.com/nextbit-dev/storelift/internal/models"
)

// Extractor turns a structured specification list into a canonical
// attribute map using keyword matching against a synonym table.
type Extractor struct {
	table SynonymTable
}

// NewExtractor creates an extractor over the default synonym table.
func NewExtractor() *Extractor {
	return &Extractor{table: DefaultSynonyms()}
}

// Extract walks the specification entries in order and fills an attribute
// map. The first entry matching a canonical key wins; later entries never
// override. Boilerplate negative values are discarded, except for touch
// where a negative answer is information. An empty input yields an empty
// map.
func (e *Extractor) Extract(set models.SpecificationSet, category string) models.AttributeMap {
	attrs := models.NewAttributeMap()
	if len(set) == 0 {
		return attrs
	}

	for _, entry := range set {
		name := strings.ToLower(strings.TrimSpace(entry.Name))
		value := strings.TrimSpace(entry.Value)
		if name == "" || value == "" {
			continue
		}

		key, ok := e.matchKey(name)
		if !ok {
			continue
		}
		if key == models.KeyTouch {
			// Touch is tri-state; normalize whatever the sheet says,
			// negatives included.
			attrs.SetIfAbsent(key, string(ClassifyTouch(value)))
			continue
		}
		if isNegativeValue(value) {
			continue
		}
		if entry.Unit != "" && !strings.Contains(value, entry.Unit) {
			value = value + " " + entry.Unit
		}
		attrs.SetIfAbsent(key, value)
	}

	e.derive(attrs, category)
	return attrs
}

// matchKey finds the first canonical key whose synonym list matches the
// entry name. Canonical key order is fixed, so matching is deterministic
// even when a name could match several keys.
func (e *Extractor) matchKey(lowerName string) (models.AttributeKey, bool) {
	for _, key := range models.CanonicalKeys {
		for _, syn := range e.table.Synonyms[key] {
			if strings.Contains(lowerName, syn) {
				return key, true
			}
		}
	}
	return "", false
}

// derive fills classification keys computed from values already extracted.
func (e *Extractor) derive(attrs models.AttributeMap, category string) {
	if v := attrs.Get(models.KeyDisplayType); v != "" {
		if tech := ClassifyDisplayTechnology(v); tech != DisplayUnknown {
			attrs[models.KeyDisplayType] = string(tech)
		}
	}
	if !CategoryIsBlacklisted(category) {
		if pcType := ClassifyPCType(category, attrs); pcType != PCTypeNone {
			attrs.SetIfAbsent(models.KeyPCType, string(pcType))
		}
	}
}

func isNegativeValue(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, neg := range negativeValues {
		if v == neg {
			return true
		}
	}
	return false
}

// CategoryIsBlacklisted reports whether the category names a non-device
// (accessory, cable, component) for which form-factor inference is
// suppressed.
func CategoryIsBlacklisted(category string) bool {
	c := strings.ToLower(category)
	for _, frag := range categoryBlacklist {
		if strings.Contains(c, frag) {
			return true
		}
	}
	return false
}
