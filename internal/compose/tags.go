package compose

import (
	"strings"

	"github.com/nextbit-dev/storelift/internal/attributes"
	"github.com/nextbit-dev/storelift/internal/models"
)

// maxAttributeTags bounds how many attribute-derived tags join the base
// brand/category/segment set.
const maxAttributeTags = 4

// BuildTags produces the normalized (title-case, deduplicated) tag set from
// brand, category, segment and category-specific attribute rules.
func BuildTags(product *models.ProductRecord, attrs models.AttributeMap, segment Segment) []string {
	candidates := []string{product.Brand, product.Category}
	if segment != SegmentGeneric {
		candidates = append(candidates, string(segment))
	}

	attrTags := attributeTags(product.Category, attrs)
	if len(attrTags) > maxAttributeTags {
		attrTags = attrTags[:maxAttributeTags]
	}
	candidates = append(candidates, attrTags...)

	seen := make(map[string]bool, len(candidates))
	tags := make([]string, 0, len(candidates))
	for _, c := range candidates {
		tag := titleCase(strings.TrimSpace(c))
		if tag == "" || seen[strings.ToLower(tag)] {
			continue
		}
		seen[strings.ToLower(tag)] = true
		tags = append(tags, tag)
	}
	return tags
}

// attributeTags applies the rule set for the product's category family.
// Notebook listings tag differently than monitors or loose components.
func attributeTags(category string, attrs models.AttributeMap) []string {
	c := strings.ToLower(category)
	switch {
	case strings.Contains(c, "monitor") || strings.Contains(c, "display"):
		return monitorTags(attrs)
	case attributes.CategoryIsBlacklisted(category):
		return componentTags(attrs)
	default:
		return notebookTags(attrs)
	}
}

func notebookTags(attrs models.AttributeMap) []string {
	var tags []string
	if pcType := attrs.Get(models.KeyPCType); pcType != "" && pcType != string(attributes.PCTypeNone) {
		tags = append(tags, pcType)
	}
	if bucket := attributes.ClassifyResolution(attrs.Get(models.KeyResolution)); bucket != attributes.ResolutionUnknown {
		tags = append(tags, string(bucket))
	}
	if attrs.Get(models.KeyTouch) == string(attributes.TouchYes) {
		tags = append(tags, "Touchscreen")
	}
	if os := attrs.Get(models.KeyOS); os != "" {
		tags = append(tags, osFamily(os))
	}
	return tags
}

func monitorTags(attrs models.AttributeMap) []string {
	var tags []string
	if bucket := attributes.ClassifyResolution(attrs.Get(models.KeyResolution)); bucket != attributes.ResolutionUnknown {
		tags = append(tags, string(bucket))
	}
	if panel := attrs.Get(models.KeyDisplayType); panel != "" && panel != "unknown" {
		tags = append(tags, panel)
	}
	if size := attrs.Get(models.KeyDisplaySize); size != "" {
		tags = append(tags, size)
	}
	if ratio := attrs.Get(models.KeyAspectRatio); ratio != "" {
		tags = append(tags, ratio)
	}
	return tags
}

func componentTags(attrs models.AttributeMap) []string {
	var tags []string
	if conn := attrs.Get(models.KeyConnectivity); conn != "" {
		tags = append(tags, conn)
	}
	if ports := attrs.Get(models.KeyPorts); ports != "" {
		tags = append(tags, ports)
	}
	return tags
}

// osFamily reduces a full OS string to its tag-friendly family name.
func osFamily(os string) string {
	lower := strings.ToLower(os)
	switch {
	case strings.Contains(lower, "windows 11"):
		return "Windows 11"
	case strings.Contains(lower, "windows 10"):
		return "Windows 10"
	case strings.Contains(lower, "windows"):
		return "Windows"
	case strings.Contains(lower, "macos"), strings.Contains(lower, "mac os"):
		return "macOS"
	case strings.Contains(lower, "chrome"):
		return "ChromeOS"
	case strings.Contains(lower, "linux"), strings.Contains(lower, "ubuntu"):
		return "Linux"
	}
	return os
}

// titleCase capitalizes each word without touching inner casing, so "macOS"
// and "FullHD" survive.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w == strings.ToLower(w) {
			r := []rune(w)
			words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
		}
	}
	return strings.Join(words, " ")
}
