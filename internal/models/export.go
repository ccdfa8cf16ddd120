package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Upload states for an ExportRecord. "uploaded" is terminal until a content
// change resets the record to "pending"; "error" is retried on the next run.
const (
	StatePending  = "pending"
	StateUploaded = "uploaded"
	StateError    = "error"
)

// Metafield value types understood by the commerce platform.
const (
	MetafieldTypeSingleLine = "single_line_text_field"
	MetafieldTypeMultiLine  = "multi_line_text_field"
	MetafieldTypeURL        = "url"
)

// MetafieldNamespace groups all attribute metafields written by this system.
const MetafieldNamespace = "specs"

// Metafield is a namespaced, typed key/value attached to a platform listing.
type Metafield struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type"`
}

// StringList is a JSONB-backed list of strings (image URLs and the like).
type StringList []string

// Scan implements sql.Scanner interface
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return fmt.Errorf("failed to scan StringList: %v", value)
		}
	}
	return json.Unmarshal(bytes, l)
}

// Value implements driver.Valuer interface
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal([]string(l))
}

// GeneratedListing holds the marketplace content produced by the composer.
// SpecTableHTML is empty when no valid specification rows exist.
type GeneratedListing struct {
	Title            string
	DescriptionHTML  string
	SpecTableHTML    string
	Tags             []string
	ShortDescription string
	PromoText        string
}

// ExportRecord is the per-product staging row: exactly one per
// ProductRecord. Content fields are written by the composer through the
// store; State, LastError and PlatformID are transitioned only by the sync
// engine.
type ExportRecord struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	ProductID        uint           `gorm:"not null;uniqueIndex" json:"product_id"`
	Barcode          string         `gorm:"type:varchar(64);not null;index" json:"barcode"`
	Title            string         `gorm:"type:varchar(512)" json:"title"`
	DescriptionHTML  string         `gorm:"type:text" json:"description_html"`
	SpecTableHTML    string         `gorm:"type:text" json:"spec_table_html"`
	Tags             StringList     `gorm:"type:jsonb" json:"tags"`
	ShortDescription string         `gorm:"type:text" json:"short_description"`
	PromoText        string         `gorm:"type:text" json:"promo_text"`
	Metafields       datatypes.JSON `gorm:"type:jsonb" json:"metafields"`
	ImageURLs        StringList     `gorm:"type:jsonb" json:"image_urls"`
	Handle           string         `gorm:"type:varchar(128);index" json:"handle"`
	PlatformID       *int64         `gorm:"index" json:"platform_id,omitempty"`
	State            string         `gorm:"type:varchar(16);not null;default:'pending';index" json:"state"`
	LastError        string         `gorm:"type:text" json:"last_error"`
	ContentHash      string         `gorm:"type:varchar(64)" json:"content_hash"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// TableName specifies the table name
func (ExportRecord) TableName() string { return "export_records" }

// DecodeMetafields unpacks the serialized metafield list. Malformed data
// yields an empty list.
func (e *ExportRecord) DecodeMetafields() []Metafield {
	if len(e.Metafields) == 0 {
		return nil
	}
	var fields []Metafield
	if err := json.Unmarshal(e.Metafields, &fields); err != nil {
		return nil
	}
	return fields
}

// MetafieldsFromAttributes serializes an AttributeMap into the typed
// metafield list stored on the record and sent to the platform.
func MetafieldsFromAttributes(attrs AttributeMap) []Metafield {
	fields := make([]Metafield, 0, len(attrs))
	for _, k := range attrs.SortedKeys() {
		fields = append(fields, Metafield{
			Namespace: MetafieldNamespace,
			Key:       string(k),
			Value:     attrs[k],
			Type:      MetafieldTypeSingleLine,
		})
	}
	return fields
}
