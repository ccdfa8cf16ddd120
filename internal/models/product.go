package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ProductRecord mirrors the consolidated catalog row produced by the
// external consolidation process. This system reads it and never writes it.
type ProductRecord struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Barcode        string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"barcode"` // trade identifier (EAN/GTIN)
	MPN            string         `gorm:"type:varchar(128);index" json:"mpn"`                   // manufacturer part number
	Name           string         `gorm:"type:varchar(512)" json:"name"`
	Brand          string         `gorm:"type:varchar(128)" json:"brand"`
	Category       string         `gorm:"type:varchar(128)" json:"category"`
	SellPrice      float64        `json:"sell_price"`
	StockQty       int            `json:"stock_qty"`
	SpecDocument   datatypes.JSON `gorm:"type:jsonb" json:"spec_document"` // ordered (name, value, unit) triples
	RawDescription string         `gorm:"type:text" json:"raw_description"`
	ImageURLs      StringList     `gorm:"type:jsonb" json:"image_urls"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TableName specifies the table name
func (ProductRecord) TableName() string { return "product_records" }

// SpecEntry is one (name, value, unit) triple from the enrichment document.
type SpecEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// SpecificationSet is the ordered list of entries decoded from SpecDocument.
// Order matters downstream: first match wins during attribute extraction.
type SpecificationSet []SpecEntry

// Specifications decodes the stored spec document. A missing or malformed
// document yields an empty set, never an error: an input product without
// structured data is a normal case, not a failure.
func (p *ProductRecord) Specifications() SpecificationSet {
	if len(p.SpecDocument) == 0 {
		return nil
	}
	var set SpecificationSet
	if err := json.Unmarshal(p.SpecDocument, &set); err != nil {
		return nil
	}
	return set
}
