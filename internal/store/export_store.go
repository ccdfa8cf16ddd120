package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nextbit-dev/storelift/internal/models"
	"gorm.io/gorm"
)

// ErrPersistenceUnavailable signals storage-layer failure. It is the only
// error class that aborts a whole run.
var ErrPersistenceUnavailable = errors.New("persistence layer unavailable")

// ExportStore persists export-staging records, one per product.
type ExportStore struct {
	db *gorm.DB
}

// NewExportStore creates the store.
func NewExportStore(db *gorm.DB) *ExportStore {
	return &ExportStore{db: db}
}

// DeriveHandle builds the stable platform handle from the trade identifier.
// It must stay derivable from the barcode alone: it is the fallback
// identity lookup key when the platform id has gone stale.
func DeriveHandle(barcode string) string {
	return "prod-" + strings.ToLower(strings.TrimSpace(barcode))
}

// Upsert creates or fully overwrites the staging record for a product.
// Any content change resets the upload state to pending, invalidating
// prior sync status. Records sitting in error are reset to pending as well
// so the next sync run retries them. Missing optional content is fine;
// only storage failure raises.
func (s *ExportStore) Upsert(ctx context.Context, product *models.ProductRecord, listing models.GeneratedListing, attrs models.AttributeMap, images []string) (*models.ExportRecord, error) {
	metafields := models.MetafieldsFromAttributes(attrs)
	metafieldsJSON, err := json.Marshal(metafields)
	if err != nil {
		return nil, fmt.Errorf("serialize metafields: %w", err)
	}
	hash := contentHash(listing, metafieldsJSON, images)

	var record models.ExportRecord
	err = s.db.WithContext(ctx).Where("product_id = ?", product.ID).First(&record).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		record = models.ExportRecord{
			ProductID: product.ID,
			Barcode:   product.Barcode,
			Handle:    DeriveHandle(product.Barcode),
			State:     models.StatePending,
		}
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}

	contentChanged := record.ContentHash != hash

	record.Title = listing.Title
	record.DescriptionHTML = listing.DescriptionHTML
	record.SpecTableHTML = listing.SpecTableHTML
	record.Tags = listing.Tags
	record.ShortDescription = listing.ShortDescription
	record.PromoText = listing.PromoText
	record.Metafields = metafieldsJSON
	record.ImageURLs = images
	record.ContentHash = hash

	if contentChanged || record.State == models.StateError {
		record.State = models.StatePending
		record.LastError = ""
	}

	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return &record, nil
}

// Snapshot returns the records eligible for upload at the start of a sync
// run: everything pending plus errors from prior runs. Uploaded records
// stay untouched until a content change resets them.
func (s *ExportStore) Snapshot(ctx context.Context) ([]models.ExportRecord, error) {
	var records []models.ExportRecord
	err := s.db.WithContext(ctx).
		Where("state IN ?", []string{models.StatePending, models.StateError}).
		Order("id").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return records, nil
}

// Get returns the record for a product id, or nil when absent.
func (s *ExportStore) Get(ctx context.Context, productID uint) (*models.ExportRecord, error) {
	var record models.ExportRecord
	err := s.db.WithContext(ctx).Where("product_id = ?", productID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return &record, nil
}

// List returns all export records.
func (s *ExportStore) List(ctx context.Context) ([]models.ExportRecord, error) {
	var records []models.ExportRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return records, nil
}

// SetPlatformID persists a recovered platform identifier. Called the
// moment identity resolution succeeds via handle fallback, before the
// upload proceeds, so future runs skip the fallback.
func (s *ExportStore) SetPlatformID(ctx context.Context, recordID uint, platformID int64) error {
	err := s.db.WithContext(ctx).Model(&models.ExportRecord{}).
		Where("id = ?", recordID).
		Update("platform_id", platformID).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return nil
}

// SetUploaded transitions a record to uploaded.
func (s *ExportStore) SetUploaded(ctx context.Context, recordID uint, platformID int64) error {
	err := s.db.WithContext(ctx).Model(&models.ExportRecord{}).
		Where("id = ?", recordID).
		Updates(map[string]interface{}{
			"platform_id": platformID,
			"state":       models.StateUploaded,
			"last_error":  "",
		}).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return nil
}

// SetError transitions a record to error with the failure message.
func (s *ExportStore) SetError(ctx context.Context, recordID uint, message string) error {
	err := s.db.WithContext(ctx).Model(&models.ExportRecord{}).
		Where("id = ?", recordID).
		Updates(map[string]interface{}{
			"state":      models.StateError,
			"last_error": message,
		}).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return nil
}

// contentHash fingerprints every generated field so unchanged content can
// be recognized across runs.
func contentHash(listing models.GeneratedListing, metafields []byte, images []string) string {
	h := sha256.New()
	for _, part := range []string{
		listing.Title, listing.DescriptionHTML, listing.SpecTableHTML,
		strings.Join(listing.Tags, ","), listing.ShortDescription, listing.PromoText,
		string(metafields), strings.Join(images, ","),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
