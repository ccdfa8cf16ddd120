package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/nextbit-dev/storelift/internal/models"
	"gorm.io/gorm"
)

// ProductStore reads the consolidated product records. This system never
// writes them; the table is owned by the external consolidation process.
type ProductStore struct {
	db *gorm.DB
}

// NewProductStore creates the read-only store.
func NewProductStore(db *gorm.DB) *ProductStore {
	return &ProductStore{db: db}
}

// List returns all product records.
func (s *ProductStore) List(ctx context.Context) ([]models.ProductRecord, error) {
	var products []models.ProductRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return products, nil
}

// GetByID returns one product record, or nil when absent.
func (s *ProductStore) GetByID(ctx context.Context, id uint) (*models.ProductRecord, error) {
	var product models.ProductRecord
	err := s.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return &product, nil
}
