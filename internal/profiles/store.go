package profiles

import (
	"context"
	"errors"

	"github.com/lanternfest/portal/internal/models"
	"gorm.io/gorm"
)

// Store reads and writes profile records for the session layer.
type Store interface {
	// Get returns the profile for an account, or nil when absent.
	Get(ctx context.Context, accountID uint64) (*models.Profile, error)
	// Set replaces the profile for an account.
	Set(ctx context.Context, accountID uint64, profile models.Profile) error
	// Update applies a partial update to the profile for an account.
	Update(ctx context.Context, accountID uint64, fields map[string]any) error
}

// GormStore is the database-backed profile store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore constructs a GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Get returns the profile for an account, or nil when absent.
func (s *GormStore) Get(ctx context.Context, accountID uint64) (*models.Profile, error) {
	var profile models.Profile
	errFind := s.db.WithContext(ctx).First(&profile, "account_id = ?", accountID).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errFind
	}
	return &profile, nil
}

// Set replaces the profile for an account.
func (s *GormStore) Set(ctx context.Context, accountID uint64, profile models.Profile) error {
	profile.AccountID = accountID
	return s.db.WithContext(ctx).Save(&profile).Error
}

// Update applies a partial update to the profile for an account.
func (s *GormStore) Update(ctx context.Context, accountID uint64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("account_id = ?", accountID).
		Updates(fields).Error
}
