package adminrole

import (
	"context"
	"errors"

	"github.com/lanternfest/portal/internal/models"
	"gorm.io/gorm"
)

// DetailStore reads the detailed admin record for an account.
type DetailStore interface {
	// Get returns the admin detail row, or nil when absent.
	Get(ctx context.Context, accountID uint64) (*models.AdminDetail, error)
}

// GormDetailStore is the database-backed detail store.
type GormDetailStore struct {
	db *gorm.DB
}

// NewGormDetailStore constructs a GormDetailStore.
func NewGormDetailStore(db *gorm.DB) *GormDetailStore {
	return &GormDetailStore{db: db}
}

// Get returns the admin detail row, or nil when absent.
func (s *GormDetailStore) Get(ctx context.Context, accountID uint64) (*models.AdminDetail, error) {
	var detail models.AdminDetail
	errFind := s.db.WithContext(ctx).First(&detail, "account_id = ?", accountID).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errFind
	}
	return &detail, nil
}
