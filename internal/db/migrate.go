package db

import (
	"fmt"

	"github.com/lanternfest/portal/internal/models"
	"gorm.io/gorm"
)

// Migrate applies schema migrations for all portal models.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	return conn.AutoMigrate(
		&models.Account{},
		&models.Profile{},
		&models.AdminDetail{},
		&models.Application{},
		&models.AuditEntry{},
		&models.Setting{},
	)
}
