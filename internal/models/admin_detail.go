package models

import (
	"time"

	"gorm.io/datatypes"
)

// Admin levels recognized by the permission matrix.
const (
	// LevelJunior is the entry admin level.
	LevelJunior = "junior"
	// LevelSenior is the standard admin level.
	LevelSenior = "senior"
	// LevelLead marks team leads.
	LevelLead = "lead"
	// LevelDirector marks festival directors.
	LevelDirector = "director"
)

// AdminDetail stores the detailed admin record backing a privileged profile.
type AdminDetail struct {
	AccountID uint64 `gorm:"primaryKey"` // Owning account ID.

	Role       string `gorm:"type:text;not null"`                // Admin role tag.
	AdminLevel string `gorm:"type:text;not null;default:junior"` // Admin seniority level.

	Department     string `gorm:"type:text"` // Department name.
	Responsibility string `gorm:"type:text"` // Responsibility description.

	Permissions datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"` // Named permission keys in JSON.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
