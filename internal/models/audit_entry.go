package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit entry kinds.
const (
	// AuditSignIn records a successful sign-in.
	AuditSignIn = "sign_in"
	// AuditSignOut records a sign-out.
	AuditSignOut = "sign_out"
	// AuditRedirect records a post-sign-in redirect decision.
	AuditRedirect = "redirect"
	// AuditDenial records a guard permission denial.
	AuditDenial = "denial"
	// AuditReview records an application review action.
	AuditReview = "review"
)

// AuditEntry stores a recorded authentication or authorization event.
type AuditEntry struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	AccountID *uint64 `gorm:"index"` // Acting account ID, when known.

	Kind string `gorm:"type:text;not null;index"` // Event kind.

	Detail datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"` // Event detail payload.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Creation timestamp.
}
