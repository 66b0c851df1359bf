package models

import "time"

// Application statuses.
const (
	// ApplicationStatusSubmitted marks a newly submitted application.
	ApplicationStatusSubmitted = "submitted"
	// ApplicationStatusScored marks an application with at least one score.
	ApplicationStatusScored = "scored"
	// ApplicationStatusApproved marks an approved application.
	ApplicationStatusApproved = "approved"
	// ApplicationStatusRejected marks a rejected application.
	ApplicationStatusRejected = "rejected"
)

// Application categories.
const (
	// CategoryYouth marks youth-track submissions.
	CategoryYouth = "youth"
	// CategoryOpen marks open-track submissions.
	CategoryOpen = "open"
)

// Application stores a festival application submitted through the portal.
type Application struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	AccountID uint64 `gorm:"not null;index"` // Submitting account ID.

	ApplicantName string `gorm:"type:text;not null"`                   // Applicant display name.
	Category      string `gorm:"type:text;not null;default:open"`      // Submission category.
	Status        string `gorm:"type:text;not null;default:submitted"` // Review status.

	Score   *int   `gorm:"type:integer"`           // Latest review score.
	Flagged bool   `gorm:"not null;default:false"` // Flagged for follow-up review.
	Notes   string `gorm:"type:text"`              // Reviewer notes.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
