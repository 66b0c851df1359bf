package models

import "time"

// Account stores an identity record owned by the identity provider.
type Account struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Email    string `gorm:"type:text;not null;uniqueIndex"` // Unique sign-in email.
	Password string `gorm:"type:text;not null"`             // Hashed password.

	DisplayName string `gorm:"type:text"` // Optional display name.
	PhotoURL    string `gorm:"type:text"` // Optional avatar URL.

	EmailVerified bool `gorm:"not null;default:false"` // Whether the email address is verified.
	Active        bool `gorm:"not null;default:true"`  // Whether the account can sign in.

	TOTPSecret string `gorm:"type:text"` // TOTP secret for MFA.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
