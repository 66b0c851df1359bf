package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Profile roles recognized by the portal.
const (
	// RoleUser is the default participant role.
	RoleUser = "user"
	// RoleAdmin marks festival administrators.
	RoleAdmin = "admin"
	// RoleSuperAdmin marks administrators with every capability.
	RoleSuperAdmin = "super-admin"
	// RoleModerator marks content moderators.
	RoleModerator = "moderator"
)

// Profile stores the festival-specific personal record tied to an account.
type Profile struct {
	AccountID uint64 `gorm:"primaryKey"` // Owning account ID.

	FullName      string `gorm:"type:text;not null"` // Name in the primary script.
	SecondaryName string `gorm:"type:text"`          // Optional name in a secondary script.
	Email         string `gorm:"type:text;not null"` // Contact email.
	Phone         string `gorm:"type:text"`          // Contact phone number.
	Nationality   string `gorm:"type:text"`          // Optional nationality.
	PhotoURL      string `gorm:"type:text"`          // Optional avatar URL.

	BirthDate BirthDate `gorm:"type:timestamp"` // Date of birth.

	Role string `gorm:"type:text;not null;default:user"` // Portal role tag.

	EmailVerified bool `gorm:"not null;default:false"` // Mirror of the provider verified flag.

	IsProfileComplete bool `gorm:"not null;default:false"` // Stored completeness flag.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// IsPrivilegedRole reports whether the role grants the privileged flow path.
func IsPrivilegedRole(role string) bool {
	switch strings.TrimSpace(role) {
	case RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// BirthDate wraps a birth date that may arrive either as an RFC 3339 string
// or as a {"seconds": ..., "nanoseconds": ...} document-store timestamp.
// Both shapes normalize to the same underlying time.
type BirthDate struct {
	time.Time
}

// secondsWrapper mirrors the document-store timestamp shape.
type secondsWrapper struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int64 `json:"nanoseconds"`
}

// UnmarshalJSON accepts both supported birth date encodings.
func (b *BirthDate) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		b.Time = time.Time{}
		return nil
	}
	if strings.HasPrefix(trimmed, "{") {
		var wrapper secondsWrapper
		if errWrapper := json.Unmarshal(data, &wrapper); errWrapper != nil {
			return errWrapper
		}
		b.Time = time.Unix(wrapper.Seconds, wrapper.Nanoseconds).UTC()
		return nil
	}
	var native time.Time
	if errNative := json.Unmarshal(data, &native); errNative != nil {
		return errNative
	}
	b.Time = native.UTC()
	return nil
}

// MarshalJSON encodes the birth date as an RFC 3339 string.
func (b BirthDate) MarshalJSON() ([]byte, error) {
	if b.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(b.Time.UTC())
}

// Value implements driver.Valuer so the wrapper persists as a plain timestamp.
func (b BirthDate) Value() (driver.Value, error) {
	if b.Time.IsZero() {
		return nil, nil
	}
	return b.Time.UTC(), nil
}

// Scan implements sql.Scanner for timestamp and string column values.
func (b *BirthDate) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		b.Time = time.Time{}
		return nil
	case time.Time:
		b.Time = v.UTC()
		return nil
	case string:
		parsed, errParse := time.Parse(time.RFC3339, v)
		if errParse != nil {
			return fmt.Errorf("models: scan birth date: %w", errParse)
		}
		b.Time = parsed.UTC()
		return nil
	case []byte:
		parsed, errParse := time.Parse(time.RFC3339, string(v))
		if errParse != nil {
			return fmt.Errorf("models: scan birth date: %w", errParse)
		}
		b.Time = parsed.UTC()
		return nil
	default:
		return fmt.Errorf("models: scan birth date: unsupported type %T", value)
	}
}

// Year returns the birth year, or zero when unset.
func (b BirthDate) Year() int {
	if b.Time.IsZero() {
		return 0
	}
	return b.Time.UTC().Year()
}
