// Package profiles owns festival profile records and the completeness rule.
package profiles

import (
	"strings"
	"time"

	"github.com/lanternfest/portal/internal/models"
)

// minBirthYear is the oldest birth year accepted as valid.
const minBirthYear = 1900

// Complete reports whether a profile satisfies the completeness rule.
// Privileged roles are complete unconditionally; everyone else needs a
// primary-script name, email, phone, and a plausible birth year.
func Complete(p models.Profile) bool {
	return completeAt(p, time.Now())
}

// completeAt evaluates completeness against a fixed reference time.
func completeAt(p models.Profile, now time.Time) bool {
	if models.IsPrivilegedRole(p.Role) {
		return true
	}
	if strings.TrimSpace(p.FullName) == "" {
		return false
	}
	if strings.TrimSpace(p.Email) == "" {
		return false
	}
	if strings.TrimSpace(p.Phone) == "" {
		return false
	}
	year := p.BirthDate.Year()
	return year >= minBirthYear && year <= now.UTC().Year()
}
