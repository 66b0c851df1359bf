package profiles

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/lanternfest/portal/internal/models"
)

func birthDate(year int) models.BirthDate {
	return models.BirthDate{Time: time.Date(year, time.June, 15, 0, 0, 0, 0, time.UTC)}
}

func completeUserProfile() models.Profile {
	return models.Profile{
		FullName:  "Mirai Tanaka",
		Email:     "mirai@example.com",
		Phone:     "+81-90-0000-0000",
		BirthDate: birthDate(2004),
		Role:      models.RoleUser,
	}
}

func TestCompleteUserProfile(t *testing.T) {
	if !Complete(completeUserProfile()) {
		t.Fatalf("expected complete profile")
	}
}

func TestCompleteRequiresEveryField(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.Profile)
	}{
		{"missing name", func(p *models.Profile) { p.FullName = "  " }},
		{"missing email", func(p *models.Profile) { p.Email = "" }},
		{"missing phone", func(p *models.Profile) { p.Phone = "" }},
		{"missing birth date", func(p *models.Profile) { p.BirthDate = models.BirthDate{} }},
		{"birth year too old", func(p *models.Profile) { p.BirthDate = birthDate(1899) }},
		{"birth year in future", func(p *models.Profile) { p.BirthDate = birthDate(time.Now().UTC().Year() + 1) }},
	}
	for _, tc := range cases {
		profile := completeUserProfile()
		tc.mutate(&profile)
		if Complete(profile) {
			t.Fatalf("%s: expected incomplete profile", tc.name)
		}
	}
}

func TestCompleteBirthYearBounds(t *testing.T) {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	profile := completeUserProfile()
	profile.BirthDate = birthDate(1900)
	if !completeAt(profile, now) {
		t.Fatalf("year 1900 should be accepted")
	}

	profile.BirthDate = birthDate(2026)
	if !completeAt(profile, now) {
		t.Fatalf("current year should be accepted")
	}
}

func TestCompletePrivilegedRolesAlwaysComplete(t *testing.T) {
	for _, role := range []string{models.RoleAdmin, models.RoleSuperAdmin} {
		profile := models.Profile{Role: role}
		if !Complete(profile) {
			t.Fatalf("role %s should always be complete", role)
		}
	}

	// Moderators do not get the privileged shortcut.
	profile := models.Profile{Role: models.RoleModerator}
	if Complete(profile) {
		t.Fatalf("empty moderator profile should be incomplete")
	}
}

func TestBirthDateNormalizesBothEncodings(t *testing.T) {
	native := []byte(`"2004-06-15T00:00:00Z"`)
	wrapped := []byte(fmt.Sprintf(`{"seconds": %d, "nanoseconds": 0}`, time.Date(2004, time.June, 15, 0, 0, 0, 0, time.UTC).Unix()))

	var fromNative, fromWrapper models.BirthDate
	if errDecode := json.Unmarshal(native, &fromNative); errDecode != nil {
		t.Fatalf("decode native: %v", errDecode)
	}
	if errDecode := json.Unmarshal(wrapped, &fromWrapper); errDecode != nil {
		t.Fatalf("decode wrapper: %v", errDecode)
	}

	if fromNative.Year() != fromWrapper.Year() || fromNative.Year() != 2004 {
		t.Fatalf("encodings disagree: native=%d wrapper=%d", fromNative.Year(), fromWrapper.Year())
	}

	profile := completeUserProfile()
	profile.BirthDate = fromWrapper
	if !Complete(profile) {
		t.Fatalf("wrapper-encoded birth date should validate")
	}
}
