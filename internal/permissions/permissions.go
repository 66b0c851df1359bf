// Package permissions defines the portal capability model. The matrix in
// this package is the single source of truth for role capabilities; no other
// package may hand-compute one.
package permissions

import (
	"encoding/json"
	"strings"

	"github.com/lanternfest/portal/internal/models"
	"gorm.io/datatypes"
)

// Named permission keys.
const (
	KeyViewDashboard       = "view_dashboard"
	KeyViewApplications    = "view_applications"
	KeyScoreApplications   = "score_applications"
	KeyApproveApplications = "approve_applications"
	KeyEditApplications    = "edit_applications"
	KeyDeleteApplications  = "delete_applications"
	KeyExportData          = "export_data"
	KeyManageUsers         = "manage_users"
	KeyManageContent       = "manage_content"
	KeySystemSettings      = "system_settings"
	KeyGenerateReports     = "generate_reports"
	KeyFlagApplications    = "flag_applications"
)

// Set is a fixed map of named capability booleans.
type Set struct {
	ViewDashboard       bool `json:"view_dashboard"`
	ViewApplications    bool `json:"view_applications"`
	ScoreApplications   bool `json:"score_applications"`
	ApproveApplications bool `json:"approve_applications"`
	EditApplications    bool `json:"edit_applications"`
	DeleteApplications  bool `json:"delete_applications"`
	ExportData          bool `json:"export_data"`
	ManageUsers         bool `json:"manage_users"`
	ManageContent       bool `json:"manage_content"`
	SystemSettings      bool `json:"system_settings"`
	GenerateReports     bool `json:"generate_reports"`
	FlagApplications    bool `json:"flag_applications"`
}

// Matrix derives the capability set for a role and admin level.
func Matrix(role, level string) Set {
	role = strings.TrimSpace(role)
	level = strings.TrimSpace(level)

	switch role {
	case models.RoleSuperAdmin:
		return All()
	case models.RoleAdmin:
		elevated := level == models.LevelDirector || level == models.LevelLead
		return Set{
			ViewDashboard:       true,
			ViewApplications:    true,
			ScoreApplications:   true,
			ApproveApplications: elevated,
			EditApplications:    level != models.LevelJunior,
			DeleteApplications:  elevated,
			ExportData:          true,
			ManageUsers:         elevated,
			ManageContent:       level != models.LevelJunior,
			SystemSettings:      false,
			GenerateReports:     true,
			FlagApplications:    true,
		}
	case models.RoleModerator:
		return Set{
			ViewDashboard:     true,
			ViewApplications:  true,
			ScoreApplications: level != models.LevelJunior,
			ExportData:        level != models.LevelJunior,
			GenerateReports:   level != models.LevelJunior,
			FlagApplications:  true,
		}
	default:
		return Set{}
	}
}

// All returns a set with every capability granted.
func All() Set {
	return Set{
		ViewDashboard:       true,
		ViewApplications:    true,
		ScoreApplications:   true,
		ApproveApplications: true,
		EditApplications:    true,
		DeleteApplications:  true,
		ExportData:          true,
		ManageUsers:         true,
		ManageContent:       true,
		SystemSettings:      true,
		GenerateReports:     true,
		FlagApplications:    true,
	}
}

// Has reports whether the set grants a named permission key.
func (s Set) Has(key string) bool {
	switch strings.TrimSpace(key) {
	case KeyViewDashboard:
		return s.ViewDashboard
	case KeyViewApplications:
		return s.ViewApplications
	case KeyScoreApplications:
		return s.ScoreApplications
	case KeyApproveApplications:
		return s.ApproveApplications
	case KeyEditApplications:
		return s.EditApplications
	case KeyDeleteApplications:
		return s.DeleteApplications
	case KeyExportData:
		return s.ExportData
	case KeyManageUsers:
		return s.ManageUsers
	case KeyManageContent:
		return s.ManageContent
	case KeySystemSettings:
		return s.SystemSettings
	case KeyGenerateReports:
		return s.GenerateReports
	case KeyFlagApplications:
		return s.FlagApplications
	default:
		return false
	}
}

// HasAny reports whether the set grants any of the given keys.
func (s Set) HasAny(keys []string) bool {
	for _, key := range keys {
		if s.Has(key) {
			return true
		}
	}
	return false
}

// Keys returns the granted permission keys in declaration order.
func (s Set) Keys() []string {
	var keys []string
	for _, key := range AllKeys() {
		if s.Has(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

// AllKeys returns every named permission key in declaration order.
func AllKeys() []string {
	return []string{
		KeyViewDashboard,
		KeyViewApplications,
		KeyScoreApplications,
		KeyApproveApplications,
		KeyEditApplications,
		KeyDeleteApplications,
		KeyExportData,
		KeyManageUsers,
		KeyManageContent,
		KeySystemSettings,
		KeyGenerateReports,
		KeyFlagApplications,
	}
}

// FromKeys builds a set from a list of named permission keys.
func FromKeys(keys []string) Set {
	var s Set
	for _, key := range keys {
		switch strings.TrimSpace(key) {
		case KeyViewDashboard:
			s.ViewDashboard = true
		case KeyViewApplications:
			s.ViewApplications = true
		case KeyScoreApplications:
			s.ScoreApplications = true
		case KeyApproveApplications:
			s.ApproveApplications = true
		case KeyEditApplications:
			s.EditApplications = true
		case KeyDeleteApplications:
			s.DeleteApplications = true
		case KeyExportData:
			s.ExportData = true
		case KeyManageUsers:
			s.ManageUsers = true
		case KeyManageContent:
			s.ManageContent = true
		case KeySystemSettings:
			s.SystemSettings = true
		case KeyGenerateReports:
			s.GenerateReports = true
		case KeyFlagApplications:
			s.FlagApplications = true
		}
	}
	return s
}

// ParseStored decodes a JSON permission key list from an admin detail row.
func ParseStored(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var keys []string
	if errDecode := json.Unmarshal(raw, &keys); errDecode != nil {
		return nil
	}
	out := keys[:0]
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key != "" {
			out = append(out, key)
		}
	}
	return out
}
