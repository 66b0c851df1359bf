package settings

// DB config keys and defaults for portal settings.
const (
	// SiteNameKey is the DB config key for the portal site name.
	SiteNameKey = "SITE_NAME"
	// DefaultSiteName is the fallback portal site name.
	DefaultSiteName = "LanternFest"
	// RegistrationOpenKey toggles public account registration.
	RegistrationOpenKey = "REGISTRATION_OPEN"
	// DefaultRegistrationOpen is the fallback registration toggle.
	DefaultRegistrationOpen = true
	// RoleFetchTimeoutSecondsKey bounds the admin detail fetch wait.
	RoleFetchTimeoutSecondsKey = "ROLE_FETCH_TIMEOUT_SECONDS"
	// DefaultRoleFetchTimeoutSeconds is the fallback detail fetch bound.
	DefaultRoleFetchTimeoutSeconds = 5
	// RedirectIntentTTLMinutesKey controls redirect intent retention.
	RedirectIntentTTLMinutesKey = "REDIRECT_INTENT_TTL_MINUTES"
	// DefaultRedirectIntentTTLMinutes is the fallback intent retention.
	DefaultRedirectIntentTTLMinutes = 30
	// SessionSweepIntervalSecondsKey controls the idle session sweep cadence.
	SessionSweepIntervalSecondsKey = "SESSION_SWEEP_INTERVAL_SECONDS"
	// DefaultSessionSweepIntervalSeconds is the fallback sweep cadence.
	DefaultSessionSweepIntervalSeconds = 300
	// AuditRetentionDaysKey controls audit log retention; zero keeps rows
	// forever.
	AuditRetentionDaysKey = "AUDIT_RETENTION_DAYS"
	// DefaultAuditRetentionDays is the fallback audit retention.
	DefaultAuditRetentionDays = 180
)
