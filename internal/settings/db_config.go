package settings

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// dbConfigSnapshot holds the in-memory DB config values.
type dbConfigSnapshot struct {
	updatedAt time.Time
	values    map[string]json.RawMessage
}

// globalDBConfig stores the latest dbConfigSnapshot atomically.
var globalDBConfig atomic.Value // stores dbConfigSnapshot

// init seeds the global DB config snapshot.
func init() {
	globalDBConfig.Store(dbConfigSnapshot{values: map[string]json.RawMessage{}})
}

// StoreDBConfig replaces the in-memory snapshot of DB-backed settings.
func StoreDBConfig(updatedAt time.Time, values map[string]json.RawMessage) {
	next := make(map[string]json.RawMessage, len(values))
	for k, v := range values {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		if v == nil {
			next[key] = nil
			continue
		}
		copied := make([]byte, len(v))
		copy(copied, v)
		next[key] = copied
	}

	globalDBConfig.Store(dbConfigSnapshot{
		updatedAt: updatedAt.UTC(),
		values:    next,
	})
}

// DBConfigUpdatedAt returns the last update timestamp for DB config.
func DBConfigUpdatedAt() time.Time {
	cfg := loadDBConfig()
	return cfg.updatedAt
}

// DBConfigValue returns a copy of the raw config value for a key.
func DBConfigValue(key string) (json.RawMessage, bool) {
	cfg := loadDBConfig()
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false
	}
	val, ok := cfg.values[key]
	if !ok {
		return nil, false
	}
	if val == nil {
		return nil, true
	}
	copied := make([]byte, len(val))
	copy(copied, val)
	return copied, true
}

// String returns a string setting with a fallback default.
func String(key, fallback string) string {
	raw, ok := DBConfigValue(key)
	if !ok || len(raw) == 0 {
		return fallback
	}
	var value string
	if errDecode := json.Unmarshal(raw, &value); errDecode == nil {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
		return fallback
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed != "" {
		return trimmed
	}
	return fallback
}

// Int returns an integer setting with a fallback default.
func Int(key string, fallback int) int {
	raw, ok := DBConfigValue(key)
	if !ok || len(raw) == 0 {
		return fallback
	}
	var value int
	if errDecode := json.Unmarshal(raw, &value); errDecode == nil {
		return value
	}
	var text string
	if errDecode := json.Unmarshal(raw, &text); errDecode == nil {
		if parsed, errParse := strconv.Atoi(strings.TrimSpace(text)); errParse == nil {
			return parsed
		}
	}
	return fallback
}

// Bool returns a boolean setting with a fallback default.
func Bool(key string, fallback bool) bool {
	raw, ok := DBConfigValue(key)
	if !ok || len(raw) == 0 {
		return fallback
	}
	var value bool
	if errDecode := json.Unmarshal(raw, &value); errDecode == nil {
		return value
	}
	var text string
	if errDecode := json.Unmarshal(raw, &text); errDecode == nil {
		if parsed, errParse := strconv.ParseBool(strings.TrimSpace(text)); errParse == nil {
			return parsed
		}
	}
	return fallback
}

// loadDBConfig returns the current snapshot with safe defaults.
func loadDBConfig() dbConfigSnapshot {
	v := globalDBConfig.Load()
	cfg, ok := v.(dbConfigSnapshot)
	if !ok {
		return dbConfigSnapshot{values: map[string]json.RawMessage{}}
	}
	if cfg.values == nil {
		return dbConfigSnapshot{updatedAt: cfg.updatedAt, values: map[string]json.RawMessage{}}
	}
	return cfg
}
