package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// defaultConfigPath is used when no config path is provided.
const defaultConfigPath = "config.yaml"

// AppConfig holds process-level startup options.
type AppConfig struct {
	ConfigPath string // Path to the YAML config file.
}

// ServerConfig holds HTTP server options.
type ServerConfig struct {
	Addr string `yaml:"addr"` // Listen address, e.g. ":8317".
}

// DatabaseConfig holds database connection options.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"` // Database DSN (postgres or sqlite).
}

// RedisConfig holds redirect-intent storage options.
type RedisConfig struct {
	Addr     string `yaml:"addr"`     // Redis address; empty selects the in-memory store.
	Password string `yaml:"password"` // Optional password.
	DB       int    `yaml:"db"`       // Redis database number.
}

// JWTConfig holds session token options.
type JWTConfig struct {
	Secret      string `yaml:"secret"`       // HS256 signing secret.
	ExpiryHours int    `yaml:"expiry-hours"` // Token lifetime in hours.
}

// LogConfig holds logging options.
type LogConfig struct {
	Level      string `yaml:"level"`        // logrus level name.
	File       string `yaml:"file"`         // Log file path; empty logs to stderr.
	MaxSizeMB  int    `yaml:"max-size-mb"`  // Rotation size threshold.
	MaxBackups int    `yaml:"max-backups"`  // Rotated files to retain.
	MaxAgeDays int    `yaml:"max-age-days"` // Rotated file retention in days.
}

// fileConfig mirrors the YAML config file layout.
type fileConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Log      LogConfig      `yaml:"log"`
}

// ResolveConfigPath returns a usable config path, falling back to the default.
func ResolveConfigPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return defaultConfigPath
	}
	return filepath.Clean(trimmed)
}

// load reads and parses the YAML config file.
func load(path string) (*fileConfig, error) {
	raw, errRead := os.ReadFile(path)
	if errRead != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, errRead)
	}
	var cfg fileConfig
	if errParse := yaml.Unmarshal(raw, &cfg); errParse != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, errParse)
	}
	return &cfg, nil
}

// LoadServerConfig loads the server section with defaults applied.
func LoadServerConfig(path string) (ServerConfig, error) {
	cfg, errLoad := load(path)
	if errLoad != nil {
		return ServerConfig{}, errLoad
	}
	server := cfg.Server
	if strings.TrimSpace(server.Addr) == "" {
		server.Addr = ":8317"
	}
	return server, nil
}

// LoadDatabaseDSN loads the database DSN from the config file.
func LoadDatabaseDSN(path string) (string, error) {
	cfg, errLoad := load(path)
	if errLoad != nil {
		return "", errLoad
	}
	dsn := strings.TrimSpace(cfg.Database.DSN)
	if dsn == "" {
		return "", fmt.Errorf("config: missing database.dsn in %s", path)
	}
	return dsn, nil
}

// LoadRedisConfig loads the redis section.
func LoadRedisConfig(path string) (RedisConfig, error) {
	cfg, errLoad := load(path)
	if errLoad != nil {
		return RedisConfig{}, errLoad
	}
	return cfg.Redis, nil
}

// LoadJWTConfig loads the jwt section with defaults applied.
func LoadJWTConfig(path string) (JWTConfig, error) {
	cfg, errLoad := load(path)
	if errLoad != nil {
		return JWTConfig{}, errLoad
	}
	jwtCfg := cfg.JWT
	if jwtCfg.ExpiryHours <= 0 {
		jwtCfg.ExpiryHours = 72
	}
	return jwtCfg, nil
}

// LoadLogConfig loads the log section with defaults applied.
func LoadLogConfig(path string) (LogConfig, error) {
	cfg, errLoad := load(path)
	if errLoad != nil {
		return LogConfig{}, errLoad
	}
	logCfg := cfg.Log
	if strings.TrimSpace(logCfg.Level) == "" {
		logCfg.Level = "info"
	}
	if logCfg.MaxSizeMB <= 0 {
		logCfg.MaxSizeMB = 50
	}
	if logCfg.MaxBackups <= 0 {
		logCfg.MaxBackups = 5
	}
	if logCfg.MaxAgeDays <= 0 {
		logCfg.MaxAgeDays = 30
	}
	return logCfg, nil
}

// Expiry returns the configured token lifetime as a duration.
func (c JWTConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}
