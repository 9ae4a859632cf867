// Package daemon manages the EcoPlus server lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all server configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	Auth       AuthConfig       `toml:"auth"`
	Engagement EngagementConfig `toml:"engagement"`
	Realtime   RealtimeConfig   `toml:"realtime"`
	Logging    LoggingConfig    `toml:"logging"`
	Telemetry  TelemetryConfig  `toml:"telemetry"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host         string   `toml:"host"`
	Port         int      `toml:"port"`
	CORSOrigins  []string `toml:"cors_origins"`
	CookieSecure bool     `toml:"cookie_secure"`
}

// AuthConfig controls sessions.
type AuthConfig struct {
	TokenTTL string `toml:"token_ttl"`
}

// TTL parses TokenTTL, defaulting to 7 days.
func (a AuthConfig) TTL() time.Duration {
	d, err := time.ParseDuration(a.TokenTTL)
	if err != nil || d <= 0 {
		return 7 * 24 * time.Hour
	}
	return d
}

// EngagementConfig controls streak and badge clocks.
type EngagementConfig struct {
	// Timezone decides which calendar day an activity belongs to.
	Timezone string `toml:"timezone"`
	// NightTimezone decides the wall-clock hour for the night badge.
	// Empty means the server's local zone.
	NightTimezone string `toml:"night_timezone"`
}

// Location returns the activity-day timezone.
func (e EngagementConfig) Location() (*time.Location, error) {
	return loadLocation(e.Timezone, time.UTC)
}

// NightLocation returns the night-badge timezone.
func (e EngagementConfig) NightLocation() (*time.Location, error) {
	return loadLocation(e.NightTimezone, time.Local)
}

func loadLocation(name string, fallback *time.Location) (*time.Location, error) {
	if name == "" {
		return fallback, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// RealtimeConfig controls the WebSocket fan-out.
type RealtimeConfig struct {
	RedisURL string `toml:"redis_url"` // empty = single node, no relay
	Channel  string `toml:"channel"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// TelemetryConfig controls metrics exposure.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        5000,
			CORSOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		},
		Auth: AuthConfig{
			TokenTTL: "168h",
		},
		Engagement: EngagementConfig{
			Timezone: "UTC",
		},
		Realtime: RealtimeConfig{
			Channel: "ecoplus:realtime",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
	}
}

// LoadConfig reads config from $ECOPLUS_HOME/config.toml, falling back to
// defaults, then applies .env and environment overrides.
func LoadConfig() (Config, error) {
	// .env in the working directory, then in the data dir; neither is required.
	_ = godotenv.Load()
	_ = godotenv.Load(filepath.Join(ecoplusHome(), ".env"))

	cfg := DefaultConfig()
	path := filepath.Join(ecoplusHome(), "config.toml")

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("ECOPLUS_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid ECOPLUS_PORT %q", v)
		}
		cfg.API.Port = port
	}
	if v := os.Getenv("ECOPLUS_REDIS_URL"); v != "" {
		cfg.Realtime.RedisURL = v
	}
	if v := os.Getenv("ECOPLUS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	return nil
}

// SaveConfig writes the config to $ECOPLUS_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(ecoplusHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// ecoplusHome returns the EcoPlus data directory.
func ecoplusHome() string {
	if env := os.Getenv("ECOPLUS_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ecoplus")
}

// Home is exported for use by other packages.
func Home() string {
	return ecoplusHome()
}
