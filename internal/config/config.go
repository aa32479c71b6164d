package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"coachdesk/internal/domain/schedule"
)

// Config is the top-level daemon configuration.
type Config struct {
	// APIBaseURL is the coaching-center backend, e.g. "https://center.example.com/api".
	APIBaseURL string `yaml:"api_base_url"`

	// APIToken is the bearer token for the backend. Usually supplied
	// via COACHDESK_API_TOKEN rather than the config file.
	APIToken string `yaml:"api_token"`

	// StateDB is the sqlite file holding engine state and the sync slot.
	StateDB string `yaml:"state_db"`

	// CountryCode selects the public-holiday calendar to import.
	CountryCode string `yaml:"country_code"`

	// RefreshCron is a cron schedule for periodic silent reloads,
	// e.g. "*/5 * * * *".
	RefreshCron string `yaml:"refresh"`

	// DefaultView is the granularity loaded at startup: day, week or month.
	DefaultView string `yaml:"default_view"`

	// TeacherID, if set, narrows every load to one teacher's classes.
	TeacherID string `yaml:"teacher_id"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIBaseURL:  "http://127.0.0.1:8000/api",
		StateDB:     "coachdesk.db",
		CountryCode: "IN",
		RefreshCron: "*/5 * * * *",
		DefaultView: schedule.ViewWeek,
	}
}

// Normalize fills missing values and repairs invalid ones so a
// partially filled config file still yields a runnable setup.
func (c *Config) Normalize() {
	def := Default()
	if c.APIBaseURL == "" {
		c.APIBaseURL = def.APIBaseURL
	}
	if c.StateDB == "" {
		c.StateDB = def.StateDB
	}
	if c.CountryCode == "" {
		c.CountryCode = def.CountryCode
	}
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	if !schedule.IsValidView(c.DefaultView) {
		c.DefaultView = def.DefaultView
	}
}

// applyEnv lets COACHDESK_* variables override file values. Useful for
// secrets and container deployments.
func (c *Config) applyEnv() {
	override(&c.APIBaseURL, "COACHDESK_API_URL")
	override(&c.APIToken, "COACHDESK_API_TOKEN")
	override(&c.StateDB, "COACHDESK_DB")
	override(&c.CountryCode, "COACHDESK_COUNTRY")
	override(&c.RefreshCron, "COACHDESK_REFRESH")
	override(&c.DefaultView, "COACHDESK_VIEW")
	override(&c.TeacherID, "COACHDESK_TEACHER")
}

func override(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Load reads the YAML config at path, creating a default file on first
// run, then layers environment overrides on top and normalizes.
// PRE: path is non-empty
// POST: Returns a runnable config, or an error for unreadable or
// malformed files
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg := Default()
		if err := save(path, cfg); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
		cfg.applyEnv()
		cfg.Normalize()
		return cfg, nil
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyEnv()
	cfg.Normalize()
	return &cfg, nil
}

// save writes the config with 0600 perms; the token field makes the
// file secret-bearing.
func save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
