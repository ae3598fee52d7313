package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/brk3/habitledger/internal/datekey"
	"go.yaml.in/yaml/v4"
)

const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"

	DefaultBadgeCapacity = 12
)

var DefaultHabits = []string{
	"Drink water",
	"Exercise 30 min",
	"Healthy breakfast",
	"Take breaks",
	"Read 20 min",
	"Meditation",
	"Skincare",
	"Journal",
}

type OIDCProviderConfig struct {
	Id           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	IssuerURL    string   `yaml:"issuer_url"`
	RedirectURL  string   `yaml:"redirect_url"`
	Scopes       []string `yaml:"scopes"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	// LegacyPath points at a flat JSON file from the original tracker. When
	// set, its data is copied into the backend once, on first start.
	LegacyPath string `yaml:"legacy_path"`
}

type NudgeConfig struct {
	ResendAPIKey   string `yaml:"resend_api_key"`
	Email          string `yaml:"email"`
	From           string `yaml:"from"`
	ThresholdHours int    `yaml:"threshold_hours"`
}

type Config struct {
	APIBaseURL string `yaml:"api_base_url"`
	ListenAddr string `yaml:"listen_addr"`
	AuthToken  string `yaml:"auth_token"`

	Storage StorageConfig `yaml:"storage"`

	WeekStart     datekey.Convention `yaml:"week_start"`
	Timezone      string             `yaml:"timezone"`
	DefaultHabits []string           `yaml:"default_habits,omitempty"`
	BadgeCapacity int                `yaml:"badge_capacity"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	AuthEnabled   bool                 `yaml:"auth_enabled"`
	OIDCProviders []OIDCProviderConfig `yaml:"oidc_providers"`

	Nudge NudgeConfig `yaml:"nudge"`
}

// Path returns the config file location, $HABITS_CONFIG or ./config.yaml.
func Path() string {
	return getenv("HABITS_CONFIG", "config.yaml")
}

// Load reads the YAML file at Path. See LoadFile.
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile reads the YAML file at path, fills defaults, applies environment
// overrides and validates the result. A missing file is an error.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	// Preset so an explicit badge_capacity: 0 survives decoding.
	cfg := &Config{BadgeCapacity: DefaultBadgeCapacity}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.APIBaseURL == "" {
		c.APIBaseURL = "http://localhost:8080"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendBolt
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "habits.db"
	}
	if c.DefaultHabits == nil {
		c.DefaultHabits = DefaultHabits
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.Nudge.From == "" {
		c.Nudge.From = "onboarding@resend.dev"
	}
	if c.Nudge.ThresholdHours == 0 {
		c.Nudge.ThresholdHours = 4
	}
}

func (c *Config) applyEnv() {
	c.APIBaseURL = getenv("HABITS_API_BASE", c.APIBaseURL)
	c.Storage.Path = getenv("HABITS_DB_PATH", c.Storage.Path)
	c.AuthToken = getenv("HABITS_AUTH_TOKEN", c.AuthToken)
	c.Nudge.ResendAPIKey = getenv("HABITS_RESEND_API_KEY", c.Nudge.ResendAPIKey)
	c.Nudge.Email = getenv("HABITS_NOTIFY_EMAIL", c.Nudge.Email)
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Backend {
	case BackendBolt, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.BadgeCapacity < 0 {
		errs = append(errs, fmt.Errorf("badge_capacity must not be negative"))
	}
	if c.AuthEnabled {
		seen := map[string]bool{}
		for _, p := range c.OIDCProviders {
			if p.Id == "" || p.IssuerURL == "" || p.ClientID == "" {
				errs = append(errs, fmt.Errorf("oidc provider %q needs id, issuer_url and client_id", p.Id))
			}
			if seen[p.Id] {
				errs = append(errs, fmt.Errorf("duplicate oidc provider %q", p.Id))
			}
			seen[p.Id] = true
		}
	}
	return errors.Join(errs...)
}

// Location resolves Timezone; empty means the machine's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
