// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/huddle/internal/dateutil"
)

// Config holds the application configuration.
type Config struct {
	Poll    PollConfig    `toml:"poll"`
	LLM     LLMConfig     `toml:"llm"`
	Storage StorageConfig `toml:"storage"`
	UI      UIConfig      `toml:"ui"`
}

// PollConfig holds defaults for new polls and for the local guest.
type PollConfig struct {
	Name       string `toml:"name"        env:"HUDDLE_NAME"`        // guest name used by avail/edit
	DayStart   string `toml:"day_start"   env:"HUDDLE_DAY_START"`   // e.g., "09:00"
	DayEnd     string `toml:"day_end"     env:"HUDDLE_DAY_END"`     // e.g., "18:00"
	WindowDays int    `toml:"window_days" env:"HUDDLE_WINDOW_DAYS"` // default window length
	TimeZone   string `toml:"time_zone"   env:"HUDDLE_TIME_ZONE"`   // IANA name, empty means local
	MinWeight  int    `toml:"min_weight"  env:"HUDDLE_MIN_WEIGHT"`  // heatmap/best threshold
}

// LLMConfig holds LLM provider settings.
type LLMConfig struct {
	Provider string `toml:"provider" env:"HUDDLE_LLM_PROVIDER"` // "ollama", "openai", "lmstudio"
	Model    string `toml:"model"    env:"HUDDLE_LLM_MODEL"`    // e.g., "llama3.2"
	BaseURL  string `toml:"base_url" env:"HUDDLE_LLM_BASE_URL"` // e.g., "http://localhost:11434"
	APIKey   string `toml:"api_key"  env:"HUDDLE_LLM_API_KEY"`  // only used by openai
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path" env:"HUDDLE_DB_PATH"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme" env:"HUDDLE_UI_THEME"` // "mocha", "frappe", "latte"
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Poll: PollConfig{
			Name:       defaultName(),
			DayStart:   "09:00",
			DayEnd:     "18:00",
			WindowDays: 7,
			TimeZone:   "",
			MinWeight:  1,
		},
		LLM: LLMConfig{
			Provider: "ollama",
			Model:    "llama3.2",
			BaseURL:  "http://localhost:11434",
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		UI: UIConfig{
			Theme: "frappe",
		},
	}
}

func defaultName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "huddle.db"
	}
	return filepath.Join(home, ".local", "share", "huddle", "huddle.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "huddle", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	// Unset variables leave the file/default values in place.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	start, err := dateutil.ParseClock(c.Poll.DayStart)
	if err != nil {
		return fmt.Errorf("day_start: %w", err)
	}
	end, err := dateutil.ParseClock(c.Poll.DayEnd)
	if err != nil {
		return fmt.Errorf("day_end: %w", err)
	}
	if start >= end {
		return errors.New("day_start must be before day_end")
	}
	if start%15 != 0 || end%15 != 0 {
		return errors.New("day_start and day_end must fall on 15-minute boundaries")
	}
	if c.Poll.WindowDays < 1 {
		return errors.New("window_days must be at least 1")
	}
	if c.Poll.MinWeight < 1 {
		return errors.New("min_weight must be at least 1")
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	switch strings.ToLower(c.LLM.Provider) {
	case "ollama", "openai", "lmstudio":
	default:
		return fmt.Errorf("unknown llm provider: %s", c.LLM.Provider)
	}

	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	return nil
}

// Location returns the configured time zone, or time.Local when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Poll.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Poll.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time_zone %q: %w", c.Poll.TimeZone, err)
	}
	return loc, nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
