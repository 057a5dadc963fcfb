package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"slotcal/datetime"
)

const (
	defaultLogLevel   = "info"
	defaultWindowDays = 7
)

// CalendarConfig describes a single ICS file to check.
type CalendarConfig struct {
	// ID is an internal identifier used in reports and logs.
	ID string `yaml:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name"`
	// Path is the location of the .ics file on disk.
	Path string `yaml:"path"`
}

// Config is the top-level application configuration.
type Config struct {
	// LogLevel is one of "debug", "info", "error".
	LogLevel string `yaml:"log_level"`

	// Granularity is applied to both endpoints of every event before
	// conflicts are checked.
	Granularity datetime.Granularity `yaml:"granularity"`

	// WindowDays is the size of the checked window, starting at the day the
	// check is run for.
	WindowDays int `yaml:"window_days"`

	// SkipEmpty drops zero-length slots (after rounding) from the check.
	SkipEmpty bool `yaml:"skip_empty"`

	// AllowTouching treats back-to-back slots (one ends when the next
	// starts) as free of conflict.
	AllowTouching bool `yaml:"allow_touching"`

	Calendars []CalendarConfig `yaml:"calendars"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:      defaultLogLevel,
		Granularity:   datetime.FifteenMinutes,
		WindowDays:    defaultWindowDays,
		SkipEmpty:     false,
		AllowTouching: true,
		Calendars:     []CalendarConfig{},
	}
}

// Normalize fills in missing/zero values with defaults.
func (c *Config) Normalize() {
	switch c.LogLevel {
	case "debug", "info", "error":
	default:
		c.LogLevel = defaultLogLevel
	}
	if !c.Granularity.Valid() {
		c.Granularity = datetime.FifteenMinutes
	}
	if c.WindowDays <= 0 {
		c.WindowDays = defaultWindowDays
	}
	if c.Calendars == nil {
		c.Calendars = []CalendarConfig{}
	}
	for i := range c.Calendars {
		if c.Calendars[i].ID == "" {
			c.Calendars[i].ID = filepath.Base(c.Calendars[i].Path)
		}
	}
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist a default config is written there with 0600
// permissions and returned. Otherwise the file is decoded and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	// Start from defaults so that an omitted granularity does not decode as
	// the zero constant.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory (0700) if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".slotcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

func (c *Config) Save(path string) error {
	return Save(path, c)
}
