// Package config resolves the set of share roots the tool operates on,
// either from an ini-style shares file or from a Samba configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// ErrNoConfig indicates that no shares file was found at any of the default
// locations and none was given explicitly.
var ErrNoConfig = errors.New("no configuration file found")

// DefaultDays is the cleanup retention in days when the config does not set
// one.
const DefaultDays = 7

// Config is the decoded shares file.
//
// The file is ini-style. The sections "logging" and "cleanup" are reserved;
// every other section declares one share:
//
//	[media]
//	path = /mnt/media
//
//	[scratch]
//	path = /mnt/scratch
//	protected = true
//
// Protected shares are listed but never operated on, mirroring the
// "protected" comment token in smb.conf.
//
// Sources in order of precedence: environment variables (KGBSORTER_*), the
// configuration file, built-in defaults.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Cleanup CleanupConfig `mapstructure:"cleanup"`
	Shares  []ShareEntry  `validate:"dive"`
}

// LoggingConfig controls log output behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json"`
}

// CleanupConfig sets the default retention for the cleanup command. Days and
// minutes add up; both zero means DefaultDays.
type CleanupConfig struct {
	Days    int `mapstructure:"days" validate:"gte=0"`
	Minutes int `mapstructure:"minutes" validate:"gte=0"`
}

// ShareEntry is one configured share.
type ShareEntry struct {
	Name      string `validate:"required"`
	Path      string `mapstructure:"path" validate:"required"`
	Protected bool   `mapstructure:"protected"`
}

// reserved ini sections that do not declare shares.
var reservedSections = map[string]bool{
	"logging": true,
	"cleanup": true,
}

// defaultSearchPaths returns the shares file locations probed when no path
// is given explicitly, in order.
func defaultSearchPaths() []string {
	paths := []string{
		"kgbsorter.ini",
		"/etc/kgbsorter/shares.ini",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "kgbsorter", "shares.ini"))
	}
	return paths
}

// Load reads and validates the shares file. An empty path probes the default
// locations and fails with ErrNoConfig when none exists; an explicit path
// that does not exist is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("ini")

	if path == "" {
		found := ""
		for _, candidate := range defaultSearchPaths() {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				found = candidate
				break
			}
		}
		if found == "" {
			return nil, fmt.Errorf("%w (searched: %v)", ErrNoConfig, defaultSearchPaths())
		}
		path = found
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg, err := decode(v.AllSettings())
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	// Environment overrides for the scalar sections.
	if lvl := os.Getenv("KGBSORTER_LOGGING_LEVEL"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if f := os.Getenv("KGBSORTER_LOGGING_FORMAT"); f != "" {
		cfg.Logging.Format = f
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// decode maps viper's section tree onto the Config struct. Ini values arrive
// as strings, so decoding is weakly typed.
func decode(settings map[string]any) (*Config, error) {
	var cfg Config

	for section, raw := range settings {
		values, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		switch {
		case section == "logging":
			if err := decodeSection(values, &cfg.Logging); err != nil {
				return nil, fmt.Errorf("section [logging]: %w", err)
			}
		case section == "cleanup":
			if err := decodeSection(values, &cfg.Cleanup); err != nil {
				return nil, fmt.Errorf("section [cleanup]: %w", err)
			}
		case reservedSections[section]:
			// unreachable, kept for when more reserved sections appear
		default:
			entry := ShareEntry{Name: section}
			if err := decodeSection(values, &entry); err != nil {
				return nil, fmt.Errorf("section [%s]: %w", section, err)
			}
			cfg.Shares = append(cfg.Shares, entry)
		}
	}

	// Viper hands sections back in map order; keep listing deterministic.
	sort.Slice(cfg.Shares, func(i, j int) bool {
		return cfg.Shares[i].Name < cfg.Shares[j].Name
	})
	return &cfg, nil
}

func decodeSection(values map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(values)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the decoded configuration against its struct constraints.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	return nil
}

// ShareRoots returns the absolute paths of all non-protected shares, in
// listing order. This is the only interface the core needs from the config.
func (c *Config) ShareRoots() []string {
	roots := make([]string, 0, len(c.Shares))
	for _, s := range c.Shares {
		if s.Protected {
			continue
		}
		roots = append(roots, s.Path)
	}
	return roots
}

// MaxAge converts the cleanup section into a retention duration, defaulting
// to DefaultDays days when unset.
func (c *Config) MaxAge() time.Duration {
	if c.Cleanup.Days == 0 && c.Cleanup.Minutes == 0 {
		return DefaultDays * 24 * time.Hour
	}
	return time.Duration(c.Cleanup.Days)*24*time.Hour +
		time.Duration(c.Cleanup.Minutes)*time.Minute
}
