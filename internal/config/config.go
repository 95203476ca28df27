// Package config handles pipeline configuration: API credentials,
// venue list, year range, and rate-limit tuning.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the collection-run configuration, constructed once at
// process start and passed into the orchestrator. No component reads
// configuration ambiently.
type Config struct {
	// S2APIKey authenticates Semantic Scholar requests.
	S2APIKey string `yaml:"s2_api_key,omitempty"`
	// CrossrefMailto joins the Crossref polite pool; optional.
	CrossrefMailto string `yaml:"crossref_mailto,omitempty"`

	// Venues are venue short codes (see internal/venue).
	Venues []string `yaml:"venues"`
	// YearStart and YearEnd bound the collection window, inclusive.
	YearStart int `yaml:"year_start"`
	YearEnd   int `yaml:"year_end"`

	// CrossrefIntervalSeconds and S2IntervalSeconds set the minimum
	// inter-request interval per API. The two APIs publish different
	// rate limits, hence distinct settings.
	CrossrefIntervalSeconds float64 `yaml:"crossref_interval_seconds"`
	S2IntervalSeconds       float64 `yaml:"s2_interval_seconds"`

	// MaxRetryAttempts bounds retries on transient failures.
	MaxRetryAttempts int `yaml:"max_retry_attempts"`
	// BackoffBaseSeconds is the first retry delay; each later delay is
	// multiplied by BackoffMultiplier.
	BackoffBaseSeconds float64 `yaml:"backoff_base_seconds"`
	BackoffMultiplier  float64 `yaml:"backoff_multiplier"`

	// MaxPages caps pagination per metadata listing.
	MaxPages int `yaml:"max_pages"`

	// CachePath is the cache database file; ReportDir receives ranking
	// files.
	CachePath string `yaml:"cache_path,omitempty"`
	ReportDir string `yaml:"report_dir,omitempty"`
}

// Environment variables overriding credential fields.
const (
	EnvS2APIKey       = "MCSP_S2_API_KEY"
	EnvCrossrefMailto = "MCSP_CROSSREF_MAILTO"
)

// DefaultPath is where config init writes and where commands look when
// no explicit path is given.
const DefaultPath = "mcsp.yaml"

// Default returns the default configuration: the top-8 SE venues over
// 2013-2023, matching the published study setup.
func Default() *Config {
	return &Config{
		Venues:                  []string{"ICSE", "TSE", "JSS", "IST", "EMSE", "FSE", "ASE", "TOSEM"},
		YearStart:               2013,
		YearEnd:                 2023,
		CrossrefIntervalSeconds: 1.0,
		S2IntervalSeconds:       1.0,
		MaxRetryAttempts:        3,
		BackoffBaseSeconds:      1.0,
		BackoffMultiplier:       2.0,
		MaxPages:                20,
		CachePath:               "cache.db",
		ReportDir:               "ranks",
	}
}

// Load reads configuration from a YAML file, applying defaults for
// omitted fields and environment overrides for credentials. A missing
// .env file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	_ = godotenv.Load()
	if key := os.Getenv(EnvS2APIKey); key != "" {
		cfg.S2APIKey = key
	}
	if mailto := os.Getenv(EnvCrossrefMailto); mailto != "" {
		cfg.CrossrefMailto = mailto
	}

	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validation errors. These are the only fatal conditions in the
// pipeline and are detected before any network activity.
var (
	ErrNoVenues        = errors.New("venue list is empty")
	ErrMissingS2APIKey = errors.New("s2_api_key is not set (config file, .env, or MCSP_S2_API_KEY)")
)

// Validate checks the configuration before a run starts.
func (c *Config) Validate() error {
	if len(c.Venues) == 0 {
		return ErrNoVenues
	}
	if c.S2APIKey == "" {
		return ErrMissingS2APIKey
	}
	if c.YearStart > c.YearEnd {
		return fmt.Errorf("year range inverted: %d > %d", c.YearStart, c.YearEnd)
	}
	if c.YearStart <= 0 {
		return fmt.Errorf("invalid year_start: %d", c.YearStart)
	}
	if c.CrossrefIntervalSeconds <= 0 || c.S2IntervalSeconds <= 0 {
		return errors.New("rate-limit intervals must be positive")
	}
	if c.MaxRetryAttempts < 1 {
		return fmt.Errorf("max_retry_attempts must be at least 1, got %d", c.MaxRetryAttempts)
	}
	if c.BackoffBaseSeconds <= 0 || c.BackoffMultiplier <= 0 {
		return errors.New("backoff settings must be positive")
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("max_pages must be at least 1, got %d", c.MaxPages)
	}
	return nil
}

// CrossrefInterval returns the Crossref minimum inter-request interval.
func (c *Config) CrossrefInterval() time.Duration {
	return secondsToDuration(c.CrossrefIntervalSeconds)
}

// S2Interval returns the Semantic Scholar minimum inter-request interval.
func (c *Config) S2Interval() time.Duration {
	return secondsToDuration(c.S2IntervalSeconds)
}

// BackoffBase returns the first retry delay.
func (c *Config) BackoffBase() time.Duration {
	return secondsToDuration(c.BackoffBaseSeconds)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
