package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gyeh/deptstats/internal/model"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultMaxCacheRows bounds how many records one batch may persist.
	DefaultMaxCacheRows = 100000
	// DefaultTimeout bounds one parse of a source export.
	DefaultTimeout = 2 * time.Minute
)

// Config holds all runtime configuration for a sheetload run.
type Config struct {
	DSN        string
	ConfigPath string
	LogFormat  string // "text" or "json"
	LogLevel   string

	// Exactly one source is set.
	FilePath string
	URL      string
	SheetID  string
	SheetGID string
	SourceID string // cache key; derived from the source when empty

	OutPath string
	Addr    string

	Force            bool
	KeepHistory      bool
	FlushTrailingRow bool
	Timeout          time.Duration
	MaxCacheRows     int

	Synonyms       model.SynonymTable
	Defaults       model.Defaults
	RevenueTargets map[string]float64
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	Synonyms         map[string][]string `yaml:"synonyms"`
	Defaults         model.Defaults      `yaml:"defaults"`
	FlushTrailingRow *bool               `yaml:"flush_trailing_row"`
	Timeout          string              `yaml:"timeout"`
	MaxCacheRows     *int                `yaml:"max_cache_rows"`
	RevenueTargets   map[string]float64  `yaml:"revenue_targets"`
}

// LoadFromFile reads a YAML config file and merges its values into Config.
// Synonyms listed in the file replace the built-in aliases of those fields
// only; other fields keep their built-in aliases.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	syn, err := parseSynonyms(yc.Synonyms)
	if err != nil {
		return err
	}
	c.Synonyms = c.Synonyms.Merge(syn)
	c.Defaults = yc.Defaults.WithFallbacks(c.Defaults)

	if yc.FlushTrailingRow != nil {
		c.FlushTrailingRow = *yc.FlushTrailingRow
	}
	if yc.Timeout != "" {
		d, err := time.ParseDuration(yc.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q in config: %w", yc.Timeout, err)
		}
		c.Timeout = d
	}
	if yc.MaxCacheRows != nil {
		c.MaxCacheRows = *yc.MaxCacheRows
	}
	if len(yc.RevenueTargets) > 0 {
		c.RevenueTargets = yc.RevenueTargets
	}
	return nil
}

// parseSynonyms checks that every key is a known logical field name.
func parseSynonyms(raw map[string][]string) (model.SynonymTable, error) {
	out := make(model.SynonymTable, len(raw))
	for name, aliases := range raw {
		f, ok := model.FieldByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown field %q in synonyms", name)
		}
		if len(aliases) == 0 {
			return nil, fmt.Errorf("synonyms for %q are empty", name)
		}
		out[f] = aliases
	}
	return out, nil
}

// ApplyDefaults fills anything still unset with the built-in tables.
func (c *Config) ApplyDefaults() {
	c.Synonyms = model.DefaultSynonyms().Merge(c.Synonyms)
	c.Defaults = c.Defaults.WithFallbacks(model.StandardDefaults())
	if c.SheetGID == "" {
		c.SheetGID = "0"
	}
}

// Validate checks that exactly one source is configured and reachable.
func (c *Config) Validate() error {
	n := 0
	for _, s := range []string{c.FilePath, c.URL, c.SheetID} {
		if s != "" {
			n++
		}
	}
	switch {
	case n == 0:
		return fmt.Errorf("one of --file, --url or --sheet-id is required")
	case n > 1:
		return fmt.Errorf("--file, --url and --sheet-id are mutually exclusive")
	}
	if c.FilePath != "" {
		if _, err := os.Stat(c.FilePath); err != nil {
			return fmt.Errorf("file not accessible: %w", err)
		}
	}
	if c.URL != "" {
		u, err := url.Parse(c.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("--url must be an http(s) URL")
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// ValidateDSN checks the DSN field alone, for commands without a source.
func (c *Config) ValidateDSN() error {
	if c.DSN == "" {
		return fmt.Errorf("--dsn or DEPTSTATS_DB_URL is required")
	}
	return nil
}

// ValidateWithDSN checks both source and DSN fields.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.ValidateDSN()
}

// ResolveSourceID returns the cache key for the configured source: the
// explicit id, else the sheet id, else the file name, else host and path of
// the URL.
func (c *Config) ResolveSourceID() string {
	switch {
	case c.SourceID != "":
		return c.SourceID
	case c.SheetID != "":
		return c.SheetID
	case c.FilePath != "":
		return filepath.Base(c.FilePath)
	case c.URL != "":
		if u, err := url.Parse(c.URL); err == nil {
			return strings.TrimSuffix(u.Host+u.Path, "/")
		}
		return c.URL
	}
	return ""
}
