// Package config loads the process-wide read-only configuration from a
// single YAML document at startup.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/eruditedesk/ticketsearch/internal/errors"
)

// DefaultDateFrom seeds the metadata watermark for a collection that has
// never been scanned.
const DefaultDateFrom = "2025-11-14"

// Config is the complete service configuration. It mirrors the YAML
// schema one to one.
type Config struct {
	Model    ModelConfig    `yaml:"model"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Service  ServiceConfig  `yaml:"service"`
}

// ModelConfig locates the sentence embedding model.
type ModelConfig struct {
	// Path is the embedding backend location. An http(s) URL selects the
	// HTTP embedder; anything else falls back to the static embedder.
	Path      string `yaml:"path"`
	ModelName string `yaml:"model_name"`
}

// DatabaseConfig groups the relational and vector store settings.
type DatabaseConfig struct {
	Relational RelationalConfig `yaml:"relational_db"`
	Vector     VectorConfig     `yaml:"vector_db"`
}

// RelationalConfig configures the upstream ticket store.
type RelationalConfig struct {
	URL string `yaml:"url"`
}

// VectorConfig configures the vector collection and its HNSW index.
type VectorConfig struct {
	Main     VectorMainConfig `yaml:"main"`
	Indexing IndexingConfig   `yaml:"indexing"`
}

// VectorMainConfig identifies the collection.
type VectorMainConfig struct {
	URL            string `yaml:"url"`
	CollectionName string `yaml:"collection_name"`
	// DateFrom seeds the metadata watermark (YYYY-MM-DD).
	DateFrom string `yaml:"date_from"`
}

// IndexingConfig holds HNSW parameters supplied at collection creation.
// Immutable afterwards.
type IndexingConfig struct {
	MValue             int  `yaml:"m_value"`
	EfConstruct        int  `yaml:"ef_construct"`
	FullScanThreshold  int  `yaml:"full_scan_threshold"`
	MaxIndexingThreads int  `yaml:"max_indexing_threads"`
	OnDisk             bool `yaml:"on_disk"`
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ServiceConfig holds search service tuning.
type ServiceConfig struct {
	// Threshold drops ranked results scoring below it.
	Threshold float64 `yaml:"threshold"`
	// Listen is the HTTP bind address.
	Listen string `yaml:"listen"`
}

// Load reads and validates the configuration file. A missing file or a
// missing required key is a CONFIG_MISSING error, fatal at startup.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeConfigMissing, fmt.Sprintf("read config %s", path), err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeConfigMissing, fmt.Sprintf("parse config %s", path), err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "INFO"
	}
	if c.Service.Listen == "" {
		c.Service.Listen = ":8000"
	}
	if c.Database.Vector.Main.DateFrom == "" {
		c.Database.Vector.Main.DateFrom = DefaultDateFrom
	}
	if c.Database.Vector.Main.CollectionName == "" {
		c.Database.Vector.Main.CollectionName = "support_tickets"
	}
	idx := &c.Database.Vector.Indexing
	if idx.MValue == 0 {
		idx.MValue = 16
	}
	if idx.EfConstruct == 0 {
		idx.EfConstruct = 100
	}
	if idx.FullScanThreshold == 0 {
		idx.FullScanThreshold = 10000
	}
}

func (c *Config) validate() error {
	if c.Database.Relational.URL == "" {
		return apperrors.New(apperrors.CodeConfigMissing, "database.relational_db.url is required")
	}
	if c.Database.Vector.Main.URL == "" {
		return apperrors.New(apperrors.CodeConfigMissing, "database.vector_db.main.url is required")
	}
	if _, err := time.Parse("2006-01-02", c.Database.Vector.Main.DateFrom); err != nil {
		return apperrors.Newf(apperrors.CodeConfigMissing, "database.vector_db.main.date_from %q is not YYYY-MM-DD", c.Database.Vector.Main.DateFrom)
	}
	return nil
}

// SeedDate returns the configured watermark seed as a time in the local
// zone at midnight.
func (c *Config) SeedDate() time.Time {
	t, _ := time.ParseInLocation("2006-01-02", c.Database.Vector.Main.DateFrom, time.Local)
	return t
}
