// Package config loads pantry settings.
//
// Settings are layered: built-in defaults, then an optional YAML file,
// then PANTRY_* environment variables. The merged result is checked
// against an embedded CUE schema before use.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Storage backends.
const (
	BackendFS     = "fs"
	BackendSQLite = "sqlite"
	BackendS3     = "s3"
	BackendMemory = "memory"
)

// Statistic timespans.
const (
	TimespanYear  = "year"
	TimespanMonth = "month"
)

// Config holds every setting.
type Config struct {
	// DataDir is the root of the fs backend and the default location of
	// the SQLite database.
	DataDir string `yaml:"dataDir" json:"dataDir" env:"PANTRY_DATA_DIR"`

	// Document is the blob path of the inventory document.
	Document string `yaml:"document" json:"document" env:"PANTRY_DOCUMENT"`

	Storage Storage `yaml:"storage" json:"storage" envPrefix:"PANTRY_STORAGE_"`

	// LogLevel is one of debug, info, warn, error, off.
	LogLevel string `yaml:"logLevel" json:"logLevel" env:"PANTRY_LOG_LEVEL"`

	// Language is a BCP 47 tag used to sort names.
	Language string `yaml:"language" json:"language" env:"PANTRY_LANGUAGE"`

	// StatisticTimespan selects the default statistics breakdown:
	// "year" buckets by year, "month" buckets the current year by month.
	StatisticTimespan string `yaml:"statisticTimespan" json:"statisticTimespan" env:"PANTRY_STATISTIC_TIMESPAN"`

	// EnableExpirationDates controls whether new assignments get an
	// expiration date from the article's shelf life.
	EnableExpirationDates bool `yaml:"enableExpirationDates" json:"enableExpirationDates" env:"PANTRY_ENABLE_EXPIRATION_DATES"`
}

// Storage selects and configures the blob backend.
type Storage struct {
	Backend    string `yaml:"backend" json:"backend" env:"BACKEND"`
	SQLitePath string `yaml:"sqlitePath" json:"sqlitePath" env:"SQLITE_PATH"`
	S3         S3     `yaml:"s3" json:"s3" envPrefix:"S3_"`
}

// S3 configures the S3 backend. Credentials come from the default AWS
// chain.
type S3 struct {
	Bucket   string `yaml:"bucket" json:"bucket" env:"BUCKET"`
	Prefix   string `yaml:"prefix" json:"prefix" env:"PREFIX"`
	Region   string `yaml:"region" json:"region" env:"REGION"`
	Endpoint string `yaml:"endpoint" json:"endpoint" env:"ENDPOINT"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DataDir:  "data",
		Document: "inventory.json",
		Storage: Storage{
			Backend: BackendFS,
		},
		LogLevel:              "error",
		Language:              "en",
		StatisticTimespan:     TimespanYear,
		EnableExpirationDates: true,
	}
}

// Load builds the configuration from defaults, the YAML file at path, and
// the environment. An empty path skips the file. A missing file at an
// explicit path is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := decodeYAML(f, &cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// decodeYAML overlays the YAML document in r onto cfg.
// Unknown keys are rejected. An empty document leaves cfg unchanged.
func decodeYAML(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

// Validate checks cfg against the embedded schema.
func (c *Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Details: cueerrors.Details(err, nil)}
	}
	return nil
}

// ValidationError reports settings that violate the schema.
type ValidationError struct {
	Details string
}

func (e *ValidationError) Error() string {
	return "invalid config: " + strings.TrimSpace(e.Details)
}

// SQLitePath returns the database path of the sqlite backend.
func (c *Config) SQLitePath() string {
	if c.Storage.SQLitePath != "" {
		return c.Storage.SQLitePath
	}
	return filepath.Join(c.DataDir, "pantry.db")
}

// LanguageTag parses Language, falling back to English.
func (c *Config) LanguageTag() language.Tag {
	tag, err := language.Parse(c.Language)
	if err != nil {
		return language.English
	}
	return tag
}

// levelOff is above every level slog emits.
const levelOff = slog.Level(math.MaxInt32)

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "off":
		return levelOff
	default:
		return slog.LevelError
	}
}
