// Package config loads the environment defaults of the apicatalog command.
//
// Every variable carries the APICATALOG_ prefix. Command-line flags override
// the values loaded here.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/erraggy/apicatalog/caterrors"
	"github.com/erraggy/apicatalog/catalog"
	"github.com/erraggy/apicatalog/internal/telemetry"
	"github.com/erraggy/apicatalog/parser"
	"github.com/erraggy/apicatalog/tables"
)

// Prefix is the environment variable prefix.
const Prefix = "apicatalog"

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds the settings read from APICATALOG_* variables.
type Config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// TablesFile replaces the embedded static tables when set
	TablesFile string `envconfig:"TABLES_FILE"`

	OtelExporterOtlpEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelExporterOtlpInsecure bool   `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`

	SuffixFallback  bool `envconfig:"SUFFIX_FALLBACK" default:"true"`
	MergeEquivalent bool `envconfig:"MERGE_EQUIVALENT" default:"false"`
}

// Load reads the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, &caterrors.ConfigError{Option: "environment", Message: "invalid APICATALOG_* variable", Cause: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogFormat) {
	case FormatText, FormatJSON:
	default:
		return &caterrors.ConfigError{Option: "APICATALOG_LOG_FORMAT", Value: c.LogFormat, Message: "must be text or json"}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &caterrors.ConfigError{Option: "APICATALOG_LOG_LEVEL", Value: c.LogLevel, Message: "must be debug, info, warn or error"}
	}
	return nil
}

// ParsedLogLevel returns the slog level of LogLevel.
func (c *Config) ParsedLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger returns a slog logger writing to w in the configured format.
// verbose lowers the level to debug.
func (c *Config) Logger(w io.Writer, verbose bool) parser.Logger {
	level := c.ParsedLogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.ToLower(c.LogFormat) == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return parser.NewSlogAdapter(slog.New(h))
}

// Telemetry returns the exporter settings.
func (c *Config) Telemetry(service string) telemetry.Config {
	return telemetry.Config{
		Endpoint:    c.OtelExporterOtlpEndpoint,
		Insecure:    c.OtelExporterOtlpInsecure,
		ServiceName: service,
	}
}

// Tables loads the static tables: the file at path, or TablesFile when path
// is empty, or the embedded defaults.
func (c *Config) Tables(path string) (*tables.Tables, error) {
	if path == "" {
		path = c.TablesFile
	}
	if path == "" {
		return tables.Default(), nil
	}
	t, err := tables.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load tables %s: %w", path, err)
	}
	return t, nil
}

// BuildOptions returns the catalog options implied by the configuration.
func (c *Config) BuildOptions(t *tables.Tables, logger parser.Logger) []catalog.Option {
	return []catalog.Option{
		catalog.WithTables(t),
		catalog.WithLogger(logger),
		catalog.WithSuffixFallback(c.SuffixFallback),
		catalog.WithMergeEquivalent(c.MergeEquivalent),
	}
}
