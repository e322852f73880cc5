package catalog

import (
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/erraggy/apicatalog/caterrors"
	"github.com/erraggy/apicatalog/parser"
	"github.com/erraggy/apicatalog/tables"
)

// Option configures a Builder.
type Option func(*buildConfig) error

// buildConfig holds the configuration of a Builder.
type buildConfig struct {
	tables         *tables.Tables
	logger         parser.Logger
	tracer         trace.Tracer
	suffixFallback bool
	mergeEquiv     bool
	normalizer     parser.Normalizer
}

func defaultConfig() *buildConfig {
	return &buildConfig{
		logger:         parser.NopLogger{},
		tracer:         noop.NewTracerProvider().Tracer(""),
		suffixFallback: true,
	}
}

// WithTables sets the static tables. Without it tables.Default() is used.
func WithTables(t *tables.Tables) Option {
	return func(cfg *buildConfig) error {
		if t == nil {
			return &caterrors.ConfigError{Option: "tables", Message: "tables cannot be nil"}
		}
		if err := t.Validate(); err != nil {
			return err
		}
		cfg.tables = t
		return nil
	}
}

// WithLogger sets the structured logger for build events.
func WithLogger(l parser.Logger) Option {
	return func(cfg *buildConfig) error {
		cfg.logger = parser.LoggerOrNop(l)
		return nil
	}
}

// WithTracer sets the tracer that records one span per build stage.
func WithTracer(t trace.Tracer) Option {
	return func(cfg *buildConfig) error {
		if t != nil {
			cfg.tracer = t
		}
		return nil
	}
}

// WithSuffixFallback controls whether colliding variants without an override
// get numbered suffixes (Name, Name2, ...). When disabled, such a collision
// fails the build. Enabled by default.
func WithSuffixFallback(enabled bool) Option {
	return func(cfg *buildConfig) error {
		cfg.suffixFallback = enabled
		return nil
	}
}

// WithMergeEquivalent controls whether differently named types of identical
// shape are merged under the alphabetically first name. Disabled by default.
func WithMergeEquivalent(enabled bool) Option {
	return func(cfg *buildConfig) error {
		cfg.mergeEquiv = enabled
		return nil
	}
}

// WithNormalizer sets the document normalizer, for instance to change the
// error-page signature. Its Logger is replaced by the build logger when nil.
func WithNormalizer(n parser.Normalizer) Option {
	return func(cfg *buildConfig) error {
		cfg.normalizer = n
		return nil
	}
}
