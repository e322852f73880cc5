package commands

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/erraggy/apicatalog/catalog"
	"github.com/erraggy/apicatalog/internal/cliutil"
	"github.com/erraggy/apicatalog/internal/config"
	"github.com/erraggy/apicatalog/internal/corpusutil"
	"github.com/erraggy/apicatalog/internal/telemetry"
	"github.com/erraggy/apicatalog/parser"
)

// Output file names inside the build directory.
const (
	VersionFile   = "version.json"
	ReportFile    = "report.json"
	EndpointsDir  = "endpoints"
	catalogPrefix = "catalog."
)

// BuildFlags contains flags for the build command
type BuildFlags struct {
	Output          string
	Tables          string
	Format          string
	Strict          bool
	MergeEquivalent bool
	Report          bool
	Watch           bool
	Debounce        time.Duration
	Verbose         bool
}

// SetupBuildFlags creates and configures a FlagSet for the build command.
// Returns the FlagSet and a BuildFlags struct with bound flag variables.
func SetupBuildFlags() (*flag.FlagSet, *BuildFlags) {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	flags := &BuildFlags{}

	fs.StringVar(&flags.Output, "o", "out", "output directory")
	fs.StringVar(&flags.Output, "output", "out", "output directory")
	fs.StringVar(&flags.Tables, "tables", "", "static tables YAML file (default: APICATALOG_TABLES_FILE or the embedded tables)")
	fs.StringVar(&flags.Format, "format", "json", "catalog format: json or yaml")
	fs.BoolVar(&flags.Strict, "strict", false, "fail on collisions the override table does not resolve")
	fs.BoolVar(&flags.MergeEquivalent, "merge-equivalent", false, "fold distinct names with identical shapes into one type")
	fs.BoolVar(&flags.Report, "report", false, "write report.json next to the catalog")
	fs.BoolVar(&flags.Watch, "watch", false, "rebuild whenever the schemas directory changes")
	fs.DurationVar(&flags.Debounce, "debounce", 500*time.Millisecond, "quiet period before a watch rebuild")
	fs.BoolVar(&flags.Verbose, "v", false, "enable debug logging")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: apicatalog build [flags] <schemas-dir>\n\n")
		cliutil.Writef(fs.Output(), "Build the type catalog from a directory of scraped endpoint documents.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  apicatalog build -o ./out ./schemas\n")
		cliutil.Writef(fs.Output(), "  apicatalog build -format yaml -report ./schemas\n")
		cliutil.Writef(fs.Output(), "  apicatalog build -strict -tables overrides.yaml ./schemas\n")
		cliutil.Writef(fs.Output(), "  apicatalog build -watch -o ./out ./schemas\n")
		cliutil.Writef(fs.Output(), "\nOutput:\n")
		cliutil.Writef(fs.Output(), "  catalog.json (or .yaml), endpoints/<Name>.json, version.json and,\n")
		cliutil.Writef(fs.Output(), "  with -report, report.json. Nothing is written when the build fails.\n")
		cliutil.Writef(fs.Output(), "\nEnvironment:\n")
		cliutil.Writef(fs.Output(), "  APICATALOG_SUFFIX_FALLBACK=false behaves like -strict.\n")
		cliutil.Writef(fs.Output(), "  APICATALOG_MERGE_EQUIVALENT=true behaves like -merge-equivalent.\n")
	}

	return fs, flags
}

// HandleBuild executes the build command
func HandleBuild(args []string) error {
	fs, flags := SetupBuildFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("build command requires exactly one schemas directory")
	}
	format, err := catalog.ParseFormat(flags.Format)
	if err != nil {
		return err
	}

	cfg, logger, err := environment(flags.Verbose)
	if err != nil {
		return err
	}
	applyBuildEnv(fs, flags, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := telemetry.Setup(ctx, cfg.Telemetry("apicatalog"), logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()
	metrics, err := telemetry.NewMetrics(provider.Meter())
	if err != nil {
		return err
	}

	b := &builder{
		dir:     fs.Arg(0),
		flags:   flags,
		format:  format,
		cfg:     cfg,
		logger:  logger,
		tracer:  catalog.WithTracer(provider.Tracer()),
		metrics: metrics,
	}
	if err := b.run(ctx); err != nil {
		return err
	}
	if !flags.Watch {
		return nil
	}
	return watch(ctx, b.dir, flags.Debounce, logger, func() error { return b.run(ctx) }, flags.Output)
}

// applyBuildEnv fills the flags left unset on the command line from the
// environment defaults.
func applyBuildEnv(fs *flag.FlagSet, flags *BuildFlags, cfg *config.Config) {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["strict"] {
		flags.Strict = !cfg.SuffixFallback
	}
	if !set["merge-equivalent"] {
		flags.MergeEquivalent = cfg.MergeEquivalent
	}
	if !set["tables"] {
		flags.Tables = cfg.TablesFile
	}
}

// builder runs one batch per call. Runs never share state beyond their
// configuration.
type builder struct {
	dir     string
	flags   *BuildFlags
	format  catalog.Format
	cfg     *config.Config
	logger  parser.Logger
	tracer  catalog.Option
	metrics *telemetry.Metrics
}

func (b *builder) run(ctx context.Context) error {
	sources, err := corpusutil.Read(b.dir, b.logger)
	if err != nil {
		return err
	}
	t, err := b.cfg.Tables(b.flags.Tables)
	if err != nil {
		return err
	}

	opts := append(b.cfg.BuildOptions(t, b.logger),
		catalog.WithSuffixFallback(!b.flags.Strict),
		catalog.WithMergeEquivalent(b.flags.MergeEquivalent),
		b.tracer,
	)
	start := time.Now()
	cat, report, err := catalog.Build(ctx, sources, opts...)
	b.metrics.RecordBuild(ctx, report, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("build %s: %w", b.dir, err)
	}

	version, err := writeOutputs(b.flags.Output, cat, report, b.format, b.flags.Report, b.logger)
	if err != nil {
		return err
	}
	printBuildSummary(b.flags.Output, version, report)
	return nil
}

// writeOutputs publishes a successful build. Every file is written to a
// temporary name and renamed, so readers never see a partial file.
func writeOutputs(dir string, cat *catalog.Catalog, report *catalog.Report, f catalog.Format, withReport bool, logger parser.Logger) (*catalog.Version, error) {
	dir = filepath.Clean(dir)
	if err := RejectSymlinkOutput(dir); err != nil {
		return nil, err
	}

	version, err := catalog.NewVersion(cat)
	if err != nil {
		return nil, err
	}
	versionPath := filepath.Join(dir, VersionFile)
	if prev, err := readVersion(versionPath); err == nil {
		if version.Changed(prev) {
			logger.Info("catalog changed", "previous", prev.Hash, "hash", version.Hash)
		} else {
			logger.Info("catalog unchanged", "hash", version.Hash)
		}
	}

	if err := catalog.WriteFile(filepath.Join(dir, catalogPrefix+string(f)), cat); err != nil {
		return nil, err
	}
	if err := catalog.WriteContributions(filepath.Join(dir, EndpointsDir), cat, catalog.FormatJSON); err != nil {
		return nil, err
	}
	if withReport {
		if err := catalog.WriteFile(filepath.Join(dir, ReportFile), report); err != nil {
			return nil, err
		}
	}
	if err := catalog.WriteFile(versionPath, version); err != nil {
		return nil, err
	}
	return version, nil
}

func readVersion(path string) (*catalog.Version, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304 - path is inside the output directory
	if err != nil {
		return nil, err
	}
	var v catalog.Version
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func printBuildSummary(dir string, v *catalog.Version, report *catalog.Report) {
	cliutil.Writef(Stdout, "Catalog: %s, %s, %s, %s\n",
		cliutil.Plural(v.Types, "type"), cliutil.Plural(v.OneOfs, "one-of"),
		cliutil.Plural(v.Enums, "enum"), cliutil.Plural(v.Endpoints, "endpoint"))
	cliutil.Writef(Stdout, "Collisions: %d (%d by override, %d by suffix)\n",
		report.TotalCollisions, report.ResolvedByOverride, report.ResolvedBySuffix)
	if len(report.Skipped) > 0 {
		cliutil.Writef(Stdout, "Skipped: %s\n", cliutil.Plural(len(report.Skipped), "document"))
	}
	cliutil.Writef(Stdout, "Hash: %s\n", v.Hash)
	cliutil.Writef(Stdout, "Output: %s\n", dir)
}
