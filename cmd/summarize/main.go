// Command summarize loads a tabular dataset and prints its shape, the first
// rows and the number of missing values per column.
//
// Usage:
//
//	summarize [flags]
//
// With no flags it reads data/raw/Concrete_Data_Yeh.csv. Settings can also
// come from a YAML file, a .env file or EDA_* environment variables; flags
// win over all of them. The report goes to stdout, logs and traces to
// stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"edacli/internal/config"
	"edacli/internal/dataprocessing"
	apperrors "edacli/internal/errors"
	"edacli/internal/exporter"
	"edacli/internal/files"
	"edacli/internal/infrastructure"
	"edacli/internal/validation"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// cliFlags holds the parsed command line. Only flags that were set on the
// command line override the loaded configuration.
type cliFlags struct {
	set map[string]bool

	configFile      string
	dataPath        string
	previewRows     int
	describe        bool
	sheet           string
	delimiter       string
	naValues        string
	noDefaultNA     bool
	logLevel        string
	trace           bool
	metricsTextfile string
	version         bool
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, error) {
	f := &cliFlags{set: make(map[string]bool)}

	fs := flag.NewFlagSet("summarize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configFile, "config", "", "YAML config file (default: $EDA_CONFIG_FILE, eda.yaml or configs/eda.yaml)")
	fs.StringVar(&f.dataPath, "data", config.DefaultDatasetPath, "dataset file (.csv, .tsv, .txt or .xlsx) or a directory holding one")
	fs.IntVar(&f.previewRows, "preview", dataprocessing.DefaultPreviewRows, "number of rows to preview")
	fs.BoolVar(&f.describe, "describe", false, "also print summary statistics for numeric columns")
	fs.StringVar(&f.sheet, "sheet", "", "worksheet to read from .xlsx files (default: first sheet)")
	fs.StringVar(&f.delimiter, "delimiter", "", `field delimiter, e.g. ";" or "\t" (default: by extension)`)
	fs.StringVar(&f.naValues, "na", "", "comma separated extra tokens treated as missing")
	fs.BoolVar(&f.noDefaultNA, "no-default-na", false, "only treat empty cells, NaN and -na tokens as missing")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.BoolVar(&f.trace, "trace", false, "export OpenTelemetry spans to stderr")
	fs.StringVar(&f.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file on exit")
	fs.BoolVar(&f.version, "version", false, "print the version and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: summarize [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return nil, fmt.Errorf("unexpected arguments")
	}

	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// apply overlays the flags that were given onto cfg.
func (f *cliFlags) apply(cfg *config.Config) {
	if f.set["data"] {
		cfg.Dataset.Path = f.dataPath
	}
	if f.set["preview"] {
		cfg.Report.PreviewRows = f.previewRows
	}
	if f.set["describe"] {
		cfg.Report.Describe = f.describe
	}
	if f.set["sheet"] {
		cfg.Dataset.Sheet = f.sheet
	}
	if f.set["delimiter"] {
		cfg.Dataset.Delimiter = f.delimiter
	}
	if f.set["na"] {
		cfg.Dataset.NAValues = append(cfg.Dataset.NAValues, strings.Split(f.naValues, ",")...)
	}
	if f.set["no-default-na"] {
		cfg.Dataset.KeepDefaultNA = !f.noDefaultNA
	}
	if f.set["log-level"] {
		cfg.Logging.Level = f.logLevel
	}
	if f.set["trace"] {
		cfg.Telemetry.TracingEnabled = f.trace
	}
	if f.set["metrics-textfile"] {
		cfg.Telemetry.MetricsTextfile = f.metricsTextfile
	}
}

// run is main without the process exit, so it can be tested.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return apperrors.ExitOK
	}
	if err != nil {
		return apperrors.ExitUsage
	}
	if flags.version {
		fmt.Fprintf(stdout, "summarize %s\n", infrastructure.Version)
		return apperrors.ExitOK
	}

	cfg, err := config.Load(flags.configFile)
	if err == nil {
		flags.apply(cfg)
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return apperrors.ExitCode(err)
	}

	logger, closer, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: failed to initialize logger: %v\n", err)
		return apperrors.ExitFailure
	}
	defer closer.Close()

	ctx = infrastructure.EnsureTraceID(ctx)
	logger.DebugContext(ctx, "Configuration loaded",
		slog.String("dataset", cfg.Dataset.Path),
		slog.Int("preview_rows", cfg.Report.PreviewRows),
		slog.Bool("describe", cfg.Report.Describe),
		slog.Bool("tracing", cfg.Telemetry.TracingEnabled))

	telemetry, err := infrastructure.InitializeTelemetry(ctx, cfg.Telemetry, stderr, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize telemetry", slog.String("error", err.Error()))
		fmt.Fprintf(stderr, "error: %v\n", err)
		return apperrors.ExitFailure
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.WarnContext(ctx, "Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := infrastructure.NewDatasetMetrics(telemetry.Meter)
	if err != nil {
		logger.WarnContext(ctx, "Dataset metrics unavailable", slog.String("error", err.Error()))
	}

	runErr := summarize(ctx, cfg, stdout, logger, telemetry.Tracer, metrics)

	if path := cfg.Telemetry.MetricsTextfile; path != "" {
		writeMetrics(ctx, telemetry, path, logger)
	}

	if runErr != nil {
		infrastructure.WithError(logger, runErr).ErrorContext(ctx, "Summary failed",
			slog.String("dataset", cfg.Dataset.Path),
			slog.String("error_type", string(apperrors.TypeOf(runErr))))
		fmt.Fprintf(stderr, "error: %v\n", runErr)
		return apperrors.ExitCode(runErr)
	}

	return apperrors.ExitOK
}

// summarize loads the dataset and writes the report to stdout.
func summarize(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *slog.Logger, tracer trace.Tracer, metrics *infrastructure.DatasetMetrics) error {
	path, err := files.NewDiscovery("").ResolveDataset(cfg.Dataset.Path)
	if err != nil {
		return err
	}
	if path != cfg.Dataset.Path {
		logger.InfoContext(ctx, "Resolved dataset directory",
			slog.String("dir", cfg.Dataset.Path),
			slog.String("path", path))
	}

	loadCtx, span := tracer.Start(ctx, "dataset.load",
		trace.WithAttributes(attribute.String("dataset.path", path)))

	opts := []dataprocessing.LoadOption{
		dataprocessing.WithLogger(infrastructure.WithComponent(logger, "loader")),
		dataprocessing.WithDefaultNA(cfg.Dataset.KeepDefaultNA),
		dataprocessing.WithNAValues(cfg.Dataset.NAValues...),
		dataprocessing.WithDelimiter(cfg.Dataset.DelimiterRune()),
		dataprocessing.WithSheet(cfg.Dataset.Sheet),
	}

	start := time.Now()
	table, err := dataprocessing.Load(loadCtx, path, opts...)
	elapsed := time.Since(start)

	if err != nil {
		metrics.RecordLoad(loadCtx, path, 0, 0, 0, elapsed, err)
		infrastructure.RecordError(loadCtx, err)
		span.End()
		return err
	}

	rows, cols := table.Shape()
	missing := table.TotalMissing()
	metrics.RecordLoad(loadCtx, table.Source(), rows, cols, missing, elapsed, nil)
	infrastructure.SetSpanAttributes(loadCtx, map[string]interface{}{
		"dataset.rows":          rows,
		"dataset.columns":       cols,
		"dataset.missing_cells": missing,
	})
	span.End()

	renderCtx, renderSpan := tracer.Start(ctx, "report.render")
	defer renderSpan.End()

	report := exporter.NewReport(stdout)
	err = report.WriteSummary(table, exporter.SummaryOptions{
		PreviewRows: cfg.Report.PreviewRows,
		Describe:    cfg.Report.Describe,
	})
	if err != nil {
		infrastructure.RecordError(renderCtx, err)
		return apperrors.NewStorageError("failed to write report", err)
	}

	return nil
}

func writeMetrics(ctx context.Context, telemetry *infrastructure.TelemetryProviders, path string, logger *slog.Logger) {
	if err := validation.NewFileValidator(logger).ValidateOutputFile(path); err != nil {
		logger.WarnContext(ctx, "Metrics textfile not written", slog.String("error", err.Error()))
		return
	}
	if err := telemetry.WriteMetricsTextfile(path); err != nil {
		logger.WarnContext(ctx, "Metrics textfile not written", slog.String("error", err.Error()))
		return
	}
	logger.DebugContext(ctx, "Metrics textfile written", slog.String("path", path))
}
