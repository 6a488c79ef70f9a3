package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"edacli/internal/config"
)

// InstrumentationName names the tracer and meter.
const InstrumentationName = "edacli"

// Version is stamped into the telemetry resource. Overridden at build time
// with -ldflags "-X edacli/internal/infrastructure.Version=...".
var Version = "dev"

// TelemetryProviders holds the tracer and meter for one run. Metrics are
// always collected into a private Prometheus registry; tracing is a no-op
// unless enabled.
type TelemetryProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prometheus.Registry

	logger *slog.Logger
}

// InitializeTelemetry sets up tracing and metrics. Spans are exported to
// traceOut when tracing is enabled with the stdout exporter.
func InitializeTelemetry(ctx context.Context, cfg config.TelemetryConfig, traceOut io.Writer, logger *slog.Logger) (*TelemetryProviders, error) {
	if logger == nil {
		logger = slog.Default()
	}

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &TelemetryProviders{logger: logger}

	if err := providers.initializeTracing(ctx, cfg, res, traceOut); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := providers.initializeMetrics(ctx, res); err != nil {
		_ = providers.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return providers, nil
}

func createResource(cfg config.TelemetryConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(Version),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

func (p *TelemetryProviders) initializeTracing(ctx context.Context, cfg config.TelemetryConfig, res *resource.Resource, out io.Writer) error {
	if !cfg.TracingEnabled || cfg.TraceExporter == "none" {
		p.Tracer = noop.NewTracerProvider().Tracer(InstrumentationName)
		return nil
	}

	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout", "":
		if out == nil {
			out = os.Stderr
		}
		exporter, err = stdouttrace.New(
			stdouttrace.WithWriter(out),
			stdouttrace.WithPrettyPrint(),
		)
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	p.TracerProvider = tp
	p.Tracer = tp.Tracer(InstrumentationName, trace.WithInstrumentationVersion(Version))

	p.logger.DebugContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))

	return nil
}

func (p *TelemetryProviders) initializeMetrics(ctx context.Context, res *resource.Resource) error {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(
		otelprom.WithRegisterer(registry),
		otelprom.WithoutScopeInfo(),
	)
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	p.Registry = registry
	p.MeterProvider = mp
	p.Meter = mp.Meter(InstrumentationName, metric.WithInstrumentationVersion(Version))

	p.logger.DebugContext(ctx, "Metrics initialized", slog.String("exporter", "prometheus"))
	return nil
}

// WriteMetricsTextfile writes the current metrics in the Prometheus text
// format, suitable for the node_exporter textfile collector.
func (p *TelemetryProviders) WriteMetricsTextfile(path string) error {
	if p.Registry == nil {
		return fmt.Errorf("metrics are not initialized")
	}
	if err := prometheus.WriteToTextfile(path, p.Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}

// Shutdown flushes pending spans and stops the providers
func (p *TelemetryProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}
	return nil
}

func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

// DatasetMetrics are the instruments recorded for every dataset load.
type DatasetMetrics struct {
	Loads        metric.Int64Counter
	LoadDuration metric.Float64Histogram
	Rows         metric.Int64Gauge
	Columns      metric.Int64Gauge
	MissingCells metric.Int64Gauge
}

// NewDatasetMetrics creates the dataset instruments on meter
func NewDatasetMetrics(meter metric.Meter) (*DatasetMetrics, error) {
	loads, err := meter.Int64Counter(
		"eda_loads",
		metric.WithDescription("Number of dataset load attempts"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"eda_load_duration",
		metric.WithDescription("Dataset load duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	rows, err := meter.Int64Gauge(
		"eda_rows_loaded",
		metric.WithDescription("Number of data rows in the last loaded dataset"),
	)
	if err != nil {
		return nil, err
	}

	columns, err := meter.Int64Gauge(
		"eda_columns_loaded",
		metric.WithDescription("Number of columns in the last loaded dataset"),
	)
	if err != nil {
		return nil, err
	}

	missing, err := meter.Int64Gauge(
		"eda_missing_cells",
		metric.WithDescription("Number of missing cells in the last loaded dataset"),
	)
	if err != nil {
		return nil, err
	}

	return &DatasetMetrics{
		Loads:        loads,
		LoadDuration: duration,
		Rows:         rows,
		Columns:      columns,
		MissingCells: missing,
	}, nil
}

// RecordLoad records one load attempt. The size gauges are only set when
// the load succeeded.
func (m *DatasetMetrics) RecordLoad(ctx context.Context, dataset string, rows, columns, missing int, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(attribute.String("dataset", dataset))

	m.Loads.Add(ctx, 1, metric.WithAttributes(
		attribute.String("dataset", dataset),
		attribute.String("status", status),
	))
	m.LoadDuration.Record(ctx, duration.Seconds(), attrs)

	if err != nil {
		return
	}
	m.Rows.Record(ctx, int64(rows), attrs)
	m.Columns.Record(ctx, int64(columns), attrs)
	m.MissingCells.Record(ctx, int64(missing), attrs)
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttributes sets attributes on the current span
func SetSpanAttributes(ctx context.Context, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			span.SetAttributes(attribute.String(k, val))
		case int:
			span.SetAttributes(attribute.Int(k, val))
		case int64:
			span.SetAttributes(attribute.Int64(k, val))
		case float64:
			span.SetAttributes(attribute.Float64(k, val))
		case bool:
			span.SetAttributes(attribute.Bool(k, val))
		default:
			span.SetAttributes(attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
}
