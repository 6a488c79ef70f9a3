package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edacli/internal/config"
)

func testTelemetryConfig() config.TelemetryConfig {
	return config.Default().Telemetry
}

func TestInitializeTelemetry_TracingDisabled(t *testing.T) {
	var traces bytes.Buffer
	providers, err := InitializeTelemetry(context.Background(), testTelemetryConfig(), &traces, nil)
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	require.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Registry)

	_, span := providers.Tracer.Start(context.Background(), "dataset.load")
	assert.False(t, span.IsRecording())
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
	assert.Zero(t, traces.Len())
}

func TestInitializeTelemetry_StdoutTracing(t *testing.T) {
	cfg := testTelemetryConfig()
	cfg.TracingEnabled = true

	var traces bytes.Buffer
	providers, err := InitializeTelemetry(context.Background(), cfg, &traces, nil)
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)

	ctx, span := providers.Tracer.Start(context.Background(), "dataset.load")
	assert.True(t, span.IsRecording())
	SetSpanAttributes(ctx, map[string]interface{}{
		"dataset.path": "data.csv",
		"dataset.rows": 3,
	})
	RecordError(ctx, errors.New("boom"))
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, providers.Shutdown(ctx))

	out := traces.String()
	assert.Contains(t, out, "dataset.load")
	assert.Contains(t, out, "dataset.path")
	assert.Contains(t, out, "boom")
}

func TestInitializeTelemetry_UnsupportedExporter(t *testing.T) {
	cfg := testTelemetryConfig()
	cfg.TracingEnabled = true
	cfg.TraceExporter = "zipkin"

	_, err := InitializeTelemetry(context.Background(), cfg, nil, nil)
	assert.ErrorContains(t, err, "unsupported trace exporter")
}

func TestDatasetMetrics_RecordAndWriteTextfile(t *testing.T) {
	providers, err := InitializeTelemetry(context.Background(), testTelemetryConfig(), nil, nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := NewDatasetMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordLoad(ctx, "concrete.csv", 1030, 9, 0, 25*time.Millisecond, nil)
	metrics.RecordLoad(ctx, "broken.csv", 0, 0, 0, time.Millisecond, errors.New("parse"))

	path := filepath.Join(t.TempDir(), "edacli.prom")
	require.NoError(t, providers.WriteMetricsTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "eda_rows_loaded")
	assert.Contains(t, text, "eda_columns_loaded")
	assert.Contains(t, text, "eda_missing_cells")
	assert.Contains(t, text, "eda_load_duration")
	assert.Contains(t, text, "eda_loads")
	assert.Contains(t, text, `status="error"`)
	assert.Contains(t, text, "1030")
	assert.NotContains(t, text, `eda_rows_loaded{dataset="broken.csv"`)
}

func TestDatasetMetrics_NilIsNoop(t *testing.T) {
	var metrics *DatasetMetrics
	assert.NotPanics(t, func() {
		metrics.RecordLoad(context.Background(), "x.csv", 1, 1, 0, time.Second, nil)
	})
}

func TestWriteMetricsTextfile_Uninitialized(t *testing.T) {
	p := &TelemetryProviders{}
	assert.Error(t, p.WriteMetricsTextfile(filepath.Join(t.TempDir(), "m.prom")))
}
