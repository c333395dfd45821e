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
)

func TestInitializeTelemetry_MetricsTextfile(t *testing.T) {
	tel, err := InitializeTelemetry(TelemetryConfig{TraceExporter: "none"}, nil)
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())

	ctx := context.Background()
	tel.Metrics.RecordRowsLoaded(ctx, "processed_panel", 120)
	tel.Metrics.RecordExcluded(ctx, "Modell (1)", "industry", 7)
	tel.Metrics.RecordFit(ctx, "Modell (1)", 15*time.Millisecond, nil)
	tel.Metrics.RecordFit(ctx, "Modell (2)", time.Millisecond, errors.New("rank deficient"))

	path := filepath.Join(t.TempDir(), "stickycost.prom")
	require.NoError(t, tel.WriteMetrics(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "panel_rows_loaded")
	assert.Contains(t, text, `source="processed_panel"`)
	assert.Contains(t, text, "sample_rows_excluded")
	assert.Contains(t, text, `step="industry"`)
	assert.Contains(t, text, `status="failed"`)
	assert.Contains(t, text, "model_fit_duration_seconds")
}

func TestInitializeTelemetry_StdoutTraces(t *testing.T) {
	var buf bytes.Buffer
	tel, err := InitializeTelemetry(TelemetryConfig{TraceExporter: "stdout", TraceWriter: &buf}, nil)
	require.NoError(t, err)

	_, span := tel.Tracer.Start(context.Background(), "analysis.model")
	span.End()

	require.NoError(t, tel.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "analysis.model")
}

func TestInitializeTelemetry_UnknownExporter(t *testing.T) {
	_, err := InitializeTelemetry(TelemetryConfig{TraceExporter: "otlp"}, nil)
	require.Error(t, err)
}

func TestWriteMetrics_EmptyPathIsNoop(t *testing.T) {
	tel, err := InitializeTelemetry(TelemetryConfig{}, nil)
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())
	assert.NoError(t, tel.WriteMetrics(""))
}
