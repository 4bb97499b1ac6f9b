package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/shinnytech/caiwenqiang-member-rank/internal/config"
)

// MeterName is the instrumentation scope for tracers and meters
const MeterName = "member-rank"

// Telemetry holds the OpenTelemetry providers and the domain instruments.
// Tracer, Meter and Metrics are always usable; they are no-ops when the
// matching signal is disabled.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Registry       *promclient.Registry
	Tracer         trace.Tracer
	Meter          metric.Meter
	Metrics        *RankMetrics
	Logger         *slog.Logger

	metricsFile string
}

// InitializeOTel sets up tracing and metrics from the telemetry config.
// Spans go to traceOut when the stdout exporter is selected.
func InitializeOTel(cfg config.TelemetryConfig, traceOut io.Writer, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = GetLogger()
	}
	if traceOut == nil {
		traceOut = os.Stderr
	}

	ctx := context.Background()
	logger.DebugContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	res := createResource(cfg)

	tel := &Telemetry{
		Tracer:      tracenoop.NewTracerProvider().Tracer(MeterName),
		Meter:       metricnoop.NewMeterProvider().Meter(MeterName),
		Logger:      logger,
		metricsFile: cfg.MetricsFile,
	}

	if cfg.EnableTracing && cfg.TraceExporter != "none" {
		if err := tel.initializeTracing(cfg, res, traceOut); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := tel.initializeMetrics(res); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	metrics, err := CreateRankMetrics(tel.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}
	tel.Metrics = metrics

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tel, nil
}

func createResource(cfg config.TelemetryConfig) *resource.Resource {
	hostname, _ := os.Hostname()
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(config.AppVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", fmt.Sprintf("%s-%d", hostname, time.Now().Unix())),
	)
}

func (t *Telemetry) initializeTracing(cfg config.TelemetryConfig, res *resource.Resource, out io.Writer) error {
	if cfg.TraceExporter != "stdout" {
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(out),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	// Synchronous export keeps spans of short CLI runs from being dropped.
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	t.TracerProvider = tp
	t.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(config.AppVersion))
	otel.SetTracerProvider(tp)
	return nil
}

func (t *Telemetry) initializeMetrics(res *resource.Resource) error {
	registry := promclient.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	t.Registry = registry
	t.MeterProvider = mp
	t.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(config.AppVersion))
	otel.SetMeterProvider(mp)
	return nil
}

// WriteMetrics dumps the current metric values in Prometheus text format.
// An empty path falls back to the configured metrics file; with neither set
// it does nothing.
func (t *Telemetry) WriteMetrics(path string) error {
	if path == "" {
		path = t.metricsFile
	}
	if path == "" || t.Registry == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	return promclient.WriteToTextfile(path, t.Registry)
}

// Shutdown flushes and stops the providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	return errors.Join(errs...)
}

// RankMetrics holds the application instruments
type RankMetrics struct {
	QueriesTotal   metric.Int64Counter
	QueryDuration  metric.Float64Histogram
	RowsParsed     metric.Int64Counter
	RowsDropped    metric.Int64Counter
	SourceFailures metric.Int64Counter
	RecordsLoaded  metric.Int64Gauge
}

// CreateRankMetrics creates the query, parse and load instruments
func CreateRankMetrics(meter metric.Meter) (*RankMetrics, error) {
	queries, err := meter.Int64Counter(
		"rank_queries",
		metric.WithDescription("Number of leaderboard queries served"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"rank_query_duration",
		metric.WithDescription("Query duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	rowsParsed, err := meter.Int64Counter(
		"rank_rows_parsed",
		metric.WithDescription("Data rows read from position sources"),
	)
	if err != nil {
		return nil, err
	}

	rowsDropped, err := meter.Int64Counter(
		"rank_rows_dropped",
		metric.WithDescription("Data rows discarded while parsing"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"rank_source_failures",
		metric.WithDescription("Position sources that failed to load"),
	)
	if err != nil {
		return nil, err
	}

	loaded, err := meter.Int64Gauge(
		"rank_records_loaded",
		metric.WithDescription("Raw records currently held in memory"),
	)
	if err != nil {
		return nil, err
	}

	return &RankMetrics{
		QueriesTotal:   queries,
		QueryDuration:  duration,
		RowsParsed:     rowsParsed,
		RowsDropped:    rowsDropped,
		SourceFailures: failures,
		RecordsLoaded:  loaded,
	}, nil
}

// RecordQuery counts a query and its latency
func (m *RankMetrics) RecordQuery(ctx context.Context, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	m.QueriesTotal.Add(ctx, 1, attrs)
	m.QueryDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordParse counts rows read and dropped for one source
func (m *RankMetrics) RecordParse(ctx context.Context, rows, dropped int) {
	if m == nil {
		return
	}
	m.RowsParsed.Add(ctx, int64(rows))
	m.RowsDropped.Add(ctx, int64(dropped))
}

// RecordSourceFailure counts a source that could not be loaded
func (m *RankMetrics) RecordSourceFailure(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.SourceFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("error.type", kind)))
}

// RecordLoaded sets the number of records in memory
func (m *RankMetrics) RecordLoaded(ctx context.Context, count int) {
	if m == nil {
		return
	}
	m.RecordsLoaded.Record(ctx, int64(count))
}

// TraceIDFromContext returns the trace ID of the span in ctx, or "" when
// there is none.
func TraceIDFromContext(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || err == nil {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttributes adds attrs to the span in ctx when it is recording.
func SetSpanAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || len(attrs) == 0 {
		return
	}
	span.SetAttributes(attrs...)
}
