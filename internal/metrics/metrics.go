package metrics

import (
	"context"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics holds the service instruments. A nil *Metrics records nothing.
type Metrics struct {
	HTTPRequests      metric.Int64Counter
	HTTPDuration      metric.Float64Histogram
	CacheHits         metric.Int64Counter
	CacheMisses       metric.Int64Counter
	ActiveConnections metric.Int64UpDownCounter
	TaskOutcomes      metric.Int64Counter
	TaskDuration      metric.Float64Histogram
	PostMutations     metric.Int64Counter
}

// Setup builds the meter provider on a private Prometheus registry and returns
// the handler that serves it.
func Setup(serviceName string) (*Metrics, http.Handler, error) {
	registry := promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	m := &Metrics{}

	m.HTTPRequests, err = meter.Int64Counter(
		"ssp_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.HTTPDuration, err = meter.Float64Histogram(
		"ssp_http_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.CacheHits, err = meter.Int64Counter(
		"ssp_cache_hits_total",
		metric.WithDescription("Total number of cache hits"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.CacheMisses, err = meter.Int64Counter(
		"ssp_cache_misses_total",
		metric.WithDescription("Total number of cache misses"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.ActiveConnections, err = meter.Int64UpDownCounter(
		"ssp_live_connections",
		metric.WithDescription("Number of open websocket and SSE connections"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.TaskOutcomes, err = meter.Int64Counter(
		"ssp_tasks_total",
		metric.WithDescription("Background tasks by kind and final status"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.TaskDuration, err = meter.Float64Histogram(
		"ssp_task_duration_seconds",
		metric.WithDescription("Background task run time in seconds"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.PostMutations, err = meter.Int64Counter(
		"ssp_post_mutations_total",
		metric.WithDescription("Post and approval mutations by entity and action"),
	)
	if err != nil {
		return nil, nil, err
	}

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m, handler, nil
}

func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)

	m.HTTPRequests.Add(ctx, 1, labels)
	m.HTTPDuration.Record(ctx, duration.Seconds(), labels)
}

func (m *Metrics) RecordCacheHit(ctx context.Context, key string) {
	if m == nil {
		return
	}
	m.CacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("key", key)))
}

func (m *Metrics) RecordCacheMiss(ctx context.Context, key string) {
	if m == nil {
		return
	}
	m.CacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("key", key)))
}

func (m *Metrics) IncrementConnections(ctx context.Context, transport string) {
	if m == nil {
		return
	}
	m.ActiveConnections.Add(ctx, 1, metric.WithAttributes(attribute.String("transport", transport)))
}

func (m *Metrics) DecrementConnections(ctx context.Context, transport string) {
	if m == nil {
		return
	}
	m.ActiveConnections.Add(ctx, -1, metric.WithAttributes(attribute.String("transport", transport)))
}

// RecordTask counts a finished background task
func (m *Metrics) RecordTask(ctx context.Context, kind, status string, duration time.Duration) {
	if m == nil {
		return
	}
	labels := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", status),
	)
	m.TaskOutcomes.Add(ctx, 1, labels)
	m.TaskDuration.Record(ctx, duration.Seconds(), labels)
}

// RecordMutation counts a create, update or delete of a business entity
func (m *Metrics) RecordMutation(ctx context.Context, entity, action string) {
	if m == nil {
		return
	}
	m.PostMutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("action", action),
	))
}
