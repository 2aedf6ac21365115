package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/dvbroute/dvbroute/internal/api/middleware"

// Metrics holds the HTTP server instruments.
type Metrics struct {
	duration metric.Float64Histogram
	requests metric.Int64Counter
	inFlight metric.Int64UpDownCounter
	size     metric.Int64Histogram
}

// NewMetrics creates the HTTP server instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	var m Metrics
	var errs []error

	var err error
	m.duration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of HTTP server requests in seconds"),
		metric.WithUnit("s"))
	errs = append(errs, err)

	m.requests, err = meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Total number of HTTP server requests"),
		metric.WithUnit("{request}"))
	errs = append(errs, err)

	m.inFlight, err = meter.Int64UpDownCounter("http.server.requests_in_flight",
		metric.WithDescription("Number of HTTP requests currently being processed"),
		metric.WithUnit("{request}"))
	errs = append(errs, err)

	m.size, err = meter.Int64Histogram("http.server.response.size",
		metric.WithDescription("Size of HTTP server responses in bytes"),
		metric.WithUnit("By"))
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &m, nil
}

// Middleware records one sample per request. Requests are labelled by chi
// route pattern, so /v1/routes?from=a and /v1/routes?from=b share a series.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			method := attribute.String("http.method", r.Method)
			m.inFlight.Add(ctx, 1, metric.WithAttributes(method))
			defer m.inFlight.Add(ctx, -1, metric.WithAttributes(method))

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			route := routePattern(r)
			if route == "" {
				route = "unmatched"
			}
			attrs := []attribute.KeyValue{
				method,
				attribute.String("http.route", route),
				attribute.String("http.status_code", strconv.Itoa(rec.statusCode)),
			}
			if rec.statusCode >= 400 {
				attrs = append(attrs, attribute.Bool("error", true))
			}

			opt := metric.WithAttributes(attrs...)
			m.duration.Record(ctx, time.Since(start).Seconds(), opt)
			m.requests.Add(ctx, 1, opt)
			m.size.Record(ctx, rec.written, opt)
		})
	}
}

// ProviderMetrics records upstream transit calls and stop cache lookups.
// It satisfies transit.Recorder.
type ProviderMetrics struct {
	duration    metric.Float64Histogram
	requests    metric.Int64Counter
	cacheLookup metric.Int64Counter
}

// NewProviderMetrics creates the upstream instruments on the global meter provider.
func NewProviderMetrics() (*ProviderMetrics, error) {
	meter := otel.Meter(meterName)
	var m ProviderMetrics
	var errs []error

	var err error
	m.duration, err = meter.Float64Histogram("transit.upstream.duration",
		metric.WithDescription("Duration of transit provider calls in seconds, retries included"),
		metric.WithUnit("s"))
	errs = append(errs, err)

	m.requests, err = meter.Int64Counter("transit.upstream.requests",
		metric.WithDescription("Number of transit provider calls"),
		metric.WithUnit("{request}"))
	errs = append(errs, err)

	m.cacheLookup, err = meter.Int64Counter("transit.stop_cache.lookups",
		metric.WithDescription("Stop cache lookups, by outcome"),
		metric.WithUnit("{lookup}"))
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &m, nil
}

func providerAttrs(provider, operation string, extra ...attribute.KeyValue) metric.MeasurementOption {
	attrs := append([]attribute.KeyValue{
		attribute.String("transit.provider", provider),
		attribute.String("transit.operation", operation),
	}, extra...)
	return metric.WithAttributes(attrs...)
}

// RecordRequest records one provider call.
func (m *ProviderMetrics) RecordRequest(provider, operation string, duration time.Duration, err error) {
	opt := providerAttrs(provider, operation, attribute.Bool("error", err != nil))

	// The request context may already be cancelled.
	ctx := context.Background()
	m.duration.Record(ctx, duration.Seconds(), opt)
	m.requests.Add(ctx, 1, opt)
}

// RecordCacheHit records a stop cache hit.
func (m *ProviderMetrics) RecordCacheHit(provider, operation string) {
	m.cacheLookup.Add(context.Background(), 1, providerAttrs(provider, operation, attribute.Bool("cache.hit", true)))
}

// RecordCacheMiss records a stop cache miss.
func (m *ProviderMetrics) RecordCacheMiss(provider, operation string) {
	m.cacheLookup.Add(context.Background(), 1, providerAttrs(provider, operation, attribute.Bool("cache.hit", false)))
}
