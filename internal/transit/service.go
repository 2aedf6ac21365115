package transit

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/dvbroute/dvbroute/internal/transit"

// Recorder receives per-call provider metrics.
type Recorder interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
	RecordCacheHit(provider, operation string)
	RecordCacheMiss(provider, operation string)
}

// ServiceConfig holds configuration for the transit service.
type ServiceConfig struct {
	// Provider is the upstream stop and route provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// StopCacheTTL is how long stop lookups are cached (default: 24 hours).
	// Stop names and IDs rarely change. A negative value disables the cache.
	StopCacheTTL time.Duration

	// Metrics records provider call metrics (optional).
	Metrics Recorder

	// Tracer overrides the global tracer (optional).
	Tracer trace.Tracer

	// Now overrides the clock used when a request has no time (optional).
	Now func() time.Time
}

// Service resolves stops, fetches routes and simplifies the result.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	stops    *cache.Cache
	metrics  Recorder
	tracer   trace.Tracer
	now      func() time.Time
}

// NewService creates a new transit service.
func NewService(cfg ServiceConfig) *Service {
	ttl := cfg.StopCacheTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	var stops *cache.Cache
	if ttl > 0 {
		stops = cache.New(ttl, 2*ttl)
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
		stops:    stops,
		metrics:  cfg.Metrics,
		tracer:   tracer,
		now:      now,
	}
}

// FindStops returns the ranked stop candidates for a query.
func (s *Service) FindStops(ctx context.Context, query string) ([]StopLocation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty stop query", ErrInvalidQuery)
	}

	if s.stops != nil {
		if cached, ok := s.stops.Get(query); ok {
			s.recordCacheHit("find_stop")
			s.logger.Debug().
				Str("query", query).
				Msg("cache hit for stop lookup")
			return slices.Clone(cached.([]StopLocation)), nil
		}
		s.recordCacheMiss("find_stop")
	}

	ctx, span := s.tracer.Start(ctx, "transit.FindStop",
		trace.WithAttributes(
			attribute.String("transit.provider", s.provider.Name()),
			attribute.String("transit.query", query),
		),
	)
	defer span.End()

	start := time.Now()
	stops, err := s.provider.FindStop(ctx, query)
	s.recordRequest("find_stop", time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stop lookup failed")
		s.logger.Error().Err(err).
			Str("query", query).
			Msg("failed to look up stop")
		return nil, err
	}

	span.SetAttributes(attribute.Int("transit.candidates", len(stops)))

	// Empty results are not cached so a transient upstream glitch is not pinned.
	// Callers own the returned slice, so the cache keeps its own copy.
	if s.stops != nil && len(stops) > 0 {
		s.stops.SetDefault(query, slices.Clone(stops))
	}

	return stops, nil
}

// ResolveStop returns the best candidate for a query.
func (s *Service) ResolveStop(ctx context.Context, query string) (StopLocation, error) {
	stops, err := s.FindStops(ctx, query)
	if err != nil {
		return StopLocation{}, err
	}
	if len(stops) == 0 {
		return StopLocation{}, fmt.Errorf("%w: %q", ErrStopNotFound, query)
	}
	return stops[0], nil
}

// FetchRoute resolves both stops and fetches the raw route between them.
// Origin and destination are resolved one after another, then the route is fetched.
func (s *Service) FetchRoute(ctx context.Context, req PlanRequest) (*Route, error) {
	origin, err := s.ResolveStop(ctx, req.Origin)
	if err != nil {
		return nil, fmt.Errorf("resolving origin: %w", err)
	}

	destination, err := s.ResolveStop(ctx, req.Destination)
	if err != nil {
		return nil, fmt.Errorf("resolving destination: %w", err)
	}

	when := req.Time
	if when.IsZero() {
		when = s.now()
	}

	ctx, span := s.tracer.Start(ctx, "transit.Route",
		trace.WithAttributes(
			attribute.String("transit.provider", s.provider.Name()),
			attribute.String("transit.origin_id", origin.ID),
			attribute.String("transit.destination_id", destination.ID),
			attribute.Bool("transit.is_arrival_time", req.IsArrivalTime),
		),
	)
	defer span.End()

	s.logger.Debug().
		Str("origin", StopDisplayName(origin)).
		Str("destination", StopDisplayName(destination)).
		Time("time", when).
		Bool("is_arrival_time", req.IsArrivalTime).
		Msg("fetching route from provider")

	start := time.Now()
	route, err := s.provider.Route(ctx, origin.ID, destination.ID, when, req.IsArrivalTime)
	s.recordRequest("route", time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "route fetch failed")
		s.logger.Error().Err(err).
			Str("origin_id", origin.ID).
			Str("destination_id", destination.ID).
			Msg("failed to fetch route")
		return nil, fmt.Errorf("fetching route: %w", err)
	}

	if route.Origin.Name == "" {
		route.Origin = origin
	}
	if route.Destination.Name == "" {
		route.Destination = destination
	}

	span.SetAttributes(attribute.Int("transit.trips", len(route.Trips)))

	return route, nil
}

// Plan resolves both stops, fetches the route and returns its display form.
func (s *Service) Plan(ctx context.Context, req PlanRequest) (*SimpleRoute, error) {
	ctx, span := s.tracer.Start(ctx, "transit.Plan")
	defer span.End()

	route, err := s.FetchRoute(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "plan failed")
		return nil, err
	}

	simple := SimplifyRoute(*route)

	s.logger.Info().
		Str("origin", simple.Origin).
		Str("destination", simple.Destination).
		Int("trips", len(simple.Trips)).
		Msg("route planned")

	return &simple, nil
}

// InvalidateCache clears all cached stop lookups.
func (s *Service) InvalidateCache() {
	if s.stops != nil {
		s.stops.Flush()
	}
}

// CacheStats returns cache statistics.
func (s *Service) CacheStats() CacheStats {
	stats := CacheStats{Provider: s.provider.Name()}
	if s.stops != nil {
		stats.Enabled = true
		stats.StopEntries = s.stops.ItemCount()
	}
	return stats
}

// CacheStats contains cache statistics.
type CacheStats struct {
	Provider    string
	Enabled     bool
	StopEntries int
}

func (s *Service) recordRequest(operation string, d time.Duration, err error) {
	if s.metrics != nil {
		s.metrics.RecordRequest(s.provider.Name(), operation, d, err)
	}
}

func (s *Service) recordCacheHit(operation string) {
	if s.metrics != nil {
		s.metrics.RecordCacheHit(s.provider.Name(), operation)
	}
}

func (s *Service) recordCacheMiss(operation string) {
	if s.metrics != nil {
		s.metrics.RecordCacheMiss(s.provider.Name(), operation)
	}
}
