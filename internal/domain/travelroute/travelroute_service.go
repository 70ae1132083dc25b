package travelroute

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"github.com/FACorreiaa/loci-travelroute-api/internal/domain/place"
	"github.com/FACorreiaa/loci-travelroute-api/internal/domain/route"
	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
	"github.com/FACorreiaa/loci-travelroute-api/pkg/observability"
)

var _ Service = (*ServiceImpl)(nil)

// Service plans travel routes over the place catalog.
type Service interface {
	// GenerateRoute plans a fresh itinerary. A non-empty query fills themes,
	// regions and meals the config leaves unset.
	GenerateRoute(ctx context.Context, cfg locitypes.TravelRouteConfig, query string) (*locitypes.GeneratedRoute, error)
	// RegenerateRoute re-plans keeping the places of current listed in pinned.
	RegenerateRoute(ctx context.Context, cfg locitypes.TravelRouteConfig, current locitypes.ScheduleInfo, pinned []int64) (*locitypes.GeneratedRoute, error)
}

// Options tune the engine and the solve budget.
type Options struct {
	EatingRadiusKm      float64
	CorridorKm          float64
	MaxExactStops       int
	MaxStops            int
	SolveTimeout        time.Duration
	MaxConcurrentSolves int64
	// Seed makes every planning run replay the same random choices when set.
	Seed uint64
}

func DefaultOptions() Options {
	return Options{
		EatingRadiusKm:      route.DefaultEatingRadiusKm,
		CorridorKm:          route.DefaultCorridorKm,
		MaxExactStops:       route.DefaultMaxExactStops,
		MaxStops:            12,
		SolveTimeout:        5 * time.Second,
		MaxConcurrentSolves: 4,
	}
}

type ServiceImpl struct {
	logger   *slog.Logger
	places   place.Service
	metrics  *observability.Metrics
	validate *validator.Validate
	solves   *semaphore.Weighted
	opts     Options
	// newRand returns the randomness for one planning run. Planners are not
	// shared between requests.
	newRand func() route.Rand
	now     func() time.Time
}

func NewServiceImpl(places place.Service, metrics *observability.Metrics, opts Options, logger *slog.Logger) *ServiceImpl {
	if opts.MaxConcurrentSolves <= 0 {
		opts.MaxConcurrentSolves = 1
	}
	if opts.SolveTimeout <= 0 {
		opts.SolveTimeout = DefaultOptions().SolveTimeout
	}
	return &ServiceImpl{
		logger:   logger,
		places:   places,
		metrics:  metrics,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		solves:   semaphore.NewWeighted(opts.MaxConcurrentSolves),
		opts:     opts,
		newRand: func() route.Rand {
			if opts.Seed != 0 {
				return route.NewSeededRand(opts.Seed)
			}
			return route.NewSeededRand(rand.Uint64())
		},
		now: time.Now,
	}
}

func (s *ServiceImpl) planner() *route.Planner {
	rng := s.newRand()
	return route.NewPlanner(
		route.NewSelector(rng),
		route.NewSequencer(s.opts.MaxExactStops),
		route.NewEatingLocator(s.opts.EatingRadiusKm, s.opts.CorridorKm, rng),
		route.WithMaxStops(s.opts.MaxStops),
	)
}

func (s *ServiceImpl) GenerateRoute(ctx context.Context, cfg locitypes.TravelRouteConfig, query string) (*locitypes.GeneratedRoute, error) {
	ctx, span := otel.Tracer("TravelRouteService").Start(ctx, "GenerateRoute", trace.WithAttributes(
		attribute.Int("schedule.morning", cfg.Schedule.Morning),
		attribute.Int("schedule.afternoon", cfg.Schedule.Afternoon),
		attribute.Bool("query.present", query != ""),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GenerateRoute"))

	if query != "" {
		prefs := locitypes.DetectPreferences(query)
		span.SetAttributes(attribute.Bool("query.matched", !prefs.Empty()))
		if prefs.Empty() {
			l.DebugContext(ctx, "No preferences recognised in query")
		} else {
			l.DebugContext(ctx, "Detected preferences from query",
				slog.Any("themes", prefs.Themes),
				slog.Any("regions", prefs.Regions),
				slog.Any("meals", prefs.Meals))
			cfg = cfg.Merge(prefs)
		}
	}

	return s.plan(ctx, span, l, cfg, func(ctx context.Context, p *route.Planner, catalog locitypes.Catalog) (*route.Itinerary, error) {
		return p.Plan(ctx, cfg, catalog)
	})
}

func (s *ServiceImpl) RegenerateRoute(ctx context.Context, cfg locitypes.TravelRouteConfig, current locitypes.ScheduleInfo, pinned []int64) (*locitypes.GeneratedRoute, error) {
	ctx, span := otel.Tracer("TravelRouteService").Start(ctx, "RegenerateRoute", trace.WithAttributes(
		attribute.Int("schedule.morning", cfg.Schedule.Morning),
		attribute.Int("schedule.afternoon", cfg.Schedule.Afternoon),
		attribute.Int("pinned.count", len(pinned)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "RegenerateRoute"))

	return s.plan(ctx, span, l, cfg, func(ctx context.Context, p *route.Planner, catalog locitypes.Catalog) (*route.Itinerary, error) {
		return p.Replan(ctx, cfg, catalog, current, pinned)
	})
}

type planFunc func(ctx context.Context, p *route.Planner, catalog locitypes.Catalog) (*route.Itinerary, error)

func (s *ServiceImpl) plan(ctx context.Context, span trace.Span, l *slog.Logger, cfg locitypes.TravelRouteConfig, run planFunc) (*locitypes.GeneratedRoute, error) {
	if err := s.validate.StructCtx(ctx, cfg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid config")
		return nil, fmt.Errorf("%w: %w", locitypes.ErrBadRequest, err)
	}

	catalog, err := s.places.Snapshot(ctx, cfg.Regions, cfg.Themes)
	if err != nil {
		l.ErrorContext(ctx, "Failed to load catalog", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load catalog")
		s.metrics.RoutesGenerated.WithLabelValues("none", "error").Inc()
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	span.SetAttributes(
		attribute.Int("catalog.sightseeing", len(catalog.Sightseeing)),
		attribute.Int("catalog.eating", len(catalog.Eating)),
	)

	solveCtx, cancel := context.WithTimeout(ctx, s.opts.SolveTimeout)
	defer cancel()

	if !s.solves.TryAcquire(1) {
		l.WarnContext(ctx, "Planner busy", slog.Int64("max_concurrent_solves", s.opts.MaxConcurrentSolves))
		span.RecordError(locitypes.ErrPlannerBusy)
		span.SetStatus(codes.Error, "Planner busy")
		s.metrics.RoutesGenerated.WithLabelValues("none", "busy").Inc()
		return nil, locitypes.ErrPlannerBusy
	}
	s.metrics.SolvesInFlight.Inc()
	start := time.Now()
	it, err := run(solveCtx, s.planner(), catalog)
	elapsed := time.Since(start)
	s.metrics.SolvesInFlight.Dec()
	s.solves.Release(1)

	if err != nil {
		status := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			status = "timeout"
		}
		l.WarnContext(ctx, "Failed to plan route", slog.Any("error", err), slog.Duration("elapsed", elapsed))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to plan route")
		s.metrics.RoutesGenerated.WithLabelValues("none", status).Inc()
		return nil, fmt.Errorf("failed to plan route: %w", err)
	}

	s.metrics.SolveDuration.WithLabelValues(it.Ordering.Solver).Observe(elapsed.Seconds())
	s.metrics.RoutesGenerated.WithLabelValues(it.Ordering.Solver, "ok").Inc()
	for _, m := range it.UnfilledMeals {
		s.metrics.UnfilledMeals.WithLabelValues(string(m)).Inc()
	}

	generated := s.generatedRoute(cfg, it)
	l.InfoContext(ctx, "Route planned",
		slog.String("route_id", generated.ID.String()),
		slog.String("solver", generated.Solver),
		slog.Int("stops", len(it.Stops)),
		slog.Float64("total_km", generated.TotalDistanceKm),
		slog.Duration("elapsed", elapsed))
	span.SetAttributes(
		attribute.String("route.id", generated.ID.String()),
		attribute.String("route.solver", generated.Solver),
		attribute.Float64("route.total_km", generated.TotalDistanceKm),
	)
	span.SetStatus(codes.Ok, "Route planned")
	return generated, nil
}

func (s *ServiceImpl) generatedRoute(cfg locitypes.TravelRouteConfig, it *route.Itinerary) *locitypes.GeneratedRoute {
	visits := it.Schedule.Route()
	names := make([]string, len(visits))
	for i, v := range visits {
		names[i] = v.Name
	}
	return &locitypes.GeneratedRoute{
		ID:              uuid.New(),
		Config:          cfg,
		Schedule:        it.Schedule,
		Route:           names,
		OrderedIndices:  it.Ordering.Indices,
		TotalDistanceKm: it.Ordering.TotalKm,
		Solver:          it.Ordering.Solver,
		UnfilledMeals:   it.UnfilledMeals,
		GeneratedAt:     s.now().UTC(),
	}
}
