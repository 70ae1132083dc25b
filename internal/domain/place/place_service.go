package place

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service exposes the place catalog to the route planner and the RPC layer.
type Service interface {
	// Snapshot returns the sightseeing places matching regions/themes and the
	// full eating catalog. Results are cached and must not be mutated.
	Snapshot(ctx context.Context, regions []locitypes.Region, themes []locitypes.Theme) (locitypes.Catalog, error)
	ListPlaces(ctx context.Context, filter locitypes.PlaceFilter) ([]locitypes.Place, error)
	GetPlace(ctx context.Context, id int64) (*locitypes.Place, error)
	NearbyPlaces(ctx context.Context, lat, lon, radiusKm float64, themes []locitypes.Theme) ([]locitypes.Place, error)
	ImportPlaces(ctx context.Context, places []locitypes.Place) (int, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	cache  *cache.Cache
}

func NewServiceImpl(repo Repository, cacheTTL time.Duration, logger *slog.Logger) *ServiceImpl {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		cache:  cache.New(cacheTTL, 2*cacheTTL),
	}
}

func snapshotCacheKey(regions []locitypes.Region, themes []locitypes.Theme) string {
	r := regionStrings(regions)
	t := themeStrings(themes)
	slices.Sort(r)
	slices.Sort(t)
	return fmt.Sprintf("catalog:%s:%s", strings.Join(r, ","), strings.Join(t, ","))
}

func (s *ServiceImpl) Snapshot(ctx context.Context, regions []locitypes.Region, themes []locitypes.Theme) (locitypes.Catalog, error) {
	ctx, span := otel.Tracer("PlaceService").Start(ctx, "Snapshot", trace.WithAttributes(
		attribute.Int("regions.count", len(regions)),
		attribute.Int("themes.count", len(themes)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Snapshot"))

	cacheKey := snapshotCacheKey(regions, themes)
	span.SetAttributes(attribute.String("cache.key", cacheKey))
	if cached, found := s.cache.Get(cacheKey); found {
		if catalog, ok := cached.(locitypes.Catalog); ok {
			l.DebugContext(ctx, "Serving catalog snapshot from cache", slog.String("key", cacheKey))
			span.SetAttributes(attribute.Bool("cache.hit", true))
			span.SetStatus(codes.Ok, "Snapshot served from cache")
			return catalog, nil
		}
	}

	sightseeingThemes := slices.DeleteFunc(slices.Clone(themes), locitypes.Theme.IsEating)

	var catalog locitypes.Catalog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if len(sightseeingThemes) == 0 || len(regions) == 0 {
			return nil
		}
		places, err := s.repo.ListPlaces(gctx, locitypes.PlaceFilter{Themes: sightseeingThemes, Regions: regions})
		if err != nil {
			return fmt.Errorf("failed to load sightseeing places: %w", err)
		}
		catalog.Sightseeing = places
		return nil
	})
	g.Go(func() error {
		places, err := s.repo.ListPlaces(gctx, locitypes.PlaceFilter{Themes: []locitypes.Theme{locitypes.ThemeRestaurant}})
		if err != nil {
			return fmt.Errorf("failed to load eating places: %w", err)
		}
		catalog.Eating = places
		return nil
	})
	if err := g.Wait(); err != nil {
		l.ErrorContext(ctx, "Failed to load catalog snapshot", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Repository operation failed")
		return locitypes.Catalog{}, err
	}

	s.cache.Set(cacheKey, catalog, cache.DefaultExpiration)
	l.InfoContext(ctx, "Catalog snapshot loaded",
		slog.Int("sightseeing", len(catalog.Sightseeing)),
		slog.Int("eating", len(catalog.Eating)))
	span.SetAttributes(
		attribute.Int("sightseeing.count", len(catalog.Sightseeing)),
		attribute.Int("eating.count", len(catalog.Eating)),
	)
	span.SetStatus(codes.Ok, "Snapshot loaded")
	return catalog, nil
}

func (s *ServiceImpl) ListPlaces(ctx context.Context, filter locitypes.PlaceFilter) ([]locitypes.Place, error) {
	ctx, span := otel.Tracer("PlaceService").Start(ctx, "ListPlaces")
	defer span.End()

	l := s.logger.With(slog.String("method", "ListPlaces"))

	places, err := s.repo.ListPlaces(ctx, filter)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list places", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Repository operation failed")
		return nil, fmt.Errorf("failed to list places: %w", err)
	}

	span.SetAttributes(attribute.Int("places.count", len(places)))
	span.SetStatus(codes.Ok, "Places listed")
	return places, nil
}

func (s *ServiceImpl) GetPlace(ctx context.Context, id int64) (*locitypes.Place, error) {
	ctx, span := otel.Tracer("PlaceService").Start(ctx, "GetPlace", trace.WithAttributes(
		attribute.Int64("place.id", id),
	))
	defer span.End()

	p, err := s.repo.GetPlaceByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Repository operation failed")
		return nil, fmt.Errorf("failed to get place: %w", err)
	}
	span.SetStatus(codes.Ok, "Place retrieved")
	return p, nil
}

// NearbyPlaces returns places within radiusKm of (lat, lon), closest first.
func (s *ServiceImpl) NearbyPlaces(ctx context.Context, lat, lon, radiusKm float64, themes []locitypes.Theme) ([]locitypes.Place, error) {
	ctx, span := otel.Tracer("PlaceService").Start(ctx, "NearbyPlaces", trace.WithAttributes(
		attribute.Float64("latitude", lat),
		attribute.Float64("longitude", lon),
		attribute.Float64("radius.km", radiusKm),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "NearbyPlaces"))
	if radiusKm <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive", locitypes.ErrBadRequest)
	}

	center := orb.Point{lon, lat}
	radiusM := radiusKm * 1000
	candidates, err := s.repo.PlacesInBound(ctx, geo.NewBoundAroundPoint(center, radiusM), themes)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query places in bound", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Repository operation failed")
		return nil, fmt.Errorf("failed to find nearby places: %w", err)
	}

	type ranked struct {
		place locitypes.Place
		dist  float64
	}
	var within []ranked
	for _, p := range candidates {
		if d := geo.DistanceHaversine(center, p.Point()); d <= radiusM {
			within = append(within, ranked{place: p, dist: d})
		}
	}
	slices.SortStableFunc(within, func(a, b ranked) int {
		switch {
		case a.dist < b.dist:
			return -1
		case a.dist > b.dist:
			return 1
		}
		return 0
	})

	places := make([]locitypes.Place, len(within))
	for i, r := range within {
		places[i] = r.place
	}
	span.SetAttributes(attribute.Int("places.count", len(places)))
	span.SetStatus(codes.Ok, "Nearby places found")
	return places, nil
}

// ImportPlaces validates and upserts places, then drops cached snapshots.
func (s *ServiceImpl) ImportPlaces(ctx context.Context, places []locitypes.Place) (int, error) {
	ctx, span := otel.Tracer("PlaceService").Start(ctx, "ImportPlaces", trace.WithAttributes(
		attribute.Int("places.count", len(places)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "ImportPlaces"))

	for _, p := range places {
		if err := validatePlace(p); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Invalid place")
			return 0, err
		}
	}

	n, err := s.repo.SavePlaces(ctx, places)
	if err != nil {
		l.ErrorContext(ctx, "Failed to save places", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Repository operation failed")
		return 0, fmt.Errorf("failed to import places: %w", err)
	}
	s.cache.Flush()

	l.InfoContext(ctx, "Places imported", slog.Int("count", n))
	span.SetStatus(codes.Ok, "Places imported")
	return n, nil
}

func validatePlace(p locitypes.Place) error {
	switch {
	case p.ID <= 0:
		return fmt.Errorf("%w: place id must be positive, got %d", locitypes.ErrBadRequest, p.ID)
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: place %d has no name", locitypes.ErrBadRequest, p.ID)
	case !p.Theme.Valid():
		return fmt.Errorf("%w: place %d: %w", locitypes.ErrBadRequest, p.ID, locitypes.ErrUnknownTheme)
	case !p.Region.Valid():
		return fmt.Errorf("%w: place %d: %w", locitypes.ErrBadRequest, p.ID, locitypes.ErrUnknownRegion)
	case p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180:
		return fmt.Errorf("%w: place %d has invalid coordinates", locitypes.ErrBadRequest, p.ID)
	}
	return nil
}
