package travelroute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/loci-travelroute-api/internal/domain/place"
	"github.com/FACorreiaa/loci-travelroute-api/internal/domain/route"
	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
	"github.com/FACorreiaa/loci-travelroute-api/pkg/observability"
)

// MockPlaceService is a mock implementation of place.Service
type MockPlaceService struct {
	mock.Mock
}

func (m *MockPlaceService) Snapshot(ctx context.Context, regions []locitypes.Region, themes []locitypes.Theme) (locitypes.Catalog, error) {
	args := m.Called(ctx, regions, themes)
	return args.Get(0).(locitypes.Catalog), args.Error(1)
}

func (m *MockPlaceService) ListPlaces(ctx context.Context, filter locitypes.PlaceFilter) ([]locitypes.Place, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]locitypes.Place), args.Error(1)
}

func (m *MockPlaceService) GetPlace(ctx context.Context, id int64) (*locitypes.Place, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*locitypes.Place), args.Error(1)
}

func (m *MockPlaceService) NearbyPlaces(ctx context.Context, lat, lon, radiusKm float64, themes []locitypes.Theme) ([]locitypes.Place, error) {
	args := m.Called(ctx, lat, lon, radiusKm, themes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]locitypes.Place), args.Error(1)
}

func (m *MockPlaceService) ImportPlaces(ctx context.Context, places []locitypes.Place) (int, error) {
	args := m.Called(ctx, places)
	return args.Int(0), args.Error(1)
}

var fixedNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestService(places place.Service, opts Options) (*ServiceImpl, *observability.Metrics) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	s := NewServiceImpl(places, metrics, opts, logger)
	s.newRand = func() route.Rand { return route.NewSeededRand(7) }
	s.now = func() time.Time { return fixedNow }
	return s, metrics
}

func setupTravelRouteServiceTest() (*ServiceImpl, *observability.Metrics) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	places := place.NewServiceImpl(place.NewMemoryRepository(place.SeedPlaces()), time.Minute, logger)
	return newTestService(places, DefaultOptions())
}

func seedConfig() locitypes.TravelRouteConfig {
	return locitypes.TravelRouteConfig{
		Regions: []locitypes.Region{locitypes.RegionAndeokMyeon, locitypes.RegionSeogwipoSi, locitypes.RegionHallimEup},
		Themes:  []locitypes.Theme{locitypes.ThemeNature, locitypes.ThemeActivity},
		Schedule: locitypes.Schedule{
			Breakfast: true,
			Morning:   1,
			Lunch:     true,
			Afternoon: 1,
			Dinner:    true,
		},
	}
}

func TestGenerateRoute(t *testing.T) {
	t.Run("full day over the seed catalog", func(t *testing.T) {
		service, metrics := setupTravelRouteServiceTest()

		got, err := service.GenerateRoute(context.Background(), seedConfig(), "")
		require.NoError(t, err)

		assert.NotEmpty(t, got.ID)
		assert.Equal(t, fixedNow, got.GeneratedAt)
		assert.Equal(t, route.SolverBruteForce, got.Solver)
		assert.Empty(t, got.UnfilledMeals)
		require.Len(t, got.Route, 5)
		assert.Equal(t, got.Schedule.Breakfast.Name, got.Route[0])
		assert.Equal(t, got.Schedule.Morning[0].Name, got.Route[1])
		assert.Equal(t, got.Schedule.Dinner.Name, got.Route[4])
		assert.Len(t, got.OrderedIndices, 2)
		assert.Greater(t, got.TotalDistanceKm, 0.0)

		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RoutesGenerated.WithLabelValues(route.SolverBruteForce, "ok")))
		assert.Zero(t, testutil.ToFloat64(metrics.SolvesInFlight))
	})

	t.Run("query fills themes and regions", func(t *testing.T) {
		service, _ := setupTravelRouteServiceTest()
		cfg := locitypes.TravelRouteConfig{Schedule: locitypes.Schedule{Morning: 1}}

		got, err := service.GenerateRoute(context.Background(), cfg, "Go karting near Hallim, then lunch")
		require.NoError(t, err)

		assert.Equal(t, []locitypes.Theme{locitypes.ThemeActivity}, got.Config.Themes)
		assert.Equal(t, []locitypes.Region{locitypes.RegionHallimEup}, got.Config.Regions)
		assert.True(t, got.Config.Schedule.Lunch)
		require.Len(t, got.Schedule.Morning, 1)
		assert.Equal(t, "제주카트클럽", got.Schedule.Morning[0].Name)
		require.NotNil(t, got.Schedule.Lunch)
	})

	t.Run("unrecognised query keeps the config", func(t *testing.T) {
		service, _ := setupTravelRouteServiceTest()
		cfg := seedConfig()

		got, err := service.GenerateRoute(context.Background(), cfg, "somewhere quiet")
		require.NoError(t, err)
		assert.Equal(t, cfg, got.Config)
	})

	t.Run("missing themes is a bad request", func(t *testing.T) {
		service, _ := setupTravelRouteServiceTest()
		cfg := seedConfig()
		cfg.Themes = nil

		_, err := service.GenerateRoute(context.Background(), cfg, "")
		assert.ErrorIs(t, err, locitypes.ErrBadRequest)
	})

	t.Run("too few candidates", func(t *testing.T) {
		service, metrics := setupTravelRouteServiceTest()
		cfg := seedConfig()
		cfg.Schedule.Morning = 3

		_, err := service.GenerateRoute(context.Background(), cfg, "")
		var insufficient *locitypes.InsufficientCandidatesError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 4, insufficient.Requested)
		assert.Equal(t, 3, insufficient.Available)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RoutesGenerated.WithLabelValues("none", "error")))
	})

	t.Run("catalog failure", func(t *testing.T) {
		mockPlaces := new(MockPlaceService)
		mockPlaces.On("Snapshot", mock.Anything, mock.Anything, mock.Anything).
			Return(locitypes.Catalog{}, errors.New("connection refused"))
		service, _ := newTestService(mockPlaces, DefaultOptions())
		var logs bytes.Buffer
		service.logger = slog.New(slog.NewTextHandler(&logs, nil))

		_, err := service.GenerateRoute(context.Background(), seedConfig(), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load catalog")
		assert.Contains(t, logs.String(), `msg="Failed to load catalog"`)
		assert.Contains(t, logs.String(), "method=GenerateRoute")
		mockPlaces.AssertExpectations(t)
	})

	t.Run("unfilled meals are reported", func(t *testing.T) {
		mockPlaces := new(MockPlaceService)
		catalog := locitypes.SplitCatalog(place.SeedPlaces())
		catalog.Eating = nil
		mockPlaces.On("Snapshot", mock.Anything, mock.Anything, mock.Anything).Return(catalog, nil)
		service, metrics := newTestService(mockPlaces, DefaultOptions())

		got, err := service.GenerateRoute(context.Background(), seedConfig(), "")
		require.NoError(t, err)
		assert.Equal(t, []locitypes.Meal{locitypes.MealBreakfast, locitypes.MealLunch, locitypes.MealDinner}, got.UnfilledMeals)
		assert.Len(t, got.Route, 2)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UnfilledMeals.WithLabelValues("lunch")))
	})
}

func gridCatalog(n int) locitypes.Catalog {
	places := make([]locitypes.Place, n)
	for i := range places {
		places[i] = locitypes.Place{
			ID:        int64(i + 1),
			Name:      fmt.Sprintf("spot %d", i+1),
			Theme:     locitypes.ThemeNature,
			Region:    locitypes.RegionJejuSi,
			Latitude:  33.40 + float64(i%4)*0.01,
			Longitude: 126.40 + float64(i/4)*0.013,
		}
	}
	return locitypes.Catalog{Sightseeing: places}
}

func TestGenerateRouteSolveBudget(t *testing.T) {
	cfg := locitypes.TravelRouteConfig{
		Regions:  []locitypes.Region{locitypes.RegionJejuSi},
		Themes:   []locitypes.Theme{locitypes.ThemeNature},
		Schedule: locitypes.Schedule{Morning: 6, Afternoon: 5},
	}

	t.Run("deadline stops exhaustive search", func(t *testing.T) {
		mockPlaces := new(MockPlaceService)
		mockPlaces.On("Snapshot", mock.Anything, mock.Anything, mock.Anything).Return(gridCatalog(11), nil)
		opts := DefaultOptions()
		opts.MaxExactStops = 11
		opts.SolveTimeout = time.Millisecond
		service, metrics := newTestService(mockPlaces, opts)

		_, err := service.GenerateRoute(context.Background(), cfg, "")
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RoutesGenerated.WithLabelValues("none", "timeout")))
	})

	t.Run("large schedules fall back to the heuristic", func(t *testing.T) {
		mockPlaces := new(MockPlaceService)
		mockPlaces.On("Snapshot", mock.Anything, mock.Anything, mock.Anything).Return(gridCatalog(11), nil)
		service, _ := newTestService(mockPlaces, DefaultOptions())

		got, err := service.GenerateRoute(context.Background(), cfg, "")
		require.NoError(t, err)
		assert.Equal(t, route.SolverHeuristic, got.Solver)
		assert.Len(t, got.Route, 11)
	})

	t.Run("busy planner", func(t *testing.T) {
		mockPlaces := new(MockPlaceService)
		mockPlaces.On("Snapshot", mock.Anything, mock.Anything, mock.Anything).Return(gridCatalog(3), nil)
		opts := DefaultOptions()
		opts.MaxConcurrentSolves = 1
		opts.SolveTimeout = 5 * time.Second
		service, metrics := newTestService(mockPlaces, opts)

		require.NoError(t, service.solves.Acquire(context.Background(), 1))
		defer service.solves.Release(1)

		small := cfg
		small.Schedule = locitypes.Schedule{Morning: 2}
		start := time.Now()
		_, err := service.GenerateRoute(context.Background(), small, "")
		assert.ErrorIs(t, err, locitypes.ErrPlannerBusy)
		assert.NotErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second, "busy must not wait for a slot")
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RoutesGenerated.WithLabelValues("none", "busy")))
	})
}

func TestRegenerateRoute(t *testing.T) {
	service, _ := setupTravelRouteServiceTest()
	ctx := context.Background()
	cfg := seedConfig()

	first, err := service.GenerateRoute(ctx, cfg, "")
	require.NoError(t, err)
	require.NotNil(t, first.Schedule.Lunch)

	keepStop := first.Schedule.Morning[0].PlaceID
	keepLunch := first.Schedule.Lunch.PlaceID

	for i := 0; i < 5; i++ {
		next, err := service.RegenerateRoute(ctx, cfg, first.Schedule, []int64{keepStop, keepLunch})
		require.NoError(t, err)

		var stops []int64
		for _, p := range append(next.Schedule.Morning, next.Schedule.Afternoon...) {
			stops = append(stops, p.PlaceID)
		}
		assert.Contains(t, stops, keepStop)
		require.NotNil(t, next.Schedule.Lunch)
		assert.Equal(t, keepLunch, next.Schedule.Lunch.PlaceID)
		assert.NotEqual(t, first.ID, next.ID)
	}

	_, err = service.RegenerateRoute(ctx, locitypes.TravelRouteConfig{
		Regions:  cfg.Regions,
		Themes:   cfg.Themes,
		Schedule: locitypes.Schedule{Lunch: true},
	}, first.Schedule, nil)
	assert.ErrorIs(t, err, locitypes.ErrNoMealAnchor)
}
