package place

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
	"github.com/FACorreiaa/loci-travelroute-api/pkg/db"
)

func setupSQLiteRepositoryTest(t *testing.T) *SQLiteRepository {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sqlDB, err := db.OpenSQLite(context.Background(), ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewSQLiteRepository(sqlDB, logger)
}

func TestSQLiteRepository(t *testing.T) {
	repo := setupSQLiteRepositoryTest(t)
	ctx := context.Background()

	n, err := repo.SavePlaces(ctx, SeedPlaces())
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	t.Run("list by theme and region", func(t *testing.T) {
		places, err := repo.ListPlaces(ctx, locitypes.PlaceFilter{
			Themes:  []locitypes.Theme{locitypes.ThemeNature},
			Regions: []locitypes.Region{locitypes.RegionSeogwipoSi, locitypes.RegionAndeokMyeon},
		})
		require.NoError(t, err)
		require.Len(t, places, 2)
		assert.Equal(t, int64(1), places[0].ID)
		assert.Equal(t, int64(2), places[1].ID)
	})

	t.Run("list everything", func(t *testing.T) {
		places, err := repo.ListPlaces(ctx, locitypes.PlaceFilter{})
		require.NoError(t, err)
		assert.Equal(t, SeedPlaces(), places)
	})

	t.Run("get by id", func(t *testing.T) {
		p, err := repo.GetPlaceByID(ctx, 12)
		require.NoError(t, err)
		assert.Equal(t, "색달식당 중문본점", p.Name)

		_, err = repo.GetPlaceByID(ctx, 1000)
		assert.ErrorIs(t, err, locitypes.ErrNotFound)
	})

	t.Run("upsert replaces by id", func(t *testing.T) {
		renamed := SeedPlaces()[9]
		renamed.Name = "식당 본점"
		_, err := repo.SavePlaces(ctx, []locitypes.Place{renamed})
		require.NoError(t, err)

		p, err := repo.GetPlaceByID(ctx, renamed.ID)
		require.NoError(t, err)
		assert.Equal(t, "식당 본점", p.Name)

		all, err := repo.ListPlaces(ctx, locitypes.PlaceFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 12)
	})

	t.Run("places in bound", func(t *testing.T) {
		karting := SeedPlaces()[2]
		bound := geo.NewBoundAroundPoint(karting.Point(), 3000)
		places, err := repo.PlacesInBound(ctx, bound, []locitypes.Theme{locitypes.ThemeRestaurant})
		require.NoError(t, err)

		var ids []int64
		for _, p := range places {
			ids = append(ids, p.ID)
		}
		assert.Equal(t, []int64{4, 5}, ids)
	})
}
