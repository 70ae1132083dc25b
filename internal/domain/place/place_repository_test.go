package place

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
)

func setupPostgresRepositoryTest(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPostgresRepository(mockPool, logger), mockPool
}

func TestPostgresRepositoryListPlaces(t *testing.T) {
	repo, mockPool := setupPostgresRepositoryTest(t)

	rows := pgxmock.NewRows(placeColumns).
		AddRow(int64(1), "군산오름", "nature", "andeok-myeon", 33.253217, 126.370693).
		AddRow(int64(3), "제주카트클럽", "액티비티", "한림읍", 33.347790, 126.255974)

	mockPool.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, name, theme, region, latitude, longitude FROM places WHERE theme IN ($1,$2) AND region IN ($3,$4) ORDER BY id",
	)).
		WithArgs("nature", "activity", "andeok-myeon", "hallim-eup").
		WillReturnRows(rows)

	places, err := repo.ListPlaces(context.Background(), locitypes.PlaceFilter{
		Themes:  []locitypes.Theme{locitypes.ThemeNature, locitypes.ThemeActivity},
		Regions: []locitypes.Region{locitypes.RegionAndeokMyeon, locitypes.RegionHallimEup},
	})
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, locitypes.ThemeActivity, places[1].Theme)
	assert.Equal(t, locitypes.RegionHallimEup, places[1].Region)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresRepositoryListPlacesQueryError(t *testing.T) {
	repo, mockPool := setupPostgresRepositoryTest(t)
	mockPool.ExpectQuery("SELECT (.+) FROM places").WillReturnError(errors.New("connection reset"))

	_, err := repo.ListPlaces(context.Background(), locitypes.PlaceFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query places")
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresRepositoryGetPlaceByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mockPool := setupPostgresRepositoryTest(t)
		mockPool.ExpectQuery(regexp.QuoteMeta("FROM places WHERE id IN ($1)")).
			WithArgs(int64(2)).
			WillReturnRows(pgxmock.NewRows(placeColumns).
				AddRow(int64(2), "서귀포 자연휴양림", "nature", "seogwipo-si", 33.311453, 126.458861))

		p, err := repo.GetPlaceByID(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, "서귀포 자연휴양림", p.Name)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mockPool := setupPostgresRepositoryTest(t)
		mockPool.ExpectQuery(regexp.QuoteMeta("FROM places WHERE id IN ($1)")).
			WithArgs(int64(404)).
			WillReturnRows(pgxmock.NewRows(placeColumns))

		_, err := repo.GetPlaceByID(context.Background(), 404)
		assert.ErrorIs(t, err, locitypes.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresRepositorySavePlaces(t *testing.T) {
	places := SeedPlaces()[:2]

	t.Run("commits all rows", func(t *testing.T) {
		repo, mockPool := setupPostgresRepositoryTest(t)
		mockPool.ExpectBegin()
		for _, p := range places {
			mockPool.ExpectExec("INSERT INTO places").
				WithArgs(p.ID, p.Name, string(p.Theme), string(p.Region), p.Latitude, p.Longitude).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
		}
		mockPool.ExpectCommit()

		n, err := repo.SavePlaces(context.Background(), places)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		repo, mockPool := setupPostgresRepositoryTest(t)
		mockPool.ExpectBegin()
		mockPool.ExpectExec("INSERT INTO places").
			WithArgs(places[0].ID, places[0].Name, string(places[0].Theme), string(places[0].Region), places[0].Latitude, places[0].Longitude).
			WillReturnError(errors.New("disk full"))
		mockPool.ExpectRollback()

		_, err := repo.SavePlaces(context.Background(), places)
		require.Error(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
