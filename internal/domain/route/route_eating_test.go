package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
)

// offset moves a place by north/east kilometers.
func offset(p locitypes.Place, id int64, northKm, eastKm float64) locitypes.Place {
	lonKm := Haversine(p.Latitude, p.Longitude, p.Latitude, p.Longitude+1)
	return locitypes.Place{
		ID:        id,
		Name:      "restaurant",
		Theme:     locitypes.ThemeRestaurant,
		Region:    p.Region,
		Latitude:  p.Latitude + northKm/kmPerDegree,
		Longitude: p.Longitude + eastKm/lonKm,
	}
}

func TestEatingLocatorPickRadius(t *testing.T) {
	anchor := locitypes.Place{ID: 100, Latitude: 33.30, Longitude: 126.30, Region: locitypes.RegionSeogwipoSi}
	near1 := offset(anchor, 1, 1, 0)
	near2 := offset(anchor, 2, 0, -2.5)
	far1 := offset(anchor, 3, 4, 0)
	far2 := offset(anchor, 4, 0, 10)

	l := NewEatingLocator(0, 0, NewSeededRand(11))
	catalog := NewEatingCatalog([]locitypes.Place{near1, far1, near2, far2})

	first, err := l.Pick(anchor, nil, catalog)
	require.NoError(t, err)
	assert.Contains(t, []int64{1, 2}, first.ID)
	assert.Equal(t, 3, catalog.Len())

	second, err := l.Pick(anchor, nil, catalog)
	require.NoError(t, err)
	assert.Contains(t, []int64{1, 2}, second.ID)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = l.Pick(anchor, nil, catalog)
	assert.ErrorIs(t, err, locitypes.ErrNoEatingPlaceFound)
	assert.Equal(t, 2, catalog.Len(), "failed pick must not remove anything")
}

func TestEatingLocatorCandidates(t *testing.T) {
	anchor := locitypes.Place{ID: 100, Latitude: 33.30, Longitude: 126.30}
	end := offset(anchor, 101, 0, 10)

	onPath := offset(anchor, 1, 0.5, 2)
	nearAnchorOffPath := offset(anchor, 2, -2, -1)
	midPathNorth := offset(anchor, 3, 2.5, 5)
	farFromPath := offset(anchor, 4, 5, 6)
	pastEnd := offset(anchor, 5, 0, 14)
	places := []locitypes.Place{onPath, nearAnchorOffPath, midPathNorth, farFromPath, pastEnd}

	ids := func(ps []locitypes.Place) []int64 {
		var out []int64
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}

	t.Run("default radius bounds the corridor", func(t *testing.T) {
		l := NewEatingLocator(DefaultEatingRadiusKm, DefaultCorridorKm, nil)
		got := l.Candidates(anchor, &end, places)
		assert.ElementsMatch(t, []int64{1, 2}, ids(got))
		for _, p := range got {
			assert.LessOrEqual(t, SegmentDistance(anchor, end, p), DefaultCorridorKm)
		}
	})

	t.Run("corridor excludes places far from the path", func(t *testing.T) {
		l := NewEatingLocator(12, 3, nil)
		got := l.Candidates(anchor, &end, places)
		assert.ElementsMatch(t, []int64{1, 2, 3}, ids(got))
	})

	t.Run("no corridor", func(t *testing.T) {
		l := NewEatingLocator(12, 3, nil)
		got := l.Candidates(anchor, nil, places)
		assert.ElementsMatch(t, []int64{1, 2, 3, 4}, ids(got))
	})
}

func TestEatingCatalogIsACopy(t *testing.T) {
	src := []locitypes.Place{{ID: 1}, {ID: 2}}
	c := NewEatingCatalog(src)

	assert.True(t, c.Remove(1))
	assert.False(t, c.Remove(1))
	assert.Equal(t, 1, c.Len())
	assert.Len(t, src, 2)
	assert.Equal(t, int64(1), src[0].ID)
}
