package route

import (
	"slices"

	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
)

const (
	DefaultEatingRadiusKm = 3.0
	DefaultCorridorKm     = 3.0
)

// EatingCatalog is a per-request working copy of eating places. Picked
// entries are removed so a restaurant is used at most once per itinerary.
type EatingCatalog struct {
	places []locitypes.Place
}

func NewEatingCatalog(places []locitypes.Place) *EatingCatalog {
	return &EatingCatalog{places: slices.Clone(places)}
}

func (c *EatingCatalog) Len() int { return len(c.places) }

// Remove drops the entry with the given id and reports whether it was present.
func (c *EatingCatalog) Remove(id int64) bool {
	i := slices.IndexFunc(c.places, func(p locitypes.Place) bool { return p.ID == id })
	if i < 0 {
		return false
	}
	c.places = slices.Delete(c.places, i, i+1)
	return true
}

// EatingLocator recommends a restaurant near an anchor stop.
type EatingLocator struct {
	RadiusKm   float64
	CorridorKm float64
	rng        Rand
}

func NewEatingLocator(radiusKm, corridorKm float64, rng Rand) *EatingLocator {
	if radiusKm <= 0 {
		radiusKm = DefaultEatingRadiusKm
	}
	if corridorKm <= 0 {
		corridorKm = DefaultCorridorKm
	}
	if rng == nil {
		rng = DefaultRand
	}
	return &EatingLocator{RadiusKm: radiusKm, CorridorKm: corridorKm, rng: rng}
}

// Candidates returns the places within RadiusKm of anchor and, when
// corridorEnd is set, within CorridorKm of the segment anchor→corridorEnd.
func (l *EatingLocator) Candidates(anchor locitypes.Place, corridorEnd *locitypes.Place, places []locitypes.Place) []locitypes.Place {
	bound := searchBound(anchor, l.RadiusKm)
	var out []locitypes.Place
	for _, p := range places {
		if !bound.Contains(p.Point()) {
			continue
		}
		if Distance(anchor, p) > l.RadiusKm {
			continue
		}
		if corridorEnd != nil && SegmentDistance(anchor, *corridorEnd, p) > l.CorridorKm {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Pick chooses a random candidate and removes it from catalog. It returns
// ErrNoEatingPlaceFound when no entry passes the filters.
func (l *EatingLocator) Pick(anchor locitypes.Place, corridorEnd *locitypes.Place, catalog *EatingCatalog) (locitypes.Place, error) {
	candidates := l.Candidates(anchor, corridorEnd, catalog.places)
	if len(candidates) == 0 {
		return locitypes.Place{}, locitypes.ErrNoEatingPlaceFound
	}
	picked := candidates[l.rng.IntN(len(candidates))]
	catalog.Remove(picked.ID)
	return picked, nil
}
