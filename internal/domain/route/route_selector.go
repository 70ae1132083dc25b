package route

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
)

// Rand is the randomness the engine needs. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand draws from the math/rand/v2 global source.
var DefaultRand Rand = globalRand{}

// NewSeededRand returns a deterministic source for tests and replays.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SelectionRequest describes one selection round.
type SelectionRequest struct {
	Regions []locitypes.Region
	Themes  []locitypes.Theme
	Count   int
	// Pinned places are already part of the itinerary. They count toward
	// theme/region coverage and are never selected again.
	Pinned []locitypes.Place
}

// Selector picks distinct sightseeing places, preferring unseen themes and
// regions until every requested theme and region has been covered.
type Selector struct {
	rng Rand
}

func NewSelector(rng Rand) *Selector {
	if rng == nil {
		rng = DefaultRand
	}
	return &Selector{rng: rng}
}

// Pool returns the catalog entries matching the requested themes and regions,
// without duplicate ids and without pinned places. The catalog is not modified.
func Pool(catalog []locitypes.Place, req SelectionRequest) []locitypes.Place {
	seen := make(map[int64]struct{}, len(catalog)+len(req.Pinned))
	for _, p := range req.Pinned {
		seen[p.ID] = struct{}{}
	}
	pool := make([]locitypes.Place, 0, len(catalog))
	for _, p := range catalog {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		if !slices.Contains(req.Themes, p.Theme) || !slices.Contains(req.Regions, p.Region) {
			continue
		}
		seen[p.ID] = struct{}{}
		pool = append(pool, p)
	}
	return pool
}

// Select returns req.Count distinct places in the order they were chosen.
func (s *Selector) Select(catalog []locitypes.Place, req SelectionRequest) ([]locitypes.Place, error) {
	if req.Count < 0 {
		return nil, fmt.Errorf("%w: negative stop count %d", locitypes.ErrInvalidSchedule, req.Count)
	}
	pool := Pool(catalog, req)
	if len(pool) < req.Count {
		return nil, &locitypes.InsufficientCandidatesError{Requested: req.Count, Available: len(pool)}
	}

	seenThemes := make(map[locitypes.Theme]struct{}, len(req.Themes))
	seenRegions := make(map[locitypes.Region]struct{}, len(req.Regions))
	for _, p := range req.Pinned {
		seenThemes[p.Theme] = struct{}{}
		seenRegions[p.Region] = struct{}{}
	}
	covered := func() bool {
		for _, t := range req.Themes {
			if _, ok := seenThemes[t]; !ok {
				return false
			}
		}
		for _, r := range req.Regions {
			if _, ok := seenRegions[r]; !ok {
				return false
			}
		}
		return true
	}

	selected := make([]locitypes.Place, 0, req.Count)
	working := make([]int, 0, len(pool))
	for len(selected) < req.Count {
		working = working[:0]
		for i := range pool {
			working = append(working, i)
		}

		pick := -1
		done := covered()
		for len(working) > 0 {
			k := s.rng.IntN(len(working))
			cand := pool[working[k]]
			if done {
				pick = working[k]
				break
			}
			_, themeSeen := seenThemes[cand.Theme]
			_, regionSeen := seenRegions[cand.Region]
			if !themeSeen || !regionSeen {
				seenThemes[cand.Theme] = struct{}{}
				seenRegions[cand.Region] = struct{}{}
				pick = working[k]
				break
			}
			working[k] = working[len(working)-1]
			working = working[:len(working)-1]
		}
		if pick < 0 {
			// Nothing left adds diversity.
			break
		}
		selected = append(selected, pool[pick])
		pool = slices.Delete(pool, pick, pick+1)
	}

	for len(selected) < req.Count {
		k := s.rng.IntN(len(pool))
		selected = append(selected, pool[k])
		pool = slices.Delete(pool, k, k+1)
	}
	return selected, nil
}
