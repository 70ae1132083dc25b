package place

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/paulmach/orb"

	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
)

var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository keeps the catalog in process. It backs the "memory"
// database driver and tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	places map[int64]locitypes.Place
}

func NewMemoryRepository(seed []locitypes.Place) *MemoryRepository {
	r := &MemoryRepository{places: make(map[int64]locitypes.Place, len(seed))}
	for _, p := range seed {
		r.places[p.ID] = p
	}
	return r
}

func (r *MemoryRepository) ListPlaces(_ context.Context, filter locitypes.PlaceFilter) ([]locitypes.Place, error) {
	return r.collect(func(p locitypes.Place) bool {
		return (len(filter.IDs) == 0 || slices.Contains(filter.IDs, p.ID)) &&
			(len(filter.Themes) == 0 || slices.Contains(filter.Themes, p.Theme)) &&
			(len(filter.Regions) == 0 || slices.Contains(filter.Regions, p.Region))
	}), nil
}

func (r *MemoryRepository) PlacesInBound(_ context.Context, b orb.Bound, themes []locitypes.Theme) ([]locitypes.Place, error) {
	return r.collect(func(p locitypes.Place) bool {
		return b.Contains(p.Point()) && (len(themes) == 0 || slices.Contains(themes, p.Theme))
	}), nil
}

func (r *MemoryRepository) GetPlaceByID(_ context.Context, id int64) (*locitypes.Place, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.places[id]
	if !ok {
		return nil, fmt.Errorf("place %d: %w", id, locitypes.ErrNotFound)
	}
	return &p, nil
}

func (r *MemoryRepository) SavePlaces(_ context.Context, places []locitypes.Place) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range places {
		r.places[p.ID] = p
	}
	return len(places), nil
}

func (r *MemoryRepository) collect(keep func(locitypes.Place) bool) []locitypes.Place {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []locitypes.Place
	for _, p := range r.places {
		if keep(p) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b locitypes.Place) int { return cmp.Compare(a.ID, b.ID) })
	return out
}
