package route

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
)

// Itinerary is the planner output.
type Itinerary struct {
	Schedule locitypes.ScheduleInfo
	// Stops are the sightseeing places in visiting order.
	Stops    []locitypes.Place
	Ordering Ordering
	// UnfilledMeals lists requested meals with no restaurant in range.
	UnfilledMeals []locitypes.Meal
}

// Planner composes selection, sequencing and meal lookup into one itinerary.
type Planner struct {
	selector  *Selector
	sequencer *Sequencer
	locator   *EatingLocator
	maxStops  int
}

type PlannerOption func(*Planner)

func WithMaxStops(n int) PlannerOption {
	return func(p *Planner) { p.maxStops = n }
}

func NewPlanner(selector *Selector, sequencer *Sequencer, locator *EatingLocator, opts ...PlannerOption) *Planner {
	p := &Planner{
		selector:  selector,
		sequencer: sequencer,
		locator:   locator,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewDefaultPlanner wires the engine with default radii and the given source.
func NewDefaultPlanner(rng Rand) *Planner {
	return NewPlanner(
		NewSelector(rng),
		NewSequencer(DefaultMaxExactStops),
		NewEatingLocator(DefaultEatingRadiusKm, DefaultCorridorKm, rng),
	)
}

// Plan builds a fresh itinerary from the catalog snapshot.
func (p *Planner) Plan(ctx context.Context, cfg locitypes.TravelRouteConfig, catalog locitypes.Catalog) (*Itinerary, error) {
	return p.Replan(ctx, cfg, catalog, locitypes.ScheduleInfo{}, nil)
}

// Replan regenerates an itinerary keeping the places of current whose ids are
// in pinned. Pinned sightseeing stops are re-sequenced with the new picks and
// pinned meals keep their slot when that meal is still requested.
func (p *Planner) Replan(ctx context.Context, cfg locitypes.TravelRouteConfig, catalog locitypes.Catalog, current locitypes.ScheduleInfo, pinned []int64) (*Itinerary, error) {
	sched := cfg.Schedule
	if err := p.validate(sched); err != nil {
		return nil, err
	}

	pinnedStops := pinnedPlaces(append(slices.Clone(current.Morning), current.Afternoon...), pinned, catalog.Sightseeing)
	if len(pinnedStops) > sched.Stops() {
		return nil, fmt.Errorf("%w: %d pinned stops exceed %d requested", locitypes.ErrInvalidSchedule, len(pinnedStops), sched.Stops())
	}

	picked, err := p.selector.Select(catalog.Sightseeing, SelectionRequest{
		Regions: cfg.Regions,
		Themes:  cfg.Themes,
		Count:   sched.Stops() - len(pinnedStops),
		Pinned:  pinnedStops,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to select places: %w", err)
	}
	stops := append(pinnedStops, picked...)

	ordering, err := p.sequencer.Order(ctx, stops)
	if err != nil {
		return nil, fmt.Errorf("failed to order places: %w", err)
	}
	ordered := make([]locitypes.Place, len(stops))
	for i, idx := range ordering.Indices {
		ordered[i] = stops[idx]
	}

	it := &Itinerary{
		Stops:    ordered,
		Ordering: ordering,
	}
	morning, afternoon := ordered[:sched.Morning], ordered[sched.Morning:]
	it.Schedule.Morning = infos(morning)
	it.Schedule.Afternoon = infos(afternoon)

	eating := NewEatingCatalog(catalog.Eating)
	kept := make(map[locitypes.Meal]locitypes.PlaceInfo)
	for _, meal := range locitypes.Meals {
		mp := current.MealPlace(meal)
		if mp == nil || !slices.Contains(pinned, mp.PlaceID) {
			continue
		}
		eating.Remove(mp.PlaceID)
		if sched.WantsMeal(meal) {
			kept[meal] = *mp
		}
	}

	for _, meal := range locitypes.Meals {
		if !sched.WantsMeal(meal) {
			continue
		}
		if mp, ok := kept[meal]; ok {
			it.Schedule.SetMeal(meal, &mp)
			continue
		}
		anchor, end := mealAnchor(meal, morning, afternoon)
		place, err := p.locator.Pick(anchor, end, eating)
		if errors.Is(err, locitypes.ErrNoEatingPlaceFound) {
			it.UnfilledMeals = append(it.UnfilledMeals, meal)
			continue
		}
		if err != nil {
			return nil, err
		}
		info := place.Info()
		it.Schedule.SetMeal(meal, &info)
	}

	return it, nil
}

func (p *Planner) validate(s locitypes.Schedule) error {
	if s.Morning < 0 || s.Afternoon < 0 {
		return fmt.Errorf("%w: stop counts must not be negative", locitypes.ErrInvalidSchedule)
	}
	if p.maxStops > 0 && s.Stops() > p.maxStops {
		return fmt.Errorf("%w: %d requested, limit %d", locitypes.ErrTooManyStops, s.Stops(), p.maxStops)
	}
	if s.Stops() == 0 && s.WantsAnyMeal() {
		return locitypes.ErrNoMealAnchor
	}
	return nil
}

// mealAnchor returns the stop a meal is searched around and, for lunch between
// two halves of the day, the stop that closes the corridor.
// Callers guarantee at least one stop.
func mealAnchor(meal locitypes.Meal, morning, afternoon []locitypes.Place) (locitypes.Place, *locitypes.Place) {
	switch meal {
	case locitypes.MealBreakfast:
		if len(morning) > 0 {
			return morning[0], nil
		}
		return afternoon[0], nil
	case locitypes.MealLunch:
		switch {
		case len(morning) > 0 && len(afternoon) > 0:
			end := afternoon[0]
			return morning[len(morning)-1], &end
		case len(morning) > 0:
			return morning[len(morning)-1], nil
		default:
			return afternoon[0], nil
		}
	default:
		if len(afternoon) > 0 {
			return afternoon[len(afternoon)-1], nil
		}
		return morning[len(morning)-1], nil
	}
}

func pinnedPlaces(current []locitypes.PlaceInfo, pinned []int64, catalog []locitypes.Place) []locitypes.Place {
	var out []locitypes.Place
	for _, info := range current {
		if !slices.Contains(pinned, info.PlaceID) {
			continue
		}
		if slices.ContainsFunc(out, func(p locitypes.Place) bool { return p.ID == info.PlaceID }) {
			continue
		}
		i := slices.IndexFunc(catalog, func(p locitypes.Place) bool { return p.ID == info.PlaceID })
		if i >= 0 {
			out = append(out, catalog[i])
			continue
		}
		out = append(out, locitypes.Place{
			ID:        info.PlaceID,
			Name:      info.Name,
			Theme:     info.Theme,
			Region:    info.Region,
			Latitude:  info.Latitude,
			Longitude: info.Longitude,
		})
	}
	return out
}

func infos(places []locitypes.Place) []locitypes.PlaceInfo {
	out := make([]locitypes.PlaceInfo, len(places))
	for i, p := range places {
		out[i] = p.Info()
	}
	return out
}
