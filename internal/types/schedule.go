package locitypes

import (
	"time"

	"github.com/google/uuid"
)

// Schedule is the requested day shape: which meals to include and how many
// sightseeing stops go in each half of the day.
type Schedule struct {
	Breakfast bool `json:"breakfast"`
	Morning   int  `json:"morning" validate:"gte=0,lte=12"`
	Lunch     bool `json:"lunch"`
	Afternoon int  `json:"afternoon" validate:"gte=0,lte=12"`
	Dinner    bool `json:"dinner"`
}

// Stops is the number of sightseeing places the schedule asks for.
func (s Schedule) Stops() int { return s.Morning + s.Afternoon }

// WantsMeal reports whether the schedule includes the given meal.
func (s Schedule) WantsMeal(m Meal) bool {
	switch m {
	case MealBreakfast:
		return s.Breakfast
	case MealLunch:
		return s.Lunch
	case MealDinner:
		return s.Dinner
	}
	return false
}

func (s Schedule) WantsAnyMeal() bool { return s.Breakfast || s.Lunch || s.Dinner }

type Meal string

const (
	MealBreakfast Meal = "breakfast"
	MealLunch     Meal = "lunch"
	MealDinner    Meal = "dinner"
)

var Meals = []Meal{MealBreakfast, MealLunch, MealDinner}

// TravelRouteConfig is the full request for one itinerary.
type TravelRouteConfig struct {
	Regions  []Region `json:"regions" validate:"required,min=1,dive,required"`
	Themes   []Theme  `json:"themes" validate:"required,min=1,dive,required"`
	Schedule Schedule `json:"schedule"`
}

// PlaceInfo is the place projection returned to clients.
type PlaceInfo struct {
	PlaceID   int64   `json:"place_id"`
	Name      string  `json:"name"`
	Theme     Theme   `json:"theme,omitempty"`
	Region    Region  `json:"region,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ScheduleInfo is an itinerary. Morning and Afternoon are in visiting order.
type ScheduleInfo struct {
	Breakfast *PlaceInfo  `json:"breakfast"`
	Morning   []PlaceInfo `json:"morning"`
	Lunch     *PlaceInfo  `json:"lunch"`
	Afternoon []PlaceInfo `json:"afternoon"`
	Dinner    *PlaceInfo  `json:"dinner"`
}

// MealPlace returns the place assigned to a meal, if any.
func (s ScheduleInfo) MealPlace(m Meal) *PlaceInfo {
	switch m {
	case MealBreakfast:
		return s.Breakfast
	case MealLunch:
		return s.Lunch
	case MealDinner:
		return s.Dinner
	}
	return nil
}

func (s *ScheduleInfo) SetMeal(m Meal, p *PlaceInfo) {
	switch m {
	case MealBreakfast:
		s.Breakfast = p
	case MealLunch:
		s.Lunch = p
	case MealDinner:
		s.Dinner = p
	}
}

// Route flattens the itinerary into visiting order, meals included.
func (s ScheduleInfo) Route() []PlaceInfo {
	route := make([]PlaceInfo, 0, len(s.Morning)+len(s.Afternoon)+3)
	if s.Breakfast != nil {
		route = append(route, *s.Breakfast)
	}
	route = append(route, s.Morning...)
	if s.Lunch != nil {
		route = append(route, *s.Lunch)
	}
	route = append(route, s.Afternoon...)
	if s.Dinner != nil {
		route = append(route, *s.Dinner)
	}
	return route
}

// GeneratedRoute is a planned itinerary plus diagnostics.
type GeneratedRoute struct {
	ID              uuid.UUID         `json:"id"`
	Config          TravelRouteConfig `json:"config"`
	Schedule        ScheduleInfo      `json:"schedule"`
	Route           []string          `json:"route"`
	OrderedIndices  []int             `json:"ordered_indices"`
	TotalDistanceKm float64           `json:"total_distance_km"`
	Solver          string            `json:"solver"`
	UnfilledMeals   []Meal            `json:"unfilled_meals,omitempty"`
	GeneratedAt     time.Time         `json:"generated_at"`
}
