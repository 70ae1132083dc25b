package locitypes

import (
	"errors"
	"fmt"
)

// Domain specific errors for catalog queries and route planning.
var (
	ErrNotFound   = errors.New("requested item not found")
	ErrConflict   = errors.New("item already exists or conflict")
	ErrBadRequest = errors.New("bad request")

	ErrUnknownTheme           = errors.New("unknown theme")
	ErrUnknownRegion          = errors.New("unknown region")
	ErrInvalidSchedule        = errors.New("invalid schedule")
	ErrInsufficientCandidates = errors.New("not enough candidate places")
	ErrNoEatingPlaceFound     = errors.New("no eating place found")
	ErrNoMealAnchor           = errors.New("meal requested without any sightseeing stop to anchor it")
	ErrTooManyStops           = errors.New("too many stops requested")
	ErrPlannerBusy            = errors.New("route planner is busy")
)

// InsufficientCandidatesError reports how short the filtered pool was.
type InsufficientCandidatesError struct {
	Requested int
	Available int
}

func (e *InsufficientCandidatesError) Error() string {
	return fmt.Sprintf("%s: requested %d, available %d", ErrInsufficientCandidates, e.Requested, e.Available)
}

func (e *InsufficientCandidatesError) Unwrap() error { return ErrInsufficientCandidates }
