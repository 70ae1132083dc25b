package interceptors

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
)

// CodeOf maps a domain error to its Connect status code.
// Errors that already carry a Connect code keep it.
func CodeOf(err error) connect.Code {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return connectErr.Code()
	case errors.Is(err, locitypes.ErrPlannerBusy):
		return connect.CodeResourceExhausted
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case errors.Is(err, locitypes.ErrNotFound):
		return connect.CodeNotFound
	case errors.Is(err, locitypes.ErrConflict):
		return connect.CodeAlreadyExists
	case errors.Is(err, locitypes.ErrInsufficientCandidates):
		return connect.CodeFailedPrecondition
	case errors.Is(err, locitypes.ErrBadRequest),
		errors.Is(err, locitypes.ErrInvalidSchedule),
		errors.Is(err, locitypes.ErrNoMealAnchor),
		errors.Is(err, locitypes.ErrTooManyStops),
		errors.Is(err, locitypes.ErrUnknownTheme),
		errors.Is(err, locitypes.ErrUnknownRegion):
		return connect.CodeInvalidArgument
	}
	return connect.CodeInternal
}

// ConnectError wraps err with the code CodeOf picks for it.
func ConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}
	return connect.NewError(CodeOf(err), err)
}
