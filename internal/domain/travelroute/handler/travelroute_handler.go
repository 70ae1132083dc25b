package handler

import (
	"context"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/FACorreiaa/loci-travelroute-api/internal/domain/travelroute"
	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
	"github.com/FACorreiaa/loci-travelroute-api/pkg/interceptors"
	"github.com/FACorreiaa/loci-travelroute-api/pkg/rpcjson"
)

const (
	TravelRouteServiceName = "loci.travelroute.v1.TravelRouteService"

	TravelRouteServiceGenerateRouteProcedure   = "/" + TravelRouteServiceName + "/GenerateRoute"
	TravelRouteServiceRegenerateRouteProcedure = "/" + TravelRouteServiceName + "/RegenerateRoute"
)

type GenerateRouteRequest struct {
	// Config is validated after the query has been merged into it.
	Config locitypes.TravelRouteConfig `json:"config" validate:"-"`
	Query  string                      `json:"query,omitempty" validate:"max=1000"`
}

type RegenerateRouteRequest struct {
	Config         locitypes.TravelRouteConfig `json:"config"`
	Schedule       locitypes.ScheduleInfo      `json:"schedule"`
	PinnedPlaceIDs []int64                     `json:"pinned_place_ids" validate:"dive,gt=0"`
}

type RouteResponse struct {
	Route *locitypes.GeneratedRoute `json:"route"`
}

type TravelRouteHandler struct {
	service travelroute.Service
	logger  *slog.Logger
}

func NewTravelRouteHandler(svc travelroute.Service, logger *slog.Logger) *TravelRouteHandler {
	return &TravelRouteHandler{service: svc, logger: logger}
}

func (h *TravelRouteHandler) GenerateRoute(ctx context.Context, req *connect.Request[GenerateRouteRequest]) (*connect.Response[RouteResponse], error) {
	generated, err := h.service.GenerateRoute(ctx, req.Msg.Config, req.Msg.Query)
	if err != nil {
		return nil, interceptors.ConnectError(err)
	}
	return connect.NewResponse(&RouteResponse{Route: generated}), nil
}

func (h *TravelRouteHandler) RegenerateRoute(ctx context.Context, req *connect.Request[RegenerateRouteRequest]) (*connect.Response[RouteResponse], error) {
	generated, err := h.service.RegenerateRoute(ctx, req.Msg.Config, req.Msg.Schedule, req.Msg.PinnedPlaceIDs)
	if err != nil {
		return nil, interceptors.ConnectError(err)
	}
	return connect.NewResponse(&RouteResponse{Route: generated}), nil
}

// NewTravelRouteServiceHandler builds the HTTP handler for the service and
// returns the path to mount it on.
func NewTravelRouteServiceHandler(h *TravelRouteHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{rpcjson.HandlerOption()}, opts...)
	generate := connect.NewUnaryHandler(TravelRouteServiceGenerateRouteProcedure, h.GenerateRoute, opts...)
	regenerate := connect.NewUnaryHandler(TravelRouteServiceRegenerateRouteProcedure, h.RegenerateRoute, opts...)

	return "/" + TravelRouteServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case TravelRouteServiceGenerateRouteProcedure:
			generate.ServeHTTP(w, r)
		case TravelRouteServiceRegenerateRouteProcedure:
			regenerate.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
