package handler

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/FACorreiaa/loci-travelroute-api/internal/domain/place"
	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
	"github.com/FACorreiaa/loci-travelroute-api/pkg/interceptors"
	"github.com/FACorreiaa/loci-travelroute-api/pkg/rpcjson"
)

const (
	PlaceServiceName = "loci.place.v1.PlaceService"

	PlaceServiceListPlacesProcedure   = "/" + PlaceServiceName + "/ListPlaces"
	PlaceServiceGetPlaceProcedure     = "/" + PlaceServiceName + "/GetPlace"
	PlaceServiceNearbyPlacesProcedure = "/" + PlaceServiceName + "/NearbyPlaces"
)

type ListPlacesRequest struct {
	Themes  []locitypes.Theme  `json:"themes,omitempty"`
	Regions []locitypes.Region `json:"regions,omitempty"`
}

type GetPlaceRequest struct {
	PlaceID int64 `json:"place_id" validate:"gt=0"`
}

type NearbyPlacesRequest struct {
	Latitude  float64           `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64           `json:"longitude" validate:"gte=-180,lte=180"`
	RadiusKm  float64           `json:"radius_km" validate:"gt=0,lte=50"`
	Themes    []locitypes.Theme `json:"themes,omitempty"`
}

type PlacesResponse struct {
	Places []locitypes.PlaceInfo `json:"places"`
}

type PlaceResponse struct {
	Place locitypes.PlaceInfo `json:"place"`
}

type PlaceHandler struct {
	service place.Service
}

func NewPlaceHandler(svc place.Service) *PlaceHandler {
	return &PlaceHandler{service: svc}
}

func toInfos(places []locitypes.Place) []locitypes.PlaceInfo {
	out := make([]locitypes.PlaceInfo, len(places))
	for i, p := range places {
		out[i] = p.Info()
	}
	return out
}

func (h *PlaceHandler) ListPlaces(ctx context.Context, req *connect.Request[ListPlacesRequest]) (*connect.Response[PlacesResponse], error) {
	places, err := h.service.ListPlaces(ctx, locitypes.PlaceFilter{
		Themes:  req.Msg.Themes,
		Regions: req.Msg.Regions,
	})
	if err != nil {
		return nil, interceptors.ConnectError(err)
	}
	return connect.NewResponse(&PlacesResponse{Places: toInfos(places)}), nil
}

func (h *PlaceHandler) GetPlace(ctx context.Context, req *connect.Request[GetPlaceRequest]) (*connect.Response[PlaceResponse], error) {
	p, err := h.service.GetPlace(ctx, req.Msg.PlaceID)
	if err != nil {
		return nil, interceptors.ConnectError(err)
	}
	return connect.NewResponse(&PlaceResponse{Place: p.Info()}), nil
}

func (h *PlaceHandler) NearbyPlaces(ctx context.Context, req *connect.Request[NearbyPlacesRequest]) (*connect.Response[PlacesResponse], error) {
	places, err := h.service.NearbyPlaces(ctx, req.Msg.Latitude, req.Msg.Longitude, req.Msg.RadiusKm, req.Msg.Themes)
	if err != nil {
		return nil, interceptors.ConnectError(err)
	}
	return connect.NewResponse(&PlacesResponse{Places: toInfos(places)}), nil
}

// NewPlaceServiceHandler builds the HTTP handler for the service and returns
// the path to mount it on.
func NewPlaceServiceHandler(h *PlaceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{rpcjson.HandlerOption()}, opts...)
	list := connect.NewUnaryHandler(PlaceServiceListPlacesProcedure, h.ListPlaces, opts...)
	get := connect.NewUnaryHandler(PlaceServiceGetPlaceProcedure, h.GetPlace, opts...)
	nearby := connect.NewUnaryHandler(PlaceServiceNearbyPlacesProcedure, h.NearbyPlaces, opts...)

	return "/" + PlaceServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PlaceServiceListPlacesProcedure:
			list.ServeHTTP(w, r)
		case PlaceServiceGetPlaceProcedure:
			get.ServeHTTP(w, r)
		case PlaceServiceNearbyPlacesProcedure:
			nearby.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
