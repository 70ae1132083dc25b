package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/loci-travelroute-api/internal/domain/place"
	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
	"github.com/FACorreiaa/loci-travelroute-api/pkg/interceptors"
	"github.com/FACorreiaa/loci-travelroute-api/pkg/rpcjson"
)

func setupPlaceServer(t *testing.T) string {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := place.NewServiceImpl(place.NewMemoryRepository(place.SeedPlaces()), time.Minute, logger)

	mux := http.NewServeMux()
	mux.Handle(NewPlaceServiceHandler(NewPlaceHandler(svc),
		connect.WithInterceptors(interceptors.NewValidationInterceptor(nil)),
	))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestListPlacesHandler(t *testing.T) {
	url := setupPlaceServer(t)
	client := connect.NewClient[ListPlacesRequest, PlacesResponse](http.DefaultClient, url+PlaceServiceListPlacesProcedure, rpcjson.ClientOption())

	resp, err := client.CallUnary(context.Background(), connect.NewRequest(&ListPlacesRequest{
		Themes: []locitypes.Theme{locitypes.ThemeRestaurant},
	}))
	require.NoError(t, err)
	assert.Len(t, resp.Msg.Places, 9)

	resp, err = client.CallUnary(context.Background(), connect.NewRequest(&ListPlacesRequest{}))
	require.NoError(t, err)
	assert.Len(t, resp.Msg.Places, 12)
}

func TestGetPlaceHandler(t *testing.T) {
	url := setupPlaceServer(t)
	client := connect.NewClient[GetPlaceRequest, PlaceResponse](http.DefaultClient, url+PlaceServiceGetPlaceProcedure, rpcjson.ClientOption())

	resp, err := client.CallUnary(context.Background(), connect.NewRequest(&GetPlaceRequest{PlaceID: 3}))
	require.NoError(t, err)
	assert.Equal(t, "제주카트클럽", resp.Msg.Place.Name)

	_, err = client.CallUnary(context.Background(), connect.NewRequest(&GetPlaceRequest{PlaceID: 404}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = client.CallUnary(context.Background(), connect.NewRequest(&GetPlaceRequest{}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestNearbyPlacesHandler(t *testing.T) {
	url := setupPlaceServer(t)
	client := connect.NewClient[NearbyPlacesRequest, PlacesResponse](http.DefaultClient, url+PlaceServiceNearbyPlacesProcedure, rpcjson.ClientOption())

	resp, err := client.CallUnary(context.Background(), connect.NewRequest(&NearbyPlacesRequest{
		Latitude:  33.347790,
		Longitude: 126.255974,
		RadiusKm:  3,
		Themes:    []locitypes.Theme{locitypes.ThemeRestaurant},
	}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Places, 2)
	assert.Equal(t, int64(4), resp.Msg.Places[0].PlaceID)

	_, err = client.CallUnary(context.Background(), connect.NewRequest(&NearbyPlacesRequest{Latitude: 33.3, Longitude: 126.3}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}
