package travelroute

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteRouteSheet(t *testing.T) {
	service, _ := setupTravelRouteServiceTest()
	generated, err := service.GenerateRoute(context.Background(), seedConfig(), "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteRouteSheet(&buf, generated))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{RouteSheetName, SummarySheetName}, f.GetSheetList())

	rows, err := f.GetRows(RouteSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "slot", rows[0][1])
	assert.Equal(t, []string{"breakfast", "morning", "lunch", "afternoon", "dinner"},
		[]string{rows[1][1], rows[2][1], rows[3][1], rows[4][1], rows[5][1]})
	assert.Equal(t, generated.Route[2], rows[3][3])
	assert.Equal(t, "0", rows[1][8])

	summary, err := f.GetRows(SummarySheetName)
	require.NoError(t, err)
	assert.Equal(t, []string{"route_id", generated.ID.String()}, summary[0])
	assert.Equal(t, []string{"solver", "brute_force"}, summary[1])
}
