package travelroute

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/loci-travelroute-api/internal/domain/route"
	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
)

const (
	RouteSheetName   = "Route"
	SummarySheetName = "Summary"
)

var routeHeader = []interface{}{"order", "slot", "place_id", "name", "theme", "region", "latitude", "longitude", "leg_km"}

type visit struct {
	slot  string
	place locitypes.PlaceInfo
}

func visits(s locitypes.ScheduleInfo) []visit {
	var out []visit
	if s.Breakfast != nil {
		out = append(out, visit{string(locitypes.MealBreakfast), *s.Breakfast})
	}
	for _, p := range s.Morning {
		out = append(out, visit{"morning", p})
	}
	if s.Lunch != nil {
		out = append(out, visit{string(locitypes.MealLunch), *s.Lunch})
	}
	for _, p := range s.Afternoon {
		out = append(out, visit{"afternoon", p})
	}
	if s.Dinner != nil {
		out = append(out, visit{string(locitypes.MealDinner), *s.Dinner})
	}
	return out
}

// WriteRouteSheet exports a generated route as an xlsx workbook with the
// visits in order and a summary sheet.
func WriteRouteSheet(w io.Writer, r *locitypes.GeneratedRoute) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RouteSheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(RouteSheetName)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}
	if err := sw.SetRow("A1", routeHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	var prev *locitypes.PlaceInfo
	for i, v := range visits(r.Schedule) {
		leg := 0.0
		if prev != nil {
			leg = route.Haversine(prev.Latitude, prev.Longitude, v.place.Latitude, v.place.Longitude)
		}
		p := v.place
		prev = &p

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{i + 1, v.slot, p.PlaceID, p.Name, string(p.Theme), string(p.Region), p.Latitude, p.Longitude, leg}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if _, err := f.NewSheet(SummarySheetName); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}
	unfilled := make([]string, len(r.UnfilledMeals))
	for i, m := range r.UnfilledMeals {
		unfilled[i] = string(m)
	}
	summary := [][]interface{}{
		{"route_id", r.ID.String()},
		{"solver", r.Solver},
		{"total_distance_km", r.TotalDistanceKm},
		{"generated_at", r.GeneratedAt.Format(time.RFC3339)},
		{"unfilled_meals", strings.Join(unfilled, ",")},
	}
	for i, row := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	return f.Write(w)
}
