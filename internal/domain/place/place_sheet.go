package place

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
)

// SheetName is the worksheet written by WritePlacesSheet.
const SheetName = "Places"

var sheetHeader = []string{"id", "name", "theme", "region", "latitude", "longitude"}

// ReadPlacesSheet parses the first worksheet of an xlsx catalog. The first row
// is a header naming the columns in any order; themes and regions may use the
// English codes or the Korean labels.
func ReadPlacesSheet(r io.Reader) ([]locitypes.Place, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", locitypes.ErrBadRequest)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	col := make(map[string]int, len(sheetHeader))
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, h := range sheetHeader {
		if _, ok := col[h]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", locitypes.ErrBadRequest, h)
		}
	}

	cell := func(row []string, name string) string {
		if i := col[name]; i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	places := make([]locitypes.Place, 0, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		var (
			p   locitypes.Place
			err error
		)
		if p.ID, err = strconv.ParseInt(cell(row, "id"), 10, 64); err != nil {
			return nil, fmt.Errorf("%w: row %d: invalid id: %w", locitypes.ErrBadRequest, line, err)
		}
		p.Name = cell(row, "name")
		if p.Theme, err = locitypes.ParseTheme(cell(row, "theme")); err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", locitypes.ErrBadRequest, line, err)
		}
		if p.Region, err = locitypes.ParseRegion(cell(row, "region")); err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", locitypes.ErrBadRequest, line, err)
		}
		if p.Latitude, err = strconv.ParseFloat(cell(row, "latitude"), 64); err != nil {
			return nil, fmt.Errorf("%w: row %d: invalid latitude: %w", locitypes.ErrBadRequest, line, err)
		}
		if p.Longitude, err = strconv.ParseFloat(cell(row, "longitude"), 64); err != nil {
			return nil, fmt.Errorf("%w: row %d: invalid longitude: %w", locitypes.ErrBadRequest, line, err)
		}
		places = append(places, p)
	}
	return places, nil
}

// WritePlacesSheet writes places in the layout ReadPlacesSheet accepts.
func WritePlacesSheet(w io.Writer, places []locitypes.Place) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]interface{}, len(sheetHeader))
	for i, h := range sheetHeader {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, p := range places {
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{p.ID, p.Name, string(p.Theme), string(p.Region), p.Latitude, p.Longitude}
		if err := sw.SetRow(cellName, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	return f.Write(w)
}
