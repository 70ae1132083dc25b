package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
)

func TestRunPlanJSON(t *testing.T) {
	var out bytes.Buffer
	err := runPlan([]string{
		"-themes", "자연,activity",
		"-regions", "andeok-myeon,서귀포시,hallim-eup",
		"-breakfast", "-lunch", "-dinner",
		"-seed", "42",
	}, &out)
	require.NoError(t, err)

	var got locitypes.GeneratedRoute
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Len(t, got.Route, 5)
	assert.Equal(t, []locitypes.Theme{locitypes.ThemeNature, locitypes.ThemeActivity}, got.Config.Themes)
}

func TestRunPlanSeedIsReproducible(t *testing.T) {
	plan := func() []string {
		var out bytes.Buffer
		require.NoError(t, runPlan([]string{"-themes", "nature,activity", "-regions", "andeok-myeon,seogwipo-si,hallim-eup", "-lunch", "-seed", "7"}, &out))
		var got locitypes.GeneratedRoute
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		return got.Route
	}
	assert.Equal(t, plan(), plan())
}

func TestRunPlanWithSQLiteCatalog(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "catalog.db")
	require.NoError(t, runSeed([]string{"-db", dbPath}))

	xlsxPath := filepath.Join(dir, "route.xlsx")
	var out bytes.Buffer
	require.NoError(t, runPlan([]string{"-db", dbPath, "-query", "karting in hallim", "-morning", "1", "-afternoon", "0", "-xlsx", xlsxPath}, &out))
	assert.Contains(t, out.String(), xlsxPath)

	exportPath := filepath.Join(dir, "places.xlsx")
	require.NoError(t, runExport([]string{"-db", dbPath, "-output", exportPath}))
	require.NoError(t, runImport([]string{"-db", filepath.Join(dir, "copy.db"), "-xlsx", exportPath}))
}

func TestRunPlanRejectsUnknownTheme(t *testing.T) {
	err := runPlan([]string{"-themes", "volcano", "-regions", "jeju-si"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, locitypes.ErrUnknownTheme)
}
