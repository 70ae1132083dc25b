package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/FACorreiaa/loci-travelroute-api/internal/domain/place"
	"github.com/FACorreiaa/loci-travelroute-api/internal/domain/travelroute"
	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
	"github.com/FACorreiaa/loci-travelroute-api/pkg/observability"
)

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseThemes(s string) ([]locitypes.Theme, error) {
	var themes []locitypes.Theme
	for _, v := range splitList(s) {
		t, err := locitypes.ParseTheme(v)
		if err != nil {
			return nil, err
		}
		themes = append(themes, t)
	}
	return themes, nil
}

func parseRegions(s string) ([]locitypes.Region, error) {
	var regions []locitypes.Region
	for _, v := range splitList(s) {
		r, err := locitypes.ParseRegion(v)
		if err != nil {
			return nil, err
		}
		regions = append(regions, r)
	}
	return regions, nil
}

func runPlan(args []string, stdout io.Writer) error {
	var (
		dbPath, themes, regions, query, xlsxPath string
		cfg                                      locitypes.TravelRouteConfig
		opts                                     = travelroute.DefaultOptions()
		verbose                                  bool
	)

	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.StringVar(&dbPath, "db", "", "SQLite catalog (default: built-in sample catalog)")
	fs.StringVar(&themes, "themes", "", "Comma separated themes, e.g. nature,activity or 자연,액티비티")
	fs.StringVar(&regions, "regions", "", "Comma separated regions, e.g. seogwipo-si,hallim-eup")
	fs.StringVar(&query, "query", "", "Free text filling themes, regions and meals left unset")
	fs.IntVar(&cfg.Schedule.Morning, "morning", 1, "Sightseeing stops before lunch")
	fs.IntVar(&cfg.Schedule.Afternoon, "afternoon", 1, "Sightseeing stops after lunch")
	fs.BoolVar(&cfg.Schedule.Breakfast, "breakfast", false, "Include breakfast")
	fs.BoolVar(&cfg.Schedule.Lunch, "lunch", false, "Include lunch")
	fs.BoolVar(&cfg.Schedule.Dinner, "dinner", false, "Include dinner")
	fs.Float64Var(&opts.EatingRadiusKm, "radius", opts.EatingRadiusKm, "Eating place search radius in km")
	fs.Float64Var(&opts.CorridorKm, "corridor", opts.CorridorKm, "Lunch corridor width in km")
	fs.IntVar(&opts.MaxExactStops, "max-exact", opts.MaxExactStops, "Largest stop count solved exhaustively")
	fs.DurationVar(&opts.SolveTimeout, "timeout", opts.SolveTimeout, "Planning deadline")
	fs.Uint64Var(&opts.Seed, "seed", 0, "Random seed for reproducible plans (0 picks one)")
	fs.StringVar(&xlsxPath, "xlsx", "", "Write the route to this workbook instead of printing JSON")
	fs.BoolVar(&verbose, "v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if cfg.Themes, err = parseThemes(themes); err != nil {
		return err
	}
	if cfg.Regions, err = parseRegions(regions); err != nil {
		return err
	}

	ctx := context.Background()
	logger := newLogger(verbose)

	var places place.Service
	if dbPath == "" {
		places = place.NewServiceImpl(place.NewMemoryRepository(place.SeedPlaces()), time.Minute, logger)
	} else {
		sqlDB, svc, err := openCatalog(ctx, dbPath, logger)
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		places = svc
	}

	svc := travelroute.NewServiceImpl(places, observability.NewMetrics(prometheus.NewRegistry()), opts, logger)
	generated, err := svc.GenerateRoute(ctx, cfg, query)
	if err != nil {
		return err
	}

	if xlsxPath != "" {
		out, err := os.Create(xlsxPath)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer out.Close()
		if err := travelroute.WriteRouteSheet(out, generated); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote route %s to %s\n", generated.ID, xlsxPath)
		return nil
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(generated)
}
