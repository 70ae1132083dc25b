package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/FACorreiaa/loci-travelroute-api/internal/domain/place"
	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
	"github.com/FACorreiaa/loci-travelroute-api/pkg/db"
)

func openCatalog(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, place.Service, error) {
	sqlDB, err := db.OpenSQLite(ctx, path, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("opening catalog: %w", err)
	}
	return sqlDB, place.NewServiceImpl(place.NewSQLiteRepository(sqlDB, logger), time.Minute, logger), nil
}

func runSeed(args []string) error {
	var dbPath string
	var verbose bool

	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	fs.StringVar(&dbPath, "db", "catalog.db", "Path to the SQLite catalog")
	fs.BoolVar(&verbose, "v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	sqlDB, svc, err := openCatalog(ctx, dbPath, newLogger(verbose))
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	n, err := svc.ImportPlaces(ctx, place.SeedPlaces())
	if err != nil {
		return fmt.Errorf("seeding: %w", err)
	}
	fmt.Printf("seeded %d places into %s\n", n, dbPath)
	return nil
}

func runImport(args []string) error {
	var dbPath, sheetPath string
	var verbose bool

	fs := flag.NewFlagSet("import", flag.ExitOnError)
	fs.StringVar(&dbPath, "db", "catalog.db", "Path to the SQLite catalog")
	fs.StringVar(&sheetPath, "xlsx", "", "Places workbook (required)")
	fs.BoolVar(&verbose, "v", false, "Verbose logging")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: routectl import [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nThe first sheet needs the columns id, name, theme, region, latitude, longitude.\n")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if sheetPath == "" {
		return fmt.Errorf("-xlsx is required")
	}

	f, err := os.Open(sheetPath)
	if err != nil {
		return fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	places, err := place.ReadPlacesSheet(f)
	if err != nil {
		return err
	}
	if len(places) == 0 {
		return fmt.Errorf("no places found in %s", sheetPath)
	}

	ctx := context.Background()
	sqlDB, svc, err := openCatalog(ctx, dbPath, newLogger(verbose))
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	n, err := svc.ImportPlaces(ctx, places)
	if err != nil {
		return fmt.Errorf("importing: %w", err)
	}
	fmt.Printf("imported %d places into %s\n", n, dbPath)
	return nil
}

func runExport(args []string) error {
	var dbPath, outputPath string
	var verbose bool

	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.StringVar(&dbPath, "db", "catalog.db", "Path to the SQLite catalog")
	fs.StringVar(&outputPath, "output", "places.xlsx", "Output workbook")
	fs.BoolVar(&verbose, "v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	sqlDB, svc, err := openCatalog(ctx, dbPath, newLogger(verbose))
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	places, err := svc.ListPlaces(ctx, locitypes.PlaceFilter{})
	if err != nil {
		return err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer out.Close()
	if err := place.WritePlacesSheet(out, places); err != nil {
		return err
	}
	fmt.Printf("exported %d places to %s\n", len(places), outputPath)
	return nil
}
