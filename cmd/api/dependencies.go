package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/loci-travelroute-api/internal/domain/place"
	placehandler "github.com/FACorreiaa/loci-travelroute-api/internal/domain/place/handler"
	"github.com/FACorreiaa/loci-travelroute-api/internal/domain/travelroute"
	travelroutehandler "github.com/FACorreiaa/loci-travelroute-api/internal/domain/travelroute/handler"
	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
	"github.com/FACorreiaa/loci-travelroute-api/pkg/config"
	"github.com/FACorreiaa/loci-travelroute-api/pkg/db"
	"github.com/FACorreiaa/loci-travelroute-api/pkg/observability"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	DB      *db.DB
	Logger  *slog.Logger
	Metrics *observability.Metrics

	sqlDB *sql.DB

	// Repositories
	PlaceRepo place.Repository

	// Services
	PlaceService       place.Service
	TravelRouteService travelroute.Service

	// Handlers
	PlaceHandler       *placehandler.PlaceHandler
	TravelRouteHandler *travelroutehandler.TravelRouteHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(nil),
	}

	if err := deps.initRepositories(ctx); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	deps.initServices()

	if err := deps.seedCatalog(ctx); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to seed catalog: %w", err)
	}

	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initRepositories opens the configured catalog store and runs migrations
func (d *Dependencies) initRepositories(ctx context.Context) error {
	dbCfg := d.Config.Database
	switch dbCfg.Driver {
	case "postgres":
		database, err := db.New(db.Config{
			DSN:             dbCfg.DSN(),
			MaxConns:        dbCfg.MaxConns,
			MinConns:        dbCfg.MinConns,
			MaxConnLifetime: dbCfg.MaxConnLifetime,
			MaxConnIdleTime: dbCfg.MaxConnIdleTime,
		}, d.Logger)
		if err != nil {
			return err
		}
		d.DB = database
		if err := d.DB.RunMigrations(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		d.PlaceRepo = place.NewPostgresRepository(d.DB.Pool, d.Logger)
	case "sqlite":
		sqlDB, err := db.OpenSQLite(ctx, dbCfg.SQLitePath, d.Logger)
		if err != nil {
			return err
		}
		d.sqlDB = sqlDB
		d.PlaceRepo = place.NewSQLiteRepository(sqlDB, d.Logger)
	case "memory":
		d.PlaceRepo = place.NewMemoryRepository(nil)
	default:
		return fmt.Errorf("unsupported database driver %q", dbCfg.Driver)
	}

	d.Logger.Info("repositories initialized", slog.String("driver", dbCfg.Driver))
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() {
	planner := d.Config.Planner
	d.PlaceService = place.NewServiceImpl(d.PlaceRepo, planner.CatalogCacheTTL, d.Logger)
	d.TravelRouteService = travelroute.NewServiceImpl(d.PlaceService, d.Metrics, travelroute.Options{
		EatingRadiusKm:      planner.EatingRadiusKm,
		CorridorKm:          planner.CorridorKm,
		MaxExactStops:       planner.MaxExactStops,
		MaxStops:            planner.MaxStops,
		SolveTimeout:        planner.SolveTimeout,
		MaxConcurrentSolves: planner.MaxConcurrentSolves,
	}, d.Logger)
	d.Logger.Info("services initialized")
}

// seedCatalog loads the sample Jeju places when the catalog is empty
func (d *Dependencies) seedCatalog(ctx context.Context) error {
	if !d.Config.Database.SeedCatalog {
		return nil
	}
	existing, err := d.PlaceRepo.ListPlaces(ctx, locitypes.PlaceFilter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	n, err := d.PlaceService.ImportPlaces(ctx, place.SeedPlaces())
	if err != nil {
		return err
	}
	d.Logger.Info("seeded place catalog", slog.Int("places", n))
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.PlaceHandler = placehandler.NewPlaceHandler(d.PlaceService)
	d.TravelRouteHandler = travelroutehandler.NewTravelRouteHandler(d.TravelRouteService, d.Logger)
	d.Logger.Info("handlers initialized")
}

// Health reports whether the catalog store is reachable
func (d *Dependencies) Health(ctx context.Context) error {
	switch {
	case d.DB != nil:
		return d.DB.Health(ctx)
	case d.sqlDB != nil:
		return d.sqlDB.PingContext(ctx)
	}
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	if d.sqlDB != nil {
		d.sqlDB.Close()
	}
	d.Logger.Info("cleanup completed")
}
