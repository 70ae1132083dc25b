package place

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/paulmach/orb"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
)

var _ Repository = (*SQLiteRepository)(nil)

const upsertPlaceSQLite = `
	INSERT INTO places (id, name, theme, region, latitude, longitude)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		name = excluded.name,
		theme = excluded.theme,
		region = excluded.region,
		latitude = excluded.latitude,
		longitude = excluded.longitude,
		updated_at = CURRENT_TIMESTAMP`

// SQLiteRepository serves the catalog from a local file, used by routectl
// and single-node deployments.
type SQLiteRepository struct {
	logger *slog.Logger
	db     *sql.DB
}

func NewSQLiteRepository(db *sql.DB, logger *slog.Logger) *SQLiteRepository {
	return &SQLiteRepository{logger: logger, db: db}
}

func sqliteSpan(ctx context.Context, name, op string) (context.Context, trace.Span) {
	return otel.Tracer("PlaceRepository").Start(ctx, name, trace.WithAttributes(
		semconv.DBSystemSqlite,
		attribute.String("db.operation", op),
		attribute.String("db.sql.table", "places"),
	))
}

func (r *SQLiteRepository) ListPlaces(ctx context.Context, filter locitypes.PlaceFilter) ([]locitypes.Place, error) {
	ctx, span := sqliteSpan(ctx, "ListPlaces", "SELECT")
	defer span.End()

	places, err := r.run(ctx, selectPlaces(filter, squirrel.Question))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Places retrieved")
	return places, nil
}

func (r *SQLiteRepository) PlacesInBound(ctx context.Context, b orb.Bound, themes []locitypes.Theme) ([]locitypes.Place, error) {
	ctx, span := sqliteSpan(ctx, "PlacesInBound", "SELECT")
	defer span.End()

	places, err := r.run(ctx, selectPlacesInBound(b, themes, squirrel.Question))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Places retrieved")
	return places, nil
}

func (r *SQLiteRepository) GetPlaceByID(ctx context.Context, id int64) (*locitypes.Place, error) {
	ctx, span := sqliteSpan(ctx, "GetPlaceByID", "SELECT")
	defer span.End()

	places, err := r.run(ctx, selectPlaces(locitypes.PlaceFilter{IDs: []int64{id}}, squirrel.Question))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, err
	}
	if len(places) == 0 {
		span.SetStatus(codes.Error, "Place not found")
		return nil, fmt.Errorf("place %d: %w", id, locitypes.ErrNotFound)
	}
	span.SetStatus(codes.Ok, "Place retrieved")
	return &places[0], nil
}

func (r *SQLiteRepository) run(ctx context.Context, q squirrel.SelectBuilder) ([]locitypes.Place, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build places query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query places", slog.Any("error", err))
		return nil, fmt.Errorf("failed to query places: %w", err)
	}
	defer rows.Close()

	var places []locitypes.Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating place rows: %w", err)
	}
	return places, nil
}

// SavePlaces upserts places in one transaction with a prepared statement.
func (r *SQLiteRepository) SavePlaces(ctx context.Context, places []locitypes.Place) (int, error) {
	ctx, span := sqliteSpan(ctx, "SavePlaces", "INSERT")
	defer span.End()
	span.SetAttributes(attribute.Int("places.count", len(places)))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to start transaction")
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			r.logger.WarnContext(ctx, "Failed to rollback place import", slog.Any("error", rbErr))
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertPlaceSQLite)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to prepare statement")
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range places {
		if _, err := stmt.ExecContext(ctx, p.ID, p.Name, string(p.Theme), string(p.Region), p.Latitude, p.Longitude); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to upsert place")
			return 0, fmt.Errorf("failed to upsert place %d: %w", p.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to commit transaction")
		return 0, fmt.Errorf("failed to commit place import: %w", err)
	}

	span.SetStatus(codes.Ok, "Places saved")
	return len(places), nil
}
