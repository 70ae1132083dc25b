package place

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/paulmach/orb"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
)

var _ Repository = (*PostgresRepository)(nil)

// Repository is the read side of the place catalog plus bulk upsert for imports.
type Repository interface {
	ListPlaces(ctx context.Context, filter locitypes.PlaceFilter) ([]locitypes.Place, error)
	GetPlaceByID(ctx context.Context, id int64) (*locitypes.Place, error)
	// PlacesInBound returns places whose coordinates fall inside b.
	PlacesInBound(ctx context.Context, b orb.Bound, themes []locitypes.Theme) ([]locitypes.Place, error)
	SavePlaces(ctx context.Context, places []locitypes.Place) (int, error)
}

// DBTX is the subset of pgxpool.Pool used by the repository.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var placeColumns = []string{"id", "name", "theme", "region", "latitude", "longitude"}

const upsertPlaceQuery = `
	INSERT INTO places (id, name, theme, region, latitude, longitude)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		theme = EXCLUDED.theme,
		region = EXCLUDED.region,
		latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		updated_at = CURRENT_TIMESTAMP`

type PostgresRepository struct {
	logger *slog.Logger
	pgpool DBTX
}

func NewPostgresRepository(pool DBTX, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pool,
	}
}

// selectPlaces builds the catalog query shared by the SQL repositories.
func selectPlaces(filter locitypes.PlaceFilter, format squirrel.PlaceholderFormat) squirrel.SelectBuilder {
	q := squirrel.Select(placeColumns...).From("places").OrderBy("id").PlaceholderFormat(format)
	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}
	if len(filter.Themes) > 0 {
		q = q.Where(squirrel.Eq{"theme": themeStrings(filter.Themes)})
	}
	if len(filter.Regions) > 0 {
		q = q.Where(squirrel.Eq{"region": regionStrings(filter.Regions)})
	}
	return q
}

func selectPlacesInBound(b orb.Bound, themes []locitypes.Theme, format squirrel.PlaceholderFormat) squirrel.SelectBuilder {
	return selectPlaces(locitypes.PlaceFilter{Themes: themes}, format).
		Where(squirrel.Expr("latitude BETWEEN ? AND ?", b.Min.Lat(), b.Max.Lat())).
		Where(squirrel.Expr("longitude BETWEEN ? AND ?", b.Min.Lon(), b.Max.Lon()))
}

func (r *PostgresRepository) ListPlaces(ctx context.Context, filter locitypes.PlaceFilter) ([]locitypes.Place, error) {
	ctx, span := otel.Tracer("PlaceRepository").Start(ctx, "ListPlaces", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "places"),
		attribute.Int("filter.themes", len(filter.Themes)),
		attribute.Int("filter.regions", len(filter.Regions)),
	))
	defer span.End()

	query, args, err := selectPlaces(filter, squirrel.Dollar).ToSql()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to build query")
		return nil, fmt.Errorf("failed to build places query: %w", err)
	}

	places, err := r.query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("places.count", len(places)))
	span.SetStatus(codes.Ok, "Places retrieved")
	return places, nil
}

func (r *PostgresRepository) PlacesInBound(ctx context.Context, b orb.Bound, themes []locitypes.Theme) ([]locitypes.Place, error) {
	ctx, span := otel.Tracer("PlaceRepository").Start(ctx, "PlacesInBound", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "places"),
	))
	defer span.End()

	query, args, err := selectPlacesInBound(b, themes, squirrel.Dollar).ToSql()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to build query")
		return nil, fmt.Errorf("failed to build bound query: %w", err)
	}

	places, err := r.query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Places retrieved")
	return places, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]locitypes.Place, error) {
	rows, err := r.pgpool.Query(ctx, query, args...)
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

func (r *PostgresRepository) GetPlaceByID(ctx context.Context, id int64) (*locitypes.Place, error) {
	ctx, span := otel.Tracer("PlaceRepository").Start(ctx, "GetPlaceByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "places"),
		attribute.Int64("place.id", id),
	))
	defer span.End()

	query, args, err := selectPlaces(locitypes.PlaceFilter{IDs: []int64{id}}, squirrel.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build place query: %w", err)
	}

	p, err := scanPlace(r.pgpool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Place not found")
			return nil, fmt.Errorf("place %d: %w", id, locitypes.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Place retrieved")
	return &p, nil
}

// SavePlaces upserts places by id inside one transaction.
func (r *PostgresRepository) SavePlaces(ctx context.Context, places []locitypes.Place) (int, error) {
	ctx, span := otel.Tracer("PlaceRepository").Start(ctx, "SavePlaces", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "places"),
		attribute.Int("places.count", len(places)),
	))
	defer span.End()

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to start transaction")
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			r.logger.WarnContext(ctx, "Failed to rollback place import", slog.Any("error", rbErr))
		}
	}()

	for _, p := range places {
		if _, err := tx.Exec(ctx, upsertPlaceQuery,
			p.ID, p.Name, string(p.Theme), string(p.Region), p.Latitude, p.Longitude,
		); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				err = fmt.Errorf("%w: %s", locitypes.ErrConflict, pgErr.Detail)
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to upsert place")
			return 0, fmt.Errorf("failed to upsert place %d: %w", p.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to commit transaction")
		return 0, fmt.Errorf("failed to commit place import: %w", err)
	}

	span.SetStatus(codes.Ok, "Places saved")
	return len(places), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanPlace reads one row. Theme and region go through the parsers so rows
// written with Korean labels still load.
func scanPlace(row rowScanner) (locitypes.Place, error) {
	var (
		p             locitypes.Place
		theme, region string
	)
	if err := row.Scan(&p.ID, &p.Name, &theme, &region, &p.Latitude, &p.Longitude); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("failed to scan place row: %w", err)
	}
	var err error
	if p.Theme, err = locitypes.ParseTheme(theme); err != nil {
		return p, fmt.Errorf("place %d: %w", p.ID, err)
	}
	if p.Region, err = locitypes.ParseRegion(region); err != nil {
		return p, fmt.Errorf("place %d: %w", p.ID, err)
	}
	return p, nil
}

func themeStrings(themes []locitypes.Theme) []string {
	out := make([]string, len(themes))
	for i, t := range themes {
		out[i] = string(t)
	}
	return out
}

func regionStrings(regions []locitypes.Region) []string {
	out := make([]string, len(regions))
	for i, r := range regions {
		out[i] = string(r)
	}
	return out
}
