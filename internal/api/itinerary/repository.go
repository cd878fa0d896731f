// Package itinerary is the trip recommendation feature: handler, service
// pipeline and Postgres persistence for generated itineraries.
package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// ErrNotFound is returned when the requested city or trip does not exist,
// or does not belong to the requesting user.
var ErrNotFound = errors.New("not found")

// Repository defines the persistence contract for itinerary operations.
type Repository interface {
	GetCity(ctx context.Context, cityID uuid.UUID) (*types.City, error)
	GetPOIsByCityID(ctx context.Context, cityID uuid.UUID) ([]types.POI, error)
	SaveItinerary(ctx context.Context, itinerary *types.Itinerary) (uuid.UUID, error)
	GetItinerary(ctx context.Context, userID, tripID uuid.UUID) (*types.Itinerary, error)
	GetItineraries(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]types.Itinerary, int, error)
	UpdatePlaceRating(ctx context.Context, userID, tripID uuid.UUID, poiID string, rating float64) error
	DeleteItinerary(ctx context.Context, userID, tripID uuid.UUID) error
}

// PGXPool is the subset of pgxpool.Pool the repository needs; it lets tests
// substitute a pgxmock pool.
type PGXPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool PGXPool
}

func NewRepositoryImpl(pgpool PGXPool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, pgpool: pgpool}
}

func (r *RepositoryImpl) GetCity(ctx context.Context, cityID uuid.UUID) (*types.City, error) {
	ctx, span := otel.Tracer("ItineraryRepo").Start(ctx, "GetCity", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("city.id", cityID.String()),
	))
	defer span.End()

	var city types.City
	err := r.pgpool.QueryRow(ctx, `
        SELECT id, name, country, center_latitude, center_longitude, population
        FROM cities
        WHERE id = $1`, cityID,
	).Scan(&city.ID, &city.Name, &city.Country, &city.Center.Lat, &city.Center.Lng, &city.Population)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "City not found")
			return nil, fmt.Errorf("city %s: %w", cityID, ErrNotFound)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("database error fetching city: %w", err)
	}
	return &city, nil
}

func (r *RepositoryImpl) GetPOIsByCityID(ctx context.Context, cityID uuid.UUID) ([]types.POI, error) {
	ctx, span := otel.Tracer("ItineraryRepo").Start(ctx, "GetPOIsByCityID", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("city.id", cityID.String()),
	))
	defer span.End()

	rows, err := r.pgpool.Query(ctx, `
        SELECT id, name, latitude, longitude, types, price_level,
               alcohol, children, accessibility,
               allows_dogs, serves_vegetarian_food, good_for_groups,
               rating, user_rating_count, statistical_rating,
               estimated_visit_minutes, opening_hours
        FROM pois
        WHERE city_id = $1`, cityID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error fetching POIs: %w", err)
	}
	defer rows.Close()

	var pois []types.POI
	for rows.Next() {
		var poi types.POI
		err := rows.Scan(
			&poi.ID, &poi.Name, &poi.Location.Lat, &poi.Location.Lng, &poi.Types, &poi.PriceLevel,
			&poi.Alcohol, &poi.Children, &poi.Accessibility,
			&poi.AllowsDogs, &poi.ServesVegetarianFood, &poi.GoodForGroups,
			&poi.Rating, &poi.UserRatingCount, &poi.StatisticalRating,
			&poi.EstimatedVisitMinutes, &poi.OpeningHours,
		)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning POI: %w", err)
		}
		pois = append(pois, poi)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error iterating POIs: %w", err)
	}
	span.SetAttributes(attribute.Int("pois.count", len(pois)))
	return pois, nil
}

// SaveItinerary stores the trip header, its day plans and every scheduled
// visit in one transaction.
func (r *RepositoryImpl) SaveItinerary(ctx context.Context, itinerary *types.Itinerary) (uuid.UUID, error) {
	ctx, span := otel.Tracer("ItineraryRepo").Start(ctx, "SaveItinerary", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.Int("trip.days", len(itinerary.Days)),
	))
	defer span.End()

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tripID := uuid.New()
	now := time.Now()
	_, err = tx.Exec(ctx, `
        INSERT INTO trips (id, user_id, city_id, start_date, end_date, summary, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		tripID, itinerary.UserID, itinerary.CityID,
		itinerary.StartDate, itinerary.EndDate, itinerary.Summary, now)
	if err != nil {
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("failed to insert trip: %w", err)
	}

	for dayIdx, day := range itinerary.Days {
		dayID := uuid.New()
		_, err = tx.Exec(ctx, `
            INSERT INTO trip_days (id, trip_id, day_index, date, weather_code)
            VALUES ($1, $2, $3, $4, $5)`,
			dayID, tripID, dayIdx, day.Date, day.Weather)
		if err != nil {
			span.RecordError(err)
			return uuid.Nil, fmt.Errorf("failed to insert trip day %d: %w", dayIdx, err)
		}
		for pos, visit := range day.Visits {
			_, err = tx.Exec(ctx, `
                INSERT INTO trip_places (trip_day_id, position, poi_id, poi_name,
                    latitude, longitude, cumulative_rating,
                    arrival_minute, departure_minute, travel_seconds, travel_mode)
                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
				dayID, pos, visit.POI.ID, visit.POI.Name,
				visit.POI.Location.Lat, visit.POI.Location.Lng, visit.POI.CumulativeRating,
				visit.ArrivalMinute, visit.DepartureMinute, visit.TravelSeconds, string(visit.TravelMode))
			if err != nil {
				span.RecordError(err)
				return uuid.Nil, fmt.Errorf("failed to insert trip place: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("failed to commit itinerary: %w", err)
	}
	itinerary.CreatedAt = now
	span.SetStatus(codes.Ok, "Itinerary saved")
	return tripID, nil
}

func (r *RepositoryImpl) GetItinerary(ctx context.Context, userID, tripID uuid.UUID) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryRepo").Start(ctx, "GetItinerary", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	var itinerary types.Itinerary
	err := r.pgpool.QueryRow(ctx, `
        SELECT t.id, t.user_id, t.city_id, c.name, t.start_date, t.end_date, t.summary, t.created_at
        FROM trips t
        JOIN cities c ON c.id = t.city_id
        WHERE t.id = $1 AND t.user_id = $2`, tripID, userID,
	).Scan(&itinerary.ID, &itinerary.UserID, &itinerary.CityID, &itinerary.CityName,
		&itinerary.StartDate, &itinerary.EndDate, &itinerary.Summary, &itinerary.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Trip not found")
			return nil, fmt.Errorf("trip %s: %w", tripID, ErrNotFound)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("database error fetching trip: %w", err)
	}

	days, err := r.loadDays(ctx, tripID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	itinerary.Days = days
	return &itinerary, nil
}

func (r *RepositoryImpl) loadDays(ctx context.Context, tripID uuid.UUID) ([]types.DayPlan, error) {
	rows, err := r.pgpool.Query(ctx, `
        SELECT d.day_index, d.date, d.weather_code,
               p.poi_id, p.poi_name, p.latitude, p.longitude, p.cumulative_rating,
               p.arrival_minute, p.departure_minute, p.travel_seconds, p.travel_mode, p.user_rating
        FROM trip_days d
        LEFT JOIN trip_places p ON p.trip_day_id = d.id
        WHERE d.trip_id = $1
        ORDER BY d.day_index, p.position`, tripID)
	if err != nil {
		return nil, fmt.Errorf("database error fetching trip days: %w", err)
	}
	defer rows.Close()

	var days []types.DayPlan
	lastIdx := -1
	for rows.Next() {
		var (
			dayIdx  int
			date    time.Time
			weather *int
			poiID   *string
			visit   types.Visit
			mode    *string
		)
		err := rows.Scan(&dayIdx, &date, &weather,
			&poiID, &visit.POI.Name, &visit.POI.Location.Lat, &visit.POI.Location.Lng,
			&visit.POI.CumulativeRating,
			&visit.ArrivalMinute, &visit.DepartureMinute, &visit.TravelSeconds, &mode,
			&visit.UserRating)
		if err != nil {
			return nil, fmt.Errorf("database error scanning trip place: %w", err)
		}
		if dayIdx != lastIdx {
			days = append(days, types.DayPlan{Date: date, Weather: weather})
			lastIdx = dayIdx
		}
		// Days with no visits still produce one row from the LEFT JOIN.
		if poiID == nil {
			continue
		}
		visit.POI.ID = *poiID
		if mode != nil {
			visit.TravelMode = types.TravelMode(*mode)
		}
		days[len(days)-1].Visits = append(days[len(days)-1].Visits, visit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating trip days: %w", err)
	}
	return days, nil
}

func (r *RepositoryImpl) GetItineraries(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]types.Itinerary, int, error) {
	ctx, span := otel.Tracer("ItineraryRepo").Start(ctx, "GetItineraries", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	var total int
	if err := r.pgpool.QueryRow(ctx,
		`SELECT count(*) FROM trips WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("database error counting trips: %w", err)
	}

	offset := (page - 1) * pageSize
	rows, err := r.pgpool.Query(ctx, `
        SELECT t.id, t.user_id, t.city_id, c.name, t.start_date, t.end_date, t.summary, t.created_at
        FROM trips t
        JOIN cities c ON c.id = t.city_id
        WHERE t.user_id = $1
        ORDER BY t.created_at DESC
        LIMIT $2 OFFSET $3`, userID, pageSize, offset)
	if err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("database error listing trips: %w", err)
	}
	defer rows.Close()

	var itineraries []types.Itinerary
	for rows.Next() {
		var it types.Itinerary
		err := rows.Scan(&it.ID, &it.UserID, &it.CityID, &it.CityName,
			&it.StartDate, &it.EndDate, &it.Summary, &it.CreatedAt)
		if err != nil {
			span.RecordError(err)
			return nil, 0, fmt.Errorf("database error scanning trip: %w", err)
		}
		itineraries = append(itineraries, it)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("database error iterating trips: %w", err)
	}
	return itineraries, total, nil
}

// UpdatePlaceRating records the user's rating for one visited place. The
// owning trip row is locked first so concurrent feedback on the same trip
// serializes instead of interleaving.
func (r *RepositoryImpl) UpdatePlaceRating(ctx context.Context, userID, tripID uuid.UUID, poiID string, rating float64) error {
	ctx, span := otel.Tracer("ItineraryRepo").Start(ctx, "UpdatePlaceRating", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("trip.id", tripID.String()),
		attribute.String("poi.id", poiID),
	))
	defer span.End()

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var ownedID uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM trips WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		tripID, userID,
	).Scan(&ownedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Trip not found")
			return fmt.Errorf("trip %s: %w", tripID, ErrNotFound)
		}
		span.RecordError(err)
		return fmt.Errorf("database error locking trip: %w", err)
	}

	tag, err := tx.Exec(ctx, `
        UPDATE trip_places SET user_rating = $1
        WHERE poi_id = $2
          AND trip_day_id IN (SELECT id FROM trip_days WHERE trip_id = $3)`,
		rating, poiID, tripID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("database error updating place rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "Place not in trip")
		return fmt.Errorf("place %s in trip %s: %w", poiID, tripID, ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to commit rating update: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) DeleteItinerary(ctx context.Context, userID, tripID uuid.UUID) error {
	ctx, span := otel.Tracer("ItineraryRepo").Start(ctx, "DeleteItinerary", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx,
		`DELETE FROM trips WHERE id = $1 AND user_id = $2`, tripID, userID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("database error deleting trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "Trip not found")
		return fmt.Errorf("trip %s: %w", tripID, ErrNotFound)
	}
	return nil
}
