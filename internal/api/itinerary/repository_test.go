package itinerary

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

func setupRepositoryTest(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	repo := NewRepositoryImpl(mockPool, slog.New(slog.DiscardHandler))
	return repo, mockPool
}

func TestRepositoryImpl_GetCity(t *testing.T) {
	ctx := context.Background()
	cityID := uuid.New()

	t.Run("success", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)
		rows := pgxmock.NewRows([]string{"id", "name", "country", "center_latitude", "center_longitude", "population"}).
			AddRow(cityID, "Lisbon", "Portugal", 38.7223, -9.1393, 545000)
		mockPool.ExpectQuery("SELECT id, name, country").WithArgs(cityID).WillReturnRows(rows)

		city, err := repo.GetCity(ctx, cityID)
		require.NoError(t, err)
		assert.Equal(t, "Lisbon", city.Name)
		assert.InDelta(t, 38.7223, city.Center.Lat, 1e-9)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)
		mockPool.ExpectQuery("SELECT id, name, country").WithArgs(cityID).
			WillReturnRows(pgxmock.NewRows([]string{"id", "name", "country", "center_latitude", "center_longitude", "population"}))

		_, err := repo.GetCity(ctx, cityID)
		assert.ErrorIs(t, err, ErrNotFound)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestRepositoryImpl_GetItineraries(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	tripID := uuid.New()
	cityID := uuid.New()

	repo, mockPool := setupRepositoryTest(t)
	mockPool.ExpectQuery("SELECT count").WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(5))
	mockPool.ExpectQuery("SELECT t.id, t.user_id").WithArgs(userID, 2, 2).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "city_id", "name", "start_date", "end_date", "summary", "created_at"}).
			AddRow(tripID, userID, cityID, "Lisbon",
				time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
				"summary", time.Now()))

	trips, total, err := repo.GetItineraries(ctx, userID, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, trips, 1)
	assert.Equal(t, tripID, trips[0].ID)
	assert.Equal(t, "Lisbon", trips[0].CityName)
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRepositoryImpl_UpdatePlaceRating(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	tripID := uuid.New()

	t.Run("success", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)
		mockPool.ExpectBegin()
		mockPool.ExpectQuery("SELECT id FROM trips").WithArgs(tripID, userID).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(tripID))
		mockPool.ExpectExec("UPDATE trip_places").WithArgs(4.5, "poi-1", tripID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mockPool.ExpectCommit()

		err := repo.UpdatePlaceRating(ctx, userID, tripID, "poi-1", 4.5)
		require.NoError(t, err)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("trip not owned", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)
		mockPool.ExpectBegin()
		mockPool.ExpectQuery("SELECT id FROM trips").WithArgs(tripID, userID).
			WillReturnRows(pgxmock.NewRows([]string{"id"}))
		mockPool.ExpectRollback()

		err := repo.UpdatePlaceRating(ctx, userID, tripID, "poi-1", 4.5)
		assert.ErrorIs(t, err, ErrNotFound)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("place not in trip", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)
		mockPool.ExpectBegin()
		mockPool.ExpectQuery("SELECT id FROM trips").WithArgs(tripID, userID).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(tripID))
		mockPool.ExpectExec("UPDATE trip_places").WithArgs(4.5, "missing", tripID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mockPool.ExpectRollback()

		err := repo.UpdatePlaceRating(ctx, userID, tripID, "missing", 4.5)
		assert.ErrorIs(t, err, ErrNotFound)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestRepositoryImpl_DeleteItinerary(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	tripID := uuid.New()

	t.Run("success", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)
		mockPool.ExpectExec("DELETE FROM trips").WithArgs(tripID, userID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, repo.DeleteItinerary(ctx, userID, tripID))
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)
		mockPool.ExpectExec("DELETE FROM trips").WithArgs(tripID, userID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := repo.DeleteItinerary(ctx, userID, tripID)
		assert.ErrorIs(t, err, ErrNotFound)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestRepositoryImpl_SaveItinerary(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	cityID := uuid.New()

	itinerary := &types.Itinerary{
		UserID:    userID,
		CityID:    cityID,
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Summary:   "one day",
		Days: []types.DayPlan{
			{
				Date: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
				Visits: []types.Visit{
					{
						POI:             types.ScoredPOI{POI: types.POI{ID: "poi-1", Name: "Castle"}, CumulativeRating: 0.8},
						ArrivalMinute:   610,
						DepartureMinute: 670,
						TravelMode:      types.TravelModeFoot,
					},
				},
			},
		},
	}

	repo, mockPool := setupRepositoryTest(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec("INSERT INTO trips").
		WithArgs(pgxmock.AnyArg(), userID, cityID, itinerary.StartDate, itinerary.EndDate, "one day", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectExec("INSERT INTO trip_days").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), 0, itinerary.Days[0].Date, (*int)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectExec("INSERT INTO trip_places").
		WithArgs(pgxmock.AnyArg(), 0, "poi-1", "Castle", 0.0, 0.0, 0.8, 610, 670, 0, "FOOT").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectCommit()

	id, err := repo.SaveItinerary(ctx, itinerary)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	require.NoError(t, mockPool.ExpectationsWereMet())
}
