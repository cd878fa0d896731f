package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

// constantEstimator reports the same travel time between any two distinct
// coordinates.
type constantEstimator struct {
	seconds int
}

func (e constantEstimator) Estimate(_ context.Context, from, to types.Coordinates) (int, types.TravelMode) {
	if from == to {
		return 0, types.TravelModeNone
	}
	return e.seconds, types.TravelModeFoot
}

func routablePOI(id string, rating float64, open, close int) types.ScoredPOI {
	poi := types.ScoredPOI{CumulativeRating: rating}
	poi.ID = id
	poi.EstimatedVisitMinutes = 60
	for d := range poi.OpeningHours {
		poi.OpeningHours[d] = types.OpeningPeriod{Open: open, Close: close}
	}
	return poi
}

var hotel = types.Coordinates{Lat: 38.7223, Lng: -9.1393}

func placeAt(poi types.ScoredPOI, lat, lng float64) types.ScoredPOI {
	poi.Location = types.Coordinates{Lat: lat, Lng: lng}
	return poi
}

func TestSolveDay_EarliestClosingFirst(t *testing.T) {
	solver := NewSolver(constantEstimator{seconds: 600})

	early := placeAt(routablePOI("early", 0.5, 600, 720), 38.71, -9.14)
	late := placeAt(routablePOI("late", 0.5, 600, 1320), 38.72, -9.15)

	route, err := solver.SolveDay(context.Background(), []types.ScoredPOI{early, late}, hotel, 1)
	require.NoError(t, err)

	require.Len(t, route.Order, 2)
	assert.Empty(t, route.Dropped)
	// The tight window is served first even though both fit.
	assert.Equal(t, 0, route.Order[0])
	assert.Equal(t, 1, route.Order[1])

	// Arrivals respect travel plus visit propagation.
	assert.Equal(t, 610, route.Arrivals[0])
	assert.Equal(t, 670, route.Departures[0])
	assert.Equal(t, 680, route.Arrivals[1])
}

func TestSolveDay_DropsLowerRatedOnConflict(t *testing.T) {
	solver := NewSolver(constantEstimator{seconds: 600})

	// Both POIs share a window that only fits one 60-minute visit.
	better := placeAt(routablePOI("better", 0.9, 600, 730), 38.71, -9.14)
	worse := placeAt(routablePOI("worse", 0.8, 600, 730), 38.72, -9.15)

	route, err := solver.SolveDay(context.Background(), []types.ScoredPOI{better, worse}, hotel, 1)
	require.NoError(t, err)

	require.Len(t, route.Order, 1)
	require.Len(t, route.Dropped, 1)
	assert.Equal(t, 0, route.Order[0], "higher-rated POI kept")
	assert.Equal(t, 1, route.Dropped[0], "lower-rated POI dropped")

	// The drop penalty shows up in the objective: round(0.8 * 1000).
	assert.GreaterOrEqual(t, route.Objective, int64(800))
}

func TestSolveDay_MustSeeSurvivesConflict(t *testing.T) {
	solver := NewSolver(constantEstimator{seconds: 600})

	mustSee := placeAt(routablePOI("cathedral", 0.6, 600, 730), 38.71, -9.14)
	mustSee.StatisticalRating = 4.8
	mustSee.Types = []string{"tourist_attraction"}
	require.True(t, mustSee.MustSee())

	rival := placeAt(routablePOI("rival", 0.95, 600, 730), 38.72, -9.15)

	route, err := solver.SolveDay(context.Background(), []types.ScoredPOI{mustSee, rival}, hotel, 1)
	require.NoError(t, err)

	require.Len(t, route.Order, 1)
	assert.Equal(t, 0, route.Order[0], "must-see wins the slot despite the rival's higher rating")
	assert.Equal(t, []int{1}, route.Dropped)
}

func TestSolveDay_CollapsedWindowIsDroppable(t *testing.T) {
	solver := NewSolver(constantEstimator{seconds: 600})

	// Visit longer than the whole open interval: the window collapses to a
	// single instant that travel time makes unreachable.
	cramped := placeAt(routablePOI("cramped", 0.5, 600, 630), 38.71, -9.14)
	cramped.EstimatedVisitMinutes = 120

	route, err := solver.SolveDay(context.Background(), []types.ScoredPOI{cramped}, hotel, 1)
	require.NoError(t, err)

	assert.Empty(t, route.Order)
	assert.Equal(t, []int{0}, route.Dropped)
}

func TestSolveDay_EmptyPool(t *testing.T) {
	solver := NewSolver(constantEstimator{seconds: 600})

	route, err := solver.SolveDay(context.Background(), nil, hotel, 1)
	require.NoError(t, err)
	assert.Empty(t, route.Order)
	assert.Empty(t, route.Dropped)
	assert.Zero(t, route.Objective)
}

func TestSolveDay_InvertedDepotWindow(t *testing.T) {
	solver := NewSolver(constantEstimator{seconds: 600})
	solver.DayStart = 1400
	solver.DayEnd = 1320

	_, err := solver.SolveDay(context.Background(), nil, hotel, 1)
	require.Error(t, err)
	var infeasible *InfeasibleDayError
	assert.ErrorAs(t, err, &infeasible)
}

func TestSolveDay_FirstLegIsZero(t *testing.T) {
	solver := NewSolver(constantEstimator{seconds: 600})

	only := placeAt(routablePOI("only", 0.5, 600, 1320), 38.71, -9.14)
	route, err := solver.SolveDay(context.Background(), []types.ScoredPOI{only}, hotel, 1)
	require.NoError(t, err)

	require.Len(t, route.Legs, 1)
	assert.Zero(t, route.Legs[0].Seconds)
	assert.Equal(t, types.TravelModeNone, route.Legs[0].Mode)
}

func TestSolveDay_ReturnsToHotelInTime(t *testing.T) {
	solver := NewSolver(constantEstimator{seconds: 1800})

	// Three long visits late in the day: whatever is kept must still leave
	// room for the 30-minute ride home before 22:00.
	pois := []types.ScoredPOI{
		placeAt(routablePOI("a", 0.5, 600, 1320), 38.71, -9.14),
		placeAt(routablePOI("b", 0.5, 600, 1320), 38.72, -9.15),
		placeAt(routablePOI("c", 0.5, 600, 1320), 38.73, -9.16),
	}
	for i := range pois {
		pois[i].EstimatedVisitMinutes = 180
	}

	route, err := solver.SolveDay(context.Background(), pois, hotel, 1)
	require.NoError(t, err)
	require.NotEmpty(t, route.Order)

	last := len(route.Order) - 1
	assert.LessOrEqual(t, route.Departures[last]+30, DayEndMinute)
}
