package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

func greedyPOI(id string, lat, lng float64, kinds ...string) types.ScoredPOI {
	poi := types.ScoredPOI{CumulativeRating: 0.5}
	poi.ID = id
	poi.Location = types.Coordinates{Lat: lat, Lng: lng}
	poi.Types = kinds
	poi.EstimatedVisitMinutes = 90
	return poi
}

func TestGreedyPlanner_NoRepeatsAcrossDays(t *testing.T) {
	prefs := types.NewUserPreferences(nil, 4, []string{"museum"}, nil)
	g := NewGreedyPlanner(&prefs)

	pois := []types.ScoredPOI{
		greedyPOI("a", 38.710, -9.140, "museum"),
		greedyPOI("b", 38.712, -9.142, "museum"),
		greedyPOI("c", 38.714, -9.144, "park"),
		greedyPOI("d", 38.716, -9.146, "museum"),
		greedyPOI("e", 38.718, -9.148, "park"),
	}

	plans := g.Plan(pois, 2)
	require.Len(t, plans, 2)

	seen := map[string]bool{}
	for _, day := range plans {
		for _, ev := range day {
			assert.False(t, seen[ev.POI.ID], "poi %s scheduled twice", ev.POI.ID)
			seen[ev.POI.ID] = true
		}
	}
}

func TestGreedyPlanner_DayBounds(t *testing.T) {
	prefs := types.NewUserPreferences(nil, 4, nil, nil)
	g := NewGreedyPlanner(&prefs)

	pois := []types.ScoredPOI{
		greedyPOI("a", 38.710, -9.140, "museum"),
		greedyPOI("b", 38.712, -9.142, "museum"),
		greedyPOI("c", 38.714, -9.144, "museum"),
	}

	plans := g.Plan(pois, 1)
	require.Len(t, plans, 1)
	require.NotEmpty(t, plans[0])

	for _, ev := range plans[0] {
		assert.GreaterOrEqual(t, ev.StartMinute, greedyDayStartMinute)
		assert.LessOrEqual(t, ev.EndMinute, greedyDayEndMinute)
		assert.Less(t, ev.StartMinute, ev.EndMinute)
	}
}

func TestGreedyPlanner_CategoryWeightDecays(t *testing.T) {
	prefs := types.NewUserPreferences(nil, 4, []string{"museum"}, nil)
	g := NewGreedyPlanner(&prefs)

	museum := greedyPOI("m", 38.710, -9.140, "museum")
	before := g.evaluate(&museum)

	for i := 0; i < 5; i++ {
		g.decay()
	}
	after := g.evaluate(&museum)

	// The weight bottoms out at zero, leaving only the flat 0.1 floor.
	assert.Greater(t, before, after)
	assert.InDelta(t, 0.1, after, 1e-9)
}

func TestMetersBetween(t *testing.T) {
	a := types.Coordinates{Lat: 38.7100, Lng: -9.1400}
	b := types.Coordinates{Lat: 38.7190, Lng: -9.1400}

	// ~0.009 degrees of latitude is about a kilometer.
	d := metersBetween(a, b)
	assert.InDelta(t, 1000, d, 15)
	assert.Zero(t, metersBetween(a, a))
}
