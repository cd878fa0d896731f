package planner

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

func poiAt(id string, lat, lng float64) types.ScoredPOI {
	poi := types.ScoredPOI{CumulativeRating: 0.5}
	poi.ID = id
	poi.Location = types.Coordinates{Lat: lat, Lng: lng}
	return poi
}

func TestSpatialDistance_IgnoresRatingFeature(t *testing.T) {
	a := []float64{40.0, -3.0, 9.0}
	b := []float64{40.0, -3.0, 1.0}
	assert.Zero(t, spatialDistance(a, b))
	assert.NotZero(t, euclidean(a, b))
}

func TestConstrainedKMeans_FixedPinning(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	// Two tight spatial groups, but one member of each group is pinned to
	// the other's cluster.
	data := [][]float64{
		{40.00, -3.00, 5},
		{40.01, -3.01, 5},
		{41.00, -4.00, 5},
		{41.01, -4.01, 5},
	}
	fixed := map[int]int{0: 1, 2: 0}

	_, assignment := ConstrainedKMeans(data, 2, fixed, nil, rng)

	assert.Equal(t, 1, assignment[0])
	assert.Equal(t, 0, assignment[2])
}

func TestConstrainedKMeans_FlexibleRestriction(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	// Index 2 sits right next to the index-0 group but is only allowed in
	// cluster 1, where index 1 is pinned far away.
	data := [][]float64{
		{40.00, -3.00, 5},
		{41.00, -4.00, 5},
		{40.001, -3.001, 5},
	}
	fixed := map[int]int{0: 0, 1: 1}
	flexible := map[int][]int{2: {1}}

	_, assignment := ConstrainedKMeans(data, 2, fixed, flexible, rng)

	assert.Equal(t, 1, assignment[2])
}

func TestPartitionDays(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	avail := Availability{
		Open: []types.ScoredPOI{
			poiAt("a", 40.00, -3.00),
			poiAt("b", 40.01, -3.01),
			poiAt("c", 41.00, -4.00),
			poiAt("d", 41.01, -4.01),
		},
		Fixed:    map[int]int{0: 0},
		Flexible: map[int][]int{},
	}

	buckets := PartitionDays(avail, 2, rng)
	require.Len(t, buckets, 2)

	seen := map[string]int{}
	total := 0
	for _, bucket := range buckets {
		for _, poi := range bucket {
			seen[poi.ID]++
			total++
		}
	}
	// Every POI lands in exactly one day.
	assert.Equal(t, 4, total)
	for id, count := range seen {
		assert.Equal(t, 1, count, "poi %s assigned %d times", id, count)
	}

	// The pinned POI is in its fixed day.
	found := false
	for _, poi := range buckets[0] {
		if poi.ID == "a" {
			found = true
		}
	}
	assert.True(t, found, "fixed poi must stay in its pinned day")
}

func TestPartitionDays_EmptyPool(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	buckets := PartitionDays(Availability{}, 3, rng)
	require.Len(t, buckets, 3)
	for _, bucket := range buckets {
		assert.Empty(t, bucket)
	}
}

func TestPartitionDays_MoreDaysThanPOIs(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	avail := Availability{
		Open:     []types.ScoredPOI{poiAt("solo", 40, -3)},
		Fixed:    map[int]int{},
		Flexible: map[int][]int{},
	}

	buckets := PartitionDays(avail, 3, rng)
	require.Len(t, buckets, 3)
	total := 0
	for _, bucket := range buckets {
		total += len(bucket)
	}
	assert.Equal(t, 1, total)
}
