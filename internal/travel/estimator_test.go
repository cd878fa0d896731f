package travel

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

var discard = slog.New(slog.DiscardHandler)

func TestDistanceKm(t *testing.T) {
	lisbon := types.Coordinates{Lat: 38.7223, Lng: -9.1393}
	porto := types.Coordinates{Lat: 41.1579, Lng: -8.6291}

	km := DistanceKm(lisbon, porto)
	assert.InDelta(t, 274, km, 5)
	assert.Zero(t, DistanceKm(lisbon, lisbon))
}

func TestEstimate_SamePoint(t *testing.T) {
	e := NewEstimator("", discard)

	seconds, mode := e.Estimate(context.Background(), types.Coordinates{Lat: 38.72, Lng: -9.14}, types.Coordinates{Lat: 38.72, Lng: -9.14})
	assert.Zero(t, seconds)
	assert.Equal(t, types.TravelModeNone, mode)
}

func TestEstimate_ShortDistanceWalks(t *testing.T) {
	e := NewEstimator("", discard)

	from := types.Coordinates{Lat: 38.7200, Lng: -9.1400}
	to := types.Coordinates{Lat: 38.7290, Lng: -9.1400} // ~1 km north

	seconds, mode := e.Estimate(context.Background(), from, to)
	assert.Equal(t, types.TravelModeFoot, mode)
	// Regression model: (0.033 + 0.21 * km) hours.
	assert.InDelta(t, (0.033+0.21*1.0)*3600, float64(seconds), 60)
}

func TestEstimate_LongDistanceDrivesOnFallback(t *testing.T) {
	e := NewEstimator("", discard)

	from := types.Coordinates{Lat: 38.7200, Lng: -9.1400}
	to := types.Coordinates{Lat: 38.8100, Lng: -9.1400} // ~10 km north

	seconds, mode := e.Estimate(context.Background(), from, to)
	assert.Equal(t, types.TravelModeCar, mode)
	// Doubled regression estimate.
	assert.InDelta(t, 2*(0.086+0.024*10)*3600, float64(seconds), 120)
}

func TestEstimate_OSRMLiveLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/route/v1/driving/")
		w.Write([]byte(`{"routes":[{"duration":1234}]}`))
	}))
	defer srv.Close()

	e := NewEstimator(srv.URL, discard)
	from := types.Coordinates{Lat: 38.7200, Lng: -9.1400}
	to := types.Coordinates{Lat: 38.8100, Lng: -9.1400}

	seconds, mode := e.Estimate(context.Background(), from, to)
	assert.Equal(t, types.TravelModeCar, mode)
	assert.Equal(t, 2468, seconds, "live duration is doubled")
}

func TestEstimate_OSRMFailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	live := NewEstimator(srv.URL, discard)
	offline := NewEstimator("", discard)
	from := types.Coordinates{Lat: 38.7200, Lng: -9.1400}
	to := types.Coordinates{Lat: 38.8100, Lng: -9.1400}

	gotSeconds, gotMode := live.Estimate(context.Background(), from, to)
	wantSeconds, wantMode := offline.Estimate(context.Background(), from, to)
	assert.Equal(t, wantSeconds, gotSeconds)
	assert.Equal(t, wantMode, gotMode)
}

func TestEstimate_OSRMTimeoutFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{"routes":[{"duration":1234}]}`))
	}))
	defer srv.Close()

	e := NewEstimator(srv.URL, discard)
	from := types.Coordinates{Lat: 38.7200, Lng: -9.1400}
	to := types.Coordinates{Lat: 38.8100, Lng: -9.1400}

	seconds, mode := e.Estimate(context.Background(), from, to)
	assert.Equal(t, types.TravelModeCar, mode)
	assert.InDelta(t, 2*(0.086+0.024*10)*3600, float64(seconds), 120)
}

func TestEstimate_Caches(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"routes":[{"duration":600}]}`))
	}))
	defer srv.Close()

	e := NewEstimator(srv.URL, discard)
	from := types.Coordinates{Lat: 38.7200, Lng: -9.1400}
	to := types.Coordinates{Lat: 38.8100, Lng: -9.1400}

	first, _ := e.Estimate(context.Background(), from, to)
	second, _ := e.Estimate(context.Background(), from, to)
	require.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}
