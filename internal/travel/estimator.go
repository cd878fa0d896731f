// Package travel implements the distance/time oracle: haversine distance,
// linear regression travel-time models per transport mode, and an optional
// live OSRM lookup with a hard timeout and silent fallback.
package travel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang/geo/s2"
	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

const (
	earthRadiusKm = 6371.0

	// carDistanceThresholdKm splits walking legs from driving legs.
	carDistanceThresholdKm = 5.0

	// osrmTimeout bounds the live routing call; the regression fallback
	// covers everything beyond it.
	osrmTimeout = 100 * time.Millisecond
)

// linearModel predicts travel hours from straight-line kilometers. The
// coefficients were fitted offline against observed city routes.
type linearModel struct {
	intercept float64
	slope     float64
}

func (m linearModel) predictSeconds(km float64) int {
	if km == 0 {
		return 0
	}
	return int((m.intercept + m.slope*km) * 3600)
}

var (
	footModel = linearModel{intercept: 0.033, slope: 0.21}
	carModel  = linearModel{intercept: 0.086, slope: 0.024}
)

// DistanceKm returns the haversine distance between two coordinates.
func DistanceKm(from, to types.Coordinates) float64 {
	a := s2.LatLngFromDegrees(from.Lat, from.Lng)
	b := s2.LatLngFromDegrees(to.Lat, to.Lng)
	return a.Distance(b).Radians() * earthRadiusKm
}

// Estimator is the distance/time oracle handed to the route solver. It
// never returns an error: any OSRM failure falls back to the regression
// estimate, and identical coordinates cost zero.
type Estimator struct {
	logger  *slog.Logger
	cache   *cache.Cache
	client  *http.Client
	osrmURL string
}

// NewEstimator builds an estimator. osrmURL may be empty, which disables
// the live lookup entirely.
func NewEstimator(osrmURL string, logger *slog.Logger) *Estimator {
	return &Estimator{
		logger:  logger,
		cache:   cache.New(24*time.Hour, 1*time.Hour),
		client:  &http.Client{Timeout: osrmTimeout},
		osrmURL: osrmURL,
	}
}

// Estimate returns the estimated travel duration in seconds and the
// transport mode between two coordinates. Legs above the car threshold are
// driven and doubled to absorb city traffic; everything else is walked.
func (e *Estimator) Estimate(ctx context.Context, from, to types.Coordinates) (int, types.TravelMode) {
	key := fmt.Sprintf("%.6f,%.6f|%.6f,%.6f", from.Lat, from.Lng, to.Lat, to.Lng)
	if cached, found := e.cache.Get(key); found {
		est := cached.(cachedEstimate)
		return est.seconds, est.mode
	}

	seconds, mode := e.estimate(ctx, from, to)
	e.cache.Set(key, cachedEstimate{seconds: seconds, mode: mode}, cache.DefaultExpiration)
	return seconds, mode
}

type cachedEstimate struct {
	seconds int
	mode    types.TravelMode
}

func (e *Estimator) estimate(ctx context.Context, from, to types.Coordinates) (int, types.TravelMode) {
	km := DistanceKm(from, to)
	if km == 0 {
		return 0, types.TravelModeNone
	}
	if km > carDistanceThresholdKm {
		if seconds, err := e.liveTravelSeconds(ctx, from, to); err == nil {
			return seconds * 2, types.TravelModeCar
		} else if e.osrmURL != "" {
			e.logger.DebugContext(ctx, "OSRM lookup failed, using regression fallback", slog.Any("error", err))
		}
		return carModel.predictSeconds(km) * 2, types.TravelModeCar
	}
	return footModel.predictSeconds(km), types.TravelModeFoot
}

type osrmResponse struct {
	Routes []struct {
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// liveTravelSeconds queries an OSRM instance for the driving duration. Any
// failure, timeout, or nonsensical answer is an error for the caller to
// swallow; it never propagates past the estimator.
func (e *Estimator) liveTravelSeconds(ctx context.Context, from, to types.Coordinates) (int, error) {
	if e.osrmURL == "" {
		return 0, fmt.Errorf("osrm disabled")
	}
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f", e.osrmURL, from.Lng, from.Lat, to.Lng, to.Lat)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("osrm returned status %d", resp.StatusCode)
	}
	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}
	if len(body.Routes) == 0 || body.Routes[0].Duration <= 0 {
		return 0, fmt.Errorf("osrm returned no usable route")
	}
	return int(body.Routes[0].Duration), nil
}
