// Package weather fetches daily WMO weather codes from Open-Meteo for the
// trip's date range.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

const (
	defaultBaseURL = "https://api.open-meteo.com"

	// forecastDays is Open-Meteo's maximum daily forecast horizon.
	forecastDays = 16
)

// Client talks to the Open-Meteo forecast API. It degrades rather than
// fails: any problem yields nil codes for every requested date.
type Client struct {
	logger  *slog.Logger
	client  *http.Client
	cache   *cache.Cache
	baseURL string
	now     func() time.Time
}

func NewClient(baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		logger:  logger,
		client:  &http.Client{Timeout: 5 * time.Second},
		cache:   cache.New(1*time.Hour, 10*time.Minute),
		baseURL: baseURL,
		now:     time.Now,
	}
}

type forecastResponse struct {
	Daily struct {
		WeatherCode []int `json:"weather_code"`
	} `json:"daily"`
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ForecastForDates returns one weather code per requested date, in order.
// Dates outside the provider's 16-day horizon come back nil, as does
// everything when the trip starts in the past or the fetch fails.
func (c *Client) ForecastForDates(ctx context.Context, loc types.Coordinates, start, end time.Time) []*int {
	numDays := daysBetween(start, end) + 1
	codes := make([]*int, numDays)

	today := truncateToDate(c.now())
	start = truncateToDate(start)
	if start.Before(today) || start.After(today.AddDate(0, 0, forecastDays)) {
		return codes
	}

	forecast, err := c.fetchDailyCodes(ctx, loc)
	if err != nil {
		c.logger.WarnContext(ctx, "weather forecast unavailable", slog.Any("error", err))
		return codes
	}

	startIdx := daysBetween(today, start)
	for i := 0; i < numDays; i++ {
		idx := startIdx + i
		if idx < 0 || idx >= len(forecast) {
			continue
		}
		code := forecast[idx]
		codes[i] = &code
	}
	return codes
}

func (c *Client) fetchDailyCodes(ctx context.Context, loc types.Coordinates) ([]int, error) {
	key := fmt.Sprintf("%.4f,%.4f", loc.Lat, loc.Lng)
	if cached, found := c.cache.Get(key); found {
		return cached.([]int), nil
	}

	url := fmt.Sprintf("%s/v1/forecast?latitude=%f&longitude=%f&daily=weather_code&forecast_days=%d",
		c.baseURL, loc.Lat, loc.Lng, forecastDays)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open-meteo returned status %d", resp.StatusCode)
	}
	var body forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	c.cache.Set(key, body.Daily.WeatherCode, cache.DefaultExpiration)
	return body.Daily.WeatherCode, nil
}
