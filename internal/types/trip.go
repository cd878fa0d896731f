package types

import (
	"time"

	"github.com/google/uuid"
)

// TripRequest is the immutable input of one recommendation run.
type TripRequest struct {
	CityID      uuid.UUID       `json:"city_id"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	Hotel       Coordinates     `json:"hotel"`
	Preferences UserPreferences `json:"-"`
}

// Days returns the inclusive number of calendar days in the trip.
func (r TripRequest) Days() int {
	return int(r.EndDate.Sub(r.StartDate).Hours()/24) + 1
}

// Dates returns each calendar date of the trip in order.
func (r TripRequest) Dates() []time.Time {
	dates := make([]time.Time, 0, r.Days())
	for d := r.StartDate; !d.After(r.EndDate); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// TravelMode is the transport mode between two consecutive visits.
type TravelMode string

const (
	TravelModeFoot TravelMode = "FOOT"
	TravelModeCar  TravelMode = "CAR"
	TravelModeNone TravelMode = ""
)

// Visit is one scheduled stop within a day plan. Arrival/Departure are
// minutes from midnight; TravelSeconds covers the leg from the previous stop
// (zero for the first stop of the day).
type Visit struct {
	POI             ScoredPOI  `json:"poi"`
	ArrivalMinute   int        `json:"arrival_minute"`
	DepartureMinute int        `json:"departure_minute"`
	TravelSeconds   int        `json:"travel_seconds"`
	TravelMode      TravelMode `json:"travel_mode"`
	UserRating      *float64   `json:"user_rating,omitempty"`
}

// DayPlan is the ordered visiting route for one calendar date. Weather is
// the WMO weather code for that date, nil when the date falls outside the
// forecast horizon.
type DayPlan struct {
	Date    time.Time `json:"date"`
	Weather *int      `json:"weather"`
	Visits  []Visit   `json:"places"`
}

// Itinerary is the externally consumed recommendation result. It is built
// once per request, persisted once (ID assigned at that point), and later
// only touched for per-place rating feedback or deleted wholesale.
type Itinerary struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CityID    uuid.UUID `json:"city_id"`
	CityName  string    `json:"city_name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Summary   string    `json:"summary"`
	Days      []DayPlan `json:"days"`
	CreatedAt time.Time `json:"created_at"`
}

// City identifies the city a candidate pool belongs to.
type City struct {
	ID         uuid.UUID   `json:"id"`
	Name       string      `json:"name"`
	Country    string      `json:"country"`
	Center     Coordinates `json:"center"`
	Population int         `json:"population"`
}
