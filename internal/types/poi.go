package types

// Coordinates is a WGS84 lat/lng pair.
type Coordinates struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// OpeningPeriod is one weekday's opening window in minutes from midnight.
// Close may exceed 1440 when the place closes after midnight. Open == Close
// means the place is closed that weekday.
type OpeningPeriod struct {
	Open  int `json:"open"`
	Close int `json:"close"`
}

// OpenToday reports whether the window has a non-zero open interval.
func (p OpeningPeriod) OpenToday() bool {
	return p.Open < p.Close
}

// WeekSchedule holds one OpeningPeriod per weekday, index 0 = Sunday,
// matching time.Weekday.
type WeekSchedule [7]OpeningPeriod

// Alcohol groups the drink-service attributes of a place.
type Alcohol struct {
	ServesBeer      bool `json:"serves_beer"`
	ServesWine      bool `json:"serves_wine"`
	ServesCocktails bool `json:"serves_cocktails"`
}

// Children groups the child-friendliness attributes of a place.
type Children struct {
	GoodForChildren bool `json:"good_for_children"`
	MenuForChildren bool `json:"menu_for_children"`
}

// Accessibility groups the wheelchair-accessibility attributes of a place.
type Accessibility struct {
	WheelchairAccessibleParking  bool `json:"wheelchair_accessible_parking"`
	WheelchairAccessibleSeating  bool `json:"wheelchair_accessible_seating"`
	WheelchairAccessibleEntrance bool `json:"wheelchair_accessible_entrance"`
	WheelchairAccessibleRestroom bool `json:"wheelchair_accessible_restroom"`
}

// POI is a candidate place for inclusion in an itinerary. Instances are
// loaded once per recommendation run and treated as read-only; derived
// scores live on ScoredPOI, never written back here.
type POI struct {
	ID                    string        `json:"id"`
	Name                  string        `json:"name"`
	Location              Coordinates   `json:"location"`
	Types                 []string      `json:"types"`
	PriceLevel            int           `json:"price_level"`
	Alcohol               Alcohol       `json:"alcohol"`
	Children              Children      `json:"children"`
	Accessibility         Accessibility `json:"accessibility"`
	AllowsDogs            bool          `json:"allows_dogs"`
	ServesVegetarianFood  bool          `json:"serves_vegetarian_food"`
	GoodForGroups         bool          `json:"good_for_groups"`
	Rating                float64       `json:"rating"`
	UserRatingCount       int           `json:"user_rating_count"`
	StatisticalRating     float64       `json:"statistical_rating"`
	EstimatedVisitMinutes int           `json:"estimated_visit_minutes"`
	OpeningHours          WeekSchedule  `json:"opening_hours"`
}

const (
	categoryTouristAttraction  = "tourist_attraction"
	categoryHistoricalLandmark = "historical_landmark"

	mustSeeRatingThreshold = 4.5

	// DefaultVisitMinutes is assumed when a POI carries no visit estimate.
	DefaultVisitMinutes = 60
)

// HasType reports whether the POI carries the given category tag.
func (p *POI) HasType(t string) bool {
	for _, pt := range p.Types {
		if pt == t {
			return true
		}
	}
	return false
}

// MustSee reports whether the POI is forced into the route: a very high
// smoothed rating combined with a landmark or attraction tag.
func (p *POI) MustSee() bool {
	return p.StatisticalRating > mustSeeRatingThreshold &&
		(p.HasType(categoryTouristAttraction) || p.HasType(categoryHistoricalLandmark))
}

// VisitMinutes returns the estimated visit duration, defaulting when unset.
func (p *POI) VisitMinutes() int {
	if p.EstimatedVisitMinutes <= 0 {
		return DefaultVisitMinutes
	}
	return p.EstimatedVisitMinutes
}

// ScoredPOI pairs a POI with its user-preference-weighted cumulative rating.
// A new value is produced per recommendation run so the shared pool is never
// mutated, even when the same POI shows up in several days' candidate sets.
type ScoredPOI struct {
	POI
	CumulativeRating float64 `json:"cumulative_rating"`
}

// DefaultCategories is substituted when a user specified no categories at all.
var DefaultCategories = []string{
	categoryTouristAttraction,
	categoryHistoricalLandmark,
}
