package planner

import (
	"time"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

// WeekdayIndices maps each calendar date of the trip to its weekday index
// (Sunday = 0, matching both time.Weekday and WeekSchedule).
func WeekdayIndices(start, end time.Time) []int {
	var weekdays []int
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		weekdays = append(weekdays, int(d.Weekday()))
	}
	return weekdays
}

// SanitizeSchedule zeroes any window whose close precedes its open, so the
// rest of the pipeline only ever sees open <= close. Zeroed windows count
// as closed all day.
func SanitizeSchedule(schedule *types.WeekSchedule) {
	for i := range schedule {
		if schedule[i].Close < schedule[i].Open {
			schedule[i].Open = 0
			schedule[i].Close = 0
		}
	}
}

// Availability is the per-trip mapping of POIs to the day positions they
// are open on. Indices in Fixed and Flexible point into Open.
type Availability struct {
	// Open holds the POIs available on at least one trip day; POIs closed
	// for the whole trip are dropped here, before partitioning.
	Open []types.ScoredPOI
	// Fixed pins a POI (by index into Open) to its only available day
	// position.
	Fixed map[int]int
	// Flexible lists the allowed day positions for POIs open on two or
	// more trip days.
	Flexible map[int][]int
}

// ResolveAvailability computes, for every POI, the trip-day positions on
// which it is open. Positions index the trip's day list, not weekday
// numbers: on a trip longer than a week two positions can share a weekday,
// and each gets resolved independently.
func ResolveAvailability(pois []types.ScoredPOI, weekdays []int) Availability {
	avail := Availability{
		Fixed:    make(map[int]int),
		Flexible: make(map[int][]int),
	}
	for _, poi := range pois {
		var positions []int
		for pos, weekday := range weekdays {
			if poi.OpeningHours[weekday].OpenToday() {
				positions = append(positions, pos)
			}
		}
		if len(positions) == 0 {
			continue
		}
		idx := len(avail.Open)
		avail.Open = append(avail.Open, poi)
		if len(positions) == 1 {
			avail.Fixed[idx] = positions[0]
		} else {
			avail.Flexible[idx] = positions
		}
	}
	return avail
}
