package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mustDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestNewUserPreferences_Needs(t *testing.T) {
	prefs := NewUserPreferences([]Need{NeedVegan, NeedAllowsDogs}, 2, nil, nil)

	assert.True(t, prefs.Vegan)
	assert.True(t, prefs.AllowsDogs)
	assert.False(t, prefs.Alcohol)
	assert.Equal(t, 2, prefs.PriceCeiling)
}

func TestNewUserPreferences_PlaceOfWorshipExpansion(t *testing.T) {
	t.Run("chosen subcategories", func(t *testing.T) {
		prefs := NewUserPreferences(nil, 4,
			[]string{"museum", "place_of_worship"},
			map[string][]string{"place_of_worship": {"church", "mosque"}})

		assert.ElementsMatch(t, []string{"museum", "church", "mosque"}, prefs.Categories)
		assert.False(t, prefs.HasCategory("place_of_worship"))
		assert.NotContains(t, prefs.Subcategories, "place_of_worship")
	})

	t.Run("no subcategory selects all sites", func(t *testing.T) {
		prefs := NewUserPreferences(nil, 4, []string{"place_of_worship"}, nil)

		assert.ElementsMatch(t, []string{"church", "mosque", "synagogue"}, prefs.Categories)
	})

	t.Run("unknown site is ignored", func(t *testing.T) {
		prefs := NewUserPreferences(nil, 4,
			[]string{"place_of_worship"},
			map[string][]string{"place_of_worship": {"church", "shrine"}})

		assert.ElementsMatch(t, []string{"church"}, prefs.Categories)
	})
}

func TestPOI_MustSee(t *testing.T) {
	poi := POI{StatisticalRating: 4.6, Types: []string{"tourist_attraction"}}
	assert.True(t, poi.MustSee())

	poi.Types = []string{"restaurant"}
	assert.False(t, poi.MustSee())

	poi.Types = []string{"historical_landmark"}
	poi.StatisticalRating = 4.5
	assert.False(t, poi.MustSee(), "threshold is exclusive")
}

func TestPOI_VisitMinutes(t *testing.T) {
	poi := POI{}
	assert.Equal(t, DefaultVisitMinutes, poi.VisitMinutes())

	poi.EstimatedVisitMinutes = 45
	assert.Equal(t, 45, poi.VisitMinutes())
}

func TestTripRequest_DaysAndDates(t *testing.T) {
	req := TripRequest{
		StartDate: mustDate(2026, 9, 1),
		EndDate:   mustDate(2026, 9, 3),
	}
	assert.Equal(t, 3, req.Days())
	dates := req.Dates()
	assert.Equal(t, []struct{ m, d int }{{9, 1}, {9, 2}, {9, 3}}, []struct{ m, d int }{
		{int(dates[0].Month()), dates[0].Day()},
		{int(dates[1].Month()), dates[1].Day()},
		{int(dates[2].Month()), dates[2].Day()},
	})
}
