// Package planner implements the recommendation core: preference scoring,
// day-availability resolution, constrained clustering of POIs across trip
// days, and the per-day time-windowed route solver.
package planner

import (
	"math"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

// notRequested marks a sub-rating whose preference flag is off. It is
// distinct from 0, which means "requested but unmet".
const notRequested = -1.0

const (
	ratingWeight   = 0.3
	categoryWeight = 0.3
	needsWeight    = 0.4
)

func meanOfBools(vals ...bool) float64 {
	sum := 0.0
	for _, v := range vals {
		if v {
			sum++
		}
	}
	return sum / float64(len(vals))
}

func alcoholRating(poi *types.POI, prefs *types.UserPreferences) float64 {
	if !prefs.Alcohol {
		return notRequested
	}
	return meanOfBools(poi.Alcohol.ServesBeer, poi.Alcohol.ServesWine, poi.Alcohol.ServesCocktails)
}

func dogsRating(poi *types.POI, prefs *types.UserPreferences) float64 {
	if !prefs.AllowsDogs {
		return notRequested
	}
	return meanOfBools(poi.AllowsDogs)
}

func veganRating(poi *types.POI, prefs *types.UserPreferences) float64 {
	if !prefs.Vegan {
		return notRequested
	}
	return meanOfBools(poi.ServesVegetarianFood)
}

func childrenRating(poi *types.POI, prefs *types.UserPreferences) float64 {
	if !prefs.Children {
		return notRequested
	}
	return meanOfBools(poi.Children.GoodForChildren, poi.Children.MenuForChildren)
}

func accessibilityRating(poi *types.POI, prefs *types.UserPreferences) float64 {
	if !prefs.Accessibility {
		return notRequested
	}
	return meanOfBools(
		poi.Accessibility.WheelchairAccessibleParking,
		poi.Accessibility.WheelchairAccessibleSeating,
		poi.Accessibility.WheelchairAccessibleEntrance,
		poi.Accessibility.WheelchairAccessibleRestroom,
	)
}

func groupsRating(poi *types.POI, prefs *types.UserPreferences) float64 {
	if !prefs.GoodForGroups {
		return notRequested
	}
	return meanOfBools(poi.GoodForGroups)
}

func priceRating(poi *types.POI, prefs *types.UserPreferences) float64 {
	if prefs.PriceCeiling >= poi.PriceLevel {
		return 1
	}
	return 0
}

func categoryRating(poiTypes []string, categories []string) float64 {
	matches := 0
	for _, t := range poiTypes {
		for _, c := range categories {
			if t == c {
				matches++
				break
			}
		}
	}
	if matches == 0 {
		return 0
	}
	return float64(matches) / float64(len(categories))
}

// Score computes the cumulative rating of a POI against a preference
// profile, in [0,1] with 0 meaning "exclude outright". It is a pure
// function: neither argument is mutated.
//
// A price level above the user's ceiling vetoes the POI before anything
// else. Must-see POIs bypass the category veto (not the price veto). When
// no needs flag is set, the weighted average renormalizes over the rating
// and category weights only.
func Score(poi *types.POI, prefs *types.UserPreferences) float64 {
	alcohol := alcoholRating(poi, prefs)
	dogs := dogsRating(poi, prefs)
	vegan := veganRating(poi, prefs)
	children := childrenRating(poi, prefs)
	accessibility := accessibilityRating(poi, prefs)
	groups := groupsRating(poi, prefs)

	if priceRating(poi, prefs) == 0 {
		return 0
	}

	categories := prefs.Categories
	if len(categories) == 0 {
		categories = types.DefaultCategories
	}

	if poi.MustSee() {
		return 1
	}

	category := categoryRating(poi.Types, categories)
	if category == 0 {
		return 0
	}

	requested := make([]float64, 0, 6)
	for _, need := range []float64{alcohol, dogs, vegan, children, accessibility, groups} {
		if need != notRequested {
			requested = append(requested, need)
		}
	}
	needs := 0.0
	for _, need := range requested {
		needs += need
	}
	if len(requested) > 0 {
		needs /= float64(len(requested))
	}

	weighted := needs*needsWeight + category*categoryWeight + poi.StatisticalRating/5*ratingWeight
	if len(requested) == 0 {
		return weighted / (categoryWeight + ratingWeight)
	}
	return weighted / (needsWeight + categoryWeight + ratingWeight)
}

// ScorePool scores every POI in the pool and keeps the positively rated
// ones. New ScoredPOI values are produced; the input pool is left untouched.
func ScorePool(pool []types.POI, prefs *types.UserPreferences) []types.ScoredPOI {
	scored := make([]types.ScoredPOI, 0, len(pool))
	for _, poi := range pool {
		rating := Score(&poi, prefs)
		if math.IsNaN(rating) || rating <= 0 {
			continue
		}
		scored = append(scored, types.ScoredPOI{POI: poi, CumulativeRating: rating})
	}
	return scored
}
