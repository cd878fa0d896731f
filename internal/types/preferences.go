package types

// Need is a boolean requirement the user can toggle on for the trip.
type Need string

const (
	NeedWheelchairAccessible Need = "wheelchairAccessible"
	NeedGoodForGroups        Need = "goodForGroups"
	NeedVegan                Need = "vegan"
	NeedChildren             Need = "children"
	NeedAlcohol              Need = "alcohol"
	NeedAllowsDogs           Need = "allowsDogs"
)

// UserPreferences is the profile every POI is scored against. Build it with
// NewUserPreferences so the place_of_worship pseudo-category is expanded
// before anything reads Categories.
type UserPreferences struct {
	PriceCeiling int

	Accessibility bool
	GoodForGroups bool
	Vegan         bool
	Children      bool
	Alcohol       bool
	AllowsDogs    bool

	Categories    []string
	Subcategories map[string][]string
}

const pseudoCategoryPlaceOfWorship = "place_of_worship"

var placeOfWorshipCategories = []string{"church", "mosque", "synagogue"}

// NewUserPreferences builds a preference profile from the raw request shape:
// a list of needs plus category selections. "place_of_worship" is never
// stored directly; it expands into the concrete religious-site categories,
// all three when the user picked no subcategory.
func NewUserPreferences(needs []Need, priceCeiling int, categories []string, subcategories map[string][]string) UserPreferences {
	prefs := UserPreferences{
		PriceCeiling:  priceCeiling,
		Categories:    append([]string(nil), categories...),
		Subcategories: make(map[string][]string, len(subcategories)),
	}
	for cat, subs := range subcategories {
		prefs.Subcategories[cat] = append([]string(nil), subs...)
	}
	for _, need := range needs {
		switch need {
		case NeedWheelchairAccessible:
			prefs.Accessibility = true
		case NeedGoodForGroups:
			prefs.GoodForGroups = true
		case NeedVegan:
			prefs.Vegan = true
		case NeedChildren:
			prefs.Children = true
		case NeedAlcohol:
			prefs.Alcohol = true
		case NeedAllowsDogs:
			prefs.AllowsDogs = true
		}
	}
	prefs.expandPlacesOfWorship()
	return prefs
}

func (p *UserPreferences) expandPlacesOfWorship() {
	idx := -1
	for i, cat := range p.Categories {
		if cat == pseudoCategoryPlaceOfWorship {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}
	p.Categories = append(p.Categories[:idx], p.Categories[idx+1:]...)
	sites := p.Subcategories[pseudoCategoryPlaceOfWorship]
	delete(p.Subcategories, pseudoCategoryPlaceOfWorship)
	if len(sites) == 0 {
		sites = placeOfWorshipCategories
	}
	for _, site := range sites {
		for _, known := range placeOfWorshipCategories {
			if site == known {
				p.Categories = append(p.Categories, site)
				p.Subcategories[site] = []string{}
			}
		}
	}
}

// HasCategory reports whether the user asked for the given category.
func (p *UserPreferences) HasCategory(cat string) bool {
	for _, c := range p.Categories {
		if c == cat {
			return true
		}
	}
	return false
}
