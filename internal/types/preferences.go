package locitypes

import (
	"slices"
	"strings"

	a "github.com/petar-dambovaliev/aho-corasick"
)

// Preferences are themes, regions and meals mentioned in a free-text query.
type Preferences struct {
	Themes  []Theme  `json:"themes,omitempty"`
	Regions []Region `json:"regions,omitempty"`
	Meals   []Meal   `json:"meals,omitempty"`
}

func (p Preferences) Empty() bool {
	return len(p.Themes) == 0 && len(p.Regions) == 0 && len(p.Meals) == 0
}

type keyword struct {
	theme  Theme
	region Region
	meal   Meal
}

var (
	preferenceKeywords = buildPreferenceKeywords()
	preferencePatterns = func() []string {
		patterns := make([]string, 0, len(preferenceKeywords))
		for k := range preferenceKeywords {
			patterns = append(patterns, k)
		}
		slices.Sort(patterns)
		return patterns
	}()

	preferenceBuilder = a.NewAhoCorasickBuilder(a.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
		MatchKind:            a.LeftMostLongestMatch,
		DFA:                  true,
	})
	preferenceMatcher = preferenceBuilder.Build(preferencePatterns)
)

func buildPreferenceKeywords() map[string]keyword {
	m := map[string]keyword{
		"beach": {theme: ThemeCoastal}, "beaches": {theme: ThemeCoastal}, "coast": {theme: ThemeCoastal}, "sea": {theme: ThemeCoastal},
		"forest": {theme: ThemeNature}, "hiking": {theme: ThemeNature}, "oreum": {theme: ThemeNature}, "mountain": {theme: ThemeNature},
		"cafes": {theme: ThemeCafe}, "coffee": {theme: ThemeCafe},
		"museum": {theme: ThemeExhibit}, "museums": {theme: ThemeExhibit}, "gallery": {theme: ThemeExhibit}, "exhibition": {theme: ThemeExhibit},
		"activities": {theme: ThemeActivity}, "karting": {theme: ThemeActivity}, "kart": {theme: ThemeActivity},
		"restaurants": {theme: ThemeRestaurant}, "food": {theme: ThemeRestaurant},
		"breakfast": {meal: MealBreakfast}, "아침": {meal: MealBreakfast},
		"lunch": {meal: MealLunch}, "점심": {meal: MealLunch},
		"dinner": {meal: MealDinner}, "저녁": {meal: MealDinner},
		"jeju": {region: RegionJejuSi}, "jeju city": {region: RegionJejuSi},
		"seogwipo": {region: RegionSeogwipoSi},
	}
	for theme, label := range themeLabels {
		m[string(theme)] = keyword{theme: theme}
		m[label] = keyword{theme: theme}
	}
	for region, label := range regionLabels {
		m[string(region)] = keyword{region: region}
		m[label] = keyword{region: region}
		// "hallim-eup" is also written "hallim"
		if i := strings.IndexByte(string(region), '-'); i > 0 {
			if _, taken := m[string(region)[:i]]; !taken {
				m[string(region)[:i]] = keyword{region: region}
			}
		}
	}
	return m
}

// DetectPreferences scans a query for known theme, region and meal keywords.
// Results keep first-mention order and contain no duplicates.
func DetectPreferences(query string) Preferences {
	var prefs Preferences
	lower := strings.ToLower(query)
	iter := preferenceMatcher.Iter(lower)
	for match := iter.Next(); match != nil; match = iter.Next() {
		kw := preferenceKeywords[preferencePatterns[match.Pattern()]]
		switch {
		case kw.theme != "" && !slices.Contains(prefs.Themes, kw.theme):
			prefs.Themes = append(prefs.Themes, kw.theme)
		case kw.region != "" && !slices.Contains(prefs.Regions, kw.region):
			prefs.Regions = append(prefs.Regions, kw.region)
		case kw.meal != "" && !slices.Contains(prefs.Meals, kw.meal):
			prefs.Meals = append(prefs.Meals, kw.meal)
		}
	}
	return prefs
}

// Merge fills empty config fields from detected preferences.
func (c TravelRouteConfig) Merge(p Preferences) TravelRouteConfig {
	if len(c.Themes) == 0 {
		for _, t := range p.Themes {
			if !t.IsEating() {
				c.Themes = append(c.Themes, t)
			}
		}
	}
	if len(c.Regions) == 0 {
		c.Regions = append(c.Regions, p.Regions...)
	}
	for _, m := range p.Meals {
		switch m {
		case MealBreakfast:
			c.Schedule.Breakfast = true
		case MealLunch:
			c.Schedule.Lunch = true
		case MealDinner:
			c.Schedule.Dinner = true
		}
	}
	return c
}
