package locitypes

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// Theme classifies a catalog place.
type Theme string

const (
	ThemeCoastal    Theme = "coastal"
	ThemeNature     Theme = "nature"
	ThemeCafe       Theme = "cafe"
	ThemeExhibit    Theme = "exhibit"
	ThemeActivity   Theme = "activity"
	ThemeRestaurant Theme = "restaurant"
)

// Themes lists every theme in display order. Restaurant is last because it
// feeds the eating catalog rather than sightseeing.
var Themes = []Theme{ThemeCoastal, ThemeNature, ThemeCafe, ThemeExhibit, ThemeActivity, ThemeRestaurant}

var themeLabels = map[Theme]string{
	ThemeCoastal:    "해변",
	ThemeNature:     "자연",
	ThemeCafe:       "카페",
	ThemeExhibit:    "전시",
	ThemeActivity:   "액티비티",
	ThemeRestaurant: "식당",
}

// Label returns the Korean display name.
func (t Theme) Label() string { return themeLabels[t] }

func (t Theme) Valid() bool {
	_, ok := themeLabels[t]
	return ok
}

// IsEating reports whether places of this theme belong to the eating catalog.
func (t Theme) IsEating() bool { return t == ThemeRestaurant }

// ParseTheme accepts the English code or the Korean label, case-insensitively.
func ParseTheme(s string) (Theme, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for theme, label := range themeLabels {
		if v == string(theme) || v == label {
			return theme, nil
		}
	}
	switch v {
	case "beach", "coast":
		return ThemeCoastal, nil
	case "exhibition", "museum":
		return ThemeExhibit, nil
	case "restaurants", "food":
		return ThemeRestaurant, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTheme, s)
}

func (t *Theme) UnmarshalText(b []byte) error {
	v, err := ParseTheme(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Region is one of the Jeju administrative areas places are tagged with.
type Region string

const (
	RegionJejuSi         Region = "jeju-si"
	RegionSeogwipoSi     Region = "seogwipo-si"
	RegionHangyeongMyeon Region = "hangyeong-myeon"
	RegionHallimEup      Region = "hallim-eup"
	RegionAewolEup       Region = "aewol-eup"
	RegionJocheonEup     Region = "jocheon-eup"
	RegionGujwaEup       Region = "gujwa-eup"
	RegionDaejeongEup    Region = "daejeong-eup"
	RegionAndeokMyeon    Region = "andeok-myeon"
	RegionNamwonEup      Region = "namwon-eup"
	RegionPyoseonMyeon   Region = "pyoseon-myeon"
	RegionSeongsanEup    Region = "seongsan-eup"
)

var Regions = []Region{
	RegionJejuSi, RegionSeogwipoSi, RegionHangyeongMyeon, RegionHallimEup,
	RegionAewolEup, RegionJocheonEup, RegionGujwaEup, RegionDaejeongEup,
	RegionAndeokMyeon, RegionNamwonEup, RegionPyoseonMyeon, RegionSeongsanEup,
}

var regionLabels = map[Region]string{
	RegionJejuSi:         "제주시",
	RegionSeogwipoSi:     "서귀포시",
	RegionHangyeongMyeon: "한경면",
	RegionHallimEup:      "한림읍",
	RegionAewolEup:       "애월읍",
	RegionJocheonEup:     "조천읍",
	RegionGujwaEup:       "구좌읍",
	RegionDaejeongEup:    "대정읍",
	RegionAndeokMyeon:    "안덕면",
	RegionNamwonEup:      "남원읍",
	RegionPyoseonMyeon:   "표선면",
	RegionSeongsanEup:    "성산읍",
}

func (r Region) Label() string { return regionLabels[r] }

func (r Region) Valid() bool {
	_, ok := regionLabels[r]
	return ok
}

// ParseRegion accepts the English code or the Korean label.
func ParseRegion(s string) (Region, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for region, label := range regionLabels {
		if v == string(region) || v == label {
			return region, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRegion, s)
}

func (r *Region) UnmarshalText(b []byte) error {
	v, err := ParseRegion(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Place is an immutable catalog entry.
type Place struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Theme     Theme   `json:"theme"`
	Region    Region  `json:"region"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Point returns the place location as an orb point (lon, lat).
func (p Place) Point() orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

func (p Place) Info() PlaceInfo {
	return PlaceInfo{
		PlaceID:   p.ID,
		Name:      p.Name,
		Theme:     p.Theme,
		Region:    p.Region,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
	}
}

// PlaceFilter narrows catalog queries. Empty slices do not filter.
type PlaceFilter struct {
	IDs     []int64  `json:"ids,omitempty"`
	Themes  []Theme  `json:"themes,omitempty"`
	Regions []Region `json:"regions,omitempty"`
}

// Catalog is an immutable snapshot handed to the route engine.
type Catalog struct {
	Sightseeing []Place
	Eating      []Place
}

// SplitCatalog partitions places into sightseeing and eating entries.
func SplitCatalog(places []Place) Catalog {
	var c Catalog
	for _, p := range places {
		if p.Theme.IsEating() {
			c.Eating = append(c.Eating, p)
			continue
		}
		c.Sightseeing = append(c.Sightseeing, p)
	}
	return c
}
