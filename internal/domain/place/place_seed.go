package place

import "github.com/FACorreiaa/loci-travelroute-api/internal/types"

// SeedPlaces returns the sample Jeju catalog: three sightseeing spots and the
// restaurants clustered around them.
func SeedPlaces() []locitypes.Place {
	return []locitypes.Place{
		{ID: 1, Name: "군산오름", Theme: locitypes.ThemeNature, Region: locitypes.RegionAndeokMyeon, Latitude: 33.253217, Longitude: 126.370693},
		{ID: 2, Name: "서귀포 자연휴양림", Theme: locitypes.ThemeNature, Region: locitypes.RegionSeogwipoSi, Latitude: 33.311453, Longitude: 126.458861},
		{ID: 3, Name: "제주카트클럽", Theme: locitypes.ThemeActivity, Region: locitypes.RegionHallimEup, Latitude: 33.347790, Longitude: 126.255974},
		{ID: 4, Name: "저지신토불이식당", Theme: locitypes.ThemeRestaurant, Region: locitypes.RegionHangyeongMyeon, Latitude: 33.342593, Longitude: 126.255824},
		{ID: 5, Name: "더애월 저지점", Theme: locitypes.ThemeRestaurant, Region: locitypes.RegionHangyeongMyeon, Latitude: 33.337698, Longitude: 126.266830},
		{ID: 6, Name: "엘에이치큐프로", Theme: locitypes.ThemeRestaurant, Region: locitypes.RegionSeogwipoSi, Latitude: 33.306827, Longitude: 126.432709},
		{ID: 7, Name: "엘에이", Theme: locitypes.ThemeRestaurant, Region: locitypes.RegionSeogwipoSi, Latitude: 33.307827, Longitude: 126.432709},
		{ID: 8, Name: "큐프로", Theme: locitypes.ThemeRestaurant, Region: locitypes.RegionSeogwipoSi, Latitude: 33.310827, Longitude: 126.432709},
		{ID: 9, Name: "민영식당", Theme: locitypes.ThemeRestaurant, Region: locitypes.RegionSeogwipoSi, Latitude: 33.246113, Longitude: 126.388198},
		{ID: 10, Name: "식당", Theme: locitypes.ThemeRestaurant, Region: locitypes.RegionSeogwipoSi, Latitude: 33.248113, Longitude: 126.388198},
		{ID: 11, Name: "민영", Theme: locitypes.ThemeRestaurant, Region: locitypes.RegionSeogwipoSi, Latitude: 33.247113, Longitude: 126.388198},
		{ID: 12, Name: "색달식당 중문본점", Theme: locitypes.ThemeRestaurant, Region: locitypes.RegionSeogwipoSi, Latitude: 33.241829, Longitude: 126.386383},
	}
}
