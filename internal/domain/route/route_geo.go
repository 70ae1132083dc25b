package route

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"

	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
)

// EarthRadiusKm is the mean Earth radius used for every distance in the engine.
const EarthRadiusKm = 6371.0

const kmPerDegree = EarthRadiusKm * math.Pi / 180

// Haversine returns the great-circle distance in kilometers between two
// coordinates given in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dlat := (lat2 - lat1) * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Distance is the haversine distance between two places.
func Distance(a, b locitypes.Place) float64 {
	return Haversine(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// DistanceMatrix returns the symmetric n×n haversine matrix with a zero diagonal.
func DistanceMatrix(places []locitypes.Place) [][]float64 {
	n := len(places)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := Distance(places[i], places[j])
			m[i][j] = d
			m[j][i] = d
		}
	}
	return m
}

// SegmentDistance is the distance in kilometers from p to the segment a→b.
// Coordinates are projected onto a local equirectangular plane centred on a,
// which is accurate to well under a percent at city scale.
func SegmentDistance(a, b, p locitypes.Place) float64 {
	cosLat := math.Cos(a.Latitude * math.Pi / 180)
	project := func(q locitypes.Place) orb.Point {
		return orb.Point{
			(q.Longitude - a.Longitude) * cosLat * kmPerDegree,
			(q.Latitude - a.Latitude) * kmPerDegree,
		}
	}
	return planar.DistanceFromSegment(project(a), project(b), project(p))
}

// searchBound is a lon/lat box guaranteed to contain every point within
// radiusKm of center. orb uses a larger Earth radius, so the box is padded.
func searchBound(center locitypes.Place, radiusKm float64) orb.Bound {
	return geo.NewBoundAroundPoint(center.Point(), radiusKm*1000*1.01)
}
