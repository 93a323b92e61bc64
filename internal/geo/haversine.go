package geo

import "math"

const earthRadiusM = 6371000.0

// DefaultCheckInRadiusM is the geofence around a building for check-in.
const DefaultCheckInRadiusM = 50.0

// DistanceMeters returns the great-circle distance between two points.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// WithinRadius reports whether the two points lie within radiusM of each
// other. Missing coordinates yield false, never an error.
func WithinRadius(lat1, lon1, lat2, lon2 *float64, radiusM float64) bool {
	if lat1 == nil || lon1 == nil || lat2 == nil || lon2 == nil {
		return false
	}
	return DistanceMeters(*lat1, *lon1, *lat2, *lon2) <= radiusM
}
