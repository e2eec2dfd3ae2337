package utils

import "math"

const earthRadiusMeters = 6371000.0

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	deltaPhi := (lat2 - lat1) * math.Pi / 180
	deltaLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// BoundingBox returns the approximate lat/lon bounds for a radius in meters
// around a center point. 1 degree of latitude is ~111km; longitude degrees
// shrink with the cosine of the latitude.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, maxLat, minLon, maxLon float64) {
	latDegreeInMeters := 111000.0
	lonDegreeInMeters := 111000.0 * math.Cos(lat*math.Pi/180)

	latRadiusDegrees := radiusMeters / latDegreeInMeters
	lonRadiusDegrees := radiusMeters / lonDegreeInMeters

	return lat - latRadiusDegrees, lat + latRadiusDegrees, lon - lonRadiusDegrees, lon + lonRadiusDegrees
}
