// Package geo provides great-circle distance and travel-time estimates between coordinates.
package geo

import "math"

const (
	// EarthRadiusKm is the mean Earth radius used by the spherical approximation.
	EarthRadiusKm = 6371.0

	// TravelKmPerMinute is the assumed average travel speed (~21 km/h in city traffic).
	TravelKmPerMinute = 0.35

	// ETABufferFactor pads the raw travel time for parking and handover.
	ETABufferFactor = 2.0
)

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point is finite and within the WGS84 ranges.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Distance returns the haversine distance between a and b in kilometers.
// Non-finite input yields a non-finite result; callers filter with IsFinite.
func Distance(a, b Point) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	s := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Pow(math.Sin(dLng/2), 2)

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(s))
}

// ETAMinutes converts a distance into a rounded arrival estimate in minutes.
func ETAMinutes(km float64) int {
	return int(math.Round((km / TravelKmPerMinute) * ETABufferFactor))
}

// IsFinite reports whether d is neither NaN nor infinite.
func IsFinite(d float64) bool {
	return !math.IsNaN(d) && !math.IsInf(d, 0)
}
