package fraud

import "math"

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two coordinate pairs
// using the haversine formula, rounded to 2 decimal places. It returns nil if
// any input is nil: a missing coordinate means "cannot assess", never zero
// distance.
func DistanceKm(lat1, lon1, lat2, lon2 *float64) *float64 {
	if lat1 == nil || lon1 == nil || lat2 == nil || lon2 == nil {
		return nil
	}

	dLat := (*lat2 - *lat1) * math.Pi / 180.0
	dLon := (*lon2 - *lon1) * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(*lat1*math.Pi/180.0)*math.Cos(*lat2*math.Pi/180.0)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	d := math.Round(earthRadiusKm*c*100) / 100
	return &d
}
