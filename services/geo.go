package services

import (
	"math"

	"github.com/zdenkokanos/MTAA-backend/models"
)

const earthRadiusKm = 6371.0

// haversineKm - расстояние по большому кругу между двумя точками в километрах,
// округлённое до двух знаков.
func haversineKm(a, b models.Coordinates) float64 {
	lat1 := degToRad(a.Latitude)
	lat2 := degToRad(b.Latitude)
	dLat := degToRad(b.Latitude - a.Latitude)
	dLon := degToRad(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return roundTo2(earthRadiusKm * c)
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

func validCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
