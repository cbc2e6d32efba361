package geo

import (
	"fmt"
	"math"
	"strings"

	"github.com/voyago/voyago/internal/app/models"
)

const earthRadiusMeters = 6371000

// FilterValid keeps the points with usable coordinates, preserving order.
func FilterValid(points []models.RoutePoint) []models.RoutePoint {
	valid := make([]models.RoutePoint, 0, len(points))
	for _, p := range points {
		if p.Coordinate.Valid() {
			valid = append(valid, p)
		}
	}
	return valid
}

// CenterPoint averages the valid coordinates, falling back when none exist.
func CenterPoint(coords []models.Coordinate, fallback models.Coordinate) models.Coordinate {
	var latSum, lngSum float64
	n := 0
	for _, c := range coords {
		if !c.Valid() {
			continue
		}
		latSum += c.Latitude
		lngSum += c.Longitude
		n++
	}
	if n == 0 {
		return fallback
	}
	return models.Coordinate{Latitude: latSum / float64(n), Longitude: lngSum / float64(n)}
}

// Bounds returns the bounding box of the valid coordinates.
// Returns false when no coordinate is valid.
func Bounds(coords []models.Coordinate) (minLat, maxLat, minLng, maxLng float64, ok bool) {
	minLat, minLng = math.MaxFloat64, math.MaxFloat64
	maxLat, maxLng = -math.MaxFloat64, -math.MaxFloat64

	for _, c := range coords {
		if !c.Valid() {
			continue
		}
		ok = true
		minLat = math.Min(minLat, c.Latitude)
		maxLat = math.Max(maxLat, c.Latitude)
		minLng = math.Min(minLng, c.Longitude)
		maxLng = math.Max(maxLng, c.Longitude)
	}
	if !ok {
		return 0, 0, 0, 0, false
	}
	return minLat, maxLat, minLng, maxLng, true
}

// HaversineMeters is the great-circle distance between two points.
func HaversineMeters(a, b models.Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// Fingerprint produces a stable signature of an ordered point sequence,
// rounded to 6 decimals so float noise does not defeat memoization.
func Fingerprint(points []models.RoutePoint) string {
	var b strings.Builder
	for i, p := range points {
		if i > 0 {
			b.WriteByte('|')
		}
		fmt.Fprintf(&b, "%.6f,%.6f", p.Coordinate.Latitude, p.Coordinate.Longitude)
	}
	return b.String()
}

// FormatDistance renders meters the way the trip UI shows them.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

// FormatDuration renders seconds as hours and minutes.
func FormatDuration(secs float64) string {
	mins := int(math.Round(secs / 60))
	if mins < 60 {
		return fmt.Sprintf("%d min", mins)
	}
	return fmt.Sprintf("%dh %dmin", mins/60, mins%60)
}
