package utils

import (
	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/spot-resolver/internal/domain"
)

const earthRadiusKm = 6371.0

// HaversineDistance вычисляет расстояние по большому кругу между двумя точками в километрах
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * earthRadiusKm
}

// DistanceKm - то же для domain.GeoPoint
func DistanceKm(a, b domain.GeoPoint) float64 {
	return HaversineDistance(a.Lat, a.Lng, b.Lat, b.Lng)
}

// RectBounds - реализация domain.Bounds на s2.Rect.
// Корректно обрабатывает области через антимеридиан (sw.Lng > ne.Lng).
type RectBounds struct {
	rect s2.Rect
}

// NewRectBounds строит s2-прямоугольник из viewport
func NewRectBounds(v domain.Viewport) RectBounds {
	lat := r1.Interval{
		Lo: (s1.Angle(v.SouthWest.Lat) * s1.Degree).Radians(),
		Hi: (s1.Angle(v.NorthEast.Lat) * s1.Degree).Radians(),
	}
	lng := s1.IntervalFromEndpoints(
		(s1.Angle(v.SouthWest.Lng) * s1.Degree).Radians(),
		(s1.Angle(v.NorthEast.Lng) * s1.Degree).Radians(),
	)
	return RectBounds{rect: s2.Rect{Lat: lat, Lng: lng}}
}

// Contains реализует domain.Bounds
func (b RectBounds) Contains(p domain.GeoPoint) bool {
	if !p.Valid() {
		return false
	}
	return b.rect.ContainsLatLng(s2.LatLngFromDegrees(p.Lat, p.Lng))
}
