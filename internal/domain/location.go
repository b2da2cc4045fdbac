package domain

import (
	"math"
	"strconv"
	"strings"
)

// LocationIDSeparator разделяет широту и долготу в LocationID
const LocationIDSeparator = "#"

// LocationID - канонический ключ точки: координаты, округлённые до 4 знаков (~11 м).
// Пример: "38.0765#128.6234"
type LocationID string

// NewLocationID строит LocationID из координат
func NewLocationID(p GeoPoint) LocationID {
	return LocationID(formatCoord(p.Lat) + LocationIDSeparator + formatCoord(p.Lng))
}

// Point разбирает LocationID обратно в координаты.
// Битый ключ возвращает false, а не ошибку.
func (id LocationID) Point() (GeoPoint, bool) {
	parts := strings.Split(string(id), LocationIDSeparator)
	if len(parts) != 2 {
		return GeoPoint{}, false
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return GeoPoint{}, false
	}
	lng, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return GeoPoint{}, false
	}
	p := GeoPoint{Lat: lat, Lng: lng}
	if !p.Valid() {
		return GeoPoint{}, false
	}
	return p, true
}

func (id LocationID) String() string {
	return string(id)
}

func formatCoord(v float64) string {
	r := math.Round(v*1e4) / 1e4
	if r == 0 {
		r = 0 // -0 -> 0
	}
	return strconv.FormatFloat(r, 'f', 4, 64)
}
