package domain

import "math"

// GeoPoint - точка в градусах WGS-84
type GeoPoint struct {
	Lat float64 `json:"lat" db:"lat" yaml:"lat"`
	Lng float64 `json:"lng" db:"lng" yaml:"lng"`
}

// Valid проверяет, что координаты конечны и в допустимых диапазонах
func (p GeoPoint) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Bounds - проверка "точка внутри видимой области".
// Реконсилер работает только через этот интерфейс, реализация подменяемая.
type Bounds interface {
	Contains(p GeoPoint) bool
}

// Viewport - видимая область карты (юго-западный и северо-восточный углы).
// Если SouthWest.Lng > NorthEast.Lng, область пересекает антимеридиан.
type Viewport struct {
	SouthWest GeoPoint `json:"sw" yaml:"sw"`
	NorthEast GeoPoint `json:"ne" yaml:"ne"`
}

// Valid проверяет углы области
func (v Viewport) Valid() bool {
	return v.SouthWest.Valid() && v.NorthEast.Valid() && v.SouthWest.Lat <= v.NorthEast.Lat
}

// Contains реализует Bounds
func (v Viewport) Contains(p GeoPoint) bool {
	if !p.Valid() || p.Lat < v.SouthWest.Lat || p.Lat > v.NorthEast.Lat {
		return false
	}
	if v.SouthWest.Lng <= v.NorthEast.Lng {
		return p.Lng >= v.SouthWest.Lng && p.Lng <= v.NorthEast.Lng
	}
	return p.Lng >= v.SouthWest.Lng || p.Lng <= v.NorthEast.Lng
}
