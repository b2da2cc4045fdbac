package domain

import "strings"

// SavedMarkerPrefix - префикс ключа маркера сохранённой точки
const SavedMarkerPrefix = "saved:"

// MarkerKey - ключ визуального маркера
type MarkerKey string

// MarkerKind - тип маркера
type MarkerKind string

const (
	MarkerForecast MarkerKind = "forecast"
	MarkerSaved    MarkerKind = "saved"
)

// ForecastMarkerKey - ключ маркера прогноза
func ForecastMarkerKey(id LocationID) MarkerKey {
	return MarkerKey(id)
}

// SavedMarkerKey - ключ маркера сохранённой точки
func SavedMarkerKey(id LocationID) MarkerKey {
	return MarkerKey(SavedMarkerPrefix + string(id))
}

// Kind определяет тип маркера по префиксу
func (k MarkerKey) Kind() MarkerKind {
	if strings.HasPrefix(string(k), SavedMarkerPrefix) {
		return MarkerSaved
	}
	return MarkerForecast
}

// LocationID возвращает LocationID без префикса
func (k MarkerKey) LocationID() LocationID {
	return LocationID(strings.TrimPrefix(string(k), SavedMarkerPrefix))
}

// Marker - маркер, который должен быть на карте.
// Badge > 0 только если на точке больше одной сохранённой записи.
type Marker struct {
	Key        MarkerKey  `json:"key"`
	Kind       MarkerKind `json:"kind"`
	LocationID LocationID `json:"locationId"`
	Coord      GeoPoint   `json:"coord"`
	Badge      int        `json:"badge,omitempty"`
}

// MarkerOpType - тип операции над маркером
type MarkerOpType string

const (
	MarkerOpAdd    MarkerOpType = "add"
	MarkerOpRemove MarkerOpType = "remove"
)

// MarkerOp - одна операция над маркерами для слоя отрисовки
type MarkerOp struct {
	Type   MarkerOpType `json:"type"`
	Key    MarkerKey    `json:"key"`
	Marker *Marker      `json:"marker,omitempty"`
}
