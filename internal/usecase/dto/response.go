package dto

import (
	"time"

	"github.com/spot-resolver/internal/domain"
)

// ResolveResponse - результат клика: детали или уведомление
type ResolveResponse struct {
	domain.Resolution
	Dataset string `json:"dataset"`
}

// NearestResponse - найденный спот (Record == nil, если в радиусе пусто)
type NearestResponse struct {
	Record     *domain.SpotRecord  `json:"record,omitempty"`
	DistanceKm float64             `json:"distance_km,omitempty"`
	Metrics    domain.LevelMetrics `json:"metrics"`
	Level      domain.SurferLevel  `json:"level"`
	RadiusKm   float64             `json:"radius_km"`
}

// ReconcileResponse - операции над маркерами и итоговое число маркеров
type ReconcileResponse struct {
	Ops     []domain.MarkerOp `json:"ops"`
	Markers int               `json:"markers"`
	Dataset string            `json:"dataset"`
}

// SavedListResponse - сохранённые записи пользователя, сгруппированные по точке
type SavedListResponse struct {
	Entries []domain.SavedEntry       `json:"entries"`
	Counts  map[domain.LocationID]int `json:"counts"`
}

// HealthResponse - состояние сервиса
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}
