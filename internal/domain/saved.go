package domain

import "time"

// SaveKeySeparator отделяет timestamp от LocationID в SaveKey
const SaveKeySeparator = "#"

// SaveKey - составной ключ locationId#surfTimestamp.
// Одна точка может быть сохранена на несколько слотов времени.
type SaveKey string

// NewSaveKey строит SaveKey
func NewSaveKey(id LocationID, surfTimestamp string) SaveKey {
	return SaveKey(string(id) + SaveKeySeparator + surfTimestamp)
}

// Snapshot - условия и метрики на момент сохранения
type Snapshot struct {
	Conditions  Conditions   `json:"conditions" yaml:"conditions"`
	SurferLevel SurferLevel  `json:"surferLevel" yaml:"surferLevel"`
	Metrics     LevelMetrics `json:"metrics" yaml:"metrics"`
}

// SavedEntry - сохранённый пользователем снимок прогноза, неизменяемый
type SavedEntry struct {
	LocationID    LocationID `json:"locationId" yaml:"locationId" db:"location_id"`
	SurfTimestamp string     `json:"surfTimestamp" yaml:"surfTimestamp" db:"surf_timestamp"`
	Snapshot      Snapshot   `json:"snapshot" yaml:"snapshot"`
	SavedAt       time.Time  `json:"savedAt" yaml:"savedAt" db:"saved_at"`
	Address       string     `json:"address,omitempty" yaml:"address" db:"address"`
}

// Key возвращает SaveKey записи
func (e SavedEntry) Key() SaveKey {
	return NewSaveKey(e.LocationID, e.SurfTimestamp)
}
