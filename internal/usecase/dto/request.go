package dto

import "github.com/spot-resolver/internal/domain"

// DatasetParams - контекст датасета (дата обязательна, время опционально)
type DatasetParams struct {
	Date string `json:"date" query:"date" validate:"required,surf_date"`
	Time string `json:"time,omitempty" query:"time" validate:"omitempty,surf_time"`
}

// Context - DatasetContext для загрузки
func (p DatasetParams) Context() domain.DatasetContext {
	return domain.DatasetContext{Date: p.Date, Time: p.Time}
}

// ResolveRequest - клик по карте
type ResolveRequest struct {
	DatasetParams
	Lat      float64 `json:"lat" validate:"min=-90,max=90"`
	Lng      float64 `json:"lng" validate:"min=-180,max=180"`
	Level    string  `json:"level,omitempty" validate:"omitempty,surfer_level"`
	RadiusKm float64 `json:"radius_km,omitempty" validate:"omitempty,gt=0,lte=500"`
}

// NearestRequest - поиск лучшего спота в радиусе (query-параметры)
type NearestRequest struct {
	DatasetParams
	Lat      float64 `query:"lat" validate:"min=-90,max=90"`
	Lng      float64 `query:"lng" validate:"min=-180,max=180"`
	Level    string  `query:"level" validate:"omitempty,surfer_level"`
	RadiusKm float64 `query:"radius_km" validate:"omitempty,gt=0,lte=500"`
}

// RenderedMarker - маркер, который уже нарисован на клиенте
type RenderedMarker struct {
	Key   domain.MarkerKey `json:"key" validate:"required"`
	Badge int              `json:"badge,omitempty" validate:"min=0"`
}

// ReconcileRequest - сверка маркеров для видимой области
type ReconcileRequest struct {
	DatasetParams
	Filter   string              `json:"filter,omitempty" validate:"omitempty,max=100"`
	Viewport domain.Viewport     `json:"viewport"`
	Rendered []RenderedMarker    `json:"rendered" validate:"omitempty,max=5000,dive"`
	Saved    []domain.SavedEntry `json:"saved,omitempty" validate:"omitempty,max=1000"`
}

// SavedClickRequest - клик по маркеру сохранённой точки
type SavedClickRequest struct {
	DatasetParams
	LocationID domain.LocationID   `json:"location_id" validate:"required"`
	Level      string              `json:"level,omitempty" validate:"omitempty,surfer_level"`
	Entries    []domain.SavedEntry `json:"entries" validate:"omitempty,max=1000"`
}

// SaveEntryRequest - сохранение снимка прогноза пользователем.
// Время слота берётся из найденной записи датасета.
type SaveEntryRequest struct {
	DatasetParams
	LocationID domain.LocationID `json:"location_id" validate:"required"`
	Level      string            `json:"level,omitempty" validate:"omitempty,surfer_level"`
	Address    string            `json:"address,omitempty" validate:"omitempty,max=255"`
}
