package domain

import "time"

// ResolutionState - состояние машины выбора спота
type ResolutionState string

const (
	StateIdle          ResolutionState = "idle"
	StateResolving     ResolutionState = "resolving"
	StateDetailShown   ResolutionState = "detail_shown"
	StateNoMatchNotice ResolutionState = "no_match_notice"
	StateSlotPicker    ResolutionState = "slot_picker"
)

// MatchKind - каким путём найдена запись
type MatchKind string

const (
	MatchExact   MatchKind = "exact"
	MatchNearest MatchKind = "nearest"
	MatchSaved   MatchKind = "saved"
	MatchSlot    MatchKind = "slot"
)

// DetailSource - живой прогноз или сохранённый снимок
type DetailSource string

const (
	SourceLive     DetailSource = "live"
	SourceSnapshot DetailSource = "snapshot"
)

// NoticeNoSurfData - ключ локализации для "нет данных в радиусе"
const NoticeNoSurfData = "map.notice.noSurfDataWithinRadius"

// CurrentSlotKey - ключ синтетического слота "текущие условия"
const CurrentSlotKey = "current"

// Detail - что показать в панели деталей
type Detail struct {
	Source     DetailSource `json:"source"`
	Match      MatchKind    `json:"match"`
	Record     *SpotRecord  `json:"record,omitempty"`
	Entry      *SavedEntry  `json:"entry,omitempty"`
	Coord      GeoPoint     `json:"coord"`
	Level      SurferLevel  `json:"level"`
	Metrics    LevelMetrics `json:"metrics"`
	DistanceKm float64      `json:"distanceKm,omitempty"`
}

// Notice - временное уведомление, текст формирует слой локализации
type Notice struct {
	ID         string        `json:"id"`
	MessageKey string        `json:"messageKey"`
	RadiusKm   float64       `json:"radiusKm"`
	Point      GeoPoint      `json:"point"`
	Timeout    time.Duration `json:"timeout"`
}

// SlotOption - одна строка в списке слотов
type SlotOption struct {
	Key           string      `json:"key"`
	Current       bool        `json:"current,omitempty"`
	SurfTimestamp string      `json:"surfTimestamp"`
	Entry         *SavedEntry `json:"entry,omitempty"`
	Record        *SpotRecord `json:"record,omitempty"`
}

// SlotPicker - выбор одного из сохранённых слотов точки
type SlotPicker struct {
	LocationID LocationID   `json:"locationId"`
	Coord      GeoPoint     `json:"coord"`
	Options    []SlotOption `json:"options"`
}

// Resolution - результат обработки клика
type Resolution struct {
	State  ResolutionState `json:"state"`
	Detail *Detail         `json:"detail,omitempty"`
	Notice *Notice         `json:"notice,omitempty"`
	Picker *SlotPicker     `json:"picker,omitempty"`
}
