package domain

// Stream names (должны совпадать с фронтовым шлюзом карты)
const (
	StreamMapEvents       = "stream:map:events"
	StreamMapInstructions = "stream:map:instructions"
)

// MapEventType - тип входящего события карты
type MapEventType string

const (
	EventClick          MapEventType = "click"
	EventViewport       MapEventType = "viewport"
	EventSavedClick     MapEventType = "saved_click"
	EventSlotSelect     MapEventType = "slot_select"
	EventPickerClose    MapEventType = "picker_close"
	EventDatasetContext MapEventType = "dataset"
	EventSavedSync      MapEventType = "saved_sync"
	EventLevelChange    MapEventType = "level"
	EventFilterChange   MapEventType = "filter"
	EventSessionClose   MapEventType = "session_close"
)

// MapEvent - входящее событие от холста карты одной сессии
type MapEvent struct {
	SessionID  string          `json:"session_id"`
	UserID     string          `json:"user_id,omitempty"`
	Type       MapEventType    `json:"type"`
	Point      *GeoPoint       `json:"point,omitempty"`
	Viewport   *Viewport       `json:"viewport,omitempty"`
	LocationID LocationID      `json:"location_id,omitempty"`
	SlotKey    string          `json:"slot_key,omitempty"`
	Dataset    *DatasetContext `json:"dataset,omitempty"`
	Saved      []SavedEntry    `json:"saved,omitempty"`
	Level      string          `json:"level,omitempty"`
	Filter     string          `json:"filter,omitempty"`
}

// InstructionType - тип исходящей инструкции
type InstructionType string

const (
	InstructionAddMarker      InstructionType = "add_marker"
	InstructionRemoveMarker   InstructionType = "remove_marker"
	InstructionFlyTo          InstructionType = "fly_to"
	InstructionShowDetail     InstructionType = "show_detail"
	InstructionShowNotice     InstructionType = "show_notice"
	InstructionDismissNotice  InstructionType = "dismiss_notice"
	InstructionShowSlotPicker InstructionType = "show_slot_picker"
	InstructionClosePanel     InstructionType = "close_panel"
)

// Instruction - абстрактная команда для слоя отрисовки/уведомлений
type Instruction struct {
	Type     InstructionType `json:"type"`
	Marker   *Marker         `json:"marker,omitempty"`
	Key      MarkerKey       `json:"key,omitempty"`
	Point    *GeoPoint       `json:"point,omitempty"`
	Detail   *Detail         `json:"detail,omitempty"`
	Notice   *Notice         `json:"notice,omitempty"`
	NoticeID string          `json:"notice_id,omitempty"`
	Picker   *SlotPicker     `json:"picker,omitempty"`
}

// InstructionBatch - инструкции, порождённые одним событием
type InstructionBatch struct {
	SessionID    string        `json:"session_id"`
	EventID      string        `json:"event_id,omitempty"`
	Instructions []Instruction `json:"instructions"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
