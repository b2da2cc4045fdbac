package domain

import "strings"

// SurferLevel - уровень сёрфера, определяет какой bucket метрик читать
type SurferLevel string

const (
	LevelBeginner     SurferLevel = "BEGINNER"
	LevelIntermediate SurferLevel = "INTERMEDIATE"
	LevelAdvanced     SurferLevel = "ADVANCED"
)

// SurferLevels - все уровни в стабильном порядке
var SurferLevels = []SurferLevel{LevelBeginner, LevelIntermediate, LevelAdvanced}

// ParseSurferLevel нормализует уровень без учёта регистра.
// Пустое значение и "any" дают INTERMEDIATE; неизвестное тоже, но с ok=false.
func ParseSurferLevel(s string) (SurferLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ANY":
		return LevelIntermediate, true
	case string(LevelBeginner):
		return LevelBeginner, true
	case string(LevelIntermediate):
		return LevelIntermediate, true
	case string(LevelAdvanced):
		return LevelAdvanced, true
	}
	return LevelIntermediate, false
}

// Grade - буквенная оценка
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// SafetyGrade - оценка безопасности по ветру и высоте волны
type SafetyGrade string

const (
	SafetySafe    SafetyGrade = "SAFE"
	SafetyCaution SafetyGrade = "CAUTION"
	SafetyDanger  SafetyGrade = "DANGER"
)

// Conditions - сырые условия прогноза
type Conditions struct {
	WaveHeight       float64 `json:"waveHeight" yaml:"waveHeight"`
	WavePeriod       float64 `json:"wavePeriod" yaml:"wavePeriod"`
	WindSpeed        float64 `json:"windSpeed" yaml:"windSpeed"`
	WaterTemperature float64 `json:"waterTemperature" yaml:"waterTemperature"`
}

// LevelMetrics - score/grade для одного уровня
type LevelMetrics struct {
	SurfScore   float64     `json:"surfScore" yaml:"surfScore"`
	SurfGrade   Grade       `json:"surfGrade" yaml:"surfGrade"`
	SafetyGrade SafetyGrade `json:"surfSafetyGrade,omitempty" yaml:"surfSafetyGrade,omitempty"`
}

// DerivedMetrics - метрики по уровням
type DerivedMetrics map[SurferLevel]LevelMetrics

// SpotRecord - один снимок прогноза в точке на момент времени.
// После загрузки не меняется, датасет заменяется целиком.
type SpotRecord struct {
	LocationID     LocationID     `json:"locationId" yaml:"locationId"`
	Geo            GeoPoint       `json:"geo" yaml:"geo"`
	Timestamp      string         `json:"surfTimestamp" yaml:"surfTimestamp"`
	Conditions     Conditions     `json:"conditions" yaml:"conditions"`
	DerivedMetrics DerivedMetrics `json:"derivedMetrics" yaml:"derivedMetrics"`
	Name           string         `json:"name" yaml:"name"`
	Region         string         `json:"region" yaml:"region"`
	Country        string         `json:"country" yaml:"country"`
}

// DatasetContext - дата/время, для которых загружен датасет
type DatasetContext struct {
	Date string `json:"date" yaml:"date"`           // yyyy-MM-dd
	Time string `json:"time,omitempty" yaml:"time"` // HH:mm, опционально
}

// Key - ключ контекста для кеша и логов
func (c DatasetContext) Key() string {
	t := c.Time
	if t == "" {
		t = "any"
	}
	return c.Date + ":" + t
}

// DatasetCacheKey - ключ снимка датасета в кеше
func (c DatasetContext) DatasetCacheKey() string {
	return "surf:dataset:" + c.Key()
}

// ForecastCacheKey - ключ одной записи в кеше
func (c DatasetContext) ForecastCacheKey(id LocationID) string {
	return "surf:forecast:" + c.Key() + ":" + string(id)
}
