package usecase

import (
	"math"

	"github.com/spot-resolver/internal/domain"
)

const baseScore = 50.0

// Score - детерминированная аддитивная оценка условий, результат в [0,100]
func Score(waveHeight, wavePeriod, windSpeed float64) float64 {
	score := baseScore

	switch {
	case waveHeight >= 1.0 && waveHeight <= 2.5:
		score += 25
	case waveHeight >= 0.5 && waveHeight < 1.0:
		score += 10
	case waveHeight > 2.5 && waveHeight <= 4.0:
		score += 15
	default:
		score -= 10
	}

	switch {
	case wavePeriod >= 10:
		score += 15
	case wavePeriod >= 7:
		score += 8
	default:
		score -= 5
	}

	switch {
	case windSpeed < 10:
		score += 10
	case windSpeed < 20:
		// +0
	case windSpeed < 30:
		score -= 10
	default:
		score -= 20
	}

	return clampScore(score)
}

// ScoreConditions - Score для domain.Conditions
func ScoreConditions(c domain.Conditions) float64 {
	return Score(c.WaveHeight, c.WavePeriod, c.WindSpeed)
}

// GradeFor - буква по score, нижняя граница каждой полосы включительно
func GradeFor(score float64) domain.Grade {
	switch {
	case score >= 80:
		return domain.GradeA
	case score >= 60:
		return domain.GradeB
	case score >= 40:
		return domain.GradeC
	default:
		return domain.GradeD
	}
}

// SafetyGradeFor - оценка безопасности по ветру и волне
func SafetyGradeFor(windSpeed, waveHeight float64) domain.SafetyGrade {
	switch {
	case windSpeed > 20 || waveHeight > 3.0:
		return domain.SafetyDanger
	case windSpeed > 15 || waveHeight > 2.5:
		return domain.SafetyCaution
	default:
		return domain.SafetySafe
	}
}

// MetricsForLevel возвращает bucket метрик для уровня.
// Пустой уровень читается как INTERMEDIATE, отсутствующий bucket даёт 0/D.
func MetricsForLevel(record *domain.SpotRecord, level domain.SurferLevel) domain.LevelMetrics {
	if level == "" {
		level = domain.LevelIntermediate
	}
	if record == nil || record.DerivedMetrics == nil {
		return fallbackMetrics()
	}
	m, ok := record.DerivedMetrics[level]
	if !ok {
		return fallbackMetrics()
	}
	m.SurfScore = clampScore(m.SurfScore)
	return m
}

// NormalizeRecord заполняет недостающие уровни из условий и зажимает score.
// Возвращает копию, исходная запись не меняется.
func NormalizeRecord(record domain.SpotRecord) domain.SpotRecord {
	if record.LocationID == "" {
		record.LocationID = domain.NewLocationID(record.Geo)
	}

	metrics := make(domain.DerivedMetrics, len(domain.SurferLevels))
	computed := ScoreConditions(record.Conditions)
	safety := SafetyGradeFor(record.Conditions.WindSpeed, record.Conditions.WaveHeight)

	for _, level := range domain.SurferLevels {
		m, ok := record.DerivedMetrics[level]
		if !ok {
			m = domain.LevelMetrics{SurfScore: computed}
		}
		m.SurfScore = clampScore(m.SurfScore)
		if m.SurfGrade == "" {
			m.SurfGrade = GradeFor(m.SurfScore)
		}
		if m.SafetyGrade == "" {
			m.SafetyGrade = safety
		}
		metrics[level] = m
	}
	record.DerivedMetrics = metrics

	return record
}

func fallbackMetrics() domain.LevelMetrics {
	return domain.LevelMetrics{SurfScore: 0, SurfGrade: domain.GradeD}
}

func clampScore(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(0, math.Min(100, score))
}
