package usecase

import (
	"time"

	"github.com/spot-resolver/internal/domain"
)

func spot(name string, lat, lng, score float64) domain.SpotRecord {
	geo := domain.GeoPoint{Lat: lat, Lng: lng}
	metrics := make(domain.DerivedMetrics, len(domain.SurferLevels))
	for _, level := range domain.SurferLevels {
		metrics[level] = domain.LevelMetrics{SurfScore: score, SurfGrade: GradeFor(score)}
	}
	return domain.SpotRecord{
		LocationID:     domain.NewLocationID(geo),
		Geo:            geo,
		Timestamp:      "2026-10-14T06:00:00Z",
		Name:           name,
		Region:         "Gangwon",
		Country:        "KR",
		DerivedMetrics: metrics,
	}
}

func savedAt(id domain.LocationID, ts string, at time.Time) domain.SavedEntry {
	return domain.SavedEntry{
		LocationID:    id,
		SurfTimestamp: ts,
		SavedAt:       at,
		Snapshot: domain.Snapshot{
			SurferLevel: domain.LevelBeginner,
			Metrics:     domain.LevelMetrics{SurfScore: 70, SurfGrade: domain.GradeB},
		},
	}
}

var koreaViewport = domain.Viewport{
	SouthWest: domain.GeoPoint{Lat: 33, Lng: 124},
	NorthEast: domain.GeoPoint{Lat: 39, Lng: 131},
}

type fakeTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fakeClock - ручное управление временем для проверки таймаутов
type fakeClock struct {
	now    time.Duration
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now += d
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			t.f()
		}
	}
}

func (c *fakeClock) active() int {
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
