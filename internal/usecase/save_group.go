package usecase

import (
	"sort"

	"github.com/spot-resolver/internal/domain"
)

// SavedSet - сохранённые записи с уникальным SaveKey.
// Повторное сохранение того же locationId+timestamp - обновление, а не вставка.
type SavedSet struct {
	entries map[domain.SaveKey]domain.SavedEntry
}

// NewSavedSet - создание набора
func NewSavedSet(entries ...domain.SavedEntry) *SavedSet {
	s := &SavedSet{entries: make(map[domain.SaveKey]domain.SavedEntry, len(entries))}
	for _, e := range entries {
		s.Upsert(e)
	}
	return s
}

// Upsert вставляет или заменяет запись; true если это была вставка
func (s *SavedSet) Upsert(e domain.SavedEntry) bool {
	key := e.Key()
	_, exists := s.entries[key]
	s.entries[key] = e
	return !exists
}

// Remove удаляет запись по ключу
func (s *SavedSet) Remove(key domain.SaveKey) bool {
	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	return true
}

// Replace заменяет содержимое целиком
func (s *SavedSet) Replace(entries []domain.SavedEntry) {
	s.entries = make(map[domain.SaveKey]domain.SavedEntry, len(entries))
	for _, e := range entries {
		s.Upsert(e)
	}
}

// Get - запись по ключу
func (s *SavedSet) Get(key domain.SaveKey) (domain.SavedEntry, bool) {
	e, ok := s.entries[key]
	return e, ok
}

// Len - количество записей
func (s *SavedSet) Len() int {
	return len(s.entries)
}

// Entries - все записи, упорядоченные по SaveKey
func (s *SavedSet) Entries() []domain.SavedEntry {
	out := make([]domain.SavedEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// GroupByLocation группирует записи по точке. Дубликаты SaveKey схлопываются (последняя побеждает),
// внутри группы - по возрастанию SurfTimestamp.
func GroupByLocation(entries []domain.SavedEntry) map[domain.LocationID][]domain.SavedEntry {
	unique := NewSavedSet(entries...)

	groups := make(map[domain.LocationID][]domain.SavedEntry)
	for _, e := range unique.entries {
		groups[e.LocationID] = append(groups[e.LocationID], e)
	}
	for id := range groups {
		sortByTimestamp(groups[id])
	}
	return groups
}

// CountByLocation - количество уникальных записей на точке, для badge маркеров
func CountByLocation(entries []domain.SavedEntry) map[domain.LocationID]int {
	seen := make(map[domain.SaveKey]struct{}, len(entries))
	counts := make(map[domain.LocationID]int)
	for _, e := range entries {
		key := e.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		counts[e.LocationID]++
	}
	return counts
}

// BuildSlotPicker - список слотов точки: сохранённые по возрастанию времени
// и синтетический "current", если есть живая запись.
func BuildSlotPicker(id domain.LocationID, entries []domain.SavedEntry, live *domain.SpotRecord) domain.SlotPicker {
	sorted := make([]domain.SavedEntry, len(entries))
	copy(sorted, entries)
	sortByTimestamp(sorted)

	picker := domain.SlotPicker{
		LocationID: id,
		Options:    make([]domain.SlotOption, 0, len(sorted)+1),
	}
	if point, ok := id.Point(); ok {
		picker.Coord = point
	} else if live != nil {
		picker.Coord = live.Geo
	}

	for i := range sorted {
		e := sorted[i]
		picker.Options = append(picker.Options, domain.SlotOption{
			Key:           string(e.Key()),
			SurfTimestamp: e.SurfTimestamp,
			Entry:         &e,
		})
	}
	if live != nil {
		picker.Options = append(picker.Options, domain.SlotOption{
			Key:           domain.CurrentSlotKey,
			Current:       true,
			SurfTimestamp: live.Timestamp,
			Record:        live,
		})
	}

	return picker
}

// ResolveSavedClick - клик по маркеру сохранённой точки.
// Одна запись сразу даёт детали (живые, если запись есть в датасете), несколько - список слотов.
func ResolveSavedClick(id domain.LocationID, entries []domain.SavedEntry, live *domain.SpotRecord, level domain.SurferLevel) domain.Resolution {
	switch len(entries) {
	case 0:
		return domain.Resolution{State: domain.StateIdle}
	case 1:
		entry := entries[0]
		d := SavedDetail(domain.MatchSaved, &entry, live, markerCoord(id, live), level)
		return domain.Resolution{State: domain.StateDetailShown, Detail: &d}
	}
	picker := BuildSlotPicker(id, entries, live)
	return domain.Resolution{State: domain.StateSlotPicker, Picker: &picker}
}

// SavedDetail - детали сохранённой записи. Живая запись важнее снимка;
// для снимка берётся уровень, с которым его сохранили.
func SavedDetail(match domain.MatchKind, entry *domain.SavedEntry, live *domain.SpotRecord, coord domain.GeoPoint, level domain.SurferLevel) domain.Detail {
	if live != nil {
		return domain.Detail{
			Source:  domain.SourceLive,
			Match:   match,
			Record:  live,
			Entry:   entry,
			Coord:   coord,
			Level:   level,
			Metrics: MetricsForLevel(live, level),
		}
	}

	if entry.Snapshot.SurferLevel != "" {
		level = entry.Snapshot.SurferLevel
	}
	return domain.Detail{
		Source:  domain.SourceSnapshot,
		Match:   match,
		Entry:   entry,
		Coord:   coord,
		Level:   level,
		Metrics: entry.Snapshot.Metrics,
	}
}

func markerCoord(id domain.LocationID, live *domain.SpotRecord) domain.GeoPoint {
	if p, ok := id.Point(); ok {
		return p
	}
	if live != nil {
		return live.Geo
	}
	return domain.GeoPoint{}
}

func sortByTimestamp(entries []domain.SavedEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].SurfTimestamp != entries[j].SurfTimestamp {
			return entries[i].SurfTimestamp < entries[j].SurfTimestamp
		}
		return entries[i].SavedAt.Before(entries[j].SavedAt)
	})
}
