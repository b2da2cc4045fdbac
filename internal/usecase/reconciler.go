package usecase

import (
	"sort"

	"github.com/spot-resolver/internal/domain"
)

// MarkerSet - маркеры, которые сейчас нарисованы на карте
type MarkerSet map[domain.MarkerKey]domain.Marker

// Apply применяет операции к набору
func (s MarkerSet) Apply(ops []domain.MarkerOp) {
	for _, op := range ops {
		switch op.Type {
		case domain.MarkerOpRemove:
			delete(s, op.Key)
		case domain.MarkerOpAdd:
			if op.Marker != nil {
				s[op.Key] = *op.Marker
			}
		}
	}
}

// Keys - отсортированные ключи
func (s MarkerSet) Keys() []domain.MarkerKey {
	keys := make([]domain.MarkerKey, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// HasLocation - есть ли на точке маркер любого типа
func (s MarkerSet) HasLocation(id domain.LocationID) bool {
	if _, ok := s[domain.ForecastMarkerKey(id)]; ok {
		return true
	}
	_, ok := s[domain.SavedMarkerKey(id)]
	return ok
}

// DesiredMarkers - маркеры, которые должны быть на карте для текущей области.
// Сохранённая точка заменяет маркер прогноза на той же точке. Записи и сохранения
// с битыми координатами пропускаются.
func DesiredMarkers(records []domain.SpotRecord, saved []domain.SavedEntry, bounds domain.Bounds) MarkerSet {
	desired := make(MarkerSet)
	if bounds == nil {
		return desired
	}

	counts := CountByLocation(saved)

	for id, count := range counts {
		point, ok := id.Point()
		if !ok || !bounds.Contains(point) {
			continue
		}
		desired[domain.SavedMarkerKey(id)] = savedMarker(id, point, count)
	}

	for i := range records {
		rec := &records[i]
		if _, isSaved := counts[rec.LocationID]; isSaved {
			continue
		}
		if !bounds.Contains(rec.Geo) {
			continue
		}
		desired[domain.ForecastMarkerKey(rec.LocationID)] = forecastMarker(rec)
	}

	return desired
}

// Reconcile считает минимальный набор операций от rendered к desired.
// Маркер сохранённой точки пересоздаётся, если изменился badge. Повторный вызов
// с теми же входными данными после Apply даёт пустой список.
// Порядок: сначала удаления, потом добавления, внутри - по ключу.
func Reconcile(rendered, desired MarkerSet) []domain.MarkerOp {
	var removes, adds []domain.MarkerOp

	for _, key := range rendered.Keys() {
		want, ok := desired[key]
		if !ok || (key.Kind() == domain.MarkerSaved && want.Badge != rendered[key].Badge) {
			removes = append(removes, domain.MarkerOp{Type: domain.MarkerOpRemove, Key: key})
		}
	}

	for _, key := range desired.Keys() {
		have, ok := rendered[key]
		if ok && (key.Kind() != domain.MarkerSaved || have.Badge == desired[key].Badge) {
			continue
		}
		m := desired[key]
		adds = append(adds, domain.MarkerOp{Type: domain.MarkerOpAdd, Key: key, Marker: &m})
	}

	return append(removes, adds...)
}

func forecastMarker(rec *domain.SpotRecord) domain.Marker {
	return domain.Marker{
		Key:        domain.ForecastMarkerKey(rec.LocationID),
		Kind:       domain.MarkerForecast,
		LocationID: rec.LocationID,
		Coord:      rec.Geo,
	}
}

func savedMarker(id domain.LocationID, point domain.GeoPoint, count int) domain.Marker {
	m := domain.Marker{
		Key:        domain.SavedMarkerKey(id),
		Kind:       domain.MarkerSaved,
		LocationID: id,
		Coord:      point,
	}
	if count > 1 {
		m.Badge = count
	}
	return m
}
