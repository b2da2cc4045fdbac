package usecase

import (
	"github.com/spot-resolver/internal/domain"
	"github.com/spot-resolver/internal/pkg/utils"
)

// SpotIndex - неизменяемый индекс загруженного датасета.
// При смене датасета строится новый индекс, поэтому его можно читать из нескольких горутин.
//
// NearestWithinRadius - линейный проход по всем записям. Рассчитан на сотни записей;
// при росте до тысяч нужен grid-bucket или k-d tree индекс.
type SpotIndex struct {
	records []domain.SpotRecord
	byID    map[domain.LocationID]int
}

// NewSpotIndex строит индекс. Записи с одинаковым LocationID: побеждает последняя.
func NewSpotIndex(records []domain.SpotRecord) *SpotIndex {
	idx := &SpotIndex{
		records: make([]domain.SpotRecord, len(records)),
		byID:    make(map[domain.LocationID]int, len(records)),
	}
	copy(idx.records, records)
	for i := range idx.records {
		idx.byID[idx.records[i].LocationID] = i
	}
	return idx
}

// Len - количество записей
func (idx *SpotIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.records)
}

// Records возвращает записи индекса (не изменять)
func (idx *SpotIndex) Records() []domain.SpotRecord {
	if idx == nil {
		return nil
	}
	return idx.records
}

// ByLocationID - поиск по готовому ключу
func (idx *SpotIndex) ByLocationID(id domain.LocationID) *domain.SpotRecord {
	if idx == nil {
		return nil
	}
	i, ok := idx.byID[id]
	if !ok {
		return nil
	}
	return &idx.records[i]
}

// ExactMatch - запись с LocationID(point), O(1)
func (idx *SpotIndex) ExactMatch(point domain.GeoPoint) *domain.SpotRecord {
	if !point.Valid() {
		return nil
	}
	return idx.ByLocationID(domain.NewLocationID(point))
}

// NearestWithinRadius среди записей в радиусе выбирает запись с максимальным score для уровня.
// При равном score побеждает меньшее имя. Возвращает запись и расстояние до неё.
func (idx *SpotIndex) NearestWithinRadius(point domain.GeoPoint, radiusKm float64, level domain.SurferLevel) (*domain.SpotRecord, float64) {
	if idx == nil || !point.Valid() || radiusKm <= 0 {
		return nil, 0
	}

	var (
		best      *domain.SpotRecord
		bestScore float64
		bestDist  float64
	)

	for i := range idx.records {
		rec := &idx.records[i]
		if !rec.Geo.Valid() {
			continue
		}
		dist := utils.DistanceKm(point, rec.Geo)
		if dist > radiusKm {
			continue
		}
		score := MetricsForLevel(rec, level).SurfScore
		if best == nil || score > bestScore || (score == bestScore && rec.Name < best.Name) {
			best = rec
			bestScore = score
			bestDist = dist
		}
	}

	return best, bestDist
}
