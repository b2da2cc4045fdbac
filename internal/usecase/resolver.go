package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/spot-resolver/internal/domain"
)

const (
	// DefaultNearestRadiusKm - радиус поиска ближайшего спота.
	// В разных ревизиях встречались 100 и 200 км, зафиксировано 100.
	DefaultNearestRadiusKm = 100.0

	// DefaultNoticeTimeout - время жизни уведомления "нет данных"
	DefaultNoticeTimeout = 4 * time.Second
)

// SelectionResolver решает, какую запись показать по клику. Состояния не хранит.
type SelectionResolver struct {
	radiusKm      float64
	noticeTimeout time.Duration
	newID         func() string
}

// NewSelectionResolver - создание резолвера; нулевые значения заменяются дефолтами
func NewSelectionResolver(radiusKm float64, noticeTimeout time.Duration) *SelectionResolver {
	if radiusKm <= 0 {
		radiusKm = DefaultNearestRadiusKm
	}
	if noticeTimeout <= 0 {
		noticeTimeout = DefaultNoticeTimeout
	}
	return &SelectionResolver{
		radiusKm:      radiusKm,
		noticeTimeout: noticeTimeout,
		newID:         uuid.NewString,
	}
}

// RadiusKm - радиус поиска ближайшего спота
func (r *SelectionResolver) RadiusKm() float64 {
	return r.radiusKm
}

// NoticeTimeout - время жизни уведомления
func (r *SelectionResolver) NoticeTimeout() time.Duration {
	return r.noticeTimeout
}

// WithRadius возвращает копию резолвера с другим радиусом
func (r *SelectionResolver) WithRadius(radiusKm float64) *SelectionResolver {
	cp := *r
	if radiusKm > 0 {
		cp.radiusKm = radiusKm
	}
	return &cp
}

// Resolve по клику в point:
//  1. точное совпадение LocationID;
//  2. лучший по score спот в радиусе;
//  3. иначе уведомление "нет данных в радиусе".
//
// Координаты в Detail - всегда точка клика. Никогда не паникует, пустой индекс даёт NoMatchNotice.
func (r *SelectionResolver) Resolve(idx *SpotIndex, point domain.GeoPoint, level domain.SurferLevel) domain.Resolution {
	if level == "" {
		level = domain.LevelIntermediate
	}

	if rec := idx.ExactMatch(point); rec != nil {
		return domain.Resolution{
			State: domain.StateDetailShown,
			Detail: &domain.Detail{
				Source:  domain.SourceLive,
				Match:   domain.MatchExact,
				Record:  rec,
				Coord:   point,
				Level:   level,
				Metrics: MetricsForLevel(rec, level),
			},
		}
	}

	if rec, dist := idx.NearestWithinRadius(point, r.radiusKm, level); rec != nil {
		return domain.Resolution{
			State: domain.StateDetailShown,
			Detail: &domain.Detail{
				Source:     domain.SourceLive,
				Match:      domain.MatchNearest,
				Record:     rec,
				Coord:      point,
				Level:      level,
				Metrics:    MetricsForLevel(rec, level),
				DistanceKm: dist,
			},
		}
	}

	return domain.Resolution{
		State: domain.StateNoMatchNotice,
		Notice: &domain.Notice{
			ID:         r.newID(),
			MessageKey: domain.NoticeNoSurfData,
			RadiusKm:   r.radiusKm,
			Point:      point,
			Timeout:    r.noticeTimeout,
		},
	}
}
