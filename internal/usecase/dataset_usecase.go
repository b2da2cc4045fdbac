package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spot-resolver/internal/domain"
	"github.com/spot-resolver/internal/domain/repository"
	"github.com/spot-resolver/internal/pkg/errors"
)

// datasetLoadTimeout ограничивает общую загрузку, которая не привязана к контексту вызывающего
const datasetLoadTimeout = 30 * time.Second

// DatasetSnapshot - загруженный датасет с готовым индексом. Не меняется после создания.
type DatasetSnapshot struct {
	Context  domain.DatasetContext
	Index    *SpotIndex
	LoadedAt time.Time
}

// DatasetLoader - источник снимков датасета для обработчиков и воркера
type DatasetLoader interface {
	Load(ctx context.Context, dc domain.DatasetContext) (*DatasetSnapshot, error)
}

// DatasetUseCase загружает датасеты: память -> Redis -> БД (через breaker).
// Записи нормализуются до построения индекса.
type DatasetUseCase struct {
	spotRepo    repository.SpotRepository
	cacheRepo   repository.CacheRepository
	logger      *zap.Logger
	datasetTTL  time.Duration
	forecastTTL time.Duration

	group     singleflight.Group
	mu        sync.RWMutex
	snapshots map[string]*DatasetSnapshot
	now       func() time.Time
}

func NewDatasetUseCase(
	spotRepo repository.SpotRepository,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	datasetTTL time.Duration,
	forecastTTL time.Duration,
) *DatasetUseCase {
	if datasetTTL <= 0 {
		datasetTTL = 3 * time.Hour
	}
	if forecastTTL <= 0 {
		forecastTTL = 3 * time.Hour
	}
	return &DatasetUseCase{
		spotRepo:    spotRepo,
		cacheRepo:   cacheRepo,
		logger:      logger,
		datasetTTL:  datasetTTL,
		forecastTTL: forecastTTL,
		snapshots:   make(map[string]*DatasetSnapshot),
		now:         time.Now,
	}
}

// Load возвращает снимок датасета. Параллельные загрузки одного контекста склеиваются.
// Общая загрузка идёт на контексте без отмены: ушедший клиент не роняет остальных,
// а сам получает ошибку своего ctx.
func (uc *DatasetUseCase) Load(ctx context.Context, dc domain.DatasetContext) (*DatasetSnapshot, error) {
	if snap := uc.cached(dc); snap != nil {
		return snap, nil
	}

	ch := uc.group.DoChan(dc.Key(), func() (interface{}, error) {
		if snap := uc.cached(dc); snap != nil {
			return snap, nil
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), datasetLoadTimeout)
		defer cancel()
		return uc.load(loadCtx, dc)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*DatasetSnapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (uc *DatasetUseCase) cached(dc domain.DatasetContext) *DatasetSnapshot {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	snap, ok := uc.snapshots[dc.Key()]
	if !ok || uc.now().Sub(snap.LoadedAt) >= uc.datasetTTL {
		return nil
	}
	return snap
}

func (uc *DatasetUseCase) load(ctx context.Context, dc domain.DatasetContext) (*DatasetSnapshot, error) {
	start := uc.now()

	records, err := uc.cacheRepo.GetDataset(ctx, dc)
	if err != nil {
		// кеш недоступен - идём в БД
		uc.logger.Warn("Dataset cache read failed",
			zap.String("dataset", dc.Key()),
			zap.Error(err))
		records = nil
	}

	fromCache := records != nil
	if !fromCache {
		records, err = uc.spotRepo.GetDataset(ctx, dc)
		if err != nil {
			uc.logger.Error("Failed to load dataset",
				zap.String("dataset", dc.Key()),
				zap.Error(err))
			return nil, errors.ErrDatasetUnavailable.WithDetails(map[string]interface{}{
				"dataset": dc.Key(),
			})
		}
	}

	if records == nil {
		// пустой день кешируется как [], а не null, иначе каждый запрос уходит в БД
		records = []domain.SpotRecord{}
	}
	for i := range records {
		records[i] = NormalizeRecord(records[i])
	}

	if !fromCache {
		if err := uc.cacheRepo.SetDataset(ctx, dc, records, uc.datasetTTL); err != nil {
			uc.logger.Warn("Failed to cache dataset",
				zap.String("dataset", dc.Key()),
				zap.Error(err))
		}
	}

	snap := &DatasetSnapshot{
		Context:  dc,
		Index:    NewSpotIndex(records),
		LoadedAt: uc.now(),
	}

	uc.mu.Lock()
	uc.snapshots[dc.Key()] = snap
	uc.mu.Unlock()

	uc.logger.Info("Dataset loaded",
		zap.String("dataset", dc.Key()),
		zap.Int("records", snap.Index.Len()),
		zap.Bool("from_cache", fromCache),
		zap.Duration("took", uc.now().Sub(start)))

	return snap, nil
}

// Forecast - одна запись точки: снимок в памяти, кеш записи, затем БД
func (uc *DatasetUseCase) Forecast(ctx context.Context, dc domain.DatasetContext, id domain.LocationID) (*domain.SpotRecord, error) {
	uc.mu.RLock()
	snap, ok := uc.snapshots[dc.Key()]
	uc.mu.RUnlock()
	if ok {
		if rec := snap.Index.ByLocationID(id); rec != nil {
			return rec, nil
		}
	}

	if rec, err := uc.cacheRepo.GetForecast(ctx, dc, id); err == nil && rec != nil {
		normalized := NormalizeRecord(*rec)
		return &normalized, nil
	}

	records, err := uc.spotRepo.GetByLocationIDs(ctx, dc, []domain.LocationID{id})
	if err != nil {
		uc.logger.Error("Failed to load forecast",
			zap.String("dataset", dc.Key()),
			zap.String("location_id", id.String()),
			zap.Error(err))
		return nil, errors.ErrDatasetUnavailable
	}
	if len(records) == 0 {
		return nil, nil
	}

	rec := NormalizeRecord(records[0])
	if err := uc.cacheRepo.SetForecast(ctx, dc, &rec, uc.forecastTTL); err != nil {
		uc.logger.Warn("Failed to cache forecast",
			zap.String("location_id", id.String()),
			zap.Error(err))
	}
	return &rec, nil
}

// Warm загружает несколько контекстов заранее; ошибки по отдельным контекстам не прерывают прогрев
func (uc *DatasetUseCase) Warm(ctx context.Context, contexts []domain.DatasetContext) error {
	var failed int
	for _, dc := range contexts {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := uc.Invalidate(ctx, dc); err != nil {
			uc.logger.Warn("Failed to invalidate before warm", zap.String("dataset", dc.Key()), zap.Error(err))
		}
		if _, err := uc.Load(ctx, dc); err != nil {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("warm datasets: %d of %d failed", failed, len(contexts))
	}
	return nil
}

// Invalidate сбрасывает снимок контекста, без ids - весь датасет, с ids - только записи точек
func (uc *DatasetUseCase) Invalidate(ctx context.Context, dc domain.DatasetContext, ids ...domain.LocationID) error {
	keys := make([]string, 0, len(ids)+1)
	if len(ids) == 0 {
		keys = append(keys, dc.DatasetCacheKey())
	}
	for _, id := range ids {
		keys = append(keys, dc.ForecastCacheKey(id))
	}

	uc.mu.Lock()
	delete(uc.snapshots, dc.Key())
	uc.mu.Unlock()

	if err := uc.cacheRepo.Delete(ctx, keys...); err != nil {
		return errors.ErrCacheError.WithDetails(map[string]interface{}{
			"dataset": dc.Key(),
		})
	}
	return nil
}
