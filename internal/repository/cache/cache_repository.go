package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spot-resolver/internal/domain"
	"github.com/spot-resolver/internal/domain/repository"
)

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := r.client.Del(ctx, keys...).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.Strings("keys", keys), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.Strings("keys", keys))
	return nil
}

// GetDataset получает снимок датасета из кеша
func (r *cacheRepository) GetDataset(ctx context.Context, dc domain.DatasetContext) ([]domain.SpotRecord, error) {
	data, err := r.Get(ctx, dc.DatasetCacheKey())
	if err != nil || data == nil {
		return nil, err
	}

	var records []domain.SpotRecord
	if err := json.Unmarshal(data, &records); err != nil {
		r.logger.Error("Failed to unmarshal dataset from cache",
			zap.String("dataset", dc.Key()),
			zap.Error(err))
		return nil, fmt.Errorf("unmarshal dataset: %w", err)
	}

	return records, nil
}

// SetDataset сохраняет снимок датасета
func (r *cacheRepository) SetDataset(ctx context.Context, dc domain.DatasetContext, records []domain.SpotRecord, ttl time.Duration) error {
	data, err := json.Marshal(records)
	if err != nil {
		r.logger.Error("Failed to marshal dataset", zap.Error(err))
		return fmt.Errorf("marshal dataset: %w", err)
	}

	return r.Set(ctx, dc.DatasetCacheKey(), data, ttl)
}

// GetForecast получает одну запись из кеша
func (r *cacheRepository) GetForecast(ctx context.Context, dc domain.DatasetContext, id domain.LocationID) (*domain.SpotRecord, error) {
	data, err := r.Get(ctx, dc.ForecastCacheKey(id))
	if err != nil || data == nil {
		return nil, err
	}

	var record domain.SpotRecord
	if err := json.Unmarshal(data, &record); err != nil {
		r.logger.Error("Failed to unmarshal forecast from cache",
			zap.String("location_id", id.String()),
			zap.Error(err))
		return nil, fmt.Errorf("unmarshal forecast: %w", err)
	}

	return &record, nil
}

// SetForecast сохраняет одну запись
func (r *cacheRepository) SetForecast(ctx context.Context, dc domain.DatasetContext, record *domain.SpotRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		r.logger.Error("Failed to marshal forecast", zap.Error(err))
		return fmt.Errorf("marshal forecast: %w", err)
	}

	return r.Set(ctx, dc.ForecastCacheKey(record.LocationID), data, ttl)
}
