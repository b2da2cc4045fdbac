package repository

import (
	"context"
	"time"

	"github.com/spot-resolver/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значения из кеша
	Delete(ctx context.Context, keys ...string) error

	// GetDataset - снимок датасета, nil если промах
	GetDataset(ctx context.Context, dc domain.DatasetContext) ([]domain.SpotRecord, error)

	// SetDataset сохраняет снимок датасета
	SetDataset(ctx context.Context, dc domain.DatasetContext, records []domain.SpotRecord, ttl time.Duration) error

	// GetForecast - одна запись, nil если промах
	GetForecast(ctx context.Context, dc domain.DatasetContext, id domain.LocationID) (*domain.SpotRecord, error)

	// SetForecast сохраняет одну запись
	SetForecast(ctx context.Context, dc domain.DatasetContext, record *domain.SpotRecord, ttl time.Duration) error
}
