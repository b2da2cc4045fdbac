package repository

import (
	"context"

	"github.com/spot-resolver/internal/domain"
)

// SpotRepository - источник прогнозов по точкам
type SpotRepository interface {
	// GetDataset возвращает все записи для даты/времени
	GetDataset(ctx context.Context, dc domain.DatasetContext) ([]domain.SpotRecord, error)

	// GetByLocationIDs возвращает записи по списку точек
	GetByLocationIDs(ctx context.Context, dc domain.DatasetContext, ids []domain.LocationID) ([]domain.SpotRecord, error)
}

// SavedRepository - сохранённые пользователем снимки
type SavedRepository interface {
	// ListSaved возвращает все записи пользователя
	ListSaved(ctx context.Context, userID string) ([]domain.SavedEntry, error)

	// UpsertSaved вставляет или обновляет запись по SaveKey
	UpsertSaved(ctx context.Context, userID string, entry domain.SavedEntry) error

	// DeleteSaved удаляет запись
	DeleteSaved(ctx context.Context, userID string, key domain.SaveKey) error
}
