package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spot-resolver/internal/domain"
	"github.com/spot-resolver/internal/domain/repository"
	"github.com/spot-resolver/internal/pkg/errors"
)

// SavedUseCase - сохранённые пользователем снимки прогноза
type SavedUseCase struct {
	savedRepo repository.SavedRepository
	datasets  DatasetLoader
	logger    *zap.Logger
	now       func() time.Time
}

func NewSavedUseCase(savedRepo repository.SavedRepository, datasets DatasetLoader, logger *zap.Logger) *SavedUseCase {
	return &SavedUseCase{
		savedRepo: savedRepo,
		datasets:  datasets,
		logger:    logger,
		now:       time.Now,
	}
}

// List - все записи пользователя, отсортированные по SaveKey
func (uc *SavedUseCase) List(ctx context.Context, userID string) ([]domain.SavedEntry, error) {
	entries, err := uc.savedRepo.ListSaved(ctx, userID)
	if err != nil {
		uc.logger.Error("Failed to list saved entries", zap.String("user_id", userID), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return NewSavedSet(entries...).Entries(), nil
}

// Save фиксирует снимок текущей записи датасета для точки.
// Повторное сохранение того же слота перезаписывает его.
func (uc *SavedUseCase) Save(
	ctx context.Context,
	userID string,
	dc domain.DatasetContext,
	id domain.LocationID,
	level domain.SurferLevel,
	address string,
) (*domain.SavedEntry, error) {
	snap, err := uc.datasets.Load(ctx, dc)
	if err != nil {
		return nil, err
	}

	rec := snap.Index.ByLocationID(id)
	if rec == nil {
		return nil, errors.ErrSpotNotFound.WithDetails(map[string]interface{}{
			"location_id": id.String(),
			"dataset":     dc.Key(),
		})
	}

	if level == "" {
		level = domain.LevelIntermediate
	}
	entry := domain.SavedEntry{
		LocationID:    rec.LocationID,
		SurfTimestamp: rec.Timestamp,
		Snapshot: domain.Snapshot{
			Conditions:  rec.Conditions,
			SurferLevel: level,
			Metrics:     MetricsForLevel(rec, level),
		},
		SavedAt: uc.now().UTC(),
		Address: address,
	}

	if err := uc.savedRepo.UpsertSaved(ctx, userID, entry); err != nil {
		uc.logger.Error("Failed to save entry",
			zap.String("user_id", userID),
			zap.String("save_key", string(entry.Key())),
			zap.Error(err),
		)
		return nil, errors.ErrDatabaseError
	}

	uc.logger.Info("Entry saved",
		zap.String("user_id", userID),
		zap.String("save_key", string(entry.Key())),
	)
	return &entry, nil
}

// Delete удаляет один слот
func (uc *SavedUseCase) Delete(ctx context.Context, userID string, key domain.SaveKey) error {
	if err := uc.savedRepo.DeleteSaved(ctx, userID, key); err != nil {
		uc.logger.Error("Failed to delete saved entry",
			zap.String("user_id", userID),
			zap.String("save_key", string(key)),
			zap.Error(err),
		)
		return errors.ErrDatabaseError
	}
	return nil
}
