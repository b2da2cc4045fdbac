package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spot-resolver/internal/domain"
	"github.com/spot-resolver/internal/domain/repository"
)

type savedRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSavedRepository создает репозиторий сохранённых точек (таблица saved_entries)
func NewSavedRepository(db *DB) repository.SavedRepository {
	return &savedRepository{
		db:     db,
		logger: db.logger,
	}
}

type savedRow struct {
	LocationID    string    `db:"location_id"`
	SurfTimestamp string    `db:"surf_timestamp"`
	Snapshot      []byte    `db:"snapshot"`
	Address       string    `db:"address"`
	SavedAt       time.Time `db:"saved_at"`
}

// ListSaved возвращает записи пользователя по возрастанию save_key
func (r *savedRepository) ListSaved(ctx context.Context, userID string) ([]domain.SavedEntry, error) {
	query := `
		SELECT location_id, surf_timestamp, snapshot, COALESCE(address, '') AS address, saved_at
		FROM saved_entries
		WHERE user_id = $1
		ORDER BY save_key`

	var rows []savedRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		r.logger.Error("Failed to list saved entries",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("list saved entries: %w", err)
	}

	entries := make([]domain.SavedEntry, 0, len(rows))
	for _, row := range rows {
		entry := domain.SavedEntry{
			LocationID:    domain.LocationID(row.LocationID),
			SurfTimestamp: row.SurfTimestamp,
			Address:       row.Address,
			SavedAt:       row.SavedAt,
		}
		if err := json.Unmarshal(row.Snapshot, &entry.Snapshot); err != nil {
			r.logger.Warn("Invalid snapshot, skipping entry",
				zap.String("save_key", string(entry.Key())),
				zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// UpsertSaved - повторное сохранение того же слота обновляет запись
func (r *savedRepository) UpsertSaved(ctx context.Context, userID string, entry domain.SavedEntry) error {
	snapshot, err := json.Marshal(entry.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	savedAt := entry.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO saved_entries (user_id, save_key, location_id, surf_timestamp, snapshot, address, saved_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
		ON CONFLICT (user_id, save_key) DO UPDATE SET
			snapshot = EXCLUDED.snapshot,
			address  = EXCLUDED.address,
			saved_at = EXCLUDED.saved_at`

	_, err = r.db.ExecContext(ctx, query,
		userID,
		string(entry.Key()),
		string(entry.LocationID),
		entry.SurfTimestamp,
		snapshot,
		entry.Address,
		savedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert saved entry",
			zap.String("user_id", userID),
			zap.String("save_key", string(entry.Key())),
			zap.Error(err))
		return fmt.Errorf("upsert saved entry: %w", err)
	}

	return nil
}

// DeleteSaved удаляет запись; отсутствие записи не ошибка
func (r *savedRepository) DeleteSaved(ctx context.Context, userID string, key domain.SaveKey) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM saved_entries WHERE user_id = $1 AND save_key = $2`,
		userID, string(key))
	if err != nil {
		r.logger.Error("Failed to delete saved entry",
			zap.String("user_id", userID),
			zap.String("save_key", string(key)),
			zap.Error(err))
		return fmt.Errorf("delete saved entry: %w", err)
	}
	return nil
}
