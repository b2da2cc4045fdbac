package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/spot-resolver/internal/domain"
	"github.com/spot-resolver/internal/domain/repository"
)

type spotRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSpotRepository создает репозиторий прогнозов (таблица surf_forecasts)
func NewSpotRepository(db *DB) repository.SpotRepository {
	return &spotRepository{
		db:     db,
		logger: db.logger,
	}
}

type forecastRow struct {
	LocationID       string  `db:"location_id"`
	SurfTimestamp    string  `db:"surf_timestamp"`
	Lat              float64 `db:"lat"`
	Lng              float64 `db:"lng"`
	Name             string  `db:"name"`
	Region           string  `db:"region"`
	Country          string  `db:"country"`
	WaveHeight       float64 `db:"wave_height"`
	WavePeriod       float64 `db:"wave_period"`
	WindSpeed        float64 `db:"wind_speed"`
	WaterTemperature float64 `db:"water_temperature"`
	DerivedMetrics   []byte  `db:"derived_metrics"`
}

// Если время не задано, на точку берётся последний прогноз за дату
const forecastSelect = `
	SELECT DISTINCT ON (location_id)
		location_id,
		surf_timestamp,
		lat,
		lng,
		COALESCE(name, '') AS name,
		COALESCE(region, '') AS region,
		COALESCE(country, '') AS country,
		COALESCE(wave_height, 0) AS wave_height,
		COALESCE(wave_period, 0) AS wave_period,
		COALESCE(wind_speed, 0) AS wind_speed,
		COALESCE(water_temperature, 0) AS water_temperature,
		COALESCE(derived_metrics, '{}'::jsonb) AS derived_metrics
	FROM surf_forecasts
	WHERE surf_date = $1::date
	  AND ($2::text = '' OR surf_time = $2::text)`

const forecastOrder = `
	ORDER BY location_id, surf_timestamp DESC`

// GetDataset возвращает записи за дату/время
func (r *spotRepository) GetDataset(ctx context.Context, dc domain.DatasetContext) ([]domain.SpotRecord, error) {
	var rows []forecastRow
	if err := r.db.SelectContext(ctx, &rows, forecastSelect+forecastOrder, dc.Date, dc.Time); err != nil {
		r.logger.Error("Failed to get dataset",
			zap.String("dataset", dc.Key()),
			zap.Error(err))
		return nil, fmt.Errorf("get dataset: %w", err)
	}

	return r.toRecords(rows)
}

// GetByLocationIDs возвращает записи по точкам
func (r *spotRepository) GetByLocationIDs(ctx context.Context, dc domain.DatasetContext, ids []domain.LocationID) ([]domain.SpotRecord, error) {
	if len(ids) == 0 {
		return []domain.SpotRecord{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = string(id)
	}

	query := forecastSelect + `
	  AND location_id = ANY($3::text[])` + forecastOrder

	var rows []forecastRow
	if err := r.db.SelectContext(ctx, &rows, query, dc.Date, dc.Time, pq.Array(keys)); err != nil {
		r.logger.Error("Failed to get forecasts by location ids",
			zap.String("dataset", dc.Key()),
			zap.Int("count", len(ids)),
			zap.Error(err))
		return nil, fmt.Errorf("get forecasts by location ids: %w", err)
	}

	return r.toRecords(rows)
}

func (r *spotRepository) toRecords(rows []forecastRow) ([]domain.SpotRecord, error) {
	records := make([]domain.SpotRecord, 0, len(rows))
	for _, row := range rows {
		rec := domain.SpotRecord{
			LocationID: domain.LocationID(row.LocationID),
			Geo:        domain.GeoPoint{Lat: row.Lat, Lng: row.Lng},
			Timestamp:  row.SurfTimestamp,
			Name:       row.Name,
			Region:     row.Region,
			Country:    row.Country,
			Conditions: domain.Conditions{
				WaveHeight:       row.WaveHeight,
				WavePeriod:       row.WavePeriod,
				WindSpeed:        row.WindSpeed,
				WaterTemperature: row.WaterTemperature,
			},
		}
		if len(row.DerivedMetrics) > 0 {
			if err := json.Unmarshal(row.DerivedMetrics, &rec.DerivedMetrics); err != nil {
				// битые метрики пересчитаются при нормализации
				r.logger.Warn("Invalid derived_metrics, skipping",
					zap.String("location_id", row.LocationID),
					zap.Error(err))
				rec.DerivedMetrics = nil
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
