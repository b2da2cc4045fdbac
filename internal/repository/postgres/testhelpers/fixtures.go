package testhelpers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/spot-resolver/internal/domain"
)

// InsertForecast добавляет строку прогноза для даты/времени
func InsertForecast(ctx context.Context, db *sqlx.DB, dc domain.DatasetContext, rec domain.SpotRecord) error {
	metrics, err := json.Marshal(rec.DerivedMetrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO surf_forecasts (
			location_id, surf_date, surf_time, surf_timestamp, lat, lng, name, region, country,
			wave_height, wave_period, wind_speed, water_temperature, derived_metrics
		) VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		string(rec.LocationID), dc.Date, dc.Time, rec.Timestamp, rec.Geo.Lat, rec.Geo.Lng,
		rec.Name, rec.Region, rec.Country,
		rec.Conditions.WaveHeight, rec.Conditions.WavePeriod, rec.Conditions.WindSpeed, rec.Conditions.WaterTemperature,
		metrics,
	)
	if err != nil {
		return fmt.Errorf("insert forecast %s: %w", rec.LocationID, err)
	}
	return nil
}
