package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/spot-resolver/internal/domain"
	"github.com/spot-resolver/internal/domain/repository"
)

// ErrCircuitOpen - источник прогнозов временно отключён после серии ошибок
var ErrCircuitOpen = errors.New("spot repository circuit breaker open")

type breakerSpotRepository struct {
	next    repository.SpotRepository
	circuit *gobreaker.CircuitBreaker
}

// NewBreakerSpotRepository оборачивает SpotRepository в circuit breaker.
// Отмена контекста вызывающим не считается отказом источника.
func NewBreakerSpotRepository(next repository.SpotRepository, logger *zap.Logger) repository.SpotRepository {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "spot-repository",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &breakerSpotRepository{next: next, circuit: cb}
}

func (r *breakerSpotRepository) GetDataset(ctx context.Context, dc domain.DatasetContext) ([]domain.SpotRecord, error) {
	return r.execute(func() ([]domain.SpotRecord, error) {
		return r.next.GetDataset(ctx, dc)
	})
}

func (r *breakerSpotRepository) GetByLocationIDs(ctx context.Context, dc domain.DatasetContext, ids []domain.LocationID) ([]domain.SpotRecord, error) {
	return r.execute(func() ([]domain.SpotRecord, error) {
		return r.next.GetByLocationIDs(ctx, dc, ids)
	})
}

func (r *breakerSpotRepository) execute(fn func() ([]domain.SpotRecord, error)) ([]domain.SpotRecord, error) {
	res, err := r.circuit.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}
	records, _ := res.([]domain.SpotRecord)
	return records, nil
}
