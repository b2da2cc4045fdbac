package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/spot-resolver/internal/domain"
)

const (
	defaultInterval = 30 * time.Minute
	warmTimeout     = 2 * time.Minute
)

// Warmer - перезагрузка датасетов в кеш
type Warmer interface {
	Warm(ctx context.Context, contexts []domain.DatasetContext) error
}

// Scheduler периодически прогревает датасеты на ближайшие дни
type Scheduler struct {
	scheduler *gocron.Scheduler
	warmer    Warmer
	logger    *zap.Logger
	interval  time.Duration
	days      int
	times     []string
	now       func() time.Time
}

// New создаёт Scheduler. days - сколько дней начиная с сегодня, times - слоты HH:mm;
// без слотов прогревается датасет "на весь день".
func New(warmer Warmer, interval time.Duration, days int, times []string, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	if days <= 0 {
		days = 1
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		warmer:    warmer,
		logger:    logger,
		interval:  interval,
		days:      days,
		times:     times,
		now:       time.Now,
	}
}

// Start планирует задачу и запускает планировщик. Первый прогрев сразу.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 1
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Dataset warm-up scheduled",
		zap.Int("every_minutes", minutes),
		zap.Int("days", s.days),
		zap.Strings("times", s.times))

	s.scheduler.StartAsync()
	return nil
}

// RunOnce прогревает все контексты один раз
func (s *Scheduler) RunOnce(ctx context.Context) {
	contexts := s.Contexts()
	start := time.Now()

	if err := s.warmer.Warm(ctx, contexts); err != nil {
		s.logger.Warn("Dataset warm-up finished with errors",
			zap.Int("contexts", len(contexts)),
			zap.Error(err))
		return
	}

	s.logger.Info("Dataset warm-up completed",
		zap.Int("contexts", len(contexts)),
		zap.Duration("took", time.Since(start)))
}

// Contexts - контексты датасетов для прогрева: дни x слоты времени (UTC)
func (s *Scheduler) Contexts() []domain.DatasetContext {
	today := s.now().UTC()
	times := s.times
	if len(times) == 0 {
		times = []string{""}
	}

	out := make([]domain.DatasetContext, 0, s.days*len(times))
	for d := 0; d < s.days; d++ {
		date := today.AddDate(0, 0, d).Format("2006-01-02")
		for _, t := range times {
			out = append(out, domain.DatasetContext{Date: date, Time: t})
		}
	}
	return out
}

// Stop останавливает планировщик
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
