package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spot-resolver/internal/domain"
	"github.com/spot-resolver/internal/domain/repository"
	"github.com/spot-resolver/internal/pkg/utils"
	"github.com/spot-resolver/internal/usecase"
	"github.com/spot-resolver/internal/worker"
)

const (
	workerName         = "map-session"
	defaultMaxSessions = 1000
	publishTimeout     = 5 * time.Second
)

var errInvalidEvent = errors.New("invalid map event")

// Config - параметры воркера сессий
type Config struct {
	ConsumerGroup string
	MaxSessions   int
	Engine        usecase.EngineConfig
	// Clock - источник таймеров; nil - time.AfterFunc
	Clock usecase.Clock
}

type mapSession struct {
	id       string
	userID   string
	engine   *usecase.Engine
	recorder *usecase.Recorder

	// инструкции, не дошедшие до стрима; Engine уже считает их применёнными
	undelivered []domain.Instruction
	lastSeen    time.Time
}

// SessionWorker читает события карты из stream:map:events, держит по Engine на сессию
// и публикует инструкции в stream:map:instructions.
// Все сессии обслуживаются одной горутиной: сообщения и таймеры приходят в один select.
type SessionWorker struct {
	*worker.BaseWorker
	streamRepo repository.StreamRepository
	savedRepo  repository.SavedRepository
	datasets   usecase.DatasetLoader
	cfg        Config

	sessions map[string]*mapSession
	fires    chan timerFire
	done     chan struct{}
	now      func() time.Time
}

// NewSessionWorker создает воркер. savedRepo может быть nil, тогда saved_sync
// принимает только записи из самого события.
func NewSessionWorker(
	streamRepo repository.StreamRepository,
	datasets usecase.DatasetLoader,
	savedRepo repository.SavedRepository,
	cfg Config,
	logger *zap.Logger,
) *SessionWorker {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = defaultMaxSessions
	}
	if cfg.Clock == nil {
		cfg.Clock = usecase.RealClock{}
	}
	return &SessionWorker{
		BaseWorker: worker.NewBaseWorker(workerName, cfg.ConsumerGroup, logger),
		streamRepo: streamRepo,
		savedRepo:  savedRepo,
		datasets:   datasets,
		cfg:        cfg,
		sessions:   make(map[string]*mapSession),
		fires:      make(chan timerFire),
		now:        time.Now,
	}
}

// Start запускает цикл обработки и блокируется до Stop или отмены ctx
func (w *SessionWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting SessionWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.ConsumerName()),
		zap.Int("max_sessions", w.cfg.MaxSessions))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamMapEvents, w.ConsumerGroup()); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := w.streamRepo.ConsumeStream(ctx, domain.StreamMapEvents, w.ConsumerGroup(), w.ConsumerName())
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	w.done = make(chan struct{})
	defer func() {
		w.closeAll()
		close(w.done)
	}()

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped", zap.Int("sessions", len(w.sessions)))
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case msg, ok := <-messages:
			if !ok {
				logger.Info("Event stream closed")
				return nil
			}
			w.processMessage(ctx, msg)

		case fire := <-w.fires:
			w.processTimer(ctx, fire)
		}
	}
}

// processMessage - одно событие: разбор, применение к движку, публикация, ACK.
// Битые сообщения подтверждаются и пропускаются.
func (w *SessionWorker) processMessage(ctx context.Context, msg domain.StreamMessage) {
	logger := w.Logger()

	var event domain.MapEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil || event.SessionID == "" {
		logger.Warn("Failed to parse map event, skipping",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		w.ack(ctx, msg.ID)
		return
	}

	s := w.session(event)
	if err := w.apply(ctx, s, event); err != nil {
		logger.Warn("Map event rejected",
			zap.String("message_id", msg.ID),
			zap.String("session_id", event.SessionID),
			zap.String("type", string(event.Type)),
			zap.Error(err))
	}

	if err := w.flush(ctx, s, msg.ID); err != nil {
		// без ACK сообщение остаётся в pending группы и вернётся через XAUTOCLAIM;
		// инструкции уйдут со следующим flush сессии
		return
	}
	if event.Type == domain.EventSessionClose {
		delete(w.sessions, s.id)
	}
	w.ack(ctx, msg.ID)
}

// apply переводит событие в вызов Engine
func (w *SessionWorker) apply(ctx context.Context, s *mapSession, event domain.MapEvent) error {
	switch event.Type {
	case domain.EventDatasetContext:
		if event.Dataset == nil {
			return fmt.Errorf("%w: dataset is required", errInvalidEvent)
		}
		snap, err := w.datasets.Load(ctx, *event.Dataset)
		if err != nil {
			return fmt.Errorf("load dataset %s: %w", event.Dataset.Key(), err)
		}
		s.engine.LoadDataset(snap.Context, snap.Index.Records())

	case domain.EventSavedSync:
		entries := event.Saved
		if entries == nil && s.userID != "" && w.savedRepo != nil {
			loaded, err := w.savedRepo.ListSaved(ctx, s.userID)
			if err != nil {
				return fmt.Errorf("list saved entries: %w", err)
			}
			entries = loaded
		}
		s.engine.SyncSaved(entries)

	case domain.EventViewport:
		if event.Viewport == nil || !event.Viewport.Valid() {
			return fmt.Errorf("%w: valid viewport is required", errInvalidEvent)
		}
		s.engine.ViewportChanged(utils.NewRectBounds(*event.Viewport))

	case domain.EventClick:
		if event.Point == nil || !event.Point.Valid() {
			return fmt.Errorf("%w: valid point is required", errInvalidEvent)
		}
		s.engine.Click(*event.Point)

	case domain.EventSavedClick:
		if event.LocationID == "" {
			return fmt.Errorf("%w: location_id is required", errInvalidEvent)
		}
		s.engine.SavedMarkerClick(event.LocationID)

	case domain.EventSlotSelect:
		s.engine.SelectSlot(event.SlotKey)

	case domain.EventPickerClose:
		s.engine.ClosePicker()

	case domain.EventLevelChange:
		level, ok := domain.ParseSurferLevel(event.Level)
		if !ok {
			return fmt.Errorf("%w: unknown level %q", errInvalidEvent, event.Level)
		}
		s.engine.SetLevel(level)

	case domain.EventFilterChange:
		s.engine.SetFilter(event.Filter)

	case domain.EventSessionClose:
		s.engine.Close()

	default:
		return fmt.Errorf("%w: unknown type %q", errInvalidEvent, event.Type)
	}
	return nil
}

// processTimer - истечение таймера движка. Сессия могла быть закрыта или вытеснена.
func (w *SessionWorker) processTimer(ctx context.Context, fire timerFire) {
	s, ok := w.sessions[fire.sessionID]
	if !ok {
		return
	}
	fire.fn()
	_ = w.flush(ctx, s, "")
}

// flush публикует накопленные инструкции сессии одним батчем.
// Неотправленный ранее хвост идёт первым; при ошибке весь батч остаётся на сессии.
func (w *SessionWorker) flush(ctx context.Context, s *mapSession, eventID string) error {
	if s.recorder.Len() == 0 && len(s.undelivered) == 0 {
		return nil
	}

	batch := domain.InstructionBatch{
		SessionID:    s.id,
		EventID:      eventID,
		Instructions: append(s.undelivered, s.recorder.Drain()...),
	}
	s.undelivered = nil

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := w.streamRepo.PublishToStream(pubCtx, domain.StreamMapInstructions, batch); err != nil {
		w.Logger().Error("Failed to publish instructions",
			zap.String("session_id", s.id),
			zap.String("event_id", eventID),
			zap.Int("instructions", len(batch.Instructions)),
			zap.Error(err))
		s.undelivered = batch.Instructions
		return err
	}
	return nil
}

func (w *SessionWorker) ack(ctx context.Context, messageID string) {
	if err := w.streamRepo.AckMessage(ctx, domain.StreamMapEvents, w.ConsumerGroup(), messageID); err != nil {
		w.Logger().Error("Failed to ack message", zap.String("message_id", messageID), zap.Error(err))
	}
}

// session возвращает сессию события, создавая её при первом обращении.
// При превышении MaxSessions вытесняется самая давняя.
func (w *SessionWorker) session(event domain.MapEvent) *mapSession {
	now := w.now()
	if s, ok := w.sessions[event.SessionID]; ok {
		s.lastSeen = now
		if event.UserID != "" {
			s.userID = event.UserID
		}
		return s
	}

	if len(w.sessions) >= w.cfg.MaxSessions {
		w.evictOldest()
	}

	recorder := usecase.NewRecorder()
	clock := loopClock{
		base:      w.cfg.Clock,
		sessionID: event.SessionID,
		fires:     w.fires,
		done:      w.done,
	}
	s := &mapSession{
		id:       event.SessionID,
		userID:   event.UserID,
		engine:   usecase.NewEngine(w.cfg.Engine, recorder, recorder, clock, w.Logger().With(zap.String("session_id", event.SessionID))),
		recorder: recorder,
		lastSeen: now,
	}
	w.sessions[s.id] = s

	w.Logger().Debug("Session opened", zap.String("session_id", s.id), zap.Int("sessions", len(w.sessions)))
	return s
}

func (w *SessionWorker) evictOldest() {
	var oldest *mapSession
	for _, s := range w.sessions {
		if oldest == nil || s.lastSeen.Before(oldest.lastSeen) {
			oldest = s
		}
	}
	if oldest == nil {
		return
	}
	oldest.engine.Close()
	delete(w.sessions, oldest.id)
	w.Logger().Info("Session evicted", zap.String("session_id", oldest.id))
}

// closeAll останавливает таймеры всех сессий при выходе из цикла
func (w *SessionWorker) closeAll() {
	for id, s := range w.sessions {
		s.engine.Close()
		delete(w.sessions, id)
	}
}
