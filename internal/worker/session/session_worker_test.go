package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/spot-resolver/internal/domain"
	"github.com/spot-resolver/internal/domain/repository"
	"github.com/spot-resolver/internal/usecase"
	"github.com/spot-resolver/internal/worker/session"
)

const testGroup = "map-test"

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(chan domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	return m.Called(ctx, stream, group, messageID).Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	return m.Called(ctx, stream, group).Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	return m.Called(ctx, stream, data).Error(0)
}

// MockSavedRepository is a mock of SavedRepository
type MockSavedRepository struct {
	mock.Mock
}

func (m *MockSavedRepository) ListSaved(ctx context.Context, userID string) ([]domain.SavedEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SavedEntry), args.Error(1)
}

func (m *MockSavedRepository) UpsertSaved(ctx context.Context, userID string, entry domain.SavedEntry) error {
	return m.Called(ctx, userID, entry).Error(0)
}

func (m *MockSavedRepository) DeleteSaved(ctx context.Context, userID string, key domain.SaveKey) error {
	return m.Called(ctx, userID, key).Error(0)
}

type stubLoader struct {
	snap *usecase.DatasetSnapshot
}

func (l stubLoader) Load(context.Context, domain.DatasetContext) (*usecase.DatasetSnapshot, error) {
	return l.snap, nil
}

type manualTimer struct {
	f       func()
	stopped bool
}

// manualClock - таймеры срабатывают только по FireAll
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (c *manualClock) AfterFunc(_ time.Duration, f func()) usecase.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{f: f}
	c.timers = append(c.timers, t)
	return stopFunc(func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		was := !t.stopped
		t.stopped = true
		return was
	})
}

func (c *manualClock) FireAll() {
	c.mu.Lock()
	var pending []*manualTimer
	for _, t := range c.timers {
		if !t.stopped {
			t.stopped = true
			pending = append(pending, t)
		}
	}
	c.mu.Unlock()
	for _, t := range pending {
		t.f()
	}
}

type stopFunc func() bool

func (f stopFunc) Stop() bool { return f() }

type harness struct {
	worker    *session.SessionWorker
	clock     *manualClock
	messages  chan domain.StreamMessage
	published chan domain.InstructionBatch
	acked     chan string
	failed    chan struct{}
	done      chan error
	seq       int
}

func jukdo() domain.SpotRecord {
	return usecase.NormalizeRecord(domain.SpotRecord{
		Geo:        domain.GeoPoint{Lat: 38.0765, Lng: 128.6234},
		Timestamp:  "2026-10-14T06:00:00Z",
		Conditions: domain.Conditions{WaveHeight: 1.5, WavePeriod: 10, WindSpeed: 5},
		Name:       "Jukdo",
	})
}

func startHarness(t *testing.T, savedRepo repository.SavedRepository) *harness {
	return startHarnessWithFailures(t, savedRepo, 0)
}

// startHarnessWithFailures - первые publishFailures публикаций возвращают ошибку
func startHarnessWithFailures(t *testing.T, savedRepo repository.SavedRepository, publishFailures int) *harness {
	t.Helper()
	h := &harness{
		clock:     &manualClock{},
		messages:  make(chan domain.StreamMessage),
		published: make(chan domain.InstructionBatch, 16),
		acked:     make(chan string, 16),
		failed:    make(chan struct{}, 16),
		done:      make(chan error, 1),
	}

	repo := new(MockStreamRepository)
	repo.On("CreateConsumerGroup", mock.Anything, domain.StreamMapEvents, testGroup).Return(nil)
	repo.On("ConsumeStream", mock.Anything, domain.StreamMapEvents, testGroup, mock.Anything).Return(h.messages, nil)
	if publishFailures > 0 {
		repo.On("PublishToStream", mock.Anything, domain.StreamMapInstructions, mock.Anything).
			Run(func(mock.Arguments) { h.failed <- struct{}{} }).
			Return(errors.New("redis: connection refused")).
			Times(publishFailures)
	}
	repo.On("PublishToStream", mock.Anything, domain.StreamMapInstructions, mock.Anything).
		Run(func(args mock.Arguments) { h.published <- args.Get(2).(domain.InstructionBatch) }).
		Return(nil)
	repo.On("AckMessage", mock.Anything, domain.StreamMapEvents, testGroup, mock.Anything).
		Run(func(args mock.Arguments) { h.acked <- args.String(3) }).
		Return(nil)

	dc := domain.DatasetContext{Date: "2026-10-14"}
	loader := stubLoader{snap: &usecase.DatasetSnapshot{Context: dc, Index: usecase.NewSpotIndex([]domain.SpotRecord{jukdo()})}}

	cfg := session.Config{
		ConsumerGroup: testGroup,
		Engine:        usecase.EngineConfig{NearestRadiusKm: 100, NoticeTimeout: 4 * time.Second},
		Clock:         h.clock,
	}
	h.worker = session.NewSessionWorker(repo, loader, savedRepo, cfg, zap.NewNop())

	go func() { h.done <- h.worker.Start(context.Background()) }()
	return h
}

func (h *harness) send(t *testing.T, event domain.MapEvent) string {
	t.Helper()
	raw, err := json.Marshal(event)
	require.NoError(t, err)
	return h.sendRaw(t, string(raw))
}

func (h *harness) sendRaw(t *testing.T, data string) string {
	t.Helper()
	h.seq++
	id := fmt.Sprintf("%d-0", h.seq)
	h.deliver(t, id, data)
	return id
}

// redeliver повторно отдаёт уже прочитанное сообщение, как после XAUTOCLAIM
func (h *harness) redeliver(t *testing.T, id string, event domain.MapEvent) {
	t.Helper()
	raw, err := json.Marshal(event)
	require.NoError(t, err)
	h.deliver(t, id, string(raw))
}

func (h *harness) deliver(t *testing.T, id, data string) {
	t.Helper()
	select {
	case h.messages <- domain.StreamMessage{ID: id, Data: data}:
	case <-time.After(time.Second):
		t.Fatal("worker did not read message")
	}
}

func (h *harness) waitAck(t *testing.T, id string) {
	t.Helper()
	select {
	case got := <-h.acked:
		assert.Equal(t, id, got)
	case <-time.After(time.Second):
		t.Fatalf("message %s was not acked", id)
	}
}

func (h *harness) waitBatch(t *testing.T) domain.InstructionBatch {
	t.Helper()
	select {
	case b := <-h.published:
		return b
	case <-time.After(time.Second):
		t.Fatal("no instructions published")
	}
	return domain.InstructionBatch{}
}

func (h *harness) stop(t *testing.T) {
	t.Helper()
	require.NoError(t, h.worker.Stop())
	select {
	case err := <-h.done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func types(batch domain.InstructionBatch) []domain.InstructionType {
	out := make([]domain.InstructionType, len(batch.Instructions))
	for i, in := range batch.Instructions {
		out[i] = in.Type
	}
	return out
}

var korea = domain.Viewport{
	SouthWest: domain.GeoPoint{Lat: 33, Lng: 124},
	NorthEast: domain.GeoPoint{Lat: 39, Lng: 131},
}

func TestSessionWorker_NoticeExpiresThroughLoop(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := startHarness(t, nil)

	id := h.send(t, domain.MapEvent{SessionID: "s1", Type: domain.EventDatasetContext, Dataset: &domain.DatasetContext{Date: "2026-10-14"}})
	h.waitAck(t, id)

	id = h.send(t, domain.MapEvent{SessionID: "s1", Type: domain.EventViewport, Viewport: &korea})
	batch := h.waitBatch(t)
	assert.Equal(t, "s1", batch.SessionID)
	assert.Equal(t, id, batch.EventID)
	assert.Equal(t, []domain.InstructionType{domain.InstructionAddMarker}, types(batch))
	h.waitAck(t, id)

	id = h.send(t, domain.MapEvent{SessionID: "s1", Type: domain.EventClick, Point: &domain.GeoPoint{Lat: 0, Lng: 0}})
	batch = h.waitBatch(t)
	require.Equal(t, []domain.InstructionType{domain.InstructionShowNotice}, types(batch))
	noticeID := batch.Instructions[0].Notice.ID
	h.waitAck(t, id)

	h.clock.FireAll()
	batch = h.waitBatch(t)
	assert.Empty(t, batch.EventID)
	require.Equal(t, []domain.InstructionType{domain.InstructionDismissNotice}, types(batch))
	assert.Equal(t, noticeID, batch.Instructions[0].NoticeID)

	h.stop(t)
}

func TestSessionWorker_RedeliveryPublishesUndeliveredInstructions(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := startHarnessWithFailures(t, nil, 1)

	h.waitAck(t, h.send(t, domain.MapEvent{SessionID: "s1", Type: domain.EventDatasetContext, Dataset: &domain.DatasetContext{Date: "2026-10-14"}}))

	viewport := domain.MapEvent{SessionID: "s1", Type: domain.EventViewport, Viewport: &korea}
	id := h.send(t, viewport)
	select {
	case <-h.failed:
	case <-time.After(time.Second):
		t.Fatal("publish was not attempted")
	}

	// движок уже считает маркер нарисованным, повторное событие новых инструкций не даёт
	h.redeliver(t, id, viewport)
	batch := h.waitBatch(t)
	assert.Equal(t, id, batch.EventID)
	require.Equal(t, []domain.InstructionType{domain.InstructionAddMarker}, types(batch))
	assert.Equal(t, domain.ForecastMarkerKey(jukdo().LocationID), batch.Instructions[0].Key)
	h.waitAck(t, id)

	h.stop(t)
	assert.Empty(t, h.acked, "failed publish must not be acked")
}

func TestSessionWorker_UndeliveredInstructionsPrecedeNextEvent(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := startHarnessWithFailures(t, nil, 1)

	h.waitAck(t, h.send(t, domain.MapEvent{SessionID: "s1", Type: domain.EventDatasetContext, Dataset: &domain.DatasetContext{Date: "2026-10-14"}}))

	h.send(t, domain.MapEvent{SessionID: "s1", Type: domain.EventViewport, Viewport: &korea})
	<-h.failed

	id := h.send(t, domain.MapEvent{SessionID: "s1", Type: domain.EventClick, Point: &domain.GeoPoint{Lat: 0, Lng: 0}})
	batch := h.waitBatch(t)
	assert.Equal(t, id, batch.EventID)
	assert.Equal(t, []domain.InstructionType{domain.InstructionAddMarker, domain.InstructionShowNotice}, types(batch))
	h.waitAck(t, id)

	h.stop(t)
}

func TestSessionWorker_MalformedMessagesAreAcked(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := startHarness(t, nil)

	h.waitAck(t, h.sendRaw(t, "not json"))
	h.waitAck(t, h.sendRaw(t, `{"type":"click"}`))
	h.waitAck(t, h.send(t, domain.MapEvent{SessionID: "s1", Type: "teleport"}))
	h.waitAck(t, h.send(t, domain.MapEvent{SessionID: "s1", Type: domain.EventClick}))

	select {
	case b := <-h.published:
		t.Fatalf("unexpected batch %+v", b)
	default:
	}

	h.stop(t)
}

func TestSessionWorker_SavedSyncFromRepository(t *testing.T) {
	defer goleak.VerifyNone(t)
	savedRepo := new(MockSavedRepository)
	rec := jukdo()
	savedRepo.On("ListSaved", mock.Anything, "user-1").Return([]domain.SavedEntry{
		{LocationID: rec.LocationID, SurfTimestamp: "2026-10-14T06:00:00Z"},
		{LocationID: rec.LocationID, SurfTimestamp: "2026-10-14T18:00:00Z"},
	}, nil)
	h := startHarness(t, savedRepo)

	h.waitAck(t, h.send(t, domain.MapEvent{SessionID: "s1", UserID: "user-1", Type: domain.EventDatasetContext, Dataset: &domain.DatasetContext{Date: "2026-10-14"}}))
	h.waitAck(t, h.send(t, domain.MapEvent{SessionID: "s1", Type: domain.EventSavedSync}))

	id := h.send(t, domain.MapEvent{SessionID: "s1", Type: domain.EventViewport, Viewport: &korea})
	batch := h.waitBatch(t)
	require.Len(t, batch.Instructions, 1)
	assert.Equal(t, domain.SavedMarkerKey(rec.LocationID), batch.Instructions[0].Key)
	assert.Equal(t, 2, batch.Instructions[0].Marker.Badge)
	h.waitAck(t, id)

	id = h.send(t, domain.MapEvent{SessionID: "s1", Type: domain.EventSavedClick, LocationID: rec.LocationID})
	batch = h.waitBatch(t)
	require.Equal(t, []domain.InstructionType{domain.InstructionShowSlotPicker}, types(batch))
	assert.Len(t, batch.Instructions[0].Picker.Options, 3)
	h.waitAck(t, id)

	h.stop(t)
	savedRepo.AssertExpectations(t)
}

func TestSessionWorker_SessionClose(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := startHarness(t, nil)

	h.waitAck(t, h.send(t, domain.MapEvent{SessionID: "s1", Type: domain.EventDatasetContext, Dataset: &domain.DatasetContext{Date: "2026-10-14"}}))

	id := h.send(t, domain.MapEvent{SessionID: "s1", Type: domain.EventViewport, Viewport: &korea})
	h.waitBatch(t)
	h.waitAck(t, id)

	id = h.send(t, domain.MapEvent{SessionID: "s1", Type: domain.EventSessionClose})
	batch := h.waitBatch(t)
	assert.Equal(t, []domain.InstructionType{domain.InstructionRemoveMarker}, types(batch))
	h.waitAck(t, id)

	// после закрытия сессия начинается заново, без датасета
	id = h.send(t, domain.MapEvent{SessionID: "s1", Type: domain.EventClick, Point: &domain.GeoPoint{Lat: 38.0765, Lng: 128.6234}})
	batch = h.waitBatch(t)
	assert.Equal(t, []domain.InstructionType{domain.InstructionShowNotice}, types(batch))
	h.waitAck(t, id)

	h.stop(t)
}

func TestSessionWorker_ContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	messages := make(chan domain.StreamMessage)
	repo := new(MockStreamRepository)
	repo.On("CreateConsumerGroup", mock.Anything, domain.StreamMapEvents, testGroup).Return(nil)
	repo.On("ConsumeStream", mock.Anything, domain.StreamMapEvents, testGroup, mock.Anything).Return(messages, nil)

	w := session.NewSessionWorker(repo, stubLoader{}, nil, session.Config{ConsumerGroup: testGroup}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}
	repo.AssertExpectations(t)
}
