package usecase

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spot-resolver/internal/domain"
)

// MapCanvas - слой отрисовки маркеров
type MapCanvas interface {
	AddMarker(m domain.Marker)
	RemoveMarker(key domain.MarkerKey)
	FlyTo(point domain.GeoPoint)
}

// Presenter - слой панели деталей и уведомлений
type Presenter interface {
	ShowDetail(d domain.Detail)
	ShowNotice(n domain.Notice)
	DismissNotice(id string)
	ShowSlotPicker(p domain.SlotPicker)
	ClosePanel()
}

// Timer - отменяемый отложенный вызов
type Timer interface {
	Stop() bool
}

// Clock - источник отложенных вызовов. Колбэк должен выполняться в той же
// горутине, что и остальные вызовы Engine.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock - Clock на time.AfterFunc. Колбэк приходит из горутины таймера,
// поэтому Engine получает его только через обёртку, возвращающую вызов в event loop.
type RealClock struct{}

// AfterFunc запускает f через d
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// EngineConfig - параметры движка
type EngineConfig struct {
	NearestRadiusKm float64
	NoticeTimeout   time.Duration
	Level           domain.SurferLevel
}

// Engine - состояние карты одной сессии: набор данных, сохранённые точки,
// нарисованные маркеры и текущий результат клика.
// Engine не потокобезопасен, все методы вызываются из одной горутины.
type Engine struct {
	resolver  *SelectionResolver
	canvas    MapCanvas
	presenter Presenter
	clock     Clock
	logger    *zap.Logger

	dataset  domain.DatasetContext
	index    *SpotIndex
	saved    *SavedSet
	level    domain.SurferLevel
	filter   string
	bounds   domain.Bounds
	rendered MarkerSet

	state       domain.Resolution
	noticeTimer Timer
}

// NewEngine - создание движка. clock обязателен: неявный RealClock
// вызывал бы Engine из чужой горутины.
func NewEngine(cfg EngineConfig, canvas MapCanvas, presenter Presenter, clock Clock, logger *zap.Logger) *Engine {
	if clock == nil {
		panic("usecase: NewEngine requires a Clock")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	level := cfg.Level
	if level == "" {
		level = domain.LevelIntermediate
	}
	return &Engine{
		resolver:  NewSelectionResolver(cfg.NearestRadiusKm, cfg.NoticeTimeout),
		canvas:    canvas,
		presenter: presenter,
		clock:     clock,
		logger:    logger,
		index:     NewSpotIndex(nil),
		saved:     NewSavedSet(),
		level:     level,
		rendered:  make(MarkerSet),
		state:     domain.Resolution{State: domain.StateIdle},
	}
}

// State - текущий результат
func (e *Engine) State() domain.Resolution {
	return e.state
}

// Dataset - текущий контекст набора данных
func (e *Engine) Dataset() domain.DatasetContext {
	return e.dataset
}

// Level - активный уровень
func (e *Engine) Level() domain.SurferLevel {
	return e.level
}

// Rendered - копия нарисованных маркеров
func (e *Engine) Rendered() MarkerSet {
	out := make(MarkerSet, len(e.rendered))
	for k, v := range e.rendered {
		out[k] = v
	}
	return out
}

// LoadDataset заменяет набор данных целиком и пересчитывает маркеры
func (e *Engine) LoadDataset(ctx domain.DatasetContext, records []domain.SpotRecord) []domain.MarkerOp {
	e.dataset = ctx
	e.index = NewSpotIndex(records)
	e.logger.Debug("Dataset loaded",
		zap.String("dataset", ctx.Key()),
		zap.Int("records", e.index.Len()))
	return e.reconcile()
}

// SyncSaved заменяет сохранённые записи и пересчитывает маркеры
func (e *Engine) SyncSaved(entries []domain.SavedEntry) []domain.MarkerOp {
	e.saved.Replace(entries)
	return e.reconcile()
}

// Save добавляет или обновляет одну запись
func (e *Engine) Save(entry domain.SavedEntry) []domain.MarkerOp {
	e.saved.Upsert(entry)
	return e.reconcile()
}

// Unsave удаляет запись по ключу
func (e *Engine) Unsave(key domain.SaveKey) []domain.MarkerOp {
	if !e.saved.Remove(key) {
		return nil
	}
	return e.reconcile()
}

// SetLevel меняет уровень для следующих кликов
func (e *Engine) SetLevel(level domain.SurferLevel) {
	if level == "" {
		level = domain.LevelIntermediate
	}
	e.level = level
}

// SetFilter меняет фильтр отображения и пересчитывает маркеры
func (e *Engine) SetFilter(text string) []domain.MarkerOp {
	e.filter = strings.TrimSpace(text)
	return e.reconcile()
}

// ViewportChanged пересчитывает маркеры для новой области
func (e *Engine) ViewportChanged(bounds domain.Bounds) []domain.MarkerOp {
	e.bounds = bounds
	return e.reconcile()
}

// Click обрабатывает клик по пустому месту карты.
// Предыдущий результат закрывается до показа нового.
func (e *Engine) Click(point domain.GeoPoint) domain.Resolution {
	e.clearResult()
	e.state = domain.Resolution{State: domain.StateResolving}

	res := e.resolver.Resolve(e.index, point, e.level)

	switch res.State {
	case domain.StateDetailShown:
		e.state = res
		if res.Detail.Match == domain.MatchNearest {
			e.ensureMarker(res.Detail.Record)
			if e.bounds != nil && !e.bounds.Contains(res.Detail.Record.Geo) {
				e.canvas.FlyTo(res.Detail.Record.Geo)
			}
		}
		e.presenter.ShowDetail(*res.Detail)
	case domain.StateNoMatchNotice:
		e.state = res
		e.presenter.ShowNotice(*res.Notice)
		id := res.Notice.ID
		e.noticeTimer = e.clock.AfterFunc(res.Notice.Timeout, func() {
			e.expireNotice(id)
		})
	}

	return e.state
}

// SavedMarkerClick - клик по маркеру сохранённой точки.
// Одна запись показывается сразу, несколько - через выбор слота.
func (e *Engine) SavedMarkerClick(id domain.LocationID) domain.Resolution {
	e.clearResult()

	entries := GroupByLocation(e.saved.Entries())[id]
	res := ResolveSavedClick(id, entries, e.index.ByLocationID(id), e.level)

	switch res.State {
	case domain.StateDetailShown:
		e.showDetail(*res.Detail)
	case domain.StateSlotPicker:
		e.state = res
		e.presenter.ShowSlotPicker(*res.Picker)
	default:
		e.logger.Debug("Saved marker without entries", zap.String("location_id", id.String()))
		e.state = res
	}

	return e.state
}

// SelectSlot выбирает строку в открытом списке слотов.
// Ключ "current" показывает живые условия точки.
func (e *Engine) SelectSlot(key string) domain.Resolution {
	if e.state.State != domain.StateSlotPicker || e.state.Picker == nil {
		return e.state
	}
	picker := e.state.Picker

	for _, opt := range picker.Options {
		if opt.Key != key {
			continue
		}
		if opt.Current {
			e.showDetail(domain.Detail{
				Source:  domain.SourceLive,
				Match:   domain.MatchSlot,
				Record:  opt.Record,
				Coord:   picker.Coord,
				Level:   e.level,
				Metrics: MetricsForLevel(opt.Record, e.level),
			})
		} else {
			e.showDetail(SavedDetail(domain.MatchSlot, opt.Entry, nil, picker.Coord, e.level))
		}
		return e.state
	}

	e.logger.Debug("Unknown slot key", zap.String("key", key))
	return e.state
}

// ClosePicker закрывает список слотов
func (e *Engine) ClosePicker() domain.Resolution {
	if e.state.State == domain.StateSlotPicker {
		e.presenter.ClosePanel()
		e.state = domain.Resolution{State: domain.StateIdle}
	}
	return e.state
}

// Close закрывает текущий результат и снимает все маркеры
func (e *Engine) Close() {
	e.clearResult()
	for _, key := range e.rendered.Keys() {
		e.canvas.RemoveMarker(key)
	}
	e.rendered = make(MarkerSet)
	e.state = domain.Resolution{State: domain.StateIdle}
}

func (e *Engine) reconcile() []domain.MarkerOp {
	if e.bounds == nil {
		return nil
	}

	desired := DesiredMarkers(e.displayed(), e.saved.Entries(), e.bounds)
	ops := Reconcile(e.rendered, desired)
	for _, op := range ops {
		switch op.Type {
		case domain.MarkerOpRemove:
			e.canvas.RemoveMarker(op.Key)
		case domain.MarkerOpAdd:
			e.canvas.AddMarker(*op.Marker)
		}
	}
	e.rendered.Apply(ops)
	return ops
}

// displayed - записи после фильтра отображения
func (e *Engine) displayed() []domain.SpotRecord {
	records := e.index.Records()
	if e.filter == "" {
		return records
	}
	return FilterRecords(records, e.filter)
}

// ensureMarker рисует маркер найденной записи, если на точке его ещё нет
func (e *Engine) ensureMarker(rec *domain.SpotRecord) {
	if rec == nil || e.rendered.HasLocation(rec.LocationID) {
		return
	}

	var m domain.Marker
	if count := CountByLocation(e.saved.Entries())[rec.LocationID]; count > 0 {
		point, ok := rec.LocationID.Point()
		if !ok {
			point = rec.Geo
		}
		m = savedMarker(rec.LocationID, point, count)
	} else {
		m = forecastMarker(rec)
	}

	e.canvas.AddMarker(m)
	e.rendered[m.Key] = m
}

func (e *Engine) showDetail(d domain.Detail) {
	e.state = domain.Resolution{State: domain.StateDetailShown, Detail: &d}
	e.presenter.ShowDetail(d)
}

// clearResult отменяет таймер и закрывает показанный результат
func (e *Engine) clearResult() {
	if e.noticeTimer != nil {
		e.noticeTimer.Stop()
		e.noticeTimer = nil
	}

	switch e.state.State {
	case domain.StateNoMatchNotice:
		e.presenter.DismissNotice(e.state.Notice.ID)
	case domain.StateDetailShown, domain.StateSlotPicker:
		e.presenter.ClosePanel()
	}
	e.state = domain.Resolution{State: domain.StateIdle}
}

// expireNotice - истечение уведомления. Устаревший таймер игнорируется, маркеры не трогаются.
func (e *Engine) expireNotice(id string) {
	if e.state.State != domain.StateNoMatchNotice || e.state.Notice == nil || e.state.Notice.ID != id {
		return
	}
	e.noticeTimer = nil
	e.presenter.DismissNotice(id)
	e.state = domain.Resolution{State: domain.StateIdle}
}

// FilterRecords - поиск без учёта регистра по имени, региону и стране
func FilterRecords(records []domain.SpotRecord, text string) []domain.SpotRecord {
	q := strings.ToLower(strings.TrimSpace(text))
	if q == "" {
		return records
	}
	out := make([]domain.SpotRecord, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), q) ||
			strings.Contains(strings.ToLower(r.Region), q) ||
			strings.Contains(strings.ToLower(r.Country), q) {
			out = append(out, r)
		}
	}
	return out
}
