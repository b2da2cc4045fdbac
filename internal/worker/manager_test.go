package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/spot-resolver/internal/worker"
)

type blockingWorker struct {
	*worker.BaseWorker
	started chan struct{}
}

func newBlockingWorker(name string) *blockingWorker {
	return &blockingWorker{
		BaseWorker: worker.NewBaseWorker(name, "test-group", zap.NewNop()),
		started:    make(chan struct{}),
	}
}

func (w *blockingWorker) Start(ctx context.Context) error {
	close(w.started)
	select {
	case <-w.StopChan():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type stuckWorker struct {
	*worker.BaseWorker
	release chan struct{}
}

func (w *stuckWorker) Start(context.Context) error {
	<-w.release
	return nil
}

func TestWorkerManager_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := worker.NewWorkerManager(zap.NewNop(), time.Second)
	a, b := newBlockingWorker("a"), newBlockingWorker("b")
	m.Register(a)
	m.Register(b)

	require.NoError(t, m.Start(context.Background()))
	<-a.started
	<-b.started

	require.NoError(t, m.Stop())
	assert.True(t, a.IsStopped())
	assert.True(t, b.IsStopped())
	assert.NoError(t, a.Stop(), "second stop is a no-op")
}

func TestWorkerManager_NoWorkers(t *testing.T) {
	m := worker.NewWorkerManager(zap.NewNop(), 0)
	assert.Error(t, m.Start(context.Background()))
}

func TestWorkerManager_StopTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := &stuckWorker{
		BaseWorker: worker.NewBaseWorker("stuck", "test-group", zap.NewNop()),
		release:    make(chan struct{}),
	}
	m := worker.NewWorkerManager(zap.NewNop(), 50*time.Millisecond)
	m.Register(w)
	require.NoError(t, m.Start(context.Background()))

	assert.Error(t, m.Stop())

	// goleak дождётся выхода горутин после release
	close(w.release)
}

func TestBaseWorker_ConsumerName(t *testing.T) {
	a := worker.NewBaseWorker("a", "g", zap.NewNop())
	b := worker.NewBaseWorker("a", "g", zap.NewNop())
	assert.NotEqual(t, a.ConsumerName(), b.ConsumerName())
	assert.Equal(t, "g", a.ConsumerGroup())
}
