package session

import (
	"time"

	"github.com/spot-resolver/internal/usecase"
)

// timerFire - сработавший таймер движка, выполняется в горутине цикла
type timerFire struct {
	sessionID string
	fn        func()
}

// loopClock возвращает колбэки таймеров в цикл воркера через канал,
// поэтому Engine всегда вызывается из одной горутины.
type loopClock struct {
	base      usecase.Clock
	sessionID string
	fires     chan<- timerFire
	done      <-chan struct{}
}

func (c loopClock) AfterFunc(d time.Duration, f func()) usecase.Timer {
	return c.base.AfterFunc(d, func() {
		select {
		case c.fires <- timerFire{sessionID: c.sessionID, fn: f}:
		case <-c.done:
		}
	})
}
