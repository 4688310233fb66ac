package trading

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs a callback once after a fixed delay. It is the
// fire-and-forget half of the two-phase order lifecycle: once an order is
// accepted its settlement cannot be cancelled or retracted.
//
// Scheduled callbacks live only in memory. If the process terminates
// before the delay elapses the callback is lost and the order stays
// Pending; the server logs such orders at startup rather than silently
// recovering them.
type Scheduler struct {
	logger *zap.Logger
	clock  Clock
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler on the given clock.
func NewScheduler(logger *zap.Logger, clock Clock) *Scheduler {
	return &Scheduler{logger: logger, clock: clock}
}

// Defer schedules fn to run once, no earlier than delay from now.
func (s *Scheduler) Defer(delay time.Duration, fn func()) {
	s.logger.Debug("Scheduling deferred callback", zap.Duration("delay", delay))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-s.clock.After(delay)
		fn()
	}()
}

// Wait blocks until every scheduled callback has run. Used on shutdown so
// in-flight settlements finish, and by tests after advancing a fake clock.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
