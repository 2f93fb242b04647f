// Package scheduler drives the periodic refresh cycle: resolve quotes, value
// the account, record the daily snapshot, publish the result.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/ChangShuKai/Taiwan-Stock-Instant-Trading-System/internal/ledger"
	"github.com/ChangShuKai/Taiwan-Stock-Instant-Trading-System/internal/perflog"
	"github.com/ChangShuKai/Taiwan-Stock-Instant-Trading-System/internal/valuation"

	"go.uber.org/zap"
)

// Scheduler runs one refresh cycle at a time. Cycles execute inline in the
// run loop, so a cycle slower than the interval simply swallows the missed
// ticks instead of overlapping with itself.
type Scheduler struct {
	book     *ledger.Ledger
	engine   *valuation.Engine
	perf     *perflog.Logger
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	watched string
	subs    []chan valuation.Result

	lookupCh chan string
}

func New(book *ledger.Ledger, engine *valuation.Engine, perf *perflog.Logger,
	interval time.Duration, watched string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		book:     book,
		engine:   engine,
		perf:     perf,
		interval: interval,
		watched:  watched,
		logger:   logger,
		lookupCh: make(chan string, 1),
	}
}

// Subscribe returns a channel receiving every cycle result. Slow consumers
// drop results rather than stalling the cycle.
func (s *Scheduler) Subscribe() <-chan valuation.Result {
	ch := make(chan valuation.Result, 1)

	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()

	return ch
}

// Lookup switches the watched symbol and triggers an immediate cycle. If a
// trigger is already pending the symbol still takes effect on that cycle.
func (s *Scheduler) Lookup(symbol string) {
	s.mu.Lock()
	s.watched = symbol
	s.mu.Unlock()

	select {
	case s.lookupCh <- symbol:
	default:
	}
}

// Run executes an immediate first cycle and then loops until ctx is
// cancelled, firing on the refresh interval and on user lookups.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))

	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.runCycle(ctx)
		case symbol := <-s.lookupCh:
			s.logger.Info("lookup triggered", zap.String("symbol", symbol))
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	s.mu.Lock()
	watched := s.watched
	s.mu.Unlock()

	res := s.engine.Valuate(ctx, s.book, watched)

	// Snapshot write failures are reported but never block the cycle.
	if err := s.perf.Record(ctx, res); err != nil {
		s.logger.Error("snapshot write failed", zap.Error(err))
	}

	s.publish(res)
}

func (s *Scheduler) publish(res valuation.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- res:
		default:
		}
	}
}
