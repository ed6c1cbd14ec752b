package gateway

import (
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Sweeper runs periodic maintenance on a cron schedule: it flushes the
// offline queue so queued requests are retried even when no new
// enqueues arrive, and prunes idle rate-limit windows to keep the
// category map bounded.
type Sweeper struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	running bool
}

func newSweeper(schedule string, c *Client, logger *slog.Logger) (*Sweeper, error) {
	s := &Sweeper{
		cron:   cron.New(),
		logger: logger.With("component", "sweeper"),
	}

	_, err := s.cron.AddFunc(schedule, func() {
		c.queue.Flush()
		pruned := c.limiter.PruneIdle(c.cfg.Queue.PruneIdleAfter)
		s.logger.Debug("maintenance sweep complete",
			"queue_depth", c.queue.Len(),
			"pruned_windows", pruned,
		)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins scheduled sweeps. It is a no-op if already running.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
	s.logger.Info("maintenance sweeper started")
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info("maintenance sweeper stopped")
}
