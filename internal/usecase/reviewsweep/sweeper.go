package reviewsweep

import (
	"context"
	"log"
	"time"
)

// overdueFailer is the slice of the job lifecycle the sweeper drives.
type overdueFailer interface {
	FailOverdueJobs(ctx context.Context, now time.Time) (int, error)
}

// locker lets one instance win each sweep round when several replicas run.
// A nil locker means sweep unconditionally.
type locker interface {
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
}

const lockKey = "jobs:review_sweep:lock"

// Sweeper periodically fails completed jobs whose review window elapsed with
// no review. It stands in for the external scheduler the rating policy
// assumes: ask the customer to rate before the deadline, otherwise the job
// is marked failed.
type Sweeper struct {
	jobs     overdueFailer
	lock     locker
	interval time.Duration
	logger   *log.Logger
	now      func() time.Time
}

func New(jobs overdueFailer, lock locker, interval time.Duration, logger *log.Logger) *Sweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Sweeper{
		jobs:     jobs,
		lock:     lock,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run blocks until ctx is done, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if s.lock != nil {
		ok, err := s.lock.SetIfNotExists(ctx, lockKey, "1", s.interval/2)
		if err == nil && !ok {
			return
		}
	}

	n, err := s.jobs.FailOverdueJobs(ctx, s.now())
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("[ReviewSweep] Sweep failed | err=%v", err)
		}
		return
	}
	if n > 0 && s.logger != nil {
		s.logger.Printf("[ReviewSweep] Jobs failed for missing review | count=%d", n)
	}
}
