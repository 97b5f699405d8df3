package reviewsweep

import (
	"context"
	"sync"
	"testing"
	"time"
)

type countingFailer struct {
	mu    sync.Mutex
	calls int
}

func (f *countingFailer) FailOverdueJobs(context.Context, time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return 0, nil
}

func (f *countingFailer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type deniedLock struct{}

func (deniedLock) SetIfNotExists(context.Context, string, string, time.Duration) (bool, error) {
	return false, nil
}

func TestSweeperRunsUntilCancelled(t *testing.T) {
	failer := &countingFailer{}
	s := New(failer, nil, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for failer.count() < 2 {
		select {
		case <-deadline:
			t.Fatal("sweeper never ticked")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}
}

func TestSweeperSkipsWhenLockHeld(t *testing.T) {
	failer := &countingFailer{}
	s := New(failer, deniedLock{}, time.Minute, nil)

	s.sweep(context.Background())
	if failer.count() != 0 {
		t.Fatalf("expected sweep to be skipped while another instance holds the lock")
	}
}
