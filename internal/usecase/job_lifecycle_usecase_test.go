package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"worklink/internal/domain/job"
	"worklink/internal/repository"

	"github.com/google/uuid"
)

// memJobRepo backs the lifecycle usecase with an in-memory map whose
// transition methods apply the same compare-and-swap discipline as the
// Postgres implementation: check expected state and mutate under one lock.
type memJobRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]job.Job
}

func newMemJobRepo(jobs ...job.Job) *memJobRepo {
	m := &memJobRepo{jobs: make(map[uuid.UUID]job.Job)}
	for _, j := range jobs {
		m.jobs[j.ID] = j
	}
	return m
}

func (m *memJobRepo) Create(_ context.Context, j job.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[j.ID] = j
	return nil
}

func (m *memJobRepo) GetByID(_ context.Context, id uuid.UUID) (job.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return job.Job{}, repository.ErrNotFound
	}
	return j, nil
}

func (m *memJobRepo) List(_ context.Context, f repository.JobFilter) ([]job.Job, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := make([]job.Job, 0)
	for _, j := range m.jobs {
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		matched = append(matched, j)
	}
	total := len(matched)
	if len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func (m *memJobRepo) cas(id uuid.UUID, ok func(job.Job) bool, mutate func(job.Job) job.Job) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, found := m.jobs[id]
	if !found || !ok(j) {
		return 0
	}
	m.jobs[id] = mutate(j)
	return 1
}

func (m *memJobRepo) MarkRequested(_ context.Context, jobID, workerID uuid.UUID) (int64, error) {
	return m.cas(jobID,
		func(j job.Job) bool { return j.Status == job.StatusPublic },
		func(j job.Job) job.Job {
			w := workerID
			j.Status = job.StatusRequested
			j.RequestedBy = &w
			return j
		}), nil
}

func (m *memJobRepo) Assign(_ context.Context, jobID, workerID uuid.UUID) (int64, error) {
	return m.cas(jobID,
		func(j job.Job) bool {
			return j.Status == job.StatusRequested && j.RequestedBy != nil && *j.RequestedBy == workerID
		},
		func(j job.Job) job.Job {
			w := workerID
			j.Status = job.StatusAssigned
			j.AssignedWorker = &w
			j.RequestedBy = nil
			return j
		}), nil
}

func (m *memJobRepo) MarkInProgress(_ context.Context, jobID, workerID uuid.UUID) (int64, error) {
	return m.cas(jobID,
		func(j job.Job) bool {
			return j.Status == job.StatusAssigned && j.AssignedWorker != nil && *j.AssignedWorker == workerID
		},
		func(j job.Job) job.Job {
			j.Status = job.StatusInProgress
			return j
		}), nil
}

func (m *memJobRepo) ReturnToPublic(_ context.Context, jobID, workerID uuid.UUID) (int64, error) {
	return m.cas(jobID,
		func(j job.Job) bool {
			return j.Status == job.StatusAssigned && j.AssignedWorker != nil && *j.AssignedWorker == workerID
		},
		func(j job.Job) job.Job {
			j.Status = job.StatusPublic
			j.AssignedWorker = nil
			j.RequestedBy = nil
			return j
		}), nil
}

func (m *memJobRepo) MarkCompleted(_ context.Context, jobID uuid.UUID, at time.Time) (int64, error) {
	return m.cas(jobID,
		func(j job.Job) bool { return j.Status == job.StatusInProgress },
		func(j job.Job) job.Job {
			t := at.UTC()
			j.Status = job.StatusCompleted
			j.CompletedAt = &t
			return j
		}), nil
}

func (m *memJobRepo) MarkFailedOverdue(_ context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uuid.UUID
	for id, j := range m.jobs {
		if j.Status == job.StatusCompleted && j.CompletedAt != nil && j.CompletedAt.Before(cutoff) {
			j.Status = job.StatusFailed
			m.jobs[id] = j
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *memJobRepo) DeleteFailed(_ context.Context, jobID, workerID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok || j.Status != job.StatusFailed || j.AssignedWorker == nil || *j.AssignedWorker != workerID {
		return 0, nil
	}
	delete(m.jobs, jobID)
	return 1, nil
}

// spyCache records invalidated patterns; reads always miss.
type spyCache struct {
	mu       sync.Mutex
	patterns []string
}

func (c *spyCache) GetJSON(context.Context, string, any) (bool, error) { return false, nil }
func (c *spyCache) SetJSON(context.Context, string, any, time.Duration) error {
	return nil
}
func (c *spyCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patterns = append(c.patterns, pattern)
	return nil
}

func (c *spyCache) invalidated() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.patterns))
	copy(out, c.patterns)
	return out
}

func newPublicJob(customer uuid.UUID) job.Job {
	return job.Job{
		ID:          uuid.New(),
		Description: "Paint the fence",
		Location:    "Pokhara",
		PostedBy:    job.CustomerRef{ID: customer},
		Status:      job.StatusPublic,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestJobLifecycle_FullWalk(t *testing.T) {
	customer := uuid.New()
	worker := uuid.New()
	j := newPublicJob(customer)
	repo := newMemJobRepo(j)
	uc := NewJobLifecycle(repo, &spyCache{}, 72*time.Hour, nil)
	ctx := context.Background()

	if err := uc.RequestJob(ctx, j.ID, worker); err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := uc.AssignWorker(ctx, j.ID, customer); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := uc.AcceptAssignment(ctx, j.ID, worker); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := uc.CompleteJob(ctx, j.ID, customer); err != nil {
		t.Fatalf("complete: %v", err)
	}

	got, err := uc.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != job.StatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	if got.CompletedAt == nil {
		t.Fatalf("expected completed_at set")
	}

	// Review window elapses; the sweep fails the job.
	n, err := uc.FailOverdueJobs(ctx, got.CompletedAt.Add(73*time.Hour))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 failed job, got %d", n)
	}

	if err := uc.DeleteFailedJob(ctx, j.ID, worker); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := uc.GetJob(ctx, j.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestJobLifecycle_RequestNonPublicFails(t *testing.T) {
	customer := uuid.New()
	w1 := uuid.New()
	w2 := uuid.New()
	j := newPublicJob(customer)
	repo := newMemJobRepo(j)
	uc := NewJobLifecycle(repo, &spyCache{}, 72*time.Hour, nil)
	ctx := context.Background()

	if err := uc.RequestJob(ctx, j.ID, w1); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if err := uc.RequestJob(ctx, j.ID, w2); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	got, _ := uc.GetJob(ctx, j.ID)
	if got.Status != job.StatusRequested || got.RequestedBy == nil || *got.RequestedBy != w1 {
		t.Fatalf("losing request must not change state: %+v", got)
	}
}

func TestJobLifecycle_ConcurrentRequestsExactlyOneWins(t *testing.T) {
	customer := uuid.New()
	j := newPublicJob(customer)
	repo := newMemJobRepo(j)
	uc := NewJobLifecycle(repo, &spyCache{}, 72*time.Hour, nil)
	ctx := context.Background()

	const workers = 8
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- uc.RequestJob(ctx, j.ID, uuid.New())
		}()
	}
	wg.Wait()
	close(errs)

	wins, losses := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrInvalidState):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
	if losses != workers-1 {
		t.Fatalf("expected %d losers, got %d", workers-1, losses)
	}
}

func TestJobLifecycle_AcceptByWrongWorker(t *testing.T) {
	customer := uuid.New()
	worker := uuid.New()
	j := newPublicJob(customer)
	repo := newMemJobRepo(j)
	uc := NewJobLifecycle(repo, &spyCache{}, 72*time.Hour, nil)
	ctx := context.Background()

	_ = uc.RequestJob(ctx, j.ID, worker)
	_ = uc.AssignWorker(ctx, j.ID, customer)

	if err := uc.AcceptAssignment(ctx, j.ID, uuid.New()); !errors.Is(err, ErrNotAssignedToWorker) {
		t.Fatalf("expected ErrNotAssignedToWorker, got %v", err)
	}
	if err := uc.RejectAssignment(ctx, j.ID, uuid.New()); !errors.Is(err, ErrNotAssignedToWorker) {
		t.Fatalf("expected ErrNotAssignedToWorker, got %v", err)
	}
}

func TestJobLifecycle_RejectReturnsToPublic(t *testing.T) {
	customer := uuid.New()
	worker := uuid.New()
	j := newPublicJob(customer)
	repo := newMemJobRepo(j)
	uc := NewJobLifecycle(repo, &spyCache{}, 72*time.Hour, nil)
	ctx := context.Background()

	_ = uc.RequestJob(ctx, j.ID, worker)
	_ = uc.AssignWorker(ctx, j.ID, customer)

	if err := uc.RejectAssignment(ctx, j.ID, worker); err != nil {
		t.Fatalf("reject: %v", err)
	}

	got, _ := uc.GetJob(ctx, j.ID)
	if got.Status != job.StatusPublic || got.AssignedWorker != nil {
		t.Fatalf("expected job back in public pool: %+v", got)
	}

	// A different worker can request it now.
	if err := uc.RequestJob(ctx, j.ID, uuid.New()); err != nil {
		t.Fatalf("re-request: %v", err)
	}
}

func TestJobLifecycle_AssignWorkerAuthorization(t *testing.T) {
	customer := uuid.New()
	worker := uuid.New()
	j := newPublicJob(customer)
	repo := newMemJobRepo(j)
	uc := NewJobLifecycle(repo, &spyCache{}, 72*time.Hour, nil)
	ctx := context.Background()

	_ = uc.RequestJob(ctx, j.ID, worker)

	if err := uc.AssignWorker(ctx, j.ID, uuid.New()); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestJobLifecycle_CompleteOnlyFromInProgress(t *testing.T) {
	customer := uuid.New()
	j := newPublicJob(customer)
	repo := newMemJobRepo(j)
	uc := NewJobLifecycle(repo, &spyCache{}, 72*time.Hour, nil)

	if err := uc.CompleteJob(context.Background(), j.ID, customer); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestJobLifecycle_DeleteFailedAuthorization(t *testing.T) {
	customer := uuid.New()
	worker := uuid.New()
	j := newPublicJob(customer)
	repo := newMemJobRepo(j)
	uc := NewJobLifecycle(repo, &spyCache{}, time.Hour, nil)
	ctx := context.Background()

	_ = uc.RequestJob(ctx, j.ID, worker)
	_ = uc.AssignWorker(ctx, j.ID, customer)
	_ = uc.AcceptAssignment(ctx, j.ID, worker)
	_ = uc.CompleteJob(ctx, j.ID, customer)

	// Not failed yet.
	if err := uc.DeleteFailedJob(ctx, j.ID, worker); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	got, _ := uc.GetJob(ctx, j.ID)
	if _, err := uc.FailOverdueJobs(ctx, got.CompletedAt.Add(2*time.Hour)); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if err := uc.DeleteFailedJob(ctx, j.ID, uuid.New()); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := uc.DeleteFailedJob(ctx, j.ID, worker); err != nil {
		t.Fatalf("delete by assigned worker: %v", err)
	}
}

func TestJobLifecycle_MutationInvalidatesBuckets(t *testing.T) {
	customer := uuid.New()
	worker := uuid.New()
	j := newPublicJob(customer)
	repo := newMemJobRepo(j)
	cache := &spyCache{}
	uc := NewJobLifecycle(repo, cache, 72*time.Hour, nil)
	ctx := context.Background()

	if err := uc.RequestJob(ctx, j.ID, worker); err != nil {
		t.Fatalf("request: %v", err)
	}

	want := map[string]bool{
		JobsBucketPattern("public"):    true,
		JobsBucketPattern("requested"): true,
		JobsBucketPattern(""):          true,
	}
	for _, p := range cache.invalidated() {
		delete(want, p)
	}
	if len(want) != 0 {
		t.Fatalf("missing invalidations: %v", want)
	}
}

func TestJobLifecycle_FailedMutationLeavesCacheUntouched(t *testing.T) {
	customer := uuid.New()
	j := newPublicJob(customer)
	j.Status = job.StatusRequested
	w := uuid.New()
	j.RequestedBy = &w
	repo := newMemJobRepo(j)
	cache := &spyCache{}
	uc := NewJobLifecycle(repo, cache, 72*time.Hour, nil)

	if err := uc.RequestJob(context.Background(), j.ID, uuid.New()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if got := cache.invalidated(); len(got) != 0 {
		t.Fatalf("failed mutation must not invalidate cache, got %v", got)
	}
}

func TestJobLifecycle_ListJobsPagination(t *testing.T) {
	customer := uuid.New()
	repo := newMemJobRepo()
	for i := 0; i < 25; i++ {
		_ = repo.Create(context.Background(), newPublicJob(customer))
	}
	uc := NewJobLifecycle(repo, nil, 72*time.Hour, nil)

	jobs, p, err := uc.ListJobs(context.Background(), repository.JobFilter{Status: job.StatusPublic, Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(jobs) != 10 {
		t.Fatalf("expected 10 jobs, got %d", len(jobs))
	}
	if p.Page != 1 || p.TotalPages != 3 {
		t.Fatalf("unexpected pagination: %+v", p)
	}

	if _, _, err := uc.ListJobs(context.Background(), repository.JobFilter{Limit: 51}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for oversized limit, got %v", err)
	}
}

func TestJobLifecycle_PostJobValidation(t *testing.T) {
	repo := newMemJobRepo()
	uc := NewJobLifecycle(repo, nil, 72*time.Hour, nil)

	if _, err := uc.PostJob(context.Background(), PostJobInput{CustomerID: uuid.New()}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty description, got %v", err)
	}

	created, err := uc.PostJob(context.Background(), PostJobInput{
		CustomerID:  uuid.New(),
		Description: "  Install ceiling fan  ",
		Location:    "Lalitpur",
	})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if created.Status != job.StatusPublic {
		t.Fatalf("new job must be public, got %s", created.Status)
	}
	if created.Description != "Install ceiling fan" {
		t.Fatalf("description not trimmed: %q", created.Description)
	}
}
