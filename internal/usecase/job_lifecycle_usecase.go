package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"worklink/internal/domain/job"
	"worklink/internal/repository"

	"github.com/google/uuid"
)

const listCacheTTL = 60 * time.Second

type Pagination struct {
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
}

type PostJobInput struct {
	CustomerID   uuid.UUID
	ProfessionID *uuid.UUID
	Description  string
	Location     string
	Date         string
	Time         string
}

type JobLifecycleUsecase interface {
	PostJob(ctx context.Context, in PostJobInput) (job.Job, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (job.Job, error)
	ListJobs(ctx context.Context, f repository.JobFilter) ([]job.Job, Pagination, error)
	RequestJob(ctx context.Context, jobID, workerID uuid.UUID) error
	AssignWorker(ctx context.Context, jobID, customerID uuid.UUID) error
	AcceptAssignment(ctx context.Context, jobID, workerID uuid.UUID) error
	RejectAssignment(ctx context.Context, jobID, workerID uuid.UUID) error
	CompleteJob(ctx context.Context, jobID, callerID uuid.UUID) error
	FailOverdueJobs(ctx context.Context, now time.Time) (int, error)
	DeleteFailedJob(ctx context.Context, jobID, workerID uuid.UUID) error
}

// JobLifecycle enforces the job state machine. All transition writes go
// through the repository's conditional updates, so concurrent callers are
// serialized by the store rather than by anything in this process.
type JobLifecycle struct {
	jobs           repository.JobRepository
	cache          ListCache
	reviewDeadline time.Duration
	logger         *log.Logger
	now            func() time.Time
}

func NewJobLifecycle(jobs repository.JobRepository, cache ListCache, reviewDeadline time.Duration, logger *log.Logger) *JobLifecycle {
	return &JobLifecycle{
		jobs:           jobs,
		cache:          cache,
		reviewDeadline: reviewDeadline,
		logger:         logger,
		now:            time.Now,
	}
}

func (u *JobLifecycle) PostJob(ctx context.Context, in PostJobInput) (job.Job, error) {
	if strings.TrimSpace(in.Description) == "" {
		return job.Job{}, ErrValidation
	}
	if in.CustomerID == uuid.Nil {
		return job.Job{}, ErrValidation
	}

	j := job.Job{
		ID:          uuid.New(),
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		Date:        strings.TrimSpace(in.Date),
		Time:        strings.TrimSpace(in.Time),
		PostedBy:    job.CustomerRef{ID: in.CustomerID},
		Status:      job.StatusPublic,
		CreatedAt:   u.now().UTC(),
	}
	if in.ProfessionID != nil {
		j.Profession.ID = *in.ProfessionID
	}

	if err := u.jobs.Create(ctx, j); err != nil {
		return job.Job{}, ErrInternal
	}

	u.invalidateBuckets(ctx, job.StatusPublic)

	created, err := u.jobs.GetByID(ctx, j.ID)
	if err != nil {
		return job.Job{}, ErrInternal
	}
	return created, nil
}

func (u *JobLifecycle) GetJob(ctx context.Context, jobID uuid.UUID) (job.Job, error) {
	j, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return job.Job{}, ErrNotFound
		}
		return job.Job{}, ErrInternal
	}
	return j, nil
}

type cachedJobList struct {
	Jobs       []job.Job  `json:"jobs"`
	Pagination Pagination `json:"pagination"`
}

func (u *JobLifecycle) ListJobs(ctx context.Context, f repository.JobFilter) ([]job.Job, Pagination, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 10
	}
	if f.Limit > 50 {
		return nil, Pagination{}, ErrValidation
	}

	key := JobsListCacheKey(f)
	if u.cache != nil {
		var cached cachedJobList
		hit, err := u.cache.GetJSON(ctx, key, &cached)
		if err == nil && hit {
			return cached.Jobs, cached.Pagination, nil
		}
	}

	jobs, total, err := u.jobs.List(ctx, f)
	if err != nil {
		return nil, Pagination{}, ErrInternal
	}

	totalPages := (total + f.Limit - 1) / f.Limit
	if totalPages == 0 {
		totalPages = 1
	}
	p := Pagination{Page: f.Page, TotalPages: totalPages}

	if u.cache != nil {
		_ = u.cache.SetJSON(ctx, key, cachedJobList{Jobs: jobs, Pagination: p}, listCacheTTL)
	}
	return jobs, p, nil
}

func (u *JobLifecycle) RequestJob(ctx context.Context, jobID, workerID uuid.UUID) error {
	n, err := u.jobs.MarkRequested(ctx, jobID, workerID)
	if err != nil {
		return ErrInternal
	}
	if n == 0 {
		return u.classifyMiss(ctx, jobID, job.StatusPublic, nil)
	}

	u.invalidateBuckets(ctx, job.StatusPublic, job.StatusRequested)
	return nil
}

func (u *JobLifecycle) AssignWorker(ctx context.Context, jobID, customerID uuid.UUID) error {
	j, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}
	if j.PostedBy.ID != customerID {
		return ErrNotOwner
	}
	if j.Status != job.StatusRequested || j.RequestedBy == nil {
		return ErrInvalidState
	}

	n, err := u.jobs.Assign(ctx, jobID, *j.RequestedBy)
	if err != nil {
		return ErrInternal
	}
	if n == 0 {
		// The requester changed or the job moved between read and write.
		return u.classifyMiss(ctx, jobID, job.StatusRequested, nil)
	}

	u.invalidateBuckets(ctx, job.StatusRequested, job.StatusAssigned)
	return nil
}

func (u *JobLifecycle) AcceptAssignment(ctx context.Context, jobID, workerID uuid.UUID) error {
	n, err := u.jobs.MarkInProgress(ctx, jobID, workerID)
	if err != nil {
		return ErrInternal
	}
	if n == 0 {
		return u.classifyMiss(ctx, jobID, job.StatusAssigned, &workerID)
	}

	u.invalidateBuckets(ctx, job.StatusAssigned, job.StatusInProgress)
	return nil
}

func (u *JobLifecycle) RejectAssignment(ctx context.Context, jobID, workerID uuid.UUID) error {
	n, err := u.jobs.ReturnToPublic(ctx, jobID, workerID)
	if err != nil {
		return ErrInternal
	}
	if n == 0 {
		return u.classifyMiss(ctx, jobID, job.StatusAssigned, &workerID)
	}

	u.invalidateBuckets(ctx, job.StatusAssigned, job.StatusPublic)
	return nil
}

func (u *JobLifecycle) CompleteJob(ctx context.Context, jobID, callerID uuid.UUID) error {
	j, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}

	isCustomer := j.PostedBy.ID == callerID
	isWorker := j.AssignedWorker != nil && *j.AssignedWorker == callerID
	if !isCustomer && !isWorker {
		return ErrNotOwner
	}

	n, err := u.jobs.MarkCompleted(ctx, jobID, u.now())
	if err != nil {
		return ErrInternal
	}
	if n == 0 {
		return u.classifyMiss(ctx, jobID, job.StatusInProgress, nil)
	}

	u.invalidateBuckets(ctx, job.StatusInProgress, job.StatusCompleted)
	return nil
}

// FailOverdueJobs drives Completed -> Failed for every job whose review
// window elapsed with no review. Returns how many jobs were failed.
func (u *JobLifecycle) FailOverdueJobs(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-u.reviewDeadline)
	ids, err := u.jobs.MarkFailedOverdue(ctx, cutoff)
	if err != nil {
		return 0, ErrInternal
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if u.logger != nil {
		u.logger.Printf("[Jobs] Overdue sweep failed jobs | count=%d cutoff=%s", len(ids), cutoff.UTC().Format(time.RFC3339))
	}
	u.invalidateBuckets(ctx, job.StatusCompleted, job.StatusFailed)
	return len(ids), nil
}

func (u *JobLifecycle) DeleteFailedJob(ctx context.Context, jobID, workerID uuid.UUID) error {
	n, err := u.jobs.DeleteFailed(ctx, jobID, workerID)
	if err != nil {
		return ErrInternal
	}
	if n == 0 {
		j, err := u.jobs.GetByID(ctx, jobID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return ErrInternal
		}
		if j.Status != job.StatusFailed {
			return ErrInvalidState
		}
		return ErrNotOwner
	}

	u.invalidateBuckets(ctx, job.StatusFailed)
	return nil
}

// classifyMiss turns a zero-row conditional write into the precise error:
// the job is gone, in the wrong state, or assigned to somebody else.
func (u *JobLifecycle) classifyMiss(ctx context.Context, jobID uuid.UUID, expected job.Status, worker *uuid.UUID) error {
	j, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}
	if j.Status != expected {
		return ErrInvalidState
	}
	if worker != nil && (j.AssignedWorker == nil || *j.AssignedWorker != *worker) {
		return ErrNotAssignedToWorker
	}
	return ErrInvalidState
}

// invalidateBuckets drops cached list pages for the touched state buckets.
// Only called after a successful write, so a failed mutation never disturbs
// what readers currently see.
func (u *JobLifecycle) invalidateBuckets(ctx context.Context, statuses ...job.Status) {
	if u.cache == nil {
		return
	}
	patterns := make([]string, 0, len(statuses)+1)
	for _, s := range statuses {
		patterns = append(patterns, JobsBucketPattern(string(s)))
	}
	patterns = append(patterns, JobsBucketPattern(""))

	for _, p := range patterns {
		if err := u.cache.DeleteByPattern(ctx, p); err != nil && u.logger != nil {
			u.logger.Printf("[Jobs] Cache invalidation failed | pattern=%s err=%v", p, err)
		}
	}
}
