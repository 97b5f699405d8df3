package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"worklink/internal/config"
	"worklink/internal/domain/job"
	"worklink/internal/domain/review"
	"worklink/internal/repository"

	"github.com/google/uuid"
)

type SubmitReviewInput struct {
	JobID      uuid.UUID
	CustomerID uuid.UUID
	Rating     float64
	Comment    string
}

type ReviewUsecase interface {
	SubmitReview(ctx context.Context, in SubmitReviewInput) (review.Review, error)
	GetJobReview(ctx context.Context, jobID uuid.UUID) (review.Review, error)
	DeleteReview(ctx context.Context, reviewID, actorID uuid.UUID) error
	IsOverdueForReview(ctx context.Context, jobID uuid.UUID, now time.Time) (bool, error)
}

// Reviews attaches at most one rating to a completed job. The delete policy
// is configurable because the product exposes deletion from the worker side,
// which is the inverse of the usual author-only rule.
type Reviews struct {
	reviews      repository.ReviewRepository
	jobs         repository.JobRepository
	cache        ListCache
	deadline     time.Duration
	deletePolicy config.ReviewDeletePolicy
	logger       *log.Logger
	now          func() time.Time
}

func NewReviews(reviews repository.ReviewRepository, jobs repository.JobRepository, cache ListCache, cfg config.ReviewConfig, logger *log.Logger) *Reviews {
	return &Reviews{
		reviews:      reviews,
		jobs:         jobs,
		cache:        cache,
		deadline:     cfg.Deadline,
		deletePolicy: cfg.DeletePolicy,
		logger:       logger,
		now:          time.Now,
	}
}

func (u *Reviews) SubmitReview(ctx context.Context, in SubmitReviewInput) (review.Review, error) {
	if err := review.ValidateRating(in.Rating); err != nil {
		return review.Review{}, ErrValidation
	}
	if err := review.ValidateComment(in.Comment); err != nil {
		return review.Review{}, ErrValidation
	}

	j, err := u.jobs.GetByID(ctx, in.JobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return review.Review{}, ErrNotFound
		}
		return review.Review{}, ErrInternal
	}
	if j.PostedBy.ID != in.CustomerID {
		return review.Review{}, ErrNotOwner
	}
	if j.Status != job.StatusCompleted {
		return review.Review{}, ErrInvalidState
	}

	rv := review.Review{
		ID:         uuid.New(),
		JobID:      in.JobID,
		CustomerID: in.CustomerID,
		Rating:     in.Rating,
		Comment:    strings.TrimSpace(in.Comment),
		CreatedAt:  u.now().UTC(),
	}

	// The unique constraint decides the winner if two submissions race; the
	// conditional insert loses on purpose if the overdue sweep failed the job
	// between the status read above and this write.
	n, err := u.reviews.Create(ctx, rv)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return review.Review{}, ErrAlreadyReviewed
		}
		return review.Review{}, ErrInternal
	}
	if n == 0 {
		if _, err := u.jobs.GetByID(ctx, in.JobID); errors.Is(err, repository.ErrNotFound) {
			return review.Review{}, ErrNotFound
		}
		return review.Review{}, ErrInvalidState
	}

	if u.cache != nil {
		_ = u.cache.DeleteByPattern(ctx, JobsBucketPattern(string(job.StatusCompleted)))
		_ = u.cache.DeleteByPattern(ctx, JobsBucketPattern(""))
	}
	return rv, nil
}

func (u *Reviews) GetJobReview(ctx context.Context, jobID uuid.UUID) (review.Review, error) {
	rv, err := u.reviews.GetByJobID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return review.Review{}, ErrNotFound
		}
		return review.Review{}, ErrInternal
	}
	return rv, nil
}

func (u *Reviews) DeleteReview(ctx context.Context, reviewID, actorID uuid.UUID) error {
	rv, err := u.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}

	allowed := false
	switch u.deletePolicy {
	case config.ReviewDeleteByAuthor:
		allowed = rv.CustomerID == actorID
	default:
		// Worker policy: the worker the reviewed job was assigned to may
		// remove the review received on it.
		j, err := u.jobs.GetByID(ctx, rv.JobID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return ErrInternal
		}
		allowed = j.AssignedWorker != nil && *j.AssignedWorker == actorID
	}
	if !allowed {
		return ErrNotOwner
	}

	n, err := u.reviews.Delete(ctx, reviewID)
	if err != nil {
		return ErrInternal
	}
	if n == 0 {
		return ErrNotFound
	}

	if u.logger != nil {
		u.logger.Printf("[Reviews] Review deleted | review_id=%s actor_id=%s policy=%s", reviewID, actorID, u.deletePolicy)
	}
	return nil
}

// IsOverdueForReview reports whether the job's review window elapsed with no
// review. The sweep uses the bulk repository query instead; this predicate
// serves single-job checks from the API.
func (u *Reviews) IsOverdueForReview(ctx context.Context, jobID uuid.UUID, now time.Time) (bool, error) {
	j, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrNotFound
		}
		return false, ErrInternal
	}

	hasReview, err := u.reviews.ExistsForJob(ctx, jobID)
	if err != nil {
		return false, ErrInternal
	}

	return review.IsOverdueForReview(j, hasReview, now, u.deadline), nil
}
