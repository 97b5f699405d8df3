package review

import (
	"errors"
	"math"
	"strings"
	"time"

	"worklink/internal/domain/job"

	"github.com/google/uuid"
)

const (
	MinRating = 0.0
	MaxRating = 5.0

	maxCommentLen = 1000
)

var (
	ErrRatingOutOfRange = errors.New("rating out of range")
	ErrCommentTooLong   = errors.New("comment too long")
)

// Review is a customer's rating of a completed job. A job carries at most one.
type Review struct {
	ID         uuid.UUID
	JobID      uuid.UUID
	CustomerID uuid.UUID
	Rating     float64
	Comment    string
	CreatedAt  time.Time
}

// ValidateRating accepts any float in [0,5]. Half-step granularity is a
// rendering concern, so values like 3.7 are stored as given.
func ValidateRating(rating float64) error {
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		return ErrRatingOutOfRange
	}
	if rating < MinRating || rating > MaxRating {
		return ErrRatingOutOfRange
	}
	return nil
}

func ValidateComment(comment string) error {
	if len(strings.TrimSpace(comment)) > maxCommentLen {
		return ErrCommentTooLong
	}
	return nil
}

// DisplayRating rounds to the nearest half step for star rendering.
func DisplayRating(rating float64) float64 {
	return math.Round(rating*2) / 2
}

// IsOverdueForReview reports whether a completed job has gone unreviewed past
// the deadline. Once true it stays true until a review attaches; hasReview
// flips it off. Jobs that never completed are never overdue.
func IsOverdueForReview(j job.Job, hasReview bool, now time.Time, deadline time.Duration) bool {
	if j.Status != job.StatusCompleted {
		return false
	}
	if hasReview {
		return false
	}
	if j.CompletedAt == nil {
		return false
	}
	return now.Sub(*j.CompletedAt) > deadline
}
