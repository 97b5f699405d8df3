package dto

import (
	"time"

	"worklink/internal/domain/review"

	"github.com/google/uuid"
)

type ReviewResponse struct {
	ID         uuid.UUID `json:"id"`
	JobID      uuid.UUID `json:"jobId"`
	CustomerID uuid.UUID `json:"customerId"`
	Rating     float64   `json:"rating"`
	// DisplayRating is the half-step rounded value the star widget renders.
	DisplayRating float64   `json:"displayRating"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func NewReviewResponse(rv review.Review) ReviewResponse {
	return ReviewResponse{
		ID:            rv.ID,
		JobID:         rv.JobID,
		CustomerID:    rv.CustomerID,
		Rating:        rv.Rating,
		DisplayRating: review.DisplayRating(rv.Rating),
		Comment:       rv.Comment,
		CreatedAt:     rv.CreatedAt,
	}
}
