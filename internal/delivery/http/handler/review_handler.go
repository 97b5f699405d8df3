package handler

import (
	"time"

	"worklink/internal/delivery/http/dto"
	"worklink/internal/delivery/http/middleware"
	"worklink/internal/pkg/response"
	"worklink/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type ReviewHandler struct {
	uc usecase.ReviewUsecase
}

type submitReviewRequest struct {
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

func NewReviewHandler(uc usecase.ReviewUsecase) *ReviewHandler {
	return &ReviewHandler{uc: uc}
}

// RegisterJobRoutes mounts the job-scoped review endpoints on the shared
// /jobs group.
func (h *ReviewHandler) RegisterJobRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/:id/review", h.Submit)
	r.Get("/:id/review", h.Get)
	r.Get("/:id/review/overdue", h.Overdue)
}

// RegisterReviewRoutes mounts the review-id endpoints on the /reviews group.
func (h *ReviewHandler) RegisterReviewRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Delete("/:id", h.Delete)
}

func (h *ReviewHandler) Submit(c fiber.Ctx) error {
	customerID, ok := currentUserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req submitReviewRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	rv, err := h.uc.SubmitReview(c.Context(), usecase.SubmitReviewInput{
		JobID:      jobID,
		CustomerID: customerID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Review submitted", dto.NewReviewResponse(rv))
}

func (h *ReviewHandler) Get(c fiber.Ctx) error {
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	rv, err := h.uc.GetJobReview(c.Context(), jobID)
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewReviewResponse(rv))
}

func (h *ReviewHandler) Overdue(c fiber.Ctx) error {
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	overdue, err := h.uc.IsOverdueForReview(c.Context(), jobID, time.Now())
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, map[string]any{"overdue": overdue})
}

func (h *ReviewHandler) Delete(c fiber.Ctx) error {
	actorID, ok := currentUserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	reviewID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.DeleteReview(c.Context(), reviewID, actorID); err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Review deleted", nil)
}
