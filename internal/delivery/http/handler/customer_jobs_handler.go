package handler

import (
	"strings"

	"worklink/internal/delivery/http/dto"
	"worklink/internal/delivery/http/middleware"
	"worklink/internal/domain/job"
	"worklink/internal/pkg/imageurl"
	"worklink/internal/pkg/response"
	"worklink/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// CustomerJobsHandler is the customer-facing surface: post a job, pick the
// requesting worker, and confirm completion.
type CustomerJobsHandler struct {
	uc    usecase.JobLifecycleUsecase
	icons *imageurl.Resolver
}

type postJobRequest struct {
	ProfessionID *uuid.UUID `json:"professionId"`
	Description  string     `json:"description"`
	Location     string     `json:"location"`
	Date         string     `json:"date"`
	Time         string     `json:"time"`
}

func NewCustomerJobsHandler(uc usecase.JobLifecycleUsecase, icons *imageurl.Resolver) *CustomerJobsHandler {
	return &CustomerJobsHandler{uc: uc, icons: icons}
}

func (h *CustomerJobsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/", h.Post)
	r.Get("/", h.ListMine)
	r.Post("/:id/assign", h.Assign)
	r.Post("/:id/complete", h.Complete)
}

func (h *CustomerJobsHandler) Post(c fiber.Ctx) error {
	customerID, ok := currentUserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req postJobRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	j, err := h.uc.PostJob(c.Context(), usecase.PostJobInput{
		CustomerID:   customerID,
		ProfessionID: req.ProfessionID,
		Description:  req.Description,
		Location:     req.Location,
		Date:         req.Date,
		Time:         req.Time,
	})
	if err != nil {
		return mapJobUsecaseError(err)
	}

	return response.Success(c, fiber.StatusCreated, "Job posted", dto.NewJobResponse(j, h.icons))
}

func (h *CustomerJobsHandler) ListMine(c fiber.Ctx) error {
	customerID, ok := currentUserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	f, err := jobFilterFromQuery(c)
	if err != nil {
		return err
	}
	f.PostedBy = &customerID

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		st, err := job.ParseStatus(raw)
		if err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid status", nil, err)
		}
		f.Status = st
	}

	jobs, p, err := h.uc.ListJobs(c.Context(), f)
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.Paginated{
		Data:       dto.NewJobResponses(jobs, h.icons),
		Pagination: p,
	})
}

func (h *CustomerJobsHandler) Assign(c fiber.Ctx) error {
	customerID, ok := currentUserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.AssignWorker(c.Context(), jobID, customerID); err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Worker assigned", nil)
}

func (h *CustomerJobsHandler) Complete(c fiber.Ctx) error {
	customerID, ok := currentUserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.CompleteJob(c.Context(), jobID, customerID); err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Job completed", nil)
}
