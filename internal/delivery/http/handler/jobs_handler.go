package handler

import (
	"strconv"
	"strings"

	"worklink/internal/delivery/http/dto"
	"worklink/internal/delivery/http/middleware"
	"worklink/internal/domain/job"
	"worklink/internal/pkg/imageurl"
	"worklink/internal/pkg/response"
	"worklink/internal/repository"
	"worklink/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// WorkerJobsHandler is the worker-facing job surface: browse the public pool,
// request, accept or reject an assignment, and clean up failed jobs.
type WorkerJobsHandler struct {
	uc    usecase.JobLifecycleUsecase
	icons *imageurl.Resolver
}

func NewWorkerJobsHandler(uc usecase.JobLifecycleUsecase, icons *imageurl.Resolver) *WorkerJobsHandler {
	return &WorkerJobsHandler{uc: uc, icons: icons}
}

func (h *WorkerJobsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/public", h.ListPublic)
	r.Get("/requested", h.ListRequested)
	r.Get("/assigned", h.listMineByStatus(job.StatusAssigned))
	r.Get("/in-progress", h.listMineByStatus(job.StatusInProgress))
	r.Get("/completed", h.listMineByStatus(job.StatusCompleted))
	r.Get("/failed", h.listMineByStatus(job.StatusFailed))

	r.Post("/:id/request", h.Request)
	r.Post("/:id/accept", h.Accept)
	r.Post("/:id/reject", h.Reject)
	r.Delete("/:id", h.DeleteFailed)
}

func (h *WorkerJobsHandler) ListPublic(c fiber.Ctx) error {
	f, err := jobFilterFromQuery(c)
	if err != nil {
		return err
	}
	f.Status = job.StatusPublic

	jobs, p, err := h.uc.ListJobs(c.Context(), f)
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.Paginated{
		Data:       dto.NewJobResponses(jobs, h.icons),
		Pagination: p,
	})
}

func (h *WorkerJobsHandler) ListRequested(c fiber.Ctx) error {
	workerID, ok := currentUserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	f, err := jobFilterFromQuery(c)
	if err != nil {
		return err
	}
	f.Status = job.StatusRequested
	f.RequestedBy = &workerID

	jobs, p, err := h.uc.ListJobs(c.Context(), f)
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.Paginated{
		Data:       dto.NewJobResponses(jobs, h.icons),
		Pagination: p,
	})
}

func (h *WorkerJobsHandler) listMineByStatus(status job.Status) fiber.Handler {
	return func(c fiber.Ctx) error {
		workerID, ok := currentUserID(c)
		if !ok {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}

		f, err := jobFilterFromQuery(c)
		if err != nil {
			return err
		}
		f.Status = status
		f.AssignedWorker = &workerID

		jobs, p, err := h.uc.ListJobs(c.Context(), f)
		if err != nil {
			return mapJobUsecaseError(err)
		}
		return response.Success(c, fiber.StatusOK, response.MessageOK, dto.Paginated{
			Data:       dto.NewJobResponses(jobs, h.icons),
			Pagination: p,
		})
	}
}

func (h *WorkerJobsHandler) Request(c fiber.Ctx) error {
	workerID, ok := currentUserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.RequestJob(c.Context(), jobID, workerID); err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Job requested", nil)
}

func (h *WorkerJobsHandler) Accept(c fiber.Ctx) error {
	workerID, ok := currentUserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.AcceptAssignment(c.Context(), jobID, workerID); err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Job accepted", nil)
}

func (h *WorkerJobsHandler) Reject(c fiber.Ctx) error {
	workerID, ok := currentUserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.RejectAssignment(c.Context(), jobID, workerID); err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Job rejected", nil)
}

func (h *WorkerJobsHandler) DeleteFailed(c fiber.Ctx) error {
	workerID, ok := currentUserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.DeleteFailedJob(c.Context(), jobID, workerID); err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Job deleted", nil)
}

func jobFilterFromQuery(c fiber.Ctx) (repository.JobFilter, error) {
	page, err := parseQueryIntStrict(c, "page", 1)
	if err != nil {
		return repository.JobFilter{}, middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	limit, err := parseQueryIntStrict(c, "limit", 10)
	if err != nil {
		return repository.JobFilter{}, middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	f := repository.JobFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Location: strings.TrimSpace(c.Query("location")),
		Page:     page,
		Limit:    limit,
	}

	if raw := strings.TrimSpace(c.Query("profession_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return repository.JobFilter{}, middleware.NewAppError(fiber.StatusBadRequest, "Invalid profession_id", nil, err)
		}
		f.ProfessionID = &id
	}

	return f, nil
}

func parseQueryIntStrict(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return v, nil
}
