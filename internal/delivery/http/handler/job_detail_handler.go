package handler

import (
	"worklink/internal/delivery/http/dto"
	"worklink/internal/pkg/imageurl"
	"worklink/internal/pkg/response"
	"worklink/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// JobDetailHandler serves single-job reads shared by both roles.
type JobDetailHandler struct {
	uc    usecase.JobLifecycleUsecase
	icons *imageurl.Resolver
}

func NewJobDetailHandler(uc usecase.JobLifecycleUsecase, icons *imageurl.Resolver) *JobDetailHandler {
	return &JobDetailHandler{uc: uc, icons: icons}
}

func (h *JobDetailHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/:id", h.Get)
}

func (h *JobDetailHandler) Get(c fiber.Ctx) error {
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	j, err := h.uc.GetJob(c.Context(), jobID)
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJobResponse(j, h.icons))
}
