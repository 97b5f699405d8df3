package handler

import (
	"worklink/internal/delivery/http/dto"
	"worklink/internal/pkg/imageurl"
	"worklink/internal/pkg/response"
	"worklink/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type ProfessionHandler struct {
	uc    usecase.ProfessionUsecase
	icons *imageurl.Resolver
}

func NewProfessionHandler(uc usecase.ProfessionUsecase, icons *imageurl.Resolver) *ProfessionHandler {
	return &ProfessionHandler{uc: uc, icons: icons}
}

func (h *ProfessionHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Get("/:id", h.Get)
}

func (h *ProfessionHandler) List(c fiber.Ctx) error {
	items, err := h.uc.List(c.Context())
	if err != nil {
		return mapJobUsecaseError(err)
	}

	out := make([]dto.ProfessionResponse, 0, len(items))
	for _, p := range items {
		out = append(out, dto.ProfessionResponse{
			ID:   p.ID,
			Name: p.Name,
			Icon: h.icons.Resolve(p.Icon),
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *ProfessionHandler) Get(c fiber.Ctx) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	p, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.ProfessionResponse{
		ID:   p.ID,
		Name: p.Name,
		Icon: h.icons.Resolve(p.Icon),
	})
}
