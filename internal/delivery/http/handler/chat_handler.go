package handler

import (
	"worklink/internal/delivery/http/middleware"
	"worklink/internal/pkg/response"
	"worklink/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// ChatHandler serves the durable side of the per-job channel: the ascending
// message history a client refetches after (re)connecting its socket.
type ChatHandler struct {
	uc usecase.ChatUsecase
}

func NewChatHandler(uc usecase.ChatUsecase) *ChatHandler {
	return &ChatHandler{uc: uc}
}

func (h *ChatHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/:id/chat", h.History)
}

func (h *ChatHandler) History(c fiber.Ctx) error {
	callerID, ok := currentUserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	msgs, err := h.uc.History(c.Context(), jobID, callerID)
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, msgs)
}
