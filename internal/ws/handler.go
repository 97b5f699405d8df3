package ws

import (
	"log"
	"net/http"
	"strings"

	"worklink/internal/pkg/jwt"
	"worklink/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gorilla/websocket"
)

type Handler struct {
	hub    *Hub
	chat   usecase.ChatUsecase
	jwt    jwt.Service
	logger *log.Logger
}

func NewHandler(hub *Hub, chat usecase.ChatUsecase, jwtSvc jwt.Service, logger *log.Logger) *Handler {
	return &Handler{hub: hub, chat: chat, jwt: jwtSvc, logger: logger}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleChatWS upgrades the connection and starts the client pumps. Browsers
// cannot set headers on websocket requests, so the token also rides the
// `token` query parameter.
func (h *Handler) HandleChatWS(c fiber.Ctx) error {
	if h == nil || h.hub == nil {
		return fiber.ErrServiceUnavailable
	}

	fiberHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := tokenFromRequest(r)
		if tok == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		claims, err := h.jwt.ValidateToken(tok)
		if err != nil || claims.TokenType != jwt.TokenTypeAccess {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			if h.logger != nil {
				h.logger.Printf("[WS] Upgrade failed | err=%v", err)
			}
			return
		}

		client := NewClient(h.hub, conn, h.chat, claims.UserID, h.logger)
		go client.WritePump()
		go client.ReadPump()
	})

	return fiberHandler(c)
}

func tokenFromRequest(r *http.Request) string {
	if tok := strings.TrimSpace(r.URL.Query().Get("token")); tok != "" {
		return tok
	}

	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
