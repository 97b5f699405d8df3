package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"worklink/internal/usecase"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
)

const (
	eventJoinRoom    = "joinRoom"
	eventLeaveRoom   = "leaveRoom"
	eventSendMessage = "sendMessage"
	eventError       = "error"
)

type clientEvent struct {
	Type    string    `json:"type"`
	JobID   uuid.UUID `json:"jobId"`
	Content string    `json:"content,omitempty"`
}

type errorEvent struct {
	Type    string    `json:"type"`
	JobID   uuid.UUID `json:"jobId,omitempty"`
	Message string    `json:"message"`
}

// Client is one websocket connection owned by an authenticated user. The read
// pump turns client events into usecase calls; the write pump drains send.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	chat   usecase.ChatUsecase
	logger *log.Logger

	userID uuid.UUID
	send   chan []byte

	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, chat usecase.ChatUsecase, userID uuid.UUID, logger *log.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		chat:   chat,
		logger: logger,
		userID: userID,
		send:   make(chan []byte, 256),
	}
}

// closeSend closes the send channel exactly once. A client can reach the
// hub's unregister path twice (slow-consumer drop plus read pump teardown),
// so the close must be idempotent.
func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && c.logger != nil {
				c.logger.Printf("[WS] Read error | user_id=%s err=%v", c.userID, err)
			}
			return
		}

		var evt clientEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			c.sendError(uuid.Nil, "malformed event")
			continue
		}
		c.handleEvent(evt)
	}
}

func (c *Client) handleEvent(evt clientEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch evt.Type {
	case eventJoinRoom:
		if err := c.chat.CanAccess(ctx, evt.JobID, c.userID); err != nil {
			c.sendError(evt.JobID, joinErrorMessage(err))
			return
		}
		c.hub.Join(c, evt.JobID)

	case eventLeaveRoom:
		c.hub.Leave(c, evt.JobID)

	case eventSendMessage:
		// Persistence happens inside the usecase before the hub broadcast,
		// so the sender sees its own message come back through the room.
		if _, err := c.chat.SendMessage(ctx, evt.JobID, c.userID, evt.Content); err != nil {
			c.sendError(evt.JobID, sendErrorMessage(err))
		}

	default:
		c.sendError(evt.JobID, "unknown event type")
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) sendError(jobID uuid.UUID, message string) {
	b, err := json.Marshal(errorEvent{Type: eventError, JobID: jobID, Message: message})
	if err != nil {
		return
	}
	select {
	case c.send <- b:
	default:
	}
}

func joinErrorMessage(err error) string {
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		return "job not found"
	case errors.Is(err, usecase.ErrNotOwner):
		return "not a participant of this job"
	default:
		return "unable to join room"
	}
}

func sendErrorMessage(err error) string {
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		return "job not found"
	case errors.Is(err, usecase.ErrNotOwner):
		return "not a participant of this job"
	case errors.Is(err, usecase.ErrInvalidState):
		return "chat is closed for this job"
	case errors.Is(err, usecase.ErrValidation):
		return "invalid message content"
	default:
		return "unable to send message"
	}
}
