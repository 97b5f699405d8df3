package ws

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
)

type subscription struct {
	client *Client
	jobID  uuid.UUID
}

type roomMessage struct {
	jobID   uuid.UUID
	payload []byte
}

// Hub multiplexes one room per job. A client subscribes to the rooms of the
// jobs it participates in; a broadcast reaches only that room. All room map
// mutation happens on the Run goroutine.
type Hub struct {
	rooms       map[uuid.UUID]map[*Client]bool
	clientRooms map[*Client]map[uuid.UUID]bool

	join       chan subscription
	leave      chan subscription
	unregister chan *Client
	broadcast  chan roomMessage

	mutex  sync.RWMutex
	logger *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		rooms:       make(map[uuid.UUID]map[*Client]bool),
		clientRooms: make(map[*Client]map[uuid.UUID]bool),
		join:        make(chan subscription, 128),
		leave:       make(chan subscription, 128),
		unregister:  make(chan *Client, 128),
		broadcast:   make(chan roomMessage, 1024),
		logger:      logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case sub := <-h.join:
			if sub.client == nil {
				continue
			}
			h.mutex.Lock()
			room, ok := h.rooms[sub.jobID]
			if !ok {
				room = make(map[*Client]bool)
				h.rooms[sub.jobID] = room
			}
			room[sub.client] = true
			joined, ok := h.clientRooms[sub.client]
			if !ok {
				joined = make(map[uuid.UUID]bool)
				h.clientRooms[sub.client] = joined
			}
			joined[sub.jobID] = true
			size := len(room)
			h.mutex.Unlock()
			if h.logger != nil {
				h.logger.Printf("[WS] Room joined | job_id=%s room_size=%d", sub.jobID, size)
			}

		case sub := <-h.leave:
			if sub.client == nil {
				continue
			}
			h.mutex.Lock()
			h.dropFromRoom(sub.client, sub.jobID)
			h.mutex.Unlock()

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			for jobID := range h.clientRooms[client] {
				h.dropFromRoom(client, jobID)
			}
			delete(h.clientRooms, client)
			h.mutex.Unlock()
			client.closeSend()
			if h.logger != nil {
				h.logger.Printf("[WS] Client disconnected | user_id=%s", client.userID)
			}

		case msg := <-h.broadcast:
			h.mutex.RLock()
			targets := make([]*Client, 0, len(h.rooms[msg.jobID]))
			for c := range h.rooms[msg.jobID] {
				targets = append(targets, c)
			}
			h.mutex.RUnlock()

			for _, client := range targets {
				select {
				case client.send <- msg.payload:
				default:
					// Slow consumer: drop it rather than block the room.
					h.Unregister(client)
				}
			}
		}
	}
}

// dropFromRoom must run with the mutex held.
func (h *Hub) dropFromRoom(client *Client, jobID uuid.UUID) {
	if room, ok := h.rooms[jobID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, jobID)
		}
	}
	if joined, ok := h.clientRooms[client]; ok {
		delete(joined, jobID)
	}
}

func (h *Hub) Join(client *Client, jobID uuid.UUID) {
	if h == nil {
		return
	}
	h.join <- subscription{client: client, jobID: jobID}
}

func (h *Hub) Leave(client *Client, jobID uuid.UUID) {
	if h == nil {
		return
	}
	h.leave <- subscription{client: client, jobID: jobID}
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	select {
	case h.unregister <- client:
	default:
	}
}

// BroadcastToJob fans payload out to the job's room. Best-effort: if the hub
// buffer is full the event is dropped and clients reconcile via history.
func (h *Hub) BroadcastToJob(jobID uuid.UUID, payload []byte) {
	if h == nil {
		return
	}
	select {
	case h.broadcast <- roomMessage{jobID: jobID, payload: payload}:
	default:
		if h.logger != nil {
			h.logger.Printf("[WS] Broadcast dropped | job_id=%s reason=buffer_full", jobID)
		}
	}
}

func (h *Hub) RoomSize(jobID uuid.UUID) int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.rooms[jobID])
}
