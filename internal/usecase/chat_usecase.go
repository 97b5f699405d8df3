package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"worklink/internal/domain/chat"
	"worklink/internal/domain/job"
	"worklink/internal/repository"

	"github.com/google/uuid"
)

// Broadcaster fans a payload out to the live subscribers of one job's room.
// Delivery is best-effort; the persisted history is the reconciliation path
// for anybody who missed the broadcast.
type Broadcaster interface {
	BroadcastToJob(jobID uuid.UUID, payload []byte)
}

// ReceiveMessageEvent is the server-to-client chat event.
type ReceiveMessageEvent struct {
	Type    string       `json:"type"`
	Message chat.Message `json:"message"`
}

const EventReceiveMessage = "receiveMessage"

type ChatUsecase interface {
	SendMessage(ctx context.Context, jobID, senderID uuid.UUID, content string) (chat.Message, error)
	History(ctx context.Context, jobID, callerID uuid.UUID) ([]chat.Message, error)
	CanAccess(ctx context.Context, jobID, callerID uuid.UUID) error
}

// Chat is the per-job messaging channel. A message is durable before anybody
// hears about it: Append happens-before Broadcast, so a client that refetches
// history after a reconnect can never observe a broadcast-only message.
type Chat struct {
	messages    repository.ChatRepository
	jobs        repository.JobRepository
	broadcaster Broadcaster
	logger      *log.Logger
	now         func() time.Time
}

func NewChat(messages repository.ChatRepository, jobs repository.JobRepository, broadcaster Broadcaster, logger *log.Logger) *Chat {
	return &Chat{
		messages:    messages,
		jobs:        jobs,
		broadcaster: broadcaster,
		logger:      logger,
		now:         time.Now,
	}
}

func (u *Chat) SendMessage(ctx context.Context, jobID, senderID uuid.UUID, content string) (chat.Message, error) {
	if err := chat.ValidateContent(content); err != nil {
		return chat.Message{}, ErrValidation
	}

	j, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return chat.Message{}, ErrNotFound
		}
		return chat.Message{}, ErrInternal
	}
	if !isChatParticipant(j, senderID) {
		return chat.Message{}, ErrNotOwner
	}
	// The channel is read-only once the job is done.
	if j.Status.Terminal() {
		return chat.Message{}, ErrInvalidState
	}

	m := chat.Message{
		ID:        uuid.New(),
		JobID:     jobID,
		SenderID:  senderID,
		Content:   strings.TrimSpace(content),
		CreatedAt: u.now().UTC(),
	}

	if err := u.messages.Append(ctx, m); err != nil {
		return chat.Message{}, ErrInternal
	}

	if u.broadcaster != nil {
		payload, err := json.Marshal(ReceiveMessageEvent{Type: EventReceiveMessage, Message: m})
		if err == nil {
			u.broadcaster.BroadcastToJob(jobID, payload)
		} else if u.logger != nil {
			u.logger.Printf("[Chat] Broadcast marshal failed | job_id=%s err=%v", jobID, err)
		}
	}

	return m, nil
}

func (u *Chat) History(ctx context.Context, jobID, callerID uuid.UUID) ([]chat.Message, error) {
	if err := u.CanAccess(ctx, jobID, callerID); err != nil {
		return nil, err
	}

	msgs, err := u.messages.ListByJob(ctx, jobID)
	if err != nil {
		return nil, ErrInternal
	}
	return msgs, nil
}

// CanAccess reports whether the caller may read the job's channel. Socket
// room joins run this before subscribing.
func (u *Chat) CanAccess(ctx context.Context, jobID, callerID uuid.UUID) error {
	j, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}
	if !isChatParticipant(j, callerID) {
		return ErrNotOwner
	}
	return nil
}

// isChatParticipant limits the channel to the two parties of the job: the
// posting customer and the worker currently attached to it (requester before
// assignment, assigned worker after).
func isChatParticipant(j job.Job, userID uuid.UUID) bool {
	if j.PostedBy.ID == userID {
		return true
	}
	if j.AssignedWorker != nil && *j.AssignedWorker == userID {
		return true
	}
	if j.RequestedBy != nil && *j.RequestedBy == userID {
		return true
	}
	return false
}
