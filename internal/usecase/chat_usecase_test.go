package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"worklink/internal/domain/chat"
	"worklink/internal/domain/job"

	"github.com/google/uuid"
)

type memChatRepo struct {
	mu        sync.Mutex
	messages  []chat.Message
	appendErr error
}

func (m *memChatRepo) Append(_ context.Context, msg chat.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *memChatRepo) ListByJob(_ context.Context, jobID uuid.UUID) ([]chat.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]chat.Message, 0)
	for _, msg := range m.messages {
		if msg.JobID == jobID {
			out = append(out, msg)
		}
	}
	return out, nil
}

type spyBroadcaster struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (b *spyBroadcaster) BroadcastToJob(_ uuid.UUID, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.payloads = append(b.payloads, payload)
}

func (b *spyBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.payloads)
}

func inProgressJobFixture(customer, worker uuid.UUID) job.Job {
	w := worker
	return job.Job{
		ID:             uuid.New(),
		Description:    "Assemble wardrobe",
		PostedBy:       job.CustomerRef{ID: customer},
		AssignedWorker: &w,
		Status:         job.StatusInProgress,
		CreatedAt:      time.Now().UTC(),
	}
}

func TestChat_SendThenHistory(t *testing.T) {
	customer := uuid.New()
	worker := uuid.New()
	j := inProgressJobFixture(customer, worker)
	msgs := &memChatRepo{}
	bc := &spyBroadcaster{}
	uc := NewChat(msgs, newMemJobRepo(j), bc, nil)
	ctx := context.Background()

	sent, err := uc.SendMessage(ctx, j.ID, worker, "on my way")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	history, err := uc.History(ctx, j.ID, customer)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 message, got %d", len(history))
	}
	if history[len(history)-1] != sent {
		t.Fatalf("last history entry must equal the sent message")
	}

	// Idempotent read: no new sends, identical sequences.
	again, err := uc.History(ctx, j.ID, customer)
	if err != nil {
		t.Fatalf("history again: %v", err)
	}
	if len(again) != len(history) || again[0] != history[0] {
		t.Fatalf("history changed between reads")
	}

	if bc.count() != 1 {
		t.Fatalf("expected 1 broadcast, got %d", bc.count())
	}
	var evt ReceiveMessageEvent
	bc.mu.Lock()
	payload := bc.payloads[0]
	bc.mu.Unlock()
	if err := json.Unmarshal(payload, &evt); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if evt.Type != EventReceiveMessage || evt.Message.ID != sent.ID {
		t.Fatalf("unexpected event: %+v", evt)
	}
}

func TestChat_PersistFailureSuppressesBroadcast(t *testing.T) {
	customer := uuid.New()
	worker := uuid.New()
	j := inProgressJobFixture(customer, worker)
	msgs := &memChatRepo{appendErr: errors.New("disk full")}
	bc := &spyBroadcaster{}
	uc := NewChat(msgs, newMemJobRepo(j), bc, nil)

	_, err := uc.SendMessage(context.Background(), j.ID, worker, "hello")
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
	if bc.count() != 0 {
		t.Fatalf("a message that was never persisted must not be broadcast")
	}
}

func TestChat_ParticipantsOnly(t *testing.T) {
	customer := uuid.New()
	worker := uuid.New()
	j := inProgressJobFixture(customer, worker)
	uc := NewChat(&memChatRepo{}, newMemJobRepo(j), nil, nil)
	ctx := context.Background()

	if _, err := uc.SendMessage(ctx, j.ID, uuid.New(), "let me in"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if _, err := uc.History(ctx, j.ID, uuid.New()); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	// The requester can chat before assignment.
	r := uuid.New()
	requested := job.Job{
		ID:          uuid.New(),
		PostedBy:    job.CustomerRef{ID: customer},
		RequestedBy: &r,
		Status:      job.StatusRequested,
		CreatedAt:   time.Now().UTC(),
	}
	uc2 := NewChat(&memChatRepo{}, newMemJobRepo(requested), nil, nil)
	if _, err := uc2.SendMessage(ctx, requested.ID, r, "when should I come by?"); err != nil {
		t.Fatalf("requester send: %v", err)
	}
}

func TestChat_ChannelClosedOnTerminalJob(t *testing.T) {
	customer := uuid.New()
	worker := uuid.New()
	j := inProgressJobFixture(customer, worker)
	now := time.Now().UTC()
	j.Status = job.StatusCompleted
	j.CompletedAt = &now
	uc := NewChat(&memChatRepo{}, newMemJobRepo(j), nil, nil)
	ctx := context.Background()

	if _, err := uc.SendMessage(ctx, j.ID, worker, "too late"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on completed job, got %v", err)
	}

	// History stays readable.
	if _, err := uc.History(ctx, j.ID, worker); err != nil {
		t.Fatalf("history on terminal job: %v", err)
	}
}

func TestChat_ContentValidation(t *testing.T) {
	customer := uuid.New()
	worker := uuid.New()
	j := inProgressJobFixture(customer, worker)
	uc := NewChat(&memChatRepo{}, newMemJobRepo(j), nil, nil)
	ctx := context.Background()

	if _, err := uc.SendMessage(ctx, j.ID, worker, "   "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank content, got %v", err)
	}
	if _, err := uc.SendMessage(ctx, j.ID, worker, strings.Repeat("a", 2001)); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for oversized content, got %v", err)
	}
}
