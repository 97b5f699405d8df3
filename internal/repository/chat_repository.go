package repository

import (
	"context"

	"worklink/internal/database"
	"worklink/internal/domain/chat"

	"github.com/google/uuid"
)

// ChatRepository is an append-only message log per job. ListByJob returns the
// full history ascending by creation; the random id only makes same-timestamp
// ordering stable across reads, it carries no insertion order.
type ChatRepository interface {
	Append(ctx context.Context, m chat.Message) error
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]chat.Message, error)
}

type PostgresChatRepository struct {
	db database.DB
}

func NewPostgresChatRepository(db database.DB) *PostgresChatRepository {
	return &PostgresChatRepository{db: db}
}

func (r *PostgresChatRepository) Append(ctx context.Context, m chat.Message) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO chat_messages (id, job_id, sender_id, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.JobID, m.SenderID, m.Content, m.CreatedAt,
	)
	return err
}

func (r *PostgresChatRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]chat.Message, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, job_id, sender_id, content, created_at
		 FROM chat_messages
		 WHERE job_id = $1
		 ORDER BY created_at ASC, id ASC`,
		jobID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]chat.Message, 0)
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.JobID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
