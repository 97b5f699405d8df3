package repository

import (
	"context"
	"database/sql"
	"errors"

	"worklink/internal/database"
	"worklink/internal/domain/job"
	"worklink/internal/domain/review"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrDuplicateReview = errors.New("job already reviewed")

// ReviewRepository persists reviews. Create is conditional on the job being
// completed at insert time, same discipline as the job transition writes; it
// returns rows affected and callers classify zero.
type ReviewRepository interface {
	Create(ctx context.Context, rv review.Review) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (review.Review, error)
	GetByJobID(ctx context.Context, jobID uuid.UUID) (review.Review, error)
	ExistsForJob(ctx context.Context, jobID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type PostgresReviewRepository struct {
	db database.DB
}

func NewPostgresReviewRepository(db database.DB) *PostgresReviewRepository {
	return &PostgresReviewRepository{db: db}
}

// Create inserts only while the job is still completed, so a review can never
// attach to a job the overdue sweep already failed. Zero rows means the job
// moved (or vanished) between the caller's read and this write.
func (r *PostgresReviewRepository) Create(ctx context.Context, rv review.Review) (int64, error) {
	n, err := r.db.Exec(ctx,
		`INSERT INTO reviews (id, job_id, customer_id, rating, comment, created_at)
		 SELECT $1, $2, $3, $4, $5, $6
		 WHERE EXISTS (SELECT 1 FROM jobs WHERE id = $2 AND status = $7)`,
		rv.ID, rv.JobID, rv.CustomerID, rv.Rating, rv.Comment, rv.CreatedAt, string(job.StatusCompleted),
	)
	if err != nil {
		// The unique index on job_id is the at-most-one-review guarantee.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateReview
		}
		return 0, err
	}
	return n, nil
}

func (r *PostgresReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (review.Review, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, job_id, customer_id, rating, comment, created_at FROM reviews WHERE id = $1`, id)
	return scanReview(row)
}

func (r *PostgresReviewRepository) GetByJobID(ctx context.Context, jobID uuid.UUID) (review.Review, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, job_id, customer_id, rating, comment, created_at FROM reviews WHERE job_id = $1`, jobID)
	return scanReview(row)
}

func (r *PostgresReviewRepository) ExistsForJob(ctx context.Context, jobID uuid.UUID) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM reviews WHERE job_id = $1)`, jobID)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresReviewRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	return r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
}

func scanReview(row database.Row) (review.Review, error) {
	var rv review.Review
	err := row.Scan(&rv.ID, &rv.JobID, &rv.CustomerID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return review.Review{}, ErrNotFound
		}
		return review.Review{}, err
	}
	return rv, nil
}
