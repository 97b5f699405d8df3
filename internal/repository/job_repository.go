package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"worklink/internal/database"
	"worklink/internal/domain/job"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("not found")

// JobFilter narrows job list queries. Page is 1-indexed.
type JobFilter struct {
	Status         job.Status
	Search         string
	Location       string
	ProfessionID   *uuid.UUID
	PostedBy       *uuid.UUID
	RequestedBy    *uuid.UUID
	AssignedWorker *uuid.UUID
	Page           int
	Limit          int
}

// JobRepository persists jobs. Every transition method is a conditional
// single-row UPDATE keyed on the expected current status, so two racing
// writers are serialized by the store: the second one matches zero rows.
// Methods return the number of rows affected; callers classify zero.
type JobRepository interface {
	Create(ctx context.Context, j job.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (job.Job, error)
	List(ctx context.Context, f JobFilter) ([]job.Job, int, error)

	MarkRequested(ctx context.Context, jobID, workerID uuid.UUID) (int64, error)
	Assign(ctx context.Context, jobID, workerID uuid.UUID) (int64, error)
	MarkInProgress(ctx context.Context, jobID, workerID uuid.UUID) (int64, error)
	ReturnToPublic(ctx context.Context, jobID, workerID uuid.UUID) (int64, error)
	MarkCompleted(ctx context.Context, jobID uuid.UUID, at time.Time) (int64, error)
	MarkFailedOverdue(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
	DeleteFailed(ctx context.Context, jobID, workerID uuid.UUID) (int64, error)
}

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

const jobSelectColumns = `
	j.id, j.description, j.location, j.job_date, j.job_time, j.status,
	j.requested_by, j.assigned_worker, j.created_at, j.completed_at,
	p.id, COALESCE(p.name, ''), COALESCE(p.icon, ''),
	u.id, COALESCE(u.name, ''), COALESCE(u.phone, ''), COALESCE(u.location, ''), u.username`

const jobFromClause = `
	FROM jobs j
	LEFT JOIN professions p ON p.id = j.profession_id
	JOIN users u ON u.id = j.posted_by`

func (r *PostgresJobRepository) Create(ctx context.Context, j job.Job) error {
	var professionID *uuid.UUID
	if j.Profession.ID != uuid.Nil {
		professionID = &j.Profession.ID
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO jobs (id, profession_id, description, location, job_date, job_time, posted_by, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		j.ID, professionID, j.Description, j.Location, j.Date, j.Time, j.PostedBy.ID, string(j.Status), j.CreatedAt,
	)
	return err
}

func (r *PostgresJobRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Job, error) {
	row := r.db.QueryRow(ctx, `SELECT`+jobSelectColumns+jobFromClause+` WHERE j.id = $1`, id)
	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return job.Job{}, ErrNotFound
		}
		return job.Job{}, err
	}
	return j, nil
}

func (r *PostgresJobRepository) List(ctx context.Context, f JobFilter) ([]job.Job, int, error) {
	where := make([]string, 0, 6)
	args := make([]any, 0, 8)
	add := func(cond string, val any) {
		args = append(args, val)
		where = append(where, strings.Replace(cond, "?", placeholder(len(args)), 1))
	}

	if f.Status != "" {
		add("j.status = ?", string(f.Status))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		add("j.description ILIKE ?", "%"+s+"%")
	}
	if l := strings.TrimSpace(f.Location); l != "" {
		add("j.location ILIKE ?", "%"+l+"%")
	}
	if f.ProfessionID != nil {
		add("j.profession_id = ?", *f.ProfessionID)
	}
	if f.PostedBy != nil {
		add("j.posted_by = ?", *f.PostedBy)
	}
	if f.RequestedBy != nil {
		add("j.requested_by = ?", *f.RequestedBy)
	}
	if f.AssignedWorker != nil {
		add("j.assigned_worker = ?", *f.AssignedWorker)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countRow := r.db.QueryRow(ctx, `SELECT COUNT(*)`+jobFromClause+whereClause, args...)
	if err := countRow.Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	args = append(args, limit, offset)
	query := `SELECT` + jobSelectColumns + jobFromClause + whereClause +
		` ORDER BY j.created_at DESC, j.id LIMIT ` + placeholder(len(args)-1) + ` OFFSET ` + placeholder(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]job.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostgresJobRepository) MarkRequested(ctx context.Context, jobID, workerID uuid.UUID) (int64, error) {
	return r.db.Exec(ctx,
		`UPDATE jobs SET status = $1, requested_by = $2 WHERE id = $3 AND status = $4`,
		string(job.StatusRequested), workerID, jobID, string(job.StatusPublic),
	)
}

func (r *PostgresJobRepository) Assign(ctx context.Context, jobID, workerID uuid.UUID) (int64, error) {
	return r.db.Exec(ctx,
		`UPDATE jobs SET status = $1, assigned_worker = $2, requested_by = NULL
		 WHERE id = $3 AND status = $4 AND requested_by = $2`,
		string(job.StatusAssigned), workerID, jobID, string(job.StatusRequested),
	)
}

func (r *PostgresJobRepository) MarkInProgress(ctx context.Context, jobID, workerID uuid.UUID) (int64, error) {
	return r.db.Exec(ctx,
		`UPDATE jobs SET status = $1 WHERE id = $2 AND status = $3 AND assigned_worker = $4`,
		string(job.StatusInProgress), jobID, string(job.StatusAssigned), workerID,
	)
}

func (r *PostgresJobRepository) ReturnToPublic(ctx context.Context, jobID, workerID uuid.UUID) (int64, error) {
	return r.db.Exec(ctx,
		`UPDATE jobs SET status = $1, assigned_worker = NULL, requested_by = NULL
		 WHERE id = $2 AND status = $3 AND assigned_worker = $4`,
		string(job.StatusPublic), jobID, string(job.StatusAssigned), workerID,
	)
}

func (r *PostgresJobRepository) MarkCompleted(ctx context.Context, jobID uuid.UUID, at time.Time) (int64, error) {
	return r.db.Exec(ctx,
		`UPDATE jobs SET status = $1, completed_at = $2 WHERE id = $3 AND status = $4`,
		string(job.StatusCompleted), at.UTC(), jobID, string(job.StatusInProgress),
	)
}

// MarkFailedOverdue fails every completed job whose review window closed with
// no review attached, returning the ids it touched.
func (r *PostgresJobRepository) MarkFailedOverdue(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`UPDATE jobs SET status = $1
		 WHERE status = $2
		   AND completed_at IS NOT NULL
		   AND completed_at < $3
		   AND NOT EXISTS (SELECT 1 FROM reviews rv WHERE rv.job_id = jobs.id)
		 RETURNING id`,
		string(job.StatusFailed), string(job.StatusCompleted), cutoff.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PostgresJobRepository) DeleteFailed(ctx context.Context, jobID, workerID uuid.UUID) (int64, error) {
	return r.db.Exec(ctx,
		`DELETE FROM jobs WHERE id = $1 AND status = $2 AND assigned_worker = $3`,
		jobID, string(job.StatusFailed), workerID,
	)
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func scanJob(row database.Row) (job.Job, error) {
	var (
		j      job.Job
		status string
		pID    *uuid.UUID
		pName  string
		pIcon  string
	)

	err := row.Scan(
		&j.ID, &j.Description, &j.Location, &j.Date, &j.Time, &status,
		&j.RequestedBy, &j.AssignedWorker, &j.CreatedAt, &j.CompletedAt,
		&pID, &pName, &pIcon,
		&j.PostedBy.ID, &j.PostedBy.Name, &j.PostedBy.Phone, &j.PostedBy.Location, &j.PostedBy.Username,
	)
	if err != nil {
		return job.Job{}, err
	}

	j.Status = job.Status(status)
	if pID != nil {
		j.Profession = job.ProfessionRef{ID: *pID, Name: pName, Icon: pIcon}
	}
	return j, nil
}
