package repository

import (
	"context"
	"database/sql"
	"errors"

	"worklink/internal/database"
	"worklink/internal/domain/profession"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProfessionRepository interface {
	List(ctx context.Context) ([]profession.Profession, error)
	GetByID(ctx context.Context, id uuid.UUID) (profession.Profession, error)
}

type PostgresProfessionRepository struct {
	db database.DB
}

func NewPostgresProfessionRepository(db database.DB) *PostgresProfessionRepository {
	return &PostgresProfessionRepository{db: db}
}

func (r *PostgresProfessionRepository) List(ctx context.Context) ([]profession.Profession, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, icon FROM professions ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]profession.Profession, 0)
	for rows.Next() {
		var p profession.Profession
		if err := rows.Scan(&p.ID, &p.Name, &p.Icon); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresProfessionRepository) GetByID(ctx context.Context, id uuid.UUID) (profession.Profession, error) {
	var p profession.Profession
	row := r.db.QueryRow(ctx, `SELECT id, name, icon FROM professions WHERE id = $1`, id)
	if err := row.Scan(&p.ID, &p.Name, &p.Icon); err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return profession.Profession{}, ErrNotFound
		}
		return profession.Profession{}, err
	}
	return p, nil
}
