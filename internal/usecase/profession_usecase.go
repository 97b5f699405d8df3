package usecase

import (
	"context"
	"errors"

	"worklink/internal/domain/profession"
	"worklink/internal/repository"

	"github.com/google/uuid"
)

type ProfessionUsecase interface {
	List(ctx context.Context) ([]profession.Profession, error)
	Get(ctx context.Context, id uuid.UUID) (profession.Profession, error)
}

type Professions struct {
	professions repository.ProfessionRepository
}

func NewProfessions(professions repository.ProfessionRepository) *Professions {
	return &Professions{professions: professions}
}

func (u *Professions) List(ctx context.Context) ([]profession.Profession, error) {
	out, err := u.professions.List(ctx)
	if err != nil {
		return nil, ErrInternal
	}
	return out, nil
}

func (u *Professions) Get(ctx context.Context, id uuid.UUID) (profession.Profession, error) {
	p, err := u.professions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return profession.Profession{}, ErrNotFound
		}
		return profession.Profession{}, ErrInternal
	}
	return p, nil
}
