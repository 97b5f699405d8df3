package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleWorker   Role = "worker"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleCustomer, RoleWorker:
		return Role(s), true
	}
	return "", false
}

type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Role         Role
	Name         string
	Phone        string
	Location     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
