package job

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a job. Transitions are one-directional
// except the explicit reject path (Assigned back to Public).
type Status string

const (
	StatusPublic     Status = "public"
	StatusRequested  Status = "requested"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var (
	ErrInvalidTransition = errors.New("invalid job state transition")
	ErrInvalidStatus     = errors.New("invalid job status")
)

// CustomerRef is the denormalized customer contact shown alongside a job.
type CustomerRef struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Phone    string    `json:"phone,omitempty"`
	Location string    `json:"location,omitempty"`
	Username string    `json:"username"`
}

// ProfessionRef is the category a job belongs to.
type ProfessionRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Icon string    `json:"icon,omitempty"`
}

type Job struct {
	ID             uuid.UUID
	Profession     ProfessionRef
	Description    string
	Location       string
	Date           string
	Time           string
	PostedBy       CustomerRef
	RequestedBy    *uuid.UUID
	AssignedWorker *uuid.UUID
	Status         Status
	CreatedAt      time.Time
	CompletedAt    *time.Time
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPublic, StatusRequested, StatusAssigned, StatusInProgress, StatusCompleted, StatusFailed:
		return Status(s), nil
	}
	return "", ErrInvalidStatus
}

// Terminal reports whether no further work happens on the job. The chat
// channel attached to the job closes once this is true.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// RequiresAssignedWorker reports whether a job in this status must carry a
// non-nil AssignedWorker.
func (s Status) RequiresAssignedWorker() bool {
	switch s {
	case StatusAssigned, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

var transitions = map[Status][]Status{
	StatusPublic:     {StatusRequested},
	StatusRequested:  {StatusAssigned},
	StatusAssigned:   {StatusInProgress, StatusPublic},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {StatusFailed},
	StatusFailed:     {},
}

// CanTransition reports whether from -> to is a legal lifecycle step.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Validate checks the structural invariants that must hold for every
// persisted job, independent of which transition produced it.
func (j Job) Validate() error {
	if _, err := ParseStatus(string(j.Status)); err != nil {
		return err
	}
	if j.Status.RequiresAssignedWorker() != (j.AssignedWorker != nil) {
		return errors.New("assigned worker does not match job status")
	}
	if (j.CompletedAt != nil) && j.Status != StatusCompleted && j.Status != StatusFailed {
		return errors.New("completed_at set on a job that never completed")
	}
	if j.Status == StatusCompleted && j.CompletedAt == nil {
		return errors.New("completed job missing completed_at")
	}
	return nil
}

// Request marks a public job as requested by the given worker. The caller is
// responsible for making the persisted write conditional on the job still
// being public.
func (j Job) Request(workerID uuid.UUID) (Job, error) {
	if j.Status != StatusPublic {
		return j, ErrInvalidTransition
	}
	w := workerID
	j.Status = StatusRequested
	j.RequestedBy = &w
	return j, nil
}

// Assign moves a requested job to assigned, fixing the worker.
func (j Job) Assign(workerID uuid.UUID) (Job, error) {
	if j.Status != StatusRequested {
		return j, ErrInvalidTransition
	}
	w := workerID
	j.Status = StatusAssigned
	j.AssignedWorker = &w
	j.RequestedBy = nil
	return j, nil
}

// Accept moves an assigned job to in-progress. Only the assigned worker may
// accept.
func (j Job) Accept(workerID uuid.UUID) (Job, error) {
	if j.Status != StatusAssigned {
		return j, ErrInvalidTransition
	}
	if j.AssignedWorker == nil || *j.AssignedWorker != workerID {
		return j, ErrInvalidTransition
	}
	j.Status = StatusInProgress
	return j, nil
}

// Reject returns an assigned job to the public pool, clearing the worker.
func (j Job) Reject(workerID uuid.UUID) (Job, error) {
	if j.Status != StatusAssigned {
		return j, ErrInvalidTransition
	}
	if j.AssignedWorker == nil || *j.AssignedWorker != workerID {
		return j, ErrInvalidTransition
	}
	j.Status = StatusPublic
	j.AssignedWorker = nil
	j.RequestedBy = nil
	return j, nil
}

// Complete stamps the job completed at the given time.
func (j Job) Complete(now time.Time) (Job, error) {
	if j.Status != StatusInProgress {
		return j, ErrInvalidTransition
	}
	t := now.UTC()
	j.Status = StatusCompleted
	j.CompletedAt = &t
	return j, nil
}

// Fail marks a completed job failed. CompletedAt is retained so the overdue
// window that caused the failure stays auditable.
func (j Job) Fail() (Job, error) {
	if j.Status != StatusCompleted {
		return j, ErrInvalidTransition
	}
	j.Status = StatusFailed
	return j, nil
}
