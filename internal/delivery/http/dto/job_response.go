package dto

import (
	"time"

	"worklink/internal/domain/job"
	"worklink/internal/pkg/imageurl"
	"worklink/internal/usecase"

	"github.com/google/uuid"
)

type ProfessionResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Icon string    `json:"icon,omitempty"`
}

type JobCustomerResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Phone    string    `json:"phone,omitempty"`
	Location string    `json:"location,omitempty"`
	Username string    `json:"username"`
}

type JobResponse struct {
	ID             uuid.UUID           `json:"id"`
	Profession     *ProfessionResponse `json:"profession,omitempty"`
	Description    string              `json:"description"`
	Location       string              `json:"location,omitempty"`
	Date           string              `json:"date,omitempty"`
	Time           string              `json:"time,omitempty"`
	PostedBy       JobCustomerResponse `json:"postedBy"`
	RequestedBy    *uuid.UUID          `json:"requestedBy,omitempty"`
	AssignedWorker *uuid.UUID          `json:"assignedWorker,omitempty"`
	Status         string              `json:"status"`
	CreatedAt      time.Time           `json:"createdAt"`
	CompletedAt    *time.Time          `json:"completedAt,omitempty"`
}

func NewJobResponse(j job.Job, icons *imageurl.Resolver) JobResponse {
	res := JobResponse{
		ID:          j.ID,
		Description: j.Description,
		Location:    j.Location,
		Date:        j.Date,
		Time:        j.Time,
		PostedBy: JobCustomerResponse{
			ID:       j.PostedBy.ID,
			Name:     j.PostedBy.Name,
			Phone:    j.PostedBy.Phone,
			Location: j.PostedBy.Location,
			Username: j.PostedBy.Username,
		},
		RequestedBy:    j.RequestedBy,
		AssignedWorker: j.AssignedWorker,
		Status:         string(j.Status),
		CreatedAt:      j.CreatedAt,
		CompletedAt:    j.CompletedAt,
	}
	if j.Profession.ID != uuid.Nil {
		res.Profession = &ProfessionResponse{
			ID:   j.Profession.ID,
			Name: j.Profession.Name,
			Icon: icons.Resolve(j.Profession.Icon),
		}
	}
	return res
}

func NewJobResponses(jobs []job.Job, icons *imageurl.Resolver) []JobResponse {
	out := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, NewJobResponse(j, icons))
	}
	return out
}

// Paginated is the list envelope carried inside the semantic response body.
type Paginated struct {
	Data       any                `json:"data"`
	Pagination usecase.Pagination `json:"pagination"`
}
