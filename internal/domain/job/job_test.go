package job

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publicJob() Job {
	return Job{
		ID:          uuid.New(),
		Description: "Fix kitchen sink",
		Location:    "Kathmandu",
		PostedBy:    CustomerRef{ID: uuid.New(), Name: "Sita", Username: "sita01"},
		Status:      StatusPublic,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"public", "requested", "assigned", "in_progress", "completed", "failed"} {
		got, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, Status(s), got)
	}

	_, err := ParseStatus("archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestFullLifecycleWalk(t *testing.T) {
	worker := uuid.New()
	j := publicJob()

	j, err := j.Request(worker)
	require.NoError(t, err)
	assert.Equal(t, StatusRequested, j.Status)
	require.NotNil(t, j.RequestedBy)
	assert.Equal(t, worker, *j.RequestedBy)
	assert.Nil(t, j.AssignedWorker)

	j, err = j.Assign(worker)
	require.NoError(t, err)
	assert.Equal(t, StatusAssigned, j.Status)
	require.NotNil(t, j.AssignedWorker)
	assert.Equal(t, worker, *j.AssignedWorker)
	assert.Nil(t, j.RequestedBy)

	j, err = j.Accept(worker)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, j.Status)

	now := time.Now().UTC()
	j, err = j.Complete(now)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, j.Status)
	require.NotNil(t, j.CompletedAt)
	assert.Equal(t, now, *j.CompletedAt)

	j, err = j.Fail()
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, j.Status)
	assert.NotNil(t, j.CompletedAt)
	assert.NoError(t, j.Validate())
}

func TestRequestNonPublicFails(t *testing.T) {
	worker := uuid.New()
	j := publicJob()
	j, err := j.Request(worker)
	require.NoError(t, err)

	before := j
	_, err = j.Request(uuid.New())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, before, j, "failed transition must not mutate the job")
}

func TestAcceptRequiresAssignedWorker(t *testing.T) {
	worker := uuid.New()
	j := publicJob()
	j, _ = j.Request(worker)
	j, _ = j.Assign(worker)

	_, err := j.Accept(uuid.New())
	assert.ErrorIs(t, err, ErrInvalidTransition)

	j, err = j.Accept(worker)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, j.Status)
}

func TestRejectReturnsJobToPublic(t *testing.T) {
	worker := uuid.New()
	j := publicJob()
	j, _ = j.Request(worker)
	j, _ = j.Assign(worker)

	j, err := j.Reject(worker)
	require.NoError(t, err)
	assert.Equal(t, StatusPublic, j.Status)
	assert.Nil(t, j.AssignedWorker)
	assert.Nil(t, j.RequestedBy)
	assert.NoError(t, j.Validate())

	// The pool job can be requested again by somebody else.
	_, err = j.Request(uuid.New())
	assert.NoError(t, err)
}

func TestCompleteOnlyFromInProgress(t *testing.T) {
	j := publicJob()
	_, err := j.Complete(time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)

	worker := uuid.New()
	j, _ = j.Request(worker)
	_, err = j.Complete(time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestFailOnlyFromCompleted(t *testing.T) {
	j := publicJob()
	_, err := j.Fail()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPublic, StatusRequested))
	assert.True(t, CanTransition(StatusAssigned, StatusPublic))
	assert.True(t, CanTransition(StatusCompleted, StatusFailed))
	assert.False(t, CanTransition(StatusRequested, StatusPublic))
	assert.False(t, CanTransition(StatusFailed, StatusPublic))
	assert.False(t, CanTransition(StatusCompleted, StatusInProgress))
}

func TestValidateWorkerInvariant(t *testing.T) {
	worker := uuid.New()

	j := publicJob()
	assert.NoError(t, j.Validate())

	// Assigned-family status without a worker is corrupt.
	j.Status = StatusAssigned
	assert.Error(t, j.Validate())

	j.AssignedWorker = &worker
	assert.NoError(t, j.Validate())

	// Public job carrying a worker is corrupt too.
	j.Status = StatusPublic
	assert.Error(t, j.Validate())
}

func TestValidateCompletedAtInvariant(t *testing.T) {
	worker := uuid.New()
	now := time.Now().UTC()

	j := publicJob()
	j.Status = StatusCompleted
	j.AssignedWorker = &worker
	assert.Error(t, j.Validate(), "completed job without completed_at")

	j.CompletedAt = &now
	assert.NoError(t, j.Validate())

	j.Status = StatusInProgress
	assert.Error(t, j.Validate(), "completed_at on in-progress job")
}
