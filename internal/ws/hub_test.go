package ws

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return &Client{send: make(chan []byte, 8)}
}

func recvOrTimeout(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case b := <-ch:
		return b
	case <-time.After(time.Second):
		t.Fatal("no payload received")
		return nil
	}
}

func TestHubRoutesBroadcastToRoomOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	jobA := uuid.New()
	jobB := uuid.New()

	a1 := newTestClient()
	a2 := newTestClient()
	b1 := newTestClient()

	hub.Join(a1, jobA)
	hub.Join(a2, jobA)
	hub.Join(b1, jobB)

	require.Eventually(t, func() bool {
		return hub.RoomSize(jobA) == 2 && hub.RoomSize(jobB) == 1
	}, time.Second, 5*time.Millisecond)

	hub.BroadcastToJob(jobA, []byte("hello"))

	assert.Equal(t, "hello", string(recvOrTimeout(t, a1.send)))
	assert.Equal(t, "hello", string(recvOrTimeout(t, a2.send)))

	select {
	case <-b1.send:
		t.Fatal("room B client received room A broadcast")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubLeaveStopsDelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	jobID := uuid.New()
	c := newTestClient()
	hub.Join(c, jobID)

	require.Eventually(t, func() bool { return hub.RoomSize(jobID) == 1 }, time.Second, 5*time.Millisecond)

	hub.Leave(c, jobID)
	require.Eventually(t, func() bool { return hub.RoomSize(jobID) == 0 }, time.Second, 5*time.Millisecond)

	hub.BroadcastToJob(jobID, []byte("late"))
	select {
	case <-c.send:
		t.Fatal("received broadcast after leaving the room")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterCleansEveryRoom(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	jobA := uuid.New()
	jobB := uuid.New()
	c := newTestClient()
	hub.Join(c, jobA)
	hub.Join(c, jobB)

	require.Eventually(t, func() bool {
		return hub.RoomSize(jobA) == 1 && hub.RoomSize(jobB) == 1
	}, time.Second, 5*time.Millisecond)

	hub.Unregister(c)

	require.Eventually(t, func() bool {
		return hub.RoomSize(jobA) == 0 && hub.RoomSize(jobB) == 0
	}, time.Second, 5*time.Millisecond)

	// Send channel is closed so the write pump exits.
	_, open := <-c.send
	assert.False(t, open)
}

func TestHubSurvivesRepeatedUnregister(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	jobID := uuid.New()
	c := newTestClient()
	hub.Join(c, jobID)

	require.Eventually(t, func() bool { return hub.RoomSize(jobID) == 1 }, time.Second, 5*time.Millisecond)

	// Both the broadcast drop path and the read pump teardown can unregister
	// the same client; the second must be a no-op, not a double close.
	hub.Unregister(c)
	hub.Unregister(c)

	require.Eventually(t, func() bool { return hub.RoomSize(jobID) == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-c.send
	assert.False(t, open)

	// The hub loop is still alive: a fresh client joins and receives.
	c2 := newTestClient()
	hub.Join(c2, jobID)
	require.Eventually(t, func() bool { return hub.RoomSize(jobID) == 1 }, time.Second, 5*time.Millisecond)

	hub.BroadcastToJob(jobID, []byte("still here"))
	assert.Equal(t, "still here", string(recvOrTimeout(t, c2.send)))
}

func TestHubUnregisterClientThatNeverJoined(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	c := newTestClient()
	hub.Unregister(c)
	hub.Unregister(c)

	_, open := <-c.send
	assert.False(t, open)

	// Loop still serves joins afterwards.
	jobID := uuid.New()
	c2 := newTestClient()
	hub.Join(c2, jobID)
	require.Eventually(t, func() bool { return hub.RoomSize(jobID) == 1 }, time.Second, 5*time.Millisecond)
}
