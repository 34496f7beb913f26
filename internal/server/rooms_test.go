package server

import (
	"fmt"
	"testing"

	"github.com/minislack/minislack/internal/testutil"
	"github.com/stretchr/testify/assert"
)

// newTestClient creates a client with a buffered send queue and no
// underlying connection, enough for router and server level tests.
func newTestClient(t *testing.T, id string) *Client {
	return &Client{
		id:   id,
		log:  testutil.TestLogger(t),
		send: make(chan *ServerEvent, sendQueueDepth),
		stop: make(chan struct{}),
	}
}

func TestRoomRouterJoin(t *testing.T) {
	rr := newRoomRouter()
	c := newTestClient(t, "conn-1")

	created := rr.join(1, c)
	assert.True(t, created, "expected first join to create the room")
	assert.True(t, rr.contains(1, c), "expected client to be a member after join")

	created = rr.join(1, c)
	assert.False(t, created, "expected repeat join to reuse the room")
	assert.Len(t, rr.members(1), 1, "expected repeat join to be idempotent")
}

func TestRoomRouterLeave(t *testing.T) {
	rr := newRoomRouter()
	c := newTestClient(t, "conn-1")

	rr.join(1, c)
	rr.leave(1, c)
	assert.False(t, rr.contains(1, c), "expected client to be removed after leave")

	// Leaving again, or leaving a room never joined, is a no-op.
	rr.leave(1, c)
	rr.leave(42, c)
}

func TestRoomRouterLeaveAll(t *testing.T) {
	rr := newRoomRouter()
	c := newTestClient(t, "conn-1")
	other := newTestClient(t, "conn-2")

	rr.join(1, c)
	rr.join(2, c)
	rr.join(2, other)

	rr.leaveAll(c)
	assert.False(t, rr.contains(1, c))
	assert.False(t, rr.contains(2, c))
	assert.True(t, rr.contains(2, other), "expected other members to be unaffected")
}

func TestRoomRouterBroadcast(t *testing.T) {
	rr := newRoomRouter()

	var members []*Client
	for i := range 5 {
		c := newTestClient(t, fmt.Sprintf("conn-%d", i))
		rr.join(1, c)
		members = append(members, c)
	}

	// Members who left before the broadcast receive nothing.
	rr.leave(1, members[3])
	rr.leave(1, members[4])

	outsider := newTestClient(t, "outsider")
	rr.join(2, outsider)

	rr.broadcast(1, ErrorEvent("test"))

	for _, c := range members[:3] {
		assert.Len(t, c.send, 1, "expected member %q to receive the event", c.id)
	}
	for _, c := range members[3:] {
		assert.Empty(t, c.send, "expected departed member %q to receive nothing", c.id)
	}
	assert.Empty(t, outsider.send, "expected non-member to receive nothing")
}

func TestRoomRouterBroadcastExcept(t *testing.T) {
	rr := newRoomRouter()
	sender := newTestClient(t, "sender")
	receiver := newTestClient(t, "receiver")

	rr.join(1, sender)
	rr.join(1, receiver)

	rr.broadcastExcept(1, ErrorEvent("test"), sender)

	assert.Empty(t, sender.send, "expected skipped client to receive nothing")
	assert.Len(t, receiver.send, 1, "expected other member to receive the event")
}
