package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/minislack/minislack/internal/database"
	"github.com/minislack/minislack/internal/stats"
	"github.com/minislack/minislack/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestDispatchUnknownEvent(t *testing.T) {
	cs := newTestChatServer(t, &database.MockStore{}, &stats.MockStatsUpdater{})
	c := newTestClient(t, "conn-1")
	c.chatServer = cs

	c.dispatch(&ClientEvent{Type: "bogus"})

	events := drainEvents(c)
	if assert.Len(t, events, 1, "expected an error event for an unknown type") {
		assert.Equal(t, EventError, events[0].Type)
	}
}

func TestDispatchMalformedPayload(t *testing.T) {
	cs := newTestChatServer(t, &database.MockStore{}, &stats.MockStatsUpdater{})
	c := newTestClient(t, "conn-1")
	c.chatServer = cs

	c.dispatch(&ClientEvent{
		Type: EventJoinChannel,
		Data: json.RawMessage(`"not an object"`),
	})

	events := drainEvents(c)
	if assert.Len(t, events, 1, "expected an error event for a malformed payload") {
		assert.Equal(t, EventError, events[0].Type)
	}
}

func TestDispatchSendMessage(t *testing.T) {
	db := &database.MockStore{}
	defer db.AssertExpectations(t)
	db.On("CreateMessage", database.CreateMessageParams{
		ChannelId: 1,
		UserId:    2,
		Content:   "hello",
	}).Return(database.Message{Id: 10, ChannelId: 1, UserId: 2, Content: "hello"}, nil).Once()
	db.On("GetMessage", 10).Return(database.Message{Id: 10, ChannelId: 1, UserId: 2, Content: "hello"}, nil).Once()

	su := &stats.MockStatsUpdater{}
	su.On("Incr", metricRooms).Once()
	su.On("Incr", metricMessagesSent).Once()

	cs := newTestChatServer(t, db, su)
	c := newTestClient(t, "conn-1")
	c.chatServer = cs
	assert.NoError(t, cs.JoinChannel(c, 1))
	drainEvents(c)

	c.dispatch(&ClientEvent{
		Type: EventSendMessage,
		Data: json.RawMessage(`{"channel_id":1,"user_id":2,"content":"hello"}`),
	})

	events := drainEvents(c)
	if assert.Len(t, events, 1, "expected the sender to receive the broadcast") {
		assert.Equal(t, EventNewMessage, events[0].Type)
	}
}

func TestDispatchSendMessageInvalid(t *testing.T) {
	cs := newTestChatServer(t, &database.MockStore{}, &stats.MockStatsUpdater{})
	c := newTestClient(t, "conn-1")
	c.chatServer = cs

	c.dispatch(&ClientEvent{
		Type: EventSendMessage,
		Data: json.RawMessage(`{"channel_id":1,"user_id":2,"content":""}`),
	})

	events := drainEvents(c)
	if assert.Len(t, events, 1, "expected an error event for the originator only") {
		assert.Equal(t, EventError, events[0].Type)
	}
}

func TestQueueEventDropsWhenFull(t *testing.T) {
	c := newTestClient(t, "conn-1")

	for i := 0; i < sendQueueDepth; i++ {
		assert.True(t, c.queueEvent(ErrorEvent(fmt.Sprintf("event-%d", i))))
	}

	assert.False(t, c.queueEvent(ErrorEvent("overflow")), "expected the event to be dropped")
	assert.Len(t, c.send, sendQueueDepth, "expected the queue depth to be unchanged")
}

func TestClientUserDefaults(t *testing.T) {
	c := newTestClient(t, "conn-1")

	assert.Zero(t, c.userId(), "expected zero user id before announce")
	assert.Equal(t, "anonymous", c.username(), "expected placeholder username before announce")

	c.setUser(types.User{Id: 1, Username: "testuser"})
	assert.Equal(t, 1, c.userId())
	assert.Equal(t, "testuser", c.username())
}

func TestErrorMessage(t *testing.T) {
	tt := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "invalid input",
			err:      fmt.Errorf("%w: content is required", ErrInvalidInput),
			expected: "invalid input: content is required",
		},
		{
			name:     "not found",
			err:      fmt.Errorf("get message: %w", database.ErrNotFound),
			expected: "not found",
		},
		{
			name:     "duplicate",
			err:      fmt.Errorf("create reaction: %w", database.ErrDuplicate),
			expected: "already exists",
		},
		{
			name:     "internal",
			err:      errors.New("pq: connection refused"),
			expected: "internal server error",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, errorMessage(tc.err))
		})
	}
}
