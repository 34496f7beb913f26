package server

import (
	"encoding/json"
	"time"

	"github.com/minislack/minislack/internal/types"
)

// Inbound socket event names.
const (
	EventUserOnline   = "user_online"
	EventJoinChannel  = "join_channel"
	EventLeaveChannel = "leave_channel"
	EventSendMessage  = "send_message"
	EventTyping       = "typing"
)

// Outbound socket event names.
const (
	EventConnected         = "connected"
	EventJoinedChannel     = "joined_channel"
	EventLeftChannel       = "left_channel"
	EventUserStatusChanged = "user_status_changed"
	EventOnlineUsers       = "online_users"
	EventNewMessage        = "new_message"
	EventMessageUpdated    = "message_updated"
	EventMessageDeleted    = "message_deleted"
	EventChannelCreated    = "channel_created"
	EventUserTyping        = "user_typing"
	EventError             = "error"
)

// ClientEvent is the envelope for every inbound socket event. The payload
// is decoded per event type.
type ClientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type UserOnline struct {
	UserId int `json:"user_id"`
}

type JoinChannel struct {
	ChannelId int `json:"channel_id"`
}

type LeaveChannel struct {
	ChannelId int `json:"channel_id"`
}

type SendMessage struct {
	ChannelId int    `json:"channel_id"`
	UserId    int    `json:"user_id"`
	Content   string `json:"content"`
}

type Typing struct {
	ChannelId int    `json:"channel_id"`
	UserId    int    `json:"user_id"`
	Username  string `json:"username"`
	IsTyping  bool   `json:"is_typing"`
}

// ServerEvent is the envelope for every outbound socket event.
type ServerEvent struct {
	Type      string          `json:"type"`
	Timestamp types.Timestamp `json:"timestamp"`
	Data      any             `json:"data,omitempty"`
}

func newServerEvent(eventType string, data any) *ServerEvent {
	return &ServerEvent{
		Type:      eventType,
		Timestamp: types.NewTimestamp(time.Now()),
		Data:      data,
	}
}

func ConnectedEvent(connectionId string) *ServerEvent {
	return newServerEvent(EventConnected, map[string]any{
		"connection_id": connectionId,
		"message":       "connected",
	})
}

func JoinedChannelEvent(channelId int, userId int, username string) *ServerEvent {
	return newServerEvent(EventJoinedChannel, map[string]any{
		"channel_id": channelId,
		"user_id":    userId,
		"message":    username + " joined the channel",
	})
}

func LeftChannelEvent(channelId int, userId int, username string) *ServerEvent {
	return newServerEvent(EventLeftChannel, map[string]any{
		"channel_id": channelId,
		"user_id":    userId,
		"message":    username + " left the channel",
	})
}

func UserStatusChangedEvent(userId int, status types.UserStatus, user *types.User) *ServerEvent {
	data := map[string]any{
		"user_id": userId,
		"status":  status,
	}
	if user != nil {
		data["user"] = user
	}

	return newServerEvent(EventUserStatusChanged, data)
}

func OnlineUsersEvent(userIds []int) *ServerEvent {
	return newServerEvent(EventOnlineUsers, map[string]any{
		"user_ids": userIds,
	})
}

func NewMessageEvent(msg types.Message) *ServerEvent {
	return newServerEvent(EventNewMessage, map[string]any{
		"channel_id": msg.ChannelId,
		"message":    msg,
	})
}

func MessageUpdatedEvent(msg types.Message) *ServerEvent {
	return newServerEvent(EventMessageUpdated, map[string]any{
		"channel_id": msg.ChannelId,
		"message":    msg,
	})
}

func MessageDeletedEvent(channelId, messageId int) *ServerEvent {
	return newServerEvent(EventMessageDeleted, map[string]any{
		"channel_id": channelId,
		"message_id": messageId,
	})
}

func ChannelCreatedEvent(channel types.Channel) *ServerEvent {
	return newServerEvent(EventChannelCreated, map[string]any{
		"channel": channel,
	})
}

func UserTypingEvent(t Typing) *ServerEvent {
	return newServerEvent(EventUserTyping, map[string]any{
		"channel_id": t.ChannelId,
		"user_id":    t.UserId,
		"username":   t.Username,
		"is_typing":  t.IsTyping,
	})
}

func ErrorEvent(message string) *ServerEvent {
	return newServerEvent(EventError, map[string]any{
		"message": message,
	})
}
