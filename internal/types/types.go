package types

import (
	"fmt"
	"strconv"
	"time"
)

// TimeFormat is the fixed format every persisted timestamp is serialized
// with at the API and socket boundary.
const TimeFormat = "2006-01-02 15:04:05"

// Timestamp wraps time.Time so JSON always carries the fixed format.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t.UTC()}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.UTC().Format(TimeFormat))), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("unquote timestamp: %w", err)
	}

	parsed, err := time.Parse(TimeFormat, s)
	if err != nil {
		return fmt.Errorf("parse timestamp: %w", err)
	}

	t.Time = parsed
	return nil
}

type UserStatus string

const (
	StatusOnline  UserStatus = "online"
	StatusOffline UserStatus = "offline"
	StatusAway    UserStatus = "away"
)

type User struct {
	Id          int        `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Status      UserStatus `json:"status"`
	IsOnline    bool       `json:"is_online"`
}

type Channel struct {
	Id          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsPrivate   bool      `json:"is_private"`
	CreatedBy   *int      `json:"created_by"`
	CreatorName string    `json:"creator_name,omitempty"`
	CreatedAt   Timestamp `json:"created_at"`
}

// Message is always presented joined with its author's username and
// display name.
type Message struct {
	Id          int       `json:"id"`
	ChannelId   int       `json:"channel_id"`
	UserId      int       `json:"user_id"`
	Content     string    `json:"content"`
	IsEdited    bool      `json:"is_edited"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	CreatedAt   Timestamp `json:"created_at"`
}

type Reaction struct {
	Id        int       `json:"id"`
	MessageId int       `json:"message_id"`
	UserId    int       `json:"user_id"`
	Emoji     string    `json:"emoji"`
	Username  string    `json:"username,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
}
