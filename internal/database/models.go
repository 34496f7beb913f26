package database

import (
	"database/sql"
	"time"
)

type User struct {
	Id          int
	Username    string
	Email       string
	DisplayName string
	Status      string
	CreatedAt   time.Time
}

type Channel struct {
	Id          int
	Name        string
	Description string
	IsPrivate   bool
	CreatedBy   sql.NullInt64
	CreatorName sql.NullString
	CreatedAt   time.Time
}

type Message struct {
	Id          int
	ChannelId   int
	UserId      int
	Content     string
	IsEdited    bool
	Username    string
	DisplayName string
	CreatedAt   time.Time
}

type Reaction struct {
	Id        int
	MessageId int
	UserId    int
	Emoji     string
	Username  string
	CreatedAt time.Time
}

type CreateUserParams struct {
	Username    string
	Email       string
	DisplayName string
}

type CreateChannelParams struct {
	Name        string
	Description string
	IsPrivate   bool
	CreatedBy   *int
}

type CreateMessageParams struct {
	ChannelId int
	UserId    int
	Content   string
}

type CreateReactionParams struct {
	MessageId int
	UserId    int
	Emoji     string
}
