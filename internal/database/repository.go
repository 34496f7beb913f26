package database

// Store is the persistence surface consumed by the realtime core and the
// REST handlers. Every write is atomic; uniqueness violations surface as
// ErrDuplicate and missing rows as ErrNotFound.
type Store interface {
	Ping() error
	CreateUser(params CreateUserParams) (User, error)
	GetUsers() ([]User, error)
	GetUserById(id int) (User, error)
	FindUserByUsernameEmail(username, email string) (User, error)
	CreateChannel(params CreateChannelParams) (Channel, error)
	GetChannels() ([]Channel, error)
	GetChannel(id int) (Channel, error)
	DeleteChannel(id int) error
	CreateMessage(params CreateMessageParams) (Message, error)
	GetMessage(id int) (Message, error)
	GetMessages(channelId int) ([]Message, error)
	UpdateMessage(id int, content string) error
	DeleteMessage(id int) error
	CreateReaction(params CreateReactionParams) (Reaction, error)
	GetReactions(messageId int) ([]Reaction, error)
	DeleteReaction(id int) error
}
