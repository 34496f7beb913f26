package server

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/minislack/minislack/internal/database"
	"github.com/minislack/minislack/internal/stats"
	"github.com/minislack/minislack/internal/types"
)

// ErrInvalidInput indicates a required field was missing from a request or
// socket event. No state changes when it is returned.
var ErrInvalidInput = errors.New("invalid input")

// Metric names registered with the stats provider.
const (
	metricActiveConnections = "NumActiveConnections"
	metricOnlineUsers       = "NumOnlineUsers"
	metricRooms             = "NumRooms"
	metricMessagesSent      = "MessagesSent"
)

// ChatServer owns the in-memory realtime state: the set of live
// connections, the presence registry and the room router. Every operation
// that both the REST handlers and the socket event loop need is exposed
// here once, so the two entry points cannot diverge. Store calls happen
// outside the registry and router locks; only the in-memory mutation and
// the fan-out are serialized.
type ChatServer struct {
	log         *log.Logger
	db          database.Store
	stats       stats.StatsProvider
	presence    *presenceRegistry
	rooms       *roomRouter
	clientsLock sync.Mutex
	clients     map[*Client]struct{}
}

func NewChatServer(logger *log.Logger, db database.Store, sp stats.StatsProvider) (*ChatServer, error) {
	cs := &ChatServer{
		log:      logger,
		db:       db,
		stats:    sp,
		presence: newPresenceRegistry(),
		rooms:    newRoomRouter(),
		clients:  make(map[*Client]struct{}),
	}

	sp.RegisterMetric(metricActiveConnections)
	sp.RegisterMetric(metricOnlineUsers)
	sp.RegisterMetric(metricRooms)
	sp.RegisterMetric(metricMessagesSent)

	return cs, nil
}

// RegisterClient adds a freshly upgraded connection and acknowledges it.
func (cs *ChatServer) RegisterClient(c *Client) {
	cs.clientsLock.Lock()
	cs.clients[c] = struct{}{}
	cs.clientsLock.Unlock()

	cs.stats.Incr(metricActiveConnections)
	cs.log.Printf("connection %q registered", c.id)

	c.queueEvent(ConnectedEvent(c.id))
}

// DisconnectClient runs the terminal cleanup for a connection: leave every
// room, free the presence entry and announce the user offline. The client
// guarantees it is invoked at most once.
func (cs *ChatServer) DisconnectClient(c *Client) {
	cs.rooms.leaveAll(c)

	if userId, ok := cs.presence.removeByConnection(c.id); ok {
		cs.stats.Decr(metricOnlineUsers)
		cs.broadcastAll(UserStatusChangedEvent(userId, types.StatusOffline, nil))
	}

	cs.clientsLock.Lock()
	if _, ok := cs.clients[c]; ok {
		delete(cs.clients, c)
		cs.stats.Decr(metricActiveConnections)
	}
	cs.clientsLock.Unlock()

	cs.log.Printf("connection %q removed", c.id)
}

// AnnounceOnline binds the connection to a user, broadcasts the status
// change to every connection and delivers the online-user snapshot to the
// announcer only.
func (cs *ChatServer) AnnounceOnline(c *Client, userId int) error {
	if userId == 0 {
		return fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	dbUser, err := cs.db.GetUserById(userId)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	online, wasOnline := cs.presence.announceOnline(userId, c.id)
	if !wasOnline {
		cs.stats.Incr(metricOnlineUsers)
	}

	user := cs.toUser(dbUser)
	user.Status = types.StatusOnline
	c.setUser(user)

	cs.broadcastAll(UserStatusChangedEvent(userId, types.StatusOnline, &user))
	c.queueEvent(OnlineUsersEvent(online))

	return nil
}

// JoinChannel subscribes the connection to the channel's room and notifies
// the room, joiner included.
func (cs *ChatServer) JoinChannel(c *Client, channelId int) error {
	if channelId == 0 {
		return fmt.Errorf("%w: channel_id is required", ErrInvalidInput)
	}

	if created := cs.rooms.join(channelId, c); created {
		cs.stats.Incr(metricRooms)
	}

	cs.rooms.broadcast(channelId, JoinedChannelEvent(channelId, c.userId(), c.username()))
	return nil
}

// LeaveChannel unsubscribes the connection from the channel's room. The
// leave itself is unacknowledged; the remaining members get a notice.
func (cs *ChatServer) LeaveChannel(c *Client, channelId int) {
	cs.rooms.leave(channelId, c)
	cs.rooms.broadcast(channelId, LeftChannelEvent(channelId, c.userId(), c.username()))
}

// Typing relays a typing indicator to the room, excluding the typist.
func (cs *ChatServer) Typing(c *Client, t Typing) {
	cs.rooms.broadcastExcept(t.ChannelId, UserTypingEvent(t), c)
}

// PostMessage persists a message and fans it out to the channel's room.
// Both the REST path and the socket path call this one function.
func (cs *ChatServer) PostMessage(channelId, userId int, content string) (types.Message, error) {
	if channelId == 0 || userId == 0 || content == "" {
		return types.Message{}, fmt.Errorf("%w: channel_id, user_id and content are required", ErrInvalidInput)
	}

	created, err := cs.db.CreateMessage(database.CreateMessageParams{
		ChannelId: channelId,
		UserId:    userId,
		Content:   content,
	})
	if err != nil {
		return types.Message{}, fmt.Errorf("create message: %w", err)
	}

	full, err := cs.db.GetMessage(created.Id)
	if err != nil {
		return types.Message{}, fmt.Errorf("get message: %w", err)
	}

	msg := cs.toMessage(full)
	cs.stats.Incr(metricMessagesSent)
	cs.rooms.broadcast(msg.ChannelId, NewMessageEvent(msg))

	return msg, nil
}

// EditMessage updates a message's content and broadcasts the updated row
// to the channel recovered from the message itself, never from the caller.
func (cs *ChatServer) EditMessage(messageId int, content string) (types.Message, error) {
	if content == "" {
		return types.Message{}, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}

	if err := cs.db.UpdateMessage(messageId, content); err != nil {
		return types.Message{}, fmt.Errorf("update message: %w", err)
	}

	full, err := cs.db.GetMessage(messageId)
	if err != nil {
		return types.Message{}, fmt.Errorf("get message: %w", err)
	}

	msg := cs.toMessage(full)
	cs.rooms.broadcast(msg.ChannelId, MessageUpdatedEvent(msg))

	return msg, nil
}

// RemoveMessage deletes a message and notifies the room it belonged to.
func (cs *ChatServer) RemoveMessage(messageId int) error {
	existing, err := cs.db.GetMessage(messageId)
	if err != nil {
		return fmt.Errorf("get message: %w", err)
	}

	if err := cs.db.DeleteMessage(messageId); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}

	cs.rooms.broadcast(existing.ChannelId, MessageDeletedEvent(existing.ChannelId, messageId))
	return nil
}

// CreateChannel persists a channel and announces it to every connection:
// nobody has joined a brand-new channel yet, so a room broadcast would
// reach no one.
func (cs *ChatServer) CreateChannel(params database.CreateChannelParams) (types.Channel, error) {
	if params.Name == "" {
		return types.Channel{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	created, err := cs.db.CreateChannel(params)
	if err != nil {
		return types.Channel{}, fmt.Errorf("create channel: %w", err)
	}

	channel := cs.toChannel(created)
	cs.broadcastAll(ChannelCreatedEvent(channel))

	return channel, nil
}

// RemoveChannel deletes a channel and, through the store, every message
// and reaction under it.
func (cs *ChatServer) RemoveChannel(channelId int) (types.Channel, error) {
	existing, err := cs.db.GetChannel(channelId)
	if err != nil {
		return types.Channel{}, fmt.Errorf("get channel: %w", err)
	}

	if err := cs.db.DeleteChannel(channelId); err != nil {
		return types.Channel{}, fmt.Errorf("delete channel: %w", err)
	}

	return cs.toChannel(existing), nil
}

// AddReaction records an emoji reaction. At most one reaction exists per
// (message, user, emoji); the store rejects duplicates.
func (cs *ChatServer) AddReaction(messageId, userId int, emoji string) (types.Reaction, error) {
	if userId == 0 || emoji == "" {
		return types.Reaction{}, fmt.Errorf("%w: user_id and emoji are required", ErrInvalidInput)
	}

	created, err := cs.db.CreateReaction(database.CreateReactionParams{
		MessageId: messageId,
		UserId:    userId,
		Emoji:     emoji,
	})
	if err != nil {
		return types.Reaction{}, fmt.Errorf("create reaction: %w", err)
	}

	return cs.toReaction(created), nil
}

func (cs *ChatServer) Reactions(messageId int) ([]types.Reaction, error) {
	rows, err := cs.db.GetReactions(messageId)
	if err != nil {
		return nil, fmt.Errorf("get reactions: %w", err)
	}

	reactions := make([]types.Reaction, 0, len(rows))
	for _, row := range rows {
		reactions = append(reactions, cs.toReaction(row))
	}

	return reactions, nil
}

func (cs *ChatServer) RemoveReaction(reactionId int) error {
	if err := cs.db.DeleteReaction(reactionId); err != nil {
		return fmt.Errorf("delete reaction: %w", err)
	}

	return nil
}

// IsOnline reports whether the user currently has a live announced
// connection. Used to annotate user listings.
func (cs *ChatServer) IsOnline(userId int) bool {
	return cs.presence.isOnline(userId)
}

// Shutdown stops every live connection.
func (cs *ChatServer) Shutdown() {
	cs.clientsLock.Lock()
	clients := make([]*Client, 0, len(cs.clients))
	for c := range cs.clients {
		clients = append(clients, c)
	}
	cs.clientsLock.Unlock()

	for _, c := range clients {
		c.close()
	}
}

// broadcastAll delivers an event to every live connection regardless of
// room membership. Presence is channel-agnostic.
func (cs *ChatServer) broadcastAll(event *ServerEvent) {
	cs.clientsLock.Lock()
	clients := make([]*Client, 0, len(cs.clients))
	for c := range cs.clients {
		clients = append(clients, c)
	}
	cs.clientsLock.Unlock()

	for _, c := range clients {
		c.queueEvent(event)
	}
}

func (cs *ChatServer) toUser(u database.User) types.User {
	return types.User{
		Id:          u.Id,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Status:      types.UserStatus(u.Status),
		IsOnline:    cs.presence.isOnline(u.Id),
	}
}

func (cs *ChatServer) toMessage(m database.Message) types.Message {
	return types.Message{
		Id:          m.Id,
		ChannelId:   m.ChannelId,
		UserId:      m.UserId,
		Content:     m.Content,
		IsEdited:    m.IsEdited,
		Username:    m.Username,
		DisplayName: m.DisplayName,
		CreatedAt:   types.NewTimestamp(m.CreatedAt),
	}
}

func (cs *ChatServer) toReaction(r database.Reaction) types.Reaction {
	return types.Reaction{
		Id:        r.Id,
		MessageId: r.MessageId,
		UserId:    r.UserId,
		Emoji:     r.Emoji,
		Username:  r.Username,
		CreatedAt: types.NewTimestamp(r.CreatedAt),
	}
}

func (cs *ChatServer) toChannel(c database.Channel) types.Channel {
	channel := types.Channel{
		Id:          c.Id,
		Name:        c.Name,
		Description: c.Description,
		IsPrivate:   c.IsPrivate,
		CreatedAt:   types.NewTimestamp(c.CreatedAt),
	}

	if c.CreatedBy.Valid {
		createdBy := int(c.CreatedBy.Int64)
		channel.CreatedBy = &createdBy
	}
	if c.CreatorName.Valid {
		channel.CreatorName = c.CreatorName.String
	}

	return channel
}
