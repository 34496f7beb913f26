package server

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/minislack/minislack/internal/database"
	"github.com/minislack/minislack/internal/types"
	"github.com/teris-io/shortid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxEventSize   = 4096
	sendQueueDepth = 256
)

// Client is one live socket connection. Its identity exists only in
// memory, it carries at most one announced user, and it is destroyed on
// disconnect. A connection never resumes: a reconnecting peer gets a
// fresh Client with a fresh id.
type Client struct {
	id          string
	conn        *websocket.Conn
	chatServer  *ChatServer
	log         *log.Logger
	user        *types.User
	userLock    sync.RWMutex
	send        chan *ServerEvent
	stop        chan struct{}
	stopOnce    sync.Once
	cleanupOnce sync.Once
}

func NewClient(conn *websocket.Conn, cs *ChatServer, l *log.Logger) (*Client, error) {
	id, err := shortid.Generate()
	if err != nil {
		return nil, err
	}

	return &Client{
		id:         id,
		conn:       conn,
		chatServer: cs,
		log:        l,
		send:       make(chan *ServerEvent, sendQueueDepth),
		stop:       make(chan struct{}),
	}, nil
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := json.Marshal(event)
			if err != nil {
				c.log.Println("failed to serialize event:", err)
				continue
			}

			if !c.writeMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			if !c.writeMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
	}()

	c.conn.SetReadLimit(maxEventSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var event ClientEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			c.log.Println("error parsing event:", err)
			c.queueEvent(ErrorEvent("invalid event format"))
			continue
		}

		c.dispatch(&event)
	}
}

// dispatch runs one inbound event to completion. A failing handler
// produces an error event for this connection only; it never takes down
// the dispatcher or other connections.
func (c *Client) dispatch(event *ClientEvent) {
	switch event.Type {
	case EventUserOnline:
		var d UserOnline
		if !c.decodeData(event.Data, &d) {
			return
		}

		if err := c.chatServer.AnnounceOnline(c, d.UserId); err != nil {
			c.log.Printf("announce online: %v", err)
			c.queueEvent(ErrorEvent(errorMessage(err)))
		}
	case EventJoinChannel:
		var d JoinChannel
		if !c.decodeData(event.Data, &d) {
			return
		}

		if err := c.chatServer.JoinChannel(c, d.ChannelId); err != nil {
			c.log.Printf("join channel: %v", err)
			c.queueEvent(ErrorEvent(errorMessage(err)))
		}
	case EventLeaveChannel:
		var d LeaveChannel
		if !c.decodeData(event.Data, &d) {
			return
		}

		c.chatServer.LeaveChannel(c, d.ChannelId)
	case EventSendMessage:
		var d SendMessage
		if !c.decodeData(event.Data, &d) {
			return
		}

		if _, err := c.chatServer.PostMessage(d.ChannelId, d.UserId, d.Content); err != nil {
			c.log.Printf("send message: %v", err)
			c.queueEvent(ErrorEvent(errorMessage(err)))
		}
	case EventTyping:
		var d Typing
		if !c.decodeData(event.Data, &d) {
			return
		}

		c.chatServer.Typing(c, d)
	default:
		c.queueEvent(ErrorEvent("unknown event type"))
	}
}

func (c *Client) decodeData(raw json.RawMessage, v any) bool {
	if err := json.Unmarshal(raw, v); err != nil {
		c.log.Println("error parsing event data:", err)
		c.queueEvent(ErrorEvent("invalid event format"))
		return false
	}

	return true
}

// queueEvent hands an event to the write pump without blocking. A full
// queue drops the event: delivery is best-effort and a dead peer must not
// stall its senders.
func (c *Client) queueEvent(event *ServerEvent) bool {
	select {
	case c.send <- event:
	default:
		c.log.Printf("send queue full for connection %q, dropping event", c.id)
		return false
	}

	return true
}

func (c *Client) writeMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

// cleanup runs the disconnect sequence exactly once, however many paths
// race to it.
func (c *Client) cleanup() {
	c.cleanupOnce.Do(func() {
		c.chatServer.DisconnectClient(c)
		c.close()
	})
}

func (c *Client) close() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Client) setUser(user types.User) {
	c.userLock.Lock()
	defer c.userLock.Unlock()
	c.user = &user
}

func (c *Client) userId() int {
	c.userLock.RLock()
	defer c.userLock.RUnlock()

	if c.user == nil {
		return 0
	}
	return c.user.Id
}

func (c *Client) username() string {
	c.userLock.RLock()
	defer c.userLock.RUnlock()

	if c.user == nil {
		return "anonymous"
	}
	return c.user.Username
}

// errorMessage converts a core error into the generic message carried by
// an error event. Internal failures never leak detail to the peer.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return err.Error()
	case errors.Is(err, database.ErrNotFound):
		return "not found"
	case errors.Is(err, database.ErrDuplicate):
		return "already exists"
	default:
		return "internal server error"
	}
}
