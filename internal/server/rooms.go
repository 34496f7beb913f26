package server

import "sync"

// roomRouter maps a channel id to the set of connections currently
// subscribed to it. Membership lives only in memory; empty rooms stay in
// the map and simply receive no broadcasts. Delivery is best-effort: the
// membership snapshot is taken under the lock and every queue attempt
// happens outside it, so one slow connection never stalls the rest of the
// room.
type roomRouter struct {
	mu    sync.RWMutex
	rooms map[int]map[*Client]struct{}
}

func newRoomRouter() *roomRouter {
	return &roomRouter{
		rooms: make(map[int]map[*Client]struct{}),
	}
}

// join adds the connection to the room, creating the room on first join.
// It is idempotent and reports whether the room was newly created.
func (rr *roomRouter) join(channelId int, c *Client) bool {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	room, ok := rr.rooms[channelId]
	if !ok {
		room = make(map[*Client]struct{})
		rr.rooms[channelId] = room
	}

	room[c] = struct{}{}
	return !ok
}

// leave removes the connection from the room. Removing a non-member is a
// no-op.
func (rr *roomRouter) leave(channelId int, c *Client) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if room, ok := rr.rooms[channelId]; ok {
		delete(room, c)
	}
}

// leaveAll removes the connection from every room it belongs to.
func (rr *roomRouter) leaveAll(c *Client) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	for _, room := range rr.rooms {
		delete(room, c)
	}
}

func (rr *roomRouter) contains(channelId int, c *Client) bool {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	_, ok := rr.rooms[channelId][c]
	return ok
}

// members returns a snapshot of the room's membership.
func (rr *roomRouter) members(channelId int) []*Client {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	room := rr.rooms[channelId]
	members := make([]*Client, 0, len(room))
	for c := range room {
		members = append(members, c)
	}

	return members
}

func (rr *roomRouter) broadcast(channelId int, event *ServerEvent) {
	rr.broadcastExcept(channelId, event, nil)
}

func (rr *roomRouter) broadcastExcept(channelId int, event *ServerEvent, skip *Client) {
	for _, c := range rr.members(channelId) {
		if c == skip {
			continue
		}

		c.queueEvent(event)
	}
}
