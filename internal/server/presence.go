package server

import "sync"

// presenceRegistry maps a user id to the connection it announced itself
// online from. A user is online while exactly one such entry exists; a
// reverse index keeps disconnect cleanup O(1).
type presenceRegistry struct {
	mu     sync.Mutex
	byUser map[int]string
	byConn map[string]int
}

func newPresenceRegistry() *presenceRegistry {
	return &presenceRegistry{
		byUser: make(map[int]string),
		byConn: make(map[string]int),
	}
}

// announceOnline records connId as the user's live connection, replacing
// any previous one. It returns a snapshot of all online user ids including
// the announcer, and whether the user was already online.
func (p *presenceRegistry) announceOnline(userId int, connId string) ([]int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prev, wasOnline := p.byUser[userId]
	if wasOnline {
		delete(p.byConn, prev)
	}

	p.byUser[userId] = connId
	p.byConn[connId] = userId

	online := make([]int, 0, len(p.byUser))
	for id := range p.byUser {
		online = append(online, id)
	}

	return online, wasOnline
}

// removeByConnection frees the user announced from connId, if any.
func (p *presenceRegistry) removeByConnection(connId string) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	userId, ok := p.byConn[connId]
	if !ok {
		return 0, false
	}

	delete(p.byConn, connId)
	if p.byUser[userId] == connId {
		delete(p.byUser, userId)
	}

	return userId, true
}

func (p *presenceRegistry) isOnline(userId int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.byUser[userId]
	return ok
}
