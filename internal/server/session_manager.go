package server

import (
	"log"
	"net"
	"sync"
	"time"

	"towerdefense-vs/internal/game"
	"towerdefense-vs/internal/network"
)

const inboxSize = 256

// session is one connected player. Only the tick goroutine touches lane and ready;
// the receive goroutine only feeds inbox.
type session struct {
	id    int
	conn  net.Conn
	inbox chan network.Message
	lane  *game.LaneGame
	ready bool

	writeMu      sync.Mutex
	writeTimeout time.Duration
}

func newSession(id int, conn net.Conn, lane *game.LaneGame, writeTimeout time.Duration) *session {
	return &session{
		id:           id,
		conn:         conn,
		inbox:        make(chan network.Message, inboxSize),
		lane:         lane,
		writeTimeout: writeTimeout,
	}
}

// sendFrame writes an encoded frame. Writes from the tick loop and the
// disconnect path are serialized so frames never interleave.
func (p *session) sendFrame(frame []byte) error {
	if p.conn == nil {
		return net.ErrClosed
	}
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if p.writeTimeout > 0 {
		p.conn.SetWriteDeadline(time.Now().Add(p.writeTimeout))
	}
	_, err := p.conn.Write(frame)
	return err
}

func (p *session) send(msg network.Message) error {
	frame, err := network.Encode(msg)
	if err != nil {
		return err
	}
	return p.sendFrame(frame)
}

// sessionManager keeps the players of the match ordered by id.
type sessionManager struct {
	mu       sync.RWMutex
	sessions []*session
}

func newSessionManager() *sessionManager {
	return &sessionManager{}
}

func (m *sessionManager) add(p *session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, p)
}

func (m *sessionManager) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// all returns the sessions in player id order.
func (m *sessionManager) all() []*session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*session, len(m.sessions))
	copy(out, m.sessions)
	return out
}

func (m *sessionManager) get(id int) *session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.sessions {
		if p.id == id {
			return p
		}
	}
	return nil
}

// opponent returns the other player of a two-player match, or nil.
func (m *sessionManager) opponent(id int) *session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.sessions {
		if p.id != id {
			return p
		}
	}
	return nil
}

// broadcast sends msg to every player. A failed write is logged and skipped.
func (m *sessionManager) broadcast(msg network.Message) {
	frame, err := network.Encode(msg)
	if err != nil {
		log.Printf("Error encoding %s for broadcast: %v", msg.MessageType(), err)
		return
	}
	for _, p := range m.all() {
		if err := p.sendFrame(frame); err != nil {
			log.Printf("Error sending %s to player %d: %v", msg.MessageType(), p.id, err)
		}
	}
}

func (m *sessionManager) closeAll() {
	for _, p := range m.all() {
		if p.conn != nil {
			p.conn.Close()
		}
	}
}
