package server

import (
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"towerdefense-vs/internal/game"
	"towerdefense-vs/internal/network"

	"github.com/google/uuid"
)

const playersPerMatch = 2

// acceptPlayers fills the lobby. The accept deadline lets the loop notice Stop;
// a third connection is never accepted.
func (s *GameServer) acceptPlayers() error {
	log.Printf("[Lobby] Waiting for %d players...", playersPerMatch)
	for s.running.Load() && s.Phase() == PhaseLobby && s.sessions.count() < playersPerMatch {
		s.listener.SetDeadline(time.Now().Add(s.cfg.AcceptTimeout))
		conn, err := s.listener.Accept()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if !s.running.Load() {
				return ErrStopped
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.addPlayer(conn)
	}
	if !s.running.Load() || s.Phase() != PhaseLobby {
		return ErrStopped
	}
	return nil
}

// addPlayer registers a connection with a fresh lane, greets it and starts its reader.
func (s *GameServer) addPlayer(conn net.Conn) {
	id := s.sessions.count() + 1
	p := newSession(id, conn, game.NewLaneGame(s.game, s.mapData), s.cfg.WriteTimeout)
	s.sessions.add(p)
	log.Printf("[Lobby] Player %d connected from %s", id, conn.RemoteAddr())

	welcome := network.Welcome{PlayerID: id, MapData: s.mapData, MapDigest: s.mapDigest}
	if err := p.send(welcome); err != nil {
		log.Printf("[Lobby] Error sending WELCOME to player %d: %v", id, err)
	}
	s.sessions.broadcast(network.PlayerCount{Count: s.sessions.count()})

	s.receivers.Add(1)
	go s.receiveLoop(p)
}

// receiveLoop decodes frames from one connection into its inbox. When the
// connection ends, or the player sends DISCONNECT, the other player wins.
func (s *GameServer) receiveLoop(p *session) {
	defer s.receivers.Done()

	err := network.ReadMessages(p.conn, func(msg network.Message) bool {
		if _, ok := msg.(network.Disconnect); ok {
			return false
		}
		select {
		case p.inbox <- msg:
			return true
		case <-s.done:
			return false
		}
	})

	if !s.running.Load() {
		return
	}
	if err != nil {
		log.Printf("%s Player %d disconnected: %v", s.logPrefix(), p.id, err)
	} else {
		log.Printf("%s Player %d left the match", s.logPrefix(), p.id)
	}

	winner := 0
	if opp := s.sessions.opponent(p.id); opp != nil {
		winner = opp.id
	}
	s.finish(winner)
}

// waitForReady polls the inboxes until both players sent READY, then starts the match.
// Anything else a player sends before READY is discarded; messages after READY
// stay queued for the first tick.
func (s *GameServer) waitForReady() bool {
	for s.running.Load() && s.Phase() == PhaseLobby && !s.allReady() {
		for _, p := range s.sessions.all() {
			if p.ready {
				continue
			}
			s.pollReady(p)
		}
		time.Sleep(s.cfg.ReadyPollInterval)
	}
	if !s.running.Load() {
		return false
	}

	matchID := uuid.New().String()
	s.mu.Lock()
	if s.phase != PhaseLobby {
		s.mu.Unlock()
		return false
	}
	s.phase = PhasePlaying
	s.matchID = matchID
	s.mu.Unlock()

	log.Printf("[Match %s] Both players ready, starting game", matchID)
	s.sessions.broadcast(network.GameStart{MatchID: matchID})
	for _, p := range s.sessions.all() {
		p.lane.StartGame()
	}
	return true
}

func (s *GameServer) pollReady(p *session) {
	for {
		select {
		case msg := <-p.inbox:
			if _, ok := msg.(network.Ready); ok {
				p.ready = true
				log.Printf("[Lobby] Player %d is ready", p.id)
				return
			}
			log.Printf("[Lobby] Discarding %s from player %d before READY", msg.MessageType(), p.id)
		default:
			return
		}
	}
}

func (s *GameServer) allReady() bool {
	all := s.sessions.all()
	if len(all) < playersPerMatch {
		return false
	}
	for _, p := range all {
		if !p.ready {
			return false
		}
	}
	return true
}
