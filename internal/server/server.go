package server

import (
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"towerdefense-vs/internal/models"
	"towerdefense-vs/internal/persistence"
)

const (
	DefaultListenAddress = "0.0.0.0:5555"
)

// Server phases.
const (
	PhaseLobby    = "lobby"
	PhasePlaying  = "playing"
	PhaseGameOver = "game_over"
)

// ErrStopped is returned by Run when the server stops before a match is played.
var ErrStopped = errors.New("server stopped before the match started")

// Config holds the transport options of a GameServer.
type Config struct {
	Address           string
	AcceptTimeout     time.Duration // lobby accept deadline, bounds how long Stop waits
	ReadyPollInterval time.Duration
	WriteTimeout      time.Duration // per-frame write deadline
	ShutdownGrace     time.Duration // delay between GAME_OVER and closing connections
}

func DefaultConfig() Config {
	return Config{
		Address:           DefaultListenAddress,
		AcceptTimeout:     time.Second,
		ReadyPollInterval: 50 * time.Millisecond,
		WriteTimeout:      2 * time.Second,
		ShutdownGrace:     time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.AcceptTimeout <= 0 {
		c.AcceptTimeout = d.AcceptTimeout
	}
	if c.ReadyPollInterval <= 0 {
		c.ReadyPollInterval = d.ReadyPollInterval
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.ShutdownGrace < 0 {
		c.ShutdownGrace = 0
	}
	return c
}

// GameServer hosts one two-player match: lobby, ready wait, then the
// authoritative tick loop. The goroutine running Run is the only writer of lane state.
type GameServer struct {
	cfg       Config
	game      *models.GameConfig
	mapData   models.MapData
	mapDigest string

	mu       sync.Mutex
	listener *net.TCPListener
	phase    string
	winner   int
	matchID  string

	sessions  *sessionManager
	running   atomic.Bool
	done      chan struct{}
	stopOnce  sync.Once
	receivers sync.WaitGroup
	tickCount int
}

// New creates a server for one match on the given map.
func New(cfg Config, game *models.GameConfig, m models.MapData) *GameServer {
	return &GameServer{
		cfg:       cfg.withDefaults(),
		game:      game,
		mapData:   m,
		mapDigest: persistence.MapDigest(m),
		phase:     PhaseLobby,
		sessions:  newSessionManager(),
		done:      make(chan struct{}),
	}
}

// Listen binds the TCP listener. Run calls it when it has not been called yet.
// After Stop it returns ErrStopped.
func (s *GameServer) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
		return ErrStopped
	default:
	}
	if s.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Address, err)
	}
	s.listener = ln.(*net.TCPListener)
	s.running.Store(true)
	log.Printf("Server listening for TCP connections on %s", ln.Addr())
	return nil
}

// Addr is the bound listener address, nil before Listen.
func (s *GameServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run plays one match and returns when it is over. It returns ErrStopped if Stop
// was called, or a player left, before both players were ready.
func (s *GameServer) Run() error {
	if err := s.Listen(); err != nil {
		return err
	}
	defer s.receivers.Wait()

	if err := s.acceptPlayers(); err != nil {
		s.Stop()
		return err
	}
	log.Println("[Lobby] Both players connected, waiting for ready")
	if !s.waitForReady() {
		s.Stop()
		return ErrStopped
	}

	s.playMatch()

	select {
	case <-time.After(s.cfg.ShutdownGrace):
	case <-s.done:
	}
	s.Stop()
	return nil
}

// Stop flips the running flag and closes the listener and every connection so
// blocked reads return. It is safe to call more than once.
func (s *GameServer) Stop() {
	s.stopOnce.Do(func() {
		log.Println("Stopping server...")
		s.mu.Lock()
		s.running.Store(false)
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		s.mu.Unlock()
		s.sessions.closeAll()
	})
}

// Phase reports lobby, playing or game_over.
func (s *GameServer) Phase() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Winner is the winning player id once the match is over, 0 for a draw.
func (s *GameServer) Winner() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.winner
}

func (s *GameServer) MatchID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matchID
}

// transition moves the server from one phase to another, failing if it is no longer in from.
func (s *GameServer) transition(from, to string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != from {
		return false
	}
	s.phase = to
	return true
}

func (s *GameServer) logPrefix() string {
	if id := s.MatchID(); id != "" {
		return "[Match " + id + "]"
	}
	return "[Lobby]"
}
