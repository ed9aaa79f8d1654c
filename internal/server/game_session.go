package server

import (
	"log"
	"time"

	"towerdefense-vs/internal/models"
	"towerdefense-vs/internal/network"
)

// playMatch runs the fixed-rate authoritative loop until the match ends or the
// server stops. A tick that overruns its budget is not caught up.
func (s *GameServer) playMatch() {
	dt := s.game.TickInterval()
	budget := time.Duration(dt * float64(time.Second))
	every := s.game.Settings.StateBroadcastInterval
	if every <= 0 {
		every = 1
	}
	log.Printf("[Match %s] Game loop started (%d ticks/s, state every %d ticks)", s.MatchID(), s.game.Settings.TickRate, every)

	for s.running.Load() && s.Phase() == PhasePlaying {
		start := time.Now()

		players := s.sessions.all()
		for _, p := range players {
			s.drainInbox(p)
		}
		for _, p := range players {
			p.lane.Update(dt)
		}

		if winner, over := s.checkWinner(); over {
			s.broadcastState()
			s.finish(winner)
			break
		}

		s.tickCount++
		if s.tickCount%every == 0 {
			s.broadcastState()
		}

		if elapsed := time.Since(start); elapsed < budget {
			time.Sleep(budget - elapsed)
		}
	}
}

// drainInbox applies every queued message of a player without blocking.
func (s *GameServer) drainInbox(p *session) {
	for {
		select {
		case msg := <-p.inbox:
			s.applyMessage(p, msg)
		default:
			return
		}
	}
}

// applyMessage executes one player intent against the lanes. Rejected
// actions change nothing; the next GAME_STATE shows the result either way.
func (s *GameServer) applyMessage(p *session, msg network.Message) {
	switch m := msg.(type) {
	case network.PlaceTower:
		p.lane.PlaceTower(m.TowerType, m.Col, m.Row)
	case network.SellTower:
		p.lane.SellTower(m.TowerID)
	case network.UpgradeTower:
		p.lane.UpgradeTower(m.TowerID)
	case network.SendEnemy:
		s.sendEnemies(p, m)
	case network.Ready:
	default:
		log.Printf("%s Ignoring %s from player %d", s.logPrefix(), msg.MessageType(), p.id)
	}
}

// sendEnemies charges the sender the enemy type's send cost once per request
// and drops count enemies onto the opponent's lane. count is capped at the
// type's send_count, the group one send buys.
func (s *GameServer) sendEnemies(p *session, m network.SendEnemy) {
	spec, ok := s.game.Enemies[m.EnemyType]
	if !ok || m.Count <= 0 {
		return
	}
	count := m.Count
	if limit := max(spec.SendCount, 1); count > limit {
		count = limit
	}
	opp := s.sessions.opponent(p.id)
	if opp == nil {
		return
	}
	if !p.lane.SpendGold(spec.SendCost) {
		return
	}
	opp.lane.SpawnExtraEnemies(m.EnemyType, count)
	log.Printf("%s Player %d sent %dx %s to player %d", s.logPrefix(), p.id, count, m.EnemyType, opp.id)
}

// checkWinner decides whether the match is over. A lane that ran out of lives
// loses; players are checked in id order. When both lanes survived every wave,
// more lives wins and equal lives is a draw (winner 0).
func (s *GameServer) checkWinner() (winner int, over bool) {
	players := s.sessions.all()
	for _, p := range players {
		if p.lane.Phase() == models.PhaseGameOver && p.lane.Lives() <= 0 {
			if opp := s.sessions.opponent(p.id); opp != nil {
				return opp.id, true
			}
			return 0, true
		}
	}

	for _, p := range players {
		if p.lane.Phase() != models.PhaseGameOver {
			return 0, false
		}
	}
	if len(players) != playersPerMatch {
		return 0, true
	}
	a, b := players[0], players[1]
	switch {
	case a.lane.Lives() > b.lane.Lives():
		return a.id, true
	case b.lane.Lives() > a.lane.Lives():
		return b.id, true
	}
	return 0, true
}

// broadcastState sends every player its own lane and its opponent's.
func (s *GameServer) broadcastState() {
	players := s.sessions.all()
	states := make(map[int]models.LaneSnapshot, len(players))
	for _, p := range players {
		states[p.id] = p.lane.State()
	}
	for _, p := range players {
		msg := network.GameState{YourState: states[p.id]}
		if opp := s.sessions.opponent(p.id); opp != nil {
			msg.OpponentState = states[opp.id]
		}
		if err := p.send(msg); err != nil {
			log.Printf("%s Error sending GAME_STATE to player %d: %v", s.logPrefix(), p.id, err)
		}
	}
}

// finish ends the match once: it records the winner and broadcasts GAME_OVER.
// Later calls are no-ops.
func (s *GameServer) finish(winner int) bool {
	s.mu.Lock()
	if s.phase == PhaseGameOver {
		s.mu.Unlock()
		return false
	}
	s.phase = PhaseGameOver
	s.winner = winner
	s.mu.Unlock()

	if winner == 0 {
		log.Printf("%s Match over: draw", s.logPrefix())
	} else {
		log.Printf("%s Match over: player %d wins", s.logPrefix(), winner)
	}
	s.sessions.broadcast(network.GameOver{Winner: winner})
	return true
}
