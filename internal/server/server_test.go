package server

import (
	"errors"
	"net"
	"reflect"
	"testing"
	"time"

	"towerdefense-vs/internal/game"
	"towerdefense-vs/internal/models"
	"towerdefense-vs/internal/network"
	"towerdefense-vs/internal/persistence"
)

const waitTimeout = 5 * time.Second

// shortMap is a three-tile path a goblin walks in about a second.
func shortMap() models.MapData {
	return models.MapData{
		Grid:      [][]int{{1, 1, 1}, {0, 0, 0}},
		Waypoints: [][2]int{{0, 0}, {2, 0}},
	}
}

func quickGame() *models.GameConfig {
	cfg := models.DefaultGameConfig()
	cfg.Settings.StartingLives = 1
	cfg.Settings.GoldPerSecond = 0
	cfg.Waves = [][]models.WaveGroup{{{EnemyType: "goblin", Count: 1, Interval: 0.1}}}
	return cfg
}

func startServer(t *testing.T, cfg *models.GameConfig) (*GameServer, <-chan error) {
	t.Helper()
	srv := New(Config{
		Address:           "127.0.0.1:0",
		AcceptTimeout:     50 * time.Millisecond,
		ReadyPollInterval: 10 * time.Millisecond,
		ShutdownGrace:     100 * time.Millisecond,
	}, cfg, shortMap())
	if err := srv.Listen(); err != nil {
		t.Fatalf("listen: %v", err)
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Run() }()
	t.Cleanup(srv.Stop)
	return srv, errc
}

type testClient struct {
	conn net.Conn
	msgs chan network.Message
}

func dial(t *testing.T, srv *GameServer) *testClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", srv.Addr().String(), waitTimeout)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	c := &testClient{conn: conn, msgs: make(chan network.Message, 1024)}
	go func() {
		defer close(c.msgs)
		network.ReadMessages(conn, func(m network.Message) bool {
			c.msgs <- m
			return true
		})
	}()
	t.Cleanup(func() { conn.Close() })
	return c
}

func (c *testClient) send(t *testing.T, msg network.Message) {
	t.Helper()
	if err := network.WriteMessage(c.conn, msg); err != nil {
		t.Fatalf("send %s: %v", msg.MessageType(), err)
	}
}

// expect skips messages until one of msgType arrives.
func (c *testClient) expect(t *testing.T, msgType string) network.Message {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case m, ok := <-c.msgs:
			if !ok {
				t.Fatalf("connection closed while waiting for %s", msgType)
			}
			if m.MessageType() == msgType {
				return m
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", msgType)
		}
	}
}

func waitRun(t *testing.T, errc <-chan error) error {
	t.Helper()
	select {
	case err := <-errc:
		return err
	case <-time.After(waitTimeout):
		t.Fatalf("Run did not return")
		return nil
	}
}

// joinAndStart connects two players, readies them and waits for GAME_START.
func joinAndStart(t *testing.T, srv *GameServer) (*testClient, *testClient) {
	t.Helper()
	c1 := dial(t, srv)
	c1.expect(t, network.MsgTypeWelcome)
	c2 := dial(t, srv)
	c2.expect(t, network.MsgTypeWelcome)
	c1.send(t, network.Ready{})
	c2.send(t, network.Ready{})
	c1.expect(t, network.MsgTypeGameStart)
	c2.expect(t, network.MsgTypeGameStart)
	return c1, c2
}

func TestMatchPlaysToGameOver(t *testing.T) {
	srv, errc := startServer(t, quickGame())

	c1 := dial(t, srv)
	w1 := c1.expect(t, network.MsgTypeWelcome).(network.Welcome)
	if w1.PlayerID != 1 {
		t.Fatalf("first player id = %d", w1.PlayerID)
	}
	if w1.MapDigest != persistence.MapDigest(shortMap()) || !reflect.DeepEqual(w1.MapData, shortMap()) {
		t.Fatalf("WELCOME map does not match the server map")
	}
	if pc := c1.expect(t, network.MsgTypePlayerCount).(network.PlayerCount); pc.Count != 1 {
		t.Fatalf("player count = %d, want 1", pc.Count)
	}

	c2 := dial(t, srv)
	if w2 := c2.expect(t, network.MsgTypeWelcome).(network.Welcome); w2.PlayerID != 2 {
		t.Fatalf("second player id = %d", w2.PlayerID)
	}
	if pc := c1.expect(t, network.MsgTypePlayerCount).(network.PlayerCount); pc.Count != 2 {
		t.Fatalf("player count = %d, want 2", pc.Count)
	}

	c1.send(t, network.Ready{})
	c2.send(t, network.Ready{})
	gs1 := c1.expect(t, network.MsgTypeGameStart).(network.GameStart)
	gs2 := c2.expect(t, network.MsgTypeGameStart).(network.GameStart)
	if gs1.MatchID == "" || gs1.MatchID != gs2.MatchID {
		t.Fatalf("match ids %q and %q", gs1.MatchID, gs2.MatchID)
	}

	state := c1.expect(t, network.MsgTypeGameState).(network.GameState)
	if state.YourState.Version != models.SnapshotVersion || state.OpponentState.Version != models.SnapshotVersion {
		t.Fatalf("state versions = %d/%d", state.YourState.Version, state.OpponentState.Version)
	}

	// Both lanes leak on the same tick; player 1 is checked first.
	if over := c1.expect(t, network.MsgTypeGameOver).(network.GameOver); over.Winner != 2 {
		t.Fatalf("winner = %d, want 2", over.Winner)
	}
	if over := c2.expect(t, network.MsgTypeGameOver).(network.GameOver); over.Winner != 2 {
		t.Fatalf("winner = %d, want 2", over.Winner)
	}
	if err := waitRun(t, errc); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if srv.Phase() != PhaseGameOver || srv.Winner() != 2 {
		t.Fatalf("server phase=%s winner=%d", srv.Phase(), srv.Winner())
	}
}

func TestDisconnectAwardsOpponent(t *testing.T) {
	cases := []struct {
		name  string
		leave func(t *testing.T, c *testClient)
	}{
		{"socket closed", func(t *testing.T, c *testClient) { c.conn.Close() }},
		{"disconnect message", func(t *testing.T, c *testClient) { c.send(t, network.Disconnect{}) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, errc := startServer(t, models.DefaultGameConfig())
			c1, c2 := joinAndStart(t, srv)

			tc.leave(t, c1)
			if over := c2.expect(t, network.MsgTypeGameOver).(network.GameOver); over.Winner != 2 {
				t.Fatalf("winner = %d, want 2", over.Winner)
			}
			if err := waitRun(t, errc); err != nil {
				t.Fatalf("Run returned %v", err)
			}
		})
	}
}

func TestActionsReachTheLane(t *testing.T) {
	srv, _ := startServer(t, models.DefaultGameConfig())
	c1, c2 := joinAndStart(t, srv)

	c1.send(t, network.PlaceTower{TowerType: "archer", Col: 0, Row: 1})
	c1.send(t, network.SendEnemy{EnemyType: "goblin", Count: 2})

	for i := 0; i < 100; i++ {
		st := c2.expect(t, network.MsgTypeGameState).(network.GameState)
		if len(st.OpponentState.Towers) == 1 && hasNotification(st.YourState, "Incoming: 2x Goblin!") {
			if st.OpponentState.Towers[0].Type != "archer" || len(st.YourState.Towers) != 0 {
				t.Fatalf("tower reported on the wrong lane")
			}
			return
		}
	}
	t.Fatalf("actions never showed up in GAME_STATE")
}

func hasNotification(snap models.LaneSnapshot, text string) bool {
	for _, n := range snap.Notifications {
		if n.Text == text {
			return true
		}
	}
	return false
}

func TestStopDuringLobby(t *testing.T) {
	srv, errc := startServer(t, models.DefaultGameConfig())
	c := dial(t, srv)
	c.expect(t, network.MsgTypeWelcome)

	srv.Stop()
	if err := waitRun(t, errc); !errors.Is(err, ErrStopped) {
		t.Fatalf("Run returned %v, want ErrStopped", err)
	}
}

func TestListenAfterStopFails(t *testing.T) {
	srv := New(Config{Address: "127.0.0.1:0", AcceptTimeout: 50 * time.Millisecond}, models.DefaultGameConfig(), shortMap())
	srv.Stop()

	if err := srv.Listen(); !errors.Is(err, ErrStopped) {
		t.Fatalf("Listen after Stop = %v, want ErrStopped", err)
	}
	if srv.Addr() != nil {
		t.Fatalf("listener bound after Stop: %v", srv.Addr())
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Run() }()
	if err := waitRun(t, errc); !errors.Is(err, ErrStopped) {
		t.Fatalf("Run after Stop = %v, want ErrStopped", err)
	}
}

func TestStateBroadcastEveryNTicks(t *testing.T) {
	cfg := models.DefaultGameConfig()
	cfg.Settings.TickRate = 30
	cfg.Settings.StateBroadcastInterval = 3
	srv, _ := startServer(t, cfg)
	c1, _ := joinAndStart(t, srv)

	// 30 ticks/s broadcasting every 3rd tick is about 10 frames a second.
	states := 0
	window := time.After(time.Second)
count:
	for {
		select {
		case m, ok := <-c1.msgs:
			if !ok {
				t.Fatalf("connection closed during the match")
			}
			if m.MessageType() == network.MsgTypeGameState {
				states++
			}
		case <-window:
			break count
		}
	}
	if states < 3 || states > 16 {
		t.Fatalf("got %d GAME_STATE frames in 1s, want about 10 (not one per tick)", states)
	}
}

func TestThirdConnectionNotWelcomed(t *testing.T) {
	srv, _ := startServer(t, models.DefaultGameConfig())
	c1 := dial(t, srv)
	c1.expect(t, network.MsgTypeWelcome)
	c2 := dial(t, srv)
	c2.expect(t, network.MsgTypeWelcome)

	conn, err := net.DialTimeout("tcp", srv.Addr().String(), time.Second)
	if err != nil {
		return // refused outright is fine too
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	buf := make([]byte, 64)
	if n, _ := conn.Read(buf); n > 0 {
		t.Fatalf("third connection received %q", buf[:n])
	}
}

func newOfflineServer(cfg *models.GameConfig) (*GameServer, *session, *session) {
	s := New(Config{}, cfg, shortMap())
	p1 := newSession(1, nil, game.NewLaneGame(cfg, shortMap()), 0)
	p2 := newSession(2, nil, game.NewLaneGame(cfg, shortMap()), 0)
	s.sessions.add(p1)
	s.sessions.add(p2)
	return s, p1, p2
}

func TestSendEnemyChargesSenderOnce(t *testing.T) {
	cfg := models.DefaultGameConfig()
	s, p1, p2 := newOfflineServer(cfg)

	s.applyMessage(p1, network.SendEnemy{EnemyType: "goblin", Count: 3})
	if p1.lane.Gold() != 180 {
		t.Fatalf("sender gold = %d, want 180", p1.lane.Gold())
	}
	if len(p2.lane.Enemies()) != 3 || len(p1.lane.Enemies()) != 0 {
		t.Fatalf("enemies landed on the wrong lane: p1=%d p2=%d", len(p1.lane.Enemies()), len(p2.lane.Enemies()))
	}

	s.applyMessage(p1, network.SendEnemy{EnemyType: "kraken", Count: 1})
	s.applyMessage(p1, network.SendEnemy{EnemyType: "orc", Count: 0})
	if p1.lane.Gold() != 180 || len(p2.lane.Enemies()) != 3 {
		t.Fatalf("invalid sends changed state")
	}

	p1.lane.SpendGold(p1.lane.Gold() - 10)
	s.applyMessage(p1, network.SendEnemy{EnemyType: "goblin", Count: 1})
	if p1.lane.Gold() != 10 || len(p2.lane.Enemies()) != 3 {
		t.Fatalf("send without enough gold went through")
	}
}

func TestSendEnemyCountCappedAtSendCount(t *testing.T) {
	cfg := models.DefaultGameConfig()
	s, p1, p2 := newOfflineServer(cfg)

	s.applyMessage(p1, network.SendEnemy{EnemyType: "goblin", Count: 1000000000})
	if got, want := len(p2.lane.Enemies()), cfg.Enemies["goblin"].SendCount; got != want {
		t.Fatalf("opponent got %d enemies, want %d", got, want)
	}
	if p1.lane.Gold() != 180 {
		t.Fatalf("sender gold = %d, want 180", p1.lane.Gold())
	}

	s.applyMessage(p1, network.SendEnemy{EnemyType: "dragon", Count: 1})
	s.applyMessage(p2, network.SendEnemy{EnemyType: "orc", Count: 1})
	if len(p1.lane.Enemies()) != 1 {
		t.Fatalf("smaller sends should go through unchanged: p1 has %d enemies", len(p1.lane.Enemies()))
	}
}

func TestActionsApplyToSenderLane(t *testing.T) {
	s, p1, p2 := newOfflineServer(models.DefaultGameConfig())
	s.applyMessage(p1, network.PlaceTower{TowerType: "archer", Col: 0, Row: 1})
	if len(p1.lane.Towers()) != 1 || len(p2.lane.Towers()) != 0 {
		t.Fatalf("tower placed on the wrong lane")
	}
	id := p1.lane.Towers()[0].ID

	s.applyMessage(p2, network.SellTower{TowerID: id})
	if len(p1.lane.Towers()) != 1 {
		t.Fatalf("opponent sold a tower it does not own")
	}
	s.applyMessage(p1, network.UpgradeTower{TowerID: id})
	if p1.lane.Towers()[0].Level != 2 {
		t.Fatalf("upgrade not applied")
	}
	s.applyMessage(p1, network.SellTower{TowerID: id})
	if len(p1.lane.Towers()) != 0 {
		t.Fatalf("sell not applied")
	}
}

func TestDrainInboxAppliesInOrder(t *testing.T) {
	s, p1, _ := newOfflineServer(models.DefaultGameConfig())
	p1.inbox <- network.PlaceTower{TowerType: "archer", Col: 0, Row: 1}
	p1.inbox <- network.PlaceTower{TowerType: "ice", Col: 0, Row: 1}
	s.drainInbox(p1)

	towers := p1.lane.Towers()
	if len(towers) != 1 || towers[0].Type != "archer" {
		t.Fatalf("expected the first placement to win the tile, got %d towers", len(towers))
	}
	if len(p1.inbox) != 0 {
		t.Fatalf("inbox not drained")
	}
}

func leakOnce(lane *game.LaneGame) {
	lane.SpawnExtraEnemies("goblin", 1)
	for i := 0; i < 12; i++ {
		lane.Update(0.5)
	}
}

func surviveAllWaves(lane *game.LaneGame, betweenWaves float64) {
	lane.StartGame()
	lane.Update(0.1)
	lane.Update(betweenWaves)
}

func TestCheckWinner(t *testing.T) {
	t.Run("out of lives loses", func(t *testing.T) {
		cfg := models.DefaultGameConfig()
		cfg.Settings.StartingLives = 1
		s, p1, _ := newOfflineServer(cfg)
		if _, over := s.checkWinner(); over {
			t.Fatalf("match over before anything happened")
		}
		leakOnce(p1.lane)
		if winner, over := s.checkWinner(); !over || winner != 2 {
			t.Fatalf("checkWinner = %d, %v; want 2, true", winner, over)
		}
	})

	noWaves := func() *models.GameConfig {
		cfg := models.DefaultGameConfig()
		cfg.Waves = [][]models.WaveGroup{}
		return cfg
	}

	t.Run("survivors with equal lives draw", func(t *testing.T) {
		cfg := noWaves()
		s, p1, p2 := newOfflineServer(cfg)
		surviveAllWaves(p1.lane, cfg.Settings.BetweenWaveTime)
		if _, over := s.checkWinner(); over {
			t.Fatalf("match over while player 2 is still playing")
		}
		surviveAllWaves(p2.lane, cfg.Settings.BetweenWaveTime)
		if winner, over := s.checkWinner(); !over || winner != 0 {
			t.Fatalf("checkWinner = %d, %v; want draw", winner, over)
		}
	})

	t.Run("survivor with more lives wins", func(t *testing.T) {
		cfg := noWaves()
		s, p1, p2 := newOfflineServer(cfg)
		leakOnce(p2.lane)
		surviveAllWaves(p1.lane, cfg.Settings.BetweenWaveTime)
		surviveAllWaves(p2.lane, cfg.Settings.BetweenWaveTime)
		if p2.lane.Lives() != 19 {
			t.Fatalf("setup: player 2 lives = %d", p2.lane.Lives())
		}
		if winner, over := s.checkWinner(); !over || winner != 1 {
			t.Fatalf("checkWinner = %d, %v; want 1, true", winner, over)
		}
	})
}

func TestFinishOnlyOnce(t *testing.T) {
	s, _, _ := newOfflineServer(models.DefaultGameConfig())
	if !s.finish(1) {
		t.Fatalf("first finish refused")
	}
	if s.finish(2) {
		t.Fatalf("second finish accepted")
	}
	if s.Winner() != 1 || s.Phase() != PhaseGameOver {
		t.Fatalf("winner=%d phase=%s", s.Winner(), s.Phase())
	}
}
