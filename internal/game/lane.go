package game

import (
	"fmt"
	"log"

	"towerdefense-vs/internal/grid"
	"towerdefense-vs/internal/models"
)

type notification struct {
	text      string
	remaining float64
}

type death struct {
	x, y      float64
	enemyType string
}

// LaneGame is one player's lane: grid, towers, enemies, projectiles, economy and wave phase.
// It is not safe for concurrent use; the server's tick goroutine is its only writer.
type LaneGame struct {
	cfg      *models.GameConfig
	grid     *grid.Grid
	spawner  *WaveSpawner
	towerIDs idAllocator
	enemyIDs idAllocator

	towers      []*Tower
	enemies     []*Enemy
	projectiles []*Projectile

	gold             int
	lives            int
	waveIndex        int
	phase            string
	betweenWaveTimer float64
	incomeTimer      float64

	notifications []notification
	recentlyDead  []death
}

// NewLaneGame builds a lane in the waiting phase on its own copy of the map.
func NewLaneGame(cfg *models.GameConfig, m models.MapData) *LaneGame {
	g := &LaneGame{
		cfg:       cfg,
		grid:      grid.New(m.Grid, m.Waypoints, cfg.Settings.TileSize),
		towerIDs:  idAllocator{prefix: "t_"},
		enemyIDs:  idAllocator{prefix: "e_"},
		gold:      cfg.Settings.StartingGold,
		lives:     cfg.Settings.StartingLives,
		waveIndex: -1,
		phase:     models.PhaseWaiting,
	}
	g.spawner = NewWaveSpawner(cfg.Waves, g.newEnemy)
	return g
}

func (g *LaneGame) newEnemy(enemyType string) *Enemy {
	spec, ok := g.cfg.Enemies[enemyType]
	if !ok {
		log.Printf("[Lane] Unknown enemy type %q in wave table, skipping spawn", enemyType)
		return nil
	}
	return NewEnemy(g.enemyIDs.Next(), spec, g.grid.WaypointsInPixels())
}

func (g *LaneGame) Gold() int                  { return g.gold }
func (g *LaneGame) Lives() int                 { return g.lives }
func (g *LaneGame) Phase() string              { return g.phase }
func (g *LaneGame) WaveIndex() int             { return g.waveIndex }
func (g *LaneGame) Grid() *grid.Grid           { return g.grid }
func (g *LaneGame) Towers() []*Tower           { return g.towers }
func (g *LaneGame) Enemies() []*Enemy          { return g.enemies }
func (g *LaneGame) Projectiles() []*Projectile { return g.projectiles }
func (g *LaneGame) BetweenWaveTimer() float64  { return g.betweenWaveTimer }

// Update advances the lane by dt seconds. Nothing happens once the lane is over.
func (g *LaneGame) Update(dt float64) {
	if g.phase == models.PhaseGameOver {
		return
	}
	s := g.cfg.Settings

	g.incomeTimer += dt
	for g.incomeTimer >= 1 {
		g.gold += s.GoldPerSecond
		g.incomeTimer -= 1
	}

	if g.phase == models.PhaseBetweenWaves {
		g.betweenWaveTimer -= dt
		if g.betweenWaveTimer <= 0 {
			// Reaching game_over here still finishes the tick for enemies already on the path.
			g.startNextWave()
		}
	}

	g.enemies = append(g.enemies, g.spawner.Update(dt)...)

	for _, e := range g.enemies {
		e.Update(dt)
	}
	for _, t := range g.towers {
		g.projectiles = append(g.projectiles, t.Update(dt, g.enemies)...)
	}
	for _, p := range g.projectiles {
		p.Update(dt, g.enemies)
	}

	g.recentlyDead = g.recentlyDead[:0]
	for _, e := range g.enemies {
		if !e.Alive && !e.rewardCollected {
			e.rewardCollected = true
			g.gold += e.GoldReward
			g.recentlyDead = append(g.recentlyDead, death{x: e.X, y: e.Y, enemyType: e.Type})
		}
	}
	for _, e := range g.enemies {
		if e.ReachedEnd && !e.lifeCounted {
			e.lifeCounted = true
			g.lives--
		}
	}

	g.prune()

	if g.phase == models.PhaseCombat && g.spawner.Done() && len(g.enemies) == 0 {
		bonus := s.WaveClearBonusBase + s.WaveClearBonusPerWave*(g.waveIndex+1)
		g.gold += bonus
		g.AddNotification(fmt.Sprintf("Wave %d Clear! +%dg", g.waveIndex+1, bonus))
		g.phase = models.PhaseBetweenWaves
		g.betweenWaveTimer = s.BetweenWaveTime
	}

	if g.lives <= 0 {
		g.lives = 0
		g.phase = models.PhaseGameOver
	}

	g.tickNotifications(dt)
}

func (g *LaneGame) prune() {
	enemies := g.enemies[:0]
	for _, e := range g.enemies {
		if e.Active() {
			enemies = append(enemies, e)
		}
	}
	for i := len(enemies); i < len(g.enemies); i++ {
		g.enemies[i] = nil
	}
	g.enemies = enemies

	projectiles := g.projectiles[:0]
	for _, p := range g.projectiles {
		if p.Alive {
			projectiles = append(projectiles, p)
		}
	}
	for i := len(projectiles); i < len(g.projectiles); i++ {
		g.projectiles[i] = nil
	}
	g.projectiles = projectiles
}

func (g *LaneGame) tickNotifications(dt float64) {
	kept := g.notifications[:0]
	for _, n := range g.notifications {
		n.remaining -= dt
		if n.remaining > 0 {
			kept = append(kept, n)
		}
	}
	g.notifications = kept
}

// StartGame moves a waiting lane into combat on the first wave.
func (g *LaneGame) StartGame() {
	if g.phase != models.PhaseWaiting {
		return
	}
	g.phase = models.PhaseCombat
	g.waveIndex = 0
	g.spawner.StartWave(0)
	g.AddNotification("Wave 1 Start!")
}

func (g *LaneGame) startNextWave() {
	g.waveIndex++
	if g.waveIndex >= g.spawner.WaveCount() {
		g.phase = models.PhaseGameOver
		g.AddNotification("You survived all waves!")
		return
	}
	g.phase = models.PhaseCombat
	g.spawner.StartWave(g.waveIndex)
	g.AddNotification(fmt.Sprintf("Wave %d Start!", g.waveIndex+1))
}

// SkipToNextWave starts the next wave without waiting for the countdown.
func (g *LaneGame) SkipToNextWave() {
	switch g.phase {
	case models.PhaseBetweenWaves:
		g.startNextWave()
	case models.PhaseWaiting:
		g.StartGame()
	}
}

// PlaceTower buys and builds a tower. It returns false, changing nothing, when the
// type is unknown, gold is short or the tile cannot take a tower.
func (g *LaneGame) PlaceTower(towerType string, col, row int) bool {
	spec, ok := g.cfg.Towers[towerType]
	if !ok {
		return false
	}
	if g.gold < spec.Cost {
		return false
	}
	if !g.grid.CanPlaceTower(col, row) {
		return false
	}
	g.gold -= spec.Cost
	x, y := g.grid.GridToPixel(col, row)
	g.towers = append(g.towers, NewTower(g.towerIDs.Next(), spec, col, row, x, y, g.cfg.Settings))
	g.grid.PlaceTower(col, row)
	return true
}

// SellTower refunds and removes an owned tower.
func (g *LaneGame) SellTower(towerID string) bool {
	for i, t := range g.towers {
		if t.ID != towerID {
			continue
		}
		g.gold += t.SellValue()
		g.grid.RemoveTower(t.Col, t.Row)
		g.towers = append(g.towers[:i], g.towers[i+1:]...)
		return true
	}
	return false
}

// UpgradeTower pays for and applies one level on an owned tower.
func (g *LaneGame) UpgradeTower(towerID string) bool {
	t := g.towerByID(towerID)
	if t == nil || !t.CanUpgrade() {
		return false
	}
	cost := t.UpgradeCost()
	if g.gold < cost {
		return false
	}
	g.gold -= cost
	return t.Upgrade()
}

func (g *LaneGame) towerByID(id string) *Tower {
	for _, t := range g.towers {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// TowerAt returns the tower on a tile, or nil.
func (g *LaneGame) TowerAt(col, row int) *Tower {
	for _, t := range g.towers {
		if t.Col == col && t.Row == row {
			return t
		}
	}
	return nil
}

// SpendGold deducts n gold if the lane can afford it.
func (g *LaneGame) SpendGold(n int) bool {
	if n < 0 || g.gold < n {
		return false
	}
	g.gold -= n
	return true
}

// SpawnExtraEnemies drops enemies sent by the opponent straight onto the path,
// bypassing the wave spawner.
func (g *LaneGame) SpawnExtraEnemies(enemyType string, count int) bool {
	spec, ok := g.cfg.Enemies[enemyType]
	if !ok || count <= 0 {
		return false
	}
	for i := 0; i < count; i++ {
		g.enemies = append(g.enemies, NewEnemy(g.enemyIDs.Next(), spec, g.grid.WaypointsInPixels()))
	}
	g.AddNotification(fmt.Sprintf("Incoming: %dx %s!", count, spec.Name))
	return true
}

// AddNotification queues a HUD message for the configured duration.
func (g *LaneGame) AddNotification(text string) {
	g.notifications = append(g.notifications, notification{text: text, remaining: g.cfg.Settings.NotificationDuration})
}

// State returns a snapshot that shares no memory with the lane.
func (g *LaneGame) State() models.LaneSnapshot {
	snap := models.LaneSnapshot{
		Version:          models.SnapshotVersion,
		Gold:             g.gold,
		Lives:            g.lives,
		WaveNumber:       g.waveIndex,
		Phase:            g.phase,
		BetweenWaveTimer: round1(g.betweenWaveTimer),
		Towers:           make([]models.TowerSnapshot, 0, len(g.towers)),
		Enemies:          make([]models.EnemySnapshot, 0, len(g.enemies)),
		Projectiles:      make([]models.ProjectileSnapshot, 0, len(g.projectiles)),
		Notifications:    make([]models.NotificationSnapshot, 0, len(g.notifications)),
		RecentlyDead:     make([]models.DeathSnapshot, 0, len(g.recentlyDead)),
	}
	for _, t := range g.towers {
		snap.Towers = append(snap.Towers, t.Snapshot())
	}
	for _, e := range g.enemies {
		snap.Enemies = append(snap.Enemies, e.Snapshot())
	}
	for _, p := range g.projectiles {
		snap.Projectiles = append(snap.Projectiles, p.Snapshot())
	}
	for _, n := range g.notifications {
		snap.Notifications = append(snap.Notifications, models.NotificationSnapshot{Text: n.text, Remaining: round1(n.remaining)})
	}
	for _, d := range g.recentlyDead {
		snap.RecentlyDead = append(snap.RecentlyDead, models.DeathSnapshot{X: round1(d.x), Y: round1(d.y), Type: d.enemyType})
	}
	return snap
}
