package client

import (
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"towerdefense-vs/internal/game"
	"towerdefense-vs/internal/models"
	"towerdefense-vs/internal/network"

	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"
)

// Speed multipliers offered in single player.
var speedSteps = []int{1, 2, 5}

// Actions is where the HUD sends player intents: the server in a match, the
// local lane in single player.
type Actions interface {
	PlaceTower(towerType string, col, row int)
	SellTower(towerID string)
	UpgradeTower(towerID string)
	SendEnemy(enemyType string, count int)
	Ready()
}

// RemoteActions forwards intents to the server.
type RemoteActions struct {
	Client *Client
}

func (a RemoteActions) PlaceTower(towerType string, col, row int) {
	a.Client.SendPlaceTower(towerType, col, row)
}

func (a RemoteActions) SellTower(towerID string) {
	a.Client.SendSellTower(towerID)
}

func (a RemoteActions) UpgradeTower(towerID string) {
	a.Client.SendUpgradeTower(towerID)
}

func (a RemoteActions) SendEnemy(enemyType string, count int) {
	a.Client.SendEnemy(enemyType, count)
}

func (a RemoteActions) Ready() {
	a.Client.SendReady()
}

// LocalActions applies intents straight to a lane. Ready skips the countdown
// to the next wave; there is nobody to send enemies to.
type LocalActions struct {
	Lane *game.LaneGame
}

func (a LocalActions) PlaceTower(towerType string, col, row int) {
	a.Lane.PlaceTower(towerType, col, row)
}

func (a LocalActions) SellTower(towerID string) {
	a.Lane.SellTower(towerID)
}

func (a LocalActions) UpgradeTower(towerID string) {
	a.Lane.UpgradeTower(towerID)
}

func (a LocalActions) SendEnemy(string, int) {}

func (a LocalActions) Ready() {
	a.Lane.SkipToNextWave()
}

// TermboxUI is the text HUD. Apply and HandleKey only touch UI state, so the
// render loop owns it and nothing here needs locking.
type TermboxUI struct {
	cfg         *models.GameConfig
	mapData     models.MapData
	actions     Actions
	multiplayer bool

	you       models.LaneSnapshot
	opponent  models.LaneSnapshot
	haveState bool

	playerID    int
	playerCount int
	readySent   bool
	started     bool
	over        bool
	winner      int

	cursorCol int
	cursorRow int
	towerSel  string
	enemyIdx  int
	speedIdx  int
	status    string
}

// NewTermboxUI creates the HUD for one lane (single player) or a match.
func NewTermboxUI(cfg *models.GameConfig, m models.MapData, actions Actions, multiplayer bool) *TermboxUI {
	ui := &TermboxUI{
		cfg:         cfg,
		mapData:     m,
		actions:     actions,
		multiplayer: multiplayer,
	}
	if multiplayer {
		ui.status = "Connecting..."
	} else {
		ui.status = "Press Space to start the first wave"
	}
	return ui
}

// Apply folds one server message into the HUD.
func (ui *TermboxUI) Apply(msg network.Message) {
	switch m := msg.(type) {
	case network.Welcome:
		ui.playerID = m.PlayerID
		if len(m.MapData.Grid) > 0 {
			ui.mapData = m.MapData
		}
		ui.status = fmt.Sprintf("Joined as player %d, press Space when ready", m.PlayerID)
	case network.PlayerCount:
		ui.playerCount = m.Count
	case network.GameStart:
		ui.started = true
		ui.status = "Match started"
	case network.GameState:
		ui.you = m.YourState
		ui.opponent = m.OpponentState
		ui.haveState = true
	case network.GameOver:
		ui.over = true
		ui.winner = m.Winner
		switch {
		case m.Winner == 0:
			ui.status = "Draw! Press ESC to quit"
		case m.Winner == ui.playerID:
			ui.status = "You win! Press ESC to quit"
		default:
			ui.status = "You lose! Press ESC to quit"
		}
	}
}

// SetState replaces the local lane view in single player.
func (ui *TermboxUI) SetState(snap models.LaneSnapshot) {
	ui.you = snap
	ui.haveState = true
	if snap.Phase != models.PhaseWaiting {
		ui.started = true
	}
	if snap.Phase == models.PhaseGameOver && !ui.over {
		ui.over = true
		if snap.Lives > 0 {
			ui.status = "You survived all waves! Press ESC to quit"
		} else {
			ui.status = "Game over! Press ESC to quit"
		}
	}
}

// Speed is the single-player simulation multiplier.
func (ui *TermboxUI) Speed() int {
	return speedSteps[ui.speedIdx]
}

// HandleKey applies one key press and reports whether the player asked to quit.
func (ui *TermboxUI) HandleKey(ev termbox.Event) bool {
	switch ev.Key {
	case termbox.KeyEsc:
		if ui.towerSel != "" {
			ui.towerSel = ""
			return false
		}
		return true
	case termbox.KeyArrowUp:
		ui.moveCursor(0, -1)
		return false
	case termbox.KeyArrowDown:
		ui.moveCursor(0, 1)
		return false
	case termbox.KeyArrowLeft:
		ui.moveCursor(-1, 0)
		return false
	case termbox.KeyArrowRight:
		ui.moveCursor(1, 0)
		return false
	case termbox.KeyEnter:
		ui.placeSelected()
		return false
	case termbox.KeySpace:
		ui.ready()
		return false
	}

	switch ch := ev.Ch; {
	case ch >= '1' && ch <= '9':
		i := int(ch - '1')
		if i < len(ui.cfg.TowerOrder) {
			ui.towerSel = ui.cfg.TowerOrder[i]
			ui.status = "Selected " + ui.cfg.Towers[ui.towerSel].Name
		}
	case ch == 'u':
		if t, ok := ui.towerUnderCursor(); ok {
			ui.actions.UpgradeTower(t.ID)
		}
	case ch == 's':
		if t, ok := ui.towerUnderCursor(); ok {
			ui.actions.SellTower(t.ID)
		}
	case ch == 'e':
		if n := len(ui.cfg.EnemyOrder); n > 0 {
			ui.enemyIdx = (ui.enemyIdx + 1) % n
		}
	case ch == 'x':
		ui.sendSelectedEnemy()
	case ch == 'f':
		if !ui.multiplayer {
			ui.speedIdx = (ui.speedIdx + 1) % len(speedSteps)
		}
	case ch == 'q':
		return true
	}
	return false
}

func (ui *TermboxUI) moveCursor(dc, dr int) {
	cols, rows := ui.mapSize()
	ui.cursorCol = clamp(ui.cursorCol+dc, 0, cols-1)
	ui.cursorRow = clamp(ui.cursorRow+dr, 0, rows-1)
}

func (ui *TermboxUI) mapSize() (cols, rows int) {
	if len(ui.mapData.Grid) == 0 {
		return 1, 1
	}
	return len(ui.mapData.Grid[0]), len(ui.mapData.Grid)
}

func (ui *TermboxUI) placeSelected() {
	if ui.towerSel == "" || ui.over {
		return
	}
	ui.actions.PlaceTower(ui.towerSel, ui.cursorCol, ui.cursorRow)
}

func (ui *TermboxUI) ready() {
	if ui.over {
		return
	}
	if ui.multiplayer {
		if ui.started || ui.readySent {
			return
		}
		ui.readySent = true
		ui.status = "Ready, waiting for the other player"
	}
	ui.actions.Ready()
}

func (ui *TermboxUI) sendSelectedEnemy() {
	if !ui.multiplayer || !ui.started || ui.over {
		return
	}
	enemyType, ok := ui.selectedEnemy()
	if !ok {
		return
	}
	spec := ui.cfg.Enemies[enemyType]
	if ui.you.Gold < spec.SendCost {
		ui.status = fmt.Sprintf("Not enough gold to send %s", spec.Name)
		return
	}
	count := spec.SendCount
	if count <= 0 {
		count = 1
	}
	ui.actions.SendEnemy(enemyType, count)
	ui.status = fmt.Sprintf("Sent %dx %s", count, spec.Name)
}

func (ui *TermboxUI) selectedEnemy() (string, bool) {
	if len(ui.cfg.EnemyOrder) == 0 {
		return "", false
	}
	return ui.cfg.EnemyOrder[ui.enemyIdx%len(ui.cfg.EnemyOrder)], true
}

func (ui *TermboxUI) towerUnderCursor() (models.TowerSnapshot, bool) {
	for _, t := range ui.you.Towers {
		if t.Col == ui.cursorCol && t.Row == ui.cursorRow {
			return t, true
		}
	}
	return models.TowerSnapshot{}, false
}

// RunMultiplayer drives the HUD from a server connection until the player
// quits. The connection is closed on the way out.
func (ui *TermboxUI) RunMultiplayer(c *Client) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer termbox.Close()
	defer c.Disconnect()

	events := pollEvents()
	ticker := time.NewTicker(frameInterval(ui.cfg))
	defer ticker.Stop()

	ui.Render()
	for {
		select {
		case ev := <-events:
			quit, err := ui.handleEvent(ev)
			if err != nil {
				return err
			}
			if quit {
				log.Println("[Client] Quit requested")
				return nil
			}
		case <-ticker.C:
			for _, m := range c.Messages() {
				ui.Apply(m)
			}
			if !c.Connected() && !ui.over {
				ui.status = "Disconnected from server. Press ESC to quit"
			}
		}
		ui.Render()
	}
}

// RunSinglePlayer simulates lane locally at the configured tick rate times the
// selected speed until the player quits.
func (ui *TermboxUI) RunSinglePlayer(lane *game.LaneGame) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer termbox.Close()

	dt := ui.cfg.TickInterval()
	events := pollEvents()
	ticker := time.NewTicker(frameInterval(ui.cfg))
	defer ticker.Stop()

	ui.SetState(lane.State())
	ui.Render()
	for {
		select {
		case ev := <-events:
			quit, err := ui.handleEvent(ev)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		case <-ticker.C:
			for i := 0; i < ui.Speed(); i++ {
				lane.Update(dt)
			}
		}
		ui.SetState(lane.State())
		ui.Render()
	}
}

func (ui *TermboxUI) handleEvent(ev termbox.Event) (bool, error) {
	switch ev.Type {
	case termbox.EventKey:
		return ui.HandleKey(ev), nil
	case termbox.EventError:
		return false, fmt.Errorf("terminal event: %w", ev.Err)
	}
	return false, nil
}

func pollEvents() <-chan termbox.Event {
	events := make(chan termbox.Event, 16)
	go func() {
		for {
			events <- termbox.PollEvent()
		}
	}()
	return events
}

func frameInterval(cfg *models.GameConfig) time.Duration {
	return time.Duration(cfg.TickInterval() * float64(time.Second))
}

// Render draws the lanes and the HUD.
func (ui *TermboxUI) Render() {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)

	title := "Tower Defense"
	if ui.multiplayer {
		title = fmt.Sprintf("Tower Defense VS  player %d  (%d/2 connected)", ui.playerID, ui.playerCount)
	}
	drawText(1, 0, title, termbox.ColorWhite|termbox.AttrBold, termbox.ColorDefault)

	cols, rows := ui.mapSize()
	ui.drawLane(1, 2, ui.you, true)
	if ui.multiplayer {
		drawText(cols+4, 1, "Opponent", termbox.ColorRed, termbox.ColorDefault)
		ui.drawLane(cols+4, 2, ui.opponent, false)
	} else {
		drawText(1, 1, "Your lane", termbox.ColorGreen, termbox.ColorDefault)
	}

	y := rows + 3
	for _, line := range ui.hudLines() {
		drawText(1, y, line, termbox.ColorWhite, termbox.ColorDefault)
		y++
	}
	termbox.Flush()
}

func (ui *TermboxUI) drawLane(x0, y0 int, snap models.LaneSnapshot, withCursor bool) {
	cells := laneCells(ui.mapData, snap, ui.cfg.Settings.TileSize)
	for r, row := range cells {
		for c, ch := range row {
			fg := termbox.ColorGreen
			switch {
			case ch == '#':
				fg = termbox.ColorYellow
			case ch == '*':
				fg = termbox.ColorCyan
			case unicode.IsLetter(ch) && unicode.IsLower(ch):
				fg = termbox.ColorRed
			case unicode.IsLetter(ch):
				fg = termbox.ColorMagenta
			}
			bg := termbox.ColorDefault
			if withCursor && c == ui.cursorCol && r == ui.cursorRow {
				bg = termbox.ColorBlue
			}
			termbox.SetCell(x0+c, y0+r, ch, fg, bg)
		}
	}
}

func (ui *TermboxUI) hudLines() []string {
	s := ui.you
	lines := []string{
		fmt.Sprintf("Gold %d  Lives %d  Wave %d/%d  %s", s.Gold, s.Lives, s.WaveNumber+1, len(ui.cfg.Waves), phaseLabel(s)),
	}
	if ui.multiplayer && ui.haveState {
		o := ui.opponent
		lines = append(lines, fmt.Sprintf("Opponent: Gold %d  Lives %d  Wave %d", o.Gold, o.Lives, o.WaveNumber+1))
	}

	var towers []string
	for i, id := range ui.cfg.TowerOrder {
		spec := ui.cfg.Towers[id]
		mark := " "
		if id == ui.towerSel {
			mark = ">"
		}
		towers = append(towers, fmt.Sprintf("%s[%d]%s %dg", mark, i+1, spec.Name, spec.Cost))
	}
	lines = append(lines, strings.Join(towers, "  "))

	if t, ok := ui.towerUnderCursor(); ok {
		lines = append(lines, fmt.Sprintf("%s lvl %d  dmg %.0f  range %.0f  [u]pgrade [s]ell", ui.cfg.Towers[t.Type].Name, t.Level, t.Damage, t.Range))
	} else {
		lines = append(lines, "")
	}

	if ui.multiplayer {
		if enemyType, ok := ui.selectedEnemy(); ok {
			spec := ui.cfg.Enemies[enemyType]
			lines = append(lines, fmt.Sprintf("[e] Send: %s x%d for %dg  [x] send", spec.Name, spec.SendCount, spec.SendCost))
		}
	} else {
		lines = append(lines, fmt.Sprintf("[f] Speed x%d  [Space] next wave", ui.Speed()))
	}

	for _, n := range s.Notifications {
		lines = append(lines, n.Text)
	}
	lines = append(lines, ui.status)
	return lines
}

func phaseLabel(s models.LaneSnapshot) string {
	switch s.Phase {
	case models.PhaseBetweenWaves:
		return fmt.Sprintf("next wave in %.0fs", s.BetweenWaveTimer)
	case models.PhaseCombat:
		return "combat"
	case models.PhaseGameOver:
		return "game over"
	}
	return "waiting"
}

// laneCells lays a snapshot over the map as one glyph per tile: '.' grass,
// '#' path, tower letters, enemy initials (upper case when flying) and '*'
// for projectiles. Later layers win.
func laneCells(m models.MapData, snap models.LaneSnapshot, tileSize float64) [][]rune {
	cells := make([][]rune, len(m.Grid))
	for r, row := range m.Grid {
		cells[r] = make([]rune, len(row))
		for c, v := range row {
			if v == models.CellPath {
				cells[r][c] = '#'
			} else {
				cells[r][c] = '.'
			}
		}
	}
	set := func(c, r int, ch rune) {
		if r >= 0 && r < len(cells) && c >= 0 && c < len(cells[r]) {
			cells[r][c] = ch
		}
	}
	toTile := func(x, y float64) (int, int) {
		if tileSize <= 0 {
			return -1, -1
		}
		return int(x / tileSize), int(y / tileSize)
	}

	for _, t := range snap.Towers {
		ch := 'T'
		if t.Letter != "" {
			ch = []rune(t.Letter)[0]
		}
		set(t.Col, t.Row, ch)
	}
	for _, e := range snap.Enemies {
		ch := 'e'
		if e.Type != "" {
			ch = unicode.ToLower([]rune(e.Type)[0])
		}
		if e.Flying {
			ch = unicode.ToUpper(ch)
		}
		c, r := toTile(e.X, e.Y)
		set(c, r, ch)
	}
	for _, p := range snap.Projectiles {
		c, r := toTile(p.X, p.Y)
		set(c, r, '*')
	}
	return cells
}

func drawText(x, y int, text string, fg, bg termbox.Attribute) {
	for _, r := range text {
		termbox.SetCell(x, y, r, fg, bg)
		x += runewidth.RuneWidth(r)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
