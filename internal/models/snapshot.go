package models

// SnapshotVersion is bumped whenever a field of the snapshot structs changes meaning.
// Adding fields does not require a bump.
const SnapshotVersion = 1

// Lane phases as they appear on the wire.
const (
	PhaseWaiting      = "waiting"
	PhaseCombat       = "combat"
	PhaseBetweenWaves = "between_waves"
	PhaseGameOver     = "game_over"
)

// LaneSnapshot is the immutable view of one lane handed to renderers and sent over the network.
type LaneSnapshot struct {
	Version          int                    `json:"version"`
	Gold             int                    `json:"gold"`
	Lives            int                    `json:"lives"`
	WaveNumber       int                    `json:"wave_number"` // zero-based, -1 before the first wave
	Phase            string                 `json:"phase"`
	BetweenWaveTimer float64                `json:"between_wave_timer"`
	Towers           []TowerSnapshot        `json:"towers"`
	Enemies          []EnemySnapshot        `json:"enemies"`
	Projectiles      []ProjectileSnapshot   `json:"projectiles"`
	Notifications    []NotificationSnapshot `json:"notifications"`
	RecentlyDead     []DeathSnapshot        `json:"recently_dead"`
}

// TowerSnapshot describes a placed tower.
type TowerSnapshot struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	Col    int     `json:"col"`
	Row    int     `json:"row"`
	PixelX float64 `json:"pixel_x"`
	PixelY float64 `json:"pixel_y"`
	Level  int     `json:"level"`
	Damage float64 `json:"damage"`
	Range  float64 `json:"range"`
	Letter string  `json:"letter"`
}

// EnemySnapshot describes a live enemy. Effects lists the active effect kinds ("slow", "burn").
type EnemySnapshot struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	HP      float64  `json:"hp"`
	MaxHP   float64  `json:"max_hp"`
	Flying  bool     `json:"flying"`
	Effects []string `json:"effects"`
}

// ProjectileSnapshot describes a projectile in flight.
type ProjectileSnapshot struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	TowerType string  `json:"tower_type"`
	AOERadius float64 `json:"aoe_radius"`
}

// NotificationSnapshot is a timed message for the HUD.
type NotificationSnapshot struct {
	Text      string  `json:"text"`
	Remaining float64 `json:"remaining"`
}

// DeathSnapshot records an enemy killed during the last tick.
type DeathSnapshot struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Type string  `json:"type"`
}
