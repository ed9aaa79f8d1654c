package models

// TowerSpec defines the base specifications for a type of tower.
type TowerSpec struct {
	ID                 string  `json:"id"`   // e.g., "archer", "wizard"
	Name               string  `json:"name"` // e.g., "Archer Tower"
	Cost               int     `json:"cost"`
	Damage             float64 `json:"damage"`
	Range              float64 `json:"range"`     // pixels
	FireRate           float64 `json:"fire_rate"` // shots per second
	ProjectileSpeed    float64 `json:"projectile_speed"`
	CanHitFlying       bool    `json:"can_hit_flying"`
	AOERadius          float64 `json:"aoe_radius"`
	DOTDamage          float64 `json:"dot_damage"` // burn damage per second
	DOTDuration        float64 `json:"dot_duration"`
	SlowFactor         float64 `json:"slow_factor"` // speed multiplier while slowed (0.5 = half speed)
	SlowDuration       float64 `json:"slow_duration"`
	UpgradeCost        int     `json:"upgrade_cost"` // multiplied by the current level
	UpgradeDamageBonus float64 `json:"upgrade_damage_bonus"`
	UpgradeRangeBonus  float64 `json:"upgrade_range_bonus"`
	Letter             string  `json:"letter"` // one-glyph label for text renderers
}

// EnemySpec defines the base specifications for a type of enemy.
type EnemySpec struct {
	ID         string  `json:"id"` // e.g., "goblin", "dragon"
	Name       string  `json:"name"`
	HP         float64 `json:"hp"`
	Speed      float64 `json:"speed"` // pixels per second
	Armor      float64 `json:"armor"` // flat reduction per hit
	GoldReward int     `json:"gold_reward"`
	SendCost   int     `json:"send_cost"`  // gold paid to send a group of this enemy to the opponent
	SendCount  int     `json:"send_count"` // enemies per send from the HUD
	Flying     bool    `json:"flying"`
	Radius     float64 `json:"radius"` // collision radius for projectiles
}

// WaveGroup is one timed spawn group of a wave.
type WaveGroup struct {
	EnemyType string  `json:"enemy_type"`
	Count     int     `json:"count"`
	Interval  float64 `json:"interval"` // seconds between spawns
}

// Settings holds the global tunables of a lane and of the match loop.
type Settings struct {
	TileSize               float64 `json:"tile_size"`
	StartingGold           int     `json:"starting_gold"`
	StartingLives          int     `json:"starting_lives"`
	GoldPerSecond          int     `json:"gold_per_second"`
	WaveClearBonusBase     int     `json:"wave_clear_bonus_base"`
	WaveClearBonusPerWave  int     `json:"wave_clear_bonus_per_wave"`
	BetweenWaveTime        float64 `json:"between_wave_time"`
	MaxTowerLevel          int     `json:"max_tower_level"`
	SellRefundRate         float64 `json:"sell_refund_rate"`
	NotificationDuration   float64 `json:"notification_duration"`
	TickRate               int     `json:"tick_rate"`                // server ticks per second
	StateBroadcastInterval int     `json:"state_broadcast_interval"` // ticks between GAME_STATE broadcasts
}

// GameConfig holds all configurable game parameters, typically loaded from JSON files.
type GameConfig struct {
	Settings   Settings             `json:"settings"`
	Towers     map[string]TowerSpec `json:"towers"`  // Keyed by tower ID
	Enemies    map[string]EnemySpec `json:"enemies"` // Keyed by enemy ID
	Waves      [][]WaveGroup        `json:"waves"`
	TowerOrder []string             `json:"tower_order"` // display/hotkey order
	EnemyOrder []string             `json:"enemy_order"`
}

// TickInterval returns the fixed simulation step in seconds.
func (c *GameConfig) TickInterval() float64 {
	if c.Settings.TickRate <= 0 {
		return 1.0 / 30
	}
	return 1.0 / float64(c.Settings.TickRate)
}
