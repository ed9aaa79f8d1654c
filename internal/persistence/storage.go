package persistence

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"towerdefense-vs/internal/models"

	"golang.org/x/crypto/blake2b"
)

const (
	// DefaultMapPath is where launchers look for the map asset.
	DefaultMapPath = "maps/map1.json"
)

// LoadMap loads and validates a map asset from a JSON file.
func LoadMap(path string) (models.MapData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.MapData{}, fmt.Errorf("read map %s: %w", path, err)
	}

	var m models.MapData
	if err := json.Unmarshal(data, &m); err != nil {
		return models.MapData{}, fmt.Errorf("parse map %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return models.MapData{}, fmt.Errorf("invalid map %s: %w", path, err)
	}
	return m, nil
}

// LoadGameConfig reads a game config file on top of the defaults.
// Settings fields absent from the file keep their default value; a tower or enemy
// entry present in the file replaces the default entry of the same id.
// An empty path returns the defaults.
func LoadGameConfig(path string) (*models.GameConfig, error) {
	cfg := models.DefaultGameConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read game config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse game config %s: %w", path, err)
	}

	for id, spec := range cfg.Towers {
		if spec.ID == "" {
			spec.ID = id
			cfg.Towers[id] = spec
		}
	}
	for id, spec := range cfg.Enemies {
		if spec.ID == "" {
			spec.ID = id
			cfg.Enemies[id] = spec
		}
	}
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid game config %s: %w", path, err)
	}
	return cfg, nil
}

func validateConfig(cfg *models.GameConfig) error {
	s := cfg.Settings
	if s.TileSize <= 0 {
		return fmt.Errorf("tile_size must be positive, got %v", s.TileSize)
	}
	if s.TickRate <= 0 {
		return fmt.Errorf("tick_rate must be positive, got %d", s.TickRate)
	}
	if s.StateBroadcastInterval <= 0 {
		return fmt.Errorf("state_broadcast_interval must be positive, got %d", s.StateBroadcastInterval)
	}
	if s.MaxTowerLevel < 1 {
		return fmt.Errorf("max_tower_level must be at least 1, got %d", s.MaxTowerLevel)
	}
	for id, spec := range cfg.Towers {
		if spec.FireRate <= 0 {
			return fmt.Errorf("tower %s: fire_rate must be positive", id)
		}
	}
	for w, wave := range cfg.Waves {
		for _, g := range wave {
			if _, ok := cfg.Enemies[g.EnemyType]; !ok {
				return fmt.Errorf("wave %d: unknown enemy type %q", w+1, g.EnemyType)
			}
			if g.Interval <= 0 {
				return fmt.Errorf("wave %d: %s interval must be positive", w+1, g.EnemyType)
			}
		}
	}
	for _, id := range cfg.TowerOrder {
		if _, ok := cfg.Towers[id]; !ok {
			return fmt.Errorf("tower_order: unknown tower %q", id)
		}
	}
	for _, id := range cfg.EnemyOrder {
		if _, ok := cfg.Enemies[id]; !ok {
			return fmt.Errorf("enemy_order: unknown enemy %q", id)
		}
	}
	return nil
}

// MapDigest is a hex BLAKE2b-256 over the canonical JSON form of a map.
// Server and client compare digests to confirm they play on the same layout.
func MapDigest(m models.MapData) string {
	data, _ := json.Marshal(m) // only ints, cannot fail
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
