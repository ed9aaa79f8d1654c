package persistence

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"towerdefense-vs/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadBundledMap(t *testing.T) {
	m, err := LoadMap(filepath.Join("..", "..", DefaultMapPath))
	if err != nil {
		t.Fatalf("load bundled map: %v", err)
	}
	if len(m.Grid) != 15 || len(m.Grid[0]) != 20 {
		t.Fatalf("bundled map is %dx%d, want 20x15", len(m.Grid[0]), len(m.Grid))
	}
	for _, wp := range m.Waypoints {
		if m.Grid[wp[1]][wp[0]] != models.CellPath {
			t.Fatalf("waypoint %v is not on the path", wp)
		}
	}
}

func TestLoadMapErrors(t *testing.T) {
	cases := map[string]string{
		"ragged.json":       `{"grid": [[0,1],[0]], "waypoints": [[0,0]]}`,
		"no_waypoints.json": `{"grid": [[0,1]], "waypoints": []}`,
		"outside.json":      `{"grid": [[0,1]], "waypoints": [[5,0]]}`,
		"garbage.json":      `{"grid": `,
	}
	for name, content := range cases {
		if _, err := LoadMap(writeFile(t, name, content)); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
	if _, err := LoadMap(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("missing file: expected an error")
	}
}

func TestLoadGameConfigOverlay(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"settings": {"starting_gold": 500, "tick_rate": 20},
		"towers": {"archer": {"name": "Longbow", "cost": 60, "damage": 12, "range": 150, "fire_rate": 2}},
		"waves": [[{"enemy_type": "orc", "count": 2, "interval": 1.5}]]
	}`)
	cfg, err := LoadGameConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Settings.StartingGold != 500 || cfg.Settings.TickRate != 20 {
		t.Fatalf("overridden settings not applied: %+v", cfg.Settings)
	}
	if cfg.Settings.StartingLives != 20 || cfg.Settings.SellRefundRate != 0.6 {
		t.Fatalf("untouched settings lost their defaults: %+v", cfg.Settings)
	}
	archer := cfg.Towers["archer"]
	if archer.ID != "archer" || archer.Cost != 60 || archer.Name != "Longbow" {
		t.Fatalf("archer entry = %+v", archer)
	}
	if _, ok := cfg.Towers["wizard"]; !ok {
		t.Fatalf("default wizard dropped")
	}
	if len(cfg.Waves) != 1 || cfg.Waves[0][0].EnemyType != "orc" {
		t.Fatalf("waves = %+v", cfg.Waves)
	}
}

func TestLoadGameConfigRejectsBadWaves(t *testing.T) {
	path := writeFile(t, "config.json", `{"waves": [[{"enemy_type": "kraken", "count": 1, "interval": 1}]]}`)
	_, err := LoadGameConfig(path)
	if err == nil || !strings.Contains(err.Error(), "kraken") {
		t.Fatalf("expected unknown enemy error, got %v", err)
	}
}

func TestLoadGameConfigEmptyPath(t *testing.T) {
	cfg, err := LoadGameConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Waves) != 15 || len(cfg.Towers) != 4 || len(cfg.Enemies) != 4 {
		t.Fatalf("defaults incomplete: %d waves, %d towers, %d enemies", len(cfg.Waves), len(cfg.Towers), len(cfg.Enemies))
	}
	if err := validateConfig(cfg); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
}

func TestMapDigest(t *testing.T) {
	a := models.MapData{Grid: [][]int{{0, 1}, {0, 1}}, Waypoints: [][2]int{{1, 0}, {1, 1}}}
	b := models.MapData{Grid: [][]int{{0, 1}, {0, 1}}, Waypoints: [][2]int{{1, 0}, {1, 1}}}
	if MapDigest(a) != MapDigest(b) {
		t.Fatalf("equal maps produced different digests")
	}
	if len(MapDigest(a)) != 64 {
		t.Fatalf("digest %q is not 32 hex bytes", MapDigest(a))
	}
	b.Grid[0][0] = 1
	if MapDigest(a) == MapDigest(b) {
		t.Fatalf("different maps produced the same digest")
	}
}
