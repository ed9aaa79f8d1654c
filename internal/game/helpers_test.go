package game

import (
	"towerdefense-vs/internal/grid"
	"towerdefense-vs/internal/models"
)

// testMap is a 10x3 map with a straight path along the middle row.
func testMap() models.MapData {
	return models.MapData{
		Grid: [][]int{
			{0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
			{1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
			{0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		},
		Waypoints: [][2]int{{0, 1}, {9, 1}},
	}
}

func testConfig() *models.GameConfig {
	cfg := models.DefaultGameConfig()
	cfg.Settings.GoldPerSecond = 0
	return cfg
}

func testWaypoints() []grid.Point {
	m := testMap()
	return grid.New(m.Grid, m.Waypoints, 40).WaypointsInPixels()
}

func testEnemy(id string, x, y float64) *Enemy {
	spec := models.EnemySpec{ID: "goblin", Name: "Goblin", HP: 50, Speed: 80, GoldReward: 5, Radius: 10}
	e := NewEnemy(id, spec, testWaypoints())
	e.X, e.Y = x, y
	return e
}
