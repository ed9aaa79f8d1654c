package models

import (
	"errors"
	"fmt"
)

// Cell values used by map assets.
const (
	CellGrass = 0
	CellPath  = 1
)

// MapData is the static map asset shared by both lanes: a grid of cell values
// (0 = grass, 1 = path) and the ordered list of [col, row] waypoints enemies follow.
type MapData struct {
	Grid      [][]int  `json:"grid"`
	Waypoints [][2]int `json:"waypoints"`
}

// Validate checks that the grid is a non-empty rectangle and every waypoint is inside it.
func (m MapData) Validate() error {
	if len(m.Grid) == 0 || len(m.Grid[0]) == 0 {
		return errors.New("map grid is empty")
	}
	cols := len(m.Grid[0])
	for r, row := range m.Grid {
		if len(row) != cols {
			return fmt.Errorf("map row %d has %d cells, expected %d", r, len(row), cols)
		}
	}
	if len(m.Waypoints) == 0 {
		return errors.New("map has no waypoints")
	}
	for i, wp := range m.Waypoints {
		if wp[0] < 0 || wp[0] >= cols || wp[1] < 0 || wp[1] >= len(m.Grid) {
			return fmt.Errorf("waypoint %d (%d,%d) is outside the %dx%d grid", i, wp[0], wp[1], cols, len(m.Grid))
		}
	}
	return nil
}
