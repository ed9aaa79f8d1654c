// Package grid holds the static tile map a lane is played on.
package grid

import "math"

// Cell is the state of one tile.
type Cell int

const (
	Grass Cell = iota
	Path
	Tower
)

// Point is a pixel position.
type Point struct {
	X, Y float64
}

// Grid is a lane's tile map plus the ordered waypoint path enemies walk.
type Grid struct {
	cells     [][]Cell
	waypoints [][2]int
	pixels    []Point
	tileSize  float64
	cols      int
	rows      int
}

// New builds a grid from raw cell values (0 grass, 1 path) and [col,row] waypoints.
// The input is copied, so grids built from the same data never share state.
func New(data [][]int, waypoints [][2]int, tileSize float64) *Grid {
	g := &Grid{
		cells:     make([][]Cell, len(data)),
		waypoints: append([][2]int(nil), waypoints...),
		tileSize:  tileSize,
		rows:      len(data),
	}
	for r, row := range data {
		g.cells[r] = make([]Cell, len(row))
		for c, v := range row {
			g.cells[r][c] = Cell(v)
		}
	}
	if g.rows > 0 {
		g.cols = len(data[0])
	}
	g.pixels = make([]Point, len(g.waypoints))
	for i, wp := range g.waypoints {
		x, y := g.GridToPixel(wp[0], wp[1])
		g.pixels[i] = Point{X: x, Y: y}
	}
	return g
}

func (g *Grid) Cols() int           { return g.cols }
func (g *Grid) Rows() int           { return g.rows }
func (g *Grid) TileSize() float64   { return g.tileSize }
func (g *Grid) Waypoints() [][2]int { return g.waypoints }

func (g *Grid) inBounds(col, row int) bool {
	return col >= 0 && col < g.cols && row >= 0 && row < g.rows
}

// CellAt returns the tile state; out-of-bounds tiles read as Path so nothing is ever built there.
func (g *Grid) CellAt(col, row int) Cell {
	if !g.inBounds(col, row) {
		return Path
	}
	return g.cells[row][col]
}

// CanPlaceTower reports whether (col,row) is in bounds and still grass.
func (g *Grid) CanPlaceTower(col, row int) bool {
	return g.inBounds(col, row) && g.cells[row][col] == Grass
}

func (g *Grid) PlaceTower(col, row int) {
	if g.inBounds(col, row) {
		g.cells[row][col] = Tower
	}
}

func (g *Grid) RemoveTower(col, row int) {
	if g.inBounds(col, row) {
		g.cells[row][col] = Grass
	}
}

// GridToPixel returns the pixel center of a tile.
func (g *Grid) GridToPixel(col, row int) (float64, float64) {
	half := math.Floor(g.tileSize / 2)
	return float64(col)*g.tileSize + half, float64(row)*g.tileSize + half
}

// PixelToGrid returns the tile containing a pixel.
func (g *Grid) PixelToGrid(x, y float64) (int, int) {
	return int(math.Floor(x / g.tileSize)), int(math.Floor(y / g.tileSize))
}

// WaypointsInPixels returns the waypoint centers, computed once when the grid was built.
// Callers must not modify the returned slice.
func (g *Grid) WaypointsInPixels() []Point {
	return g.pixels
}
