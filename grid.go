package gridpath

import (
	"fmt"
	"sort"
)

// Cell is an integer grid coordinate.
type Cell struct {
	X int
	Y int
}

func (c Cell) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// neighborOffsets fixes the expansion order of Neighbors4.
var neighborOffsets = [...]Cell{{X: -1}, {X: 1}, {Y: -1}, {Y: 1}}

// Grid holds the bounds and static obstacle occupancy of a scenario.
// It is never mutated after NewGrid returns, so it may be shared by
// concurrent searches.
type Grid struct {
	width     int
	height    int
	obstacles map[Cell]struct{}
}

// NewGrid builds a grid of the given size. Every obstacle must lie inside
// the bounds; duplicates are collapsed.
func NewGrid(width, height int, obstacles []Cell) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("gridpath: %dx%d: %w", width, height, ErrInvalidSize)
	}
	grid := &Grid{
		width:     width,
		height:    height,
		obstacles: make(map[Cell]struct{}, len(obstacles)),
	}
	for _, obstacle := range obstacles {
		if !grid.Contains(obstacle) {
			return nil, &ConfigError{Cell: obstacle, Role: "obstacle", Err: ErrOutOfBounds}
		}
		grid.obstacles[obstacle] = struct{}{}
	}
	return grid, nil
}

// Width is the number of columns.
func (g *Grid) Width() int { return g.width }

// Height is the number of rows.
func (g *Grid) Height() int { return g.height }

// Contains reports whether cell lies within [0,width)×[0,height).
func (g *Grid) Contains(cell Cell) bool {
	return cell.X >= 0 && cell.X < g.width && cell.Y >= 0 && cell.Y < g.height
}

// IsBlocked reports whether cell is an obstacle.
func (g *Grid) IsBlocked(cell Cell) bool {
	_, blocked := g.obstacles[cell]
	return blocked
}

// Neighbors4 returns the in-bounds axis-aligned neighbors of cell.
// Obstacles are not filtered here.
func (g *Grid) Neighbors4(cell Cell) []Cell {
	neighbors := make([]Cell, 0, len(neighborOffsets))
	for _, offset := range neighborOffsets {
		next := Cell{X: cell.X + offset.X, Y: cell.Y + offset.Y}
		if g.Contains(next) {
			neighbors = append(neighbors, next)
		}
	}
	return neighbors
}

// Obstacles returns the obstacle cells sorted by row, then column.
func (g *Grid) Obstacles() []Cell {
	cells := make([]Cell, 0, len(g.obstacles))
	for cell := range g.obstacles {
		cells = append(cells, cell)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
	return cells
}
