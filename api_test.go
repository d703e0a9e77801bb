package gridpath

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

func mustGrid(t *testing.T, width, height int, obstacles []Cell) *Grid {
	t.Helper()
	grid, err := NewGrid(width, height, obstacles)
	if err != nil {
		t.Fatalf("NewGrid(%d, %d): %v", width, height, err)
	}
	return grid
}

// bfsDistance is the brute-force reference: the true 4-connected distance,
// or -1 when goal is unreachable.
func bfsDistance(grid *Grid, start, goal Cell) int {
	dist := map[Cell]int{start: 0}
	queue := []Cell{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == goal {
			return dist[current]
		}
		for _, next := range grid.Neighbors4(current) {
			if grid.IsBlocked(next) {
				continue
			}
			if _, seen := dist[next]; seen {
				continue
			}
			dist[next] = dist[current] + 1
			queue = append(queue, next)
		}
	}
	return -1
}

func checkPathValid(t *testing.T, grid *Grid, start, goal Cell, path Path) {
	t.Helper()
	if len(path) == 0 {
		return
	}
	if path[len(path)-1] != goal {
		t.Fatalf("path ends at %v, want goal %v", path[len(path)-1], goal)
	}
	seen := map[Cell]bool{start: true}
	previous := start
	for i, cell := range path {
		if !grid.Contains(cell) {
			t.Fatalf("path[%d] = %v is out of bounds", i, cell)
		}
		if grid.IsBlocked(cell) {
			t.Fatalf("path[%d] = %v is an obstacle", i, cell)
		}
		if Manhattan(previous, cell) != 1 {
			t.Fatalf("path[%d] = %v is not adjacent to %v", i, cell, previous)
		}
		if seen[cell] {
			t.Fatalf("path[%d] = %v revisits a cell (or includes start)", i, cell)
		}
		seen[cell] = true
		previous = cell
	}
}

func TestSearchOpenGrid(t *testing.T) {
	grid := mustGrid(t, 5, 5, nil)
	start, goal := Cell{0, 0}, Cell{4, 4}

	result, err := Search(grid, start, goal, Manhattan)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !result.Found {
		t.Fatal("expected a path on an open grid")
	}
	if len(result.Path) != 8 || result.Cost != 8 {
		t.Fatalf("got len %d cost %d, want 8/8", len(result.Path), result.Cost)
	}
	if last := result.Path[len(result.Path)-1]; last != goal {
		t.Fatalf("last cell %v, want %v", last, goal)
	}
	checkPathValid(t, grid, start, goal, result.Path)
}

func TestSearchTieBreakIsFixed(t *testing.T) {
	grid := mustGrid(t, 3, 3, nil)

	result, err := Search(grid, Cell{0, 0}, Cell{2, 2}, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := Path{{1, 0}, {2, 0}, {2, 1}, {2, 2}}
	if !reflect.DeepEqual(result.Path, want) {
		t.Fatalf("path = %v, want %v", result.Path, want)
	}
	if result.ExpandedNodes != 9 {
		t.Fatalf("expanded %d nodes, want 9", result.ExpandedNodes)
	}
}

func TestSearchMatchesBFS(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, size := range []int{5, 7} {
		for trial := 0; trial < 200; trial++ {
			var obstacles []Cell
			for y := 0; y < size; y++ {
				for x := 0; x < size; x++ {
					if rng.Float64() < 0.3 {
						obstacles = append(obstacles, Cell{x, y})
					}
				}
			}
			grid := mustGrid(t, size, size, obstacles)
			start := Cell{rng.Intn(size), rng.Intn(size)}
			goal := Cell{rng.Intn(size), rng.Intn(size)}
			if grid.IsBlocked(start) || grid.IsBlocked(goal) {
				continue
			}

			path, err := FindPath(grid, start, goal, Manhattan)
			if err != nil {
				t.Fatalf("FindPath: %v", err)
			}
			want := bfsDistance(grid, start, goal)
			switch {
			case want < 0 && len(path) != 0:
				t.Fatalf("%dx%d %v->%v: got path %v for unreachable goal", size, size, start, goal, path)
			case want >= 0 && len(path) != want:
				t.Fatalf("%dx%d %v->%v: path length %d, shortest is %d", size, size, start, goal, len(path), want)
			}
			checkPathValid(t, grid, start, goal, path)

			// Any admissible, consistent heuristic gives the same length.
			uniform, _ := FindPath(grid, start, goal, Zero)
			if len(uniform) != len(path) {
				t.Fatalf("Zero heuristic length %d, Manhattan %d", len(uniform), len(path))
			}
		}
	}
}

func TestSearchWallMeansNoPath(t *testing.T) {
	var wall []Cell
	for y := 0; y < 5; y++ {
		wall = append(wall, Cell{2, y})
	}
	grid := mustGrid(t, 5, 5, wall)

	result, err := Search(grid, Cell{0, 0}, Cell{4, 4}, Manhattan)
	if err != nil {
		t.Fatalf("unreachable goal must not be an error: %v", err)
	}
	if result.Found || len(result.Path) != 0 {
		t.Fatalf("got found=%v path=%v, want empty", result.Found, result.Path)
	}
	if result.Path == nil {
		t.Fatal("empty path should be non-nil")
	}
}

func TestSearchStartEqualsGoal(t *testing.T) {
	grid := mustGrid(t, 3, 3, nil)

	result, err := Search(grid, Cell{1, 1}, Cell{1, 1}, Manhattan)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Path) != 0 || result.Cost != 0 {
		t.Fatalf("got path %v cost %d, want empty/0", result.Path, result.Cost)
	}
	if !result.Found {
		t.Fatal("start == goal counts as found")
	}
}

func TestSearchDeterministic(t *testing.T) {
	grid := mustGrid(t, 7, 7, []Cell{{3, 1}, {3, 2}, {3, 3}, {3, 4}, {1, 5}, {5, 5}})
	first, _ := FindPath(grid, Cell{0, 3}, Cell{6, 3}, nil)
	for i := 0; i < 20; i++ {
		again, _ := FindPath(grid, Cell{0, 3}, Cell{6, 3}, nil)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d: %v differs from %v", i, again, first)
		}
	}
}

func TestSearchInvalidConfiguration(t *testing.T) {
	grid := mustGrid(t, 4, 4, []Cell{{1, 1}})

	tests := []struct {
		name  string
		start Cell
		goal  Cell
		want  error
		role  string
	}{
		{"start out of bounds", Cell{-1, 0}, Cell{3, 3}, ErrOutOfBounds, "start"},
		{"goal out of bounds", Cell{0, 0}, Cell{4, 0}, ErrOutOfBounds, "goal"},
		{"start blocked", Cell{1, 1}, Cell{3, 3}, ErrBlocked, "start"},
		{"goal blocked", Cell{0, 0}, Cell{1, 1}, ErrBlocked, "goal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Search(grid, tt.start, tt.goal, nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			var configErr *ConfigError
			if !errors.As(err, &configErr) || configErr.Role != tt.role {
				t.Fatalf("err = %#v, want ConfigError with role %q", err, tt.role)
			}
		})
	}

	if _, err := Search(nil, Cell{}, Cell{}, nil); !errors.Is(err, ErrNilGrid) {
		t.Fatalf("nil grid: err = %v", err)
	}
}
