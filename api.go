package gridpath

import (
	"container/heap"

	"github.com/pdrpinto/gridpath/internal"
)

// Heuristic returns the estimated cost from one cell to another. It must be
// admissible and consistent for unit-cost 4-connected movement.
type Heuristic func(from Cell, to Cell) int

// Manhattan is |a.x-b.x| + |a.y-b.y|.
func Manhattan(from Cell, to Cell) int {
	return abs(from.X-to.X) + abs(from.Y-to.Y)
}

// Zero turns the search into uniform-cost search. Useful as a reference
// when checking that another heuristic only changes expansion order.
func Zero(Cell, Cell) int { return 0 }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Path is the ordered sequence of cells after start up to and including
// goal. An empty Path means the goal is unreachable, or start equals goal.
type Path []Cell

// Result contains the outcome of a search
type Result struct {
	Path          Path
	Cost          int
	ExpandedNodes int
	Found         bool
}

type stepOutcome int

const (
	stepExpanded stepOutcome = iota
	stepFound
	stepExhausted
)

// search owns the per-invocation tables. It is shared by Search and Stepper
// so both follow the same expansion order.
type search struct {
	grid      *Grid
	start     Cell
	goal      Cell
	heuristic Heuristic

	openSet  frontier
	gScore   map[Cell]int
	cameFrom map[Cell]Cell
	closed   map[Cell]struct{}

	sequence uint64
	expanded int
	found    bool
	cost     int
}

func validate(grid *Grid, start, goal Cell) error {
	if grid == nil {
		return ErrNilGrid
	}
	for _, endpoint := range []struct {
		role string
		cell Cell
	}{{"start", start}, {"goal", goal}} {
		if !grid.Contains(endpoint.cell) {
			return &ConfigError{Cell: endpoint.cell, Role: endpoint.role, Err: ErrOutOfBounds}
		}
		if grid.IsBlocked(endpoint.cell) {
			return &ConfigError{Cell: endpoint.cell, Role: endpoint.role, Err: ErrBlocked}
		}
	}
	return nil
}

func newSearch(grid *Grid, start, goal Cell, heuristic Heuristic) (*search, error) {
	if err := validate(grid, start, goal); err != nil {
		return nil, err
	}
	if heuristic == nil {
		heuristic = Manhattan
	}
	s := &search{
		grid:      grid,
		start:     start,
		goal:      goal,
		heuristic: heuristic,
		openSet:   make(frontier, 0),
		gScore:    map[Cell]int{start: 0},
		cameFrom:  make(map[Cell]Cell),
		closed:    make(map[Cell]struct{}),
	}
	heap.Init(&s.openSet)
	s.push(start, 0)
	return s, nil
}

func (s *search) push(cell Cell, g int) {
	s.sequence++
	heap.Push(&s.openSet, &frontierItem{
		Cell:     cell,
		GScore:   g,
		FCost:    g + s.heuristic(cell, s.goal),
		Sequence: s.sequence,
	})
}

// next pops frontier entries until one can be expanded. Entries for closed
// cells, or whose g is worse than the recorded best, are stale and skipped.
func (s *search) next() (Cell, stepOutcome) {
	for s.openSet.Len() > 0 {
		currentItem := heap.Pop(&s.openSet).(*frontierItem)
		current := currentItem.Cell
		if _, done := s.closed[current]; done {
			continue
		}
		if currentItem.GScore > s.gScore[current] {
			continue
		}
		s.closed[current] = struct{}{}
		s.expanded++

		if current == s.goal {
			s.found = true
			s.cost = currentItem.GScore
			return current, stepFound
		}

		for _, neighbor := range s.grid.Neighbors4(current) {
			if s.grid.IsBlocked(neighbor) {
				continue
			}
			if _, done := s.closed[neighbor]; done {
				continue
			}
			tentativeG := currentItem.GScore + 1
			if best, seen := s.gScore[neighbor]; seen && tentativeG >= best {
				continue
			}
			s.gScore[neighbor] = tentativeG
			s.cameFrom[neighbor] = current
			s.push(neighbor, tentativeG)
		}
		return current, stepExpanded
	}
	return Cell{}, stepExhausted
}

func (s *search) path() Path {
	if !s.found {
		return Path{}
	}
	return Path(internal.ReconstructPath(s.cameFrom, s.goal, s.start))
}

func (s *search) result() Result {
	return Result{
		Path:          s.path(),
		Cost:          s.cost,
		ExpandedNodes: s.expanded,
		Found:         s.found,
	}
}

// Search runs A* from start to goal over grid. A nil heuristic selects
// Manhattan.
//
// An unreachable goal is not an error: the Result has Found false and an
// empty Path. Errors are reserved for invalid configuration (nil grid,
// start or goal out of bounds or blocked) and are returned before any
// search work is done.
func Search(grid *Grid, start, goal Cell, heuristic Heuristic) (Result, error) {
	s, err := newSearch(grid, start, goal, heuristic)
	if err != nil {
		return Result{Path: Path{}}, err
	}
	for {
		if _, outcome := s.next(); outcome != stepExpanded {
			return s.result(), nil
		}
	}
}

// FindPath is Search reduced to its Path.
func FindPath(grid *Grid, start, goal Cell, heuristic Heuristic) (Path, error) {
	result, err := Search(grid, start, goal, heuristic)
	return result.Path, err
}
