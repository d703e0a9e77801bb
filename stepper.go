package gridpath

// StepSnapshot exposes the per-iteration state of the search
type StepSnapshot struct {
	Current   Cell
	Open      map[Cell]bool
	Closed    map[Cell]bool
	Done      bool
	Found     bool
	Path      Path
	StepIndex int
}

// Stepper advances the same search Search runs, one node expansion per Step.
// It is not safe for concurrent use.
type Stepper struct {
	search *search
	done   bool
}

// NewStepper validates the configuration exactly as Search does.
func NewStepper(grid *Grid, start, goal Cell, heuristic Heuristic) (*Stepper, error) {
	s, err := newSearch(grid, start, goal, heuristic)
	if err != nil {
		return nil, err
	}
	return &Stepper{search: s}, nil
}

// Step expands one node and returns a snapshot. Once the goal is reached or
// the frontier is exhausted, further calls return the final snapshot again
// without doing any work.
func (s *Stepper) Step() StepSnapshot {
	if s.done {
		return s.snapshot(Cell{})
	}
	current, outcome := s.search.next()
	if outcome != stepExpanded {
		s.done = true
	}
	return s.snapshot(current)
}

// Done reports whether the search has finished.
func (s *Stepper) Done() bool { return s.done }

// Result returns the outcome so far. Path is empty until the goal is found.
func (s *Stepper) Result() Result { return s.search.result() }

func (s *Stepper) snapshot(current Cell) StepSnapshot {
	snap := StepSnapshot{
		Current:   current,
		Open:      s.openCells(),
		Closed:    make(map[Cell]bool, len(s.search.closed)),
		Done:      s.done,
		Found:     s.search.found,
		StepIndex: s.search.expanded,
	}
	for cell := range s.search.closed {
		snap.Closed[cell] = true
	}
	if s.search.found {
		snap.Path = s.search.path()
	}
	return snap
}

// openCells lists frontier cells that still have a live entry.
func (s *Stepper) openCells() map[Cell]bool {
	open := make(map[Cell]bool, len(s.search.openSet))
	for _, item := range s.search.openSet {
		if _, done := s.search.closed[item.Cell]; done {
			continue
		}
		if item.GScore > s.search.gScore[item.Cell] {
			continue
		}
		open[item.Cell] = true
	}
	return open
}
