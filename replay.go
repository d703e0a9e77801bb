package gridpath

// Replayer walks an agent along a computed Path, one cell per Step.
//
// It is Active while cells remain and Done once the cursor reaches the end
// of the path. An empty Path starts Done. Replayer is not safe for
// concurrent use; callers driving it from a loop must serialize Step.
type Replayer struct {
	spawn   Cell
	current Cell
	path    Path
	cursor  int
	history []Cell
}

// NewReplayer places the agent on spawn. The path is copied.
func NewReplayer(spawn Cell, path Path) *Replayer {
	return &Replayer{
		spawn:   spawn,
		current: spawn,
		path:    append(Path(nil), path...),
		history: make([]Cell, 0, len(path)),
	}
}

// Step moves the agent to the next cell of the path and records it. It
// returns false, leaving all state unchanged, once the replay is Done.
func (r *Replayer) Step() bool {
	if r.Done() {
		return false
	}
	r.current = r.path[r.cursor]
	r.history = append(r.history, r.current)
	r.cursor++
	return true
}

// Done reports whether every cell of the path has been stepped onto.
func (r *Replayer) Done() bool { return r.cursor >= len(r.path) }

// Current is the agent's cell: spawn before the first Step.
func (r *Replayer) Current() Cell { return r.current }

// Spawn is the cell the agent started on.
func (r *Replayer) Spawn() Cell { return r.spawn }

// Steps is the number of steps executed so far.
func (r *Replayer) Steps() int { return r.cursor }

// Remaining is the number of steps left before Done.
func (r *Replayer) Remaining() int { return len(r.path) - r.cursor }

// History returns a copy of the visited cells, in order, excluding spawn.
func (r *Replayer) History() []Cell {
	return append([]Cell(nil), r.history...)
}

// Trajectory returns the record of the replay so far.
func (r *Replayer) Trajectory() Trajectory {
	return NewTrajectory(r.spawn, r.history)
}
