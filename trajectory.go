package gridpath

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Position is the serialized form of a Cell.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) Cell() Cell { return Cell{X: p.X, Y: p.Y} }

// Trajectory is the record of one agent's replay. Path holds one entry per
// executed step and never includes the spawn cell.
type Trajectory struct {
	SpawnPosition Position   `json:"spawnPosition"`
	Path          []Position `json:"path"`
}

// NewTrajectory builds a Trajectory. Path is always non-nil so that it
// encodes as [] rather than null.
func NewTrajectory(spawn Cell, visited []Cell) Trajectory {
	trajectory := Trajectory{
		SpawnPosition: Position{X: spawn.X, Y: spawn.Y},
		Path:          make([]Position, 0, len(visited)),
	}
	for _, cell := range visited {
		trajectory.Path = append(trajectory.Path, Position{X: cell.X, Y: cell.Y})
	}
	return trajectory
}

// Steps is the number of recorded moves, revisits included.
func (t Trajectory) Steps() int { return len(t.Path) }

// UniqueCells counts the distinct coordinates in Path. For an A* replay it
// equals Steps; for a walk with revisits it is smaller.
func (t Trajectory) UniqueCells() int {
	seen := make(map[Position]struct{}, len(t.Path))
	for _, position := range t.Path {
		seen[position] = struct{}{}
	}
	return len(seen)
}

// Log is the document written for downstream consumers.
type Log struct {
	Robots []Trajectory `json:"robots"`
}

// WriteFile writes the log as indented JSON. The file is first written
// beside the target and then renamed into place.
func (l Log) WriteFile(path string) error {
	if l.Robots == nil {
		l.Robots = []Trajectory{}
	}
	data, err := json.MarshalIndent(l, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal trajectory log: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create trajectory directory: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp trajectory log: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace trajectory log: %w", err)
	}

	return nil
}
