package gridpath

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is reported when a cell lies outside the grid.
	ErrOutOfBounds = errors.New("cell out of bounds")
	// ErrBlocked is reported when start or goal is an obstacle.
	ErrBlocked = errors.New("cell is blocked")
	// ErrInvalidSize is reported when width or height is not positive.
	ErrInvalidSize = errors.New("invalid grid size")
	// ErrNilGrid is reported when a search is given no grid.
	ErrNilGrid = errors.New("nil grid")
)

// ConfigError describes an invalid search configuration. Role names the
// offending input ("start", "goal" or "obstacle").
type ConfigError struct {
	Cell Cell
	Role string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("gridpath: %s %s: %v", e.Role, e.Cell, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
