// Package scenario decodes the JSON scenario documents consumed by gridpath
// and turns them into a Grid plus start and goal cells.
package scenario

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"

	"github.com/pdrpinto/gridpath"
)

// Coordinate is an [x, y] pair as it appears in scenario files.
type Coordinate [2]int

func (c Coordinate) Cell() gridpath.Cell { return gridpath.Cell{X: c[0], Y: c[1]} }

// UnmarshalJSON requires exactly two elements. A plain [2]int would drop
// extra elements and zero-fill missing ones.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var values []int
	if err := json.Unmarshal(data, &values); err != nil {
		return errors.Wrap(err, "decode coordinate")
	}
	if len(values) != 2 {
		return errors.Errorf("coordinate %s has %d elements, want 2", bytes.TrimSpace(data), len(values))
	}
	c[0], c[1] = values[0], values[1]
	return nil
}

// Scenario is one world description.
type Scenario struct {
	Width     int          `json:"width" jsonschema:"title=Width,description=Number of columns,minimum=1,required"`
	Height    int          `json:"height" jsonschema:"title=Height,description=Number of rows,minimum=1,required"`
	Start     Coordinate   `json:"start" jsonschema:"title=Start,description=Spawn cell as [x and y],minItems=2,maxItems=2,required"`
	Goal      Coordinate   `json:"goal" jsonschema:"title=Goal,description=Target cell as [x and y],minItems=2,maxItems=2,required"`
	Obstacles []Coordinate `json:"obstacles" jsonschema:"title=Obstacles,description=Blocked cells as [x and y] pairs"`
}

// Decode reads a scenario document and validates it.
func Decode(r io.Reader) (Scenario, error) {
	var sc Scenario
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&sc); err != nil {
		return Scenario{}, errors.Wrap(err, "decode scenario")
	}
	if err := sc.Validate(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

// Parse is Decode over a byte slice.
func Parse(data []byte) (Scenario, error) {
	return Decode(bytes.NewReader(data))
}

// Load reads and validates the scenario file at path.
func Load(path string) (Scenario, error) {
	file, err := os.Open(path)
	if err != nil {
		return Scenario{}, errors.Wrap(err, "open scenario")
	}
	defer file.Close()

	sc, err := Decode(file)
	if err != nil {
		return Scenario{}, errors.Wrapf(err, "load %s", path)
	}
	return sc, nil
}

// Validate checks the size, that every obstacle is in bounds, and that start
// and goal are in bounds and not listed as obstacles.
func (s Scenario) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return errors.Wrapf(gridpath.ErrInvalidSize, "scenario %dx%d", s.Width, s.Height)
	}
	grid, err := s.grid()
	if err != nil {
		return err
	}
	for _, endpoint := range []struct {
		role string
		cell gridpath.Cell
	}{{"start", s.Start.Cell()}, {"goal", s.Goal.Cell()}} {
		if !grid.Contains(endpoint.cell) {
			return &gridpath.ConfigError{Cell: endpoint.cell, Role: endpoint.role, Err: gridpath.ErrOutOfBounds}
		}
		if grid.IsBlocked(endpoint.cell) {
			return &gridpath.ConfigError{Cell: endpoint.cell, Role: endpoint.role, Err: gridpath.ErrBlocked}
		}
	}
	return nil
}

func (s Scenario) grid() (*gridpath.Grid, error) {
	obstacles := make([]gridpath.Cell, 0, len(s.Obstacles))
	for _, obstacle := range s.Obstacles {
		obstacles = append(obstacles, obstacle.Cell())
	}
	grid, err := gridpath.NewGrid(s.Width, s.Height, obstacles)
	if err != nil {
		return nil, errors.Wrap(err, "build grid")
	}
	return grid, nil
}

// Build validates the scenario and returns its grid, start and goal.
func (s Scenario) Build() (*gridpath.Grid, gridpath.Cell, gridpath.Cell, error) {
	if err := s.Validate(); err != nil {
		return nil, gridpath.Cell{}, gridpath.Cell{}, err
	}
	grid, err := s.grid()
	if err != nil {
		return nil, gridpath.Cell{}, gridpath.Cell{}, err
	}
	return grid, s.Start.Cell(), s.Goal.Cell(), nil
}

// Schema describes the scenario document.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
	}
	schema := reflector.Reflect(new(Scenario))
	schema.Title = "gridpath scenario"
	schema.Description = "Grid size, start, goal and static obstacles for a single-agent path search"
	return schema
}
