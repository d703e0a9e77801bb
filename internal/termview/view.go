// Package termview renders a replay on a terminal with tcell.
package termview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pdrpinto/gridpath"
)

const (
	glyphObstacle = '█'
	glyphFloor    = '.'
	glyphVisited  = '•'
	glyphSpawn    = 'S'
	glyphGoal     = 'G'
	glyphAgent    = '@'
)

var (
	styleFloor    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleObstacle = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleVisited  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleEndpoint = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleAgent    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

// View draws one grid with row 0 at the top and one terminal column per cell.
// The status line sits directly below the grid.
type View struct {
	screen tcell.Screen
	grid   *gridpath.Grid
	goal   gridpath.Cell

	inputOnce sync.Once
	quit      chan struct{}
}

func New(screen tcell.Screen, grid *gridpath.Grid, goal gridpath.Cell) *View {
	return &View{screen: screen, grid: grid, goal: goal}
}

// Draw renders the replay state and shows the frame.
func (v *View) Draw(replayer *gridpath.Replayer) {
	v.screen.Clear()
	for y := 0; y < v.grid.Height(); y++ {
		for x := 0; x < v.grid.Width(); x++ {
			glyph, style := glyphFloor, styleFloor
			if v.grid.IsBlocked(gridpath.Cell{X: x, Y: y}) {
				glyph, style = glyphObstacle, styleObstacle
			}
			v.screen.SetContent(x, y, glyph, nil, style)
		}
	}
	for _, cell := range replayer.History() {
		v.screen.SetContent(cell.X, cell.Y, glyphVisited, nil, styleVisited)
	}
	spawn := replayer.Spawn()
	v.screen.SetContent(spawn.X, spawn.Y, glyphSpawn, nil, styleEndpoint)
	v.screen.SetContent(v.goal.X, v.goal.Y, glyphGoal, nil, styleEndpoint)
	current := replayer.Current()
	v.screen.SetContent(current.X, current.Y, glyphAgent, nil, styleAgent)

	status := fmt.Sprintf("step %d/%d", replayer.Steps(), replayer.Steps()+replayer.Remaining())
	if replayer.Done() {
		status += " done"
	}
	v.drawText(0, v.grid.Height(), status, styleStatus)
	v.screen.Show()
}

func (v *View) drawText(x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		v.screen.SetContent(x+i, y, r, nil, style)
	}
}

// Play steps the replayer every delay and redraws, until the replay is
// Done, the user presses Escape, q or Ctrl-C, or ctx is cancelled. It
// returns true if the user quit early. A non-positive delay steps without
// pausing. The caller owns the screen.
func (v *View) Play(ctx context.Context, replayer *gridpath.Replayer, delay time.Duration) bool {
	quit := v.listen()
	var tick <-chan time.Time
	if delay > 0 {
		ticker := time.NewTicker(delay)
		defer ticker.Stop()
		tick = ticker.C
	} else {
		always := make(chan time.Time)
		close(always)
		tick = always
	}

	v.Draw(replayer)
	for !replayer.Done() {
		select {
		case <-ctx.Done():
			return false
		case <-quit:
			return true
		case <-tick:
			replayer.Step()
			v.Draw(replayer)
		}
	}
	return false
}

// WaitQuit blocks until a quit key is pressed or ctx is cancelled.
func (v *View) WaitQuit(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-v.listen():
	}
}

// listen starts the single input pump for the screen. The returned channel
// is closed on the first quit key or when the screen is finalized.
func (v *View) listen() <-chan struct{} {
	v.inputOnce.Do(func() {
		v.quit = make(chan struct{})
		go func() {
			defer close(v.quit)
			for {
				event := v.screen.PollEvent()
				if event == nil || isQuit(event) {
					return
				}
			}
		}()
	})
	return v.quit
}

func isQuit(event tcell.Event) bool {
	key, ok := event.(*tcell.EventKey)
	if !ok {
		return false
	}
	switch key.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return key.Rune() == 'q'
	}
	return false
}
