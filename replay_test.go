package gridpath

import (
	"reflect"
	"testing"
)

func TestReplayerExhaustion(t *testing.T) {
	grid := mustGrid(t, 5, 5, nil)
	spawn := Cell{0, 0}
	path, err := FindPath(grid, spawn, Cell{4, 4}, nil)
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}

	replayer := NewReplayer(spawn, path)
	if replayer.Done() || replayer.Current() != spawn || len(replayer.History()) != 0 {
		t.Fatal("replayer should start Active at spawn with empty history")
	}

	for i := 0; i < len(path); i++ {
		if replayer.Done() {
			t.Fatalf("Done after %d of %d steps", i, len(path))
		}
		if !replayer.Step() {
			t.Fatalf("Step %d returned false", i)
		}
		if replayer.Current() != path[i] {
			t.Fatalf("current %v after step %d, want %v", replayer.Current(), i, path[i])
		}
	}
	if !replayer.Done() || replayer.Remaining() != 0 {
		t.Fatal("replayer should be Done after len(path) steps")
	}
	if got := replayer.History(); !reflect.DeepEqual(got, []Cell(path)) {
		t.Fatalf("history %v, want %v", got, path)
	}

	for i := 0; i < 3; i++ {
		if replayer.Step() {
			t.Fatal("Step after Done must be a no-op")
		}
	}
	if replayer.Steps() != len(path) || replayer.Current() != (Cell{4, 4}) || len(replayer.History()) != len(path) {
		t.Fatal("state changed after stepping a Done replayer")
	}
}

func TestReplayerEmptyPath(t *testing.T) {
	spawn := Cell{2, 2}
	replayer := NewReplayer(spawn, Path{})
	if !replayer.Done() {
		t.Fatal("empty path should start Done")
	}
	if replayer.Step() {
		t.Fatal("Step on empty path must be a no-op")
	}
	if replayer.Current() != spawn || len(replayer.History()) != 0 {
		t.Fatal("state changed on empty path")
	}
}

func TestReplayerTrivialCase(t *testing.T) {
	grid := mustGrid(t, 3, 3, nil)
	path, err := FindPath(grid, Cell{1, 1}, Cell{1, 1}, nil)
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	replayer := NewReplayer(Cell{1, 1}, path)
	replayer.Step()
	if !replayer.Done() || len(replayer.History()) != 0 {
		t.Fatal("start == goal should leave the replayer Done with no history")
	}
}

func TestReplayerCopiesPath(t *testing.T) {
	path := Path{{1, 0}, {2, 0}}
	replayer := NewReplayer(Cell{0, 0}, path)
	path[0] = Cell{9, 9}
	replayer.Step()
	if replayer.Current() != (Cell{1, 0}) {
		t.Fatalf("replayer observed caller mutation: %v", replayer.Current())
	}

	history := replayer.History()
	history[0] = Cell{7, 7}
	if replayer.History()[0] != (Cell{1, 0}) {
		t.Fatal("History must return a copy")
	}
}
