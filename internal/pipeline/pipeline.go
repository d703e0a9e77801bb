// Package pipeline runs one scenario end to end: build the grid, search,
// replay the path tick by tick and produce the trajectory record.
package pipeline

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/pdrpinto/gridpath"
	"github.com/pdrpinto/gridpath/internal/metrics"
	"github.com/pdrpinto/gridpath/scenario"
)

// Config controls a run.
type Config struct {
	// MaxTicks caps the number of replay steps. Zero replays until Done.
	MaxTicks  int
	Heuristic gridpath.Heuristic
	Metrics   *metrics.Metrics
}

func DefaultConfig() Config {
	return Config{Heuristic: gridpath.Manhattan}
}

// Outcome is what a run produced.
type Outcome struct {
	Result     gridpath.Result
	Trajectory gridpath.Trajectory
	Ticks      int
}

// Run solves sc and replays the result. An unreachable goal is reported in
// the Outcome, not as an error; the trajectory then holds only the spawn.
// ctx is checked between ticks.
func Run(ctx context.Context, logger log.Logger, sc scenario.Scenario, cfg Config) (Outcome, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	grid, start, goal, err := sc.Build()
	if err != nil {
		if cfg.Metrics != nil {
			cfg.Metrics.ObserveSearch(gridpath.Result{}, err, 0)
		}
		return Outcome{}, errors.Wrap(err, "invalid scenario")
	}

	began := time.Now()
	result, err := gridpath.Search(grid, start, goal, cfg.Heuristic)
	elapsed := time.Since(began)
	if cfg.Metrics != nil {
		cfg.Metrics.ObserveSearch(result, err, elapsed)
	}
	if err != nil {
		return Outcome{}, errors.Wrap(err, "search")
	}

	logger = log.With(logger, "start", start, "goal", goal)
	if !result.Found {
		level.Warn(logger).Log("msg", "goal unreachable", "expanded", result.ExpandedNodes)
		return Outcome{Result: result, Trajectory: gridpath.NewTrajectory(start, nil)}, nil
	}
	level.Info(logger).Log("msg", "path found", "length", len(result.Path), "expanded", result.ExpandedNodes, "elapsed", elapsed)

	replayer := gridpath.NewReplayer(start, result.Path)
	ticks := 0
	for !replayer.Done() {
		if cfg.MaxTicks > 0 && ticks >= cfg.MaxTicks {
			level.Info(logger).Log("msg", "tick limit reached", "ticks", ticks, "remaining", replayer.Remaining())
			break
		}
		if err := ctx.Err(); err != nil {
			return Outcome{}, errors.Wrap(err, "replay interrupted")
		}
		replayer.Step()
		ticks++
		if cfg.Metrics != nil {
			cfg.Metrics.ObserveReplayStep()
		}
		level.Debug(logger).Log("msg", "moved", "tick", ticks, "cell", replayer.Current())
	}

	trajectory := replayer.Trajectory()
	level.Info(logger).Log("msg", "replay finished", "steps", trajectory.Steps(), "unique", trajectory.UniqueCells(), "done", replayer.Done())
	return Outcome{Result: result, Trajectory: trajectory, Ticks: ticks}, nil
}

// RunFile loads the scenario at scenarioPath, runs it and writes the
// trajectory log to outPath.
func RunFile(ctx context.Context, logger log.Logger, scenarioPath, outPath string, cfg Config) (Outcome, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	sc, err := scenario.Load(scenarioPath)
	if err != nil {
		return Outcome{}, err
	}
	outcome, err := Run(ctx, log.With(logger, "scenario", scenarioPath), sc, cfg)
	if err != nil {
		return Outcome{}, errors.Wrapf(err, "run %s", scenarioPath)
	}
	trajectoryLog := gridpath.Log{Robots: []gridpath.Trajectory{outcome.Trajectory}}
	if err := trajectoryLog.WriteFile(outPath); err != nil {
		return Outcome{}, errors.Wrap(err, "write trajectory")
	}
	level.Info(logger).Log("msg", "trajectory saved", "path", outPath)
	return outcome, nil
}
