package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/pdrpinto/gridpath"
	"github.com/pdrpinto/gridpath/internal/metrics"
	"github.com/pdrpinto/gridpath/internal/pipeline"
	"github.com/pdrpinto/gridpath/internal/termview"
	"github.com/pdrpinto/gridpath/internal/vizweb"
	"github.com/pdrpinto/gridpath/scenario"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "gridpath: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "gridpath"
	app.Usage = "A* pathfinding and path replay on obstacle grids"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn or error"},
	}
	app.Commands = []cli.Command{
		{
			Name:      "solve",
			Usage:     "search and replay scenarios, writing one trajectory log per scenario",
			ArgsUsage: "SCENARIO...",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "out-dir", Value: ".", Usage: "directory for trajectory logs"},
				cli.IntFlag{Name: "max-ticks", Usage: "cap replay steps; 0 replays the whole path"},
			},
			Action: solve,
		},
		{
			Name:      "batch",
			Usage:     "search many scenarios concurrently and print a summary",
			ArgsUsage: "SCENARIO...",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "workers", Usage: "worker goroutines; 0 uses one per CPU"},
			},
			Action: batch,
		},
		{
			Name:  "schema",
			Usage: "write the scenario JSON schema",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "out", Usage: "path to write the schema; stdout if empty"},
			},
			Action: writeSchema,
		},
		{
			Name:      "view",
			Usage:     "replay a scenario in the terminal",
			ArgsUsage: "SCENARIO",
			Flags: []cli.Flag{
				cli.DurationFlag{Name: "delay", Value: 200 * time.Millisecond, Usage: "time between steps"},
				cli.BoolFlag{Name: "hold", Usage: "keep the final frame until q is pressed"},
			},
			Action: view,
		},
		{
			Name:  "serve",
			Usage: "serve the browser visualiser",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "addr", Value: vizweb.DefaultConfig().Addr},
				cli.DurationFlag{Name: "frame-interval", Value: vizweb.DefaultConfig().FrameInterval},
				cli.Int64Flag{Name: "seed", Usage: "seed for random worlds; 0 uses the clock"},
				cli.StringFlag{Name: "scenario", Usage: "scenario to load at startup"},
			},
			Action: serve,
		},
	}
	return app
}

func newLogger(c *cli.Context) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	return level.NewFilter(logger, levelOption(c.GlobalString("log-level")))
}

func levelOption(name string) level.Option {
	switch strings.ToLower(name) {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// logName maps world_5x5.json to astar_path_world_5x5.json.
func logName(scenarioPath string) string {
	base := strings.TrimSuffix(filepath.Base(scenarioPath), filepath.Ext(scenarioPath))
	return "astar_path_" + base + ".json"
}

func solve(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.NewExitError("solve: at least one scenario is required", 2)
	}
	ctx, cancel := signalContext()
	defer cancel()

	logger := newLogger(c)
	cfg := pipeline.DefaultConfig()
	cfg.MaxTicks = c.Int("max-ticks")
	for _, scenarioPath := range c.Args() {
		outPath := filepath.Join(c.String("out-dir"), logName(scenarioPath))
		if _, err := pipeline.RunFile(ctx, logger, scenarioPath, outPath, cfg); err != nil {
			return err
		}
	}
	return nil
}

func batch(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.NewExitError("batch: at least one scenario is required", 2)
	}
	ctx, cancel := signalContext()
	defer cancel()

	logger := newLogger(c)
	jobs := make([]gridpath.Job, 0, c.NArg())
	for _, scenarioPath := range c.Args() {
		sc, err := scenario.Load(scenarioPath)
		if err != nil {
			return err
		}
		grid, start, goal, err := sc.Build()
		if err != nil {
			return errors.Wrapf(err, "build %s", scenarioPath)
		}
		jobs = append(jobs, gridpath.Job{ID: scenarioPath, Grid: grid, Start: start, Goal: goal, Heuristic: gridpath.Manhattan})
	}

	var options []gridpath.Option
	if workers := c.Int("workers"); workers > 0 {
		options = append(options, gridpath.WithWorkers(workers))
	}
	began := time.Now()
	results := gridpath.SearchAll(ctx, jobs, options...)
	level.Info(logger).Log("msg", "batch finished", "jobs", len(jobs), "elapsed", time.Since(began))

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tOUTCOME\tLENGTH\tEXPANDED")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", r.Job.ID, metrics.Outcome(r.Result, r.Err), len(r.Result.Path), r.Result.ExpandedNodes)
		if r.Err != nil {
			level.Error(logger).Log("msg", "search failed", "scenario", r.Job.ID, "err", r.Err)
		}
	}
	return tw.Flush()
}

func writeSchema(c *cli.Context) error {
	data, err := json.MarshalIndent(scenario.Schema(), "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal schema")
	}
	data = append(data, '\n')

	outPath := c.String("out")
	if outPath == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return errors.Wrap(err, "create schema directory")
	}
	return errors.Wrap(os.WriteFile(outPath, data, 0o644), "write schema")
}

func view(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("view: exactly one scenario is required", 2)
	}
	sc, err := scenario.Load(c.Args().First())
	if err != nil {
		return err
	}
	grid, start, goal, err := sc.Build()
	if err != nil {
		return err
	}
	path, err := gridpath.FindPath(grid, start, goal, gridpath.Manhattan)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "open terminal")
	}
	if err := screen.Init(); err != nil {
		return errors.Wrap(err, "init terminal")
	}
	defer screen.Fini()

	ctx, cancel := signalContext()
	defer cancel()

	replayer := gridpath.NewReplayer(start, path)
	v := termview.New(screen, grid, goal)
	if quit := v.Play(ctx, replayer, c.Duration("delay")); !quit && c.Bool("hold") {
		v.WaitQuit(ctx)
	}
	return nil
}

func serve(c *cli.Context) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg := vizweb.DefaultConfig()
	cfg.Addr = c.String("addr")
	cfg.FrameInterval = c.Duration("frame-interval")
	cfg.Seed = c.Int64("seed")

	logger := newLogger(c)
	server := vizweb.New(cfg, log.With(logger, "component", "vizweb"), metrics.New())
	if scenarioPath := c.String("scenario"); scenarioPath != "" {
		sc, err := scenario.Load(scenarioPath)
		if err != nil {
			return err
		}
		if err := server.Load(sc); err != nil {
			return errors.Wrapf(err, "load %s", scenarioPath)
		}
	}
	return server.Run(ctx)
}
