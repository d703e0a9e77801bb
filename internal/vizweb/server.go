// Package vizweb serves a browser visualisation of the search and replay.
//
// /init builds a scenario (random clustered walls, or a posted scenario
// document), /next advances a Stepper one expansion, /ws streams the replay
// of the found path, and /metrics exposes search metrics.
package vizweb

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/websocket"

	"github.com/pdrpinto/gridpath"
	"github.com/pdrpinto/gridpath/internal/metrics"
	"github.com/pdrpinto/gridpath/scenario"
)

const writeWait = 5 * time.Second

type Config struct {
	Addr string
	// FrameInterval is the pause between replay frames on /ws.
	FrameInterval time.Duration
	// Seed fixes wall generation; zero seeds from the clock.
	Seed int64
}

func DefaultConfig() Config {
	return Config{Addr: ":8080", FrameInterval: 150 * time.Millisecond}
}

// Server holds the current scenario and the stepper driven by /next.
type Server struct {
	cfg     Config
	logger  log.Logger
	metrics *metrics.Metrics
	rng     *rand.Rand

	mu      sync.Mutex
	grid    *gridpath.Grid
	start   gridpath.Cell
	goal    gridpath.Cell
	stepper *gridpath.Stepper

	upgrader websocket.Upgrader
}

// New builds a server. A non-positive FrameInterval falls back to the
// default.
func New(cfg Config, logger log.Logger, m *metrics.Metrics) *Server {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = DefaultConfig().FrameInterval
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if m == nil {
		m = metrics.New()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Server{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		rng:     rand.New(rand.NewSource(seed)),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleStatic)
	mux.HandleFunc("/init", s.handleInit)
	mux.HandleFunc("/next", s.handleNext)
	mux.HandleFunc("/ws", s.handleReplay)
	mux.Handle("/metrics", s.metrics.Handler())
	return mux
}

// Load replaces the current scenario and resets the stepper.
func (s *Server) Load(sc scenario.Scenario) error {
	grid, start, goal, err := sc.Build()
	if err != nil {
		return err
	}
	stepper, err := gridpath.NewStepper(grid, start, goal, gridpath.Manhattan)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.grid, s.start, s.goal, s.stepper = grid, start, goal, stepper
	s.mu.Unlock()
	return nil
}

type snapshot struct {
	Step    int      `json:"step"`
	W       int      `json:"w"`
	H       int      `json:"h"`
	Walls   [][2]int `json:"walls"`
	Open    [][2]int `json:"open,omitempty"`
	Closed  [][2]int `json:"closed,omitempty"`
	Current [2]int   `json:"current"`
	Start   [2]int   `json:"start"`
	Goal    [2]int   `json:"goal"`
	Done    bool     `json:"done"`
	Found   bool     `json:"found"`
	Path    [][2]int `json:"path,omitempty"`
}

// frame is one websocket message of the replay stream.
type frame struct {
	Type       string               `json:"type"`
	Tick       int                  `json:"tick,omitempty"`
	Current    *gridpath.Position   `json:"current,omitempty"`
	Done       bool                 `json:"done,omitempty"`
	Trajectory *gridpath.Trajectory `json:"trajectory,omitempty"`
}

func point(c gridpath.Cell) [2]int { return [2]int{c.X, c.Y} }

func cellsToList(cells []gridpath.Cell) [][2]int {
	res := make([][2]int, 0, len(cells))
	for _, c := range cells {
		res = append(res, point(c))
	}
	return res
}

// setToList flattens a cell set in row-major order.
func setToList(m map[gridpath.Cell]bool) [][2]int {
	cells := make([]gridpath.Cell, 0, len(m))
	for c, ok := range m {
		if ok {
			cells = append(cells, c)
		}
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
	return cellsToList(cells)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	var sc scenario.Scenario
	if r.Method == http.MethodPost {
		decoded, err := scenario.Decode(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		sc = decoded
	} else {
		sc = s.randomScenario(r)
	}
	if err := s.Load(sc); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	level.Info(s.logger).Log("msg", "scenario loaded", "w", sc.Width, "h", sc.Height, "obstacles", len(sc.Obstacles))
	writeJSON(w, map[string]any{"ok": true, "w": sc.Width, "h": sc.Height, "start": sc.Start, "goal": sc.Goal})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stepper == nil {
		http.Error(w, "engine not initialized", http.StatusBadRequest)
		return
	}
	st := s.stepper.Step()
	snap := snapshot{
		Step:    st.StepIndex,
		W:       s.grid.Width(),
		H:       s.grid.Height(),
		Walls:   cellsToList(s.grid.Obstacles()),
		Open:    setToList(st.Open),
		Closed:  setToList(st.Closed),
		Current: point(st.Current),
		Start:   point(s.start),
		Goal:    point(s.goal),
		Done:    st.Done,
		Found:   st.Found,
	}
	if st.Found && len(st.Path) > 0 {
		snap.Path = cellsToList(st.Path)
	}
	writeJSON(w, snap)
}

// handleReplay searches the current scenario and streams one frame per
// replay step, then the trajectory record. Each connection owns its
// Replayer.
func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	grid, start, goal := s.grid, s.start, s.goal
	s.mu.Unlock()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		level.Warn(s.logger).Log("msg", "upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	if grid == nil {
		message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "engine not initialized")
		conn.WriteMessage(websocket.CloseMessage, message)
		return
	}

	began := time.Now()
	result, err := gridpath.Search(grid, start, goal, gridpath.Manhattan)
	s.metrics.ObserveSearch(result, err, time.Since(began))
	if err != nil {
		message := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
		conn.WriteMessage(websocket.CloseMessage, message)
		return
	}

	replayer := gridpath.NewReplayer(start, result.Path)
	ticker := time.NewTicker(s.cfg.FrameInterval)
	defer ticker.Stop()
	for !replayer.Done() {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
		replayer.Step()
		s.metrics.ObserveReplayStep()
		current := replayer.Current()
		msg := frame{
			Type:    "step",
			Tick:    replayer.Steps(),
			Current: &gridpath.Position{X: current.X, Y: current.Y},
			Done:    replayer.Done(),
		}
		if err := s.send(conn, msg); err != nil {
			level.Debug(s.logger).Log("msg", "replay stream closed", "err", err)
			return
		}
	}

	trajectory := replayer.Trajectory()
	if err := s.send(conn, frame{Type: "trajectory", Done: true, Trajectory: &trajectory}); err != nil {
		return
	}
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (s *Server) send(conn *websocket.Conn, msg frame) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// randomScenario reads w, h, clusters, steps and density from the query,
// falling back to defaults, and places start and goal on distinct cells.
func (s *Server) randomScenario(r *http.Request) scenario.Scenario {
	q := r.URL.Query()
	wVal, hVal := 40, 24
	clusters, steps := 8, 200
	density := 0.25
	if v, err := strconv.Atoi(q.Get("w")); err == nil && v > 4 {
		wVal = v
	}
	if v, err := strconv.Atoi(q.Get("h")); err == nil && v > 4 {
		hVal = v
	}
	if v, err := strconv.Atoi(q.Get("clusters")); err == nil && v > 0 {
		clusters = v
	}
	if v, err := strconv.Atoi(q.Get("steps")); err == nil && v > 0 {
		steps = v
	}
	if v, err := strconv.ParseFloat(q.Get("density"), 64); err == nil && v >= 0 && v <= 1 {
		density = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var start, goal gridpath.Cell
	for {
		start = gridpath.Cell{X: s.rng.Intn(wVal), Y: s.rng.Intn(hVal)}
		goal = gridpath.Cell{X: s.rng.Intn(wVal), Y: s.rng.Intn(hVal)}
		if start != goal {
			break
		}
	}
	walls := genWalls(s.rng, wVal, hVal, clusters, steps, density, start, goal)
	sc := scenario.Scenario{
		Width:  wVal,
		Height: hVal,
		Start:  scenario.Coordinate{start.X, start.Y},
		Goal:   scenario.Coordinate{goal.X, goal.Y},
	}
	for _, c := range walls {
		sc.Obstacles = append(sc.Obstacles, scenario.Coordinate{c.X, c.Y})
	}
	return sc
}

// genWalls grows clustered walls by random walks, never covering start or goal.
func genWalls(r *rand.Rand, w, h, clusters, steps int, density float64, start, goal gridpath.Cell) []gridpath.Cell {
	walls := map[gridpath.Cell]bool{}
	dirs := []gridpath.Cell{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}
	for c := 0; c < clusters; c++ {
		p := gridpath.Cell{X: r.Intn(w), Y: r.Intn(h)}
		for i := 0; i < steps; i++ {
			if r.Float64() < density && p != start && p != goal {
				walls[p] = true
			}
			d := dirs[r.Intn(len(dirs))]
			np := gridpath.Cell{X: p.X + d.X, Y: p.Y + d.Y}
			if np.X >= 0 && np.X < w && np.Y >= 0 && np.Y < h {
				p = np
			}
		}
	}
	cells := make([]gridpath.Cell, 0, len(walls))
	for _, p := range setToList(walls) {
		cells = append(cells, gridpath.Cell{X: p[0], Y: p[1]})
	}
	return cells
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() {
		level.Info(s.logger).Log("msg", "serving", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
