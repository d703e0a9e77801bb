package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdrpinto/gridpath"
)

func counterValue(t *testing.T, m *Metrics, name, outcome string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if outcome == "" {
				return metric.GetCounter().GetValue()
			}
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestObserveSearch(t *testing.T) {
	m := New()
	found := gridpath.Result{Path: gridpath.Path{{X: 1}}, Found: true, ExpandedNodes: 2, Cost: 1}
	m.ObserveSearch(found, nil, time.Millisecond)
	m.ObserveSearch(found, nil, time.Millisecond)
	m.ObserveSearch(gridpath.Result{}, nil, time.Millisecond)
	m.ObserveSearch(gridpath.Result{}, &gridpath.ConfigError{Role: "start", Err: gridpath.ErrBlocked}, 0)
	m.ObserveReplayStep()

	if got := counterValue(t, m, "gridpath_search_total", OutcomeFound); got != 2 {
		t.Errorf("found = %v, want 2", got)
	}
	if got := counterValue(t, m, "gridpath_search_total", OutcomeUnreachable); got != 1 {
		t.Errorf("unreachable = %v, want 1", got)
	}
	if got := counterValue(t, m, "gridpath_search_total", OutcomeInvalid); got != 1 {
		t.Errorf("invalid = %v, want 1", got)
	}
	if got := counterValue(t, m, "gridpath_replay_steps_total", ""); got != 1 {
		t.Errorf("replay steps = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveReplayStep()

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(recorder.Body)
	if !strings.Contains(string(body), "gridpath_replay_steps_total 1") {
		t.Fatalf("exposition missing counter:\n%s", body)
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name   string
		result gridpath.Result
		err    error
		want   string
	}{
		{"found", gridpath.Result{Found: true}, nil, OutcomeFound},
		{"unreachable", gridpath.Result{}, nil, OutcomeUnreachable},
		{"blocked endpoint", gridpath.Result{}, &gridpath.ConfigError{Role: "goal", Err: gridpath.ErrBlocked}, OutcomeInvalid},
		{"nil grid", gridpath.Result{}, gridpath.ErrNilGrid, OutcomeInvalid},
		{"invalid size", gridpath.Result{}, fmt.Errorf("scenario 0x3: %w", gridpath.ErrInvalidSize), OutcomeInvalid},
		{"other", gridpath.Result{}, errors.New("disk full"), OutcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Outcome(tt.result, tt.err); got != tt.want {
				t.Fatalf("Outcome = %q, want %q", got, tt.want)
			}
		})
	}
}
