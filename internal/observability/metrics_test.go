package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveSolveRecordsIterationsAndMisses(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewPropagationCollector(reg)
	if err != nil {
		t.Fatalf("NewPropagationCollector: %v", err)
	}

	collector.ObserveSolve(4, true)
	collector.ObserveSolve(100, false)

	if count := histogramSampleCount(t, reg, "kepler_solver_iterations"); count != 2 {
		t.Fatalf("kepler_solver_iterations sample_count = %d, want 2", count)
	}
	if got := testutil.ToFloat64(collector.SolverUnconverged); got != 1 {
		t.Fatalf("kepler_solver_unconverged_total = %v, want 1", got)
	}
}

func TestPositionUpdatesLabeledBySource(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewPropagationCollector(reg)
	if err != nil {
		t.Fatalf("NewPropagationCollector: %v", err)
	}

	collector.IncPositionUpdate("keplerian")
	collector.IncPositionUpdate("keplerian")
	collector.IncPositionUpdate("sgp4")

	if got := testutil.ToFloat64(collector.PositionUpdates.WithLabelValues("keplerian")); got != 2 {
		t.Fatalf("keplerian updates = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.PositionUpdates.WithLabelValues("sgp4")); got != 1 {
		t.Fatalf("sgp4 updates = %v, want 1", got)
	}
}

func TestRegisteringTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPropagationCollector(reg)
	if err != nil {
		t.Fatalf("first NewPropagationCollector: %v", err)
	}
	second, err := NewPropagationCollector(reg)
	if err != nil {
		t.Fatalf("second NewPropagationCollector: %v", err)
	}

	first.SetTrackedPlatforms(3)
	if got := testutil.ToFloat64(second.TrackedPlatforms); got != 3 {
		t.Fatalf("tracked_platforms via second collector = %v, want 3", got)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *PropagationCollector
	c.ObserveSolve(1, true)
	c.IncPositionUpdate("static")
	c.ObserveTick(time.Millisecond)
	c.SetTrackedPlatforms(1)
	if c.Gatherer() != nil {
		t.Fatalf("expected nil gatherer from nil collector")
	}
}

func TestMetricsHandlerExposesPropagationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewPropagationCollector(reg)
	if err != nil {
		t.Fatalf("NewPropagationCollector: %v", err)
	}
	collector.ObserveSolve(3, true)
	collector.IncPositionUpdate("keplerian")
	collector.ObserveTick(2 * time.Millisecond)
	collector.SetTrackedPlatforms(7)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"kepler_solver_iterations",
		"kepler_solver_unconverged_total",
		"platform_position_updates_total",
		"simulation_tick_duration_seconds",
		"tracked_platforms 7",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if h := histogramOf(m); h != nil {
				return h.GetSampleCount()
			}
		}
	}
	return 0
}

func histogramOf(m *dto.Metric) *dto.Histogram {
	if m == nil {
		return nil
	}
	return m.GetHistogram()
}
