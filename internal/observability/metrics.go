package observability

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PropagationCollector bundles Prometheus metrics for orbit propagation:
// Kepler solver behaviour, per-source position updates and tick latency.
type PropagationCollector struct {
	gatherer prometheus.Gatherer

	SolverIterations  prometheus.Histogram
	SolverUnconverged prometheus.Counter
	PositionUpdates   *prometheus.CounterVec
	TickDuration      prometheus.Histogram
	TrackedPlatforms  prometheus.Gauge
}

// NewPropagationCollector registers propagation metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewPropagationCollector(reg prometheus.Registerer) (*PropagationCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	iterations, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "kepler_solver_iterations",
		Help:    "Iterations taken by the Kepler equation solver per solve.",
		Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10, 15, 25, 50, 100},
	}), "kepler_solver_iterations")
	if err != nil {
		return nil, err
	}

	unconverged, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kepler_solver_unconverged_total",
		Help: "Solves that hit the iteration cap and returned an approximate eccentric anomaly.",
	}), "kepler_solver_unconverged_total")
	if err != nil {
		return nil, err
	}

	updates, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "platform_position_updates_total",
		Help: "Platform position updates, labeled by motion source.",
	}, []string{"source"}), "platform_position_updates_total")
	if err != nil {
		return nil, err
	}

	tick, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "simulation_tick_duration_seconds",
		Help:    "Wall-clock time spent propagating all platforms for one simulation tick.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}), "simulation_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	tracked, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tracked_platforms",
		Help: "Number of platforms registered with the motion service.",
	}), "tracked_platforms")
	if err != nil {
		return nil, err
	}

	return &PropagationCollector{
		gatherer:          gatherer,
		SolverIterations:  iterations,
		SolverUnconverged: unconverged,
		PositionUpdates:   updates,
		TickDuration:      tick,
		TrackedPlatforms:  tracked,
	}, nil
}

// ObserveSolve records one Kepler solve.
func (c *PropagationCollector) ObserveSolve(iterations int, converged bool) {
	if c == nil {
		return
	}
	if c.SolverIterations != nil {
		c.SolverIterations.Observe(float64(iterations))
	}
	if !converged && c.SolverUnconverged != nil {
		c.SolverUnconverged.Inc()
	}
}

// IncPositionUpdate counts a position update for the given motion source.
func (c *PropagationCollector) IncPositionUpdate(source string) {
	if c == nil || c.PositionUpdates == nil {
		return
	}
	c.PositionUpdates.WithLabelValues(source).Inc()
}

// ObserveTick records how long one propagation tick took.
func (c *PropagationCollector) ObserveTick(d time.Duration) {
	if c == nil || c.TickDuration == nil {
		return
	}
	c.TickDuration.Observe(d.Seconds())
}

// SetTrackedPlatforms updates the tracked platform gauge.
func (c *PropagationCollector) SetTrackedPlatforms(n int) {
	if c == nil || c.TrackedPlatforms == nil {
		return
	}
	c.TrackedPlatforms.Set(float64(n))
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *PropagationCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler exposes a ready-to-use /metrics handler.
func (c *PropagationCollector) Handler() http.Handler {
	gatherer := c.Gatherer()
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// register adds collector to reg, returning the already registered instance
// when an identical collector exists.
func register[T prometheus.Collector](reg prometheus.Registerer, collector T, name string) (T, error) {
	if err := reg.Register(collector); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return collector, nil
}
