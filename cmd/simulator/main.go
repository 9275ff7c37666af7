package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/signalsfoundry/orbit-simulator/core"
	"github.com/signalsfoundry/orbit-simulator/internal/logging"
	"github.com/signalsfoundry/orbit-simulator/internal/observability"
	"github.com/signalsfoundry/orbit-simulator/kb"
	"github.com/signalsfoundry/orbit-simulator/model"
	"github.com/signalsfoundry/orbit-simulator/stats"
	"github.com/signalsfoundry/orbit-simulator/timectrl"
)

type config struct {
	scenarioPath string
	duration     time.Duration
	tick         time.Duration
	accelerated  bool
	start        time.Time
	metricsAddr  string
}

func main() {
	var cfg config
	var startRaw string
	flag.StringVar(&cfg.scenarioPath, "scenario", "", "path to a JSON scenario file (built-in demo when empty)")
	flag.DurationVar(&cfg.duration, "duration", 90*time.Minute, "total simulation duration")
	flag.DurationVar(&cfg.tick, "tick", 30*time.Second, "tick interval")
	flag.BoolVar(&cfg.accelerated, "accelerated", true, "run in accelerated mode (vs real-time)")
	flag.StringVar(&startRaw, "start", "", "simulation start time, RFC3339 (defaults to now)")
	flag.StringVar(&cfg.metricsAddr, "metrics-addr", "", "HTTP address for Prometheus /metrics (disabled when empty)")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx, runID := logging.EnsureRunID(context.Background())
	log = log.With(logging.String("run_id", runID))

	cfg.start = time.Now().UTC()
	if startRaw != "" {
		start, err := time.Parse(time.RFC3339, startRaw)
		if err != nil {
			log.Error(ctx, "invalid -start", logging.String("value", startRaw), logging.Err(err))
			os.Exit(2)
		}
		cfg.start = start.UTC()
	}

	tracingCfg := observability.TracingConfigFromEnv()
	tracingCfg.Scenario = cfg.scenarioPath
	shutdownTracing, err := observability.InitTracing(ctx, tracingCfg, log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, prometheus.DefaultRegisterer, log, os.Stdout); err != nil {
		log.Error(ctx, "simulation failed", logging.Err(err))
		os.Exit(1)
	}
}

// run wires the KB, motion service and time controller and blocks until the
// simulation finishes or ctx is cancelled. A per-platform summary is written
// to out at the end.
func run(ctx context.Context, cfg config, reg prometheus.Registerer, log logging.Logger, out io.Writer) error {
	if cfg.tick <= 0 {
		return fmt.Errorf("tick must be positive, got %s", cfg.tick)
	}
	ctx = logging.ContextWithLogger(ctx, log)

	collector, err := observability.NewPropagationCollector(reg)
	if err != nil {
		return fmt.Errorf("metrics collector: %w", err)
	}
	if cfg.metricsAddr != "" {
		srv := serveMetrics(cfg.metricsAddr, collector, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	scenario, err := loadScenario(cfg.scenarioPath)
	if err != nil {
		return err
	}

	store := kb.NewKnowledgeBase()
	motion := core.NewMotionService(
		core.WithPositionUpdater(store),
		core.WithLogger(log),
		core.WithCollector(collector),
		core.WithTracer(observability.Tracer()),
	)
	if err := scenario.Register(store, motion); err != nil {
		return fmt.Errorf("register scenario: %w", err)
	}
	log.Info(ctx, "loaded scenario", logging.Int("platforms", len(scenario.Platforms)))

	mode := timectrl.RealTime
	if cfg.accelerated {
		mode = timectrl.Accelerated
	}
	tc := timectrl.NewTimeController(cfg.start, cfg.tick, mode)

	var tickErr error
	tc.AddListener(func(simTime time.Time) {
		if err := motion.UpdatePositions(ctx, simTime); err != nil && tickErr == nil {
			tickErr = err
		}
		logVisibility(ctx, store, simTime)
	})

	log.Info(ctx, "starting simulation",
		logging.String("duration", cfg.duration.String()),
		logging.String("tick", cfg.tick.String()),
		logging.String("mode", mode.String()),
	)

	// The controller goroutine is left running on interrupt; the process
	// exits right after.
	finished := endOfRun(tc, cfg.duration)
	done := tc.Start(cfg.duration)
	select {
	case simEnd := <-finished:
		<-done
		if tickErr != nil {
			return tickErr
		}
		log.Info(ctx, "simulation complete", logging.String("sim_time", simEnd.Format(time.RFC3339)))
	case <-ctx.Done():
		log.Info(ctx, "interrupted", logging.String("sim_time", tc.Now().Format(time.RFC3339)))
	}
	return writeSummary(out, store)
}

// endOfRun returns a channel that receives the simulation time once the
// last tick of a run of length d has been processed. A non-positive d runs
// until interrupted, so the channel never fires.
func endOfRun(clock timectrl.SimClock, d time.Duration) <-chan time.Time {
	if d <= 0 {
		return nil
	}
	return clock.After(d)
}

func loadScenario(path string) (*core.Scenario, error) {
	if path == "" {
		return core.LoadScenario(strings.NewReader(defaultScenario))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario %q: %w", path, err)
	}
	defer f.Close()
	return core.LoadScenario(f)
}

// logVisibility reports, for every ground station, which satellites are above
// its horizon.
func logVisibility(ctx context.Context, store *kb.KnowledgeBase, simTime time.Time) {
	log := logging.LoggerFromContext(ctx)
	var ground, sats []model.PlatformDefinition
	for _, p := range store.ListPlatforms() {
		if p.MotionSource == model.MotionSourceUnknown {
			ground = append(ground, *p)
		} else {
			sats = append(sats, *p)
		}
	}

	for _, gs := range ground {
		gsPos := core.VecFromMotion(gs.Coordinates)
		for _, sat := range sats {
			satPos := core.VecFromMotion(sat.Coordinates)
			elev := core.ElevationDegrees(gsPos, satPos)
			if elev < 0 || !core.HasLineOfSight(gsPos, satPos) {
				continue
			}
			log.Info(ctx, "satellite visible",
				logging.String("sim_time", simTime.Format(time.RFC3339)),
				logging.String("ground_station", gs.ID),
				logging.String("satellite", sat.ID),
				logging.Float("elevation_deg", elev),
				logging.Float("range_km", gsPos.DistanceTo(satPos)),
			)
		}
	}
}

// writeSummary prints the radius statistics of every platform followed by
// one merged line per motion source.
func writeSummary(out io.Writer, store *kb.KnowledgeBase) error {
	platforms := store.ListPlatforms()
	sort.Slice(platforms, func(i, j int) bool { return platforms[i].ID < platforms[j].ID })

	var errs []error
	totals := make(map[string]*stats.Stat)
	members := make(map[string]int)
	for _, p := range platforms {
		s, ok := store.PositionStats(p.ID)
		if !ok || s.Count == 0 {
			continue
		}
		_, err := fmt.Fprintf(out, "%-10s %-9s samples=%-5d radius_km min=%9.1f mean=%9.1f max=%9.1f\n",
			p.ID, p.MotionSource, s.Count, s.Min/1000, s.Mean()/1000, s.Max/1000)
		errs = append(errs, err)

		source := p.MotionSource.String()
		if totals[source] == nil {
			total := stats.New()
			totals[source] = &total
		}
		totals[source].Merge(s)
		members[source]++
	}

	sources := make([]string, 0, len(totals))
	for source := range totals {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	for _, source := range sources {
		s := totals[source]
		_, err := fmt.Fprintf(out, "total      %-9s platforms=%d samples=%-5d radius_km min=%9.1f mean=%9.1f max=%9.1f\n",
			source, members[source], s.Count, s.Min/1000, s.Mean()/1000, s.Max/1000)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func serveMetrics(addr string, collector *observability.PropagationCollector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
