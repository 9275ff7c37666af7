package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/signalsfoundry/orbit-simulator/internal/logging"
	"github.com/signalsfoundry/orbit-simulator/internal/observability"
	"github.com/signalsfoundry/orbit-simulator/model"
	"github.com/signalsfoundry/orbit-simulator/orbit"
)

// PositionUpdater receives propagated platform positions, typically the KB.
type PositionUpdater interface {
	UpdatePlatformPosition(id string, pos model.Motion) error
}

type trackedPlatform struct {
	platform *model.PlatformDefinition
	model    MotionModel
}

// MotionService owns the motion model of every registered platform and
// advances them together on each simulation tick.
type MotionService struct {
	mu        sync.Mutex
	platforms map[string]*trackedPlatform

	// tickMu serializes UpdatePositions so motion models are never driven
	// concurrently. It is taken before mu and never while holding mu.
	tickMu sync.Mutex

	updater   PositionUpdater
	log       logging.Logger
	collector *observability.PropagationCollector
	tracer    trace.Tracer
}

// MotionServiceOption configures a MotionService.
type MotionServiceOption func(*MotionService)

// WithPositionUpdater forwards every propagated position to u.
func WithPositionUpdater(u PositionUpdater) MotionServiceOption {
	return func(s *MotionService) { s.updater = u }
}

// WithLogger sets the service logger. Without it the service logs to the
// logger carried on the tick context.
func WithLogger(l logging.Logger) MotionServiceOption {
	return func(s *MotionService) {
		if l != nil {
			s.log = l
		}
	}
}

// WithCollector records propagation metrics on c.
func WithCollector(c *observability.PropagationCollector) MotionServiceOption {
	return func(s *MotionService) { s.collector = c }
}

// WithTracer emits one span per tick on t.
func WithTracer(t trace.Tracer) MotionServiceOption {
	return func(s *MotionService) {
		if t != nil {
			s.tracer = t
		}
	}
}

// NewMotionService constructs an empty service.
func NewMotionService(opts ...MotionServiceOption) *MotionService {
	s := &MotionService{
		platforms: make(map[string]*trackedPlatform),
		tracer:    noop.NewTracerProvider().Tracer(observability.TracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MotionService) logger(ctx context.Context) logging.Logger {
	if s.log != nil {
		return s.log
	}
	return logging.LoggerFromContext(ctx)
}

// AddPlatform builds a motion model for p and starts tracking it.
func (s *MotionService) AddPlatform(p *model.PlatformDefinition) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("platform must have a non-empty ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.platforms[p.ID]; exists {
		return fmt.Errorf("platform with ID %q already tracked", p.ID)
	}

	id := p.ID
	mm, err := NewMotionModel(p, WithSolveObserver(func(sol orbit.Solution) {
		s.collector.ObserveSolve(sol.Iterations, sol.Converged)
		if !sol.Converged {
			s.logger(context.Background()).Warn(context.Background(), "kepler solver hit iteration cap",
				logging.String("platform_id", id),
				logging.Int("iterations", sol.Iterations),
				logging.Float("eccentric_anomaly", sol.EccentricAnomaly),
			)
		}
	}))
	if err != nil {
		return err
	}

	s.platforms[p.ID] = &trackedPlatform{platform: p, model: mm}
	s.collector.SetTrackedPlatforms(len(s.platforms))
	s.logger(context.Background()).Debug(context.Background(), "tracking platform",
		logging.String("platform_id", p.ID),
		logging.String("motion_source", p.MotionSource.String()),
	)
	return nil
}

// RemovePlatform stops tracking the platform with the given ID.
func (s *MotionService) RemovePlatform(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.platforms[id]; !ok {
		return fmt.Errorf("platform with ID %q not tracked", id)
	}
	delete(s.platforms, id)
	s.collector.SetTrackedPlatforms(len(s.platforms))
	return nil
}

// Len returns the number of tracked platforms.
func (s *MotionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.platforms)
}

// UpdatePositions propagates every tracked platform to simTime in ID order
// and forwards the results to the position updater. The tracked set is
// snapshotted first, so the updater (and anything it notifies) may call back
// into the service. Updater failures are joined and returned after all
// platforms have been processed.
func (s *MotionService) UpdatePositions(ctx context.Context, simTime time.Time) error {
	ctx, span := s.tracer.Start(ctx, "MotionService/UpdatePositions",
		trace.WithAttributes(attribute.String("sim.time", simTime.UTC().Format(time.RFC3339Nano))),
	)
	defer span.End()

	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	start := time.Now()
	log := s.logger(ctx)
	tracked := s.snapshot()

	var errs []error
	for _, tp := range tracked {
		id := tp.platform.ID
		tp.model.UpdatePosition(simTime, tp.platform)
		s.collector.IncPositionUpdate(tp.platform.MotionSource.String())

		if s.updater == nil {
			continue
		}
		if err := s.updater.UpdatePlatformPosition(id, tp.platform.Coordinates); err != nil {
			log.Warn(ctx, "position update rejected", logging.String("platform_id", id), logging.Err(err))
			errs = append(errs, fmt.Errorf("platform %q: %w", id, err))
		}
	}

	s.collector.ObserveTick(time.Since(start))
	span.SetAttributes(attribute.Int("platforms", len(tracked)))

	if err := errors.Join(errs...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "position update failed")
		return err
	}
	return nil
}

// snapshot returns the tracked platforms sorted by ID.
func (s *MotionService) snapshot() []*trackedPlatform {
	s.mu.Lock()
	defer s.mu.Unlock()

	tracked := make([]*trackedPlatform, 0, len(s.platforms))
	for _, tp := range s.platforms {
		tracked = append(tracked, tp)
	}
	sort.Slice(tracked, func(i, j int) bool {
		return tracked[i].platform.ID < tracked[j].platform.ID
	})
	return tracked
}
