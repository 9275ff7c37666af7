package core

import (
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"

	"github.com/signalsfoundry/orbit-simulator/model"
	"github.com/signalsfoundry/orbit-simulator/orbit"
)

const (
	kmToM      = 1000.0
	secondsDay = 86400.0
)

// MotionModel updates a platform's position for a given simulation time.
type MotionModel interface {
	UpdatePosition(simTime time.Time, p *model.PlatformDefinition)
}

// StaticMotionModel leaves the platform's position unchanged.
type StaticMotionModel struct{}

// UpdatePosition for static motion does nothing.
func (m *StaticMotionModel) UpdatePosition(simTime time.Time, p *model.PlatformDefinition) {
	// no-op
}

// OrbitalSGP4MotionModel uses a TLE and SGP4 to update platform position.
type OrbitalSGP4MotionModel struct {
	sat satellite.Satellite
}

// NewOrbitalModelFromTLE constructs an orbital model from TLE lines.
// The lines are checked first because go-satellite exits the process on
// malformed input.
func NewOrbitalModelFromTLE(line1, line2 string) (*OrbitalSGP4MotionModel, error) {
	if err := validateTLELines(line1, line2); err != nil {
		return nil, err
	}
	sat := satellite.TLEToSat(strings.TrimSpace(line1), strings.TrimSpace(line2), satellite.GravityWGS72)
	if sat.Error != 0 {
		return nil, fmt.Errorf("sgp4 init failed: code=%d %s", sat.Error, sat.ErrorStr)
	}
	return &OrbitalSGP4MotionModel{sat: sat}, nil
}

// UpdatePosition propagates the satellite to the given simulation time and updates p.Coordinates.
// go-satellite works in kilometres; we store metres in the model. A failed
// propagation (NaN or Inf output) leaves the coordinates untouched.
func (m *OrbitalSGP4MotionModel) UpdatePosition(simTime time.Time, p *model.PlatformDefinition) {
	simTime = simTime.UTC()
	year, month, day := simTime.Date()
	hour, min, sec := simTime.Clock()

	posECI, _ := satellite.Propagate(m.sat, year, int(month), day, hour, min, sec)
	if !finite(posECI.X, posECI.Y, posECI.Z) {
		return
	}
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	posECEF := satellite.ECIToECEF(posECI, gmst)

	p.Coordinates = model.Motion{
		X: posECEF.X * kmToM,
		Y: posECEF.Y * kmToM,
		Z: posECEF.Z * kmToM,
	}
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func validateTLELines(line1, line2 string) error {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	if len(line1) != 69 {
		return fmt.Errorf("tle line1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("tle line2 length %d, expected 69", len(line2))
	}
	if line1[0] != '1' || line2[0] != '2' {
		return fmt.Errorf("tle lines must start with '1' and '2'")
	}
	return nil
}

// KeplerianMotionModel propagates a two-body orbit. The orbit's epoch of
// periapsis is held as a Julian date so mean anomaly follows directly from
// the simulation time.
type KeplerianMotionModel struct {
	orbit      orbit.Orbit
	meanMotion float64 // rad/s
	onSolve    func(orbit.Solution)
}

// KeplerianOption configures a KeplerianMotionModel.
type KeplerianOption func(*KeplerianMotionModel)

// WithSolveObserver registers fn to receive the diagnostics of every solve.
func WithSolveObserver(fn func(orbit.Solution)) KeplerianOption {
	return func(m *KeplerianMotionModel) {
		m.onSolve = fn
	}
}

// NewKeplerianMotionModel validates el and builds a model from it.
func NewKeplerianMotionModel(el *model.OrbitalElements, opts ...KeplerianOption) (*KeplerianMotionModel, error) {
	if err := el.Validate(); err != nil {
		return nil, fmt.Errorf("invalid orbital elements: %w", err)
	}
	m := &KeplerianMotionModel{
		orbit: orbit.New(
			el.Eccentricity,
			el.SemiMajorAxisKm,
			el.InclinationRad,
			el.RAANRad,
			el.ArgPeriapsisRad,
			julian.TimeToJD(el.PeriapsisEpoch.UTC()),
		),
		meanMotion: el.MeanMotion(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Orbit returns the underlying orbit.
func (m *KeplerianMotionModel) Orbit() orbit.Orbit {
	return m.orbit
}

// MeanAnomalyAt returns the unreduced mean anomaly at t.
func (m *KeplerianMotionModel) MeanAnomalyAt(t time.Time) float64 {
	days := julian.TimeToJD(t.UTC()) - m.orbit.EpochOfPeriapsis()
	return m.meanMotion * days * secondsDay
}

// InertialPosition returns the position at t in the inertial frame of the
// orbital elements, in kilometres.
func (m *KeplerianMotionModel) InertialPosition(t time.Time) (orbit.Point3, orbit.Solution) {
	return m.orbit.SolvePosition(m.MeanAnomalyAt(t))
}

// UpdatePosition rotates the inertial position by Greenwich mean sidereal
// time into the Earth-fixed frame and stores it in metres.
func (m *KeplerianMotionModel) UpdatePosition(simTime time.Time, p *model.PlatformDefinition) {
	eci, sol := m.InertialPosition(simTime)
	if m.onSolve != nil {
		m.onSolve(sol)
	}

	gmst := sidereal.Mean(julian.TimeToJD(simTime.UTC())).Angle().Rad()
	ecef := orbit.RotateZ(eci, -gmst).Scale(kmToM)
	p.Coordinates = model.Motion{X: ecef.X, Y: ecef.Y, Z: ecef.Z}
}

// NewMotionModel chooses an appropriate MotionModel for the platform.
func NewMotionModel(p *model.PlatformDefinition, opts ...KeplerianOption) (MotionModel, error) {
	switch p.MotionSource {
	case model.MotionSourceSpacetrack:
		if p.TLE1 == "" || p.TLE2 == "" {
			return nil, fmt.Errorf("platform %q: spacetrack motion requires TLE lines", p.ID)
		}
		m, err := NewOrbitalModelFromTLE(p.TLE1, p.TLE2)
		if err != nil {
			return nil, fmt.Errorf("platform %q: %w", p.ID, err)
		}
		return m, nil
	case model.MotionSourceKeplerian:
		m, err := NewKeplerianMotionModel(p.Elements, opts...)
		if err != nil {
			return nil, fmt.Errorf("platform %q: %w", p.ID, err)
		}
		return m, nil
	default:
		return &StaticMotionModel{}, nil
	}
}
