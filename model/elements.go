package model

import (
	"fmt"
	"math"
	"time"
)

// EarthMu is the standard gravitational parameter for Earth in km^3/s^2.
const EarthMu = 398600.4418

// OrbitalElements are classical Keplerian elements referenced to a time of
// periapsis passage. Angles are radians.
type OrbitalElements struct {
	Eccentricity    float64
	SemiMajorAxisKm float64
	InclinationRad  float64
	RAANRad         float64 // longitude of the ascending node
	ArgPeriapsisRad float64

	PeriapsisEpoch time.Time
	MuKm3S2        float64 // defaults to EarthMu when zero
}

// Validate reports elements that cannot describe a closed orbit.
func (e *OrbitalElements) Validate() error {
	if e == nil {
		return fmt.Errorf("orbital elements are nil")
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"eccentricity", e.Eccentricity},
		{"semi-major axis", e.SemiMajorAxisKm},
		{"inclination", e.InclinationRad},
		{"raan", e.RAANRad},
		{"arg periapsis", e.ArgPeriapsisRad},
		{"mu", e.MuKm3S2},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s is not finite", f.name)
		}
	}
	if e.Eccentricity < 0 || e.Eccentricity >= 1 {
		return fmt.Errorf("eccentricity %v outside [0, 1)", e.Eccentricity)
	}
	if e.SemiMajorAxisKm <= 0 {
		return fmt.Errorf("semi-major axis %v km must be positive", e.SemiMajorAxisKm)
	}
	if e.InclinationRad < 0 || e.InclinationRad > math.Pi {
		return fmt.Errorf("inclination %v rad outside [0, π]", e.InclinationRad)
	}
	if e.MuKm3S2 < 0 {
		return fmt.Errorf("gravitational parameter %v must not be negative", e.MuKm3S2)
	}
	return nil
}

// Mu returns the gravitational parameter, falling back to EarthMu.
func (e *OrbitalElements) Mu() float64 {
	if e.MuKm3S2 == 0 {
		return EarthMu
	}
	return e.MuKm3S2
}

// MeanMotion returns the mean motion in rad/s.
func (e *OrbitalElements) MeanMotion() float64 {
	return math.Sqrt(e.Mu() / math.Pow(e.SemiMajorAxisKm, 3))
}

// Period returns the orbital period.
func (e *OrbitalElements) Period() time.Duration {
	return time.Duration(2 * math.Pi / e.MeanMotion() * float64(time.Second))
}
