package orbit

import "math"

// Orbit is a set of classical orbital elements. The semi-minor axis is
// derived once in New; there are no setters, so a value is safe to share
// between goroutines.
type Orbit struct {
	e float64 // eccentricity, [0, 1)
	a float64 // semi-major axis
	b float64 // semi-minor axis, a*sqrt(1-e²)

	i float64 // inclination, [0, π]
	o float64 // longitude of the ascending node, [0, 2π)
	w float64 // argument of periapsis, [0, 2π)

	t0 float64 // epoch of periapsis passage
}

// New builds an Orbit from eccentricity e, semi-major axis a, inclination i,
// longitude of the ascending node o, argument of periapsis w and the epoch of
// periapsis passage t0. Angles are in radians.
func New(e, a, i, o, w, t0 float64) Orbit {
	return Orbit{
		e:  e,
		a:  a,
		b:  SemiMinorAxis(e, a),
		i:  i,
		o:  o,
		w:  w,
		t0: t0,
	}
}

func (o Orbit) Eccentricity() float64             { return o.e }
func (o Orbit) SemiMajorAxis() float64            { return o.a }
func (o Orbit) SemiMinorAxis() float64            { return o.b }
func (o Orbit) Inclination() float64              { return o.i }
func (o Orbit) LongitudeOfAscendingNode() float64 { return o.o }
func (o Orbit) ArgumentOfPeriapsis() float64      { return o.w }

// EpochOfPeriapsis is carried for callers that map absolute time to mean
// anomaly; Position does not read it.
func (o Orbit) EpochOfPeriapsis() float64 { return o.t0 }

// Position returns the reference-frame position at the given mean anomaly.
func (o Orbit) Position(meanAnomaly float64) Point3 {
	p, _ := o.SolvePosition(meanAnomaly)
	return p
}

// SolvePosition is Position that also returns the solver diagnostics.
func (o Orbit) SolvePosition(meanAnomaly float64) (Point3, Solution) {
	sol := SolveKepler(meanAnomaly, o.e)
	p := o.PlanePosition(sol.EccentricAnomaly)
	p = RotateZ(p, o.w) // argument of periapsis
	p = RotateX(p, o.i) // inclination
	p = RotateZ(p, o.o) // longitude of the ascending node
	return p, sol
}

// PlanePosition returns the position for eccentric anomaly E in the orbital
// plane, with periapsis along +X and the orbit normal along +Z.
func (o Orbit) PlanePosition(eccentricAnomaly float64) Point3 {
	return Point3{
		X: o.a * (math.Cos(eccentricAnomaly) - o.e),
		Y: o.b * math.Sin(eccentricAnomaly),
	}
}

// Periapsis returns (a - a*e) / 2.
func (o Orbit) Periapsis() float64 {
	return (o.a - o.a*o.e) / 2
}

// Apoapsis returns a - Periapsis().
func (o Orbit) Apoapsis() float64 {
	return o.a - o.Periapsis()
}

// SemiMinorAxis derives b from eccentricity and semi-major axis.
func SemiMinorAxis(e, a float64) float64 {
	return a * math.Sqrt(1-e*e)
}

// SemiMajorAxis derives a from eccentricity and semi-minor axis.
func SemiMajorAxis(e, b float64) float64 {
	return b * math.Sqrt(1/(1-e*e))
}

// Eccentricity derives e from the semi-major and semi-minor axes.
func Eccentricity(a, b float64) float64 {
	return math.Sqrt(1 - (b*b)/(a*a))
}
