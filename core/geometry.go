package core

import (
	"math"

	"github.com/signalsfoundry/orbit-simulator/model"
)

// EarthRadiusKm is the mean Earth radius used for visibility checks.
const EarthRadiusKm = 6371.0

// Vec3 is an ECEF-style vector in kilometres.
type Vec3 struct {
	X, Y, Z float64
}

// VecFromMotion converts a platform position in metres to kilometres.
func VecFromMotion(m model.Motion) Vec3 {
	return Vec3{X: m.X / kmToM, Y: m.Y / kmToM, Z: m.Z / kmToM}
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec3) DistanceTo(other Vec3) float64 {
	return v.Sub(other).Norm()
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// HasLineOfSight reports whether the segment between p1 and p2 clears the
// Earth sphere.
func HasLineOfSight(p1, p2 Vec3) bool {
	v := p2.Sub(p1)
	a := v.Dot(v)
	if a == 0 {
		return p1.Dot(p1) > EarthRadiusKm*EarthRadiusKm
	}

	// closest approach of p1 + t*v to the origin, t clamped to the segment
	t := math.Max(0, math.Min(1, -p1.Dot(v)/a))
	closest := Vec3{
		X: p1.X + v.X*t,
		Y: p1.Y + v.Y*t,
		Z: p1.Z + v.Z*t,
	}
	return closest.Dot(closest) > EarthRadiusKm*EarthRadiusKm
}

// ElevationDegrees returns the elevation angle of the target as seen from
// the observer, in degrees. 0° = geometric horizon, 90° = overhead.
func ElevationDegrees(observer, target Vec3) float64 {
	v := target.Sub(observer)
	vNorm := v.Norm()
	r := observer.Norm()
	if vNorm == 0 || r == 0 {
		return 90
	}

	cosGamma := v.Dot(observer) / (vNorm * r)
	cosGamma = math.Max(-1, math.Min(1, cosGamma))
	return 90.0 - math.Acos(cosGamma)*180.0/math.Pi
}
