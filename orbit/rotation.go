// Package orbit computes positions on Keplerian orbits and provides the axis
// rotations used to carry them from the orbital plane into a reference frame.
package orbit

import "math"

// Point3 is a position in 3D Cartesian space.
type Point3 struct {
	X, Y, Z float64
}

// RotateX rotates p about the X axis by angle radians (right-handed).
func RotateX(p Point3, angle float64) Point3 {
	r := math.Hypot(p.Y, p.Z)
	theta := math.Atan2(p.Z, p.Y) + angle
	return Point3{X: p.X, Y: r * math.Cos(theta), Z: r * math.Sin(theta)}
}

// RotateY rotates p about the Y axis by angle radians (right-handed).
func RotateY(p Point3, angle float64) Point3 {
	r := math.Hypot(p.X, p.Z)
	theta := math.Atan2(p.X, p.Z) + angle
	return Point3{X: r * math.Sin(theta), Y: p.Y, Z: r * math.Cos(theta)}
}

// RotateZ rotates p about the Z axis by angle radians (right-handed).
func RotateZ(p Point3, angle float64) Point3 {
	r := math.Hypot(p.X, p.Y)
	theta := math.Atan2(p.Y, p.X) + angle
	return Point3{X: r * math.Cos(theta), Y: r * math.Sin(theta), Z: p.Z}
}

// Norm returns the distance of p from the origin.
func (p Point3) Norm() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// Scale returns p with every coordinate multiplied by s.
func (p Point3) Scale(s float64) Point3 {
	return Point3{X: p.X * s, Y: p.Y * s, Z: p.Z * s}
}
