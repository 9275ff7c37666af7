package orbit

import (
	"math"
	"testing"
)

const tol = 1e-12

func closePoint(a, b Point3, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
}

func TestRotateZeroAngleIsIdentity(t *testing.T) {
	points := []Point3{
		{},
		{X: 1, Y: 2, Z: 3},
		{X: -4.5, Y: 0, Z: 7.25},
		{X: 0, Y: -1e-9, Z: 1e9},
	}
	for _, p := range points {
		if got := RotateX(p, 0); !closePoint(got, p, tol*math.Max(1, p.Norm())) {
			t.Fatalf("RotateX(%+v, 0) = %+v", p, got)
		}
		if got := RotateY(p, 0); !closePoint(got, p, tol*math.Max(1, p.Norm())) {
			t.Fatalf("RotateY(%+v, 0) = %+v", p, got)
		}
		if got := RotateZ(p, 0); !closePoint(got, p, tol*math.Max(1, p.Norm())) {
			t.Fatalf("RotateZ(%+v, 0) = %+v", p, got)
		}
	}
}

func TestRotateRightHanded(t *testing.T) {
	quarter := math.Pi / 2

	// +Y -> +Z about X, +Z -> +X about Y, +X -> +Y about Z.
	if got := RotateX(Point3{Y: 1}, quarter); !closePoint(got, Point3{Z: 1}, tol) {
		t.Fatalf("RotateX(+Y, π/2) = %+v, want +Z", got)
	}
	if got := RotateY(Point3{Z: 1}, quarter); !closePoint(got, Point3{X: 1}, tol) {
		t.Fatalf("RotateY(+Z, π/2) = %+v, want +X", got)
	}
	if got := RotateZ(Point3{X: 1}, quarter); !closePoint(got, Point3{Y: 1}, tol) {
		t.Fatalf("RotateZ(+X, π/2) = %+v, want +Y", got)
	}
}

func TestRotateLeavesAxisCoordinate(t *testing.T) {
	p := Point3{X: 3, Y: -2, Z: 5}
	if got := RotateX(p, 1.1); got.X != p.X {
		t.Fatalf("RotateX changed X: %v -> %v", p.X, got.X)
	}
	if got := RotateY(p, 1.1); got.Y != p.Y {
		t.Fatalf("RotateY changed Y: %v -> %v", p.Y, got.Y)
	}
	if got := RotateZ(p, 1.1); got.Z != p.Z {
		t.Fatalf("RotateZ changed Z: %v -> %v", p.Z, got.Z)
	}
}

func TestRotateZComposes(t *testing.T) {
	p := Point3{X: 1.5, Y: -0.25, Z: 2}
	angles := []float64{0, 0.3, -1.2, math.Pi, 7.5, -20}
	for _, a := range angles {
		for _, b := range angles {
			twice := RotateZ(RotateZ(p, a), b)
			once := RotateZ(p, a+b)
			if !closePoint(twice, once, 1e-9) {
				t.Fatalf("RotateZ(RotateZ(p, %v), %v) = %+v, want %+v", a, b, twice, once)
			}
		}
	}
}

func TestRotatePreservesRadius(t *testing.T) {
	p := Point3{X: 7000, Y: -120, Z: 3300}
	for _, angle := range []float64{0.1, 2, -3, 100} {
		for name, rot := range map[string]func(Point3, float64) Point3{
			"x": RotateX, "y": RotateY, "z": RotateZ,
		} {
			got := rot(p, angle)
			if math.Abs(got.Norm()-p.Norm()) > 1e-9 {
				t.Fatalf("rotate %s by %v changed norm: %v -> %v", name, angle, p.Norm(), got.Norm())
			}
		}
	}
}

func TestRotateFullTurn(t *testing.T) {
	p := Point3{X: 1, Y: 2, Z: 3}
	if got := RotateY(p, 2*math.Pi); !closePoint(got, p, 1e-12*10) {
		t.Fatalf("RotateY by 2π = %+v, want %+v", got, p)
	}
}
