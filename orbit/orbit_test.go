package orbit

import (
	"math"
	"sync"
	"testing"
)

func TestNewDerivesSemiMinorAxis(t *testing.T) {
	o := New(0.5, 1.0, 0, 0, 0, 0)
	if math.Abs(o.SemiMinorAxis()-0.8660254037844386) > 1e-12 {
		t.Fatalf("b = %v, want ≈ 0.8660254", o.SemiMinorAxis())
	}
	if o.Eccentricity() != 0.5 || o.SemiMajorAxis() != 1.0 {
		t.Fatalf("elements not stored: e=%v a=%v", o.Eccentricity(), o.SemiMajorAxis())
	}
}

func TestApsides(t *testing.T) {
	o := New(0.5, 1.0, 0, 0, 0, 0)
	if got := o.Periapsis(); got != 0.25 {
		t.Fatalf("Periapsis() = %v, want 0.25", got)
	}
	if got := o.Apoapsis(); got != 0.75 {
		t.Fatalf("Apoapsis() = %v, want 0.75", got)
	}
}

func TestPositionAtPeriapsis(t *testing.T) {
	o := New(0.5, 1.0, 0, 0, 0, 0)
	if got := o.Position(0); !closePoint(got, Point3{X: 0.5}, tol) {
		t.Fatalf("Position(0) = %+v, want (0.5, 0, 0)", got)
	}
	if got := o.PlanePosition(0); got != (Point3{X: 0.5}) {
		t.Fatalf("PlanePosition(0) = %+v, want (0.5, 0, 0)", got)
	}
}

func TestPositionCircularQuarterTurn(t *testing.T) {
	o := New(0, 1.0, 0, 0, 0, 0)
	if got := o.Position(math.Pi / 2); !closePoint(got, Point3{Y: 1}, tol) {
		t.Fatalf("Position(π/2) = %+v, want (0, 1, 0)", got)
	}
}

func TestPositionRotationOrder(t *testing.T) {
	// Periapsis at +X, rotated by ω=π/2 onto +Y, tilted by i=π/2 onto +Z;
	// the node rotation about Z then leaves it there.
	o := New(0, 2.0, math.Pi/2, 1.0, math.Pi/2, 0)
	if got := o.Position(0); !closePoint(got, Point3{Z: 2}, tol) {
		t.Fatalf("Position(0) = %+v, want (0, 0, 2)", got)
	}

	// Swapping ω and Ω moves periapsis somewhere else entirely.
	swapped := New(0, 2.0, math.Pi/2, math.Pi/2, 1.0, 0)
	if got := swapped.Position(0); closePoint(got, Point3{Z: 2}, 1e-6) {
		t.Fatalf("expected swapped angles to change the result, got %+v", got)
	}
}

func TestPositionStaysOnEllipse(t *testing.T) {
	o := New(0.7, 7000, 0.9, 2.1, 4.0, 0)
	for k := 0; k < 64; k++ {
		M := float64(k) * 2 * math.Pi / 64
		E := EccentricAnomaly(M, o.Eccentricity())
		want := o.SemiMajorAxis() * (1 - o.Eccentricity()*math.Cos(E))
		if got := o.Position(M).Norm(); math.Abs(got-want) > 1e-6 {
			t.Fatalf("M=%v: |r| = %v, want %v", M, got, want)
		}
	}
}

func TestEllipseParameterHelpers(t *testing.T) {
	e, a := 0.3, 10.0
	b := SemiMinorAxis(e, a)
	if got := SemiMajorAxis(e, b); math.Abs(got-a) > 1e-12 {
		t.Fatalf("SemiMajorAxis = %v, want %v", got, a)
	}
	if got := Eccentricity(a, b); math.Abs(got-e) > 1e-12 {
		t.Fatalf("Eccentricity = %v, want %v", got, e)
	}
}

func TestEpochIsCarried(t *testing.T) {
	o := New(0.1, 1, 0.2, 0.3, 0.4, 2451545.0)
	if o.EpochOfPeriapsis() != 2451545.0 {
		t.Fatalf("EpochOfPeriapsis() = %v", o.EpochOfPeriapsis())
	}
	if o.Inclination() != 0.2 || o.LongitudeOfAscendingNode() != 0.3 || o.ArgumentOfPeriapsis() != 0.4 {
		t.Fatalf("angles not stored: %+v", o)
	}
}

func TestPositionConcurrentReads(t *testing.T) {
	o := New(0.4, 1, 0.5, 0.6, 0.7, 0)
	want := o.Position(1.234)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if got := o.Position(1.234); got != want {
					t.Errorf("concurrent Position = %+v, want %+v", got, want)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestSolvePositionMatchesPosition(t *testing.T) {
	o := New(0.9, 1, 0.3, 0.2, 0.1, 0)
	p, sol := o.SolvePosition(0.01)
	if p != o.Position(0.01) {
		t.Fatalf("SolvePosition and Position disagree")
	}
	if !sol.Converged || sol.Iterations < 2 {
		t.Fatalf("unexpected solution %+v", sol)
	}
}
