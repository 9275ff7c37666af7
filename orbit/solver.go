package orbit

import "math"

const (
	// Precision is the convergence threshold on successive eccentric anomaly
	// estimates. It sits just above one ulp of values in (-2π, 2π).
	Precision = 9e-16
	// MaxIterations bounds the solver loop; only e close to 1 with M close
	// to 0 comes near it.
	MaxIterations = 100
	// DampingBound wraps each Newton correction so ill-conditioned steps
	// cannot overshoot.
	DampingBound = 1.4

	twoPi = 2 * math.Pi
)

// Solution is the outcome of a Kepler equation solve.
type Solution struct {
	EccentricAnomaly float64
	// Iterations is the number of loop passes taken, between 1 and MaxIterations.
	Iterations int
	// Converged is false when the iteration cap was hit and EccentricAnomaly
	// is the last estimate rather than a converged root.
	Converged bool
}

// EccentricAnomaly solves Kepler's equation E - e*sin(E) = M (mod 2π) for E.
//
// The mean anomaly is reduced with math.Mod, so negative inputs yield a
// result in (-2π, 0]. The solver never fails: if it does not converge within
// MaxIterations the last estimate is returned.
func EccentricAnomaly(meanAnomaly, eccentricity float64) float64 {
	return SolveKepler(meanAnomaly, eccentricity).EccentricAnomaly
}

// SolveKepler is EccentricAnomaly with iteration diagnostics.
func SolveKepler(meanAnomaly, eccentricity float64) Solution {
	m := math.Mod(meanAnomaly, twoPi)
	E := m

	var next float64
	for i := 1; i <= MaxIterations; i++ {
		next = m + eccentricity*math.Sin(E)
		diff := next - E
		if math.Abs(diff) < Precision {
			return Solution{EccentricAnomaly: next, Iterations: i, Converged: true}
		}

		step := 1 / (1 - eccentricity*math.Cos(E))
		E += math.Mod(step*diff, DampingBound)
	}

	return Solution{EccentricAnomaly: next, Iterations: MaxIterations}
}

// MeanAnomaly is the forward form of Kepler's equation, M = E - e*sin(E).
func MeanAnomaly(eccentricAnomaly, eccentricity float64) float64 {
	return eccentricAnomaly - eccentricity*math.Sin(eccentricAnomaly)
}
