// Package stats provides a running accumulator for scalar samples.
package stats

import "math"

// Stat accumulates a total, a sample count and the extremes seen so far.
// It is not safe for concurrent use.
type Stat struct {
	Total float64
	Count uint64
	Max   float64
	Min   float64
}

// New returns an empty accumulator whose extremes are primed so that the
// first entry replaces both.
func New() Stat {
	return Stat{Max: -math.MaxFloat64, Min: math.MaxFloat64}
}

// Entry records a single sample.
func (s *Stat) Entry(val float64) {
	s.EntryN(val, 1)
}

// EntryN adds val to the total once while counting n samples. It is meant
// for callers that have already summed a batch of n samples into val.
func (s *Stat) EntryN(val float64, n uint64) {
	s.Total += val
	s.Count += n
	if val > s.Max {
		s.Max = val
	}
	if val < s.Min {
		s.Min = val
	}
}

// Mean returns Total / Count. It is NaN for an empty accumulator.
func (s Stat) Mean() float64 {
	return s.Total / float64(s.Count)
}

// Merge folds other into s.
func (s *Stat) Merge(other Stat) {
	if other.Count == 0 {
		return
	}
	s.Total += other.Total
	s.Count += other.Count
	s.Max = math.Max(s.Max, other.Max)
	s.Min = math.Min(s.Min, other.Min)
}
