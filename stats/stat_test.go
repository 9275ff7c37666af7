package stats

import (
	"math"
	"testing"
)

func TestNewIsEmpty(t *testing.T) {
	s := New()
	if s.Count != 0 || s.Total != 0 {
		t.Fatalf("New() = %+v, want zero total and count", s)
	}
	if !math.IsNaN(s.Mean()) {
		t.Fatalf("Mean() of empty stat = %v, want NaN", s.Mean())
	}
}

func TestEntryTracksExtremesAndMean(t *testing.T) {
	s := New()
	for _, v := range []float64{4, -2, 10, 0} {
		s.Entry(v)
	}
	if s.Count != 4 || s.Total != 12 {
		t.Fatalf("count=%d total=%v, want 4 and 12", s.Count, s.Total)
	}
	if s.Max != 10 || s.Min != -2 {
		t.Fatalf("max=%v min=%v, want 10 and -2", s.Max, s.Min)
	}
	if s.Mean() != 3 {
		t.Fatalf("Mean() = %v, want 3", s.Mean())
	}
}

func TestFirstEntrySetsBothExtremes(t *testing.T) {
	s := New()
	s.Entry(-5)
	if s.Max != -5 || s.Min != -5 {
		t.Fatalf("max=%v min=%v after single entry, want -5 for both", s.Max, s.Min)
	}
}

func TestEntryNCountsBatch(t *testing.T) {
	s := New()
	s.EntryN(30, 10)
	s.Entry(5)
	if s.Count != 11 {
		t.Fatalf("Count = %d, want 11", s.Count)
	}
	if s.Mean() != 35.0/11 {
		t.Fatalf("Mean() = %v, want %v", s.Mean(), 35.0/11)
	}
}

func TestMerge(t *testing.T) {
	a := New()
	a.Entry(1)
	a.Entry(3)
	b := New()
	b.Entry(-7)

	a.Merge(b)
	if a.Count != 3 || a.Total != -3 || a.Min != -7 || a.Max != 3 {
		t.Fatalf("merged = %+v", a)
	}

	before := a
	a.Merge(New())
	if a != before {
		t.Fatalf("merging an empty stat changed %+v to %+v", before, a)
	}
}
