package timectrl

import (
	"sync"
	"time"
)

// SimClock gives components access to simulation time without depending
// on the concrete controller.
type SimClock interface {
	// Now returns the current simulation time.
	Now() time.Time
	// After returns a channel that receives the simulation time once d of
	// simulation time has elapsed.
	After(d time.Duration) <-chan time.Time
}

// Mode describes how the TimeController advances simulation time.
type Mode int

const (
	// RealTime advances according to wall-clock time.
	RealTime Mode = iota
	// Accelerated advances as quickly as the loop can run while still stepping by Tick.
	Accelerated
)

func (m Mode) String() string {
	if m == Accelerated {
		return "accelerated"
	}
	return "realtime"
}

type timer struct {
	at time.Time
	ch chan time.Time
}

// TimeController drives simulation time and notifies registered listeners.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	currentTime time.Time
	listeners   []func(time.Time)
	timers      []timer
}

// NewTimeController constructs a controller.
func NewTimeController(start time.Time, tick time.Duration, mode Mode) *TimeController {
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		currentTime: start,
	}
}

// Now returns the current simulation time.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// After returns a channel that receives the simulation time once d of
// simulation time has elapsed. A timer fires after the listeners for the
// tick that reached it have returned. A non-positive d fires immediately.
func (tc *TimeController) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)

	tc.mu.Lock()
	defer tc.mu.Unlock()
	if d <= 0 {
		ch <- tc.currentTime
		return ch
	}
	tc.timers = append(tc.timers, timer{at: tc.currentTime.Add(d), ch: ch})
	return ch
}

// AddListener registers a callback invoked on every tick.
func (tc *TimeController) AddListener(fn func(time.Time)) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.listeners = append(tc.listeners, fn)
}

// Start runs the controller for the specified duration in a separate goroutine.
// A non-positive duration runs forever. It returns a channel that is closed
// when the controller finishes.
func (tc *TimeController) Start(duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		tc.mu.Lock()
		simTime := tc.StartTime
		tc.currentTime = simTime
		tc.mu.Unlock()

		var tick <-chan time.Time
		if tc.Mode == RealTime {
			ticker := time.NewTicker(tc.Tick)
			defer ticker.Stop()
			tick = ticker.C
		}

		elapsed := time.Duration(0)
		for duration <= 0 || elapsed < duration {
			if tick != nil {
				<-tick
			}
			simTime = simTime.Add(tc.Tick)
			elapsed += tc.Tick

			tc.mu.Lock()
			tc.currentTime = simTime
			due := tc.dueTimersLocked(simTime)
			listeners := append([]func(time.Time){}, tc.listeners...)
			tc.mu.Unlock()

			for _, fn := range listeners {
				fn(simTime)
			}
			for _, tm := range due {
				tm.ch <- simTime
			}
		}
	}()
	return done
}

// dueTimersLocked removes and returns the timers due at or before now.
func (tc *TimeController) dueTimersLocked(now time.Time) []timer {
	var due []timer
	pending := tc.timers[:0]
	for _, tm := range tc.timers {
		if !tm.at.After(now) {
			due = append(due, tm)
		} else {
			pending = append(pending, tm)
		}
	}
	tc.timers = pending
	return due
}
