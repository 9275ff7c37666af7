package kb

import (
	"fmt"
	"math"
	"sync"

	"github.com/signalsfoundry/orbit-simulator/model"
	"github.com/signalsfoundry/orbit-simulator/stats"
)

// EventType indicates what kind of change happened in the KB.
type EventType int

const (
	EventPlatformUpdated EventType = iota
	EventPlatformRemoved
)

// Event is emitted to subscribers when something interesting happens.
type Event struct {
	Type     EventType
	Platform model.PlatformDefinition
}

// KnowledgeBase is an in-memory, thread-safe store for platforms and the
// running statistics of their distance from the frame origin.
type KnowledgeBase struct {
	mu sync.RWMutex

	platforms map[string]*model.PlatformDefinition
	radius    map[string]*stats.Stat // metres

	subs   map[int]func(Event)
	nextID int
}

// NewKnowledgeBase constructs an empty KB.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		platforms: make(map[string]*model.PlatformDefinition),
		radius:    make(map[string]*stats.Stat),
		subs:      make(map[int]func(Event)),
	}
}

// AddPlatform adds a new platform. It returns an error if the ID already exists.
func (kb *KnowledgeBase) AddPlatform(p *model.PlatformDefinition) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("platform must have a non-empty ID")
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()

	if _, exists := kb.platforms[p.ID]; exists {
		return fmt.Errorf("platform with ID %q already exists", p.ID)
	}
	// store pointer so that motion models can update in-place
	kb.platforms[p.ID] = p
	s := stats.New()
	kb.radius[p.ID] = &s
	return nil
}

// RemovePlatform deletes a platform and its statistics.
func (kb *KnowledgeBase) RemovePlatform(id string) error {
	kb.mu.Lock()
	p, ok := kb.platforms[id]
	if !ok {
		kb.mu.Unlock()
		return fmt.Errorf("platform with ID %q not found", id)
	}
	delete(kb.platforms, id)
	delete(kb.radius, id)
	event := Event{Type: EventPlatformRemoved, Platform: *p}
	subs := kb.subscribersLocked()
	kb.mu.Unlock()

	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// GetPlatform returns the platform with the given ID, or nil if not found.
func (kb *KnowledgeBase) GetPlatform(id string) *model.PlatformDefinition {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.platforms[id]
}

// ListPlatforms returns a snapshot slice of all platforms.
func (kb *KnowledgeBase) ListPlatforms() []*model.PlatformDefinition {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	res := make([]*model.PlatformDefinition, 0, len(kb.platforms))
	for _, p := range kb.platforms {
		res = append(res, p)
	}
	return res
}

// UpdatePlatformPosition updates a platform's coordinates, records its
// radius and notifies subscribers.
func (kb *KnowledgeBase) UpdatePlatformPosition(id string, pos model.Motion) error {
	kb.mu.Lock()
	p, ok := kb.platforms[id]
	if !ok {
		kb.mu.Unlock()
		return fmt.Errorf("platform with ID %q not found", id)
	}
	p.Coordinates = pos
	kb.radius[id].Entry(math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z))
	event := Event{
		Type:     EventPlatformUpdated,
		Platform: *p, // copy for safety
	}
	subs := kb.subscribersLocked()
	kb.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// PositionStats returns a copy of the radius statistics for a platform.
func (kb *KnowledgeBase) PositionStats(id string) (stats.Stat, bool) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	s, ok := kb.radius[id]
	if !ok {
		return stats.Stat{}, false
	}
	return *s, true
}

// Subscribe registers a callback for KB events. It returns an unsubscribe function.
func (kb *KnowledgeBase) Subscribe(fn func(Event)) (unsubscribe func()) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	id := kb.nextID
	kb.nextID++
	kb.subs[id] = fn

	return func() {
		kb.mu.Lock()
		defer kb.mu.Unlock()
		delete(kb.subs, id)
	}
}

func (kb *KnowledgeBase) subscribersLocked() []func(Event) {
	subs := make([]func(Event), 0, len(kb.subs))
	for _, fn := range kb.subs {
		subs = append(subs, fn)
	}
	return subs
}
