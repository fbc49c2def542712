package realtime

import (
	"sort"
	"sync"
)

// SubscriptionSet tracks the event types the client wants delivered.
// Membership is always updated locally, whatever the connection state,
// so the next (re)connect replays the correct full set.
type SubscriptionSet struct {
	mu    sync.Mutex
	types map[string]struct{}
}

// NewSubscriptionSet creates a set seeded with the given types.
func NewSubscriptionSet(types ...string) *SubscriptionSet {
	s := &SubscriptionSet{
		types: make(map[string]struct{}, len(types)),
	}
	for _, t := range types {
		s.types[t] = struct{}{}
	}
	return s
}

// Add inserts types and returns the ones that were actually new.
func (s *SubscriptionSet) Add(types ...string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var added []string
	for _, t := range types {
		if _, ok := s.types[t]; ok {
			continue
		}
		s.types[t] = struct{}{}
		added = append(added, t)
	}
	return added
}

// Remove deletes types and returns the ones that were actually present.
func (s *SubscriptionSet) Remove(types ...string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for _, t := range types {
		if _, ok := s.types[t]; !ok {
			continue
		}
		delete(s.types, t)
		removed = append(removed, t)
	}
	return removed
}

// Has reports membership.
func (s *SubscriptionSet) Has(eventType string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.types[eventType]
	return ok
}

// Len returns the current set size.
func (s *SubscriptionSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.types)
}

// All returns the full membership, sorted for deterministic frames.
func (s *SubscriptionSet) All() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.types))
	for t := range s.types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
