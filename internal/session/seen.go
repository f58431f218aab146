package session

// seenSet remembers recently observed envelope ids with a bounded footprint:
// a map for lookup and a ring for eviction order. Suppresses the server echo
// of just-sent messages and history/live duplicates.
type seenSet struct {
	ids  map[string]struct{}
	ring []string
	next int
}

func newSeenSet(capacity int) *seenSet {
	return &seenSet{
		ids:  make(map[string]struct{}, capacity),
		ring: make([]string, capacity),
	}
}

// Observe records id and reports whether it was already present. Empty ids
// are never tracked: envelopes without an id cannot be deduplicated.
func (s *seenSet) Observe(id string) (dup bool) {
	if id == "" {
		return false
	}
	if _, ok := s.ids[id]; ok {
		return true
	}
	if old := s.ring[s.next]; old != "" {
		delete(s.ids, old)
	}
	s.ring[s.next] = id
	s.next = (s.next + 1) % len(s.ring)
	s.ids[id] = struct{}{}
	return false
}
