package menu

// Tracker accumulates the dish names committed to one generation run so
// later days can be told not to repeat them. Matching is exact; names
// are never normalized. A Tracker is owned by a single run and is not
// safe for concurrent use.
type Tracker struct {
	names []string
	seen  map[string]struct{}
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{seen: make(map[string]struct{})}
}

// Record adds a dish name. Empty names and duplicates are ignored.
func (t *Tracker) Record(name string) {
	if name == "" {
		return
	}
	if _, ok := t.seen[name]; ok {
		return
	}
	t.seen[name] = struct{}{}
	t.names = append(t.names, name)
}

// Contains reports whether the exact name has been recorded.
func (t *Tracker) Contains(name string) bool {
	_, ok := t.seen[name]
	return ok
}

// All returns the recorded names in insertion order.
func (t *Tracker) All() []string {
	return append([]string(nil), t.names...)
}
