package records

// OrderedSet is a string set that remembers insertion order.
type OrderedSet struct {
	index map[string]struct{}
	order []string
}

// NewOrderedSet returns an empty set.
func NewOrderedSet() *OrderedSet {
	return &OrderedSet{index: make(map[string]struct{})}
}

// Add inserts v; adding an existing value is a no-op.
func (s *OrderedSet) Add(v string) {
	if _, ok := s.index[v]; ok {
		return
	}
	s.index[v] = struct{}{}
	s.order = append(s.order, v)
}

// Has reports membership.
func (s *OrderedSet) Has(v string) bool {
	_, ok := s.index[v]
	return ok
}

// Len returns the number of distinct values.
func (s *OrderedSet) Len() int { return len(s.order) }

// Values returns a copy of the values in insertion order.
func (s *OrderedSet) Values() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// DetectDuplicates returns the identifiers that occur more than once in ids,
// ordered by where their second occurrence appears. Callers flag every record
// whose identifier is a member, so the first occurrence is marked as well.
func DetectDuplicates(ids []string) *OrderedSet {
	seen := NewOrderedSet()
	dups := NewOrderedSet()
	for _, id := range ids {
		if seen.Has(id) {
			dups.Add(id)
			continue
		}
		seen.Add(id)
	}
	return dups
}
