package models

import "slices"

// IDSet is a set of user IDs.
type IDSet map[uint]struct{}

// NewIDSet builds a set from ids, dropping duplicates.
func NewIDSet(ids ...uint) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s IDSet) Has(id uint) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id and reports whether it was absent.
func (s IDSet) Add(id uint) bool {
	if s.Has(id) {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Remove deletes id and reports whether it was present.
func (s IDSet) Remove(id uint) bool {
	if !s.Has(id) {
		return false
	}
	delete(s, id)
	return true
}

// Len returns the number of ids in the set.
func (s IDSet) Len() int {
	return len(s)
}

// Slice returns the ids in ascending order.
func (s IDSet) Slice() []uint {
	out := make([]uint, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
