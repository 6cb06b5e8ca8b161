package domain

import (
	"cmp"
	"maps"
	"slices"
)

// Set is an unordered collection of record identifiers.
// The zero value is not usable; create sets with NewSet.
type Set[K comparable] map[K]struct{}

// NewSet creates a set holding ids (duplicates collapse)
func NewSet[K comparable](ids ...K) Set[K] {
	s := make(Set[K], len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is a member
func (s Set[K]) Has(id K) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id
func (s Set[K]) Add(id K) {
	s[id] = struct{}{}
}

// Remove deletes id; removing a non-member is a no-op
func (s Set[K]) Remove(id K) {
	delete(s, id)
}

// Len returns the number of members
func (s Set[K]) Len() int {
	return len(s)
}

// Clone returns an independent copy
func (s Set[K]) Clone() Set[K] {
	return maps.Clone(s)
}

// Equal reports whether both sets hold the same members
func (s Set[K]) Equal(other Set[K]) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// Difference returns the members of s that are not in other (s − other)
func (s Set[K]) Difference(other Set[K]) Set[K] {
	out := make(Set[K])
	for id := range s {
		if !other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Slice returns the members in no particular order
func (s Set[K]) Slice() []K {
	return slices.Collect(maps.Keys(s))
}

// Sorted returns the members of s in ascending order
func Sorted[K cmp.Ordered](s Set[K]) []K {
	return slices.Sorted(maps.Keys(s))
}
