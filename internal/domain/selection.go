package domain

// Selection holds the selected identifiers of one displayed list and the
// anchor index used for range selection.
//
// A Selection belongs to exactly one list. The anchor is a position in the
// list order that was visible when it was set, so the owner must call Reset
// whenever the list's membership or order changes (filter, tab switch,
// reload). Indices outside the ordered slice passed to a transition are a
// caller error and are not checked.
type Selection[K comparable] struct {
	selected  Set[K]
	anchor    int
	hasAnchor bool
}

// NewSelection creates a selection preloaded with initial ids and no anchor
func NewSelection[K comparable](initial ...K) *Selection[K] {
	return &Selection[K]{selected: NewSet(initial...)}
}

// Toggle flips membership of id. Adding id moves the anchor to index;
// removing it leaves the anchor where it was.
func (s *Selection[K]) Toggle(id K, index int) {
	if s.selected.Has(id) {
		s.selected.Remove(id)
		return
	}
	s.selected.Add(id)
	s.anchor = index
	s.hasAnchor = true
}

// RangeSelect replaces the selection with ordered[lo..hi], where lo and hi
// are the anchor and index in ascending order. If id was already selected
// before the call it is left out of the new selection while the rest of the
// range still applies. The anchor does not move. Without an anchor this is a
// plain Toggle.
func (s *Selection[K]) RangeSelect(id K, index int, ordered []K) {
	if !s.hasAnchor {
		s.Toggle(id, index)
		return
	}

	lo, hi := min(s.anchor, index), max(s.anchor, index)
	wasSelected := s.selected.Has(id)

	next := NewSet(ordered[lo : hi+1]...)
	if wasSelected {
		next.Remove(id)
	}
	s.selected = next
}

// SelectAll selects exactly ordered, or clears the selection when every id
// in ordered is already selected. An empty ordered slice is a no-op.
func (s *Selection[K]) SelectAll(ordered []K) {
	if len(ordered) == 0 {
		return
	}
	if s.IsAllSelected(ordered) {
		s.selected = make(Set[K])
		return
	}
	s.selected = NewSet(ordered...)
}

// Clear empties the selection. The anchor is kept so a following range
// action still starts from the last single click.
func (s *Selection[K]) Clear() {
	s.selected = make(Set[K])
}

// Reset drops the selection and the anchor. Call it when the underlying
// list changes identity, order or membership.
func (s *Selection[K]) Reset(initial ...K) {
	s.selected = NewSet(initial...)
	s.anchor = 0
	s.hasAnchor = false
}

// Count returns the number of selected ids
func (s *Selection[K]) Count() int {
	return s.selected.Len()
}

// IsSelected reports whether id is selected
func (s *Selection[K]) IsSelected(id K) bool {
	return s.selected.Has(id)
}

// IsAllSelected reports whether ordered is non-empty and fully selected
func (s *Selection[K]) IsAllSelected(ordered []K) bool {
	if len(ordered) == 0 {
		return false
	}
	for _, id := range ordered {
		if !s.selected.Has(id) {
			return false
		}
	}
	return true
}

// Anchor returns the anchor index and whether one is set
func (s *Selection[K]) Anchor() (int, bool) {
	return s.anchor, s.hasAnchor
}

// Selected returns a copy of the selected set
func (s *Selection[K]) Selected() Set[K] {
	return s.selected.Clone()
}

// SelectedIn returns the selected members of ordered, in list order
func (s *Selection[K]) SelectedIn(ordered []K) []K {
	var out []K
	for _, id := range ordered {
		if s.selected.Has(id) {
			out = append(out, id)
		}
	}
	return out
}
