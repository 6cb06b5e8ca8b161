package domain

// Plan is the minimal set of operations that turns a relation snapshot into
// a desired membership. ToAdd and ToRemove never share an id.
type Plan[K comparable] struct {
	ToAdd    Set[K]
	ToRemove Set[K]
}

// Diff computes ToAdd = desired − current and ToRemove = current − desired.
// Neither input is modified.
func Diff[K comparable](current, desired Set[K]) Plan[K] {
	return Plan[K]{
		ToAdd:    desired.Difference(current),
		ToRemove: current.Difference(desired),
	}
}

// Empty reports whether the plan has nothing to do
func (p Plan[K]) Empty() bool {
	return p.Len() == 0
}

// Len returns the total number of operations
func (p Plan[K]) Len() int {
	return p.ToAdd.Len() + p.ToRemove.Len()
}

// Apply returns the membership that results from running the plan against
// current. It does not touch any store.
func (p Plan[K]) Apply(current Set[K]) Set[K] {
	out := current.Difference(p.ToRemove)
	for id := range p.ToAdd {
		out.Add(id)
	}
	return out
}
