package forge

// sparseSet is the type-erased interface the world uses to manage a
// SparseSet-class component kind's storage. Payload lives independently
// of any table and survives archetype moves without ever occupying a
// table column (§4.3).
type sparseSet interface {
	insert(idx uint32, value any)
	remove(idx uint32)
	get(idx uint32) (any, bool)
	has(idx uint32) bool
	stampAdded(idx uint32, now uint32)
	markChanged(idx uint32, now uint32)
	ticksFor(idx uint32) (componentTicks, bool)
	resetTicks()
}

// typedSparseSet is a dense-payload, sparse-index map keyed by entity
// index: sparse[entityIndex] gives a 1-based position into dense/values,
// or 0 if absent. Removal is swap-remove on the dense arrays. Change
// ticks ride alongside the dense arrays so SparseSet-class components
// support Added<T>/Changed<T> exactly like Table-class ones (§4.3).
type typedSparseSet[T any] struct {
	sparse []uint32
	dense  []uint32
	values []T
	ticks  []componentTicks
}

func newTypedSparseSet[T any]() *typedSparseSet[T] {
	return &typedSparseSet[T]{}
}

func (s *typedSparseSet[T]) insert(idx uint32, value any) {
	v, _ := value.(T)
	if s.has(idx) {
		s.values[s.sparse[idx]-1] = v
		return
	}
	if int(idx) >= len(s.sparse) {
		grown := make([]uint32, idx+1)
		copy(grown, s.sparse)
		s.sparse = grown
	}
	s.dense = append(s.dense, idx)
	s.values = append(s.values, v)
	s.ticks = append(s.ticks, componentTicks{})
	s.sparse[idx] = uint32(len(s.dense))
}

func (s *typedSparseSet[T]) remove(idx uint32) {
	if !s.has(idx) {
		return
	}
	pos := s.sparse[idx] - 1
	last := len(s.dense) - 1

	lastEntity := s.dense[last]
	s.dense[pos] = lastEntity
	s.values[pos] = s.values[last]
	s.ticks[pos] = s.ticks[last]
	s.sparse[lastEntity] = pos + 1

	s.dense = s.dense[:last]
	s.values = s.values[:last]
	s.ticks = s.ticks[:last]
	s.sparse[idx] = 0
}

func (s *typedSparseSet[T]) has(idx uint32) bool {
	return int(idx) < len(s.sparse) && s.sparse[idx] != 0
}

func (s *typedSparseSet[T]) get(idx uint32) (any, bool) {
	if !s.has(idx) {
		var zero T
		return zero, false
	}
	return s.values[s.sparse[idx]-1], true
}

// getTyped returns a pointer into the dense value slice, letting callers
// mutate in place the way a table column accessor would.
func (s *typedSparseSet[T]) getTyped(idx uint32) (*T, bool) {
	if !s.has(idx) {
		return nil, false
	}
	return &s.values[s.sparse[idx]-1], true
}

func (s *typedSparseSet[T]) stampAdded(idx uint32, now uint32) {
	if !s.has(idx) {
		return
	}
	pos := s.sparse[idx] - 1
	s.ticks[pos] = componentTicks{added: now, changed: now}
}

func (s *typedSparseSet[T]) markChanged(idx uint32, now uint32) {
	if !s.has(idx) {
		return
	}
	s.ticks[s.sparse[idx]-1].changed = now
}

func (s *typedSparseSet[T]) ticksFor(idx uint32) (componentTicks, bool) {
	if !s.has(idx) {
		return componentTicks{}, false
	}
	return s.ticks[s.sparse[idx]-1], true
}

func (s *typedSparseSet[T]) resetTicks() {
	for i := range s.ticks {
		s.ticks[i] = componentTicks{}
	}
}
