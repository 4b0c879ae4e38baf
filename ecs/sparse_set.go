package ecs

// SparseSet holds one component kind for the whole world. Slot ids index the
// sparse side; the dense side keeps owners and values packed so ForEach walks
// a contiguous slice. Values are untyped here and cast back in generics.go.
type SparseSet struct {
	owners []int
	values []any
	index  []int // slot id - 1 -> dense position, -1 when absent
}

// Has reports whether slot id owns a value in the set.
func (s *SparseSet) Has(id int) bool {
	if s == nil || id <= 0 || id > len(s.index) {
		return false
	}
	pos := s.index[id-1]
	return pos >= 0 && pos < len(s.owners) && s.owners[pos] == id
}

// Get returns the value owned by slot id, or nil.
func (s *SparseSet) Get(id int) any {
	if !s.Has(id) {
		return nil
	}
	return s.values[s.index[id-1]]
}

// Set stores v for slot id, replacing any previous value.
func (s *SparseSet) Set(id int, v any) {
	if s == nil || id <= 0 {
		return
	}
	for len(s.index) < id {
		s.index = append(s.index, -1)
	}
	if pos := s.index[id-1]; s.Has(id) {
		s.values[pos] = v
		return
	}
	s.index[id-1] = len(s.owners)
	s.owners = append(s.owners, id)
	s.values = append(s.values, v)
}

// Remove drops slot id's value by moving the last dense entry into its place.
func (s *SparseSet) Remove(id int) {
	if !s.Has(id) {
		return
	}
	pos := s.index[id-1]
	last := len(s.owners) - 1
	moved := s.owners[last]

	s.owners[pos] = moved
	s.values[pos] = s.values[last]
	s.index[moved-1] = pos
	s.values[last] = nil

	s.owners = s.owners[:last]
	s.values = s.values[:last]
	s.index[id-1] = -1
}

// Entities returns the owning slot ids in dense order. Callers that mutate
// the set while iterating must copy it first.
func (s *SparseSet) Entities() []int {
	if s == nil {
		return nil
	}
	return s.owners
}
