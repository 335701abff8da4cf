package membrane

import "fmt"

// GetElement reads one tensor element. Reads are forgiving: a rank
// mismatch, negative index, or out-of-bounds offset yields the 0.0
// sentinel with a nil error, and only in-bounds hits advance the access
// counter. Unknown ids still fail with ErrNotFound. Takes the write lock
// because a hit mutates the counter.
func (s *Store) GetElement(id ID, indices []int) (float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.arena[id]
	if !ok {
		return 0, fmt.Errorf("%w: membrane %d", ErrNotFound, id)
	}
	off, ok := m.offset(indices)
	if !ok {
		return 0, nil
	}
	m.accessCount++
	return m.data[off], nil
}

// SetElement writes one tensor element. Writes are strict: the same misses
// that GetElement absorbs are rejected here with ErrInvalidArgument, and
// nothing changes. A successful write advances both the operation counter
// and the version.
func (s *Store) SetElement(id ID, indices []int, value float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.arena[id]
	if !ok {
		return fmt.Errorf("%w: membrane %d", ErrNotFound, id)
	}
	off, ok := m.offset(indices)
	if !ok {
		return fmt.Errorf("%w: indices %v out of bounds for shape %v",
			ErrInvalidArgument, indices, m.factors)
	}
	m.data[off] = value
	m.opCount++
	m.version++
	return nil
}

// Fill sets every element of the buffer to value. However long the buffer,
// a fill is a single operation: the operation counter and version each
// advance exactly once.
func (s *Store) Fill(id ID, value float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.arena[id]
	if !ok {
		return fmt.Errorf("%w: membrane %d", ErrNotFound, id)
	}
	for i := range m.data {
		m.data[i] = value
	}
	m.opCount++
	m.version++
	return nil
}
