package membrane

import "fmt"

// AddObject places a symbol inside a membrane. Adding a symbol that is
// already present is a silent no-op; the object set holds distinct symbols
// only, in insertion order.
func (s *Store) AddObject(id ID, symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.arena[id]
	if !ok {
		return fmt.Errorf("%w: membrane %d", ErrNotFound, id)
	}
	if symbol == "" {
		return fmt.Errorf("%w: empty object symbol", ErrInvalidArgument)
	}
	return s.addObjectLocked(m, symbol)
}

func (s *Store) addObjectLocked(m *Membrane, symbol string) error {
	if m.findObject(symbol) >= 0 {
		return nil
	}
	if len(m.objects) >= s.limits.MaxObjects {
		return fmt.Errorf("%w: membrane %d already holds %d objects",
			ErrCapacityExceeded, m.id, len(m.objects))
	}
	m.objects = append(m.objects, symbol)
	return nil
}

// RemoveObject takes a symbol out of a membrane. Removing an absent symbol
// is ErrNotFound; the order of the remaining symbols is preserved.
func (s *Store) RemoveObject(id ID, symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.arena[id]
	if !ok {
		return fmt.Errorf("%w: membrane %d", ErrNotFound, id)
	}
	i := m.findObject(symbol)
	if i < 0 {
		return fmt.Errorf("%w: object %q in membrane %d", ErrNotFound, symbol, id)
	}
	m.objects = append(m.objects[:i], m.objects[i+1:]...)
	return nil
}

// FindObject reports whether a membrane holds a symbol.
func (s *Store) FindObject(id ID, symbol string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.arena[id]
	if !ok {
		return false, fmt.Errorf("%w: membrane %d", ErrNotFound, id)
	}
	return m.findObject(symbol) >= 0, nil
}

// Objects returns a copy of a membrane's symbols in insertion order.
func (s *Store) Objects(id ID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.arena[id]
	if !ok {
		return nil, fmt.Errorf("%w: membrane %d", ErrNotFound, id)
	}
	objects := make([]string, len(m.objects))
	copy(objects, m.objects)
	return objects, nil
}

// TransferObject moves a symbol between membranes under one lock
// acquisition. The symbol lands in the destination before it leaves the
// source, so a failure at any point, a full destination included, leaves
// it where it was. Transferring a symbol to the membrane that already
// holds it is a no-op.
func (s *Store) TransferObject(from, to ID, symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.arena[from]
	if !ok {
		return fmt.Errorf("%w: membrane %d", ErrNotFound, from)
	}
	dst, ok := s.arena[to]
	if !ok {
		return fmt.Errorf("%w: membrane %d", ErrNotFound, to)
	}
	i := src.findObject(symbol)
	if i < 0 {
		return fmt.Errorf("%w: object %q in membrane %d", ErrNotFound, symbol, from)
	}
	if from == to {
		return nil
	}
	if err := s.addObjectLocked(dst, symbol); err != nil {
		return err
	}
	src.objects = append(src.objects[:i], src.objects[i+1:]...)
	return nil
}
