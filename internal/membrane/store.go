package membrane

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/EchoCog/r9c/internal/logging"
	"github.com/EchoCog/r9c/internal/primes"
)

// Store is the membrane registry. It owns every membrane it creates and is
// the only way to reach one; callers hold ids, never pointers. A single
// coarse lock guards the registry map and all membrane state. Operations
// that mutate anything, including reads that bump access counters, take the
// write lock; pure inspection takes the read lock and may run in parallel.
type Store struct {
	mu     sync.RWMutex
	arena  map[ID]*Membrane
	nextID ID
	limits Limits
	rng    *rand.Rand // buffer init; guarded by mu (writers only)
}

// NewStore creates an empty registry with the given limits and a
// time-seeded value source for tensor buffer initialization.
func NewStore(limits Limits) (*Store, error) {
	return NewStoreWithSeed(limits, time.Now().UnixNano())
}

// NewStoreWithSeed is NewStore with a fixed seed, for reproducible buffers
// in tests.
func NewStoreWithSeed(limits Limits, seed int64) (*Store, error) {
	if err := limits.Validate(); err != nil {
		return nil, fmt.Errorf("store limits: %w", err)
	}
	s := &Store{
		arena:  make(map[ID]*Membrane),
		nextID: 1,
		limits: limits,
		rng:    rand.New(rand.NewSource(seed)),
	}
	logging.Registry("Membrane store initialized: membranes=%d children=%d objects=%d factors=%d elements=%d",
		limits.MaxMembranes, limits.MaxChildren, limits.MaxObjects, limits.MaxFactors, limits.MaxTensorElements)
	return s, nil
}

// Create registers a new root membrane with the given prime-factor
// signature and returns its id. The buffer is seeded with small
// pseudo-random values in [0, 0.1). A failed create never consumes an id.
func (s *Store) Create(factors []uint32) (ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(0, factors)
}

// CreateChild registers a new membrane nested under parent. The child is
// appended to the parent's ordered child list only after every check has
// passed.
func (s *Store) CreateChild(parent ID, factors []uint32) (ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.arena[parent]
	if !ok {
		return 0, fmt.Errorf("%w: membrane %d", ErrNotFound, parent)
	}
	if len(p.children) >= s.limits.MaxChildren {
		return 0, fmt.Errorf("%w: membrane %d already has %d children",
			ErrCapacityExceeded, parent, len(p.children))
	}
	id, err := s.createLocked(parent, factors)
	if err != nil {
		return 0, err
	}
	p.children = append(p.children, id)
	return id, nil
}

// createLocked validates, allocates, and registers. The id counter only
// advances once nothing can fail anymore.
func (s *Store) createLocked(parent ID, factors []uint32) (ID, error) {
	if len(factors) == 0 {
		return 0, fmt.Errorf("%w: empty factor list", ErrInvalidArgument)
	}
	if len(factors) > s.limits.MaxFactors {
		return 0, fmt.Errorf("%w: %d factors (limit %d)",
			ErrInvalidArgument, len(factors), s.limits.MaxFactors)
	}
	if len(s.arena) >= s.limits.MaxMembranes {
		return 0, fmt.Errorf("%w: registry full (%d membranes)",
			ErrCapacityExceeded, len(s.arena))
	}
	size := primes.Size(factors)
	if size > s.limits.MaxTensorElements {
		return 0, fmt.Errorf("%w: tensor of %d elements (budget %d)",
			ErrAllocationFailure, size, s.limits.MaxTensorElements)
	}

	sig := make([]uint32, len(factors))
	copy(sig, factors)
	data := make([]float32, size)
	for i := range data {
		data[i] = s.rng.Float32() * 0.1
	}

	id := s.nextID
	s.nextID++
	s.arena[id] = &Membrane{
		id:      id,
		factors: sig,
		data:    data,
		version: 1,
		parent:  parent,
		energy:  defaultEnergy,
	}
	logging.RegistryDebug("Created membrane %d: factors=%v size=%d parent=%d", id, sig, size, parent)
	return id, nil
}

// Destroy removes a membrane and its entire subtree. Descendants are
// deregistered strictly before their parents, and the subtree root is
// unlinked from its surviving parent only after the subtree is gone, so
// the registry never holds a child whose parent has already vanished.
func (s *Store) Destroy(id ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, ok := s.arena[id]
	if !ok {
		return fmt.Errorf("%w: membrane %d", ErrNotFound, id)
	}

	// Collect the subtree in preorder with an explicit stack, then free in
	// reverse so every node outlives its descendants.
	order := make([]*Membrane, 0, 8)
	stack := []*Membrane{root}
	for len(stack) > 0 {
		m := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, m)
		for _, c := range m.children {
			if child, ok := s.arena[c]; ok {
				stack = append(stack, child)
			}
		}
	}
	for i := len(order) - 1; i >= 0; i-- {
		delete(s.arena, order[i].id)
	}
	if p, ok := s.arena[root.parent]; ok {
		p.removeChild(root.id)
	}
	logging.RegistryDebug("Destroyed membrane %d (subtree size %d)", id, len(order))
	return nil
}

// Reshape swaps a membrane's factor signature for a compatible one. The
// products must match; the logical sizes may differ. Resizing allocates a
// fresh buffer and copies the common prefix before anything is swapped in,
// so a rejected reshape leaves the membrane untouched. Data beyond the
// common prefix is lost on shrink and zero on grow. Reshape bumps the
// version but does not count as a tensor operation.
func (s *Store) Reshape(id ID, factors []uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.arena[id]
	if !ok {
		return fmt.Errorf("%w: membrane %d", ErrNotFound, id)
	}
	if len(factors) == 0 {
		return fmt.Errorf("%w: empty factor list", ErrInvalidArgument)
	}
	if len(factors) > s.limits.MaxFactors {
		return fmt.Errorf("%w: %d factors (limit %d)",
			ErrInvalidArgument, len(factors), s.limits.MaxFactors)
	}
	if !primes.Compatible(m.factors, factors) {
		return fmt.Errorf("%w: product %d -> %d",
			ErrIncompatibleShape, primes.Product(m.factors), primes.Product(factors))
	}
	size := primes.Size(factors)
	if size > s.limits.MaxTensorElements {
		return fmt.Errorf("%w: tensor of %d elements (budget %d)",
			ErrAllocationFailure, size, s.limits.MaxTensorElements)
	}

	sig := make([]uint32, len(factors))
	copy(sig, factors)
	if size != len(m.data) {
		buf := make([]float32, size)
		copy(buf, m.data)
		m.data = buf
	}
	m.factors = sig
	m.version++
	logging.RegistryDebug("Reshaped membrane %d: factors=%v size=%d version=%d", id, sig, size, m.version)
	return nil
}

// Describe returns the external view of a membrane.
func (s *Store) Describe(id ID) (Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.arena[id]
	if !ok {
		return Info{}, fmt.Errorf("%w: membrane %d", ErrNotFound, id)
	}
	return m.info(), nil
}

// Lookup reports whether an id is currently registered.
func (s *Store) Lookup(id ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.arena[id]
	return ok
}

// Count returns the number of live membranes.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.arena)
}

// IDs returns all live membrane ids in ascending order.
func (s *Store) IDs() []ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idsLocked()
}

func (s *Store) idsLocked() []ID {
	ids := make([]ID, 0, len(s.arena))
	for id := range s.arena {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Roots returns the ids of all parentless membranes in ascending order.
func (s *Store) Roots() []ID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roots := make([]ID, 0, len(s.arena))
	for id, m := range s.arena {
		if m.parent == 0 {
			roots = append(roots, id)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
	return roots
}

// Limits returns the caps currently in force.
func (s *Store) Limits() Limits {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limits
}

// SetLimits replaces the caps at runtime. Lowering a cap below current
// occupancy does not evict anything; it only blocks further growth.
func (s *Store) SetLimits(limits Limits) error {
	if err := limits.Validate(); err != nil {
		return fmt.Errorf("store limits: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits = limits
	logging.Registry("Store limits updated: membranes=%d children=%d objects=%d factors=%d elements=%d",
		limits.MaxMembranes, limits.MaxChildren, limits.MaxObjects, limits.MaxFactors, limits.MaxTensorElements)
	return nil
}

// Validate checks structural invariants across the whole registry: parent
// and child links must agree, every referenced id must be live, and every
// buffer must match its signature's size. Used by tests and the stress
// harness; a healthy store always passes.
func (s *Store) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, m := range s.arena {
		if m.id != id {
			return fmt.Errorf("membrane %d registered under id %d", m.id, id)
		}
		if m.parent != 0 {
			p, ok := s.arena[m.parent]
			if !ok {
				return fmt.Errorf("membrane %d: parent %d not registered", id, m.parent)
			}
			linked := false
			for _, c := range p.children {
				if c == id {
					linked = true
					break
				}
			}
			if !linked {
				return fmt.Errorf("membrane %d: parent %d does not list it as a child", id, m.parent)
			}
		}
		for _, c := range m.children {
			child, ok := s.arena[c]
			if !ok {
				return fmt.Errorf("membrane %d: child %d not registered", id, c)
			}
			if child.parent != id {
				return fmt.Errorf("membrane %d: child %d claims parent %d", id, c, child.parent)
			}
		}
		if len(m.data) != primes.Size(m.factors) {
			return fmt.Errorf("membrane %d: buffer size %d does not match shape %v",
				id, len(m.data), m.factors)
		}
	}
	return nil
}

// Global store instance for convenience.
var defaultStore = func() *Store {
	s, err := NewStore(DefaultLimits())
	if err != nil {
		panic(fmt.Sprintf("default membrane store: %v", err))
	}
	return s
}()

// Default returns the process-wide membrane store.
func Default() *Store {
	return defaultStore
}
