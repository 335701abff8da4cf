package membrane

import (
	"errors"
	"testing"
)

func TestFillThenGet(t *testing.T) {
	s := newTestStore(t)

	// [2 3] is rank 2 with one element.
	id, err := s.Create([]uint32{2, 3})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := s.Fill(id, 5.0); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	got, err := s.GetElement(id, []int{0, 0})
	if err != nil {
		t.Fatalf("GetElement() error = %v", err)
	}
	if got != 5.0 {
		t.Fatalf("GetElement() = %v, want 5.0", got)
	}
}

func TestElementStrides(t *testing.T) {
	s := newTestStore(t)

	// [2 2 3]: rank 2, size 2, strides over raw factors give [0 1] -> 1.
	id, _ := s.Create([]uint32{2, 2, 3})
	if err := s.SetElement(id, []int{0, 0}, 1.0); err != nil {
		t.Fatalf("SetElement([0 0]) error = %v", err)
	}
	if err := s.SetElement(id, []int{0, 1}, 2.0); err != nil {
		t.Fatalf("SetElement([0 1]) error = %v", err)
	}

	if got, _ := s.GetElement(id, []int{0, 0}); got != 1.0 {
		t.Errorf("GetElement([0 0]) = %v, want 1.0", got)
	}
	if got, _ := s.GetElement(id, []int{0, 1}); got != 2.0 {
		t.Errorf("GetElement([0 1]) = %v, want 2.0", got)
	}
	// [1 0] lands at flat offset 2, past the 2-element buffer.
	if got, _ := s.GetElement(id, []int{1, 0}); got != 0.0 {
		t.Errorf("GetElement([1 0]) = %v, want 0.0 sentinel", got)
	}
}

func TestGetElementMissesAreQuiet(t *testing.T) {
	s := newTestStore(t)

	id, _ := s.Create([]uint32{2, 3}) // rank 2, size 1
	misses := [][]int{
		{5, 5},    // out of bounds
		{0},       // too few indices
		{0, 0, 0}, // too many indices
		{-1, 0},   // negative
	}
	for _, idx := range misses {
		got, err := s.GetElement(id, idx)
		if err != nil {
			t.Errorf("GetElement(%v) error = %v, want nil", idx, err)
		}
		if got != 0.0 {
			t.Errorf("GetElement(%v) = %v, want 0.0 sentinel", idx, got)
		}
	}
	if n := s.arena[id].accessCount; n != 0 {
		t.Errorf("accessCount after misses = %d, want 0", n)
	}

	if _, err := s.GetElement(id, []int{0, 0}); err != nil {
		t.Fatalf("GetElement() error = %v", err)
	}
	if n := s.arena[id].accessCount; n != 1 {
		t.Errorf("accessCount after hit = %d, want 1", n)
	}
}

func TestGetElementUnknownID(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetElement(9, []int{0}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetElement(9) error = %v, want ErrNotFound", err)
	}
}

func TestSetElementMissesAreLoud(t *testing.T) {
	s := newTestStore(t)

	id, _ := s.Create([]uint32{2, 3})
	misses := [][]int{
		{5, 5},
		{0},
		{0, 0, 0},
		{-1, 0},
	}
	for _, idx := range misses {
		if err := s.SetElement(id, idx, 1.0); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("SetElement(%v) error = %v, want ErrInvalidArgument", idx, err)
		}
	}
	if v := s.arena[id].version; v != 1 {
		t.Errorf("version after rejected writes = %d, want 1", v)
	}
	if n := s.arena[id].opCount; n != 0 {
		t.Errorf("opCount after rejected writes = %d, want 0", n)
	}

	if err := s.SetElement(9, []int{0, 0}, 1.0); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetElement(9) error = %v, want ErrNotFound", err)
	}
}

func TestElementBoundsAreFlatNotPerAxis(t *testing.T) {
	s := newTestStore(t)

	// [3 3]: rank 1 but logical size 2. The axis nominally runs to 3, yet
	// only flat offsets 0 and 1 exist; offset 2 is a miss.
	id, _ := s.Create([]uint32{3, 3})
	if err := s.SetElement(id, []int{1}, 4.0); err != nil {
		t.Fatalf("SetElement([1]) error = %v", err)
	}
	if err := s.SetElement(id, []int{2}, 4.0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("SetElement([2]) error = %v, want ErrInvalidArgument", err)
	}
	if got, _ := s.GetElement(id, []int{2}); got != 0.0 {
		t.Fatalf("GetElement([2]) = %v, want 0.0 sentinel", got)
	}
}

func TestVersionAndCounters(t *testing.T) {
	s := newTestStore(t)

	id, _ := s.Create([]uint32{2, 2}) // rank 1, size 2
	if v := s.arena[id].version; v != 1 {
		t.Fatalf("version at birth = %d, want 1", v)
	}

	_ = s.SetElement(id, []int{0}, 1.0)
	_ = s.SetElement(id, []int{1}, 2.0)
	if v := s.arena[id].version; v != 3 {
		t.Errorf("version after 2 writes = %d, want 3", v)
	}
	if n := s.arena[id].opCount; n != 2 {
		t.Errorf("opCount after 2 writes = %d, want 2", n)
	}

	// A fill is one operation however many elements it touches.
	if err := s.Fill(id, 9.0); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if v := s.arena[id].version; v != 4 {
		t.Errorf("version after fill = %d, want 4", v)
	}
	if n := s.arena[id].opCount; n != 3 {
		t.Errorf("opCount after fill = %d, want 3", n)
	}

	// Reads move the access counter, never the version.
	_, _ = s.GetElement(id, []int{0})
	if v := s.arena[id].version; v != 4 {
		t.Errorf("version after read = %d, want 4", v)
	}
	if n := s.arena[id].accessCount; n != 1 {
		t.Errorf("accessCount = %d, want 1", n)
	}
}

func TestFillUnknownID(t *testing.T) {
	s := newTestStore(t)
	if err := s.Fill(3, 1.0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Fill(3) error = %v, want ErrNotFound", err)
	}
}
