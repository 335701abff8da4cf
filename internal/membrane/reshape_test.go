package membrane

import (
	"errors"
	"reflect"
	"testing"
)

func TestReshapeCompatible(t *testing.T) {
	s := newTestStore(t)

	id, _ := s.Create([]uint32{2, 2, 3})
	if err := s.Reshape(id, []uint32{3, 2, 2}); err != nil {
		t.Fatalf("Reshape() error = %v", err)
	}
	info, _ := s.Describe(id)
	if !reflect.DeepEqual(info.PrimeFactors, []uint32{3, 2, 2}) {
		t.Errorf("PrimeFactors = %v, want [3 2 2]", info.PrimeFactors)
	}
	if info.Version != 2 {
		t.Errorf("Version = %d, want 2", info.Version)
	}
	if n := s.arena[id].opCount; n != 0 {
		t.Errorf("opCount after reshape = %d, want 0", n)
	}
}

func TestReshapeIncompatible(t *testing.T) {
	s := newTestStore(t)

	id, _ := s.Create([]uint32{2, 2, 3}) // product 12
	err := s.Reshape(id, []uint32{2, 3}) // product 6
	if !errors.Is(err, ErrIncompatibleShape) {
		t.Fatalf("Reshape() error = %v, want ErrIncompatibleShape", err)
	}
	info, _ := s.Describe(id)
	if !reflect.DeepEqual(info.PrimeFactors, []uint32{2, 2, 3}) {
		t.Errorf("PrimeFactors after rejection = %v, want [2 2 3]", info.PrimeFactors)
	}
	if info.Version != 1 {
		t.Errorf("Version after rejection = %d, want 1", info.Version)
	}
}

func TestReshapePreservesPrefix(t *testing.T) {
	s := newTestStore(t)

	// [2 2 2 2]: rank 1, size 4.
	id, _ := s.Create([]uint32{2, 2, 2, 2})
	for i := 0; i < 4; i++ {
		if err := s.SetElement(id, []int{i}, float32(i)+1.5); err != nil {
			t.Fatalf("SetElement(%d) error = %v", i, err)
		}
	}

	// [4 2 2] keeps the product at 16 but shrinks logical size to 2.
	if err := s.Reshape(id, []uint32{4, 2, 2}); err != nil {
		t.Fatalf("Reshape() error = %v", err)
	}
	if got := s.arena[id].data; !reflect.DeepEqual(got, []float32{1.5, 2.5}) {
		t.Fatalf("data after shrink = %v, want [1.5 2.5]", got)
	}

	// Growing back restores the length; the new tail is zero.
	if err := s.Reshape(id, []uint32{2, 2, 2, 2}); err != nil {
		t.Fatalf("Reshape() back error = %v", err)
	}
	if got := s.arena[id].data; !reflect.DeepEqual(got, []float32{1.5, 2.5, 0, 0}) {
		t.Fatalf("data after grow = %v, want [1.5 2.5 0 0]", got)
	}
}

func TestReshapeValidatesFactorCount(t *testing.T) {
	s := newTestStore(t)

	id, _ := s.Create([]uint32{2, 2})
	if err := s.Reshape(id, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Reshape(nil) error = %v, want ErrInvalidArgument", err)
	}
	long := make([]uint32, 17)
	for i := range long {
		long[i] = 2
	}
	if err := s.Reshape(id, long); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Reshape(17) error = %v, want ErrInvalidArgument", err)
	}
	if err := s.Reshape(4, []uint32{2, 2}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Reshape(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestReshapeAllocationBudgetLeavesStateIntact(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxTensorElements = 4
	s := newTestStoreWithLimits(t, limits)

	// [4 8] has product 32 and size 1; [2 2 2 2 2] shares the product but
	// needs 5 elements, beyond the budget.
	id, _ := s.Create([]uint32{4, 8})
	if err := s.SetElement(id, []int{0, 0}, 7.0); err != nil {
		t.Fatalf("SetElement() error = %v", err)
	}
	err := s.Reshape(id, []uint32{2, 2, 2, 2, 2})
	if !errors.Is(err, ErrAllocationFailure) {
		t.Fatalf("Reshape() error = %v, want ErrAllocationFailure", err)
	}

	info, _ := s.Describe(id)
	if !reflect.DeepEqual(info.PrimeFactors, []uint32{4, 8}) {
		t.Errorf("PrimeFactors after rejection = %v, want [4 8]", info.PrimeFactors)
	}
	if got, _ := s.GetElement(id, []int{0, 0}); got != 7.0 {
		t.Errorf("GetElement() after rejection = %v, want 7.0", got)
	}
}
