package membrane

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTreeSnapshot(t *testing.T) {
	s := newTestStore(t)

	root, _ := s.Create([]uint32{2, 3})
	child, _ := s.CreateChild(root, []uint32{2})
	grand, _ := s.CreateChild(child, []uint32{5})
	_ = s.AddObject(root, "ion")
	_ = s.AddObject(child, "proton")

	got, err := s.Tree(root)
	if err != nil {
		t.Fatalf("Tree() error = %v", err)
	}
	want := TreeNode{
		Info: Info{
			ID:           root,
			PrimeFactors: []uint32{2, 3},
			EnergyLevel:  100,
			ObjectCount:  1,
			ChildCount:   1,
			Version:      1,
		},
		Objects: []string{"ion"},
		Children: []TreeNode{
			{
				Info: Info{
					ID:           child,
					PrimeFactors: []uint32{2},
					EnergyLevel:  100,
					ObjectCount:  1,
					ChildCount:   1,
					Version:      1,
				},
				Objects: []string{"proton"},
				Children: []TreeNode{
					{
						Info: Info{
							ID:           grand,
							PrimeFactors: []uint32{5},
							EnergyLevel:  100,
							Version:      1,
						},
						Objects: []string{},
					},
				},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tree() mismatch (-want +got):\n%s", diff)
	}
}

func TestTreeUnknownID(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Tree(11); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Tree(11) error = %v, want ErrNotFound", err)
	}
}

func TestForest(t *testing.T) {
	s := newTestStore(t)

	a, _ := s.Create([]uint32{2})
	b, _ := s.Create([]uint32{3})
	_, _ = s.CreateChild(a, []uint32{5})

	forest := s.Forest()
	if len(forest) != 2 {
		t.Fatalf("Forest() returned %d trees, want 2", len(forest))
	}
	if forest[0].Info.ID != a || forest[1].Info.ID != b {
		t.Errorf("Forest() roots = %d, %d, want %d, %d",
			forest[0].Info.ID, forest[1].Info.ID, a, b)
	}
	if len(forest[0].Children) != 1 {
		t.Errorf("first tree has %d children, want 1", len(forest[0].Children))
	}
}

func TestSnapshotRecords(t *testing.T) {
	s := newTestStore(t)

	root, _ := s.Create([]uint32{2, 2, 3})
	child, _ := s.CreateChild(root, []uint32{7})
	_ = s.AddObject(child, "ion")
	_ = s.SetElement(root, []int{0, 0}, 1.0)

	got := s.Snapshot()
	want := []Record{
		{
			ID:      root,
			Parent:  0,
			Factors: []uint32{2, 2, 3},
			Version: 2,
			Energy:  100,
			Objects: []string{},
			Product: 12,
			Size:    2,
			Dims:    2,
		},
		{
			ID:      child,
			Parent:  root,
			Factors: []uint32{7},
			Version: 1,
			Energy:  100,
			Objects: []string{"ion"},
			Product: 7,
			Size:    1,
			Dims:    1,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
	}
}
