package membrane

import "fmt"

// Info is the external description of a single membrane, as reported by
// Describe.
type Info struct {
	ID           ID
	PrimeFactors []uint32
	EnergyLevel  uint32
	ObjectCount  int
	ChildCount   int
	Version      uint64
}

// TreeNode is a point-in-time snapshot of a membrane and its subtree.
// Children appear in creation order.
type TreeNode struct {
	Info     Info
	Objects  []string
	Children []TreeNode
}

// Record is a flat export row for one membrane, consumed by the facts
// engine and anything else that wants the registry as tabular data.
type Record struct {
	ID      ID
	Parent  ID // 0 for roots
	Factors []uint32
	Version uint64
	Energy  uint32
	Objects []string
	Product uint32
	Size    int
	Dims    int
}

// Tree snapshots the subtree rooted at id.
func (s *Store) Tree(id ID) (TreeNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.arena[id]
	if !ok {
		return TreeNode{}, fmt.Errorf("%w: membrane %d", ErrNotFound, id)
	}
	return s.treeLocked(m), nil
}

// Forest snapshots every root's subtree, roots in ascending id order.
func (s *Store) Forest() []TreeNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var forest []TreeNode
	for _, id := range s.idsLocked() {
		if m := s.arena[id]; m.parent == 0 {
			forest = append(forest, s.treeLocked(m))
		}
	}
	return forest
}

func (s *Store) treeLocked(m *Membrane) TreeNode {
	node := TreeNode{Info: m.info()}
	node.Objects = make([]string, len(m.objects))
	copy(node.Objects, m.objects)
	for _, c := range m.children {
		if child, ok := s.arena[c]; ok {
			node.Children = append(node.Children, s.treeLocked(child))
		}
	}
	return node
}

// Snapshot exports every live membrane as a Record, in ascending id order.
func (s *Store) Snapshot() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]Record, 0, len(s.arena))
	for _, id := range s.idsLocked() {
		records = append(records, s.arena[id].record())
	}
	return records
}
