// Package membrane implements the tensor-membrane registry: a bounded,
// in-process store of hierarchical tensor objects. Each membrane owns a
// flat float32 buffer whose logical shape is an ordered prime-factor
// signature, a small multiset of object symbols, and an ordered list of
// child membranes. All state lives behind a single Store; membranes are
// addressed by id and never escape as pointers.
package membrane

import (
	"github.com/EchoCog/r9c/internal/primes"
)

// ID identifies a registered membrane. IDs are allocated monotonically
// starting at 1 and are never reused, so a stale id can never alias a
// newer membrane. 0 is reserved as the "no parent" marker.
type ID uint32

// defaultEnergy is the energy level every membrane is born with. Energy is
// tracked but not consumed by any current operation.
const defaultEnergy uint32 = 100

// Membrane is a single node in the hierarchy. Fields are unexported and
// guarded by the owning Store's lock; nothing outside this package touches
// a Membrane directly.
type Membrane struct {
	id      ID
	factors []uint32  // ordered prime-factor signature, len 1..MaxFactors
	data    []float32 // flat tensor buffer, len == primes.Size(factors)
	version uint64    // starts at 1, bumped by writes and reshapes

	parent   ID   // 0 for roots; weak reference, no backpointer cycles
	children []ID // creation order

	energy  uint32
	objects []string // distinct symbols, insertion order

	opCount     uint64 // successful mutations (set, fill)
	accessCount uint64 // successful element reads
}

// offset maps an index vector to a flat buffer offset. The vector must have
// exactly one entry per distinct prime in the signature. Strides accumulate
// over the raw stored factors in uint32 arithmetic, and only the final flat
// offset is bounds-checked against the buffer; per-axis extents are not
// enforced individually. Any rank mismatch, negative index, or
// out-of-buffer offset is a miss.
func (m *Membrane) offset(indices []int) (int, bool) {
	dims := primes.Dimensions(m.factors)
	if len(indices) != dims {
		return 0, false
	}
	var flat, stride uint32 = 0, 1
	for i := dims - 1; i >= 0; i-- {
		if indices[i] < 0 {
			return 0, false
		}
		flat += uint32(indices[i]) * stride
		stride *= m.factors[i]
	}
	if int(flat) >= len(m.data) {
		return 0, false
	}
	return int(flat), true
}

// findObject returns the position of symbol in the object list, or -1.
func (m *Membrane) findObject(symbol string) int {
	for i, s := range m.objects {
		if s == symbol {
			return i
		}
	}
	return -1
}

// removeChild drops id from the child list, preserving the order of the
// remaining children.
func (m *Membrane) removeChild(id ID) {
	for i, c := range m.children {
		if c == id {
			m.children = append(m.children[:i], m.children[i+1:]...)
			return
		}
	}
}

// info builds the external description of the membrane.
func (m *Membrane) info() Info {
	factors := make([]uint32, len(m.factors))
	copy(factors, m.factors)
	return Info{
		ID:           m.id,
		PrimeFactors: factors,
		EnergyLevel:  m.energy,
		ObjectCount:  len(m.objects),
		ChildCount:   len(m.children),
		Version:      m.version,
	}
}

// record builds the flat export row used by the facts engine.
func (m *Membrane) record() Record {
	factors := make([]uint32, len(m.factors))
	copy(factors, m.factors)
	objects := make([]string, len(m.objects))
	copy(objects, m.objects)
	return Record{
		ID:      m.id,
		Parent:  m.parent,
		Factors: factors,
		Version: m.version,
		Energy:  m.energy,
		Objects: objects,
		Product: primes.Product(factors),
		Size:    primes.Size(factors),
		Dims:    primes.Dimensions(factors),
	}
}
