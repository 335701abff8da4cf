package membrane

import (
	"fmt"

	"github.com/EchoCog/r9c/internal/primes"
)

// Limits holds the hard caps the Store enforces. The zero value is not
// usable; start from DefaultLimits.
type Limits struct {
	MaxMembranes      int // live membranes per registry
	MaxChildren       int // direct children per membrane
	MaxObjects        int // distinct object symbols per membrane
	MaxFactors        int // prime factors per shape signature
	MaxTensorElements int // buffer allocation budget per membrane
}

// DefaultLimits returns the stock caps.
func DefaultLimits() Limits {
	return Limits{
		MaxMembranes:      64,
		MaxChildren:       8,
		MaxObjects:        16,
		MaxFactors:        primes.MaxFactors,
		MaxTensorElements: 1 << 20,
	}
}

// Validate rejects non-positive caps and factor limits beyond what the
// shape arithmetic supports.
func (l Limits) Validate() error {
	if l.MaxMembranes < 1 {
		return fmt.Errorf("%w: max membranes %d", ErrInvalidArgument, l.MaxMembranes)
	}
	if l.MaxChildren < 1 {
		return fmt.Errorf("%w: max children %d", ErrInvalidArgument, l.MaxChildren)
	}
	if l.MaxObjects < 1 {
		return fmt.Errorf("%w: max objects %d", ErrInvalidArgument, l.MaxObjects)
	}
	if l.MaxFactors < 1 || l.MaxFactors > primes.MaxFactors {
		return fmt.Errorf("%w: max factors %d (supported range 1..%d)",
			ErrInvalidArgument, l.MaxFactors, primes.MaxFactors)
	}
	if l.MaxTensorElements < 1 {
		return fmt.Errorf("%w: max tensor elements %d", ErrInvalidArgument, l.MaxTensorElements)
	}
	return nil
}
