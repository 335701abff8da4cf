package membrane

import "errors"

// Membrane registry errors. Call sites wrap these with fmt.Errorf("%w: ...")
// so callers can classify with errors.Is while still seeing the offending
// id, symbol, or shape in the message.
var (
	// ErrInvalidArgument is returned for malformed inputs: empty or oversized
	// factor lists, out-of-bounds write indices, empty object symbols.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCapacityExceeded is returned when a hard limit is full: the
	// registry, a membrane's child list, or its object set.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrNotFound is returned when an id is not registered or an object
	// symbol is absent from a membrane.
	ErrNotFound = errors.New("not found")

	// ErrIncompatibleShape is returned by reshape when the factor products
	// differ.
	ErrIncompatibleShape = errors.New("incompatible shape")

	// ErrAllocationFailure is returned when a tensor buffer cannot be
	// allocated within the configured element budget.
	ErrAllocationFailure = errors.New("allocation failure")
)
