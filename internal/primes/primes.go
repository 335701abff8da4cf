// Package primes provides the prime-factor arithmetic behind membrane tensor
// shapes. A shape is an ordered list of prime factors; the helpers here
// factorize dimension counts, derive logical tensor geometry from factor
// signatures, and decide reshape compatibility.
package primes

// MaxFactors caps how many factors a signature may carry. Factorizations
// longer than this are truncated; callers validating shapes reject longer
// inputs outright.
const MaxFactors = 16

// IsPrime reports whether n is prime. 0 and 1 are not prime.
func IsPrime(n uint32) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for d := uint32(3); d*d <= n; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// Factorize returns the prime factors of n in ascending order, with
// repetition (12 -> [2 2 3]). At most MaxFactors entries are produced; any
// remaining factors are dropped. n < 2 yields nil.
func Factorize(n uint32) []uint32 {
	if n < 2 {
		return nil
	}
	factors := make([]uint32, 0, 8)
	for d := uint32(2); d*d <= n; d++ {
		for n%d == 0 {
			if len(factors) == MaxFactors {
				return factors
			}
			factors = append(factors, d)
			n /= d
		}
	}
	if n > 1 && len(factors) < MaxFactors {
		factors = append(factors, n)
	}
	return factors
}

// Product multiplies the factors together. An empty signature has product 1.
func Product(factors []uint32) uint32 {
	prod := uint32(1)
	for _, f := range factors {
		prod *= f
	}
	return prod
}

// Compatible reports whether two factor signatures describe reshapeable
// tensors. The sole criterion is equal factor products; ordering and
// grouping are free to differ.
func Compatible(a, b []uint32) bool {
	return Product(a) == Product(b)
}

// Multiplicities collapses a signature into its distinct factor values, in
// first-seen order, with the repetition count of each. [2 2 3 3 3] yields
// ([2 3], [2 3]).
func Multiplicities(factors []uint32) (values []uint32, counts []int) {
	for _, f := range factors {
		idx := -1
		for i, v := range values {
			if v == f {
				idx = i
				break
			}
		}
		if idx < 0 {
			values = append(values, f)
			counts = append(counts, 1)
		} else {
			counts[idx]++
		}
	}
	return values, counts
}

// Dimensions is the tensor rank of a signature: the number of distinct
// factor values. [2 2 3] is rank 2.
func Dimensions(factors []uint32) int {
	values, _ := Multiplicities(factors)
	return len(values)
}

// Size is the logical element count of a signature's tensor: the product of
// the multiplicities of its distinct factors, not of the factor values
// themselves. [2 2 3 3 3] has size 2*3 = 6; [2 3 5] has size 1*1*1 = 1.
// An empty signature has size 1.
func Size(factors []uint32) int {
	_, counts := Multiplicities(factors)
	size := 1
	for _, c := range counts {
		size *= c
	}
	return size
}
