// Package multiset provides a map-backed frequency counter: a set that
// remembers how many times each element was added.
package multiset

// MultiSet counts occurrences of comparable elements. The zero value is not
// usable; construct with New.
type MultiSet[T comparable] struct {
	counts map[T]int
	size   int
}

func New[T comparable]() *MultiSet[T] {
	return &MultiSet[T]{counts: make(map[T]int)}
}

// Add includes t once more and returns its updated frequency.
func (m *MultiSet[T]) Add(t T) int {
	m.counts[t]++
	m.size++
	return m.counts[t]
}

// Contains reports whether t has been added at least once.
func (m *MultiSet[T]) Contains(t T) bool {
	return m.counts[t] > 0
}

// Count returns t's frequency, 0 if absent.
func (m *MultiSet[T]) Count(t T) int {
	return m.counts[t]
}

// Len is the total number of additions, repeats included.
func (m *MultiSet[T]) Len() int {
	return m.size
}

// Distinct is the number of distinct elements present.
func (m *MultiSet[T]) Distinct() int {
	return len(m.counts)
}

// Elements returns the distinct elements in no particular order.
func (m *MultiSet[T]) Elements() []T {
	out := make([]T, 0, len(m.counts))
	for t := range m.counts {
		out = append(out, t)
	}
	return out
}
