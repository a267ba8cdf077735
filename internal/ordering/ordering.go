// Package ordering implements the single reorder primitive shared by ranked
// sequences (tasks, categories: explicit integer order) and positional ones
// (checklist items: array index).
package ordering

import (
	"fmt"
	"sort"
)

// Move returns a copy of items with the element at from relocated to index to.
// Elements between the two positions shift by one.
func Move[T any](items []T, from, to int) ([]T, error) {
	n := len(items)
	if from < 0 || from >= n {
		return nil, fmt.Errorf("move: source index %d out of range [0,%d)", from, n)
	}
	if to < 0 || to >= n {
		return nil, fmt.Errorf("move: target index %d out of range [0,%d)", to, n)
	}
	out := make([]T, 0, n)
	moved := items[from]
	for i, it := range items {
		if i == from {
			continue
		}
		out = append(out, it)
	}
	out = append(out[:to], append([]T{moved}, out[to:]...)...)
	return out, nil
}

// IndexOf returns the position of the first element matching pred, or -1.
func IndexOf[T any](items []T, pred func(T) bool) int {
	for i, it := range items {
		if pred(it) {
			return i
		}
	}
	return -1
}

// Rank is the explicit position assigned to one element of a ranked sequence.
type Rank struct {
	ID    string
	Order int
}

// Renumber assigns dense ranks 0..n-1 following the slice order.
func Renumber[T any](items []T, id func(T) string) []Rank {
	out := make([]Rank, len(items))
	for i, it := range items {
		out[i] = Rank{ID: id(it), Order: i}
	}
	return out
}

// SortByOrder stably sorts items ascending by the integer returned from order.
// Ties keep their incoming (insertion) order.
func SortByOrder[T any](items []T, order func(T) int) {
	sort.SliceStable(items, func(i, j int) bool {
		return order(items[i]) < order(items[j])
	})
}
