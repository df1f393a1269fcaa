// Package sequence holds small combinators over iter.Seq and iter.Seq2.
// Every combinator is lazy and stops pulling as soon as its consumer stops.
package sequence

import "iter"

// Filter yields the elements of seq that satisfy pred.
func Filter[T any](seq iter.Seq[T], pred func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range seq {
			if pred(v) && !yield(v) {
				return
			}
		}
	}
}

// Filter2 yields the pairs of seq that satisfy pred.
func Filter2[K, V any](seq iter.Seq2[K, V], pred func(K, V) bool) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for k, v := range seq {
			if pred(k, v) && !yield(k, v) {
				return
			}
		}
	}
}

// Keys drops the second element of every pair.
func Keys[K, V any](seq iter.Seq2[K, V]) iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range seq {
			if !yield(k) {
				return
			}
		}
	}
}

// Find returns the first element matching pred.
func Find[T any](seq iter.Seq[T], pred func(T) bool) (T, bool) {
	for v := range seq {
		if pred(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Find2 returns the first pair matching pred.
func Find2[K, V any](seq iter.Seq2[K, V], pred func(K, V) bool) (K, V, bool) {
	for k, v := range seq {
		if pred(k, v) {
			return k, v, true
		}
	}
	var (
		zk K
		zv V
	)
	return zk, zv, false
}

// Contains reports whether seq yields target.
func Contains[T comparable](seq iter.Seq[T], target T) bool {
	_, ok := Find(seq, func(v T) bool { return v == target })
	return ok
}

// Count exhausts seq and returns its length.
func Count[T any](seq iter.Seq[T]) int {
	n := 0
	for range seq {
		n++
	}
	return n
}

// Each calls action for every element.
func Each[T any](seq iter.Seq[T], action func(T)) {
	for v := range seq {
		action(v)
	}
}
