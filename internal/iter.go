package internal

import (
	"iter"
)

// IterSeq2Merge concatenates key/value sequences into a single sequence.
// Each key is yielded only the first time it is seen, so earlier sequences
// shadow later ones.
func IterSeq2Merge[K comparable, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		seen := map[K]bool{}
		for _, seq := range seqs {
			for key, value := range seq {
				if seen[key] {
					continue
				}
				seen[key] = true
				if !yield(key, value) {
					return
				}
			}
		}
	}
}
