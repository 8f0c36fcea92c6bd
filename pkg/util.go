package pkg

import "iter"

// TypeCast converts a value of type T to type U.
type TypeCast[T, U any] func(T) U

// Values returns an iterator over v, converting each element with c.
func (c TypeCast[T, U]) Values(v ...T) iter.Seq[U] {
	return func(yield func(U) bool) {
		for _, x := range v {
			if !yield(c(x)) {
				return
			}
		}
	}
}
