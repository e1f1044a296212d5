package xslices

// Partition splits s into the elements for which f returns true and
// the rest, keeping their order.
func Partition[T any, S ~[]T](s S, f func(T) bool) (match, rest S) {
	for _, v := range s {
		if f(v) {
			match = append(match, v)
			continue
		}
		rest = append(rest, v)
	}
	return match, rest
}
