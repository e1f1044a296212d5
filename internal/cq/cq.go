// Package cq implements a simple first-in, first-out queue.
package cq

// Flush runs every function in queue in order and returns the errors
// that they returned.
func Flush(queue []func() error) (errs []error) {
	for _, ev := range queue {
		err := ev()
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Queue is a FIFO queue. It is not safe for concurrent use.
type Queue[T any] struct {
	s []T
}

func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Add appends v to the end of the queue.
func (q *Queue[T]) Add(v T) {
	q.s = append(q.s, v)
}

// Len returns the number of items in the queue.
func (q *Queue[T]) Len() int {
	return len(q.s)
}

// Get removes and returns everything that is currently in the queue,
// oldest first.
func (q *Queue[T]) Get() []T {
	s := q.s
	q.s = nil
	return s
}

// Clear drops everything in the queue.
func (q *Queue[T]) Clear() {
	clear(q.s)
	q.s = nil
}
