// Package handoff passes the latest value from one goroutine to another
// without either side blocking.
package handoff

// Slot holds at most one unread value. A newer value replaces an unread
// one. Publish must be called from a single goroutine.
type Slot[T any] struct {
	ch chan T
}

func New[T any]() *Slot[T] {
	return &Slot[T]{ch: make(chan T, 1)}
}

// Publish stores v, dropping any value the consumer has not read yet.
func (s *Slot[T]) Publish(v T) {
	select {
	case <-s.ch:
	default:
	}
	s.ch <- v
}

// TryRecv returns the unread value, if any. It never blocks.
func (s *Slot[T]) TryRecv() (T, bool) {
	select {
	case v := <-s.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}
