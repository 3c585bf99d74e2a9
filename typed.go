package wfqueue

import "unsafe"

// TypedQueue is a thin generic façade over [Queue]: it carries *T values
// instead of unsafe.Pointer, but otherwise adds no behavior of its own.
// The caller still owns every value's lifetime; TypedQueue never copies,
// retains, or frees what it transports.
type TypedQueue[T any] struct {
	q *Queue
}

// NewTypedQueue creates a typed queue supporting up to maxThreads
// concurrent participants. See [NewQueue].
func NewTypedQueue[T any](maxThreads int) (*TypedQueue[T], error) {
	q, err := NewQueue(maxThreads)
	if err != nil {
		return nil, err
	}
	return &TypedQueue[T]{q: q}, nil
}

// Enqueue adds value to the queue's back on behalf of threadID. value
// must not be nil and must outlive every peer's eventual Dequeue of it.
func (tq *TypedQueue[T]) Enqueue(value *T, threadID int) error {
	return tq.q.Enqueue(unsafe.Pointer(value), threadID)
}

// Dequeue removes and returns the value at the queue's front on behalf
// of threadID, or ErrEmpty if none was linearized at that point.
func (tq *TypedQueue[T]) Dequeue(threadID int) (*T, error) {
	p, err := tq.q.Dequeue(threadID)
	if err != nil {
		return nil, err
	}
	return (*T)(p), nil
}

// Destroy releases the underlying queue's segments. See [Queue.Destroy].
func (tq *TypedQueue[T]) Destroy() {
	tq.q.Destroy()
}
