package wfqueue

import "unsafe"

// Producer is satisfied by anything that can enqueue a value on behalf of
// a stable thread id. [*Queue] implements it.
type Producer interface {
	Enqueue(value unsafe.Pointer, threadID int) error
}

// Consumer is satisfied by anything that can dequeue a value on behalf of
// a stable thread id. [*Queue] implements it.
type Consumer interface {
	Dequeue(threadID int) (unsafe.Pointer, error)
}

// QueuePtr is the combined producer-consumer interface for unsafe.Pointer
// queues. [*Queue] implements it.
//
// Unlike a bounded ring buffer, there is no Cap: this queue has no fixed
// capacity to report.
type QueuePtr interface {
	Producer
	Consumer
}

var _ QueuePtr = (*Queue)(nil)

// ProducerT is the typed analogue of [Producer], satisfied by
// [*TypedQueue].
type ProducerT[T any] interface {
	Enqueue(value *T, threadID int) error
}

// ConsumerT is the typed analogue of [Consumer], satisfied by
// [*TypedQueue].
type ConsumerT[T any] interface {
	Dequeue(threadID int) (*T, error)
}
