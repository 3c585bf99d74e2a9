// Package wfqueue provides a wait-free multi-producer multi-consumer FIFO
// queue of opaque element references.
//
// The algorithm is Yang & Mellor-Crummey's wait-free queue: an unbounded
// singly linked list of fixed-size segments, fast/slow enqueue and dequeue
// paths, a peer-helping protocol that guarantees every operation completes
// in a bounded number of its own steps regardless of contention or
// preemption, and hazard-pointer-based reclamation of retired segments.
//
// # Quick Start
//
//	q, err := wfqueue.NewQueue(maxThreads)
//	if err != nil {
//	    // maxThreads < 1
//	}
//	defer q.Destroy()
//
//	v := 42
//	if err := q.Enqueue(unsafe.Pointer(&v), threadID); err != nil {
//	    // not reached: Enqueue always returns nil
//	}
//
//	p, err := q.Dequeue(threadID)
//	if wfqueue.IsEmpty(err) {
//	    // queue was empty at the dequeue's linearization point
//	}
//
// # Thread Handles
//
// Each participating goroutine must present a stable threadID in
// [0, maxThreads) for its entire lifetime. The queue does not discover
// goroutines; the caller owns the thread_id ↔ goroutine mapping. Presenting
// two different ids concurrently from one goroutine, or the same id from
// two goroutines at once, is undefined behavior — see [Queue.Enqueue] and
// [Queue.Dequeue].
//
// # Typed Wrapper
//
// [TypedQueue] is a thin generic façade over [Queue] — two unsafe-pointer
// casts, nothing more. The core only ever transports opaque, pointer-sized
// references; it never copies, owns, or frees the referenced payload.
//
//	tq, _ := wfqueue.NewTypedQueue[Event](maxThreads)
//	ev := Event{ID: 1}
//	tq.Enqueue(&ev, threadID)
//	got, err := tq.Dequeue(threadID)
//
// # Error Handling
//
// [ErrEmpty] is sourced from code.hybscloud.com/iox for ecosystem
// consistency with the hybscloud lock-free queue family: it is a control
// flow signal, not a failure. [IsEmpty] delegates to iox.IsWouldBlock.
// [ErrInvalidMaxThreads] is a real construction error, returned (not
// panicked) by [NewQueue] and [NewTypedQueue].
//
// # Memory Reclamation
//
// Segments are never explicitly freed in the C sense — reclamation means
// unlinking a segment from the shared chain once every handle's hazard id
// has advanced past it, after which Go's garbage collector reclaims the
// memory once no handle still references it. The hazard-pointer protocol
// still has to be implemented explicitly even though Go has a GC: without
// it, a segment could be unlinked — and so become unreachable from the
// queue's own chain — while a peer is still mid-dereference inside it,
// which a GC alone cannot prevent.
//
// # Race Detection
//
// Like the rest of the hybscloud lock-free family, this package's
// concurrent tests skip themselves under the race detector by checking
// [RaceEnabled], which is set by //go:build race / !race: the algorithm's correctness depends on acquire/release
// orderings between logically-separate atomic variables (e.g. a cell's
// val and its enq_ref), which the race detector's happens-before tracking
// does not model.
package wfqueue
