package wfqueue

import (
	"sync/atomic"
	"unsafe"

	"code.hybscloud.com/atomix"
)

// patience is the fast-path retry budget before falling back to the slow,
// helper-request path. Matches MAX_PATIENCE in the original implementation.
const patience = 10

// Queue is a wait-free multi-producer multi-consumer FIFO queue of opaque
// element references. See the package doc for the overall contract.
//
// Queue transports references only: it never copies, owns, or frees the
// payload a caller enqueues. The caller's opaque words must never equal
// the two reserved sentinels (all-zeros, all-ones) — in practice this
// holds automatically because they are heap pointers.
type Queue struct {
	_          [64]byte
	enqIdx     atomix.Int64
	_          [64]byte
	deqIdx     atomix.Int64
	_          [64]byte
	helpIdx    atomix.Int64
	_          [64]byte
	sharedHead atomic.Pointer[segment]

	handles    []*handle
	maxThreads int
}

// NewQueue creates a queue supporting up to maxThreads concurrent
// participants, each identified by a distinct integer in
// [0, maxThreads). Returns ErrInvalidMaxThreads if maxThreads < 1.
func NewQueue(maxThreads int) (*Queue, error) {
	if maxThreads < 1 {
		return nil, ErrInvalidMaxThreads
	}

	initial := newSegment(0)
	q := &Queue{
		handles:    newHandles(maxThreads, initial),
		maxThreads: maxThreads,
	}
	q.enqIdx.StoreRelaxed(1)
	q.deqIdx.StoreRelaxed(1)
	q.helpIdx.StoreRelaxed(0)
	q.sharedHead.Store(initial)

	return q, nil
}

// Destroy releases every segment still linked into the queue and every
// handle's spare segment. The caller must ensure no operation is
// concurrently in progress.
func (q *Queue) Destroy() {
	q.sharedHead.Store(nil)
	for _, h := range q.handles {
		h.spare = nil
		h.tail.Store(nil)
		h.head.Store(nil)
	}
}

// Enqueue adds value to the queue's back on behalf of threadID.
//
// value must not be nil and must not equal the reserved TOP sentinel
// (an all-ones pointer, which cannot arise from a real allocation).
// threadID must be a stable identifier in [0, maxThreads) presented
// consistently by the calling goroutine for its whole lifetime; presenting
// two different ids concurrently from one goroutine is undefined.
//
// Enqueue always eventually returns — it is wait-free — completing in a
// bounded number of its own steps regardless of contention from peers.
func (q *Queue) Enqueue(value unsafe.Pointer, threadID int) error {
	h := q.handles[threadID]
	v := word(uintptr(value))

	h.hzdID.StoreRelaxed(uint64(h.tailID))

	var id int64
	ok := false
	for p := 0; p < patience; p++ {
		if ok = q.enqFast(h, v, &id); ok {
			break
		}
	}
	if !ok {
		q.enqSlow(h, v, id)
	}

	h.tailID = h.tail.Load().id
	h.hzdID.StoreRelease(noHazard)
	return nil
}

// Dequeue removes and returns the value at the queue's front on behalf of
// threadID, or ErrEmpty if no value was linearized into the queue at the
// point this call linearizes.
//
// threadID has the same stability requirement as in Enqueue.
//
// Dequeue always eventually returns — it is wait-free.
func (q *Queue) Dequeue(threadID int) (unsafe.Pointer, error) {
	h := q.handles[threadID]
	h.hzdID.StoreRelaxed(uint64(h.headID))

	var id int64
	v := wordTop
	for p := 0; p < patience && v == wordTop; p++ {
		v = q.deqFast(h, &id)
	}
	if v == wordTop {
		v = q.deqSlow(h, id)
	}

	if v != wordNil {
		q.helpDeq(h, h.deqHelpHandle)
		h.deqHelpHandle = h.deqHelpHandle.next
	}

	h.headID = h.head.Load().id
	h.hzdID.StoreRelease(noHazard)

	if h.spare == nil {
		q.cleanup(h)
		h.spare = newSegment(0)
	}

	if v == wordNil {
		return nil, ErrEmpty
	}
	return unsafe.Pointer(uintptr(v)), nil
}
