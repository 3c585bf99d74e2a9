package wfqueue

import (
	"math"
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// noHazard is the sentinel hzdID value meaning "this handle is not
// currently dereferencing any queue-owned segment."
const noHazard = uint64(math.MaxUint64)

// enqRequest is a thread's persistent enqueue help request. id > 0 means
// pending with claimed index id; id <= 0 means completed at cell -id.
type enqRequest struct {
	id  atomix.Int64
	val atomix.Uintptr
	_   [64 - 16]byte
}

// deqRequest is a thread's persistent dequeue help request. idx == id
// means pending; a larger positive idx means a helper has tentatively
// located a candidate cell; a negative idx means the request resolved at
// cell -idx.
type deqRequest struct {
	id  atomix.Int64
	idx atomix.Int64
	_   [64 - 16]byte
}

// handle is a thread's private state in the queue. Handles are built once,
// linked into a fixed circular ring in thread-id order, and never mutated
// after construction except for the fields the algorithm itself advances
// (hzdID, tail, tailID, head, headID, enqReq, deqReq, the help cursors,
// enqHelpSavedID, and spare).
//
// Fields other peers or the reclaimer may read — and sometimes CAS forward
// — are hzdID, tail, head, enqReq, and deqReq; peers also follow the
// immutable ring link next. Every other field is exclusively owned by this
// handle's own thread.
type handle struct {
	next *handle

	hzdID atomix.Uint64

	tail   atomic.Pointer[segment]
	tailID int64
	head   atomic.Pointer[segment]
	headID int64

	enqReq enqRequest
	deqReq deqRequest

	enqHelpHandle  *handle
	enqHelpSavedID int64
	deqHelpHandle  *handle

	spare   *segment
	peerBuf []*handle
}

// newHandles builds maxThreads handles, all initially pointing at the
// queue's single starting segment, and links them into a cycle in
// thread-id order. Each handle's help cursors start at the next handle in
// the ring, matching the original implementation's constructor.
func newHandles(maxThreads int, initial *segment) []*handle {
	handles := make([]*handle, maxThreads)
	for i := range handles {
		h := &handle{
			spare:   newSegment(0),
			peerBuf: make([]*handle, 0, maxThreads),
		}
		h.hzdID.StoreRelaxed(noHazard)
		h.tail.Store(initial)
		h.head.Store(initial)
		h.deqReq.idx.StoreRelaxed(-1)
		handles[i] = h
	}
	for i, h := range handles {
		next := handles[(i+1)%maxThreads]
		h.next = next
		h.enqHelpHandle = next
		h.deqHelpHandle = next
	}
	return handles
}
