package wfqueue

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// segmentSize is the number of cells per segment, taken from the original
// YMC implementation's WFQUEUE_NODE_SIZE ((1<<10) - 2). It must stay well
// above any realistic maxThreads so that a single segment normally absorbs
// a full round of concurrent requests.
const segmentSize = 1<<10 - 2

// word is an opaque, pointer-sized value transported by a cell. The core
// never dereferences it except to reinterpret it as *enqRequest /
// *deqRequest for the ref fields; user-supplied values are carried as pure
// bit patterns.
type word = uintptr

const (
	// wordNil is the all-zeros sentinel: an uninitialized cell field.
	wordNil word = 0
	// wordTop is the all-ones sentinel: "no producer/consumer can still
	// rendezvous here."
	wordTop word = ^word(0)
)

// cell is one FIFO slot. Each field is an independent atomic state machine
// starting at NIL -> (value|TOP). enqRef and deqRef transition once; val
// may additionally go TOP -> value when a slow-path enqueue or its helper
// finishes on a cell a dequeuer already marked TOP.
// Naturally aligned to a cache line to avoid false sharing within a
// segment's row.
type cell struct {
	val    atomix.Uintptr
	enqRef atomix.Uintptr
	deqRef atomix.Uintptr
	_      [64 - 3*8]byte
}

// segment is a fixed-size row of cells plus a successor link and a
// monotonic id assigned at linking time. Segments form a singly linked
// list that grows only at the tail; retirement (see reclaim.go) only ever
// removes from the head and is permanent.
type segment struct {
	next atomic.Pointer[segment]
	id   int64
	_    [64 - 16]byte
	cells [segmentSize]cell
}

func newSegment(id int64) *segment {
	return &segment{id: id}
}

// findCell returns the cell at index i, walking forward from the segment
// cached in ref and extending the chain as needed. The caller's cached
// segment reference is advanced to the segment actually containing i.
//
// Extending the chain consumes the handle's pre-allocated spare segment
// when this thread wins the race to link it; otherwise the winner's
// segment is adopted. This keeps findCell's own allocation off the common
// path: at most one segment is ever allocated per call, and usually none.
func findCell(ref *atomic.Pointer[segment], i int64, h *handle) *cell {
	curr := ref.Load()
	for j := curr.id; j < i/segmentSize; j++ {
		next := curr.next.Load()
		if next == nil {
			tmp := h.spare
			if tmp == nil {
				tmp = newSegment(j + 1)
				h.spare = tmp
			} else {
				tmp.id = j + 1
			}
			if curr.next.CompareAndSwap(nil, tmp) {
				next = tmp
				h.spare = nil
			} else {
				next = curr.next.Load()
			}
		}
		curr = next
	}
	ref.Store(curr)
	return &curr.cells[i%segmentSize]
}
