package wfqueue

import (
	"sync/atomic"
	"unsafe"

	"code.hybscloud.com/atomix"
)

func deqRequestWord(r *deqRequest) word {
	return word(uintptr(unsafe.Pointer(r)))
}

func casInt64AcqRel(a *atomix.Int64, expect, newVal int64) (bool, int64) {
	if a.CompareAndSwapAcqRel(expect, newVal) {
		return true, expect
	}
	return false, a.LoadRelaxed()
}

// deqFast attempts to resolve the next slot in a single step, delegating
// the actual rendezvous to helpEnq. Returns NIL if the queue is provably
// empty at this index, TOP if the outcome is still unresolved (the caller
// should retry or fall back to deqSlow), or the dequeued value.
func (q *Queue) deqFast(h *handle, id *int64) word {
	i := q.deqIdx.AddAcqRel(1) - 1
	c := findCell(&h.head, i, h)
	v := q.helpEnq(h, c, i)

	if v == wordNil {
		return wordNil
	}
	if v != wordTop {
		if ok, _ := casUintptrRelaxed(&c.deqRef, wordNil, wordTop); ok {
			return v
		}
	}

	*id = i
	return wordTop
}

// deqSlow publishes a durable dequeue request and drives help_deq against
// its own request until it resolves, then reads off the winning cell.
func (q *Queue) deqSlow(h *handle, id int64) word {
	dr := &h.deqReq
	dr.id.StoreRelease(id)
	dr.idx.StoreRelease(id)

	q.helpDeq(h, h)
	i := -dr.idx.LoadRelaxed()
	c := findCell(&h.head, i, h)
	val := word(c.val.LoadRelaxed())

	if val == wordTop {
		return wordNil
	}
	return val
}

// helpDeq advances ph's pending dequeue request toward resolution on
// ph's behalf, called by h (which may be ph itself, in deqSlow, or a peer
// discharging its round-robin helping duty after its own dequeue).
func (q *Queue) helpDeq(h, ph *handle) {
	dr := &ph.deqReq
	idx := dr.idx.LoadAcquire()
	id := dr.id.LoadRelaxed()

	if idx < id {
		return
	}

	var dp atomic.Pointer[segment]
	dp.Store(ph.head.Load())
	h.hzdID.StoreRelease(ph.hzdID.LoadAcquire())
	idx = dr.idx.LoadAcquire()

	i := id + 1
	old := id
	var newIdx int64

	for {
		var walk atomic.Pointer[segment]
		walk.Store(dp.Load())

		for idx == old && newIdx == 0 {
			c := findCell(&walk, i, h)
			advanceIdx(&q.deqIdx, i)

			v := q.helpEnq(h, c, i)
			if v == wordNil || (v != wordTop && word(c.deqRef.LoadRelaxed()) == wordNil) {
				newIdx = i
			} else {
				idx = dr.idx.LoadAcquire()
			}
			i++
		}

		if newIdx != 0 {
			if ok, witness := casInt64AcqRel(&dr.idx, idx, newIdx); ok {
				idx = newIdx
			} else {
				idx = witness
			}
			if idx >= newIdx {
				newIdx = 0
			}
		}

		if idx < 0 || dr.id.LoadRelaxed() != id {
			break
		}

		c := findCell(&dp, idx, h)
		resolved := word(c.val.LoadRelaxed()) == wordTop
		if !resolved {
			drWord := deqRequestWord(dr)
			ok, witness := casUintptrRelaxed(&c.deqRef, wordNil, drWord)
			resolved = ok || witness == drWord
		}
		if resolved {
			casInt64Relaxed(&dr.idx, idx, -idx)
			break
		}

		old = idx
		if idx >= i {
			i = idx + 1
		}
	}
}
