package wfqueue

import (
	"sync/atomic"
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// maxSpin bounds how long help_enq's initial poll of a cell's value spins
// before giving up and taking over the slot itself.
const maxSpin = 100

func enqRequestWord(r *enqRequest) word {
	return word(uintptr(unsafe.Pointer(r)))
}

func wordEnqRequest(w word) *enqRequest {
	return (*enqRequest)(unsafe.Pointer(w))
}

// casUintptrRelaxed performs a relaxed CAS and, mirroring a C11
// compare-exchange, returns the witnessed value: the expectation on
// success, the actual current value on failure.
func casUintptrRelaxed(a *atomix.Uintptr, expect, newVal word) (bool, word) {
	if a.CompareAndSwapRelaxed(uintptr(expect), uintptr(newVal)) {
		return true, expect
	}
	return false, word(a.LoadRelaxed())
}

func casUintptrAcqRel(a *atomix.Uintptr, expect, newVal word) (bool, word) {
	if a.CompareAndSwapAcqRel(uintptr(expect), uintptr(newVal)) {
		return true, expect
	}
	return false, word(a.LoadRelaxed())
}

func casInt64Relaxed(a *atomix.Int64, expect, newVal int64) (bool, int64) {
	if a.CompareAndSwapRelaxed(expect, newVal) {
		return true, expect
	}
	return false, a.LoadRelaxed()
}

// advanceIdx advances idx to at least target+1, racing any peer doing the
// same; a lost race just means some other advance already went far enough.
func advanceIdx(idx *atomix.Int64, target int64) {
	cur := idx.LoadRelaxed()
	for cur <= target {
		ok, witness := casInt64Relaxed(idx, cur, target+1)
		if ok {
			return
		}
		cur = witness
	}
}

// spinWord polls a as long as it reads NIL, up to maxSpin times, then
// returns whatever was last observed.
func spinWord(a *atomix.Uintptr) word {
	v := word(a.LoadRelaxed())
	if v != wordNil {
		return v
	}
	var w spin.Wait
	for i := 0; i < maxSpin && v == wordNil; i++ {
		w.Once()
		v = word(a.LoadRelaxed())
	}
	return v
}

// enqFast attempts to claim the next slot in a single step. On failure it
// records the claimed index in *id for enqSlow to resume from.
func (q *Queue) enqFast(h *handle, v word, id *int64) bool {
	i := q.enqIdx.AddAcqRel(1) - 1
	c := findCell(&h.tail, i, h)
	if ok, _ := casUintptrRelaxed(&c.val, wordNil, v); ok {
		return true
	}
	*id = i
	return false
}

// enqSlow publishes a durable help request for v and walks forward,
// cooperating with any peer that races to claim a cell on its behalf,
// until the request resolves to a cell it truly owns.
func (q *Queue) enqSlow(h *handle, v word, id int64) {
	er := &h.enqReq
	er.val.StoreRelaxed(uintptr(v))
	er.id.StoreRelease(id)

	var tail atomic.Pointer[segment]
	tail.Store(h.tail.Load())

	var i int64
	var c *cell
	for {
		i = q.enqIdx.AddAcqRel(1) - 1
		c = findCell(&tail, i, h)
		ok, _ := casUintptrAcqRel(&c.enqRef, wordNil, enqRequestWord(er))
		if ok && word(c.val.LoadRelaxed()) != wordTop {
			if won, _ := casInt64Relaxed(&er.id, id, -i); won {
				id = -i
			}
			break
		}
		if er.id.LoadRelaxed() <= 0 {
			break
		}
	}

	id = -er.id.LoadRelaxed()
	c = findCell(&h.tail, id, h)
	if id > i {
		advanceIdx(&q.enqIdx, id)
	}
	c.val.StoreRelaxed(uintptr(v))
}

// helpEnq resolves the slow-path rendezvous for cell c at index i,
// returning the value a producer placed there, NIL if the queue's own
// enqueue counter proves no producer ever will, or TOP if the outcome is
// still undetermined and the caller should retry.
func (q *Queue) helpEnq(h *handle, c *cell, i int64) word {
	v := spinWord(&c.val)

	if v != wordTop && v != wordNil {
		return v
	}
	if v == wordNil {
		ok, witness := casUintptrAcqRel(&c.val, wordNil, wordTop)
		if !ok {
			v = witness
			if v != wordTop {
				return v
			}
		}
	}

	e := word(c.enqRef.LoadRelaxed())

	if e == wordNil {
		ph := h.enqHelpHandle
		pe := &ph.enqReq
		id := pe.id.LoadRelaxed()

		if h.enqHelpSavedID != 0 && h.enqHelpSavedID != id {
			h.enqHelpSavedID = 0
			h.enqHelpHandle = ph.next
			ph = h.enqHelpHandle
			pe = &ph.enqReq
			id = pe.id.LoadRelaxed()
		}

		if id > 0 && id <= i {
			peWord := enqRequestWord(pe)
			ok, witness := casUintptrRelaxed(&c.enqRef, wordNil, peWord)
			if !ok && witness != peWord {
				h.enqHelpSavedID = id
			} else {
				h.enqHelpSavedID = 0
				h.enqHelpHandle = ph.next
			}
			e = witness
		} else {
			h.enqHelpSavedID = 0
			h.enqHelpHandle = ph.next
		}

		if e == wordNil {
			ok, witness := casUintptrRelaxed(&c.enqRef, wordNil, wordTop)
			if ok {
				e = wordTop
			} else {
				e = witness
			}
		}
	}

	if e == wordTop {
		if q.enqIdx.LoadRelaxed() <= i {
			return wordNil
		}
		return wordTop
	}

	pe := wordEnqRequest(e)
	ei := pe.id.LoadAcquire()
	ev := word(pe.val.LoadAcquire())

	if ei > i {
		if word(c.val.LoadRelaxed()) == wordTop && q.enqIdx.LoadRelaxed() <= i {
			return wordNil
		}
	} else {
		won := false
		witness := ei
		if ei > 0 {
			won, witness = casInt64Relaxed(&pe.id, ei, -i)
		}
		if won || (witness == -i && word(c.val.LoadRelaxed()) == wordTop) {
			advanceIdx(&q.enqIdx, i)
			c.val.StoreRelaxed(uintptr(ev))
		}
	}

	return word(c.val.LoadRelaxed())
}
