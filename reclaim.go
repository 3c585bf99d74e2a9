package wfqueue

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// checkHazard rewinds cur to old's chain if hzdID, read after cur was
// chosen as a reclamation candidate, turns out to still reference an
// earlier segment than cur — meaning cur would retire a segment still in
// use.
func checkHazard(hzdID *atomix.Uint64, cur, old *segment) *segment {
	hzd := hzdID.LoadAcquire()
	if hzd < uint64(cur.id) {
		tmp := old
		for uint64(tmp.id) < hzd {
			tmp = tmp.next.Load()
		}
		cur = tmp
	}
	return cur
}

// updateSegment advances the segment cached at pRef to at least cur,
// then re-validates the result against hzdID the same way checkHazard
// does, since pRef may have raced ahead of what hzdID has actually been
// observed dereferencing.
func updateSegment(pRef *atomic.Pointer[segment], cur *segment, hzdID *atomix.Uint64, old *segment) *segment {
	ptr := pRef.Load()
	if ptr.id < cur.id {
		if !pRef.CompareAndSwap(ptr, cur) {
			actual := pRef.Load()
			if actual.id < cur.id {
				cur = actual
			}
		}
		cur = checkHazard(hzdID, cur, old)
	}
	return cur
}

// maxGarbage is the number of trailing segments cleanup tolerates before
// attempting to advance the shared head, taken from the original
// implementation's MAX_GARBAGE(n) = 2n.
func maxGarbage(maxThreads int) int64 {
	return int64(2 * maxThreads)
}

// cleanup is the reclaimer: run opportunistically by a dequeuing handle
// once its spare segment has been consumed. At most one handle ever wins
// the right to run it at a time (arbitrated by helpIdx's -1 sentinel);
// everyone else's call is a no-op.
//
// It computes, across every handle's published hazard id, the furthest
// segment no one can still be dereferencing, advances the shared chain's
// head to it, and lets the garbage collector reclaim everything behind
// it once this function returns and no handle's tail/head cache still
// points into it.
func (q *Queue) cleanup(h *handle) {
	oid := q.helpIdx.LoadAcquire()
	newSeg := h.head.Load()

	if oid == -1 {
		return
	}
	if newSeg.id-oid < maxGarbage(q.maxThreads) {
		return
	}
	if ok, _ := casInt64AcqRel(&q.helpIdx, oid, -1); !ok {
		return
	}

	advanceIdx(&q.enqIdx, q.deqIdx.LoadRelaxed())

	old := q.sharedHead.Load()
	ph := h
	phs := h.peerBuf[:0]

	for {
		newSeg = checkHazard(&ph.hzdID, newSeg, old)
		newSeg = updateSegment(&ph.tail, newSeg, &ph.hzdID, old)
		newSeg = updateSegment(&ph.head, newSeg, &ph.hzdID, old)

		phs = append(phs, ph)
		ph = ph.next
		if !(newSeg.id > oid && ph != h) {
			break
		}
	}

	for newSeg.id > oid && len(phs) > 0 {
		last := phs[len(phs)-1]
		phs = phs[:len(phs)-1]
		newSeg = checkHazard(&last.hzdID, newSeg, old)
	}

	nid := newSeg.id
	if nid <= oid {
		q.helpIdx.StoreRelease(oid)
		return
	}

	// Unlink: advance the shared head past every segment up to newSeg.
	// Nothing reachable from the queue or any handle still points behind
	// newSeg at this point, so the garbage collector reclaims the
	// retired run on its own; there is no explicit free.
	q.sharedHead.Store(newSeg)
	q.helpIdx.StoreRelease(nid)
}
