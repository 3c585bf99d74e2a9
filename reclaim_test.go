package wfqueue_test

import (
	"testing"
	"unsafe"

	"github.com/oliver-giersch/ymc-queue"
)

// TestReclaimDoesNotCorruptLiveData drives enough enqueue/dequeue cycles
// through a single handle to trigger cleanup's reclamation path many
// times over (each round's enqueues link new segments and spend the
// handle's spare, so the round's first dequeue runs cleanup; a round spans
// nearly four segments, about maxGarbage's 2*maxThreads threshold, so most
// of those calls retire segments) and checks every value still
// round-trips correctly. A segment reachable from a handle must
// never be collected out from under it; this is the test that would
// flake or panic on a hazard-pointer consensus bug.
func TestReclaimDoesNotCorruptLiveData(t *testing.T) {
	q, err := wfqueue.NewQueue(2)
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}
	defer q.Destroy()

	const rounds = 20
	const batch = 4000 // several segments' worth (segmentSize = 1022)

	for r := 0; r < rounds; r++ {
		vals := make([]int, batch)
		for i := range vals {
			vals[i] = r*batch + i
			if err := q.Enqueue(unsafe.Pointer(&vals[i]), 0); err != nil {
				t.Fatalf("round %d Enqueue(%d): %v", r, i, err)
			}
		}
		for i := range vals {
			p, err := q.Dequeue(0)
			if err != nil {
				t.Fatalf("round %d Dequeue(%d): %v", r, i, err)
			}
			if got := *(*int)(p); got != vals[i] {
				t.Fatalf("round %d Dequeue(%d): got %d, want %d", r, i, got, vals[i])
			}
		}
	}
}

// TestReclaimRespectsSlowHandle holds one handle's cached head behind
// while another handle races far ahead, then checks that the slow handle
// can still enqueue. The draining handle only walks segments the slow
// handle already linked, so its spare is never spent and cleanup does not
// run in this test.
func TestReclaimRespectsSlowHandle(t *testing.T) {
	q, err := wfqueue.NewQueue(2)
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}
	defer q.Destroy()

	const n = 6000
	vals := make([]int, n)
	for i := range vals {
		vals[i] = i
		if err := q.Enqueue(unsafe.Pointer(&vals[i]), 0); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}

	// Handle 1 drains everything; handle 0 never dequeues, so its cached
	// head segment stays at the first segment the whole time.
	for i := range vals {
		p, err := q.Dequeue(1)
		if err != nil {
			t.Fatalf("Dequeue(%d): %v", i, err)
		}
		if got := *(*int)(p); got != vals[i] {
			t.Fatalf("Dequeue(%d): got %d, want %d", i, got, vals[i])
		}
	}

	// Now handle 0 can safely enqueue again; nothing should have
	// corrupted its view of the chain.
	v := n
	if err := q.Enqueue(unsafe.Pointer(&v), 0); err != nil {
		t.Fatalf("Enqueue after drain: %v", err)
	}
	p, err := q.Dequeue(1)
	if err != nil {
		t.Fatalf("Dequeue final: %v", err)
	}
	if got := *(*int)(p); got != n {
		t.Fatalf("Dequeue final: got %d, want %d", got, n)
	}
}
