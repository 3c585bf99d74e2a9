package wfqueue_test

import (
	"testing"

	"github.com/oliver-giersch/ymc-queue"
)

type event struct {
	ID   int
	Name string
}

func TestTypedQueueRoundTrip(t *testing.T) {
	tq, err := wfqueue.NewTypedQueue[event](1)
	if err != nil {
		t.Fatalf("NewTypedQueue: %v", err)
	}
	defer tq.Destroy()

	want := []event{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}, {ID: 3, Name: "c"}}
	for i := range want {
		if err := tq.Enqueue(&want[i], 0); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	for i := range want {
		got, err := tq.Dequeue(0)
		if err != nil {
			t.Fatalf("Dequeue(%d): %v", i, err)
		}
		if *got != want[i] {
			t.Fatalf("Dequeue(%d): got %+v, want %+v", i, *got, want[i])
		}
	}
}

func TestTypedQueueEmpty(t *testing.T) {
	tq, err := wfqueue.NewTypedQueue[event](1)
	if err != nil {
		t.Fatalf("NewTypedQueue: %v", err)
	}
	defer tq.Destroy()

	if _, err := tq.Dequeue(0); !wfqueue.IsEmpty(err) {
		t.Fatalf("Dequeue on empty: got %v, want ErrEmpty", err)
	}
}

func TestNewTypedQueueInvalidMaxThreads(t *testing.T) {
	if _, err := wfqueue.NewTypedQueue[event](0); err != wfqueue.ErrInvalidMaxThreads {
		t.Fatalf("NewTypedQueue(0): got %v, want ErrInvalidMaxThreads", err)
	}
}
