package wfqueue

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrEmpty indicates a dequeue found no value linearized at the time of its
// call.
//
// EMPTY is a first-class return value of Dequeue, not an error condition —
// it means no enqueue whose value has not yet been consumed had linearized
// at the dequeue's own linearization point. The caller should retry later
// rather than treat it as a failure.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency with
// the rest of the hybscloud lock-free queue family, which use the same
// sentinel for "cannot proceed right now."
var ErrEmpty = iox.ErrWouldBlock

// ErrInvalidMaxThreads indicates NewQueue or NewTypedQueue was called with
// maxThreads < 1.
var ErrInvalidMaxThreads = errors.New("wfqueue: max_threads must be >= 1")

// IsEmpty reports whether err indicates a dequeue observed an empty queue.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsEmpty(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}
