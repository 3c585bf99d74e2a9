//go:build race

package wfqueue

// RaceEnabled is true when the race detector is active. Used by tests to
// skip concurrent stress tests, which trigger false positives: the
// algorithm's correctness depends on acquire/release orderings between
// logically distinct atomic fields (a cell's val versus its enqRef or
// deqRef) that the race detector's happens-before model does not track.
const RaceEnabled = true
