//go:build !race

package wfqueue

// RaceEnabled is false when the race detector is not active.
const RaceEnabled = false
