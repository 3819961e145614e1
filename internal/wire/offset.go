package wire

// Offsets into the ring grow monotonically forever in principle; their
// modulo-Capacity value is what addresses the ring. Section 9 of the
// spec flags the original implementation's one-time
// "-MaxInt64 + offset + increment" wrap as a correctness bug: it works
// exactly once and then silently breaks FIFO ordering.
//
// We instead treat offsets as ordinary wrapping int64 arithmetic (the
// same trick used to compare TCP sequence numbers or monotonic
// counters): addition wraps at the int64 boundary exactly like a fixed-
// width unsigned counter would, and RingIndex below folds the result
// into [0, capacity) regardless of sign. Two offsets that differ by
// `increment` in this arithmetic continue to differ by `increment`
// after either one wraps, so both publisher and subscriber agree
// without needing to special-case the wrap.

// Advance returns offset+by using wraparound-safe arithmetic. by is
// always non-negative in this protocol (a frame length or zero).
func Advance(offset, by int64) int64 {
	return int64(uint64(offset) + uint64(by))
}

// RingIndex folds a monotonic offset into the ring, i.e. offset mod
// capacity, without relying on Go's `%` being well defined for an
// offset that has wrapped through the negative range.
func RingIndex(offset, capacity int64) int64 {
	m := int64(uint64(offset) % uint64(capacity))
	return m
}

// Before reports whether a precedes b in the monotonic offset space,
// tolerating a single wraparound between them (the distance between any
// two offsets this protocol compares is always far smaller than
// MaxInt64/2, since it is bounded by Capacity).
func Before(a, b int64) bool {
	return int64(uint64(b)-uint64(a)) > 0
}
