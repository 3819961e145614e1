// Package wire defines the on-shared-memory binary layout that every
// process attached to a queue must agree on: the Queue Header at the
// front of the region, and the Message Header that precedes every
// frame in the ring.
//
// Every field sits at a fixed byte offset in the mapped byte slice
// rather than being reached through Go struct field access, so that two
// processes built by different Go toolchains (or, in principle, a non-Go
// process) still agree on byte offsets. BodyLength is read and written
// through encoding/binary as little-endian; HeadOffset, TailOffset and
// State, which require compare-and-swap, are accessed with sync/atomic
// directly on the mapped memory, in the host's byte order.
package wire

import (
	"encoding/binary"
	"sync/atomic"
)

// Message states, per spec section 3.1.
const (
	StateEmpty              int32 = 0
	StateLockedToBeEnqueued int32 = 1
	StateReadyToBeConsumed  int32 = 2
	StateLockedToBeConsumed int32 = 3
)

const (
	// HeaderSize is the size, in bytes, of the Queue Header that sits
	// at offset 0 of the shared region: HeadOffset (int64) + TailOffset
	// (int64) + 8 bytes reserved padding.
	HeaderSize = 24

	headOffsetPos = 0
	tailOffsetPos = 8

	// MessageHeaderSize is the size, in bytes, of the Message Header
	// that precedes every frame: State (int32, padded to 8) +
	// BodyLength (int64).
	MessageHeaderSize = 16

	statePos      = 0
	bodyLengthPos = 8
)

// QueueHeader is a view over the first HeaderSize bytes of the shared
// region. It does not own the memory; Base must point at a live mapping
// for the lifetime of every call.
type QueueHeader struct {
	Base []byte
}

func (h QueueHeader) headPtr() *int64 {
	return (*int64)(atomicPointer(h.Base[headOffsetPos : headOffsetPos+8]))
}

func (h QueueHeader) tailPtr() *int64 {
	return (*int64)(atomicPointer(h.Base[tailOffsetPos : tailOffsetPos+8]))
}

// LoadHead atomically reads HeadOffset.
func (h QueueHeader) LoadHead() int64 { return atomic.LoadInt64(h.headPtr()) }

// LoadTail atomically reads TailOffset.
func (h QueueHeader) LoadTail() int64 { return atomic.LoadInt64(h.tailPtr()) }

// CASHead attempts to move HeadOffset from old to new.
func (h QueueHeader) CASHead(old, new int64) bool {
	return atomic.CompareAndSwapInt64(h.headPtr(), old, new)
}

// CASTail attempts to move TailOffset from old to new.
func (h QueueHeader) CASTail(old, new int64) bool {
	return atomic.CompareAndSwapInt64(h.tailPtr(), old, new)
}

// Zero clears the header to its empty state. Only the first creator of
// the backing region should call this.
func (h QueueHeader) Zero() {
	for i := range h.Base[:HeaderSize] {
		h.Base[i] = 0
	}
}

// MessageHeader is a view over MessageHeaderSize bytes somewhere in the
// ring, at a caller-chosen ring offset.
type MessageHeader struct {
	Base []byte // exactly MessageHeaderSize contiguous bytes of the mapped ring; never a copy, since State is updated atomically in place
}

func (m MessageHeader) statePtr() *int32 {
	return (*int32)(atomicPointer(m.Base[statePos : statePos+4]))
}

// LoadState atomically reads State.
func (m MessageHeader) LoadState() int32 { return atomic.LoadInt32(m.statePtr()) }

// CASState attempts to move State from old to new.
func (m MessageHeader) CASState(old, new int32) bool {
	return atomic.CompareAndSwapInt32(m.statePtr(), old, new)
}

// StoreState unconditionally stores State. Only safe when the caller
// already holds exclusive ownership of the frame (just reserved it as
// a publisher, or holds LockedToBeConsumed as a subscriber).
func (m MessageHeader) StoreState(v int32) {
	atomic.StoreInt32(m.statePtr(), v)
}

// BodyLength reads the body length field. It is only meaningful once
// State has been observed as ReadyToBeConsumed or LockedToBeConsumed.
func (m MessageHeader) BodyLength() int64 {
	return int64(binary.LittleEndian.Uint64(m.Base[bodyLengthPos : bodyLengthPos+8]))
}

// SetBodyLength writes the body length field. Only valid while the
// caller holds the header in LockedToBeEnqueued state.
func (m MessageHeader) SetBodyLength(n int64) {
	binary.LittleEndian.PutUint64(m.Base[bodyLengthPos:bodyLengthPos+8], uint64(n))
}

// FrameLen returns the 8-byte-aligned total length of a frame carrying
// a body of bodyLen bytes, header included.
func FrameLen(bodyLen int) int64 {
	total := int64(MessageHeaderSize) + int64(bodyLen)
	return ceil8(total)
}

func ceil8(n int64) int64 {
	return (n + 7) &^ 7
}
