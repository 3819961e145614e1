// Package ring implements address arithmetic over a fixed-size,
// power-of-two-free byte ring: bounded, wrap-aware reads and writes
// indexed by monotonically growing offsets. Apart from MessageHeaderAt,
// which hands out a wire.MessageHeader view at an offset, it has no
// notion of messages or headers; internal/wire and the
// publisher/subscriber own that.
//
// The wrap handling mirrors the two-span technique in shmring's
// WriteAcquire/ReadAcquire (other_examples), generalized from spans
// returned to the caller into copy-in/copy-out helpers, since this
// ring is shared across process boundaries and callers work with
// plain byte slices rather than zero-copy spans.
package ring

import (
	"fmt"
	"unsafe"

	"github.com/plkumar/interprocess/internal/wire"
)

// Buffer is a view over the ring portion of the shared region (i.e.
// everything after the Queue Header).
type Buffer struct {
	Data     []byte
	Capacity int64
}

// New wraps data as a ring of the given capacity. data must be at least
// capacity bytes long.
func New(data []byte, capacity int64) (*Buffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("ring: capacity must be > 0, got %d", capacity)
	}
	if capacity%8 != 0 {
		return nil, fmt.Errorf("ring: capacity must be a multiple of 8, got %d", capacity)
	}
	if int64(len(data)) < capacity {
		return nil, fmt.Errorf("ring: backing slice (%d bytes) shorter than capacity (%d)", len(data), capacity)
	}
	return &Buffer{Data: data, Capacity: capacity}, nil
}

func (b *Buffer) index(offset int64) int64 {
	return wire.RingIndex(offset, b.Capacity)
}

// span computes the (possibly wrapped) byte ranges covering length
// bytes starting at offset.
func (b *Buffer) span(offset int64, length int) (first, second []byte) {
	idx := b.index(offset)
	avail := b.Capacity - idx
	if int64(length) <= avail {
		return b.Data[idx : idx+int64(length)], nil
	}
	return b.Data[idx:b.Capacity], b.Data[:int64(length)-avail]
}

// GetPointer returns a slice of the ring starting at offset and ending
// at the wrap point (length and capacity both Capacity minus the ring
// index), for callers that need the raw address of the byte at offset
// (e.g. to hand to sync/atomic). It does not wrap: the caller
// guarantees the field it addresses lies before the wrap point, which
// holds for message headers because the publisher never starts a
// header in fewer than MessageHeaderSize bytes before the wrap.
func (b *Buffer) GetPointer(offset int64) []byte {
	idx := b.index(offset)
	return b.Data[idx:b.Capacity:b.Capacity]
}

// Read copies length bytes starting at offset into dst if dst is large
// enough, otherwise it allocates and returns an owned copy.
func (b *Buffer) Read(offset int64, length int, dst []byte) []byte {
	if cap(dst) < length {
		dst = make([]byte, length)
	}
	dst = dst[:length]
	first, second := b.span(offset, length)
	n := copy(dst, first)
	if second != nil {
		copy(dst[n:], second)
	}
	return dst
}

// Write copies data into the ring starting at offset, wrapping as
// needed.
func (b *Buffer) Write(offset int64, data []byte) {
	first, second := b.span(offset, len(data))
	n := copy(first, data)
	if second != nil {
		copy(second, data[n:])
	}
}

// Clear zeroes length bytes starting at offset, wrapping as needed.
// Used for the hygiene pass in the subscriber protocol (spec section
// 4.5 step 5) so orphaned data can't be read back out of the ring.
func (b *Buffer) Clear(offset int64, length int) {
	first, second := b.span(offset, length)
	for i := range first {
		first[i] = 0
	}
	for i := range second {
		second[i] = 0
	}
}

// Write writes a fixed-size value directly into the ring at offset by
// reinterpreting its memory as bytes, the same unsafe.Pointer cast the
// teacher's Ring.Write used for its uintptr length prefix, generalized
// from uintptr to any fixed-size T via generics. The caller guarantees
// offset falls on a single-span, non-wrapping region (GetPointer's
// contract); Write panics via a slice bounds error otherwise rather
// than silently corrupting an adjacent field.
func Write[T any](buf *Buffer, offset int64, v T) {
	size := int(unsafe.Sizeof(v))
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&v)), size)
	ptr := buf.GetPointer(offset)
	copy(ptr[:size], raw)
}

// MessageHeaderAt returns a wire.MessageHeader view at the given ring
// offset. Message headers are MessageHeaderSize bytes and never
// straddle the ring wraparound point: frames start at 8-byte aligned
// offsets, and when fewer than MessageHeaderSize bytes remain before
// the wrap the publisher pads over them and starts the frame at index
// 0. A frame's body may still wrap. See publisher.go reserve logic.
// That non-wrapping guarantee for the header is what lets it hand out
// a GetPointer slice instead of a span-joined copy.
func (b *Buffer) MessageHeaderAt(offset int64) wire.MessageHeader {
	ptr := b.GetPointer(offset)
	return wire.MessageHeader{Base: ptr[:wire.MessageHeaderSize]}
}
