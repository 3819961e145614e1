package interprocess

import (
	"context"
	"sync"
	"time"

	"github.com/plkumar/interprocess/internal/wire"
)

// Subscriber claims the head message in a queue's ring, copies it out,
// and advances the head offset. Many subscribers, in this process and
// others, may share one Queue; each published body is delivered to
// exactly one of them.
type Subscriber struct {
	q *Queue

	wg        sync.WaitGroup
	closing   chan struct{}
	closeOnce sync.Once
}

// newSubscriber is called by Queue.NewSubscriber.
func newSubscriber(q *Queue) *Subscriber {
	return &Subscriber{q: q, closing: make(chan struct{})}
}

// TryDequeue implements the subscriber protocol of spec section 4.5. It
// returns (false, nil, nil) for "no message available" so callers can
// distinguish that from a real error. dst, if non-nil and large enough,
// is filled and returned; otherwise an owned slice is allocated.
func (s *Subscriber) TryDequeue(ctx context.Context, dst []byte) (bool, []byte, error) {
	if s.q.isClosed() {
		return false, nil, ErrClosed
	}
	select {
	case <-ctx.Done():
		return false, nil, ErrCancelled
	default:
	}

	header := s.q.header
	buf := s.q.buf
	capacity := s.q.opts.Capacity

	// At most one padding region (inserted by a publisher reservation
	// that wrapped the ring) can separate head from a real message or
	// from tail, so two passes always suffice: one to skip it, one to
	// act on what's behind it.
	for attempt := 0; attempt < 2; attempt++ {
		head := header.LoadHead()
		tail := header.LoadTail()
		if head == tail {
			return false, nil, nil
		}

		idx := wire.RingIndex(head, capacity)
		remaining := capacity - idx
		if remaining < wire.MessageHeaderSize {
			// head sits in a wasted sliver a publisher's wrap left
			// behind; reclaim it and look again. Losing the race here
			// just means another subscriber already did.
			header.CASHead(head, head+remaining)
			continue
		}

		msgHeader := buf.MessageHeaderAt(head)
		if !msgHeader.CASState(wire.StateReadyToBeConsumed, wire.StateLockedToBeConsumed) {
			return false, nil, nil
		}

		// Re-check HeadOffset didn't move while we were locking this
		// header: spec section 4.5 step 3. Two CAS operations on
		// different memory locations can't be made atomic together,
		// so a subscriber that raced past us may have already
		// advanced head onto a different frame.
		if header.LoadHead() != head {
			if !msgHeader.CASState(wire.StateLockedToBeConsumed, wire.StateReadyToBeConsumed) {
				panicInvariant(s.q, "subscriber: could not release a speculative lock it still held")
			}
			return false, nil, nil
		}

		bodyLen := int(msgHeader.BodyLength())
		out := buf.Read(head+wire.MessageHeaderSize, bodyLen, dst)

		frameLen := wire.FrameLen(bodyLen)
		buf.Clear(head+wire.MessageHeaderSize, bodyLen)
		buf.Clear(head, wire.MessageHeaderSize) // zeroes BodyLength too, and StateEmpty == 0

		if !header.CASHead(head, head+frameLen) {
			panicInvariant(s.q, "subscriber: held message lock but HeadOffset moved under us")
		}

		return true, out, nil
	}

	return false, nil, nil
}

// Dequeue blocks until a message is available or ctx is canceled, or
// this Subscriber is closed, using the three-tier back-off from spec
// section 4.5: a handful of cooperative yields, then growing 1..10ms
// parks on the wake-up signal, then a steady 10ms park. The signal is
// never trusted for correctness, only latency: a missed wake-up delays
// the next retry by at most 10ms.
func (s *Subscriber) Dequeue(ctx context.Context, dst []byte) ([]byte, error) {
	s.wg.Add(1)
	defer s.wg.Done()

	ctx, cancel := s.mergeClosing(ctx)
	defer cancel()

	attempt := 0
	for {
		ok, out, err := s.TryDequeue(ctx, dst)
		if err != nil {
			return nil, err
		}
		if ok {
			return out, nil
		}

		if !backoff(ctx, s.q.sig, attempt) {
			return nil, ErrCancelled
		}
		attempt++
	}
}

// mergeClosing derives a context that is canceled when either ctx is
// canceled or this Subscriber is closed.
func (s *Subscriber) mergeClosing(ctx context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-s.closing:
			cancel()
		case <-merged.Done():
		}
	}()
	return merged, cancel
}

// Close triggers internal cancellation of any in-flight Dequeue, waits
// for it to return via a countdown latch, then performs a short grace
// sleep before returning, closing the race between "cancel set" and "a
// new caller enters Dequeue", per spec section 5. Idempotent.
func (s *Subscriber) Close() {
	s.closeOnce.Do(func() { close(s.closing) })
	s.wg.Wait()
	time.Sleep(10 * time.Millisecond)
}
