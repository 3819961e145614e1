package interprocess

import (
	"context"
	"runtime"
	"time"

	"github.com/plkumar/interprocess/internal/wire"
)

// Publisher reserves space in a queue's ring, writes a message into it,
// and signals waiting subscribers. Many publishers, in this process and
// others, may share one Queue.
type Publisher struct {
	q *Queue
}

// TryEnqueue implements the publisher protocol of spec section 4.4.
// It returns (false, nil) when the queue is full, rather than an error,
// matching spec section 7's "for TryEnqueue this is a normal false".
func (p *Publisher) TryEnqueue(body []byte) (bool, error) {
	if p.q.isClosed() {
		return false, ErrClosed
	}
	if len(body) == 0 {
		return false, &InvalidOptionError{Field: "body", Reason: "must be at least 1 byte"}
	}

	capacity := p.q.opts.Capacity
	frameLen := wire.FrameLen(len(body))
	if frameLen > capacity {
		return false, &MessageTooLargeError{BodyLen: len(body), FrameLen: frameLen, Capacity: capacity}
	}

	header := p.q.header
	buf := p.q.buf

	for {
		tail := header.LoadTail()
		head := header.LoadHead()

		// A frame's header never straddles the wrap point, since the
		// atomic CAS on its State field requires a contiguous address
		// (the body may still wrap; Buffer.Write handles that). If
		// less than a header's worth of room remains before the ring
		// wraps, that sliver is wasted space the reservation must
		// swallow; spec section 3.1 is silent on this case because
		// its invariants assume headers are addressable regardless of
		// position, which the atomics requirement in section 5 rules
		// out. See DESIGN.md.
		idx := wire.RingIndex(tail, capacity)
		remaining := capacity - idx
		var padLen int64
		if remaining < wire.MessageHeaderSize {
			padLen = remaining
		}
		total := padLen + frameLen

		if tail-head+total > capacity {
			return false, nil
		}

		if !header.CASTail(tail, tail+total) {
			continue
		}

		frameOffset := tail + padLen
		if padLen > 0 {
			buf.Clear(tail, int(padLen))
		}

		msgHeader := buf.MessageHeaderAt(frameOffset)
		msgHeader.StoreState(wire.StateLockedToBeEnqueued)
		msgHeader.SetBodyLength(int64(len(body)))
		buf.Write(frameOffset+wire.MessageHeaderSize, body)

		if !msgHeader.CASState(wire.StateLockedToBeEnqueued, wire.StateReadyToBeConsumed) {
			panicInvariant(p.q, "publisher: reserved frame's header was mutated by someone else")
		}

		p.q.sig.Release()
		return true, nil
	}
}

// Enqueue blocks until TryEnqueue succeeds or ctx is canceled, using
// the same three-tier back-off as the blocking dequeue in spec section
// 4.5: a handful of cooperative yields, then growing 1..10ms parks on
// the wake-up signal, then a steady 10ms park.
func (p *Publisher) Enqueue(ctx context.Context, body []byte) error {
	attempt := 0
	for {
		ok, err := p.TryEnqueue(body)
		if err != nil && err != ErrQueueFull {
			return err
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ErrCancelled
		default:
		}

		if !backoff(ctx, p.q.sig, attempt) {
			return ErrCancelled
		}
		attempt++
	}
}

// backoff implements spec section 4.5's blocking back-off table; it is
// shared between Enqueue and Dequeue since both retry a CAS protocol
// against the same wake-up signal.
func backoff(ctx context.Context, sig interface {
	Wait(ctx context.Context, timeout time.Duration) bool
}, attempt int) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}

	switch {
	case attempt < 4:
		runtime.Gosched()
	case attempt < 14:
		ms := time.Duration(attempt-3) * time.Millisecond
		if ms > 10*time.Millisecond {
			ms = 10 * time.Millisecond
		}
		sig.Wait(ctx, ms)
	default:
		sig.Wait(ctx, 10*time.Millisecond)
	}

	select {
	case <-ctx.Done():
		return false
	default:
		return true
	}
}

func panicInvariant(q *Queue, detail string) {
	q.opts.logger().Errorw("invariant breach", "queue", q.opts.QueueName, "detail", detail)
	panic(&InvariantBreachError{Detail: detail})
}
