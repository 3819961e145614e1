// Package interprocess implements a single-producer-or-multi-producer,
// multi-consumer inter-process FIFO message queue backed by a
// fixed-size shared-memory circular buffer, with an out-of-band
// cross-process wake-up signal used to park idle consumers.
//
// Processes on the same host attach to a named queue with OpenQueue and
// exchange variable-length byte messages with no broker process: see
// NewPublisher and NewSubscriber.
package interprocess

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/plkumar/interprocess/internal/mmf"
	"github.com/plkumar/interprocess/internal/ring"
	"github.com/plkumar/interprocess/internal/signal"
	"github.com/plkumar/interprocess/internal/wire"
)

// Queue owns the lifecycle of a named queue's shared-memory region and
// wake-up signal for this process, and is the entry point every
// Publisher and Subscriber is constructed from. Many publishers and
// subscribers, in this process and others, may share one queue.
type Queue struct {
	opts   QueueOptions
	file   mmf.MemoryFile
	header wire.QueueHeader
	buf    *ring.Buffer
	sig    signal.Signal

	closed atomic.Bool

	mu          sync.Mutex
	subscribers []*Subscriber // tracked so Close can drain every in-flight Dequeue
}

// OpenQueue attaches to (creating if necessary) the named queue
// described by opts, per spec section 3.3: the first process to open a
// given (path, name) creates the backing region; later processes
// attach to it.
func OpenQueue(opts QueueOptions) (*Queue, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.logger()

	file, err := mmf.OpenOrCreate(opts.Path, opts.QueueName, opts.BytesCapacity(), opts.createMode(), logger)
	if err != nil {
		return nil, fmt.Errorf("interprocess: opening queue %q: %w", opts.QueueName, err)
	}

	mapped := file.MappedFile()
	header := wire.QueueHeader{Base: mapped[:wire.HeaderSize]}
	if file.IsOwner() {
		header.Zero()
	}

	buf, err := ring.New(mapped[wire.HeaderSize:], opts.Capacity)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("interprocess: constructing ring for queue %q: %w", opts.QueueName, err)
	}

	sigDir := filepath.Join(opts.Path, ".cloudtoid", "interprocess", "signal")
	sig, err := signal.NewForQueue(sigDir, opts.QueueName, logger)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("interprocess: constructing wake-up signal for queue %q: %w", opts.QueueName, err)
	}

	return &Queue{opts: opts, file: file, header: header, buf: buf, sig: sig}, nil
}

// NewPublisher returns a Publisher bound to this queue.
func (q *Queue) NewPublisher() *Publisher {
	return &Publisher{q: q}
}

// NewSubscriber returns a Subscriber bound to this queue.
func (q *Queue) NewSubscriber() *Subscriber {
	s := newSubscriber(q)
	q.mu.Lock()
	q.subscribers = append(q.subscribers, s)
	q.mu.Unlock()
	return s
}

// Close drains every Subscriber created from this queue (cancelling
// their in-flight Dequeue calls and waiting for them to return), then
// releases the signal, then the memory file, in that order, since a
// subscriber must never be left parked on a signal whose resources
// have already been freed. Idempotent.
func (q *Queue) Close() error {
	if !q.closed.CompareAndSwap(false, true) {
		return nil
	}

	q.mu.Lock()
	subs := q.subscribers
	q.subscribers = nil
	q.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}

	if err := q.sig.Close(); err != nil {
		q.opts.logger().Warnw("closing wake-up signal", "queue", q.opts.QueueName, "error", err)
	}
	return q.file.Close()
}

func (q *Queue) isClosed() bool { return q.closed.Load() }

// Stats is a point-in-time snapshot of a queue's header, for
// introspection (cmd/ipqueue's inspect subcommand). It is inherently
// racy against concurrent publishers/subscribers, the same as reading
// HeadOffset/TailOffset anywhere else in this package: a caller gets a
// value that was true at some instant, not a consistent pair.
type Stats struct {
	HeadOffset int64
	TailOffset int64
	Capacity   int64
	Occupied   int64
}

// Stats snapshots HeadOffset and TailOffset and derives the
// approximate number of bytes currently occupied in the ring.
func (q *Queue) Stats() Stats {
	head := q.header.LoadHead()
	tail := q.header.LoadTail()
	return Stats{
		HeadOffset: head,
		TailOffset: tail,
		Capacity:   q.opts.Capacity,
		Occupied:   int64(uint64(tail) - uint64(head)),
	}
}
